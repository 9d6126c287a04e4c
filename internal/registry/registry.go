// Package registry holds the fixed mapping of section names to policy page URLs.
package registry

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
	"policyscraper/internal/model"
)

//go:embed sections.yaml
var defaultSections []byte

type file struct {
	Main     *model.Target  `yaml:"main"`
	Sections []model.Target `yaml:"sections"`
}

// Registry is an immutable, ordered set of named targets plus an optional
// main page. It is safe for concurrent use.
type Registry struct {
	main     *model.Target
	sections []model.Target
	index    map[string]int
}

// Default returns the built-in registry.
func Default() *Registry {
	r, err := Parse(defaultSections)
	if err != nil {
		panic(fmt.Sprintf("registry: invalid built-in sections: %v", err))
	}
	return r
}

// Load reads a registry from a YAML file.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a registry document.
func Parse(data []byte) (*Registry, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode registry: %w", err)
	}
	return New(f.Main, f.Sections)
}

// New validates the targets and builds a Registry. Names must be unique and
// non-empty and URLs absolute http(s).
func New(main *model.Target, sections []model.Target) (*Registry, error) {
	r := &Registry{
		sections: make([]model.Target, 0, len(sections)),
		index:    make(map[string]int, len(sections)),
	}

	if main != nil {
		if err := validate(*main); err != nil {
			return nil, err
		}
		m := *main
		r.main = &m
	}

	for _, t := range sections {
		if err := validate(t); err != nil {
			return nil, err
		}
		if _, dup := r.index[t.Name]; dup || (r.main != nil && r.main.Name == t.Name) {
			return nil, model.Errorf(model.EINVALID, "duplicate section name %q", t.Name)
		}
		r.index[t.Name] = len(r.sections)
		r.sections = append(r.sections, t)
	}

	return r, nil
}

func validate(t model.Target) error {
	if t.Name == "" {
		return model.Errorf(model.EINVALID, "section name required")
	}
	u, err := url.Parse(t.URL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return model.Errorf(model.EINVALID, "section %q: invalid url %q", t.Name, t.URL)
	}
	return nil
}

// Main returns the landing page target, if the registry has one.
func (r *Registry) Main() (model.Target, bool) {
	if r.main == nil {
		return model.Target{}, false
	}
	return *r.main, true
}

// Lookup returns the section registered under name.
func (r *Registry) Lookup(name string) (model.Target, bool) {
	i, ok := r.index[name]
	if !ok {
		return model.Target{}, false
	}
	return r.sections[i], true
}

// Sections returns a copy of all sections in registry order.
func (r *Registry) Sections() []model.Target {
	out := make([]model.Target, len(r.sections))
	copy(out, r.sections)
	return out
}

// Names returns the section names in registry order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.sections))
	for i, t := range r.sections {
		names[i] = t.Name
	}
	return names
}

func (r *Registry) Len() int {
	return len(r.sections)
}
