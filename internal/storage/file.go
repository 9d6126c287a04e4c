package storage

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// Ensure FileStore implements Store at compile time.
var _ Store = (*FileStore)(nil)

// FileStore writes documents as flat files under root/container/key.
type FileStore struct {
	root string
}

// DefaultRoot is the data directory used when no root is configured.
func DefaultRoot() string {
	return filepath.Join(xdg.DataHome, "policyscraper")
}

// NewFileStore creates a FileStore rooted at root, or at DefaultRoot when
// root is empty.
func NewFileStore(root string) *FileStore {
	if root == "" {
		root = DefaultRoot()
	}
	return &FileStore{root: root}
}

func (s *FileStore) Store(ctx context.Context, container, key string, document []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rel, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	dir, err := cleanKey(container)
	if err != nil {
		return "", fmt.Errorf("invalid container: %w", err)
	}

	fullPath := filepath.Join(s.root, filepath.FromSlash(dir), filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(fullPath, document, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", fullPath, err)
	}

	abs, err := filepath.Abs(fullPath)
	if err != nil {
		abs = fullPath
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}
