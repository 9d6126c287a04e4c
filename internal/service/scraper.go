package service

import (
	"context"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"policyscraper/internal/fetch"
	"policyscraper/internal/model"
	"policyscraper/internal/registry"
)

const (
	DefaultDelay        = 2 * time.Second
	DefaultFetchTimeout = 30 * time.Second
)

// Observer is notified after every target is scraped.
type Observer interface {
	TargetScraped(result *model.TargetResult, elapsed time.Duration)
}

// Scraper fetches targets one after another and aggregates the results into
// a session report. A Scraper holds only its configuration, so one value
// may serve concurrent batches.
type Scraper struct {
	registry        *registry.Registry
	fetcher         fetch.Fetcher
	clock           Clock
	delay           time.Duration
	fetchTimeout    time.Duration
	minContentChars int
	extractOpts     ExtractOptions
	observer        Observer
	logger          *zap.Logger
}

type Option func(*Scraper)

func WithClock(c Clock) Option {
	return func(s *Scraper) { s.clock = c }
}

// WithDelay sets the pause between successive fetches. Zero disables it.
func WithDelay(d time.Duration) Option {
	return func(s *Scraper) {
		if d >= 0 {
			s.delay = d
		}
	}
}

func WithFetchTimeout(d time.Duration) Option {
	return func(s *Scraper) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

// WithMinContentChars marks pages whose raw text is shorter than n characters
// as failed with content_too_short. Zero disables the check.
func WithMinContentChars(n int) Option {
	return func(s *Scraper) { s.minContentChars = n }
}

func WithExtractOptions(o ExtractOptions) Option {
	return func(s *Scraper) { s.extractOpts = o }
}

func WithObserver(o Observer) Option {
	return func(s *Scraper) { s.observer = o }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Scraper) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewScraper(reg *registry.Registry, fetcher fetch.Fetcher, opts ...Option) *Scraper {
	s := &Scraper{
		registry:     reg,
		fetcher:      fetcher,
		clock:        systemClock{},
		delay:        DefaultDelay,
		fetchTimeout: DefaultFetchTimeout,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scraper) Registry() *registry.Registry {
	return s.registry
}

// Select resolves section names against the registry, keeping the caller's
// order and dropping repeats. No names selects every section in registry
// order. Any unknown name fails the whole selection with target_not_found.
func (s *Scraper) Select(names []string) ([]model.Target, error) {
	if len(names) == 0 {
		return s.registry.Sections(), nil
	}

	var (
		targets []model.Target
		unknown []string
		seen    = make(map[string]bool, len(names))
	)
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		t, ok := s.registry.Lookup(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		targets = append(targets, t)
	}

	if len(unknown) > 0 {
		return nil, model.Errorf(model.ETARGETNOTFOUND, "unknown sections: %s", strings.Join(unknown, ", "))
	}
	return targets, nil
}

// Run scrapes the main page (when includeMain is set) followed by targets,
// in order, pausing between fetches. Failed targets are recorded and never
// stop the batch. When ctx is done the remaining targets are skipped and
// the report is marked partial. An error is returned only for an invalid
// batch, before anything is fetched.
func (s *Scraper) Run(ctx context.Context, targets []model.Target, includeMain bool) (*model.SessionReport, error) {
	plan := make([]model.Target, 0, len(targets)+1)
	if includeMain {
		main, ok := s.registry.Main()
		if !ok {
			return nil, model.Errorf(model.EINVALID, "registry has no main page")
		}
		plan = append(plan, main)
	}
	plan = append(plan, targets...)

	seen := make(map[string]bool, len(plan))
	for _, t := range plan {
		if seen[t.Name] {
			return nil, model.Errorf(model.EINVALID, "duplicate target %q", t.Name)
		}
		seen[t.Name] = true
	}

	report := &model.SessionReport{
		Timestamp:       s.clock.Now(),
		IncludeMainPage: includeMain,
		Results:         make(model.Results, 0, len(plan)),
	}

	for i, t := range plan {
		if i > 0 {
			if err := s.clock.Sleep(ctx, s.delay); err != nil {
				report.Skipped = targetNames(plan[i:])
				break
			}
		}
		if ctx.Err() != nil {
			report.Skipped = targetNames(plan[i:])
			break
		}
		report.Results = append(report.Results, s.scrapeTarget(ctx, t))
	}

	report.Aggregate()
	if len(report.Skipped) > 0 {
		report.Partial = true
		s.logger.Warn("batch deadline reached, remaining targets skipped",
			zap.Int("skipped", len(report.Skipped)),
			zap.Error(ctx.Err()),
		)
	}

	s.logger.Info("scraping completed",
		zap.Int("total", report.TotalTargets),
		zap.Int("successful", report.Successful),
		zap.Int("failed", report.Failed),
		zap.Float64("success_rate", report.SuccessRate),
	)

	return report, nil
}

// ScrapeOne scrapes a single section. A non-empty urlOverride is fetched
// instead of the registry URL and name only labels the result.
func (s *Scraper) ScrapeOne(ctx context.Context, name, urlOverride string) (*model.TargetResult, error) {
	t, err := s.resolveSingle(name, urlOverride)
	if err != nil {
		return nil, err
	}
	return s.scrapeTarget(ctx, t), nil
}

func (s *Scraper) resolveSingle(name, urlOverride string) (model.Target, error) {
	if urlOverride != "" {
		u, err := url.Parse(urlOverride)
		if err != nil || u.Host == "" {
			return model.Target{}, model.Errorf(model.EINVALID, "invalid url %q", urlOverride)
		}
		if name == "" {
			name = urlOverride
		}
		return model.Target{Name: name, URL: urlOverride}, nil
	}

	if name == "" {
		return model.Target{}, model.Errorf(model.EINVALID, "section name required")
	}
	if t, ok := s.registry.Lookup(name); ok {
		return t, nil
	}
	if main, ok := s.registry.Main(); ok && main.Name == name {
		return main, nil
	}
	return model.Target{}, model.Errorf(model.ETARGETNOTFOUND, "section %q not found", name)
}

func (s *Scraper) scrapeTarget(ctx context.Context, t model.Target) *model.TargetResult {
	s.logger.Info("scraping", zap.String("section", t.Name), zap.String("url", t.URL))

	start := s.clock.Now()
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	resp, err := s.fetcher.Fetch(fetchCtx, t.URL)
	scrapedAt := s.clock.Now()

	var result *model.TargetResult
	switch {
	case err != nil:
		result = model.NewFailure(t, scrapedAt, fetch.Classify(err))
	case resp == nil:
		result = model.NewFailure(t, scrapedAt, model.ENETWORK)
	case !fetch.IsSuccess(resp.StatusCode):
		result = model.NewFailure(t, scrapedAt, model.HTTPErrorReason(resp.StatusCode))
	default:
		result = s.extract(t, scrapedAt, resp.Body)
	}

	if result.Succeeded() {
		s.logger.Info("successfully scraped",
			zap.String("section", t.Name),
			zap.Int("character_count", result.Statistics.CharacterCount),
		)
	} else {
		s.logger.Warn("failed to scrape",
			zap.String("section", t.Name),
			zap.String("url", t.URL),
			zap.String("reason", result.Metadata.Error),
			zap.Error(err),
		)
	}

	if s.observer != nil {
		s.observer.TargetScraped(result, scrapedAt.Sub(start))
	}
	return result
}

func (s *Scraper) extract(t model.Target, scrapedAt time.Time, body string) *model.TargetResult {
	content, err := Extract(body, t.URL, s.extractOpts)
	if err != nil {
		return model.NewFailure(t, scrapedAt, model.EPARSE)
	}
	if s.minContentChars > 0 && utf8.RuneCountInString(content.RawText) < s.minContentChars {
		return model.NewFailure(t, scrapedAt, model.ETOOSHORT)
	}
	return model.NewSuccess(t, scrapedAt, content)
}

func targetNames(targets []model.Target) []string {
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = t.Name
	}
	return names
}

