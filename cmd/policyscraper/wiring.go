package main

import (
	"fmt"

	"go.uber.org/zap"
	"policyscraper/internal/config"
	"policyscraper/internal/fetch"
	"policyscraper/internal/metrics"
	"policyscraper/internal/registry"
	"policyscraper/internal/service"
	"policyscraper/internal/storage"
)

func loadRegistry(cfg *config.Config) (*registry.Registry, error) {
	if cfg.RegistryFile == "" {
		return registry.Default(), nil
	}
	return registry.Load(cfg.RegistryFile)
}

func newFetcher(cfg *config.Config, logger *zap.Logger) fetch.Fetcher {
	var f fetch.Fetcher = fetch.NewClient(
		fetch.WithTimeout(cfg.FetchTimeout),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithLogger(logger),
	)
	if cfg.FetchRetries > 0 {
		delays := fetch.DefaultRetryDelays()
		for len(delays) < cfg.FetchRetries {
			delays = append(delays, delays[len(delays)-1])
		}
		f = fetch.NewRetryFetcher(f, delays[:cfg.FetchRetries], logger)
	}
	return f
}

func newScraper(cfg *config.Config, logger *zap.Logger) (*service.Scraper, error) {
	reg, err := loadRegistry(cfg)
	if err != nil {
		return nil, err
	}

	return service.NewScraper(reg, newFetcher(cfg, logger),
		service.WithDelay(cfg.RequestDelay),
		service.WithFetchTimeout(cfg.FetchTimeout),
		service.WithMinContentChars(cfg.MinContentChars),
		service.WithExtractOptions(service.ExtractOptions{MainContentOnly: cfg.MainContentOnly}),
		service.WithObserver(metrics.ScrapeObserver{}),
		service.WithLogger(logger),
	), nil
}

// newStore returns the configured backend, or nil when storage is disabled.
func newStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageBackend {
	case config.StorageFile:
		return storage.NewFileStore(cfg.StorageDir), nil
	case config.StorageAzure:
		s, err := storage.NewAzureBlobStore(cfg.AzureConnString)
		if err != nil {
			return nil, fmt.Errorf("failed to create blob store: %w", err)
		}
		return s, nil
	}
	return nil, nil
}
