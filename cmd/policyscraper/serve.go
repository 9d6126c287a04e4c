package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"policyscraper/internal/api/v1/handler"
	"policyscraper/internal/api/v1/router"
	"policyscraper/internal/cache"
	"policyscraper/internal/config"
	"policyscraper/internal/debug"
	"policyscraper/internal/log"
	"policyscraper/internal/service"
)

const pprofAddr = ":6060"

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the scraping API",
		Long: `Serve starts the API on LISTEN_ADDR and Prometheus metrics on METRICS_ADDR.
With IS_DEV=true the runtime profiles are also served on ` + pprofAddr + `.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.AppConfig
	logger := log.Logger

	scraper, err := newScraper(cfg, logger)
	if err != nil {
		return err
	}

	var publisher *service.Publisher
	store, err := newStore(cfg)
	if err != nil {
		return err
	}
	if store != nil {
		publisher = service.NewPublisher(store, cfg.StorageContainer, logger)
	}

	h := handler.New(scraper, publisher, cache.New(cfg.CacheTTL), cfg.BatchDeadline, logger)
	api := router.New(h, router.Options{
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		BasicAuthUser:  cfg.BasicAuthUser,
		BasicAuthPass:  cfg.BasicAuthPass,
	})

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api,
		ReadHeaderTimeout: 5 * time.Second,
		// Batches run up to BATCH_DEADLINE before the response is written.
		WriteTimeout: cfg.BatchDeadline + 30*time.Second,
	}
	metricsServer := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           router.NewMetricsRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return debug.Serve(ctx, server, "server", logger) })
	g.Go(func() error { return debug.Serve(ctx, metricsServer, "metrics server", logger) })

	// Pprof only enabled in dev env
	if cfg.IsDev {
		g.Go(func() error { return debug.Serve(ctx, debug.NewPprofServer(pprofAddr), "pprof", logger) })
	}

	logger.Info("policyscraper started",
		zap.String("addr", cfg.ListenAddr),
		zap.String("base_path", router.BasePath),
		zap.Int("sections", scraper.Registry().Len()),
		zap.Bool("storage", publisher != nil),
	)

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Server exited successfully")
	return nil
}
