package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"policyscraper/internal/api/v1/handler"
	"policyscraper/internal/config"
	"policyscraper/internal/log"
	"policyscraper/internal/model"
	"policyscraper/internal/report"
	"policyscraper/internal/service"
	"policyscraper/internal/storage"
	"policyscraper/internal/util"
)

const markdownReportName = "summary_report.md"

// NewScrapeCmd creates the scrape command.
func NewScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape sections and write the results to disk",
		Long: `Scrape runs one batch and writes a JSON document per page, a master summary
and a markdown report into <output>/<container>/<session-id>/.

Examples:
  # Scrape the main page and every section
  policyscraper scrape

  # Scrape two sections without the main page
  policyscraper scrape --sections "Spam,Hateful Conduct" --no-main`,
		Args: cobra.NoArgs,
		RunE: runScrape,
	}

	cmd.Flags().StringP("sections", "s", "", "Comma separated section names (default all)")
	cmd.Flags().Bool("no-main", false, "Do not scrape the main page")
	cmd.Flags().StringP("output", "o", "", "Output directory (default STORAGE_DIR or the XDG data directory)")
	cmd.Flags().Bool("summary", false, "Print the summary projection to stdout")

	return cmd
}

// batchContext bounds a batch the same way the HTTP handler does, so an
// interrupted or slow run still yields a partial report.
func batchContext(parent context.Context, deadline time.Duration) (context.Context, context.CancelFunc) {
	if deadline <= 0 {
		deadline = handler.DefaultBatchDeadline
	}
	return context.WithTimeout(parent, deadline)
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg := config.AppConfig
	logger := log.Logger

	sections, _ := cmd.Flags().GetString("sections")
	noMain, _ := cmd.Flags().GetBool("no-main")
	output, _ := cmd.Flags().GetString("output")
	printSummary, _ := cmd.Flags().GetBool("summary")
	if output == "" {
		output = cfg.StorageDir
	}

	scraper, err := newScraper(cfg, logger)
	if err != nil {
		return err
	}
	targets, err := scraper.Select(util.SplitList(sections))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runCtx, cancel := batchContext(ctx, cfg.BatchDeadline)
	defer cancel()
	r, err := scraper.Run(runCtx, targets, !noMain)
	if err != nil {
		return err
	}

	store := storage.NewFileStore(output)
	urls, err := service.NewPublisher(store, cfg.StorageContainer, logger).Publish(ctx, r)
	if err != nil {
		logger.Warn("some documents were not written", zap.Error(err))
	}

	if err := writeMarkdownReport(ctx, store, cfg.StorageContainer, urls.SessionID, r); err != nil {
		logger.Warn("failed to write markdown report", zap.Error(err))
	}

	out := cmd.OutOrStdout()
	if printSummary {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(service.SummaryProjection(r))
	}

	fmt.Fprintf(out, "Scraped %d targets: %d successful, %d failed (%.1f%%)\n",
		r.TotalTargets, r.Successful, r.Failed, r.SuccessRate)
	if r.Partial {
		fmt.Fprintf(out, "Deadline reached, %d targets skipped\n", len(r.Skipped))
	}
	if urls.Summary != "" {
		fmt.Fprintf(out, "Summary: %s\n", urls.Summary)
	}
	return nil
}

func writeMarkdownReport(ctx context.Context, store storage.Store, container, sessionID string, r *model.SessionReport) error {
	text, err := report.RenderMarkdown(r)
	if err != nil {
		return err
	}
	_, err = store.Store(ctx, container, path.Join(sessionID, markdownReportName), []byte(text))
	return err
}

