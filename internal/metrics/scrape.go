// Package metrics exposes scrape outcomes to Prometheus.
package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"policyscraper/internal/model"
)

var (
	targetsScrapedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "policyscraper_targets_scraped_total",
			Help: "Total number of scraped targets by status and failure reason",
		},
		[]string{"status", "reason"},
	)

	targetScrapeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "policyscraper_target_scrape_duration_seconds",
			Help:    "Time spent fetching one target",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(targetsScrapedTotal, targetScrapeDuration)
}

// ScrapeObserver records every scraped target.
type ScrapeObserver struct{}

func (ScrapeObserver) TargetScraped(result *model.TargetResult, elapsed time.Duration) {
	status := string(result.Metadata.Status)
	targetsScrapedTotal.WithLabelValues(status, reasonLabel(result.Metadata.Error)).Inc()
	targetScrapeDuration.WithLabelValues(status).Observe(elapsed.Seconds())
}

// http_error:404 is reported as http_error to keep label cardinality bounded
func reasonLabel(reason string) string {
	if i := strings.IndexByte(reason, ':'); i >= 0 {
		return reason[:i]
	}
	return reason
}
