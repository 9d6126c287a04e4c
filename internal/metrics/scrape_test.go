package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"policyscraper/internal/model"
)

func TestReasonLabel(t *testing.T) {
	tests := []struct {
		reason   string
		expected string
	}{
		{"", ""},
		{"http_error:404", "http_error"},
		{"timeout", "timeout"},
		{"network_error", "network_error"},
	}

	for _, tt := range tests {
		if got := reasonLabel(tt.reason); got != tt.expected {
			t.Errorf("reasonLabel(%q) = %q, want %q", tt.reason, got, tt.expected)
		}
	}
}

func scrapedTotal(t *testing.T, status, reason string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "policyscraper_targets_scraped_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["status"] == status && labels["reason"] == reason {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestScrapeObserver(t *testing.T) {
	before := scrapedTotal(t, "failure", "http_error")

	res := model.NewFailure(model.Target{Name: "Spam"}, time.Now(), "http_error:503")
	ScrapeObserver{}.TargetScraped(res, 120*time.Millisecond)

	if got := scrapedTotal(t, "failure", "http_error") - before; got != 1 {
		t.Errorf("targets_scraped_total increased by %v, want 1", got)
	}
}
