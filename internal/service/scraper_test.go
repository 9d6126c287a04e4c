package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"policyscraper/internal/model"
)

func newTestScraper(t *testing.T, pages map[string]fakePage, opts ...Option) (*Scraper, *fakeFetcher, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	fetcher := &fakeFetcher{pages: pages, clock: clock}
	opts = append([]Option{WithClock(clock), WithDelay(2 * time.Second)}, opts...)
	return NewScraper(testRegistry(t), fetcher, opts...), fetcher, clock
}

func TestRunMixedOutcomes(t *testing.T) {
	s, _, _ := newTestScraper(t, map[string]fakePage{
		testSections[0].URL: {status: 500, body: "oops"},
		testSections[1].URL: {status: 200, body: spamHTML},
	})

	report, err := s.Run(context.Background(), testSections[:2], false)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.TotalTargets != 2 || report.Successful != 1 || report.Failed != 1 {
		t.Errorf("Run() totals = %d/%d/%d, want 2/1/1", report.TotalTargets, report.Successful, report.Failed)
	}
	if report.SuccessRate != 50.0 {
		t.Errorf("SuccessRate = %v, want 50.0", report.SuccessRate)
	}

	failed := report.Results.Get("Spam")
	if failed == nil {
		t.Fatalf("missing result for Spam")
	}
	if failed.Metadata.Status != model.StatusFailure {
		t.Errorf("Status = %q, want %q", failed.Metadata.Status, model.StatusFailure)
	}
	if failed.Metadata.Error != "http_error:500" {
		t.Errorf("Error = %q, want %q", failed.Metadata.Error, "http_error:500")
	}
	if failed.Content != nil || failed.Statistics != nil {
		t.Errorf("failed result carries content or statistics")
	}

	ok := report.Results.Get("Hateful Conduct")
	if ok == nil || !ok.Succeeded() {
		t.Fatalf("Hateful Conduct result = %+v, want success", ok)
	}
	if got := model.ComputeStatistics(ok.Content); got != *ok.Statistics {
		t.Errorf("Statistics = %+v, recomputed %+v", *ok.Statistics, got)
	}
}

func TestRunKeepsRequestOrderWithMainFirst(t *testing.T) {
	s, fetcher, _ := newTestScraper(t, nil)

	targets := []model.Target{testSections[2], testSections[0]}
	report, err := s.Run(context.Background(), targets, true)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var got []string
	for _, r := range report.Results {
		got = append(got, r.Metadata.SectionName)
	}
	want := []string{"Main Page", "Violent and Graphic Content", "Spam"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("result order = %v, want %v", got, want)
	}
	if !report.IncludeMainPage || report.TotalTargets != 3 {
		t.Errorf("IncludeMainPage, TotalTargets = %v, %d, want true, 3", report.IncludeMainPage, report.TotalTargets)
	}
	if calls := fetcher.Calls(); len(calls) != 3 || calls[0].url != testMain.URL {
		t.Errorf("fetch calls = %v, want main page first", calls)
	}
}

func TestRunWaitsBetweenFetches(t *testing.T) {
	delay := 3 * time.Second
	s, fetcher, clock := newTestScraper(t, nil, WithDelay(delay))

	if _, err := s.Run(context.Background(), testSections, false); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	calls := fetcher.Calls()
	if len(calls) != 3 {
		t.Fatalf("fetch calls = %d, want 3", len(calls))
	}
	if calls[2].sleeps < 2 {
		t.Errorf("third fetch began after %d delays, want at least 2", calls[2].sleeps)
	}
	if elapsed := calls[2].at.Sub(calls[0].at); elapsed < 2*delay {
		t.Errorf("third fetch began %v after the first, want at least %v", elapsed, 2*delay)
	}
	if sleeps := clock.Sleeps(); len(sleeps) != 2 {
		t.Errorf("delays = %v, want exactly 2 (none after the last target)", sleeps)
	}
}

func TestRunDeadlineProducesPartialReport(t *testing.T) {
	s, fetcher, clock := newTestScraper(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clock.onSleep = func(n int) {
		if n == 1 {
			cancel()
		}
	}

	report, err := s.Run(ctx, testSections, false)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !report.Partial {
		t.Errorf("Partial = false, want true")
	}
	wantSkipped := []string{testSections[1].Name, testSections[2].Name}
	if !reflect.DeepEqual(report.Skipped, wantSkipped) {
		t.Errorf("Skipped = %v, want %v", report.Skipped, wantSkipped)
	}
	if report.TotalTargets != 1 || report.Successful+report.Failed != report.TotalTargets {
		t.Errorf("totals = %d/%d/%d, want attempted targets only", report.TotalTargets, report.Successful, report.Failed)
	}
	if n := len(fetcher.Calls()); n != 1 {
		t.Errorf("fetch calls = %d, want 1", n)
	}
}

func TestRunClassifiesFailures(t *testing.T) {
	tests := []struct {
		name     string
		page     fakePage
		opts     []Option
		expected string
	}{
		{
			name:     "Deadline exceeded",
			page:     fakePage{err: fmt.Errorf("failed to fetch URL: %w", context.DeadlineExceeded)},
			expected: model.ETIMEOUT,
		},
		{
			name:     "Connection refused",
			page:     fakePage{err: errors.New("dial tcp: connection refused")},
			expected: model.ENETWORK,
		},
		{
			name:     "Not found",
			page:     fakePage{status: 404},
			expected: "http_error:404",
		},
		{
			name:     "Redirect not followed",
			page:     fakePage{status: 302},
			expected: "http_error:302",
		},
		{
			name:     "Content too short",
			page:     fakePage{status: 200, body: spamHTML},
			opts:     []Option{WithMinContentChars(200)},
			expected: model.ETOOSHORT,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _ := newTestScraper(t, map[string]fakePage{testSections[0].URL: tt.page}, tt.opts...)

			report, err := s.Run(context.Background(), testSections[:1], false)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			res := report.Results.Get(testSections[0].Name)
			if res.Metadata.Error != tt.expected {
				t.Errorf("Error = %q, want %q", res.Metadata.Error, tt.expected)
			}
			if res.Succeeded() || res.Content != nil {
				t.Errorf("result = %+v, want failure without content", res)
			}
			if report.SuccessRate != 0 {
				t.Errorf("SuccessRate = %v, want 0", report.SuccessRate)
			}
		})
	}
}

func TestSelect(t *testing.T) {
	s, fetcher, _ := newTestScraper(t, nil)

	all, err := s.Select(nil)
	if err != nil {
		t.Fatalf("Select(nil) error = %v", err)
	}
	if !reflect.DeepEqual(all, testSections) {
		t.Errorf("Select(nil) = %v, want every section", all)
	}

	got, err := s.Select([]string{"Hateful Conduct", "Spam", "Hateful Conduct"})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if want := []model.Target{testSections[1], testSections[0]}; !reflect.DeepEqual(got, want) {
		t.Errorf("Select() = %v, want %v", got, want)
	}

	_, err = s.Select([]string{"Spam", "NotASection"})
	if code := model.ErrorCode(err); code != model.ETARGETNOTFOUND {
		t.Errorf("Select() error code = %q, want %q", code, model.ETARGETNOTFOUND)
	}
	if err != nil && !strings.Contains(err.Error(), "NotASection") {
		t.Errorf("Select() error = %v, want it to name the unknown section", err)
	}
	if n := len(fetcher.Calls()); n != 0 {
		t.Errorf("fetch calls = %d, want 0", n)
	}
}

func TestScrapeOne(t *testing.T) {
	tests := []struct {
		name        string
		section     string
		url         string
		wantCode    string
		wantURL     string
		wantFetches int
	}{
		{name: "Registered section", section: "Spam", wantURL: testSections[0].URL, wantFetches: 1},
		{name: "Main page by name", section: "Main Page", wantURL: testMain.URL, wantFetches: 1},
		{name: "Unknown section", section: "NotASection", wantCode: model.ETARGETNOTFOUND},
		{name: "Missing name and url", wantCode: model.EINVALID},
		{name: "Override url", section: "Spam", url: "https://mirror.example.net/spam", wantURL: "https://mirror.example.net/spam", wantFetches: 1},
		{name: "Override without host", section: "Spam", url: "/spam", wantCode: model.EINVALID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, fetcher, _ := newTestScraper(t, nil)

			res, err := s.ScrapeOne(context.Background(), tt.section, tt.url)
			if code := model.ErrorCode(err); code != tt.wantCode {
				t.Fatalf("ScrapeOne() error = %v, want code %q", err, tt.wantCode)
			}
			if n := len(fetcher.Calls()); n != tt.wantFetches {
				t.Errorf("fetch calls = %d, want %d", n, tt.wantFetches)
			}
			if tt.wantCode != "" {
				return
			}
			if res.Metadata.URL != tt.wantURL || !res.Succeeded() {
				t.Errorf("ScrapeOne() = %+v, want success from %s", res.Metadata, tt.wantURL)
			}
		})
	}
}

func TestRunRejectsInvalidBatch(t *testing.T) {
	s, fetcher, _ := newTestScraper(t, nil)

	_, err := s.Run(context.Background(), []model.Target{testSections[0], testSections[0]}, false)
	if code := model.ErrorCode(err); code != model.EINVALID {
		t.Errorf("Run() error code = %q, want %q", code, model.EINVALID)
	}
	if n := len(fetcher.Calls()); n != 0 {
		t.Errorf("fetch calls = %d, want 0", n)
	}
}

type recordingObserver struct {
	statuses []model.Status
}

func (o *recordingObserver) TargetScraped(result *model.TargetResult, elapsed time.Duration) {
	o.statuses = append(o.statuses, result.Metadata.Status)
}

func TestRunNotifiesObserver(t *testing.T) {
	obs := &recordingObserver{}
	s, _, _ := newTestScraper(t, map[string]fakePage{testSections[0].URL: {status: 503}}, WithObserver(obs))

	if _, err := s.Run(context.Background(), testSections[:2], false); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := []model.Status{model.StatusFailure, model.StatusSuccess}
	if !reflect.DeepEqual(obs.statuses, want) {
		t.Errorf("observed = %v, want %v", obs.statuses, want)
	}
}
