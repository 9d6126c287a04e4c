package report

import (
	"strings"
	"testing"
	"time"

	"policyscraper/internal/model"
)

func TestRenderMarkdown(t *testing.T) {
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	ok := model.NewSuccess(model.Target{Name: "Spam", URL: "https://example.com/spam/"}, now,
		&model.ExtractionResult{
			Title:   "Spam",
			RawText: "Spam Don't spam.",
			StructuredContent: model.StructuredContent{
				Headings:   []model.Heading{{Level: 1, Text: "Spam", Tag: "h1"}},
				Paragraphs: []string{"Don't spam."},
			},
		})
	failed := model.NewFailure(model.Target{Name: "Bullying", URL: "https://example.com/bullying/"}, now, "http_error:503")

	r := &model.SessionReport{Timestamp: now, Results: model.Results{ok, failed}}
	r.Aggregate()

	got, err := RenderMarkdown(r)
	if err != nil {
		t.Fatalf("RenderMarkdown() error = %v", err)
	}

	for _, want := range []string{
		"# Policy Scraping Report",
		"## Successful Sections",
		"## Failed Sections",
		"50.0%",
		"| Spam ",
		"Bullying (https://example.com/bullying/): http_error:503",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderMarkdown() missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "not scraped") {
		t.Errorf("complete report rendered a deadline warning:\n%s", got)
	}
}

func TestRenderMarkdownPartial(t *testing.T) {
	r := &model.SessionReport{Partial: true, Skipped: []string{"Spam", "Hateful Conduct"}}

	got, err := RenderMarkdown(r)
	if err != nil {
		t.Fatalf("RenderMarkdown() error = %v", err)
	}
	if !strings.Contains(got, "2 targets were not scraped: Spam, Hateful Conduct") {
		t.Errorf("RenderMarkdown() missing deadline warning:\n%s", got)
	}
	if strings.Count(got, "None.") != 2 {
		t.Errorf("RenderMarkdown() = %s, want both sections empty", got)
	}
}
