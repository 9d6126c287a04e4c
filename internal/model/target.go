package model

import "time"

type Target struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

type Metadata struct {
	SectionName string    `json:"section_name"`
	URL         string    `json:"url"`
	ScrapedAt   time.Time `json:"scraped_at"`
	Status      Status    `json:"status"`
	Error       string    `json:"error,omitempty"`
}

// TargetResult is the outcome of scraping one target. A failed result never
// carries content or statistics.
type TargetResult struct {
	Metadata   Metadata          `json:"metadata"`
	Content    *ExtractionResult `json:"content,omitempty"`
	Statistics *Statistics       `json:"statistics,omitempty"`
}

// NewSuccess builds a successful result with statistics recomputed from content.
func NewSuccess(t Target, scrapedAt time.Time, content *ExtractionResult) *TargetResult {
	stats := ComputeStatistics(content)
	return &TargetResult{
		Metadata: Metadata{
			SectionName: t.Name,
			URL:         t.URL,
			ScrapedAt:   scrapedAt,
			Status:      StatusSuccess,
		},
		Content:    content,
		Statistics: &stats,
	}
}

func NewFailure(t Target, scrapedAt time.Time, reason string) *TargetResult {
	return &TargetResult{
		Metadata: Metadata{
			SectionName: t.Name,
			URL:         t.URL,
			ScrapedAt:   scrapedAt,
			Status:      StatusFailure,
			Error:       reason,
		},
	}
}

func (r *TargetResult) Succeeded() bool {
	return r != nil && r.Metadata.Status == StatusSuccess
}
