package model

import "time"

type Format string

const (
	FormatFull     Format = "json"
	FormatSummary  Format = "summary"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts "json" (or "full"), "summary" and "markdown"; the empty
// string selects the full format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "json", "full":
		return FormatFull, nil
	case "summary":
		return FormatSummary, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", Errorf(EINVALID, "unsupported format %q", s)
}

// Projection is one response shape of a SessionReport.
type Projection interface {
	Format() Format
}

type FullReport struct {
	ScrapingSession *SessionReport `json:"scraping_session"`
	Data            Results        `json:"data"`
	StorageURLs     *StorageURLs   `json:"storage,omitempty"`
	StorageWarning  string         `json:"storage_warning,omitempty"`
}

func (FullReport) Format() Format { return FormatFull }

// SummaryReport lists the main page, when scraped, apart from the sections.
type SummaryReport struct {
	SessionInfo     *SessionReport   `json:"session_info"`
	MainPageSummary *SectionSummary  `json:"main_page_summary,omitempty"`
	SectionsSummary SectionSummaries `json:"sections_summary"`
	StorageURLs     *StorageURLs     `json:"storage,omitempty"`
	StorageWarning  string           `json:"storage_warning,omitempty"`
}

func (SummaryReport) Format() Format { return FormatSummary }

// SectionSummary keeps the status and statistics of a result and nothing of
// its content.
type SectionSummary struct {
	Name       string      `json:"-"`
	Filename   string      `json:"filename,omitempty"`
	Status     Status      `json:"status"`
	Error      string      `json:"error,omitempty"`
	Statistics *Statistics `json:"statistics,omitempty"`
}

type SectionSummaries []SectionSummary

func (ss SectionSummaries) MarshalJSON() ([]byte, error) {
	keys := make([]string, len(ss))
	vals := make([]any, len(ss))
	for i, s := range ss {
		keys[i] = s.Name
		vals[i] = s
	}
	return marshalOrdered(keys, vals)
}

type MarkdownReport struct {
	Text string
}

func (MarkdownReport) Format() Format { return FormatMarkdown }

// StorageURLs lists where the documents of a session were persisted.
type StorageURLs struct {
	SessionID string            `json:"session_id"`
	Summary   string            `json:"summary,omitempty"`
	Targets   map[string]string `json:"targets,omitempty"`
}

// SingleReport is the response of a single-target scrape.
type SingleReport struct {
	ScrapingSession SingleSession `json:"scraping_session"`
	Data            *TargetResult `json:"data"`
}

type SingleSession struct {
	Timestamp   time.Time `json:"timestamp"`
	SectionName string    `json:"section_name"`
	URL         string    `json:"url"`
	Status      Status    `json:"status"`
}
