package service

import (
	"time"

	"policyscraper/internal/model"
	"policyscraper/internal/report"
)

// Project shapes report for the response boundary. It never modifies report,
// so cached reports can be projected any number of times.
func Project(r *model.SessionReport, format model.Format) (model.Projection, error) {
	switch format {
	case model.FormatFull:
		return FullProjection(r), nil
	case model.FormatSummary:
		return SummaryProjection(r), nil
	case model.FormatMarkdown:
		text, err := report.RenderMarkdown(r)
		if err != nil {
			return nil, err
		}
		return model.MarkdownReport{Text: text}, nil
	}
	return nil, model.Errorf(model.EINVALID, "unsupported format %q", format)
}

// FullProjection returns every target result verbatim.
func FullProjection(r *model.SessionReport) model.FullReport {
	return model.FullReport{
		ScrapingSession: r,
		Data:            r.Results,
	}
}

// SummaryProjection keeps only the status and statistics of each target.
// The main page, scraped first, goes to MainPageSummary.
func SummaryProjection(r *model.SessionReport) model.SummaryReport {
	out := model.SummaryReport{
		SessionInfo:     r,
		SectionsSummary: make(model.SectionSummaries, 0, len(r.Results)),
	}
	for i, res := range r.Results {
		s := summarize(res)
		if r.IncludeMainPage && i == 0 {
			out.MainPageSummary = &s
			continue
		}
		out.SectionsSummary = append(out.SectionsSummary, s)
	}
	return out
}

func summarize(res *model.TargetResult) model.SectionSummary {
	s := model.SectionSummary{
		Name:   res.Metadata.SectionName,
		Status: res.Metadata.Status,
		Error:  res.Metadata.Error,
	}
	if res.Statistics != nil {
		stats := *res.Statistics
		s.Statistics = &stats
	}
	return s
}

// SingleProjection wraps a single-target result with its session header.
func SingleProjection(res *model.TargetResult, now time.Time) model.SingleReport {
	return model.SingleReport{
		ScrapingSession: model.SingleSession{
			Timestamp:   now,
			SectionName: res.Metadata.SectionName,
			URL:         res.Metadata.URL,
			Status:      res.Metadata.Status,
		},
		Data: res,
	}
}
