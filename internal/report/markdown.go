// Package report renders session reports for people rather than programs.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"policyscraper/internal/model"
)

// WriteMarkdown writes a human-readable summary of report to w.
func WriteMarkdown(w io.Writer, report *model.SessionReport) error {
	md := markdown.NewMarkdown(w)

	md.H1("Policy Scraping Report")
	md.PlainText("")

	writeSession(md, report)
	writeSuccessful(md, report)
	writeFailed(md, report)

	md.HorizontalRule()
	md.PlainText("Each JSON document holds `metadata` (section, url, scraped_at, status), " +
		"`content` (title, raw_text, structured_content) and `statistics` " +
		"(character, word, paragraph and heading counts).")

	return md.Build()
}

// RenderMarkdown returns the markdown summary as a string.
func RenderMarkdown(report *model.SessionReport) (string, error) {
	var buf bytes.Buffer
	if err := WriteMarkdown(&buf, report); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func writeSession(md *markdown.Markdown, report *model.SessionReport) {
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Scraping started", report.Timestamp.Format(time.RFC3339)},
			{"Total targets", strconv.Itoa(report.TotalTargets)},
			{"Successful", strconv.Itoa(report.Successful)},
			{"Failed", strconv.Itoa(report.Failed)},
			{"Success rate", fmt.Sprintf("%.1f%%", report.SuccessRate)},
		},
	})
	md.PlainText("")

	if report.Partial {
		md.Warningf("Batch deadline reached; %d targets were not scraped: %s",
			len(report.Skipped), strings.Join(report.Skipped, ", "))
	}
}

func writeSuccessful(md *markdown.Markdown, report *model.SessionReport) {
	md.H2("Successful Sections")
	md.PlainText("")

	var rows [][]string
	for _, r := range report.Results {
		if !r.Succeeded() {
			continue
		}
		st := r.Statistics
		rows = append(rows, []string{
			r.Metadata.SectionName,
			strconv.Itoa(st.CharacterCount),
			strconv.Itoa(st.WordCount),
			strconv.Itoa(st.ParagraphCount),
			strconv.Itoa(st.HeadingCount),
		})
	}

	if len(rows) == 0 {
		md.PlainText("None.")
		md.PlainText("")
		return
	}

	md.Table(markdown.TableSet{
		Header: []string{"Section", "Characters", "Words", "Paragraphs", "Headings"},
		Rows:   rows,
	})
	md.PlainText("")
}

func writeFailed(md *markdown.Markdown, report *model.SessionReport) {
	md.H2("Failed Sections")
	md.PlainText("")

	var items []string
	for _, r := range report.Results {
		if r.Succeeded() {
			continue
		}
		items = append(items, fmt.Sprintf("%s (%s): %s", r.Metadata.SectionName, r.Metadata.URL, r.Metadata.Error))
	}

	if len(items) == 0 {
		md.PlainText("None.")
		md.PlainText("")
		return
	}
	md.BulletList(items...)
	md.PlainText("")
}
