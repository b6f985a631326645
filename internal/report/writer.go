package report

import (
	"io"

	"github.com/nao1215/careercrawl/internal/model"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs the full report of one company.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.CompanyReport) (int, error)

	// WriteSummaries outputs a one-line-per-company overview of a batch.
	WriteSummaries(summaries []model.Summary) (int, error)
}

// MultiWriter writes to multiple Writers in turn.
// It stops on the first error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers and returns the total
// bytes written.
func (m *MultiWriter) Write(report *model.CompanyReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteSummaries outputs the summaries to all configured Writers.
func (m *MultiWriter) WriteSummaries(summaries []model.Summary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteSummaries(summaries)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Summarize returns the summaries of reports in order.
func Summarize(reports []*model.CompanyReport) []model.Summary {
	summaries := make([]model.Summary, 0, len(reports))
	for _, r := range reports {
		if r != nil {
			summaries = append(summaries, r.Summarize())
		}
	}
	return summaries
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// displayName returns the company name, falling back to the website.
func displayName(company, website string) string {
	if company != "" {
		return company
	}
	return website
}

// orDash returns s, or "-" when s is empty.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncateString truncates s to maxLen runes with an ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
