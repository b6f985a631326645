package report

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/careercrawl/internal/model"
)

// MarkdownWriter outputs reports in Markdown format for sharing.
//
// Design decision: We use the nao1215/markdown library for tables, alerts
// and mermaid charts instead of formatting Markdown by hand.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.CompanyReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeAlert(md, report)
	w.writeDiscovery(md, report)
	w.writeTemplate(md, report)
	w.writeJobs(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteSummaries outputs a company table and a status chart.
func (w *MarkdownWriter) WriteSummaries(summaries []model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("careercrawl Summary")
	md.PlainText("")

	if len(summaries) == 0 {
		md.PlainText("No companies scanned.")
		md.PlainText("")
		w.writeFooter(md)
		return len(md.String()), md.Build()
	}

	rows := make([][]string, 0, len(summaries))
	counts := make(map[model.Status]int)
	for _, s := range summaries {
		counts[s.Status]++
		rows = append(rows, []string{
			displayName(s.Company, s.Website),
			statusText(s.Status),
			orDash(s.Template),
			strconv.Itoa(s.JobsRead),
			orDash(s.ListingURL),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Company", "Status", "Template", "Jobs", "Listing"},
		Rows:   rows,
	})
	md.PlainText("")

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Company Status"),
		piechart.WithShowData(true),
	)
	for st := model.StatusJobsFound; st >= model.StatusPending; st-- {
		if counts[st] > 0 {
			chart.LabelAndIntValue(st.String(), uint64(counts[st])) //nolint:gosec // counts are positive
		}
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.CompanyReport) {
	md.H1("careercrawl Report: " + displayName(report.Company, report.Website))
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Website", report.Website},
			{"Scan Date", report.DateScanned.Format("2006-01-02 15:04:05 MST")},
			{"Pages Crawled", strconv.Itoa(len(report.Crawls))},
			{"Pages Rendered", strconv.Itoa(report.PagesRendered)},
			{"Status", statusText(report.Status)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.CompanyReport) {
	switch {
	case report.TimedOut:
		md.Warningf("The run timed out. Results are partial (%d jobs read).", len(report.Jobs))
	case report.Status == model.StatusFailed:
		md.Cautionf("The run failed: %s", report.ErrorMessage)
	case report.Status == model.StatusNoCareerPage:
		md.Importantf("No careers page was found for %s.", report.Website)
	case report.Status == model.StatusNoTemplate:
		md.Note("The listing page had no repeated job entries.")
	case report.Status == model.StatusNoJobs:
		md.Note("A listing template was found but no job links survived filtering.")
	default:
		md.Tip(fmt.Sprintf("%d job(s) read from %d job link(s).", len(report.Jobs), len(report.JobURLs)))
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeDiscovery(md *markdown.Markdown, report *model.CompanyReport) {
	if report.CareerLink == "" {
		return
	}
	md.H2("Careers Page")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Page", "URL"},
		Rows: [][]string{
			{"Careers page (" + report.CareerSource.String() + ")", report.CareerLink},
			{"Job board", orDash(report.JobBoardLink)},
			{"Listing page", orDash(report.ListingURL)},
		},
	})
	md.PlainText("")

	if len(report.Crawls) > 0 {
		w.writeCrawlChart(md, report.Crawls)
	}
}

// writeCrawlChart writes a mermaid pie chart of page status classes.
func (w *MarkdownWriter) writeCrawlChart(md *markdown.Markdown, crawls map[string]int) {
	classes := map[string]uint64{}
	for _, code := range crawls {
		classes[statusClass(code)]++
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Page Status"),
		piechart.WithShowData(true),
	)
	for _, label := range []string{"2xx", "3xx", "4xx", "5xx", "no response"} {
		if classes[label] > 0 {
			chart.LabelAndIntValue(label, classes[label])
		}
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeTemplate(md *markdown.Markdown, report *model.CompanyReport) {
	if len(report.Template) == 0 {
		return
	}
	md.H2("Listing Template")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Template", "`" + strings.Join(report.Template, " > ") + "`"},
			{"Matches", strconv.Itoa(report.TemplateCount)},
			{"Distinct patterns", strconv.Itoa(report.DistinctPatterns)},
			{"Links found", strconv.Itoa(report.LinksFound)},
			{"Links skipped", strconv.Itoa(report.LinksSkipped)},
			{"Job links", strconv.Itoa(len(report.JobURLs))},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeJobs(md *markdown.Markdown, report *model.CompanyReport) {
	if len(report.Jobs) == 0 {
		return
	}
	md.H2("Jobs")
	md.PlainText("")

	rows := make([][]string, len(report.Jobs))
	for i, j := range report.Jobs {
		rows[i] = []string{
			truncateString(orDash(j.Title), 60),
			j.URL,
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Title", "URL"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, j := range report.Jobs {
		body := j.Markdown
		if body == "" {
			body = j.Description
		}
		if body != "" && j.Title != "" {
			md.Details(j.Title, body)
		}
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [careercrawl](https://github.com/nao1215/careercrawl)*")
}

func statusText(s model.Status) string {
	switch s {
	case model.StatusJobsFound:
		return "✅ " + s.String()
	case model.StatusFailed:
		return "❌ " + s.String()
	case model.StatusPending:
		return "⏳ " + s.String()
	default:
		return "⚠️ " + s.String()
	}
}

func statusClass(code int) string {
	switch {
	case code >= http.StatusInternalServerError:
		return "5xx"
	case code >= http.StatusBadRequest:
		return "4xx"
	case code >= http.StatusMultipleChoices:
		return "3xx"
	case code >= http.StatusOK:
		return "2xx"
	default:
		return "no response"
	}
}
