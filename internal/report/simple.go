package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/nao1215/careercrawl/internal/model"
)

const ruleWidth = 70

// SimpleWriter outputs human-readable text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with nothing to show are written.
	showEmpty bool

	// verbose adds job descriptions and the crawled pages.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the full report in human-readable format.
func (w *SimpleWriter) Write(report *model.CompanyReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeDiscovery(&sb, report)
	w.writeTemplate(&sb, report)
	w.writeJobs(&sb, report)
	if w.verbose {
		w.writeCrawls(&sb, report)
	}
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

// WriteSummaries outputs one line per company.
func (w *SimpleWriter) WriteSummaries(summaries []model.Summary) (int, error) {
	var sb strings.Builder

	writeSection(&sb, "SUMMARY")
	counts := make(map[model.Status]int)
	jobs := 0
	for _, s := range summaries {
		counts[s.Status]++
		jobs += s.JobsRead
		fmt.Fprintf(&sb, "  %-14s %-30s %3d jobs  %s\n",
			s.Status, truncateString(displayName(s.Company, s.Website), 30), s.JobsRead, s.ListingURL)
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "  Companies: %d  Jobs: %d\n", len(summaries), jobs)
	for st := model.StatusJobsFound; st >= model.StatusPending; st-- {
		if counts[st] > 0 {
			fmt.Fprintf(&sb, "  %-14s %d\n", st.String()+":", counts[st])
		}
	}
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.CompanyReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("                        CAREERCRAWL REPORT\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")

	if report.Company != "" {
		fmt.Fprintf(sb, "Company:        %s\n", report.Company)
	}
	fmt.Fprintf(sb, "Website:        %s\n", report.Website)
	fmt.Fprintf(sb, "Scan Date:      %s\n", report.DateScanned.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Pages Crawled:  %d\n", len(report.Crawls))
	fmt.Fprintf(sb, "Pages Rendered: %d\n", report.PagesRendered)

	switch {
	case report.TimedOut:
		fmt.Fprintf(sb, "Status:         %s (timed out, partial results)\n", report.Status)
	case report.ErrorMessage != "":
		fmt.Fprintf(sb, "Status:         %s - %s\n", report.Status, report.ErrorMessage)
	default:
		fmt.Fprintf(sb, "Status:         %s\n", report.Status)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeDiscovery(sb *strings.Builder, report *model.CompanyReport) {
	if report.CareerLink == "" && !w.showEmpty {
		return
	}
	writeSection(sb, "CAREERS PAGE")

	if report.CareerLink == "" {
		sb.WriteString("  No careers page found\n\n")
		return
	}
	fmt.Fprintf(sb, "  Careers page:   %s (%s)\n", report.CareerLink, report.CareerSource)
	if report.JobBoardLink != "" {
		fmt.Fprintf(sb, "  Job board:      %s\n", report.JobBoardLink)
	}
	if report.ListingURL != "" {
		fmt.Fprintf(sb, "  Listing page:   %s\n", report.ListingURL)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeTemplate(sb *strings.Builder, report *model.CompanyReport) {
	if len(report.Template) == 0 && !w.showEmpty {
		return
	}
	writeSection(sb, "LISTING TEMPLATE")

	if len(report.Template) == 0 {
		sb.WriteString("  No template inferred\n\n")
		return
	}
	fmt.Fprintf(sb, "  Template:       %s\n", strings.Join(report.Template, " > "))
	fmt.Fprintf(sb, "  Matches:        %d of %d distinct patterns\n", report.TemplateCount, report.DistinctPatterns)
	fmt.Fprintf(sb, "  Links:          %d found, %d skipped, %d to visit\n",
		report.LinksFound, report.LinksSkipped, len(report.JobURLs))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeJobs(sb *strings.Builder, report *model.CompanyReport) {
	if len(report.Jobs) == 0 && !w.showEmpty {
		return
	}
	writeSection(sb, "JOBS")

	if len(report.Jobs) == 0 {
		sb.WriteString("  No jobs read\n\n")
		return
	}
	for _, j := range report.Jobs {
		fmt.Fprintf(sb, "  * %s\n", orDash(j.Title))
		fmt.Fprintf(sb, "    URL: %s\n", j.URL)
		if w.verbose && j.Description != "" {
			fmt.Fprintf(sb, "    Description: %s\n", truncateString(j.Description, 200))
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeCrawls(sb *strings.Builder, report *model.CompanyReport) {
	if len(report.Crawls) == 0 {
		return
	}
	writeSection(sb, "PAGES")

	urls := make([]string, 0, len(report.Crawls))
	for u := range report.Crawls {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	for _, u := range urls {
		fmt.Fprintf(sb, "  [%3d] %s\n", report.Crawls[u], u)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("Report generated by careercrawl\n")
	sb.WriteString("https://github.com/nao1215/careercrawl\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
}

func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}
