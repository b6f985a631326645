package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/careercrawl/internal/model"
)

// createTestReport creates a report with sample data for testing.
func createTestReport() *model.CompanyReport {
	r := model.NewCompanyReport(model.Company{Name: "Acme", Website: "https://acme.com"})
	r.DateScanned = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r.CareerLink = "https://acme.com/careers"
	r.CareerSource = model.SourceAnchor
	r.JobBoardLink = "https://boards.example.com/acme"
	r.ListingURL = "https://boards.example.com/acme"
	r.Template = []string{"div", "a", "span"}
	r.TemplateCount = 3
	r.DistinctPatterns = 5
	r.LinksFound = 4
	r.LinksSkipped = 1
	r.JobURLs = []string{"https://boards.example.com/acme/1", "https://boards.example.com/acme/2"}
	r.AddCrawl("https://acme.com/", 200)
	r.AddCrawl("https://acme.com/careers", 200)
	r.AddCrawl("https://boards.example.com/acme/2", 404)
	r.PagesRendered = 2
	r.AddJob(model.Job{
		Website:     "https://acme.com",
		URL:         "https://boards.example.com/acme/1",
		Title:       "Platform Engineer",
		Description: "Run the platform.",
		Markdown:    "Run the **platform**.",
	})
	r.Advance(model.StatusJobsFound)
	return r
}

// TestSimpleWriter tests the human-readable report writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes every section", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewSimpleWriter(&buf).Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("expected %d bytes reported, got %d", buf.Len(), n)
		}

		output := buf.String()
		for _, want := range []string{
			"CAREERCRAWL REPORT",
			"Company:        Acme",
			"Status:         JOBS_FOUND",
			"Pages Crawled:  3",
			"Pages Rendered: 2",
			"https://acme.com/careers (anchor)",
			"Job board:      https://boards.example.com/acme",
			"Template:       div > a > span",
			"3 of 5 distinct patterns",
			"4 found, 1 skipped, 2 to visit",
			"* Platform Engineer",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q\n%s", want, output)
			}
		}
		if strings.Contains(output, "Description:") {
			t.Error("expected descriptions only in verbose mode")
		}
	})

	t.Run("verbose adds descriptions and pages", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(createTestReport()); err != nil {
			t.Fatal(err)
		}
		output := buf.String()
		if !strings.Contains(output, "Description: Run the platform.") {
			t.Error("expected description in verbose output")
		}
		if !strings.Contains(output, "[404] https://boards.example.com/acme/2") {
			t.Error("expected crawled pages in verbose output")
		}
	})

	t.Run("hides empty sections unless asked", func(t *testing.T) {
		t.Parallel()

		r := model.NewCompanyReport(model.Company{Website: "https://globex.com"})
		r.Advance(model.StatusNoCareerPage)

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(r); err != nil {
			t.Fatal(err)
		}
		if strings.Contains(buf.String(), "CAREERS PAGE") {
			t.Error("expected careers section to be hidden")
		}

		buf.Reset()
		if _, err := NewSimpleWriter(&buf, WithShowEmpty(true)).Write(r); err != nil {
			t.Fatal(err)
		}
		for _, want := range []string{"No careers page found", "No template inferred", "No jobs read"} {
			if !strings.Contains(buf.String(), want) {
				t.Errorf("expected %q with empty sections shown", want)
			}
		}
	})

	t.Run("shows errors and timeouts", func(t *testing.T) {
		t.Parallel()

		r := model.NewCompanyReport(model.Company{Website: "https://acme.com"})
		r.SetError(errors.New("careers page unreachable"))

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(r); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "FAILED - careers page unreachable") {
			t.Errorf("expected error in status line, got\n%s", buf.String())
		}

		r.TimedOut = true
		buf.Reset()
		if _, err := NewSimpleWriter(&buf).Write(r); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "timed out") {
			t.Error("expected timeout in status line")
		}
	})

	t.Run("summaries", func(t *testing.T) {
		t.Parallel()

		other := model.NewCompanyReport(model.Company{Website: "https://globex.com"})
		other.Advance(model.StatusNoTemplate)

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteSummaries(Summarize([]*model.CompanyReport{createTestReport(), other, nil})); err != nil {
			t.Fatal(err)
		}
		output := buf.String()
		for _, want := range []string{"Companies: 2  Jobs: 1", "JOBS_FOUND:", "NO_TEMPLATE:", "https://globex.com"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected %q in\n%s", want, output)
			}
		}
	})
}

// TestJSONWriter tests JSON output.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("compact report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatal(err)
		}
		if strings.Count(buf.String(), "\n") != 1 {
			t.Error("expected a single line of compact JSON")
		}

		var decoded model.CompanyReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.Status != model.StatusJobsFound || len(decoded.Jobs) != 1 {
			t.Errorf("unexpected decoded report %+v", decoded)
		}
		if !strings.Contains(buf.String(), `"status":"JOBS_FOUND"`) {
			t.Error("expected status by name")
		}
	})

	t.Run("pretty print", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestReport()); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "\n  \"website\"") {
			t.Errorf("expected indented output, got %s", buf.String())
		}
	})

	t.Run("summaries", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).WriteSummaries(nil); err != nil {
			t.Fatal(err)
		}
		if strings.TrimSpace(buf.String()) != "[]" {
			t.Errorf("expected empty array, got %s", buf.String())
		}

		buf.Reset()
		if _, err := NewJSONWriter(&buf).WriteSummaries(Summarize([]*model.CompanyReport{createTestReport()})); err != nil {
			t.Fatal(err)
		}
		var decoded []model.Summary
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(decoded) != 1 || decoded[0].Template != "div > a > span" || decoded[0].JobsRead != 1 {
			t.Errorf("unexpected summaries %+v", decoded)
		}
	})

	t.Run("full report carries version", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewFullJSONWriter(&buf, "v1.2.3").Write(createTestReport()); err != nil {
			t.Fatal(err)
		}
		var decoded struct {
			Version string              `json:"version"`
			Report  model.CompanyReport `json:"report"`
			Summary model.Summary       `json:"summary"`
		}
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.Version != "v1.2.3" || decoded.Report.Website != "https://acme.com" || decoded.Summary.CareerSource != "anchor" {
			t.Errorf("unexpected wrapper %+v", decoded)
		}
	})
}

// TestMarkdownWriter tests Markdown output.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		for _, want := range []string{
			"# careercrawl Report: Acme",
			"## Careers Page",
			"## Listing Template",
			"Pages Rendered",
			"div > a > span",
			"## Jobs",
			"Platform Engineer",
			"mermaid",
			"Report generated by",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q\n%s", want, output)
			}
		}
	})

	t.Run("failed report", func(t *testing.T) {
		t.Parallel()

		r := model.NewCompanyReport(model.Company{Website: "https://acme.com"})
		r.SetError(errors.New("careers page unreachable"))

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(r); err != nil {
			t.Fatal(err)
		}
		output := buf.String()
		if !strings.Contains(output, "careers page unreachable") {
			t.Error("expected error in alert")
		}
		if strings.Contains(output, "## Jobs") {
			t.Error("expected no jobs section")
		}
	})

	t.Run("summaries", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteSummaries(Summarize([]*model.CompanyReport{createTestReport()})); err != nil {
			t.Fatal(err)
		}
		output := buf.String()
		if !strings.Contains(output, "Acme") || !strings.Contains(output, "JOBS_FOUND") {
			t.Errorf("expected company table, got\n%s", output)
		}

		buf.Reset()
		if _, err := NewMarkdownWriter(&buf).WriteSummaries(nil); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "No companies scanned.") {
			t.Error("expected empty message")
		}
	})
}

// TestMultiWriter tests writing to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var text, js bytes.Buffer
	mw := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&js))

	n, err := mw.Write(createTestReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != text.Len()+js.Len() {
		t.Errorf("expected %d bytes, got %d", text.Len()+js.Len(), n)
	}
	if text.Len() == 0 || js.Len() == 0 {
		t.Error("expected both writers to receive the report")
	}

	if _, err := mw.WriteSummaries(nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text.String(), "SUMMARY") || !strings.Contains(js.String(), "[]") {
		t.Error("expected both writers to receive summaries")
	}

	failing := NewMultiWriter(NewSimpleWriter(errWriter{}), NewJSONWriter(&js))
	if _, err := failing.Write(createTestReport()); err == nil {
		t.Error("expected error from failing writer")
	}
}

// TestTruncateString tests rune-aware truncation.
func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a longer string", 8, "a lon..."},
		{"日本語の求人情報", 5, "日本..."},
		{"abcdef", 2, "ab"},
	}
	for _, tt := range tests {
		if got := truncateString(tt.in, tt.max); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

type errWriter struct{}

func (errWriter) Write([]byte) (int, error) { return 0, errors.New("write failed") }
