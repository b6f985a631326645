package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/careercrawl/internal/config"
	"github.com/nao1215/careercrawl/internal/database"
	"github.com/nao1215/careercrawl/internal/model"
)

// seedHistory creates a database in a temporary directory holding one run
// with two jobs for acme.com.
func seedHistory(t *testing.T) (string, *database.CrawlDB) {
	t.Helper()

	dir := t.TempDir()
	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() }) //nolint:errcheck // test cleanup

	ctx := t.Context()
	r := model.NewCompanyReport(model.Company{Name: "Acme", Website: "https://acme.com"})
	r.CareerLink = "https://acme.com/careers"
	now := time.Now()
	for i, title := range []string{"Backend Engineer", "Data Analyst"} {
		job := model.Job{
			Website:     "https://acme.com",
			URL:         "https://acme.com/jobs/" + string(rune('1'+i)),
			Title:       title,
			Description: "Work on things.",
			FetchedAt:   now.Add(time.Duration(i) * time.Second),
		}
		r.AddJob(job)
		if err := db.InsertJob(ctx, job); err != nil {
			t.Fatal(err)
		}
	}
	r.Advance(model.StatusJobsFound)
	if err := db.SaveCompanyReport(ctx, r); err != nil {
		t.Fatal(err)
	}
	return dir, db
}

// TestRunHistory tests each history mode against a seeded database.
func TestRunHistory(t *testing.T) {
	t.Parallel()

	_, db := seedHistory(t)

	tests := []struct {
		name    string
		opts    historyOptions
		want    []string
		wantErr string
	}{
		{
			name: "list websites",
			opts: historyOptions{},
			want: []string{"Scanned websites (1):", "https://acme.com"},
		},
		{
			name: "list runs",
			opts: historyOptions{website: "acme.com"},
			want: []string{"Runs for acme.com (1):", "JOBS_FOUND"},
		},
		{
			name: "no runs",
			opts: historyOptions{website: "globex.com"},
			want: []string{"No runs found for globex.com."},
		},
		{
			name: "list jobs",
			opts: historyOptions{website: "acme.com", jobs: true},
			want: []string{"Jobs (2):", "Backend Engineer", "https://acme.com/jobs/2"},
		},
		{
			name: "no jobs",
			opts: historyOptions{website: "globex.com", jobs: true},
			want: []string{"No jobs found."},
		},
		{
			name: "show report",
			opts: historyOptions{id: 1},
			want: []string{"CAREERCRAWL REPORT", "Data Analyst"},
		},
		{
			name: "show report as markdown",
			opts: historyOptions{id: 1, markdown: true},
			want: []string{"# careercrawl Report: Acme"},
		},
		{
			name:    "unknown report",
			opts:    historyOptions{id: 99},
			wantErr: "no report with ID 99",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := runHistory(t.Context(), db, tt.opts, &buf)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("expected error %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("expected output to contain %q, got:\n%s", want, buf.String())
				}
			}
		})
	}

	t.Run("show report as JSON", func(t *testing.T) {
		var buf bytes.Buffer
		if err := runHistory(t.Context(), db, historyOptions{id: 1, json: true}, &buf); err != nil {
			t.Fatal(err)
		}
		var got model.CompanyReport
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got.Website != "https://acme.com" || len(got.Jobs) != 2 {
			t.Errorf("unexpected report %+v", got)
		}
	})
}

// TestRunHistoryCmd tests the command wiring.
func TestRunHistoryCmd(t *testing.T) {
	t.Parallel()

	t.Run("missing database", func(t *testing.T) {
		t.Parallel()

		cmd := NewHistoryCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{"--db-dir", filepath.Join(t.TempDir(), "none")})
		err := cmd.Execute()
		if err == nil || !strings.Contains(err.Error(), "no scan history yet") {
			t.Errorf("expected 'no scan history yet', got %v", err)
		}
	})

	t.Run("conflicting formats", func(t *testing.T) {
		t.Parallel()

		cmd := NewHistoryCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{"--db-dir", t.TempDir(), "--id", "1", "--json", "--markdown"})
		if err := cmd.Execute(); !errors.Is(err, config.ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})

	t.Run("lists websites", func(t *testing.T) {
		t.Parallel()

		dir, _ := seedHistory(t)
		var buf bytes.Buffer
		cmd := NewHistoryCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"--db-dir", dir})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Scanned websites (1):") {
			t.Errorf("unexpected output %q", buf.String())
		}
	})
}
