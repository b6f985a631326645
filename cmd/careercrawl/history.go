package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/careercrawl/internal/config"
	"github.com/nao1215/careercrawl/internal/database"
	"github.com/nao1215/careercrawl/internal/report"
)

// NewHistoryCmd creates the history command.
// It reads the runs and jobs stored by earlier scans.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [website]",
		Short: "Show stored scan history and jobs",
		Long: `History shows what earlier scans stored in the database.

Without a website it lists every scanned website. With a website it lists
the runs of that company, newest first.

Examples:
  # List all scanned websites
  careercrawl history

  # List the runs of one company
  careercrawl history acme.com

  # Show the jobs stored for one company
  careercrawl history --jobs acme.com

  # Show a stored report by ID in Markdown
  careercrawl history --id 5 --markdown`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().Bool("jobs", false,
		"List stored jobs instead of runs (all jobs when no website is given)")
	cmd.Flags().Int64P("id", "i", 0,
		"Show the stored report with this ID (see the run list for IDs)")
	cmd.Flags().BoolP("json", "j", false,
		"Output the report in JSON format (with --id)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output the report in Markdown format (with --id)")
	cmd.Flags().String("db-dir", "",
		"Database directory (default: XDG data directory)")

	return cmd
}

// historyOptions are the parsed flags of the history command.
type historyOptions struct {
	website  string
	jobs     bool
	id       int64
	json     bool
	markdown bool
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	var (
		opts historyOptions
		err  error
	)
	flags := cmd.Flags()
	if opts.jobs, err = flags.GetBool("jobs"); err != nil {
		return err
	}
	if opts.id, err = flags.GetInt64("id"); err != nil {
		return err
	}
	if opts.json, err = flags.GetBool("json"); err != nil {
		return err
	}
	if opts.markdown, err = flags.GetBool("markdown"); err != nil {
		return err
	}
	if opts.json && opts.markdown {
		return config.ErrConflictingReportFormats
	}
	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}
	if len(args) > 0 {
		opts.website = args[0]
	}

	// History never creates a database.
	db, err := database.Open(dbDir, database.Options{EnableWAL: true})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return errors.New("no scan history yet (run 'careercrawl scan' first)")
		}
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	return runHistory(cmd.Context(), db, opts, cmd.OutOrStdout())
}

func runHistory(ctx context.Context, db *database.CrawlDB, opts historyOptions, out io.Writer) error {
	switch {
	case opts.id > 0:
		return showReport(ctx, db, opts, out)
	case opts.jobs:
		return listJobs(ctx, db, opts.website, out)
	case opts.website != "":
		return listRuns(ctx, db, opts.website, out)
	default:
		return listWebsites(ctx, db, out)
	}
}

func listWebsites(ctx context.Context, db *database.CrawlDB, out io.Writer) error {
	websites, err := db.ListScannedWebsites(ctx)
	if err != nil {
		return err
	}
	if len(websites) == 0 {
		fmt.Fprintln(out, "No scanned websites found.")
		return nil
	}

	fmt.Fprintf(out, "Scanned websites (%d):\n\n", len(websites))
	for _, w := range websites {
		fmt.Fprintf(out, "  %s\n", w)
	}
	return nil
}

func listRuns(ctx context.Context, db *database.CrawlDB, website string, out io.Writer) error {
	history, err := db.GetScanHistoryWithMetadata(ctx, website)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Fprintf(out, "No runs found for %s.\n", website)
		return nil
	}

	fmt.Fprintf(out, "Runs for %s (%d):\n\n", website, len(history))
	fmt.Fprintf(out, "  %-6s  %-20s  %-14s  %s\n", "ID", "DATE", "STATUS", "JOBS")
	fmt.Fprintf(out, "  %s\n", strings.Repeat("-", 50))
	for _, m := range history {
		fmt.Fprintf(out, "  %-6d  %-20s  %-14s  %d\n",
			m.ID, m.Timestamp.Local().Format("2006-01-02 15:04:05"), m.Status, m.JobCount)
	}
	return nil
}

func listJobs(ctx context.Context, db *database.CrawlDB, website string, out io.Writer) error {
	jobs, err := db.ListJobs(ctx, website)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		fmt.Fprintln(out, "No jobs found.")
		return nil
	}

	fmt.Fprintf(out, "Jobs (%d):\n\n", len(jobs))
	for _, j := range jobs {
		title := j.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(out, "  * %s\n    %s\n", title, j.URL)
	}
	return nil
}

func showReport(ctx context.Context, db *database.CrawlDB, opts historyOptions, out io.Writer) error {
	r, err := db.GetCompanyReportByID(ctx, opts.id)
	if err != nil {
		return err
	}
	if r == nil {
		return fmt.Errorf("no report with ID %d", opts.id)
	}

	var w report.Writer
	switch {
	case opts.json:
		w = report.NewJSONWriter(out, report.WithPrettyPrint())
	case opts.markdown:
		w = report.NewMarkdownWriter(out)
	default:
		w = report.NewSimpleWriter(out, report.WithVerbose(true))
	}
	_, err = w.Write(r)
	return err
}
