package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/careercrawl/internal/config"
	"github.com/nao1215/careercrawl/internal/database"
	"github.com/nao1215/careercrawl/internal/dataset"
	"github.com/nao1215/careercrawl/internal/fetcher"
	applog "github.com/nao1215/careercrawl/internal/log"
	"github.com/nao1215/careercrawl/internal/model"
	"github.com/nao1215/careercrawl/internal/pipeline"
	"github.com/nao1215/careercrawl/internal/report"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [website...]",
		Short: "Collect job postings from company websites",
		Long: `Scan finds the careers page of each company and collects its job postings.

For every company careercrawl:
- Finds the careers page (home page links, common subdomains and paths, sitemap)
- Follows a "view openings" style link to the job listing, if there is one
- Infers the repeated layout of the listing entries and extracts their links
- Reads the title and description of every job page

Companies come from positional arguments and/or a CSV file with the columns
Company, Website and, optionally, Career Link. Careers links found during the
run are written back to that file.

Examples:
  # Scan one website and print a report
  careercrawl scan acme.com

  # Scan a company list and append postings to jobs.csv
  careercrawl scan --list companies.csv --jobs-out jobs.csv

  # Use plain HTTP instead of a browser, four companies at a time
  careercrawl scan --renderer http --batch 4 --list companies.csv

  # Output a Markdown report to a file
  careercrawl scan --markdown -o report.md acme.com

Configuration file (.careercrawl) example:
  sites:
    acme.com:
      careerLink: "https://acme.com/company/careers"
      containerTag: "li"
      ignorePatterns:
        - "/blog/*"
      sitemaps:
        - "/feeds/pages.xml"`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Input and output files
	cmd.Flags().StringP("list", "l", "",
		"CSV company list (columns: Company, Website, Career Link)")
	cmd.Flags().StringP("jobs-out", "J", "",
		"Append postings to this CSV file (columns: Website, Job URL, Job Title, Job Description)")

	// Rendering flags
	cmd.Flags().StringP("renderer", "r", config.DefaultRenderer,
		"Page renderer: \"browser\" (headless Chromium) or \"http\"")
	cmd.Flags().Bool("headful", false,
		"Show the browser window (browser renderer only)")
	cmd.Flags().String("browser-bin", "",
		"Chromium binary to use (default: system browser, downloaded if missing)")
	cmd.Flags().String("browser-url", "",
		"DevTools WebSocket URL of a running browser to connect to")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with requests")

	// Crawl behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for rendering one page")
	cmd.Flags().Duration("probe-timeout", config.DefaultProbeTimeout,
		"Timeout for one careers page probe")
	cmd.Flags().DurationP("delay", "D", config.DefaultCrawlDelay,
		"Pause between two page renders of the same company")
	cmd.Flags().IntP("max-jobs", "n", config.DefaultMaxJobs,
		"Maximum job pages visited per company (0 for no limit)")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of companies crawled concurrently")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .careercrawl in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("log-json", false,
		"Write logs to stderr as JSON lines")

	// Storage flags
	cmd.Flags().Bool("no-db", false,
		"Do not read or write the history database")
	cmd.Flags().String("db-dir", "",
		"Database directory (default: XDG data directory)")

	return cmd
}

func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logJSON, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		return err
	}
	logger := applog.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)
	if logJSON {
		logger = applog.NewSecureJSONLogger(cmd.ErrOrStderr(), cfg.Verbose)
	}
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runScan(ctx, cfg, logger, cmd.OutOrStdout())
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()
	var err error

	if cfg.InputCSV, err = flags.GetString("list"); err != nil {
		return nil, err
	}
	if cfg.OutputCSV, err = flags.GetString("jobs-out"); err != nil {
		return nil, err
	}
	if cfg.Renderer, err = flags.GetString("renderer"); err != nil {
		return nil, err
	}
	headful, err := flags.GetBool("headful")
	if err != nil {
		return nil, err
	}
	cfg.Headless = !headful
	if cfg.BrowserBin, err = flags.GetString("browser-bin"); err != nil {
		return nil, err
	}
	if cfg.BrowserURL, err = flags.GetString("browser-url"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.ProbeTimeout, err = flags.GetDuration("probe-timeout"); err != nil {
		return nil, err
	}
	if cfg.CrawlDelay, err = flags.GetDuration("delay"); err != nil {
		return nil, err
	}
	if cfg.MaxJobsPerCompany, err = flags.GetInt("max-jobs"); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	noDB, err := flags.GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB
	if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}
	if cfg.DBDir == "" {
		cfg.DBDir = config.XDGDataDir()
	}
	cfg.Verbose = getVerboseFlag(cmd)

	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if err := loadSiteConfigs(cfg); err != nil {
		return nil, err
	}

	cfg.Websites = args
	return cfg, nil
}

// loadSiteConfigs loads the configuration file into cfg. A missing file is
// an error only when its path was given explicitly.
func loadSiteConfigs(cfg *config.Config) error {
	path := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case path != "":
		file, err := config.LoadConfigFile(path)
		if err != nil {
			return fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		cfg.SiteConfigs = file
		if len(file.JobKeywords) > 0 {
			cfg.JobKeywords = file.JobKeywords
		}
	case cfg.ConfigFilePath != "":
		return fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	default:
		cfg.SiteConfigs = &config.File{Sites: make(map[string]config.SiteConfig)}
	}
	return nil
}

// loadCompanies returns the companies named on the command line followed by
// those of the company list.
func loadCompanies(cfg *config.Config) ([]model.Company, error) {
	companies := make([]model.Company, 0, len(cfg.Websites))
	for _, w := range cfg.Websites {
		companies = append(companies, model.Company{Website: w})
	}
	if cfg.InputCSV != "" {
		listed, err := dataset.ReadCompaniesFile(cfg.InputCSV)
		if err != nil {
			return nil, fmt.Errorf("failed to read company list %s: %w", cfg.InputCSV, err)
		}
		companies = append(companies, listed...)
	}
	if len(companies) == 0 {
		return nil, errors.New("no companies to scan")
	}
	return companies, nil
}

// runScan crawls every company of cfg. httpOpts are appended to the options
// of every HTTP renderer, which lets tests supply their own client.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer, httpOpts ...fetcher.Option) error {
	companies, err := loadCompanies(cfg)
	if err != nil {
		return err
	}

	logger.Info("starting scan",
		"companies", len(companies),
		"renderer", cfg.Renderer,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	var (
		db    *database.CrawlDB
		cache pipeline.CareerCache
	)
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		cache = db
		logger.Info("database opened", "path", db.Path())
	}

	var jobs *dataset.JobWriter
	if cfg.OutputCSV != "" {
		jobs, err = dataset.OpenJobWriter(cfg.OutputCSV)
		if err != nil {
			return err
		}
		defer func() {
			if err := jobs.Close(); err != nil {
				logger.Error("failed to close jobs file", "path", cfg.OutputCSV, "error", err)
			}
		}()
	}

	prober := fetcher.NewHTTPRenderer(append([]fetcher.Option{
		fetcher.WithUserAgent(cfg.UserAgent),
		fetcher.WithTimeout(cfg.ProbeTimeout),
		fetcher.WithMaxBodySize(cfg.MaxBodySize),
		fetcher.WithLogger(logger),
	}, httpOpts...)...)
	defer prober.Close()

	renderers, closeRenderers, err := openRenderers(cfg, logger, httpOpts)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeRenderers(); err != nil {
			logger.Warn("failed to close browser", "error", err)
		}
	}()

	bp := pipeline.NewBatchProcessor(
		pipeline.DefaultFactory(cfg, renderers, prober, cache, logger),
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	fmt.Fprintf(out, "Scanning %d companies (concurrency: %d)...\n\n", len(companies), cfg.BatchSize)
	startTime := time.Now()

	reports := make([]*model.CompanyReport, len(companies))
	var mu sync.Mutex
	batchErr := bp.ProcessBatchWithCallback(ctx, companies, func(r *model.CompanyReport, i int) {
		mu.Lock()
		defer mu.Unlock()

		reports[i] = r
		fmt.Fprintf(out, "[%d/%d] %s: %s (%d jobs)\n",
			i+1, len(companies), displayWebsite(r), r.Status, len(r.Jobs))

		if jobs != nil {
			if _, err := jobs.WriteAll(r.Jobs); err != nil {
				logger.Error("failed to write jobs", "website", r.Website, "error", err)
			}
		}
		if err := saveCompanyReport(ctx, db, r, logger); err != nil {
			logger.Error("failed to save company report", "website", r.Website, "error", err)
		}
	})

	fmt.Fprintf(out, "\nScan completed in %s\n", time.Since(startTime).Round(time.Millisecond))

	if cfg.InputCSV != "" {
		if err := updateCompanyList(cfg.InputCSV, len(cfg.Websites), companies, reports); err != nil {
			logger.Error("failed to update company list", "path", cfg.InputCSV, "error", err)
		}
	}

	if err := outputReports(cfg, out, reports); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return batchErr
}

// openRenderers returns the renderer factory selected by cfg and a function
// that releases what it holds.
func openRenderers(cfg *config.Config, logger *slog.Logger, httpOpts []fetcher.Option) (fetcher.Factory, func() error, error) {
	if cfg.Renderer == config.RendererHTTP {
		factory := func(opts ...fetcher.Option) (fetcher.Renderer, error) {
			return fetcher.NewHTTPRenderer(append(opts, httpOpts...)...), nil
		}
		return factory, func() error { return nil }, nil
	}

	browser, err := fetcher.LaunchBrowser(
		fetcher.WithHeadless(cfg.Headless),
		fetcher.WithBrowserBin(cfg.BrowserBin),
		fetcher.WithRemoteURL(cfg.BrowserURL),
		fetcher.WithUserDataDir(filepath.Join(config.XDGCacheDir(), "browser")),
		fetcher.WithBrowserLogger(logger),
	)
	if err != nil {
		return nil, nil, err
	}
	return browser.Factory(), browser.Close, nil
}

// updateCompanyList writes careers links found during the run back to the
// company list, leaving its other columns and rows untouched. offset is the
// number of companies that came from the command line rather than the file.
func updateCompanyList(path string, offset int, companies []model.Company, reports []*model.CompanyReport) error {
	links := make(map[string]string)
	for i, c := range companies[offset:] {
		r := reports[offset+i]
		if r == nil || r.CareerLink == "" || c.CareerLink == r.CareerLink {
			continue
		}
		links[c.Website] = r.CareerLink
	}
	return dataset.UpdateCareerLinksFile(path, links)
}

// saveCompanyReport stores the careers link, the jobs and the report.
// If db is nil, this function is a no-op.
func saveCompanyReport(ctx context.Context, db *database.CrawlDB, r *model.CompanyReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}
	// Saving must finish even when the run is being cancelled.
	ctx = context.WithoutCancel(ctx)

	if r.CareerLink != "" {
		c := model.Company{Name: r.Company, Website: r.Website, CareerLink: r.CareerLink}
		if err := db.UpsertCompany(ctx, c, r.CareerSource); err != nil {
			return err
		}
	}
	for _, j := range r.Jobs {
		if err := db.InsertJob(ctx, j); err != nil {
			return err
		}
	}
	if err := db.SaveCompanyReport(ctx, r); err != nil {
		return err
	}
	logger.Debug("company report saved to database", "website", r.Website)
	return nil
}

// outputReports writes the full report when one company was scanned and a
// summary of every company otherwise.
func outputReports(cfg *config.Config, stdout io.Writer, reports []*model.CompanyReport) error {
	var output io.Writer = stdout
	if cfg.ReportFile != "" {
		if dir := filepath.Dir(cfg.ReportFile); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(output)
	default:
		w = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	if len(reports) == 1 && reports[0] != nil {
		_, err := w.Write(reports[0])
		return err
	}
	_, err := w.WriteSummaries(report.Summarize(reports))
	return err
}

func displayWebsite(r *model.CompanyReport) string {
	if r.Company != "" {
		return r.Company + " (" + r.Website + ")"
	}
	return r.Website
}
