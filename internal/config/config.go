package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Renderer names accepted by Config.Renderer.
const (
	// RendererHTTP fetches pages with a plain HTTP client. It is fast but
	// sees only server-rendered markup.
	RendererHTTP = "http"

	// RendererBrowser renders pages in a headless Chromium through rod so
	// that listings built by JavaScript are visible.
	RendererBrowser = "browser"
)

// Default configuration values.
const (
	// DefaultTimeout bounds one page render, including waits for the page to
	// settle. Career sites often load listings from a separate API call, so
	// this is generous.
	DefaultTimeout = 30 * time.Second

	// DefaultProbeTimeout bounds a single discovery probe (subdomain, path or
	// sitemap request).
	DefaultProbeTimeout = 10 * time.Second

	// DefaultBatchSize is the number of companies crawled concurrently.
	// 1 means companies are processed one after another. Each worker owns a
	// browser page, so high values cost memory.
	DefaultBatchSize = 1

	// DefaultMaxJobs caps the number of job pages visited per company.
	// 0 disables the cap.
	DefaultMaxJobs = 50

	// AppName is the application name used for XDG directory paths.
	AppName = "careercrawl"

	// DefaultCrawlDelay is the pause between two renders on the same site.
	DefaultCrawlDelay = 1 * time.Second

	// DefaultUserAgent identifies careercrawl in HTTP requests.
	DefaultUserAgent = "careercrawl/1.0 (+https://github.com/nao1215/careercrawl)"

	// DefaultMaxBodySize limits the response body read by the HTTP renderer.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultRenderer is used when --renderer is not given.
	DefaultRenderer = RendererBrowser
)

// DefaultJobKeywords are the link texts that lead from a careers landing page
// to the page listing the open positions. Matching is case-insensitive on the
// trimmed anchor text.
var DefaultJobKeywords = []string{
	"view openings",
	"view open positions",
	"open positions",
	"open roles",
	"see open roles",
	"current openings",
	"job openings",
	"view jobs",
	"view all jobs",
	"see all jobs",
	"search jobs",
	"explore jobs",
}

// Config holds all configuration options for careercrawl.
// This struct is populated from CLI flags and passed through the
// application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs.
// The number of options is manageable, and nesting would add complexity
// without significant benefit.
type Config struct {
	// InputCSV is the path of the company list (columns Company, Website and
	// optionally Career Link).
	InputCSV string

	// OutputCSV is the path of the jobs CSV. Rows are appended.
	// Empty disables CSV output.
	OutputCSV string

	// Websites are company websites given as positional arguments.
	Websites []string

	// Renderer selects how pages are rendered: RendererHTTP or RendererBrowser.
	Renderer string

	// Headless runs the browser without a window. Only used by the browser
	// renderer.
	Headless bool

	// BrowserBin is the Chromium binary for the browser renderer. Empty
	// looks up a system browser and downloads one if none is found.
	BrowserBin string

	// BrowserURL is the DevTools WebSocket URL of a running browser to use
	// instead of launching one.
	BrowserURL string

	// Timeout bounds a single page render.
	Timeout time.Duration

	// ProbeTimeout bounds a single discovery probe.
	ProbeTimeout time.Duration

	// CrawlDelay is the pause between renders.
	CrawlDelay time.Duration

	// MaxJobsPerCompany caps the job pages visited per company. 0 disables it.
	MaxJobsPerCompany int

	// BatchSize is the number of companies crawled concurrently.
	BatchSize int

	// UserAgent is sent with every HTTP request and set on browser pages.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Set to 0 to use the default (5MB).
	MaxBodySize int64

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .careercrawl in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds site-specific configurations loaded from the config file.
	SiteConfigs *File

	// JobKeywords are the anchor texts that lead to the job board.
	JobKeywords []string

	// JSONReport enables JSON report output instead of human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// DBDir is the directory path for storing the SQLite database.
	// Defaults to XDG data directory (~/.local/share/careercrawl on Linux).
	DBDir string

	// SaveToDB indicates whether to save results to the database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, renderer).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	keywords := make([]string, len(DefaultJobKeywords))
	copy(keywords, DefaultJobKeywords)

	return &Config{
		Renderer:          DefaultRenderer,
		Headless:          true,
		Timeout:           DefaultTimeout,
		ProbeTimeout:      DefaultProbeTimeout,
		CrawlDelay:        DefaultCrawlDelay,
		MaxJobsPerCompany: DefaultMaxJobs,
		BatchSize:         DefaultBatchSize,
		UserAgent:         DefaultUserAgent,
		MaxBodySize:       DefaultMaxBodySize,
		JobKeywords:       keywords,
	}
}

// XDGDataDir returns the XDG data directory for careercrawl.
// On Linux: ~/.local/share/careercrawl
// On macOS: ~/Library/Application Support/careercrawl
// On Windows: %LOCALAPPDATA%\careercrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for careercrawl.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for careercrawl.
// The browser renderer keeps its downloaded Chromium here.
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as a sentinel error.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
func (c *Config) Validate() error {
	if c.InputCSV == "" && len(c.Websites) == 0 {
		return ErrNoInput
	}

	if c.Renderer != RendererHTTP && c.Renderer != RendererBrowser {
		return ErrUnknownRenderer
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}

	if c.MaxJobsPerCompany < 0 {
		return ErrInvalidMaxJobs
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}

// SiteConfig returns the merged site configuration for host, or the zero
// SiteConfig when no file was loaded.
func (c *Config) SiteConfig(host string) SiteConfig {
	if c.SiteConfigs == nil {
		return SiteConfig{}
	}
	return c.SiteConfigs.GetSiteConfig(host)
}
