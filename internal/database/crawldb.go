package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/careercrawl/internal/model"
	"github.com/nao1215/careercrawl/internal/resolve"
)

// FileName is the database file created inside the database directory.
const FileName = "careercrawl.db"

// ErrNotFound is returned by Open when the database does not exist and
// CreateIfNotExists is false.
var ErrNotFound = errors.New("database not found")

// CrawlDB provides SQLite-based storage for companies, jobs and reports.
type CrawlDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB in dbDir.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; concurrent batch workers share
	// this connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close() //nolint:errcheck // already failing
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Path returns the database file path.
func (cdb *CrawlDB) Path() string {
	return cdb.dbPath
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Companies remember the careers link so later runs skip discovery
	CREATE TABLE IF NOT EXISTS companies (
		site TEXT PRIMARY KEY,
		website TEXT NOT NULL,
		name TEXT,
		career_link TEXT,
		career_source TEXT,
		updated TEXT NOT NULL
	);

	-- Jobs hold one posting per job URL
	CREATE TABLE IF NOT EXISTS jobs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		site TEXT NOT NULL,
		website TEXT NOT NULL,
		url TEXT NOT NULL UNIQUE,
		title TEXT,
		description TEXT,
		markdown TEXT,
		fetched_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_jobs_site ON jobs(site);

	-- Scan reports store complete company reports as JSON
	CREATE TABLE IF NOT EXISTS scan_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		site TEXT NOT NULL,
		website TEXT NOT NULL,
		scanned_at TEXT NOT NULL,
		status TEXT NOT NULL,
		job_count INTEGER NOT NULL DEFAULT 0,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_site ON scan_reports(site);
	CREATE INDEX IF NOT EXISTS idx_reports_scanned_at ON scan_reports(scanned_at);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// UpsertCompany stores c and its careers link. An empty CareerLink does not
// overwrite a link stored earlier.
func (cdb *CrawlDB) UpsertCompany(ctx context.Context, c model.Company, source model.CareerSource) error {
	query := `
	INSERT INTO companies (site, website, name, career_link, career_source, updated)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(site) DO UPDATE SET
		website = excluded.website,
		name = CASE WHEN excluded.name != '' THEN excluded.name ELSE companies.name END,
		career_link = CASE WHEN excluded.career_link != '' THEN excluded.career_link ELSE companies.career_link END,
		career_source = CASE WHEN excluded.career_link != '' THEN excluded.career_source ELSE companies.career_source END,
		updated = excluded.updated
	`

	_, err := cdb.db.ExecContext(ctx, query,
		siteKey(c.Website),
		c.Website,
		c.Name,
		c.CareerLink,
		string(source),
		formatTimestamp(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert company: %w", err)
	}
	return nil
}

// GetCareerLink returns the stored careers link of website, or "" when
// none is known.
func (cdb *CrawlDB) GetCareerLink(ctx context.Context, website string) (string, error) {
	var link sql.NullString
	err := cdb.db.QueryRowContext(ctx,
		`SELECT career_link FROM companies WHERE site = ?`, siteKey(website),
	).Scan(&link)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get career link: %w", err)
	}
	return link.String, nil
}

// InsertJob inserts or updates a job. Jobs are unique by URL.
func (cdb *CrawlDB) InsertJob(ctx context.Context, job model.Job) error {
	fetched := job.FetchedAt
	if fetched.IsZero() {
		fetched = time.Now()
	}

	query := `
	INSERT INTO jobs (site, website, url, title, description, markdown, fetched_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(url) DO UPDATE SET
		site = excluded.site,
		website = excluded.website,
		title = excluded.title,
		description = excluded.description,
		markdown = excluded.markdown,
		fetched_at = excluded.fetched_at
	`

	_, err := cdb.db.ExecContext(ctx, query,
		siteKey(job.Website),
		job.Website,
		job.URL,
		job.Title,
		job.Description,
		job.Markdown,
		formatTimestamp(fetched),
	)
	if err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}
	return nil
}

// ListJobs returns the stored jobs of website, most recent first. An empty
// website lists every job.
func (cdb *CrawlDB) ListJobs(ctx context.Context, website string) ([]model.Job, error) {
	query := `
	SELECT website, url, title, description, markdown, fetched_at
	FROM jobs
	`
	args := make([]any, 0, 1)
	if website != "" {
		query += " WHERE site = ?"
		args = append(args, siteKey(website))
	}
	query += " ORDER BY fetched_at DESC, id DESC"

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []model.Job
	for rows.Next() {
		var (
			j                        model.Job
			title, desc, md, fetched sql.NullString
		)
		if err := rows.Scan(&j.Website, &j.URL, &title, &desc, &md, &fetched); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		j.Title, j.Description, j.Markdown = title.String, desc.String, md.String
		j.FetchedAt = parseTimestamp(fetched.String)
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// SaveCompanyReport saves a complete company report as JSON.
func (cdb *CrawlDB) SaveCompanyReport(ctx context.Context, report *model.CompanyReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	scanned := report.DateScanned
	if scanned.IsZero() {
		scanned = time.Now()
	}

	query := `
	INSERT INTO scan_reports (site, website, scanned_at, status, job_count, report_json)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = cdb.db.ExecContext(ctx, query,
		siteKey(report.Website),
		report.Website,
		formatTimestamp(scanned),
		report.Status.String(),
		len(report.Jobs),
		string(reportJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save company report: %w", err)
	}
	return nil
}

// GetLatestCompanyReport returns the most recent report of website, or nil
// when there is none.
func (cdb *CrawlDB) GetLatestCompanyReport(ctx context.Context, website string) (*model.CompanyReport, error) {
	query := `
	SELECT report_json FROM scan_reports
	WHERE site = ?
	ORDER BY scanned_at DESC, id DESC
	LIMIT 1
	`

	var reportJSON string
	err := cdb.db.QueryRowContext(ctx, query, siteKey(website)).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // no report is not an error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company report: %w", err)
	}
	return decodeReport(reportJSON)
}

// GetCompanyReportByID returns the report stored under id, or nil.
func (cdb *CrawlDB) GetCompanyReportByID(ctx context.Context, id int64) (*model.CompanyReport, error) {
	var reportJSON string
	err := cdb.db.QueryRowContext(ctx,
		`SELECT report_json FROM scan_reports WHERE id = ?`, id,
	).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // no report is not an error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company report: %w", err)
	}
	return decodeReport(reportJSON)
}

// ListScannedWebsites returns the website of every company with at least
// one stored report, in host order.
func (cdb *CrawlDB) ListScannedWebsites(ctx context.Context) ([]string, error) {
	// The most recent spelling of each website is returned.
	query := `
	SELECT website FROM scan_reports r
	WHERE id = (SELECT MAX(id) FROM scan_reports WHERE site = r.site)
	ORDER BY site
	`

	rows, err := cdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list websites: %w", err)
	}
	defer rows.Close()

	var websites []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, fmt.Errorf("failed to scan website: %w", err)
		}
		websites = append(websites, w)
	}
	return websites, rows.Err()
}

// ScanReportMetadata contains summary information about a stored report.
// It is used for displaying history without loading the full report.
type ScanReportMetadata struct {
	// ID is the unique identifier of the report in the database.
	ID int64

	// Website is the company website.
	Website string

	// Timestamp is when the run started.
	Timestamp time.Time

	// Status is the final status of the run.
	Status model.Status

	// JobCount is the number of postings read.
	JobCount int
}

// GetScanHistoryWithMetadata returns report metadata for website, most
// recent first.
func (cdb *CrawlDB) GetScanHistoryWithMetadata(ctx context.Context, website string) ([]ScanReportMetadata, error) {
	query := `
	SELECT id, website, scanned_at, status, job_count
	FROM scan_reports
	WHERE site = ?
	ORDER BY scanned_at DESC, id DESC
	`

	rows, err := cdb.db.QueryContext(ctx, query, siteKey(website))
	if err != nil {
		return nil, fmt.Errorf("failed to get scan history: %w", err)
	}
	defer rows.Close()

	var results []ScanReportMetadata
	for rows.Next() {
		var (
			meta              ScanReportMetadata
			timestamp, status string
		)
		if err := rows.Scan(&meta.ID, &meta.Website, &timestamp, &status, &meta.JobCount); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}
		meta.Timestamp = parseTimestamp(timestamp)
		_ = meta.Status.UnmarshalText([]byte(status)) //nolint:errcheck // never fails
		results = append(results, meta)
	}
	return results, rows.Err()
}

func decodeReport(reportJSON string) (*model.CompanyReport, error) {
	var report model.CompanyReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// siteKey returns the host of website used as the row key. Websites
// without a parsable host are keyed by their trimmed, lower-cased text.
func siteKey(website string) string {
	if h := resolve.Host(resolve.EnsureScheme(website)); h != "" {
		return h
	}
	return strings.ToLower(strings.TrimSpace(website))
}

// timestampLayout is fixed-width so that text ordering is time ordering.
const timestampLayout = "2006-01-02 15:04:05.000000"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// timestampFormats contains the timestamp formats that may be stored.
var timestampFormats = []string{
	timestampLayout,
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

// parseTimestamp parses s with each known format and returns the zero time
// if none matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
