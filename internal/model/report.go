package model

import (
	"time"
)

// CompanyReport is the result of crawling one company.
//
// Design decision: We use a single struct that every pipeline step fills in
// turn, so that a failed step still leaves the earlier results in place for
// the report writers and the database.
type CompanyReport struct {
	// === Input ===

	// Company is the company name. May be empty for websites given on the
	// command line.
	Company string `json:"company,omitempty"`

	// Website is the company home page with a scheme.
	Website string `json:"website"`

	// DateScanned is when the run started.
	DateScanned time.Time `json:"date_scanned"`

	// === Discovery ===

	// CareerLink is the careers landing page.
	CareerLink string `json:"career_link,omitempty"`

	// CareerSource records how CareerLink was found.
	CareerSource CareerSource `json:"career_source,omitempty"`

	// JobBoardLink is the page linked from the careers page by a
	// "view openings" style button. Empty when there is none.
	JobBoardLink string `json:"job_board_link,omitempty"`

	// ListingURL is the final URL of the page the template was inferred on.
	ListingURL string `json:"listing_url,omitempty"`

	// === Template inference ===

	// Template is the inferred item fingerprint as tag names.
	Template []string `json:"template,omitempty"`

	// TemplateCount is how many candidates shared Template.
	TemplateCount int `json:"template_count"`

	// DistinctPatterns is the number of distinct candidate fingerprints.
	DistinctPatterns int `json:"distinct_patterns"`

	// LinksFound is the number of anchors inside matched containers.
	LinksFound int `json:"links_found"`

	// LinksSkipped counts anchors dropped as non-navigable, duplicate,
	// filtered or over the cap.
	LinksSkipped int `json:"links_skipped"`

	// JobURLs are the job pages to visit, in page order.
	JobURLs []string `json:"job_urls,omitempty"`

	// === Postings ===

	// Jobs holds the postings read from JobURLs.
	Jobs []Job `json:"jobs,omitempty"`

	// Crawls maps every rendered URL to its status code.
	Crawls map[string]int `json:"crawls,omitempty"`

	// PagesRendered counts the pages the company's renderer loaded
	// successfully. Discovery probes are not included.
	PagesRendered int `json:"pages_rendered"`

	// === Run state ===

	// Status is the furthest stage reached.
	Status Status `json:"status"`

	// TimedOut is true if the run was cancelled.
	TimedOut bool `json:"timed_out"`

	// PerformedSteps lists the steps that ran.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Error contains the last step error.
	Error error `json:"-"`

	// ErrorMessage is Error as a string for serialization.
	ErrorMessage string `json:"error,omitempty"` //nolint:tagliatelle // error is conventional
}

// NewCompanyReport creates a report for one company.
func NewCompanyReport(c Company) *CompanyReport {
	return &CompanyReport{
		Company:     c.Name,
		Website:     c.Website,
		CareerLink:  c.CareerLink,
		DateScanned: time.Now(),
		Crawls:      make(map[string]int),
	}
}

// AddCrawl records that url was rendered with the given status code.
func (r *CompanyReport) AddCrawl(url string, statusCode int) {
	if r.Crawls == nil {
		r.Crawls = make(map[string]int)
	}
	r.Crawls[url] = statusCode
}

// AddJob appends a posting. Postings whose URL is already present are
// ignored.
func (r *CompanyReport) AddJob(job Job) {
	for _, j := range r.Jobs {
		if j.URL == job.URL {
			return
		}
	}
	r.Jobs = append(r.Jobs, job)
}

// SetError records err on the report and marks it failed.
func (r *CompanyReport) SetError(err error) {
	if err == nil {
		return
	}
	r.Error = err
	r.ErrorMessage = err.Error()
	r.Status = StatusFailed
}

// Advance raises Status to s. A failed report stays failed.
func (r *CompanyReport) Advance(s Status) {
	if r.Status == StatusFailed {
		return
	}
	if s > r.Status {
		r.Status = s
	}
}

// Summary is a compact view of a CompanyReport used for listings and the
// plain text report.
type Summary struct {
	Company      string    `json:"company,omitempty"`
	Website      string    `json:"website"`
	DateScanned  time.Time `json:"date_scanned"`
	Status       Status    `json:"status"`
	CareerLink   string    `json:"career_link,omitempty"`
	CareerSource string    `json:"career_source,omitempty"`
	ListingURL   string    `json:"listing_url,omitempty"`
	Template     string    `json:"template,omitempty"`
	JobURLs      int       `json:"job_urls"`
	JobsRead     int       `json:"jobs_read"`
	PagesCrawled int       `json:"pages_crawled"`
	Error        string    `json:"error,omitempty"`
}

// Summarize builds the Summary of r.
func (r *CompanyReport) Summarize() Summary {
	s := Summary{
		Company:      r.Company,
		Website:      r.Website,
		DateScanned:  r.DateScanned,
		Status:       r.Status,
		CareerLink:   r.CareerLink,
		ListingURL:   r.ListingURL,
		JobURLs:      len(r.JobURLs),
		JobsRead:     len(r.Jobs),
		PagesCrawled: len(r.Crawls),
		Error:        r.ErrorMessage,
	}
	if r.CareerLink != "" {
		s.CareerSource = r.CareerSource.String()
	}
	for i, tag := range r.Template {
		if i > 0 {
			s.Template += " > "
		}
		s.Template += tag
	}
	return s
}
