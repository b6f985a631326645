package model

import "time"

// Company is one row of the input company list.
type Company struct {
	// Name is the company name as written in the list.
	Name string `json:"name"`

	// Website is the company home page. Bare domains are accepted.
	Website string `json:"website"`

	// CareerLink is the careers page URL when it is already known.
	// It is filled by discovery and written back so the next run can skip it.
	CareerLink string `json:"career_link,omitempty"`
}

// Job is one posting read from a job page.
type Job struct {
	// Website is the company website the job was found from.
	Website string `json:"website"`

	// URL is the absolute URL of the job page.
	URL string `json:"url"`

	// Title is the first non-empty h1, h2 or h3 of the page.
	Title string `json:"title"`

	// Description is the text of the largest text block on the page.
	Description string `json:"description"`

	// Markdown is Description's element rendered as Markdown.
	Markdown string `json:"markdown,omitempty"`

	// FetchedAt is when the job page was rendered.
	FetchedAt time.Time `json:"fetched_at"`
}

// CareerSource records how a careers page was found.
type CareerSource string

const (
	// SourceNone means no careers page was found.
	SourceNone CareerSource = ""

	// SourceCache means the link came from the company list or the database.
	SourceCache CareerSource = "cache"

	// SourceConfig means the link came from the site configuration file.
	SourceConfig CareerSource = "config"

	// SourceAnchor means an anchor on the home page pointed at it.
	SourceAnchor CareerSource = "anchor"

	// SourceSubdomain means a careers-like subdomain answered.
	SourceSubdomain CareerSource = "subdomain"

	// SourcePath means a careers-like path answered.
	SourcePath CareerSource = "path"

	// SourceSitemap means the sitemap listed it.
	SourceSitemap CareerSource = "sitemap"
)

// String returns the source, or "none" for SourceNone.
func (s CareerSource) String() string {
	if s == SourceNone {
		return "none"
	}
	return string(s)
}
