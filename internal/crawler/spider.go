package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nao1215/careercrawl/internal/dom"
	"github.com/nao1215/careercrawl/internal/fetcher"
	"github.com/nao1215/careercrawl/internal/listing"
	"github.com/nao1215/careercrawl/internal/model"
	"github.com/nao1215/careercrawl/internal/posting"
	"github.com/nao1215/careercrawl/internal/resolve"
)

// Spider renders the pages of one company site.
type Spider struct {
	// renderer turns URLs into rendered HTML.
	renderer fetcher.Renderer

	// extractor reads postings from job pages.
	extractor *posting.Extractor

	// candidate selects the containers used for template inference.
	candidate listing.Candidate

	// maxJobs caps the job URLs returned by ScrapeListing. 0 means no cap.
	maxJobs int

	// delay is the time to wait between renders.
	delay time.Duration

	// stripSuffix is removed from the end of the listing URL before links
	// are resolved against it.
	stripSuffix string

	// ignorePatterns are URL path globs to skip.
	ignorePatterns []string

	// followPatterns restrict job URLs to matching paths when set.
	followPatterns []string

	logger *slog.Logger

	// visited tracks rendered URLs.
	visited map[string]bool

	// mutex protects visited, pageCount and lastRender.
	mutex sync.Mutex

	pageCount  int
	lastRender time.Time
	visits     []VisitRecord
}

// VisitRecord is one render attempt.
type VisitRecord struct {
	// URL is the final URL, or the requested URL when rendering failed.
	URL string

	// StatusCode is 0 when no response was received.
	StatusCode int
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMaxJobs caps the number of job URLs per listing. 0 disables the cap.
func WithMaxJobs(n int) SpiderOption {
	return func(s *Spider) {
		if n >= 0 {
			s.maxJobs = n
		}
	}
}

// WithDelay sets the delay between renders.
func WithDelay(d time.Duration) SpiderOption {
	return func(s *Spider) {
		s.delay = d
	}
}

// WithCandidate sets the container predicate.
func WithCandidate(c listing.Candidate) SpiderOption {
	return func(s *Spider) {
		s.candidate = c
	}
}

// WithStripSuffix sets a path segment removed from the end of the listing
// URL before links are resolved, e.g. "careers".
func WithStripSuffix(segment string) SpiderOption {
	return func(s *Spider) {
		s.stripSuffix = segment
	}
}

// WithIgnorePatterns sets URL path patterns to skip.
// Patterns use glob syntax (e.g., "/blog/*", "*.pdf").
func WithIgnorePatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.ignorePatterns = patterns
	}
}

// WithFollowPatterns sets URL path patterns job URLs must match.
// Empty slice means all URLs are allowed (default behavior).
func WithFollowPatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.followPatterns = patterns
	}
}

// WithExtractor sets the posting extractor.
func WithExtractor(e *posting.Extractor) SpiderOption {
	return func(s *Spider) {
		if e != nil {
			s.extractor = e
		}
	}
}

// WithSpiderLogger sets the logger.
func WithSpiderLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSpider creates a Spider that renders through renderer.
// The caller owns the renderer and closes it.
func NewSpider(renderer fetcher.Renderer, opts ...SpiderOption) *Spider {
	s := &Spider{
		renderer:  renderer,
		candidate: listing.DefaultCandidate,
		maxJobs:   50,
		delay:     1 * time.Second,
		logger:    slog.Default(),
		visited:   make(map[string]bool),
	}

	for _, opt := range opts {
		opt(s)
	}
	if s.extractor == nil {
		s.extractor = posting.NewExtractor()
	}

	return s
}

// Visit renders pageURL after the politeness delay and records it as
// visited. The returned page carries the final URL after redirects.
func (s *Spider) Visit(ctx context.Context, pageURL string) (*fetcher.Page, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	s.markVisited(pageURL)
	page, err := s.renderer.Render(ctx, pageURL)

	s.mutex.Lock()
	s.lastRender = time.Now()
	if err != nil {
		status := 0
		var se *fetcher.StatusError
		if errors.As(err, &se) {
			status = se.StatusCode
		}
		s.visits = append(s.visits, VisitRecord{URL: pageURL, StatusCode: status})
		s.mutex.Unlock()
		return nil, err
	}
	s.pageCount++
	s.visited[resolve.Normalize(page.URL)] = true
	s.visits = append(s.visits, VisitRecord{URL: page.URL, StatusCode: page.StatusCode})
	s.mutex.Unlock()

	s.logger.Debug("rendered page", "url", page.URL, "status", page.StatusCode, "bytes", len(page.HTML))
	return page, nil
}

// ListingResult is the outcome of ScrapeListing.
type ListingResult struct {
	// PageURL is the final URL of the listing page.
	PageURL string

	// BaseURL is the URL links were resolved against.
	BaseURL string

	// Scrape holds the template, frequency table and every extracted link.
	Scrape *listing.Result

	// JobURLs are the filtered, deduplicated job URLs in page order.
	JobURLs []string

	// Skipped counts links dropped as non-navigable, duplicate or filtered.
	Skipped int

	// Capped counts links dropped by the job cap.
	Capped int
}

// ScrapeListing renders listingURL, infers the job template and returns the
// job URLs it links to. A page without a template is not an error: the
// result has no template and no URLs.
func (s *Spider) ScrapeListing(ctx context.Context, listingURL string) (*ListingResult, error) {
	page, err := s.Visit(ctx, listingURL)
	if err != nil {
		return nil, fmt.Errorf("failed to render listing page: %w", err)
	}
	return s.ScrapePage(page)
}

// ScrapePage is ScrapeListing for a page that was already rendered.
func (s *Spider) ScrapePage(page *fetcher.Page) (*ListingResult, error) {
	doc, err := dom.ParseClean(page.HTML)
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing page: %w", err)
	}

	base := page.URL
	if s.stripSuffix != "" {
		base = resolve.TrimSegmentSuffix(base, s.stripSuffix)
	}

	res := listing.Scrape(doc, s.candidate, base)
	out := &ListingResult{
		PageURL: page.URL,
		BaseURL: base,
		Scrape:  res,
		JobURLs: make([]string, 0, len(res.Links)),
	}
	if !res.Found() {
		s.logger.Debug("no repeated container on listing page", "url", page.URL)
		return out, nil
	}

	seen := make(map[string]bool, len(res.Links))
	for _, link := range res.Links {
		if !link.Navigable {
			out.Skipped++
			continue
		}
		key := resolve.Normalize(link.URL)
		if seen[key] || !s.shouldCrawl(link.URL) {
			out.Skipped++
			continue
		}
		seen[key] = true
		out.JobURLs = append(out.JobURLs, link.URL)
	}

	if s.maxJobs > 0 && len(out.JobURLs) > s.maxJobs {
		s.logger.Debug("capping job links", "found", len(out.JobURLs), "max", s.maxJobs)
		out.Capped = len(out.JobURLs) - s.maxJobs
		out.JobURLs = out.JobURLs[:s.maxJobs]
	}

	s.logger.Debug("scraped listing page",
		"url", page.URL,
		"template", res.Template.String(),
		"matches", res.Matches,
		"links", len(res.Links),
		"jobs", len(out.JobURLs))
	return out, nil
}

// ScrapeJobs renders every URL and runs the posting heuristic on it.
// Pages that fail to render or hold no text are skipped. The jobs read so
// far are returned together with the context error when ctx is cancelled.
func (s *Spider) ScrapeJobs(ctx context.Context, website string, urls []string) ([]model.Job, error) {
	jobs := make([]model.Job, 0, len(urls))
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return jobs, err
		}
		if s.isVisited(u) {
			continue
		}

		page, err := s.Visit(ctx, u)
		if err != nil {
			if ctx.Err() != nil {
				return jobs, ctx.Err()
			}
			s.logger.Warn("failed to render job page", "url", u, "error", err)
			continue
		}

		doc, err := dom.ParseClean(page.HTML)
		if err != nil {
			s.logger.Warn("failed to parse job page", "url", u, "error", err)
			continue
		}
		p, ok := s.extractor.Extract(doc, page.URL)
		if !ok {
			s.logger.Debug("no posting text on page", "url", u)
			continue
		}

		jobs = append(jobs, model.Job{
			Website:     website,
			URL:         u,
			Title:       p.Title,
			Description: p.Description,
			Markdown:    p.Markdown,
			FetchedAt:   page.FetchedAt,
		})
	}
	return jobs, nil
}

// TakeVisits returns the render attempts since the last call and forgets
// them.
func (s *Spider) TakeVisits() []VisitRecord {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	v := s.visits
	s.visits = nil
	return v
}

// wait blocks until the politeness delay since the last render has passed.
func (s *Spider) wait(ctx context.Context) error {
	s.mutex.Lock()
	last := s.lastRender
	s.mutex.Unlock()

	if s.delay <= 0 || last.IsZero() {
		return ctx.Err()
	}
	remaining := s.delay - time.Since(last)
	if remaining <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// isVisited checks if a URL has been visited.
func (s *Spider) isVisited(pageURL string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.visited[resolve.Normalize(pageURL)]
}

// markVisited marks a URL as visited.
func (s *Spider) markVisited(pageURL string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.visited[resolve.Normalize(pageURL)] = true
}

// Stats returns current crawl statistics.
func (s *Spider) Stats() SpiderStats {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return SpiderStats{
		PagesRendered: s.pageCount,
		URLsSeen:      len(s.visited),
	}
}

// SpiderStats contains crawl statistics.
type SpiderStats struct {
	// PagesRendered is the number of pages successfully rendered.
	PagesRendered int

	// URLsSeen is the number of unique URLs requested or redirected to.
	URLsSeen int
}

// shouldCrawl checks if a URL should be crawled based on ignore/follow patterns.
//
// Logic:
//  1. If URL matches any ignorePattern, skip it (return false)
//  2. If followPatterns is set and URL matches none, skip it (return false)
//  3. Otherwise, crawl it (return true)
func (s *Spider) shouldCrawl(targetURL string) bool {
	u, err := url.Parse(targetURL)
	if err != nil {
		return false
	}

	path := u.Path
	if path == "" {
		path = "/"
	}

	for _, pattern := range s.ignorePatterns {
		if matchPattern(pattern, path) {
			return false
		}
	}

	if len(s.followPatterns) > 0 {
		for _, pattern := range s.followPatterns {
			if matchPattern(pattern, path) {
				return true
			}
		}
		return false
	}

	return true
}

// matchPattern checks if a path matches a glob pattern.
// Patterns can use:
//   - * to match any sequence of non-separator characters
//   - ? to match any single character
//   - a trailing "/*" to match everything below a directory
//
// Examples:
//   - "/jobs/*" matches "/jobs/123", "/jobs/123/apply"
//   - "*.pdf" matches "/docs/benefits.pdf"
func matchPattern(pattern, path string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
		if strings.HasPrefix(path, prefix+"/") || path == prefix {
			return true
		}
	}

	if strings.HasPrefix(pattern, "*.") {
		if strings.HasSuffix(path, strings.TrimPrefix(pattern, "*")) {
			return true
		}
	}

	if matched, err := filepath.Match(pattern, path); err == nil && matched {
		return true
	}

	// Patterns without a slash also match the last path element.
	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		if matched, err := filepath.Match(pattern, filepath.Base(path)); err == nil && matched {
			return true
		}
	}

	return false
}
