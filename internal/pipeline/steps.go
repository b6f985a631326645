package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/careercrawl/internal/config"
	"github.com/nao1215/careercrawl/internal/crawler"
	"github.com/nao1215/careercrawl/internal/discovery"
	"github.com/nao1215/careercrawl/internal/dom"
	"github.com/nao1215/careercrawl/internal/fetcher"
	"github.com/nao1215/careercrawl/internal/listing"
	"github.com/nao1215/careercrawl/internal/model"
	"github.com/nao1215/careercrawl/internal/resolve"
)

// CareerCache returns careers links found by earlier runs.
// *database.CrawlDB implements it.
type CareerCache interface {
	// GetCareerLink returns "" and a nil error when website is unknown.
	GetCareerLink(ctx context.Context, website string) (string, error)
}

// Session is the per-company state the default steps share.
type Session struct {
	// Spider renders pages through the company's renderer.
	Spider *crawler.Spider

	// Site is the merged site configuration of the company.
	Site config.SiteConfig

	// careers is the rendered careers page, kept when it doubles as the
	// listing page so it is not rendered twice.
	careers *fetcher.Page
}

// NewSession creates a Session.
func NewSession(spider *crawler.Spider, site config.SiteConfig) *Session {
	return &Session{Spider: spider, Site: site}
}

// record copies the spider's render attempts and page count into the
// report.
func (s *Session) record(report *model.CompanyReport) {
	for _, v := range s.Spider.TakeVisits() {
		report.AddCrawl(v.URL, v.StatusCode)
	}
	report.PagesRendered = s.Spider.Stats().PagesRendered
}

// DiscoverStep finds the careers page of the company website.
//
// A link already on the report (from the company list) wins, then the site
// configuration, then the cache. Otherwise the home page is rendered and the
// discovery cascade runs. Not finding a careers page is not an error.
type DiscoverStep struct {
	session *Session
	finder  *discovery.Finder
	cache   CareerCache
	logger  *slog.Logger
}

// NewDiscoverStep creates a DiscoverStep. cache may be nil.
func NewDiscoverStep(session *Session, finder *discovery.Finder, cache CareerCache, logger *slog.Logger) *DiscoverStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &DiscoverStep{session: session, finder: finder, cache: cache, logger: logger}
}

// Name returns the step name.
func (s *DiscoverStep) Name() string {
	return "discover"
}

// Do executes the discovery step.
func (s *DiscoverStep) Do(ctx context.Context, report *model.CompanyReport) error {
	if report.CareerLink != "" {
		if report.CareerSource == model.SourceNone {
			report.CareerSource = model.SourceCache
		}
		return nil
	}
	if link := s.session.Site.CareerLink; link != "" {
		report.CareerLink, report.CareerSource = link, model.SourceConfig
		return nil
	}
	if s.cache != nil {
		link, err := s.cache.GetCareerLink(ctx, report.Website)
		if err != nil {
			s.logger.Warn("failed to read careers link cache", "website", report.Website, "error", err)
		} else if link != "" {
			report.CareerLink, report.CareerSource = link, model.SourceCache
			return nil
		}
	}

	website := resolve.EnsureScheme(report.Website)
	var (
		home    *dom.Document
		homeURL = website
	)
	page, err := s.session.Spider.Visit(ctx, website)
	s.session.record(report)
	switch {
	case err != nil && ctx.Err() != nil:
		return ctx.Err()
	case err != nil:
		s.logger.Warn("failed to render home page", "website", website, "error", err)
	default:
		homeURL = page.URL
		if home, err = dom.ParseString(page.HTML); err != nil {
			s.logger.Warn("failed to parse home page", "website", website, "error", err)
			home = nil
		}
	}

	link, source, err := s.finder.FindCareerPage(ctx, website, home, homeURL)
	if err != nil {
		return err
	}
	if link == "" {
		s.logger.Info("no careers page found", "website", report.Website)
		report.Advance(model.StatusNoCareerPage)
		return nil
	}

	s.logger.Info("found careers page", "website", report.Website, "link", link, "source", source.String())
	report.CareerLink, report.CareerSource = link, source
	return nil
}

// JobBoardStep follows the "view openings" button of the careers page.
// When there is none, the careers page itself is the listing page.
type JobBoardStep struct {
	session  *Session
	keywords []string
	logger   *slog.Logger
}

// NewJobBoardStep creates a JobBoardStep matching anchor texts against
// keywords.
func NewJobBoardStep(session *Session, keywords []string, logger *slog.Logger) *JobBoardStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobBoardStep{session: session, keywords: keywords, logger: logger}
}

// Name returns the step name.
func (s *JobBoardStep) Name() string {
	return "job_board"
}

// Do executes the job board step.
func (s *JobBoardStep) Do(ctx context.Context, report *model.CompanyReport) error {
	if report.CareerLink == "" {
		return nil
	}
	if link := s.session.Site.JobBoardLink; link != "" {
		report.JobBoardLink, report.ListingURL = link, link
		return nil
	}

	page, err := s.session.Spider.Visit(ctx, report.CareerLink)
	s.session.record(report)
	if err != nil {
		return fmt.Errorf("failed to render careers page: %w", err)
	}

	doc, err := dom.ParseClean(page.HTML)
	if err != nil {
		return fmt.Errorf("failed to parse careers page: %w", err)
	}

	if link, ok := discovery.FindJobBoardLink(doc, page.URL, s.keywords); ok {
		s.logger.Debug("found job board link", "website", report.Website, "link", link)
		report.JobBoardLink, report.ListingURL = link, link
		return nil
	}

	s.logger.Debug("no job board link, using careers page", "website", report.Website)
	s.session.careers = page
	report.ListingURL = page.URL
	return nil
}

// ListingStep infers the job template on the listing page and collects the
// job URLs.
type ListingStep struct {
	session *Session
	logger  *slog.Logger
}

// NewListingStep creates a ListingStep.
func NewListingStep(session *Session, logger *slog.Logger) *ListingStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ListingStep{session: session, logger: logger}
}

// Name returns the step name.
func (s *ListingStep) Name() string {
	return "listing"
}

// Do executes the listing step.
func (s *ListingStep) Do(ctx context.Context, report *model.CompanyReport) error {
	if report.ListingURL == "" {
		return nil
	}

	var (
		res *crawler.ListingResult
		err error
	)
	if c := s.session.careers; c != nil && c.URL == report.ListingURL {
		res, err = s.session.Spider.ScrapePage(c)
	} else {
		res, err = s.session.Spider.ScrapeListing(ctx, report.ListingURL)
		s.session.record(report)
	}
	if err != nil {
		return err
	}

	report.ListingURL = res.PageURL
	report.DistinctPatterns = res.Scrape.Table.Len()
	report.LinksFound = len(res.Scrape.Links)

	if !res.Scrape.Found() {
		s.logger.Info("no job template on listing page", "website", report.Website, "url", res.PageURL)
		report.Advance(model.StatusNoTemplate)
		return nil
	}

	report.Template = []string(res.Scrape.Template)
	report.TemplateCount = res.Scrape.Table.Count(res.Scrape.Template)
	report.LinksSkipped = res.Skipped + res.Capped
	report.JobURLs = res.JobURLs
	report.Advance(model.StatusNoJobs)

	s.logger.Info("inferred job template",
		"website", report.Website,
		"template", res.Scrape.Template.String(),
		"count", report.TemplateCount,
		"jobs", len(res.JobURLs),
	)
	return nil
}

// PostingStep renders every job URL and reads its posting.
type PostingStep struct {
	session *Session
	logger  *slog.Logger
}

// NewPostingStep creates a PostingStep.
func NewPostingStep(session *Session, logger *slog.Logger) *PostingStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostingStep{session: session, logger: logger}
}

// Name returns the step name.
func (s *PostingStep) Name() string {
	return "postings"
}

// Do executes the posting step. Jobs read before a cancellation are kept on
// the report.
func (s *PostingStep) Do(ctx context.Context, report *model.CompanyReport) error {
	if len(report.JobURLs) == 0 {
		return nil
	}

	jobs, err := s.session.Spider.ScrapeJobs(ctx, report.Website, report.JobURLs)
	s.session.record(report)
	for _, j := range jobs {
		report.AddJob(j)
	}
	if len(report.Jobs) > 0 {
		report.Advance(model.StatusJobsFound)
	}
	return err
}

// DefaultPipeline creates a pipeline with the four default steps sharing
// session.
//
// Design decision: We provide a default pipeline because:
// 1. Every company goes through the same stages
// 2. Reduces boilerplate in CLI
// 3. Ensures consistent ordering
func DefaultPipeline(session *Session, finder *discovery.Finder, cache CareerCache, keywords []string, opts ...Option) *Pipeline {
	p := New(opts...)
	p.AddSteps(
		NewDiscoverStep(session, finder, cache, p.logger),
		NewJobBoardStep(session, keywords, p.logger),
		NewListingStep(session, p.logger),
		NewPostingStep(session, p.logger),
	)
	return p
}

// DefaultFactory returns a Factory that opens a renderer per company with
// the company's site configuration and builds DefaultPipeline around it.
// prober is shared by all companies for discovery probes and must be safe
// for concurrent use. cache and logger may be nil.
func DefaultFactory(cfg *config.Config, renderers fetcher.Factory, prober discovery.Client, cache CareerCache, logger *slog.Logger, opts ...Option) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c model.Company) (*Pipeline, error) {
		site := cfg.SiteConfig(resolve.Host(resolve.EnsureScheme(c.Website)))
		renderer, err := renderers(
			fetcher.WithUserAgent(cfg.UserAgent),
			fetcher.WithCookie(site.Cookie),
			fetcher.WithHeaders(site.Headers),
			fetcher.WithTimeout(cfg.Timeout),
			fetcher.WithMaxBodySize(cfg.MaxBodySize),
			fetcher.WithLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to open renderer: %w", err)
		}

		maxJobs := cfg.MaxJobsPerCompany
		if site.MaxJobs > 0 {
			maxJobs = site.MaxJobs
		}
		spider := crawler.NewSpider(renderer,
			crawler.WithMaxJobs(maxJobs),
			crawler.WithDelay(cfg.CrawlDelay),
			crawler.WithCandidate(listing.NewCandidate(site.ContainerTag, site.AnchorTag)),
			crawler.WithStripSuffix(site.StripSuffix),
			crawler.WithIgnorePatterns(site.IgnorePatterns),
			crawler.WithFollowPatterns(site.FollowPatterns),
			crawler.WithSpiderLogger(logger),
		)
		finderOpts := []discovery.Option{
			discovery.WithProbeTimeout(cfg.ProbeTimeout),
			discovery.WithLogger(logger),
		}
		if len(site.Sitemaps) > 0 {
			finderOpts = append(finderOpts, discovery.WithSitemaps(site.Sitemaps))
		}
		finder := discovery.NewFinder(prober, finderOpts...)

		p := DefaultPipeline(NewSession(spider, site), finder, cache, cfg.JobKeywords,
			append([]Option{WithLogger(logger)}, opts...)...)
		p.AddCloser(renderer.Close)
		return p, nil
	}
}
