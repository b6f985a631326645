package discovery

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/careercrawl/internal/dom"
	"github.com/nao1215/careercrawl/internal/fetcher"
	"github.com/nao1215/careercrawl/internal/model"
	"github.com/nao1215/careercrawl/internal/resolve"
)

// Default probe lists.
var (
	// DefaultHrefKeywords mark a home page anchor as a careers link.
	DefaultHrefKeywords = []string{
		"career", "careers", "employment", "opportunities", "vacancies",
		"recruitment", "hiring", "work", "join-us", "job-listings", "jobs",
	}

	// DefaultSubdomains are tried as https://<sub>.<host>.
	DefaultSubdomains = []string{
		"careers", "recruitment", "jobs", "employment", "opportunities",
		"vacancies", "hiring", "join", "work", "jobboard",
	}

	// DefaultPaths are tried on the website root.
	DefaultPaths = []string{
		"/careers", "/jobs", "/career", "/employment", "/opportunities",
		"/join-us", "/work-with-us", "/vacancies", "/job-openings",
		"/recruitment", "/hiring", "/work-for-us", "/job-listings",
		"/career-opportunities", "/job-search",
	}

	// DefaultSitemaps are read for <loc> entries.
	DefaultSitemaps = []string{"/sitemap.xml", "/sitemap_index.xml"}

	// DefaultSitemapKeywords mark a sitemap entry as a careers page.
	DefaultSitemapKeywords = []string{"career", "job", "employment", "opportunity"}
)

var errNoHost = errors.New("website has no host")

// Client is what the Finder needs from the network.
// *fetcher.HTTPRenderer implements it.
type Client interface {
	// Probe returns the final status code of url.
	Probe(ctx context.Context, url string) (int, error)

	// Render returns the body of url.
	Render(ctx context.Context, url string) (*fetcher.Page, error)
}

// Finder runs the careers page discovery cascade.
type Finder struct {
	client          Client
	hrefKeywords    []string
	subdomains      []string
	paths           []string
	sitemaps        []string
	sitemapKeywords []string
	probeTimeout    time.Duration
	logger          *slog.Logger
}

// Option configures a Finder.
type Option func(*Finder)

// WithSubdomains replaces the subdomain list. An empty list disables the
// subdomain stage.
func WithSubdomains(subdomains []string) Option {
	return func(f *Finder) {
		f.subdomains = subdomains
	}
}

// WithPaths replaces the path list. An empty list disables the path stage.
func WithPaths(paths []string) Option {
	return func(f *Finder) {
		f.paths = paths
	}
}

// WithSitemaps replaces the sitemap list. An empty list disables the
// sitemap stage.
func WithSitemaps(sitemaps []string) Option {
	return func(f *Finder) {
		f.sitemaps = sitemaps
	}
}

// WithProbeTimeout bounds each probe.
func WithProbeTimeout(d time.Duration) Option {
	return func(f *Finder) {
		if d > 0 {
			f.probeTimeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Finder) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFinder creates a Finder that probes through client.
func NewFinder(client Client, opts ...Option) *Finder {
	f := &Finder{
		client:          client,
		hrefKeywords:    DefaultHrefKeywords,
		subdomains:      DefaultSubdomains,
		paths:           DefaultPaths,
		sitemaps:        DefaultSitemaps,
		sitemapKeywords: DefaultSitemapKeywords,
		probeTimeout:    10 * time.Second,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FindCareerPage returns the careers page of website and how it was found.
// home is the rendered home page and may be nil, in which case the anchor
// stage is skipped. homeURL is the URL home was rendered from.
//
// Only context cancellation is returned as an error; individual probe
// failures move on to the next candidate.
func (f *Finder) FindCareerPage(ctx context.Context, website string, home *dom.Document, homeURL string) (string, model.CareerSource, error) {
	if home != nil {
		if link, ok := FindCareerAnchor(home, homeURL, f.hrefKeywords); ok {
			return link, model.SourceAnchor, nil
		}
	}

	root, err := siteRoot(website)
	if err != nil {
		f.logger.Debug("cannot probe website", "website", website, "error", err)
		return "", model.SourceNone, nil
	}

	host := strings.TrimPrefix(root.Hostname(), "www.")
	for _, sub := range f.subdomains {
		candidate := "https://" + sub + "." + host
		if ok, err := f.probeOK(ctx, candidate); err != nil {
			return "", model.SourceNone, err
		} else if ok {
			return candidate, model.SourceSubdomain, nil
		}
	}

	for _, p := range f.paths {
		candidate, ok := resolve.ResolveString(p, root.String())
		if !ok {
			continue
		}
		if ok, err := f.probeOK(ctx, candidate); err != nil {
			return "", model.SourceNone, err
		} else if ok {
			return candidate, model.SourcePath, nil
		}
	}

	for _, p := range f.sitemaps {
		sitemapURL, ok := resolve.ResolveString(p, root.String())
		if !ok {
			continue
		}
		link, err := f.searchSitemap(ctx, sitemapURL)
		if err != nil {
			return "", model.SourceNone, err
		}
		if link != "" {
			return link, model.SourceSitemap, nil
		}
	}

	return "", model.SourceNone, nil
}

// probeOK reports whether url answers 200. Only a cancelled parent context
// is returned as an error.
func (f *Finder) probeOK(ctx context.Context, u string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	pctx, cancel := context.WithTimeout(ctx, f.probeTimeout)
	defer cancel()

	status, err := f.client.Probe(pctx, u)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		f.logger.Debug("probe failed", "url", u, "error", err)
		return false, nil
	}
	f.logger.Debug("probed", "url", u, "status", status)
	return status == http.StatusOK, nil
}

// searchSitemap returns the first <loc> of the sitemap that contains a
// careers keyword, or "".
func (f *Finder) searchSitemap(ctx context.Context, sitemapURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	pctx, cancel := context.WithTimeout(ctx, f.probeTimeout)
	defer cancel()

	page, err := f.client.Render(pctx, sitemapURL)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		f.logger.Debug("sitemap unavailable", "url", sitemapURL, "error", err)
		return "", nil
	}
	return FindSitemapEntry(page.HTML, f.sitemapKeywords), nil
}

// FindCareerAnchor returns the first anchor of doc, in document order,
// whose href contains one of keywords (case-insensitive), resolved against
// baseURL. Non-navigable hrefs are skipped.
func FindCareerAnchor(doc *dom.Document, baseURL string, keywords []string) (string, bool) {
	if doc.HTMLNode() == nil {
		return "", false
	}
	var found string
	goquery.NewDocumentFromNode(doc.HTMLNode()).Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		lower := strings.ToLower(href)
		for _, kw := range keywords {
			if !strings.Contains(lower, kw) {
				continue
			}
			if u, ok := resolve.ResolveString(href, baseURL); ok {
				found = u
				return false
			}
		}
		return true
	})
	return found, found != ""
}

// FindSitemapEntry returns the first <loc> value in a sitemap document
// containing one of keywords, or "".
func FindSitemapEntry(sitemap string, keywords []string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sitemap))
	if err != nil {
		return ""
	}
	var found string
	doc.Find("loc").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		loc := strings.TrimSpace(s.Text())
		lower := strings.ToLower(loc)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				found = loc
				return false
			}
		}
		return true
	})
	return found
}

// siteRoot returns the scheme and host of website with an empty path.
func siteRoot(website string) (*url.URL, error) {
	u, err := url.Parse(resolve.EnsureScheme(website))
	if err != nil {
		return nil, err
	}
	if u.Host == "" {
		return nil, &url.Error{Op: "parse", URL: website, Err: errNoHost}
	}
	return &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"}, nil
}
