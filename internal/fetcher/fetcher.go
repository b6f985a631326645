package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

var (
	// ErrHTTPStatus is returned when the server answers with a status >= 400.
	ErrHTTPStatus = errors.New("unexpected HTTP status")

	// ErrUnsupportedScheme is returned for URLs that are not http or https.
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")

	// ErrClosed is returned by Render after Close.
	ErrClosed = errors.New("renderer is closed")
)

// StatusError carries the status code of a failed render.
// It matches ErrHTTPStatus with errors.Is.
type StatusError struct {
	URL        string
	StatusCode int
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s returned %d", ErrHTTPStatus, e.URL, e.StatusCode)
}

// Is makes errors.Is(err, ErrHTTPStatus) true.
func (e *StatusError) Is(target error) bool {
	return target == ErrHTTPStatus
}

// Page is one rendered page.
type Page struct {
	// URL is the final URL after redirects. Links on the page resolve
	// against it.
	URL string

	// RequestedURL is the URL passed to Render.
	RequestedURL string

	// StatusCode is the HTTP status of the main document. The browser
	// renderer reports 0 when Chromium does not expose it.
	StatusCode int

	// ContentType is the Content-Type header when known.
	ContentType string

	// HTML is the document markup.
	HTML string

	// FetchedAt is when rendering finished.
	FetchedAt time.Time
}

// Renderer turns a URL into a Page.
type Renderer interface {
	// Render loads url and returns its markup. It honors ctx cancellation.
	Render(ctx context.Context, url string) (*Page, error)

	// Close releases the renderer's resources. Render must not be called
	// afterwards.
	Close() error
}

// Factory creates a Renderer configured with site-specific options.
type Factory func(opts ...Option) (Renderer, error)

// options are shared by both renderers.
type options struct {
	userAgent   string
	cookie      string
	headers     map[string]string
	maxBodySize int64
	timeout     time.Duration
	idleWait    time.Duration
	client      *http.Client
	logger      *slog.Logger
}

// Option configures a renderer.
type Option func(*options)

// WithUserAgent sets the User-Agent sent with requests.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		if ua != "" {
			o.userAgent = ua
		}
	}
}

// WithCookie sets a cookie header value ("a=1; b=2").
func WithCookie(cookie string) Option {
	return func(o *options) {
		o.cookie = cookie
	}
}

// WithHeaders adds custom request headers.
func WithHeaders(headers map[string]string) Option {
	return func(o *options) {
		if len(headers) == 0 {
			return
		}
		if o.headers == nil {
			o.headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			o.headers[k] = v
		}
	}
}

// WithMaxBodySize limits the bytes read from a response body.
// Only used by HTTPRenderer.
func WithMaxBodySize(size int64) Option {
	return func(o *options) {
		if size > 0 {
			o.maxBodySize = size
		}
	}
}

// WithTimeout bounds a single Render call.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithIdleWait sets how long the network must be quiet before the browser
// renderer captures the DOM.
func WithIdleWait(d time.Duration) Option {
	return func(o *options) {
		o.idleWait = d
	}
}

// WithHTTPClient replaces the HTTP client. Only used by HTTPRenderer.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.client = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		userAgent:   "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
		maxBodySize: 5 * 1024 * 1024,
		timeout:     30 * time.Second,
		idleWait:    500 * time.Millisecond,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
