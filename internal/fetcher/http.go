package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"
)

// probeReadLimit is how much of a probe response body is drained so the
// connection can be reused.
const probeReadLimit = 64 * 1024

// HTTPRenderer fetches pages with net/http.
//
// Design decision: We keep a plain HTTP renderer next to the browser
// because discovery sends dozens of probes per company, and a browser
// round trip for each of them would dominate the run time.
type HTTPRenderer struct {
	opts   *options
	client *http.Client
	closed atomic.Bool
}

// NewHTTPRenderer creates an HTTPRenderer.
func NewHTTPRenderer(opts ...Option) *HTTPRenderer {
	o := newOptions(opts)
	client := o.client
	if client == nil {
		client = &http.Client{Timeout: o.timeout}
	}
	return &HTTPRenderer{opts: o, client: client}
}

// Render performs a GET request and returns the body as HTML.
// A status >= 400 yields a *StatusError.
func (r *HTTPRenderer) Render(ctx context.Context, pageURL string) (*Page, error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}

	resp, err := r.do(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, probeReadLimit)) //nolint:errcheck // draining only
		return nil, &StatusError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, r.opts.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", pageURL, err)
	}

	finalURL := pageURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Page{
		URL:          finalURL,
		RequestedURL: pageURL,
		StatusCode:   resp.StatusCode,
		ContentType:  resp.Header.Get("Content-Type"),
		HTML:         string(body),
		FetchedAt:    time.Now(),
	}, nil
}

// Probe requests pageURL and returns the final status code. Redirects are
// followed. An error is returned only when no response was received.
func (r *HTTPRenderer) Probe(ctx context.Context, pageURL string) (int, error) {
	if r.closed.Load() {
		return 0, ErrClosed
	}

	resp, err := r.do(ctx, pageURL)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, probeReadLimit)) //nolint:errcheck // draining only

	return resp.StatusCode, nil
}

// Close marks the renderer closed and drops idle connections.
func (r *HTTPRenderer) Close() error {
	if r.closed.Swap(true) {
		return nil
	}
	r.client.CloseIdleConnections()
	return nil
}

func (r *HTTPRenderer) do(ctx context.Context, pageURL string) (*http.Response, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", pageURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", r.opts.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	if r.opts.cookie != "" {
		req.Header.Set("Cookie", r.opts.cookie)
	}
	for k, v := range r.opts.headers {
		req.Header.Set(k, v)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	return resp, nil
}
