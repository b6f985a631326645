package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// ConsentText is the text a cookie banner button must contain to be
// clicked.
const ConsentText = "Accept"

// clickConsentJS clicks the first button or link whose visible text
// contains the given string and returns that text, or "" when none matched.
const clickConsentJS = `(text) => {
	for (const el of document.querySelectorAll('button, a')) {
		const t = (el.innerText || el.textContent || '').trim();
		if (t.includes(text)) {
			el.click();
			return t;
		}
	}
	return '';
}`

// navigationStatusJS reads the main document's status from the Navigation
// Timing API. 0 means the browser does not expose it.
const navigationStatusJS = `() => {
	const nav = performance.getEntriesByType('navigation')[0];
	return nav && nav.responseStatus ? nav.responseStatus : 0;
}`

// Browser is a launched Chromium shared by BrowserRenderers.
// Each renderer opens its own tab, so renderers may be used from
// different goroutines.
type Browser struct {
	browser *rod.Browser
	lnch    *launcher.Launcher
	logger  *slog.Logger

	// keepProfile leaves the user data dir on disk at Close.
	keepProfile bool

	mu     sync.Mutex
	closed bool
}

type browserConfig struct {
	headless  bool
	bin       string
	remoteURL string
	dataDir   string
	logger    *slog.Logger
}

// BrowserOption configures LaunchBrowser.
type BrowserOption func(*browserConfig)

// WithHeadless selects headless (true) or windowed (false) Chromium.
func WithHeadless(headless bool) BrowserOption {
	return func(c *browserConfig) {
		c.headless = headless
	}
}

// WithBrowserBin sets the Chromium binary. When empty, a system browser is
// looked up and rod downloads one if none is found.
func WithBrowserBin(path string) BrowserOption {
	return func(c *browserConfig) {
		c.bin = path
	}
}

// WithRemoteURL connects to an already running browser's DevTools
// WebSocket instead of launching one.
func WithRemoteURL(u string) BrowserOption {
	return func(c *browserConfig) {
		c.remoteURL = u
	}
}

// WithUserDataDir keeps the browser profile in dir, so consent cookies
// survive between runs. Ignored for remote browsers.
func WithUserDataDir(dir string) BrowserOption {
	return func(c *browserConfig) {
		c.dataDir = dir
	}
}

// WithBrowserLogger sets the logger.
func WithBrowserLogger(logger *slog.Logger) BrowserOption {
	return func(c *browserConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// LaunchBrowser starts Chromium (or connects to a remote one) and returns
// the shared handle. Close must be called to stop the process.
func LaunchBrowser(opts ...BrowserOption) (*Browser, error) {
	cfg := &browserConfig{headless: true, logger: slog.Default()}
	for _, opt := range opts {
		opt(cfg)
	}

	wsURL := cfg.remoteURL
	var lnch *launcher.Launcher
	if wsURL == "" {
		lnch = launcher.New().Headless(cfg.headless)
		bin := cfg.bin
		if bin == "" {
			if path, ok := launcher.LookPath(); ok {
				bin = path
			}
		}
		if bin != "" {
			lnch = lnch.Bin(bin)
		}
		if cfg.dataDir != "" {
			lnch = lnch.UserDataDir(cfg.dataDir)
		}
		lnch = lnch.Set("disable-blink-features", "AutomationControlled")

		u, err := lnch.Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
		wsURL = u
		cfg.logger.Debug("launched browser", "headless", cfg.headless)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		if lnch != nil {
			lnch.Kill()
		}
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	return &Browser{browser: b, lnch: lnch, logger: cfg.logger, keepProfile: cfg.dataDir != ""}, nil
}

// NewRenderer opens a stealth tab and returns a renderer bound to it.
func (b *Browser) NewRenderer(opts ...Option) (*BrowserRenderer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}

	page, err := stealth.Page(b.browser)
	if err != nil {
		return nil, fmt.Errorf("failed to open tab: %w", err)
	}

	o := newOptions(opts)
	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: o.userAgent}); err != nil {
		o.logger.Debug("failed to set user agent", "error", err)
	}
	if len(o.headers) > 0 {
		dict := make([]string, 0, len(o.headers)*2)
		for k, v := range o.headers {
			dict = append(dict, k, v)
		}
		if _, err := page.SetExtraHeaders(dict); err != nil {
			_ = page.Close() //nolint:errcheck // already failing
			return nil, fmt.Errorf("failed to set headers: %w", err)
		}
	}

	return &BrowserRenderer{page: page, opts: o}, nil
}

// Factory returns a Factory that opens a new tab per renderer.
func (b *Browser) Factory() Factory {
	return func(opts ...Option) (Renderer, error) {
		return b.NewRenderer(opts...)
	}
}

// Close closes the browser and stops the launched process.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	err := b.browser.Close()
	switch {
	case b.lnch == nil:
	case b.keepProfile:
		b.lnch.Kill()
	default:
		b.lnch.Cleanup()
	}
	return err
}

// BrowserRenderer renders pages in one browser tab.
type BrowserRenderer struct {
	page   *rod.Page
	opts   *options
	closed atomic.Bool
}

// Render navigates the tab to pageURL, waits for the page to settle,
// dismisses a cookie banner and returns the live DOM.
func (r *BrowserRenderer) Render(ctx context.Context, pageURL string) (*Page, error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", pageURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, pageURL)
	}

	if err := r.setCookies(pageURL); err != nil {
		r.opts.logger.Debug("failed to set cookies", "url", pageURL, "error", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, r.opts.timeout)
	defer cancel()
	page := r.page.Context(navCtx)

	if err := page.Navigate(pageURL); err != nil {
		return nil, fmt.Errorf("failed to navigate to %s: %w", pageURL, err)
	}
	if err := page.WaitLoad(); err != nil {
		r.opts.logger.Warn("page did not finish loading", "url", pageURL, "error", err)
	}
	r.waitIdle(page)

	if clicked := r.dismissConsent(page); clicked != "" {
		r.opts.logger.Debug("dismissed cookie banner", "url", pageURL, "button", clicked)
		r.waitIdle(page)
	}

	status := 0
	if res, err := page.Eval(navigationStatusJS); err == nil {
		status = res.Value.Int()
	}
	if status >= http.StatusBadRequest {
		return nil, &StatusError{URL: pageURL, StatusCode: status}
	}

	res, err := page.Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		if errors.Is(navCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("timed out rendering %s: %w", pageURL, err)
		}
		return nil, fmt.Errorf("failed to read DOM of %s: %w", pageURL, err)
	}

	finalURL := pageURL
	if info, err := page.Info(); err == nil && info.URL != "" {
		finalURL = info.URL
	}

	return &Page{
		URL:          finalURL,
		RequestedURL: pageURL,
		StatusCode:   status,
		ContentType:  "text/html",
		HTML:         res.Value.Str(),
		FetchedAt:    time.Now(),
	}, nil
}

// Close closes the tab.
func (r *BrowserRenderer) Close() error {
	if r.closed.Swap(true) {
		return nil
	}
	return r.page.Close()
}

// waitIdle waits for the network to be quiet, but never longer than a few
// idle periods so that pages with polling or sockets do not hang the run.
func (r *BrowserRenderer) waitIdle(page *rod.Page) {
	if r.opts.idleWait <= 0 {
		return
	}
	page.Timeout(10*r.opts.idleWait).WaitRequestIdle(r.opts.idleWait, nil, nil, nil)()
}

func (r *BrowserRenderer) dismissConsent(page *rod.Page) string {
	res, err := page.Eval(clickConsentJS, ConsentText)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

func (r *BrowserRenderer) setCookies(pageURL string) error {
	if strings.TrimSpace(r.opts.cookie) == "" {
		return nil
	}
	cookies, err := http.ParseCookie(r.opts.cookie)
	if err != nil {
		return err
	}
	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		params = append(params, &proto.NetworkCookieParam{Name: c.Name, Value: c.Value, URL: pageURL})
	}
	return r.page.SetCookies(params)
}
