package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/careers", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, `<html><body><p>ua=%s</p><p>cookie=%s</p><p>x=%s</p></body></html>`,
			r.UserAgent(), r.Header.Get("Cookie"), r.Header.Get("X-Site"))
	})
	mux.HandleFunc("/old-careers", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/careers", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/big", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", 1000)))
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// TestHTTPRenderer_Render tests rendering with the HTTP client.
func TestHTTPRenderer_Render(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	t.Run("sends user agent, cookie and headers", func(t *testing.T) {
		t.Parallel()

		r := NewHTTPRenderer(
			WithUserAgent("careercrawl-test"),
			WithCookie("consent=yes"),
			WithHeaders(map[string]string{"X-Site": "acme"}),
		)
		defer r.Close()

		page, err := r.Render(t.Context(), srv.URL+"/careers")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"ua=careercrawl-test", "cookie=consent=yes", "x=acme"} {
			if !strings.Contains(page.HTML, want) {
				t.Errorf("expected %q in body, got %s", want, page.HTML)
			}
		}
		if page.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %d", page.StatusCode)
		}
		if !strings.HasPrefix(page.ContentType, "text/html") {
			t.Errorf("unexpected content type %q", page.ContentType)
		}
		if page.FetchedAt.IsZero() {
			t.Error("expected FetchedAt to be set")
		}
	})

	t.Run("reports the final URL after redirects", func(t *testing.T) {
		t.Parallel()

		r := NewHTTPRenderer()
		defer r.Close()

		page, err := r.Render(t.Context(), srv.URL+"/old-careers")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.URL != srv.URL+"/careers" {
			t.Errorf("expected final URL %s/careers, got %s", srv.URL, page.URL)
		}
		if page.RequestedURL != srv.URL+"/old-careers" {
			t.Errorf("unexpected requested URL %s", page.RequestedURL)
		}
	})

	t.Run("error status", func(t *testing.T) {
		t.Parallel()

		r := NewHTTPRenderer()
		defer r.Close()

		_, err := r.Render(t.Context(), srv.URL+"/gone")
		if !errors.Is(err, ErrHTTPStatus) {
			t.Fatalf("expected ErrHTTPStatus, got %v", err)
		}
		var se *StatusError
		if !errors.As(err, &se) || se.StatusCode != http.StatusGone {
			t.Errorf("expected StatusError with 410, got %v", err)
		}
	})

	t.Run("limits the body size", func(t *testing.T) {
		t.Parallel()

		r := NewHTTPRenderer(WithMaxBodySize(100))
		defer r.Close()

		page, err := r.Render(t.Context(), srv.URL+"/big")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(page.HTML) != 100 {
			t.Errorf("expected 100 bytes, got %d", len(page.HTML))
		}
	})

	t.Run("rejects non-http schemes", func(t *testing.T) {
		t.Parallel()

		r := NewHTTPRenderer()
		defer r.Close()

		_, err := r.Render(t.Context(), "ftp://acme.com/careers")
		if !errors.Is(err, ErrUnsupportedScheme) {
			t.Errorf("expected ErrUnsupportedScheme, got %v", err)
		}
	})

	t.Run("closed renderer", func(t *testing.T) {
		t.Parallel()

		r := NewHTTPRenderer()
		if err := r.Close(); err != nil {
			t.Fatalf("unexpected close error: %v", err)
		}
		if err := r.Close(); err != nil {
			t.Errorf("expected second close to be a no-op, got %v", err)
		}
		if _, err := r.Render(t.Context(), srv.URL+"/careers"); !errors.Is(err, ErrClosed) {
			t.Errorf("expected ErrClosed, got %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		r := NewHTTPRenderer()
		defer r.Close()

		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		if _, err := r.Render(ctx, srv.URL+"/careers"); err == nil {
			t.Error("expected error for cancelled context")
		}
	})
}

// TestHTTPRenderer_Probe tests status probes.
func TestHTTPRenderer_Probe(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	r := NewHTTPRenderer(WithTimeout(5 * time.Second))
	defer r.Close()

	tests := []struct {
		path string
		want int
	}{
		{"/careers", http.StatusOK},
		{"/old-careers", http.StatusOK},
		{"/gone", http.StatusGone},
		{"/missing", http.StatusNotFound},
	}

	for _, tt := range tests {
		got, err := r.Probe(t.Context(), srv.URL+tt.path)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.path, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.path, tt.want, got)
		}
	}

	if _, err := r.Probe(t.Context(), "http://127.0.0.1:1/"); err == nil {
		t.Error("expected error for unreachable host")
	}
}

// TestStatusError tests the error message and matching.
func TestStatusError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("render: %w", &StatusError{URL: "https://acme.com/x", StatusCode: 503})
	if !errors.Is(err, ErrHTTPStatus) {
		t.Error("expected wrapped StatusError to match ErrHTTPStatus")
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("expected status in message, got %q", err.Error())
	}
}

// TestBrowserRenderer renders a local page in Chromium. It needs a browser
// and is skipped unless CAREERCRAWL_BROWSER_TEST is set.
func TestBrowserRenderer(t *testing.T) {
	if os.Getenv("CAREERCRAWL_BROWSER_TEST") == "" {
		t.Skip("set CAREERCRAWL_BROWSER_TEST=1 to run browser tests")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>
			<div id="banner"><button onclick="document.getElementById('banner').remove()">Accept all</button></div>
			<div id="jobs"></div>
			<script>document.getElementById('jobs').innerHTML = '<div><a href="/jobs/1">One</a></div>';</script>
		</body></html>`))
	}))
	defer srv.Close()

	b, err := LaunchBrowser()
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}
	defer b.Close()

	r, err := b.NewRenderer(WithTimeout(20 * time.Second))
	if err != nil {
		t.Fatalf("failed to open renderer: %v", err)
	}
	defer r.Close()

	page, err := r.Render(t.Context(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(page.HTML, `href="/jobs/1"`) {
		t.Errorf("expected script-built listing in DOM, got %s", page.HTML)
	}
	if strings.Contains(page.HTML, "Accept all") {
		t.Error("expected cookie banner to be dismissed")
	}
}
