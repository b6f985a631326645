// Package resolve turns hrefs extracted from a page into absolute URLs.
//
// Resolve is a pure function of (href, base). It never guesses a better base
// URL: callers keep the URL of the page they are on and, when a site repeats
// a path segment in its links, trim it with TrimSegmentSuffix before calling
// Resolve.
package resolve

import (
	"net/url"
	"strings"
)

// pseudoSchemes are href prefixes that never lead to a page.
var pseudoSchemes = []string{
	"javascript:",
	"mailto:",
	"tel:",
	"sms:",
	"data:",
	"about:",
	"blob:",
}

// Resolve returns the absolute URL for href found on the page at base.
// ok is false when href is nil or the link cannot be navigated to.
func Resolve(href *string, base string) (string, bool) {
	if href == nil {
		return "", false
	}
	return ResolveString(*href, base)
}

// ResolveString is Resolve for a present href.
//
// Rules, in order:
//  1. empty or pseudo-scheme hrefs (javascript:, mailto:, ...) are not navigable
//  2. hrefs with a scheme and a host are returned unchanged
//  3. root-relative hrefs ("/jobs/42") take the scheme and host of base and
//     keep their own path and query; both fragments are dropped
//  4. fragment hrefs ("#apply") are appended to base
//  5. anything else is resolved as an RFC 3986 relative reference
//
// Malformed input yields ok == false; the function never panics.
func ResolveString(href, base string) (string, bool) {
	h := strings.TrimSpace(href)
	if h == "" || isPseudoScheme(h) {
		return "", false
	}

	ref, err := url.Parse(h)
	if err != nil {
		return "", false
	}

	if ref.Scheme != "" && ref.Host != "" {
		return h, true
	}
	// A scheme without a host ("http:foo", "urn:x") has no page to visit.
	if ref.Scheme != "" {
		return "", false
	}

	b, err := parseBase(base)
	if err != nil {
		return "", false
	}

	switch {
	case strings.HasPrefix(h, "//"):
		return b.ResolveReference(ref).String(), true
	case strings.HasPrefix(h, "/"):
		u := url.URL{
			Scheme:   b.Scheme,
			Host:     b.Host,
			Path:     ref.Path,
			RawPath:  ref.RawPath,
			RawQuery: ref.RawQuery,
		}
		return u.String(), true
	case strings.HasPrefix(h, "#"):
		return withoutFragment(strings.TrimSpace(base)) + h, true
	default:
		return b.ResolveReference(ref).String(), true
	}
}

// parseBase parses base and requires it to be absolute.
func parseBase(base string) (*url.URL, error) {
	b, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return nil, err
	}
	if b.Scheme == "" || b.Host == "" {
		return nil, &url.Error{Op: "parse", URL: base, Err: errNotAbsolute}
	}
	return b, nil
}

func isPseudoScheme(href string) bool {
	lower := strings.ToLower(href)
	for _, p := range pseudoSchemes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

func withoutFragment(u string) string {
	if i := strings.IndexByte(u, '#'); i >= 0 {
		return u[:i]
	}
	return u
}
