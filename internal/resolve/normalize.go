package resolve

import (
	"errors"
	"net/url"
	"strings"
)

var errNotAbsolute = errors.New("base URL must have a scheme and a host")

// TrimSegmentSuffix removes segment from the end of base's path when it is
// already there, so that links which repeat the segment are not resolved
// into ".../careers/careers/...". The trailing slash is kept.
//
// It is meant for callers building the base URL; Resolve never calls it.
// base is returned unchanged when it cannot be parsed or does not end with
// segment.
func TrimSegmentSuffix(base, segment string) string {
	seg := strings.Trim(segment, "/")
	if seg == "" {
		return base
	}
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	p := strings.TrimSuffix(u.Path, "/")
	if !strings.HasSuffix(p, "/"+seg) {
		return base
	}
	u.Path = strings.TrimSuffix(p, seg)
	u.RawPath = ""
	return u.String()
}

// Normalize returns a canonical form of rawURL for deduplication.
//
// Design decision: We normalize URLs because:
//  1. The fragment does not change the fetched page
//  2. Scheme and host are case-insensitive
//  3. An empty path and "/" point at the same resource
func Normalize(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return rawURL
	}
	u.Fragment = ""
	u.RawFragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String()
}

// Host returns the lower-case host of rawURL without a leading "www.".
// It returns "" when rawURL cannot be parsed.
func Host(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// EnsureScheme adds "https://" to a bare domain and upgrades "http://" to
// "https://". Company lists often hold "acme.com" or plain http links.
func EnsureScheme(website string) string {
	w := strings.TrimSpace(website)
	if w == "" {
		return ""
	}
	lower := strings.ToLower(w)
	switch {
	case strings.HasPrefix(lower, "https://"):
		return w
	case strings.HasPrefix(lower, "http://"):
		return "https://" + w[len("http://"):]
	default:
		return "https://" + w
	}
}
