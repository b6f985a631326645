package resolve

import (
	"testing"
)

func ptr(s string) *string { return &s }

// TestResolve tests href resolution against a page URL.
func TestResolve(t *testing.T) {
	t.Parallel()

	const base = "https://acme.com/careers"

	tests := []struct {
		name   string
		href   *string
		base   string
		want   string
		wantOK bool
	}{
		// Root-relative
		{"root relative", ptr("/jobs/42"), base, "https://acme.com/jobs/42", true},
		{"root relative keeps query", ptr("/jobs?id=7"), base, "https://acme.com/jobs?id=7", true},
		{"root relative drops fragments", ptr("/jobs/1#top"), base + "#old", "https://acme.com/jobs/1", true},
		{"root relative ignores base path", ptr("/a"), "https://acme.com/x/y/z?q=1", "https://acme.com/a", true},

		// Fragments
		{"fragment", ptr("#apply-now"), base, "https://acme.com/careers#apply-now", true},
		{"fragment replaces base fragment", ptr("#b"), base + "#a", "https://acme.com/careers#b", true},

		// Pseudo schemes
		{"javascript void", ptr("javascript:void(0)"), base, "", false},
		{"javascript upper case", ptr("JavaScript:void(0)"), base, "", false},
		{"mailto", ptr("mailto:jobs@acme.com"), base, "", false},
		{"tel", ptr("tel:+123"), base, "", false},
		{"data", ptr("data:text/html,hi"), base, "", false},

		// Absolute
		{"absolute unchanged", ptr("https://other.com/x"), base, "https://other.com/x", true},
		{"absolute kept verbatim", ptr("HTTPS://Other.com/X?a=1#f"), base, "HTTPS://Other.com/X?a=1#f", true},
		{"absolute with bad base", ptr("https://other.com/x"), "::bad", "https://other.com/x", true},

		// Path relative
		{"path relative", ptr("vacancies"), base, "https://acme.com/vacancies", true},
		{"path relative under directory", ptr("vacancies"), "https://acme.com/careers/", "https://acme.com/careers/vacancies", true},
		{"dot segments", ptr("../jobs/./1"), "https://acme.com/a/b/c", "https://acme.com/a/jobs/1", true},
		{"query only", ptr("?page=2"), base, "https://acme.com/careers?page=2", true},
		{"protocol relative", ptr("//cdn.acme.com/jobs"), base, "https://cdn.acme.com/jobs", true},

		// Not navigable
		{"nil href", nil, base, "", false},
		{"empty href", ptr(""), base, "", false},
		{"blank href", ptr("   "), base, "", false},
		{"scheme without host", ptr("urn:isbn:123"), base, "", false},
		{"relative with relative base", ptr("jobs"), "acme.com", "", false},
		{"malformed href", ptr("http://[::1"), base, "", false},
		{"malformed base", ptr("/jobs"), "http://[::1", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := Resolve(tt.href, tt.base)
			if ok != tt.wantOK {
				t.Fatalf("Resolve ok = %v, want %v (got %q)", ok, tt.wantOK, got)
			}
			if got != tt.want {
				t.Errorf("Resolve = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestResolveTotality feeds odd strings to the resolver; it must answer
// every one of them without panicking.
func TestResolveTotality(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"", " ", "#", "/", "//", "///", "?", "%", "%zz", "\x00", "\x7f",
		"http://", "https://%", ":", "::", "a:b:c", "javascript", "../../../../",
		"été/offres", "/jobs/senior engineer", "http://[fe80::1%en0]/",
	}
	bases := []string{"https://acme.com/careers", "", "not a url", "http://[::1"}

	for _, base := range bases {
		for _, in := range inputs {
			_, _ = ResolveString(in, base)
		}
	}
}

// TestTrimSegmentSuffix tests removing a duplicated trailing segment.
func TestTrimSegmentSuffix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		base    string
		segment string
		want    string
	}{
		{"trailing slash", "https://acme.com/careers/", "careers/", "https://acme.com/"},
		{"no trailing slash", "https://acme.com/careers", "careers", "https://acme.com/"},
		{"nested", "https://acme.com/en/careers/", "careers", "https://acme.com/en/"},
		{"not a suffix", "https://acme.com/careers/list", "careers", "https://acme.com/careers/list"},
		{"partial segment", "https://acme.com/mycareers", "careers", "https://acme.com/mycareers"},
		{"empty segment", "https://acme.com/careers", "", "https://acme.com/careers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := TrimSegmentSuffix(tt.base, tt.segment); got != tt.want {
				t.Errorf("TrimSegmentSuffix(%q, %q) = %q, want %q", tt.base, tt.segment, got, tt.want)
			}
		})
	}

	t.Run("resolving after trimming avoids a doubled segment", func(t *testing.T) {
		t.Parallel()

		base := TrimSegmentSuffix("https://acme.com/careers/", "careers/")
		got, ok := ResolveString("careers/engineer", base)
		if !ok || got != "https://acme.com/careers/engineer" {
			t.Errorf("got %q, %v", got, ok)
		}
	})
}

// TestNormalize tests URL canonicalisation for deduplication.
func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"https://Acme.com/jobs#apply", "https://acme.com/jobs"},
		{"HTTPS://acme.com", "https://acme.com/"},
		{"https://acme.com/jobs?id=1", "https://acme.com/jobs?id=1"},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestEnsureScheme tests website normalisation for company lists.
func TestEnsureScheme(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"acme.com", "https://acme.com"},
		{"http://acme.com", "https://acme.com"},
		{"https://acme.com/", "https://acme.com/"},
		{"  ", ""},
	}

	for _, tt := range tests {
		if got := EnsureScheme(tt.in); got != tt.want {
			t.Errorf("EnsureScheme(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestHost tests host extraction.
func TestHost(t *testing.T) {
	t.Parallel()

	if got := Host("https://WWW.Acme.com:8443/careers"); got != "acme.com" {
		t.Errorf("expected acme.com, got %q", got)
	}
	if got := Host("http://[::1"); got != "" {
		t.Errorf("expected empty host, got %q", got)
	}
}
