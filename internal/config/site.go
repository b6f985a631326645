package config

import (
	"strings"
)

// SiteConfig holds site-specific configuration for one company website.
// This allows customizing discovery and extraction per site when the
// defaults pick the wrong page or the wrong containers.
type SiteConfig struct {
	// Cookie is an HTTP cookie to send when rendering this site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// CareerLink skips discovery and uses this careers page.
	CareerLink string `yaml:"careerLink,omitempty"`

	// JobBoardLink skips the job board button lookup and uses this listing
	// page directly.
	JobBoardLink string `yaml:"jobBoardLink,omitempty"`

	// ContainerTag is the tag of the repeated list items. Defaults to "div".
	ContainerTag string `yaml:"containerTag,omitempty"`

	// AnchorTag is the tag a container must contain to be a list item.
	// Defaults to "a".
	AnchorTag string `yaml:"anchorTag,omitempty"`

	// StripSuffix is a path segment removed from the end of the listing URL
	// before relative links are resolved, for sites whose links repeat it
	// (e.g. "careers/").
	StripSuffix string `yaml:"stripSuffix,omitempty"`

	// IgnorePatterns are glob patterns on the URL path of job links to drop.
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`

	// FollowPatterns are glob patterns on the URL path of job links to keep.
	// If specified, only links matching one of them are visited.
	FollowPatterns []string `yaml:"followPatterns,omitempty"`

	// Sitemaps replaces the sitemap paths read during discovery. Entries
	// are resolved against the home page, so absolute URLs work too.
	Sitemaps []string `yaml:"sitemaps,omitempty"`

	// MaxJobs overrides the global per-company job cap. 0 means "use global".
	MaxJobs int `yaml:"maxJobs,omitempty"`
}

// File represents the structure of the .careercrawl configuration file.
type File struct {
	// Sites maps hosts to their site-specific configurations.
	// Keys are host names without scheme or "www." (e.g., "acme.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains default site configuration applied to all sites
	// unless overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`

	// JobKeywords replaces the built-in job board keywords when set.
	JobKeywords []string `yaml:"jobKeywords,omitempty"`
}

// GetSiteConfig returns the configuration for a host.
// It merges the site-specific configuration with defaults. The lookup
// ignores case and a leading "www.".
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults
	if result.Headers != nil {
		headers := make(map[string]string, len(result.Headers))
		for k, v := range result.Headers {
			headers[k] = v
		}
		result.Headers = headers
	}

	siteConfig, ok := cf.lookup(host)
	if !ok {
		return result
	}

	if siteConfig.Cookie != "" {
		result.Cookie = siteConfig.Cookie
	}
	if len(siteConfig.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string)
		}
		for k, v := range siteConfig.Headers {
			result.Headers[k] = v
		}
	}
	if siteConfig.CareerLink != "" {
		result.CareerLink = siteConfig.CareerLink
	}
	if siteConfig.JobBoardLink != "" {
		result.JobBoardLink = siteConfig.JobBoardLink
	}
	if siteConfig.ContainerTag != "" {
		result.ContainerTag = siteConfig.ContainerTag
	}
	if siteConfig.AnchorTag != "" {
		result.AnchorTag = siteConfig.AnchorTag
	}
	if siteConfig.StripSuffix != "" {
		result.StripSuffix = siteConfig.StripSuffix
	}
	if len(siteConfig.IgnorePatterns) > 0 {
		result.IgnorePatterns = siteConfig.IgnorePatterns
	}
	if len(siteConfig.FollowPatterns) > 0 {
		result.FollowPatterns = siteConfig.FollowPatterns
	}
	if len(siteConfig.Sitemaps) > 0 {
		result.Sitemaps = siteConfig.Sitemaps
	}
	if siteConfig.MaxJobs != 0 {
		result.MaxJobs = siteConfig.MaxJobs
	}

	return result
}

func (cf *File) lookup(host string) (SiteConfig, bool) {
	if sc, ok := cf.Sites[host]; ok {
		return sc, true
	}
	want := strings.TrimPrefix(strings.ToLower(host), "www.")
	for k, sc := range cf.Sites {
		if strings.TrimPrefix(strings.ToLower(k), "www.") == want {
			return sc, true
		}
	}
	return SiteConfig{}, false
}
