package listing

import (
	"github.com/nao1215/careercrawl/internal/dom"
	"github.com/nao1215/careercrawl/internal/resolve"
)

// LinkEntry is one anchor pulled out of a matched container.
type LinkEntry struct {
	// Href is the raw href attribute. Nil when the anchor has none.
	Href *string

	// Label is the anchor text with whitespace collapsed.
	Label string
}

// HrefString returns the href, or "" when it is absent.
func (e LinkEntry) HrefString() string {
	if e.Href == nil {
		return ""
	}
	return *e.Href
}

// Link is a LinkEntry together with its resolved URL.
type Link struct {
	LinkEntry

	// URL is the absolute URL. Empty when Navigable is false.
	URL string

	// Navigable is false for missing hrefs, pseudo-schemes and malformed input.
	Navigable bool
}

// ExtractLinks returns one LinkEntry per descendant anchor of each match.
// Order follows the matches first and the anchors' document order second.
// Entries are not deduplicated: the same href may appear with two labels.
func ExtractLinks(matches []*dom.Node, anchorTag string) []LinkEntry {
	entries := make([]LinkEntry, 0)
	for _, m := range matches {
		for _, a := range m.FindAll(anchorTag) {
			entry := LinkEntry{Label: a.CollapsedText()}
			if href, ok := a.Attr("href"); ok {
				entry.Href = &href
			}
			entries = append(entries, entry)
		}
	}
	return entries
}

// ResolveLinks resolves every entry against baseURL, keeping order.
// Non-navigable entries are kept with Navigable set to false so callers can
// count them; they must not be visited.
func ResolveLinks(entries []LinkEntry, baseURL string) []Link {
	links := make([]Link, 0, len(entries))
	for _, e := range entries {
		u, ok := resolve.Resolve(e.Href, baseURL)
		links = append(links, Link{LinkEntry: e, URL: u, Navigable: ok})
	}
	return links
}

// Result is the outcome of running the whole pipeline over one document.
type Result struct {
	// Template is the inferred item fingerprint. Nil when none was found.
	Template TagPattern

	// Table is the frequency table the template was chosen from.
	Table *FrequencyTable

	// Matches is the number of containers that share the template.
	Matches int

	// Links holds the extracted and resolved links in page order.
	Links []Link
}

// Found reports whether a template was inferred.
func (r *Result) Found() bool {
	return len(r.Template) > 0
}

// NavigableURLs returns the URLs of the navigable links in page order.
// Duplicates are kept; deduplication policy belongs to the caller.
func (r *Result) NavigableURLs() []string {
	urls := make([]string, 0, len(r.Links))
	for _, l := range r.Links {
		if l.Navigable {
			urls = append(urls, l.URL)
		}
	}
	return urls
}

// Scrape runs fingerprint, count, match, extract and resolve over doc.
// baseURL is the URL of the page doc was rendered from.
func Scrape(doc *dom.Document, cand Candidate, baseURL string) *Result {
	table := Count(doc, cand)
	template, ok := table.Max()
	if !ok {
		return &Result{Table: table, Links: make([]Link, 0)}
	}

	matches := FindMatches(doc, template, cand)
	entries := ExtractLinks(matches, cand.AnchorTag)

	return &Result{
		Template: template,
		Table:    table,
		Matches:  len(matches),
		Links:    ResolveLinks(entries, baseURL),
	}
}
