// Package posting reads a job title and description out of a rendered job
// page.
//
// Job pages have no common markup, so extraction is heuristic: the title is
// the first non-empty h1 (then h2, then h3) and the description is the
// div, p or span holding the most words. The description element is also
// converted to Markdown so stored postings keep lists and headings.
package posting
