package posting

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"

	"github.com/nao1215/careercrawl/internal/dom"
)

// Default tag lists, in priority order for titles.
var (
	TitleTags       = []string{"h1", "h2", "h3"}
	DescriptionTags = []string{"div", "p", "span"}
)

// Posting is what the heuristic found on one page.
type Posting struct {
	// Title may be empty when the page has no headings.
	Title string

	// Description is the collapsed text of the largest text block.
	Description string

	// Markdown is the description element rendered as Markdown. Empty when
	// the conversion failed.
	Markdown string
}

// Extractor runs the heuristic. It is safe for concurrent use.
type Extractor struct {
	md *converter.Converter
}

// NewExtractor creates an Extractor with the base, CommonMark and table
// Markdown plugins.
func NewExtractor() *Extractor {
	return &Extractor{
		md: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

// Extract returns the posting on doc. pageURL makes relative links in the
// Markdown absolute. It returns false when no element holds any words.
func (e *Extractor) Extract(doc *dom.Document, pageURL string) (Posting, bool) {
	block, text := LargestTextBlock(doc, DescriptionTags)
	if block == nil {
		return Posting{}, false
	}

	p := Posting{Title: Title(doc), Description: text}
	if raw, err := block.OuterHTML(); err == nil && raw != "" {
		if md, err := e.md.ConvertString(raw, converter.WithDomain(pageURL)); err == nil {
			p.Markdown = strings.TrimSpace(md)
		}
	}
	return p, true
}

// Title returns the collapsed text of the first non-empty heading, trying
// TitleTags in order. Empty headings are skipped.
func Title(doc *dom.Document) string {
	for _, tag := range TitleTags {
		for _, h := range doc.FindAll(tag) {
			if t := h.CollapsedText(); t != "" {
				return t
			}
		}
	}
	return ""
}

// LargestTextBlock returns the element among tags with the most
// whitespace-separated words, together with its collapsed text. Tags are
// scanned in the order given and an element only replaces the current best
// when it has strictly more words. It returns nil when no element holds a
// word.
func LargestTextBlock(doc *dom.Document, tags []string) (*dom.Node, string) {
	var (
		best      *dom.Node
		bestText  string
		bestWords int
	)
	for _, tag := range tags {
		for _, n := range doc.FindAll(tag) {
			words := strings.Fields(n.Text())
			if len(words) > bestWords {
				best = n
				bestWords = len(words)
				bestText = strings.Join(words, " ")
			}
		}
	}
	return best, bestText
}
