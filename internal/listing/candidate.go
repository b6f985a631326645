package listing

import "github.com/nao1215/careercrawl/internal/dom"

// Default tags used when a site does not configure its own.
const (
	// DefaultContainerTag is the layout tag whose elements are considered as
	// list items.
	DefaultContainerTag = "div"

	// DefaultAnchorTag is the tag that carries navigable links.
	DefaultAnchorTag = "a"
)

// Candidate decides which elements take part in template inference and
// matching. Keeping it a value lets the same engine target other container
// tags (li, article, tr) per site.
type Candidate struct {
	// Tag is the container element name.
	Tag string

	// AnchorTag is the link element name. A container qualifies only when it
	// has at least one descendant with this tag.
	AnchorTag string
}

// DefaultCandidate matches <div> elements holding at least one <a>.
var DefaultCandidate = Candidate{Tag: DefaultContainerTag, AnchorTag: DefaultAnchorTag}

// NewCandidate returns a Candidate for the given tags. Empty values fall
// back to the defaults.
func NewCandidate(containerTag, anchorTag string) Candidate {
	c := DefaultCandidate
	if containerTag != "" {
		c.Tag = containerTag
	}
	if anchorTag != "" {
		c.AnchorTag = anchorTag
	}
	return c
}

// Match reports whether n is a candidate container.
func (c Candidate) Match(n *dom.Node) bool {
	return n.IsElement() && n.Tag == c.Tag && n.HasDescendant(c.AnchorTag)
}

// Elements returns every candidate of doc in document order.
func (c Candidate) Elements(doc *dom.Document) []*dom.Node {
	var out []*dom.Node
	for _, n := range doc.FindAll(c.Tag) {
		if c.Match(n) {
			out = append(out, n)
		}
	}
	return out
}
