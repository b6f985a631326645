package listing

import (
	"strings"

	"github.com/nao1215/careercrawl/internal/dom"
)

// TagPattern is the ordered sequence of tag names produced by a pre-order
// traversal of a subtree. It is a structural fingerprint: attributes, text
// and whitespace do not affect it.
type TagPattern []string

// Equal reports whether p and other hold the same tags in the same order.
// Prefixes are not equal.
func (p TagPattern) Equal(other TagPattern) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// String renders the pattern as "div > a > span".
func (p TagPattern) String() string {
	return strings.Join(p, " > ")
}

// key is a collision-free map key for the pattern. Tag names never contain
// the separator byte.
func (p TagPattern) key() string {
	return strings.Join(p, "\x00")
}

// Fingerprint returns the TagPattern of the subtree rooted at n.
//
// Each element appends its tag name and then visits its children in order.
// Text nodes, the document root and elements with an empty tag name add
// nothing, but their children are still visited.
func Fingerprint(n *dom.Node) TagPattern {
	pattern := make(TagPattern, 0)
	n.Walk(func(d *dom.Node) bool {
		if d.IsElement() {
			pattern = append(pattern, d.Tag)
		}
		return true
	})
	return pattern
}
