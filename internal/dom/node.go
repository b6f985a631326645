package dom

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// Kind identifies the variant of a Node.
type Kind int

const (
	// DocumentNode is the root of a parsed document.
	DocumentNode Kind = iota + 1
	// ElementNode is an HTML element such as <div> or <a>.
	ElementNode
	// TextNode holds character data.
	TextNode
)

// String returns a human-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case DocumentNode:
		return "document"
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	default:
		return "unknown"
	}
}

// Attribute is a single element attribute.
type Attribute struct {
	// Key is the attribute name, lower-cased by the HTML parser.
	Key string

	// Val is the unescaped attribute value.
	Val string
}

// Node is one node of a parsed document.
//
// Only ElementNode values carry Tag, Attrs and Children. TextNode values
// carry Data. The zero value is not a valid node.
type Node struct {
	// Kind is the node variant.
	Kind Kind

	// Tag is the lower-case element name. Empty for non-element nodes.
	Tag string

	// Attrs holds the element attributes in source order.
	Attrs []Attribute

	// Children holds the child nodes in document order.
	Children []*Node

	// Data is the text content of a TextNode.
	Data string

	// src is the parser node this node was built from. It is used to
	// serialise subtrees back to HTML.
	src *html.Node
}

// IsElement reports whether n is an element with a non-empty tag name.
func (n *Node) IsElement() bool {
	return n != nil && n.Kind == ElementNode && n.Tag != ""
}

// Attr returns the value of the named attribute and whether it is present.
// Missing attributes are reported as absent, never as an error.
func (n *Node) Attr(key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Walk visits n and its descendants in document (pre-)order.
// Returning false from fn skips the children of the current node.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// FindAll returns every descendant element of n (n itself excluded) whose
// tag equals tag, in document order.
func (n *Node) FindAll(tag string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		c.Walk(func(d *Node) bool {
			if d.IsElement() && d.Tag == tag {
				out = append(out, d)
			}
			return true
		})
	}
	return out
}

// Find returns the first descendant element of n with the given tag, or nil.
func (n *Node) Find(tag string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if found := c.findSelfOrDescendant(tag); found != nil {
			return found
		}
	}
	return nil
}

func (n *Node) findSelfOrDescendant(tag string) *Node {
	if n.IsElement() && n.Tag == tag {
		return n
	}
	for _, c := range n.Children {
		if found := c.findSelfOrDescendant(tag); found != nil {
			return found
		}
	}
	return nil
}

// HasDescendant reports whether n has at least one descendant element with
// the given tag.
func (n *Node) HasDescendant(tag string) bool {
	return n.Find(tag) != nil
}

// Text returns the concatenated character data of n and its descendants.
func (n *Node) Text() string {
	var sb strings.Builder
	n.Walk(func(d *Node) bool {
		if d.Kind == TextNode {
			sb.WriteString(d.Data)
		}
		return true
	})
	return sb.String()
}

// CollapsedText returns Text with runs of whitespace collapsed into single
// spaces and the ends trimmed.
func (n *Node) CollapsedText() string {
	return strings.Join(strings.Fields(n.Text()), " ")
}

// OuterHTML serialises n and its subtree back to HTML.
func (n *Node) OuterHTML() (string, error) {
	if n == nil || n.src == nil {
		return "", nil
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, n.src); err != nil {
		return "", err
	}
	return buf.String(), nil
}
