package dom

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Document is a parsed HTML page.
type Document struct {
	// Root is the DocumentNode at the top of the tree.
	Root *Node

	raw *html.Node
}

// Parse parses HTML content into a Document.
// golang.org/x/net/html accepts malformed markup, so an error is only
// returned when reading from r fails.
func Parse(r io.Reader) (*Document, error) {
	raw, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return &Document{Root: convert(raw), raw: raw}, nil
}

// ParseString parses an HTML string into a Document.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// HTMLNode returns the underlying parser tree. Collaborators that work on
// *html.Node (for example goquery) use it to avoid reparsing.
func (d *Document) HTMLNode() *html.Node {
	if d == nil {
		return nil
	}
	return d.raw
}

// FindAll returns every element of the document with the given tag, in
// document order.
func (d *Document) FindAll(tag string) []*Node {
	if d == nil {
		return nil
	}
	return d.Root.FindAll(tag)
}

// Find returns the first element of the document with the given tag, or nil.
func (d *Document) Find(tag string) *Node {
	if d == nil {
		return nil
	}
	return d.Root.Find(tag)
}

// convert builds our tree from a parser node. Comment, doctype and raw
// nodes are dropped.
func convert(h *html.Node) *Node {
	var n *Node
	switch h.Type {
	case html.DocumentNode:
		n = &Node{Kind: DocumentNode, src: h}
	case html.ElementNode:
		n = &Node{Kind: ElementNode, Tag: strings.ToLower(h.Data), src: h}
		if len(h.Attr) > 0 {
			n.Attrs = make([]Attribute, 0, len(h.Attr))
			for _, a := range h.Attr {
				n.Attrs = append(n.Attrs, Attribute{Key: a.Key, Val: a.Val})
			}
		}
	case html.TextNode:
		return &Node{Kind: TextNode, Data: h.Data, src: h}
	default:
		return nil
	}

	for c := h.FirstChild; c != nil; c = c.NextSibling {
		if child := convert(c); child != nil {
			n.Children = append(n.Children, child)
		}
	}
	return n
}
