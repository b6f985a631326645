// Package dom adapts parsed HTML documents into a small read-only tree that
// the listing and posting packages traverse.
//
// # Architecture
//
// A Document owns a tree of *Node values. Every node is one of three kinds:
//
//   - DocumentNode: the root, it has no tag name
//   - ElementNode: a tag with ordered attributes and ordered children
//   - TextNode: raw character data, it never has children
//
// Comments and doctype declarations are dropped while the tree is built, so
// traversal code only has to switch over the three kinds above.
//
// Design decision: We convert golang.org/x/net/html nodes into our own tree
// instead of walking *html.Node directly because:
//  1. The kind is an explicit tag, not inferred from which fields are set
//  2. Children are an ordered slice, which keeps pre-order walks simple
//  3. Trees are immutable once returned, so they can be shared read-only
//
// # Usage
//
//	doc, err := dom.ParseString(page.HTML)
//	for _, div := range doc.FindAll("div") {
//	    fmt.Println(div.Tag, len(div.FindAll("a")))
//	}
package dom
