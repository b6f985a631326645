// Package listing infers the repeated item template of a job-listing page
// and extracts the links held by every item that shares it.
//
// # Algorithm
//
// Job boards render postings as siblings built from one template. Their
// styling and classes vary, their tag structure does not. The package works
// in four steps:
//
//  1. Fingerprint: reduce a subtree to the pre-order sequence of its tag names
//  2. Count: fingerprint every candidate container and tally each pattern
//  3. Match: collect every candidate whose fingerprint equals the winner
//  4. Extract: pull (href, label) pairs from the anchors of each match
//
// A candidate is an element with the container tag (div by default) that has
// at least one anchor descendant. Containers without links cannot be job
// entries, and counting them would let large non-repeating wrappers win.
// Inference and matching always share the same Candidate value.
//
// # Usage
//
//	cand := listing.DefaultCandidate
//	links := listing.Scrape(doc, cand)
//
// None of the functions in this package return errors. An empty page, a
// page without a repeated template and a page without anchors all yield
// empty results.
package listing
