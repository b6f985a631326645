package listing

import "github.com/nao1215/careercrawl/internal/dom"

// FindMatches returns every candidate of doc whose fingerprint equals
// template exactly, in document order.
//
// The same Candidate used for inference must be passed here; otherwise a
// container excluded while counting could be matched, or the reverse.
// An empty template matches nothing.
func FindMatches(doc *dom.Document, template TagPattern, cand Candidate) []*dom.Node {
	matches := make([]*dom.Node, 0)
	if len(template) == 0 {
		return matches
	}
	for _, n := range cand.Elements(doc) {
		if Fingerprint(n).Equal(template) {
			matches = append(matches, n)
		}
	}
	return matches
}
