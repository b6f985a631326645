package listing

import "github.com/nao1215/careercrawl/internal/dom"

// PatternCount is one row of a FrequencyTable.
type PatternCount struct {
	Pattern TagPattern
	Count   int
}

// FrequencyTable tallies fingerprints in the order they were first seen.
//
// Design decision: We keep an ordered slice of pairs plus an index map
// instead of a plain map, so that "first seen wins on a tie" does not depend
// on map iteration order.
type FrequencyTable struct {
	entries []PatternCount
	index   map[string]int
}

// NewFrequencyTable returns an empty table.
func NewFrequencyTable() *FrequencyTable {
	return &FrequencyTable{index: make(map[string]int)}
}

// Add counts one occurrence of p.
func (t *FrequencyTable) Add(p TagPattern) {
	k := p.key()
	if i, ok := t.index[k]; ok {
		t.entries[i].Count++
		return
	}
	t.index[k] = len(t.entries)
	t.entries = append(t.entries, PatternCount{Pattern: p, Count: 1})
}

// Len returns the number of distinct patterns.
func (t *FrequencyTable) Len() int {
	return len(t.entries)
}

// Entries returns a copy of the rows in first-seen order.
func (t *FrequencyTable) Entries() []PatternCount {
	out := make([]PatternCount, len(t.entries))
	copy(out, t.entries)
	return out
}

// Count returns how many times p was added.
func (t *FrequencyTable) Count(p TagPattern) int {
	if i, ok := t.index[p.key()]; ok {
		return t.entries[i].Count
	}
	return 0
}

// Max returns the pattern with the highest count. On a tie the earliest row
// wins. ok is false when the table is empty.
func (t *FrequencyTable) Max() (TagPattern, bool) {
	if len(t.entries) == 0 {
		return nil, false
	}
	best := 0
	for i := 1; i < len(t.entries); i++ {
		if t.entries[i].Count > t.entries[best].Count {
			best = i
		}
	}
	return t.entries[best].Pattern, true
}

// Count builds the frequency table of every candidate in doc. Each candidate
// contributes exactly one count, to its own fingerprint.
func Count(doc *dom.Document, cand Candidate) *FrequencyTable {
	table := NewFrequencyTable()
	for _, n := range cand.Elements(doc) {
		table.Add(Fingerprint(n))
	}
	return table
}

// InferTemplate returns the most frequent candidate fingerprint of doc.
// ok is false when doc has no candidates, which callers treat as "no
// postings on this page" rather than as a failure.
func InferTemplate(doc *dom.Document, cand Candidate) (TagPattern, bool) {
	return Count(doc, cand).Max()
}
