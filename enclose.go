package brackets

import "sort"

// Pair is a matched bracket pair around a selection or caret.  The interior
// [InnerStart, InnerEnd) excludes both brackets.
type Pair struct {
	Kind       Kind `json:"kind"`
	Open       int  `json:"open"`
	Close      int  `json:"close"`
	Level      int  `json:"level"`
	InnerStart int  `json:"inner_start"`
	InnerEnd   int  `json:"inner_end"`
}

func pairOf(m Mark) Pair {
	return Pair{
		Kind:       m.Kind,
		Open:       m.Offset,
		Close:      m.Match,
		Level:      m.Level,
		InnerStart: m.Offset + 1,
		InnerEnd:   m.Match,
	}
}

// ColorIndex is Level folded into [0, CycleLength).
func (p Pair) ColorIndex() int { return p.Level % CycleLength }

// Empty reports whether the pair has nothing between its brackets.
func (p Pair) Empty() bool { return p.InnerStart >= p.InnerEnd }

// openersBefore returns the prefix of marks (which are in offset order)
// whose offsets are below limit.
func openersBefore(marks []Mark, limit int) []Mark {
	n := sort.Search(len(marks), func(i int) bool { return marks[i].Offset >= limit })
	return marks[:n]
}

// EnclosingPairs returns every matched pair whose span covers the selection
// [start, end): the opener is at or before start and the closer at or after
// the selection's last rune.  An empty selection (start >= end) or an empty
// mark list yields nil.  Pairs come back in opener order, outermost first.
func EnclosingPairs(marks []Mark, start, end int) []Pair {
	if len(marks) == 0 || start >= end {
		return nil
	}
	var pairs []Pair
	for _, m := range openersBefore(marks, start+1) {
		if !m.Open || !m.Matched() {
			continue
		}
		if m.Match >= end-1 {
			pairs = append(pairs, pairOf(m))
		}
	}
	return pairs
}

// Innermost returns the pair with the largest opener offset.  Enclosing
// pairs are nested, so that is the innermost one.
func Innermost(pairs []Pair) (Pair, bool) {
	if len(pairs) == 0 {
		return Pair{}, false
	}
	best := pairs[0]
	for _, p := range pairs[1:] {
		if p.Open > best.Open {
			best = p
		}
	}
	return best, true
}

// InnermostEnclosingPair returns the smallest matched pair strictly
// containing caret: Open < caret < Close.  A caret on a bracket is not
// inside that bracket's own pair.
func InnermostEnclosingPair(marks []Mark, caret int) (Pair, bool) {
	var (
		best  Pair
		found bool
	)
	for _, m := range openersBefore(marks, caret) {
		if !m.Open || !m.Matched() || m.Match <= caret {
			continue
		}
		if !found || m.Match-m.Offset < best.Close-best.Open {
			best, found = pairOf(m), true
		}
	}
	return best, found
}
