package brackets

// NoMatch is the Match value of a bracket without a partner.
const NoMatch = -1

// CycleLength is the number of distinct color slots levels cycle through.
const CycleLength = 6

// Mark is the nesting result for one bracket.
//
// Level is the unbounded 0-based depth of the bracket within its own Kind;
// presentation code should use ColorIndex instead.  Match is the offset of
// the partner bracket, or NoMatch.  A matched pair always shares Kind and
// Level, and each side's Match points at the other.
type Mark struct {
	Kind   Kind `json:"kind"`
	Offset int  `json:"offset"`
	Open   bool `json:"open"`
	Level  int  `json:"level"`
	Match  int  `json:"match"`
}

// ColorIndex is Level folded into [0, CycleLength).
func (m Mark) ColorIndex() int { return m.Level % CycleLength }

// Matched reports whether m has a partner.
func (m Mark) Matched() bool { return m.Match >= 0 }

// Rune returns the bracket rune m was produced from.
func (m Mark) Rune() rune {
	if m.Open {
		return m.Kind.Open()
	}
	return m.Kind.Close()
}
