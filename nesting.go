package brackets

// Observation is one bracket rune seen at Offset.  Observations are fed to
// Nest in increasing Offset order; Nest does not sort them.
type Observation struct {
	Char   rune
	Offset int
}

// pending is an opener still waiting for its closer.
type pending struct {
	index  int // position of the opener in the result slice
	offset int
}

// Nest matches brackets within each Kind using one stack per Kind and
// returns a Mark for every bracket observation, in input order.
//
// Kinds do not interact: "( [ ) ]" matches the parens with each other and
// the square brackets with each other.  A closer with no open partner gets
// Level 0 and NoMatch; an opener left on its stack at the end keeps NoMatch.
// Observations whose Char is not a bracket are skipped.
func Nest(obs []Observation) []Mark {
	var stacks [numKinds][]pending
	marks := make([]Mark, 0, len(obs))

	for _, o := range obs {
		k, open, ok := Classify(o.Char)
		if !ok {
			continue
		}
		if open {
			stacks[k] = append(stacks[k], pending{index: len(marks), offset: o.Offset})
			marks = append(marks, Mark{
				Kind:   k,
				Offset: o.Offset,
				Open:   true,
				Level:  len(stacks[k]) - 1,
				Match:  NoMatch,
			})
			continue
		}

		st := stacks[k]
		if len(st) == 0 {
			marks = append(marks, Mark{Kind: k, Offset: o.Offset, Level: 0, Match: NoMatch})
			continue
		}
		p := st[len(st)-1]
		stacks[k] = st[:len(st)-1]

		// The opener was appended earlier; fill in its partner by index.
		marks[p.index].Match = o.Offset
		marks = append(marks, Mark{
			Kind:   k,
			Offset: o.Offset,
			Level:  marks[p.index].Level,
			Match:  p.offset,
		})
	}
	return marks
}

// Scan extracts the bracket runes of text, filters them through admit, and
// nests them.  Offsets are rune offsets.  A nil admit accepts every bracket.
func Scan(text string, admit AdmitFunc) []Mark {
	var obs []Observation
	off := 0
	for _, r := range text {
		if IsBracket(r) && (admit == nil || admit(r, off)) {
			obs = append(obs, Observation{Char: r, Offset: off})
		}
		off++
	}
	return Nest(obs)
}
