// Package brackets computes nesting levels and matching partners for the
// bracket-like delimiters of a text, caches the result per document revision,
// and resolves the bracket pairs that enclose a selection or caret.
//
// Offsets are rune offsets into the scanned text, the same addressing acme
// uses for window bodies.
package brackets

import "fmt"

// Kind is a bracket family defined by one open/close rune pair.
type Kind uint8

const (
	Round  Kind = iota // ( )
	Square             // [ ]
	Curly              // { }
	Angle              // < >

	numKinds
)

// kindRunes holds the open and close rune of each Kind.  No rune appears
// twice in the table.
var kindRunes = [numKinds]struct {
	open, close rune
	name        string
}{
	Round:  {'(', ')', "round"},
	Square: {'[', ']', "square"},
	Curly:  {'{', '}', "curly"},
	Angle:  {'<', '>', "angle"},
}

// Kinds returns every supported Kind in declaration order.
func Kinds() []Kind {
	return []Kind{Round, Square, Curly, Angle}
}

// Open returns the opening rune of k.
func (k Kind) Open() rune { return kindRunes[k].open }

// Close returns the closing rune of k.
func (k Kind) Close() rune { return kindRunes[k].close }

func (k Kind) String() string {
	if k >= numKinds {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return kindRunes[k].name
}

// MarshalText encodes k by name, so marks serialize as "round" rather than 0.
func (k Kind) MarshalText() ([]byte, error) {
	if k >= numKinds {
		return nil, fmt.Errorf("unknown bracket kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a Kind written by MarshalText.
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// ParseKind returns the Kind named s ("round", "square", "curly", "angle").
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if kindRunes[k].name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown bracket kind %q", s)
}

// Classify reports whether r is a bracket rune and, if so, its Kind and
// whether it opens or closes.  Unknown runes yield ok == false.
func Classify(r rune) (k Kind, open bool, ok bool) {
	switch r {
	case '(':
		return Round, true, true
	case ')':
		return Round, false, true
	case '[':
		return Square, true, true
	case ']':
		return Square, false, true
	case '{':
		return Curly, true, true
	case '}':
		return Curly, false, true
	case '<':
		return Angle, true, true
	case '>':
		return Angle, false, true
	}
	return 0, false, false
}

// KindOf returns the Kind that r opens or closes.
func KindOf(r rune) (Kind, bool) {
	k, _, ok := Classify(r)
	return k, ok
}

// IsBracket reports whether r belongs to any Kind.
func IsBracket(r rune) bool {
	_, _, ok := Classify(r)
	return ok
}
