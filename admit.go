package brackets

// AdmitFunc decides whether the bracket rune r at rune offset off takes part
// in nesting.  It is how callers drop delimiters that need outside context to
// classify, such as '<' used as a comparison operator.
type AdmitFunc func(r rune, off int) bool

// WithoutAngles admits every bracket except '<' and '>'.  It is the filter
// for a plain text scan, where angle brackets cannot be told apart from
// operators.
func WithoutAngles(r rune, _ int) bool {
	return r != '<' && r != '>'
}

// ExcludeKinds returns an AdmitFunc rejecting the runes of the given kinds.
// With no kinds it returns nil, which admits everything.
func ExcludeKinds(kinds ...Kind) AdmitFunc {
	if len(kinds) == 0 {
		return nil
	}
	var excluded [numKinds]bool
	for _, k := range kinds {
		if k < numKinds {
			excluded[k] = true
		}
	}
	return func(r rune, _ int) bool {
		k, ok := KindOf(r)
		return !ok || !excluded[k]
	}
}

// AllOf admits a bracket only when every non-nil fn admits it.  Nil
// arguments are dropped; if none remain the result is nil.
func AllOf(fns ...AdmitFunc) AdmitFunc {
	var live []AdmitFunc
	for _, fn := range fns {
		if fn != nil {
			live = append(live, fn)
		}
	}
	switch len(live) {
	case 0:
		return nil
	case 1:
		return live[0]
	}
	return func(r rune, off int) bool {
		for _, fn := range live {
			if !fn(r, off) {
				return false
			}
		}
		return true
	}
}
