package window

import (
	"github.com/cptaffe/acme-brackets"
	"github.com/cptaffe/acme-brackets/config"
	"github.com/cptaffe/acme-styles/layer"
)

// colorEntries returns one single-rune layer entry per mark, named by the
// palette slot of its color index.  Unmatched brackets use the mismatch
// style, or are left unstyled when none is configured.
func colorEntries(marks []brackets.Mark, cfg *config.Config) []layer.Entry {
	entries := make([]layer.Entry, 0, len(marks))
	for _, m := range marks {
		name := cfg.Palette[m.ColorIndex()]
		if !m.Matched() {
			if cfg.MismatchStyle == "" {
				continue
			}
			name = cfg.MismatchStyle
		}
		entries = append(entries, layer.Entry{Name: name, Start: m.Offset, End: m.Offset + 1})
	}
	return entries
}

// resolveBlock picks the bracket pair whose interior should be highlighted
// for the selection [q0, q1).  A non-empty selection uses the innermost
// enclosing pair; an empty one uses the innermost pair around the caret
// when caret blocks are enabled.  Pairs with nothing inside are ignored.
func resolveBlock(marks []brackets.Mark, q0, q1 int, cfg *config.Config) (brackets.Pair, bool) {
	var (
		p  brackets.Pair
		ok bool
	)
	switch {
	case q0 < q1:
		p, ok = brackets.Innermost(brackets.EnclosingPairs(marks, q0, q1))
	case cfg.HighlightCaretBlock:
		p, ok = brackets.InnermostEnclosingPair(marks, q0)
	}
	if !ok || p.Empty() {
		return brackets.Pair{}, false
	}
	return p, true
}

// blockEntries returns the background entry for p's interior.
func blockEntries(p brackets.Pair, cfg *config.Config) []layer.Entry {
	return []layer.Entry{{
		Name:  cfg.SelectionPalette[p.ColorIndex()],
		Start: p.InnerStart,
		End:   p.InnerEnd,
	}}
}
