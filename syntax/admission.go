package syntax

import (
	"sort"
	"unicode/utf8"

	"github.com/cptaffe/acme-brackets"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// angleParents are node kinds whose '<' and '>' children delimit type
// arguments or markup tags rather than compare values.
var angleParents = map[string]bool{
	// generics
	"type_arguments":          true, // Java, Rust
	"type_parameters":         true, // Java, Rust
	"type_argument_list":      true,
	"type_parameter_list":     true,
	"template_argument_list":  true, // C++
	"template_parameter_list": true, // C++
	// markup
	"jsx_opening_element":      true,
	"jsx_closing_element":      true,
	"jsx_self_closing_element": true,
}

// Admission parses src with lang and returns an AdmitFunc accepting only the
// bracket runes that are punctuation tokens of the syntax tree.  Brackets in
// strings, comments and other literal text are rejected, and '<' or '>' is
// accepted only inside type argument lists and markup tags.
//
// Without a grammar (nil or TextID) it returns brackets.WithoutAngles.
func Admission(lang *Language, src []byte) brackets.AdmitFunc {
	if !lang.HasGrammar() {
		return brackets.WithoutAngles
	}

	// Each call needs its own Parser; Languages are shared.
	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(lang.lang); err != nil {
		return brackets.WithoutAngles
	}
	tree := parser.Parse(src, nil)
	if tree == nil {
		return brackets.WithoutAngles
	}
	defer tree.Close()

	admitted := runeOffsets(src, delimiterBytes(tree, src))
	return func(_ rune, off int) bool {
		_, ok := admitted[off]
		return ok
	}
}

// delimiterBytes walks every leaf of tree and returns the byte offsets of
// the bracket runes that belong to anonymous tokens.
func delimiterBytes(tree *tree_sitter.Tree, src []byte) []int {
	var out []int
	c := tree.Walk()
	defer c.Close()
	for {
		n := c.Node()
		if n.ChildCount() == 0 {
			out = appendDelimiters(out, n, src)
		}
		if c.GotoFirstChild() {
			continue
		}
		for !c.GotoNextSibling() {
			if !c.GotoParent() {
				return out
			}
		}
	}
}

// appendDelimiters adds the bracket runes of leaf n.  Named leaves
// (identifiers, string content, comments) never contribute; neither do
// tokens whose source text differs from their kind, which covers missing
// nodes inserted by error recovery.
func appendDelimiters(out []int, n *tree_sitter.Node, src []byte) []int {
	if n.IsNamed() {
		return out
	}
	start, end := int(n.StartByte()), int(n.EndByte())
	if start >= end || end > len(src) {
		return out
	}
	text := string(src[start:end])
	if text != n.Kind() {
		return out
	}
	for i, r := range text {
		k, ok := brackets.KindOf(r)
		if !ok {
			continue
		}
		if k == brackets.Angle && !angleDelimiter(n) {
			continue
		}
		out = append(out, start+i)
	}
	return out
}

// angleDelimiter reports whether the angle-bracket token n sits directly in
// a generic or tag node.  Only the parent is consulted: an operator nested
// anywhere inside a tag's attribute expression is still an operator.
func angleDelimiter(n *tree_sitter.Node) bool {
	p := n.Parent()
	return p != nil && angleParents[p.Kind()]
}

// runeOffsets converts byte offsets into src to the rune offsets that
// brackets.Scan reports.  Offsets that do not start a rune are dropped.
func runeOffsets(src []byte, byteOffs []int) map[int]struct{} {
	sort.Ints(byteOffs)
	set := make(map[int]struct{}, len(byteOffs))
	j, rn := 0, 0
	for i := 0; i < len(src) && j < len(byteOffs); rn++ {
		for j < len(byteOffs) && byteOffs[j] < i {
			j++
		}
		if j < len(byteOffs) && byteOffs[j] == i {
			set[rn] = struct{}{}
			j++
		}
		_, size := utf8.DecodeRune(src[i:])
		i += size
	}
	return set
}
