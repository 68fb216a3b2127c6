// Package completion proposes keyword and flag insertions for the console
// editors.
package completion

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"diskconsole/internal/grammar"
)

// Kind tells keyword candidates from flag candidates.
type Kind int

const (
	KindKeyword Kind = iota
	KindFlag
)

func (k Kind) String() string {
	if k == KindFlag {
		return "flag"
	}
	return "keyword"
}

// Position is a 1-indexed line and column, matching editor conventions.
type Position struct {
	Line   int
	Column int
}

// Range is a span between two positions. A completion range always has
// Start == End: candidates are inserted, never replace text.
type Range struct {
	Start Position
	End   Position
}

func (r Range) Empty() bool { return r.Start == r.End }

type Candidate struct {
	Label      string
	InsertText string
	Kind       Kind
	Range      Range
}

// Provider builds candidates from a vocabulary.
type Provider struct {
	vocab grammar.Vocabulary
}

func New(v grammar.Vocabulary) Provider {
	return Provider{vocab: v}
}

// Default completes against the simulator vocabulary.
var Default = New(grammar.Default)

// Complete returns every keyword followed by every flag, each as a
// zero-width insertion at pos. The list does not depend on what was typed.
func (p Provider) Complete(pos Position) []Candidate {
	at := Range{Start: pos, End: pos}
	keywords := p.vocab.Keywords()
	flags := p.vocab.Flags()
	out := make([]Candidate, 0, len(keywords)+len(flags))
	for _, k := range keywords {
		out = append(out, Candidate{Label: k, InsertText: k, Kind: KindKeyword, Range: at})
	}
	for _, f := range flags {
		label := grammar.FlagMarker + f
		out = append(out, Candidate{Label: label, InsertText: label, Kind: KindFlag, Range: at})
	}
	return out
}

// Filter ranks cands against the typed prefix. An empty prefix keeps the
// full list in its original order.
func Filter(cands []Candidate, prefix string) []Candidate {
	if prefix == "" {
		return append([]Candidate(nil), cands...)
	}
	labels := make([]string, len(cands))
	for i, c := range cands {
		labels[i] = c.Label
	}
	matches := fuzzy.Find(prefix, labels)
	out := make([]Candidate, 0, len(matches))
	// exact prefix matches first, then the fuzzy ranking
	for _, m := range matches {
		if strings.HasPrefix(m.Str, prefix) {
			out = append(out, cands[m.Index])
		}
	}
	for _, m := range matches {
		if !strings.HasPrefix(m.Str, prefix) {
			out = append(out, cands[m.Index])
		}
	}
	return out
}

// Extending keeps the candidates whose insert text starts with prefix, in
// order. Accepting one of them completes the typed word.
func Extending(cands []Candidate, prefix string) []Candidate {
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if strings.HasPrefix(c.InsertText, prefix) {
			out = append(out, c)
		}
	}
	return out
}

// WordBefore returns the partial token that ends at byte column col of line.
// A leading flag marker is part of the token.
func WordBefore(line string, col int) string {
	if col > len(line) {
		col = len(line)
	}
	if col < 0 {
		col = 0
	}
	start := col
	for start > 0 && isWordByte(line[start-1]) {
		start--
	}
	if start > 0 && strings.HasPrefix(line[start-1:], grammar.FlagMarker) {
		start--
	}
	return line[start:col]
}

// Remainder is the text to insert at the cursor when c is accepted after
// typing prefix. Nothing the user typed is removed: if the candidate does
// not extend the prefix, its full insert text is inserted.
func Remainder(c Candidate, prefix string) string {
	if prefix != "" && strings.HasPrefix(c.InsertText, prefix) {
		return c.InsertText[len(prefix):]
	}
	return c.InsertText
}

func isWordByte(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}
