// Package worddiff marks changed words between two lines. Lines are split
// into tokens, aligned token by token with znkr.io/diff, and the unmatched
// tokens become marks.
package worddiff

import (
	"unicode"

	"github.com/fwojciec/anydiff"
	"znkr.io/diff"
)

// Compile-time interface verification.
var (
	_ anydiff.Tokenizer = (*Tokenizer)(nil)
	_ anydiff.Marker    = (*Marker)(nil)
)

// Tokenizer splits lines into words, white space runs and single symbols.
// A word is a run of letters, digits and underscores in any script.
type Tokenizer struct{}

// NewTokenizer creates a new Tokenizer.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{}
}

type class int

const (
	classSymbol class = iota
	classWord
	classSpace
)

func classify(r rune) class {
	switch {
	case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
		return classWord
	case unicode.IsSpace(r):
		return classSpace
	}
	return classSymbol
}

// Tokenize splits s so that the tokens concatenate to s.
func (t *Tokenizer) Tokenize(s string) []string {
	if s == "" {
		return nil
	}
	tokens := make([]string, 0, len(s)/3+1)
	start := 0
	prev := classSymbol
	for i, r := range s {
		c := classify(r)
		if i > start && (c != prev || c == classSymbol) {
			tokens = append(tokens, s[start:i])
			start = i
		}
		prev = c
	}
	return append(tokens, s[start:])
}

// SimilarityThreshold is the minimum similarity for two lines to be treated
// as a change of one another rather than a removal and an addition.
const SimilarityThreshold = 0.4

// Similarity returns 2*common/(len(a)+len(b)) where common counts tokens
// shared by both sequences, with multiplicity.
func Similarity(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	counts := make(map[string]int, len(a))
	for _, t := range a {
		counts[t]++
	}
	common := 0
	for _, t := range b {
		if counts[t] > 0 {
			counts[t]--
			common++
		}
	}
	return float64(2*common) / float64(len(a)+len(b))
}

// Marker marks the tokens of two strings that do not align.
type Marker struct {
	tokenizer anydiff.Tokenizer
}

// NewMarker creates a Marker using tok, or the built-in Tokenizer if tok is nil.
func NewMarker(tok anydiff.Tokenizer) *Marker {
	if tok == nil {
		tok = NewTokenizer()
	}
	return &Marker{tokenizer: tok}
}

// Mark returns the changed ranges of left and right. Strings that share too
// few tokens are marked whole.
func (m *Marker) Mark(left, right string) (leftMarks, rightMarks []anydiff.Mark) {
	switch {
	case left == right:
		return nil, nil
	case left == "":
		return nil, whole(right)
	case right == "":
		return whole(left), nil
	}

	lt := m.tokenizer.Tokenize(left)
	rt := m.tokenizer.Tokenize(right)
	if Similarity(lt, rt) < SimilarityThreshold {
		return whole(left), whole(right)
	}

	lpos, rpos := 0, 0
	for _, e := range diff.Edits(lt, rt) {
		switch e.Op {
		case diff.Match:
			lpos += len(e.X)
			rpos += len(e.Y)
		case diff.Delete:
			leftMarks = append(leftMarks, anydiff.Mark{Start: lpos, End: lpos + len(e.X)})
			lpos += len(e.X)
		case diff.Insert:
			rightMarks = append(rightMarks, anydiff.Mark{Start: rpos, End: rpos + len(e.Y)})
			rpos += len(e.Y)
		}
	}
	return anydiff.MergeMarks(leftMarks), anydiff.MergeMarks(rightMarks)
}

func whole(s string) []anydiff.Mark {
	if s == "" {
		return nil
	}
	return []anydiff.Mark{{Start: 0, End: len(s)}}
}
