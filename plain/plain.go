// Package plain canonicalizes text line by line.
package plain

import (
	"strings"

	"github.com/fwojciec/anydiff"
)

// Compile-time interface verification.
var _ anydiff.Canonicalizer = (*Canonicalizer)(nil)

// Canonicalizer splits text into lines with normalized terminators. A final
// line terminator does not start an empty line.
type Canonicalizer struct {
	format anydiff.Format
}

// NewCanonicalizer creates a plain-text canonicalizer.
func NewCanonicalizer() *Canonicalizer {
	return &Canonicalizer{format: anydiff.FormatPlain}
}

// NewRaw creates a canonicalizer that reads content of format f as raw lines.
// It serves structured formats when normalization is turned off.
func NewRaw(f anydiff.Format) *Canonicalizer {
	return &Canonicalizer{format: f}
}

// Canonicalize never fails.
func (c *Canonicalizer) Canonicalize(raw string, opts anydiff.Options) (*anydiff.Document, error) {
	lines := SplitLines(raw)
	doc := &anydiff.Document{Format: c.format, Lines: make([]anydiff.Line, len(lines))}
	for i, l := range lines {
		doc.Lines[i] = anydiff.NewLine(l, nil, 0, opts)
	}
	return doc, nil
}

// SplitLines splits s at CRLF, CR or LF terminators.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}
