// Package mock provides test doubles for anydiff interfaces.
package mock

import "github.com/fwojciec/anydiff"

// Compile-time interface verification.
var (
	_ anydiff.Canonicalizer  = (*Canonicalizer)(nil)
	_ anydiff.Aligner        = (*Aligner)(nil)
	_ anydiff.Marker         = (*Marker)(nil)
	_ anydiff.FormatDetector = (*FormatDetector)(nil)
)

// Canonicalizer is a mock implementation of anydiff.Canonicalizer.
type Canonicalizer struct {
	CanonicalizeFn func(raw string, opts anydiff.Options) (*anydiff.Document, error)
}

func (c *Canonicalizer) Canonicalize(raw string, opts anydiff.Options) (*anydiff.Document, error) {
	return c.CanonicalizeFn(raw, opts)
}

// Aligner is a mock implementation of anydiff.Aligner.
type Aligner struct {
	AlignFn func(left, right *anydiff.Document) []anydiff.Fragment
}

func (a *Aligner) Align(left, right *anydiff.Document) []anydiff.Fragment {
	return a.AlignFn(left, right)
}

// Marker is a mock implementation of anydiff.Marker.
type Marker struct {
	MarkFn func(left, right string) (leftMarks, rightMarks []anydiff.Mark)
}

func (m *Marker) Mark(left, right string) (leftMarks, rightMarks []anydiff.Mark) {
	return m.MarkFn(left, right)
}

// FormatDetector is a mock implementation of anydiff.FormatDetector.
type FormatDetector struct {
	DetectFormatFn func(name string, content []byte) anydiff.Format
}

func (d *FormatDetector) DetectFormat(name string, content []byte) anydiff.Format {
	return d.DetectFormatFn(name, content)
}
