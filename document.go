package anydiff

import (
	"strings"
)

// Line is one line of a canonical document.
type Line struct {
	Text  string // Display form
	Key   string // Comparison form; equals Text unless whitespace is ignored
	Path  Path   // Nil for formats without structure
	Depth int
}

// NewLine returns a line whose comparison key honors opts.IgnoreSpaces.
func NewLine(text string, path Path, depth int, opts Options) Line {
	key := text
	if opts.IgnoreSpaces {
		key = CollapseSpaces(text)
	}
	return Line{Text: text, Key: key, Path: path, Depth: depth}
}

// CollapseSpaces trims s and replaces every run of white space with a single
// space. Words still have to match one for one: "a b" and "ab" differ.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Document is the canonical form of one input. It is not modified after a
// canonicalizer returns it.
type Document struct {
	Format Format
	Lines  []Line
}

// Len returns the number of lines, treating a nil document as empty.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Lines)
}

// Texts returns the display text of each line.
func (d *Document) Texts() []string {
	out := make([]string, d.Len())
	for i := range out {
		out[i] = d.Lines[i].Text
	}
	return out
}

// Keys returns the comparison key of each line.
func (d *Document) Keys() []string {
	out := make([]string, d.Len())
	for i := range out {
		out[i] = d.Lines[i].Key
	}
	return out
}

// Text returns the document with every line terminated by a newline.
func (d *Document) Text() string {
	var b strings.Builder
	for i := 0; i < d.Len(); i++ {
		b.WriteString(d.Lines[i].Text)
		b.WriteByte('\n')
	}
	return b.String()
}

// PathAt returns the path of line i, or nil if i is out of range.
func (d *Document) PathAt(i int) Path {
	if i < 0 || i >= d.Len() {
		return nil
	}
	return d.Lines[i].Path
}
