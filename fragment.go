package anydiff

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Mark is a changed byte range [Start, End) within a span's text.
type Mark struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Span is a run of consecutive lines from one side of the comparison.
type Span struct {
	Start int      `json:"start"`           // Index of the first line in its document
	Lines []string `json:"lines"`           // Display text
	Marks []Mark   `json:"marks,omitempty"` // Relative to Text(); set only on CHANGED fragments
}

// End returns the index after the last line of the span.
func (s *Span) End() int {
	if s == nil {
		return 0
	}
	return s.Start + len(s.Lines)
}

// Len returns the number of lines, treating a nil span as empty.
func (s *Span) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Lines)
}

// Text returns the lines joined by newlines.
func (s *Span) Text() string {
	if s == nil {
		return ""
	}
	return strings.Join(s.Lines, "\n")
}

// Marked returns the span text with its marks.
func (s *Span) Marked() MarkedString {
	if s == nil {
		return MarkedString{}
	}
	return MarkedString{Text: s.Text(), Marks: s.Marks}
}

// Fragment is one element of the alignment cover. Left is nil for Added
// fragments and Right is nil for Removed fragments.
type Fragment struct {
	Kind  Kind  `json:"kind"`
	Path  Path  `json:"path,omitempty"` // Set by Assemble: the common ancestor of the fragment's lines
	Left  *Span `json:"left,omitempty"`
	Right *Span `json:"right,omitempty"`
}

// Text returns the fragment's right text if present, else its left text.
func (f Fragment) Text() string {
	if f.Right != nil {
		return f.Right.Text()
	}
	return f.Left.Text()
}

// Counts tallies differing lines by kind. Changed counts the lines of the
// longer side of each changed fragment.
type Counts struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
	Changed int `json:"changed"`
}

// Add includes f in the tally.
func (c *Counts) Add(f Fragment) {
	switch f.Kind {
	case Added:
		c.Added += f.Right.Len()
	case Removed:
		c.Removed += f.Left.Len()
	case Changed:
		c.Changed += max(f.Left.Len(), f.Right.Len())
	}
}

// Plus returns the sum of c and o.
func (c Counts) Plus(o Counts) Counts {
	return Counts{Added: c.Added + o.Added, Removed: c.Removed + o.Removed, Changed: c.Changed + o.Changed}
}

// Total returns the number of differing lines.
func (c Counts) Total() int {
	return c.Added + c.Removed + c.Changed
}

func (c Counts) String() string {
	return fmt.Sprintf("+%d -%d ~%d", c.Added, c.Removed, c.Changed)
}

// MarkedString is a string with highlighted ranges.
type MarkedString struct {
	Text  string
	Marks []Mark
}

var (
	errMarkEmpty    = errors.New("mark is empty")
	errMarkBounds   = errors.New("mark is out of bounds")
	errMarkOverlaps = errors.New("marks are unsorted or overlapping")
)

// Validate checks that marks are non-empty, in bounds, sorted and disjoint.
func (m MarkedString) Validate() error {
	prev := 0
	for i, mk := range m.Marks {
		switch {
		case mk.Start >= mk.End:
			return fmt.Errorf("mark %d [%d,%d): %w", i, mk.Start, mk.End, errMarkEmpty)
		case mk.Start < 0 || mk.End > len(m.Text):
			return fmt.Errorf("mark %d [%d,%d): %w", i, mk.Start, mk.End, errMarkBounds)
		case i > 0 && mk.Start < prev:
			return fmt.Errorf("mark %d [%d,%d): %w", i, mk.Start, mk.End, errMarkOverlaps)
		}
		prev = mk.End
	}
	return nil
}

// Segment is a piece of a MarkedString.
type Segment struct {
	Text   string
	Marked bool
}

// Segments splits the text at mark boundaries.
func (m MarkedString) Segments() []Segment {
	var segs []Segment
	pos := 0
	for _, mk := range m.Marks {
		if mk.Start > pos {
			segs = append(segs, Segment{Text: m.Text[pos:mk.Start]})
		}
		segs = append(segs, Segment{Text: m.Text[mk.Start:mk.End], Marked: true})
		pos = mk.End
	}
	if pos < len(m.Text) {
		segs = append(segs, Segment{Text: m.Text[pos:]})
	}
	return segs
}

// MarkedTexts returns the substring covered by each mark.
func (m MarkedString) MarkedTexts() []string {
	out := make([]string, len(m.Marks))
	for i, mk := range m.Marks {
		out[i] = m.Text[mk.Start:mk.End]
	}
	return out
}

// Format wraps every marked range in open and close.
func (m MarkedString) Format(open, close string) string {
	var b strings.Builder
	for _, seg := range m.Segments() {
		if seg.Marked {
			b.WriteString(open)
			b.WriteString(seg.Text)
			b.WriteString(close)
			continue
		}
		b.WriteString(seg.Text)
	}
	return b.String()
}

// WithoutBlankMarks returns m without marks that cover only white space.
func (m MarkedString) WithoutBlankMarks() MarkedString {
	var kept []Mark
	for _, mk := range m.Marks {
		if strings.TrimFunc(m.Text[mk.Start:mk.End], unicode.IsSpace) != "" {
			kept = append(kept, mk)
		}
	}
	return MarkedString{Text: m.Text, Marks: kept}
}

// MergeMarks joins touching or overlapping marks of an ordered slice and
// drops empty ones.
func MergeMarks(marks []Mark) []Mark {
	var out []Mark
	for _, mk := range marks {
		if mk.Start >= mk.End {
			continue
		}
		if n := len(out); n > 0 && out[n-1].End >= mk.Start {
			out[n-1].End = max(out[n-1].End, mk.End)
			continue
		}
		out = append(out, mk)
	}
	return out
}
