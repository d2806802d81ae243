package anydiff

import (
	"fmt"
	"strings"
)

// LineRange is a half-open range of 0-based line indices.
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of lines in the range.
func (r LineRange) Len() int {
	return r.End - r.Start
}

// String renders the range in unified-diff form: 1-based start and count.
func (r LineRange) String() string {
	if r.Len() == 0 {
		return fmt.Sprintf("%d,0", r.Start)
	}
	if r.Len() == 1 {
		return fmt.Sprintf("%d", r.Start+1)
	}
	return fmt.Sprintf("%d,%d", r.Start+1, r.Len())
}

// DiffBlock is a run of adjacent differing fragments that share a location.
type DiffBlock struct {
	Format     Format     `json:"format"`
	Path       Path       `json:"path,omitempty"`
	Fragments  []Fragment `json:"fragments"`
	Counts     Counts     `json:"counts"`
	LeftRange  LineRange  `json:"left_range"` // Lines of the left document covered by the fragments
	RightRange LineRange  `json:"right_range"`
}

// Locator describes where the block is: its path for markup, the header name
// for manifests and the line ranges for plain text.
func (b DiffBlock) Locator() string {
	switch {
	case b.Format.Markup() && len(b.Path) > 0:
		return b.Path.String()
	case b.Format == FormatManifest && len(b.Path) > 0:
		return b.Path[len(b.Path)-1].Name
	}
	return "-" + b.LeftRange.String() + " +" + b.RightRange.String()
}

// WithFragments returns a copy of b holding frags, with counts and ranges
// recomputed.
func (b DiffBlock) WithFragments(frags []Fragment) DiffBlock {
	nb := DiffBlock{Format: b.Format, Path: b.Path, Fragments: frags}
	nb.measure(b.LeftRange.Start, b.RightRange.Start)
	return nb
}

func (b *DiffBlock) measure(leftStart, rightStart int) {
	b.Counts = Counts{}
	b.LeftRange = LineRange{Start: leftStart, End: leftStart}
	b.RightRange = LineRange{Start: rightStart, End: rightStart}
	first := true
	for _, f := range b.Fragments {
		b.Counts.Add(f)
		if first {
			if f.Left != nil {
				b.LeftRange = LineRange{Start: f.Left.Start, End: f.Left.Start}
			}
			if f.Right != nil {
				b.RightRange = LineRange{Start: f.Right.Start, End: f.Right.Start}
			}
			first = false
		}
		if f.Left != nil {
			b.LeftRange.End = f.Left.End()
		}
		if f.Right != nil {
			b.RightRange.End = f.Right.End()
		}
	}
	if b.LeftRange.End < b.LeftRange.Start {
		b.LeftRange.End = b.LeftRange.Start
	}
	if b.RightRange.End < b.RightRange.Start {
		b.RightRange.End = b.RightRange.Start
	}
}

// Diff is the result of one comparison.
type Diff struct {
	Format    Format
	Left      *Document
	Right     *Document
	Fragments []Fragment  // Complete cover of both documents
	Blocks    []DiffBlock // Blocks surviving the filters
	Before    Counts      // Totals before filtering
	After     Counts      // Totals of Blocks
}

// Empty reports whether no differences survived filtering.
func (d *Diff) Empty() bool {
	return len(d.Blocks) == 0
}

// TotalCounts sums the counts of blocks.
func TotalCounts(blocks []DiffBlock) Counts {
	var c Counts
	for _, b := range blocks {
		c = c.Plus(b.Counts)
	}
	return c
}

// FragmentPath returns the common ancestor of the paths of every line the
// fragment covers on either side.
func FragmentPath(f Fragment, left, right *Document) Path {
	var p Path
	seen := false
	visit := func(s *Span, d *Document) {
		for i := s.Start; i < s.End(); i++ {
			lp := d.PathAt(i)
			if !seen {
				p, seen = lp, true
				continue
			}
			p = CommonAncestor(p, lp)
		}
	}
	if f.Left != nil {
		visit(f.Left, left)
	}
	if f.Right != nil {
		visit(f.Right, right)
	}
	return p
}

// Assemble groups the differing fragments of a cover into blocks. Unchanged
// fragments end a block. Consecutive differing fragments join a block when
// their grouping keys match: the element path for GroupByElement, the full
// path for GroupByPath. With IgnoreSpaces, added or removed runs of blank
// lines are left out.
func Assemble(frags []Fragment, left, right *Document, opts Options) []DiffBlock {
	format := FormatPlain
	if left != nil {
		format = left.Format
	}

	var blocks []DiffBlock
	var cur *DiffBlock
	var startL, startR int // cursors at the first fragment of cur

	flush := func() {
		if cur != nil {
			cur.measure(startL, startR)
			blocks = append(blocks, *cur)
			cur = nil
		}
	}

	li, ri := 0, 0
	for _, f := range frags {
		atL, atR := li, ri
		li += f.Left.Len()
		ri += f.Right.Len()

		if f.Kind == Unchanged {
			flush()
			continue
		}
		if opts.IgnoreSpaces && blankOnly(f) {
			continue
		}
		f.Path = FragmentPath(f, left, right)
		key := f.Path
		if opts.Grouping == GroupByElement {
			key = key.Element()
		}
		if cur != nil && !key.Equal(cur.Path) {
			flush()
		}
		if cur == nil {
			cur = &DiffBlock{Format: format, Path: key}
			startL, startR = atL, atR
		}
		cur.Fragments = append(cur.Fragments, f)
	}
	flush()
	return blocks
}

func blankOnly(f Fragment) bool {
	if f.Kind != Added && f.Kind != Removed {
		return false
	}
	return strings.TrimSpace(f.Text()) == ""
}
