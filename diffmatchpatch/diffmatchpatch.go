// Package diffmatchpatch marks changed characters using sergi/go-diff.
package diffmatchpatch

import (
	"github.com/fwojciec/anydiff"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Compile-time interface verification.
var _ anydiff.Marker = (*Marker)(nil)

// Marker computes character-level marks with semantic cleanup, which folds
// scattered single-character matches into the surrounding change.
type Marker struct {
	dmp *diffmatchpatch.DiffMatchPatch
}

// NewMarker creates a character-level marker.
func NewMarker() *Marker {
	return &Marker{dmp: diffmatchpatch.New()}
}

// Mark returns the changed byte ranges of left and right.
func (m *Marker) Mark(left, right string) (leftMarks, rightMarks []anydiff.Mark) {
	if left == right {
		return nil, nil
	}
	diffs := m.dmp.DiffMain(left, right, false)
	diffs = m.dmp.DiffCleanupSemantic(diffs)

	lpos, rpos := 0, 0
	for _, d := range diffs {
		n := len(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			lpos += n
			rpos += n
		case diffmatchpatch.DiffDelete:
			leftMarks = append(leftMarks, anydiff.Mark{Start: lpos, End: lpos + n})
			lpos += n
		case diffmatchpatch.DiffInsert:
			rightMarks = append(rightMarks, anydiff.Mark{Start: rpos, End: rpos + n})
			rpos += n
		}
	}
	return anydiff.MergeMarks(leftMarks), anydiff.MergeMarks(rightMarks)
}
