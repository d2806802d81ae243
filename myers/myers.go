// Package myers aligns canonical documents line by line using the Myers
// implementation from znkr.io/diff.
//
// The raw edit script is post-processed in two steps. First, every pure run
// of deletions or insertions is slid along equal neighbouring lines: down as
// far as it goes, unless only an upward position merges it with an adjacent
// change. Among alignments of equal cost this yields the fewest fragments and
// then the earliest matches. Second, the lines of each changed region are
// paired by token similarity; pairs become CHANGED fragments and the rest
// REMOVED and ADDED runs.
package myers

import (
	"github.com/fwojciec/anydiff"
	"github.com/fwojciec/anydiff/worddiff"
	"znkr.io/diff"
)

// Compile-time interface verification.
var _ anydiff.Aligner = (*Aligner)(nil)

// maxPairCells bounds the similarity table of one changed region. Larger
// regions pair lines by position.
const maxPairCells = 1 << 16

// Aligner implements anydiff.Aligner.
type Aligner struct {
	tokenizer anydiff.Tokenizer
}

// NewAligner creates an aligner that measures line similarity with tok, or
// with the word tokenizer if tok is nil.
func NewAligner(tok anydiff.Tokenizer) *Aligner {
	if tok == nil {
		tok = worddiff.NewTokenizer()
	}
	return &Aligner{tokenizer: tok}
}

// Align returns fragments whose left spans concatenate to left and whose
// right spans concatenate to right. Lines are compared by Key.
func (a *Aligner) Align(left, right *anydiff.Document) []anydiff.Fragment {
	lk, rk := left.Keys(), right.Keys()
	ops := Script(lk, rk)
	Compact(ops, lk, rk)
	return a.fragments(ops, left, right)
}

// Script returns a minimal sequence of edit operations turning lk into rk.
func Script(lk, rk []string) []diff.Op {
	edits := diff.Edits(lk, rk, diff.Optimal())
	ops := make([]diff.Op, len(edits))
	for i, e := range edits {
		ops[i] = e.Op
	}
	return ops
}

// Compact slides the pure deletion and insertion runs of ops in place. The
// result is an edit script of the same cost.
func Compact(ops []diff.Op, lk, rk []string) {
	x, y := 0, 0
	for i := 0; i < len(ops); {
		if ops[i] == diff.Match {
			x, y = x+1, y+1
			i++
			continue
		}
		kind := ops[i]
		e := i
		for e < len(ops) && ops[e] == kind {
			e++
		}
		mixed := (i > 0 && ops[i-1] != diff.Match) || (e < len(ops) && ops[e] != diff.Match)
		if mixed {
			for i < len(ops) && ops[i] != diff.Match {
				if ops[i] == diff.Delete {
					x++
				} else {
					y++
				}
				i++
			}
			continue
		}

		r := &run{ops: ops, s: i, e: e, x: x, y: y, keys: lk}
		if kind == diff.Insert {
			r.keys = rk
		}
		r.settle()

		x, y = r.x, r.y
		if kind == diff.Delete {
			x += r.e - r.s
		} else {
			y += r.e - r.s
		}
		i = r.e
	}
}

// run is a pure deletion or insertion run ops[s:e] whose first operation
// starts at cursor (x, y).
type run struct {
	ops  []diff.Op
	s, e int
	x, y int
	keys []string // lines of the side the run consumes
}

// pos returns the index, in keys, of the run's first line.
func (r *run) pos() int {
	if r.ops[r.s] == diff.Delete {
		return r.x
	}
	return r.y
}

func (r *run) canUp() bool {
	p := r.pos()
	return r.s > 0 && r.ops[r.s-1] == diff.Match && r.keys[p-1] == r.keys[p+r.e-r.s-1]
}

func (r *run) canDown() bool {
	p := r.pos()
	n := r.e - r.s
	return r.e < len(r.ops) && r.ops[r.e] == diff.Match && p+n < len(r.keys) && r.keys[p] == r.keys[p+n]
}

func (r *run) up() {
	r.ops[r.s-1], r.ops[r.e-1] = r.ops[r.e-1], diff.Match
	r.s, r.e = r.s-1, r.e-1
	r.x, r.y = r.x-1, r.y-1
}

func (r *run) down() {
	r.ops[r.s], r.ops[r.e] = diff.Match, r.ops[r.s]
	r.s, r.e = r.s+1, r.e+1
	r.x, r.y = r.x+1, r.y+1
}

func (r *run) settle() {
	for r.canUp() {
		r.up()
	}
	top := r.s
	mergedUp := r.s > 0 && r.ops[r.s-1] != diff.Match
	for r.canDown() {
		r.down()
	}
	mergedDown := r.e < len(r.ops) && r.ops[r.e] != diff.Match
	if mergedUp && !mergedDown {
		for r.s > top {
			r.up()
		}
	}
}

func (a *Aligner) fragments(ops []diff.Op, left, right *anydiff.Document) []anydiff.Fragment {
	var frags []anydiff.Fragment
	x, y := 0, 0
	for i := 0; i < len(ops); {
		j := i
		if ops[i] == diff.Match {
			for j < len(ops) && ops[j] == diff.Match {
				j++
			}
			n := j - i
			frags = append(frags, anydiff.Fragment{
				Kind:  anydiff.Unchanged,
				Left:  span(left, x, x+n),
				Right: span(right, y, y+n),
			})
			x, y = x+n, y+n
			i = j
			continue
		}
		dx, dy := 0, 0
		for j < len(ops) && ops[j] != diff.Match {
			if ops[j] == diff.Delete {
				dx++
			} else {
				dy++
			}
			j++
		}
		frags = append(frags, a.region(left, right, x, x+dx, y, y+dy)...)
		x, y = x+dx, y+dy
		i = j
	}
	return frags
}

// region splits the changed lines left[x0:x1] and right[y0:y1] into
// fragments, in order.
func (a *Aligner) region(left, right *anydiff.Document, x0, x1, y0, y1 int) []anydiff.Fragment {
	var frags []anydiff.Fragment
	pi, pj := x0, y0
	emitGap := func(toI, toJ int) {
		if toI > pi {
			frags = append(frags, anydiff.Fragment{Kind: anydiff.Removed, Left: span(left, pi, toI)})
		}
		if toJ > pj {
			frags = append(frags, anydiff.Fragment{Kind: anydiff.Added, Right: span(right, pj, toJ)})
		}
	}
	for _, p := range a.pair(left.Keys()[x0:x1], right.Keys()[y0:y1]) {
		i, j := x0+p.i, y0+p.j
		emitGap(i, j)
		frags = append(frags, anydiff.Fragment{
			Kind:  anydiff.Changed,
			Left:  span(left, i, i+1),
			Right: span(right, j, j+1),
		})
		pi, pj = i+1, j+1
	}
	emitGap(x1, y1)
	return frags
}

type pair struct{ i, j int }

// pair matches lines of two changed runs, preserving order, so that the sum
// of similarities is maximal. Only pairs at or above the similarity
// threshold are considered.
func (a *Aligner) pair(lk, rk []string) []pair {
	n, m := len(lk), len(rk)
	if n == 0 || m == 0 {
		return nil
	}
	lt := make([][]string, n)
	for i, k := range lk {
		lt[i] = a.tokenizer.Tokenize(k)
	}
	rt := make([][]string, m)
	for j, k := range rk {
		rt[j] = a.tokenizer.Tokenize(k)
	}
	sim := func(i, j int) float64 {
		s := worddiff.Similarity(lt[i], rt[j])
		if s < worddiff.SimilarityThreshold {
			return 0
		}
		return s
	}

	if n*m > maxPairCells {
		var pairs []pair
		for k := 0; k < min(n, m); k++ {
			if sim(k, k) > 0 {
				pairs = append(pairs, pair{k, k})
			}
		}
		return pairs
	}

	stride := m + 1
	score := make([]float64, (n+1)*stride)
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			best := max(score[(i-1)*stride+j], score[i*stride+j-1])
			if s := sim(i-1, j-1); s > 0 {
				best = max(best, score[(i-1)*stride+j-1]+s)
			}
			score[i*stride+j] = best
		}
	}

	var pairs []pair
	for i, j := n, m; i > 0 && j > 0; {
		cur := score[i*stride+j]
		switch {
		case cur == score[(i-1)*stride+j]:
			i--
		case cur == score[i*stride+j-1]:
			j--
		default:
			pairs = append(pairs, pair{i - 1, j - 1})
			i, j = i-1, j-1
		}
	}
	for l, r := 0, len(pairs)-1; l < r; l, r = l+1, r-1 {
		pairs[l], pairs[r] = pairs[r], pairs[l]
	}
	return pairs
}

func span(d *anydiff.Document, from, to int) *anydiff.Span {
	lines := make([]string, to-from)
	for i := range lines {
		lines[i] = d.Lines[from+i].Text
	}
	return &anydiff.Span{Start: from, Lines: lines}
}
