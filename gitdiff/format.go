// Package gitdiff renders comparison results as unified diffs that
// bluekeyes/go-gitdiff and patch(1) can read.
package gitdiff

import (
	"bufio"
	"fmt"
	"io"

	"github.com/fwojciec/anydiff"
)

// DefaultContext is the number of unchanged lines shown around each hunk.
const DefaultContext = 3

// DevNull names an absent side.
const DevNull = "/dev/null"

type op struct {
	kind byte // ' ', '-' or '+'
	text string
	l, r int // line indices before this op
}

// Formatter writes the canonical documents of a Diff as a unified diff.
type Formatter struct {
	context int
}

// NewFormatter creates a Formatter showing context unchanged lines around
// each hunk. A negative context means DefaultContext.
func NewFormatter(context int) *Formatter {
	if context < 0 {
		context = DefaultContext
	}
	return &Formatter{context: context}
}

// Format writes the unfiltered cover of d as a single-file unified diff.
// Nothing is written when the documents are identical.
func (f *Formatter) Format(w io.Writer, leftName, rightName string, d *anydiff.Diff) error {
	ops := flatten(d.Fragments)
	hunks := f.hunks(ops)
	if len(hunks) == 0 {
		return nil
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "--- %s\n+++ %s\n", leftName, rightName)
	for _, h := range hunks {
		lr, rr := span(ops[h[0]:h[1]])
		fmt.Fprintf(bw, "@@ -%s +%s @@\n", lr, rr)
		for _, o := range ops[h[0]:h[1]] {
			bw.WriteByte(o.kind)
			bw.WriteString(o.text)
			bw.WriteByte('\n')
		}
	}
	return bw.Flush()
}

// Format writes d with DefaultContext.
func Format(w io.Writer, leftName, rightName string, d *anydiff.Diff) error {
	return NewFormatter(DefaultContext).Format(w, leftName, rightName, d)
}

func flatten(frags []anydiff.Fragment) []op {
	var ops []op
	l, r := 0, 0
	for _, fr := range frags {
		switch fr.Kind {
		case anydiff.Unchanged:
			for _, t := range fr.Left.Lines {
				ops = append(ops, op{kind: ' ', text: t, l: l, r: r})
				l++
				r++
			}
			continue
		}
		if fr.Left != nil {
			for _, t := range fr.Left.Lines {
				ops = append(ops, op{kind: '-', text: t, l: l, r: r})
				l++
			}
		}
		if fr.Right != nil {
			for _, t := range fr.Right.Lines {
				ops = append(ops, op{kind: '+', text: t, l: l, r: r})
				r++
			}
		}
	}
	return ops
}

// hunks returns [start, end) op ranges. Changes closer than twice the
// context share a hunk.
func (f *Formatter) hunks(ops []op) [][2]int {
	var out [][2]int
	for i := 0; i < len(ops); {
		if ops[i].kind == ' ' {
			i++
			continue
		}
		start := max(i-f.context, 0)
		end := i
		for end < len(ops) {
			if ops[end].kind != ' ' {
				end++
				continue
			}
			run := end
			for run < len(ops) && ops[run].kind == ' ' {
				run++
			}
			if run == len(ops) || run-end > 2*f.context {
				end = min(end+f.context, len(ops))
				break
			}
			end = run
		}
		if n := len(out); n > 0 && start <= out[n-1][1] {
			out[n-1][1] = end
		} else {
			out = append(out, [2]int{start, end})
		}
		i = end
	}
	return out
}

func span(ops []op) (anydiff.LineRange, anydiff.LineRange) {
	lr := anydiff.LineRange{Start: ops[0].l, End: ops[0].l}
	rr := anydiff.LineRange{Start: ops[0].r, End: ops[0].r}
	for _, o := range ops {
		if o.kind != '+' {
			lr.End++
		}
		if o.kind != '-' {
			rr.End++
		}
	}
	return lr, rr
}
