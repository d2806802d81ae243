// Package jsonl persists comparison results as JSON lines, one record per
// compared pair.
package jsonl

import "github.com/fwojciec/anydiff"

// Record is the persisted outcome of one comparison. Failed comparisons
// carry Error and no blocks.
type Record struct {
	Left   string              `json:"left"`
	Right  string              `json:"right"`
	Format anydiff.Format      `json:"format"`
	Before anydiff.Counts      `json:"before"`
	After  anydiff.Counts      `json:"after"`
	Blocks []anydiff.DiffBlock `json:"blocks,omitempty"`
	Error  string              `json:"error,omitempty"`
}

// NewRecord builds the record for a comparison of left and right that
// returned d and err.
func NewRecord(left, right string, d *anydiff.Diff, err error) Record {
	r := Record{Left: left, Right: right}
	if err != nil {
		r.Error = err.Error()
		return r
	}
	if d != nil {
		r.Format = d.Format
		r.Before = d.Before
		r.After = d.After
		r.Blocks = d.Blocks
	}
	return r
}

// Failed reports whether the comparison failed.
func (r Record) Failed() bool {
	return r.Error != ""
}
