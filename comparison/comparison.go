// Package comparison runs a complete comparison: canonicalization, alignment,
// marking, block assembly and filtering.
package comparison

import (
	"errors"
	"fmt"

	"github.com/fwojciec/anydiff"
	"github.com/fwojciec/anydiff/chroma"
	"github.com/fwojciec/anydiff/difflib"
	"github.com/fwojciec/anydiff/diffmatchpatch"
	"github.com/fwojciec/anydiff/filter"
	anyhtml "github.com/fwojciec/anydiff/html"
	"github.com/fwojciec/anydiff/manifest"
	"github.com/fwojciec/anydiff/myers"
	"github.com/fwojciec/anydiff/plain"
	"github.com/fwojciec/anydiff/worddiff"
	anyxml "github.com/fwojciec/anydiff/xml"
	"github.com/rs/zerolog"
)

// Config is the per-comparison configuration. It is read, never modified,
// so one Config may be shared by concurrent comparisons.
type Config struct {
	Options *anydiff.Options  // Nil selects the defaults of the detected format
	Values  map[string]string // Named option values applied on top of Options
	Filters []filter.Filter
}

// Task compares pairs of sources. A Task holds no per-comparison state and
// is safe for concurrent use.
type Task struct {
	canonicalizers map[anydiff.Format]anydiff.Canonicalizer
	aligner        anydiff.Aligner
	detector       anydiff.FormatDetector
	marker         anydiff.Marker // Overrides the marker chosen from options
	logger         zerolog.Logger
}

// Option configures a Task.
type Option func(*Task)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(t *Task) { t.logger = l.With().Str("component", "comparison").Logger() }
}

// WithDetector sets the detector used for sources of FormatAuto.
func WithDetector(d anydiff.FormatDetector) Option {
	return func(t *Task) { t.detector = d }
}

// WithAligner replaces the line aligner.
func WithAligner(a anydiff.Aligner) Option {
	return func(t *Task) { t.aligner = a }
}

// WithMarker replaces the marker otherwise chosen by granularity.
func WithMarker(m anydiff.Marker) Option {
	return func(t *Task) { t.marker = m }
}

// WithCanonicalizer registers c for format f.
func WithCanonicalizer(f anydiff.Format, c anydiff.Canonicalizer) Option {
	return func(t *Task) { t.canonicalizers[f] = c }
}

// NewTask creates a Task with the built-in canonicalizers, the Myers aligner
// and chroma-based format detection.
func NewTask(opts ...Option) *Task {
	t := &Task{
		canonicalizers: map[anydiff.Format]anydiff.Canonicalizer{
			anydiff.FormatPlain:    plain.NewCanonicalizer(),
			anydiff.FormatHTML:     anyhtml.NewCanonicalizer(),
			anydiff.FormatXML:      anyxml.NewCanonicalizer(),
			anydiff.FormatManifest: manifest.NewCanonicalizer(),
		},
		aligner:  myers.NewAligner(nil),
		detector: chroma.NewDetector(),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Compare compares left and right. A side that fails to canonicalize
// yields a *anydiff.MalformedInputError naming the side. Missing sides
// compare as empty documents; both sides missing is ErrNoInput.
func (t *Task) Compare(left, right anydiff.Source, cfg Config) (*anydiff.Diff, error) {
	if left.Missing && right.Missing {
		return nil, anydiff.ErrNoInput
	}
	lf, rf := t.format(left), t.format(right)
	switch {
	case left.Missing:
		lf = rf
	case right.Missing:
		rf = lf
	}

	opts := anydiff.DefaultOptions(lf)
	if cfg.Options != nil {
		opts = *cfg.Options
	}
	opts, err := anydiff.ParseOptions(opts, cfg.Values)
	if err != nil {
		return nil, err
	}
	log := t.logger.With().Str("left", left.Name).Str("right", right.Name).Stringer("format", lf).Logger()

	ld, err := t.canonicalize(left, anydiff.Left, lf, opts)
	if err != nil {
		log.Warn().Err(err).Msg("left side is malformed")
		return nil, err
	}
	rd := ld
	if left.Missing || right.Missing || left.Content != right.Content || lf != rf {
		if rd, err = t.canonicalize(right, anydiff.Right, rf, opts); err != nil {
			log.Warn().Err(err).Msg("right side is malformed")
			return nil, err
		}
	}

	marker, err := t.markerFor(opts, lf)
	if err != nil {
		return nil, err
	}

	frags := t.aligner.Align(ld, rd)
	for i := range frags {
		if frags[i].Kind == anydiff.Changed {
			markFragment(&frags[i], marker, opts)
		}
	}

	blocks := anydiff.Assemble(frags, ld, rd, opts)
	d := &anydiff.Diff{
		Format:    lf,
		Left:      ld,
		Right:     rd,
		Fragments: frags,
		Before:    anydiff.TotalCounts(blocks),
	}
	d.Blocks = filter.Apply(blocks, cfg.Filters...)
	d.After = anydiff.TotalCounts(d.Blocks)

	log.Debug().
		Int("left_lines", ld.Len()).
		Int("right_lines", rd.Len()).
		Int("blocks", len(d.Blocks)).
		Stringer("before", d.Before).
		Stringer("after", d.After).
		Msg("compared")
	return d, nil
}

func (t *Task) format(s anydiff.Source) anydiff.Format {
	if s.Format != anydiff.FormatAuto {
		return s.Format
	}
	if s.Missing {
		return anydiff.FormatAuto
	}
	if f := t.detector.DetectFormat(s.Name, []byte(s.Content)); f != anydiff.FormatAuto {
		return f
	}
	return anydiff.FormatPlain
}

func (t *Task) canonicalize(s anydiff.Source, side anydiff.Side, f anydiff.Format, opts anydiff.Options) (*anydiff.Document, error) {
	if f == anydiff.FormatAuto {
		f = anydiff.FormatPlain
	}
	if s.Missing {
		return &anydiff.Document{Format: f}, nil
	}
	c, ok := t.canonicalizers[f]
	if !ok {
		return nil, fmt.Errorf("%w: no canonicalizer for %s", anydiff.ErrUnknownFormat, f)
	}
	doc, err := c.Canonicalize(s.Content, opts)
	if err != nil {
		var mie *anydiff.MalformedInputError
		if errors.As(err, &mie) {
			attributed := *mie
			attributed.Side = side
			return nil, &attributed
		}
		return nil, &anydiff.MalformedInputError{Side: side, Format: f, Err: err}
	}
	return doc, nil
}

func (t *Task) markerFor(opts anydiff.Options, f anydiff.Format) (anydiff.Marker, error) {
	if t.marker != nil {
		return t.marker, nil
	}
	switch opts.Granularity {
	case anydiff.GranularityChar:
		return diffmatchpatch.NewMarker(), nil
	case anydiff.GranularitySyntax:
		return worddiff.NewMarker(chroma.NewTokenizer(chroma.Language(f))), nil
	}
	if opts.TokenPattern == "" {
		return worddiff.NewMarker(nil), nil
	}
	tok, err := difflib.NewTokenizer(opts.TokenPattern)
	if err != nil {
		return nil, err
	}
	return worddiff.NewMarker(tok), nil
}

func markFragment(f *anydiff.Fragment, m anydiff.Marker, opts anydiff.Options) {
	left, right := f.Left.Text(), f.Right.Text()
	lm, rm := m.Mark(left, right)
	if opts.IgnoreSpaces {
		lm = anydiff.MarkedString{Text: left, Marks: lm}.WithoutBlankMarks().Marks
		rm = anydiff.MarkedString{Text: right, Marks: rm}.WithoutBlankMarks().Marks
	}
	f.Left.Marks, f.Right.Marks = lm, rm
}
