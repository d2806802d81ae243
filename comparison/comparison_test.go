package comparison_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/anydiff"
	"github.com/fwojciec/anydiff/comparison"
	"github.com/fwojciec/anydiff/filter"
	"github.com/fwojciec/anydiff/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func xmlSource(name, content string) anydiff.Source {
	return anydiff.Source{Name: name, Content: content}
}

func TestTask_Compare_MarksChangedText(t *testing.T) {
	t.Parallel()

	task := comparison.NewTask()
	d, err := task.Compare(
		xmlSource("left.xml", "<a><b>1</b></a>"),
		xmlSource("right.xml", "<a><b>2</b></a>"),
		comparison.Config{},
	)

	require.NoError(t, err)
	assert.Equal(t, anydiff.FormatXML, d.Format)
	require.Len(t, d.Blocks, 1)
	b := d.Blocks[0]
	assert.Equal(t, "/a/b", b.Path.String())
	assert.Equal(t, anydiff.Counts{Changed: 1}, b.Counts)
	require.Len(t, b.Fragments, 1)
	f := b.Fragments[0]
	assert.Equal(t, anydiff.Changed, f.Kind)
	assert.Equal(t, []string{"1"}, f.Left.Marked().MarkedTexts())
	assert.Equal(t, []string{"2"}, f.Right.Marked().MarkedTexts())
}

func TestTask_Compare_Identical(t *testing.T) {
	t.Parallel()

	src := xmlSource("same.xml", "<a x=\"1\"><b>1</b></a>")
	d, err := comparison.NewTask().Compare(src, src, comparison.Config{})

	require.NoError(t, err)
	assert.True(t, d.Empty())
	assert.Empty(t, d.Blocks)
	assert.Equal(t, anydiff.Counts{}, d.Before)
	assert.Same(t, d.Left, d.Right)
}

func TestTask_Compare_AttributeOrderIsIgnored(t *testing.T) {
	t.Parallel()

	d, err := comparison.NewTask().Compare(
		xmlSource("l.xml", `<a y="2" x="1"/>`),
		xmlSource("r.xml", `<a x="1" y="2"/>`),
		comparison.Config{},
	)

	require.NoError(t, err)
	assert.Empty(t, d.Blocks)
}

func TestTask_Compare_MalformedSide(t *testing.T) {
	t.Parallel()

	_, err := comparison.NewTask().Compare(
		xmlSource("ok.xml", "<a/>"),
		xmlSource("bad.xml", "<a><b></a>"),
		comparison.Config{},
	)

	var mie *anydiff.MalformedInputError
	require.ErrorAs(t, err, &mie)
	assert.Equal(t, anydiff.Right, mie.Side)
	assert.Equal(t, anydiff.FormatXML, mie.Format)
	assert.Contains(t, err.Error(), "malformed right xml input")
}

func TestTask_Compare_BothMissing(t *testing.T) {
	t.Parallel()

	_, err := comparison.NewTask().Compare(
		anydiff.Source{Name: "a", Missing: true},
		anydiff.Source{Name: "b", Missing: true},
		comparison.Config{},
	)

	assert.ErrorIs(t, err, anydiff.ErrNoInput)
}

func TestTask_Compare_MissingSide(t *testing.T) {
	t.Parallel()

	d, err := comparison.NewTask().Compare(
		anydiff.Source{Name: "new.txt", Missing: true},
		anydiff.Source{Name: "new.txt", Content: "x\ny\n"},
		comparison.Config{},
	)

	require.NoError(t, err)
	assert.Equal(t, anydiff.FormatPlain, d.Format)
	assert.Equal(t, 0, d.Left.Len())
	require.Len(t, d.Blocks, 1)
	assert.Equal(t, anydiff.Counts{Added: 2}, d.Before)
	assert.Equal(t, "-0,0 +1,2", d.Blocks[0].Locator())
}

func TestTask_Compare_FiltersAffectOnlyAfterCounts(t *testing.T) {
	t.Parallel()

	skipA, err := filter.Path("/r/a")
	require.NoError(t, err)

	d, err := comparison.NewTask().Compare(
		xmlSource("l.xml", "<r><a>1</a><b>1</b></r>"),
		xmlSource("r.xml", "<r><a>2</a><b>2</b></r>"),
		comparison.Config{Filters: []filter.Filter{filter.Skip(skipA)}},
	)

	require.NoError(t, err)
	assert.Equal(t, anydiff.Counts{Changed: 2}, d.Before)
	assert.Equal(t, anydiff.Counts{Changed: 1}, d.After)
	require.Len(t, d.Blocks, 1)
	assert.Equal(t, "/r/b", d.Blocks[0].Path.String())
}

func TestTask_Compare_SkipBySiblingIndex(t *testing.T) {
	t.Parallel()

	skip, err := filter.Path("/r/a[2]")
	require.NoError(t, err)

	d, err := comparison.NewTask().Compare(
		xmlSource("l.xml", "<r><a>1</a><a>1</a></r>"),
		xmlSource("r.xml", "<r><a>1</a><a>2</a></r>"),
		comparison.Config{Filters: []filter.Filter{filter.Skip(skip)}},
	)

	require.NoError(t, err)
	assert.Equal(t, anydiff.Counts{Changed: 1}, d.Before)
	assert.Empty(t, d.Blocks)
}

func TestTask_Compare_ZeroOptions(t *testing.T) {
	t.Parallel()

	d, err := comparison.NewTask().Compare(
		anydiff.Source{Name: "l.txt", Content: "a  b\n"},
		anydiff.Source{Name: "r.txt", Content: "a b\n"},
		comparison.Config{Options: &anydiff.Options{IgnoreSpaces: true}},
	)

	require.NoError(t, err)
	assert.Empty(t, d.Blocks)
}

func TestTask_Compare_IgnoreSpaces(t *testing.T) {
	t.Parallel()

	opts := anydiff.DefaultOptions(anydiff.FormatPlain)
	opts.IgnoreSpaces = true

	d, err := comparison.NewTask().Compare(
		anydiff.Source{Name: "l.txt", Content: "a  b\n\n\tc\n"},
		anydiff.Source{Name: "r.txt", Content: "a b\nc\n"},
		comparison.Config{Options: &opts},
	)

	require.NoError(t, err)
	assert.Empty(t, d.Blocks)

	d, err = comparison.NewTask().Compare(
		anydiff.Source{Name: "l.txt", Content: "a  b\n\tc\n"},
		anydiff.Source{Name: "r.txt", Content: "a b\nc\n"},
		comparison.Config{},
	)

	require.NoError(t, err)
	assert.NotEmpty(t, d.Blocks)
}

func TestTask_Compare_IgnoreSpacesKeepsWordBoundaries(t *testing.T) {
	t.Parallel()

	opts := anydiff.DefaultOptions(anydiff.FormatPlain)
	opts.IgnoreSpaces = true

	d, err := comparison.NewTask().Compare(
		anydiff.Source{Name: "l.txt", Content: "total = foo bar\n"},
		anydiff.Source{Name: "r.txt", Content: "total = foobar\n"},
		comparison.Config{Options: &opts},
	)

	require.NoError(t, err)
	require.Len(t, d.Blocks, 1)
	assert.Equal(t, anydiff.Counts{Changed: 1}, d.After)
}

func TestTask_Compare_ManifestRefolding(t *testing.T) {
	t.Parallel()

	d, err := comparison.NewTask().Compare(
		anydiff.Source{Name: "a/MANIFEST.MF", Content: "Manifest-Version: 1.0\nBundle-Name: foobar\n"},
		anydiff.Source{Name: "b/MANIFEST.MF", Content: "Manifest-Version: 1.0\nBundle-Name: foo\n bar\n"},
		comparison.Config{},
	)

	require.NoError(t, err)
	assert.Equal(t, anydiff.FormatManifest, d.Format)
	assert.Empty(t, d.Blocks)
}

func TestTask_Compare_InvalidOptions(t *testing.T) {
	t.Parallel()

	opts := anydiff.DefaultOptions(anydiff.FormatPlain)
	opts.TokenPattern = "("

	_, err := comparison.NewTask().Compare(
		anydiff.Source{Name: "l.txt", Content: "a"},
		anydiff.Source{Name: "r.txt", Content: "b"},
		comparison.Config{Options: &opts},
	)

	assert.ErrorIs(t, err, anydiff.ErrInvalidOption)
}

func TestTask_Compare_UsesInjectedCollaborators(t *testing.T) {
	t.Parallel()

	detector := &mock.FormatDetector{
		DetectFormatFn: func(name string, content []byte) anydiff.Format { return anydiff.FormatPlain },
	}
	marker := &mock.Marker{
		MarkFn: func(left, right string) ([]anydiff.Mark, []anydiff.Mark) {
			return []anydiff.Mark{{Start: 0, End: 1}}, nil
		},
	}

	d, err := comparison.NewTask(
		comparison.WithDetector(detector),
		comparison.WithMarker(marker),
	).Compare(
		anydiff.Source{Name: "l.xml", Content: "value one\n"},
		anydiff.Source{Name: "r.xml", Content: "value two\n"},
		comparison.Config{},
	)

	require.NoError(t, err)
	assert.Equal(t, anydiff.FormatPlain, d.Format)
	require.Len(t, d.Blocks, 1)
	f := d.Blocks[0].Fragments[0]
	require.Equal(t, anydiff.Changed, f.Kind)
	assert.Equal(t, []anydiff.Mark{{Start: 0, End: 1}}, f.Left.Marks)
	assert.Empty(t, f.Right.Marks)
}

func TestTask_Compare_CanonicalizerErrorIsAttributed(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	c := &mock.Canonicalizer{
		CanonicalizeFn: func(raw string, opts anydiff.Options) (*anydiff.Document, error) {
			return nil, boom
		},
	}

	_, err := comparison.NewTask(comparison.WithCanonicalizer(anydiff.FormatPlain, c)).Compare(
		anydiff.Source{Name: "l.txt", Content: "a"},
		anydiff.Source{Name: "r.txt", Content: "b"},
		comparison.Config{},
	)

	var mie *anydiff.MalformedInputError
	require.ErrorAs(t, err, &mie)
	assert.Equal(t, anydiff.Left, mie.Side)
	assert.ErrorIs(t, err, boom)
}

func TestTask_Batch_IsolatesFailures(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"a.xml": "<a><b>1</b></a>",
		"b.xml": "<a><b>2</b></a>",
		"c.xml": "<a><b>",
	}
	src := &mock.ContentSource{
		LoadFn: func(ctx context.Context, ref string) (*anydiff.Source, error) {
			content, ok := files[ref]
			if !ok {
				return nil, errors.New("not found")
			}
			return &anydiff.Source{Name: ref, Content: content}, nil
		},
	}
	pairs := []comparison.Pair{
		{Left: "a.xml", Right: "b.xml"},
		{Left: "a.xml", Right: "c.xml"},
		{Left: "a.xml", Right: "missing.xml"},
		{Left: "b.xml", Right: "b.xml"},
	}

	results := comparison.NewTask().Batch(context.Background(), src, pairs, comparison.Config{}, 2)

	require.Len(t, results, 4)
	for i, r := range results {
		assert.Equal(t, pairs[i], r.Pair)
	}
	require.NoError(t, results[0].Err)
	assert.Len(t, results[0].Diff.Blocks, 1)

	var mie *anydiff.MalformedInputError
	assert.ErrorAs(t, results[1].Err, &mie)
	assert.Nil(t, results[1].Diff)

	assert.ErrorContains(t, results[2].Err, "loading missing.xml")

	require.NoError(t, results[3].Err)
	assert.True(t, results[3].Diff.Empty())
}

func TestTask_Batch_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &mock.ContentSource{
		LoadFn: func(ctx context.Context, ref string) (*anydiff.Source, error) {
			return &anydiff.Source{Name: ref, Content: ref}, nil
		},
	}

	results := comparison.NewTask().Batch(ctx, src, []comparison.Pair{{Left: "a", Right: "b"}}, comparison.Config{}, 0)

	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
}

func TestTask_Compare_ValuesOverrideFormatDefaults(t *testing.T) {
	t.Parallel()

	cfg := comparison.Config{Values: map[string]string{"ignore-spaces": "true"}}
	d, err := comparison.NewTask().Compare(
		xmlSource("l.xml", "<a><b>x  y</b></a>"),
		xmlSource("r.xml", "<a><b>x y</b></a>"),
		cfg,
	)

	require.NoError(t, err)
	assert.Empty(t, d.Blocks)

	_, err = comparison.NewTask().Compare(
		xmlSource("l.xml", "<a/>"),
		xmlSource("r.xml", "<b/>"),
		comparison.Config{Values: map[string]string{"fuzzy": "1"}},
	)
	assert.ErrorIs(t, err, anydiff.ErrUnknownOption)
}

func TestTask_Batch_RecordsMissingSides(t *testing.T) {
	t.Parallel()

	src := &mock.ContentSource{
		LoadFn: func(ctx context.Context, ref string) (*anydiff.Source, error) {
			if ref == "gone.txt" {
				return &anydiff.Source{Name: ref, Missing: true}, nil
			}
			return &anydiff.Source{Name: ref, Content: "x\n"}, nil
		},
	}

	results := comparison.NewTask().Batch(context.Background(), src,
		[]comparison.Pair{{Left: "gone.txt", Right: "new.txt"}}, comparison.Config{}, 1)

	require.NoError(t, results[0].Err)
	assert.True(t, results[0].LeftMissing)
	assert.False(t, results[0].RightMissing)
	assert.Equal(t, anydiff.Counts{Added: 1}, results[0].Diff.Before)
}

func TestTask_Compare_UsesInjectedAligner(t *testing.T) {
	t.Parallel()

	aligner := &mock.Aligner{
		AlignFn: func(left, right *anydiff.Document) []anydiff.Fragment {
			return []anydiff.Fragment{
				{Kind: anydiff.Removed, Left: &anydiff.Span{Start: 0, Lines: left.Texts()}},
				{Kind: anydiff.Added, Right: &anydiff.Span{Start: 0, Lines: right.Texts()}},
			}
		},
	}

	d, err := comparison.NewTask(comparison.WithAligner(aligner)).Compare(
		anydiff.Source{Name: "l.txt", Content: "a\nb\n"},
		anydiff.Source{Name: "r.txt", Content: "a\nc\n"},
		comparison.Config{},
	)

	require.NoError(t, err)
	assert.Equal(t, anydiff.Counts{Added: 2, Removed: 2}, d.Before)
	require.Len(t, d.Blocks, 1)
	assert.Len(t, d.Blocks[0].Fragments, 2)
}
