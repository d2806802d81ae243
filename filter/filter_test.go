package filter_test

import (
	"errors"
	"testing"

	"github.com/fwojciec/anydiff"
	"github.com/fwojciec/anydiff/filter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func path(t *testing.T, s string) anydiff.Path {
	t.Helper()
	p, err := anydiff.ParsePath(s)
	require.NoError(t, err)
	return p
}

func changed(t *testing.T, p, left, right string) anydiff.Fragment {
	return anydiff.Fragment{
		Kind:  anydiff.Changed,
		Path:  path(t, p),
		Left:  &anydiff.Span{Start: 0, Lines: []string{left}},
		Right: &anydiff.Span{Start: 0, Lines: []string{right}},
	}
}

func added(t *testing.T, p string, start int, lines ...string) anydiff.Fragment {
	return anydiff.Fragment{Kind: anydiff.Added, Path: path(t, p), Right: &anydiff.Span{Start: start, Lines: lines}}
}

func mustPath(t *testing.T, pattern string) filter.Matcher {
	t.Helper()
	m, err := filter.Path(pattern)
	require.NoError(t, err)
	return m
}

func mustContent(t *testing.T, pattern string) filter.Matcher {
	t.Helper()
	m, err := filter.Content(pattern)
	require.NoError(t, err)
	return m
}

func TestPath_MatchesAncestors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"/html/head", "/html/head/title", true},
		{"/html/head/**", "/html/head/meta[2]/@content", true},
		{"/html/*/title", "/html/head/title", true},
		{"/html/*", "/html/body/div/p", true},
		{"/html/body", "/html/head/title", false},
		{"/catalog/item*", "/catalog/item[2]/price", true},
		{"/Import-Package", "/Import-Package", true},
	}
	for _, tt := range tests {
		m := mustPath(t, tt.pattern)
		f := changed(t, tt.path, "a", "b")
		assert.Equal(t, tt.want, m.Match(f), "pattern %s on %s", tt.pattern, tt.path)
	}
}

func TestPath_SiblingIndex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"/r/a[2]", "/r/a[2]", true},
		{"/r/a[2]", "/r/a[2]/@id", true},
		{"/r/a[2]", "/r/a", false},
		{"/r/a[12]/b", "/r/a[12]/b", true},
		{"/r/a[2]/*", "/r/a[3]/b", false},
		{"/r/[ab]", "/r/b", true},
	}
	for _, tt := range tests {
		m := mustPath(t, tt.pattern)
		f := changed(t, tt.path, "a", "b")
		assert.Equal(t, tt.want, m.Match(f), "pattern %s on %s", tt.pattern, tt.path)
	}
}

func TestPath_InvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := filter.Path("/a/[")

	var fce *anydiff.FilterConfigurationError
	require.True(t, errors.As(err, &fce))
	assert.Equal(t, "path", fce.Filter)
	assert.Equal(t, "/a/[", fce.Pattern)
}

func TestContent_InvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := filter.Content("(")

	var fce *anydiff.FilterConfigurationError
	require.ErrorAs(t, err, &fce)
	assert.Equal(t, "content", fce.Filter)
}

func TestEmptyPatterns(t *testing.T) {
	t.Parallel()

	_, err := filter.Path("")
	require.Error(t, err)
	_, err = filter.Content("")
	require.Error(t, err)
}

func TestContent_MatchesEitherSide(t *testing.T) {
	t.Parallel()

	m := mustContent(t, `\d{4}-\d{2}-\d{2}`)

	assert.True(t, m.Match(changed(t, "/a", "built 2024-01-01", "built")))
	assert.True(t, m.Match(changed(t, "/a", "built", "built 2024-01-02")))
	assert.False(t, m.Match(changed(t, "/a", "x", "y")))
}

func TestMatcherAlgebra(t *testing.T) {
	t.Parallel()

	head := mustPath(t, "/html/head")
	onlyChanged := filter.Kinds(anydiff.Changed)
	f := changed(t, "/html/head/title", "a", "b")
	g := added(t, "/html/head/meta", 0, "<meta>")

	assert.True(t, filter.AllOf(head, onlyChanged).Match(f))
	assert.False(t, filter.AllOf(head, onlyChanged).Match(g))
	assert.True(t, filter.AnyOf(head, onlyChanged).Match(g))
	assert.False(t, filter.NoneOf(head).Match(g))
	assert.True(t, filter.AllOf().Match(f))
	assert.False(t, filter.AnyOf().Match(f))
}

func TestFilters(t *testing.T) {
	t.Parallel()

	head := mustPath(t, "/html/head")
	f := changed(t, "/html/head/title", "a", "b")
	g := changed(t, "/html/body/p", "a", "b")

	assert.False(t, filter.Skip(head).Keep(f))
	assert.True(t, filter.Skip(head).Keep(g))
	assert.True(t, filter.Only(head).Keep(f))
	assert.False(t, filter.Only(head).Keep(g))
	assert.True(t, filter.Not(filter.Skip(head)).Keep(f))
	assert.False(t, filter.And(filter.Skip(head), filter.Only(head)).Keep(f))
	assert.True(t, filter.Or(filter.Skip(head), filter.Only(head)).Keep(f))
	assert.False(t, filter.Or().Keep(f))
	assert.True(t, filter.And().Keep(f))
}

func TestFirstMatch_IsOrderSensitive(t *testing.T) {
	t.Parallel()

	head := mustPath(t, "/html/head")
	title := mustPath(t, "/html/head/title")
	f := changed(t, "/html/head/title", "a", "b")
	m := changed(t, "/html/head/meta", "a", "b")
	other := changed(t, "/html/body", "a", "b")

	keepTitleFirst := filter.FirstMatch(
		filter.Rule{Match: title, Keep: true},
		filter.Rule{Match: head, Keep: false},
	)
	dropHeadFirst := filter.FirstMatch(
		filter.Rule{Match: head, Keep: false},
		filter.Rule{Match: title, Keep: true},
	)

	assert.True(t, keepTitleFirst.Keep(f))
	assert.False(t, keepTitleFirst.Keep(m))
	assert.False(t, dropHeadFirst.Keep(f))
	assert.True(t, keepTitleFirst.Keep(other), "unmatched fragments are kept")
}

func TestApply(t *testing.T) {
	t.Parallel()

	title := changed(t, "/html/head/title", "Old", "New")
	meta := added(t, "/html/head/meta", 3, "<meta charset=\"utf-8\">")
	p := changed(t, "/html/body/p", "a", "b")

	blocks := []anydiff.DiffBlock{
		(anydiff.DiffBlock{Format: anydiff.FormatHTML, Path: path(t, "/html/head")}).WithFragments([]anydiff.Fragment{title, meta}),
		(anydiff.DiffBlock{Format: anydiff.FormatHTML, Path: path(t, "/html/body/p")}).WithFragments([]anydiff.Fragment{p}),
	}
	before := anydiff.TotalCounts(blocks)

	t.Run("drops emptied blocks", func(t *testing.T) {
		t.Parallel()
		out := filter.Apply(blocks, filter.Skip(mustPath(t, "/html/body")))
		require.Len(t, out, 1)
		assert.Equal(t, "/html/head", out[0].Path.String())
	})

	t.Run("recomputes counts", func(t *testing.T) {
		t.Parallel()
		out := filter.Apply(blocks, filter.Skip(filter.Kinds(anydiff.Added)))
		require.Len(t, out, 2)
		assert.Equal(t, anydiff.Counts{Changed: 1}, out[0].Counts)
		assert.Len(t, out[0].Fragments, 1)
	})

	t.Run("filters are conjoined", func(t *testing.T) {
		t.Parallel()
		out := filter.Apply(blocks,
			filter.Skip(mustPath(t, "/html/body")),
			filter.Skip(mustContent(t, "charset")),
		)
		require.Len(t, out, 1)
		assert.Equal(t, anydiff.Counts{Changed: 1}, anydiff.TotalCounts(out))
	})

	t.Run("is monotone and idempotent", func(t *testing.T) {
		t.Parallel()
		f := filter.Skip(mustContent(t, "Old"))
		once := filter.Apply(blocks, f)
		twice := filter.Apply(once, f)
		assert.Equal(t, once, twice)

		after := anydiff.TotalCounts(once)
		assert.LessOrEqual(t, after.Added, before.Added)
		assert.LessOrEqual(t, after.Removed, before.Removed)
		assert.LessOrEqual(t, after.Changed, before.Changed)
	})

	t.Run("leaves input untouched", func(t *testing.T) {
		t.Parallel()
		filter.Apply(blocks, filter.Skip(filter.Kinds(anydiff.Changed)))
		assert.Len(t, blocks[0].Fragments, 2)
	})
}

func TestApply_MoreFiltersNeverKeepMore(t *testing.T) {
	t.Parallel()

	blocks := []anydiff.DiffBlock{
		(anydiff.DiffBlock{Format: anydiff.FormatHTML, Path: path(t, "/html/head")}).WithFragments([]anydiff.Fragment{
			changed(t, "/html/head/title", "Old", "New"),
			added(t, "/html/head/meta", 3, "<meta>"),
		}),
		(anydiff.DiffBlock{Format: anydiff.FormatHTML, Path: path(t, "/html/body")}).WithFragments([]anydiff.Fragment{
			changed(t, "/html/body/p", "a", "b"),
		}),
	}
	all := []filter.Filter{
		filter.Skip(filter.Kinds(anydiff.Added)),
		filter.Skip(mustContent(t, "^a$")),
		filter.Only(mustPath(t, "/html/**")),
		filter.Skip(mustPath(t, "/html/head/title")),
	}

	prev := anydiff.TotalCounts(blocks).Total()
	for i := range all {
		total := anydiff.TotalCounts(filter.Apply(blocks, all[:i+1]...)).Total()
		assert.LessOrEqual(t, total, prev, "after %d filters", i+1)
		prev = total
	}

	reversed := make([]filter.Filter, len(all))
	for i, f := range all {
		reversed[len(all)-1-i] = f
	}
	assert.Equal(t, filter.Apply(blocks, all...), filter.Apply(blocks, reversed...))
}
