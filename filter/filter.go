// Package filter suppresses uninteresting fragments of a comparison.
//
// Matchers select fragments by path, content or kind and combine with
// AllOf, AnyOf and NoneOf. Filters decide whether a fragment is kept: Skip
// and Only wrap a matcher, And, Or and Not combine filters, and FirstMatch
// evaluates ordered rules. All values are immutable and safe for concurrent
// use.
package filter

import (
	"errors"
	"regexp"
	"strings"

	"github.com/fwojciec/anydiff"
	"github.com/gobwas/glob"
)

var errEmptyPattern = errors.New("pattern is empty")

// Matcher selects fragments. The set of matchers is closed; build them
// with the functions of this package.
type Matcher interface {
	Match(f anydiff.Fragment) bool
	matcher()
}

type pathMatcher struct {
	pattern string
	g       glob.Glob
}

// Path matches fragments whose path, or any ancestor of it, matches the glob
// pattern. Path steps are separated by '/', so '*' stays within one step and
// '**' spans several: /html/head/** matches everything below head.
//
// A bracketed number is a sibling index, as in block locators: /r/a[2]
// matches the second a element, not a character class. Other brackets keep
// their glob meaning.
func Path(pattern string) (Matcher, error) {
	if pattern == "" {
		return nil, &anydiff.FilterConfigurationError{Filter: "path", Err: errEmptyPattern}
	}
	g, err := glob.Compile(escapeIndices(pattern), '/')
	if err != nil {
		return nil, &anydiff.FilterConfigurationError{Filter: "path", Pattern: pattern, Err: err}
	}
	return pathMatcher{pattern: pattern, g: g}, nil
}

func (m pathMatcher) Match(f anydiff.Fragment) bool {
	for _, p := range f.Path.Ancestors() {
		if m.g.Match(p.String()) {
			return true
		}
	}
	return false
}

func (pathMatcher) matcher() {}

// escapeIndices quotes every [n] step index of pattern so that glob matches
// it literally.
func escapeIndices(pattern string) string {
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c == '\\' && i+1 < len(pattern) {
			b.WriteString(pattern[i : i+2])
			i++
			continue
		}
		if c == '[' {
			j := i + 1
			for j < len(pattern) && pattern[j] >= '0' && pattern[j] <= '9' {
				j++
			}
			if j > i+1 && j < len(pattern) && pattern[j] == ']' {
				b.WriteString(`\[` + pattern[i+1:j] + `\]`)
				i = j
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

type contentMatcher struct {
	re *regexp.Regexp
}

// Content matches fragments whose left or right text matches the regular
// expression.
func Content(pattern string) (Matcher, error) {
	if pattern == "" {
		return nil, &anydiff.FilterConfigurationError{Filter: "content", Err: errEmptyPattern}
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &anydiff.FilterConfigurationError{Filter: "content", Pattern: pattern, Err: err}
	}
	return contentMatcher{re: re}, nil
}

func (m contentMatcher) Match(f anydiff.Fragment) bool {
	return (f.Left != nil && m.re.MatchString(f.Left.Text())) ||
		(f.Right != nil && m.re.MatchString(f.Right.Text()))
}

func (contentMatcher) matcher() {}

type kindMatcher map[anydiff.Kind]bool

// Kinds matches fragments of any of the given kinds.
func Kinds(kinds ...anydiff.Kind) Matcher {
	m := make(kindMatcher, len(kinds))
	for _, k := range kinds {
		m[k] = true
	}
	return m
}

func (m kindMatcher) Match(f anydiff.Fragment) bool { return m[f.Kind] }
func (kindMatcher) matcher()                       {}

type allOf []Matcher

// AllOf matches fragments matched by every m. With no matchers it matches
// everything.
func AllOf(ms ...Matcher) Matcher { return allOf(compact(ms)) }

func (a allOf) Match(f anydiff.Fragment) bool {
	for _, m := range a {
		if !m.Match(f) {
			return false
		}
	}
	return true
}

func (allOf) matcher() {}

type anyOf []Matcher

// AnyOf matches fragments matched by at least one m. With no matchers it
// matches nothing.
func AnyOf(ms ...Matcher) Matcher { return anyOf(compact(ms)) }

func (a anyOf) Match(f anydiff.Fragment) bool {
	for _, m := range a {
		if m.Match(f) {
			return true
		}
	}
	return false
}

func (anyOf) matcher() {}

type noneOf []Matcher

// NoneOf matches fragments matched by none of ms.
func NoneOf(ms ...Matcher) Matcher { return noneOf(compact(ms)) }

func (n noneOf) Match(f anydiff.Fragment) bool { return !anyOf(n).Match(f) }
func (noneOf) matcher()                        {}

func compact(ms []Matcher) []Matcher {
	out := make([]Matcher, 0, len(ms))
	for _, m := range ms {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}
