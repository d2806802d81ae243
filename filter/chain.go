package filter

import "github.com/fwojciec/anydiff"

// Filter decides whether a fragment is kept. The set of filters is closed;
// build them with the functions of this package.
type Filter interface {
	Keep(f anydiff.Fragment) bool
	filter()
}

type skip struct{ m Matcher }

// Skip drops fragments matched by m.
func Skip(m Matcher) Filter { return skip{m} }

func (s skip) Keep(f anydiff.Fragment) bool { return s.m == nil || !s.m.Match(f) }
func (skip) filter()                        {}

type only struct{ m Matcher }

// Only keeps just the fragments matched by m.
func Only(m Matcher) Filter { return only{m} }

func (o only) Keep(f anydiff.Fragment) bool { return o.m == nil || o.m.Match(f) }
func (only) filter()                        {}

type and []Filter

// And keeps a fragment only if every filter keeps it.
func And(fs ...Filter) Filter { return and(compactFilters(fs)) }

func (a and) Keep(f anydiff.Fragment) bool {
	for _, flt := range a {
		if !flt.Keep(f) {
			return false
		}
	}
	return true
}

func (and) filter() {}

type or []Filter

// Or keeps a fragment if any filter keeps it. With no filters nothing is kept.
func Or(fs ...Filter) Filter { return or(compactFilters(fs)) }

func (o or) Keep(f anydiff.Fragment) bool {
	for _, flt := range o {
		if flt.Keep(f) {
			return true
		}
	}
	return false
}

func (or) filter() {}

type not struct{ f Filter }

// Not inverts f.
func Not(f Filter) Filter { return not{f} }

func (n not) Keep(f anydiff.Fragment) bool { return n.f != nil && !n.f.Keep(f) }
func (not) filter()                        {}

// Rule is one entry of a FirstMatch chain.
type Rule struct {
	Match Matcher
	Keep  bool
}

type firstMatch []Rule

// FirstMatch evaluates rules in order and lets the first rule whose matcher
// matches decide. A fragment no rule matches is kept. Reordering rules can
// change the outcome.
func FirstMatch(rules ...Rule) Filter {
	kept := make(firstMatch, 0, len(rules))
	for _, r := range rules {
		if r.Match != nil {
			kept = append(kept, r)
		}
	}
	return kept
}

func (fm firstMatch) Keep(f anydiff.Fragment) bool {
	for _, r := range fm {
		if r.Match.Match(f) {
			return r.Keep
		}
	}
	return true
}

func (firstMatch) filter() {}

func compactFilters(fs []Filter) []Filter {
	out := make([]Filter, 0, len(fs))
	for _, f := range fs {
		if f != nil {
			out = append(out, f)
		}
	}
	return out
}

// Apply keeps the fragments every filter keeps. Blocks left without
// fragments are dropped, and the counts and ranges of the others are
// recomputed. The input is not modified.
func Apply(blocks []anydiff.DiffBlock, filters ...Filter) []anydiff.DiffBlock {
	all := And(filters...)
	out := make([]anydiff.DiffBlock, 0, len(blocks))
	for _, b := range blocks {
		var kept []anydiff.Fragment
		for _, f := range b.Fragments {
			if all.Keep(f) {
				kept = append(kept, f)
			}
		}
		if len(kept) == 0 {
			continue
		}
		if len(kept) == len(b.Fragments) {
			out = append(out, b)
			continue
		}
		out = append(out, b.WithFragments(kept))
	}
	return out
}
