package anydiff

import (
	"fmt"
	"strconv"
	"strings"
)

// Step is one level of a Path: an element name and its 1-based index among
// same-named siblings. Attribute steps are named "@name".
type Step struct {
	Name  string
	Index int
}

func (s Step) String() string {
	if s.Index > 1 {
		return s.Name + "[" + strconv.Itoa(s.Index) + "]"
	}
	return s.Name
}

// Attribute reports whether the step addresses an attribute.
func (s Step) Attribute() bool {
	return strings.HasPrefix(s.Name, "@")
}

// Path locates a line within a structured document, e.g. /catalog/item[2]/title.
// The empty path is the document root.
type Path []Step

// String renders the path with the first sibling index omitted.
func (p Path) String() string {
	if len(p) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, s := range p {
		b.WriteByte('/')
		b.WriteString(s.String())
	}
	return b.String()
}

// MarshalText implements encoding.TextMarshaler.
func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Path) UnmarshalText(b []byte) error {
	parsed, err := ParsePath(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePath parses the String form of a path.
func ParsePath(s string) (Path, error) {
	if s == "" || s == "/" {
		return nil, nil
	}
	if !strings.HasPrefix(s, "/") {
		return nil, fmt.Errorf("path %q must start with /", s)
	}
	parts := strings.Split(s[1:], "/")
	p := make(Path, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("path %q has an empty step", s)
		}
		step := Step{Name: part, Index: 1}
		if i := strings.IndexByte(part, '['); i > 0 && strings.HasSuffix(part, "]") {
			n, err := strconv.Atoi(part[i+1 : len(part)-1])
			if err != nil || n < 1 {
				return nil, fmt.Errorf("path %q has an invalid index in %q", s, part)
			}
			step = Step{Name: part[:i], Index: n}
		}
		p = append(p, step)
	}
	return p, nil
}

// Equal reports whether both paths have the same steps.
func (p Path) Equal(q Path) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether q is p or one of its ancestors.
func (p Path) HasPrefix(q Path) bool {
	return len(q) <= len(p) && p[:len(q)].Equal(q)
}

// IsAncestorOf reports whether p is a proper ancestor of q.
func (p Path) IsAncestorOf(q Path) bool {
	return len(p) < len(q) && q.HasPrefix(p)
}

// Child returns a new path with s appended.
func (p Path) Child(s Step) Path {
	c := make(Path, len(p), len(p)+1)
	copy(c, p)
	return append(c, s)
}

// Element returns the path without a trailing attribute step.
func (p Path) Element() Path {
	if len(p) > 0 && p[len(p)-1].Attribute() {
		return p[:len(p)-1]
	}
	return p
}

// Ancestors returns p and each of its ancestors, longest first, ending with the root.
func (p Path) Ancestors() []Path {
	out := make([]Path, 0, len(p)+1)
	for i := len(p); i >= 0; i-- {
		out = append(out, p[:i])
	}
	return out
}

// CommonAncestor returns the longest path that is a prefix of both a and b.
func CommonAncestor(a, b Path) Path {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return a[:n:n]
}
