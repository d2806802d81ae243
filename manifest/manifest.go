// Package manifest canonicalizes JAR-style manifests: headers are unfolded
// and wrapped again at a fixed width, keeping their order.
package manifest

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/anydiff"
	"github.com/fwojciec/anydiff/plain"
)

// Compile-time interface verification.
var _ anydiff.Canonicalizer = (*Canonicalizer)(nil)

var (
	errOrphanContinuation = errors.New("continuation line without a header")
	errMissingColon       = errors.New("header has no colon")
	errInvalidName        = errors.New("invalid header name")
)

// Header is one unfolded manifest header.
type Header struct {
	Name  string
	Value string
	Line  int // 1-based line of the header's first physical line
}

// Section is a blank-line delimited group of headers. The first section is
// the main section; the others are usually named by their Name header.
type Section struct {
	Headers []Header
}

// Name returns the value of the section's Name header, if any.
func (s Section) Name() string {
	for _, h := range s.Headers {
		if h.Name == "Name" {
			return h.Value
		}
	}
	return ""
}

// Parse unfolds continuation lines and splits the manifest into sections.
func Parse(raw string) ([]Section, error) {
	var sections []Section
	var cur *Section
	for i, line := range plain.SplitLines(raw) {
		lineNo := i + 1
		switch {
		case line == "":
			if cur != nil {
				sections = append(sections, *cur)
				cur = nil
			}
		case strings.HasPrefix(line, " "):
			if cur == nil || len(cur.Headers) == 0 {
				return nil, malformed(lineNo, errOrphanContinuation)
			}
			cur.Headers[len(cur.Headers)-1].Value += line[1:]
		default:
			name, value, ok := strings.Cut(line, ":")
			if !ok {
				return nil, malformed(lineNo, errMissingColon)
			}
			if !validName(name) {
				return nil, malformed(lineNo, fmt.Errorf("%w %q", errInvalidName, name))
			}
			if cur == nil {
				cur = &Section{}
			}
			cur.Headers = append(cur.Headers, Header{Name: name, Value: strings.TrimPrefix(value, " "), Line: lineNo})
		}
	}
	if cur != nil {
		sections = append(sections, *cur)
	}
	return sections, nil
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		ok := r == '-' || r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !ok {
			return false
		}
	}
	return true
}

func malformed(line int, err error) error {
	return &anydiff.MalformedInputError{Format: anydiff.FormatManifest, Line: line, Err: err}
}

// Canonicalizer implements anydiff.Canonicalizer for manifests.
type Canonicalizer struct{}

// NewCanonicalizer creates a manifest canonicalizer.
func NewCanonicalizer() *Canonicalizer {
	return &Canonicalizer{}
}

// Canonicalize emits each header wrapped at opts.ManifestWidth bytes with
// single-space continuation lines. Every physical line of a header has the
// header's path: /Name for main section headers and /Section/Name for headers
// of named sections. Sections are separated by one empty line. Without
// opts.Normalize the raw lines are returned once the manifest parses.
func (c *Canonicalizer) Canonicalize(raw string, opts anydiff.Options) (*anydiff.Document, error) {
	sections, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	if !opts.Normalize {
		return plain.NewRaw(anydiff.FormatManifest).Canonicalize(raw, opts)
	}
	width := opts.ManifestWidth
	if width <= 1 {
		width = anydiff.DefaultManifestWidth
	}

	doc := &anydiff.Document{Format: anydiff.FormatManifest}
	for si, s := range sections {
		var base anydiff.Path
		if si > 0 {
			doc.Lines = append(doc.Lines, anydiff.NewLine("", nil, 0, opts))
			if name := s.Name(); name != "" {
				base = anydiff.Path{{Name: url.PathEscape(name), Index: 1}}
			} else {
				base = anydiff.Path{{Name: fmt.Sprintf("section-%d", si), Index: 1}}
			}
		}
		seen := make(map[string]int)
		for _, h := range s.Headers {
			seen[h.Name]++
			p := base.Child(anydiff.Step{Name: h.Name, Index: seen[h.Name]})
			for i, l := range Wrap(h.Name+": "+h.Value, width) {
				doc.Lines = append(doc.Lines, anydiff.NewLine(l, p, min(i, 1), opts))
			}
		}
	}
	return doc, nil
}

// Wrap splits a header into physical lines of at most width bytes, the
// continuation lines starting with a space. Multi-byte runes are not split.
func Wrap(header string, width int) []string {
	var lines []string
	prefix := ""
	for {
		room := width - len(prefix)
		if len(header) <= room {
			return append(lines, prefix+header)
		}
		cut := room
		for cut > 0 && !utf8.RuneStart(header[cut]) {
			cut--
		}
		if cut == 0 {
			_, cut = utf8.DecodeRuneInString(header)
		}
		lines = append(lines, prefix+header[:cut])
		header = header[cut:]
		prefix = " "
	}
}
