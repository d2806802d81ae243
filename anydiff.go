// Package anydiff provides domain types for comparing two versions of plain,
// HTML, XML or manifest content and reporting structured differences.
package anydiff

import (
	"context"
	"fmt"
	"strings"
)

// Format identifies how raw content is canonicalized before comparison.
type Format int

// Formats.
const (
	FormatAuto Format = iota // Detect from name and content
	FormatPlain
	FormatHTML
	FormatXML
	FormatManifest
)

var formatNames = map[Format]string{
	FormatAuto:     "auto",
	FormatPlain:    "plain",
	FormatHTML:     "html",
	FormatXML:      "xml",
	FormatManifest: "manifest",
}

func (f Format) String() string {
	if s, ok := formatNames[f]; ok {
		return s
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Markup reports whether the format is an element tree.
func (f Format) Markup() bool {
	return f == FormatHTML || f == FormatXML
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Format) UnmarshalText(b []byte) error {
	parsed, err := ParseFormat(string(b))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ParseFormat returns the format with the given name. An empty name is FormatAuto.
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return FormatAuto, nil
	}
	for f, n := range formatNames {
		if n == name {
			return f, nil
		}
	}
	switch name {
	case "text", "txt":
		return FormatPlain, nil
	case "htm", "xhtml":
		return FormatHTML, nil
	case "mf":
		return FormatManifest, nil
	}
	return FormatAuto, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Kind classifies a fragment of the alignment.
type Kind int

// Fragment kinds.
const (
	Unchanged Kind = iota
	Added
	Removed
	Changed
)

func (k Kind) String() string {
	switch k {
	case Unchanged:
		return "unchanged"
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Changed:
		return "changed"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind returns the kind with the given name.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unchanged":
		return Unchanged, nil
	case "added":
		return Added, nil
	case "removed":
		return Removed, nil
	case "changed":
		return Changed, nil
	}
	return Unchanged, fmt.Errorf("unknown fragment kind %q", s)
}

// Side identifies one of the two compared inputs.
type Side string

// Sides.
const (
	Left  Side = "left"
	Right Side = "right"
)

// Source is one side of a comparison as supplied by a caller.
type Source struct {
	Name    string // File name, URL or revision reference used for detection and reports
	Content string
	Missing bool   // The side does not exist; compared as empty
	Format  Format // FormatAuto to detect
}

// Canonicalizer converts raw content into its canonical line form.
// Implementations are pure and deterministic: canonicalizing the text of a
// canonical document yields the same document.
type Canonicalizer interface {
	Canonicalize(raw string, opts Options) (*Document, error)
}

// Aligner aligns two canonical documents into a complete fragment cover.
type Aligner interface {
	Align(left, right *Document) []Fragment
}

// Marker computes the changed character ranges between two strings.
type Marker interface {
	Mark(left, right string) (leftMarks, rightMarks []Mark)
}

// Tokenizer splits a string into tokens whose concatenation is the string.
type Tokenizer interface {
	Tokenize(s string) []string
}

// FormatDetector infers the format of a source from its name and content.
type FormatDetector interface {
	DetectFormat(name string, content []byte) Format
}

// ContentSource resolves a reference (path, revision) into a Source.
type ContentSource interface {
	Load(ctx context.Context, ref string) (*Source, error)
}

// Theme provides styles for rendering reports.
type Theme interface {
	Styles() Styles
}
