package chroma

import (
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/fwojciec/anydiff"
)

// Compile-time interface verification.
var _ anydiff.FormatDetector = (*Detector)(nil)

// Detector detects languages and formats from file names using chroma's
// lexer registry.
type Detector struct{}

// NewDetector creates a new chroma-based detector.
func NewDetector() *Detector {
	return &Detector{}
}

// DetectFromPath returns the language name for the given path,
// or an empty string if the language cannot be determined.
// Strips "a/" or "b/" prefixes common in diff output.
func (d *Detector) DetectFromPath(path string) string {
	path = strings.TrimPrefix(path, "a/")
	path = strings.TrimPrefix(path, "b/")

	lexer := lexers.Match(filepath.Base(path))
	if lexer == nil {
		return ""
	}
	return lexer.Config().Name
}

// FormatFromName maps the language chroma associates with name to a format.
// Recognized languages other than HTML and XML compare as plain text.
func (d *Detector) FormatFromName(name string) (anydiff.Format, bool) {
	if f, ok := anydiff.FormatFromExtension(name); ok {
		return f, true
	}
	lang := d.DetectFromPath(name)
	if lang == "" {
		return anydiff.FormatAuto, false
	}
	return formatForLanguage(lang), true
}

// DetectFormat tries the name, then chroma's content analysers, then the
// built-in content sniffing.
func (d *Detector) DetectFormat(name string, content []byte) anydiff.Format {
	if f, ok := d.FormatFromName(name); ok {
		return f
	}
	if lexer := lexers.Analyse(string(content)); lexer != nil {
		if f := formatForLanguage(lexer.Config().Name); f != anydiff.FormatPlain {
			return f
		}
	}
	return anydiff.SniffFormat(content)
}

func formatForLanguage(lang string) anydiff.Format {
	switch lang {
	case "HTML":
		return anydiff.FormatHTML
	case "XML":
		return anydiff.FormatXML
	}
	return anydiff.FormatPlain
}

// Language returns the chroma lexer name used for syntax tokens of format f.
func Language(f anydiff.Format) string {
	switch f {
	case anydiff.FormatHTML:
		return "HTML"
	case anydiff.FormatXML:
		return "XML"
	case anydiff.FormatManifest:
		return "properties"
	}
	return "plaintext"
}
