package anydiff

import (
	"mime"
	"path"
	"strings"
)

// Compile-time interface verification.
var _ FormatDetector = DetectorFunc(nil)

// DetectorFunc adapts a function to FormatDetector.
type DetectorFunc func(name string, content []byte) Format

// DetectFormat calls f.
func (f DetectorFunc) DetectFormat(name string, content []byte) Format {
	return f(name, content)
}

var extensionFormats = map[string]Format{
	".txt":      FormatPlain,
	".html":     FormatHTML,
	".htm":      FormatHTML,
	".xhtml":    FormatHTML,
	".xml":      FormatXML,
	".xsd":      FormatXML,
	".xsl":      FormatXML,
	".svg":      FormatXML,
	".pom":      FormatXML,
	".mf":       FormatManifest,
	".manifest": FormatManifest,
}

// FormatFromExtension maps a file name to a format by extension. A file named
// MANIFEST.MF is a manifest whatever its directory.
func FormatFromExtension(name string) (Format, bool) {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if strings.EqualFold(base, "MANIFEST.MF") {
		return FormatManifest, true
	}
	f, ok := extensionFormats[strings.ToLower(path.Ext(base))]
	return f, ok
}

// FormatFromMIME maps a media type, with or without parameters, to a format.
func FormatFromMIME(mediaType string) (Format, bool) {
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(mediaType))
	}
	switch {
	case mt == "text/html" || mt == "application/xhtml+xml":
		return FormatHTML, true
	case mt == "text/xml" || mt == "application/xml" || strings.HasSuffix(mt, "+xml"):
		return FormatXML, true
	case mt == "text/plain":
		return FormatPlain, true
	}
	return FormatAuto, false
}

// SniffFormat guesses a format from the leading content.
func SniffFormat(content []byte) Format {
	head := strings.TrimLeft(string(content[:min(len(content), 512)]), "\ufeff \t\r\n")
	lower := strings.ToLower(head)
	switch {
	case strings.HasPrefix(lower, "<!doctype html"), strings.HasPrefix(lower, "<html"):
		return FormatHTML
	case strings.HasPrefix(lower, "<?xml"), strings.HasPrefix(head, "<") && strings.HasSuffix(strings.TrimSpace(string(content)), ">"):
		return FormatXML
	case strings.HasPrefix(head, "Manifest-Version:"):
		return FormatManifest
	}
	return FormatPlain
}

// DetectFormat picks a format from the name's extension, falling back to the
// content.
func DetectFormat(name string, content []byte) Format {
	if f, ok := FormatFromExtension(name); ok {
		return f
	}
	return SniffFormat(content)
}
