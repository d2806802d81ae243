// Package fs loads comparison inputs from the local file system.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fwojciec/anydiff"
	"github.com/fwojciec/anydiff/chroma"
	"github.com/gabriel-vasile/mimetype"
)

// Compile-time interface verification.
var (
	_ anydiff.ContentSource  = (*Loader)(nil)
	_ anydiff.FormatDetector = (*Detector)(nil)
)

// DefaultConfigPath returns the default location of the anydiff config file.
// Uses XDG_CONFIG_HOME if set, otherwise falls back to ~/.config/anydiff,
// or the system temp directory if home is unavailable.
func DefaultConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "anydiff", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), "anydiff", "config.yaml")
	}
	return filepath.Join(home, ".config", "anydiff", "config.yaml")
}

// Loader reads files. A file that does not exist loads as a missing side.
type Loader struct {
	detector anydiff.FormatDetector
}

// NewLoader creates a loader that detects formats with d, or with a Detector
// if d is nil.
func NewLoader(d anydiff.FormatDetector) *Loader {
	if d == nil {
		d = NewDetector()
	}
	return &Loader{detector: d}
}

// Load reads the file at path.
func (l *Loader) Load(ctx context.Context, path string) (*anydiff.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &anydiff.Source{Name: path, Missing: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return &anydiff.Source{
		Name:    path,
		Content: string(data),
		Format:  l.detector.DetectFormat(path, data),
	}, nil
}

// Detector picks a format from the file name, then from the MIME type
// sniffed from the content.
type Detector struct {
	names *chroma.Detector
}

// NewDetector creates a Detector.
func NewDetector() *Detector {
	return &Detector{names: chroma.NewDetector()}
}

// DetectFormat implements anydiff.FormatDetector. Names chroma knows as
// markup count; other recognized languages still go through sniffing.
// Content with no markup or manifest signature is plain.
func (d *Detector) DetectFormat(name string, content []byte) anydiff.Format {
	if f, ok := anydiff.FormatFromExtension(name); ok {
		return f
	}
	if f, ok := d.names.FormatFromName(name); ok && f.Markup() {
		return f
	}
	if anydiff.SniffFormat(content) == anydiff.FormatManifest {
		return anydiff.FormatManifest
	}
	for mt := mimetype.Detect(content); mt != nil; mt = mt.Parent() {
		if f, ok := anydiff.FormatFromMIME(mt.String()); ok {
			return f
		}
	}
	return anydiff.FormatPlain
}
