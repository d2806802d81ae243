// Package git loads file content at a revision via shell commands.
package git

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/fwojciec/anydiff"
)

// Compile-time interface verification.
var _ anydiff.ContentSource = (*Source)(nil)

// ErrPathNotFound reports a path that does not exist at the requested revision.
var ErrPathNotFound = errors.New("path not found at revision")

// Runner executes git commands via shell.
type Runner struct{}

// NewRunner creates a new git runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Show returns the content of path at rev in the repository at repoPath.
func (r *Runner) Show(ctx context.Context, repoPath, rev, path string) (string, error) {
	args := []string{"-C", repoPath, "show", rev + ":" + path}
	cmd := exec.CommandContext(ctx, "git", args...)
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr := string(exitErr.Stderr)
			if strings.Contains(stderr, "does not exist in") || strings.Contains(stderr, "exists on disk, but not in") {
				return "", fmt.Errorf("%s:%s: %w", rev, path, ErrPathNotFound)
			}
			return "", fmt.Errorf("git show failed: %s", strings.TrimSpace(stderr))
		}
		return "", fmt.Errorf("git show failed: %w", err)
	}
	return string(output), nil
}

// Source loads references of the form rev:path from one repository. A path
// absent at its revision loads as a missing side.
type Source struct {
	runner   *Runner
	repoPath string
	detector anydiff.FormatDetector
}

// NewSource creates a Source reading the repository at repoPath. Formats are
// detected with d, or from the path and content if d is nil.
func NewSource(repoPath string, d anydiff.FormatDetector) *Source {
	if d == nil {
		d = anydiff.DetectorFunc(anydiff.DetectFormat)
	}
	return &Source{runner: NewRunner(), repoPath: repoPath, detector: d}
}

// Load implements anydiff.ContentSource.
func (s *Source) Load(ctx context.Context, ref string) (*anydiff.Source, error) {
	rev, path, ok := strings.Cut(ref, ":")
	if !ok || rev == "" || path == "" {
		return nil, fmt.Errorf("invalid git reference %q: want rev:path", ref)
	}
	content, err := s.runner.Show(ctx, s.repoPath, rev, path)
	if errors.Is(err, ErrPathNotFound) {
		return &anydiff.Source{Name: path, Missing: true}, nil
	}
	if err != nil {
		return nil, err
	}
	return &anydiff.Source{
		Name:    path,
		Content: content,
		Format:  s.detector.DetectFormat(path, []byte(content)),
	}, nil
}
