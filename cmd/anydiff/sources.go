package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/anydiff"
	"github.com/fwojciec/anydiff/comparison"
)

// GitPrefix marks operands read from the repository: git:REV:PATH.
const GitPrefix = "git:"

// Compile-time interface verification.
var _ anydiff.ContentSource = (*sourceMux)(nil)

// sourceMux loads git: operands from the repository and everything else
// from disk. A format other than FormatAuto overrides detection.
type sourceMux struct {
	files  anydiff.ContentSource
	git    anydiff.ContentSource
	format anydiff.Format
}

func (m *sourceMux) Load(ctx context.Context, ref string) (*anydiff.Source, error) {
	var src *anydiff.Source
	var err error
	if rest, ok := strings.CutPrefix(ref, GitPrefix); ok {
		src, err = m.git.Load(ctx, rest)
	} else {
		src, err = m.files.Load(ctx, ref)
	}
	if err != nil {
		return nil, err
	}
	if m.format != anydiff.FormatAuto {
		src.Format = m.format
	}
	return src, nil
}

// readPairs reads one "LEFT RIGHT" pair per line. Blank lines and lines
// starting with # are skipped.
func readPairs(r io.Reader) ([]comparison.Pair, error) {
	var pairs []comparison.Pair
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("pairs line %d: want two operands, got %d", lineNum, len(fields))
		}
		pairs = append(pairs, comparison.Pair{Left: fields[0], Right: fields[1]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading pairs: %w", err)
	}
	return pairs, nil
}
