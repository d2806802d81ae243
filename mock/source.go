package mock

import (
	"context"

	"github.com/fwojciec/anydiff"
)

// Compile-time interface verification.
var _ anydiff.ContentSource = (*ContentSource)(nil)

// ContentSource is a mock implementation of anydiff.ContentSource.
type ContentSource struct {
	LoadFn func(ctx context.Context, ref string) (*anydiff.Source, error)
}

func (s *ContentSource) Load(ctx context.Context, ref string) (*anydiff.Source, error) {
	return s.LoadFn(ctx, ref)
}
