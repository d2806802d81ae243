package comparison

import (
	"context"
	"fmt"

	"github.com/fwojciec/anydiff"
	"golang.org/x/sync/errgroup"
)

// Pair names the two references of one comparison.
type Pair struct {
	Left  string
	Right string
}

// Result is the outcome of comparing one Pair. Exactly one of Diff and Err
// is set.
type Result struct {
	Pair         Pair
	Diff         *anydiff.Diff
	Err          error
	LeftMissing  bool
	RightMissing bool
}

// Batch loads and compares every pair using up to jobs concurrent
// comparisons. Results are in the order of pairs. A failing pair records its
// error and never aborts the others; cancelling ctx fails the pairs not yet
// started with ctx.Err().
func (t *Task) Batch(ctx context.Context, src anydiff.ContentSource, pairs []Pair, cfg Config, jobs int) []Result {
	if jobs < 1 {
		jobs = 1
	}
	results := make([]Result, len(pairs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i := range pairs {
		pair := pairs[i]
		g.Go(func() error {
			result := Result{Pair: pair}
			if err := ctx.Err(); err != nil {
				result.Err = err
			} else {
				t.comparePair(ctx, src, &result, cfg)
			}
			if result.Err != nil {
				t.logger.Warn().Err(result.Err).Str("left", pair.Left).Str("right", pair.Right).Msg("comparison failed")
			}
			results[i] = result
			return nil
		})
	}

	// Workers never return errors; failures are kept per result.
	_ = g.Wait()
	return results
}

func (t *Task) comparePair(ctx context.Context, src anydiff.ContentSource, r *Result, cfg Config) {
	left, err := src.Load(ctx, r.Pair.Left)
	if err != nil {
		r.Err = fmt.Errorf("loading %s: %w", r.Pair.Left, err)
		return
	}
	right, err := src.Load(ctx, r.Pair.Right)
	if err != nil {
		r.Err = fmt.Errorf("loading %s: %w", r.Pair.Right, err)
		return
	}
	r.LeftMissing, r.RightMissing = left.Missing, right.Missing
	r.Diff, r.Err = t.Compare(*left, *right, cfg)
}
