// Package pool runs independent units of work under a fixed concurrency
// bound, collecting per-unit results without letting one failure abort the
// batch.
package pool

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Result pairs one unit's output with its error, in input order.
type Result[R any] struct {
	Value R
	Err   error
}

// Run executes fn for every unit with at most limit running concurrently.
// Results are returned in input order; a unit's failure is captured in its
// Result rather than cancelling its siblings. Context cancellation stops
// scheduling of not-yet-started units, which report ctx.Err().
func Run[U, R any](ctx context.Context, units []U, limit int, fn func(ctx context.Context, u U) (R, error)) []Result[R] {
	if limit <= 0 {
		limit = 1
	}
	results := make([]Result[R], len(units))

	g := &errgroup.Group{}
	g.SetLimit(limit)
	for i, u := range units {
		if err := ctx.Err(); err != nil {
			results[i] = Result[R]{Err: err}
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			v, err := fn(ctx, u)
			results[i] = Result[R]{Value: v, Err: err}
			return nil
		})
	}
	g.Wait()
	return results
}
