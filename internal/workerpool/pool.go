// Package workerpool provides a generic bounded worker pool for running
// a function over a slice of items concurrently.
package workerpool

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Map executes fn for each item using up to workers goroutines and returns
// the results in the order of items, regardless of completion order.
// The first error cancels the context passed to the remaining calls and is
// returned; no partial results are returned with it.
func Map[T, R any](ctx context.Context, items []T, workers int, fn func(ctx context.Context, index int, item T) (R, error)) ([]R, error) {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, nil
	}
	if workers <= 0 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			r, err := fn(gctx, i, item)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
