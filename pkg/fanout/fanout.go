// Package fanout runs independent calls concurrently and joins their results.
package fanout

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Map calls fn for every item with at most limit calls in flight (limit <= 0
// means unbounded) and returns the results in input order.
//
// The first error wins. Items not yet started when it occurs are skipped;
// calls already in flight run to completion with the caller's ctx and their
// results are discarded.
func Map[T, R any](ctx context.Context, limit int, items []T, fn func(context.Context, T) (R, error)) ([]R, error) {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, nil
	}

	g, failed := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, item := range items {
		g.Go(func() error {
			if failed.Err() != nil {
				return nil
			}
			r, err := fn(ctx, item)
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
	// The parent may have been canceled while calls were skipped.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Flatten concatenates groups in order.
func Flatten[T any](groups [][]T) []T {
	n := 0
	for _, g := range groups {
		n += len(g)
	}
	out := make([]T, 0, n)
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
