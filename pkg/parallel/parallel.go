// Package parallel provides the concurrent-map idiom used across the
// resolution pipeline: run one transform over a list concurrently and
// collect results in input order.
package parallel

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Map applies fn to every item concurrently, at most limit at a time
// (0 means unbounded). The first error cancels the remaining work and is
// returned; on success results are in input order.
func Map[T, R any](ctx context.Context, items []T, limit int, fn func(context.Context, T) (R, error)) ([]R, error) {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	results := make([]R, len(items))
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
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
	return results, nil
}

// MapCollect applies fn to every item concurrently and keeps only the
// successful results, in input order. Individual failures are absorbed;
// a batch never fails as a whole.
func MapCollect[T, R any](ctx context.Context, items []T, limit int, fn func(context.Context, T) (R, bool)) []R {
	type slot struct {
		value R
		ok    bool
	}

	slots := make([]slot, len(items))

	var wg sync.WaitGroup
	sem := make(chan struct{}, max(limit, 1))
	unbounded := limit <= 0

	for i, item := range items {
		i, item := i, item
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !unbounded {
				sem <- struct{}{}
				defer func() { <-sem }()
			}
			if v, ok := fn(ctx, item); ok {
				slots[i] = slot{value: v, ok: true}
			}
		}()
	}
	wg.Wait()

	out := make([]R, 0, len(items))
	for _, s := range slots {
		if s.ok {
			out = append(out, s.value)
		}
	}
	return out
}
