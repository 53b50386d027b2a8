package app

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Parallel2 runs two lookups concurrently. The first error cancels the
// other and is returned.
func Parallel2[T1, T2 any](
	ctx context.Context,
	fn1 func(context.Context) (T1, error),
	fn2 func(context.Context) (T2, error),
) (T1, T2, error) {
	var (
		r1 T1
		r2 T2
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { r1, err = fn1(ctx); return err })
	g.Go(func() (err error) { r2, err = fn2(ctx); return err })

	if err := g.Wait(); err != nil {
		var (
			zero1 T1
			zero2 T2
		)

		return zero1, zero2, fmt.Errorf("parallel execution failed: %w", err)
	}

	return r1, r2, nil
}

// Parallel3 runs three lookups concurrently. The first error cancels the
// others and is returned.
func Parallel3[T1, T2, T3 any](
	ctx context.Context,
	fn1 func(context.Context) (T1, error),
	fn2 func(context.Context) (T2, error),
	fn3 func(context.Context) (T3, error),
) (T1, T2, T3, error) {
	var (
		r1 T1
		r2 T2
		r3 T3
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { r1, err = fn1(ctx); return err })
	g.Go(func() (err error) { r2, err = fn2(ctx); return err })
	g.Go(func() (err error) { r3, err = fn3(ctx); return err })

	if err := g.Wait(); err != nil {
		var (
			zero1 T1
			zero2 T2
			zero3 T3
		)

		return zero1, zero2, zero3, fmt.Errorf("parallel execution failed: %w", err)
	}

	return r1, r2, r3, nil
}

// PartialResult holds a value or the error that prevented it.
type PartialResult[T any] struct {
	Value T
	Err   error
}

// LookupEach calls fn once per distinct key with at most limit calls in
// flight. A failing key does not stop the others; every key gets an entry.
func LookupEach[K comparable, V any](
	ctx context.Context,
	limit int,
	keys []K,
	fn func(context.Context, K) (V, error),
) map[K]PartialResult[V] {
	results := make(map[K]PartialResult[V], len(keys))

	var (
		g  errgroup.Group
		mu sync.Mutex
	)

	if limit > 0 {
		g.SetLimit(limit)
	}

	for _, key := range keys {
		mu.Lock()
		_, seen := results[key]
		if !seen {
			results[key] = PartialResult[V]{}
		}
		mu.Unlock()

		if seen {
			continue
		}

		g.Go(func() error {
			v, err := fn(ctx, key)

			mu.Lock()
			results[key] = PartialResult[V]{Value: v, Err: err}
			mu.Unlock()

			return nil
		})
	}

	_ = g.Wait()

	return results
}
