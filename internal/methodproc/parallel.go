// Package methodproc runs per-method analysis across a bounded worker pool.
package methodproc

import (
	"context"
	"runtime"

	"github.com/sourcegraph/conc/pool"

	"github.com/seerlab/haruspex/internal/classfile"
)

// DefaultWorkerMultiplier scales NumCPU into the default pool size. Method
// analysis is CPU-bound, but decoding is cheap enough that a little
// oversubscription keeps the pool fed while results are collected.
const DefaultWorkerMultiplier = 2

// ProgressFunc is called once per completed method.
type ProgressFunc func()

// Map runs fn over every method with at most workers goroutines. Results
// come back in input order; slot i always holds fn(methods[i]). Analysis
// failures are values, not errors, so fn is total.
func Map[T any](methods []*classfile.Method, workers int, fn func(*classfile.Method) T, onProgress ProgressFunc) []T {
	if len(methods) == 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU() * DefaultWorkerMultiplier
	}

	results := make([]T, len(methods))

	p := pool.New().WithMaxGoroutines(workers)
	for i, m := range methods {
		p.Go(func() {
			results[i] = fn(m)
			if onProgress != nil {
				onProgress()
			}
		})
	}
	p.Wait()

	return results
}

// MapWithContext is Map with cancellation. On cancellation it returns the
// results completed so far (unprocessed slots hold zero values) together
// with the context error.
func MapWithContext[T any](ctx context.Context, methods []*classfile.Method, workers int, fn func(*classfile.Method) T, onProgress ProgressFunc) ([]T, error) {
	if len(methods) == 0 {
		return nil, ctx.Err()
	}
	if workers <= 0 {
		workers = runtime.NumCPU() * DefaultWorkerMultiplier
	}

	results := make([]T, len(methods))

	p := pool.New().WithMaxGoroutines(workers).WithContext(ctx)
	for i, m := range methods {
		p.Go(func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			results[i] = fn(m)
			if onProgress != nil {
				onProgress()
			}
			return nil
		})
	}
	err := p.Wait()

	return results, err
}
