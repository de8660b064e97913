package ben

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// parallelism caps the data-parallel thread pool at hardware concurrency
// (spec.md §5 "propagation algorithms that are CPU-bound ... run in a
// data-parallel thread pool sized to hardware concurrency").
func parallelism() int {
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		return 1
	}
	return n
}

// runChains executes k independent MCMC chains concurrently, each with its
// own RNG seeded from baseSeed+index so results stay reproducible
// regardless of how many goroutines actually ran concurrently. It returns
// one report per chain, or the first error encountered.
func runChains(ctx context.Context, k int, baseSeed int64, run func(ctx context.Context, chainSeed int64) (*PropagationReport, error)) ([]*PropagationReport, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism())

	reports := make([]*PropagationReport, k)
	for i := 0; i < k; i++ {
		i := i
		g.Go(func() error {
			r, err := run(gctx, baseSeed+int64(i))
			if err != nil {
				return err
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// batchApply applies fn to every id in ids using a worker pool sized to
// hardware concurrency, used for the independent-node-batch phase of
// belief propagation within a single topological layer.
func batchApply(ctx context.Context, ids []string, fn func(id string) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism())

	for _, id := range ids {
		id := id
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
				return fn(id)
			}
		})
	}
	return g.Wait()
}
