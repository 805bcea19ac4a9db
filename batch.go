package memofib

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// ComputeAll computes Fibonacci(n) for every index in ns concurrently.
//
// Each index gets its own freshly allocated table; no memo state is shared
// between goroutines. At most WithMaxWorkers computations run at once and,
// if WithMemoryLimit is set, an index whose table does not fit in the
// remaining budget fails immediately.
//
// Results are returned in input order with Table set to nil. The first
// error cancels the remaining work and is returned.
func (c *Calculator) ComputeAll(ctx context.Context, ns []int) ([]Result, error) {
	start := time.Now()
	results := make([]Result, len(ns))
	failed := make([]bool, len(ns))

	g, gctx := errgroup.WithContext(ctx)

	for i, n := range ns {
		if err := c.rc.AcquireWorker(gctx); err != nil {
			break
		}

		g.Go(func() error {
			defer c.rc.ReleaseWorker()

			bytes := tableBytes(n)
			if err := c.rc.AcquireMemory(bytes); err != nil {
				failed[i] = true
				return fmt.Errorf("fib(%d): %w", n, err)
			}
			defer c.rc.ReleaseMemory(bytes)

			res, err := c.Compute(gctx, n)
			if err != nil {
				failed[i] = true
				return fmt.Errorf("fib(%d): %w", n, err)
			}

			res.Table = nil
			results[i] = res
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		// Worker acquisition only fails when the context is done.
		err = ctx.Err()
	}

	nFailed := 0
	for _, f := range failed {
		if f {
			nFailed++
		}
	}
	elapsed := time.Since(start)
	c.opts.metricsCollector.RecordBatch(len(ns), nFailed, elapsed)
	c.opts.logger.LogBatch(ctx, len(ns), nFailed, elapsed)

	if err != nil {
		return nil, err
	}
	return results, nil
}
