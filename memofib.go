package memofib

import (
	"context"
	"math"
	"time"

	"github.com/hupe1980/memofib/internal/conv"
	"github.com/hupe1980/memofib/internal/resource"
)

// MaxIndex is the largest index whose Fibonacci value fits in an int64.
const MaxIndex = 91

// maxRecursionDepth bounds how far a single descent recurses below the
// highest computed slot. Larger gaps are filled in strides first.
const maxRecursionDepth = 1 << 14

// Calculator computes memoized Fibonacci numbers with a fixed configuration.
//
// A Calculator holds no memo state of its own; every table is supplied by
// the caller or allocated per call. It is safe for concurrent use as long
// as each goroutine uses its own Table.
type Calculator struct {
	opts options
	rc   *resource.Controller
}

// New creates a Calculator with the given options.
func New(optFns ...Option) *Calculator {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Calculator{
		opts: opts,
		rc: resource.NewController(resource.Config{
			MemoryLimitBytes:   opts.memoryLimitBytes,
			MaxWorkers:         int64(opts.maxWorkers),
			IOLimitBytesPerSec: opts.ioLimitBytesPerSec,
		}),
	}
}

// MemoFib returns Fibonacci(n) with fib(0) = fib(1) = 1, using t as memo cache.
//
// It uses the default configuration: overflow fails with ErrOverflow.
func MemoFib(n int, t *Table) (int64, error) {
	return New().Fib(n, t)
}

// Fib returns Fibonacci(n) using t as memo cache.
//
// Computed slots are returned without recursing. Missing slots are filled
// from n-1 and n-2 and stored in t. n must lie in [0, t.Len()).
func (c *Calculator) Fib(n int, t *Table) (int64, error) {
	if t == nil {
		return 0, ErrNilTable
	}
	if !t.inRange(n) {
		return 0, &IndexOutOfRangeError{Index: n, Capacity: t.Len()}
	}
	return c.run(n, t)
}

func (c *Calculator) run(n int, t *Table) (int64, error) {
	if v, ok := t.Lookup(n); ok {
		c.opts.metricsCollector.RecordLookup(true)
		return v, nil
	}

	if c.opts.overflow == OverflowError && n > MaxIndex {
		return 0, &IntegerOverflowError{Index: n}
	}

	for i := maxRecursionDepth; i < n; i += maxRecursionDepth {
		if _, err := c.fib(i, t); err != nil {
			return 0, err
		}
	}

	return c.fib(n, t)
}

// fib assumes 0 <= n < t.Len(). Slots 0 and 1 are always computed, so
// recursion stops before leaving the table.
func (c *Calculator) fib(n int, t *Table) (int64, error) {
	if v, ok := t.Lookup(n); ok {
		c.opts.metricsCollector.RecordLookup(true)
		return v, nil
	}
	c.opts.metricsCollector.RecordLookup(false)

	a, err := c.fib(n-1, t)
	if err != nil {
		return 0, err
	}
	b, err := c.fib(n-2, t)
	if err != nil {
		return 0, err
	}

	sum, err := c.add(n, a, b)
	if err != nil {
		return 0, err
	}

	t.store(n, sum)
	return sum, nil
}

func (c *Calculator) add(n int, a, b int64) (int64, error) {
	sum := a + b
	if c.opts.overflow == OverflowError && (a^sum)&(b^sum) < 0 {
		return 0, &IntegerOverflowError{Index: n}
	}
	return sum, nil
}

// Result is the outcome of a top-level computation.
type Result struct {
	N     int
	Value int64
	// Table is the memo table used for the computation. It is nil in
	// results returned by ComputeAll.
	Table   *Table
	Elapsed time.Duration
}

// Compute allocates a fresh n+1 slot table and computes Fibonacci(n).
func (c *Calculator) Compute(ctx context.Context, n int) (Result, error) {
	start := time.Now()

	res, err := c.compute(ctx, n)

	res.Elapsed = time.Since(start)
	c.opts.metricsCollector.RecordCompute(n, res.Elapsed, err)
	c.opts.logger.LogCompute(ctx, n, res.Value, res.Elapsed, err)

	return res, err
}

func (c *Calculator) compute(ctx context.Context, n int) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{N: n}, err
	}
	if n < 0 {
		return Result{N: n}, &IndexOutOfRangeError{Index: n, Capacity: 0}
	}
	if c.opts.overflow == OverflowError && n > MaxIndex {
		return Result{N: n}, &IntegerOverflowError{Index: n}
	}

	capacity, err := tableCapacity(n)
	if err != nil {
		return Result{N: n}, err
	}

	t, err := NewTable(capacity)
	if err != nil {
		return Result{N: n}, err
	}

	v, err := c.run(n, t)
	if err != nil {
		return Result{N: n}, err
	}

	return Result{N: n, Value: v, Table: t}, nil
}

// tableCapacity returns the number of slots needed to compute index n.
// Indices whose table would exceed the roaring key range fail with
// ErrInvalidCapacity.
func tableCapacity(n int) (int, error) {
	last, err := conv.IntToUint32(n)
	if err != nil || last == math.MaxUint32 || n == math.MaxInt {
		return 0, ErrInvalidCapacity
	}
	return max(int(last)+1, 2), nil
}

// tableBytes estimates the memory held by a table for index n. It is 0 for
// indices that cannot get a table.
func tableBytes(n int) int64 {
	capacity, err := tableCapacity(n)
	if err != nil {
		return 0
	}
	return int64(capacity) * 8
}
