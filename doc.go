// Package memofib computes Fibonacci numbers with top-down memoization.
//
// The sequence is seeded with fib(0) = fib(1) = 1, so fib(40) = 165580141.
//
// # Quick Start
//
//	t, _ := memofib.NewTable(41)
//	v, _ := memofib.MemoFib(40, t) // 165580141
//
// A Table records which slots are computed. Slots 0 and 1 are always
// computed; every other slot is filled the first time it is needed and
// reused afterwards, so repeated calls against the same table cost a
// single lookup.
//
// # Overflow
//
// fib(91) is the largest value that fits in an int64. The default policy
// fails larger indices with ErrOverflow. OverflowWrap keeps the
// two's-complement wrapped sums instead:
//
//	calc := memofib.New(memofib.WithOverflowPolicy(memofib.OverflowWrap))
//
// # Batches
//
// ComputeAll evaluates many indices concurrently, one table per index,
// bounded by WithMaxWorkers and WithMemoryLimit.
//
// # Snapshots
//
// SaveSnapshot and LoadSnapshot persist a table to any blobstore.Store:
// a local directory, memory, S3 or MinIO. Snapshots are compressed (see
// package codec), checksummed and validated against the recurrence when
// loaded.
//
// # Observability
//
// WithLogger attaches a slog based Logger. WithMetricsCollector receives
// lookup, compute, batch and snapshot events; metrics/prometheus exports
// them.
package memofib
