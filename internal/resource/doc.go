// Package resource limits the resources memofib spends outside a single
// computation chain.
//
// A Controller governs three things:
//
//   - Memory: bytes held by in-flight memo tables (fail-fast)
//   - Workers: concurrent computations started by a batch
//   - IO: snapshot bytes written per second (token bucket)
//
// Memory example:
//
//	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 20})
//	if err := rc.AcquireMemory(tableBytes); err != nil {
//	    return err // ErrMemoryLimitExceeded
//	}
//	defer rc.ReleaseMemory(tableBytes)
//
// IO example:
//
//	w := resource.NewRateLimitedWriter(ctx, blobWriter, rc)
//
// All methods handle a nil Controller gracefully; they become no-ops.
package resource
