package memofib

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; see
// the metrics/prometheus package for a Prometheus implementation.
//
// Implementations must be safe for concurrent use when shared between
// the goroutines of ComputeAll.
type MetricsCollector interface {
	// RecordLookup is called once per memo lookup. hit reports whether the
	// slot was already computed.
	RecordLookup(hit bool)

	// RecordCompute is called after each top-level computation.
	RecordCompute(n int, duration time.Duration, err error)

	// RecordBatch is called after each ComputeAll.
	// count is the number of indices requested, failed the number that failed.
	RecordBatch(count, failed int, duration time.Duration)

	// RecordSnapshot is called after each snapshot save or load.
	RecordSnapshot(op string, size int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordLookup(bool)                                {}
func (NoopMetricsCollector) RecordCompute(int, time.Duration, error)          {}
func (NoopMetricsCollector) RecordBatch(int, int, time.Duration)              {}
func (NoopMetricsCollector) RecordSnapshot(string, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for tests and debugging without external dependencies.
type BasicMetricsCollector struct {
	Hits              atomic.Int64
	Misses            atomic.Int64
	ComputeCount      atomic.Int64
	ComputeErrors     atomic.Int64
	ComputeTotalNanos atomic.Int64
	BatchCount        atomic.Int64
	BatchItems        atomic.Int64
	BatchFailed       atomic.Int64
	SnapshotCount     atomic.Int64
	SnapshotErrors    atomic.Int64
	SnapshotBytes     atomic.Int64
}

// RecordLookup implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLookup(hit bool) {
	if hit {
		b.Hits.Add(1)
	} else {
		b.Misses.Add(1)
	}
}

// RecordCompute implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCompute(_ int, duration time.Duration, err error) {
	b.ComputeCount.Add(1)
	b.ComputeTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ComputeErrors.Add(1)
	}
}

// RecordBatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatch(count, failed int, _ time.Duration) {
	b.BatchCount.Add(1)
	b.BatchItems.Add(int64(count))
	b.BatchFailed.Add(int64(failed))
}

// RecordSnapshot implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshot(_ string, size int, _ time.Duration, err error) {
	b.SnapshotCount.Add(1)
	if err != nil {
		b.SnapshotErrors.Add(1)
		return
	}
	b.SnapshotBytes.Add(int64(size))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		Lookups:         b.Hits.Load() + b.Misses.Load(),
		Hits:            b.Hits.Load(),
		Misses:          b.Misses.Load(),
		ComputeCount:    b.ComputeCount.Load(),
		ComputeErrors:   b.ComputeErrors.Load(),
		ComputeAvgNanos: b.avgComputeNanos(),
		BatchCount:      b.BatchCount.Load(),
		BatchItems:      b.BatchItems.Load(),
		BatchFailed:     b.BatchFailed.Load(),
		SnapshotCount:   b.SnapshotCount.Load(),
		SnapshotErrors:  b.SnapshotErrors.Load(),
		SnapshotBytes:   b.SnapshotBytes.Load(),
	}
}

func (b *BasicMetricsCollector) avgComputeNanos() int64 {
	count := b.ComputeCount.Load()
	if count == 0 {
		return 0
	}
	return b.ComputeTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	Lookups         int64
	Hits            int64
	Misses          int64
	ComputeCount    int64
	ComputeErrors   int64
	ComputeAvgNanos int64
	BatchCount      int64
	BatchItems      int64
	BatchFailed     int64
	SnapshotCount   int64
	SnapshotErrors  int64
	SnapshotBytes   int64
}
