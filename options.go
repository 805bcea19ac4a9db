package memofib

import (
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/hupe1980/memofib/codec"
)

// OverflowPolicy decides what happens when a Fibonacci value leaves the int64 range.
type OverflowPolicy uint8

const (
	// OverflowError fails the computation with ErrOverflow.
	OverflowError OverflowPolicy = iota
	// OverflowWrap keeps the two's-complement wrapped sum, like unchecked
	// fixed-width integer arithmetic.
	OverflowWrap
)

func (p OverflowPolicy) String() string {
	switch p {
	case OverflowError:
		return "error"
	case OverflowWrap:
		return "wrap"
	default:
		return fmt.Sprintf("policy(%d)", uint8(p))
	}
}

// ParseOverflowPolicy parses "error" or "wrap".
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch strings.ToLower(s) {
	case "error":
		return OverflowError, nil
	case "wrap":
		return OverflowWrap, nil
	default:
		return 0, fmt.Errorf("unknown overflow policy %q", s)
	}
}

type options struct {
	overflow           OverflowPolicy
	logger             *Logger
	metricsCollector   MetricsCollector
	maxWorkers         int
	memoryLimitBytes   int64
	compression        codec.Compression
	ioLimitBytesPerSec int64
	maxSnapshotSlots   int
}

func defaultOptions() options {
	return options{
		overflow:         OverflowError,
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		maxWorkers:       runtime.GOMAXPROCS(0),
		compression:      codec.Default,
		maxSnapshotSlots: DefaultMaxSnapshotSlots,
	}
}

// Option configures a Calculator.
type Option func(*options)

// WithOverflowPolicy selects how int64 overflow is handled.
// The default is OverflowError.
func WithOverflowPolicy(p OverflowPolicy) Option {
	return func(o *options) {
		o.overflow = p
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := memofib.NewJSONLogger(slog.LevelInfo)
//	calc := memofib.New(memofib.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &memofib.BasicMetricsCollector{}
//	calc := memofib.New(memofib.WithMetricsCollector(metrics))
//	// ... use calc ...
//	stats := metrics.GetStats()
//	fmt.Printf("hits: %d, misses: %d\n", stats.Hits, stats.Misses)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithMaxWorkers bounds the number of concurrent computations in ComputeAll.
// Values <= 0 fall back to GOMAXPROCS.
func WithMaxWorkers(n int) Option {
	return func(o *options) {
		if n <= 0 {
			n = runtime.GOMAXPROCS(0)
		}
		o.maxWorkers = n
	}
}

// WithMemoryLimit caps the bytes held by in-flight tables during ComputeAll.
// Indices whose table does not fit fail instead of waiting. 0 disables the limit.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimitBytes = bytes
	}
}

// WithCompression selects the compression for saved snapshots.
func WithCompression(c codec.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithSnapshotIOLimit throttles snapshot writes to the given bytes per second.
// 0 disables throttling.
func WithSnapshotIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimitBytesPerSec = bytesPerSec
	}
}

// WithMaxSnapshotSlots bounds the table capacity LoadSnapshot accepts.
// Larger snapshots fail with ErrCorruptSnapshot before any allocation.
// Values <= 0 fall back to DefaultMaxSnapshotSlots.
func WithMaxSnapshotSlots(n int) Option {
	return func(o *options) {
		if n <= 0 {
			n = DefaultMaxSnapshotSlots
		}
		o.maxSnapshotSlots = n
	}
}
