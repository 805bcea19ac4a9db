// Package prometheus exports memofib metrics to Prometheus.
//
// Long-running processes register the collector's metrics and serve them;
// one-shot runs such as cmd/memofib push them to a Pushgateway instead:
//
//	pc := prometheus.New(nil)
//	calc := memofib.New(memofib.WithMetricsCollector(pc))
//	// ... compute ...
//	err := pc.Push(ctx, "http://pushgateway:9091", "memofib")
package prometheus

import (
	"context"
	"time"

	"github.com/hupe1980/memofib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "memofib"

// Collector implements memofib.MetricsCollector on top of Prometheus metrics.
type Collector struct {
	reg *prometheus.Registry

	lookups       *prometheus.CounterVec
	computeTime   *prometheus.HistogramVec
	batches       prometheus.Counter
	batchItems    *prometheus.CounterVec
	snapshotTime  *prometheus.HistogramVec
	snapshotBytes *prometheus.CounterVec
}

var _ memofib.MetricsCollector = (*Collector)(nil)

// New creates a Collector and registers its metrics with reg.
// If reg is nil, a fresh registry is used.
func New(reg *prometheus.Registry) *Collector {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	c := &Collector{
		reg: reg,
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Memo table lookups by result",
		}, []string{"result"}),
		computeTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "compute_duration_seconds",
			Help:      "Latency of top-level computations",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}, []string{"status"}),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Total batch evaluations",
		}),
		batchItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_items_total",
			Help:      "Indices processed by batch evaluations",
		}, []string{"status"}),
		snapshotTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_duration_seconds",
			Help:      "Latency of snapshot saves and loads",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "status"}),
		snapshotBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_bytes_total",
			Help:      "Encoded snapshot bytes moved",
		}, []string{"op"}),
	}

	reg.MustRegister(
		c.lookups,
		c.computeTime,
		c.batches,
		c.batchItems,
		c.snapshotTime,
		c.snapshotBytes,
	)

	return c
}

// Registry returns the registry holding the collector's metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.reg
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordLookup implements memofib.MetricsCollector.
func (c *Collector) RecordLookup(hit bool) {
	if hit {
		c.lookups.WithLabelValues("hit").Inc()
	} else {
		c.lookups.WithLabelValues("miss").Inc()
	}
}

// RecordCompute implements memofib.MetricsCollector.
func (c *Collector) RecordCompute(_ int, duration time.Duration, err error) {
	c.computeTime.WithLabelValues(status(err)).Observe(duration.Seconds())
}

// RecordBatch implements memofib.MetricsCollector.
func (c *Collector) RecordBatch(count, failed int, _ time.Duration) {
	c.batches.Inc()
	c.batchItems.WithLabelValues("ok").Add(float64(count - failed))
	c.batchItems.WithLabelValues("failed").Add(float64(failed))
}

// RecordSnapshot implements memofib.MetricsCollector.
func (c *Collector) RecordSnapshot(op string, size int, duration time.Duration, err error) {
	c.snapshotTime.WithLabelValues(op, status(err)).Observe(duration.Seconds())
	if err == nil {
		c.snapshotBytes.WithLabelValues(op).Add(float64(size))
	}
}

// Push sends all collected metrics to a Pushgateway under job,
// replacing earlier pushes for the same job.
func (c *Collector) Push(ctx context.Context, url, job string) error {
	return push.New(url, job).Gatherer(c.reg).PushContext(ctx)
}
