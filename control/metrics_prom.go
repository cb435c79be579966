// control/metrics_prom.go
// Author: momentics <momentics@gmail.com>
//
// Prometheus exposition for scheduler Stats, wrapping MetricsRegistry's
// generic key/value snapshots in typed collectors an external /metrics
// endpoint can serve.

package control

import "github.com/prometheus/client_golang/prometheus"

// StatsSource is the subset of sched.Scheduler's read surface this
// collector needs, kept minimal so control does not import sched (sched
// already imports control's DebugProbes the other way).
type StatsSource interface {
	TotalCreated() int64
	TotalCompleted() int64
	TotalCancelled() int64
	ActiveJobs() int64
	WorkerCount() int
}

// PromCollector adapts a StatsSource to prometheus.Collector, reporting the
// same counters MetricsRegistry tracks generically (spec §6 "Stats:
// per-pool and per-worker counters as a readable structure").
type PromCollector struct {
	src StatsSource

	created   *prometheus.Desc
	completed *prometheus.Desc
	cancelled *prometheus.Desc
	active    *prometheus.Desc
	workers   *prometheus.Desc
}

// NewPromCollector builds a collector reading live values from src on every
// scrape rather than caching them, matching Prometheus's pull model.
func NewPromCollector(src StatsSource) *PromCollector {
	return &PromCollector{
		src:       src,
		created:   prometheus.NewDesc("wsched_jobs_created_total", "Total jobs ever scheduled.", nil, nil),
		completed: prometheus.NewDesc("wsched_jobs_completed_total", "Total jobs that ran to completion.", nil, nil),
		cancelled: prometheus.NewDesc("wsched_jobs_cancelled_total", "Total jobs cancelled before running.", nil, nil),
		active:    prometheus.NewDesc("wsched_jobs_active", "Jobs currently created but not yet completed or cancelled.", nil, nil),
		workers:   prometheus.NewDesc("wsched_workers", "Number of worker goroutines in the pool.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *PromCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.created
	ch <- c.completed
	ch <- c.cancelled
	ch <- c.active
	ch <- c.workers
}

// Collect implements prometheus.Collector.
func (c *PromCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.created, prometheus.CounterValue, float64(c.src.TotalCreated()))
	ch <- prometheus.MustNewConstMetric(c.completed, prometheus.CounterValue, float64(c.src.TotalCompleted()))
	ch <- prometheus.MustNewConstMetric(c.cancelled, prometheus.CounterValue, float64(c.src.TotalCancelled()))
	ch <- prometheus.MustNewConstMetric(c.active, prometheus.GaugeValue, float64(c.src.ActiveJobs()))
	ch <- prometheus.MustNewConstMetric(c.workers, prometheus.GaugeValue, float64(c.src.WorkerCount()))
}

// NewRegistry builds a fresh prometheus.Registry with src's collector
// already registered, for the demo CLI's /metrics handler.
func NewRegistry(src StatsSource) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(NewPromCollector(src))
	return reg
}
