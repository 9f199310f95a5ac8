// Package metrics exposes the profiler's own activity as Prometheus metrics.
package metrics

import (
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/getsentry/perfmetrics/report"
)

const namespace = "perfmetrics"

// DefaultMaxPoints bounds the label cardinality of the per-point gauges.
const DefaultMaxPoints = 50

type Collector struct {
	MaxPoints int

	entries        prometheus.Counter
	exits          prometheus.Counter
	rejected       *prometheus.CounterVec
	threads        prometheus.Gauge
	points         prometheus.Gauge
	allocated      prometheus.Gauge
	allocatedPeak  prometheus.Gauge
	reports        prometheus.Counter
	reportDuration prometheus.Histogram
	pointSeconds   *prometheus.GaugeVec
	pointSamples   *prometheus.GaugeVec
}

func NewCollector() *Collector {
	return &Collector{
		MaxPoints: DefaultMaxPoints,
		entries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_total",
			Help:      "Number of accepted region entries.",
		}),
		exits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exits_total",
			Help:      "Number of accepted region exits.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_calls_total",
			Help:      "Number of rejected calls by error kind.",
		}, []string{"kind"}),
		threads: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "threads",
			Help:      "Number of goroutines observed in the current session.",
		}),
		points: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "points",
			Help:      "Number of registered instrumentation points.",
		}),
		allocated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "allocated_bytes",
			Help:      "Bytes held by live tracked allocations.",
		}),
		allocatedPeak: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "allocated_peak_bytes",
			Help:      "Highest number of bytes held by tracked allocations.",
		}),
		reports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_total",
			Help:      "Number of reports built.",
		}),
		reportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_duration_seconds",
			Help:      "Time spent building a report.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		pointSeconds: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "point_total_seconds",
			Help:      "Total wall time of the heaviest points in the last report.",
		}, []string{"name", "category"}),
		pointSamples: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "point_samples",
			Help:      "Completed calls of the heaviest points in the last report.",
		}, []string{"name", "category"}),
	}
}

// Register adds every collector to r.
func (c *Collector) Register(r prometheus.Registerer) error {
	for _, m := range []prometheus.Collector{
		c.entries,
		c.exits,
		c.rejected,
		c.threads,
		c.points,
		c.allocated,
		c.allocatedPeak,
		c.reports,
		c.reportDuration,
		c.pointSeconds,
		c.pointSamples,
	} {
		if err := r.Register(m); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collector) Entered() {
	c.entries.Inc()
}

func (c *Collector) Exited() {
	c.exits.Inc()
}

func (c *Collector) Rejected(kind string) {
	c.rejected.WithLabelValues(kind).Inc()
}

func (c *Collector) SetThreads(n int) {
	c.threads.Set(float64(n))
}

func (c *Collector) SetPoints(n int) {
	c.points.Set(float64(n))
}

func (c *Collector) SetAllocated(current, peak int64) {
	c.allocated.Set(float64(current))
	c.allocatedPeak.Set(float64(peak))
}

// ObserveReport records a built report and replaces the per-point gauges with
// its heaviest points.
func (c *Collector) ObserveReport(r *report.Report, took time.Duration) {
	c.reports.Inc()
	c.reportDuration.Observe(took.Seconds())

	c.pointSeconds.Reset()
	c.pointSamples.Reset()
	for _, p := range TopPoints(r.Points, c.MaxPoints) {
		c.pointSeconds.WithLabelValues(p.Name, p.Category).Set(p.Total.Seconds())
		c.pointSamples.WithLabelValues(p.Name, p.Category).Set(float64(p.Samples))
	}
}

// Reset zeroes the session gauges.
func (c *Collector) Reset() {
	c.threads.Set(0)
	c.points.Set(0)
	c.allocated.Set(0)
	c.allocatedPeak.Set(0)
	c.pointSeconds.Reset()
	c.pointSamples.Reset()
}

// TopPoints returns at most n rows with samples, by descending total time.
func TopPoints(rows []report.PointRow, n int) []report.PointRow {
	top := make([]report.PointRow, 0, len(rows))
	for _, r := range rows {
		if r.Samples > 0 {
			top = append(top, r)
		}
	}
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Total > top[j].Total
	})
	if n >= 0 && len(top) > n {
		top = top[:n]
	}
	return top
}
