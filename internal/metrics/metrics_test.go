package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/getsentry/perfmetrics/internal/testutil"
	"github.com/getsentry/perfmetrics/report"
)

func TestTopPoints(t *testing.T) {
	rows := []report.PointRow{
		{Name: "a", Stats: report.Stats{Samples: 1, Total: 5}},
		{Name: "b", Stats: report.Stats{Samples: 0}},
		{Name: "c", Stats: report.Stats{Samples: 3, Total: 9}},
		{Name: "d", Stats: report.Stats{Samples: 2, Total: 5}},
	}
	tests := []struct {
		name string
		n    int
		want []string
	}{
		{name: "all", n: 10, want: []string{"c", "a", "d"}},
		{name: "capped", n: 2, want: []string{"c", "a"}},
		{name: "none", n: 0, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, r := range TopPoints(rows, tt.n) {
				got = append(got, r.Name)
			}
			if diff := testutil.Diff(got, tt.want); diff != "" {
				t.Fatalf("Result mismatch: got - want +\n%s", diff)
			}
		})
	}
}

func TestCollector(t *testing.T) {
	c := NewCollector()
	reg := prometheus.NewRegistry()
	if err := c.Register(reg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c.Entered()
	c.Entered()
	c.Exited()
	c.Rejected("protocol")
	c.Rejected("protocol")
	c.Rejected("usage")
	c.SetThreads(3)
	c.SetAllocated(10, 40)
	c.ObserveReport(&report.Report{Points: []report.PointRow{
		{Name: "load", Category: "io", Stats: report.Stats{Samples: 4, Total: 2 * time.Second}},
	}}, time.Millisecond)

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{name: "entries", got: promtest.ToFloat64(c.entries), want: 2},
		{name: "exits", got: promtest.ToFloat64(c.exits), want: 1},
		{name: "protocol", got: promtest.ToFloat64(c.rejected.WithLabelValues("protocol")), want: 2},
		{name: "usage", got: promtest.ToFloat64(c.rejected.WithLabelValues("usage")), want: 1},
		{name: "threads", got: promtest.ToFloat64(c.threads), want: 3},
		{name: "allocated", got: promtest.ToFloat64(c.allocated), want: 10},
		{name: "peak", got: promtest.ToFloat64(c.allocatedPeak), want: 40},
		{name: "reports", got: promtest.ToFloat64(c.reports), want: 1},
		{name: "point seconds", got: promtest.ToFloat64(c.pointSeconds.WithLabelValues("load", "io")), want: 2},
		{name: "point samples", got: promtest.ToFloat64(c.pointSamples.WithLabelValues("load", "io")), want: 4},
	}
	for _, tt := range checks {
		if tt.got != tt.want {
			t.Fatalf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	c.Reset()
	if got := promtest.ToFloat64(c.threads); got != 0 {
		t.Fatalf("threads after reset: got %v, want 0", got)
	}
	if n := promtest.CollectAndCount(c.pointSeconds); n != 0 {
		t.Fatalf("point gauges after reset: got %d series, want 0", n)
	}
}

func TestRegisterTwiceFails(t *testing.T) {
	c := NewCollector()
	reg := prometheus.NewRegistry()
	if err := c.Register(reg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Register(reg); err == nil {
		t.Fatalf("registering the same collectors twice should fail")
	}
}
