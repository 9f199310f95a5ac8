package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/getsentry/perfmetrics/internal/timeutil"
)

// WriteSummary writes a human readable overview of the report: session
// duration, allocation counters, both rollup tables with CPU columns and the
// call tree of every thread.
func WriteSummary(w io.Writer, r *Report) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	fmt.Fprintf(tw, "Total Time = %.3f (msec)\n", timeutil.Milliseconds(r.Duration))
	fmt.Fprintf(tw, "Max allocated = %d (bytes)\n", r.Allocations.Peak)
	fmt.Fprintf(tw, "Current allocated (leaked) = %d (bytes)\n", r.Allocations.Current)

	fmt.Fprint(tw, "\nCategory Report\n")
	fmt.Fprint(tw, "Name\tSamples\tTotal\tSelf\tMin\tMax\tAvg\tCPU Total\tCPU Self\tCPU Min\tCPU Max\tCPU Avg\n")
	for _, c := range r.Categories {
		if c.Samples == 0 {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\n", c.Name, summaryColumns(c.Stats))
	}

	fmt.Fprint(tw, "\nID Report\n")
	fmt.Fprint(tw, "Name\tCategory\tSamples\tTotal\tSelf\tMin\tMax\tAvg\tCPU Total\tCPU Self\tCPU Min\tCPU Max\tCPU Avg\n")
	for _, p := range r.Points {
		if p.Samples == 0 {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name, p.Category, summaryColumns(p.Stats))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprint(w, "\nNode Tree Report\n")
	for _, t := range r.Threads {
		fmt.Fprintf(w, "Thread %X (%.3f msec)\n", t.ID, timeutil.Milliseconds(t.Duration))
		t.Walk(func(e *Entry, depth int) {
			fmt.Fprintf(w, "%s%s calls=%d total=%.3f self=%.3f min=%.3f max=%.3f avg=%.3f\n",
				strings.Repeat(xmlIndent, depth),
				e.Name,
				e.Samples,
				timeutil.Milliseconds(e.Total),
				timeutil.Milliseconds(e.Self),
				timeutil.Milliseconds(e.Min),
				timeutil.Milliseconds(e.Max),
				timeutil.Milliseconds(e.Avg),
			)
		})
	}
	return nil
}

func summaryColumns(s Stats) string {
	cols := []string{fmt.Sprint(s.Samples)}
	for _, d := range [...]float64{
		timeutil.Milliseconds(s.Total),
		timeutil.Milliseconds(s.Self),
		timeutil.Milliseconds(s.Min),
		timeutil.Milliseconds(s.Max),
		timeutil.Milliseconds(s.Avg),
		timeutil.Milliseconds(s.TotalCPU),
		timeutil.Milliseconds(s.SelfCPU),
		timeutil.Milliseconds(s.MinCPU),
		timeutil.Milliseconds(s.MaxCPU),
		timeutil.Milliseconds(s.AvgCPU),
	} {
		cols = append(cols, fmt.Sprintf("%.3f", d))
	}
	return strings.Join(cols, "\t")
}
