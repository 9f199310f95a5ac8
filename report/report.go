// Package report holds the result of a profiling session and the writers
// that render it as text tables, an XML tree, a summary, speedscope and JSON.
package report

import (
	"time"
)

type (
	// Stats are the timing statistics of a rollup row or tree entry. Only
	// completed calls are counted.
	Stats struct {
		Samples  uint32        `json:"samples"`
		Total    time.Duration `json:"total_ns"`
		Self     time.Duration `json:"self_ns"`
		Min      time.Duration `json:"min_ns"`
		Max      time.Duration `json:"max_ns"`
		Avg      time.Duration `json:"avg_ns"`
		TotalCPU time.Duration `json:"total_cpu_ns"`
		SelfCPU  time.Duration `json:"self_cpu_ns"`
		MinCPU   time.Duration `json:"min_cpu_ns"`
		MaxCPU   time.Duration `json:"max_cpu_ns"`
		AvgCPU   time.Duration `json:"avg_cpu_ns"`
	}

	CategoryRow struct {
		ID   uint32 `json:"id"`
		Name string `json:"name"`
		Stats
	}

	PointRow struct {
		ID         uint32 `json:"id"`
		Name       string `json:"name"`
		Category   string `json:"category"`
		CategoryID uint32 `json:"category_id"`
		Stats
	}

	Entry struct {
		ID       uint32        `json:"id"`
		Name     string        `json:"name"`
		Category string        `json:"category"`
		Start    time.Duration `json:"start_ns"`
		LastExit time.Duration `json:"last_exit_ns"`
		Stats
		Children []*Entry `json:"children,omitempty"`
	}

	// Thread is the call tree observed on one goroutine. Start is relative to
	// the session clock origin.
	Thread struct {
		ID       uint64        `json:"id"`
		Start    time.Duration `json:"start_ns"`
		Duration time.Duration `json:"duration_ns"`
		Entries  []*Entry      `json:"entries"`
	}

	Allocations struct {
		Current int64 `json:"current_bytes"`
		Peak    int64 `json:"peak_bytes"`
		Live    int   `json:"live"`
	}

	Report struct {
		SessionID   string        `json:"session_id"`
		StartedAt   time.Time     `json:"started_at"`
		EndedAt     time.Time     `json:"ended_at"`
		Duration    time.Duration `json:"duration_ns"`
		Categories  []CategoryRow `json:"categories"`
		Points      []PointRow    `json:"points"`
		Threads     []Thread      `json:"threads"`
		Allocations Allocations   `json:"allocations"`
	}
)

// Merge folds o into s. Averages are left untouched until Finalize.
func (s *Stats) Merge(o Stats) {
	if o.Samples == 0 {
		return
	}
	if s.Samples == 0 {
		s.Min, s.Max = o.Min, o.Max
		s.MinCPU, s.MaxCPU = o.MinCPU, o.MaxCPU
	} else {
		s.Min = min(s.Min, o.Min)
		s.Max = max(s.Max, o.Max)
		s.MinCPU = min(s.MinCPU, o.MinCPU)
		s.MaxCPU = max(s.MaxCPU, o.MaxCPU)
	}
	s.Samples += o.Samples
	s.Total += o.Total
	s.Self += o.Self
	s.TotalCPU += o.TotalCPU
	s.SelfCPU += o.SelfCPU
}

// Finalize computes the averages.
func (s *Stats) Finalize() {
	if s.Samples == 0 {
		s.Avg, s.AvgCPU = 0, 0
		return
	}
	s.Avg = s.Total / time.Duration(s.Samples)
	s.AvgCPU = s.TotalCPU / time.Duration(s.Samples)
}

// Walk visits every entry of the thread in depth-first pre-order, depth
// starting at 1 for top-level entries.
func (t Thread) Walk(fn func(e *Entry, depth int)) {
	for _, e := range t.Entries {
		walk(e, 1, fn)
	}
}

func walk(e *Entry, depth int, fn func(e *Entry, depth int)) {
	fn(e, depth)
	for _, c := range e.Children {
		walk(c, depth+1, fn)
	}
}
