package calltree

import (
	"time"

	"github.com/getsentry/perfmetrics/internal/registry"
)

// Kind tags what a tree node carries. Only KindRecord is produced today.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindRecord
)

func (k Kind) String() string {
	switch k {
	case KindRecord:
		return "record"
	default:
		return "unknown"
	}
}

// Record accumulates timing statistics for one call path. A record is open
// between Enter and the matching Exit; a record never has more than one open
// invocation since re-entering the same point from inside it creates a child.
type Record struct {
	Kind       Kind
	Parent     int
	Children   []int
	ID         registry.ID
	CategoryID registry.ID
	ThreadID   uint64

	Calls    uint32
	Total    time.Duration
	TotalCPU time.Duration
	Min      time.Duration
	Max      time.Duration
	MinCPU   time.Duration
	MaxCPU   time.Duration

	// Start is the wall-clock reading of the first entry.
	Start       time.Duration
	StartCPU    time.Duration
	LastExit    time.Duration
	LastExitCPU time.Duration

	entered  bool
	open     bool
	entry    time.Duration
	entryCPU time.Duration
}

// Enter opens an invocation at the given clock readings.
func (r *Record) Enter(wall, cpu time.Duration) {
	if !r.entered {
		r.entered = true
		r.Start = wall
		r.StartCPU = cpu
	}
	r.open = true
	r.entry = wall
	r.entryCPU = cpu
}

// Exit closes the open invocation and folds its duration into the totals.
// It reports false when no invocation is open.
func (r *Record) Exit(wall, cpu time.Duration) bool {
	if !r.open {
		return false
	}
	r.open = false

	d := nonNegative(wall - r.entry)
	dc := nonNegative(cpu - r.entryCPU)

	if r.Calls == 0 {
		r.Min, r.Max = d, d
		r.MinCPU, r.MaxCPU = dc, dc
	} else {
		r.Min = min(r.Min, d)
		r.Max = max(r.Max, d)
		r.MinCPU = min(r.MinCPU, dc)
		r.MaxCPU = max(r.MaxCPU, dc)
	}
	r.Calls++
	r.Total += d
	r.TotalCPU += dc
	r.LastExit = wall
	r.LastExitCPU = cpu
	return true
}

// IsOpen reports whether the record has an invocation in progress.
func (r *Record) IsOpen() bool {
	return r.open
}

// Entered reports whether the record was ever entered.
func (r *Record) Entered() bool {
	return r.entered
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
