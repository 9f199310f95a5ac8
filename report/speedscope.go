package report

import (
	"io"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/getsentry/perfmetrics/internal/speedscope"
)

// Speedscope lays out each thread's call tree as an evented profile. Calls
// are aggregated, so every entry is drawn once with its total time and its
// children packed from its start, the same shape as speedscope's left heavy
// view.
func Speedscope(r *Report) speedscope.Output {
	o := speedscope.Output{
		Schema:   speedscope.Schema,
		Exporter: "perfmetrics",
		Name:     r.SessionID,
		Profiles: make([]speedscope.EventedProfile, 0, len(r.Threads)),
	}
	frames := make(map[uint32]int)
	frameIndex := func(e *Entry) int {
		if i, ok := frames[e.ID]; ok {
			return i
		}
		i := len(o.Shared.Frames)
		o.Shared.Frames = append(o.Shared.Frames, speedscope.Frame{Name: e.Name, File: e.Category})
		frames[e.ID] = i
		return i
	}

	for _, t := range r.Threads {
		p := speedscope.EventedProfile{
			Name:     threadName(t.ID),
			ThreadID: t.ID,
			Type:     speedscope.ProfileTypeEvented,
			Unit:     speedscope.ValueUnitNanoseconds,
		}
		var at uint64
		for _, e := range t.Entries {
			at = layout(&p, e, at, frameIndex)
		}
		if d := uint64(t.Duration); d > p.EndValue {
			p.EndValue = d
		}
		o.Profiles = append(o.Profiles, p)
	}
	return o
}

func layout(p *speedscope.EventedProfile, e *Entry, at uint64, frameIndex func(*Entry) int) uint64 {
	f := frameIndex(e)
	end := at + uint64(e.Total)
	p.Open(f, at)
	child := at
	for _, c := range e.Children {
		child = layout(p, c, child, frameIndex)
	}
	// open parents can be shorter than their completed children
	if child > end {
		end = child
	}
	p.Close(f, end)
	return end
}

func threadName(id uint64) string {
	return "goroutine " + strconv.FormatUint(id, 10)
}

// WriteSpeedscope encodes the speedscope rendering of r.
func WriteSpeedscope(w io.Writer, r *Report) error {
	return json.NewEncoder(w).Encode(Speedscope(r))
}

// WriteJSON encodes the whole report.
func WriteJSON(w io.Writer, r *Report) error {
	return json.NewEncoder(w).Encode(r)
}
