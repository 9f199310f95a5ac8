// Package aggregate rolls the per-goroutine call trees up into the report
// views: per category, per point and per thread tree.
package aggregate

import (
	"sort"
	"time"

	"github.com/getsentry/perfmetrics/internal/calltree"
	"github.com/getsentry/perfmetrics/internal/registry"
	"github.com/getsentry/perfmetrics/report"
)

// Thread is one goroutine's call tree. Callers must keep the tree from being
// mutated while it is aggregated.
type Thread struct {
	ID   uint64
	Tree *calltree.Tree
}

// Stats returns the report statistics of record i. Records without a
// completed call report zero.
func Stats(t *calltree.Tree, i int) report.Stats {
	r := t.At(i)
	if r.Calls == 0 {
		return report.Stats{}
	}
	self, selfCPU := t.SelfTime(i)
	s := report.Stats{
		Samples:  r.Calls,
		Total:    r.Total,
		Self:     self,
		Min:      r.Min,
		Max:      r.Max,
		TotalCPU: r.TotalCPU,
		SelfCPU:  selfCPU,
		MinCPU:   r.MinCPU,
		MaxCPU:   r.MaxCPU,
	}
	s.Finalize()
	return s
}

// Categories attributes every record to its category, counting a record only
// when no ancestor on its path shares the category, so nested calls within a
// category are not counted twice.
func Categories(threads []Thread, reg *registry.Registry) []report.CategoryRow {
	categories := reg.Categories()
	rows := make([]report.CategoryRow, len(categories))
	slot := make(map[registry.ID]int, len(categories))
	for i, c := range categories {
		rows[i] = report.CategoryRow{ID: uint32(c.ID), Name: c.Name}
		slot[c.ID] = i
	}

	for _, th := range threads {
		open := make(map[registry.ID]int)
		var visit func(i int)
		visit = func(i int) {
			r := th.Tree.At(i)
			cat := r.CategoryID
			if open[cat] == 0 {
				if s, ok := slot[cat]; ok {
					rows[s].Merge(Stats(th.Tree, i))
				}
			}
			open[cat]++
			for _, c := range r.Children {
				visit(c)
			}
			open[cat]--
		}
		visit(calltree.Root)
	}

	for i := range rows {
		rows[i].Finalize()
	}
	return rows
}

// Points sums every record into the slot of its point and orders the rows by
// descending number of samples, keeping registration order for ties.
func Points(threads []Thread, reg *registry.Registry) []report.PointRow {
	points := reg.Points()
	rows := make([]report.PointRow, len(points))
	slot := make(map[registry.ID]int, len(points))
	for i, p := range points {
		rows[i] = report.PointRow{
			ID:         uint32(p.ID),
			Name:       p.Name,
			Category:   p.Category,
			CategoryID: uint32(p.CategoryID),
		}
		slot[p.ID] = i
	}

	for _, th := range threads {
		th.Tree.Walk(func(i, _ int) bool {
			if s, ok := slot[th.Tree.At(i).ID]; ok {
				rows[s].Merge(Stats(th.Tree, i))
			}
			return true
		})
	}

	for i := range rows {
		rows[i].Finalize()
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Samples > rows[j].Samples
	})
	return rows
}

// Tree converts every call tree into its report form. Children are ordered by
// descending total time and subtrees without any completed call are dropped.
// end is the session clock reading that closes every thread.
func Tree(threads []Thread, reg *registry.Registry, end time.Duration) []report.Thread {
	points := make(map[registry.ID]registry.Point)
	for _, p := range reg.Points() {
		points[p.ID] = p
	}

	out := make([]report.Thread, 0, len(threads))
	for _, th := range threads {
		th.Tree.OrderChildrenByTotal()
		root := th.Tree.At(calltree.Root)
		t := report.Thread{
			ID:    th.ID,
			Start: root.Start,
		}
		if end > root.Start {
			t.Duration = end - root.Start
		}
		for _, c := range root.Children {
			if e := entry(th.Tree, c, points); e != nil {
				t.Entries = append(t.Entries, e)
			}
		}
		out = append(out, t)
	}
	return out
}

func entry(t *calltree.Tree, i int, points map[registry.ID]registry.Point) *report.Entry {
	if !t.HasCalls(i) {
		return nil
	}
	r := t.At(i)
	p := points[r.ID]
	e := &report.Entry{
		ID:       uint32(r.ID),
		Name:     p.Name,
		Category: p.Category,
		Start:    r.Start,
		LastExit: r.LastExit,
		Stats:    Stats(t, i),
	}
	for _, c := range r.Children {
		if ce := entry(t, c, points); ce != nil {
			e.Children = append(e.Children, ce)
		}
	}
	return e
}
