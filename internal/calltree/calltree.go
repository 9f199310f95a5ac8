// Package calltree stores the per-goroutine call tree as an arena of records
// addressed by index.
package calltree

import (
	"sort"
	"time"

	"github.com/getsentry/perfmetrics/internal/registry"
)

const (
	// Root is the index of the thread start record in every tree.
	Root = 0
	// NoParent is the parent index of the root.
	NoParent = -1
)

type Tree struct {
	records []Record
}

// New returns a tree holding only its root record.
func New(id, categoryID registry.ID, threadID uint64) *Tree {
	return &Tree{
		records: []Record{{
			Kind:       KindRecord,
			Parent:     NoParent,
			ID:         id,
			CategoryID: categoryID,
			ThreadID:   threadID,
		}},
	}
}

func (t *Tree) Len() int {
	return len(t.records)
}

// At returns the record at index i. The pointer is only valid until the next
// call to AddChild.
func (t *Tree) At(i int) *Record {
	return &t.records[i]
}

// Child returns the index of the direct child of parent carrying id.
func (t *Tree) Child(parent int, id registry.ID) (int, bool) {
	for _, c := range t.records[parent].Children {
		if t.records[c].ID == id {
			return c, true
		}
	}
	return 0, false
}

// AddChild appends a new record under parent and returns its index.
func (t *Tree) AddChild(parent int, id, categoryID registry.ID) int {
	i := len(t.records)
	t.records = append(t.records, Record{
		Kind:       KindRecord,
		Parent:     parent,
		ID:         id,
		CategoryID: categoryID,
		ThreadID:   t.records[Root].ThreadID,
	})
	t.records[parent].Children = append(t.records[parent].Children, i)
	return i
}

// SelfTime returns the wall and CPU time spent in record i outside of its
// direct children. It saturates at zero, which happens when the record is
// still open while some of its children already completed.
func (t *Tree) SelfTime(i int) (time.Duration, time.Duration) {
	r := &t.records[i]
	wall, cpu := r.Total, r.TotalCPU
	for _, c := range r.Children {
		wall -= t.records[c].Total
		cpu -= t.records[c].TotalCPU
	}
	return nonNegative(wall), nonNegative(cpu)
}

// OrderChildrenByTotal reorders every child list by descending total wall
// time, keeping the insertion order for ties.
func (t *Tree) OrderChildrenByTotal() {
	for i := range t.records {
		children := t.records[i].Children
		sort.SliceStable(children, func(a, b int) bool {
			return t.records[children[a]].Total > t.records[children[b]].Total
		})
	}
}

// Walk visits every record in depth-first pre-order. Returning false from fn
// skips the record's subtree.
func (t *Tree) Walk(fn func(i, depth int) bool) {
	t.walk(Root, 0, fn)
}

func (t *Tree) walk(i, depth int, fn func(i, depth int) bool) {
	if !fn(i, depth) {
		return
	}
	for _, c := range t.records[i].Children {
		t.walk(c, depth+1, fn)
	}
}

// HasCalls reports whether record i or any of its descendants completed at
// least one call.
func (t *Tree) HasCalls(i int) bool {
	if t.records[i].Calls > 0 {
		return true
	}
	for _, c := range t.records[i].Children {
		if t.HasCalls(c) {
			return true
		}
	}
	return false
}
