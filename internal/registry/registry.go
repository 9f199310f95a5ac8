// Package registry hands out identifiers for instrumentation points and
// their categories.
package registry

import (
	"fmt"
	"sync"

	"github.com/getsentry/perfmetrics/internal/errorutil"
)

// ID identifies a point or a category. Points and categories draw from the
// same counter so an ID is never shared between the two.
type ID uint32

// InvalidID is never minted.
const InvalidID ID = 0

type (
	Point struct {
		Name       string
		Category   string
		ID         ID
		CategoryID ID
	}

	Category struct {
		Name string
		ID   ID
	}

	pointKey struct {
		name     string
		category string
	}

	Registry struct {
		mu sync.RWMutex

		next       ID
		points     []Point
		categories []Category

		pointByID    map[ID]int
		pointByKey   map[pointKey]int
		categoryByID map[ID]int
		categoryName map[string]int
	}
)

func New() *Registry {
	return &Registry{
		pointByID:    make(map[ID]int),
		pointByKey:   make(map[pointKey]int),
		categoryByID: make(map[ID]int),
		categoryName: make(map[string]int),
	}
}

// Register returns the ID of the point (name, category), minting one and a
// category ID if needed. Registering the same pair again returns the same ID.
func (r *Registry) Register(name, category string) (ID, error) {
	if name == "" || category == "" {
		return InvalidID, fmt.Errorf("registry: %w: name and category must be non-empty", errorutil.ErrUsage)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ci, ok := r.categoryName[category]
	if !ok {
		ci = len(r.categories)
		c := Category{Name: category, ID: r.mint()}
		r.categories = append(r.categories, c)
		r.categoryName[category] = ci
		r.categoryByID[c.ID] = ci
	}

	k := pointKey{name: name, category: category}
	if pi, ok := r.pointByKey[k]; ok {
		return r.points[pi].ID, nil
	}

	p := Point{
		Name:       name,
		Category:   category,
		ID:         r.mint(),
		CategoryID: r.categories[ci].ID,
	}
	r.pointByKey[k] = len(r.points)
	r.pointByID[p.ID] = len(r.points)
	r.points = append(r.points, p)

	return p.ID, nil
}

// UniqueID mints an ID that is not attached to any point or category.
func (r *Registry) UniqueID() ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mint()
}

func (r *Registry) mint() ID {
	r.next++
	return r.next
}

// Lookup finds the ID of a registered point without registering it.
func (r *Registry) Lookup(name, category string) (ID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pi, ok := r.pointByKey[pointKey{name: name, category: category}]
	if !ok {
		return InvalidID, false
	}
	return r.points[pi].ID, true
}

func (r *Registry) Point(id ID) (Point, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pi, ok := r.pointByID[id]
	if !ok {
		return Point{}, false
	}
	return r.points[pi], true
}

func (r *Registry) Category(id ID) (Category, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ci, ok := r.categoryByID[id]
	if !ok {
		return Category{}, false
	}
	return r.categories[ci], true
}

// Points returns a copy of all points in registration order.
func (r *Registry) Points() []Point {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Point(nil), r.points...)
}

// Categories returns a copy of all categories in registration order.
func (r *Registry) Categories() []Category {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Category(nil), r.categories...)
}

// PointIndex returns the position of the point in registration order.
func (r *Registry) PointIndex(id ID) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pi, ok := r.pointByID[id]
	return pi, ok
}

// CategoryIndex returns the position of the category in registration order.
func (r *Registry) CategoryIndex(id ID) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ci, ok := r.categoryByID[id]
	return ci, ok
}

// Len returns the number of registered points.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.points)
}

// Reset forgets every point and category and restarts the ID counter.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next = 0
	r.points = nil
	r.categories = nil
	r.pointByID = make(map[ID]int)
	r.pointByKey = make(map[pointKey]int)
	r.categoryByID = make(map[ID]int)
	r.categoryName = make(map[string]int)
}
