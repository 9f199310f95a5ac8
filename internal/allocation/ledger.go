// Package allocation tracks live allocations reported by the host program.
package allocation

import (
	"fmt"
	"sync"

	"github.com/getsentry/perfmetrics/internal/errorutil"
)

type Ledger struct {
	mu      sync.Mutex
	sizes   map[uintptr]int64
	current int64
	peak    int64
}

func NewLedger() *Ledger {
	return &Ledger{sizes: make(map[uintptr]int64)}
}

// Register records size bytes at addr. Registering an address that is still
// live replaces its previous size.
func (l *Ledger) Register(addr uintptr, size int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if prev, ok := l.sizes[addr]; ok {
		l.current -= prev
	}
	l.sizes[addr] = size
	l.current += size
	if l.current > l.peak {
		l.peak = l.current
	}
}

// Release forgets addr and returns the number of bytes it held. Unknown
// addresses leave the counters untouched.
func (l *Ledger) Release(addr uintptr) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	size, ok := l.sizes[addr]
	if !ok {
		return 0, fmt.Errorf("allocation: %w: %#x", errorutil.ErrUnknownAddress, addr)
	}
	delete(l.sizes, addr)
	l.current -= size
	return size, nil
}

// Current returns the bytes held by live allocations.
func (l *Ledger) Current() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// Peak returns the highest value Current ever reached.
func (l *Ledger) Peak() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.peak
}

// Snapshot returns Current and Peak read at the same moment.
func (l *Ledger) Snapshot() (current, peak int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current, l.peak
}

// Len returns the number of live allocations.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.sizes)
}

// Reset drops every allocation and zeroes the counters.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sizes = make(map[uintptr]int64)
	l.current = 0
	l.peak = 0
}
