package perfmetrics

import (
	"fmt"

	"github.com/getsentry/perfmetrics/internal/errorutil"
)

// OnAlloc tracks size bytes allocated at addr.
func (s *Session) OnAlloc(addr uintptr, size int64) error {
	threadID := currentThreadID()
	if !s.running() {
		err := errNotRunning("alloc")
		s.reject("alloc", InvalidID, threadID, err)
		return err
	}
	if size < 0 {
		err := fmt.Errorf("perfmetrics: %w: negative size %d at %#x", errorutil.ErrUsage, size, addr)
		s.reject("alloc", InvalidID, threadID, err)
		return err
	}
	s.ledger.Register(addr, size)
	s.metrics.SetAllocated(s.ledger.Snapshot())
	return nil
}

// OnFree releases the allocation at addr. Unknown addresses are reported and
// leave the counters unchanged.
func (s *Session) OnFree(addr uintptr) error {
	threadID := currentThreadID()
	if !s.running() {
		err := errNotRunning("free")
		s.reject("free", InvalidID, threadID, err)
		return err
	}
	if _, err := s.ledger.Release(addr); err != nil {
		s.reject("free", InvalidID, threadID, err)
		return err
	}
	s.metrics.SetAllocated(s.ledger.Snapshot())
	return nil
}
