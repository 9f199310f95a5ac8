package perfmetrics

import (
	"fmt"
	"sync"

	"github.com/petermattis/goid"

	"github.com/getsentry/perfmetrics/internal/calltree"
	"github.com/getsentry/perfmetrics/internal/errorutil"
	"github.com/getsentry/perfmetrics/internal/registry"
	"github.com/getsentry/perfmetrics/internal/timeutil"
)

// threadContext is the call tree of one goroutine and the position of its
// innermost open region. Only its goroutine mutates it; mu is held by report
// builds that read it.
type threadContext struct {
	mu     sync.Mutex
	id     uint64
	tree   *calltree.Tree
	cursor int
}

func newThreadContext(id uint64, root registry.Point, clock timeutil.Clock) *threadContext {
	tree := calltree.New(root.ID, root.CategoryID, id)
	tree.At(calltree.Root).Enter(clock.Now(), clock.CPU())
	return &threadContext{id: id, tree: tree, cursor: calltree.Root}
}

func currentThreadID() uint64 {
	return uint64(goid.Get())
}

// context returns the calling goroutine's context, creating it when create
// is set.
func (s *Session) context(threadID uint64, create bool) *threadContext {
	s.ctxMu.RLock()
	tc := s.contexts[threadID]
	s.ctxMu.RUnlock()
	if tc != nil || !create {
		return tc
	}

	s.ctxMu.Lock()
	defer s.ctxMu.Unlock()
	if tc = s.contexts[threadID]; tc != nil {
		return tc
	}
	tc = newThreadContext(threadID, s.root, s.clock)
	s.contexts[threadID] = tc
	s.order = append(s.order, tc)
	s.metrics.SetThreads(len(s.order))
	return tc
}

// Register returns the ID of the point (name, category), registering it on
// first use. It is allowed in any state.
func (s *Session) Register(name, category string) (ID, error) {
	id, err := s.registry.Register(name, category)
	if err != nil {
		s.reject("register", InvalidID, currentThreadID(), err)
		return InvalidID, err
	}
	s.metrics.SetPoints(s.registry.Len())
	return id, nil
}

// Enter opens the region id on the calling goroutine.
func (s *Session) Enter(id ID) error {
	threadID := currentThreadID()
	if err := s.enter(threadID, id); err != nil {
		s.reject("enter", id, threadID, err)
		return err
	}
	s.metrics.Entered()
	return nil
}

func (s *Session) enter(threadID uint64, id ID) error {
	if !s.running() {
		return errNotRunning("enter")
	}
	p, ok := s.registry.Point(id)
	if !ok {
		return fmt.Errorf("perfmetrics: %w: id %d is not registered", errorutil.ErrUsage, id)
	}

	tc := s.context(threadID, true)
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if !s.running() {
		return errNotRunning("enter")
	}

	wall, cpu := s.clock.Now(), s.clock.CPU()
	i, ok := tc.tree.Child(tc.cursor, id)
	if !ok {
		i = tc.tree.AddChild(tc.cursor, id, p.CategoryID)
	}
	tc.cursor = i
	tc.tree.At(i).Enter(wall, cpu)
	return nil
}

// Exit closes the region id, which must be the innermost open region of the
// calling goroutine.
func (s *Session) Exit(id ID) error {
	threadID := currentThreadID()
	if err := s.exit(threadID, id); err != nil {
		s.reject("exit", id, threadID, err)
		return err
	}
	s.metrics.Exited()
	return nil
}

func (s *Session) exit(threadID uint64, id ID) error {
	if !s.running() {
		return errNotRunning("exit")
	}
	tc := s.context(threadID, false)
	if tc == nil {
		return fmt.Errorf("perfmetrics: %w: goroutine %d exited %d without entering", errorutil.ErrProtocol, threadID, id)
	}

	tc.mu.Lock()
	defer tc.mu.Unlock()
	if !s.running() {
		return errNotRunning("exit")
	}

	wall, cpu := s.clock.Now(), s.clock.CPU()
	r := tc.tree.At(tc.cursor)
	if r.ID != id {
		return fmt.Errorf("perfmetrics: %w: goroutine %d exited %d while %d is open", errorutil.ErrProtocol, threadID, id, r.ID)
	}
	if !r.Exit(wall, cpu) {
		return fmt.Errorf("perfmetrics: %w: region %d is not open", errorutil.ErrProtocol, id)
	}
	// the cursor stays on the root, later entries still nest below it
	if tc.cursor != calltree.Root {
		tc.cursor = r.Parent
	}
	return nil
}

// EnterNamed registers (name, category) if needed and enters it.
func (s *Session) EnterNamed(name, category string) error {
	if !s.running() {
		err := errNotRunning("enter")
		s.reject("enter", InvalidID, currentThreadID(), err)
		return err
	}
	id, err := s.Register(name, category)
	if err != nil {
		return err
	}
	return s.Enter(id)
}

// ExitNamed exits (name, category). It never registers: an unknown pair is a
// usage error.
func (s *Session) ExitNamed(name, category string) error {
	id, ok := s.registry.Lookup(name, category)
	if !ok {
		err := fmt.Errorf("perfmetrics: %w: %q in %q is not registered", errorutil.ErrUsage, name, category)
		s.reject("exit", InvalidID, currentThreadID(), err)
		return err
	}
	return s.Exit(id)
}

func errNotRunning(op string) error {
	return fmt.Errorf("perfmetrics: %w: %s outside of a running session", errorutil.ErrState, op)
}
