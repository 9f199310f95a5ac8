package perfmetrics

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/getsentry/perfmetrics/internal/allocation"
	"github.com/getsentry/perfmetrics/internal/errorutil"
	"github.com/getsentry/perfmetrics/internal/kafkautil"
	"github.com/getsentry/perfmetrics/internal/metrics"
	"github.com/getsentry/perfmetrics/internal/registry"
	"github.com/getsentry/perfmetrics/internal/storageutil"
	"github.com/getsentry/perfmetrics/internal/timeutil"
)

const (
	threadStartName     = "ThreadStart"
	threadStartCategory = "THREAD"
)

type state int32

const (
	stateUninitialized state = iota
	stateRunning
	stateStopped
)

func (s state) String() string {
	switch s {
	case stateRunning:
		return "running"
	case stateStopped:
		return "stopped"
	default:
		return "uninitialized"
	}
}

type sink struct {
	handler    storageutil.ObjectHandler
	perSession bool
}

// Session owns the registry, the per-goroutine call trees and the allocation
// ledger of one profiling run. Its lifecycle is
// uninitialized → running → stopped → uninitialized (Cleanup).
type Session struct {
	clock   timeutil.Clock
	logger  *zerolog.Logger
	sampler zerolog.Sampler
	hub     *sentry.Hub
	metrics *metrics.Collector
	prom    *prometheus.Registry
	sinks   []sink
	kafka   kafkautil.Writer
	summary bool
	closers []io.Closer

	state atomic.Int32

	// mu serializes lifecycle transitions and report builds.
	mu         sync.Mutex
	id         string
	startedAt  time.Time
	endedAt    time.Time
	startClock time.Duration
	endClock   time.Duration

	registry *registry.Registry
	ledger   *allocation.Ledger

	// ctxMu guards contexts, order and root.
	ctxMu    sync.RWMutex
	contexts map[uint64]*threadContext
	order    []*threadContext
	root     registry.Point
}

func NewSession(opts ...Option) *Session {
	s := &Session{
		clock:    timeutil.NewSystemClock(),
		sampler:  &zerolog.BurstSampler{Burst: 10, Period: time.Second},
		metrics:  metrics.NewCollector(),
		prom:     prometheus.NewRegistry(),
		summary:  true,
		registry: registry.New(),
		ledger:   allocation.NewLedger(),
		contexts: make(map[uint64]*threadContext),
	}
	for _, opt := range opts {
		opt(s)
	}
	// a fresh registry cannot already hold these collectors
	_ = s.metrics.Register(s.prom)
	return s
}

func (s *Session) log() *zerolog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return &log.Logger
}

func (s *Session) loadState() state {
	return state(s.state.Load())
}

func (s *Session) running() bool {
	return s.loadState() == stateRunning
}

// ID returns the identifier of the current run, empty before Start.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Gatherer exposes the session's own Prometheus metrics.
func (s *Session) Gatherer() prometheus.Gatherer {
	return s.prom
}

// Start begins a run. The session must be uninitialized.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st := s.loadState(); st != stateUninitialized {
		return fmt.Errorf("perfmetrics: %w: cannot start a %s session", errorutil.ErrState, st)
	}

	id, err := s.registry.Register(threadStartName, threadStartCategory)
	if err != nil {
		return err
	}
	root, _ := s.registry.Point(id)

	s.ctxMu.Lock()
	s.root = root
	s.ctxMu.Unlock()

	s.id = uuid.New().String()
	s.startedAt = time.Now()
	s.endedAt = time.Time{}
	s.startClock = s.clock.Now()
	s.endClock = 0
	s.metrics.SetPoints(s.registry.Len())
	s.state.Store(int32(stateRunning))

	s.log().Info().Str("session_id", s.id).Msg("perfmetrics: session started")
	return nil
}

// Stop freezes the run. Enter, Exit and allocation tracking are rejected
// afterwards.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopLocked()
}

func (s *Session) stopLocked() error {
	if st := s.loadState(); st != stateRunning {
		return fmt.Errorf("perfmetrics: %w: cannot stop a %s session", errorutil.ErrState, st)
	}
	s.state.Store(int32(stateStopped))
	s.endedAt = time.Now()
	s.endClock = s.clock.Now()

	s.log().Info().
		Str("session_id", s.id).
		Dur("duration", s.endClock-s.startClock).
		Msg("perfmetrics: session stopped")
	return nil
}

// Cleanup drops every tree, registration and tracked allocation and returns
// the session to its initial state. A running session is stopped first.
func (s *Session) Cleanup() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.loadState() {
	case stateUninitialized:
		return nil
	case stateRunning:
		if err := s.stopLocked(); err != nil {
			return err
		}
	}

	s.ctxMu.Lock()
	s.contexts = make(map[uint64]*threadContext)
	s.order = nil
	s.root = registry.Point{}
	s.ctxMu.Unlock()

	s.registry.Reset()
	s.ledger.Reset()
	s.metrics.Reset()
	s.id = ""
	s.state.Store(int32(stateUninitialized))
	return nil
}

// Close releases the sinks and writers opened by NewSessionFromConfig.
func (s *Session) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

// reject logs, counts and records a refused call.
func (s *Session) reject(op string, id ID, threadID uint64, err error) {
	kind := errorutil.Kind(err)
	s.metrics.Rejected(kind)

	l := s.log().Sample(s.sampler)
	l.Warn().
		Err(err).
		Str("op", op).
		Uint32("id", uint32(id)).
		Uint64("thread_id", threadID).
		Msg("perfmetrics: call rejected")

	if s.hub != nil {
		s.hub.AddBreadcrumb(&sentry.Breadcrumb{
			Category: "perfmetrics",
			Message:  err.Error(),
			Level:    sentry.LevelWarning,
			Data: map[string]interface{}{
				"op":        op,
				"kind":      kind,
				"id":        uint32(id),
				"thread_id": threadID,
			},
		}, nil)
	}
}
