package perfmetrics

import (
	"io"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"

	"github.com/getsentry/perfmetrics/internal/kafkautil"
	"github.com/getsentry/perfmetrics/internal/storageutil"
	"github.com/getsentry/perfmetrics/internal/timeutil"
)

type Option func(*Session)

// WithClock replaces the wall and CPU clocks.
func WithClock(c timeutil.Clock) Option {
	return func(s *Session) {
		s.clock = c
	}
}

// WithLogger sets the logger. By default the global zerolog logger is used.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = &l
	}
}

// WithHub records rejected calls as breadcrumbs and publishing failures as
// exceptions on hub.
func WithHub(hub *sentry.Hub) Option {
	return func(s *Session) {
		s.hub = hub
	}
}

// WithSink publishes report artifacts at the top level of h.
func WithSink(h storageutil.ObjectHandler) Option {
	return func(s *Session) {
		s.sinks = append(s.sinks, sink{handler: h})
	}
}

// WithSessionSink publishes report artifacts under a directory named after
// the session ID.
func WithSessionSink(h storageutil.ObjectHandler) Option {
	return func(s *Session) {
		s.sinks = append(s.sinks, sink{handler: h, perSession: true})
	}
}

// WithKafka streams the point rollup of every published report to w.
func WithKafka(w kafkautil.Writer) Option {
	return func(s *Session) {
		s.kafka = w
	}
}

// WithSummary controls whether summary.txt is published with the report.
func WithSummary(enabled bool) Option {
	return func(s *Session) {
		s.summary = enabled
	}
}

func withCloser(c io.Closer) Option {
	return func(s *Session) {
		s.closers = append(s.closers, c)
	}
}
