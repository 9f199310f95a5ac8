package perfmetrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/getsentry/perfmetrics/internal/aggregate"
	"github.com/getsentry/perfmetrics/internal/errorutil"
	"github.com/getsentry/perfmetrics/internal/kafkautil"
	"github.com/getsentry/perfmetrics/internal/storageutil"
	"github.com/getsentry/perfmetrics/report"
)

// Names of the published objects.
const (
	CategoryReportObject = "CategoryReport.txt"
	IDReportObject       = "IDReport.txt"
	TreeReportObject     = "TreeReport.xml"
	SummaryObject        = "summary.txt"
	SpeedscopeObject     = "profile.speedscope.json"
	JSONReportObject     = "report.json.lz4"
)

type artifact struct {
	name  string
	write func(io.Writer) error
}

// Build rolls the call trees of a stopped session up into a report without
// publishing it.
func (s *Session) Build() (*report.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st := s.loadState(); st != stateStopped {
		return nil, fmt.Errorf("perfmetrics: %w: cannot report a %s session", errorutil.ErrState, st)
	}
	begin := time.Now()

	s.ctxMu.RLock()
	contexts := append([]*threadContext(nil), s.order...)
	s.ctxMu.RUnlock()

	threads := make([]aggregate.Thread, 0, len(contexts))
	for _, tc := range contexts {
		tc.mu.Lock()
		defer tc.mu.Unlock()
		threads = append(threads, aggregate.Thread{ID: tc.id, Tree: tc.tree})
	}

	current, peak := s.ledger.Snapshot()
	r := &report.Report{
		SessionID:  s.id,
		StartedAt:  s.startedAt,
		EndedAt:    s.endedAt,
		Duration:   s.endClock - s.startClock,
		Categories: aggregate.Categories(threads, s.registry),
		Points:     aggregate.Points(threads, s.registry),
		Threads:    aggregate.Tree(threads, s.registry, s.endClock),
		Allocations: report.Allocations{
			Current: current,
			Peak:    peak,
			Live:    s.ledger.Len(),
		},
	}
	s.metrics.ObserveReport(r, time.Since(begin))
	return r, nil
}

// Report builds the report of a stopped session and publishes it to every
// configured sink and to Kafka. The report is returned even when publishing
// fails.
func (s *Session) Report(ctx context.Context) (*report.Report, error) {
	r, err := s.Build()
	if err != nil {
		return nil, err
	}
	if err := s.publish(ctx, r); err != nil {
		return r, err
	}
	s.log().Info().
		Str("session_id", r.SessionID).
		Int("threads", len(r.Threads)).
		Int("points", len(r.Points)).
		Msg("perfmetrics: report published")
	return r, nil
}

func (s *Session) artifacts(r *report.Report) []artifact {
	artifacts := []artifact{
		{CategoryReportObject, func(w io.Writer) error { return report.WriteCategoryTable(w, r.Categories) }},
		{IDReportObject, func(w io.Writer) error { return report.WritePointTable(w, r.Points) }},
		{TreeReportObject, func(w io.Writer) error { return report.WriteTreeXML(w, r.Threads) }},
		{SpeedscopeObject, func(w io.Writer) error { return report.WriteSpeedscope(w, r) }},
	}
	if s.summary {
		artifacts = append(artifacts, artifact{SummaryObject, func(w io.Writer) error { return report.WriteSummary(w, r) }})
	}
	return artifacts
}

func (s *Session) publish(ctx context.Context, r *report.Report) error {
	var errs []error
	fail := func(err error) {
		errs = append(errs, err)
		s.log().Error().Err(err).Str("session_id", r.SessionID).Msg("perfmetrics: publishing failed")
		if s.hub != nil {
			s.hub.CaptureException(err)
		}
	}

	artifacts := s.artifacts(r)
	for _, sk := range s.sinks {
		prefix := ""
		if sk.perSession {
			prefix = r.SessionID + "/"
		}
		for _, a := range artifacts {
			if err := storageutil.WriteObject(ctx, sk.handler, prefix+a.name, a.write); err != nil {
				fail(fmt.Errorf("perfmetrics: writing %s: %w", prefix+a.name, err))
			}
		}
		if err := storageutil.CompressedWrite(ctx, sk.handler, prefix+JSONReportObject, r); err != nil {
			fail(fmt.Errorf("perfmetrics: writing %s: %w", prefix+JSONReportObject, err))
		}
	}

	if s.kafka != nil {
		if err := kafkautil.Publish(ctx, s.kafka, r); err != nil {
			fail(fmt.Errorf("perfmetrics: streaming points: %w", err))
		}
	}
	return errors.Join(errs...)
}
