package perfmetrics

import (
	"errors"
	"io"
	"net/http"

	"github.com/CAFxX/httpcompression"
	"github.com/getsentry/sentry-go"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/getsentry/perfmetrics/internal/errorutil"
	"github.com/getsentry/perfmetrics/internal/httputil"
	"github.com/getsentry/perfmetrics/report"
)

// Handler serves the reports of s and its metrics. Report routes answer 409
// Conflict until the session is stopped.
func Handler(s *Session) (http.Handler, error) {
	compress, err := httpcompression.DefaultAdapter()
	if err != nil {
		return nil, err
	}

	routes := []struct {
		path        string
		contentType string
		write       func(io.Writer, *report.Report) error
	}{
		{"/report/categories", "text/plain; charset=utf-8", func(w io.Writer, r *report.Report) error {
			return report.WriteCategoryTable(w, r.Categories)
		}},
		{"/report/points", "text/plain; charset=utf-8", func(w io.Writer, r *report.Report) error {
			return report.WritePointTable(w, r.Points)
		}},
		{"/report/tree", "application/xml", func(w io.Writer, r *report.Report) error {
			return report.WriteTreeXML(w, r.Threads)
		}},
		{"/report/speedscope", "application/json", report.WriteSpeedscope},
		{"/report/summary", "text/plain; charset=utf-8", report.WriteSummary},
		{"/report/json", "application/json", report.WriteJSON},
	}

	router := httprouter.New()
	router.HandlerFunc(http.MethodGet, "/health", getHealth)
	for _, route := range routes {
		route := route
		router.Handler(http.MethodGet, route.path, compress(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rep, err := s.Build()
			if err != nil {
				if errors.Is(err, errorutil.ErrState) {
					http.Error(w, err.Error(), http.StatusConflict)
					return
				}
				if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
					hub.CaptureException(err)
				}
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			httputil.WriteBuffered(w, r, route.contentType, func(w io.Writer) error {
				return route.write(w, rep)
			})
		})))
	}
	router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(s.Gatherer(), promhttp.HandlerOpts{}))

	return router, nil
}

func getHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
