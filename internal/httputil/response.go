package httputil

import (
	"bytes"
	"io"
	"net/http"

	"github.com/getsentry/sentry-go"
)

// WriteBuffered renders write into memory first so a rendering error can
// still be answered with a 500, then sends the body with contentType.
func WriteBuffered(w http.ResponseWriter, r *http.Request, contentType string, write func(io.Writer) error) {
	var b bytes.Buffer
	if err := write(&b); err != nil {
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			hub.CaptureException(err)
		}
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b.Bytes())
}
