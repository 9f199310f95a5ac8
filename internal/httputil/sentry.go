package httputil

import (
	"strconv"

	"github.com/getsentry/sentry-go"
)

// HTTPStatusCodeTag is the name of the HTTP status code tag.
const HTTPStatusCodeTag = "http.response.status_code"

// SetHTTPStatusCodeTag sets the status code tag of the response the event
// was captured for.
func SetHTTPStatusCodeTag(e *sentry.Event, hint *sentry.EventHint) *sentry.Event {
	if hint == nil || hint.Response == nil {
		return e
	}
	if e.Tags == nil {
		e.Tags = make(map[string]string)
	}
	if _, exists := e.Tags[HTTPStatusCodeTag]; !exists {
		e.Tags[HTTPStatusCodeTag] = strconv.Itoa(hint.Response.StatusCode)
	}
	return e
}

// BeforeSend returns a sentry.ClientOptions.BeforeSend hook adding tags to
// every event on top of the status code tag. Tags already set win.
func BeforeSend(tags map[string]string) func(*sentry.Event, *sentry.EventHint) *sentry.Event {
	return func(e *sentry.Event, hint *sentry.EventHint) *sentry.Event {
		e = SetHTTPStatusCodeTag(e, hint)
		if len(tags) == 0 {
			return e
		}
		if e.Tags == nil {
			e.Tags = make(map[string]string, len(tags))
		}
		for k, v := range tags {
			if _, exists := e.Tags[k]; !exists {
				e.Tags[k] = v
			}
		}
		return e
	}
}
