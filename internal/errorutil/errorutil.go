package errorutil

import "errors"

// ErrProtocol is returned when an exit does not match the innermost open
// entry of the calling goroutine, or when the goroutine never entered.
var ErrProtocol = errors.New("protocol error")

// ErrUsage is returned for calls with identifiers or names that were never
// registered, or that are malformed.
var ErrUsage = errors.New("usage error")

// ErrState is returned when an operation is not allowed in the current
// session state.
var ErrState = errors.New("state error")

// ErrUnknownAddress is returned when releasing an address that was never
// registered with the allocation ledger.
var ErrUnknownAddress = errors.New("unknown address")

// Kind returns a short label for the sentinel wrapped by err, suitable as a
// metric label value.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrProtocol):
		return "protocol"
	case errors.Is(err, ErrUsage):
		return "usage"
	case errors.Is(err, ErrState):
		return "state"
	case errors.Is(err, ErrUnknownAddress):
		return "unknown_address"
	}
	return "other"
}
