package perfmetrics

import (
	"github.com/getsentry/perfmetrics/internal/errorutil"
	"github.com/getsentry/perfmetrics/internal/registry"
)

// ID identifies a registered instrumentation point.
type ID = registry.ID

// InvalidID is never returned by a successful Register.
const InvalidID = registry.InvalidID

var (
	// ErrProtocol reports an exit that does not match the innermost open
	// region of the calling goroutine.
	ErrProtocol = errorutil.ErrProtocol
	// ErrUsage reports an unknown identifier or a malformed name.
	ErrUsage = errorutil.ErrUsage
	// ErrState reports an operation that the session state does not allow.
	ErrState = errorutil.ErrState
	// ErrUnknownAddress reports the release of an untracked allocation.
	ErrUnknownAddress = errorutil.ErrUnknownAddress
)
