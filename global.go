package perfmetrics

import (
	"context"

	"github.com/getsentry/perfmetrics/internal/storageprovider"
	"github.com/getsentry/perfmetrics/report"
)

// defaultSession writes its artifacts to the working directory.
var defaultSession = NewSession(WithSink(&storageprovider.Local{Dir: "."}))

// Default returns the session used by the package level functions.
func Default() *Session {
	return defaultSession
}

func Start() error {
	return defaultSession.Start()
}

func Stop() error {
	return defaultSession.Stop()
}

func Cleanup() error {
	return defaultSession.Cleanup()
}

func Report(ctx context.Context) (*report.Report, error) {
	return defaultSession.Report(ctx)
}

func Register(name, category string) (ID, error) {
	return defaultSession.Register(name, category)
}

func Enter(id ID) error {
	return defaultSession.Enter(id)
}

func Exit(id ID) error {
	return defaultSession.Exit(id)
}

func EnterNamed(name, category string) error {
	return defaultSession.EnterNamed(name, category)
}

func ExitNamed(name, category string) error {
	return defaultSession.ExitNamed(name, category)
}

// Func enters (name, category) on the default session and returns its exit.
func Func(name, category string) func() {
	return defaultSession.Func(name, category)
}

func FuncID(id ID) func() {
	return defaultSession.FuncID(id)
}

func OnAlloc(addr uintptr, size int64) error {
	return defaultSession.OnAlloc(addr, size)
}

func OnFree(addr uintptr) error {
	return defaultSession.OnFree(addr)
}
