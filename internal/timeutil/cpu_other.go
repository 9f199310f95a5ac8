//go:build !unix

package timeutil

import "time"

// processCPUTime is not available on this platform and always reports zero.
func processCPUTime() time.Duration {
	return 0
}
