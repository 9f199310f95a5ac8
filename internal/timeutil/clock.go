package timeutil

import (
	"sync/atomic"
	"time"
)

// Clock provides the two time sources used to time instrumented regions.
// Both are offsets from an arbitrary origin; only differences are meaningful.
type Clock interface {
	// Now returns the monotonic wall-clock reading.
	Now() time.Duration
	// CPU returns the CPU time consumed by the process so far.
	CPU() time.Duration
}

// SystemClock reads the monotonic clock and the process CPU usage.
type SystemClock struct {
	origin time.Time
}

func NewSystemClock() *SystemClock {
	return &SystemClock{origin: time.Now()}
}

func (c *SystemClock) Now() time.Duration {
	return time.Since(c.origin)
}

func (c *SystemClock) CPU() time.Duration {
	return processCPUTime()
}

// ManualClock is a Clock that only moves when told to. It is safe for
// concurrent use.
type ManualClock struct {
	wall atomic.Int64
	cpu  atomic.Int64
}

// Advance moves the wall clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.wall.Add(int64(d))
}

// AdvanceCPU moves the CPU clock forward by d.
func (c *ManualClock) AdvanceCPU(d time.Duration) {
	c.cpu.Add(int64(d))
}

func (c *ManualClock) Now() time.Duration {
	return time.Duration(c.wall.Load())
}

func (c *ManualClock) CPU() time.Duration {
	return time.Duration(c.cpu.Load())
}

// Milliseconds converts d into fractional milliseconds.
func Milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
