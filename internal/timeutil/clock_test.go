package timeutil

import (
	"runtime"
	"sync"
	"testing"
	"time"
)

func TestManualClock(t *testing.T) {
	var c ManualClock
	if c.Now() != 0 || c.CPU() != 0 {
		t.Fatalf("zero clock should read 0, got %v and %v", c.Now(), c.CPU())
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Advance(time.Millisecond)
			c.AdvanceCPU(time.Microsecond)
		}()
	}
	wg.Wait()

	if got, want := c.Now(), 8*time.Millisecond; got != want {
		t.Fatalf("wall: got %v, want %v", got, want)
	}
	if got, want := c.CPU(), 8*time.Microsecond; got != want {
		t.Fatalf("cpu: got %v, want %v", got, want)
	}
}

func TestSystemClockIsMonotonic(t *testing.T) {
	c := NewSystemClock()
	a := c.Now()
	time.Sleep(time.Millisecond)
	b := c.Now()
	if b <= a {
		t.Fatalf("wall clock went backwards: %v then %v", a, b)
	}
}

func TestSystemClockCPU(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "plan9" {
		t.Skip("process CPU time is not tracked on this platform")
	}
	c := NewSystemClock()
	before := c.CPU()
	deadline := time.Now().Add(20 * time.Millisecond)
	x := 0
	for time.Now().Before(deadline) {
		x++
	}
	if after := c.CPU(); after < before {
		t.Fatalf("cpu clock went backwards: %v then %v (%d)", before, after, x)
	}
}

func TestMilliseconds(t *testing.T) {
	tests := []struct {
		name string
		in   time.Duration
		want float64
	}{
		{name: "zero", in: 0, want: 0},
		{name: "one millisecond", in: time.Millisecond, want: 1},
		{name: "fraction", in: 1500 * time.Microsecond, want: 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Milliseconds(tt.in); got != tt.want {
				t.Fatalf("Milliseconds(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
