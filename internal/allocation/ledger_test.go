package allocation

import (
	"errors"
	"sync"
	"testing"

	"github.com/getsentry/perfmetrics/internal/errorutil"
)

func TestLedger(t *testing.T) {
	type op struct {
		free bool
		addr uintptr
		size int64
	}
	tests := []struct {
		name        string
		ops         []op
		wantCurrent int64
		wantPeak    int64
		wantLen     int
	}{
		{
			name:        "alloc then free",
			ops:         []op{{addr: 0x10, size: 100}, {free: true, addr: 0x10}},
			wantCurrent: 0,
			wantPeak:    100,
			wantLen:     0,
		},
		{
			name: "peak holds the high water mark",
			ops: []op{
				{addr: 0x10, size: 100},
				{addr: 0x20, size: 50},
				{free: true, addr: 0x10},
				{addr: 0x30, size: 20},
			},
			wantCurrent: 70,
			wantPeak:    150,
			wantLen:     2,
		},
		{
			name:        "leak",
			ops:         []op{{addr: 0x10, size: 8}, {addr: 0x20, size: 8}, {free: true, addr: 0x20}},
			wantCurrent: 8,
			wantPeak:    16,
			wantLen:     1,
		},
		{
			name:        "re-register replaces size",
			ops:         []op{{addr: 0x10, size: 8}, {addr: 0x10, size: 4}},
			wantCurrent: 4,
			wantPeak:    8,
			wantLen:     1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLedger()
			for _, o := range tt.ops {
				if o.free {
					if _, err := l.Release(o.addr); err != nil {
						t.Fatalf("unexpected error: %v", err)
					}
					continue
				}
				l.Register(o.addr, o.size)
			}
			if l.Current() != tt.wantCurrent || l.Peak() != tt.wantPeak || l.Len() != tt.wantLen {
				t.Fatalf("got current=%d peak=%d len=%d, want current=%d peak=%d len=%d",
					l.Current(), l.Peak(), l.Len(), tt.wantCurrent, tt.wantPeak, tt.wantLen)
			}
		})
	}
}

func TestReleaseUnknownAddress(t *testing.T) {
	l := NewLedger()
	l.Register(0x10, 32)
	size, err := l.Release(0x99)
	if !errors.Is(err, errorutil.ErrUnknownAddress) {
		t.Fatalf("expected unknown address error, got %v", err)
	}
	if size != 0 || l.Current() != 32 || l.Peak() != 32 || l.Len() != 1 {
		t.Fatalf("unknown release should leave counters unchanged")
	}
}

func TestLedgerConcurrent(t *testing.T) {
	l := NewLedger()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				addr := uintptr(g*1000 + i + 1)
				l.Register(addr, 10)
				if _, err := l.Release(addr); err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		}(g)
	}
	wg.Wait()
	if l.Current() != 0 || l.Len() != 0 {
		t.Fatalf("got current=%d len=%d, want 0", l.Current(), l.Len())
	}
	if l.Peak() < 10 || l.Peak() > 80 {
		t.Fatalf("peak %d outside of [10, 80]", l.Peak())
	}

	l.Reset()
	if l.Peak() != 0 {
		t.Fatalf("reset should zero the peak")
	}
}

func TestLedgerSnapshot(t *testing.T) {
	l := NewLedger()
	l.Register(0x1, 40)
	l.Register(0x2, 20)
	if _, err := l.Release(0x1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if current, peak := l.Snapshot(); current != 20 || peak != 60 {
		t.Fatalf("got current=%d peak=%d, want 20 and 60", current, peak)
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; ; i++ {
				select {
				case <-stop:
					return
				default:
				}
				addr := uintptr(1000*(g+1) + i%10)
				l.Register(addr, 10)
				_, _ = l.Release(addr)
			}
		}(g)
	}
	for i := 0; i < 1000; i++ {
		current, peak := l.Snapshot()
		if current > peak || current%10 != 0 {
			close(stop)
			wg.Wait()
			t.Fatalf("inconsistent snapshot current=%d peak=%d", current, peak)
		}
	}
	close(stop)
	wg.Wait()
}
