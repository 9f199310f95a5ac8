package speedscope

import (
	"testing"
)

func TestEventedProfile(t *testing.T) {
	tests := []struct {
		name         string
		build        func(p *EventedProfile)
		wantBalanced bool
		wantEnd      uint64
	}{
		{
			name: "nested",
			build: func(p *EventedProfile) {
				p.Open(0, 0)
				p.Open(1, 2)
				p.Close(1, 5)
				p.Close(0, 9)
			},
			wantBalanced: true,
			wantEnd:      9,
		},
		{
			name: "crossed",
			build: func(p *EventedProfile) {
				p.Open(0, 0)
				p.Open(1, 2)
				p.Close(0, 5)
				p.Close(1, 9)
			},
			wantBalanced: false,
			wantEnd:      9,
		},
		{
			name: "unclosed",
			build: func(p *EventedProfile) {
				p.Open(0, 3)
			},
			wantBalanced: false,
			wantEnd:      0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := EventedProfile{Type: ProfileTypeEvented, Unit: ValueUnitNanoseconds}
			tt.build(&p)
			if got := p.Balanced(); got != tt.wantBalanced {
				t.Fatalf("Balanced() = %v, want %v", got, tt.wantBalanced)
			}
			if p.EndValue != tt.wantEnd {
				t.Fatalf("EndValue = %d, want %d", p.EndValue, tt.wantEnd)
			}
		})
	}
}
