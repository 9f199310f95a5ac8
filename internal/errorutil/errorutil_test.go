package errorutil

import (
	"errors"
	"fmt"
	"testing"
)

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "protocol", err: fmt.Errorf("perfmetrics: %w: mismatch", ErrProtocol), want: "protocol"},
		{name: "usage", err: fmt.Errorf("perfmetrics: %w: id 4", ErrUsage), want: "usage"},
		{name: "state", err: ErrState, want: "state"},
		{name: "unknown address", err: fmt.Errorf("%w: 0x10", ErrUnknownAddress), want: "unknown_address"},
		{name: "other", err: errors.New("boom"), want: "other"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Kind(tt.err); got != tt.want {
				t.Fatalf("Kind() = %q, want %q", got, tt.want)
			}
		})
	}
}
