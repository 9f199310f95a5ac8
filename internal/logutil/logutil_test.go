package logutil

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSetLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())

	tests := []struct {
		name    string
		in      string
		want    zerolog.Level
		wantErr bool
	}{
		{name: "warn", in: "warn", want: zerolog.WarnLevel},
		{name: "debug", in: "debug", want: zerolog.DebugLevel},
		{name: "invalid", in: "loud", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SetLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SetLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && (got != tt.want || zerolog.GlobalLevel() != tt.want) {
				t.Fatalf("SetLevel(%q) = %v, global %v, want %v", tt.in, got, zerolog.GlobalLevel(), tt.want)
			}
		})
	}
}

func TestErrorHook(t *testing.T) {
	var b bytes.Buffer
	logger := zerolog.New(&b).Hook(ErrorHook{})
	logger.Warn().Msg("careful")
	if !strings.Contains(b.String(), `"severity":"warn"`) {
		t.Fatalf("severity field missing: %s", b.String())
	}
}

func TestLevelSampler(t *testing.T) {
	var b bytes.Buffer
	logger := zerolog.New(&b).Sample(LevelSampler{Level: zerolog.WarnLevel})
	logger.Info().Msg("dropped")
	logger.Error().Msg("kept")
	out := b.String()
	if strings.Contains(out, "dropped") || !strings.Contains(out, "kept") {
		t.Fatalf("unexpected output: %s", out)
	}
}
