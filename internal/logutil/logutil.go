package logutil

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"cloud.google.com/go/compute/metadata"
)

func ConfigureLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.With().Caller().Stack().Logger()
	if metadata.OnGCE() {
		log.Logger = log.Hook(ErrorHook{})
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

// SetLevel sets the global level from its name. An empty name keeps the
// current level.
func SetLevel(name string) (zerolog.Level, error) {
	if name == "" {
		return zerolog.GlobalLevel(), nil
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.GlobalLevel(), err
	}
	zerolog.SetGlobalLevel(level)
	return level, nil
}

type ErrorHook struct{}

func (h ErrorHook) Run(e *zerolog.Event, level zerolog.Level, _ string) {
	e.Str("severity", level.String())
}
