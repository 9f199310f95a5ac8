package perfmetrics

import (
	"context"
	"errors"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/getsentry/perfmetrics/internal/kafkautil"
	"github.com/getsentry/perfmetrics/internal/storageprovider"
)

type Config struct {
	Environment string `yaml:"environment" env:"PERFMETRICS_ENVIRONMENT" env-default:"development"`
	SentryDSN   string `yaml:"sentry_dsn" env:"SENTRY_DSN"`
	LogLevel    string `yaml:"log_level" env:"PERFMETRICS_LOG_LEVEL" env-default:"info"`

	// ReportDir receives the artifacts of every report, flat, like the
	// working directory does for the default session.
	ReportDir string `yaml:"report_dir" env:"PERFMETRICS_REPORT_DIR"`
	// ReportBucketURL is a gocloud bucket URL (file://, mem://, gs://).
	ReportBucketURL string `yaml:"report_bucket_url" env:"PERFMETRICS_REPORT_BUCKET_URL"`
	GCSBucket       string `yaml:"gcs_bucket" env:"PERFMETRICS_GCS_BUCKET"`
	BadgerDir       string `yaml:"badger_dir" env:"PERFMETRICS_BADGER_DIR"`
	Summary         bool   `yaml:"summary" env:"PERFMETRICS_SUMMARY" env-default:"true"`

	KafkaBrokers []string `yaml:"kafka_brokers" env:"PERFMETRICS_KAFKA_BROKERS" env-separator:","`
	KafkaTopic   string   `yaml:"kafka_topic" env:"PERFMETRICS_KAFKA_TOPIC" env-default:"perfmetrics-points"`

	DebugAddr string `yaml:"debug_addr" env:"PERFMETRICS_DEBUG_ADDR"`
}

// LoadConfig reads the YAML file at path when given, then applies the
// environment and defaults.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	return cfg, err
}

// NewSessionFromConfig opens the sinks described by cfg and returns a session
// publishing to them. Close releases them.
func NewSessionFromConfig(ctx context.Context, cfg Config, opts ...Option) (*Session, error) {
	level := zerolog.InfoLevel
	if cfg.LogLevel != "" {
		l, err := zerolog.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		level = l
	}
	base := []Option{
		WithLogger(log.Logger.Level(level)),
		WithSummary(cfg.Summary),
	}

	var opened []func() error
	fail := func(err error) (*Session, error) {
		errs := []error{err}
		for _, c := range opened {
			errs = append(errs, c())
		}
		return nil, errors.Join(errs...)
	}

	if cfg.ReportDir != "" {
		base = append(base, WithSink(&storageprovider.Local{Dir: cfg.ReportDir}))
	}
	if cfg.ReportBucketURL != "" {
		b, err := storageprovider.OpenBlob(ctx, cfg.ReportBucketURL)
		if err != nil {
			return fail(err)
		}
		opened = append(opened, b.Close)
		base = append(base, WithSessionSink(b), withCloser(b))
	}
	if cfg.GCSBucket != "" {
		g, err := storageprovider.OpenGcs(ctx, cfg.GCSBucket)
		if err != nil {
			return fail(err)
		}
		opened = append(opened, g.Close)
		base = append(base, WithSessionSink(g), withCloser(g))
	}
	if cfg.BadgerDir != "" {
		db, err := storageprovider.OpenBadger(cfg.BadgerDir)
		if err != nil {
			return fail(err)
		}
		opened = append(opened, db.Close)
		base = append(base, WithSessionSink(db), withCloser(db))
	}
	if len(cfg.KafkaBrokers) > 0 {
		w := kafkautil.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic)
		base = append(base, WithKafka(w), withCloser(w))
	}

	return NewSession(append(base, opts...)...), nil
}
