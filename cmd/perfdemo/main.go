// Command perfdemo profiles a synthetic workload with perfmetrics, publishes
// the report to the configured sinks and optionally serves it over HTTP.
package main

import (
	"context"
	"crypto/sha256"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/getsentry/perfmetrics"
	"github.com/getsentry/perfmetrics/internal/httputil"
	"github.com/getsentry/perfmetrics/internal/logutil"
)

var release string

type workload struct {
	session    *perfmetrics.Session
	iterations int
	payload    int
	logger     zerolog.Logger
	addr       atomic.Uintptr
}

func (w *workload) run(worker int) {
	defer w.session.Func("run", "worker")()
	for i := 0; i < w.iterations; i++ {
		buf := w.fetch()
		w.decode(buf)
		w.logger.Debug().Int("worker", worker).Int("iteration", i).Msg("iteration done")
	}
}

func (w *workload) fetch() []byte {
	defer w.session.Func("fetch", "io")()
	time.Sleep(time.Millisecond)
	return make([]byte, w.payload)
}

func (w *workload) decode(buf []byte) {
	defer w.session.Func("decode", "cpu")()

	addr := w.addr.Add(1)
	if err := w.session.OnAlloc(addr, int64(len(buf))); err != nil {
		w.logger.Warn().Err(err).Msg("allocation not tracked")
	}
	sum := sha256.Sum256(buf)
	for round := 0; round < 64; round++ {
		w.hash(sum[:])
	}
	// every tenth buffer is kept alive on purpose and shows up as leaked
	if addr%10 != 0 {
		_ = w.session.OnFree(addr)
	}
}

func (w *workload) hash(b []byte) {
	defer w.session.Func("hash", "cpu")()
	sum := sha256.Sum256(b)
	copy(b, sum[:])
}

func main() {
	logutil.ConfigureLogger()

	fset := flag.NewFlagSet("perfdemo", flag.ExitOnError)
	configPath := fset.String("config", "", "path to a YAML configuration file")
	workers := fset.Int("workers", 4, "number of goroutines running the workload")
	iterations := fset.Int("iterations", 50, "iterations per goroutine")
	payload := fset.Int("payload", 4096, "bytes fetched per iteration")
	verbose := fset.Bool("verbose", false, "log every iteration")
	fset.Usage = cleanenv.FUsage(fset.Output(), &perfmetrics.Config{}, nil, fset.Usage)
	_ = fset.Parse(os.Args[1:])

	cfg, err := perfmetrics.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("error reading configuration")
	}
	if _, err := logutil.SetLevel(cfg.LogLevel); err != nil {
		log.Fatal().Err(err).Msg("invalid log level")
	}

	err = sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.SentryDSN,
		Environment: cfg.Environment,
		Release:     release,
		BeforeSend:  httputil.BeforeSend(map[string]string{"component": "perfdemo"}),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("can't initialize sentry")
	}
	defer sentry.Flush(5 * time.Second)

	ctx := context.Background()
	session, err := perfmetrics.NewSessionFromConfig(ctx, cfg, perfmetrics.WithHub(sentry.CurrentHub()))
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal().Err(err).Msg("error setting up the session")
	}
	defer func() {
		if err := session.Close(); err != nil {
			sentry.CaptureException(err)
			log.Err(err).Msg("error closing sinks")
		}
	}()

	if err := session.Start(); err != nil {
		log.Fatal().Err(err).Msg("error starting the session")
	}

	threshold := zerolog.InfoLevel
	if *verbose {
		threshold = zerolog.DebugLevel
	}
	w := &workload{
		session:    session,
		iterations: *iterations,
		payload:    *payload,
		logger:     log.Logger.Sample(logutil.LevelSampler{Level: threshold}),
	}
	var wg sync.WaitGroup
	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			w.run(worker)
		}(i)
	}
	wg.Wait()

	if err := session.Stop(); err != nil {
		log.Fatal().Err(err).Msg("error stopping the session")
	}
	r, err := session.Report(ctx)
	if err != nil {
		sentry.CaptureException(err)
		log.Err(err).Msg("error publishing the report")
	}
	if r != nil {
		log.Info().
			Str("session_id", r.SessionID).
			Dur("duration", r.Duration).
			Int64("leaked_bytes", r.Allocations.Current).
			Msg("report ready")
	}

	if cfg.DebugAddr != "" {
		serve(cfg.DebugAddr, session)
	}
}

// serve exposes the report until SIGINT or SIGTERM.
func serve(addr string, session *perfmetrics.Session) {
	handler, err := perfmetrics.Handler(session)
	if err != nil {
		sentry.CaptureException(err)
		log.Err(err).Msg("error setting up the router")
		return
	}
	server := http.Server{
		Addr:              addr,
		Handler:           sentryhttp.New(sentryhttp.Options{}).Handle(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	waitForShutdown := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c

		cctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(cctx); err != nil {
			sentry.CaptureException(err)
			log.Err(err).Msg("error shutting down server")
		}

		close(waitForShutdown)
	}()

	log.Info().Str("addr", addr).Msg("serving the report")
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		sentry.CaptureException(err)
		log.Err(err).Msg("server failed")
		return
	}

	<-waitForShutdown
}
