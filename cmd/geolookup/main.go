// Command geolookup serves free-text place lookups over HTTP.
//
// The index is built in the background at startup; until it is ready
// /lookup and /healthz answer 503. A failed build stops the process.
//
// Configuration is read from the environment, optionally through a .env file:
//
//	GEOLOOKUP_ADDR              listen address (default ":8080")
//	GEOLOOKUP_DATA_DIR          raw data directory (default "./geolookup-data")
//	GEOLOOKUP_DOWNLOAD          fetch missing files from geonames (default true)
//	GEOLOOKUP_CACHE_TTL         response cache TTL, 0 disables (default 5m)
//	GEOLOOKUP_SHUTDOWN_TIMEOUT  graceful shutdown limit (default 10s)
//	LOG_LEVEL                   debug, info, warn, error
//	LOG_FORMAT                  text or json
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/andreiashu/geolookup"
)

func main() {
	_ = godotenv.Load(".env")
	logger := newLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"), os.Stderr)

	cfg, err := configFromEnv()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	os.Exit(run(cfg, logger))
}

// run serves until a signal arrives, the index build fails or the listener
// dies, and returns the process exit code.
func run(cfg config, logger *slog.Logger) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := newMetrics(reg)

	svc := geolookup.NewService(
		geolookup.WithDataDir(cfg.DataDir),
		geolookup.WithDownload(cfg.Download),
		geolookup.WithLogger(logger),
	)
	h := newHandler(svc, cfg.CacheTTL, m, logger)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h.routes(reg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	buildErr := make(chan error, 1)
	go func() {
		buildErr <- initialize(ctx, svc, m, logger)
	}()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	code := 0
wait:
	for {
		select {
		case err := <-buildErr:
			if err != nil {
				logger.Error("index build failed", "error", err)
				code = 1
				break wait
			}
			// Built; stop selecting on this channel.
			buildErr = nil
		case err := <-serveErr:
			logger.Error("server error", "error", err)
			code = 1
			break wait
		case <-ctx.Done():
			logger.Info("shutting down")
			break wait
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		code = 1
	}
	return code
}

// initialize builds the index and publishes its size.
func initialize(ctx context.Context, svc *geolookup.Service, m *metrics, logger *slog.Logger) error {
	start := time.Now()
	if err := svc.Initialize(ctx); err != nil {
		return err
	}
	idx, err := svc.Index()
	if err != nil {
		return err
	}
	m.setIndex(idx)
	logger.Info("ready", "entries", idx.Len(), "duration", time.Since(start))
	return nil
}
