// main is the entry point of the school records HTTP server.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file
//  2. Initialise the logger
//  3. Open (and migrate) the SQLite database
//  4. Build the service and register all HTTP routes
//  5. Start the HTTP server in a separate goroutine
//  6. Block the main goroutine until an OS signal (Ctrl+C / kill) arrives
//  7. Gracefully shut down: finish in-flight requests, close the database
//
// RUNNING THE SERVER:
//
//	go run ./cmd/school-records --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/school-records
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aanand-mishra/school-records/internal/config"
	"github.com/aanand-mishra/school-records/internal/http/router"
	"github.com/aanand-mishra/school-records/internal/logger"
	"github.com/aanand-mishra/school-records/internal/service"
	"github.com/aanand-mishra/school-records/internal/storage/sqlite"
)

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	log := logger.New(cfg.Env, cfg.Log.Level, cfg.Log.Format)

	log.Info().
		Str("env", cfg.Env).
		Str("version", "1.0.0").
		Msg("starting school-records")

	// ── 3. Initialise Storage (Database) ──────────────────────────────────
	// sqlite.New opens the file and applies the schema migrations. The
	// single connection stays open until shutdown.
	store, err := sqlite.New(cfg)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialise storage")
		os.Exit(1)
	}

	log.Info().Str("path", cfg.StoragePath).Msg("storage initialised")

	// ── 4. Service + Routes ───────────────────────────────────────────────
	svc := service.New(store, log)
	handler := router.New(svc, cfg.HTTPServer.AllowedOrigins, log)

	server := &http.Server{
		Addr:    cfg.HTTPServer.Addr,
		Handler: handler,

		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	// ── 5. Start Server in a Goroutine ────────────────────────────────────
	// ListenAndServe returns http.ErrServerClosed when Shutdown() is
	// called. That's expected, so it is not reported.
	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("address", cfg.HTTPServer.Addr).Msg("server started")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// ── 6. Wait for Shutdown Signal ───────────────────────────────────────
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	exitCode := 0
	select {
	case <-done:
		log.Info().Msg("shutdown signal received, stopping server...")
	case err := <-serverErr:
		log.Error().Err(err).Msg("server encountered an error")
		exitCode = 1
	}

	// ── 7. Graceful Shutdown ──────────────────────────────────────────────
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("failed to shutdown server gracefully")
		exitCode = 1
	}

	if err := store.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close storage")
		exitCode = 1
	}

	log.Info().Msg("server stopped")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
