/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the payroll engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, then environment, then flags)
  2. Initialize the store (SQLite or PostgreSQL)
  3. Load the statutory policy (defaults, optionally overlaid by POLICY_FILE)
  4. Wire the engine, holiday feed and assistant sessions
  5. Configure HTTP router and start the holiday sync scheduler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides APP_PORT)
  -db      SQLite database path (overrides DB_PATH)
           Use ":memory:" for in-memory database

ENVIRONMENT:
  APP_PORT, APP_ENV, LOG_LEVEL, CORS_ALLOWED_ORIGINS
  DB_DRIVER (sqlite|postgres), DB_PATH, DATABASE_URL
  HOLIDAY_ICS_URL, HOLIDAY_SYNC_INTERVAL, HOLIDAY_CACHE_TTL
  SESSION_MAX_HISTORY, SESSION_TTL, SESSION_MAX_COUNT
  POLICY_FILE

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the holiday sync scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

SEE ALSO:
  - config/config.go: Environment variables and defaults
  - api/server.go: Router configuration
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/payroll-engine/api"
	"github.com/warp/payroll-engine/assistant"
	"github.com/warp/payroll-engine/config"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/holiday"
	"github.com/warp/payroll-engine/labor"
	"github.com/warp/payroll-engine/store/postgres"
	"github.com/warp/payroll-engine/store/sqlite"
)

type store interface {
	api.Store
	Close() error
}

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Flags
	port := flag.Int("port", cfg.App.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.Database.Path, "SQLite database path")
	flag.Parse()
	cfg.App.Port = *port
	cfg.Database.Path = *dbPath

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	// Initialize store
	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer st.Close()

	policy := labor.DefaultPolicy()
	if cfg.PolicyFile != "" {
		policy, err = factory.NewPolicyFactory().LoadFile(cfg.PolicyFile)
		if err != nil {
			return fmt.Errorf("load policy: %w", err)
		}
		logger.Info("policy loaded", "file", cfg.PolicyFile, "law_version", policy.LawVersion)
	}

	// Stored holidays are the calendar; the feed only fills the store.
	engine := labor.NewEngine(st, st, policy)
	engine.Results = st
	engine.Logger = logger

	sessions := assistant.NewSessions(cfg.Session.MaxCount, cfg.Session.MaxHistory, cfg.Session.TTL)
	handler := api.NewHandler(st, engine, sessions, logger)

	var scheduler *api.HolidaySyncScheduler
	if cfg.Holiday.ICSURL != "" {
		feed := holiday.NewProvider(cfg.Holiday.ICSURL, cfg.Holiday.CacheTTL, logger)
		handler.Feed = feed
		scheduler = api.NewHolidaySyncScheduler(feed, st, logger)
		scheduler.Interval = cfg.Holiday.SyncInterval
		scheduler.Start()
	} else {
		logger.Warn("HOLIDAY_ICS_URL not set, holiday sync disabled; only manual holidays apply")
	}

	router := api.NewRouter(handler, cfg.App.CORSOrigins, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			"port", cfg.App.Port,
			"env", cfg.App.Env,
			"db_driver", cfg.Database.Driver,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info("shutting down server")
	if scheduler != nil {
		scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: api.LogSchema.ReplaceAttr,
	}
	var h slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.IsProduction() {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(h).With(
		slog.String("app", "payroll-engine"),
		slog.String("env", cfg.App.Env),
	)
}

func openStore(cfg *config.Config) (store, error) {
	switch cfg.Database.Driver {
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return postgres.New(ctx, cfg.Database.URL)
	case "sqlite":
		return sqlite.New(cfg.Database.Path)
	}
	return nil, fmt.Errorf("%w: unknown DB_DRIVER %q", generic.ErrInvalidInput, cfg.Database.Driver)
}
