/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the outlet payroll console server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env + environment)
  2. Initialize the zap logger
  3. Parse command-line flags (override config)
  4. Initialize SQLite store
  5. Create the shift report client (if PROVIDER_BASE_URL is set)
  6. Create API handler and router
  7. Start the sync scheduler (if SYNC_ENABLED)
  8. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: APP_PORT or 8080)
  -db      SQLite database path (default: DB_PATH or payroll.db)
           Use ":memory:" for in-memory database

ENVIRONMENT:
  APP_PORT, APP_ENV, LOG_LEVEL, DB_PATH
  OVERTIME_THRESHOLD, PAYROLL_TIMEZONE
  PROVIDER_BASE_URL, PROVIDER_TOKEN, PROVIDER_TIMEOUT
  SYNC_ENABLED, SYNC_INTERVAL, SYNC_LOOKBACK_DAYS, SYNC_OUTLETS (brand:outlet,...)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the sync scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

EXAMPLES:
  ./server -db="./data/payroll.db"
  ./server -db=":memory:" -port=3000

SEE ALSO:
  - config/config.go: Environment variables
  - api/server.go: Router configuration
  - api/scheduler.go: Provider sync
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/warp/outlet-payroll/api"
	"github.com/warp/outlet-payroll/config"
	"github.com/warp/outlet-payroll/payroll"
	"github.com/warp/outlet-payroll/provider"
	"github.com/warp/outlet-payroll/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	// Flags
	port := flag.Int("port", cfg.App.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.Database.Path, "SQLite database path")
	flag.Parse()

	zone, err := payroll.LoadZone(cfg.Payroll.Timezone)
	if err != nil {
		logger.Fatal("invalid timezone", zap.String("timezone", cfg.Payroll.Timezone), zap.Error(err))
	}

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.String("path", *dbPath), zap.Error(err))
	}
	defer store.Close()

	opts := []api.HandlerOption{
		api.WithZone(zone),
		api.WithThreshold(cfg.Payroll.OvertimeThreshold),
	}

	var client *provider.Client
	if cfg.Provider.BaseURL != "" {
		client = provider.NewClient(cfg.Provider.BaseURL, cfg.Provider.Token,
			provider.WithTimeout(cfg.Provider.Timeout),
			provider.WithZone(zone),
		)
		opts = append(opts, api.WithProvider(client))
	}

	handler := api.NewHandler(store, opts...)
	router := api.NewRouter(handler, api.RouterOptions{AccessLog: true})

	var scheduler *api.SyncScheduler
	if cfg.Sync.Enabled && client != nil {
		targets := make([]api.SyncTarget, len(cfg.Sync.Outlets))
		for i, o := range cfg.Sync.Outlets {
			targets[i] = api.SyncTarget{BrandID: o.BrandID, OutletID: o.OutletID}
		}
		scheduler = api.NewSyncScheduler(client, store, targets)
		scheduler.Interval = cfg.Sync.Interval
		scheduler.LookbackDays = cfg.Sync.LookbackDays
		scheduler.Zone = zone
		scheduler.Start()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.Int("port", *port),
			zap.String("db", *dbPath),
			zap.String("env", cfg.App.Env),
			zap.String("timezone", zone.Location().String()),
			zap.Duration("overtime_threshold", cfg.Payroll.OvertimeThreshold),
			zap.String("overtime_policy", string(payroll.OvertimePerShift)),
			zap.Bool("provider", client != nil))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	if scheduler != nil {
		scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("server stopped")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	}
	level, err := zapcore.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}
