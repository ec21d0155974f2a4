// Command httpd runs the review analysis HTTP service.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/BRANOPODCAST/ReviewScope/internal/analyzer"
	"github.com/BRANOPODCAST/ReviewScope/internal/api"
	"github.com/BRANOPODCAST/ReviewScope/internal/config"
	"github.com/BRANOPODCAST/ReviewScope/internal/database"
	"github.com/BRANOPODCAST/ReviewScope/internal/logging"
	"github.com/BRANOPODCAST/ReviewScope/internal/pipeline"
	"github.com/BRANOPODCAST/ReviewScope/internal/ratelimit"
	"github.com/BRANOPODCAST/ReviewScope/internal/reasoning"
	"github.com/BRANOPODCAST/ReviewScope/internal/telemetry"
)

const shutdownTimeout = 30 * time.Second

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logging.Must(logging.Config{Level: "info"}).Fatal("Failed to load configuration", logging.Error(err))
	}

	logger := logging.Must(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Service.Debug,
	})
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting reviewscope HTTP server",
		logging.String("version", cfg.Service.Version),
		logging.Int("port", cfg.Service.Port),
		logging.Bool("debug", cfg.Service.Debug),
	)

	tp := telemetry.NewProvider()

	// Optional batch store. Without a DSN every result is inline-only.
	var db *sqlx.DB
	var batches *database.BatchRepository
	if cfg.Database.DSN != "" {
		db, err = database.NewPostgresConnection(cfg.Database.DSN)
		if err != nil {
			logger.Fatal("Failed to connect to database", logging.Error(err))
		}
		defer func() { _ = db.Close() }()
		batches = database.NewBatchRepository(db)
		logger.Info("Batch store connected")
	} else {
		logger.Info("No database configured, running stateless")
	}

	client := reasoning.NewClient(reasoning.Config{
		BaseURL:        cfg.AI.BaseURL,
		Model:          cfg.AI.Model,
		APIKey:         cfg.AI.APIKey,
		Timeout:        cfg.AI.Timeout,
		RequestsPerSec: cfg.AI.RequestsPerSec,
	}, logger)

	limiter := ratelimit.New(
		ratelimit.WithQuota(cfg.RateLimit.Quota),
		ratelimit.WithWindow(cfg.RateLimit.Window),
	)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go limiter.Run(sweepCtx, cfg.RateLimit.SweepInterval)

	service := analyzer.NewService(
		pipeline.New(client, tp, logger),
		limiter,
		tp,
		logger,
	)

	handler := api.NewHandler(service, batchStore(batches), logger)
	server := api.NewServer(handler, api.ServerConfig{
		Port:  cfg.Service.Port,
		Debug: cfg.Service.Debug,
	}, api.RouterConfig{
		ServiceName: cfg.Service.Name,
		Version:     cfg.Service.Version,
		DB:          dbPinger(db),
		Telemetry:   tp,
	}, logger)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			logger.Fatal("Server error", logging.Error(err))
		}
	case sig := <-shutdown:
		logger.Info("Shutdown signal received", logging.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Fatal("Graceful shutdown failed", logging.Error(err))
		}
		logger.Info("Server stopped gracefully")
	}
}

// dbPinger keeps the readiness probe's dependency nil when no database is
// configured; a typed nil *sqlx.DB would otherwise read as present.
func dbPinger(db *sqlx.DB) api.DBPinger {
	if db == nil {
		return nil
	}
	return db
}

// batchStore applies the same typed-nil guard for the batch repository.
func batchStore(r *database.BatchRepository) api.BatchStore {
	if r == nil {
		return nil
	}
	return r
}
