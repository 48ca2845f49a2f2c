// Package main is the entry point for the range viewer service. It syncs
// solver range exports into a local folder, parses and aggregates them into
// a per-node strategy collection, and serves grids, stats, and JSON exports
// over HTTP.
package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rebrag/GTOLite-Helper-Script/internal/config"
	"github.com/rebrag/GTOLite-Helper-Script/internal/database"
	"github.com/rebrag/GTOLite-Helper-Script/internal/export"
	"github.com/rebrag/GTOLite-Helper-Script/internal/nodes"
	"github.com/rebrag/GTOLite-Helper-Script/internal/remote"
	"github.com/rebrag/GTOLite-Helper-Script/internal/scanner"
	"github.com/rebrag/GTOLite-Helper-Script/internal/server"
	"github.com/rebrag/GTOLite-Helper-Script/internal/store"
	"github.com/rebrag/GTOLite-Helper-Script/internal/viewer"
	"github.com/rebrag/GTOLite-Helper-Script/internal/watch"
	"github.com/rebrag/GTOLite-Helper-Script/pkg/logger"
)

// main orchestrates startup:
//  1. Load configuration from environment variables
//  2. Initialize logging
//  3. Open the build-history database (optional)
//  4. Wire the pipeline: remote sync -> scanner -> aggregator -> exports
//  5. Restore the last snapshot, then run the initial scan
//  6. Start the HTTP server and the rescan scheduler
//  7. Wait for a shutdown signal and stop gracefully
func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("data_dir", cfg.DataDir).
		Str("output_dir", cfg.OutputDir).
		Msg("Starting range viewer")

	// Build-history persistence is optional; an empty path disables it.
	var db *database.DB
	var repo *store.Repository
	if cfg.DBPath != "" {
		db, err = database.New(database.Config{Path: cfg.DBPath, Name: "ranges"})
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("Failed to open database")
		}
		defer db.Close()

		repo = store.NewRepository(db, log)
		if err := repo.Init(); err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize database schema")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Remote sync is optional; without a bucket the scan uses local files only.
	var syncer *remote.Syncer
	if cfg.Remote.Enabled() {
		syncer, err = remote.NewSyncer(ctx, cfg.Remote, cfg.DataDir, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to configure remote sync")
		}
	}

	exporter, err := export.NewExporter(cfg.OutputDir, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare export directory")
	}

	aggregator := nodes.NewAggregator(nil, log)
	sc := scanner.New(cfg.DataDir, aggregator, log)
	service := viewer.New(sc, repo, syncer, exporter, log)

	// Serve the last snapshot while the initial scan runs.
	if err := service.RestoreSnapshot(); err != nil {
		log.Warn().Err(err).Msg("Failed to restore snapshot")
	}

	report, err := service.Rescan(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Initial scan failed")
	}
	log.Info().
		Str("build_id", report.BuildID).
		Int("files", report.Files).
		Int("nodes", report.Nodes).
		Msg("Initial scan completed")

	var scheduler *watch.Scheduler
	if cfg.RescanSchedule != "" {
		scheduler = watch.New(log)
		if err := scheduler.AddJob(cfg.RescanSchedule, watch.NewRescanJob(service, log)); err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.RescanSchedule).Msg("Invalid rescan schedule")
		}
		scheduler.Start()
	}

	srv := server.New(server.Config{
		Port:    cfg.Port,
		Log:     log,
		Service: service,
		Repo:    repo,
		DB:      db,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	if scheduler != nil {
		scheduler.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	if db != nil {
		if err := db.WALCheckpoint("TRUNCATE"); err != nil {
			log.Warn().Err(err).Msg("WAL checkpoint failed")
		}
	}

	log.Info().Msg("Shutdown complete")
}
