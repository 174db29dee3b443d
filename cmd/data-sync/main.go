// Package main provides the entry point for the game log sync daemon: it
// keeps one team's game logs current in postgres on a cron schedule and,
// when a watchlist is configured, scans sportsbook lines whenever a listed
// star sits.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/injury-edge/internal/config"
	"github.com/yourusername/injury-edge/internal/database"
	"github.com/yourusername/injury-edge/internal/datasource"
	"github.com/yourusername/injury-edge/internal/health"
	"github.com/yourusername/injury-edge/internal/logger"
	"github.com/yourusername/injury-edge/internal/metrics"
	"github.com/yourusername/injury-edge/internal/repository"
	"github.com/yourusername/injury-edge/internal/scheduler"
	"github.com/yourusername/injury-edge/internal/service"
	"github.com/yourusername/injury-edge/internal/tracing"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Load AWS secrets if enabled
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Set up logging
	appLog := logger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"version":     Version,
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
		"team":        cfg.Sync.Team,
		"season":      cfg.Sync.Season,
	}).Info("Injury Edge sync service starting")

	// Configure tracing; a disabled config is a no-op
	if err := tracing.Initialize(tracing.Config{
		ServiceName: cfg.App.Name,
		Enabled:     cfg.Features.TracingEnabled,
	}, appLog); err != nil {
		appLog.WithError(err).Fatal("Failed to configure tracing")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection and schema
	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	appLog.Info("Database connection established")

	// Initialize repositories
	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize repositories")
	}

	// Initialize the game log source
	factory := datasource.NewFactory(cfg, appLog)
	source, err := factory.CreateFromConfig()
	if err != nil {
		appLog.WithError(err).Fatal("Failed to create data source")
	}
	appLog.WithField("provider", source.Name()).Info("Data source initialized")

	// Initialize services
	ingestion := service.NewGameLogIngestionService(
		source,
		repos.Player,
		repos.GameLog,
		service.NewRecordValidator(),
		nil,
		appLog,
		cfg.Sync.BatchSize,
	)
	analyzer := service.NewAbsenceAnalysisService(source, service.OptionsFromConfig(cfg), appLog)

	// Schedule the recurring jobs
	sched := scheduler.NewScheduler(ingestion, analyzer, appLog)
	if err := sched.ScheduleTeamSync(cfg.Sync.Schedule, cfg.Sync.Team, cfg.Sync.Season); err != nil {
		appLog.WithError(err).Fatal("Failed to schedule team sync")
	}
	if cfg.Scan.Enabled {
		stat := cfg.Scan.Stat
		if stat == "" {
			stat = cfg.Analysis.DefaultStat
		}
		scan := scheduler.WatchlistScan{
			Team:      cfg.Sync.Team,
			Stat:      stat,
			Season:    cfg.Sync.Season,
			LinesPath: cfg.Scan.LinesPath,
			Stars:     cfg.Scan.Stars,
		}
		if err := sched.ScheduleWatchlistScan(cfg.Scan.Schedule, scan); err != nil {
			appLog.WithError(err).Fatal("Failed to schedule watchlist scan")
		}
		appLog.WithFields(logrus.Fields{
			"stars":    cfg.Scan.Stars,
			"stat":     stat,
			"schedule": cfg.Scan.Schedule,
		}).Info("Watchlist scan scheduled")
	}

	// Expose prometheus metrics
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
		metricsServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: mux,
		}
		go func() {
			appLog.WithField("addr", metricsServer.Addr).Info("Metrics server listening")
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				appLog.WithError(err).Error("Metrics server failed")
			}
		}()
	}

	// Start health endpoints; readiness flips on after the first sync
	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Logger:      appLog,
		DB:          db,
		Source:      source,
	})
	if err := healthServer.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start health server")
	}

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Run one sync immediately so a fresh deployment has data before the
	// first scheduled run
	syncCtx, seg := tracing.StartSegment(ctx, "initial-sync")
	tracing.AddAnnotation(syncCtx, "team", cfg.Sync.Team)
	result, err := ingestion.SyncTeam(syncCtx, cfg.Sync.Team, cfg.Sync.Season)
	if err != nil {
		tracing.AddError(syncCtx, err)
		seg.Close(err)
		appLog.WithError(err).Fatal("Initial game log sync failed")
	}
	seg.Close(nil)

	appLog.WithFields(logrus.Fields{
		"team":     result.Team,
		"players":  result.PlayersSynced,
		"inserted": result.RecordsInserted,
		"skipped":  result.RecordsSkipped,
		"invalid":  result.InvalidRecords,
		"duration": result.Duration,
	}).Info("Initial game log sync complete")

	healthServer.SetReady(true)

	// Start the scheduler
	if err := sched.Start(); err != nil {
		appLog.WithError(err).Fatal("Failed to start scheduler")
	}

	appLog.WithFields(logrus.Fields{
		"jobs":     len(sched.Entries()),
		"next_run": sched.NextRun(),
	}).Info("Scheduler started; service is ready")

	// Wait for shutdown signal
	sig := <-sigChan
	appLog.WithField("signal", sig).Info("Shutdown signal received")

	// Graceful shutdown
	appLog.Info("Initiating graceful shutdown...")
	healthServer.SetReady(false)
	cancel()

	if err := sched.Stop(); err != nil {
		appLog.WithError(err).Error("Error during scheduler shutdown")
	}
	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			appLog.WithError(err).Error("Error during metrics server shutdown")
		}
		shutdownCancel()
	}

	// Give components time to cleanup
	time.Sleep(2 * time.Second)

	appLog.Info("Injury Edge sync service shut down successfully")
}
