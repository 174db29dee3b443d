// Package scheduler runs the periodic game log sync and watchlist scan jobs.
package scheduler

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/injury-edge/internal/analysis"
	"github.com/yourusername/injury-edge/internal/service"
)

const (
	// syncJobTimeout bounds one team sync pass. Roster plus game logs for a
	// full roster at the provider's request pacing finishes well inside it.
	syncJobTimeout = 30 * time.Minute

	// scanJobTimeout bounds one watchlist scan across all configured stars.
	scanJobTimeout = 10 * time.Minute
)

// WatchlistScan describes a scheduled opportunity scan over one team's stars.
// The lines file is re-read on every run so line moves are picked up without
// a restart.
type WatchlistScan struct {
	Team      string
	Stat      string
	Season    string
	LinesPath string
	Stars     []string
}

// Scheduler manages the cron jobs of the sync daemon.
type Scheduler struct {
	cron            *cron.Cron
	ingestion       *service.GameLogIngestionService
	analysis        *service.AbsenceAnalysisService
	logger          *logrus.Logger
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	gracefulTimeout time.Duration
}

// NewScheduler creates a scheduler over the ingestion and analysis services.
// The analysis service may be nil when no watchlist scan will be scheduled.
func NewScheduler(ingestion *service.GameLogIngestionService, analysisSvc *service.AbsenceAnalysisService, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	adapter := cronLogger{logger: logger}

	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(adapter),
			cron.WithChain(cron.Recover(adapter)),
		),
		ingestion:       ingestion,
		analysis:        analysisSvc,
		logger:          logger,
		jobIDs:          make([]cron.EntryID, 0),
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleTeamSync schedules a recurring roster and game log sync for one team.
func (s *Scheduler) ScheduleTeamSync(cronExpression, team, season string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), syncJobTimeout)
		defer cancel()
		s.runTeamSync(ctx, team, season)
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add sync job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"cron": cronExpression,
		"team": team,
	}).Info("Scheduled team game log sync")

	return nil
}

// ScheduleWatchlistScan schedules a recurring opportunity scan for the
// configured stars. It requires an analysis service and a lines file.
func (s *Scheduler) ScheduleWatchlistScan(cronExpression string, scan WatchlistScan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if s.analysis == nil {
		return fmt.Errorf("watchlist scan requires an analysis service")
	}
	if len(scan.Stars) == 0 {
		return fmt.Errorf("watchlist scan requires at least one star")
	}
	if scan.LinesPath == "" {
		return fmt.Errorf("watchlist scan requires a lines file")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), scanJobTimeout)
		defer cancel()
		s.runWatchlistScan(ctx, scan)
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add scan job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"cron":  cronExpression,
		"team":  scan.Team,
		"stars": len(scan.Stars),
		"lines": scan.LinesPath,
	}).Info("Scheduled watchlist opportunity scan")

	return nil
}

func (s *Scheduler) runTeamSync(ctx context.Context, team, season string) {
	s.logger.WithFields(logrus.Fields{
		"team":   team,
		"season": season,
	}).Info("Starting scheduled game log sync")

	result, err := s.ingestion.SyncTeam(ctx, team, season)
	if err != nil {
		s.logger.WithError(err).WithField("team", team).Error("Scheduled game log sync failed")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"team":     result.Team,
		"players":  result.PlayersSynced,
		"inserted": result.RecordsInserted,
		"skipped":  result.RecordsSkipped,
		"invalid":  result.InvalidRecords,
		"errors":   result.Errors,
		"duration": result.Duration.String(),
	}).Info("Scheduled game log sync completed")
}

func (s *Scheduler) runWatchlistScan(ctx context.Context, scan WatchlistScan) {
	data, err := os.ReadFile(scan.LinesPath)
	if err != nil {
		s.logger.WithError(err).WithField("path", scan.LinesPath).Error("Failed to read lines file for watchlist scan")
		return
	}

	lines, err := analysis.ParseLineBook(data)
	if err != nil {
		s.logger.WithError(err).WithField("path", scan.LinesPath).Error("Failed to parse lines file for watchlist scan")
		return
	}

	for _, star := range scan.Stars {
		report, err := s.analysis.Analyze(ctx, star, scan.Team, scan.Stat, scan.Season, lines)
		if err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"star": star,
				"team": scan.Team,
			}).Error("Watchlist scan failed for star")
			continue
		}

		if len(report.Opportunities) == 0 {
			s.logger.WithFields(logrus.Fields{
				"star": report.Star.Name,
				"team": report.Team,
				"stat": report.Stat,
			}).Info("Watchlist scan found no opportunities")
			continue
		}

		for _, opp := range report.Opportunities {
			fields := logrus.Fields{
				"star":           report.Star.Name,
				"player":         opp.PlayerName,
				"stat":           opp.Stat,
				"line":           opp.Line,
				"prediction":     opp.Prediction,
				"recommendation": opp.Recommendation,
				"edge":           opp.Edge,
				"confidence":     opp.Confidence,
			}
			if opp.Stake != nil {
				fields["stake_fraction"] = opp.Stake.Conservative
			}
			s.logger.WithFields(fields).Info("Betting opportunity")
		}
	}
}

// Start starts the scheduler.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs up to the
// graceful timeout.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	stopCtx := s.cron.Stop()
	s.isRunning = false

	select {
	case <-stopCtx.Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-time.After(s.gracefulTimeout):
		return fmt.Errorf("scheduler stop timed out after %s with jobs still running", s.gracefulTimeout)
	}
}

// IsRunning returns whether the scheduler is currently running.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns the earliest upcoming job time, or the zero time when
// nothing is scheduled.
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if !entry.Valid() {
			continue
		}
		if nextRun.IsZero() || entry.Next.Before(nextRun) {
			nextRun = entry.Next
		}
	}

	return nextRun
}

// Entries returns the scheduled cron entries.
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			entries = append(entries, entry)
		}
	}

	return entries
}

// cronLogger adapts logrus to the cron.Logger interface. Cron's own
// schedule chatter stays at debug level.
type cronLogger struct {
	logger *logrus.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.WithFields(cronFields(keysAndValues)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.WithFields(cronFields(keysAndValues)).WithError(err).Error(msg)
}

func cronFields(keysAndValues []interface{}) logrus.Fields {
	fields := logrus.Fields{"component": "cron"}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}
