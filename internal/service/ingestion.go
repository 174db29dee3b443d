package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/injury-edge/internal/datasource"
	"github.com/yourusername/injury-edge/internal/metrics"
	"github.com/yourusername/injury-edge/internal/models"
	"github.com/yourusername/injury-edge/internal/repository"
	"github.com/yourusername/injury-edge/internal/store"
)

// GameLogIngestionService runs the provider-to-postgres sync workflow:
// roster fetch, player upsert, then per-player game-log fetch, validation,
// and batch upsert. Invalid rows are skipped with a warning, never fatal.
type GameLogIngestionService struct {
	source    datasource.GameLogSource
	players   repository.PlayerRepository
	gameLogs  repository.GameLogRepository
	validator *RecordValidator
	records   *store.Store
	logger    *logrus.Logger
	batchSize int
}

// SyncResult summarizes one team synchronization pass.
type SyncResult struct {
	Team            string
	TeamID          int64
	Season          string
	RosterSize      int
	PlayersSynced   int
	RecordsFetched  int
	RecordsInserted int64
	RecordsSkipped  int64
	InvalidRecords  int
	Errors          int
	Duration        time.Duration
}

// NewGameLogIngestionService creates a new ingestion service. The in-memory
// store is optional; pass nil when only postgres needs refreshing.
func NewGameLogIngestionService(
	source datasource.GameLogSource,
	players repository.PlayerRepository,
	gameLogs repository.GameLogRepository,
	validator *RecordValidator,
	records *store.Store,
	logger *logrus.Logger,
	batchSize int,
) *GameLogIngestionService {
	if validator == nil {
		validator = NewRecordValidator()
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	if batchSize <= 0 {
		batchSize = 500
	}

	return &GameLogIngestionService{
		source:    source,
		players:   players,
		gameLogs:  gameLogs,
		validator: validator,
		records:   records,
		logger:    logger,
		batchSize: batchSize,
	}
}

// SyncTeam fetches the roster for a team abbreviation and ingests every
// rostered player's game log for the season (current season when empty).
// Per-player fetch failures are counted and skipped so one flaky response
// cannot abort a whole team pass; roster failures are fatal because nothing
// can proceed without one.
func (s *GameLogIngestionService) SyncTeam(ctx context.Context, abbrev, season string) (*SyncResult, error) {
	teamID := datasource.TeamIDForAbbreviation(abbrev)
	if teamID == 0 {
		return nil, fmt.Errorf("team %q: %w", abbrev, models.ErrUnknownTeam)
	}
	if season == "" {
		season = datasource.CurrentSeason()
	}

	startTime := time.Now()
	result := &SyncResult{
		Team:   strings.ToUpper(strings.TrimSpace(abbrev)),
		TeamID: teamID,
		Season: season,
	}

	s.logger.WithFields(logrus.Fields{
		"team":   result.Team,
		"season": season,
		"source": s.source.Name(),
	}).Info("Starting team sync")

	roster, err := s.source.FetchTeamRoster(ctx, teamID, season)
	if err != nil {
		metrics.RecordSyncError()
		metrics.RecordSyncRun(result.Team, "failure")
		return result, fmt.Errorf("failed to fetch roster for %s: %w", result.Team, err)
	}
	result.RosterSize = len(roster)

	valid := make([]*models.Player, 0, len(roster))
	for i := range roster {
		if problems := s.validator.ValidatePlayer(&roster[i]); len(problems) > 0 {
			result.InvalidRecords++
			s.logger.WithFields(logrus.Fields{
				"team":     result.Team,
				"player":   roster[i].Name,
				"problems": strings.Join(problems, "; "),
			}).Warn("Skipping invalid roster entry")
			continue
		}
		valid = append(valid, &roster[i])
	}

	if err := s.players.UpsertBatch(ctx, valid); err != nil {
		metrics.RecordSyncError()
		metrics.RecordSyncRun(result.Team, "failure")
		return result, fmt.Errorf("failed to upsert roster for %s: %w", result.Team, err)
	}

	for _, player := range valid {
		if err := s.syncPlayer(ctx, player, season, result); err != nil {
			result.Errors++
			metrics.RecordSyncError()
			s.logger.WithError(err).WithFields(logrus.Fields{
				"team":      result.Team,
				"player":    player.Name,
				"player_id": player.ID,
			}).Warn("Failed to sync player")
			continue
		}
		result.PlayersSynced++
	}

	result.Duration = time.Since(startTime)

	status := "success"
	if result.Errors > 0 {
		status = "partial"
		if result.PlayersSynced == 0 {
			status = "failure"
		}
	}
	metrics.RecordSyncRun(result.Team, status)
	metrics.RecordGameLogsIngested(int(result.RecordsInserted))
	metrics.RecordInvalidRecords(result.InvalidRecords)

	s.logger.WithFields(logrus.Fields{
		"team":     result.Team,
		"season":   season,
		"players":  result.PlayersSynced,
		"fetched":  result.RecordsFetched,
		"inserted": result.RecordsInserted,
		"skipped":  result.RecordsSkipped,
		"invalid":  result.InvalidRecords,
		"errors":   result.Errors,
		"duration": result.Duration.Round(time.Millisecond).String(),
		"status":   status,
	}).Info("Team sync complete")

	return result, nil
}

// syncPlayer fetches, validates, and persists one player's game log. The
// game log endpoint carries no player name, so rows are stamped from the
// roster entry before validation.
func (s *GameLogIngestionService) syncPlayer(ctx context.Context, player *models.Player, season string, result *SyncResult) error {
	records, err := s.source.FetchPlayerGameLog(ctx, player.ID, season)
	if err != nil {
		return fmt.Errorf("failed to fetch game log: %w", err)
	}
	result.RecordsFetched += len(records)

	clean := make([]models.GameRecord, 0, len(records))
	for i := range records {
		records[i].PlayerName = player.Name
		if problems := s.validator.ValidateRecord(&records[i]); len(problems) > 0 {
			result.InvalidRecords++
			s.logger.WithFields(logrus.Fields{
				"player":   player.Name,
				"game_id":  records[i].GameID,
				"problems": strings.Join(problems, "; "),
			}).Warn("Skipping invalid game record")
			continue
		}
		clean = append(clean, records[i])
	}

	for i := 0; i < len(clean); i += s.batchSize {
		end := i + s.batchSize
		if end > len(clean) {
			end = len(clean)
		}
		chunk := clean[i:end]

		inserted, err := s.gameLogs.UpsertBatch(ctx, chunk)
		if err != nil {
			return fmt.Errorf("failed to upsert game logs: %w", err)
		}
		result.RecordsInserted += inserted
		// Re-syncing a season is idempotent; rows already present count as
		// skipped, not inserted.
		result.RecordsSkipped += int64(len(chunk)) - inserted
	}

	if s.records != nil {
		if _, _, err := s.records.AddAll(clean); err != nil {
			return fmt.Errorf("failed to refresh in-memory store: %w", err)
		}
	}
	return nil
}
