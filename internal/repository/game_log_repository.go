package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/injury-edge/internal/database"
	"github.com/yourusername/injury-edge/internal/models"
)

// PostgresGameLogRepository implements GameLogRepository for PostgreSQL
type PostgresGameLogRepository struct {
	db *database.DB
}

// NewPostgresGameLogRepository creates a new game log repository
func NewPostgresGameLogRepository(db *database.DB) GameLogRepository {
	return &PostgresGameLogRepository{db: db}
}

// UpsertBatch inserts game records, skipping rows already stored. Game logs
// never change after the fact, so conflicts are ignored rather than updated.
// Returns the number of rows actually inserted.
func (g *PostgresGameLogRepository) UpsertBatch(ctx context.Context, records []models.GameRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO game_logs (
			game_id, player_id, player_name, team_id, game_date, matchup,
			win_loss, season, played, minutes, points, rebounds, assists,
			steals, blocks, turnovers, fg_pct, fg3m, plus_minus
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (game_id, player_id) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(query,
			rec.GameID, rec.PlayerID, rec.PlayerName, rec.TeamID, rec.GameDate, rec.Matchup,
			rec.WinLoss, rec.Season, rec.Played, rec.Minutes, rec.Points, rec.Rebounds, rec.Assists,
			rec.Steals, rec.Blocks, rec.Turnovers, rec.FieldGoalPct, rec.ThreePtMade, rec.PlusMinus,
		)
	}

	results := g.db.GetPool().SendBatch(ctx, batch)
	defer results.Close()

	var inserted int64
	for range records {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("failed to batch insert game logs: %w", err)
		}
		inserted += tag.RowsAffected()
	}

	return inserted, nil
}

// GetByPlayer retrieves all game records for a player in chronological order
func (g *PostgresGameLogRepository) GetByPlayer(ctx context.Context, playerID int64) ([]models.GameRecord, error) {
	query := `
		SELECT game_id, player_id, player_name, team_id, game_date, matchup,
		       win_loss, season, played, minutes, points, rebounds, assists,
		       steals, blocks, turnovers, fg_pct, fg3m, plus_minus, created_at
		FROM game_logs
		WHERE player_id = $1
		ORDER BY game_date ASC, game_id ASC
	`

	rows, err := g.db.GetPool().Query(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query game logs by player: %w", err)
	}
	defer rows.Close()

	return collectGameRecords(rows)
}

// GetByPlayerSince retrieves a player's game records on or after a date
func (g *PostgresGameLogRepository) GetByPlayerSince(ctx context.Context, playerID int64, since time.Time) ([]models.GameRecord, error) {
	query := `
		SELECT game_id, player_id, player_name, team_id, game_date, matchup,
		       win_loss, season, played, minutes, points, rebounds, assists,
		       steals, blocks, turnovers, fg_pct, fg3m, plus_minus, created_at
		FROM game_logs
		WHERE player_id = $1 AND game_date >= $2
		ORDER BY game_date ASC, game_id ASC
	`

	rows, err := g.db.GetPool().Query(ctx, query, playerID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query game logs since date: %w", err)
	}
	defer rows.Close()

	return collectGameRecords(rows)
}

// GetByTeam retrieves all game records for every player on a team
func (g *PostgresGameLogRepository) GetByTeam(ctx context.Context, teamID int64) ([]models.GameRecord, error) {
	query := `
		SELECT game_id, player_id, player_name, team_id, game_date, matchup,
		       win_loss, season, played, minutes, points, rebounds, assists,
		       steals, blocks, turnovers, fg_pct, fg3m, plus_minus, created_at
		FROM game_logs
		WHERE team_id = $1
		ORDER BY game_date ASC, game_id ASC, player_id ASC
	`

	rows, err := g.db.GetPool().Query(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to query game logs by team: %w", err)
	}
	defer rows.Close()

	return collectGameRecords(rows)
}

// PlayerIDsByTeam retrieves the distinct players with stored logs for a team
func (g *PostgresGameLogRepository) PlayerIDsByTeam(ctx context.Context, teamID int64) ([]int64, error) {
	query := `
		SELECT DISTINCT player_id
		FROM game_logs
		WHERE team_id = $1
		ORDER BY player_id ASC
	`

	rows, err := g.db.GetPool().Query(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to query team player ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan player id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// CountByPlayer returns the number of stored records for a player
func (g *PostgresGameLogRepository) CountByPlayer(ctx context.Context, playerID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM game_logs WHERE player_id = $1`

	var count int64
	if err := g.db.GetPool().QueryRow(ctx, query, playerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count game logs: %w", err)
	}

	return count, nil
}

// CountByTeam returns the number of stored records across a team
func (g *PostgresGameLogRepository) CountByTeam(ctx context.Context, teamID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM game_logs WHERE team_id = $1`

	var count int64
	if err := g.db.GetPool().QueryRow(ctx, query, teamID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count team game logs: %w", err)
	}

	return count, nil
}

// LatestGameDate returns the most recent stored game date for a player,
// so incremental syncs can fetch only what is missing
func (g *PostgresGameLogRepository) LatestGameDate(ctx context.Context, playerID int64) (time.Time, error) {
	query := `
		SELECT game_date
		FROM game_logs
		WHERE player_id = $1
		ORDER BY game_date DESC
		LIMIT 1
	`

	var latest time.Time
	err := g.db.GetPool().QueryRow(ctx, query, playerID).Scan(&latest)
	if err == pgx.ErrNoRows {
		return time.Time{}, models.ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get latest game date: %w", err)
	}

	return latest, nil
}

func collectGameRecords(rows pgx.Rows) ([]models.GameRecord, error) {
	var records []models.GameRecord
	for rows.Next() {
		var rec models.GameRecord
		err := rows.Scan(
			&rec.GameID, &rec.PlayerID, &rec.PlayerName, &rec.TeamID, &rec.GameDate, &rec.Matchup,
			&rec.WinLoss, &rec.Season, &rec.Played, &rec.Minutes, &rec.Points, &rec.Rebounds, &rec.Assists,
			&rec.Steals, &rec.Blocks, &rec.Turnovers, &rec.FieldGoalPct, &rec.ThreePtMade, &rec.PlusMinus,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game log: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
