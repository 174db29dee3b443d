package database

import (
	"context"
	"fmt"

	"github.com/yourusername/injury-edge/internal/config"
)

// schemaDDL creates the tables the application persists to. Statements are
// idempotent so startup can run them unconditionally.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS players (
		player_id  BIGINT PRIMARY KEY,
		name       TEXT NOT NULL,
		team_id    BIGINT NOT NULL,
		position   TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_players_team ON players (team_id)`,

	`CREATE TABLE IF NOT EXISTS game_logs (
		game_id     TEXT NOT NULL,
		player_id   BIGINT NOT NULL,
		player_name TEXT NOT NULL,
		team_id     BIGINT NOT NULL,
		game_date   DATE NOT NULL,
		matchup     TEXT NOT NULL DEFAULT '',
		win_loss    TEXT NOT NULL DEFAULT '',
		season      TEXT NOT NULL DEFAULT '',
		played      BOOLEAN NOT NULL,
		minutes     DOUBLE PRECISION NOT NULL DEFAULT 0,
		points      DOUBLE PRECISION NOT NULL DEFAULT 0,
		rebounds    DOUBLE PRECISION NOT NULL DEFAULT 0,
		assists     DOUBLE PRECISION NOT NULL DEFAULT 0,
		steals      DOUBLE PRECISION NOT NULL DEFAULT 0,
		blocks      DOUBLE PRECISION NOT NULL DEFAULT 0,
		turnovers   DOUBLE PRECISION NOT NULL DEFAULT 0,
		fg_pct      DOUBLE PRECISION NOT NULL DEFAULT 0,
		fg3m        DOUBLE PRECISION NOT NULL DEFAULT 0,
		plus_minus  DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (game_id, player_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_game_logs_player_date ON game_logs (player_id, game_date)`,
	`CREATE INDEX IF NOT EXISTS idx_game_logs_team ON game_logs (team_id)`,

	`CREATE TABLE IF NOT EXISTS bets (
		id           UUID PRIMARY KEY,
		placed_at    TIMESTAMPTZ NOT NULL,
		player_name  TEXT NOT NULL,
		stat         TEXT NOT NULL,
		line         DOUBLE PRECISION NOT NULL,
		side         TEXT NOT NULL,
		american_odds INTEGER NOT NULL,
		stake        NUMERIC(12,2) NOT NULL,
		predicted    DOUBLE PRECISION NOT NULL DEFAULT 0,
		edge         DOUBLE PRECISION NOT NULL DEFAULT 0,
		confidence   DOUBLE PRECISION NOT NULL DEFAULT 0,
		result       TEXT NOT NULL,
		actual_value DOUBLE PRECISION,
		profit       NUMERIC(12,2) NOT NULL DEFAULT 0,
		settled_at   TIMESTAMPTZ,
		notes        TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bets_result ON bets (result)`,
	`CREATE INDEX IF NOT EXISTS idx_bets_placed_at ON bets (placed_at)`,
}

// EnsureSchema creates any missing tables and indexes
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, ddl := range schemaDDL {
		if _, err := db.pool.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}

// Initialize creates a database connection pool and bootstraps the schema
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
