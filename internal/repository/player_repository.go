package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/injury-edge/internal/database"
	"github.com/yourusername/injury-edge/internal/models"
)

// PostgresPlayerRepository implements PlayerRepository for PostgreSQL
type PostgresPlayerRepository struct {
	db *database.DB
}

// NewPostgresPlayerRepository creates a new player repository
func NewPostgresPlayerRepository(db *database.DB) PlayerRepository {
	return &PostgresPlayerRepository{db: db}
}

// Upsert inserts a player or refreshes an existing roster entry
func (p *PostgresPlayerRepository) Upsert(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (player_id, name, team_id, position, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (player_id) DO UPDATE
		SET name = EXCLUDED.name, team_id = EXCLUDED.team_id,
		    position = EXCLUDED.position, updated_at = now()
	`

	_, err := p.db.GetPool().Exec(ctx, query,
		player.ID, player.Name, player.TeamID, player.Position,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert player: %w", err)
	}

	return nil
}

// UpsertBatch upserts a roster in a single round trip
func (p *PostgresPlayerRepository) UpsertBatch(ctx context.Context, players []*models.Player) error {
	if len(players) == 0 {
		return nil
	}

	query := `
		INSERT INTO players (player_id, name, team_id, position, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (player_id) DO UPDATE
		SET name = EXCLUDED.name, team_id = EXCLUDED.team_id,
		    position = EXCLUDED.position, updated_at = now()
	`

	batch := &pgx.Batch{}
	for _, player := range players {
		batch.Queue(query, player.ID, player.Name, player.TeamID, player.Position)
	}

	results := p.db.GetPool().SendBatch(ctx, batch)
	defer results.Close()

	for range players {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to batch upsert players: %w", err)
		}
	}

	return nil
}

// GetByID retrieves a player by their provider ID
func (p *PostgresPlayerRepository) GetByID(ctx context.Context, playerID int64) (*models.Player, error) {
	query := `
		SELECT player_id, name, team_id, position, created_at, updated_at
		FROM players
		WHERE player_id = $1
	`

	player := &models.Player{}
	err := p.db.GetPool().QueryRow(ctx, query, playerID).Scan(
		&player.ID, &player.Name, &player.TeamID, &player.Position,
		&player.CreatedAt, &player.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return player, nil
}

// GetByTeam retrieves the stored roster for a team, ordered by name
func (p *PostgresPlayerRepository) GetByTeam(ctx context.Context, teamID int64) ([]*models.Player, error) {
	query := `
		SELECT player_id, name, team_id, position, created_at, updated_at
		FROM players
		WHERE team_id = $1
		ORDER BY name ASC
	`

	rows, err := p.db.GetPool().Query(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to query players by team: %w", err)
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		player := &models.Player{}
		err := rows.Scan(
			&player.ID, &player.Name, &player.TeamID, &player.Position,
			&player.CreatedAt, &player.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, player)
	}

	return players, rows.Err()
}

// SearchByName retrieves players whose name matches case-insensitively
func (p *PostgresPlayerRepository) SearchByName(ctx context.Context, name string) ([]*models.Player, error) {
	query := `
		SELECT player_id, name, team_id, position, created_at, updated_at
		FROM players
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY name ASC
	`

	rows, err := p.db.GetPool().Query(ctx, query, name)
	if err != nil {
		return nil, fmt.Errorf("failed to search players: %w", err)
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		player := &models.Player{}
		err := rows.Scan(
			&player.ID, &player.Name, &player.TeamID, &player.Position,
			&player.CreatedAt, &player.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, player)
	}

	return players, rows.Err()
}
