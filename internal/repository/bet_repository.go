package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/injury-edge/internal/database"
	"github.com/yourusername/injury-edge/internal/models"
)

// PostgresBetRepository implements BetRepository for PostgreSQL
type PostgresBetRepository struct {
	db *database.DB
}

// NewPostgresBetRepository creates a new bet repository
func NewPostgresBetRepository(db *database.DB) BetRepository {
	return &PostgresBetRepository{db: db}
}

// Create inserts a new bet
func (b *PostgresBetRepository) Create(ctx context.Context, bet *models.Bet) error {
	query := `
		INSERT INTO bets (id, placed_at, player_name, stat, line, side, american_odds,
		                  stake, predicted, edge, confidence, result, actual_value,
		                  profit, settled_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := b.db.GetPool().Exec(ctx, query,
		bet.ID, bet.PlacedAt, bet.PlayerName, bet.Stat, bet.Line, bet.Side, bet.AmericanOdds,
		bet.Stake, bet.Predicted, bet.Edge, bet.Confidence, bet.Result, bet.ActualValue,
		bet.Profit, bet.SettledAt, bet.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to create bet: %w", err)
	}

	return nil
}

// GetByID retrieves a bet by ID
func (b *PostgresBetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Bet, error) {
	query := `
		SELECT id, placed_at, player_name, stat, line, side, american_odds, stake,
		       predicted, edge, confidence, result, actual_value, profit, settled_at, notes
		FROM bets WHERE id = $1
	`

	bet := &models.Bet{}
	err := b.db.GetPool().QueryRow(ctx, query, id).Scan(
		&bet.ID, &bet.PlacedAt, &bet.PlayerName, &bet.Stat, &bet.Line, &bet.Side, &bet.AmericanOdds,
		&bet.Stake, &bet.Predicted, &bet.Edge, &bet.Confidence, &bet.Result, &bet.ActualValue,
		&bet.Profit, &bet.SettledAt, &bet.Notes,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}

	return bet, nil
}

// Update updates a bet's settlement fields
func (b *PostgresBetRepository) Update(ctx context.Context, bet *models.Bet) error {
	query := `
		UPDATE bets SET
			result = $2, actual_value = $3, profit = $4, settled_at = $5, notes = $6
		WHERE id = $1
	`

	commandTag, err := b.db.GetPool().Exec(ctx, query,
		bet.ID, bet.Result, bet.ActualValue, bet.Profit, bet.SettledAt, bet.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to update bet: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// GetPending retrieves all unsettled bets, oldest first
func (b *PostgresBetRepository) GetPending(ctx context.Context) ([]*models.Bet, error) {
	query := `
		SELECT id, placed_at, player_name, stat, line, side, american_odds, stake,
		       predicted, edge, confidence, result, actual_value, profit, settled_at, notes
		FROM bets
		WHERE result = 'PENDING'
		ORDER BY placed_at ASC
	`

	rows, err := b.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending bets: %w", err)
	}
	defer rows.Close()

	var bets []*models.Bet
	for rows.Next() {
		bet := &models.Bet{}
		err := rows.Scan(
			&bet.ID, &bet.PlacedAt, &bet.PlayerName, &bet.Stat, &bet.Line, &bet.Side, &bet.AmericanOdds,
			&bet.Stake, &bet.Predicted, &bet.Edge, &bet.Confidence, &bet.Result, &bet.ActualValue,
			&bet.Profit, &bet.SettledAt, &bet.Notes,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, bet)
	}

	return bets, rows.Err()
}

// GetSettled retrieves all settled bets, most recent settlement first
func (b *PostgresBetRepository) GetSettled(ctx context.Context) ([]*models.Bet, error) {
	query := `
		SELECT id, placed_at, player_name, stat, line, side, american_odds, stake,
		       predicted, edge, confidence, result, actual_value, profit, settled_at, notes
		FROM bets
		WHERE result IN ('WIN', 'LOSS', 'PUSH')
		ORDER BY settled_at DESC
	`

	rows, err := b.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query settled bets: %w", err)
	}
	defer rows.Close()

	var bets []*models.Bet
	for rows.Next() {
		bet := &models.Bet{}
		err := rows.Scan(
			&bet.ID, &bet.PlacedAt, &bet.PlayerName, &bet.Stat, &bet.Line, &bet.Side, &bet.AmericanOdds,
			&bet.Stake, &bet.Predicted, &bet.Edge, &bet.Confidence, &bet.Result, &bet.ActualValue,
			&bet.Profit, &bet.SettledAt, &bet.Notes,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, bet)
	}

	return bets, rows.Err()
}

// GetByPlacedRange retrieves bets placed within a time range
func (b *PostgresBetRepository) GetByPlacedRange(ctx context.Context, start, end time.Time) ([]*models.Bet, error) {
	query := `
		SELECT id, placed_at, player_name, stat, line, side, american_odds, stake,
		       predicted, edge, confidence, result, actual_value, profit, settled_at, notes
		FROM bets
		WHERE placed_at >= $1 AND placed_at <= $2
		ORDER BY placed_at DESC
	`

	rows, err := b.db.GetPool().Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query bets by date range: %w", err)
	}
	defer rows.Close()

	var bets []*models.Bet
	for rows.Next() {
		bet := &models.Bet{}
		err := rows.Scan(
			&bet.ID, &bet.PlacedAt, &bet.PlayerName, &bet.Stat, &bet.Line, &bet.Side, &bet.AmericanOdds,
			&bet.Stake, &bet.Predicted, &bet.Edge, &bet.Confidence, &bet.Result, &bet.ActualValue,
			&bet.Profit, &bet.SettledAt, &bet.Notes,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, bet)
	}

	return bets, rows.Err()
}
