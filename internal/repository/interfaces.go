package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/injury-edge/internal/models"
)

// PlayerRepository defines the interface for roster data access
type PlayerRepository interface {
	Upsert(ctx context.Context, player *models.Player) error
	UpsertBatch(ctx context.Context, players []*models.Player) error
	GetByID(ctx context.Context, playerID int64) (*models.Player, error)
	GetByTeam(ctx context.Context, teamID int64) ([]*models.Player, error)
	SearchByName(ctx context.Context, name string) ([]*models.Player, error)
}

// GameLogRepository defines the interface for box score data access.
// Game logs are append-only; re-syncing a season must be idempotent.
type GameLogRepository interface {
	UpsertBatch(ctx context.Context, records []models.GameRecord) (int64, error)
	GetByPlayer(ctx context.Context, playerID int64) ([]models.GameRecord, error)
	GetByPlayerSince(ctx context.Context, playerID int64, since time.Time) ([]models.GameRecord, error)
	GetByTeam(ctx context.Context, teamID int64) ([]models.GameRecord, error)
	PlayerIDsByTeam(ctx context.Context, teamID int64) ([]int64, error)
	CountByPlayer(ctx context.Context, playerID int64) (int64, error)
	CountByTeam(ctx context.Context, teamID int64) (int64, error)
	LatestGameDate(ctx context.Context, playerID int64) (time.Time, error)
}

// BetRepository defines the interface for bet ledger data access
type BetRepository interface {
	Create(ctx context.Context, bet *models.Bet) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Bet, error)
	Update(ctx context.Context, bet *models.Bet) error
	GetPending(ctx context.Context) ([]*models.Bet, error)
	GetSettled(ctx context.Context) ([]*models.Bet, error)
	GetByPlacedRange(ctx context.Context, start, end time.Time) ([]*models.Bet, error)
}
