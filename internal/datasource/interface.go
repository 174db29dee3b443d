package datasource

import (
	"context"
	"errors"

	"github.com/yourusername/injury-edge/internal/models"
)

// GameLogSource defines the interface for fetching player data from a stats provider
type GameLogSource interface {
	// FetchPlayerGameLog retrieves one player's game records for a season
	FetchPlayerGameLog(ctx context.Context, playerID int64, season string) ([]models.GameRecord, error)

	// FetchTeamRoster retrieves the current roster for a team
	FetchTeamRoster(ctx context.Context, teamID int64, season string) ([]models.Player, error)

	// SearchPlayers finds league players whose name contains the query
	SearchPlayers(ctx context.Context, name string) ([]models.Player, error)

	// HealthCheck reports whether the source can currently serve requests
	HealthCheck(ctx context.Context) error

	// Name returns the name of the data source
	Name() string
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded = "rate_limit_exceeded"
	ErrCodeNotFound          = "not_found"
	ErrCodeInvalidData       = "invalid_data"
	ErrCodeNetworkError      = "network_error"
	ErrCodeServerError       = "server_error"
)

var (
	// ErrCircuitOpen is returned while the provider circuit breaker is tripped
	ErrCircuitOpen = errors.New("circuit breaker open")
)

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
