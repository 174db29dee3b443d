package models

import (
	"strings"
	"time"
)

// Stat codes follow the NBA stats provider's column names.
const (
	StatPoints       = "PTS"
	StatRebounds     = "REB"
	StatAssists      = "AST"
	StatSteals       = "STL"
	StatBlocks       = "BLK"
	StatTurnovers    = "TOV"
	StatFieldGoalPct = "FG_PCT"
	StatThreesMade   = "FG3M"
	StatMinutes      = "MIN"
)

// KnownStats lists the stat codes the engine can analyze.
var KnownStats = []string{
	StatPoints, StatRebounds, StatAssists, StatSteals, StatBlocks,
	StatTurnovers, StatFieldGoalPct, StatThreesMade, StatMinutes,
}

// IsKnownStat reports whether code is a stat the engine understands.
func IsKnownStat(code string) bool {
	for _, s := range KnownStats {
		if s == code {
			return true
		}
	}
	return false
}

// GameRecord is one player's box score in one game. Records are append-only
// and immutable once stored; (GameID, PlayerID) is unique.
type GameRecord struct {
	GameID       string    `db:"game_id" json:"game_id" validate:"required"`
	PlayerID     int64     `db:"player_id" json:"player_id" validate:"required,gt=0"`
	PlayerName   string    `db:"player_name" json:"player_name" validate:"required"`
	TeamID       int64     `db:"team_id" json:"team_id" validate:"required,gt=0"`
	GameDate     time.Time `db:"game_date" json:"game_date" validate:"required"`
	Matchup      string    `db:"matchup" json:"matchup" validate:"required"`
	WinLoss      string    `db:"win_loss" json:"win_loss"`
	Season       string    `db:"season" json:"season"`
	Played       bool      `db:"played" json:"played"`
	Minutes      float64   `db:"minutes" json:"minutes" validate:"gte=0"`
	Points       float64   `db:"points" json:"points"`
	Rebounds     float64   `db:"rebounds" json:"rebounds"`
	Assists      float64   `db:"assists" json:"assists"`
	Steals       float64   `db:"steals" json:"steals"`
	Blocks       float64   `db:"blocks" json:"blocks"`
	Turnovers    float64   `db:"turnovers" json:"turnovers"`
	FieldGoalPct float64   `db:"fg_pct" json:"fg_pct"`
	ThreePtMade  float64   `db:"fg3_made" json:"fg3_made"`
	PlusMinus    float64   `db:"plus_minus" json:"plus_minus"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// StatValue returns the named stat for this record. The second return is
// false when the stat code is unknown or the player did not play, so callers
// never see a placeholder value for a missing performance.
func (r *GameRecord) StatValue(stat string) (float64, bool) {
	if !r.Played {
		return 0, false
	}
	switch stat {
	case StatPoints:
		return r.Points, true
	case StatRebounds:
		return r.Rebounds, true
	case StatAssists:
		return r.Assists, true
	case StatSteals:
		return r.Steals, true
	case StatBlocks:
		return r.Blocks, true
	case StatTurnovers:
		return r.Turnovers, true
	case StatFieldGoalPct:
		return r.FieldGoalPct, true
	case StatThreesMade:
		return r.ThreePtMade, true
	case StatMinutes:
		return r.Minutes, true
	}
	return 0, false
}

// IsHomeGame reports whether the record's matchup denotes a home game.
// The provider encodes home as "PHI vs. BOS" and away as "PHI @ BOS".
func (r *GameRecord) IsHomeGame() bool {
	return strings.Contains(r.Matchup, "vs.")
}

// Player is a roster entry from the stats provider.
type Player struct {
	ID        int64     `db:"id" json:"id" validate:"required,gt=0"`
	Name      string    `db:"name" json:"name" validate:"required"`
	TeamID    int64     `db:"team_id" json:"team_id" validate:"required,gt=0"`
	Position  string    `db:"position" json:"position"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
