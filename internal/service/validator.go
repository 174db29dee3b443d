package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/yourusername/injury-edge/internal/models"
)

// maxGameMinutes bounds a single box score line. Regulation is 48 minutes;
// quadruple overtime pushes the realistic ceiling toward 70.
const maxGameMinutes = 70

// RecordValidator sanity-checks provider rows before they are persisted.
type RecordValidator struct{}

// NewRecordValidator creates a new record validator
func NewRecordValidator() *RecordValidator {
	return &RecordValidator{}
}

// ValidateRecord validates a game record for required fields and constraints.
// It returns one message per violation; an empty slice means the record is
// storable.
func (v *RecordValidator) ValidateRecord(rec *models.GameRecord) []string {
	var errors []string

	if rec.GameID == "" {
		errors = append(errors, "game_id is required")
	}

	if rec.PlayerID <= 0 {
		errors = append(errors, fmt.Sprintf("player_id must be positive, got %d", rec.PlayerID))
	}

	if rec.PlayerName == "" {
		errors = append(errors, "player_name is required")
	}

	if rec.TeamID <= 0 {
		errors = append(errors, fmt.Sprintf("team_id must be positive, got %d", rec.TeamID))
	}

	if rec.GameDate.IsZero() {
		errors = append(errors, "game_date is required")
	} else if rec.GameDate.After(time.Now().Add(24 * time.Hour)) {
		errors = append(errors, fmt.Sprintf("game_date is in the future: %s", rec.GameDate.Format("2006-01-02")))
	}

	if rec.Matchup == "" {
		errors = append(errors, "matchup is required")
	} else if !strings.Contains(rec.Matchup, "vs.") && !strings.Contains(rec.Matchup, "@") {
		errors = append(errors, fmt.Sprintf("matchup must contain \"vs.\" or \"@\", got %q", rec.Matchup))
	}

	if rec.Minutes < 0 || rec.Minutes > maxGameMinutes {
		errors = append(errors, fmt.Sprintf("minutes out of range (0-%d), got %.1f", maxGameMinutes, rec.Minutes))
	}

	counting := []struct {
		field string
		value float64
	}{
		{"points", rec.Points},
		{"rebounds", rec.Rebounds},
		{"assists", rec.Assists},
		{"steals", rec.Steals},
		{"blocks", rec.Blocks},
		{"turnovers", rec.Turnovers},
		{"fg3_made", rec.ThreePtMade},
	}
	for _, c := range counting {
		if c.value < 0 {
			errors = append(errors, fmt.Sprintf("%s cannot be negative, got %.1f", c.field, c.value))
		}
	}

	if rec.FieldGoalPct < 0 || rec.FieldGoalPct > 1 {
		errors = append(errors, fmt.Sprintf("fg_pct must be within [0,1], got %.3f", rec.FieldGoalPct))
	}

	return errors
}

// ValidatePlayer validates a roster entry for required fields
func (v *RecordValidator) ValidatePlayer(player *models.Player) []string {
	var errors []string

	if player.ID <= 0 {
		errors = append(errors, fmt.Sprintf("player id must be positive, got %d", player.ID))
	}

	if player.Name == "" {
		errors = append(errors, "player name is required")
	}

	if player.TeamID <= 0 {
		errors = append(errors, fmt.Sprintf("team_id must be positive, got %d", player.TeamID))
	}

	return errors
}
