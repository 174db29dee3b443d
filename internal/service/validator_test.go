package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/injury-edge/internal/models"
)

func validGameRecord() models.GameRecord {
	return models.GameRecord{
		GameID:       "0022400101",
		PlayerID:     1630178,
		PlayerName:   "Tyrese Maxey",
		TeamID:       1610612755,
		GameDate:     time.Date(2024, 11, 6, 0, 0, 0, 0, time.UTC),
		Matchup:      "PHI vs. BOS",
		WinLoss:      "W",
		Season:       "2024-25",
		Played:       true,
		Minutes:      36.5,
		Points:       28,
		Rebounds:     4,
		Assists:      7,
		Steals:       1,
		Turnovers:    2,
		FieldGoalPct: 0.52,
		ThreePtMade:  3,
	}
}

func assertProblems(t *testing.T, problems []string, shouldHave string) {
	t.Helper()
	if shouldHave == "" {
		assert.Empty(t, problems, "expected a clean record, got %v", problems)
		return
	}
	require.NotEmpty(t, problems, "expected validation problems")
	assert.Contains(t, strings.Join(problems, "; "), shouldHave)
}

func TestValidateRecord(t *testing.T) {
	validator := NewRecordValidator()

	tests := []struct {
		name       string
		mutate     func(*models.GameRecord)
		shouldHave string // problem message substring to check
	}{
		{"valid record", func(r *models.GameRecord) {}, ""},
		{"missing game id", func(r *models.GameRecord) { r.GameID = "" }, "game_id is required"},
		{"zero player id", func(r *models.GameRecord) { r.PlayerID = 0 }, "player_id must be positive"},
		{"missing player name", func(r *models.GameRecord) { r.PlayerName = "" }, "player_name is required"},
		{"negative team id", func(r *models.GameRecord) { r.TeamID = -1 }, "team_id must be positive"},
		{"missing game date", func(r *models.GameRecord) { r.GameDate = time.Time{} }, "game_date is required"},
		{"future game date", func(r *models.GameRecord) { r.GameDate = time.Now().Add(72 * time.Hour) }, "game_date is in the future"},
		{"missing matchup", func(r *models.GameRecord) { r.Matchup = "" }, "matchup is required"},
		{"malformed matchup", func(r *models.GameRecord) { r.Matchup = "PHI - BOS" }, "matchup must contain"},
		{"away matchup is fine", func(r *models.GameRecord) { r.Matchup = "PHI @ BOS" }, ""},
		{"negative minutes", func(r *models.GameRecord) { r.Minutes = -1 }, "minutes out of range"},
		{"absurd minutes", func(r *models.GameRecord) { r.Minutes = 80 }, "minutes out of range"},
		{"negative points", func(r *models.GameRecord) { r.Points = -3 }, "points cannot be negative"},
		{"negative turnovers", func(r *models.GameRecord) { r.Turnovers = -1 }, "turnovers cannot be negative"},
		{"fg pct above one", func(r *models.GameRecord) { r.FieldGoalPct = 1.2 }, "fg_pct must be within"},
		{"fg pct negative", func(r *models.GameRecord) { r.FieldGoalPct = -0.1 }, "fg_pct must be within"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validGameRecord()
			tt.mutate(&rec)
			assertProblems(t, validator.ValidateRecord(&rec), tt.shouldHave)
		})
	}
}

func TestValidateRecordAcceptsMissedGame(t *testing.T) {
	validator := NewRecordValidator()

	// A sat-out game carries identity and date but an all-zero box score.
	rec := validGameRecord()
	rec.Played = false
	rec.Minutes = 0
	rec.Points = 0
	rec.Rebounds = 0
	rec.Assists = 0
	rec.Steals = 0
	rec.Turnovers = 0
	rec.FieldGoalPct = 0
	rec.ThreePtMade = 0
	rec.WinLoss = "L"

	assert.Empty(t, validator.ValidateRecord(&rec))
}

func TestValidateRecordReportsEveryProblem(t *testing.T) {
	validator := NewRecordValidator()

	rec := validGameRecord()
	rec.GameID = ""
	rec.Minutes = 80
	rec.Points = -4

	assert.Len(t, validator.ValidateRecord(&rec), 3)
}

func TestValidatePlayer(t *testing.T) {
	validator := NewRecordValidator()

	tests := []struct {
		name       string
		player     models.Player
		shouldHave string
	}{
		{"valid player", models.Player{ID: 1630178, Name: "Tyrese Maxey", TeamID: 1610612755}, ""},
		{"zero id", models.Player{Name: "Tyrese Maxey", TeamID: 1610612755}, "player id must be positive"},
		{"missing name", models.Player{ID: 1630178, TeamID: 1610612755}, "player name is required"},
		{"missing team", models.Player{ID: 1630178, Name: "Tyrese Maxey"}, "team_id must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertProblems(t, validator.ValidatePlayer(&tt.player), tt.shouldHave)
		})
	}
}
