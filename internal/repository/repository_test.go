package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yourusername/injury-edge/internal/database"
	"github.com/yourusername/injury-edge/internal/models"
)

// Integration tests run only when INJURY_EDGE_TEST_DB_HOST points at a
// reachable Postgres instance; otherwise SetupTestDB skips them.

const (
	testRepoTeamID   = int64(999100)
	testRepoPlayerID = int64(999001)
)

func setupRepos(t *testing.T) (*Repositories, *database.DB, context.Context) {
	t.Helper()

	db := database.SetupTestDB(t)
	t.Cleanup(func() { database.TeardownTestDB(t, db) })

	repos, err := NewRepositories(db)
	if err != nil {
		t.Fatalf("failed to create repositories: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	return repos, db, ctx
}

func cleanupTestRows(t *testing.T, db *database.DB, ctx context.Context) {
	t.Helper()
	t.Cleanup(func() {
		pool := db.GetPool()
		if _, err := pool.Exec(context.Background(), `DELETE FROM game_logs WHERE team_id = $1`, testRepoTeamID); err != nil {
			t.Logf("cleanup game_logs: %v", err)
		}
		if _, err := pool.Exec(context.Background(), `DELETE FROM players WHERE team_id = $1`, testRepoTeamID); err != nil {
			t.Logf("cleanup players: %v", err)
		}
	})
}

func testGameRecord(playerID int64, day int, points float64, played bool) models.GameRecord {
	gameDate := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day)
	return models.GameRecord{
		GameID:     gameDate.Format("TEST20060102"),
		PlayerID:   playerID,
		PlayerName: "Repo Test Player",
		TeamID:     testRepoTeamID,
		GameDate:   gameDate,
		Matchup:    "PHI vs. BOS",
		WinLoss:    "W",
		Season:     "2024-25",
		Played:     played,
		Minutes:    32,
		Points:     points,
		Rebounds:   8,
		Assists:    4,
	}
}

func TestPlayerRepositoryUpsert(t *testing.T) {
	repos, db, ctx := setupRepos(t)
	cleanupTestRows(t, db, ctx)

	player := &models.Player{
		ID:       testRepoPlayerID,
		Name:     "Repo Test Player",
		TeamID:   testRepoTeamID,
		Position: "C",
	}

	if err := repos.Player.Upsert(ctx, player); err != nil {
		t.Fatalf("failed to upsert player: %v", err)
	}

	retrieved, err := repos.Player.GetByID(ctx, player.ID)
	if err != nil {
		t.Fatalf("failed to retrieve player: %v", err)
	}
	if retrieved.Name != player.Name {
		t.Errorf("expected name %q, got %q", player.Name, retrieved.Name)
	}
	if retrieved.TeamID != testRepoTeamID {
		t.Errorf("expected team %d, got %d", testRepoTeamID, retrieved.TeamID)
	}

	// second upsert with changed fields must update in place
	player.Position = "F"
	if err := repos.Player.Upsert(ctx, player); err != nil {
		t.Fatalf("failed to re-upsert player: %v", err)
	}
	retrieved, err = repos.Player.GetByID(ctx, player.ID)
	if err != nil {
		t.Fatalf("failed to retrieve player after update: %v", err)
	}
	if retrieved.Position != "F" {
		t.Errorf("expected updated position F, got %q", retrieved.Position)
	}

	roster, err := repos.Player.GetByTeam(ctx, testRepoTeamID)
	if err != nil {
		t.Fatalf("failed to list roster: %v", err)
	}
	if len(roster) != 1 {
		t.Errorf("expected 1 roster entry, got %d", len(roster))
	}
}

func TestPlayerRepositoryGetByIDNotFound(t *testing.T) {
	repos, _, ctx := setupRepos(t)

	_, err := repos.Player.GetByID(ctx, 123456789012)
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGameLogRepositoryUpsertBatch(t *testing.T) {
	repos, db, ctx := setupRepos(t)
	cleanupTestRows(t, db, ctx)

	records := []models.GameRecord{
		testGameRecord(testRepoPlayerID, 0, 25, true),
		testGameRecord(testRepoPlayerID, 2, 31, true),
		testGameRecord(testRepoPlayerID, 4, 0, false),
	}

	inserted, err := repos.GameLog.UpsertBatch(ctx, records)
	if err != nil {
		t.Fatalf("failed to insert game logs: %v", err)
	}
	if inserted != 3 {
		t.Errorf("expected 3 inserted rows, got %d", inserted)
	}

	// re-syncing the same games must be a no-op
	inserted, err = repos.GameLog.UpsertBatch(ctx, records)
	if err != nil {
		t.Fatalf("failed on idempotent re-insert: %v", err)
	}
	if inserted != 0 {
		t.Errorf("expected 0 inserted rows on re-sync, got %d", inserted)
	}

	logs, err := repos.GameLog.GetByPlayer(ctx, testRepoPlayerID)
	if err != nil {
		t.Fatalf("failed to retrieve game logs: %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("expected 3 game logs, got %d", len(logs))
	}
	if !logs[0].GameDate.Before(logs[2].GameDate) {
		t.Errorf("expected chronological order, got %v before %v", logs[0].GameDate, logs[2].GameDate)
	}
	if logs[0].Points != 25 {
		t.Errorf("expected 25 points in first game, got %.1f", logs[0].Points)
	}
	if logs[2].Played {
		t.Errorf("expected third game to be a DNP")
	}

	count, err := repos.GameLog.CountByPlayer(ctx, testRepoPlayerID)
	if err != nil {
		t.Fatalf("failed to count game logs: %v", err)
	}
	if count != 3 {
		t.Errorf("expected count 3, got %d", count)
	}

	teamCount, err := repos.GameLog.CountByTeam(ctx, testRepoTeamID)
	if err != nil {
		t.Fatalf("failed to count team game logs: %v", err)
	}
	if teamCount != 3 {
		t.Errorf("expected team count 3, got %d", teamCount)
	}

	latest, err := repos.GameLog.LatestGameDate(ctx, testRepoPlayerID)
	if err != nil {
		t.Fatalf("failed to get latest game date: %v", err)
	}
	if latest.Format("2006-01-02") != "2024-11-05" {
		t.Errorf("expected latest game 2024-11-05, got %s", latest.Format("2006-01-02"))
	}

	ids, err := repos.GameLog.PlayerIDsByTeam(ctx, testRepoTeamID)
	if err != nil {
		t.Fatalf("failed to list team players: %v", err)
	}
	if len(ids) != 1 || ids[0] != testRepoPlayerID {
		t.Errorf("expected [%d], got %v", testRepoPlayerID, ids)
	}
}

func TestGameLogRepositoryLatestGameDateEmpty(t *testing.T) {
	repos, _, ctx := setupRepos(t)

	_, err := repos.GameLog.LatestGameDate(ctx, 123456789012)
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for player with no logs, got %v", err)
	}
}

func TestBetRepositoryLifecycle(t *testing.T) {
	repos, db, ctx := setupRepos(t)

	bet := &models.Bet{
		ID:           uuid.New(),
		PlacedAt:     time.Now().UTC().Truncate(time.Microsecond),
		PlayerName:   "Repo Test Player",
		Stat:         models.StatPoints,
		Line:         25.5,
		Side:         models.BetSideOver,
		AmericanOdds: -110,
		Stake:        decimal.NewFromInt(50),
		Predicted:    28.2,
		Edge:         0.12,
		Confidence:   0.61,
		Result:       models.BetResultPending,
		Profit:       decimal.Zero,
	}
	t.Cleanup(func() {
		if _, err := db.GetPool().Exec(context.Background(), `DELETE FROM bets WHERE id = $1`, bet.ID); err != nil {
			t.Logf("cleanup bets: %v", err)
		}
	})

	if err := repos.Bet.Create(ctx, bet); err != nil {
		t.Fatalf("failed to create bet: %v", err)
	}

	retrieved, err := repos.Bet.GetByID(ctx, bet.ID)
	if err != nil {
		t.Fatalf("failed to retrieve bet: %v", err)
	}
	if retrieved.Result != models.BetResultPending {
		t.Errorf("expected PENDING result, got %s", retrieved.Result)
	}
	if !retrieved.Stake.Equal(bet.Stake) {
		t.Errorf("expected stake %s, got %s", bet.Stake, retrieved.Stake)
	}
	if retrieved.SettledAt != nil {
		t.Errorf("expected nil settled_at on a pending bet")
	}

	pending, err := repos.Bet.GetPending(ctx)
	if err != nil {
		t.Fatalf("failed to list pending bets: %v", err)
	}
	if !containsBet(pending, bet.ID) {
		t.Errorf("expected pending list to contain the new bet")
	}

	// settle it
	actual := 31.0
	settledAt := time.Now().UTC().Truncate(time.Microsecond)
	retrieved.Result = models.BetResultWin
	retrieved.ActualValue = &actual
	retrieved.Profit = decimal.NewFromFloat(45.45)
	retrieved.SettledAt = &settledAt

	if err := repos.Bet.Update(ctx, retrieved); err != nil {
		t.Fatalf("failed to settle bet: %v", err)
	}

	settled, err := repos.Bet.GetSettled(ctx)
	if err != nil {
		t.Fatalf("failed to list settled bets: %v", err)
	}
	if !containsBet(settled, bet.ID) {
		t.Errorf("expected settled list to contain the bet")
	}

	pending, err = repos.Bet.GetPending(ctx)
	if err != nil {
		t.Fatalf("failed to re-list pending bets: %v", err)
	}
	if containsBet(pending, bet.ID) {
		t.Errorf("settled bet must not appear in pending list")
	}

	final, err := repos.Bet.GetByID(ctx, bet.ID)
	if err != nil {
		t.Fatalf("failed to retrieve settled bet: %v", err)
	}
	if final.ActualValue == nil || *final.ActualValue != 31.0 {
		t.Errorf("expected actual value 31.0, got %v", final.ActualValue)
	}
	if !final.Profit.Equal(decimal.NewFromFloat(45.45)) {
		t.Errorf("expected profit 45.45, got %s", final.Profit)
	}
}

func TestBetRepositoryUpdateMissing(t *testing.T) {
	repos, _, ctx := setupRepos(t)

	ghost := &models.Bet{ID: uuid.New(), Result: models.BetResultWin, Profit: decimal.Zero}
	err := repos.Bet.Update(ctx, ghost)
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating a missing bet, got %v", err)
	}
}

func containsBet(bets []*models.Bet, id uuid.UUID) bool {
	for _, b := range bets {
		if b.ID == id {
			return true
		}
	}
	return false
}
