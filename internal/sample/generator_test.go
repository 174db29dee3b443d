package sample

import (
	"context"
	"reflect"
	"testing"
)

func TestGenerateDeterministicForSeed(t *testing.T) {
	first := NewGenerator(DefaultConfig()).Generate()
	second := NewGenerator(DefaultConfig()).Generate()

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same seed produced different seasons")
	}

	cfg := DefaultConfig()
	cfg.Seed = 7
	other := NewGenerator(cfg).Generate()
	if reflect.DeepEqual(first, other) {
		t.Fatalf("different seeds produced identical seasons")
	}
}

func TestGenerateSeasonShape(t *testing.T) {
	cfg := DefaultConfig()
	records := NewGenerator(cfg).Generate()

	if len(records) != cfg.Games*5 {
		t.Fatalf("expected %d records, got %d", cfg.Games*5, len(records))
	}

	perPlayer := make(map[int64]int)
	starMissed := 0
	for _, rec := range records {
		perPlayer[rec.PlayerID]++
		if rec.TeamID != TeamID {
			t.Fatalf("record %s has wrong team %d", rec.GameID, rec.TeamID)
		}
		if rec.PlayerID == StarID && !rec.Played {
			starMissed++
		}
		if rec.PlayerID != StarID && !rec.Played {
			t.Fatalf("teammate %d has a missed game, only the star sits", rec.PlayerID)
		}
		if rec.Points < 0 || rec.Rebounds < 0 || rec.Assists < 0 {
			t.Fatalf("negative box score in game %s", rec.GameID)
		}
	}

	for id, n := range perPlayer {
		if n != cfg.Games {
			t.Errorf("player %d has %d records, expected %d", id, n, cfg.Games)
		}
	}

	// with a 40% sit rate over 40 games the star should miss a healthy
	// handful but never the whole season
	if starMissed < 5 || starMissed > 30 {
		t.Errorf("star missed %d of %d games, outside plausible range", starMissed, cfg.Games)
	}
}

func TestGenerateAbsenceLift(t *testing.T) {
	records := NewGenerator(DefaultConfig()).Generate()

	starPlayed := make(map[string]bool)
	for _, rec := range records {
		if rec.PlayerID == StarID {
			starPlayed[rec.GameID] = rec.Played
		}
	}

	var withSum, withoutSum float64
	var withN, withoutN int
	for _, rec := range records {
		if rec.PlayerID != MaxeyID {
			continue
		}
		if starPlayed[rec.GameID] {
			withSum += rec.Points
			withN++
		} else {
			withoutSum += rec.Points
			withoutN++
		}
	}

	if withN == 0 || withoutN == 0 {
		t.Fatalf("expected games in both partitions, got %d with / %d without", withN, withoutN)
	}
	if withoutSum/float64(withoutN) <= withSum/float64(withN) {
		t.Errorf("expected scoring lift without the star: with avg %.1f, without avg %.1f",
			withSum/float64(withN), withoutSum/float64(withoutN))
	}
}

func TestSourceFiltersByPlayer(t *testing.T) {
	src := NewSource(DefaultConfig())
	ctx := context.Background()

	logs, err := src.FetchPlayerGameLog(ctx, MaxeyID, "2024-25")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(logs) != DefaultConfig().Games {
		t.Fatalf("expected %d games, got %d", DefaultConfig().Games, len(logs))
	}
	for _, rec := range logs {
		if rec.PlayerID != MaxeyID {
			t.Fatalf("got record for player %d", rec.PlayerID)
		}
	}

	roster, err := src.FetchTeamRoster(ctx, TeamID, "2024-25")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(roster) != 5 {
		t.Fatalf("expected 5 roster entries, got %d", len(roster))
	}

	matches, err := src.SearchPlayers(ctx, "maxey")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != MaxeyID {
		t.Fatalf("expected the one Maxey match, got %v", matches)
	}
}

func TestDefaultLinesCoverTeammates(t *testing.T) {
	lines := DefaultLines()
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	if lines["Tyrese Maxey"] != 25.5 {
		t.Errorf("expected Maxey line 25.5, got %.1f", lines["Tyrese Maxey"])
	}
}
