package analysis

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/yourusername/injury-edge/internal/models"
	"github.com/yourusername/injury-edge/internal/store"
)

const (
	testStarID     = int64(203954)
	testTeammateID = int64(1630178)
	testTeamID     = int64(1610612755)
)

func testRecord(playerID int64, day int, points float64, played bool) models.GameRecord {
	return models.GameRecord{
		GameID:     fmt.Sprintf("00224%05d", day),
		PlayerID:   playerID,
		PlayerName: fmt.Sprintf("Player %d", playerID),
		TeamID:     testTeamID,
		GameDate:   time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day),
		Matchup:    "PHI vs. BOS",
		Season:     "2024-25",
		Played:     played,
		Minutes:    32,
		Points:     points,
	}
}

// absenceFixture seeds a store where the star plays the first 8 games and
// sits the last 4. The teammate plays all 12, averaging 16 points alongside
// the star and 22 without.
func absenceFixture(t *testing.T) *store.Store {
	t.Helper()
	s := store.New()

	withPoints := []float64{14, 16, 18, 16, 15, 17, 16, 16}
	withoutPoints := []float64{22, 21, 23, 22}

	for day, pts := range withPoints {
		if err := s.Add(testRecord(testStarID, day, 28, true)); err != nil {
			t.Fatalf("seed star record: %v", err)
		}
		if err := s.Add(testRecord(testTeammateID, day, pts, true)); err != nil {
			t.Fatalf("seed teammate record: %v", err)
		}
	}
	for i, pts := range withoutPoints {
		day := len(withPoints) + i
		if err := s.Add(testRecord(testStarID, day, 0, false)); err != nil {
			t.Fatalf("seed star absence: %v", err)
		}
		if err := s.Add(testRecord(testTeammateID, day, pts, true)); err != nil {
			t.Fatalf("seed teammate record: %v", err)
		}
	}
	return s
}

func TestMeasureImpactSplitsByStarPresence(t *testing.T) {
	estimator := NewImpactEstimator(absenceFixture(t))

	impact, err := estimator.MeasureImpact(testStarID, testTeammateID, models.StatPoints, 3)
	if err != nil {
		t.Fatalf("MeasureImpact failed: %v", err)
	}

	if impact.WithStarGames != 8 || impact.WithoutStarGames != 4 {
		t.Fatalf("partition sizes = %d/%d, want 8/4", impact.WithStarGames, impact.WithoutStarGames)
	}
	if !almostEqual(impact.WithStarMean, 16, 1e-9) {
		t.Fatalf("with-star mean = %v, want 16", impact.WithStarMean)
	}
	if !almostEqual(impact.WithoutStarMean, 22, 1e-9) {
		t.Fatalf("without-star mean = %v, want 22", impact.WithoutStarMean)
	}
	if !almostEqual(impact.Difference, 6, 1e-9) {
		t.Fatalf("difference = %v, want 6", impact.Difference)
	}
	if !almostEqual(impact.PercentChange, 37.5, 1e-9) {
		t.Fatalf("percent change = %v, want 37.5", impact.PercentChange)
	}
	if !impact.PValueValid {
		t.Fatalf("expected a defined p-value")
	}
	if !impact.Significant {
		t.Fatalf("expected a 6 point swing on these samples to be significant, p=%v", impact.PValue)
	}
	if !impact.HasBaseline() {
		t.Fatalf("expected a with-star baseline")
	}
}

func TestMeasureImpactMinSampleFloor(t *testing.T) {
	estimator := NewImpactEstimator(absenceFixture(t))

	// Only 4 without-star games exist.
	_, err := estimator.MeasureImpact(testStarID, testTeammateID, models.StatPoints, 5)
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestMeasureImpactUnknownStat(t *testing.T) {
	estimator := NewImpactEstimator(absenceFixture(t))

	_, err := estimator.MeasureImpact(testStarID, testTeammateID, "WINS", 3)
	if !errors.Is(err, models.ErrUnknownStat) {
		t.Fatalf("expected ErrUnknownStat, got %v", err)
	}
}

func TestMeasureImpactIgnoresTeammateMissedGames(t *testing.T) {
	s := absenceFixture(t)
	// A game where the teammate sat while the star played must not enter
	// either sample.
	if err := s.Add(testRecord(testStarID, 20, 30, true)); err != nil {
		t.Fatalf("seed star record: %v", err)
	}
	if err := s.Add(testRecord(testTeammateID, 20, 0, false)); err != nil {
		t.Fatalf("seed teammate absence: %v", err)
	}

	estimator := NewImpactEstimator(s)
	impact, err := estimator.MeasureImpact(testStarID, testTeammateID, models.StatPoints, 3)
	if err != nil {
		t.Fatalf("MeasureImpact failed: %v", err)
	}
	if impact.WithStarGames != 8 || impact.WithoutStarGames != 4 {
		t.Fatalf("teammate DNP should not join a sample, got %d/%d", impact.WithStarGames, impact.WithoutStarGames)
	}
}

func TestMeasureImpactStarDNPCountsAsAbsence(t *testing.T) {
	s := store.New()
	// The star has a record for every game but only suits up for half.
	for day := 0; day < 6; day++ {
		if err := s.Add(testRecord(testStarID, day, 25, day < 3)); err != nil {
			t.Fatalf("seed star record: %v", err)
		}
		if err := s.Add(testRecord(testTeammateID, day, float64(10+day), true)); err != nil {
			t.Fatalf("seed teammate record: %v", err)
		}
	}

	estimator := NewImpactEstimator(s)
	impact, err := estimator.MeasureImpact(testStarID, testTeammateID, models.StatPoints, 3)
	if err != nil {
		t.Fatalf("MeasureImpact failed: %v", err)
	}
	if impact.WithStarGames != 3 || impact.WithoutStarGames != 3 {
		t.Fatalf("star DNP games belong to the without sample, got %d/%d", impact.WithStarGames, impact.WithoutStarGames)
	}
}

func TestMeasureImpactZeroBaselinePercentChange(t *testing.T) {
	s := store.New()
	for day := 0; day < 4; day++ {
		if err := s.Add(testRecord(testStarID, day, 20, true)); err != nil {
			t.Fatalf("seed star record: %v", err)
		}
		if err := s.Add(testRecord(testTeammateID, day, 0, true)); err != nil {
			t.Fatalf("seed teammate record: %v", err)
		}
	}
	for day := 4; day < 8; day++ {
		if err := s.Add(testRecord(testTeammateID, day, 8, true)); err != nil {
			t.Fatalf("seed teammate record: %v", err)
		}
	}

	estimator := NewImpactEstimator(s)
	impact, err := estimator.MeasureImpact(testStarID, testTeammateID, models.StatPoints, 3)
	if err != nil {
		t.Fatalf("MeasureImpact failed: %v", err)
	}
	if impact.Difference != 8 {
		t.Fatalf("difference = %v, want 8", impact.Difference)
	}
	if impact.PercentChange != 0 {
		t.Fatalf("percent change must be 0 on a zero baseline, got %v", impact.PercentChange)
	}
}

func TestMeasureImpactIdenticalSamplesHaveNoPValue(t *testing.T) {
	s := store.New()
	for day := 0; day < 4; day++ {
		if err := s.Add(testRecord(testStarID, day, 20, true)); err != nil {
			t.Fatalf("seed star record: %v", err)
		}
		if err := s.Add(testRecord(testTeammateID, day, 16, true)); err != nil {
			t.Fatalf("seed teammate record: %v", err)
		}
	}
	for day := 4; day < 8; day++ {
		if err := s.Add(testRecord(testTeammateID, day, 22, true)); err != nil {
			t.Fatalf("seed teammate record: %v", err)
		}
	}

	estimator := NewImpactEstimator(s)
	impact, err := estimator.MeasureImpact(testStarID, testTeammateID, models.StatPoints, 3)
	if err != nil {
		t.Fatalf("MeasureImpact failed: %v", err)
	}
	if impact.PValueValid {
		t.Fatalf("zero-variance samples cannot carry a p-value")
	}
	if impact.Significant {
		t.Fatalf("undefined p-value must not be significant")
	}
}
