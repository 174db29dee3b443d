package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/injury-edge/internal/analysis"
	"github.com/yourusername/injury-edge/internal/models"
	"github.com/yourusername/injury-edge/internal/sample"
	"github.com/yourusername/injury-edge/internal/store"
)

func newAnalysisService(source *sample.Source) *AbsenceAnalysisService {
	return NewAbsenceAnalysisService(source, AnalysisOptions{}, quietLogger())
}

func sampleLineBook() *analysis.LineBook {
	book := analysis.NewLineBook()
	for name, line := range sample.DefaultLines() {
		book.SetByName(name, line)
	}
	return book
}

func sampleStore(t *testing.T) (*store.Store, models.Player) {
	t.Helper()
	src := sample.NewSource(sample.DefaultConfig())
	records := store.New()
	_, _, err := records.AddAll(src.AllRecords())
	require.NoError(t, err)
	return records, models.Player{ID: sample.StarID, Name: "Joel Embiid", TeamID: sample.TeamID}
}

func TestAnalyzeStoreSampleSeason(t *testing.T) {
	records, star := sampleStore(t)
	svc := newAnalysisService(nil)

	report, err := svc.AnalyzeStore(records, star, sample.TeamID, models.StatPoints, sampleLineBook())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, report.RunID)
	assert.False(t, report.GeneratedAt.IsZero())
	assert.Equal(t, star, report.Star)
	assert.Equal(t, sample.TeamID, report.TeamID)
	assert.Equal(t, models.StatPoints, report.Stat)
	assert.Equal(t, records.Len(), report.Records)
	assert.Equal(t, 5, report.Players)

	// Every teammate has a listed line, so nothing can be missing.
	require.NotEmpty(t, report.Opportunities)
	assert.Empty(t, report.MissingLines)
	for i := 1; i < len(report.Opportunities); i++ {
		assert.GreaterOrEqual(t, report.Opportunities[i-1].Edge, report.Opportunities[i].Edge,
			"opportunities must be sorted by descending edge")
	}

	var maxey *RecommendedBet
	for i := range report.Opportunities {
		if report.Opportunities[i].PlayerID == sample.MaxeyID {
			maxey = &report.Opportunities[i]
		}
	}
	require.NotNil(t, maxey, "expected Maxey's scoring lift to surface")
	assert.Equal(t, "Tyrese Maxey", maxey.PlayerName)
	assert.Equal(t, models.RecommendOver, maxey.Recommendation)
	assert.Greater(t, maxey.Difference, 1.0)

	require.NotNil(t, maxey.Stake)
	assert.Greater(t, maxey.Stake.FullKelly, 0.0)
	assert.LessOrEqual(t, maxey.Stake.Conservative, maxey.Stake.FullKelly)

	require.NotNil(t, maxey.NextGame)
	assert.Equal(t, sample.DefaultConfig().Games, maxey.NextGame.SampleSize)
}

func TestAnalyzeStoreNoLines(t *testing.T) {
	records, star := sampleStore(t)
	svc := newAnalysisService(nil)

	report, err := svc.AnalyzeStore(records, star, sample.TeamID, models.StatPoints, analysis.NewLineBook())
	require.NoError(t, err)

	assert.Empty(t, report.Opportunities)
	require.NotEmpty(t, report.MissingLines)

	ids := make([]int64, 0, len(report.MissingLines))
	for _, ti := range report.MissingLines {
		ids = append(ids, ti.PlayerID)
	}
	assert.Contains(t, ids, sample.MaxeyID)
}

func TestAnalyzeStoreUnknownStat(t *testing.T) {
	records, star := sampleStore(t)
	svc := newAnalysisService(nil)

	_, err := svc.AnalyzeStore(records, star, sample.TeamID, "WINGSPAN", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrUnknownStat)
}

func TestAnalyzeSampleSourceEndToEnd(t *testing.T) {
	svc := newAnalysisService(sample.NewSource(sample.DefaultConfig()))

	report, err := svc.Analyze(context.Background(), "embiid", "phi", models.StatPoints, testSeason, sampleLineBook())
	require.NoError(t, err)

	assert.Equal(t, phiAbbrev, report.Team)
	assert.Equal(t, testSeason, report.Season)
	assert.Equal(t, sample.StarID, report.Star.ID)
	assert.Equal(t, "Joel Embiid", report.Star.Name)
	assert.Equal(t, 5, report.Players)
	assert.NotEmpty(t, report.Opportunities)
	assert.Greater(t, report.Duration.Nanoseconds(), int64(0))
}

func TestAnalyzeUnknownTeam(t *testing.T) {
	svc := newAnalysisService(nil)

	_, err := svc.Analyze(context.Background(), "Embiid", "ZZZ", models.StatPoints, testSeason, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrUnknownTeam)
}

func TestAnalyzeStarNotFound(t *testing.T) {
	src := &mockSource{}
	src.On("SearchPlayers", mock.Anything, "Nobody Real").Return([]models.Player{}, nil)
	svc := NewAbsenceAnalysisService(src, AnalysisOptions{}, quietLogger())

	_, err := svc.Analyze(context.Background(), "Nobody Real", phiAbbrev, models.StatPoints, testSeason, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAnalyzeStarLogFailureIsFatal(t *testing.T) {
	src := &mockSource{}
	roster := rosterFixture()
	src.On("SearchPlayers", mock.Anything, "Embiid").Return(roster[:1], nil)
	src.On("FetchTeamRoster", mock.Anything, phiTeamID, testSeason).Return(roster, nil)
	src.On("FetchPlayerGameLog", mock.Anything, embiidID, testSeason).Return(nil, errors.New("rate limited"))
	svc := NewAbsenceAnalysisService(src, AnalysisOptions{}, quietLogger())

	_, err := svc.Analyze(context.Background(), "Embiid", phiAbbrev, models.StatPoints, testSeason, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "star")
}

func TestAnalyzeTeammateLogFailureDegrades(t *testing.T) {
	src := &mockSource{}
	roster := rosterFixture()
	src.On("SearchPlayers", mock.Anything, "Embiid").Return(roster[:1], nil)
	src.On("FetchTeamRoster", mock.Anything, phiTeamID, testSeason).Return(roster, nil)
	src.On("FetchPlayerGameLog", mock.Anything, embiidID, testSeason).Return(gameLogFixture(embiidID, 5), nil)
	src.On("FetchPlayerGameLog", mock.Anything, maxeyID, testSeason).Return(nil, errors.New("rate limited"))
	svc := NewAbsenceAnalysisService(src, AnalysisOptions{}, quietLogger())

	report, err := svc.Analyze(context.Background(), "Embiid", phiAbbrev, models.StatPoints, testSeason, sampleLineBook())
	require.NoError(t, err, "a lost teammate log degrades the scan, it does not kill it")
	assert.Empty(t, report.Opportunities)
	assert.Empty(t, report.MissingLines)
}

func TestImpactStoreRanksTeammates(t *testing.T) {
	records, star := sampleStore(t)
	svc := newAnalysisService(nil)

	impacts, err := svc.ImpactStore(records, star.ID, sample.TeamID, models.StatPoints, 0)
	require.NoError(t, err)
	require.NotEmpty(t, impacts)
	assert.LessOrEqual(t, len(impacts), analysis.DefaultTopImpacts)
	for i := 1; i < len(impacts); i++ {
		assert.GreaterOrEqual(t, impacts[i-1].Impact.Difference, impacts[i].Impact.Difference,
			"impacts must be sorted by descending difference")
	}
	for _, ti := range impacts {
		assert.NotEmpty(t, ti.PlayerName)
		assert.Greater(t, ti.Impact.Difference, analysis.DefaultMaterialityThreshold)
	}

	top, err := svc.ImpactStore(records, star.ID, sample.TeamID, models.StatPoints, 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}

func TestBaselineResolvesPlayer(t *testing.T) {
	src := &mockSource{}
	maxey := models.Player{ID: maxeyID, Name: "Tyrese Maxey", TeamID: phiTeamID}
	src.On("SearchPlayers", mock.Anything, "maxey").Return([]models.Player{maxey}, nil)
	src.On("FetchPlayerGameLog", mock.Anything, maxeyID, testSeason).Return(gameLogFixture(maxeyID, 20), nil)
	svc := NewAbsenceAnalysisService(src, AnalysisOptions{}, quietLogger())

	form, err := svc.Baseline(context.Background(), "maxey", models.StatPoints, testSeason)
	require.NoError(t, err)

	assert.Equal(t, maxeyID, form.Player.ID)
	assert.Equal(t, models.StatPoints, form.Stat)
	require.NotNil(t, form.Baseline)
	// The default window keeps the last 15 of 20 fixture games, all at 20
	// points each.
	assert.Equal(t, 15, form.Baseline.SampleSize)
	assert.InDelta(t, 20.0, form.Baseline.Mean, 1e-9)
	assert.InDelta(t, 20.0, form.Baseline.Median, 1e-9)
	assert.InDelta(t, 0.0, form.Baseline.StdDev, 1e-9)

	require.NotNil(t, form.NextGame)
	assert.Equal(t, 20, form.NextGame.SampleSize)
	assert.InDelta(t, 20.0, form.NextGame.Predicted, 1e-9)
}

func TestBaselineUnknownPlayer(t *testing.T) {
	src := &mockSource{}
	src.On("SearchPlayers", mock.Anything, "nobody").Return(nil, nil)
	svc := NewAbsenceAnalysisService(src, AnalysisOptions{}, quietLogger())

	_, err := svc.Baseline(context.Background(), "nobody", models.StatPoints, testSeason)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestBaselineNoGames(t *testing.T) {
	src := &mockSource{}
	rookie := models.Player{ID: 99, Name: "Fresh Rookie", TeamID: phiTeamID}
	src.On("SearchPlayers", mock.Anything, "rookie").Return([]models.Player{rookie}, nil)
	src.On("FetchPlayerGameLog", mock.Anything, int64(99), testSeason).Return([]models.GameRecord{}, nil)
	svc := NewAbsenceAnalysisService(src, AnalysisOptions{}, quietLogger())

	_, err := svc.Baseline(context.Background(), "rookie", models.StatPoints, testSeason)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInsufficientData)
}
