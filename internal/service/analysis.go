package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/injury-edge/internal/analysis"
	"github.com/yourusername/injury-edge/internal/config"
	"github.com/yourusername/injury-edge/internal/datasource"
	"github.com/yourusername/injury-edge/internal/metrics"
	"github.com/yourusername/injury-edge/internal/models"
	"github.com/yourusername/injury-edge/internal/store"
)

// AnalysisOptions tunes one analysis service instance. Zero fields fall back
// to the package defaults of the component they configure.
type AnalysisOptions struct {
	Ranker         analysis.RankerConfig
	Predictor      analysis.PredictorConfig
	MinEdge        float64
	KellyNetOdds   float64
	KellyFraction  float64
	BaselineWindow int
}

// OptionsFromConfig maps the loaded configuration onto analysis options.
func OptionsFromConfig(cfg *config.Config) AnalysisOptions {
	a := cfg.Analysis

	predictor := analysis.DefaultPredictorConfig()
	predictor.Forest = analysis.ForestConfig{
		Trees:    a.Model.Trees,
		MaxDepth: a.Model.MaxDepth,
		Seed:     a.Model.Seed,
	}
	predictor.CacheTTL = cfg.ModelCacheTTL()
	predictor.CacheMaxSize = a.Model.CacheMaxSize

	return AnalysisOptions{
		Ranker: analysis.RankerConfig{
			MinSamplesWithoutStar: a.RosterMinGames,
			MaterialityThreshold:  a.MaterialityThreshold,
			EdgeThreshold:         a.EdgeThreshold,
			TopImpacts:            a.TopImpacts,
		},
		Predictor:      predictor,
		MinEdge:        a.MinEdge,
		KellyNetOdds:   a.Kelly.NetOdds,
		KellyFraction:  a.Kelly.Fraction,
		BaselineWindow: a.BaselineWindow,
	}
}

// RecommendedBet pairs a priced opportunity with its stake sizing and the
// regressor's next-game view of the player.
type RecommendedBet struct {
	models.Opportunity
	Stake    *models.StakeRecommendation `json:"stake,omitempty"`
	NextGame *models.PredictionResult    `json:"next_game,omitempty"`
}

// AnalysisReport is the outcome of one star-absence analysis run.
type AnalysisReport struct {
	RunID         uuid.UUID               `json:"run_id"`
	GeneratedAt   time.Time               `json:"generated_at"`
	Star          models.Player           `json:"star"`
	Team          string                  `json:"team"`
	TeamID        int64                   `json:"team_id"`
	Season        string                  `json:"season"`
	Stat          string                  `json:"stat"`
	Players       int                     `json:"players"`
	Records       int                     `json:"records"`
	Opportunities []RecommendedBet        `json:"opportunities"`
	MissingLines  []models.TeammateImpact `json:"missing_lines"`
	Duration      time.Duration           `json:"duration"`
}

// PlayerForm is a player's recent-form baseline plus the regressor's
// next-game estimate.
type PlayerForm struct {
	Player   models.Player            `json:"player"`
	Stat     string                   `json:"stat"`
	Baseline *models.Baseline         `json:"baseline"`
	NextGame *models.PredictionResult `json:"next_game,omitempty"`
}

// AbsenceAnalysisService orchestrates the quick-analysis flow: resolve the
// star and team against the data source, load every rostered player's game
// log into a record store, and run the ranking pipeline over it.
type AbsenceAnalysisService struct {
	source datasource.GameLogSource
	opts   AnalysisOptions
	logger *logrus.Logger
}

// NewAbsenceAnalysisService creates a new analysis service.
func NewAbsenceAnalysisService(source datasource.GameLogSource, opts AnalysisOptions, logger *logrus.Logger) *AbsenceAnalysisService {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &AbsenceAnalysisService{
		source: source,
		opts:   opts,
		logger: logger,
	}
}

// Analyze runs the full network-backed analysis for one star, team, and stat:
// team resolution, star search, roster and game-log fetches, then the scan.
// An empty season means the current one. Fetches are sequential; the data
// source's client paces them under the provider's rate tolerance.
func (s *AbsenceAnalysisService) Analyze(ctx context.Context, starName, teamAbbrev, stat, season string, lines *analysis.LineBook) (*AnalysisReport, error) {
	startTime := time.Now()

	teamID := datasource.TeamIDForAbbreviation(teamAbbrev)
	if teamID == 0 {
		return nil, fmt.Errorf("team %q: %w", teamAbbrev, models.ErrUnknownTeam)
	}
	if season == "" {
		season = datasource.CurrentSeason()
	}
	if lines == nil {
		lines = analysis.NewLineBook()
	}

	star, err := s.findStar(ctx, starName, teamID)
	if err != nil {
		metrics.RecordAnalysis("failure", time.Since(startTime).Seconds())
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"star":      star.Name,
		"star_id":   star.ID,
		"team":      strings.ToUpper(teamAbbrev),
		"season":    season,
		"stat":      stat,
		"num_lines": lines.Len(),
	}).Info("Starting absence analysis")

	records, err := s.loadTeamStore(ctx, star, teamID, season)
	if err != nil {
		metrics.RecordAnalysis("failure", time.Since(startTime).Seconds())
		return nil, err
	}

	report, err := s.AnalyzeStore(records, star, teamID, stat, lines)
	if err != nil {
		return nil, err
	}
	report.Team = strings.ToUpper(strings.TrimSpace(teamAbbrev))
	report.Season = season
	report.Duration = time.Since(startTime)
	return report, nil
}

// AnalyzeStore runs the scan over a caller-supplied record store, with no
// network involved. Sample data and repository-loaded histories come through
// here.
func (s *AbsenceAnalysisService) AnalyzeStore(records *store.Store, star models.Player, teamID int64, stat string, lines *analysis.LineBook) (*AnalysisReport, error) {
	startTime := time.Now()
	if lines == nil {
		lines = analysis.NewLineBook()
	}

	ranker := analysis.NewOpportunityRanker(records, s.opts.Ranker, s.logger)
	scan, err := ranker.FindOpportunities(star.ID, teamID, stat, lines, s.opts.MinEdge)
	if err != nil {
		metrics.RecordAnalysis("failure", time.Since(startTime).Seconds())
		return nil, fmt.Errorf("failed to scan opportunities: %w", err)
	}

	predictor := analysis.NewPerformancePredictor(records, s.opts.Predictor, s.logger)
	sizer := analysis.NewStakeSizer(s.opts.KellyNetOdds, s.opts.KellyFraction)

	bets := make([]RecommendedBet, 0, len(scan.Opportunities))
	for _, opp := range scan.Opportunities {
		bet := RecommendedBet{Opportunity: opp}

		if opp.Recommendation != models.RecommendNoBet {
			stake, err := sizer.Stake(opp.Confidence)
			if err != nil {
				metrics.RecordAnalysis("failure", time.Since(startTime).Seconds())
				return nil, fmt.Errorf("failed to size stake for %s: %w", opp.PlayerName, err)
			}
			bet.Stake = stake
		}
		bet.NextGame = s.nextGame(predictor, records, opp.PlayerID, stat)

		metrics.RecordOpportunity(string(opp.Recommendation), opp.Edge)
		if opp.Significant {
			metrics.RecordSignificantImpact()
		}
		bets = append(bets, bet)
	}
	for _, ti := range scan.MissingLines {
		if ti.Impact.Significant {
			metrics.RecordSignificantImpact()
		}
	}

	hits, misses, _ := predictor.CacheStats()
	metrics.UpdateModelCacheStats(hits, misses)
	predictor.LogCacheStats()
	metrics.RecordAnalysis("success", time.Since(startTime).Seconds())

	s.logger.WithFields(logrus.Fields{
		"star":          star.Name,
		"star_id":       star.ID,
		"stat":          stat,
		"players":       len(records.PlayerIDs()),
		"records":       records.Len(),
		"opportunities": len(bets),
		"missing_lines": len(scan.MissingLines),
		"duration":      time.Since(startTime).Round(time.Millisecond).String(),
	}).Info("Absence analysis complete")

	return &AnalysisReport{
		RunID:         uuid.New(),
		GeneratedAt:   time.Now().UTC(),
		Star:          star,
		TeamID:        teamID,
		Stat:          stat,
		Players:       len(records.PlayerIDs()),
		Records:       records.Len(),
		Opportunities: bets,
		MissingLines:  scan.MissingLines,
		Duration:      time.Since(startTime),
	}, nil
}

// Impact measures and ranks every teammate's without-star lift, without any
// line pricing. An empty season means the current one; topN caps the report.
func (s *AbsenceAnalysisService) Impact(ctx context.Context, starName, teamAbbrev, stat, season string, topN int) ([]models.TeammateImpact, error) {
	teamID := datasource.TeamIDForAbbreviation(teamAbbrev)
	if teamID == 0 {
		return nil, fmt.Errorf("team %q: %w", teamAbbrev, models.ErrUnknownTeam)
	}
	if season == "" {
		season = datasource.CurrentSeason()
	}

	star, err := s.findStar(ctx, starName, teamID)
	if err != nil {
		return nil, err
	}
	records, err := s.loadTeamStore(ctx, star, teamID, season)
	if err != nil {
		return nil, err
	}
	return s.ImpactStore(records, star.ID, teamID, stat, topN)
}

// ImpactStore ranks teammate impacts over a caller-supplied record store.
// A non-positive topN means the configured cap.
func (s *AbsenceAnalysisService) ImpactStore(records *store.Store, starID, teamID int64, stat string, topN int) ([]models.TeammateImpact, error) {
	if topN <= 0 {
		topN = s.opts.Ranker.TopImpacts
	}
	if topN <= 0 {
		topN = analysis.DefaultTopImpacts
	}

	ranker := analysis.NewOpportunityRanker(records, s.opts.Ranker, s.logger)
	impacts, err := ranker.AnalyzeImpact(starID, teamID, stat, topN)
	if err != nil {
		return nil, fmt.Errorf("failed to rank impacts: %w", err)
	}
	for _, ti := range impacts {
		if ti.Impact.Significant {
			metrics.RecordSignificantImpact()
		}
	}
	return impacts, nil
}

// Baseline reports a player's recent form for one stat, resolved by name
// against the data source, together with the regressor's next-game estimate.
func (s *AbsenceAnalysisService) Baseline(ctx context.Context, playerName, stat, season string) (*PlayerForm, error) {
	if season == "" {
		season = datasource.CurrentSeason()
	}

	matches, err := s.source.SearchPlayers(ctx, playerName)
	if err != nil {
		return nil, fmt.Errorf("failed to search for %q: %w", playerName, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("player %q: %w", playerName, models.ErrNotFound)
	}
	player := matches[0]

	gameLog, err := s.source.FetchPlayerGameLog(ctx, player.ID, season)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch game log for %s: %w", player.Name, err)
	}
	for i := range gameLog {
		gameLog[i].PlayerName = player.Name
	}

	baseline, err := analysis.Baseline(gameLog, stat, s.opts.BaselineWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to compute baseline for %s: %w", player.Name, err)
	}

	records := store.New()
	if _, _, err := records.AddAll(gameLog); err != nil {
		return nil, fmt.Errorf("failed to load records for %s: %w", player.Name, err)
	}
	predictor := analysis.NewPerformancePredictor(records, s.opts.Predictor, s.logger)

	return &PlayerForm{
		Player:   player,
		Stat:     stat,
		Baseline: baseline,
		NextGame: s.nextGame(predictor, records, player.ID, stat),
	}, nil
}

// findStar resolves a star by name, preferring a hit on the analyzed team
// when the search is ambiguous.
func (s *AbsenceAnalysisService) findStar(ctx context.Context, name string, teamID int64) (models.Player, error) {
	matches, err := s.source.SearchPlayers(ctx, name)
	if err != nil {
		return models.Player{}, fmt.Errorf("failed to search for %q: %w", name, err)
	}
	if len(matches) == 0 {
		return models.Player{}, fmt.Errorf("player %q: %w", name, models.ErrNotFound)
	}
	for _, player := range matches {
		if player.TeamID == teamID {
			return player, nil
		}
	}
	return matches[0], nil
}

// loadTeamStore fetches the roster and every rostered player's game log into
// a fresh record store. The star is fetched even when not on the roster
// response. Teammate fetch failures degrade to a warning; losing the star's
// log kills the run because nothing can be partitioned without it.
func (s *AbsenceAnalysisService) loadTeamStore(ctx context.Context, star models.Player, teamID int64, season string) (*store.Store, error) {
	roster, err := s.source.FetchTeamRoster(ctx, teamID, season)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roster: %w", err)
	}

	players := roster
	if !containsPlayer(roster, star.ID) {
		players = append([]models.Player{star}, roster...)
	}

	records := store.New()
	for _, player := range players {
		gameLog, err := s.source.FetchPlayerGameLog(ctx, player.ID, season)
		if err != nil {
			if player.ID == star.ID {
				return nil, fmt.Errorf("failed to fetch game log for star %s: %w", star.Name, err)
			}
			s.logger.WithError(err).WithFields(logrus.Fields{
				"player":    player.Name,
				"player_id": player.ID,
			}).Warn("Skipping teammate game log")
			continue
		}
		for i := range gameLog {
			gameLog[i].PlayerName = player.Name
		}
		if _, _, err := records.AddAll(gameLog); err != nil {
			return nil, fmt.Errorf("failed to load records for %s: %w", player.Name, err)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"team_id": teamID,
		"season":  season,
		"players": len(players),
		"records": records.Len(),
	}).Info("Loaded team game logs")
	return records, nil
}

// nextGame asks the regressor for the player's next-game estimate. The
// upcoming venue is unknown at scan time, so it is priced as a road game at
// the player's recent minutes load. Estimation failures degrade to nil.
func (s *AbsenceAnalysisService) nextGame(predictor *analysis.PerformancePredictor, records *store.Store, playerID int64, stat string) *models.PredictionResult {
	window := s.opts.Predictor.RollingWindow
	if window <= 0 {
		window = analysis.DefaultPredictorConfig().RollingWindow
	}

	prediction, err := predictor.Predict(playerID, stat, false, recentMinutes(records, playerID, window))
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"player_id": playerID,
			"stat":      stat,
		}).Debug("No next-game estimate")
		return nil
	}
	return prediction
}

// recentMinutes averages the player's minutes over their last few
// appearances.
func recentMinutes(records *store.Store, playerID int64, window int) float64 {
	recs := records.PlayerRecords(playerID)
	total, n := 0.0, 0
	for i := len(recs) - 1; i >= 0 && n < window; i-- {
		if !recs[i].Played {
			continue
		}
		total += recs[i].Minutes
		n++
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

func containsPlayer(players []models.Player, id int64) bool {
	for _, p := range players {
		if p.ID == id {
			return true
		}
	}
	return false
}
