package analysis

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/injury-edge/internal/logger"
	"github.com/yourusername/injury-edge/internal/models"
	"github.com/yourusername/injury-edge/internal/store"
)

const (
	// DefaultRosterMinSamples is the without-star sample floor used when
	// ranking a full roster, looser than the single-pair default so thin
	// rotations still surface.
	DefaultRosterMinSamples = 3
	// DefaultMaterialityThreshold filters out teammates whose without-star
	// lift is within noise of their baseline.
	DefaultMaterialityThreshold = 1.0
	// DefaultMinEdge is the retention floor for scanned opportunities.
	DefaultMinEdge = 0.05
	// DefaultTopImpacts caps a ranked impact report.
	DefaultTopImpacts = 5
)

// RankerConfig tunes roster-wide impact ranking and opportunity scans.
type RankerConfig struct {
	MinSamplesWithoutStar int
	MaterialityThreshold  float64
	EdgeThreshold         float64
	TopImpacts            int
}

// DefaultRankerConfig returns the standard scan thresholds.
func DefaultRankerConfig() RankerConfig {
	return RankerConfig{
		MinSamplesWithoutStar: DefaultRosterMinSamples,
		MaterialityThreshold:  DefaultMaterialityThreshold,
		EdgeThreshold:         DefaultEdgeThreshold,
		TopImpacts:            DefaultTopImpacts,
	}
}

// OpportunityRanker measures a star's absence effect across a roster and
// turns the material lifts into ranked betting opportunities.
type OpportunityRanker struct {
	store       *store.Store
	estimator   *ImpactEstimator
	edge        *EdgeCalculator
	cfg         RankerConfig
	logger      *logrus.Logger
	analysisLog *logger.AnalysisLogger
}

// NewOpportunityRanker wires a ranker over the given record store. Zero
// config fields fall back to the defaults.
func NewOpportunityRanker(s *store.Store, cfg RankerConfig, baseLogger *logrus.Logger) *OpportunityRanker {
	if cfg.MinSamplesWithoutStar <= 0 {
		cfg.MinSamplesWithoutStar = DefaultRosterMinSamples
	}
	if cfg.MaterialityThreshold <= 0 {
		cfg.MaterialityThreshold = DefaultMaterialityThreshold
	}
	if cfg.EdgeThreshold <= 0 {
		cfg.EdgeThreshold = DefaultEdgeThreshold
	}
	if cfg.TopImpacts <= 0 {
		cfg.TopImpacts = DefaultTopImpacts
	}
	r := &OpportunityRanker{
		store:     s,
		estimator: NewImpactEstimator(s),
		edge:      NewEdgeCalculator(),
		cfg:       cfg,
		logger:    baseLogger,
	}
	if baseLogger != nil {
		r.analysisLog = logger.NewAnalysisLogger(baseLogger)
	}
	return r
}

// AnalyzeImpact measures every rostered teammate of the star and returns
// the material without-star improvements, sorted by descending difference.
// A positive topN truncates the report; zero or negative keeps everything.
// Teammates with too few without-star games, no with-star baseline, or an
// immaterial difference are skipped, not errors.
func (r *OpportunityRanker) AnalyzeImpact(starID, teamID int64, stat string, topN int) ([]models.TeammateImpact, error) {
	if !models.IsKnownStat(stat) {
		return nil, fmt.Errorf("stat %q: %w", stat, models.ErrUnknownStat)
	}

	started := time.Now()
	teammates := r.store.TeamPlayerIDs(teamID, starID)
	impacts := make([]models.TeammateImpact, 0, len(teammates))
	for _, teammateID := range teammates {
		impact, err := r.estimator.MeasureImpact(starID, teammateID, stat, r.cfg.MinSamplesWithoutStar)
		if err != nil {
			if errors.Is(err, models.ErrInsufficientData) {
				if r.analysisLog != nil {
					r.analysisLog.LogInsufficientSample(starID, teammateID, stat, r.cfg.MinSamplesWithoutStar)
				}
				continue
			}
			return nil, fmt.Errorf("failed to measure impact for player %d: %w", teammateID, err)
		}
		if !impact.HasBaseline() {
			r.debugSkip(teammateID, stat, "no games alongside star")
			continue
		}
		if impact.Difference <= r.cfg.MaterialityThreshold {
			continue
		}
		if impact.Significant && r.analysisLog != nil {
			r.analysisLog.LogSignificantImpact(starID, teammateID, stat,
				impact.Difference, impact.PercentChange, impact.PValue)
		}
		name, _ := r.store.PlayerName(teammateID)
		impacts = append(impacts, models.TeammateImpact{
			PlayerID:   teammateID,
			PlayerName: name,
			Impact:     impact,
		})
	}

	sort.SliceStable(impacts, func(i, j int) bool {
		return impacts[i].Impact.Difference > impacts[j].Impact.Difference
	})
	if r.analysisLog != nil {
		r.analysisLog.LogImpactAnalysis(starID, teamID, stat, len(teammates), len(impacts),
			time.Since(started).Seconds()*1000)
	}
	if topN > 0 && len(impacts) > topN {
		impacts = impacts[:topN]
	}
	return impacts, nil
}

// FindOpportunities scans the full set of material teammate impacts against
// a line book. Each matched line is priced off the teammate's without-star
// distribution; opportunities below minEdge are dropped and teammates with
// no listed line are reported separately. Results are sorted by descending
// edge. A non-positive minEdge means the default floor.
func (r *OpportunityRanker) FindOpportunities(starID, teamID int64, stat string, lines *LineBook, minEdge float64) (*models.OpportunityScan, error) {
	if minEdge <= 0 {
		minEdge = DefaultMinEdge
	}
	if lines == nil {
		lines = NewLineBook()
	}

	impacts, err := r.AnalyzeImpact(starID, teamID, stat, 0)
	if err != nil {
		return nil, err
	}

	scan := &models.OpportunityScan{}
	for _, ti := range impacts {
		line, ok := lines.Resolve(ti.PlayerID, ti.PlayerName)
		if !ok {
			scan.MissingLines = append(scan.MissingLines, ti)
			if r.logger != nil {
				r.logger.WithFields(logrus.Fields{
					"player_id": ti.PlayerID,
					"player":    ti.PlayerName,
					"stat":      stat,
				}).Info("No line listed for impacted teammate")
			}
			continue
		}

		eval := r.edge.EvaluateLine(ti.Impact.WithoutStarMean, line, ti.Impact.WithoutStarStdDev, r.cfg.EdgeThreshold)
		if eval.Edge < minEdge {
			continue
		}
		if r.analysisLog != nil {
			r.analysisLog.LogEdgeDecision(ti.PlayerID, ti.PlayerName, stat, eval.Line,
				eval.Prediction, string(eval.Recommendation), eval.Edge, eval.Confidence)
		}
		scan.Opportunities = append(scan.Opportunities, models.Opportunity{
			PlayerID:         ti.PlayerID,
			PlayerName:       ti.PlayerName,
			Stat:             stat,
			WithStarMean:     ti.Impact.WithStarMean,
			WithoutStarMean:  ti.Impact.WithoutStarMean,
			Difference:       ti.Impact.Difference,
			GamesWithoutStar: ti.Impact.WithoutStarGames,
			PValue:           ti.Impact.PValue,
			Significant:      ti.Impact.Significant,
			Prediction:       eval.Prediction,
			Line:             eval.Line,
			Recommendation:   eval.Recommendation,
			Edge:             eval.Edge,
			Confidence:       eval.Confidence,
		})
	}

	sort.SliceStable(scan.Opportunities, func(i, j int) bool {
		return scan.Opportunities[i].Edge > scan.Opportunities[j].Edge
	})
	if r.analysisLog != nil {
		r.analysisLog.LogOpportunityScan(starID, stat, lines.Len(),
			len(scan.Opportunities), len(scan.MissingLines), minEdge)
	}
	return scan, nil
}

func (r *OpportunityRanker) debugSkip(playerID int64, stat, reason string) {
	if r.logger == nil {
		return
	}
	r.logger.WithFields(logrus.Fields{
		"player_id": playerID,
		"stat":      stat,
		"reason":    reason,
	}).Debug("Skipping teammate")
}
