package analysis

import (
	"fmt"

	"github.com/yourusername/injury-edge/internal/models"
	"github.com/yourusername/injury-edge/internal/store"
)

// DefaultMinSamplesWithoutStar is the minimum without-star sample for a
// single-teammate impact estimate. Team-wide scans relax this to 3.
const DefaultMinSamplesWithoutStar = 5

// SignificanceLevel is the p-value threshold for flagging an impact.
const SignificanceLevel = 0.05

// ImpactEstimator computes with/without-star split statistics for
// (star, teammate, stat) triples against a record store.
type ImpactEstimator struct {
	store *store.Store
}

// NewImpactEstimator creates an estimator over the given store.
func NewImpactEstimator(s *store.Store) *ImpactEstimator {
	return &ImpactEstimator{store: s}
}

// MeasureImpact partitions the teammate's games by whether the star played
// (appeared with a defined value for the stat) and summarizes both
// partitions. A minSamplesWithoutStar of zero or less means the default.
// Returns ErrInsufficientData when the teammate has no records or too few
// without-star games to estimate from.
func (e *ImpactEstimator) MeasureImpact(starID, teammateID int64, stat string, minSamplesWithoutStar int) (*models.ImpactResult, error) {
	if !models.IsKnownStat(stat) {
		return nil, fmt.Errorf("%q: %w", stat, models.ErrUnknownStat)
	}
	if minSamplesWithoutStar <= 0 {
		minSamplesWithoutStar = DefaultMinSamplesWithoutStar
	}

	records := e.store.PlayerRecords(teammateID)
	if len(records) == 0 {
		return nil, fmt.Errorf("player %d has no game records: %w", teammateID, models.ErrInsufficientData)
	}

	starGames := e.store.GamesWithStat(starID, stat)

	// Partition on star presence; a record with an undefined stat value
	// (teammate did not play) contributes to neither sample.
	var withValues, withoutValues []float64
	for i := range records {
		value, defined := records[i].StatValue(stat)
		if !defined {
			continue
		}
		if _, starPlayed := starGames[records[i].GameID]; starPlayed {
			withValues = append(withValues, value)
		} else {
			withoutValues = append(withoutValues, value)
		}
	}

	if len(withoutValues) < minSamplesWithoutStar {
		return nil, fmt.Errorf("player %d has %d games without the star, need %d: %w",
			teammateID, len(withoutValues), minSamplesWithoutStar, models.ErrInsufficientData)
	}

	withMean := mean(withValues)
	withoutMean := mean(withoutValues)
	difference := withoutMean - withMean

	percentChange := 0.0
	if withMean > 0 {
		percentChange = difference / withMean * 100
	}

	pValue, pValid := twoSampleTPValue(withoutValues, withValues)

	return &models.ImpactResult{
		Stat:              stat,
		WithStarMean:      withMean,
		WithStarGames:     len(withValues),
		WithStarStdDev:    sampleStdDev(withValues),
		WithoutStarMean:   withoutMean,
		WithoutStarGames:  len(withoutValues),
		WithoutStarStdDev: sampleStdDev(withoutValues),
		Difference:        difference,
		PercentChange:     percentChange,
		PValue:            pValue,
		PValueValid:       pValid,
		Significant:       pValid && pValue < SignificanceLevel,
	}, nil
}
