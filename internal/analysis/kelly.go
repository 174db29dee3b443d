package analysis

import (
	"math"

	"github.com/yourusername/injury-edge/internal/models"
)

const (
	// DefaultNetOdds is the net decimal payout assumed for stake sizing,
	// matching the fixed -110 pricing used elsewhere.
	DefaultNetOdds = FixedOddsPayout
	// DefaultKellyFraction scales the full Kelly stake down to a quarter.
	DefaultKellyFraction = 0.25
)

// StakeSizer computes Kelly criterion stake fractions for a fixed net payout.
type StakeSizer struct {
	odds     float64
	fraction float64
}

// NewStakeSizer creates a sizer with the given net odds and Kelly fraction.
// Non-positive arguments fall back to the defaults.
func NewStakeSizer(odds, fraction float64) *StakeSizer {
	if odds <= 0 {
		odds = DefaultNetOdds
	}
	if fraction <= 0 {
		fraction = DefaultKellyFraction
	}
	return &StakeSizer{odds: odds, fraction: fraction}
}

// Stake returns the recommended bankroll fractions for a wager that wins
// with the given probability. The full Kelly fraction is floored at zero,
// so a negative-expectation wager sizes to nothing rather than a short.
func (s *StakeSizer) Stake(winProbability float64) (*models.StakeRecommendation, error) {
	if math.IsNaN(winProbability) || winProbability < 0 || winProbability > 1 {
		return nil, models.ErrInvalidProbability
	}

	full := (s.odds*winProbability - (1 - winProbability)) / s.odds
	if full < 0 {
		full = 0
	}

	return &models.StakeRecommendation{
		FullKelly:     full,
		Conservative:  full * s.fraction,
		KellyFraction: s.fraction,
	}, nil
}
