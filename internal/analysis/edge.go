package analysis

import (
	"math"

	"github.com/yourusername/injury-edge/internal/models"
)

const (
	// FixedOddsPayout is the net payout per unit staked on a winning -110
	// wager (100/110).
	FixedOddsPayout = 0.909
	// DefaultEdgeThreshold is the minimum expected value before a side is
	// recommended.
	DefaultEdgeThreshold = 0.05
	// fallbackCoefficientOfVariation substitutes for a degenerate (zero)
	// dispersion so the distribution never collapses to spurious certainty.
	fallbackCoefficientOfVariation = 0.15
)

// EdgeCalculator converts a predictive distribution and a betting line into
// win probabilities, expected values, and a recommendation under fixed -110
// odds on both sides.
type EdgeCalculator struct {
	payout float64
}

// NewEdgeCalculator creates a calculator at the standard -110 payout.
func NewEdgeCalculator() *EdgeCalculator {
	return &EdgeCalculator{payout: FixedOddsPayout}
}

// EvaluateLine scores one line against a Normal(prediction, stdDev)
// distribution. A non-positive threshold means the default. Callers must
// pass finite prediction and line values; a zero or undefined stdDev is the
// one degenerate input recovered here, by substituting 15% of the
// prediction. Equal expected values on both sides resolve to OVER by
// evaluation order.
func (c *EdgeCalculator) EvaluateLine(prediction, line, stdDev, threshold float64) *models.LineEvaluation {
	if threshold <= 0 {
		threshold = DefaultEdgeThreshold
	}
	if math.IsNaN(stdDev) || stdDev <= 0 {
		stdDev = fallbackCoefficientOfVariation * math.Abs(prediction)
	}

	// With substitution the deviation is only zero for a zero prediction;
	// the point mass cases keep z defined.
	var z float64
	switch {
	case stdDev > 0:
		z = (line - prediction) / stdDev
	case line == prediction:
		z = 0
	case line > prediction:
		z = math.Inf(1)
	default:
		z = math.Inf(-1)
	}

	probUnder := normalCDF(z)
	probOver := 1 - probUnder
	overEV := probOver*c.payout - (1 - probOver)
	underEV := probUnder*c.payout - (1 - probUnder)

	eval := &models.LineEvaluation{
		Prediction: prediction,
		Line:       line,
		StdDev:     stdDev,
		ProbOver:   probOver,
		ProbUnder:  probUnder,
		OverEV:     overEV,
		UnderEV:    underEV,
	}

	switch {
	case overEV > threshold:
		eval.Recommendation = models.RecommendOver
		eval.Edge = overEV
		eval.Confidence = probOver
	case underEV > threshold:
		eval.Recommendation = models.RecommendUnder
		eval.Edge = underEV
		eval.Confidence = probUnder
	default:
		eval.Recommendation = models.RecommendNoBet
		eval.Edge = math.Max(overEV, underEV)
		eval.Confidence = math.Max(probOver, probUnder)
	}
	return eval
}
