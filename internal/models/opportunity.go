package models

// Recommendation is the side of a line the engine favors, if any.
type Recommendation string

const (
	RecommendOver  Recommendation = "OVER"
	RecommendUnder Recommendation = "UNDER"
	RecommendNoBet Recommendation = "NO_BET"
)

// LineEvaluation is the full expected-value picture for one betting line
// against one predictive distribution, under fixed -110 odds on both sides.
type LineEvaluation struct {
	Prediction     float64        `json:"prediction"`
	Line           float64        `json:"line"`
	StdDev         float64        `json:"std_dev"`
	ProbOver       float64        `json:"prob_over"`
	ProbUnder      float64        `json:"prob_under"`
	OverEV         float64        `json:"over_ev"`
	UnderEV        float64        `json:"under_ev"`
	Recommendation Recommendation `json:"recommendation"`
	Edge           float64        `json:"edge"`
	Confidence     float64        `json:"confidence"`
}

// Opportunity is a recommended wager on a teammate's stat line while the
// star sits, backed by the historical with/without split.
type Opportunity struct {
	PlayerID         int64          `json:"player_id"`
	PlayerName       string         `json:"player_name"`
	Stat             string         `json:"stat"`
	WithStarMean     float64        `json:"with_star_avg"`
	WithoutStarMean  float64        `json:"without_star_avg"`
	Difference       float64        `json:"difference"`
	GamesWithoutStar int            `json:"games_without_star"`
	PValue           float64        `json:"p_value"`
	Significant      bool           `json:"significant"`
	Prediction       float64        `json:"prediction"`
	Line             float64        `json:"line"`
	Recommendation   Recommendation `json:"recommendation"`
	Edge             float64        `json:"edge"`
	Confidence       float64        `json:"confidence"`
}

// OpportunityScan is the outcome of a team-wide line scan: ranked
// opportunities plus the material impacts that had no resolvable line.
type OpportunityScan struct {
	Opportunities []Opportunity    `json:"opportunities"`
	MissingLines  []TeammateImpact `json:"missing_lines"`
}
