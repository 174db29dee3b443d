package models

// ImpactResult summarizes how a teammate's production differs between games
// played with and without the star. Computed fresh per request, never stored.
type ImpactResult struct {
	Stat              string  `json:"stat"`
	WithStarMean      float64 `json:"with_star_avg"`
	WithStarGames     int     `json:"with_star_games"`
	WithStarStdDev    float64 `json:"with_star_std"`
	WithoutStarMean   float64 `json:"without_star_avg"`
	WithoutStarGames  int     `json:"without_star_games"`
	WithoutStarStdDev float64 `json:"without_star_std"`
	Difference        float64 `json:"difference"`
	PercentChange     float64 `json:"percent_change"`
	PValue            float64 `json:"p_value"`
	PValueValid       bool    `json:"p_value_valid"`
	Significant       bool    `json:"significant"`
}

// HasBaseline reports whether the teammate shared at least one game with the
// star. Difference and PercentChange carry no meaning without a baseline.
func (r *ImpactResult) HasBaseline() bool {
	return r.WithStarGames > 0
}

// TeammateImpact pairs an impact with the teammate it describes.
type TeammateImpact struct {
	PlayerID   int64         `json:"player_id"`
	PlayerName string        `json:"player_name"`
	Impact     *ImpactResult `json:"impact"`
}

// Prediction methods, in decreasing order of fidelity.
const (
	PredictionMethodEnsemble       = "ensemble"
	PredictionMethodRollingAverage = "rolling_average"
	PredictionMethodHistoricalMean = "historical_average"
)

// PredictionResult is a point estimate with dispersion for a player's next
// game. The interval is estimate +/- 1.96 standard deviations.
type PredictionResult struct {
	Predicted  float64 `json:"predicted"`
	StdDev     float64 `json:"std_dev"`
	Lower      float64 `json:"confidence_low"`
	Upper      float64 `json:"confidence_high"`
	Method     string  `json:"method"`
	SampleSize int     `json:"sample_size"`
}

// Baseline is a player's recent-form summary over their last N games.
type Baseline struct {
	Mean       float64 `json:"mean"`
	Median     float64 `json:"median"`
	StdDev     float64 `json:"std"`
	SampleSize int     `json:"sample_size"`
}

// StakeRecommendation sizes a wager as fractions of bankroll.
type StakeRecommendation struct {
	FullKelly     float64 `json:"full_kelly"`
	Conservative  float64 `json:"conservative"`
	KellyFraction float64 `json:"kelly_fraction"`
}
