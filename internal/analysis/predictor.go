package analysis

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/injury-edge/internal/logger"
	"github.com/yourusername/injury-edge/internal/models"
	"github.com/yourusername/injury-edge/internal/store"
)

// PredictorConfig tunes the performance predictor.
type PredictorConfig struct {
	// MinRecords is the history size below which the predictor falls back
	// to the plain historical mean.
	MinRecords int
	// MinTrainingRecords gates model building; players with a shorter
	// history use the rolling average.
	MinTrainingRecords int
	// MinTrainingRows is the minimum clean feature rows needed to fit.
	MinTrainingRows int
	// RollingWindow is the trailing-games window for recent form.
	RollingWindow int
	Forest        ForestConfig
	CacheTTL      time.Duration
	CacheMaxSize  int
}

// DefaultPredictorConfig mirrors the production parameters.
func DefaultPredictorConfig() PredictorConfig {
	return PredictorConfig{
		MinRecords:         10,
		MinTrainingRecords: 20,
		MinTrainingRows:    10,
		RollingWindow:      5,
		Forest:             DefaultForestConfig(),
		CacheTTL:           0,
		CacheMaxSize:       512,
	}
}

// PerformancePredictor produces a point estimate and dispersion for a
// player's next-game stat. Trained regressors are cached per (player, stat)
// for the life of the predictor; everything else is recomputed per call.
type PerformancePredictor struct {
	store    *store.Store
	cache    *ModelCache
	cfg      PredictorConfig
	logger   *logrus.Logger
	modelLog *logger.ModelLogger
}

// NewPerformancePredictor creates a predictor over the given store.
func NewPerformancePredictor(s *store.Store, cfg PredictorConfig, baseLogger *logrus.Logger) *PerformancePredictor {
	if cfg.MinRecords <= 0 {
		cfg = DefaultPredictorConfig()
	}
	p := &PerformancePredictor{
		store:  s,
		cache:  NewModelCache(cfg.CacheTTL, cfg.CacheMaxSize),
		cfg:    cfg,
		logger: baseLogger,
	}
	if baseLogger != nil {
		p.modelLog = logger.NewModelLogger(baseLogger)
	}
	return p
}

// Reset drops every cached model. Callers reusing one predictor across
// sessions reset between them so stale training data cannot leak through.
func (p *PerformancePredictor) Reset() {
	p.cache.Reset()
}

// CacheStats exposes model cache hit/miss counts for instrumentation.
func (p *PerformancePredictor) CacheStats() (hits, misses uint64, ratio float64) {
	return p.cache.Stats()
}

// LogCacheStats emits the cache effectiveness summary for this predictor.
// Callers invoke it once at the end of a run.
func (p *PerformancePredictor) LogCacheStats() {
	if p.modelLog == nil {
		return
	}
	hits, misses, ratio := p.cache.Stats()
	p.modelLog.LogModelCacheStats(hits, misses, ratio, p.cache.ItemCount())
}

// Predict estimates the player's next-game stat. With fewer than
// MinRecords games the estimate degrades to the historical mean; otherwise
// it is the cached regressor's output when one can be built, else the
// trailing rolling average. Dispersion is always the rolling (or full
// sample, on the degraded path) standard deviation, and the interval is
// estimate +/- 1.96 sigma.
func (p *PerformancePredictor) Predict(playerID int64, stat string, isHome bool, expectedMinutes float64) (*models.PredictionResult, error) {
	if !models.IsKnownStat(stat) {
		return nil, fmt.Errorf("%q: %w", stat, models.ErrUnknownStat)
	}

	records := p.store.PlayerRecords(playerID)
	values := statValues(records, stat)
	if len(values) == 0 {
		return nil, fmt.Errorf("player %d has no usable %s records: %w", playerID, stat, models.ErrInsufficientData)
	}

	if len(values) < p.cfg.MinRecords {
		predicted := mean(values)
		stdDev := sampleStdDev(values)
		return p.served(playerID, stat, false,
			newPrediction(predicted, stdDev, models.PredictionMethodHistoricalMean, len(values))), nil
	}

	recent := tail(values, p.cfg.RollingWindow)
	rollingMean := mean(recent)
	rollingStd := sampleStdDev(recent)

	forest, cached := p.model(playerID, stat, records)
	if forest == nil {
		return p.served(playerID, stat, false,
			newPrediction(rollingMean, rollingStd, models.PredictionMethodRollingAverage, len(values))), nil
	}

	homeFlag := 0.0
	if isHome {
		homeFlag = 1.0
	}
	predicted := forest.Predict([]float64{expectedMinutes, homeFlag, rollingMean})
	return p.served(playerID, stat, cached,
		newPrediction(predicted, rollingStd, models.PredictionMethodEnsemble, len(values))), nil
}

func (p *PerformancePredictor) served(playerID int64, stat string, cacheHit bool, result *models.PredictionResult) *models.PredictionResult {
	if p.modelLog != nil {
		p.modelLog.LogPredictionServed(playerID, stat, result.Method, cacheHit, result.Predicted, result.StdDev)
	}
	return result
}

func newPrediction(predicted, stdDev float64, method string, sampleSize int) *models.PredictionResult {
	return &models.PredictionResult{
		Predicted:  predicted,
		StdDev:     stdDev,
		Lower:      predicted - 1.96*stdDev,
		Upper:      predicted + 1.96*stdDev,
		Method:     method,
		SampleSize: sampleSize,
	}
}

// model returns the cached regressor for (player, stat), training one when
// the history is long enough. Returns nil when no model can be built; the
// failed attempt is not cached, so a longer history later can succeed.
func (p *PerformancePredictor) model(playerID int64, stat string, records []models.GameRecord) (*Forest, bool) {
	key := ModelKey{PlayerID: playerID, Stat: stat}
	if forest := p.cache.Get(key); forest != nil {
		return forest, true
	}

	forest := p.train(playerID, stat, records)
	if forest != nil {
		p.cache.Set(key, forest)
	}
	return forest, false
}

// train fits a forest on (minutes, home, trailing rolling mean) -> stat.
// The rolling mean feature includes the row's own game, matching how the
// prediction-time feature is computed from the latest games.
func (p *PerformancePredictor) train(playerID int64, stat string, records []models.GameRecord) *Forest {
	type row struct {
		minutes float64
		home    float64
		target  float64
	}

	rows := make([]row, 0, len(records))
	for i := range records {
		value, defined := records[i].StatValue(stat)
		if !defined {
			continue
		}
		home := 0.0
		if records[i].IsHomeGame() {
			home = 1.0
		}
		rows = append(rows, row{minutes: records[i].Minutes, home: home, target: value})
	}

	if len(rows) < p.cfg.MinTrainingRecords {
		return nil
	}

	window := p.cfg.RollingWindow
	features := make([][]float64, len(rows))
	targets := make([]float64, len(rows))
	rollingSum := 0.0
	for i, r := range rows {
		rollingSum += r.target
		if i >= window {
			rollingSum -= rows[i-window].target
		}
		span := i + 1
		if span > window {
			span = window
		}
		features[i] = []float64{r.minutes, r.home, rollingSum / float64(span)}
		targets[i] = r.target
	}

	if len(targets) < p.cfg.MinTrainingRows {
		return nil
	}

	started := time.Now()
	forest, err := TrainForest(features, targets, p.cfg.Forest)
	if err != nil {
		if p.logger != nil {
			p.logger.WithError(err).WithFields(logrus.Fields{
				"player_id": playerID,
				"stat":      stat,
			}).Warn("Failed to train prediction model")
		}
		return nil
	}

	if p.modelLog != nil {
		p.modelLog.LogModelTraining(playerID, stat, len(targets),
			p.cfg.Forest.Trees, p.cfg.Forest.MaxDepth, time.Since(started).Seconds()*1000)
	}
	return forest
}
