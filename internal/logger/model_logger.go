// Package logger provides prediction-model logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// ModelLogger provides dedicated logging for prediction model operations.
type ModelLogger struct {
	*logrus.Entry
}

// NewModelLogger creates a new model logger.
func NewModelLogger(baseLogger *logrus.Logger) *ModelLogger {
	return &ModelLogger{
		Entry: baseLogger.WithField("component", "model"),
	}
}

// LogModelTraining logs an ensemble training event.
func (ml *ModelLogger) LogModelTraining(playerID int64, stat string, trainingRows, trees, maxDepth int, durationMs float64) {
	ml.WithFields(logrus.Fields{
		"player_id":     playerID,
		"stat":          stat,
		"training_rows": trainingRows,
		"trees":         trees,
		"max_depth":     maxDepth,
		"duration_ms":   durationMs,
	}).Info("Prediction model trained")
}

// LogPredictionServed logs a served prediction. Predictions flow once per
// teammate per scan, so this stays at debug level.
func (ml *ModelLogger) LogPredictionServed(playerID int64, stat, method string, cacheHit bool, predicted, stdDev float64) {
	ml.WithFields(logrus.Fields{
		"player_id": playerID,
		"stat":      stat,
		"method":    method,
		"cache_hit": cacheHit,
		"predicted": predicted,
		"std_dev":   stdDev,
	}).Debug("Prediction served")
}

// LogModelCacheStats logs prediction cache effectiveness.
func (ml *ModelLogger) LogModelCacheStats(hits, misses uint64, hitRatio float64, cachedModels int) {
	ml.WithFields(logrus.Fields{
		"hits":          hits,
		"misses":        misses,
		"hit_ratio":     hitRatio,
		"cached_models": cachedModels,
	}).Info("Model cache statistics")
}
