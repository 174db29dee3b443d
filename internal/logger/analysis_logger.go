// Package logger provides analysis-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// AnalysisLogger provides dedicated logging for impact analysis operations.
type AnalysisLogger struct {
	*logrus.Entry
}

// NewAnalysisLogger creates a new analysis logger.
func NewAnalysisLogger(baseLogger *logrus.Logger) *AnalysisLogger {
	return &AnalysisLogger{
		Entry: baseLogger.WithField("component", "analysis"),
	}
}

// LogImpactAnalysis logs a roster-wide impact analysis.
func (al *AnalysisLogger) LogImpactAnalysis(starID, teamID int64, stat string, teammatesEvaluated, materialImpacts int, durationMs float64) {
	al.WithFields(logrus.Fields{
		"star_id":              starID,
		"team_id":              teamID,
		"stat":                 stat,
		"teammates_evaluated":  teammatesEvaluated,
		"material_impacts":     materialImpacts,
		"analysis_duration_ms": durationMs,
	}).Info("Impact analysis completed")
}

// LogOpportunityScan logs an opportunity scan against a line book.
func (al *AnalysisLogger) LogOpportunityScan(starID int64, stat string, linesAvailable, opportunities, missingLines int, minEdge float64) {
	al.WithFields(logrus.Fields{
		"star_id":         starID,
		"stat":            stat,
		"lines_available": linesAvailable,
		"opportunities":   opportunities,
		"missing_lines":   missingLines,
		"min_edge":        minEdge,
	}).Info("Opportunity scan completed")
}

// LogEdgeDecision logs a single line evaluation.
func (al *AnalysisLogger) LogEdgeDecision(playerID int64, playerName, stat string, line, prediction float64, recommendation string, edge, confidence float64) {
	al.WithFields(logrus.Fields{
		"player_id":      playerID,
		"player":         playerName,
		"stat":           stat,
		"line":           line,
		"prediction":     prediction,
		"recommendation": recommendation,
		"edge":           edge,
		"confidence":     confidence,
	}).Info("Edge decision made")
}

// LogSignificantImpact logs a statistically significant teammate lift.
func (al *AnalysisLogger) LogSignificantImpact(starID, teammateID int64, stat string, difference, percentChange, pValue float64) {
	al.WithFields(logrus.Fields{
		"star_id":        starID,
		"teammate_id":    teammateID,
		"stat":           stat,
		"difference":     difference,
		"percent_change": percentChange,
		"p_value":        pValue,
	}).Info("Significant absence impact detected")
}

// LogInsufficientSample logs a teammate skipped for too few without-star games.
func (al *AnalysisLogger) LogInsufficientSample(starID, teammateID int64, stat string, required int) {
	al.WithFields(logrus.Fields{
		"star_id":     starID,
		"teammate_id": teammateID,
		"stat":        stat,
		"required":    required,
	}).Debug("Teammate skipped for insufficient sample")
}
