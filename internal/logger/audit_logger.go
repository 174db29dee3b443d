// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging for the bet ledger.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogBetRecorded logs a new ledger entry.
func (al *AuditLogger) LogBetRecorded(betID, playerName, stat string, line float64, side string, stake float64, americanOdds int, edge, confidence float64, placedAt time.Time) {
	al.WithFields(logrus.Fields{
		"bet_id":        betID,
		"player":        playerName,
		"stat":          stat,
		"line":          line,
		"side":          side,
		"stake":         stake,
		"american_odds": americanOdds,
		"edge":          edge,
		"confidence":    confidence,
		"placed_at":     placedAt.Unix(),
	}).Info("Bet recorded")
}

// LogBetSettled logs a bet settlement.
func (al *AuditLogger) LogBetSettled(betID string, result string, actualValue, profit float64) {
	al.WithFields(logrus.Fields{
		"bet_id":       betID,
		"result":       result,
		"actual_value": actualValue,
		"profit":       profit,
	}).Info("Bet settled")
}

// LogLedgerFlush logs a ledger write to durable storage.
func (al *AuditLogger) LogLedgerFlush(destination string, betsWritten int) {
	al.WithFields(logrus.Fields{
		"destination":  destination,
		"bets_written": betsWritten,
	}).Info("Ledger flushed")
}

// LogPerformanceSnapshot logs a periodic ledger performance summary.
func (al *AuditLogger) LogPerformanceSnapshot(settledBets, wins, losses, pushes int, totalProfit, roiPercent float64) {
	al.WithFields(logrus.Fields{
		"settled_bets": settledBets,
		"wins":         wins,
		"losses":       losses,
		"pushes":       pushes,
		"total_profit": totalProfit,
		"roi_percent":  roiPercent,
	}).Info("Ledger performance snapshot")
}
