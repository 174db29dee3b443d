// Package ledger tracks wagers from placement through settlement and keeps
// a running performance summary. Money arithmetic is decimal throughout;
// stat values stay float64 like the rest of the engine.
package ledger

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/injury-edge/internal/logger"
	"github.com/yourusername/injury-edge/internal/metrics"
	"github.com/yourusername/injury-edge/internal/models"
)

// Store persists ledger entries. Both the CSV file store and the postgres
// bet repository satisfy it.
type Store interface {
	Create(ctx context.Context, bet *models.Bet) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Bet, error)
	Update(ctx context.Context, bet *models.Bet) error
	GetPending(ctx context.Context) ([]*models.Bet, error)
	GetSettled(ctx context.Context) ([]*models.Bet, error)
}

// RecordInput describes a new wager to track.
type RecordInput struct {
	PlayerName   string
	Stat         string
	Line         float64
	Side         models.BetSide
	AmericanOdds int
	Stake        decimal.Decimal
	Predicted    float64
	Edge         float64
	Confidence   float64
	Notes        string
}

// Ledger records and settles bets against a backing store.
type Ledger struct {
	store Store
	audit *logger.AuditLogger
}

// New creates a ledger backed by the given store.
func New(store Store, baseLogger *logrus.Logger) *Ledger {
	if baseLogger == nil {
		baseLogger = logrus.New()
		baseLogger.SetOutput(io.Discard)
	}
	return &Ledger{
		store: store,
		audit: logger.NewAuditLogger(baseLogger),
	}
}

// Record validates and stores a new pending bet, returning the stored entry
// with its generated ID.
func (l *Ledger) Record(ctx context.Context, input RecordInput) (*models.Bet, error) {
	if input.PlayerName == "" {
		return nil, fmt.Errorf("player name is required")
	}
	if !models.IsKnownStat(input.Stat) {
		return nil, fmt.Errorf("stat %q: %w", input.Stat, models.ErrUnknownStat)
	}
	if input.Side != models.BetSideOver && input.Side != models.BetSideUnder {
		return nil, fmt.Errorf("side must be %s or %s, got %q", models.BetSideOver, models.BetSideUnder, input.Side)
	}
	if input.Stake.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("stake must be positive, got %s", input.Stake)
	}

	odds := input.AmericanOdds
	if odds == 0 {
		odds = models.DefaultAmericanOdds
	}

	bet := &models.Bet{
		ID:           uuid.New(),
		PlacedAt:     time.Now().UTC(),
		PlayerName:   input.PlayerName,
		Stat:         input.Stat,
		Line:         input.Line,
		Side:         input.Side,
		AmericanOdds: odds,
		Stake:        input.Stake,
		Predicted:    input.Predicted,
		Edge:         input.Edge,
		Confidence:   input.Confidence,
		Result:       models.BetResultPending,
		Profit:       decimal.Zero,
		Notes:        input.Notes,
	}

	if err := l.store.Create(ctx, bet); err != nil {
		return nil, fmt.Errorf("failed to record bet: %w", err)
	}

	metrics.RecordBetRecorded()
	l.audit.LogBetRecorded(bet.ID.String(), bet.PlayerName, bet.Stat, bet.Line,
		string(bet.Side), bet.Stake.InexactFloat64(), bet.AmericanOdds,
		bet.Edge, bet.Confidence, bet.PlacedAt)
	return bet, nil
}

// Settle resolves a pending bet against the actual stat value. An actual
// landing exactly on the line is a push and returns the stake; otherwise
// OVER wins strictly above the line and UNDER strictly below it.
func (l *Ledger) Settle(ctx context.Context, id uuid.UUID, actual float64) (*models.Bet, error) {
	bet, err := l.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load bet %s: %w", id, err)
	}
	if bet.IsSettled() {
		return nil, fmt.Errorf("bet %s: %w", id, models.ErrAlreadySettled)
	}

	settledAt := time.Now().UTC()
	bet.Result = settleResult(bet.Side, bet.Line, actual)
	bet.ActualValue = &actual
	bet.SettledAt = &settledAt
	bet.Profit = settlementProfit(bet)

	if err := l.store.Update(ctx, bet); err != nil {
		return nil, fmt.Errorf("failed to settle bet %s: %w", id, err)
	}

	metrics.RecordBetSettled(string(bet.Result))
	l.audit.LogBetSettled(bet.ID.String(), string(bet.Result), actual, bet.Profit.InexactFloat64())
	return bet, nil
}

// Pending returns unsettled bets, oldest first.
func (l *Ledger) Pending(ctx context.Context) ([]*models.Bet, error) {
	return l.store.GetPending(ctx)
}

// Settled returns settled bets, most recently settled first.
func (l *Ledger) Settled(ctx context.Context) ([]*models.Bet, error) {
	return l.store.GetSettled(ctx)
}

// Performance summarizes ledger results. Pushes count toward neither wins
// nor losses, so the win rate is wins over decided bets. Staked and ROI
// cover settled bets only.
func (l *Ledger) Performance(ctx context.Context) (*models.PerformanceSummary, error) {
	settled, err := l.store.GetSettled(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settled bets: %w", err)
	}
	pending, err := l.store.GetPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending bets: %w", err)
	}

	summary := &models.PerformanceSummary{
		TotalBets:   len(settled) + len(pending),
		Pending:     len(pending),
		TotalStaked: decimal.Zero,
		NetProfit:   decimal.Zero,
		ByStat:      make(map[string]models.StatPerformance),
	}

	for _, bet := range settled {
		summary.TotalStaked = summary.TotalStaked.Add(bet.Stake)
		summary.NetProfit = summary.NetProfit.Add(bet.Profit)

		stat := summary.ByStat[bet.Stat]
		stat.Bets++
		stat.Profit = stat.Profit.Add(bet.Profit)
		switch bet.Result {
		case models.BetResultWin:
			summary.Wins++
			stat.Wins++
		case models.BetResultLoss:
			summary.Losses++
		case models.BetResultPush:
			summary.Pushes++
		}
		summary.ByStat[bet.Stat] = stat
	}

	if decided := summary.Wins + summary.Losses; decided > 0 {
		summary.WinRate = float64(summary.Wins) / float64(decided) * 100
	}
	if summary.TotalStaked.IsPositive() {
		summary.ROI = summary.NetProfit.Div(summary.TotalStaked).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}

	l.audit.LogPerformanceSnapshot(len(settled), summary.Wins, summary.Losses,
		summary.Pushes, summary.NetProfit.InexactFloat64(), summary.ROI)
	return summary, nil
}

func settleResult(side models.BetSide, line, actual float64) models.BetResult {
	if actual == line {
		return models.BetResultPush
	}
	won := actual > line
	if side == models.BetSideUnder {
		won = actual < line
	}
	if won {
		return models.BetResultWin
	}
	return models.BetResultLoss
}

func settlementProfit(bet *models.Bet) decimal.Decimal {
	switch bet.Result {
	case models.BetResultWin:
		return bet.WinProfit()
	case models.BetResultLoss:
		return bet.Stake.Neg()
	default:
		return decimal.Zero
	}
}
