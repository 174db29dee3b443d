package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BetSide is the side of an over/under line a bet takes.
type BetSide string

const (
	BetSideOver  BetSide = "OVER"
	BetSideUnder BetSide = "UNDER"
)

// BetResult is the settlement state of a tracked bet.
type BetResult string

const (
	BetResultPending BetResult = "PENDING"
	BetResultWin     BetResult = "WIN"
	BetResultLoss    BetResult = "LOSS"
	BetResultPush    BetResult = "PUSH"
)

// DefaultAmericanOdds is the standard juice on player prop lines.
const DefaultAmericanOdds = -110

// Bet is one tracked wager in the ledger. Money fields are decimal; stat
// values stay float64 like the rest of the engine.
type Bet struct {
	ID           uuid.UUID       `db:"id" json:"id" validate:"required"`
	PlacedAt     time.Time       `db:"placed_at" json:"placed_at" validate:"required"`
	PlayerName   string          `db:"player_name" json:"player_name" validate:"required"`
	Stat         string          `db:"stat" json:"stat" validate:"required"`
	Line         float64         `db:"line" json:"line"`
	Side         BetSide         `db:"side" json:"side" validate:"required,oneof=OVER UNDER"`
	AmericanOdds int             `db:"american_odds" json:"american_odds"`
	Stake        decimal.Decimal `db:"stake" json:"stake"`
	Predicted    float64         `db:"predicted" json:"predicted"`
	Edge         float64         `db:"edge" json:"edge"`
	Confidence   float64         `db:"confidence" json:"confidence"`
	Result       BetResult       `db:"result" json:"result"`
	ActualValue  *float64        `db:"actual_value" json:"actual_value"`
	Profit       decimal.Decimal `db:"profit" json:"profit"`
	SettledAt    *time.Time      `db:"settled_at" json:"settled_at"`
	Notes        string          `db:"notes" json:"notes"`
}

// IsSettled reports whether the bet has a final result.
func (b *Bet) IsSettled() bool {
	return b.Result != BetResultPending && b.Result != ""
}

// WinProfit returns the net profit on a winning stake at the bet's american
// odds. A 110 stake at -110 wins exactly 100.
func (b *Bet) WinProfit() decimal.Decimal {
	odds := b.AmericanOdds
	if odds == 0 {
		odds = DefaultAmericanOdds
	}
	if odds < 0 {
		return b.Stake.Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(int64(-odds)))
	}
	return b.Stake.Mul(decimal.NewFromInt(int64(odds))).Div(decimal.NewFromInt(100))
}

// PerformanceSummary aggregates settled ledger results.
type PerformanceSummary struct {
	TotalBets   int                        `json:"total_bets"`
	Pending     int                        `json:"pending"`
	Wins        int                        `json:"wins"`
	Losses      int                        `json:"losses"`
	Pushes      int                        `json:"pushes"`
	WinRate     float64                    `json:"win_rate"`
	TotalStaked decimal.Decimal            `json:"total_staked"`
	NetProfit   decimal.Decimal            `json:"net_profit"`
	ROI         float64                    `json:"roi"`
	ByStat      map[string]StatPerformance `json:"by_stat"`
}

// StatPerformance is the ledger breakdown for one stat category.
type StatPerformance struct {
	Bets   int             `json:"bets"`
	Wins   int             `json:"wins"`
	Profit decimal.Decimal `json:"profit"`
}
