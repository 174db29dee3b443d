package ledger

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/injury-edge/internal/logger"
	"github.com/yourusername/injury-edge/internal/models"
)

// csvHeader is fixed; the loader rejects files that do not carry it.
var csvHeader = []string{
	"ID", "Date", "Player", "Stat", "Line", "Bet_Type", "Odds",
	"Prediction", "Actual", "Amount", "Result", "Profit",
	"Edge_Percent", "Confidence_Percent", "Settled_At", "Notes",
}

const (
	colID = iota
	colDate
	colPlayer
	colStat
	colLine
	colSide
	colOdds
	colPrediction
	colActual
	colAmount
	colResult
	colProfit
	colEdgePct
	colConfidencePct
	colSettledAt
	colNotes
)

// FileStore is a CSV-backed ledger store. Every change rewrites the whole
// file through a temp file and rename, so a crash mid-write never leaves a
// truncated ledger behind.
type FileStore struct {
	mu    sync.Mutex
	path  string
	audit *logger.AuditLogger
	bets  []*models.Bet
	byID  map[uuid.UUID]int
}

// NewFileStore opens the CSV ledger at path, loading any existing entries.
// The file itself is created on the first write.
func NewFileStore(path string, baseLogger *logrus.Logger) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("ledger file path is required")
	}
	if baseLogger == nil {
		baseLogger = logrus.New()
		baseLogger.SetOutput(io.Discard)
	}

	fs := &FileStore{
		path:  path,
		audit: logger.NewAuditLogger(baseLogger),
		byID:  make(map[uuid.UUID]int),
	}
	if err := fs.load(); err != nil {
		return nil, err
	}
	return fs, nil
}

// Path returns the CSV file location.
func (fs *FileStore) Path() string {
	return fs.path
}

// Create appends a bet and rewrites the file.
func (fs *FileStore) Create(ctx context.Context, bet *models.Bet) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, ok := fs.byID[bet.ID]; ok {
		return fmt.Errorf("bet %s: %w", bet.ID, models.ErrDuplicateRecord)
	}

	fs.byID[bet.ID] = len(fs.bets)
	fs.bets = append(fs.bets, cloneBet(bet))
	if err := fs.flush(); err != nil {
		// Keep memory matching the file on a failed write.
		fs.bets = fs.bets[:len(fs.bets)-1]
		delete(fs.byID, bet.ID)
		return err
	}
	return nil
}

// GetByID returns the bet with the given ID.
func (fs *FileStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Bet, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	idx, ok := fs.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return cloneBet(fs.bets[idx]), nil
}

// Update replaces an existing bet and rewrites the file.
func (fs *FileStore) Update(ctx context.Context, bet *models.Bet) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	idx, ok := fs.byID[bet.ID]
	if !ok {
		return models.ErrNotFound
	}

	prev := fs.bets[idx]
	fs.bets[idx] = cloneBet(bet)
	if err := fs.flush(); err != nil {
		fs.bets[idx] = prev
		return err
	}
	return nil
}

// GetPending returns unsettled bets ordered by placement time, oldest first.
func (fs *FileStore) GetPending(ctx context.Context) ([]*models.Bet, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var out []*models.Bet
	for _, bet := range fs.bets {
		if !bet.IsSettled() {
			out = append(out, cloneBet(bet))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PlacedAt.Before(out[j].PlacedAt)
	})
	return out, nil
}

// GetSettled returns settled bets, most recently settled first.
func (fs *FileStore) GetSettled(ctx context.Context) ([]*models.Bet, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var out []*models.Bet
	for _, bet := range fs.bets {
		if bet.IsSettled() {
			out = append(out, cloneBet(bet))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return settledTime(out[i]).After(settledTime(out[j]))
	})
	return out, nil
}

func (fs *FileStore) load() error {
	f, err := os.Open(fs.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open ledger file: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read ledger file: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}
	if strings.Join(rows[0], ",") != strings.Join(csvHeader, ",") {
		return fmt.Errorf("ledger file %s has an unrecognized header", fs.path)
	}

	for i, row := range rows[1:] {
		bet, err := betFromRow(row)
		if err != nil {
			return fmt.Errorf("ledger row %d: %w", i+2, err)
		}
		if _, ok := fs.byID[bet.ID]; ok {
			return fmt.Errorf("ledger row %d: bet %s: %w", i+2, bet.ID, models.ErrDuplicateRecord)
		}
		fs.byID[bet.ID] = len(fs.bets)
		fs.bets = append(fs.bets, bet)
	}
	return nil
}

func (fs *FileStore) flush() error {
	tmp, err := os.CreateTemp(filepath.Dir(fs.path), ".ledger-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp ledger file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(csvHeader); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write ledger header: %w", err)
	}
	for _, bet := range fs.bets {
		if err := w.Write(rowFromBet(bet)); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to write ledger row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush ledger rows: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp ledger file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fs.path); err != nil {
		return fmt.Errorf("failed to replace ledger file: %w", err)
	}

	fs.audit.LogLedgerFlush(fs.path, len(fs.bets))
	return nil
}

// rowFromBet serializes a bet. Money columns carry two decimal places; edge
// and confidence are stored as percentages to match the column names.
func rowFromBet(b *models.Bet) []string {
	actual := ""
	if b.ActualValue != nil {
		actual = formatStat(*b.ActualValue)
	}
	settledAt := ""
	if b.SettledAt != nil {
		settledAt = b.SettledAt.UTC().Format(time.RFC3339)
	}

	return []string{
		b.ID.String(),
		b.PlacedAt.UTC().Format(time.RFC3339),
		b.PlayerName,
		b.Stat,
		formatStat(b.Line),
		string(b.Side),
		strconv.Itoa(b.AmericanOdds),
		formatStat(b.Predicted),
		actual,
		b.Stake.StringFixed(2),
		string(b.Result),
		b.Profit.StringFixed(2),
		strconv.FormatFloat(b.Edge*100, 'f', 2, 64),
		strconv.FormatFloat(b.Confidence*100, 'f', 2, 64),
		settledAt,
		b.Notes,
	}
}

func betFromRow(row []string) (*models.Bet, error) {
	if len(row) != len(csvHeader) {
		return nil, fmt.Errorf("expected %d columns, got %d", len(csvHeader), len(row))
	}

	id, err := uuid.Parse(row[colID])
	if err != nil {
		return nil, fmt.Errorf("invalid bet ID %q: %w", row[colID], err)
	}
	placedAt, err := time.Parse(time.RFC3339, row[colDate])
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", row[colDate], err)
	}
	line, err := strconv.ParseFloat(row[colLine], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid line %q: %w", row[colLine], err)
	}
	odds, err := strconv.Atoi(row[colOdds])
	if err != nil {
		return nil, fmt.Errorf("invalid odds %q: %w", row[colOdds], err)
	}
	predicted, err := strconv.ParseFloat(row[colPrediction], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid prediction %q: %w", row[colPrediction], err)
	}
	stake, err := decimal.NewFromString(row[colAmount])
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", row[colAmount], err)
	}
	profit, err := decimal.NewFromString(row[colProfit])
	if err != nil {
		return nil, fmt.Errorf("invalid profit %q: %w", row[colProfit], err)
	}
	edgePct, err := strconv.ParseFloat(row[colEdgePct], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid edge %q: %w", row[colEdgePct], err)
	}
	confidencePct, err := strconv.ParseFloat(row[colConfidencePct], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid confidence %q: %w", row[colConfidencePct], err)
	}

	bet := &models.Bet{
		ID:           id,
		PlacedAt:     placedAt,
		PlayerName:   row[colPlayer],
		Stat:         row[colStat],
		Line:         line,
		Side:         models.BetSide(row[colSide]),
		AmericanOdds: odds,
		Stake:        stake,
		Predicted:    predicted,
		Edge:         edgePct / 100,
		Confidence:   confidencePct / 100,
		Result:       models.BetResult(row[colResult]),
		Profit:       profit,
		Notes:        row[colNotes],
	}

	if row[colActual] != "" {
		actual, err := strconv.ParseFloat(row[colActual], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid actual value %q: %w", row[colActual], err)
		}
		bet.ActualValue = &actual
	}
	if row[colSettledAt] != "" {
		settledAt, err := time.Parse(time.RFC3339, row[colSettledAt])
		if err != nil {
			return nil, fmt.Errorf("invalid settled time %q: %w", row[colSettledAt], err)
		}
		bet.SettledAt = &settledAt
	}
	return bet, nil
}

func formatStat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func cloneBet(b *models.Bet) *models.Bet {
	clone := *b
	if b.ActualValue != nil {
		v := *b.ActualValue
		clone.ActualValue = &v
	}
	if b.SettledAt != nil {
		t := *b.SettledAt
		clone.SettledAt = &t
	}
	return &clone
}

func settledTime(b *models.Bet) time.Time {
	if b.SettledAt == nil {
		return time.Time{}
	}
	return *b.SettledAt
}
