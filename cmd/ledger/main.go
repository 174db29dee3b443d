// Package main provides the ledger CLI for recording wagers, settling them
// against actual stat lines, and reviewing performance.
package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/injury-edge/internal/config"
	"github.com/yourusername/injury-edge/internal/database"
	"github.com/yourusername/injury-edge/internal/ledger"
	applogger "github.com/yourusername/injury-edge/internal/logger"
	"github.com/yourusername/injury-edge/internal/models"
	"github.com/yourusername/injury-edge/internal/repository"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	csvPath    string

	betPlayer     string
	betStat       string
	betLine       float64
	betSide       string
	betStake      string
	betOdds       int
	betPredicted  float64
	betEdge       float64
	betConfidence float64
	betNotes      string
	actualValue   float64

	logger *logrus.Logger
	cfg    *config.Config
	db     *database.DB
	book   *ledger.Ledger
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&csvPath, "csv", "", "Ledger CSV path; defaults to the configured one")

	recordCmd.Flags().StringVar(&betPlayer, "player", "", "Player name")
	recordCmd.Flags().StringVar(&betStat, "stat", "PTS", "Stat code (PTS, REB, AST, ...)")
	recordCmd.Flags().Float64Var(&betLine, "line", 0, "Sportsbook line")
	recordCmd.Flags().StringVar(&betSide, "side", "", "OVER or UNDER")
	recordCmd.Flags().StringVar(&betStake, "stake", "", "Stake amount, e.g. 50 or 25.50")
	recordCmd.Flags().IntVar(&betOdds, "odds", 0, "American odds; defaults to the configured juice")
	recordCmd.Flags().Float64Var(&betPredicted, "predicted", 0, "Model's predicted stat value")
	recordCmd.Flags().Float64Var(&betEdge, "edge", 0, "Expected value per unit staked")
	recordCmd.Flags().Float64Var(&betConfidence, "confidence", 0, "Estimated win probability")
	recordCmd.Flags().StringVar(&betNotes, "notes", "", "Free-form note")

	settleCmd.Flags().Float64Var(&actualValue, "actual", 0, "Actual stat value the player posted")
	settleCmd.MarkFlagRequired("actual")
}

var rootCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Track star-absence wagers from placement to settlement",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := setupDependencies(cmd.Context()); err != nil {
			return fmt.Errorf("failed to setup dependencies: %w", err)
		}
		return nil
	},
}

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a new pending bet",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRecord(context.Background())
	},
}

var settleCmd = &cobra.Command{
	Use:   "settle <bet-id>",
	Short: "Settle a pending bet against the actual stat value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSettle(context.Background(), args[0])
	},
}

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List unsettled bets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPending(context.Background())
	},
}

var performanceCmd = &cobra.Command{
	Use:   "performance",
	Short: "Summarize settled results",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPerformance(context.Background())
	},
}

func main() {
	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate)
	rootCmd.AddCommand(recordCmd, settleCmd, pendingCmd, performanceCmd)

	err := rootCmd.Execute()
	if db != nil {
		db.Close()
	}
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}
	return nil
}

// setupDependencies picks the ledger store: the postgres bet repository when
// persistence is enabled, otherwise the CSV file store.
func setupDependencies(ctx context.Context) error {
	logger = applogger.NewLogger(cfg.App.LogLevel)

	if cfg.Features.PersistenceEnabled {
		var err error
		db, err = database.Initialize(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		repos, err := repository.NewRepositories(db)
		if err != nil {
			return fmt.Errorf("failed to initialize repositories: %w", err)
		}
		book = ledger.New(repos.Bet, logger)
		return nil
	}

	path := csvPath
	if path == "" {
		path = cfg.Ledger.CSVPath
	}
	store, err := ledger.NewFileStore(path, logger)
	if err != nil {
		return fmt.Errorf("failed to open ledger file: %w", err)
	}
	book = ledger.New(store, logger)
	return nil
}

func runRecord(ctx context.Context) error {
	stake, err := decimal.NewFromString(betStake)
	if err != nil {
		return fmt.Errorf("invalid stake %q: %w", betStake, err)
	}

	odds := betOdds
	if odds == 0 {
		odds = cfg.Ledger.AmericanOdds
	}

	bet, err := book.Record(ctx, ledger.RecordInput{
		PlayerName:   betPlayer,
		Stat:         strings.ToUpper(betStat),
		Line:         betLine,
		Side:         models.BetSide(strings.ToUpper(betSide)),
		AmericanOdds: odds,
		Stake:        stake,
		Predicted:    betPredicted,
		Edge:         betEdge,
		Confidence:   betConfidence,
		Notes:        betNotes,
	})
	if err != nil {
		return err
	}

	fmt.Printf("✓ Recorded bet %s\n", bet.ID)
	fmt.Printf("  %s %s %.1f %s, stake %s at %+d\n",
		bet.PlayerName, bet.Side, bet.Line, bet.Stat, bet.Stake.StringFixed(2), bet.AmericanOdds)
	return nil
}

func runSettle(ctx context.Context, rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid bet id %q: %w", rawID, err)
	}

	bet, err := book.Settle(ctx, id, actualValue)
	if err != nil {
		return err
	}

	switch bet.Result {
	case models.BetResultWin:
		fmt.Printf("✓ WIN: %s %s %.1f %s, actual %.1f, profit %s\n",
			bet.PlayerName, bet.Side, bet.Line, bet.Stat, actualValue, bet.Profit.StringFixed(2))
	case models.BetResultPush:
		fmt.Printf("✓ PUSH: %s landed exactly on %.1f, stake returned\n", bet.PlayerName, bet.Line)
	default:
		fmt.Printf("❌ LOSS: %s %s %.1f %s, actual %.1f, lost %s\n",
			bet.PlayerName, bet.Side, bet.Line, bet.Stat, actualValue, bet.Stake.StringFixed(2))
	}
	return nil
}

func runPending(ctx context.Context) error {
	bets, err := book.Pending(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("\n=== Pending Bets (%d) ===\n", len(bets))
	for i, bet := range bets {
		fmt.Printf("%2d. %s  %s %s %.1f %s, stake %s at %+d, placed %s\n",
			i+1, bet.ID, bet.PlayerName, bet.Side, bet.Line, bet.Stat,
			bet.Stake.StringFixed(2), bet.AmericanOdds, bet.PlacedAt.Format("2006-01-02"))
	}
	if len(bets) == 0 {
		fmt.Println("Nothing pending.")
	}
	return nil
}

func runPerformance(ctx context.Context) error {
	summary, err := book.Performance(ctx)
	if err != nil {
		return err
	}

	fmt.Println("\n=== Ledger Performance ===")
	fmt.Printf("Total bets: %d (%d pending)\n", summary.TotalBets, summary.Pending)
	fmt.Printf("Record:     %d-%d-%d\n", summary.Wins, summary.Losses, summary.Pushes)
	fmt.Printf("Win rate:   %.1f%%\n", summary.WinRate)
	fmt.Printf("Staked:     %s\n", summary.TotalStaked.StringFixed(2))
	fmt.Printf("Net profit: %s\n", summary.NetProfit.StringFixed(2))
	fmt.Printf("ROI:        %.1f%%\n", summary.ROI)

	if len(summary.ByStat) > 0 {
		fmt.Println("\nBy stat:")
		for stat, perf := range summary.ByStat {
			fmt.Printf("  %-4s %d bets, %d wins, profit %s\n", stat, perf.Bets, perf.Wins, perf.Profit.StringFixed(2))
		}
	}
	return nil
}
