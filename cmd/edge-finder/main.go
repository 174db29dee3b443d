// Package main provides the edge-finder CLI: star-absence impact analysis
// and betting line scans from the command line.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/injury-edge/internal/analysis"
	"github.com/yourusername/injury-edge/internal/config"
	"github.com/yourusername/injury-edge/internal/datasource"
	applogger "github.com/yourusername/injury-edge/internal/logger"
	"github.com/yourusername/injury-edge/internal/sample"
	"github.com/yourusername/injury-edge/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	starName   string
	playerName string
	teamAbbrev string
	statCode   string
	season     string
	linesFile  string
	useSample  bool
	minEdge    float64
	topN       int
	window     int

	logger   *logrus.Logger
	cfg      *config.Config
	source   datasource.GameLogSource
	analyzer *service.AbsenceAnalysisService
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVar(&useSample, "sample", false, "Use the generated sample season instead of the live provider")
	rootCmd.PersistentFlags().StringVar(&statCode, "stat", "", "Stat code (PTS, REB, AST, ...); defaults to the configured stat")
	rootCmd.PersistentFlags().StringVar(&season, "season", "", "Season like 2024-25; defaults to the current one")

	analyzeCmd.Flags().StringVar(&starName, "star", "", "Star player name (e.g. \"Joel Embiid\")")
	analyzeCmd.Flags().StringVar(&teamAbbrev, "team", "", "Team abbreviation (e.g. PHI)")
	analyzeCmd.Flags().StringVar(&linesFile, "lines", "", "Path to a JSON lines file (player name or ID -> line)")
	analyzeCmd.Flags().Float64Var(&minEdge, "min-edge", 0, "Minimum edge to report; defaults to the configured threshold")

	impactCmd.Flags().StringVar(&starName, "star", "", "Star player name")
	impactCmd.Flags().StringVar(&teamAbbrev, "team", "", "Team abbreviation")
	impactCmd.Flags().IntVar(&topN, "top", 0, "Number of teammates to show; defaults to the configured cap")

	baselineCmd.Flags().StringVar(&playerName, "player", "", "Player name")
	baselineCmd.Flags().IntVar(&window, "window", 0, "Recent games window; defaults to the configured window")
}

var rootCmd = &cobra.Command{
	Use:   "edge-finder",
	Short: "Find betting edges created by NBA star absences",
	Long: `Measures how a star player's absence shifts teammate production and
scans sportsbook lines for positive expected value on those shifts.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := setupDependencies(); err != nil {
			return fmt.Errorf("failed to setup dependencies: %w", err)
		}
		return nil
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Scan a star's teammates for bettable lines while the star sits",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze(context.Background())
	},
}

var impactCmd = &cobra.Command{
	Use:   "impact",
	Short: "Rank teammates by production shift when the star sits",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImpact(context.Background())
	},
}

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Show a player's recent form and next-game estimate",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBaseline(context.Background())
	},
}

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Run the full pipeline over the generated demo season",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSample(context.Background())
	},
}

func main() {
	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate)
	rootCmd.AddCommand(analyzeCmd, impactCmd, baselineCmd, sampleCmd)

	if err := rootCmd.Execute(); err != nil {
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

func setupDependencies() error {
	logger = applogger.NewLogger(cfg.App.LogLevel)

	if useSample {
		source = sample.NewSource(sample.DefaultConfig())
	} else {
		factory := datasource.NewFactory(cfg, logger)
		var err error
		source, err = factory.CreateFromConfig()
		if err != nil {
			return fmt.Errorf("failed to create data source: %w", err)
		}
	}

	analyzer = service.NewAbsenceAnalysisService(source, service.OptionsFromConfig(cfg), logger)
	return nil
}

func resolveStat() string {
	if statCode != "" {
		return statCode
	}
	return cfg.Analysis.DefaultStat
}

// fillSampleDefaults lets --sample run without naming the demo star.
func fillSampleDefaults() {
	if !useSample {
		return
	}
	if starName == "" {
		starName = sample.StarName
	}
	if teamAbbrev == "" {
		teamAbbrev = sample.TeamAbbrev
	}
}

func loadLines() (*analysis.LineBook, error) {
	if linesFile != "" {
		data, err := os.ReadFile(linesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read lines file: %w", err)
		}
		return analysis.ParseLineBook(data)
	}
	if useSample {
		return sampleLineBook(), nil
	}
	return nil, fmt.Errorf("a lines file is required (--lines), or run with --sample")
}

func sampleLineBook() *analysis.LineBook {
	book := analysis.NewLineBook()
	for name, line := range sample.DefaultLines() {
		book.SetByName(name, line)
	}
	return book
}

func runAnalyze(ctx context.Context) error {
	fillSampleDefaults()
	if starName == "" || teamAbbrev == "" {
		return fmt.Errorf("--star and --team are required")
	}

	lines, err := loadLines()
	if err != nil {
		return err
	}

	if minEdge > 0 {
		opts := service.OptionsFromConfig(cfg)
		opts.MinEdge = minEdge
		analyzer = service.NewAbsenceAnalysisService(source, opts, logger)
	}

	report, err := analyzer.Analyze(ctx, starName, teamAbbrev, resolveStat(), season, lines)
	if err != nil {
		return err
	}

	printReport(report)
	return nil
}

func runImpact(ctx context.Context) error {
	fillSampleDefaults()
	if starName == "" || teamAbbrev == "" {
		return fmt.Errorf("--star and --team are required")
	}

	stat := resolveStat()
	impacts, err := analyzer.Impact(ctx, starName, teamAbbrev, stat, season, topN)
	if err != nil {
		return err
	}

	fmt.Printf("\n=== Teammate Impact: %s out (%s) ===\n", starName, stat)
	if len(impacts) == 0 {
		fmt.Println("No teammate shows a material shift yet.")
		return nil
	}
	for i, ti := range impacts {
		marker := " "
		if ti.Impact.Significant {
			marker = "*"
		}
		fmt.Printf("%2d. %-22s %5.1f -> %5.1f  (%+.1f, %+.1f%%)%s  without n=%d\n",
			i+1, ti.PlayerName,
			ti.Impact.WithStarMean, ti.Impact.WithoutStarMean,
			ti.Impact.Difference, ti.Impact.PercentChange,
			marker, ti.Impact.WithoutStarGames)
	}
	fmt.Println("\n* statistically significant (p < 0.05)")
	return nil
}

func runBaseline(ctx context.Context) error {
	if playerName == "" {
		if useSample {
			playerName = sample.StarName
		} else {
			return fmt.Errorf("--player is required")
		}
	}

	if window > 0 {
		opts := service.OptionsFromConfig(cfg)
		opts.BaselineWindow = window
		analyzer = service.NewAbsenceAnalysisService(source, opts, logger)
	}

	form, err := analyzer.Baseline(ctx, playerName, resolveStat(), season)
	if err != nil {
		return err
	}

	fmt.Printf("\n=== Recent Form: %s (%s) ===\n", form.Player.Name, form.Stat)
	fmt.Printf("Mean:   %.1f\n", form.Baseline.Mean)
	fmt.Printf("Median: %.1f\n", form.Baseline.Median)
	fmt.Printf("StdDev: %.1f\n", form.Baseline.StdDev)
	fmt.Printf("Games:  %d\n", form.Baseline.SampleSize)
	if form.NextGame != nil {
		fmt.Printf("\nNext game estimate: %.1f (%.1f to %.1f, %s)\n",
			form.NextGame.Predicted, form.NextGame.Lower, form.NextGame.Upper, form.NextGame.Method)
	}
	return nil
}

func runSample(ctx context.Context) error {
	demo := sample.NewSource(sample.DefaultConfig())
	svc := service.NewAbsenceAnalysisService(demo, service.OptionsFromConfig(cfg), logger)

	report, err := svc.Analyze(ctx, sample.StarName, sample.TeamAbbrev, resolveStat(), "2024-25", sampleLineBook())
	if err != nil {
		return err
	}

	printReport(report)
	return nil
}

func printReport(report *service.AnalysisReport) {
	fmt.Println("\n=== Star Absence Analysis ===")
	fmt.Printf("Run ID:   %s\n", report.RunID)
	fmt.Printf("Star:     %s (%s, %s)\n", report.Star.Name, report.Team, report.Season)
	fmt.Printf("Stat:     %s\n", report.Stat)
	fmt.Printf("Dataset:  %d players, %d game records\n", report.Players, report.Records)
	fmt.Printf("Duration: %v\n", report.Duration)

	if len(report.Opportunities) == 0 {
		fmt.Println("\nNo betting opportunities cleared the edge threshold.")
	} else {
		fmt.Printf("\nOpportunities (%d):\n", len(report.Opportunities))
		for i, opp := range report.Opportunities {
			fmt.Printf("  %d. %s %s %.1f %s\n", i+1, opp.PlayerName, opp.Recommendation, opp.Line, opp.Stat)
			fmt.Printf("     with star %.1f -> without %.1f (%+.1f), %d games without\n",
				opp.WithStarMean, opp.WithoutStarMean, opp.Difference, opp.GamesWithoutStar)
			fmt.Printf("     edge %.3f, win prob %.2f\n", opp.Edge, opp.Confidence)
			if opp.Stake != nil {
				fmt.Printf("     stake: %.1f%% of bankroll (full Kelly %.1f%%)\n",
					opp.Stake.Conservative*100, opp.Stake.FullKelly*100)
			}
			if opp.NextGame != nil {
				fmt.Printf("     next game model: %.1f (%.1f to %.1f, %s)\n",
					opp.NextGame.Predicted, opp.NextGame.Lower, opp.NextGame.Upper, opp.NextGame.Method)
			}
		}
	}

	if len(report.MissingLines) > 0 {
		fmt.Printf("\nMaterial impacts with no listed line (%d):\n", len(report.MissingLines))
		for _, ti := range report.MissingLines {
			fmt.Printf("  - %s: %+.1f %s over %d games without the star\n",
				ti.PlayerName, ti.Impact.Difference, ti.Impact.Stat, ti.Impact.WithoutStarGames)
		}
	}
}
