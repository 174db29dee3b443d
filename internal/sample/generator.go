// Package sample generates a deterministic demo dataset: a 76ers-style
// roster where the star sits out a chunk of games and his teammates score
// more in his absence. It lets the whole pipeline run without touching the
// stats provider.
package sample

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/yourusername/injury-edge/internal/models"
)

// Well-known IDs used across the demo dataset
const (
	TeamID     = int64(1610612755) // PHI
	TeamAbbrev = "PHI"

	StarID   = int64(203954) // Joel Embiid
	StarName = "Joel Embiid"

	MaxeyID  = int64(1630178) // Tyrese Maxey
	HarrisID = int64(202699)  // Tobias Harris
	MeltonID = int64(1629001) // De'Anthony Melton
	OubreID  = int64(1626162) // Kelly Oubre Jr.
)

// Config controls the shape of the generated season
type Config struct {
	Seed      int64
	Games     int
	StartDate time.Time
	SitRate   float64 // fraction of games the star sits out
}

// DefaultConfig returns the canonical demo season: 40 games every other
// day from late October, star sitting roughly 40% of them.
func DefaultConfig() Config {
	return Config{
		Seed:      42,
		Games:     40,
		StartDate: time.Date(2024, 10, 25, 0, 0, 0, 0, time.UTC),
		SitRate:   0.4,
	}
}

// DefaultLines returns plausible sportsbook points lines for the demo
// roster, keyed by player name.
func DefaultLines() map[string]float64 {
	return map[string]float64{
		"Tyrese Maxey":      25.5,
		"Tobias Harris":     17.5,
		"De'Anthony Melton": 12.5,
		"Kelly Oubre Jr.":   15.5,
	}
}

type teammateProfile struct {
	id             int64
	name           string
	position       string
	minLo, minHi   float64
	ptsWith        float64
	ptsWithSD      float64
	ptsWithout     float64
	ptsWithoutSD   float64
	rebMean, rebSD float64
	astMean, astSD float64
	fgLo, fgHi     float64
}

var teammates = []teammateProfile{
	{MaxeyID, "Tyrese Maxey", "G", 34, 38, 24, 4, 30, 5, 4, 1.5, 6, 2, 0.42, 0.52},
	{HarrisID, "Tobias Harris", "F", 30, 35, 16, 3, 19, 4, 6, 2, 3, 1, 0.43, 0.51},
	{MeltonID, "De'Anthony Melton", "G", 25, 32, 11, 3, 14, 3.5, 4, 1.5, 3, 1.5, 0.39, 0.48},
	{OubreID, "Kelly Oubre Jr.", "F", 28, 34, 14, 3, 16, 3.5, 5, 1.5, 1.5, 1, 0.41, 0.50},
}

// Generator produces the demo season from a fixed seed
type Generator struct {
	cfg Config
	rng *rand.Rand
}

// NewGenerator creates a generator for the given config. Zero values fall
// back to the defaults.
func NewGenerator(cfg Config) *Generator {
	def := DefaultConfig()
	if cfg.Games <= 0 {
		cfg.Games = def.Games
	}
	if cfg.StartDate.IsZero() {
		cfg.StartDate = def.StartDate
	}
	if cfg.SitRate <= 0 || cfg.SitRate >= 1 {
		cfg.SitRate = def.SitRate
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Roster returns the demo roster
func (g *Generator) Roster() []models.Player {
	roster := []models.Player{
		{ID: StarID, Name: StarName, TeamID: TeamID, Position: "C"},
	}
	for _, tp := range teammates {
		roster = append(roster, models.Player{ID: tp.id, Name: tp.name, TeamID: TeamID, Position: tp.position})
	}
	return roster
}

// Generate produces the full season of game records for the demo roster.
// The star's missed games are emitted as records with Played unset so the
// dataset carries the absence explicitly.
func (g *Generator) Generate() []models.GameRecord {
	records := make([]models.GameRecord, 0, g.cfg.Games*(len(teammates)+1))

	for i := 0; i < g.cfg.Games; i++ {
		gameID := fmt.Sprintf("%d", 20240001+i)
		gameDate := g.cfg.StartDate.AddDate(0, 0, i*2)

		matchup := "PHI vs. BOS"
		if g.rng.Float64() < 0.5 {
			matchup = "PHI @ BOS"
		}

		starPlays := g.rng.Float64() > g.cfg.SitRate

		winChance := 0.35
		if starPlays {
			winChance = 0.55
		}
		winLoss := "L"
		plusShift := -6.0
		if g.rng.Float64() < winChance {
			winLoss = "W"
			plusShift = 6.0
		}

		star := models.GameRecord{
			GameID:     gameID,
			PlayerID:   StarID,
			PlayerName: StarName,
			TeamID:     TeamID,
			GameDate:   gameDate,
			Matchup:    matchup,
			WinLoss:    winLoss,
			Season:     "2024-25",
			Played:     starPlays,
		}
		if starPlays {
			star.Minutes = g.uniform(30, 37)
			star.Points = g.stat(28, 5)
			star.Rebounds = g.stat(11, 2)
			star.Assists = g.stat(5, 2)
			star.Steals = g.stat(1, 0.8)
			star.Blocks = g.stat(1.7, 1)
			star.Turnovers = g.stat(3, 1.2)
			star.FieldGoalPct = g.uniform(0.45, 0.58)
			star.ThreePtMade = g.stat(1.2, 1)
			star.PlusMinus = math.Round(g.rng.NormFloat64()*6 + plusShift)
		}
		records = append(records, star)

		for _, tp := range teammates {
			pts := g.stat(tp.ptsWith, tp.ptsWithSD)
			if !starPlays {
				pts = g.stat(tp.ptsWithout, tp.ptsWithoutSD)
			}
			records = append(records, models.GameRecord{
				GameID:       gameID,
				PlayerID:     tp.id,
				PlayerName:   tp.name,
				TeamID:       TeamID,
				GameDate:     gameDate,
				Matchup:      matchup,
				WinLoss:      winLoss,
				Season:       "2024-25",
				Played:       true,
				Minutes:      g.uniform(tp.minLo, tp.minHi),
				Points:       pts,
				Rebounds:     g.stat(tp.rebMean, tp.rebSD),
				Assists:      g.stat(tp.astMean, tp.astSD),
				Steals:       g.stat(1, 0.7),
				Blocks:       g.stat(0.5, 0.5),
				Turnovers:    g.stat(2, 1),
				FieldGoalPct: g.uniform(tp.fgLo, tp.fgHi),
				ThreePtMade:  g.stat(1.5, 1.2),
				PlusMinus:    math.Round(g.rng.NormFloat64()*6 + plusShift),
			})
		}
	}

	return records
}

// stat draws a whole-number box score value, floored at zero
func (g *Generator) stat(mean, stddev float64) float64 {
	v := math.Round(g.rng.NormFloat64()*stddev + mean)
	if v < 0 {
		return 0
	}
	return v
}

// uniform draws from [lo, hi) rounded to one decimal place
func (g *Generator) uniform(lo, hi float64) float64 {
	return math.Round((lo+g.rng.Float64()*(hi-lo))*10) / 10
}
