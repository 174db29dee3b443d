package sample

import (
	"context"
	"strings"

	"github.com/yourusername/injury-edge/internal/models"
)

// Source serves the generated season through the same interface as the live
// stats provider, so the rest of the pipeline cannot tell them apart.
type Source struct {
	records []models.GameRecord
	roster  []models.Player
}

// NewSource generates the demo season once and serves it from memory
func NewSource(cfg Config) *Source {
	gen := NewGenerator(cfg)
	return &Source{
		records: gen.Generate(),
		roster:  gen.Roster(),
	}
}

// Name returns the data source name
func (s *Source) Name() string {
	return "sample"
}

// FetchPlayerGameLog returns the generated records for one player
func (s *Source) FetchPlayerGameLog(ctx context.Context, playerID int64, season string) ([]models.GameRecord, error) {
	var out []models.GameRecord
	for _, rec := range s.records {
		if rec.PlayerID == playerID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// FetchTeamRoster returns the demo roster when asked for its team
func (s *Source) FetchTeamRoster(ctx context.Context, teamID int64, season string) ([]models.Player, error) {
	if teamID != TeamID {
		return nil, nil
	}
	roster := make([]models.Player, len(s.roster))
	copy(roster, s.roster)
	return roster, nil
}

// HealthCheck always succeeds; the data is in memory
func (s *Source) HealthCheck(ctx context.Context) error {
	return nil
}

// SearchPlayers finds demo roster players whose name contains the query
func (s *Source) SearchPlayers(ctx context.Context, name string) ([]models.Player, error) {
	query := strings.ToLower(strings.TrimSpace(name))
	var matches []models.Player
	for _, p := range s.roster {
		if query == "" || strings.Contains(strings.ToLower(p.Name), query) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

// AllRecords returns the whole generated season
func (s *Source) AllRecords() []models.GameRecord {
	out := make([]models.GameRecord, len(s.records))
	copy(out, s.records)
	return out
}
