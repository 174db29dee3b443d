// Package store holds the in-memory game record collection the analysis
// engine reads. Records are append-only; the engine never mutates them.
package store

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/yourusername/injury-edge/internal/models"
)

// Store is an indexed, append-only collection of game records with a
// uniqueness guarantee on (game ID, player ID). Reads and appends may be
// interleaved, so access is guarded.
type Store struct {
	mu       sync.RWMutex
	records  []models.GameRecord
	byPlayer map[int64][]int
	names    map[int64]string
	teams    map[int64][]int64
	seen     map[recordKey]struct{}
	teamSeen map[teamKey]struct{}
}

type recordKey struct {
	gameID   string
	playerID int64
}

type teamKey struct {
	teamID   int64
	playerID int64
}

// New creates an empty store.
func New() *Store {
	return &Store{
		byPlayer: make(map[int64][]int),
		names:    make(map[int64]string),
		teams:    make(map[int64][]int64),
		seen:     make(map[recordKey]struct{}),
		teamSeen: make(map[teamKey]struct{}),
	}
}

// Add appends a single record. It fails on a duplicate (game, player) pair
// or on a record missing its identifiers.
func (s *Store) Add(rec models.GameRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(rec)
}

// AddAll appends a batch of records, skipping duplicates instead of failing.
// It returns the number added and the number skipped as duplicates; any
// structurally invalid record still fails the load.
func (s *Store) AddAll(recs []models.GameRecord) (added, skipped int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range recs {
		if addErr := s.add(rec); addErr != nil {
			if isDuplicate(addErr) {
				skipped++
				continue
			}
			return added, skipped, addErr
		}
		added++
	}
	return added, skipped, nil
}

func (s *Store) add(rec models.GameRecord) error {
	if rec.GameID == "" {
		return errors.New("game record missing game ID")
	}
	if rec.PlayerID <= 0 {
		return fmt.Errorf("game record %s: missing player ID", rec.GameID)
	}

	key := recordKey{gameID: rec.GameID, playerID: rec.PlayerID}
	if _, ok := s.seen[key]; ok {
		return fmt.Errorf("game %s player %d: %w", rec.GameID, rec.PlayerID, models.ErrDuplicateRecord)
	}

	idx := len(s.records)
	s.records = append(s.records, rec)
	s.seen[key] = struct{}{}
	s.byPlayer[rec.PlayerID] = append(s.byPlayer[rec.PlayerID], idx)

	if _, ok := s.names[rec.PlayerID]; !ok {
		s.names[rec.PlayerID] = rec.PlayerName
	}
	tk := teamKey{teamID: rec.TeamID, playerID: rec.PlayerID}
	if _, ok := s.teamSeen[tk]; !ok {
		s.teamSeen[tk] = struct{}{}
		s.teams[rec.TeamID] = append(s.teams[rec.TeamID], rec.PlayerID)
	}
	return nil
}

func isDuplicate(err error) bool {
	return errors.Is(err, models.ErrDuplicateRecord)
}

// Len returns the number of records in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// PlayerRecords returns a chronologically ordered copy of a player's records.
func (s *Store) PlayerRecords(playerID int64) []models.GameRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idxs := s.byPlayer[playerID]
	out := make([]models.GameRecord, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, s.records[i])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].GameDate.Equal(out[j].GameDate) {
			return out[i].GameID < out[j].GameID
		}
		return out[i].GameDate.Before(out[j].GameDate)
	})
	return out
}

// PlayerName returns the display name recorded for a player.
func (s *Store) PlayerName(playerID int64) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.names[playerID]
	return name, ok
}

// PlayerIDs returns every distinct player in the store, ascending.
func (s *Store) PlayerIDs() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.byPlayer))
	for id := range s.byPlayer {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// TeamPlayerIDs returns the distinct players recorded for a team, ascending,
// excluding the given player (pass 0 to exclude nobody).
func (s *Store) TeamPlayerIDs(teamID, exclude int64) []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.teams[teamID]))
	for _, id := range s.teams[teamID] {
		if id == exclude {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// GamesWithStat returns the set of game IDs in which a player has a defined
// value for the given stat (the player appeared and the stat applies).
func (s *Store) GamesWithStat(playerID int64, stat string) map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	games := make(map[string]struct{})
	for _, i := range s.byPlayer[playerID] {
		rec := s.records[i]
		if _, ok := rec.StatValue(stat); ok {
			games[rec.GameID] = struct{}{}
		}
	}
	return games
}
