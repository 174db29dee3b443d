package analysis

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// LineBook holds sportsbook lines for a single stat category, keyed either
// by player ID or by display name. ID entries win when both are present.
type LineBook struct {
	byID   map[int64]float64
	byName map[string]float64
}

// NewLineBook creates an empty book.
func NewLineBook() *LineBook {
	return &LineBook{
		byID:   make(map[int64]float64),
		byName: make(map[string]float64),
	}
}

// SetByID records a line for a player ID.
func (b *LineBook) SetByID(playerID int64, line float64) {
	b.byID[playerID] = line
}

// SetByName records a line for a player display name.
func (b *LineBook) SetByName(name string, line float64) {
	b.byName[name] = line
}

// Resolve looks a player's line up by ID first, then by name.
func (b *LineBook) Resolve(playerID int64, name string) (float64, bool) {
	if line, ok := b.byID[playerID]; ok {
		return line, true
	}
	line, ok := b.byName[name]
	return line, ok
}

// Len reports the number of entries across both key spaces.
func (b *LineBook) Len() int {
	return len(b.byID) + len(b.byName)
}

// ParseLineBook decodes a flat JSON object of lines. Keys that parse as
// integers are treated as player IDs; everything else is a display name.
func ParseLineBook(data []byte) (*LineBook, error) {
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse lines: %w", err)
	}

	book := NewLineBook()
	for key, line := range raw {
		if id, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64); err == nil {
			book.SetByID(id, line)
			continue
		}
		book.SetByName(key, line)
	}
	return book, nil
}
