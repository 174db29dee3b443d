package models

import "errors"

// Custom errors
var (
	ErrNotFound           = errors.New("record not found")
	ErrDuplicateRecord    = errors.New("duplicate game record")
	ErrInsufficientData   = errors.New("insufficient data")
	ErrInvalidProbability = errors.New("probability outside [0, 1]")
	ErrUnknownStat        = errors.New("unknown stat code")
	ErrUnknownTeam        = errors.New("unknown team abbreviation")
	ErrAlreadySettled     = errors.New("bet already settled")
	ErrInvalidConfig      = errors.New("invalid configuration")
)
