package model

import "errors"

// Sentinel kinds for domain validation errors.
var (
	ErrInvalidPositions = errors.New("positions must be a permutation of the competitors")
	ErrInvalidRegistry  = errors.New("invalid competitor registry")
)
