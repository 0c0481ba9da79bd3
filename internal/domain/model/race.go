// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"slices"
)

// Positions is the number of finishing places recorded per race.
const Positions = 4

// CompetitorID identifies a racer in the competitor registry.
type CompetitorID int

// GameID groups consecutive rounds. NoGame marks a row recorded outside a game.
type GameID int

// NoGame is persisted as an empty Game cell (NULL in sqlite). The CSV store
// rejects a literal 0 rather than reading it as NoGame.
const NoGame GameID = 0

// RaceResult is one recorded race outcome.
// Ranks[0] is the first-place finisher, Ranks[3] the last.
type RaceResult struct {
	Game  GameID                  `json:"game"`
	Round int                     `json:"round"`
	Ranks [Positions]CompetitorID `json:"ranks"`
}

// First returns the first-place finisher.
func (r RaceResult) First() CompetitorID { return r.Ranks[0] }

// HasGame reports whether the row belongs to a game.
func (r RaceResult) HasGame() bool { return r.Game != NoGame }

// ValidatePositions checks that positions are a permutation of the registry ids.
func ValidatePositions(positions []CompetitorID, reg Registry) error {
	if len(positions) != Positions {
		return fmt.Errorf("%w: want %d positions, got %d", ErrInvalidPositions, Positions, len(positions))
	}
	if reg.Len() != Positions {
		return fmt.Errorf("%w: registry has %d competitors", ErrInvalidPositions, reg.Len())
	}
	seen := make(map[CompetitorID]struct{}, Positions)
	for _, p := range positions {
		if !reg.Has(p) {
			return fmt.Errorf("%w: unknown competitor %d", ErrInvalidPositions, p)
		}
		if _, dup := seen[p]; dup {
			return fmt.Errorf("%w: competitor %d placed twice", ErrInvalidPositions, p)
		}
		seen[p] = struct{}{}
	}
	return nil
}

// NewRaceResult validates positions and builds a row.
func NewRaceResult(game GameID, round int, positions []CompetitorID, reg Registry) (RaceResult, error) {
	if err := ValidatePositions(positions, reg); err != nil {
		return RaceResult{}, err
	}
	r := RaceResult{Game: game, Round: round}
	copy(r.Ranks[:], positions)
	return r, nil
}

// SortedRanks returns the ranks in ascending id order.
func (r RaceResult) SortedRanks() []CompetitorID {
	out := slices.Clone(r.Ranks[:])
	slices.Sort(out)
	return out
}
