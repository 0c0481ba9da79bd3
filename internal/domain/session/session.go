// Package session tracks the game currently being played.
package session

import (
	"errors"

	"github.com/google/uuid"
	"github.com/okian/racebet/internal/domain/model"
)

// ErrNoActiveGame is returned when a race is submitted outside a game.
var ErrNoActiveGame = errors.New("no active game")

// Session is the current game and the round the next submission will record.
// It is a value: every transition returns a new Session.
type Session struct {
	ID    string       `json:"id,omitempty"`
	Game  model.GameID `json:"game"`
	Round int          `json:"round"`
}

// Idle returns a session with no active game.
func Idle() Session { return Session{Round: 1} }

// NextGame is the id the next started game will use: one past the highest
// game id in the table, or 1 when no row carries a game id.
func NextGame(t model.Table) model.GameID {
	return t.MaxGame() + 1
}

// StartGame opens a new game after the ones already in t.
func StartGame(t model.Table) Session {
	return Session{
		ID:    uuid.NewString(),
		Game:  NextGame(t),
		Round: 1,
	}
}

// Active reports whether a game is in progress.
func (s Session) Active() bool { return s.Game != model.NoGame }

// Row builds the race result for the current round.
func (s Session) Row(positions []model.CompetitorID, reg model.Registry) (model.RaceResult, error) {
	if !s.Active() {
		return model.RaceResult{}, ErrNoActiveGame
	}
	return model.NewRaceResult(s.Game, s.Round, positions, reg)
}

// Advance moves to the next round.
func (s Session) Advance() Session {
	s.Round++
	return s
}

// Finish ends the game.
func (s Session) Finish() Session { return Idle() }
