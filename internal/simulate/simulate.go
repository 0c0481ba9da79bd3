// Package simulate produces synthetic race history for demos and tests.
package simulate

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/okian/racebet/internal/domain/model"
	"github.com/okian/racebet/internal/domain/session"
	"github.com/okian/racebet/pkg/logger"
)

// ErrInvalidShape is returned for a non-positive game or round count.
var ErrInvalidShape = errors.New("games and rounds must be positive")

// Generator shuffles the registry into finishing orders.
type Generator struct {
	seed     uint64
	registry model.Registry
	logger   logger.Logger
	rng      *rand.Rand
}

// New creates a Generator. Without WithSeed the seed is 1.
func New(opts ...Option) *Generator {
	g := &Generator{
		seed:     1,
		registry: model.DefaultRegistry(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.rng = rand.New(rand.NewPCG(g.seed, g.seed^0x9e3779b97f4a7c15))
	return g
}

// Seed returns the seed the generator was built with.
func (g *Generator) Seed() uint64 { return g.seed }

// Games returns games × rounds rows. Game ids start at first and rounds at 1.
func (g *Generator) Games(ctx context.Context, first model.GameID, games, rounds int) ([]model.RaceResult, error) {
	if games <= 0 || rounds <= 0 {
		return nil, fmt.Errorf("%w: games=%d rounds=%d", ErrInvalidShape, games, rounds)
	}
	if first == model.NoGame {
		first = 1
	}

	rows := make([]model.RaceResult, 0, games*rounds)
	for i := 0; i < games; i++ {
		game := first + model.GameID(i)
		for round := 1; round <= rounds; round++ {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("generation cancelled: %w", err)
			}
			row, err := model.NewRaceResult(game, round, g.Order(), g.registry)
			if err != nil {
				return nil, fmt.Errorf("generate game %d round %d: %w", game, round, err)
			}
			rows = append(rows, row)
		}
	}

	g.log().Debug(ctx, "generated synthetic games",
		logger.Int("games", games),
		logger.Int("rounds", rounds),
		logger.Int("firstGame", int(first)),
	)
	return rows, nil
}

// Extend appends games × rounds rows after the games already in t.
func (g *Generator) Extend(ctx context.Context, t model.Table, games, rounds int) (model.Table, error) {
	rows, err := g.Games(ctx, session.NextGame(t), games, rounds)
	if err != nil {
		return t, err
	}
	return model.NewTable(append(t.Rows(), rows...)...), nil
}

// Order returns one random permutation of the registry ids.
func (g *Generator) Order() []model.CompetitorID {
	ids := g.registry.IDs()
	g.rng.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
	return ids
}

func (g *Generator) log() logger.Logger {
	if g.logger != nil {
		return g.logger
	}
	return logger.GetOrNop()
}
