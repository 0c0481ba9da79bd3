package simulate

import (
	"github.com/okian/racebet/internal/domain/model"
	"github.com/okian/racebet/pkg/logger"
)

// Option configures a Generator.
type Option func(*Generator)

// WithSeed fixes the random source. Equal seeds produce equal games.
func WithSeed(seed uint64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// WithRegistry sets the competitors whose orders are shuffled.
func WithRegistry(reg model.Registry) Option {
	return func(g *Generator) {
		if reg.Len() > 0 {
			g.registry = reg
		}
	}
}

// WithLogger sets the logger used to report generated games.
func WithLogger(l logger.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}
