package model

import (
	"fmt"
	"slices"
)

// Competitor is a registry entry.
type Competitor struct {
	ID   CompetitorID `json:"id" koanf:"id"`
	Name string       `json:"name" koanf:"name"`
}

// Registry is the fixed, ordered mapping of competitor ids to display names.
// The first entry is the default competitor.
type Registry struct {
	competitors []Competitor
}

// DefaultRegistry returns the four stock racers.
func DefaultRegistry() Registry {
	return Registry{competitors: []Competitor{
		{ID: 1, Name: "Zergling"},
		{ID: 2, Name: "Reaper"},
		{ID: 3, Name: "Phoenix"},
		{ID: 4, Name: "Hellion"},
	}}
}

// NewRegistry builds a registry, rejecting empty lists and duplicate ids.
func NewRegistry(competitors []Competitor) (Registry, error) {
	if len(competitors) == 0 {
		return Registry{}, fmt.Errorf("%w: no competitors", ErrInvalidRegistry)
	}
	seen := make(map[CompetitorID]struct{}, len(competitors))
	for _, c := range competitors {
		if _, dup := seen[c.ID]; dup {
			return Registry{}, fmt.Errorf("%w: duplicate id %d", ErrInvalidRegistry, c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	return Registry{competitors: slices.Clone(competitors)}, nil
}

// Default returns the fallback competitor: the first registry entry.
// A zero Registry falls back to DefaultRegistry.
func (r Registry) Default() CompetitorID {
	if len(r.competitors) == 0 {
		return DefaultRegistry().competitors[0].ID
	}
	return r.competitors[0].ID
}

// Len returns the number of competitors.
func (r Registry) Len() int { return len(r.competitors) }

// Competitors returns the entries in registry order.
func (r Registry) Competitors() []Competitor { return slices.Clone(r.competitors) }

// IDs returns the competitor ids in registry order.
func (r Registry) IDs() []CompetitorID {
	ids := make([]CompetitorID, len(r.competitors))
	for i, c := range r.competitors {
		ids[i] = c.ID
	}
	return ids
}

// Has reports whether id is registered.
func (r Registry) Has(id CompetitorID) bool {
	return slices.ContainsFunc(r.competitors, func(c Competitor) bool { return c.ID == id })
}

// Name returns the display name for id, or "Racer <id>" when unknown.
func (r Registry) Name(id CompetitorID) string {
	for _, c := range r.competitors {
		if c.ID == id && c.Name != "" {
			return c.Name
		}
	}
	return fmt.Sprintf("Racer %d", id)
}
