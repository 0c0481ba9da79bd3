package analysis

import (
	"cmp"
	"slices"

	"github.com/okian/racebet/internal/domain/model"
)

// PatternEntry is a finishing order seen more than once in the same game.
type PatternEntry struct {
	Game  model.GameID `json:"game"`
	Order OrderKey     `json:"order"`
	Count int          `json:"count"`
}

type patternKey struct {
	game  model.GameID
	order OrderKey
}

// DetectPatterns groups rows by (game, order) and keeps groups with two or
// more rows. Rows recorded outside a game are not grouped. Results are sorted
// by game, then order. An empty table yields an empty, non-nil slice.
func DetectPatterns(t model.Table) []PatternEntry {
	counts := make(map[patternKey]int)
	for i := 0; i < t.Len(); i++ {
		r := t.At(i)
		if !r.HasGame() {
			continue
		}
		counts[patternKey{game: r.Game, order: OrderKeyOf(r)}]++
	}

	out := make([]PatternEntry, 0)
	for k, n := range counts {
		if n > 1 {
			out = append(out, PatternEntry{Game: k.game, Order: k.order, Count: n})
		}
	}
	slices.SortFunc(out, func(a, b PatternEntry) int {
		if c := cmp.Compare(a.Game, b.Game); c != 0 {
			return c
		}
		return cmp.Compare(a.Order, b.Order)
	})
	return out
}
