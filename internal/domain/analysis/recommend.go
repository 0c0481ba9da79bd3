package analysis

import "github.com/okian/racebet/internal/domain/model"

// Source says which strategy produced a recommendation.
type Source string

// Recommendation sources.
const (
	SourceSequence  Source = "sequence"
	SourceFrequency Source = "frequency"
	SourceDefault   Source = "default"
)

// Recommendation is the engine's answer plus how it was reached.
type Recommendation struct {
	Competitor model.CompetitorID
	Source     Source
	// Candidates are the first-place finishers that followed earlier
	// occurrences of the latest order. Empty unless Source is SourceSequence.
	Candidates []model.CompetitorID
}

// RecommendNextBet predicts the next first-place finisher from what followed
// earlier occurrences of the most recent finishing order.
func RecommendNextBet(t model.Table, reg model.Registry) model.CompetitorID {
	return Recommend(t, reg).Competitor
}

// Recommend is RecommendNextBet with the strategy and candidates exposed.
//
// Matches include the most recent row itself. It has no successor, so it never
// adds a candidate, but it is not excluded from the search.
func Recommend(t model.Table, reg model.Registry) Recommendation {
	if t.Len() < 2 {
		return fallback(t, reg)
	}

	keys := orderKeys(t)
	lastKey := keys[len(keys)-1]

	var candidates []model.CompetitorID
	for i, k := range keys {
		if k != lastKey || i+1 >= len(keys) {
			continue
		}
		candidates = append(candidates, t.At(i+1).First())
	}
	if len(candidates) == 0 {
		return fallback(t, reg)
	}
	return Recommendation{
		Competitor: mode(candidates),
		Source:     SourceSequence,
		Candidates: candidates,
	}
}

// MostFrequentFirst returns the competitor with the most first places, or the
// registry default when the table is empty.
func MostFrequentFirst(t model.Table, reg model.Registry) model.CompetitorID {
	return fallback(t, reg).Competitor
}

func fallback(t model.Table, reg model.Registry) Recommendation {
	if t.Empty() {
		return Recommendation{Competitor: reg.Default(), Source: SourceDefault}
	}
	firsts := make([]model.CompetitorID, t.Len())
	for i := range firsts {
		firsts[i] = t.At(i).First()
	}
	return Recommendation{Competitor: mode(firsts), Source: SourceFrequency}
}

// mode returns the most frequent value. Among values sharing the highest
// count, the one that appears earliest in values wins.
// values must not be empty.
func mode(values []model.CompetitorID) model.CompetitorID {
	counts := make(map[model.CompetitorID]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	best, bestCount := values[0], 0
	for _, v := range values {
		if c := counts[v]; c > bestCount {
			best, bestCount = v, c
		}
	}
	return best
}
