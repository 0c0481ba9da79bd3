package analysis

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/okian/racebet/internal/domain/model"
)

// BetLabel is the display string for the current recommendation.
func BetLabel(t model.Table, reg model.Registry) string {
	return LabelFor(RecommendNextBet(t, reg), reg)
}

// LabelFor formats a recommended competitor for display.
func LabelFor(id model.CompetitorID, reg model.Registry) string {
	return "Recommended Bet: " + reg.Name(id)
}

// FormatPatterns renders pattern entries as an aligned text table.
func FormatPatterns(entries []PatternEntry) string {
	if len(entries) == 0 {
		return "No repeating patterns found.\n"
	}
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Game\tOrder\tCount")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", e.Game, e.Order, e.Count)
	}
	_ = tw.Flush()
	return sb.String()
}
