package analysis

import (
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/okian/racebet/internal/domain/model"
)

// HeatmapRow counts first places per competitor for one game.
// Counts follow the column order of the owning Heatmap.
type HeatmapRow struct {
	Game   model.GameID `json:"game"`
	Counts []int        `json:"counts"`
}

// Heatmap is the game x competitor pivot of first-place finishes.
type Heatmap struct {
	Columns []model.Competitor `json:"columns"`
	Rows    []HeatmapRow       `json:"rows"`
}

// FirstPlaceHeatmap pivots first places by game. Columns follow registry
// order and every cell is present, zero when the competitor never won.
// Rows outside a game and winners missing from the registry are not counted.
func FirstPlaceHeatmap(t model.Table, reg model.Registry) Heatmap {
	cols := reg.Competitors()
	colIndex := make(map[model.CompetitorID]int, len(cols))
	for i, c := range cols {
		colIndex[c.ID] = i
	}

	byGame := make(map[model.GameID][]int)
	var games []model.GameID
	for i := 0; i < t.Len(); i++ {
		r := t.At(i)
		if !r.HasGame() {
			continue
		}
		counts, ok := byGame[r.Game]
		if !ok {
			counts = make([]int, len(cols))
			byGame[r.Game] = counts
			games = append(games, r.Game)
		}
		if ci, ok := colIndex[r.First()]; ok {
			counts[ci]++
		}
	}
	slices.Sort(games)

	h := Heatmap{Columns: cols, Rows: make([]HeatmapRow, 0, len(games))}
	for _, g := range games {
		h.Rows = append(h.Rows, HeatmapRow{Game: g, Counts: byGame[g]})
	}
	return h
}

// Empty reports whether the heatmap has no data rows.
func (h Heatmap) Empty() bool { return len(h.Rows) == 0 }

// String renders the heatmap as an aligned text table.
func (h Heatmap) String() string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', tabwriter.AlignRight)
	header := []string{"Game"}
	for _, c := range h.Columns {
		header = append(header, c.Name)
	}
	fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")
	for _, row := range h.Rows {
		cells := []string{fmt.Sprint(int(row.Game))}
		for _, n := range row.Counts {
			cells = append(cells, fmt.Sprint(n))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
	}
	_ = tw.Flush()
	return sb.String()
}
