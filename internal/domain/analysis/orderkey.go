// Package analysis holds the race-history analytics: order-key encoding,
// next-bet recommendation, repeated-order detection and the first-place heatmap.
//
// Every function here is pure. Inputs are never mutated and every input,
// including an empty table, maps to a defined result.
package analysis

import (
	"strconv"
	"strings"

	"github.com/okian/racebet/internal/domain/model"
)

// OrderKey is the canonical encoding of a full finishing order, e.g. "2-4-1-3".
type OrderKey string

const orderSeparator = "-"

// EncodeOrder joins the ranks first to last with "-".
// Competitor ids never contain the separator, so distinct orders map to distinct keys.
func EncodeOrder(ranks [model.Positions]model.CompetitorID) OrderKey {
	var b strings.Builder
	for i, id := range ranks {
		if i > 0 {
			b.WriteString(orderSeparator)
		}
		b.WriteString(strconv.Itoa(int(id)))
	}
	return OrderKey(b.String())
}

// OrderKeyOf encodes a row's finishing order.
func OrderKeyOf(r model.RaceResult) OrderKey { return EncodeOrder(r.Ranks) }

// orderKeys derives the key column for a table without touching the table.
func orderKeys(t model.Table) []OrderKey {
	keys := make([]OrderKey, t.Len())
	for i := range keys {
		keys[i] = OrderKeyOf(t.At(i))
	}
	return keys
}
