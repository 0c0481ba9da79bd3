package model

import "slices"

// Table is the ordered race history. Insertion order is chronological:
// the row at index i+1 happened immediately after the row at index i.
type Table struct {
	rows []RaceResult
}

// NewTable copies rows into a new table.
func NewTable(rows ...RaceResult) Table {
	return Table{rows: slices.Clone(rows)}
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.rows) }

// Empty reports whether the table has no rows.
func (t Table) Empty() bool { return len(t.rows) == 0 }

// At returns the row at index i.
func (t Table) At(i int) RaceResult { return t.rows[i] }

// Last returns the most recent row and false when the table is empty.
func (t Table) Last() (RaceResult, bool) {
	if len(t.rows) == 0 {
		return RaceResult{}, false
	}
	return t.rows[len(t.rows)-1], true
}

// Rows returns a copy of all rows in insertion order.
func (t Table) Rows() []RaceResult { return slices.Clone(t.rows) }

// Append returns a new table version with row added at the end.
// The receiver is left unchanged.
func (t Table) Append(row RaceResult) Table {
	next := make([]RaceResult, len(t.rows), len(t.rows)+1)
	copy(next, t.rows)
	return Table{rows: append(next, row)}
}

// MaxGame returns the highest game id in the table, or NoGame.
func (t Table) MaxGame() GameID {
	maxGame := NoGame
	for _, r := range t.rows {
		if r.Game > maxGame {
			maxGame = r.Game
		}
	}
	return maxGame
}
