package models

import (
	"fmt"
	"math"
	"time"
)

// DateLayout is the wire and file format for table dates.
const DateLayout = "2006-01-02"

// FormatDate renders a table date as YYYY-MM-DD.
func FormatDate(t time.Time) string { return t.UTC().Format(DateLayout) }

// ReturnsTable holds period returns per date and symbol. Dates are strictly
// increasing. Missing cells are NaN.
type ReturnsTable struct {
	Dates   []time.Time
	Symbols []string
	Values  [][]float64 // [date][symbol]

	dateIdx map[string]int
	symIdx  map[string]int
}

// NewReturnsTable builds an indexed returns table. Rows must already be sorted.
func NewReturnsTable(dates []time.Time, symbols []string, values [][]float64) (*ReturnsTable, error) {
	if len(dates) != len(values) {
		return nil, fmt.Errorf("returns: %d dates but %d rows", len(dates), len(values))
	}
	t := &ReturnsTable{
		Dates:   dates,
		Symbols: symbols,
		Values:  values,
		dateIdx: make(map[string]int, len(dates)),
		symIdx:  make(map[string]int, len(symbols)),
	}
	for i, d := range dates {
		if i > 0 && !d.After(dates[i-1]) {
			return nil, fmt.Errorf("returns: dates not strictly increasing at %s", FormatDate(d))
		}
		if len(values[i]) != len(symbols) {
			return nil, fmt.Errorf("returns: row %s has %d cells, want %d", FormatDate(d), len(values[i]), len(symbols))
		}
		t.dateIdx[FormatDate(d)] = i
	}
	for j, s := range symbols {
		t.symIdx[s] = j
	}
	return t, nil
}

// DateIndex returns the row position of d.
func (t *ReturnsTable) DateIndex(d time.Time) (int, bool) {
	i, ok := t.dateIdx[FormatDate(d)]
	return i, ok
}

// SymbolIndex returns the column position of sym.
func (t *ReturnsTable) SymbolIndex(sym string) (int, bool) {
	j, ok := t.symIdx[sym]
	return j, ok
}

// Column copies the series for sym in date order.
func (t *ReturnsTable) Column(sym string) ([]float64, bool) {
	j, ok := t.symIdx[sym]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(t.Dates))
	for i := range t.Values {
		out[i] = t.Values[i][j]
	}
	return out, true
}

// Len is the number of dated rows.
func (t *ReturnsTable) Len() int { return len(t.Dates) }

// PredictionsTable holds model scores per rebalance date. A score of 0 means
// no signal.
type PredictionsTable struct {
	Dates   []time.Time
	Symbols []string
	Scores  [][]float64 // [date][symbol]
}

// Len is the number of rebalance dates.
func (p *PredictionsTable) Len() int { return len(p.Dates) }

// Selection is the ordered top-N symbols for one rebalance date.
type Selection struct {
	Date    time.Time
	Symbols []string
}

// WindowFrame is the forward return window for one rebalance date.
// Cells of non-selected symbols are NaN.
type WindowFrame struct {
	Rebalance time.Time
	Dates     []time.Time
	Symbols   []string
	Values    [][]float64 // [date][symbol]
}

// Missing reports whether a cell value is the missing sentinel.
func Missing(v float64) bool { return math.IsNaN(v) }
