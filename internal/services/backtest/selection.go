package backtest

import (
	"math"
	"sort"

	"MLChartist/internal/domain/models"
)

// BuildSelections returns, per rebalance date in table order, the top-n symbols
// by descending score. Zero (and NaN) scores carry no signal and are dropped.
// Ties keep the table's column order. n <= 0 yields empty selections.
func BuildSelections(p *models.PredictionsTable, n int) []models.Selection {
	if p == nil {
		return nil
	}
	out := make([]models.Selection, 0, len(p.Dates))
	for i, dt := range p.Dates {
		out = append(out, models.Selection{Date: dt, Symbols: topN(p.Symbols, p.Scores[i], n)})
	}
	return out
}

func topN(symbols []string, scores []float64, n int) []string {
	if n <= 0 {
		return []string{}
	}
	order := make([]int, 0, len(symbols))
	for j := range symbols {
		if j >= len(scores) {
			break
		}
		s := scores[j]
		if s == 0 || math.IsNaN(s) {
			continue
		}
		order = append(order, j)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	if len(order) > n {
		order = order[:n]
	}
	picked := make([]string, len(order))
	for k, j := range order {
		picked[k] = symbols[j]
	}
	return picked
}
