package backtest

import (
	"fmt"
	"math"
	"time"

	"MLChartist/internal/domain/models"
)

// DefaultWindowSize is the holding period, in table rows, after each rebalance.
const DefaultWindowSize = 10

// Window extracts up to size rows of returns starting at date (inclusive),
// nearest date first. Selected symbols keep their source values; every other
// symbol is NaN. The window is shorter when history runs out.
func Window(date time.Time, returns *models.ReturnsTable, selection []string, size int) (models.WindowFrame, error) {
	start, ok := returns.DateIndex(date)
	if !ok {
		return models.WindowFrame{}, fmt.Errorf("window %s: %w", models.FormatDate(date), models.ErrDateNotFound)
	}
	end := start + size
	if end > returns.Len() {
		end = returns.Len()
	}
	if size <= 0 {
		end = start
	}

	picked := make(map[string]struct{}, len(selection))
	for _, s := range selection {
		picked[s] = struct{}{}
	}

	frame := models.WindowFrame{
		Rebalance: date,
		Dates:     make([]time.Time, 0, end-start),
		Symbols:   returns.Symbols,
		Values:    make([][]float64, 0, end-start),
	}
	for i := start; i < end; i++ {
		row := make([]float64, len(returns.Symbols))
		for j, sym := range returns.Symbols {
			if _, ok := picked[sym]; ok {
				row[j] = returns.Values[i][j]
			} else {
				row[j] = math.NaN()
			}
		}
		frame.Dates = append(frame.Dates, returns.Dates[i])
		frame.Values = append(frame.Values, row)
	}
	return frame, nil
}
