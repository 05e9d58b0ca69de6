package backtest

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"MLChartist/internal/domain/models"
)

// DefaultBenchmark is the index column the strategy is compared against.
const DefaultBenchmark = "NDX"

// EngineOption configures Engine.
type EngineOption func(*Engine)

// Engine runs top-N prediction backtests over immutable tables.
type Engine struct {
	windowSize int
	benchmark  string
}

// NewEngine creates an engine with a 10-row holding window against NDX.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		windowSize: DefaultWindowSize,
		benchmark:  DefaultBenchmark,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithWindowSize sets the holding window length in rows.
func WithWindowSize(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.windowSize = n
		}
	}
}

// WithBenchmark sets the benchmark column.
func WithBenchmark(sym string) EngineOption {
	return func(e *Engine) {
		if sym != "" {
			e.benchmark = sym
		}
	}
}

// Benchmark returns the benchmark column name.
func (e *Engine) Benchmark() string { return e.benchmark }

// Run selects the top n symbols per rebalance date, builds each forward window,
// averages every non-missing cell sharing a calendar date across all windows,
// and aligns the result with the benchmark. Both series are returned as growth
// factors with missing points set to 1.
func (e *Engine) Run(returns *models.ReturnsTable, predictions *models.PredictionsTable, n int) (*models.BacktestResult, error) {
	bench, ok := returns.Column(e.benchmark)
	if !ok {
		return nil, fmt.Errorf("benchmark %s: %w", e.benchmark, models.ErrUnknownSymbol)
	}

	// Overlapping windows pool their cells at shared dates.
	cells := make(map[int][]float64)
	for _, sel := range BuildSelections(predictions, n) {
		frame, err := Window(sel.Date, returns, sel.Symbols, e.windowSize)
		if err != nil {
			return nil, err
		}
		for r, dt := range frame.Dates {
			i, _ := returns.DateIndex(dt)
			if _, seen := cells[i]; !seen {
				cells[i] = []float64{}
			}
			for _, v := range frame.Values[r] {
				if !models.Missing(v) {
					cells[i] = append(cells[i], v)
				}
			}
		}
	}

	rows := make([]int, 0, len(cells))
	for i := range cells {
		rows = append(rows, i)
	}
	sort.Ints(rows)

	res := &models.BacktestResult{
		Benchmark: e.benchmark,
		Dates:     make([]time.Time, len(rows)),
		AvgReturn: make([]float64, len(rows)),
		Index:     make([]float64, len(rows)),
	}
	for k, i := range rows {
		res.Dates[k] = returns.Dates[i]
		res.AvgReturn[k] = mean(cells[i])
		res.Index[k] = bench[i]
	}

	floats.AddConst(1, res.AvgReturn)
	floats.AddConst(1, res.Index)
	fillMissing(res.AvgReturn, 1)
	fillMissing(res.Index, 1)
	return res, nil
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return stat.Mean(xs, nil)
}

func fillMissing(xs []float64, v float64) {
	for i := range xs {
		if models.Missing(xs[i]) {
			xs[i] = v
		}
	}
}
