package chart

import (
	"errors"
	"fmt"

	"github.com/vicanso/go-charts/v2"
	"gonum.org/v1/gonum/floats"

	"MLChartist/internal/domain/models"
)

// ErrEmptySeries is returned when there is nothing to plot.
var ErrEmptySeries = errors.New("chart: empty series")

// Size is the output image size in pixels.
type Size struct {
	Width  int
	Height int
}

// Cumulative compounds per-period growth factors into an equity curve.
func Cumulative(growth []float64) []float64 {
	out := make([]float64, len(growth))
	if len(growth) == 0 {
		return out
	}
	return floats.CumProd(out, growth)
}

// RenderBacktest draws the compounded strategy and benchmark curves as PNG.
func RenderBacktest(res *models.BacktestResult, companies int, size Size) ([]byte, error) {
	if res == nil || res.Len() == 0 {
		return nil, ErrEmptySeries
	}
	strategy := Cumulative(res.AvgReturn)
	bench := Cumulative(res.Index)

	x := make([]string, res.Len())
	for i, d := range res.Dates {
		x[i] = models.FormatDate(d)
	}

	lo := floats.Min(strategy)
	if m := floats.Min(bench); m < lo {
		lo = m
	}
	hi := floats.Max(strategy)
	if m := floats.Max(bench); m > hi {
		hi = m
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 0.01
	}
	yMin, yMax := lo-pad, hi+pad

	split := 10
	if res.Len() < split {
		split = res.Len()
	}

	names := []string{fmt.Sprintf("Top %d", companies), res.Benchmark}
	painter, err := charts.LineRender([][]float64{strategy, bench},
		charts.TitleTextOptionFunc("MLChartist backtest", fmt.Sprintf("top %d vs %s • growth of 1.0", companies, res.Benchmark)),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: x, BoundaryGap: charts.FalseFlag(), SplitNumber: split}),
		charts.YAxisOptionFunc(charts.YAxisOption{Min: &yMin, Max: &yMax, DivideCount: 5}),
		charts.LegendOptionFunc(charts.LegendOption{Data: names}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(size.Width),
		charts.HeightOptionFunc(size.Height),
	)
	if err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return painter.Bytes()
}
