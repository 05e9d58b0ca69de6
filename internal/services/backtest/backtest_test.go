package backtest

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MLChartist/internal/domain/models"
)

func day(i int) time.Time {
	return time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

// fifteenDays builds A, B and NDX returns over 15 consecutive days.
func fifteenDays(t *testing.T) *models.ReturnsTable {
	t.Helper()
	dates := make([]time.Time, 15)
	values := make([][]float64, 15)
	for i := range dates {
		dates[i] = day(i)
		values[i] = []float64{0.01 * float64(i+1), -0.5, 0.002 * float64(i+1)}
	}
	tbl, err := models.NewReturnsTable(dates, []string{"A", "B", "NDX"}, values)
	require.NoError(t, err)
	return tbl
}

func predictions(dates []time.Time, symbols []string, scores ...[]float64) *models.PredictionsTable {
	return &models.PredictionsTable{Dates: dates, Symbols: symbols, Scores: scores}
}

func TestBuildSelectionsNonPositiveN(t *testing.T) {
	p := predictions([]time.Time{day(0), day(1)}, []string{"A", "B"}, []float64{1, 2}, []float64{3, 0})
	for _, n := range []int{0, -1, -100} {
		sels := BuildSelections(p, n)
		require.Len(t, sels, 2)
		for _, s := range sels {
			assert.NotNil(t, s.Symbols)
			assert.Empty(t, s.Symbols)
		}
	}
}

func TestBuildSelectionsOrderAndBounds(t *testing.T) {
	syms := []string{"A", "B", "C", "D", "E"}
	p := predictions([]time.Time{day(0), day(1)}, syms,
		[]float64{0.3, 0, 0.9, -0.2, math.NaN()},
		[]float64{0, 0, 0, 0, 0},
	)

	for n := 1; n <= 6; n++ {
		sels := BuildSelections(p, n)
		require.Len(t, sels, 2)
		assert.LessOrEqual(t, len(sels[0].Symbols), n)
		assert.LessOrEqual(t, len(sels[0].Symbols), 3)
		assert.Empty(t, sels[1].Symbols)
	}

	sels := BuildSelections(p, 10)
	assert.Equal(t, []string{"C", "A", "D"}, sels[0].Symbols)
	assert.Equal(t, day(0), sels[0].Date)
}

func TestBuildSelectionsStableTies(t *testing.T) {
	p := predictions([]time.Time{day(0)}, []string{"X", "Y", "Z", "W"}, []float64{1, 2, 1, 2})
	sels := BuildSelections(p, 3)
	assert.Equal(t, []string{"Y", "W", "X"}, sels[0].Symbols)
}

func TestWindowSelectedAndMissing(t *testing.T) {
	ret := fifteenDays(t)
	frame, err := Window(day(2), ret, []string{"A"}, DefaultWindowSize)
	require.NoError(t, err)
	require.Len(t, frame.Dates, 10)
	assert.Equal(t, day(2), frame.Dates[0])
	assert.Equal(t, day(11), frame.Dates[9])

	for r := range frame.Dates {
		assert.Equal(t, ret.Values[r+2][0], frame.Values[r][0])
		assert.True(t, math.IsNaN(frame.Values[r][1]), "B must be missing")
		assert.True(t, math.IsNaN(frame.Values[r][2]), "NDX must be missing")
	}
}

func TestWindowShortNearEnd(t *testing.T) {
	ret := fifteenDays(t)
	frame, err := Window(day(12), ret, []string{"B"}, DefaultWindowSize)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{day(12), day(13), day(14)}, frame.Dates)
	for r := range frame.Dates {
		assert.Equal(t, -0.5, frame.Values[r][1])
	}
}

func TestWindowDateNotFound(t *testing.T) {
	ret := fifteenDays(t)
	_, err := Window(day(40), ret, []string{"A"}, DefaultWindowSize)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrDateNotFound))
}

func TestEngineSingleSelection(t *testing.T) {
	ret := fifteenDays(t)
	p := predictions([]time.Time{day(0)}, []string{"A", "B"}, []float64{5, 0})

	res, err := NewEngine().Run(ret, p, 1)
	require.NoError(t, err)
	require.Equal(t, 10, res.Len())
	require.Len(t, res.AvgReturn, 10)
	require.Len(t, res.Index, 10)

	for i := 0; i < 10; i++ {
		assert.Equal(t, day(i), res.Dates[i])
		assert.InDelta(t, 1+0.01*float64(i+1), res.AvgReturn[i], 1e-12)
		assert.InDelta(t, 1+0.002*float64(i+1), res.Index[i], 1e-12)
	}
}

func TestEngineOverlappingWindowsPool(t *testing.T) {
	ret := fifteenDays(t)
	p := predictions([]time.Time{day(0), day(5)}, []string{"A", "B"},
		[]float64{5, 0},
		[]float64{0, 5},
	)

	res, err := NewEngine().Run(ret, p, 1)
	require.NoError(t, err)
	require.Equal(t, 15, res.Len())

	for i := 0; i < 15; i++ {
		a := 0.01 * float64(i+1)
		var want float64
		switch {
		case i < 5:
			want = a
		case i < 10:
			want = (a - 0.5) / 2
		default:
			want = -0.5
		}
		assert.InDelta(t, 1+want, res.AvgReturn[i], 1e-12, "day %d", i)
	}
}

func TestEngineFillsMissingWithOne(t *testing.T) {
	ret := fifteenDays(t)
	ret.Values[3][2] = math.NaN()
	p := predictions([]time.Time{day(0)}, []string{"A", "B"}, []float64{0, 0})

	res, err := NewEngine(WithWindowSize(5)).Run(ret, p, 3)
	require.NoError(t, err)
	require.Equal(t, 5, res.Len())
	for i := range res.Dates {
		assert.Equal(t, 1.0, res.AvgReturn[i])
		assert.False(t, math.IsNaN(res.Index[i]))
	}
	assert.Equal(t, 1.0, res.Index[3])
}

func TestEngineSortedUniqueDates(t *testing.T) {
	ret := fifteenDays(t)
	p := predictions([]time.Time{day(8), day(1), day(3)}, []string{"A", "B"},
		[]float64{1, 2}, []float64{2, 1}, []float64{1, 1},
	)

	res, err := NewEngine().Run(ret, p, 2)
	require.NoError(t, err)
	for i := 1; i < res.Len(); i++ {
		assert.True(t, res.Dates[i].After(res.Dates[i-1]))
	}
	assert.Equal(t, day(1), res.Dates[0])
	assert.Equal(t, day(14), res.Dates[res.Len()-1])
}

func TestEngineErrors(t *testing.T) {
	ret := fifteenDays(t)

	p := predictions([]time.Time{day(99)}, []string{"A"}, []float64{1})
	_, err := NewEngine().Run(ret, p, 1)
	assert.ErrorIs(t, err, models.ErrDateNotFound)

	p = predictions([]time.Time{day(0)}, []string{"A"}, []float64{1})
	_, err = NewEngine(WithBenchmark("SPX")).Run(ret, p, 1)
	assert.ErrorIs(t, err, models.ErrUnknownSymbol)
}
