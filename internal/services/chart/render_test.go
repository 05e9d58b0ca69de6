package chart

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MLChartist/internal/domain/models"
)

func TestCumulative(t *testing.T) {
	got := Cumulative([]float64{1.1, 1.0, 0.5})
	require.Len(t, got, 3)
	assert.InDelta(t, 1.1, got[0], 1e-12)
	assert.InDelta(t, 1.1, got[1], 1e-12)
	assert.InDelta(t, 0.55, got[2], 1e-12)
	assert.Empty(t, Cumulative(nil))
}

func TestRenderBacktestPNG(t *testing.T) {
	base := time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)
	res := &models.BacktestResult{Benchmark: "NDX"}
	for i := 0; i < 12; i++ {
		res.Dates = append(res.Dates, base.AddDate(0, 0, i))
		res.AvgReturn = append(res.AvgReturn, 1.01)
		res.Index = append(res.Index, 1.002)
	}

	png, err := RenderBacktest(res, 5, Size{Width: 600, Height: 400})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")), "expected PNG header")
}

func TestRenderBacktestEmpty(t *testing.T) {
	_, err := RenderBacktest(&models.BacktestResult{Benchmark: "NDX"}, 5, Size{Width: 600, Height: 400})
	assert.ErrorIs(t, err, ErrEmptySeries)
}
