package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MLChartist/internal/domain/models"
	"MLChartist/internal/repository"
	"MLChartist/internal/services/backtest"
	"MLChartist/pkg/cache"
)

type recordingMetrics struct {
	mu        sync.Mutex
	backtests map[string]int
	hits      int
	misses    int
	errs      map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{backtests: map[string]int{}, errs: map[string]int{}}
}

func (m *recordingMetrics) RecordBacktest(path string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.backtests[path]++
}

func (m *recordingMetrics) RecordCache(_ string, hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

func (m *recordingMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[kind]++
}

func (m *recordingMetrics) RecordLatency(string, float64) {}

func day(i int) time.Time {
	return time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

func fixture(t *testing.T, rebalance ...time.Time) *repository.FileMarketData {
	t.Helper()
	dates := make([]time.Time, 15)
	values := make([][]float64, 15)
	for i := range dates {
		dates[i] = day(i)
		values[i] = []float64{0.01 * float64(i+1), 0.2, 0.002 * float64(i+1)}
	}
	ret, err := models.NewReturnsTable(dates, []string{"A", "B", "NDX"}, values)
	require.NoError(t, err)

	scores := make([][]float64, len(rebalance))
	for i := range scores {
		scores[i] = []float64{5, 0}
	}
	pred := &models.PredictionsTable{Dates: rebalance, Symbols: []string{"A", "B"}, Scores: scores}

	md, err := repository.NewFileMarketData(ret, pred, "NDX")
	require.NoError(t, err)
	return md
}

func TestLiveBacktestScenario(t *testing.T) {
	m := newRecordingMetrics()
	svc := NewBacktestService(fixture(t, day(0)), repository.NewFileResultStore(t.TempDir()), backtest.NewEngine(),
		WithMetrics(m),
	)

	res, err := svc.LiveBacktest(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 10, res.Len())
	for i := 0; i < 10; i++ {
		assert.InDelta(t, 1+0.01*float64(i+1), res.AvgReturn[i], 1e-12)
		assert.InDelta(t, 1+0.002*float64(i+1), res.Index[i], 1e-12)
	}
	assert.Equal(t, 1, m.backtests["live"])
}

func TestLiveBacktestUsesCache(t *testing.T) {
	m := newRecordingMetrics()
	mc := cache.NewMemoryCache()
	svc := NewBacktestService(fixture(t, day(0)), repository.NewFileResultStore(t.TempDir()), backtest.NewEngine(),
		WithMetrics(m), WithCache(mc, 0),
	)
	ctx := context.Background()

	first, err := svc.LiveBacktest(ctx, 2)
	require.NoError(t, err)
	second, err := svc.LiveBacktest(ctx, 2)
	require.NoError(t, err)

	assert.Equal(t, 1, m.misses)
	assert.Equal(t, 1, m.hits)
	assert.Equal(t, 1, mc.Len())

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestLiveBacktestErrors(t *testing.T) {
	m := newRecordingMetrics()
	svc := NewBacktestService(fixture(t, day(30)), repository.NewFileResultStore(t.TempDir()), backtest.NewEngine(),
		WithMetrics(m),
	)

	_, err := svc.LiveBacktest(context.Background(), 0)
	assert.ErrorIs(t, err, models.ErrInvalidParameter)

	_, err = svc.LiveBacktest(context.Background(), 3)
	assert.ErrorIs(t, err, models.ErrDateNotFound)
	assert.Equal(t, 1, m.errs["date_not_found"])
}

func TestCachedBacktestAndPrecompute(t *testing.T) {
	ctx := context.Background()
	store := repository.NewFileResultStore(t.TempDir())
	m := newRecordingMetrics()
	svc := NewBacktestService(fixture(t, day(0)), store, backtest.NewEngine(), WithMetrics(m))

	_, err := svc.CachedBacktest(ctx, 7)
	assert.ErrorIs(t, err, models.ErrResultNotFound)
	assert.Equal(t, 1, m.errs["result_not_found"])

	require.NoError(t, svc.Precompute(ctx, 7))
	doc, err := svc.CachedBacktest(ctx, 7)
	require.NoError(t, err)

	var got map[string][]interface{}
	require.NoError(t, json.Unmarshal(doc, &got))
	assert.Len(t, got["date"], 10)
	assert.Len(t, got["avg_return"], 10)
	assert.Len(t, got["NDX"], 10)
	assert.Equal(t, "2021-03-01", got["date"][0])
}

func TestStats(t *testing.T) {
	svc := NewBacktestService(fixture(t, day(0), day(3)), repository.NewFileResultStore(t.TempDir()), backtest.NewEngine())
	st := svc.Stats()
	assert.Equal(t, 15, st.ReturnsRows)
	assert.Equal(t, 2, st.PredictionDates)
	assert.Equal(t, "NDX", st.Benchmark)
	assert.Equal(t, "2021-03-15", st.LastDate)
}
