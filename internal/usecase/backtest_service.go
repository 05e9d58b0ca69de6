package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"MLChartist/internal/domain/models"
	domrepo "MLChartist/internal/domain/repository"
	"MLChartist/internal/services/backtest"
	"MLChartist/internal/services/chart"
	"MLChartist/pkg/cache"
	applogger "MLChartist/pkg/logger"
)

const liveCachePrefix = "live-backtest"

// BacktestService answers backtest requests from the in-memory tables or the
// precomputed result store.
type BacktestService struct {
	data     domrepo.MarketData
	store    domrepo.ResultStore
	engine   *backtest.Engine
	cache    cache.Service
	cacheTTL time.Duration
	metrics  domrepo.Metrics
	logger   *applogger.Logger
}

// BacktestOption configures BacktestService.
type BacktestOption func(*BacktestService)

// WithCache memoises live results. ttl <= 0 keeps them until evicted.
func WithCache(c cache.Service, ttl time.Duration) BacktestOption {
	return func(s *BacktestService) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m domrepo.Metrics) BacktestOption {
	return func(s *BacktestService) { s.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *applogger.Logger) BacktestOption {
	return func(s *BacktestService) { s.logger = l }
}

func NewBacktestService(data domrepo.MarketData, store domrepo.ResultStore, engine *backtest.Engine, opts ...BacktestOption) *BacktestService {
	s := &BacktestService{
		data:   data,
		store:  store,
		engine: engine,
		logger: applogger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LiveBacktest runs the engine for the top n predicted symbols.
func (s *BacktestService) LiveBacktest(ctx context.Context, n int) (*models.BacktestResult, error) {
	if n <= 0 {
		return nil, fmt.Errorf("companies=%d: %w", n, models.ErrInvalidParameter)
	}
	key := cache.GenerateKeyWithParams(liveCachePrefix, s.engine.Benchmark(), n)

	if s.cache != nil {
		var cached cachedResult
		err := cache.GetJSON(ctx, s.cache, key, &cached)
		switch {
		case err == nil:
			s.recordCache(true)
			s.recordBacktest("live", n)
			return cached.result(s.engine.Benchmark()), nil
		case errors.Is(err, cache.ErrCacheMiss):
			s.recordCache(false)
		default:
			s.logger.Warn("live cache read failed", applogger.String("key", key), applogger.Error(err))
			s.recordError("cache_read")
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := s.engine.Run(s.data.Returns(), s.data.Predictions(), n)
	took := time.Since(start)
	if s.metrics != nil {
		s.metrics.RecordLatency("engine_run", took.Seconds())
	}
	if err != nil {
		s.recordError(errorKind(err))
		return nil, fmt.Errorf("live backtest companies=%d: %w", n, err)
	}
	s.logger.Debug("live backtest computed",
		applogger.Int("companies", n),
		applogger.Int("points", res.Len()),
		applogger.Duration("took_ms", took),
	)

	if s.cache != nil {
		if err := cache.SetJSON(ctx, s.cache, key, newCachedResult(res), s.cacheTTL); err != nil {
			s.logger.Warn("live cache write failed", applogger.String("key", key), applogger.Error(err))
			s.recordError("cache_write")
		}
	}
	s.recordBacktest("live", n)
	return res, nil
}

// CachedBacktest returns the precomputed document for n verbatim.
func (s *BacktestService) CachedBacktest(ctx context.Context, n int) ([]byte, error) {
	start := time.Now()
	doc, err := s.store.Get(ctx, n)
	if s.metrics != nil {
		s.metrics.RecordLatency("result_store_get", time.Since(start).Seconds())
	}
	if err != nil {
		s.recordError(errorKind(err))
		return nil, err
	}
	s.recordBacktest("cached", n)
	return doc, nil
}

// BacktestChart renders the live result for n as a PNG.
func (s *BacktestService) BacktestChart(ctx context.Context, n int, size chart.Size) ([]byte, error) {
	res, err := s.LiveBacktest(ctx, n)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	png, err := chart.RenderBacktest(res, n, size)
	if s.metrics != nil {
		s.metrics.RecordLatency("chart_render", time.Since(start).Seconds())
	}
	if err != nil {
		s.recordError("chart_render")
		return nil, err
	}
	return png, nil
}

// Precompute runs the engine for n and stores the JSON document.
func (s *BacktestService) Precompute(ctx context.Context, n int) error {
	res, err := s.LiveBacktest(ctx, n)
	if err != nil {
		return err
	}
	doc, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode companies=%d: %w", n, err)
	}
	return s.store.Put(ctx, n, doc)
}

// Stats reports the shape of the loaded tables.
func (s *BacktestService) Stats() models.DataStats {
	r, p := s.data.Returns(), s.data.Predictions()
	st := models.DataStats{
		ReturnsRows:     r.Len(),
		Symbols:         len(r.Symbols),
		PredictionDates: p.Len(),
		Benchmark:       s.data.Benchmark(),
	}
	if r.Len() > 0 {
		st.FirstDate = models.FormatDate(r.Dates[0])
		st.LastDate = models.FormatDate(r.Dates[r.Len()-1])
	}
	return st
}

func (s *BacktestService) recordBacktest(path string, n int) {
	if s.metrics != nil {
		s.metrics.RecordBacktest(path, n)
	}
}

func (s *BacktestService) recordCache(hit bool) {
	if s.metrics != nil {
		s.metrics.RecordCache("live", hit)
	}
}

func (s *BacktestService) recordError(kind string) {
	if s.metrics != nil {
		s.metrics.RecordError(kind)
	}
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, models.ErrDateNotFound):
		return "date_not_found"
	case errors.Is(err, models.ErrResultNotFound):
		return "result_not_found"
	case errors.Is(err, models.ErrUnknownSymbol):
		return "unknown_symbol"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}

// cachedResult is the cache encoding of a BacktestResult.
type cachedResult struct {
	Dates     []string  `json:"date"`
	AvgReturn []float64 `json:"avg_return"`
	Index     []float64 `json:"index"`
}

func newCachedResult(r *models.BacktestResult) cachedResult {
	c := cachedResult{
		Dates:     make([]string, len(r.Dates)),
		AvgReturn: r.AvgReturn,
		Index:     r.Index,
	}
	for i, d := range r.Dates {
		c.Dates[i] = models.FormatDate(d)
	}
	return c
}

func (c cachedResult) result(benchmark string) *models.BacktestResult {
	r := &models.BacktestResult{
		Benchmark: benchmark,
		Dates:     make([]time.Time, len(c.Dates)),
		AvgReturn: c.AvgReturn,
		Index:     c.Index,
	}
	for i, d := range c.Dates {
		t, _ := time.Parse(models.DateLayout, d)
		r.Dates[i] = t
	}
	return r
}
