package repository

import (
	"context"

	"MLChartist/internal/domain/models"
)

// MarketData exposes the tables loaded at startup. Both are read-only.
type MarketData interface {
	Returns() *models.ReturnsTable
	Predictions() *models.PredictionsTable
	Benchmark() string
}

// ResultStore serves precomputed backtest documents keyed by N.
type ResultStore interface {
	Get(ctx context.Context, n int) ([]byte, error)
	Put(ctx context.Context, n int, doc []byte) error
}

type Metrics interface {
	RecordBacktest(path string, companies int)
	RecordCache(layer string, hit bool)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
