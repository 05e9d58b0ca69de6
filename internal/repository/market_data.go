package repository

import (
	"fmt"
	"time"

	"MLChartist/internal/domain/models"
	domrepo "MLChartist/internal/domain/repository"
	applogger "MLChartist/pkg/logger"
)

// FileMarketData holds the returns and predictions tables loaded from flat
// files. It is immutable once constructed.
type FileMarketData struct {
	returns     *models.ReturnsTable
	predictions *models.PredictionsTable
	benchmark   string
}

var _ domrepo.MarketData = (*FileMarketData)(nil)

// NewFileMarketData wraps already loaded tables.
func NewFileMarketData(returns *models.ReturnsTable, predictions *models.PredictionsTable, benchmark string) (*FileMarketData, error) {
	if returns == nil || predictions == nil {
		return nil, fmt.Errorf("market data: %w: nil table", models.ErrDataLoad)
	}
	if _, ok := returns.SymbolIndex(benchmark); !ok {
		return nil, fmt.Errorf("market data: %w: benchmark %s not in returns: %v", models.ErrDataLoad, benchmark, models.ErrUnknownSymbol)
	}
	return &FileMarketData{returns: returns, predictions: predictions, benchmark: benchmark}, nil
}

// LoadFileMarketData reads both tables. Any failure wraps models.ErrDataLoad.
func LoadFileMarketData(returnsPath, predictionsPath, benchmark string, l *applogger.Logger) (*FileMarketData, error) {
	start := time.Now()
	returns, err := LoadReturns(returnsPath)
	if err != nil {
		return nil, err
	}
	predictions, err := LoadPredictions(predictionsPath)
	if err != nil {
		return nil, err
	}
	md, err := NewFileMarketData(returns, predictions, benchmark)
	if err != nil {
		return nil, err
	}
	if l != nil {
		l.Info("market data loaded",
			applogger.String("returns", returnsPath),
			applogger.String("predictions", predictionsPath),
			applogger.Int("returns_rows", returns.Len()),
			applogger.Int("symbols", len(returns.Symbols)),
			applogger.Int("prediction_dates", predictions.Len()),
			applogger.Duration("took_ms", time.Since(start)),
		)
	}
	return md, nil
}

func (m *FileMarketData) Returns() *models.ReturnsTable { return m.returns }

func (m *FileMarketData) Predictions() *models.PredictionsTable { return m.predictions }

func (m *FileMarketData) Benchmark() string { return m.benchmark }
