//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"MLChartist/internal/usecase"
	"MLChartist/pkg/config"
	"MLChartist/pkg/server"
)

var backtestSet = wire.NewSet(
	ProvideLogger,
	ProvideRegistry,
	ProvideMetrics,
	ProvideMarketData,
	ProvideResultStore,
	ProvideCache,
	ProvideEngine,
	ProvideBacktestService,
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		backtestSet,
		ProvideBacktestHandler,
		ProvideHTTPServer,
		ProvideApp,
	)
	return &server.App{}, nil
}

// InitializeBacktestService wires the use case without the HTTP layer.
func InitializeBacktestService(cfg *config.Config) (*usecase.BacktestService, error) {
	wire.Build(backtestSet)
	return &usecase.BacktestService{}, nil
}
