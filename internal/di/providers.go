package di

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"MLChartist/internal/domain/repository"
	"MLChartist/internal/handler/api"
	internalrepo "MLChartist/internal/repository"
	"MLChartist/internal/service/ratelimit"
	"MLChartist/internal/services/backtest"
	"MLChartist/internal/usecase"
	"MLChartist/pkg/cache"
	"MLChartist/pkg/config"
	xhttp "MLChartist/pkg/http"
	applogger "MLChartist/pkg/logger"
	"MLChartist/pkg/metrics"
	"MLChartist/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideRegistry creates the Prometheus registry served at the metrics path.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) repository.Metrics {
	return metrics.New(reg)
}

// ProvideMarketData loads the returns and predictions tables. Failure aborts startup.
func ProvideMarketData(cfg *config.Config, l *applogger.Logger) (repository.MarketData, error) {
	md, err := internalrepo.LoadFileMarketData(cfg.Data.ReturnsPath, cfg.Data.PredictionsPath, cfg.Data.Benchmark, l)
	if err != nil {
		return nil, fmt.Errorf("market data: %w", err)
	}
	return md, nil
}

// ProvideResultStore creates the precomputed result store.
func ProvideResultStore(cfg *config.Config) repository.ResultStore {
	return internalrepo.NewFileResultStore(cfg.Data.CacheDir)
}

// ProvideCache creates the live result cache: memory only, or memory over
// Redis when enabled.
func ProvideCache(cfg *config.Config, l *applogger.Logger) (cache.Service, error) {
	mem := cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MemorySize))
	if !cfg.Cache.Redis.Enabled {
		return mem, nil
	}

	r := cfg.Cache.Redis
	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(r.Addr),
		cache.WithRedisAuth(r.Password, r.DB),
		cache.WithRedisPool(r.PoolSize),
		cache.WithRedisDialTimeout(r.DialTimeout),
		cache.WithRedisPrefix(r.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	l.Info("redis cache enabled", applogger.String("addr", r.Addr))
	return cache.NewLayeredCache(mem, rc), nil
}

// ProvideEngine creates the backtest engine.
func ProvideEngine(cfg *config.Config) *backtest.Engine {
	return backtest.NewEngine(
		backtest.WithWindowSize(cfg.Data.WindowSize),
		backtest.WithBenchmark(cfg.Data.Benchmark),
	)
}

// ProvideBacktestService creates the backtest use case.
func ProvideBacktestService(
	cfg *config.Config,
	data repository.MarketData,
	store repository.ResultStore,
	engine *backtest.Engine,
	c cache.Service,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.BacktestService {
	return usecase.NewBacktestService(data, store, engine,
		usecase.WithCache(c, cfg.Cache.TTL),
		usecase.WithMetrics(m),
		usecase.WithLogger(l),
	)
}

// ProvideBacktestHandler creates the HTTP handler.
func ProvideBacktestHandler(cfg *config.Config, l *applogger.Logger, svc *usecase.BacktestService) *api.BacktestEchoHandler {
	var opts []api.HandlerOption
	if rl := cfg.Server.ChartRateLimit; rl.Enabled {
		opts = append(opts, api.WithChartLimiter(ratelimit.New(rl.Burst, rl.PerSecond)))
	}
	return api.NewBacktestEchoHandler(l, svc, opts...)
}

// ProvideHTTPServer creates the echo server with all routes registered.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, reg *prometheus.Registry, h *api.BacktestEchoHandler) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowRequest(cfg.Server.SlowRequest),
		xhttp.WithLogger(l),
	}
	if len(cfg.Server.CORSOrigins) > 0 {
		opts = append(opts, xhttp.WithCORS(cfg.Server.CORSOrigins...))
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(cfg.Metrics.Path, reg))
	}
	return xhttp.NewServer([]xhttp.Handler{h}, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(cfg *config.Config, l *applogger.Logger, srv *xhttp.Server, c cache.Service) *server.App {
	return server.New(cfg, l, srv, c)
}
