package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	backtests   *prometheus.CounterVec
	cacheLookup *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// New creates a recorder registered on reg. Nil uses the default registry.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		backtests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mlchartist_backtests_total",
				Help: "Total number of backtest responses served",
			},
			[]string{"path", "companies"},
		),
		cacheLookup: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mlchartist_cache_lookups_total",
				Help: "Live result cache lookups by outcome",
			},
			[]string{"layer", "result"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mlchartist_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mlchartist_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordBacktest counts a served backtest response.
func (r *Recorder) RecordBacktest(path string, companies int) {
	r.backtests.WithLabelValues(path, strconv.Itoa(companies)).Inc()
}

// RecordCache counts a cache hit or miss.
func (r *Recorder) RecordCache(layer string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookup.WithLabelValues(layer, result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
