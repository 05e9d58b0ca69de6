package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// BacktestResult is the date-aligned strategy vs benchmark series. Values are
// growth factors (1 + return), never NaN.
type BacktestResult struct {
	Benchmark string
	Dates     []time.Time
	AvgReturn []float64
	Index     []float64
}

// Len is the number of aligned points.
func (r *BacktestResult) Len() int { return len(r.Dates) }

// MarshalJSON emits {"date": [...], "avg_return": [...], "<benchmark>": [...]}.
func (r BacktestResult) MarshalJSON() ([]byte, error) {
	dates := make([]string, len(r.Dates))
	for i, d := range r.Dates {
		dates[i] = FormatDate(d)
	}
	avg := r.AvgReturn
	if avg == nil {
		avg = []float64{}
	}
	idx := r.Index
	if idx == nil {
		idx = []float64{}
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range []struct {
		key string
		val interface{}
	}{
		{"date", dates},
		{"avg_return", avg},
		{r.Benchmark, idx},
	} {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(kv.key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(kv.val)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// BacktestRequest carries the companies query parameter of the backtest endpoints.
type BacktestRequest struct {
	Companies string `query:"companies" json:"companies" validate:"required,number"`
}

// ChartRequest carries the chart endpoint parameters.
type ChartRequest struct {
	Companies string `query:"companies" json:"companies" validate:"required,number"`
	Width     int    `query:"width" json:"width" default:"900" validate:"gte=300,lte=3000"`
	Height    int    `query:"height" json:"height" default:"500" validate:"gte=200,lte=2000"`
}

// DataStats summarises the loaded tables for health checks.
type DataStats struct {
	ReturnsRows     int    `json:"returns_rows"`
	Symbols         int    `json:"symbols"`
	PredictionDates int    `json:"prediction_dates"`
	Benchmark       string `json:"benchmark"`
	FirstDate       string `json:"first_date,omitempty"`
	LastDate        string `json:"last_date,omitempty"`
}
