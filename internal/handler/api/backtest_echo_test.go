package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MLChartist/internal/domain/models"
	"MLChartist/internal/repository"
	"MLChartist/internal/service/ratelimit"
	"MLChartist/internal/services/backtest"
	"MLChartist/internal/usecase"
	xhttp "MLChartist/pkg/http"
)

type envelope struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Data    []*xhttp.AppError `json:"data"`
}

func day(i int) time.Time {
	return time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

func newTestServer(t *testing.T, opts ...HandlerOption) (*xhttp.Server, *usecase.BacktestService) {
	t.Helper()
	dates := make([]time.Time, 15)
	values := make([][]float64, 15)
	for i := range dates {
		dates[i] = day(i)
		values[i] = []float64{0.01 * float64(i+1), 0.2, 0.002 * float64(i+1)}
	}
	ret, err := models.NewReturnsTable(dates, []string{"A", "B", "NDX"}, values)
	require.NoError(t, err)
	pred := &models.PredictionsTable{
		Dates:   []time.Time{day(0)},
		Symbols: []string{"A", "B"},
		Scores:  [][]float64{{5, 0}},
	}
	md, err := repository.NewFileMarketData(ret, pred, "NDX")
	require.NoError(t, err)

	svc := usecase.NewBacktestService(md, repository.NewFileResultStore(t.TempDir()), backtest.NewEngine())
	srv := xhttp.NewServer([]xhttp.Handler{NewBacktestEchoHandler(nil, svc, opts...)})
	return srv, svc
}

func get(srv *xhttp.Server, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestIndex(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := get(srv, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>MLChartist</h1>")
}

func TestLiveBacktest(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := get(srv, "/api/live-backtest?companies=1")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string][]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body["date"], 10)
	require.Len(t, body["avg_return"], 10)
	require.Len(t, body["NDX"], 10)
	assert.Equal(t, "2021-03-01", body["date"][0])
	assert.InDelta(t, 1.01, body["avg_return"][0], 1e-12)
	assert.InDelta(t, 1.002, body["NDX"][0], 1e-12)
}

func TestLiveBacktestMissingCompanies(t *testing.T) {
	srv, _ := newTestServer(t)
	for _, target := range []string{"/api/live-backtest", "/api/backtest", "/api/live-backtest?companies="} {
		rec := get(srv, target)
		require.Equal(t, http.StatusBadRequest, rec.Code, target)
		env := decodeEnvelope(t, rec)
		require.Len(t, env.Data, 1)
		assert.Equal(t, "ERR_MISSING_PARAMETER", env.Data[0].Code)
		assert.Equal(t, "companies", env.Data[0].Field)
	}
}

func TestLiveBacktestInvalidCompanies(t *testing.T) {
	srv, _ := newTestServer(t)
	for _, v := range []string{"abc", "0", "-3", "1.5", "99999999999999999999999"} {
		rec := get(srv, "/api/live-backtest?companies="+v)
		require.Equal(t, http.StatusBadRequest, rec.Code, v)
		env := decodeEnvelope(t, rec)
		require.NotEmpty(t, env.Data)
		assert.Equal(t, "ERR_INVALID_PARAMETER", env.Data[0].Code, v)
	}
}

func TestBacktestNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := get(srv, "/api/backtest?companies=7")
	require.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Len(t, env.Data, 1)
	assert.Equal(t, "ERR_NOT_FOUND", env.Data[0].Code)
}

func TestBacktestServesStoredDocument(t *testing.T) {
	srv, svc := newTestServer(t)
	require.NoError(t, svc.Precompute(context.Background(), 7))

	rec := get(srv, "/api/backtest?companies=7")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echoContentType), "application/json")

	doc, err := svc.CachedBacktest(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, string(doc), rec.Body.String())
}

func TestLiveBacktestChart(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := get(srv, "/api/live-backtest/chart?companies=1&width=400&height=300")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echoContentType))
	assert.Equal(t, "\x89PNG", rec.Body.String()[:4])

	rec = get(srv, "/api/live-backtest/chart?companies=1&width=10")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLiveBacktestChartRateLimited(t *testing.T) {
	srv, _ := newTestServer(t, WithChartLimiter(ratelimit.New(1, 0)))
	require.Equal(t, http.StatusOK, get(srv, "/api/live-backtest/chart?companies=1").Code)

	rec := get(srv, "/api/live-backtest/chart?companies=1")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "ERR_RATE_LIMITED", decodeEnvelope(t, rec).Data[0].Code)

	assert.Equal(t, http.StatusOK, get(srv, "/api/live-backtest?companies=1").Code)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := get(srv, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status int              `json:"status"`
		Data   models.DataStats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 15, body.Data.ReturnsRows)
	assert.Equal(t, 1, body.Data.PredictionDates)
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := get(srv, "/api/nope")
	require.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Len(t, env.Data, 1)
	assert.Equal(t, "ERR_NOT_FOUND", env.Data[0].Code)
}

const echoContentType = "Content-Type"
