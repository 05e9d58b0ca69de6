package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"MLChartist/internal/domain/models"
	"MLChartist/internal/service/ratelimit"
	"MLChartist/internal/services/chart"
	"MLChartist/internal/usecase"
	xhttp "MLChartist/pkg/http"
	xlogger "MLChartist/pkg/logger"
	xutil "MLChartist/pkg/util"
)

const indexHTML = "<h1>MLChartist</h1><p>The best stock prediction algorithm in the world!</p>"

// BacktestEchoHandler serves the backtest API.
type BacktestEchoHandler struct {
	logger  *xlogger.Logger
	svc     *usecase.BacktestService
	limiter *ratelimit.Limiter
}

// HandlerOption configures BacktestEchoHandler.
type HandlerOption func(*BacktestEchoHandler)

// WithChartLimiter throttles chart rendering per client IP.
func WithChartLimiter(l *ratelimit.Limiter) HandlerOption {
	return func(h *BacktestEchoHandler) { h.limiter = l }
}

func NewBacktestEchoHandler(logger *xlogger.Logger, svc *usecase.BacktestService, opts ...HandlerOption) *BacktestEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	h := &BacktestEchoHandler{logger: logger, svc: svc}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *BacktestEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Index)
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.GET("/live-backtest", h.LiveBacktest)
	g.GET("/live-backtest/chart", h.LiveBacktestChart, h.throttle)
	g.GET("/backtest", h.Backtest)
}

func (h *BacktestEchoHandler) Index(c echo.Context) error {
	return c.HTML(http.StatusOK, indexHTML)
}

func (h *BacktestEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.svc.Stats())
}

func (h *BacktestEchoHandler) LiveBacktest(c echo.Context) error {
	req := &models.BacktestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.ValidationErrorResponse(c, verr)
	}
	n, perr := companies(req.Companies)
	if perr != nil {
		return xhttp.AppErrorResponse(c, perr)
	}

	res, err := h.svc.LiveBacktest(c.Request().Context(), n)
	if err != nil {
		return h.fail(c, "live backtest", n, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *BacktestEchoHandler) Backtest(c echo.Context) error {
	req := &models.BacktestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.ValidationErrorResponse(c, verr)
	}
	n, perr := companies(req.Companies)
	if perr != nil {
		return xhttp.AppErrorResponse(c, perr)
	}

	doc, err := h.svc.CachedBacktest(c.Request().Context(), n)
	if err != nil {
		return h.fail(c, "cached backtest", n, err)
	}
	return c.JSONBlob(http.StatusOK, doc)
}

func (h *BacktestEchoHandler) LiveBacktestChart(c echo.Context) error {
	req := &models.ChartRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.ValidationErrorResponse(c, verr)
	}
	n, perr := companies(req.Companies)
	if perr != nil {
		return xhttp.AppErrorResponse(c, perr)
	}

	png, err := h.svc.BacktestChart(c.Request().Context(), n, chart.Size{Width: req.Width, Height: req.Height})
	if err != nil {
		return h.fail(c, "backtest chart", n, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return c.Blob(http.StatusOK, "image/png", png)
}

func (h *BacktestEchoHandler) throttle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.limiter != nil && !h.limiter.Allow(c.RealIP()) {
			h.logger.Warn("chart rate limited", xlogger.String("ip", c.RealIP()))
			return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many chart requests"))
		}
		return next(c)
	}
}

func companies(raw string) (int, *xhttp.AppError) {
	n, ok := xutil.ParsePositiveInt(raw)
	if !ok {
		return 0, xhttp.InvalidParameterError("companies", raw)
	}
	return n, nil
}

func (h *BacktestEchoHandler) fail(c echo.Context, op string, n int, err error) error {
	switch {
	case errors.Is(err, models.ErrResultNotFound):
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no backtest stored for %d companies", n))
	case errors.Is(err, models.ErrInvalidParameter):
		return xhttp.AppErrorResponse(c, xhttp.InvalidParameterError("companies", c.QueryParam("companies")))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.logger.Warn(op+" canceled", xlogger.Int("companies", n), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.UnavailableError("request canceled"))
	}
	h.logger.Error(op+" failed", xlogger.Int("companies", n), xlogger.Error(err))
	return xhttp.AppErrorResponse(c, xhttp.InternalError("backtest failed").WithError(err))
}
