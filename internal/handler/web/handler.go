package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"CandleScan/internal/domain/models"
	"CandleScan/internal/service/ratelimit"
	"CandleScan/internal/usecase"
	"CandleScan/pkg/cache"
	"CandleScan/pkg/candle"
	xhttp "CandleScan/pkg/http"
	xlogger "CandleScan/pkg/logger"
)

type Scanner interface {
	Scan(ctx context.Context, pattern string) (*models.ScanResult, error)
}

type Snapshotter interface {
	Refresh(ctx context.Context) (*models.SnapshotReport, error)
	Last(ctx context.Context) (*models.SnapshotReport, error)
}

// Handler serves the screener page and its JSON counterparts.
type Handler struct {
	logger   *xlogger.Logger
	scanner  Scanner
	snapshot Snapshotter
	limiter  *ratelimit.Limiter
}

// NewHandler wires the handler. A nil limiter leaves /api/scan unthrottled.
func NewHandler(logger *xlogger.Logger, scanner Scanner, snapshot Snapshotter, limiter *ratelimit.Limiter) *Handler {
	return &Handler{logger: logger, scanner: scanner, snapshot: snapshot, limiter: limiter}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Index)
	e.GET("/snapshot", h.Snapshot)
	e.GET("/healthz", h.Health)

	var scanMW []echo.MiddlewareFunc
	if h.limiter != nil {
		scanMW = append(scanMW, h.limiter.Middleware())
	}

	g := e.Group("/api")
	g.GET("/patterns", h.Patterns)
	g.GET("/scan", h.Scan, scanMW...)
	g.GET("/snapshot/last", h.LastSnapshot)
}

type patternView struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

type stockRow struct {
	Symbol  string        `json:"symbol"`
	Company string        `json:"company"`
	Signal  models.Signal `json:"signal,omitempty"`
	Failure string        `json:"error,omitempty"`
}

type indexPage struct {
	Patterns []patternView
	Pattern  string
	Unknown  bool
	Tally    map[string]int
	Rows     []stockRow
}

func patterns() []patternView {
	all := candle.All()
	out := make([]patternView, len(all))
	for i, p := range all {
		out[i] = patternView{Name: p.Name, Label: p.Label}
	}
	return out
}

func rows(res *models.ScanResult) []stockRow {
	stocks := res.Catalog.Stocks()
	out := make([]stockRow, 0, len(stocks))
	for _, s := range stocks {
		row := stockRow{Symbol: s.Symbol, Company: s.Company}
		if res.Pattern != "" {
			row.Signal, _ = s.Signal(res.Pattern)
			row.Failure = s.Failures[res.Pattern]
		}
		out = append(out, row)
	}
	return out
}

// Index renders the catalog, annotated when a pattern is selected. An
// unknown pattern still answers 200 with a notice and no classifications.
func (h *Handler) Index(c echo.Context) error {
	req := &models.IndexRequest{}
	if err := c.Bind(req); err != nil {
		return c.Render(http.StatusBadRequest, "error.html", map[string]string{"Message": "invalid query"})
	}

	res, err := h.scanner.Scan(c.Request().Context(), req.Pattern)
	if err != nil {
		h.logger.Error("index scan error", xlogger.String("pattern", req.Pattern), xlogger.Error(err))
		return c.Render(http.StatusInternalServerError, "error.html", map[string]string{"Message": "The stock list could not be loaded."})
	}

	page := indexPage{
		Patterns: patterns(),
		Pattern:  req.Pattern,
		Unknown:  req.Pattern != "" && !candle.IsKnown(req.Pattern),
		Tally:    res.Tally(),
		Rows:     rows(res),
	}
	if page.Unknown {
		for i := range page.Rows {
			page.Rows[i].Failure = ""
		}
	}
	return c.Render(http.StatusOK, "index.html", page)
}

type scanResponse struct {
	Pattern    string         `json:"pattern"`
	ScannedAt  time.Time      `json:"scanned_at"`
	DurationMS int64          `json:"duration_ms"`
	Tally      map[string]int `json:"tally"`
	Stocks     []stockRow     `json:"stocks"`
	Orphans    []stockRow     `json:"orphans,omitempty"`
}

// Scan is the JSON form of Index. Failure reasons and price files without a
// catalog entry are only reported when failures=true.
func (h *Handler) Scan(c echo.Context) error {
	req := &models.ScanRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.scanner.Scan(c.Request().Context(), req.Pattern)
	if err != nil {
		h.logger.Error("scan usecase error", xlogger.String("pattern", req.Pattern), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("scan failed").WithError(err))
	}

	out := scanResponse{
		Pattern:    res.Pattern,
		ScannedAt:  res.ScannedAt.UTC(),
		DurationMS: res.Duration.Milliseconds(),
		Tally:      res.Tally(),
		Stocks:     []stockRow{},
	}
	for _, row := range rows(res) {
		if req.Signal != "" && string(row.Signal) != req.Signal {
			continue
		}
		if !req.Failures {
			row.Failure = ""
		}
		out.Stocks = append(out.Stocks, row)
	}
	if req.Failures {
		for _, o := range res.Outcomes {
			if errors.Is(o.Err, usecase.ErrNotInCatalog) {
				out.Orphans = append(out.Orphans, stockRow{Symbol: o.Symbol, Failure: o.Err.Error()})
			}
		}
	}
	return xhttp.SuccessResponse(c, out)
}

func (h *Handler) Patterns(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=3600")
	return xhttp.SuccessResponse(c, patterns())
}

// Snapshot runs a full refresh within the request.
func (h *Handler) Snapshot(c echo.Context) error {
	report, err := h.snapshot.Refresh(c.Request().Context())
	if err != nil {
		var snapErr *usecase.SnapshotError
		switch {
		case errors.Is(err, usecase.ErrSnapshotRunning):
			return xhttp.AppErrorResponse(c, xhttp.ConflictError("a snapshot is already running"))
		case errors.As(err, &snapErr):
			h.logger.Warn("snapshot aborted", xlogger.String("symbol", snapErr.Symbol), xlogger.Error(err))
			appErr := xhttp.BadGatewayError("price download failed").
				WithParam("symbol", snapErr.Symbol).
				WithError(err)
			if report != nil {
				appErr = appErr.WithParam("refreshed", report.Refreshed)
			}
			return xhttp.AppErrorResponse(c, appErr)
		default:
			h.logger.Error("snapshot usecase error", xlogger.Error(err))
			return xhttp.AppErrorResponse(c, xhttp.InternalError("snapshot failed").WithError(err))
		}
	}
	return xhttp.SuccessResponse(c, report)
}

func (h *Handler) LastSnapshot(c echo.Context) error {
	report, err := h.snapshot.Last(c.Request().Context())
	if errors.Is(err, cache.ErrCacheMiss) {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no snapshot has completed yet"))
	}
	if err != nil {
		h.logger.Error("last snapshot error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("snapshot report unavailable").WithError(err))
	}
	return xhttp.SuccessResponse(c, report)
}

func (h *Handler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}
