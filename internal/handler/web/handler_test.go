package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CandleScan/internal/domain/models"
	"CandleScan/internal/repository"
	"CandleScan/internal/service/ratelimit"
	"CandleScan/internal/usecase"
	"CandleScan/pkg/cache"
	xhttp "CandleScan/pkg/http"
	xlogger "CandleScan/pkg/logger"
	"CandleScan/pkg/metrics"
)

type fakeSnapshot struct {
	report *models.SnapshotReport
	err    error
	last   *models.SnapshotReport
}

func (f *fakeSnapshot) Refresh(context.Context) (*models.SnapshotReport, error) {
	return f.report, f.err
}

func (f *fakeSnapshot) Last(context.Context) (*models.SnapshotReport, error) {
	if f.last == nil {
		return nil, cache.ErrCacheMiss
	}
	return f.last, nil
}

const priceRows = "Date,Open,High,Low,Close,Adj Close,Volume\n"

// writeData lays out a catalog with AAA and BBB; only AAA has prices.
func writeData(t *testing.T) (catalog, daily string) {
	t.Helper()
	root := t.TempDir()
	catalog = filepath.Join(root, "sp500.csv")
	require.NoError(t, os.WriteFile(catalog, []byte("AAA,Alpha Co\nBBB,Beta Co\n"), 0o644))

	daily = filepath.Join(root, "Daily")
	require.NoError(t, os.Mkdir(daily, 0o755))

	body := priceRows
	day := time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 100; i++ {
		body += day.AddDate(0, 0, i).Format("2006-01-02") + ",100,101.5,99.5,101,101,1000\n"
	}
	require.NoError(t, os.WriteFile(filepath.Join(daily, "AAA.csv"), []byte(body), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(daily, "ZZZ.csv"), []byte(body), 0o644))
	return catalog, daily
}

func newServer(t *testing.T, snap *fakeSnapshot, limiter *ratelimit.Limiter) *xhttp.Server {
	t.Helper()
	require.NoError(t, RegisterValidations())

	catalog, daily := writeData(t)
	scanner := usecase.NewPatternScanner(
		repository.NewCSVCatalog(catalog),
		repository.NewFileStore(daily),
		repository.NoopSignalRecorder{},
		metrics.Noop{},
		xlogger.NewNop(),
	)
	renderer, err := NewRenderer()
	require.NoError(t, err)

	h := NewHandler(xlogger.NewNop(), scanner, snap, limiter)
	return xhttp.NewServer(xlogger.NewNop(), []xhttp.Handler{h},
		xhttp.WithRenderer(renderer),
		xhttp.WithMetrics("/metrics", time.Second),
		xhttp.WithRegistry(prometheus.NewRegistry()),
	)
}

func get(s *xhttp.Server, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) {
	t.Helper()
	var env struct {
		Status int             `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, data))
}

func TestIndexWithoutPattern(t *testing.T) {
	s := newServer(t, &fakeSnapshot{}, nil)

	rec := get(s, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Alpha Co")
	assert.Contains(t, body, "Beta Co")
	assert.Contains(t, body, `value="CDLDOJI"`)
	assert.NotContains(t, body, `class="neutral">neutral`)
	assert.NotContains(t, body, "Unknown pattern")
}

func TestIndexWithPattern(t *testing.T) {
	s := newServer(t, &fakeSnapshot{}, nil)

	rec := get(s, "/?pattern=CDLDOJI")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<option value="CDLDOJI" selected>`)
	assert.Contains(t, body, `<td class="neutral">neutral</td>`)
	assert.Contains(t, body, "1 neutral")
}

func TestIndexUnknownPattern(t *testing.T) {
	s := newServer(t, &fakeSnapshot{}, nil)

	rec := get(s, "/?pattern=CDLNOPE")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unknown pattern")
	assert.NotContains(t, rec.Body.String(), `class="failed"`)
}

func TestIndexCatalogMissing(t *testing.T) {
	require.NoError(t, RegisterValidations())
	scanner := usecase.NewPatternScanner(
		repository.NewCSVCatalog(filepath.Join(t.TempDir(), "missing.csv")),
		repository.NewFileStore(t.TempDir()),
		repository.NoopSignalRecorder{},
		metrics.Noop{},
		xlogger.NewNop(),
	)
	renderer, err := NewRenderer()
	require.NoError(t, err)
	s := xhttp.NewServer(xlogger.NewNop(), []xhttp.Handler{NewHandler(xlogger.NewNop(), scanner, &fakeSnapshot{}, nil)},
		xhttp.WithRenderer(renderer))

	rec := get(s, "/")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "could not be loaded")
}

func TestScanAPI(t *testing.T) {
	s := newServer(t, &fakeSnapshot{}, nil)

	rec := get(s, "/api/scan?pattern=CDLDOJI&failures=true")
	require.Equal(t, http.StatusOK, rec.Code)

	var out scanResponse
	decode(t, rec, &out)
	assert.Equal(t, "CDLDOJI", out.Pattern)
	require.Len(t, out.Stocks, 2)
	assert.Equal(t, models.SignalNeutral, out.Stocks[0].Signal)
	assert.Empty(t, out.Stocks[1].Signal)
	require.Len(t, out.Orphans, 1)
	assert.Equal(t, "ZZZ", out.Orphans[0].Symbol)

	rec = get(s, "/api/scan?pattern=CDLDOJI&signal=bullish")
	require.Equal(t, http.StatusOK, rec.Code)
	out = scanResponse{}
	decode(t, rec, &out)
	assert.Empty(t, out.Stocks)
	assert.Empty(t, out.Orphans)
}

func TestScanAPIRejectsUnknownPattern(t *testing.T) {
	s := newServer(t, &fakeSnapshot{}, nil)

	rec := get(s, "/api/scan?pattern=CDLNOPE")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_CANDLE_PATTERN")

	rec = get(s, "/api/scan")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_REQUIRED")
}

func TestScanAPIRateLimited(t *testing.T) {
	s := newServer(t, &fakeSnapshot{}, ratelimit.New(0.001, 1))

	assert.Equal(t, http.StatusOK, get(s, "/api/scan?pattern=CDLDOJI").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(s, "/api/scan?pattern=CDLDOJI").Code)
	assert.Equal(t, http.StatusOK, get(s, "/api/patterns").Code)
}

func TestPatternsAPI(t *testing.T) {
	s := newServer(t, &fakeSnapshot{}, nil)

	rec := get(s, "/api/patterns")
	require.Equal(t, http.StatusOK, rec.Code)
	var out []patternView
	decode(t, rec, &out)
	assert.Len(t, out, 29)
	assert.Equal(t, "CDL3BLACKCROWS", out[0].Name)
}

func TestSnapshotEndpoint(t *testing.T) {
	report := &models.SnapshotReport{RunID: "r1", Symbols: 2, Refreshed: 2, Rows: 200, TookMS: 1500}
	s := newServer(t, &fakeSnapshot{report: report}, nil)

	rec := get(s, "/snapshot")
	require.Equal(t, http.StatusOK, rec.Code)
	var out map[string]interface{}
	decode(t, rec, &out)
	assert.Equal(t, 2.0, out["refreshed"])
	assert.Equal(t, 200.0, out["rows"])
	assert.Equal(t, 1500.0, out["duration_ms"])
}

func TestSnapshotEndpointErrors(t *testing.T) {
	s := newServer(t, &fakeSnapshot{err: usecase.ErrSnapshotRunning}, nil)
	rec := get(s, "/snapshot")
	assert.Equal(t, http.StatusConflict, rec.Code)

	s = newServer(t, &fakeSnapshot{
		report: &models.SnapshotReport{Refreshed: 1},
		err:    &usecase.SnapshotError{Symbol: "BBB", Err: errors.New("404")},
	}, nil)
	rec = get(s, "/snapshot")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), `"symbol":"BBB"`)

	s = newServer(t, &fakeSnapshot{err: errors.New("catalog gone")}, nil)
	rec = get(s, "/snapshot")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLastSnapshot(t *testing.T) {
	snap := &fakeSnapshot{}
	s := newServer(t, snap, nil)

	assert.Equal(t, http.StatusNotFound, get(s, "/api/snapshot/last").Code)

	snap.last = &models.SnapshotReport{RunID: "r9"}
	rec := get(s, "/api/snapshot/last")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"run_id":"r9"`)
}

func TestHealth(t *testing.T) {
	s := newServer(t, &fakeSnapshot{}, nil)
	assert.Equal(t, http.StatusOK, get(s, "/healthz").Code)
}
