package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"CandleScan/internal/domain/models"
	domrepo "CandleScan/internal/domain/repository"
	applogger "CandleScan/pkg/logger"
)

// ErrSnapshotRunning is returned when another refresh holds the lock.
var ErrSnapshotRunning = errors.New("snapshot already running")

const (
	snapshotLockKey = "snapshot:lock"
	// LastSnapshotKey stores the most recent SnapshotReport.
	LastSnapshotKey = "snapshot:last"
)

// SnapshotError reports the symbol that aborted a refresh.
type SnapshotError struct {
	Symbol string
	Err    error
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("snapshot %s: %v", e.Symbol, e.Err)
}

func (e *SnapshotError) Unwrap() error { return e.Err }

// ReportStore keeps the last snapshot report between requests.
type ReportStore interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
}

type SnapshotOptions struct {
	Start           time.Time
	ContinueOnError bool
	LockTTL         time.Duration
}

// SnapshotRefresher downloads the full daily history of every catalog symbol
// and replaces its price file.
type SnapshotRefresher struct {
	catalog   domrepo.CatalogSource
	market    domrepo.MarketData
	prices    domrepo.PriceStore
	publisher domrepo.EventPublisher
	lock      domrepo.Locker
	reports   ReportStore
	metrics   domrepo.Metrics
	opts      SnapshotOptions
	l         *applogger.Logger
	now       func() time.Time
}

func NewSnapshotRefresher(
	catalog domrepo.CatalogSource,
	market domrepo.MarketData,
	prices domrepo.PriceStore,
	publisher domrepo.EventPublisher,
	lock domrepo.Locker,
	reports ReportStore,
	metrics domrepo.Metrics,
	opts SnapshotOptions,
	l *applogger.Logger,
) *SnapshotRefresher {
	if opts.LockTTL <= 0 {
		opts.LockTTL = 30 * time.Minute
	}
	return &SnapshotRefresher{
		catalog:   catalog,
		market:    market,
		prices:    prices,
		publisher: publisher,
		lock:      lock,
		reports:   reports,
		metrics:   metrics,
		opts:      opts,
		l:         l,
		now:       time.Now,
	}
}

// Refresh walks the catalog in listing order, one symbol at a time. By
// default the first failing symbol aborts the sweep and is returned as a
// *SnapshotError alongside the partial report. With ContinueOnError the
// failures are collected in the report instead. The refreshed symbols are
// announced in one batch after the sweep, including on an abort.
func (r *SnapshotRefresher) Refresh(ctx context.Context) (*models.SnapshotReport, error) {
	runID := uuid.New().String()
	ok, err := r.lock.TryLock(ctx, snapshotLockKey, runID, r.opts.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("snapshot lock: %w", err)
	}
	if !ok {
		r.metrics.RecordSnapshot("busy")
		return nil, ErrSnapshotRunning
	}
	defer func() {
		// release even when the request context is gone
		if err := r.lock.Unlock(context.WithoutCancel(ctx), snapshotLockKey, runID); err != nil {
			r.l.Warn("snapshot unlock failed", applogger.Error(err))
		}
	}()

	report := &models.SnapshotReport{RunID: runID, StartedAt: r.now()}

	cat, err := r.catalog.Load(ctx)
	if err != nil {
		r.metrics.RecordSnapshot("error")
		return nil, err
	}
	report.Symbols = cat.Len()

	r.l.Info("snapshot started",
		applogger.String("run_id", report.RunID),
		applogger.String("provider", r.market.Name()),
		applogger.Int("symbols", report.Symbols),
		applogger.String("start", r.opts.Start.Format("2006-01-02")),
	)

	var (
		runErr error
		events []models.SnapshotEvent
	)
	for _, symbol := range cat.Symbols() {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		evt, err := r.refreshOne(ctx, report.RunID, symbol)
		if err != nil {
			r.metrics.RecordError("snapshot_symbol")
			report.Failed = append(report.Failed, models.SymbolFailure{Symbol: symbol, Error: err.Error()})
			if !r.opts.ContinueOnError {
				runErr = &SnapshotError{Symbol: symbol, Err: err}
				break
			}
			r.l.Warn("snapshot symbol failed", applogger.String("symbol", symbol), applogger.Error(err))
			continue
		}
		report.Refreshed++
		report.Rows += evt.Rows
		events = append(events, evt)
	}
	r.publish(ctx, report.RunID, events)

	report.Finish(r.now())
	r.metrics.AddSnapshotRows(report.Rows)
	r.metrics.RecordLatency("snapshot", report.Duration.Seconds())
	r.store(ctx, report)

	if runErr != nil {
		r.metrics.RecordSnapshot("error")
		r.l.Error("snapshot aborted",
			applogger.String("run_id", report.RunID),
			applogger.Int("refreshed", report.Refreshed),
			applogger.Error(runErr),
		)
		return report, runErr
	}

	result := "ok"
	if len(report.Failed) > 0 {
		result = "partial"
	}
	r.metrics.RecordSnapshot(result)
	r.l.Info("snapshot completed",
		applogger.String("run_id", report.RunID),
		applogger.Int("refreshed", report.Refreshed),
		applogger.Int("failed", len(report.Failed)),
		applogger.Int("rows", report.Rows),
		applogger.Duration("duration_ms", report.Duration),
	)
	return report, nil
}

func (r *SnapshotRefresher) refreshOne(ctx context.Context, runID, symbol string) (models.SnapshotEvent, error) {
	began := r.now()
	series, err := r.market.FetchDaily(ctx, symbol, r.opts.Start)
	if err != nil {
		return models.SnapshotEvent{}, err
	}
	series.Symbol = symbol
	if err := r.prices.Save(ctx, series); err != nil {
		return models.SnapshotEvent{}, err
	}
	r.metrics.RecordLatency("snapshot_symbol", r.now().Sub(began).Seconds())

	from, to := series.Span()
	return models.SnapshotEvent{
		RunID:       runID,
		Symbol:      symbol,
		Rows:        series.Len(),
		From:        from,
		To:          to,
		RefreshedAt: r.now().UTC(),
	}, nil
}

// publish sends the run's events. The files are already written, so a lost
// batch does not fail the refresh.
func (r *SnapshotRefresher) publish(ctx context.Context, runID string, events []models.SnapshotEvent) {
	if len(events) == 0 {
		return
	}
	if err := r.publisher.PublishSnapshots(context.WithoutCancel(ctx), events); err != nil {
		r.metrics.RecordError("snapshot_event")
		r.l.Warn("snapshot events not published",
			applogger.String("run_id", runID),
			applogger.Int("events", len(events)),
			applogger.Error(err),
		)
	}
}

func (r *SnapshotRefresher) store(ctx context.Context, report *models.SnapshotReport) {
	if err := r.reports.Set(context.WithoutCancel(ctx), LastSnapshotKey, report, 0); err != nil {
		r.l.Warn("store snapshot report failed", applogger.Error(err))
	}
}

// Last returns the most recent report, if any refresh has finished.
func (r *SnapshotRefresher) Last(ctx context.Context) (*models.SnapshotReport, error) {
	var report models.SnapshotReport
	if err := r.reports.Get(ctx, LastSnapshotKey, &report); err != nil {
		return nil, err
	}
	return &report, nil
}
