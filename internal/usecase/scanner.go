package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"CandleScan/internal/domain/models"
	domrepo "CandleScan/internal/domain/repository"
	"CandleScan/pkg/candle"
	applogger "CandleScan/pkg/logger"
)

var (
	// ErrInsufficientData marks a series too short for the pattern's lookback.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrNotInCatalog marks a price file whose symbol is not listed.
	ErrNotInCatalog = errors.New("symbol not in catalog")
)

// PatternScanner evaluates one candlestick pattern over every stored price
// file and annotates a freshly loaded catalog.
type PatternScanner struct {
	catalog  domrepo.CatalogSource
	prices   domrepo.PriceStore
	recorder domrepo.SignalRecorder
	metrics  domrepo.Metrics
	l        *applogger.Logger
	now      func() time.Time
}

func NewPatternScanner(
	catalog domrepo.CatalogSource,
	prices domrepo.PriceStore,
	recorder domrepo.SignalRecorder,
	metrics domrepo.Metrics,
	l *applogger.Logger,
) *PatternScanner {
	return &PatternScanner{
		catalog:  catalog,
		prices:   prices,
		recorder: recorder,
		metrics:  metrics,
		l:        l,
		now:      time.Now,
	}
}

// Scan loads the catalog and, when pattern is non-empty, classifies the
// latest bar of every price file. Per-file problems never abort the sweep:
// they land in Outcome.Err and Stock.Failures. An unknown pattern marks
// every file failed with candle.ErrUnknownPattern. Only a catalog load error
// or a cancelled context is returned.
func (s *PatternScanner) Scan(ctx context.Context, pattern string) (*models.ScanResult, error) {
	start := s.now()

	cat, err := s.catalog.Load(ctx)
	if err != nil {
		s.metrics.RecordError("catalog")
		return nil, err
	}

	res := &models.ScanResult{Pattern: pattern, Catalog: cat, ScannedAt: start}
	if pattern == "" {
		return res, nil
	}

	p, lookupErr := candle.Lookup(pattern)

	files, err := s.prices.Files(ctx)
	if err != nil {
		s.metrics.RecordError("price_dir")
		return nil, fmt.Errorf("scan %s: %w", pattern, err)
	}

	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		symbol := domrepo.SymbolFromFile(name)

		var out models.Outcome
		if lookupErr != nil {
			out = models.Outcome{Symbol: symbol, Pattern: pattern, Err: lookupErr}
		} else {
			out = s.evaluate(ctx, p, name, symbol)
		}

		if stock, ok := cat.Get(symbol); ok {
			if out.Failed() {
				stock.SetFailure(pattern, out.Err)
			} else {
				stock.SetSignal(pattern, out.Signal)
			}
		} else if !out.Failed() {
			out = models.Outcome{Symbol: symbol, Pattern: pattern, Err: ErrNotInCatalog}
		}

		if out.Failed() {
			s.l.Debug("symbol skipped",
				applogger.String("pattern", pattern),
				applogger.String("file", name),
				applogger.Error(out.Err),
			)
			s.metrics.RecordOutcome(pattern, "failed")
		} else {
			s.metrics.RecordOutcome(pattern, string(out.Signal))
		}
		res.Outcomes = append(res.Outcomes, out)
	}

	res.Duration = s.now().Sub(start)
	s.metrics.RecordScan(pattern, res.Duration.Seconds())

	tally := res.Tally()
	s.l.Info("pattern scan completed",
		applogger.String("pattern", pattern),
		applogger.Int("files", len(files)),
		applogger.Int("bullish", tally[string(models.SignalBullish)]),
		applogger.Int("bearish", tally[string(models.SignalBearish)]),
		applogger.Int("failed", tally["failed"]),
		applogger.Duration("duration_ms", res.Duration),
	)

	if lookupErr == nil {
		if err := s.recorder.Record(ctx, res); err != nil {
			s.metrics.RecordError("signal_recorder")
			s.l.Warn("record signals failed", applogger.String("pattern", pattern), applogger.Error(err))
		}
	}
	return res, nil
}

func (s *PatternScanner) evaluate(ctx context.Context, p candle.Pattern, name, symbol string) models.Outcome {
	out := models.Outcome{Symbol: symbol, Pattern: p.Name}

	series, err := s.prices.Read(ctx, name)
	if err != nil {
		out.Err = err
		return out
	}
	if series.Len() <= p.Lookback {
		out.Err = fmt.Errorf("%w: %d bars, %s needs more than %d", ErrInsufficientData, series.Len(), p.Name, p.Lookback)
		return out
	}

	open, high, low, adjClose := series.Columns()
	values, err := p.Compute(open, high, low, adjClose)
	if err != nil {
		out.Err = err
		return out
	}

	out.Value = float64(values[len(values)-1])
	out.Signal = models.Classify(out.Value)
	return out
}
