package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"CandleScan/internal/domain/models"
	pkgch "CandleScan/pkg/clickhouse"
	applogger "CandleScan/pkg/logger"
)

// SignalSchema creates the table ClickHouseSignalRecorder writes to.
var SignalSchema = []string{
	`CREATE TABLE IF NOT EXISTS pattern_signals (
		scan_id     String,
		scanned_at  DateTime64(3, 'UTC'),
		pattern     LowCardinality(String),
		symbol      LowCardinality(String),
		signal      LowCardinality(String),
		value       Float64,
		error       String
	) ENGINE = MergeTree
	PARTITION BY toYYYYMM(scanned_at)
	ORDER BY (pattern, symbol, scanned_at)`,
}

const insertSignal = `INSERT INTO pattern_signals (scan_id, scanned_at, pattern, symbol, signal, value, error) VALUES (?, ?, ?, ?, ?, ?, ?)`

type signalRow struct {
	ScanID    string
	ScannedAt time.Time
	Pattern   string
	Symbol    string
	Signal    string
	Value     float64
	Error     string
}

func signalRows(scanID string, res *models.ScanResult) []signalRow {
	rows := make([]signalRow, 0, len(res.Outcomes))
	for _, o := range res.Outcomes {
		r := signalRow{
			ScanID:    scanID,
			ScannedAt: res.ScannedAt.UTC(),
			Pattern:   res.Pattern,
			Symbol:    o.Symbol,
			Signal:    string(o.Signal),
			Value:     o.Value,
		}
		if o.Failed() {
			r.Signal = "failed"
			r.Error = o.Err.Error()
		}
		rows = append(rows, r)
	}
	return rows
}

// ClickHouseSignalRecorder appends every scan outcome to pattern_signals.
type ClickHouseSignalRecorder struct {
	ch *pkgch.Client
	l  *applogger.Logger
}

func NewClickHouseSignalRecorder(ch *pkgch.Client, l *applogger.Logger) *ClickHouseSignalRecorder {
	return &ClickHouseSignalRecorder{ch: ch, l: l}
}

// Record writes one batch per scan inside a transaction, the clickhouse-go
// batching idiom for database/sql.
func (r *ClickHouseSignalRecorder) Record(ctx context.Context, res *models.ScanResult) error {
	if res == nil || len(res.Outcomes) == 0 {
		return nil
	}
	start := time.Now()
	rows := signalRows(uuid.New().String(), res)

	tx, err := r.ch.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record signals: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, insertSignal)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record signals: prepare: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row.ScanID, row.ScannedAt, row.Pattern, row.Symbol, row.Signal, row.Value, row.Error); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record signals: append %s: %w", row.Symbol, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record signals: commit: %w", err)
	}

	r.l.Debug("clickhouse signals recorded",
		applogger.String("pattern", res.Pattern),
		applogger.Int("rows", len(rows)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return nil
}

func (r *ClickHouseSignalRecorder) Close() error { return r.ch.Close() }

// NoopSignalRecorder is used when ClickHouse is disabled.
type NoopSignalRecorder struct{}

func (NoopSignalRecorder) Record(context.Context, *models.ScanResult) error { return nil }
func (NoopSignalRecorder) Close() error                                     { return nil }
