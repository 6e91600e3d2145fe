package repository

import (
	"context"
	"time"

	"CandleScan/internal/domain/models"
)

// CatalogSource loads the list of tracked stocks.
type CatalogSource interface {
	Load(ctx context.Context) (*models.Catalog, error)
}

// PriceStore holds one daily price file per symbol.
type PriceStore interface {
	Files(ctx context.Context) ([]string, error) // file names, sorted
	Read(ctx context.Context, name string) (models.Series, error)
	Save(ctx context.Context, s models.Series) error
}

// MarketData downloads daily history from an external provider.
type MarketData interface {
	FetchDaily(ctx context.Context, symbol string, start time.Time) (models.Series, error)
	Name() string
}

// SignalRecorder persists scan outcomes for later analysis.
type SignalRecorder interface {
	Record(ctx context.Context, res *models.ScanResult) error
	Close() error
}

// EventPublisher announces refreshed price files to downstream consumers,
// once per refresh run.
type EventPublisher interface {
	PublishSnapshots(ctx context.Context, events []models.SnapshotEvent) error
	Close() error
}

// Locker guards operations that must not overlap. Unlock only releases a
// lock still held by owner.
type Locker interface {
	TryLock(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key, owner string) error
}

type Metrics interface {
	RecordScan(pattern string, seconds float64)
	RecordOutcome(pattern, status string)
	RecordSnapshot(result string)
	AddSnapshotRows(n int)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
