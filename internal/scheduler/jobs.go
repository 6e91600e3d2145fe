package scheduler

import (
	"context"
	"errors"

	"CandleScan/internal/domain/models"
	"CandleScan/internal/usecase"
	applogger "CandleScan/pkg/logger"
)

type Refresher interface {
	Refresh(ctx context.Context) (*models.SnapshotReport, error)
}

// SnapshotJob runs the scheduled price refresh. A refresh already started
// from the web endpoint is not an error.
type SnapshotJob struct {
	refresher Refresher
	l         *applogger.Logger
}

func NewSnapshotJob(r Refresher, l *applogger.Logger) *SnapshotJob {
	return &SnapshotJob{refresher: r, l: l}
}

func (j *SnapshotJob) Name() string { return "snapshot" }

func (j *SnapshotJob) Run(ctx context.Context) error {
	_, err := j.refresher.Refresh(ctx)
	if errors.Is(err, usecase.ErrSnapshotRunning) {
		j.l.Info("scheduled snapshot skipped, another run holds the lock")
		return nil
	}
	return err
}

type Pruner interface {
	Prune()
}

// PruneJob drops idle rate-limit buckets.
type PruneJob struct {
	pruner Pruner
}

func NewPruneJob(p Pruner) *PruneJob { return &PruneJob{pruner: p} }

func (j *PruneJob) Name() string { return "ratelimit_prune" }

func (j *PruneJob) Run(context.Context) error {
	j.pruner.Prune()
	return nil
}
