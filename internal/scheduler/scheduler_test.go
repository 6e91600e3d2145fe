package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CandleScan/internal/domain/models"
	"CandleScan/internal/usecase"
	applogger "CandleScan/pkg/logger"
)

type countingJob struct {
	runs atomic.Int32
	err  error
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run(context.Context) error {
	j.runs.Add(1)
	return j.err
}

func TestAddJobRejectsBadSchedule(t *testing.T) {
	s := New(applogger.NewNop())

	err := s.AddJob("every now and then", &countingJob{})
	assert.Error(t, err)
	assert.Equal(t, 0, s.Len())

	// five fields, no seconds
	require.NoError(t, s.AddJob("0 22 * * 1-5", &countingJob{}))
	assert.Error(t, s.AddJob("0 0 22 * * 1-5", &countingJob{}))
	assert.Equal(t, 1, s.Len())
}

func TestSchedulerRunsJobs(t *testing.T) {
	s := New(applogger.NewNop())
	job := &countingJob{err: errors.New("ignored")}
	require.NoError(t, s.AddJob("@every 1s", job))

	s.Start()
	assert.Eventually(t, func() bool { return job.runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}

type fakeRefresher struct {
	err   error
	calls int
}

func (f *fakeRefresher) Refresh(context.Context) (*models.SnapshotReport, error) {
	f.calls++
	return &models.SnapshotReport{}, f.err
}

func TestSnapshotJob(t *testing.T) {
	r := &fakeRefresher{}
	job := NewSnapshotJob(r, applogger.NewNop())
	assert.Equal(t, "snapshot", job.Name())
	require.NoError(t, job.Run(context.Background()))

	r.err = usecase.ErrSnapshotRunning
	assert.NoError(t, job.Run(context.Background()))

	r.err = &usecase.SnapshotError{Symbol: "AAA", Err: errors.New("boom")}
	assert.Error(t, job.Run(context.Background()))
	assert.Equal(t, 3, r.calls)
}

type fakePruner struct{ n int }

func (p *fakePruner) Prune() { p.n++ }

func TestPruneJob(t *testing.T) {
	p := &fakePruner{}
	require.NoError(t, NewPruneJob(p).Run(context.Background()))
	assert.Equal(t, 1, p.n)
}

func TestCronLoggerFields(t *testing.T) {
	fields := kv([]interface{}{"entry", 1, 42, "skipped", "next"})
	require.Len(t, fields, 1)
	k, v := fields[0].GetKeyValue()
	assert.Equal(t, "entry", k)
	assert.Equal(t, 1, v)
}
