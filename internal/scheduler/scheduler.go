package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	applogger "CandleScan/pkg/logger"
)

// Job is a unit of background work run on a cron schedule.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler runs registered jobs with standard five-field cron expressions
// (descriptors such as "@daily" and "@every 10m" are accepted too). A run
// still in progress when its next tick fires is skipped.
type Scheduler struct {
	cron   *cron.Cron
	l      *applogger.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func New(l *applogger.Logger) *Scheduler {
	l = l.With(applogger.String("component", "scheduler"))
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(cronLogger{l}), cron.SkipIfStillRunning(cronLogger{l})),
		),
		l:      l,
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob registers job under schedule.
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() { s.run(job) })
	if err != nil {
		return fmt.Errorf("schedule %s %q: %w", job.Name(), schedule, err)
	}
	s.l.Info("job registered",
		applogger.String("job", job.Name()),
		applogger.String("schedule", schedule),
	)
	return nil
}

func (s *Scheduler) run(job Job) {
	start := time.Now()
	s.l.Debug("job started", applogger.String("job", job.Name()))
	if err := job.Run(s.ctx); err != nil {
		s.l.Error("job failed",
			applogger.String("job", job.Name()),
			applogger.Duration("duration_ms", time.Since(start)),
			applogger.Error(err),
		)
		return
	}
	s.l.Debug("job completed",
		applogger.String("job", job.Name()),
		applogger.Duration("duration_ms", time.Since(start)),
	)
}

// Len is the number of registered jobs.
func (s *Scheduler) Len() int { return len(s.cron.Entries()) }

func (s *Scheduler) Start() {
	s.cron.Start()
	s.l.Info("scheduler started", applogger.Int("jobs", s.Len()))
}

// Stop cancels running jobs and waits for them to return or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	s.cancel()
	select {
	case <-s.cron.Stop().Done():
		s.l.Info("scheduler stopped")
	case <-ctx.Done():
		s.l.Warn("scheduler stop timed out", applogger.Error(ctx.Err()))
	}
}

// cronLogger adapts the application logger to cron.Logger.
type cronLogger struct{ l *applogger.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: "+msg, kv(keysAndValues)...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron: "+msg, append(kv(keysAndValues), applogger.Error(err))...)
}

func kv(keysAndValues []interface{}) []applogger.Field {
	fields := make([]applogger.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, applogger.Any(key, keysAndValues[i+1]))
	}
	return fields
}
