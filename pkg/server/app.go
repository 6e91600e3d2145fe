package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"CandleScan/internal/scheduler"
	"CandleScan/internal/usecase"
	"CandleScan/pkg/config"
	xhttp "CandleScan/pkg/http"
	applogger "CandleScan/pkg/logger"
)

// Resource is an infrastructure client released on shutdown.
type Resource struct {
	Name   string
	Closer io.Closer
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	httpServer *xhttp.Server
	scheduler  *scheduler.Scheduler
	refresher  *usecase.SnapshotRefresher
	logSink    applogger.Publisher
	resources  []Resource
}

// New creates a new App. logSink receives aggregated error logs when
// logging.collect is enabled and may be nil otherwise. Resources are closed
// in reverse order.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	sched *scheduler.Scheduler,
	refresher *usecase.SnapshotRefresher,
	logSink applogger.Publisher,
	resources ...Resource,
) *App {
	return &App{
		cfg:        cfg,
		l:          l,
		httpServer: httpServer,
		scheduler:  sched,
		refresher:  refresher,
		logSink:    logSink,
		resources:  resources,
	}
}

func (a *App) startLogCollection() {
	if !a.cfg.Logging.Collect.Enabled || a.logSink == nil {
		return
	}
	a.l.AddCollector(&applogger.CollectionConfig{
		TimeInterval:   a.cfg.Logging.Collect.Interval,
		CountThreshold: a.cfg.Logging.Collect.Threshold,
		Topic:          a.cfg.Logging.Collect.Topic,
		Publisher:      a.logSink,
	})
	a.l.Info("error log collection enabled", applogger.String("topic", a.cfg.Logging.Collect.Topic))
}

// Run starts the scheduler and HTTP server and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.startLogCollection()

	a.scheduler.Start()
	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		a.shutdown()
		return err
	}
	a.l.Info("candlescan started",
		applogger.String("env", a.cfg.Environment),
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("catalog", a.cfg.Data.CatalogPath),
		applogger.String("daily_dir", a.cfg.Data.DailyDir),
	)

	<-ctx.Done()
	a.l.Info("shutdown signal received")
	return a.shutdown()
}

// RunSnapshot performs one refresh and releases every resource.
func (a *App) RunSnapshot(ctx context.Context) error {
	a.startLogCollection()
	defer a.closeResources()

	report, err := a.refresher.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	a.l.Info("snapshot finished",
		applogger.String("run_id", report.RunID),
		applogger.Int("refreshed", report.Refreshed),
		applogger.Int("failed", len(report.Failed)),
	)
	return nil
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	a.l.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout+5*time.Second)
	defer cancel()

	var firstErr error
	if err := a.httpServer.Stop(ctx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
		firstErr = err
	}
	a.scheduler.Stop(ctx)
	a.closeResources()

	a.l.Info("shutdown complete")
	return firstErr
}

func (a *App) closeResources() {
	// flush aggregated logs while the producer is still open
	a.l.RemoveCollector()
	for i := len(a.resources) - 1; i >= 0; i-- {
		r := a.resources[i]
		if err := r.Closer.Close(); err != nil {
			a.l.Warn("close error", applogger.String("resource", r.Name), applogger.Error(err))
		}
	}
}
