package di

import (
	"context"
	"fmt"
	"time"

	"CandleScan/internal/domain/repository"
	"CandleScan/internal/handler/web"
	internalrepo "CandleScan/internal/repository"
	"CandleScan/internal/scheduler"
	"CandleScan/internal/service/ratelimit"
	"CandleScan/internal/service/yahoo"
	"CandleScan/internal/usecase"
	"CandleScan/pkg/cache"
	pkgch "CandleScan/pkg/clickhouse"
	"CandleScan/pkg/config"
	xhttp "CandleScan/pkg/http"
	pkgkafka "CandleScan/pkg/kafka"
	applogger "CandleScan/pkg/logger"
	"CandleScan/pkg/metrics"
	"CandleScan/pkg/server"
)

// pruneSchedule clears idle rate-limit buckets.
const pruneSchedule = "@every 10m"

// ProvideLogger builds the application logger from the logging section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder on the default registry.
func ProvideMetrics(cfg *config.Config) repository.Metrics {
	if !cfg.Metrics.Enabled {
		return metrics.Noop{}
	}
	return metrics.New(nil)
}

// ProvideCache returns Redis when enabled, an in-process cache otherwise.
func ProvideCache(cfg *config.Config, l *applogger.Logger) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		l.Info("using in-memory cache for snapshot lock")
		return cache.NewMemoryCache(), nil
	}
	c, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	l.Info("redis cache connected", applogger.String("host", cfg.Redis.Host))
	return c, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when no brokers are configured.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithAutoCreateTopic(cfg.Environment == "development"),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideEventPublisher announces refreshed files on Kafka when a producer exists.
func ProvideEventPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.EventPublisher {
	if producer == nil {
		return internalrepo.NoopEventPublisher{}
	}
	return internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.Topic)
}

// ProvideLogSink is the destination of aggregated error logs.
func ProvideLogSink(producer *pkgkafka.Producer) applogger.Publisher {
	if producer == nil {
		return nil
	}
	return producer
}

// ProvideSignalRecorder stores scan results in ClickHouse when enabled.
func ProvideSignalRecorder(cfg *config.Config, l *applogger.Logger) (repository.SignalRecorder, error) {
	if !cfg.ClickHouse.Enabled {
		return internalrepo.NoopSignalRecorder{}, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.SignalSchema); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	l.Info("clickhouse connected and schema ready", applogger.String("db", cfg.ClickHouse.Database))
	return internalrepo.NewClickHouseSignalRecorder(client, l), nil
}

func ProvideCatalog(cfg *config.Config, l *applogger.Logger) repository.CatalogSource {
	c := internalrepo.NewCSVCatalog(cfg.Data.CatalogPath)
	c.SetLogger(l)
	return c
}

func ProvidePriceStore(cfg *config.Config, l *applogger.Logger) repository.PriceStore {
	s := internalrepo.NewFileStore(cfg.Data.DailyDir)
	s.SetLogger(l)
	return s
}

// ProvideMarketData creates the Yahoo chart client.
func ProvideMarketData(cfg *config.Config, l *applogger.Logger) repository.MarketData {
	httpClient := xhttp.NewClient(
		xhttp.WithTimeout(cfg.MarketData.Timeout),
		xhttp.WithHeader("User-Agent", cfg.MarketData.UserAgent),
	)
	return yahoo.New(httpClient, l, yahoo.WithBaseURL(cfg.MarketData.BaseURL))
}

func ProvidePatternScanner(
	catalog repository.CatalogSource,
	prices repository.PriceStore,
	recorder repository.SignalRecorder,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.PatternScanner {
	return usecase.NewPatternScanner(catalog, prices, recorder, m, l)
}

func ProvideSnapshotRefresher(
	cfg *config.Config,
	catalog repository.CatalogSource,
	market repository.MarketData,
	prices repository.PriceStore,
	publisher repository.EventPublisher,
	c cache.Service,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.SnapshotRefresher {
	return usecase.NewSnapshotRefresher(catalog, market, prices, publisher, c, c, m, usecase.SnapshotOptions{
		Start:           cfg.StartDate(),
		ContinueOnError: cfg.Snapshot.ContinueOnError,
		LockTTL:         cfg.Snapshot.LockTTL,
	}, l)
}

func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.Server.RateLimit, cfg.Server.RateBurst)
}

func ProvideWebHandler(
	l *applogger.Logger,
	scanner *usecase.PatternScanner,
	refresher *usecase.SnapshotRefresher,
	limiter *ratelimit.Limiter,
) (*web.Handler, error) {
	if err := web.RegisterValidations(); err != nil {
		return nil, err
	}
	return web.NewHandler(l, scanner, refresher, limiter), nil
}

// ProvideHTTPServer builds the echo server with the page renderer.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, h *web.Handler) (*xhttp.Server, error) {
	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, err
	}
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithRenderer(renderer),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(cfg.Metrics.Path, cfg.Server.SlowThreshold))
	}
	return xhttp.NewServer(l, []xhttp.Handler{h}, opts...), nil
}

// ProvideScheduler registers the snapshot cron when configured and the
// limiter housekeeping job.
func ProvideScheduler(
	cfg *config.Config,
	l *applogger.Logger,
	refresher *usecase.SnapshotRefresher,
	limiter *ratelimit.Limiter,
) (*scheduler.Scheduler, error) {
	s := scheduler.New(l)
	if cfg.Snapshot.Cron != "" {
		if err := s.AddJob(cfg.Snapshot.Cron, scheduler.NewSnapshotJob(refresher, l)); err != nil {
			return nil, err
		}
	}
	if err := s.AddJob(pruneSchedule, scheduler.NewPruneJob(limiter)); err != nil {
		return nil, err
	}
	return s, nil
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	sched *scheduler.Scheduler,
	refresher *usecase.SnapshotRefresher,
	logSink applogger.Publisher,
	c cache.Service,
	recorder repository.SignalRecorder,
	publisher repository.EventPublisher,
) *server.App {
	return server.New(cfg, l, httpServer, sched, refresher, logSink,
		server.Resource{Name: "cache", Closer: c},
		server.Resource{Name: "signal_recorder", Closer: recorder},
		server.Resource{Name: "event_publisher", Closer: publisher},
	)
}
