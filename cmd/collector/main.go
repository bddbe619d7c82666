package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"news-aggregator/internal/config"
	"news-aggregator/internal/handler/http/requestid"
	"news-aggregator/internal/handler/http/respond"
	pgRepo "news-aggregator/internal/infra/adapter/persistence/postgres"
	sqliteRepo "news-aggregator/internal/infra/adapter/persistence/sqlite"
	"news-aggregator/internal/infra/db"
	"news-aggregator/internal/infra/export"
	"news-aggregator/internal/infra/registry"
	"news-aggregator/internal/infra/scraper"
	workerPkg "news-aggregator/internal/infra/worker"
	"news-aggregator/internal/observability/logging"
	"news-aggregator/internal/observability/metrics"
	"news-aggregator/internal/repository"
	"news-aggregator/internal/resilience/circuitbreaker"
	"news-aggregator/internal/usecase/collect"
)

func main() {
	logger := initLogger()

	appConfig := config.Load()
	database := initStore(logger, appConfig.Store)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close store", slog.Any("error", err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load collector configuration (fail-open strategy)
	collectorMetrics := workerPkg.NewCollectorMetrics()
	collectorConfig, err := workerPkg.LoadConfigFromEnv(logger, collectorMetrics)
	if err != nil {
		logger.Error("failed to load collector configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("collector configuration loaded",
		slog.String("cron_schedule", collectorConfig.CronSchedule),
		slog.String("timezone", collectorConfig.Timezone),
		slog.Int("parallelism", collectorConfig.Parallelism),
		slog.Duration("crawl_timeout", collectorConfig.CrawlTimeout),
		slog.String("export_path", collectorConfig.ExportPath),
		slog.Int("health_port", collectorConfig.HealthPort),
		slog.Bool("run_once", collectorConfig.RunOnce))

	svc := setupCollectService(logger, appConfig, collectorConfig, database)

	if collectorConfig.RunOnce {
		if err := runCollectJob(ctx, logger, svc, collectorConfig, collectorMetrics, nil); err != nil {
			os.Exit(1)
		}
		return
	}

	healthAddr := fmt.Sprintf(":%d", collectorConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	startCronCollector(ctx, logger, svc, collectorConfig, collectorMetrics, healthServer)
}

// initLogger initializes the process logger and installs it as the slog default.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// initStore opens the snapshot store and creates its schema.
func initStore(logger *slog.Logger, cfg config.StoreConfig) *sql.DB {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	database, err := db.Open(ctx, cfg.Driver, cfg.DSN)
	if err != nil {
		logger.Error("failed to open snapshot store", slog.String("error", respond.SanitizeError(err)))
		os.Exit(1)
	}
	if err := db.MigrateUp(ctx, database, cfg.Driver); err != nil {
		logger.Error("failed to migrate snapshot store", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

func snapshotRepo(driver string, database *sql.DB) repository.SnapshotRepository {
	guarded := circuitbreaker.NewDBCircuitBreaker(database)
	if driver == db.DriverPostgres {
		return pgRepo.NewSnapshotRepo(guarded)
	}
	return sqliteRepo.NewSnapshotRepo(guarded)
}

// setupCollectService wires the registry, fetcher, parser, snapshot store and exporter.
func setupCollectService(logger *slog.Logger, appConfig *config.Config, cfg *workerPkg.CollectorConfig, database *sql.DB) *collect.Service {
	reg, err := registry.Load(appConfig.SourcesFile)
	if err != nil {
		logger.Error("failed to load source registry", slog.Any("error", err))
		os.Exit(1)
	}
	metrics.UpdateSourcesTotal(reg.Len())
	logger.Info("source registry loaded", slog.Int("sources", reg.Len()))

	feedFetcher := scraper.NewHTTPFetcher(nil, scraper.FetcherConfig{
		Timeout:        appConfig.Fetch.Timeout,
		UserAgent:      appConfig.Fetch.UserAgent,
		MaxBodySize:    appConfig.Fetch.MaxBodySize,
		HostRPS:        appConfig.Fetch.HostRPS,
		HostBurst:      appConfig.Fetch.HostBurst,
		BreakerEnabled: appConfig.Fetch.BreakerEnabled,
	})

	return &collect.Service{
		SourceRepo:  reg,
		Snapshots:   snapshotRepo(appConfig.Store.Driver, database),
		Fetcher:     feedFetcher,
		Parser:      scraper.NewParser(),
		Exporter:    export.NewJSONLWriter(cfg.ExportPath),
		Parallelism: cfg.Parallelism,
		Retention:   cfg.SnapshotRetention,
	}
}

// startCronCollector schedules collection runs and blocks until ctx is cancelled.
func startCronCollector(ctx context.Context, logger *slog.Logger, svc *collect.Service, cfg *workerPkg.CollectorConfig, m *workerPkg.CollectorMetrics, healthServer *workerPkg.HealthServer) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	// 前回の収集が終わっていなければ次の起動をスキップ
	c := cron.New(cron.WithLocation(loc), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	_, err = c.AddFunc(cfg.CronSchedule, func() {
		_ = runCollectJob(ctx, logger, svc, cfg, m, healthServer)
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	healthServer.SetReady(true)
	logger.Info("collector started", slog.String("schedule", cfg.CronSchedule), slog.String("timezone", cfg.Timezone))

	<-ctx.Done()
	logger.Info("shutting down collector...")
	healthServer.SetReady(false)
	<-c.Stop().Done()
	logger.Info("collector stopped")
}

// runCollectJob executes a single collection run with timeout and error handling.
// healthServer may be nil in run-once mode.
func runCollectJob(parent context.Context, logger *slog.Logger, svc *collect.Service, cfg *workerPkg.CollectorConfig, m *workerPkg.CollectorMetrics, healthServer *workerPkg.HealthServer) error {
	startTime := time.Now()
	runID := requestid.New()
	logger = logger.With(slog.String("run_id", runID))
	logger.Info("collection started")

	ctx, cancel := context.WithTimeout(parent, cfg.CrawlTimeout)
	defer cancel()
	// フィード単位のログにも run_id を付ける
	ctx = logging.WithLogger(ctx, logger)

	stats, err := svc.CollectAll(ctx)
	duration := time.Since(startTime)
	m.RecordJobDuration(duration.Seconds())

	if err != nil {
		// 機密情報をマスクしてログ出力
		safeErr := respond.SanitizeError(err)
		logger.Error("collection failed", slog.String("error", safeErr))
		m.RecordJobRun(workerPkg.JobStatusFailure)
		if healthServer != nil {
			healthServer.RecordRun(workerPkg.RunStatus{
				RunID:      runID,
				FinishedAt: time.Now().UTC(),
				Duration:   duration.String(),
				Error:      safeErr,
			})
		}
		return err
	}

	m.RecordJobRun(workerPkg.JobStatusSuccess)
	m.RecordFeedsProcessed(int64(stats.Feeds))
	m.RecordItemsExported(stats.Exported)
	m.RecordLastSuccess()
	if healthServer != nil {
		healthServer.RecordRun(workerPkg.RunStatus{
			RunID:      runID,
			FinishedAt: time.Now().UTC(),
			Duration:   stats.Duration.String(),
			Feeds:      int64(stats.Feeds),
			Failed:     stats.FeedsFailed,
			Exported:   stats.Exported,
		})
	}

	logger.Info("collection completed",
		slog.Int("sources", stats.Sources),
		slog.Int("feeds", stats.Feeds),
		slog.Int64("feeds_failed", stats.FeedsFailed),
		slog.Int64("snapshots", stats.Snapshots),
		slog.Int64("feed_items", stats.FeedItems),
		slog.Int("exported", stats.Exported),
		slog.Int("duplicated", stats.Duplicated),
		slog.Int64("pruned", stats.Pruned),
		slog.Int("warnings", len(stats.Warnings)),
		slog.Duration("duration", stats.Duration),
	)
	return nil
}
