package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"news-aggregator/internal/common/pagination"
	"news-aggregator/internal/config"
	hhttp "news-aggregator/internal/handler/http"
	"news-aggregator/internal/handler/http/news"
	"news-aggregator/internal/handler/http/requestid"
	pgRepo "news-aggregator/internal/infra/adapter/persistence/postgres"
	sqliteRepo "news-aggregator/internal/infra/adapter/persistence/sqlite"
	"news-aggregator/internal/infra/db"
	"news-aggregator/internal/infra/fetcher"
	"news-aggregator/internal/infra/registry"
	"news-aggregator/internal/infra/scraper"
	"news-aggregator/internal/observability/logging"
	"news-aggregator/internal/observability/metrics"
	"news-aggregator/internal/observability/tracing"
	"news-aggregator/internal/repository"
	"news-aggregator/internal/resilience/circuitbreaker"
	"news-aggregator/internal/usecase/aggregate"
	"news-aggregator/internal/usecase/source"

	_ "news-aggregator/docs" // swagger docs
)

// @title           News Aggregator API
// @version         1.0
// @description     複数の RSS/Atom フィードを国・言語・キーワード・期間で横断検索する REST API
// @description     重複除去・日付降順ソート・ページングされたニュース一覧を返します。

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

func main() {
	logger := initLogger()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	reg := initRegistry(logger, cfg)

	database := initStore(logger, cfg)
	if database != nil {
		statsCtx, stopStats := context.WithCancel(context.Background())
		go reportStoreStats(statsCtx, database, 15*time.Second)
		defer func() {
			stopStats()
			if err := database.Close(); err != nil {
				logger.Error("failed to close store", slog.Any("error", err))
			}
		}()
	}

	shutdownTracing := initTracing(logger, cfg)
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer provider", slog.Any("error", err))
		}
	}()

	handler := setupServer(logger, cfg, reg, database)
	runServer(logger, cfg, handler)
}

// initLogger initializes the process logger and installs it as the slog default.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// initRegistry loads the source registry. An unreadable or invalid registry is fatal.
func initRegistry(logger *slog.Logger, cfg *config.Config) *registry.Registry {
	reg, err := registry.Load(cfg.SourcesFile)
	if err != nil {
		logger.Error("failed to load source registry",
			slog.String("path", cfg.SourcesFile),
			slog.Any("error", err))
		os.Exit(1)
	}
	metrics.UpdateSourcesTotal(reg.Len())
	logger.Info("source registry loaded",
		slog.Int("sources", reg.Len()),
		slog.Any("countries", reg.Countries()))
	return reg
}

// initStore opens the snapshot store when the API serves snapshots.
// It returns nil in live HTTP mode.
func initStore(logger *slog.Logger, cfg *config.Config) *sql.DB {
	if cfg.FetchMode != config.FetchModeSnapshot {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	database, err := db.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		logger.Error("failed to open snapshot store", slog.Any("error", err))
		os.Exit(1)
	}
	if err := db.MigrateUp(ctx, database, cfg.Store.Driver); err != nil {
		logger.Error("failed to migrate snapshot store", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// reportStoreStats publishes connection pool usage until ctx is cancelled.
func reportStoreStats(ctx context.Context, database *sql.DB, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		stats := database.Stats()
		metrics.UpdateDBConnectionStats(stats.InUse, stats.Idle)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func initTracing(logger *slog.Logger, cfg *config.Config) func(context.Context) error {
	if !cfg.TracingEnabled {
		return func(context.Context) error { return nil }
	}
	logger.Info("tracing enabled")
	return tracing.InitProvider("news-aggregator-api", cfg.Version)
}

// snapshotRepo builds the driver-specific snapshot repository on the guarded store.
func snapshotRepo(driver string, guarded *circuitbreaker.DBCircuitBreaker) repository.SnapshotRepository {
	if driver == db.DriverPostgres {
		return pgRepo.NewSnapshotRepo(guarded)
	}
	return sqliteRepo.NewSnapshotRepo(guarded)
}

// newFeedFetcher assembles the fetcher chain for the configured mode.
func newFeedFetcher(logger *slog.Logger, cfg *config.Config, store *circuitbreaker.DBCircuitBreaker) aggregate.FeedFetcher {
	var f aggregate.FeedFetcher
	if cfg.FetchMode == config.FetchModeSnapshot {
		f = scraper.NewSnapshotFetcher(snapshotRepo(cfg.Store.Driver, store), cfg.Store.SnapshotMaxAge)
		logger.Info("serving feeds from snapshot store",
			slog.String("driver", cfg.Store.Driver),
			slog.Duration("max_age", cfg.Store.SnapshotMaxAge))
	} else {
		f = scraper.NewHTTPFetcher(nil, scraper.FetcherConfig{
			Timeout:        cfg.Fetch.Timeout,
			UserAgent:      cfg.Fetch.UserAgent,
			MaxBodySize:    cfg.Fetch.MaxBodySize,
			HostRPS:        cfg.Fetch.HostRPS,
			HostBurst:      cfg.Fetch.HostBurst,
			BreakerEnabled: cfg.Fetch.BreakerEnabled,
		})
		logger.Info("fetching feeds over HTTP",
			slog.Duration("timeout", cfg.Fetch.Timeout),
			slog.Float64("host_rps", cfg.Fetch.HostRPS),
			slog.Bool("breaker_enabled", cfg.Fetch.BreakerEnabled))
	}

	if cfg.Fetch.CacheTTL > 0 {
		f = scraper.NewCachingFetcher(f, cfg.Fetch.CacheTTL)
		logger.Info("feed cache enabled", slog.Duration("ttl", cfg.Fetch.CacheTTL))
	}
	return f
}

// newImageResolver returns nil when image backfill is disabled or misconfigured.
func newImageResolver(logger *slog.Logger) aggregate.ImageResolver {
	imgCfg, err := fetcher.LoadConfigFromEnv()
	if err != nil {
		logger.Warn("image backfill disabled due to configuration error", slog.Any("error", err))
		return nil
	}
	if !imgCfg.Enabled {
		logger.Info("image backfill disabled")
		return nil
	}
	logger.Info("image backfill enabled",
		slog.Duration("timeout", imgCfg.Timeout),
		slog.Int64("max_body_size", imgCfg.MaxBodySize))
	return fetcher.NewArticleImageResolver(imgCfg)
}

// setupServer configures and returns the HTTP handler with all routes and middleware.
// The snapshot repository and the health probes share one store breaker, so
// /health reports an open circuit as soon as reads start failing.
func setupServer(logger *slog.Logger, cfg *config.Config, reg *registry.Registry, database *sql.DB) http.Handler {
	var store *circuitbreaker.DBCircuitBreaker
	if database != nil {
		store = circuitbreaker.NewDBCircuitBreaker(database)
	}
	images := newImageResolver(logger)
	svc := aggregate.NewService(
		&source.Selector{Repo: reg},
		newFeedFetcher(logger, cfg, store),
		scraper.NewParser(),
		images,
		aggregate.Config{
			CallTimeout:          cfg.Aggregate.CallTimeout,
			GoogleNewsEnabled:    cfg.Aggregate.GoogleNewsEnabled,
			ImageBackfillEnabled: images != nil,
		},
	)

	mux := setupRoutes(cfg, reg, store, svc)
	return applyMiddleware(logger, cfg, mux)
}

// setupRoutes registers all HTTP routes.
func setupRoutes(cfg *config.Config, reg *registry.Registry, guarded *circuitbreaker.DBCircuitBreaker, svc *aggregate.Service) *http.ServeMux {
	var store hhttp.Pinger
	if guarded != nil {
		store = guarded
	}

	mux := http.NewServeMux()
	news.Register(mux, svc, pagination.LoadFromEnv())

	// ヘルスチェックエンドポイント
	mux.Handle("/health", &hhttp.HealthHandler{Sources: reg, Store: store, Version: cfg.Version})
	mux.Handle("/ready", &hhttp.ReadyHandler{Sources: reg, Store: store})
	mux.Handle("/live", &hhttp.LiveHandler{})
	mux.Handle("/metrics", hhttp.MetricsHandler())

	mux.Handle("/swagger/", httpSwagger.WrapHandler)
	return mux
}

// applyMiddleware wraps the handler with middleware chain.
// Middleware order: CORS → Request ID → Rate Limit → Recovery → Tracing → Logging → Body Limit → Metrics
func applyMiddleware(logger *slog.Logger, cfg *config.Config, handler http.Handler) http.Handler {
	chain := handler

	// Apply in reverse order (innermost to outermost)
	chain = hhttp.MetricsMiddleware(chain)
	chain = hhttp.LimitRequestBody(1 << 20)(chain) // 1MB limit
	chain = hhttp.Logging(logger)(chain)
	// Logging reads the span started here for trace_id
	if cfg.TracingEnabled {
		chain = tracing.Middleware(chain)
	}
	chain = hhttp.Recover(logger)(chain)

	if cfg.RateLimit.Enabled {
		limiter := hhttp.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		chain = limiter.Limit(chain)
		logger.Info("rate limiting initialized",
			slog.Int("limit", cfg.RateLimit.Requests),
			slog.Duration("window", cfg.RateLimit.Window))
	} else {
		logger.Warn("rate limiting is DISABLED - not recommended for production")
	}

	chain = requestid.Middleware(chain)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", requestid.RequestIDHeader},
		ExposedHeaders: []string{"X-Total-Count", "X-Total-Pages", requestid.RequestIDHeader},
		MaxAge:         cfg.CORS.MaxAge,
	})
	logger.Info("CORS enabled",
		slog.Any("allowed_origins", cfg.CORS.AllowedOrigins),
		slog.Int("max_age", cfg.CORS.MaxAge))

	return c.Handler(chain)
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(logger *slog.Logger, cfg *config.Config, handler http.Handler) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", cfg.HTTPAddr),
			slog.String("version", cfg.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	// in-flight aggregations observe ctx cancellation only after Shutdown drains
	cancel()
	logger.Info("server stopped")
}
