// Package db opens the snapshot store and applies its schema.
// Two drivers are supported: embedded SQLite (modernc.org/sqlite) for
// single-node deployments and PostgreSQL through pgx for shared stores.
package db

import (
	"cmp"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	pkgconfig "news-aggregator/pkg/config"
)

// Supported STORE_DRIVER values.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const pingTimeout = 5 * time.Second

type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultPoolConfig suits a Postgres store shared by the API and the
// collector.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
	}
}

// poolConfigFromEnv applies DB_MAX_OPEN_CONNS, DB_MAX_IDLE_CONNS,
// DB_CONN_MAX_LIFETIME and DB_CONN_MAX_IDLE_TIME. Zero and negative values
// keep the default.
func poolConfigFromEnv() PoolConfig {
	def := DefaultPoolConfig()
	return PoolConfig{
		MaxOpenConns:    positive(pkgconfig.GetEnvInt("DB_MAX_OPEN_CONNS", def.MaxOpenConns), def.MaxOpenConns),
		MaxIdleConns:    positive(pkgconfig.GetEnvInt("DB_MAX_IDLE_CONNS", def.MaxIdleConns), def.MaxIdleConns),
		ConnMaxLifetime: positive(pkgconfig.GetEnvDuration("DB_CONN_MAX_LIFETIME", def.ConnMaxLifetime), def.ConnMaxLifetime),
		ConnMaxIdleTime: positive(pkgconfig.GetEnvDuration("DB_CONN_MAX_IDLE_TIME", def.ConnMaxIdleTime), def.ConnMaxIdleTime),
	}
}

func positive[T cmp.Ordered](v, def T) T {
	var zero T
	if v <= zero {
		return def
	}
	return v
}

// driverFor returns the database/sql driver name and the DSN to open.
// SQLite DSNs get a busy timeout unless they set pragmas themselves, since
// the collector and snapshot reads may touch the file at the same time.
func driverFor(driver, dsn string) (string, string, error) {
	switch driver {
	case DriverSQLite:
		if !strings.Contains(dsn, "_pragma=") {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn += sep + "_pragma=busy_timeout(5000)"
		}
		return "sqlite", dsn, nil
	case DriverPostgres:
		return "pgx", dsn, nil
	default:
		return "", "", fmt.Errorf("unsupported store driver %q (want %q or %q)", driver, DriverSQLite, DriverPostgres)
	}
}

// Open returns a pinged pool. A SQLite store gets a single connection, which
// serializes writers and keeps ":memory:" databases on one handle.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("store DSN not set")
	}
	name, dsn, err := driverFor(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", driver, err)
	}

	pool := poolConfigFromEnv()
	if driver == DriverSQLite {
		pool.MaxOpenConns, pool.MaxIdleConns = 1, 1
	}
	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	db.SetConnMaxIdleTime(pool.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s store: %w", driver, err)
	}

	slog.Info("snapshot store opened",
		slog.String("driver", driver),
		slog.Int("max_open_conns", pool.MaxOpenConns),
		slog.Int("max_idle_conns", pool.MaxIdleConns),
		slog.Duration("conn_max_lifetime", pool.ConnMaxLifetime))
	return db, nil
}
