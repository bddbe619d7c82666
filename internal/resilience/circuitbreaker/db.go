package circuitbreaker

import (
	"context"
	"database/sql"
	"time"
)

// StoreConfig trips the snapshot store breaker after five straight failures
// and probes again after 30 seconds.
func StoreConfig() Config {
	return Config{
		Name:             "snapshot-store",
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 1.0,
		MinRequests:      5,
	}
}

// DBCircuitBreaker guards the snapshot store. It satisfies the DBTX interface
// of the sqlite and postgres snapshot repositories, so during an outage
// collector writes and snapshot-mode reads fail fast instead of waiting on
// connection timeouts.
type DBCircuitBreaker struct {
	cb *CircuitBreaker
	db *sql.DB
}

func NewDBCircuitBreaker(db *sql.DB) *DBCircuitBreaker {
	return NewDBCircuitBreakerWithConfig(db, StoreConfig())
}

func NewDBCircuitBreakerWithConfig(db *sql.DB, cfg Config) *DBCircuitBreaker {
	return &DBCircuitBreaker{cb: New(cfg), db: db}
}

func (d *DBCircuitBreaker) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return Do(d.cb, func() (*sql.Rows, error) {
		return d.db.QueryContext(ctx, query, args...)
	})
}

func (d *DBCircuitBreaker) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return Do(d.cb, func() (sql.Result, error) {
		return d.db.ExecContext(ctx, query, args...)
	})
}

// PingContext goes through the breaker, so /health and /ready report an open
// circuit without touching the database.
func (d *DBCircuitBreaker) PingContext(ctx context.Context) error {
	_, err := Do(d.cb, func() (struct{}, error) {
		return struct{}{}, d.db.PingContext(ctx)
	})
	return err
}

func (d *DBCircuitBreaker) IsOpen() bool {
	return d.cb.IsOpen()
}

// DB returns the unguarded connection for migrations and pool stats.
func (d *DBCircuitBreaker) DB() *sql.DB {
	return d.db
}
