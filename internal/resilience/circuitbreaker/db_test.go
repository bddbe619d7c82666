package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGuardedMock(t *testing.T, cfg Config) (*DBCircuitBreaker, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewDBCircuitBreakerWithConfig(db, cfg), mock
}

func TestNewDBCircuitBreaker(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	dcb := NewDBCircuitBreaker(db)

	assert.Same(t, db, dcb.DB())
	assert.Equal(t, "snapshot-store", dcb.cb.Name())
	assert.False(t, dcb.IsOpen())
}

func TestDBCircuitBreaker_PassesThrough(t *testing.T) {
	ctx := context.Background()
	dcb, mock := newGuardedMock(t, StoreConfig())

	mock.ExpectQuery("SELECT feed_url FROM snapshots").
		WillReturnRows(sqlmock.NewRows([]string{"feed_url"}).AddRow("https://elpais.test/rss"))
	mock.ExpectExec("DELETE FROM snapshots").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectPing()

	rows, err := dcb.QueryContext(ctx, "SELECT feed_url FROM snapshots")
	require.NoError(t, err)
	require.True(t, rows.Next())
	var feedURL string
	require.NoError(t, rows.Scan(&feedURL))
	require.NoError(t, rows.Close())
	assert.Equal(t, "https://elpais.test/rss", feedURL)

	res, err := dcb.ExecContext(ctx, "DELETE FROM snapshots WHERE fetched_at < ?", time.Now())
	require.NoError(t, err)
	n, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	assert.NoError(t, dcb.PingContext(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBCircuitBreaker_OpensOnFailures(t *testing.T) {
	locked := errors.New("database is locked")

	tests := []struct {
		name   string
		expect func(sqlmock.Sqlmock)
		call   func(*DBCircuitBreaker) error
	}{
		{
			name:   "exec",
			expect: func(m sqlmock.Sqlmock) { m.ExpectExec("INSERT INTO snapshots").WillReturnError(locked) },
			call: func(d *DBCircuitBreaker) error {
				_, err := d.ExecContext(context.Background(), "INSERT INTO snapshots VALUES (?)", 1)
				return err
			},
		},
		{
			name:   "query",
			expect: func(m sqlmock.Sqlmock) { m.ExpectQuery("SELECT body FROM snapshots").WillReturnError(locked) },
			call: func(d *DBCircuitBreaker) error {
				_, err := d.QueryContext(context.Background(), "SELECT body FROM snapshots")
				return err
			},
		},
		{
			name:   "ping",
			expect: func(m sqlmock.Sqlmock) { m.ExpectPing().WillReturnError(locked) },
			call:   func(d *DBCircuitBreaker) error { return d.PingContext(context.Background()) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dcb, mock := newGuardedMock(t, StoreConfig())
			for i := 0; i < 5; i++ {
				tt.expect(mock)
			}

			for i := 0; i < 5; i++ {
				require.ErrorIs(t, tt.call(dcb), locked)
			}
			require.True(t, dcb.IsOpen())

			// 回路が開いている間は DB に到達しない
			assert.True(t, IsOpenStateError(tt.call(dcb)))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDBCircuitBreaker_RecoversAfterTimeout(t *testing.T) {
	cfg := StoreConfig()
	cfg.Timeout = 50 * time.Millisecond
	cfg.MinRequests = 2
	dcb, mock := newGuardedMock(t, cfg)

	mock.ExpectExec("UPDATE").WillReturnError(errors.New("boom"))
	mock.ExpectExec("UPDATE").WillReturnError(errors.New("boom"))
	for i := 0; i < 2; i++ {
		_, _ = dcb.ExecContext(context.Background(), "UPDATE snapshots SET body = ?", i)
	}
	require.True(t, dcb.IsOpen())

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, gobreaker.StateHalfOpen, dcb.cb.State())

	mock.ExpectExec("UPDATE").WillReturnResult(sqlmock.NewResult(0, 1))
	_, err := dcb.ExecContext(context.Background(), "UPDATE snapshots SET body = ?", 3)
	assert.NoError(t, err)
	assert.False(t, dcb.IsOpen())
}

func TestStoreConfig(t *testing.T) {
	cfg := StoreConfig()

	assert.Equal(t, "snapshot-store", cfg.Name)
	assert.Equal(t, uint32(5), cfg.MinRequests)
	assert.Equal(t, 1.0, cfg.FailureThreshold)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}
