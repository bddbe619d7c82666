// Package sqlite implements the snapshot repository on embedded SQLite (modernc.org/sqlite).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"news-aggregator/internal/domain/entity"
	"news-aggregator/internal/observability/metrics"
	"news-aggregator/internal/repository"
)

// DBTX is satisfied by *sql.DB and *circuitbreaker.DBCircuitBreaker.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type SnapshotRepo struct{ db DBTX }

func NewSnapshotRepo(db DBTX) repository.SnapshotRepository {
	return &SnapshotRepo{db: db}
}

func (repo *SnapshotRepo) Save(ctx context.Context, s *entity.Snapshot) error {
	defer observe("save", time.Now())

	const query = `
INSERT INTO snapshots (feed_url, source_id, body, content_type, fetched_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (feed_url) DO UPDATE SET
       source_id    = excluded.source_id,
       body         = excluded.body,
       content_type = excluded.content_type,
       fetched_at   = excluded.fetched_at`
	_, err := repo.db.ExecContext(ctx, query,
		s.FeedURL, s.SourceID, s.Body, s.ContentType, s.FetchedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	return nil
}

func (repo *SnapshotRepo) Get(ctx context.Context, feedURL string) (*entity.Snapshot, error) {
	defer observe("get", time.Now())

	const query = `
SELECT feed_url, source_id, body, content_type, fetched_at
FROM snapshots
WHERE feed_url = ?
LIMIT 1`
	// QueryContext rather than QueryRowContext so the store breaker sees the error.
	rows, err := repo.db.QueryContext(ctx, query, feedURL)
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("Get: rows.Err: %w", err)
		}
		return nil, entity.ErrNotFound
	}
	var s entity.Snapshot
	if err := rows.Scan(&s.FeedURL, &s.SourceID, &s.Body, &s.ContentType, &s.FetchedAt); err != nil {
		return nil, fmt.Errorf("Get: Scan: %w", err)
	}
	s.FetchedAt = s.FetchedAt.UTC()
	return &s, nil
}

func (repo *SnapshotRepo) List(ctx context.Context) ([]*entity.Snapshot, error) {
	defer observe("list", time.Now())

	const query = `
SELECT feed_url, source_id, content_type, fetched_at
FROM snapshots
ORDER BY feed_url ASC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	snapshots := make([]*entity.Snapshot, 0, 64)
	for rows.Next() {
		var s entity.Snapshot
		if err := rows.Scan(&s.FeedURL, &s.SourceID, &s.ContentType, &s.FetchedAt); err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		s.FetchedAt = s.FetchedAt.UTC()
		snapshots = append(snapshots, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows.Err: %w", err)
	}
	return snapshots, nil
}

func (repo *SnapshotRepo) DeleteOlderThan(ctx context.Context, t time.Time) (int64, error) {
	defer observe("delete_older_than", time.Now())

	const query = `DELETE FROM snapshots WHERE fetched_at < ?`
	res, err := repo.db.ExecContext(ctx, query, t.UTC())
	if err != nil {
		return 0, fmt.Errorf("DeleteOlderThan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("DeleteOlderThan: RowsAffected: %w", err)
	}
	return n, nil
}

func observe(operation string, start time.Time) {
	metrics.RecordDBQuery("sqlite."+operation, time.Since(start))
}
