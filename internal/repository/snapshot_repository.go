package repository

import (
	"context"
	"time"

	"news-aggregator/internal/domain/entity"
)

// SnapshotRepository stores the latest raw body per feed URL.
type SnapshotRepository interface {
	// Save inserts or replaces the snapshot for s.FeedURL.
	Save(ctx context.Context, s *entity.Snapshot) error
	// Get returns the snapshot for feedURL, or entity.ErrNotFound.
	Get(ctx context.Context, feedURL string) (*entity.Snapshot, error)
	// List returns snapshot metadata ordered by feed URL. Bodies are not loaded.
	List(ctx context.Context) ([]*entity.Snapshot, error)
	// DeleteOlderThan removes snapshots fetched before t and returns the count.
	DeleteOlderThan(ctx context.Context, t time.Time) (int64, error)
}
