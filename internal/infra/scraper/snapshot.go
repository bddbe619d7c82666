package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"news-aggregator/internal/domain/entity"
	"news-aggregator/internal/repository"
	"news-aggregator/internal/usecase/aggregate"
)

// SnapshotFetcher serves feed bodies from the snapshot store instead of the network.
// It backs offline aggregation over what the collector last harvested.
type SnapshotFetcher struct {
	repo repository.SnapshotRepository
	// MaxAge rejects snapshots older than this. Zero accepts any age.
	MaxAge time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewSnapshotFetcher creates a SnapshotFetcher over repo.
func NewSnapshotFetcher(repo repository.SnapshotRepository, maxAge time.Duration) *SnapshotFetcher {
	return &SnapshotFetcher{repo: repo, MaxAge: maxAge, Now: time.Now}
}

// Fetch returns the stored body for feedURL.
// A missing or stale snapshot is reported as aggregate.ErrFetchFailed.
func (f *SnapshotFetcher) Fetch(ctx context.Context, feedURL string) ([]byte, error) {
	s, err := f.repo.Get(ctx, feedURL)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s: no snapshot", aggregate.ErrFetchFailed, feedURL)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", aggregate.ErrFetchTimeout, feedURL)
		}
		return nil, fmt.Errorf("%w: %s: snapshot store: %v", aggregate.ErrFetchFailed, feedURL, err)
	}

	if f.MaxAge > 0 {
		now := time.Now
		if f.Now != nil {
			now = f.Now
		}
		if age := now().Sub(s.FetchedAt); age > f.MaxAge {
			return nil, fmt.Errorf("%w: %s: snapshot is %s old", aggregate.ErrFetchFailed, feedURL, age.Round(time.Second))
		}
	}
	return s.Body, nil
}
