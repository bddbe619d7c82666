// Package collect implements the offline batch collector. It harvests every
// registry feed into the snapshot store and exports the parsed items as
// JSON Lines for consumers that do not call the live aggregator.
package collect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"news-aggregator/internal/domain/entity"
	"news-aggregator/internal/observability/logging"
	"news-aggregator/internal/observability/metrics"
	"news-aggregator/internal/repository"
	"news-aggregator/internal/usecase/aggregate"
)

// DefaultParallelism bounds concurrent feed fetches.
const DefaultParallelism = 8

// Exporter persists the collected items of one run.
type Exporter interface {
	Export(ctx context.Context, items []entity.NormalizedItem) error
}

// Service provides the batch collection use case.
// Snapshots and Exporter are optional; nil disables that output.
type Service struct {
	SourceRepo repository.SourceRepository
	Snapshots  repository.SnapshotRepository
	Fetcher    aggregate.FeedFetcher
	Parser     aggregate.FeedParser
	Exporter   Exporter

	// Parallelism bounds concurrent fetches. Zero means DefaultParallelism.
	Parallelism int
	// Retention prunes snapshots older than this after each run. Zero keeps all.
	Retention time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

// CollectStats contains statistics about a collection run.
type CollectStats struct {
	Sources     int
	Feeds       int
	FeedsFailed int64
	Snapshots   int64
	FeedItems   int64
	Exported    int
	Duplicated  int
	Pruned      int64
	Warnings    []string
	Duration    time.Duration
}

type feedTask struct {
	src entity.SourceDescriptor
	url string
}

// CollectAll fetches every registry feed, stores raw bodies, parses them and
// exports the deduplicated items in registry order.
// Per-feed failures are recorded in the stats and never abort the run.
// An error is returned only when the registry cannot be listed, the export
// fails, or ctx ends before the run completes.
func (s *Service) CollectAll(ctx context.Context) (*CollectStats, error) {
	logger := logging.FromContext(ctx)
	start := time.Now()
	stats := &CollectStats{}

	srcs, err := s.SourceRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	stats.Sources = len(srcs)

	var tasks []feedTask
	for _, src := range srcs {
		for _, u := range src.Feeds {
			tasks = append(tasks, feedTask{src: src, url: u})
		}
	}
	stats.Feeds = len(tasks)

	// Each task writes only its own slot, so export order follows the registry.
	batches := make([][]entity.NormalizedItem, len(tasks))
	warnings := make([][]string, len(tasks))

	limit := s.Parallelism
	if limit <= 0 {
		limit = DefaultParallelism
	}
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)

	for i, task := range tasks {
		eg.Go(func() error {
			batches[i], warnings[i] = s.collectFeed(egCtx, task, stats)
			return nil
		})
	}
	_ = eg.Wait()

	if err := ctx.Err(); err != nil {
		stats.Duration = time.Since(start)
		return stats, fmt.Errorf("collection interrupted: %w", err)
	}

	seen := make(map[string]struct{})
	var items []entity.NormalizedItem
	for i := range tasks {
		stats.Warnings = append(stats.Warnings, warnings[i]...)
		for _, it := range batches[i] {
			key := it.DedupKey()
			if _, dup := seen[key]; dup {
				stats.Duplicated++
				continue
			}
			seen[key] = struct{}{}
			items = append(items, it)
		}
	}

	if s.Exporter != nil {
		if err := s.Exporter.Export(ctx, items); err != nil {
			stats.Duration = time.Since(start)
			return stats, fmt.Errorf("export items: %w", err)
		}
		stats.Exported = len(items)
	}

	if s.Snapshots != nil && s.Retention > 0 {
		n, err := s.Snapshots.DeleteOlderThan(ctx, s.now().Add(-s.Retention))
		if err != nil {
			logger.Warn("snapshot pruning failed", slog.Any("error", err))
		} else {
			stats.Pruned = n
		}
	}

	stats.Duration = time.Since(start)
	logger.Info("collection completed",
		slog.Int("sources", stats.Sources),
		slog.Int("feeds", stats.Feeds),
		slog.Int64("feeds_failed", stats.FeedsFailed),
		slog.Int64("snapshots", stats.Snapshots),
		slog.Int64("feed_items", stats.FeedItems),
		slog.Int("exported", stats.Exported),
		slog.Int("duplicated", stats.Duplicated),
		slog.Int64("pruned", stats.Pruned),
		slog.Duration("duration", stats.Duration),
	)

	return stats, nil
}

// collectFeed fetches, stores and parses one feed.
func (s *Service) collectFeed(ctx context.Context, task feedTask, stats *CollectStats) ([]entity.NormalizedItem, []string) {
	logger := logging.ForFeed(logging.FromContext(ctx), task.src.ID, task.url)
	fetchStart := time.Now()

	raw, err := s.Fetcher.Fetch(ctx, task.url)
	if err != nil {
		atomic.AddInt64(&stats.FeedsFailed, 1)
		result := metrics.FetchResultFetchFailed
		if errors.Is(err, aggregate.ErrFetchTimeout) {
			result = metrics.FetchResultTimeout
		}
		metrics.RecordFeedFetch(task.src.ID, result, time.Since(fetchStart), 0)
		logger.Warn("feed fetch failed", slog.Any("error", err))
		return nil, []string{fmt.Sprintf("%s: %v", task.src.Name, err)}
	}

	if s.Snapshots != nil {
		snap := &entity.Snapshot{
			FeedURL:   task.url,
			SourceID:  task.src.ID,
			Body:      raw,
			FetchedAt: s.now().UTC(),
		}
		if err := s.Snapshots.Save(ctx, snap); err != nil {
			logger.Warn("snapshot save failed", slog.Any("error", err))
		} else {
			atomic.AddInt64(&stats.Snapshots, 1)
			metrics.RecordSnapshotSaved()
		}
	}

	items, warns := s.Parser.Parse(raw, task.src)
	atomic.AddInt64(&stats.FeedItems, int64(len(items)))

	result := metrics.FetchResultSuccess
	if len(items) == 0 && len(warns) > 0 {
		result = metrics.FetchResultParseFailed
	}
	metrics.RecordFeedFetch(task.src.ID, result, time.Since(fetchStart), len(items))

	return items, warns
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
