package main

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"news-aggregator/internal/domain/entity"
	"news-aggregator/internal/usecase/aggregate"
)

// Feed statuses.
const (
	StatusOK         = "OK"
	StatusEmpty      = "EMPTY"
	StatusTimeout    = "TIMEOUT"
	StatusFetchError = "FETCH_ERROR"
	StatusParseError = "PARSE_ERROR"
)

// FeedResult is the outcome of checking one feed endpoint.
type FeedResult struct {
	SourceID   string   `json:"source_id"`
	Source     string   `json:"source"`
	Country    string   `json:"country"`
	URL        string   `json:"url"`
	Status     string   `json:"status"`
	Items      int      `json:"items"`
	LatestDate string   `json:"latest_date,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
	Error      string   `json:"error,omitempty"`
	DurationMS int64    `json:"duration_ms"`
}

// Failed reports whether the feed is unusable.
func (r FeedResult) Failed() bool {
	return r.Status != StatusOK
}

// Checker fetches and parses every feed of a source list.
type Checker struct {
	Fetcher     aggregate.FeedFetcher
	Parser      aggregate.FeedParser
	Parallelism int
}

// CheckAll returns one result per feed URL, in source and feed order.
func (c *Checker) CheckAll(ctx context.Context, srcs []entity.SourceDescriptor) []FeedResult {
	type task struct {
		src entity.SourceDescriptor
		url string
	}
	var tasks []task
	for _, s := range srcs {
		for _, u := range s.Feeds {
			tasks = append(tasks, task{src: s, url: u})
		}
	}

	results := make([]FeedResult, len(tasks))
	g := new(errgroup.Group)
	g.SetLimit(max(c.Parallelism, 1))
	for i, t := range tasks {
		g.Go(func() error {
			results[i] = c.check(ctx, t.src, t.url)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (c *Checker) check(ctx context.Context, src entity.SourceDescriptor, feedURL string) FeedResult {
	res := FeedResult{
		SourceID: src.ID,
		Source:   src.Name,
		Country:  src.Country,
		URL:      feedURL,
	}
	start := time.Now()

	body, err := c.Fetcher.Fetch(ctx, feedURL)
	if err != nil {
		res.Status = StatusFetchError
		if errors.Is(err, aggregate.ErrFetchTimeout) {
			res.Status = StatusTimeout
		}
		res.Error = err.Error()
		res.DurationMS = time.Since(start).Milliseconds()
		return res
	}

	one := src
	one.Feeds = []string{feedURL}
	items, warnings := c.Parser.Parse(body, one)
	res.Items = len(items)
	res.Warnings = warnings
	res.DurationMS = time.Since(start).Milliseconds()

	switch {
	case len(items) == 0 && len(warnings) > 0:
		res.Status = StatusParseError
	case len(items) == 0:
		res.Status = StatusEmpty
	default:
		res.Status = StatusOK
		if latest := latestDate(items); !latest.IsZero() {
			res.LatestDate = latest.UTC().Format(time.RFC3339)
		}
	}
	return res
}

func latestDate(items []entity.NormalizedItem) time.Time {
	var latest time.Time
	for _, it := range items {
		if it.HasDate() && it.PublishedAt.After(latest) {
			latest = *it.PublishedAt
		}
	}
	return latest
}

func failedCount(results []FeedResult) int {
	n := 0
	for _, r := range results {
		if r.Failed() {
			n++
		}
	}
	return n
}
