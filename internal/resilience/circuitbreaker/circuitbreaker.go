// Package circuitbreaker guards feed hosts, article pages and the snapshot
// store with github.com/sony/gobreaker.
package circuitbreaker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"news-aggregator/internal/observability/metrics"
)

// Config describes when a breaker trips and how it recovers.
type Config struct {
	Name string

	MaxRequests uint32        // probes allowed while half-open
	Interval    time.Duration // closed-state counters reset after this period
	Timeout     time.Duration // time spent open before probing again

	// The breaker trips once at least MinRequests calls were seen in the
	// current interval and the failure ratio reaches FailureThreshold.
	FailureThreshold float64
	MinRequests      uint32
}

// FeedHostConfig is the breaker for one publisher host. Each host gets its
// own breaker so a failing publisher never trips others.
func FeedHostConfig(host string) Config {
	return Config{
		Name:             "feed-fetch:" + host,
		MaxRequests:      5,
		Interval:         time.Minute,
		Timeout:          2 * time.Minute,
		FailureThreshold: 0.7,
		MinRequests:      10,
	}
}

// ArticlePageConfig guards image backfill lookups. Backfill is optional, so
// the breaker stays open longer than the feed breakers.
func ArticlePageConfig() Config {
	return Config{
		Name:             "article-page",
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          5 * time.Minute,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// CircuitBreaker is a named gobreaker.CircuitBreaker.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	name    string
}

// New builds a breaker from cfg. State changes are logged and counted in
// the news_circuit_breaker_* metrics.
func New(cfg Config) *CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			if c.Requests < cfg.MinRequests {
				return false
			}
			return float64(c.TotalFailures)/float64(c.Requests) >= cfg.FailureThreshold
		},
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
			metrics.RecordBreakerTransition(name, from.String(), to.String())
		},
	}
	return &CircuitBreaker{
		breaker: gobreaker.NewCircuitBreaker(settings),
		name:    cfg.Name,
	}
}

// isSuccessful does not hold a caller's cancellation against the guarded
// dependency. An aggregation call that ends early cancels its pending
// fetches, and those hosts did nothing wrong.
func isSuccessful(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}

// Do runs fn through cb. While the breaker is open fn is not called and the
// error satisfies IsOpenStateError.
func Do[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	res, err := cb.breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	v, _ := res.(T)
	return v, nil
}

func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

func (cb *CircuitBreaker) Name() string {
	return cb.name
}

func (cb *CircuitBreaker) IsOpen() bool {
	return cb.breaker.State() == gobreaker.StateOpen
}

// IsOpenStateError reports whether err means the breaker rejected the call,
// either because it is open or because the half-open probe quota is used up.
func IsOpenStateError(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
