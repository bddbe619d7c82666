// Package scraper provides implementations for fetching and parsing RSS/Atom feeds.
// It uses the gofeed library to parse feed content and protects publishers
// with per-host rate limits and circuit breakers.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"news-aggregator/internal/resilience/circuitbreaker"
	"news-aggregator/internal/usecase/aggregate"
)

const (
	// DefaultUserAgent identifies the aggregator to publishers.
	DefaultUserAgent = "Mozilla/5.0 (NewsScraper; +https://example.com)"

	// DefaultMaxBodySize caps the bytes read from one feed response.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// DefaultFetchTimeout bounds a single feed request.
	DefaultFetchTimeout = 10 * time.Second

	maxRedirects = 10

	acceptHeader = "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.9, */*;q=0.8"
)

// FetcherConfig holds configuration for HTTPFetcher.
type FetcherConfig struct {
	// Timeout bounds one request, including reading the body.
	Timeout time.Duration
	// UserAgent is sent with every request.
	UserAgent string
	// MaxBodySize is the largest accepted body in bytes. Larger bodies fail the fetch.
	MaxBodySize int64
	// HostRPS limits requests per second to one host. Zero disables limiting.
	HostRPS float64
	// HostBurst is the limiter burst size. Values below 1 are treated as 1.
	HostBurst int
	// BreakerEnabled guards each host with its own circuit breaker.
	BreakerEnabled bool
}

// DefaultFetcherConfig returns production defaults.
func DefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		Timeout:        DefaultFetchTimeout,
		UserAgent:      DefaultUserAgent,
		MaxBodySize:    DefaultMaxBodySize,
		BreakerEnabled: true,
	}
}

// HTTPFetcher implements aggregate.FeedFetcher over HTTP.
// Each call makes exactly one attempt; failures are never retried.
type HTTPFetcher struct {
	client *http.Client
	cfg    FetcherConfig

	mu       sync.Mutex
	breakers map[string]*circuitbreaker.CircuitBreaker
	limiters map[string]*rate.Limiter
}

// NewHTTPClient returns an HTTP client suited for feed fetching.
// It follows up to ten redirects.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
}

// NewHTTPFetcher creates a new HTTPFetcher.
// A nil client is replaced by NewHTTPClient(cfg.Timeout).
func NewHTTPFetcher(client *http.Client, cfg FetcherConfig) *HTTPFetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultFetchTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = DefaultMaxBodySize
	}
	if client == nil {
		client = NewHTTPClient(cfg.Timeout)
	}
	return &HTTPFetcher{
		client:   client,
		cfg:      cfg,
		breakers: make(map[string]*circuitbreaker.CircuitBreaker),
		limiters: make(map[string]*rate.Limiter),
	}
}

// Fetch retrieves the raw body of feedURL.
// Errors wrap aggregate.ErrFetchTimeout when the deadline passes and
// aggregate.ErrFetchFailed otherwise.
func (f *HTTPFetcher) Fetch(ctx context.Context, feedURL string) ([]byte, error) {
	u, err := url.Parse(feedURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %s: invalid feed URL", aggregate.ErrFetchFailed, feedURL)
	}
	host := u.Hostname()

	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	if lim := f.limiter(host); lim != nil {
		if err := lim.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %s: waiting for host rate limit", aggregate.ErrFetchTimeout, feedURL)
		}
	}

	if !f.cfg.BreakerEnabled {
		return f.doFetch(ctx, feedURL)
	}

	cb := f.breaker(host)
	body, err := circuitbreaker.Do(cb, func() ([]byte, error) {
		return f.doFetch(ctx, feedURL)
	})
	if err != nil {
		if circuitbreaker.IsOpenStateError(err) {
			slog.Warn("feed fetch circuit breaker open, request rejected",
				slog.String("service", "feed-fetch"),
				slog.String("url", feedURL),
				slog.String("state", cb.State().String()))
			return nil, fmt.Errorf("%w: %s: circuit open for %s", aggregate.ErrFetchFailed, feedURL, host)
		}
		return nil, err
	}
	return body, nil
}

// doFetch performs one request without rate limiting or circuit breaker.
func (f *HTTPFetcher) doFetch(ctx context.Context, feedURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: create request: %v", aggregate.ErrFetchFailed, feedURL, err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(ctx, feedURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: status %d", aggregate.ErrFetchFailed, feedURL, resp.StatusCode)
	}

	// Read one byte past the limit to detect oversized bodies.
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBodySize+1))
	if err != nil {
		return nil, classifyTransportError(ctx, feedURL, err)
	}
	if int64(len(body)) > f.cfg.MaxBodySize {
		return nil, fmt.Errorf("%w: %s: body exceeds %d bytes", aggregate.ErrFetchFailed, feedURL, f.cfg.MaxBodySize)
	}
	return body, nil
}

// classifyTransportError maps client errors to the fetch taxonomy.
func classifyTransportError(ctx context.Context, feedURL string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", aggregate.ErrFetchTimeout, feedURL)
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("%w: %s: %w", aggregate.ErrFetchFailed, feedURL, context.Canceled)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %s", aggregate.ErrFetchTimeout, feedURL)
	}
	return fmt.Errorf("%w: %s: %s", aggregate.ErrFetchFailed, feedURL, shortCause(err))
}

// shortCause strips the URL wrapper net/http adds to client errors.
func shortCause(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "dns lookup failed"
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op + " failed"
	}
	return err.Error()
}

func (f *HTTPFetcher) breaker(host string) *circuitbreaker.CircuitBreaker {
	f.mu.Lock()
	defer f.mu.Unlock()

	cb, ok := f.breakers[host]
	if !ok {
		cb = circuitbreaker.New(circuitbreaker.FeedHostConfig(host))
		f.breakers[host] = cb
	}
	return cb
}

func (f *HTTPFetcher) limiter(host string) *rate.Limiter {
	if f.cfg.HostRPS <= 0 {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	lim, ok := f.limiters[host]
	if !ok {
		burst := f.cfg.HostBurst
		if burst < 1 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(f.cfg.HostRPS), burst)
		f.limiters[host] = lim
	}
	return lim
}
