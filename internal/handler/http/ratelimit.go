package http

import (
	"errors"
	"math"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"news-aggregator/internal/handler/http/respond"
	"news-aggregator/internal/observability/metrics"
)

// RateLimiter admits at most limit requests per client IP in any sliding
// window of the given length. Clients idle for two windows are evicted.
type RateLimiter struct {
	clients *cache.Cache // ip -> *clientWindow
	limit   int
	window  time.Duration

	now func() time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		clients: cache.New(2*window, window),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// Limit answers 429 with Retry-After once a client is over its budget.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := extractIP(r)
		cw := rl.client(ip)

		wait, ok := cw.admit(rl.now(), rl.limit, rl.window)
		if !ok {
			metrics.RecordRateLimited()
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(wait)))
			respond.SafeError(w, http.StatusTooManyRequests, errors.New("rate limit exceeded"))
			return
		}
		rl.clients.SetDefault(ip, cw)

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) client(ip string) *clientWindow {
	if v, found := rl.clients.Get(ip); found {
		return v.(*clientWindow)
	}
	cw := &clientWindow{hits: make([]time.Time, 0, rl.limit)}
	if err := rl.clients.Add(ip, cw, cache.DefaultExpiration); err != nil {
		// Another request from ip got there first.
		if v, found := rl.clients.Get(ip); found {
			return v.(*clientWindow)
		}
	}
	return cw
}

// TrackedClients is the number of client IPs with a live window.
func (rl *RateLimiter) TrackedClients() int {
	return rl.clients.ItemCount()
}

// clientWindow holds one client's request times inside the window, oldest
// first.
type clientWindow struct {
	mu   sync.Mutex
	hits []time.Time
}

// admit records a request at now if the window has room. Otherwise it
// returns how long until the oldest request leaves the window.
func (c *clientWindow) admit(now time.Time, limit int, window time.Duration) (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := now.Add(-window)
	expired := 0
	for expired < len(c.hits) && !c.hits[expired].After(cutoff) {
		expired++
	}
	c.hits = append(c.hits[:0], c.hits[expired:]...)

	if len(c.hits) >= limit {
		return c.hits[0].Add(window).Sub(now), false
	}
	c.hits = append(c.hits, now)
	return 0, true
}

func retryAfterSeconds(d time.Duration) int {
	return max(1, int(math.Ceil(d.Seconds())))
}

// extractIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// connection's peer address.
func extractIP(r *http.Request) string {
	if ip := parseFirstIP(r.Header.Get("X-Forwarded-For")); ip != "" {
		return ip
	}
	if addr, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return addr.String()
	}
	if ap, err := netip.ParseAddrPort(r.RemoteAddr); err == nil {
		return ap.Addr().String()
	}
	return r.RemoteAddr
}

func parseFirstIP(list string) string {
	first, _, _ := strings.Cut(list, ",")
	addr, err := netip.ParseAddr(strings.TrimSpace(first))
	if err != nil {
		return ""
	}
	return addr.String()
}
