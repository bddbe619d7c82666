// Package http provides the HTTP handlers and middleware of the news API:
// health endpoints, request logging, panic recovery, per-IP rate limiting
// and Prometheus request metrics. The /news handler lives in the news subpackage.
package http

import (
	"context"
	"net/http"
	"time"

	"news-aggregator/internal/handler/http/respond"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

// HealthResponse is the /health body.
type HealthResponse struct {
	Status             string                 `json:"status"`
	Timestamp          string                 `json:"timestamp"` // RFC 3339, UTC
	Version            string                 `json:"version"`
	SupportedCountries []string               `json:"supported_countries"`
	Checks             map[string]CheckStatus `json:"checks"`
}

type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

func (c CheckStatus) healthy() bool { return c.Status == statusHealthy }

// SourceCatalog is the view of the source registry the probes need.
type SourceCatalog interface {
	Len() int
	Countries() []string
}

// Pinger is satisfied by *sql.DB and by the store circuit breaker.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// breakerState is implemented by stores guarded by a circuit breaker.
type breakerState interface {
	IsOpen() bool
}

// HealthHandler reports whether the registry is loaded and, in snapshot
// mode, whether the snapshot store answers.
type HealthHandler struct {
	Sources SourceCatalog
	Store   Pinger // nil when feeds are fetched live
	Version string
}

// ServeHTTP answers 503 when any check fails.
// @Summary      ヘルスチェック
// @Description  ソースレジストリとスナップショットストアの状態を返します。
// @Tags         health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Failure      503  {object}  HealthResponse
// @Router       /health [get]
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]CheckStatus{"sources": checkSources(h.Sources)}
	if h.Store != nil {
		checks["store"] = checkStore(ctx, h.Store)
	}

	resp := HealthResponse{
		Status:             statusHealthy,
		Timestamp:          time.Now().UTC().Format(time.RFC3339),
		Version:            h.Version,
		SupportedCountries: []string{},
		Checks:             checks,
	}
	if h.Sources != nil {
		if countries := h.Sources.Countries(); countries != nil {
			resp.SupportedCountries = countries
		}
	}

	code := http.StatusOK
	for _, c := range checks {
		if !c.healthy() {
			resp.Status = statusUnhealthy
			code = http.StatusServiceUnavailable
			break
		}
	}
	respond.JSON(w, code, resp)
}

func checkSources(sources SourceCatalog) CheckStatus {
	switch {
	case sources == nil:
		return CheckStatus{Status: statusUnhealthy, Message: "not configured"}
	case sources.Len() == 0:
		return CheckStatus{Status: statusUnhealthy, Message: "no sources loaded"}
	}
	return CheckStatus{Status: statusHealthy, Details: map[string]any{"count": sources.Len()}}
}

func checkStore(ctx context.Context, store Pinger) CheckStatus {
	if b, ok := store.(breakerState); ok && b.IsOpen() {
		return CheckStatus{Status: statusUnhealthy, Message: "circuit open"}
	}
	start := time.Now()
	if err := store.PingContext(ctx); err != nil {
		return CheckStatus{Status: statusUnhealthy, Message: "ping failed"}
	}
	return CheckStatus{
		Status:  statusHealthy,
		Details: map[string]any{"latency_ms": time.Since(start).Milliseconds()},
	}
}

// ReadyHandler answers readiness probes: sources loaded and, when there is a
// store, a successful ping.
type ReadyHandler struct {
	Sources SourceCatalog
	Store   Pinger
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if !checkSources(h.Sources).healthy() {
		notReady(w, "sources not loaded")
		return
	}
	if h.Store != nil && !checkStore(ctx, h.Store).healthy() {
		notReady(w, "store unavailable")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func notReady(w http.ResponseWriter, reason string) {
	respond.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "reason": reason})
}

// LiveHandler answers liveness probes with 200 while the process serves HTTP.
type LiveHandler struct{}

func (LiveHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{"status": "alive"})
}
