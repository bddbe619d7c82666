package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthServer serves the collector's probe and scrape endpoints:
//
//	/health           liveness, always 200
//	/health/ready     200 between SetReady(true) and SetReady(false), else 503
//	/health/last-run  RunStatus of the latest collection, 404 before the first
//	/metrics          Prometheus default registry
type HealthServer struct {
	addr    string
	logger  *slog.Logger
	ready   atomic.Bool
	lastRun atomic.Pointer[RunStatus]
}

// RunStatus summarises one collection run.
type RunStatus struct {
	RunID      string    `json:"run_id"`
	FinishedAt time.Time `json:"finished_at"`
	Duration   string    `json:"duration"`
	Feeds      int64     `json:"feeds"`
	Failed     int64     `json:"feeds_failed"`
	Exported   int       `json:"exported"`
	Error      string    `json:"error,omitempty"`
}

type probeBody struct {
	Status string `json:"status"`
}

// NewHealthServer returns a server for addr that reports not ready until
// SetReady(true).
func NewHealthServer(addr string, logger *slog.Logger) *HealthServer {
	return &HealthServer{addr: addr, logger: logger}
}

func (h *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		h.writeJSON(w, http.StatusOK, probeBody{Status: "ok"})
	})
	mux.HandleFunc("GET /health/ready", func(w http.ResponseWriter, r *http.Request) {
		if !h.ready.Load() {
			h.writeJSON(w, http.StatusServiceUnavailable, probeBody{Status: "not ready"})
			return
		}
		h.writeJSON(w, http.StatusOK, probeBody{Status: "ok"})
	})
	mux.HandleFunc("GET /health/last-run", func(w http.ResponseWriter, r *http.Request) {
		run := h.lastRun.Load()
		if run == nil {
			h.writeJSON(w, http.StatusNotFound, probeBody{Status: "no runs yet"})
			return
		}
		h.writeJSON(w, http.StatusOK, run)
	})
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

// Start serves Handler until ctx ends, then shuts down within five seconds.
// A graceful stop returns http.ErrServerClosed.
func (h *HealthServer) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              h.addr,
		Handler:           h.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      5 * time.Second,
		IdleTimeout:       time.Minute,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			h.logger.Error("health server shutdown failed", slog.Any("error", err))
		}
	}()

	h.logger.Info("health server listening", slog.String("addr", h.addr))
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		<-stopped
		h.logger.Info("health server stopped")
		return err
	}
	h.logger.Error("health server failed", slog.Any("error", err))
	return err
}

func (h *HealthServer) SetReady(ready bool) {
	if h.ready.Swap(ready) != ready {
		h.logger.Info("collector readiness changed", slog.Bool("ready", ready))
	}
}

// RecordRun publishes status on /health/last-run.
func (h *HealthServer) RecordRun(status RunStatus) {
	h.lastRun.Store(&status)
}

func (h *HealthServer) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode health response", slog.Any("error", err))
	}
}
