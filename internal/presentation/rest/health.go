package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger reports dependency readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes over HTTP.
type HealthHandler struct {
	service string
	version string
	started time.Time
	db      Pinger
	logger  *slog.Logger
	now     func() time.Time
}

// NewHealthHandler creates a health check HTTP handler.
func NewHealthHandler(service, version string, db Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		service: service,
		version: version,
		started: time.Now(),
		db:      db,
		logger:  logger,
		now:     time.Now,
	}
}

// RegisterRoutes attaches health-check routes to the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.liveness)
	mux.HandleFunc("GET /readyz", h.readiness)
}

type livenessResponse struct {
	Status        string    `json:"status"`
	Service       string    `json:"service"`
	Version       string    `json:"version"`
	Timestamp     time.Time `json:"timestamp"`
	UptimeSeconds int64     `json:"uptime_seconds"`
}

func (h *HealthHandler) liveness(w http.ResponseWriter, _ *http.Request) {
	now := h.now()
	writeJSON(w, http.StatusOK, livenessResponse{
		Status:        "ok",
		Service:       h.service,
		Version:       h.version,
		Timestamp:     now.UTC(),
		UptimeSeconds: int64(now.Sub(h.started).Seconds()),
	})
}

func (h *HealthHandler) readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.WarnContext(ctx, "readiness check failed", "dependency", "postgres", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "unavailable",
			"database": "unreachable",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ready",
		"database": "ok",
	})
}
