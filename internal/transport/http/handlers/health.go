package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/response"
)

// Pinger is satisfied by *sql.DB and the redis cache.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a plain ping function such as the redis cache's Ping.
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

type HealthHandler struct {
	deps map[string]Pinger
}

// NewHealthHandler takes the dependencies checked by Readyz. Nil pingers are skipped.
func NewHealthHandler(deps map[string]Pinger) *HealthHandler {
	clean := make(map[string]Pinger, len(deps))
	for name, p := range deps {
		if p != nil {
			clean[name] = p
		}
	}
	return &HealthHandler{deps: clean}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	response.Data(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string, len(h.deps))
	failed := map[string]string{}
	for name, p := range h.deps {
		if err := p.PingContext(ctx); err != nil {
			checks[name] = "down"
			failed[name] = err.Error()
			continue
		}
		checks[name] = "up"
	}
	if len(failed) > 0 {
		response.Fail(w, http.StatusServiceUnavailable, "not_ready", "dependency unavailable", failed, response.RequestIDFromRequest(r))
		return
	}
	response.Data(w, http.StatusOK, map[string]any{"status": "ready", "checks": checks})
}
