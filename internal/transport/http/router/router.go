package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/config"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/metrics"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/handlers"
	authmw "github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/middleware"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/response"
)

type Handlers struct {
	Events   *handlers.EventsHandler
	Requests *handlers.RequestsHandler
	Stats    *handlers.StatsHandler
	Health   *handlers.HealthHandler
}

func New(h Handlers, auth *authmw.AuthMiddleware, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(authmw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(authmw.SecurityHeaders)
	r.Use(middleware.Recoverer)
	r.Use(authmw.AccessLog)
	r.Use(authmw.Metrics)

	r.Get("/healthz", h.Health.Healthz)
	r.Get("/readyz", h.Health.Readyz)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/listing/v1", func(r chi.Router) {
		if cfg.RLEnabled {
			r.Use(httprate.Limit(
				cfg.RLLimit,
				cfg.RLWindow,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					response.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", nil, response.RequestIDFromRequest(r))
				}),
			))
		}

		r.Get("/events", h.Events.ListPublic)
		r.Get("/events/{event_id}", h.Events.GetPublic)
		r.Get("/stats", h.Stats.Query)

		r.Group(func(r chi.Router) {
			r.Use(auth.Require)

			r.Route("/users/me", func(r chi.Router) {
				r.Post("/events", h.Events.Create)
				r.Get("/events", h.Events.ListMine)
				r.Get("/events/{event_id}", h.Events.GetMine)
				r.Patch("/events/{event_id}", h.Events.UpdateMine)
				r.Get("/events/{event_id}/requests", h.Requests.ListForEvent)
				r.Patch("/events/{event_id}/requests", h.Requests.UpdateStatuses)

				r.Get("/requests", h.Requests.ListMine)
				r.Post("/requests", h.Requests.Create)
				r.Patch("/requests/{request_id}/cancel", h.Requests.Cancel)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(authmw.RequireRole(authmw.RoleAdmin))
				r.Get("/events", h.Events.AdminSearch)
				r.Patch("/events/{event_id}", h.Events.AdminUpdate)
			})
		})
	})

	return r
}
