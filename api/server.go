/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. Metrics:    Prometheus request counters and latency
  5. CORS:       Cross-origin requests for a browser client

ROUTE GROUPS:
  /api/clock/*          Playtime and the tick driver
  /api/fleet/*          Hangar
  /api/contracts/*      Offers, drafts, acceptance
  /api/schedules/*      Active schedules
  /api/events/*         Pending flights
  /api/ledger, /api/reputation, /api/missions
  /api/scenarios/*      Demo scenarios
  /metrics              Prometheus scrape endpoint

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	if h.Game.Metrics != nil {
		r.Use(h.Game.Metrics.Middleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	if h.Game.Metrics != nil {
		r.Handle("/metrics", h.Game.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/clock", func(r chi.Router) {
			r.Get("/", h.GetClock)
			r.Post("/advance", h.AdvanceClock)
			r.Post("/pause", h.PauseClock)
			r.Post("/resume", h.ResumeClock)
		})

		r.Route("/fleet", func(r chi.Router) {
			r.Get("/", h.ListFleet)
			r.Post("/", h.CreateAsset)
			r.Delete("/{id}", h.SellAsset)
			r.Get("/{id}/usage", h.GetUsage)
		})

		r.Route("/contracts", func(r chi.Router) {
			r.Get("/", h.ListContracts)
			r.Post("/", h.CreateContract)
			r.Post("/{id}/draft", h.DraftContract)
			r.Post("/{id}/accept", h.AcceptContract)
		})

		r.Route("/schedules", func(r chi.Router) {
			r.Get("/", h.ListSchedules)
			r.Get("/{id}/status", h.GetScheduleStatus)
			r.Delete("/{id}", h.DetachSchedule)
		})

		r.Get("/events/pending", h.ListPendingEvents)
		r.Get("/ledger", h.GetStatement)
		r.Get("/ledger/recent", h.RecentTransactions)
		r.Get("/reputation", h.GetReputation)

		r.Route("/missions", func(r chi.Router) {
			r.Get("/", h.ListMissions)
			r.Post("/", h.CreateMission)
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetGame)
		})
	})

	return r
}
