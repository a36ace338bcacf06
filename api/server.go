/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /calendar, /pto/approve   Scheduling operations
  /api/departments/*        Repository reads
  /api/pto                  PTO ledger
  /api/scenarios/*          Demo scenarios

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

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

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// Scheduling operations
	r.Post("/calendar", h.Calendar)
	r.Post("/pto/approve", h.ApprovePTO)

	// Repository surface
	r.Route("/api", func(r chi.Router) {
		r.Route("/departments", func(r chi.Router) {
			r.Get("/", h.ListDepartments)
			r.Get("/{department}/people", h.ListPeople)
			r.Get("/{department}/tasks", h.ListTasks)
		})

		r.Route("/pto", func(r chi.Router) {
			r.Get("/", h.GetPTO)
			r.Post("/", h.WritePTO)
			r.Delete("/", h.DeletePTO)
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Post("/load", h.LoadScenario)
		})
	})

	return r
}
