/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to
  handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/dashboard              Day overview + progress
  /api/stock-days/*           Day registry
  /api/opening-stock          Step 1 input
  /api/iocl-movements/*       Step 2
  /api/delivery-transactions/* Step 3
  /api/closing-stock/*        Step 4
  /api/cash/*                 Steps 5-7 inputs
  /api/cylinder-types, /api/delivery-persons  Reference data
  /api/reports/*              Report key resolution
  /api/scenarios/*            Demo scenarios (dev only)
  /api/admin/*                Day closing

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

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

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", h.Dashboard)

		// Day registry
		r.Route("/stock-days", func(r chi.Router) {
			r.Post("/", h.OpenDay)
			r.Get("/next-date", h.NextDate)
		})

		// Daily workflow
		r.Post("/opening-stock", h.SetOpeningStock)

		r.Route("/iocl-movements", func(r chi.Router) {
			r.Get("/", h.GetIOCLMovements)
			r.Post("/", h.RecordIOCLMovements)
			r.Post("/no-movement", h.SetIOCLNoMovement)
			r.Post("/reset", h.ResetIOCLMovements)
		})

		r.Route("/delivery-transactions", func(r chi.Router) {
			r.Get("/", h.GetDeliveryTransactions)
			r.Post("/", h.RecordDeliveryTransactions)
			r.Post("/no-movement", h.SetDeliveryNoMovement)
			r.Post("/reset", h.ResetDeliveryTransactions)
		})

		r.Route("/closing-stock", func(r chi.Router) {
			r.Get("/", h.GetClosingStock)
			r.Post("/finalize", h.Finalize)
		})

		// Cash settlement inputs
		r.Route("/cash", func(r chi.Router) {
			r.Post("/expected", h.RecordExpectedCash)
			r.Post("/deposits", h.RecordCashDeposit)
			r.Post("/balances", h.RecordCashBalance)
		})

		// Reference data
		r.Route("/cylinder-types", func(r chi.Router) {
			r.Get("/", h.ListCylinderTypes)
			r.Post("/", h.CreateCylinderType)
		})
		r.Route("/delivery-persons", func(r chi.Router) {
			r.Get("/", h.ListDeliveryPersons)
			r.Post("/", h.CreateDeliveryPerson)
		})

		// Reports
		r.Get("/reports/resolve", h.ResolveReport)

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/close-day", h.CloseActiveDay)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}
