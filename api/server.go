/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. CORS:       Cross-origin requests for frontend
  3. httplog:    Structured request logging (ECS schema)
  4. Recoverer:  Panic recovery (500 instead of crash)
  5. Heartbeat:  GET /health liveness probe

ROUTE GROUPS:
  /api/workers/*        Workers, schedules, records, calculations
  /api/holidays/*       Holiday calendar
  /api/assistant/*      Text tools and sessions
  /api/scenarios/*      Demo scenarios

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// LogSchema is the request log schema. Loggers passed to NewRouter should
// use LogSchema.ReplaceAttr so application and request logs share keys.
var LogSchema = httplog.SchemaECS.Concise(false)

// NewRouter creates a new router with all routes configured.
// An empty origins list allows any origin.
func NewRouter(h *Handler, origins []string, logger *slog.Logger) *chi.Mux {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	if logger == nil {
		logger = h.Logger
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/health"))

	r.Route("/api", func(r chi.Router) {
		r.Route("/workers", func(r chi.Router) {
			r.Get("/", h.ListWorkers)
			r.Post("/", h.CreateWorker)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetWorker)
				r.Put("/", h.UpdateWorker)
				r.Delete("/", h.DeleteWorker)

				r.Get("/weekly-schedules", h.ListWeeklySchedules)
				r.Put("/weekly-schedules", h.PutWeeklySchedule)
				r.Delete("/weekly-schedules/{weekday}", h.DeleteWeeklySchedule)

				r.Get("/monthly-schedules", h.ListMonthlySchedules)
				r.Put("/monthly-schedules", h.PutMonthlySchedule)
				r.Delete("/monthly-schedules/{year}/{month}/{weekday}", h.DeleteMonthlySchedule)

				r.Get("/records", h.ListWorkRecords)
				r.Post("/records", h.CreateWorkRecord)
				r.Put("/records", h.PutWorkRecord)
				r.Delete("/records/{date}", h.DeleteWorkRecord)

				// Calculations
				r.Get("/schedule", h.GetSchedule)
				r.Get("/weekly-holiday-pay", h.GetWeeklyHolidayPay)
				r.Get("/payroll", h.GetPayroll)
				r.Get("/holiday-pay", h.GetMonthlyHolidayPay)
				r.Get("/severance", h.GetSeverance)
				r.Get("/annual-leave", h.GetAnnualLeave)
				r.Get("/diagnosis", h.GetDiagnosis)
				r.Get("/results", h.ListResults)
			})
		})

		// Holiday routes
		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", h.ListHolidays)
			r.Post("/", h.CreateHoliday)
			r.Post("/sync", h.SyncHolidays)
			r.Delete("/{id}", h.DeleteHoliday)
		})

		// Assistant routes
		r.Route("/assistant", func(r chi.Router) {
			r.Get("/tools", h.ListTools)
			r.Post("/tools/{tool}", h.RunTool)
			r.Get("/sessions/{id}", h.GetSession)
			r.Delete("/sessions/{id}", h.DeleteSession)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}
