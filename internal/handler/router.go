package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewRouter builds the HTTP API with its global middleware stack.
func NewRouter(events *EventHandler, regs *RegistrationHandler, logger *zap.Logger, corsOrigins []string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(Logger(logger))
	r.Use(CORS(corsOrigins))

	r.Get("/health", HealthCheck)

	r.Route("/events", func(r chi.Router) {
		r.Post("/", events.CreateEvent)
		r.Get("/", events.ListEvents)
		r.Get("/{id}", events.GetEvent)
		r.Post("/{id}/ticket-types", events.AddTicketType)
		r.Get("/{id}/registrations", regs.ListRegistrations)
	})

	r.Route("/registrations", func(r chi.Router) {
		r.Post("/", regs.Register)
		r.Post("/batch", regs.RegisterBatch)
	})

	r.Get("/ticket-types/{id}/availability", regs.Availability)

	return r
}
