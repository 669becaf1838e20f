package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/event-ticketing/internal/model"
	"github.com/Shivanand-hulikatti/event-ticketing/internal/service"
)

// RegistrationHandler serves registration and availability endpoints.
type RegistrationHandler struct {
	svc    *service.RegistrationService
	logger *zap.Logger
}

// NewRegistrationHandler constructs a RegistrationHandler.
func NewRegistrationHandler(svc *service.RegistrationService, logger *zap.Logger) *RegistrationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationHandler{svc: svc, logger: logger}
}

// Register handles POST /registrations
// Performs a quota-safe registration for one ticket type.
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	reg, err := h.svc.RegisterSingle(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err, "ticket type not found", "failed to register")
		return
	}

	writeJSON(w, http.StatusCreated, reg)
}

// RegisterBatch handles POST /registrations/batch
// Either every entry is registered or none is.
func (h *RegistrationHandler) RegisterBatch(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterBatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	regs, err := h.svc.RegisterBatch(r.Context(), req.Registrations)
	if err != nil {
		writeServiceError(w, h.logger, err, "ticket type not found", "failed to register batch")
		return
	}

	writeJSON(w, http.StatusCreated, regs)
}

// ListRegistrations handles GET /events/{id}/registrations
func (h *RegistrationHandler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := h.svc.ListRegistrations(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, err, "event not found", "failed to list registrations")
		return
	}

	writeJSON(w, http.StatusOK, regs)
}

// Availability handles GET /ticket-types/{id}/availability
func (h *RegistrationHandler) Availability(w http.ResponseWriter, r *http.Request) {
	avail, err := h.svc.Availability(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, err, "ticket type not found", "failed to get availability")
		return
	}

	writeJSON(w, http.StatusOK, avail)
}
