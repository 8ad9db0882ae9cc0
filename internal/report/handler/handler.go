// Package handler exposes the operator reporting endpoints.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bmmhub/internal/report"
	"bmmhub/pkg/platform/httputil"
)

type Handler struct {
	service *report.Service
	eventID string
	logger  *slog.Logger
}

func New(svc *report.Service, eventID string, logger *slog.Logger) *Handler {
	return &Handler{service: svc, eventID: eventID, logger: logger}
}

// Routes returns the reporting router, mounted under /admin/reports.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/stages", h.stages)
	r.Get("/venues", h.venues)
	return r
}

func (h *Handler) stages(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.Stages(r.Context(), h.eventID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "stage report failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, overview)
}

func (h *Handler) venues(w http.ResponseWriter, r *http.Request) {
	usage, err := h.service.Venues(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "venue report failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, usage)
}
