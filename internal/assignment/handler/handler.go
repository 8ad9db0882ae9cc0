// Package handler exposes the operator assignment endpoints.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"bmmhub/internal/assignment"
	"bmmhub/pkg/domain"
	dErrors "bmmhub/pkg/domain-errors"
	"bmmhub/pkg/platform/httputil"
)

type Handler struct {
	engine  *assignment.Engine
	eventID string
	logger  *slog.Logger
}

func New(engine *assignment.Engine, eventID string, logger *slog.Logger) *Handler {
	return &Handler{engine: engine, eventID: eventID, logger: logger}
}

// Routes returns the assignment router, mounted under /admin/assignments.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/auto", h.autoAssign)
	r.Post("/manual", h.manualAssign)
	r.Post("/bulk", h.bulkAssign)
	return r
}

type autoAssignRequest struct {
	Region string `json:"region"`
}

func (h *Handler) autoAssign(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[autoAssignRequest](w, r, h.logger)
	if !ok {
		return
	}

	var region *domain.Region
	if req.Region != "" {
		parsed, err := domain.ParseRegion(req.Region)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		region = &parsed
	}

	result, err := h.engine.AutoAssign(r.Context(), h.eventID, region)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

type manualAssignRequest struct {
	RecordID  string `json:"record_id" validate:"required"`
	VenueName string `json:"venue_name" validate:"required"`
}

type manualAssignResponse struct {
	RecordID    string `json:"record_id"`
	VenueName   string `json:"venue_name"`
	CrossRegion bool   `json:"cross_region"`
	Stage       string `json:"stage"`
}

func (h *Handler) manualAssign(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[manualAssignRequest](w, r, h.logger)
	if !ok {
		return
	}
	recordID, err := uuid.Parse(req.RecordID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "record_id must be a UUID"))
		return
	}

	record, err := h.engine.ManualAssign(r.Context(), recordID, req.VenueName)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, manualAssignResponse{
		RecordID:    record.ID.String(),
		VenueName:   record.Assignment.VenueName,
		CrossRegion: record.Assignment.CrossRegion,
		Stage:       record.Stage.String(),
	})
}

type bulkAssignRequest struct {
	Entries []assignment.BulkEntry `json:"entries" validate:"required,min=1,dive"`
}

func (h *Handler) bulkAssign(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[bulkAssignRequest](w, r, h.logger)
	if !ok {
		return
	}

	result, err := h.engine.BulkAssign(r.Context(), h.eventID, req.Entries)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}
