// Package handler exposes the member-facing registration endpoints and the
// administrative record overrides. Handlers stay thin: decode, call the
// service, translate the outcome.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"bmmhub/internal/member/service"
	"bmmhub/pkg/domain"
	dErrors "bmmhub/pkg/domain-errors"
	"bmmhub/pkg/platform/httputil"
)

// accessTokenHeader carries the member's opaque access token. The token is
// the sole member credential; there are no member accounts.
const accessTokenHeader = "X-Access-Token"

type Handler struct {
	service *service.Service
	logger  *slog.Logger
}

func New(svc *service.Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Routes returns the member-facing router, mounted under /bmm.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.status)
	r.Post("/preferences", h.submitPreferences)
	r.Post("/attendance", h.confirmAttendance)
	r.Post("/special-vote", h.applySpecialVote)
	return r
}

// AdminRoutes registers the administrative record operations on an already
// authenticated router.
func (h *Handler) AdminRoutes(r chi.Router) {
	r.Post("/records/{id}/stage", h.forceStage)
	r.Post("/special-vote/{id}/decision", h.decideSpecialVote)
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.Get(r.Context(), r.Header.Get(accessTokenHeader))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(record))
}

type preferencesRequest struct {
	Venues      []string `json:"venues" validate:"required,min=1,dive,required"`
	TimeBands   []string `json:"time_bands"`
	Workplace   string   `json:"workplace"`
	Comments    string   `json:"comments"`
	Willingness string   `json:"willingness"`
}

func (h *Handler) submitPreferences(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[preferencesRequest](w, r, h.logger)
	if !ok {
		return
	}
	willingness, err := domain.ParseWillingness(req.Willingness)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	record, err := h.service.SubmitPreferences(r.Context(), r.Header.Get(accessTokenHeader), service.PreferencesInput{
		Venues:      req.Venues,
		TimeBands:   req.TimeBands,
		Workplace:   req.Workplace,
		Comments:    req.Comments,
		Willingness: willingness,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(record))
}

type attendanceRequest struct {
	IsAttending          *bool  `json:"is_attending" validate:"required"`
	AbsenceReason        string `json:"absence_reason"`
	SpecialVoteRequested bool   `json:"special_vote_requested"`
}

func (h *Handler) confirmAttendance(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[attendanceRequest](w, r, h.logger)
	if !ok {
		return
	}

	record, err := h.service.ConfirmAttendance(r.Context(), r.Header.Get(accessTokenHeader), service.ConfirmInput{
		IsAttending:          *req.IsAttending,
		AbsenceReason:        req.AbsenceReason,
		SpecialVoteRequested: req.SpecialVoteRequested,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(record))
}

type specialVoteRequest struct {
	Reason   string `json:"reason" validate:"required"`
	Evidence string `json:"evidence"`
}

func (h *Handler) applySpecialVote(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[specialVoteRequest](w, r, h.logger)
	if !ok {
		return
	}

	record, err := h.service.ApplySpecialVote(r.Context(), r.Header.Get(accessTokenHeader), service.SpecialVoteInput{
		Reason:   req.Reason,
		Evidence: req.Evidence,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(record))
}

type forceStageRequest struct {
	Stage string `json:"stage" validate:"required"`
}

func (h *Handler) forceStage(w http.ResponseWriter, r *http.Request) {
	recordID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "record id must be a UUID"))
		return
	}
	req, ok := httputil.DecodeAndPrepare[forceStageRequest](w, r, h.logger)
	if !ok {
		return
	}
	stage, err := domain.ParseStage(req.Stage)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	record, err := h.service.ForceStage(r.Context(), recordID, stage)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(record))
}

type specialVoteDecisionRequest struct {
	Approve *bool `json:"approve" validate:"required"`
}

func (h *Handler) decideSpecialVote(w http.ResponseWriter, r *http.Request) {
	recordID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "record id must be a UUID"))
		return
	}
	req, ok := httputil.DecodeAndPrepare[specialVoteDecisionRequest](w, r, h.logger)
	if !ok {
		return
	}

	record, err := h.service.DecideSpecialVote(r.Context(), recordID, *req.Approve)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(record))
}
