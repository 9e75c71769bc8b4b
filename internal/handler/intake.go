package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vetport/ahc-service/internal/intake"
	"github.com/vetport/ahc-service/internal/model"
	"github.com/vetport/ahc-service/internal/storage"
)

// IntakeSubmissionStore is the submission access the public intake
// endpoints need.
type IntakeSubmissionStore interface {
	GetByToken(ctx context.Context, token string) (*model.Submission, error)
	UpdateData(ctx context.Context, token string, data map[string]any, d intake.Denorm) error
	Submit(ctx context.Context, token string, data map[string]any, d intake.Denorm, at time.Time) error
	SelectTemplate(ctx context.Context, id, templateID uuid.UUID) error
}

type IntakeTemplateStore interface {
	FirstActiveByCountry(ctx context.Context, country string) (*model.DocumentTemplate, error)
}

type IntakeAuditStore interface {
	Append(ctx context.Context, entry *model.AuditEntry) error
}

// IntakeHandler serves the owner-facing wizard endpoints. Access is
// scoped by the unguessable public token, no authentication.
type IntakeHandler struct {
	subs      IntakeSubmissionStore
	templates IntakeTemplateStore
	audit     IntakeAuditStore
	log       *slog.Logger
	now       func() time.Time
}

func NewIntakeHandler(subs IntakeSubmissionStore, templates IntakeTemplateStore, audit IntakeAuditStore, log *slog.Logger) *IntakeHandler {
	return &IntakeHandler{subs: subs, templates: templates, audit: audit, log: log, now: time.Now}
}

// Get returns the owner view of a submission: enough to resume the
// wizard, nothing staff-internal.
func (h *IntakeHandler) Get(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	sub, err := h.subs.GetByToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Submission not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":                 sub.ID,
		"status":             sub.Status,
		"data_json":          sub.Data,
		"correction_message": sub.CorrectionMessage,
		"correction_fields":  sub.CorrectionFields,
	})
}

// Save autosaves wizard progress and refreshes the denormalized
// dashboard columns.
func (h *IntakeHandler) Save(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	var req struct {
		Data map[string]any `json:"data"`
	}
	if err := readJSON(r, &req); err != nil || req.Data == nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.subs.UpdateData(r.Context(), token, req.Data, intake.Denormalize(req.Data)); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Submission not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// Submit performs the final wizard submit: persists the payload, moves
// the submission to Submitted, records the audit row, and auto-selects
// the first active template matching the first country of entry.
func (h *IntakeHandler) Submit(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	var req struct {
		Data map[string]any `json:"data"`
	}
	if err := readJSON(r, &req); err != nil || req.Data == nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sub, err := h.subs.GetByToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Submission not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !model.CanTransition(sub.Status, model.StatusSubmitted) {
		writeError(w, http.StatusConflict, "submission cannot be submitted in its current status")
		return
	}

	d := intake.Denormalize(req.Data)
	if err := h.subs.Submit(r.Context(), token, req.Data, d, h.now().UTC()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.audit.Append(r.Context(), &model.AuditEntry{
		SubmissionID: sub.ID,
		Action:       "submitted",
		Details:      map[string]any{"public_token": token},
	}); err != nil {
		h.log.Warn("audit append failed", "submission_id", sub.ID, "error", err)
	}

	h.autoSelectTemplate(r.Context(), sub, d)
	writeJSON(w, http.StatusOK, map[string]string{"status": "submitted"})
}

// autoSelectTemplate picks the first active template matching the first
// country of entry. Missing country or no match leaves the submission
// without a template; staff select one manually before generation.
func (h *IntakeHandler) autoSelectTemplate(ctx context.Context, sub *model.Submission, d intake.Denorm) {
	if sub.SelectedTemplate != nil || d.FirstCountry == nil || *d.FirstCountry == "" {
		return
	}
	tpl, err := h.templates.FirstActiveByCountry(ctx, *d.FirstCountry)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			h.log.Warn("template auto-select failed", "submission_id", sub.ID, "error", err)
		}
		return
	}
	if err := h.subs.SelectTemplate(ctx, sub.ID, tpl.ID); err != nil {
		h.log.Warn("template auto-select failed", "submission_id", sub.ID, "error", err)
	}
}
