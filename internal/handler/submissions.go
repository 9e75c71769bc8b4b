package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vetport/ahc-service/internal/model"
	"github.com/vetport/ahc-service/internal/storage"
)

type StaffSubmissionStore interface {
	Create(ctx context.Context, sub *model.Submission) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Submission, error)
	List(ctx context.Context, filter storage.ListFilter) ([]model.Submission, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.Status) error
	SetCorrection(ctx context.Context, id uuid.UUID, message string, fields []string) error
	SelectTemplate(ctx context.Context, id, templateID uuid.UUID) error
}

type StaffTemplateStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.DocumentTemplate, error)
}

type StaffAuditStore interface {
	Append(ctx context.Context, entry *model.AuditEntry) error
	ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]model.AuditEntry, error)
}

// SubmissionHandler serves the staff dashboard endpoints.
type SubmissionHandler struct {
	subs      StaffSubmissionStore
	templates StaffTemplateStore
	audit     StaffAuditStore
	log       *slog.Logger
}

func NewSubmissionHandler(subs StaffSubmissionStore, templates StaffTemplateStore, audit StaffAuditStore, log *slog.Logger) *SubmissionHandler {
	return &SubmissionHandler{subs: subs, templates: templates, audit: audit, log: log}
}

// Create opens a new Draft case and returns it with its public token,
// which staff hand to the pet owner.
func (h *SubmissionHandler) Create(w http.ResponseWriter, r *http.Request) {
	sub := &model.Submission{}
	if err := h.subs.Create(r.Context(), sub); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := storage.ListFilter{
		Status:       model.Status(r.URL.Query().Get("status")),
		FirstCountry: r.URL.Query().Get("first_country"),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}
	subs, err := h.subs.List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if subs == nil {
		subs = []model.Submission{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"submissions": subs, "total": len(subs)})
}

func (h *SubmissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid submission id")
		return
	}
	sub, err := h.subs.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Submission not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	trail, err := h.audit.ListBySubmission(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"submission": sub, "audit": trail})
}

// UpdateStatus moves a submission through the lifecycle. Transitions
// outside the state machine are rejected with 409.
func (h *SubmissionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid submission id")
		return
	}
	var req struct {
		Status model.Status `json:"status"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Status.Valid() {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}

	sub, err := h.subs.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Submission not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !model.CanTransition(sub.Status, req.Status) {
		writeError(w, http.StatusConflict, "illegal status transition")
		return
	}
	if err := h.subs.UpdateStatus(r.Context(), id, req.Status); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.appendAudit(r, id, "status_changed", map[string]any{
		"from": sub.Status,
		"to":   req.Status,
	})
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "status": req.Status})
}

// RequestCorrection sends a submission back to the owner with a message
// and the list of fields to fix.
func (h *SubmissionHandler) RequestCorrection(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid submission id")
		return
	}
	var req struct {
		Message string   `json:"message"`
		Fields  []string `json:"fields"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	sub, err := h.subs.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Submission not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !model.CanTransition(sub.Status, model.StatusNeedsCorrection) {
		writeError(w, http.StatusConflict, "submission cannot be sent back for correction")
		return
	}
	if err := h.subs.SetCorrection(r.Context(), id, req.Message, req.Fields); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.appendAudit(r, id, "correction_requested", map[string]any{
		"message": req.Message,
		"fields":  req.Fields,
	})
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "status": model.StatusNeedsCorrection})
}

// SelectTemplate binds a document template to a submission, overriding
// any auto-selected one.
func (h *SubmissionHandler) SelectTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid submission id")
		return
	}
	var req struct {
		TemplateID uuid.UUID `json:"template_id"`
	}
	if err := readJSON(r, &req); err != nil || req.TemplateID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "template_id is required")
		return
	}

	if _, err := h.templates.GetByID(r.Context(), req.TemplateID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Template not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.subs.SelectTemplate(r.Context(), id, req.TemplateID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Submission not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.appendAudit(r, id, "template_selected", map[string]any{"template_id": req.TemplateID})
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "template_id": req.TemplateID})
}

func (h *SubmissionHandler) appendAudit(r *http.Request, id uuid.UUID, action string, details map[string]any) {
	if err := h.audit.Append(r.Context(), &model.AuditEntry{
		SubmissionID: id,
		Action:       action,
		Details:      details,
	}); err != nil {
		h.log.Warn("audit append failed", "submission_id", id, "action", action, "error", err)
	}
}
