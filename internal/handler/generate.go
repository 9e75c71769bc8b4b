package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/vetport/ahc-service/internal/generator"
	"github.com/vetport/ahc-service/internal/storage"
)

type Generator interface {
	Generate(ctx context.Context, submissionID uuid.UUID, kind generator.Kind) (string, error)
}

// GenerateHandler triggers document generation for a submission.
type GenerateHandler struct {
	gen Generator
}

func NewGenerateHandler(gen Generator) *GenerateHandler {
	return &GenerateHandler{gen: gen}
}

func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SubmissionID string `json:"submission_id"`
		Type         string `json:"type"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SubmissionID == "" || req.Type == "" {
		writeError(w, http.StatusBadRequest, "Missing submission_id or type")
		return
	}
	kind, err := generator.ParseKind(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid type")
		return
	}
	id, err := uuid.Parse(req.SubmissionID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid submission_id")
		return
	}

	url, err := h.gen.Generate(r.Context(), id, kind)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			writeError(w, http.StatusNotFound, "Submission not found")
		case errors.Is(err, generator.ErrNoTemplate):
			writeError(w, http.StatusBadRequest, "No template selected")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	key := "intake_pdf_url"
	if kind == generator.KindFinal {
		key = "final_ahc_pdf_url"
	}
	writeJSON(w, http.StatusOK, map[string]string{key: url})
}
