package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vetport/ahc-service/internal/generator"
	"github.com/vetport/ahc-service/internal/model"
	"github.com/vetport/ahc-service/internal/pdf/form"
	"github.com/vetport/ahc-service/internal/storage"
)

type TemplateStore interface {
	Create(ctx context.Context, tpl *model.DocumentTemplate) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.DocumentTemplate, error)
	List(ctx context.Context) ([]model.DocumentTemplate, error)
	Update(ctx context.Context, tpl *model.DocumentTemplate) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TemplateHandler is the staff CRUD surface for document templates.
type TemplateHandler struct {
	templates TemplateStore
	fetch     generator.Fetcher
}

func NewTemplateHandler(templates TemplateStore, fetch generator.Fetcher) *TemplateHandler {
	return &TemplateHandler{templates: templates, fetch: fetch}
}

type templateRequest struct {
	Name           string              `json:"name"`
	FirstCountry   string              `json:"first_country_of_entry"`
	Language       string              `json:"language"`
	TemplatePDFURL string              `json:"template_pdf_url"`
	MappingSchema  model.MappingSchema `json:"mapping_schema_json"`
	Active         *bool               `json:"active"`
}

func (req *templateRequest) validate() string {
	switch {
	case req.Name == "":
		return "name is required"
	case req.FirstCountry == "":
		return "first_country_of_entry is required"
	case req.TemplatePDFURL == "":
		return "template_pdf_url is required"
	}
	return ""
}

func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	tpl := &model.DocumentTemplate{
		Name:           req.Name,
		FirstCountry:   req.FirstCountry,
		Language:       req.Language,
		TemplatePDFURL: req.TemplatePDFURL,
		MappingSchema:  req.MappingSchema,
		Active:         req.Active == nil || *req.Active,
	}
	if err := h.templates.Create(r.Context(), tpl); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, tpl)
}

func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	tpls, err := h.templates.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if tpls == nil {
		tpls = []model.DocumentTemplate{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": tpls, "total": len(tpls)})
}

func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid template id")
		return
	}
	var req templateRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	tpl, err := h.templates.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Template not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	tpl.Name = req.Name
	tpl.FirstCountry = req.FirstCountry
	tpl.Language = req.Language
	tpl.TemplatePDFURL = req.TemplatePDFURL
	tpl.MappingSchema = req.MappingSchema
	if req.Active != nil {
		tpl.Active = *req.Active
	}
	if err := h.templates.Update(r.Context(), tpl); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

// Fields fetches the template PDF and lists its fillable form fields,
// so staff can author a mapping schema against the real field names.
func (h *TemplateHandler) Fields(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid template id")
		return
	}
	tpl, err := h.templates.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Template not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	data, err := h.fetch.Fetch(r.Context(), tpl.TemplatePDFURL)
	if err != nil {
		writeError(w, http.StatusBadGateway, "fetch template PDF: "+err.Error())
		return
	}
	frm, err := form.Load(bytes.NewReader(data))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "parse template PDF: "+err.Error())
		return
	}

	type fieldInfo struct {
		Name string `json:"name"`
		Kind string `json:"kind"`
	}
	fields := make([]fieldInfo, 0)
	for _, f := range frm.Fields() {
		fields = append(fields, fieldInfo{Name: f.Name, Kind: f.Kind.String()})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"template_id": tpl.ID,
		"pages":       frm.PageCount(),
		"fields":      fields,
	})
}

func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid template id")
		return
	}
	if err := h.templates.Delete(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Template not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id.String()})
}
