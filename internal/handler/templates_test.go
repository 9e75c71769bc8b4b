package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetport/ahc-service/internal/model"
)

type fakeFetcher struct {
	data []byte
	err  error
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string) ([]byte, error) {
	return f.data, f.err
}

func newTemplateRouter(tpls *fakeTemplateStore) *chi.Mux {
	return newTemplateRouterWithFetcher(tpls, &fakeFetcher{})
}

func newTemplateRouterWithFetcher(tpls *fakeTemplateStore, fetch *fakeFetcher) *chi.Mux {
	h := NewTemplateHandler(tpls, fetch)
	r := chi.NewRouter()
	r.Get("/api/templates", h.List)
	r.Post("/api/templates", h.Create)
	r.Get("/api/templates/{id}/fields", h.Fields)
	r.Put("/api/templates/{id}", h.Update)
	r.Delete("/api/templates/{id}", h.Delete)
	return r
}

func TestTemplateCreate(t *testing.T) {
	tpls := &fakeTemplateStore{}
	r := newTemplateRouter(tpls)

	rec := doRequest(r, http.MethodPost, "/api/templates", jsonBody(t, map[string]any{
		"name":                   "AHC France (EN)",
		"first_country_of_entry": "France",
		"language":               "en",
		"template_pdf_url":       "https://gov.example.com/ahc-fr-en.pdf",
		"mapping_schema_json": map[string]any{
			"pet.species": map[string]any{"fieldName": "SpeciesField"},
		},
	}))
	require.Equal(t, http.StatusCreated, rec.Code)

	require.NotNil(t, tpls.created)
	assert.Equal(t, "AHC France (EN)", tpls.created.Name)
	assert.True(t, tpls.created.Active)
	assert.Equal(t, "SpeciesField", tpls.created.MappingSchema["pet.species"].FieldName)
}

func TestTemplateCreateMissingFields(t *testing.T) {
	r := newTemplateRouter(&fakeTemplateStore{})

	rec := doRequest(r, http.MethodPost, "/api/templates", jsonBody(t, map[string]any{
		"name": "incomplete",
	}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTemplateUpdateDeactivate(t *testing.T) {
	id := uuid.New()
	tpls := &fakeTemplateStore{byID: map[uuid.UUID]*model.DocumentTemplate{
		id: {ID: id, Name: "AHC France", FirstCountry: "France", TemplatePDFURL: "https://gov.example.com/a.pdf", Active: true},
	}}
	r := newTemplateRouter(tpls)

	active := false
	rec := doRequest(r, http.MethodPut, "/api/templates/"+id.String(), jsonBody(t, map[string]any{
		"name":                   "AHC France v2",
		"first_country_of_entry": "France",
		"template_pdf_url":       "https://gov.example.com/b.pdf",
		"active":                 active,
	}))
	require.Equal(t, http.StatusOK, rec.Code)

	got := tpls.byID[id]
	assert.Equal(t, "AHC France v2", got.Name)
	assert.Equal(t, "https://gov.example.com/b.pdf", got.TemplatePDFURL)
	assert.False(t, got.Active)
}

func TestTemplateUpdateNotFound(t *testing.T) {
	r := newTemplateRouter(&fakeTemplateStore{byID: map[uuid.UUID]*model.DocumentTemplate{}})

	rec := doRequest(r, http.MethodPut, "/api/templates/"+uuid.New().String(), jsonBody(t, map[string]any{
		"name":                   "x",
		"first_country_of_entry": "France",
		"template_pdf_url":       "https://gov.example.com/a.pdf",
	}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTemplateFieldsFetchFailure(t *testing.T) {
	id := uuid.New()
	tpls := &fakeTemplateStore{byID: map[uuid.UUID]*model.DocumentTemplate{
		id: {ID: id, TemplatePDFURL: "https://gov.example.com/gone.pdf"},
	}}
	r := newTemplateRouterWithFetcher(tpls, &fakeFetcher{err: errors.New("connection refused")})

	rec := doRequest(r, http.MethodGet, "/api/templates/"+id.String()+"/fields", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestTemplateFieldsNotAPDF(t *testing.T) {
	id := uuid.New()
	tpls := &fakeTemplateStore{byID: map[uuid.UUID]*model.DocumentTemplate{
		id: {ID: id, TemplatePDFURL: "https://gov.example.com/a.pdf"},
	}}
	r := newTemplateRouterWithFetcher(tpls, &fakeFetcher{data: []byte("<html>not a pdf</html>")})

	rec := doRequest(r, http.MethodGet, "/api/templates/"+id.String()+"/fields", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestTemplateFieldsUnknownTemplate(t *testing.T) {
	r := newTemplateRouter(&fakeTemplateStore{byID: map[uuid.UUID]*model.DocumentTemplate{}})

	rec := doRequest(r, http.MethodGet, "/api/templates/"+uuid.New().String()+"/fields", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTemplateDelete(t *testing.T) {
	id := uuid.New()
	tpls := &fakeTemplateStore{byID: map[uuid.UUID]*model.DocumentTemplate{
		id: {ID: id},
	}}
	r := newTemplateRouter(tpls)

	rec := doRequest(r, http.MethodDelete, "/api/templates/"+id.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, tpls.deleted)
	assert.Equal(t, id, *tpls.deleted)

	rec = doRequest(r, http.MethodDelete, "/api/templates/"+id.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
