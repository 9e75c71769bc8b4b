package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vetport/ahc-service/internal/intake"
	"github.com/vetport/ahc-service/internal/model"
	"github.com/vetport/ahc-service/internal/storage"
)

type fakeSubmissionStore struct {
	byToken map[string]*model.Submission
	byID    map[uuid.UUID]*model.Submission

	savedData      map[string]any
	savedDenorm    intake.Denorm
	submittedAt    *time.Time
	statusSet      *model.Status
	correctionMsg  string
	correctionFlds []string
	selectedTpl    *uuid.UUID
	created        *model.Submission
	listResult     []model.Submission
	listFilter     storage.ListFilter
}

func (f *fakeSubmissionStore) lookupToken(token string) (*model.Submission, error) {
	sub, ok := f.byToken[token]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return sub, nil
}

func (f *fakeSubmissionStore) GetByToken(_ context.Context, token string) (*model.Submission, error) {
	return f.lookupToken(token)
}

func (f *fakeSubmissionStore) GetByID(_ context.Context, id uuid.UUID) (*model.Submission, error) {
	sub, ok := f.byID[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return sub, nil
}

func (f *fakeSubmissionStore) UpdateData(_ context.Context, token string, data map[string]any, d intake.Denorm) error {
	if _, err := f.lookupToken(token); err != nil {
		return err
	}
	f.savedData = data
	f.savedDenorm = d
	return nil
}

func (f *fakeSubmissionStore) Submit(_ context.Context, token string, data map[string]any, d intake.Denorm, at time.Time) error {
	if _, err := f.lookupToken(token); err != nil {
		return err
	}
	f.savedData = data
	f.savedDenorm = d
	f.submittedAt = &at
	return nil
}

func (f *fakeSubmissionStore) SelectTemplate(_ context.Context, id, templateID uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		if _, found := f.findByID(id); !found {
			return storage.ErrNotFound
		}
	}
	f.selectedTpl = &templateID
	return nil
}

func (f *fakeSubmissionStore) findByID(id uuid.UUID) (*model.Submission, bool) {
	for _, sub := range f.byToken {
		if sub.ID == id {
			return sub, true
		}
	}
	return nil, false
}

func (f *fakeSubmissionStore) Create(_ context.Context, sub *model.Submission) error {
	sub.ID = uuid.New()
	sub.PublicToken = model.NewPublicToken()
	sub.Status = model.StatusDraft
	f.created = sub
	return nil
}

func (f *fakeSubmissionStore) List(_ context.Context, filter storage.ListFilter) ([]model.Submission, error) {
	f.listFilter = filter
	return f.listResult, nil
}

func (f *fakeSubmissionStore) UpdateStatus(_ context.Context, id uuid.UUID, status model.Status) error {
	if _, ok := f.byID[id]; !ok {
		return storage.ErrNotFound
	}
	f.statusSet = &status
	return nil
}

func (f *fakeSubmissionStore) SetCorrection(_ context.Context, id uuid.UUID, message string, fields []string) error {
	if _, ok := f.byID[id]; !ok {
		return storage.ErrNotFound
	}
	f.correctionMsg = message
	f.correctionFlds = fields
	return nil
}

type fakeTemplateStore struct {
	byID      map[uuid.UUID]*model.DocumentTemplate
	byCountry map[string]*model.DocumentTemplate
	created   *model.DocumentTemplate
	deleted   *uuid.UUID
}

func (f *fakeTemplateStore) GetByID(_ context.Context, id uuid.UUID) (*model.DocumentTemplate, error) {
	tpl, ok := f.byID[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return tpl, nil
}

func (f *fakeTemplateStore) FirstActiveByCountry(_ context.Context, country string) (*model.DocumentTemplate, error) {
	tpl, ok := f.byCountry[country]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return tpl, nil
}

func (f *fakeTemplateStore) Create(_ context.Context, tpl *model.DocumentTemplate) error {
	tpl.ID = uuid.New()
	f.created = tpl
	return nil
}

func (f *fakeTemplateStore) List(_ context.Context) ([]model.DocumentTemplate, error) {
	var out []model.DocumentTemplate
	for _, tpl := range f.byID {
		out = append(out, *tpl)
	}
	return out, nil
}

func (f *fakeTemplateStore) Update(_ context.Context, tpl *model.DocumentTemplate) error {
	if _, ok := f.byID[tpl.ID]; !ok {
		return storage.ErrNotFound
	}
	f.byID[tpl.ID] = tpl
	return nil
}

func (f *fakeTemplateStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.byID, id)
	f.deleted = &id
	return nil
}

type fakeAuditStore struct {
	entries []*model.AuditEntry
	trail   []model.AuditEntry
}

func (f *fakeAuditStore) Append(_ context.Context, entry *model.AuditEntry) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAuditStore) ListBySubmission(_ context.Context, _ uuid.UUID) ([]model.AuditEntry, error) {
	return f.trail, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return bytes.NewReader(data)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

// doRequest routes through a real chi mux so URL params resolve.
func doRequest(r *chi.Mux, method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}
