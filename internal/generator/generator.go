// Package generator orchestrates document generation for a submission:
// it loads the stored intake data and selected template, dispatches to
// the right rendering path, persists the artifact and records the
// outcome on the submission.
package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vetport/ahc-service/internal/blobstore"
	"github.com/vetport/ahc-service/internal/model"
	"github.com/vetport/ahc-service/internal/pdf"
	"github.com/vetport/ahc-service/internal/pdf/summary"
)

// Kind selects the generation path.
type Kind string

const (
	KindIntake Kind = "intake"
	KindFinal  Kind = "final"
)

// ParseKind validates a request's type value.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindIntake, KindFinal:
		return Kind(s), nil
	default:
		return "", ErrInvalidKind
	}
}

var (
	ErrInvalidKind = errors.New("invalid generation type")
	// ErrNoTemplate is returned for a final generation request on a
	// submission without a selected template.
	ErrNoTemplate = errors.New("no template selected")
)

// SubmissionStore is the slice of submission persistence the generator
// needs.
type SubmissionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Submission, error)
	SetIntakePDFURL(ctx context.Context, id uuid.UUID, url string) error
	MarkGenerated(ctx context.Context, id uuid.UUID, url string) error
}

// TemplateStore resolves the selected template.
type TemplateStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.DocumentTemplate, error)
}

// AuditStore appends audit trail entries.
type AuditStore interface {
	Append(ctx context.Context, entry *model.AuditEntry) error
}

// Fetcher retrieves a template's binary PDF from its external URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher fetches over plain HTTP with a bounded timeout. There is
// no retry; a failed fetch fails the generation request.
type HTTPFetcher struct {
	Client *http.Client
}

func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: timeout}}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", url, err)
	}
	return data, nil
}

// rendering entry points, swappable in tests
var (
	renderSummary   = summary.Render
	fillCertificate = pdf.FillCertificate
)

// Service is the document generation orchestrator.
type Service struct {
	subs      SubmissionStore
	templates TemplateStore
	audit     AuditStore
	blobs     blobstore.Store
	fetch     Fetcher
	log       *slog.Logger
	now       func() time.Time
}

func NewService(subs SubmissionStore, templates TemplateStore, audit AuditStore, blobs blobstore.Store, fetch Fetcher, log *slog.Logger) *Service {
	return &Service{
		subs:      subs,
		templates: templates,
		audit:     audit,
		blobs:     blobs,
		fetch:     fetch,
		log:       log,
		now:       time.Now,
	}
}

// Generate produces the requested artifact for a submission and returns
// its public URL. Requests are independent single-shot invocations; two
// concurrent generations for the same submission race on the URL columns
// with last-write-wins.
func (s *Service) Generate(ctx context.Context, submissionID uuid.UUID, kind Kind) (string, error) {
	sub, err := s.subs.GetByID(ctx, submissionID)
	if err != nil {
		return "", err
	}

	switch kind {
	case KindIntake:
		return s.generateIntake(ctx, sub)
	case KindFinal:
		return s.generateFinal(ctx, sub)
	default:
		return "", ErrInvalidKind
	}
}

func (s *Service) generateIntake(ctx context.Context, sub *model.Submission) (string, error) {
	data, err := renderSummary(sub)
	if err != nil {
		return "", err
	}

	url, err := s.upload(ctx, "intake", sub.ID, data)
	if err != nil {
		return "", err
	}
	if err := s.subs.SetIntakePDFURL(ctx, sub.ID, url); err != nil {
		return "", err
	}

	s.log.Info("intake summary generated", "submission_id", sub.ID, "url", url)
	return url, nil
}

func (s *Service) generateFinal(ctx context.Context, sub *model.Submission) (string, error) {
	if sub.SelectedTemplate == nil {
		return "", ErrNoTemplate
	}
	tpl, err := s.templates.GetByID(ctx, *sub.SelectedTemplate)
	if err != nil {
		return "", err
	}

	templatePDF, err := s.fetch.Fetch(ctx, tpl.TemplatePDFURL)
	if err != nil {
		return "", fmt.Errorf("fetch template PDF: %w", err)
	}

	filled, err := fillCertificate(templatePDF, sub.Data, tpl.MappingSchema)
	if err != nil {
		return "", err
	}

	// upload failure leaves the submission untouched
	url, err := s.upload(ctx, "final-ahc", sub.ID, filled)
	if err != nil {
		return "", err
	}
	if err := s.subs.MarkGenerated(ctx, sub.ID, url); err != nil {
		return "", err
	}
	if err := s.audit.Append(ctx, &model.AuditEntry{
		SubmissionID: sub.ID,
		Action:       "generated",
		Details:      map[string]any{"pdf_url": url},
	}); err != nil {
		s.log.Warn("audit append failed", "submission_id", sub.ID, "error", err)
	}

	s.log.Info("final certificate generated", "submission_id", sub.ID, "template_id", tpl.ID, "url", url)
	return url, nil
}

func (s *Service) upload(ctx context.Context, prefix string, id uuid.UUID, data []byte) (string, error) {
	name := fmt.Sprintf("%s-%s-%d.pdf", prefix, id, s.now().UnixMilli())
	url, err := s.blobs.Upload(ctx, name, data, "application/pdf")
	if err != nil {
		return "", fmt.Errorf("upload artifact: %w", err)
	}
	return url, nil
}
