package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	"github.com/vetport/ahc-service/internal/intake"
	"github.com/vetport/ahc-service/internal/model"
)

var submissionColumns = []string{
	"id", "public_token", "status",
	"owner_name", "owner_email", "entry_date", "first_country_of_entry", "final_destination",
	"data_json", "selected_template_id", "intake_pdf_url", "final_ahc_pdf_url",
	"correction_message", "correction_fields",
	"created_at", "updated_at", "submitted_at",
}

// SubmissionRepository reads and mutates submission rows. All writes are
// single-row updates by id or token; concurrent writers follow
// last-write-wins, there is no optimistic concurrency token.
type SubmissionRepository struct {
	db Querier
}

func NewSubmissionRepository(db Querier) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create inserts a new Draft submission with a fresh public token.
func (r *SubmissionRepository) Create(ctx context.Context, sub *model.Submission) error {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	if sub.PublicToken == "" {
		sub.PublicToken = model.NewPublicToken()
	}
	if sub.Status == "" {
		sub.Status = model.StatusDraft
	}
	if sub.Data == nil {
		sub.Data = map[string]any{}
	}
	now := time.Now().UTC()
	sub.CreatedAt = now
	sub.UpdatedAt = now

	query, args, err := psql.Insert("submissions").
		Columns("id", "public_token", "status", "data_json", "created_at", "updated_at").
		Values(sub.ID, sub.PublicToken, sub.Status, sub.Data, sub.CreatedAt, sub.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// GetByID returns a submission row by its identifier.
func (r *SubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Submission, error) {
	query, args, err := psql.Select(submissionColumns...).
		From("submissions").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	var sub model.Submission
	if err := pgxscan.Get(ctx, r.db, &sub, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return &sub, nil
}

// GetByToken returns a submission row by its public access token.
func (r *SubmissionRepository) GetByToken(ctx context.Context, token string) (*model.Submission, error) {
	query, args, err := psql.Select(submissionColumns...).
		From("submissions").
		Where(squirrel.Eq{"public_token": token}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	var sub model.Submission
	if err := pgxscan.Get(ctx, r.db, &sub, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get submission by token: %w", err)
	}
	return &sub, nil
}

// ListFilter narrows List by denormalized columns.
type ListFilter struct {
	Status       model.Status
	FirstCountry string
}

// List returns submissions newest first, optionally filtered.
func (r *SubmissionRepository) List(ctx context.Context, filter ListFilter) ([]model.Submission, error) {
	builder := psql.Select(submissionColumns...).
		From("submissions").
		OrderBy("created_at DESC")
	if filter.Status != "" {
		builder = builder.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.FirstCountry != "" {
		builder = builder.Where(squirrel.Eq{"first_country_of_entry": filter.FirstCountry})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	var subs []model.Submission
	if err := pgxscan.Select(ctx, r.db, &subs, query, args...); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return subs, nil
}

// denormSets applies the derived dashboard columns to an update builder.
func denormSets(builder squirrel.UpdateBuilder, d intake.Denorm) squirrel.UpdateBuilder {
	return builder.
		Set("owner_name", d.OwnerName).
		Set("owner_email", d.OwnerEmail).
		Set("entry_date", d.EntryDate).
		Set("first_country_of_entry", d.FirstCountry).
		Set("final_destination", d.FinalDestination)
}

// UpdateData stores an autosaved intake payload by token, keeping the
// denormalized columns in sync.
func (r *SubmissionRepository) UpdateData(ctx context.Context, token string, data map[string]any, d intake.Denorm) error {
	builder := psql.Update("submissions").
		Set("data_json", data).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"public_token": token})
	query, args, err := denormSets(builder, d).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update submission data: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Submit stores the final payload by token and moves the submission to
// Submitted.
func (r *SubmissionRepository) Submit(ctx context.Context, token string, data map[string]any, d intake.Denorm, at time.Time) error {
	builder := psql.Update("submissions").
		Set("data_json", data).
		Set("status", model.StatusSubmitted).
		Set("submitted_at", at).
		Set("updated_at", at).
		Where(squirrel.Eq{"public_token": token})
	query, args, err := denormSets(builder, d).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("submit submission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatus sets the lifecycle status by id. Transition validity is
// the caller's concern.
func (r *SubmissionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.Status) error {
	return r.updateByID(ctx, id, map[string]any{"status": status})
}

// SetCorrection records a correction request and flips the status to
// NeedsCorrection.
func (r *SubmissionRepository) SetCorrection(ctx context.Context, id uuid.UUID, message string, fields []string) error {
	return r.updateByID(ctx, id, map[string]any{
		"status":             model.StatusNeedsCorrection,
		"correction_message": message,
		"correction_fields":  fields,
	})
}

// SelectTemplate links a document template to the submission.
func (r *SubmissionRepository) SelectTemplate(ctx context.Context, id, templateID uuid.UUID) error {
	return r.updateByID(ctx, id, map[string]any{"selected_template_id": templateID})
}

// SetIntakePDFURL records the generated intake summary artifact.
func (r *SubmissionRepository) SetIntakePDFURL(ctx context.Context, id uuid.UUID, url string) error {
	return r.updateByID(ctx, id, map[string]any{"intake_pdf_url": url})
}

// MarkGenerated records the final certificate artifact and flips the
// status to Generated in one write.
func (r *SubmissionRepository) MarkGenerated(ctx context.Context, id uuid.UUID, url string) error {
	return r.updateByID(ctx, id, map[string]any{
		"status":            model.StatusGenerated,
		"final_ahc_pdf_url": url,
	})
}

func (r *SubmissionRepository) updateByID(ctx context.Context, id uuid.UUID, sets map[string]any) error {
	builder := psql.Update("submissions").
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id})
	for column, value := range sets {
		builder = builder.Set(column, value)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update submission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
