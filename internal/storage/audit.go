package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	"github.com/vetport/ahc-service/internal/model"
)

// AuditRepository appends to and reads the per-submission audit trail.
// The trail is append-only; there is no update or delete.
type AuditRepository struct {
	db Querier
}

func NewAuditRepository(db Querier) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(ctx context.Context, entry *model.AuditEntry) error {
	if entry.SubmissionID == uuid.Nil {
		return fmt.Errorf("audit entry: submission id is required")
	}
	if entry.Action == "" {
		return fmt.Errorf("audit entry: action is required")
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now().UTC()

	query, args, err := psql.Insert("audit_log").
		Columns("id", "submission_id", "action", "details_json", "created_at").
		Values(entry.ID, entry.SubmissionID, entry.Action, entry.Details, entry.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (r *AuditRepository) ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]model.AuditEntry, error) {
	query, args, err := psql.Select("id", "submission_id", "action", "details_json", "created_at").
		From("audit_log").
		Where(squirrel.Eq{"submission_id": submissionID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	var entries []model.AuditEntry
	if err := pgxscan.Select(ctx, r.db, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, nil
}
