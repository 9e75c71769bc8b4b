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

var templateColumns = []string{
	"id", "name", "first_country_of_entry", "language",
	"template_pdf_url", "mapping_schema_json", "active", "created_at",
}

// TemplateRepository manages document templates. The generation engine
// only ever reads them; writes come from staff CRUD.
type TemplateRepository struct {
	db Querier
}

func NewTemplateRepository(db Querier) *TemplateRepository {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) Create(ctx context.Context, tpl *model.DocumentTemplate) error {
	if tpl.ID == uuid.Nil {
		tpl.ID = uuid.New()
	}
	if tpl.MappingSchema == nil {
		tpl.MappingSchema = model.MappingSchema{}
	}
	tpl.CreatedAt = time.Now().UTC()

	query, args, err := psql.Insert("document_templates").
		Columns(templateColumns...).
		Values(tpl.ID, tpl.Name, tpl.FirstCountry, tpl.Language,
			tpl.TemplatePDFURL, tpl.MappingSchema, tpl.Active, tpl.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert template: %w", err)
	}
	return nil
}

func (r *TemplateRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.DocumentTemplate, error) {
	query, args, err := psql.Select(templateColumns...).
		From("document_templates").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	var tpl model.DocumentTemplate
	if err := pgxscan.Get(ctx, r.db, &tpl, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get template: %w", err)
	}
	return &tpl, nil
}

func (r *TemplateRepository) List(ctx context.Context) ([]model.DocumentTemplate, error) {
	query, args, err := psql.Select(templateColumns...).
		From("document_templates").
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	var tpls []model.DocumentTemplate
	if err := pgxscan.Select(ctx, r.db, &tpls, query, args...); err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return tpls, nil
}

// FirstActiveByCountry returns the first active template for a first
// country of entry, in creation order. Multiple active templates for the
// same country are not prevented; auto-selection takes the first match.
func (r *TemplateRepository) FirstActiveByCountry(ctx context.Context, country string) (*model.DocumentTemplate, error) {
	query, args, err := psql.Select(templateColumns...).
		From("document_templates").
		Where(squirrel.Eq{"first_country_of_entry": country, "active": true}).
		OrderBy("created_at ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	var tpl model.DocumentTemplate
	if err := pgxscan.Get(ctx, r.db, &tpl, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get active template: %w", err)
	}
	return &tpl, nil
}

func (r *TemplateRepository) Update(ctx context.Context, tpl *model.DocumentTemplate) error {
	query, args, err := psql.Update("document_templates").
		Set("name", tpl.Name).
		Set("first_country_of_entry", tpl.FirstCountry).
		Set("language", tpl.Language).
		Set("template_pdf_url", tpl.TemplatePDFURL).
		Set("mapping_schema_json", tpl.MappingSchema).
		Set("active", tpl.Active).
		Where(squirrel.Eq{"id": tpl.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := psql.Delete("document_templates").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
