package model

import (
	"time"

	"github.com/google/uuid"
)

// DocumentTemplate is a reusable blank certificate for one
// (first-country-of-entry, language) pair. The binary PDF lives at an
// external URL; the mapping schema describes how intake data lands on it.
type DocumentTemplate struct {
	ID             uuid.UUID     `db:"id" json:"id"`
	Name           string        `db:"name" json:"name"`
	FirstCountry   string        `db:"first_country_of_entry" json:"first_country_of_entry"`
	Language       string        `db:"language" json:"language"`
	TemplatePDFURL string        `db:"template_pdf_url" json:"template_pdf_url"`
	MappingSchema  MappingSchema `db:"mapping_schema_json" json:"mapping_schema_json"`
	Active         bool          `db:"active" json:"active"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
}

// AuditEntry is one append-only audit trail row for a submission.
type AuditEntry struct {
	ID           uuid.UUID      `db:"id" json:"id"`
	SubmissionID uuid.UUID      `db:"submission_id" json:"submission_id"`
	Action       string         `db:"action" json:"action"`
	Details      map[string]any `db:"details_json" json:"details_json,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}
