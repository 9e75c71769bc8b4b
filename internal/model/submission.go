package model

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a submission.
type Status string

const (
	StatusDraft           Status = "Draft"
	StatusSubmitted       Status = "Submitted"
	StatusUnderReview     Status = "UnderReview"
	StatusNeedsCorrection Status = "NeedsCorrection"
	StatusReadyToGenerate Status = "ReadyToGenerate"
	StatusGenerated       Status = "Generated"
	StatusApproved        Status = "Approved"
	StatusDownloaded      Status = "Downloaded"
	StatusCancelled       Status = "Cancelled"
	StatusArchived        Status = "Archived"
)

// transitions holds the forward edges of the submission lifecycle.
// Cancelled/Archived are handled separately: they are reachable from
// any non-terminal state.
var transitions = map[Status][]Status{
	StatusDraft:           {StatusSubmitted},
	StatusSubmitted:       {StatusUnderReview, StatusNeedsCorrection},
	StatusUnderReview:     {StatusReadyToGenerate, StatusNeedsCorrection},
	StatusNeedsCorrection: {StatusSubmitted},
	StatusReadyToGenerate: {StatusGenerated},
	StatusGenerated:       {StatusApproved},
	StatusApproved:        {StatusDownloaded},
	StatusDownloaded:      {},
}

// Valid reports whether s is a known lifecycle state.
func (s Status) Valid() bool {
	if s == StatusCancelled || s == StatusArchived {
		return true
	}
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether no further transitions are allowed from s.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusArchived
}

// CanTransition reports whether a submission may move from one status to
// another. The lifecycle is monotonic except for the correction loop
// (Submitted/UnderReview -> NeedsCorrection -> Submitted).
func CanTransition(from, to Status) bool {
	if !from.Valid() || !to.Valid() || from == to {
		return false
	}
	if from.Terminal() {
		return false
	}
	if to == StatusCancelled || to == StatusArchived {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Submission is a single pet-travel intake case. Data is the source of
// truth; the Owner*/travel columns are denormalized copies maintained on
// every write for dashboard listing and filtering.
type Submission struct {
	ID                uuid.UUID      `db:"id" json:"id"`
	PublicToken       string         `db:"public_token" json:"public_token"`
	Status            Status         `db:"status" json:"status"`
	OwnerName         *string        `db:"owner_name" json:"owner_name,omitempty"`
	OwnerEmail        *string        `db:"owner_email" json:"owner_email,omitempty"`
	EntryDate         *string        `db:"entry_date" json:"entry_date,omitempty"`
	FirstCountry      *string        `db:"first_country_of_entry" json:"first_country_of_entry,omitempty"`
	FinalDestination  *string        `db:"final_destination" json:"final_destination,omitempty"`
	Data              map[string]any `db:"data_json" json:"data_json"`
	SelectedTemplate  *uuid.UUID     `db:"selected_template_id" json:"selected_template_id,omitempty"`
	IntakePDFURL      *string        `db:"intake_pdf_url" json:"intake_pdf_url,omitempty"`
	FinalAHCPDFURL    *string        `db:"final_ahc_pdf_url" json:"final_ahc_pdf_url,omitempty"`
	CorrectionMessage *string        `db:"correction_message" json:"correction_message,omitempty"`
	CorrectionFields  []string       `db:"correction_fields" json:"correction_fields,omitempty"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
	SubmittedAt       *time.Time     `db:"submitted_at" json:"submitted_at,omitempty"`
}

// NewPublicToken returns an opaque unguessable token used for
// unauthenticated owner access to a single submission.
func NewPublicToken() string {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return hex.EncodeToString(b)
}
