package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		want bool
	}{
		{"draft to submitted", StatusDraft, StatusSubmitted, true},
		{"submitted to under review", StatusSubmitted, StatusUnderReview, true},
		{"under review to ready", StatusUnderReview, StatusReadyToGenerate, true},
		{"ready to generated", StatusReadyToGenerate, StatusGenerated, true},
		{"generated to approved", StatusGenerated, StatusApproved, true},
		{"approved to downloaded", StatusApproved, StatusDownloaded, true},
		{"submitted to needs correction", StatusSubmitted, StatusNeedsCorrection, true},
		{"under review to needs correction", StatusUnderReview, StatusNeedsCorrection, true},
		{"needs correction back to submitted", StatusNeedsCorrection, StatusSubmitted, true},
		{"no skipping draft to generated", StatusDraft, StatusGenerated, false},
		{"no going backwards", StatusGenerated, StatusSubmitted, false},
		{"same state is not a transition", StatusDraft, StatusDraft, false},
		{"cancel from draft", StatusDraft, StatusCancelled, true},
		{"archive from approved", StatusApproved, StatusArchived, true},
		{"cancelled is terminal", StatusCancelled, StatusSubmitted, false},
		{"archived is terminal", StatusArchived, StatusArchived, false},
		{"unknown from", Status("Bogus"), StatusSubmitted, false},
		{"unknown to", StatusDraft, Status("Bogus"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestNewPublicToken(t *testing.T) {
	a := NewPublicToken()
	b := NewPublicToken()

	assert.Len(t, a, 48)
	assert.NotEqual(t, a, b)
}
