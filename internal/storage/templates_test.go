package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetport/ahc-service/internal/model"
)

func templateRow(id uuid.UUID, country string) *pgxmock.Rows {
	return pgxmock.NewRows(templateColumns).AddRow(
		id, "AHC "+country, country, "en",
		"https://cdn.example.com/templates/"+country+".pdf",
		model.MappingSchema{"pet.species": {FieldName: "SpeciesField"}},
		true, time.Now(),
	)
}

func TestTemplateFirstActiveByCountry(t *testing.T) {
	mock := newMock(t)
	repo := NewTemplateRepository(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM document_templates").
		WithArgs("France", true).
		WillReturnRows(templateRow(id, "France"))

	tpl, err := repo.FirstActiveByCountry(context.Background(), "France")
	require.NoError(t, err)
	assert.Equal(t, id, tpl.ID)
	assert.Equal(t, "France", tpl.FirstCountry)
	assert.Equal(t, "SpeciesField", tpl.MappingSchema["pet.species"].FieldName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplateFirstActiveByCountryNone(t *testing.T) {
	mock := newMock(t)
	repo := NewTemplateRepository(mock)

	mock.ExpectQuery("SELECT (.+) FROM document_templates").
		WithArgs("Atlantis", true).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.FirstActiveByCountry(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTemplateCreate(t *testing.T) {
	mock := newMock(t)
	repo := NewTemplateRepository(mock)

	mock.ExpectExec("INSERT INTO document_templates").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tpl := &model.DocumentTemplate{Name: "AHC France", FirstCountry: "France", Language: "en"}
	require.NoError(t, repo.Create(context.Background(), tpl))
	assert.NotEqual(t, uuid.Nil, tpl.ID)
	assert.NotNil(t, tpl.MappingSchema)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplateDeleteNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewTemplateRepository(mock)

	mock.ExpectExec("DELETE FROM document_templates").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
