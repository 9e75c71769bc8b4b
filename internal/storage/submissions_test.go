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

	"github.com/vetport/ahc-service/internal/intake"
	"github.com/vetport/ahc-service/internal/model"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func submissionRow(id uuid.UUID, token string, status model.Status) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows(submissionColumns).AddRow(
		id, token, status,
		nil, nil, nil, nil, nil,
		map[string]any{"pet": map[string]any{"species": "Dog"}},
		nil, nil, nil, nil, nil,
		now, now, nil,
	)
}

func TestSubmissionCreate(t *testing.T) {
	mock := newMock(t)
	repo := NewSubmissionRepository(mock)

	mock.ExpectExec("INSERT INTO submissions").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	sub := &model.Submission{}
	require.NoError(t, repo.Create(context.Background(), sub))

	assert.NotEqual(t, uuid.Nil, sub.ID)
	assert.NotEmpty(t, sub.PublicToken)
	assert.Equal(t, model.StatusDraft, sub.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionGetByID(t *testing.T) {
	mock := newMock(t)
	repo := NewSubmissionRepository(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM submissions").
		WithArgs(id).
		WillReturnRows(submissionRow(id, "tok", model.StatusSubmitted))

	sub, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, sub.ID)
	assert.Equal(t, model.StatusSubmitted, sub.Status)
	assert.Equal(t, "Dog", sub.Data["pet"].(map[string]any)["species"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionGetByIDNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewSubmissionRepository(mock)

	mock.ExpectQuery("SELECT (.+) FROM submissions").
		WithArgs(pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmissionGetByToken(t *testing.T) {
	mock := newMock(t)
	repo := NewSubmissionRepository(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM submissions").
		WithArgs("tok-123").
		WillReturnRows(submissionRow(id, "tok-123", model.StatusDraft))

	sub, err := repo.GetByToken(context.Background(), "tok-123")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", sub.PublicToken)
}

func TestSubmissionUpdateData(t *testing.T) {
	mock := newMock(t)
	repo := NewSubmissionRepository(mock)

	mock.ExpectExec("UPDATE submissions").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	data := map[string]any{"owner": map[string]any{"firstName": "Ada"}}
	err := repo.UpdateData(context.Background(), "tok", data, intake.Denormalize(data))
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionUpdateDataUnknownToken(t *testing.T) {
	mock := newMock(t)
	repo := NewSubmissionRepository(mock)

	mock.ExpectExec("UPDATE submissions").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdateData(context.Background(), "missing", map[string]any{}, intake.Denorm{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmissionMarkGenerated(t *testing.T) {
	mock := newMock(t)
	repo := NewSubmissionRepository(mock)

	mock.ExpectExec("UPDATE submissions").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.MarkGenerated(context.Background(), uuid.New(), "https://cdn/final-ahc-x.pdf")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionMarkGeneratedNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewSubmissionRepository(mock)

	mock.ExpectExec("UPDATE submissions").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.MarkGenerated(context.Background(), uuid.New(), "url")
	assert.ErrorIs(t, err, ErrNotFound)
}
