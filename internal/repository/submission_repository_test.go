package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/immowerk/fiskal-api/internal/models"
)

var submissionTestColumns = []string{
	"id",
	"building_id",
	"form_type",
	"tax_year",
	"form_data",
	"status",
	"validation_errors",
	"validation_warnings",
	"ai_confidence_score",
	"validation_confidence",
	"created_at",
	"updated_at",
}

// addSubmissionRow appends a row in the column order the repository scans.
func addSubmissionRow(rows *pgxmock.Rows, sub models.Submission) *pgxmock.Rows {
	return rows.AddRow(
		sub.ID,
		sub.BuildingID,
		sub.FormType,
		sub.TaxYear,
		sub.FormData,
		sub.Status,
		sub.ValidationErrors,
		sub.ValidationWarnings,
		sub.AIConfidenceScore,
		sub.ValidationConfidence,
		sub.CreatedAt,
		sub.UpdatedAt,
	)
}

func storedSubmission(id uuid.UUID, year int) models.Submission {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return models.Submission{
		ID:       id,
		FormType: models.FormTypeAnlageV,
		TaxYear:  year,
		FormData: models.FormData{
			"income_rent": 24000.0,
		},
		Status:             models.StatusDraft,
		ValidationErrors:   []models.Finding{},
		ValidationWarnings: []models.Finding{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func TestSubmissionGetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	rows := addSubmissionRow(pgxmock.NewRows(submissionTestColumns), storedSubmission(id, 2024))
	mock.ExpectQuery("FROM submissions").
		WithArgs(id).
		WillReturnRows(rows)

	repo := NewSubmissionRepository(mock)
	sub, err := repo.GetByID(context.Background(), id)

	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, id, sub.ID)
	assert.Equal(t, models.FormTypeAnlageV, sub.FormType)
	assert.Equal(t, 2024, sub.TaxYear)
	assert.Equal(t, 24000.0, sub.FormData["income_rent"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionGetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectQuery("FROM submissions").
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	repo := NewSubmissionRepository(mock)
	sub, err := repo.GetByID(context.Background(), id)

	// Absence is nil, nil at the repository level
	assert.NoError(t, err)
	assert.Nil(t, sub)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionGetByID_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectQuery("FROM submissions").
		WithArgs(id).
		WillReturnError(errors.New("connection reset"))

	repo := NewSubmissionRepository(mock)
	sub, err := repo.GetByID(context.Background(), id)

	assert.Error(t, err)
	assert.Nil(t, sub)
	assert.Contains(t, err.Error(), "failed to query submission")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateValidation(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	errs := []models.Finding{
		{Field: "income_rent", Message: "Primary income field is missing or zero", Severity: models.SeverityError},
	}
	warns := []models.Finding{}

	mock.ExpectExec("UPDATE submissions").
		WithArgs(id, models.StatusDraft, 50.0, errs, warns).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := NewSubmissionRepository(mock)
	err = repo.UpdateValidation(context.Background(), id, models.StatusDraft, 50.0, errs, warns)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateValidation_NormalizesNilFindings(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()

	// nil slices must go to the database as empty arrays, not JSON null
	mock.ExpectExec("UPDATE submissions").
		WithArgs(id, models.StatusValidated, 95.0, []models.Finding{}, []models.Finding{}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := NewSubmissionRepository(mock)
	err = repo.UpdateValidation(context.Background(), id, models.StatusValidated, 95.0, nil, nil)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateValidation_RowGone(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectExec("UPDATE submissions").
		WithArgs(id, models.StatusValidated, 95.0, []models.Finding{}, []models.Finding{}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewSubmissionRepository(mock)
	err = repo.UpdateValidation(context.Background(), id, models.StatusValidated, 95.0, nil, nil)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "vanished")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateFormData(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	formData := models.FormData{"income_rent": 24000.0, "expense_insurance": 0.0}

	mock.ExpectExec("UPDATE submissions").
		WithArgs(id, formData).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := NewSubmissionRepository(mock)
	err = repo.UpdateFormData(context.Background(), id, formData)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateFormData_RowGone(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectExec("UPDATE submissions").
		WithArgs(id, models.FormData{}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewSubmissionRepository(mock)
	err = repo.UpdateFormData(context.Background(), id, models.FormData{})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "vanished")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListHistorical(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	excludeID := uuid.New()
	older := storedSubmission(uuid.New(), 2022)
	older.Status = models.StatusAccepted
	newer := storedSubmission(uuid.New(), 2023)
	newer.Status = models.StatusSubmitted

	rows := pgxmock.NewRows(submissionTestColumns)
	addSubmissionRow(rows, older)
	addSubmissionRow(rows, newer)

	mock.ExpectQuery("FROM submissions").
		WithArgs(models.FormTypeAnlageV, (*uuid.UUID)(nil), historicalStatuses, excludeID).
		WillReturnRows(rows)

	repo := NewSubmissionRepository(mock)
	history, err := repo.ListHistorical(context.Background(), nil, models.FormTypeAnlageV, excludeID)

	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 2022, history[0].TaxYear)
	assert.Equal(t, 2023, history[1].TaxYear)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListHistorical_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	excludeID := uuid.New()
	mock.ExpectQuery("FROM submissions").
		WithArgs(models.FormTypeEUeR, (*uuid.UUID)(nil), historicalStatuses, excludeID).
		WillReturnRows(pgxmock.NewRows(submissionTestColumns))

	repo := NewSubmissionRepository(mock)
	history, err := repo.ListHistorical(context.Background(), nil, models.FormTypeEUeR, excludeID)

	require.NoError(t, err)
	assert.NotNil(t, history, "Expected empty slice, not nil")
	assert.Empty(t, history)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByYears(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	buildingID := uuid.New()
	from := storedSubmission(uuid.New(), 2022)
	from.BuildingID = &buildingID
	to := storedSubmission(uuid.New(), 2023)
	to.BuildingID = &buildingID

	rows := pgxmock.NewRows(submissionTestColumns)
	addSubmissionRow(rows, from)
	addSubmissionRow(rows, to)

	// Creation time breaks ties within a year, so later rows overwrite
	// earlier ones wherever callers keep one submission per year.
	mock.ExpectQuery(`FROM submissions.*ORDER BY tax_year, created_at`).
		WithArgs(models.FormTypeAnlageV, []int{2022, 2023}, &buildingID).
		WillReturnRows(rows)

	repo := NewSubmissionRepository(mock)
	subs, err := repo.ListByYears(context.Background(), &buildingID, models.FormTypeAnlageV, []int{2022, 2023})

	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, 2022, subs[0].TaxYear)
	assert.Equal(t, &buildingID, subs[0].BuildingID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByYears_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM submissions").
		WithArgs(models.FormTypeAnlageV, []int{2022, 2023}, (*uuid.UUID)(nil)).
		WillReturnError(errors.New("connection reset"))

	repo := NewSubmissionRepository(mock)
	subs, err := repo.ListByYears(context.Background(), nil, models.FormTypeAnlageV, []int{2022, 2023})

	assert.Error(t, err)
	assert.Nil(t, subs)
	assert.NoError(t, mock.ExpectationsWereMet())
}
