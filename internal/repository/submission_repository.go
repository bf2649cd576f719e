package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/immowerk/fiskal-api/internal/database"
	"github.com/immowerk/fiskal-api/internal/models"
)

// historicalStatuses are the submission states that count as an accepted
// historical baseline for anomaly detection.
var historicalStatuses = []string{
	string(models.StatusSubmitted),
	string(models.StatusAccepted),
}

// SubmissionRepository defines the interface for submission data access.
type SubmissionRepository interface {
	// GetByID fetches one submission by id.
	// Returns nil, nil if no submission is found (not an error).
	GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error)

	// UpdateValidation writes the outcome of a validation run (status,
	// confidence and both finding lists) in a single statement so no
	// partial result is ever visible.
	UpdateValidation(ctx context.Context, id uuid.UUID, status models.SubmissionStatus, confidence float64, errs, warns []models.Finding) error

	// UpdateFormData replaces the submission's form data in one statement.
	UpdateFormData(ctx context.Context, id uuid.UUID, formData models.FormData) error

	// ListHistorical returns prior SUBMITTED/ACCEPTED submissions for the
	// same building and form type, excluding the given submission.
	// Returns an empty slice if none exist (not an error).
	ListHistorical(ctx context.Context, buildingID *uuid.UUID, formType models.FormType, excludeID uuid.UUID) ([]models.Submission, error)

	// ListByYears returns submissions of the given form type whose tax year
	// is in years, optionally filtered by building.
	ListByYears(ctx context.Context, buildingID *uuid.UUID, formType models.FormType, years []int) ([]models.Submission, error)
}

// submissionRepository is the concrete implementation of SubmissionRepository.
type submissionRepository struct {
	db database.Querier
}

// NewSubmissionRepository creates a new instance of SubmissionRepository.
func NewSubmissionRepository(db database.Querier) SubmissionRepository {
	return &submissionRepository{db: db}
}

const submissionColumns = `
			id,
			building_id,
			form_type,
			tax_year,
			form_data,
			status,
			validation_errors,
			validation_warnings,
			ai_confidence_score,
			validation_confidence,
			created_at,
			updated_at`

func scanSubmission(row pgx.Row) (*models.Submission, error) {
	var sub models.Submission
	err := row.Scan(
		&sub.ID,
		&sub.BuildingID,
		&sub.FormType,
		&sub.TaxYear,
		&sub.FormData,
		&sub.Status,
		&sub.ValidationErrors,
		&sub.ValidationWarnings,
		&sub.AIConfidenceScore,
		&sub.ValidationConfidence,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetByID queries the database for a single submission.
func (r *submissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	query := `
		SELECT` + submissionColumns + `
		FROM submissions
		WHERE id = $1
	`

	sub, err := scanSubmission(r.db.QueryRow(ctx, query, id))
	if err != nil {
		// No rows found is not an error at the repository level
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query submission %s: %w", id, err)
	}

	return sub, nil
}

// UpdateValidation persists status, confidence and findings atomically.
func (r *submissionRepository) UpdateValidation(ctx context.Context, id uuid.UUID, status models.SubmissionStatus, confidence float64, errs, warns []models.Finding) error {
	// nil slices would serialize to JSON null; the columns hold arrays.
	if errs == nil {
		errs = []models.Finding{}
	}
	if warns == nil {
		warns = []models.Finding{}
	}

	query := `
		UPDATE submissions
		SET status = $2,
			validation_confidence = $3,
			validation_errors = $4,
			validation_warnings = $5,
			updated_at = now()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id, status, confidence, errs, warns)
	if err != nil {
		return fmt.Errorf("failed to update validation result for submission %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("submission %s vanished during validation update", id)
	}

	return nil
}

// UpdateFormData replaces the form data of a submission.
func (r *submissionRepository) UpdateFormData(ctx context.Context, id uuid.UUID, formData models.FormData) error {
	query := `
		UPDATE submissions
		SET form_data = $2,
			updated_at = now()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id, formData)
	if err != nil {
		return fmt.Errorf("failed to update form data for submission %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("submission %s vanished during form data update", id)
	}

	return nil
}

// ListHistorical returns the historical corpus for anomaly baselines.
// IS NOT DISTINCT FROM makes the building filter match NULL building ids
// (non-property forms) as well.
func (r *submissionRepository) ListHistorical(ctx context.Context, buildingID *uuid.UUID, formType models.FormType, excludeID uuid.UUID) ([]models.Submission, error) {
	query := `
		SELECT` + submissionColumns + `
		FROM submissions
		WHERE form_type = $1
		  AND building_id IS NOT DISTINCT FROM $2
		  AND status = ANY($3)
		  AND id <> $4
		ORDER BY tax_year
	`

	rows, err := r.db.Query(ctx, query, formType, buildingID, historicalStatuses, excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query historical submissions (form_type=%s): %w", formType, err)
	}
	defer rows.Close()

	return collectSubmissions(rows)
}

// ListByYears returns submissions matching the form type and tax years.
// A nil buildingID matches any building.
func (r *submissionRepository) ListByYears(ctx context.Context, buildingID *uuid.UUID, formType models.FormType, years []int) ([]models.Submission, error) {
	query := `
		SELECT` + submissionColumns + `
		FROM submissions
		WHERE form_type = $1
		  AND tax_year = ANY($2)
		  AND ($3::uuid IS NULL OR building_id = $3)
		ORDER BY tax_year, created_at
	`

	rows, err := r.db.Query(ctx, query, formType, years, buildingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions by years (form_type=%s): %w", formType, err)
	}
	defer rows.Close()

	return collectSubmissions(rows)
}

func collectSubmissions(rows pgx.Rows) ([]models.Submission, error) {
	var results []models.Submission

	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission row: %w", err)
		}
		results = append(results, *sub)
	}

	// Check for errors during iteration
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submission rows: %w", err)
	}

	// Return empty slice if nothing found (not an error)
	if results == nil {
		results = []models.Submission{}
	}

	return results, nil
}
