package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/immowerk/fiskal-api/internal/config"
	"github.com/immowerk/fiskal-api/internal/logger"
	"github.com/immowerk/fiskal-api/internal/models"
	"github.com/immowerk/fiskal-api/internal/repository"
)

// Confidence values attached to a validation outcome.
const (
	confidenceClean  = 95
	confidenceFlawed = 50
)

// ValidationResult is the outcome of one validation run.
type ValidationResult struct {
	Status     models.SubmissionStatus `json:"status"`
	Errors     []models.Finding        `json:"errors"`
	Warnings   []models.Finding        `json:"warnings"`
	Infos      []models.Finding        `json:"infos"`
	Confidence float64                 `json:"confidence"`
}

// BatchItemResult is the per-submission outcome within a batch run.
type BatchItemResult struct {
	SubmissionID string                  `json:"submission_id"`
	Status       models.SubmissionStatus `json:"status,omitempty"`
	Error        string                  `json:"error,omitempty"`
	ErrorCount   int                     `json:"error_count"`
	WarningCount int                     `json:"warning_count"`
	Success      bool                    `json:"success"`
}

// BatchResult aggregates a batch validation run.
type BatchResult struct {
	Results    []BatchItemResult `json:"results"`
	Total      int               `json:"total"`
	Successful int               `json:"successful"`
	Failed     int               `json:"failed"`
}

// ValidationService runs the business rule set against submissions and
// keeps their status in sync with the findings.
type ValidationService interface {
	// ValidateSubmission recomputes findings for one submission and
	// persists findings, confidence and the derived status atomically.
	// Returns ErrSubmissionNotFound if the id does not exist.
	ValidateSubmission(ctx context.Context, id uuid.UUID) (*ValidationResult, error)

	// ValidateBatch validates each id independently. Malformed or unknown
	// ids become failed per-item results; the batch itself only fails for
	// an empty input list (ErrNoSubmissionIDs).
	ValidateBatch(ctx context.Context, ids []string) (*BatchResult, error)
}

// validationService is the concrete implementation of ValidationService.
type validationService struct {
	subs  repository.SubmissionRepository
	log   *logger.Logger
	rules config.RulesConfig
}

// NewValidationService creates a new instance of ValidationService.
func NewValidationService(subs repository.SubmissionRepository, rules config.RulesConfig, log *logger.Logger) ValidationService {
	return &validationService{
		subs:  subs,
		rules: rules,
		log:   log.WithComponent("validation"),
	}
}

// EvaluateRules runs the rule set against a submission's form data. It is a
// pure function of the current record: re-running it on unchanged data
// yields identical findings.
func EvaluateRules(sub *models.Submission, rules config.RulesConfig) ValidationResult {
	schema := models.SchemaFor(sub.FormType)

	result := ValidationResult{
		Errors:   []models.Finding{},
		Warnings: []models.Finding{},
		Infos:    []models.Finding{},
	}

	// The primary income field must be present and positive.
	if schema.PrimaryIncomeField != "" {
		if v, ok := sub.FormData.Number(schema.PrimaryIncomeField); !ok || v <= 0 {
			result.Errors = append(result.Errors, models.Finding{
				Field:    schema.PrimaryIncomeField,
				Message:  fmt.Sprintf("%s must be present and greater than zero", schema.PrimaryIncomeField),
				Severity: models.SeverityError,
			})
		}
	}

	// Designated expense ceilings. Exceeding one is suspicious, not wrong.
	for _, ceiling := range expenseCeilings(rules) {
		if v, ok := sub.FormData.Number(ceiling.field); ok && v > ceiling.limit {
			result.Warnings = append(result.Warnings, models.Finding{
				Field:    ceiling.field,
				Message:  fmt.Sprintf("%s of %.2f exceeds the usual ceiling of %.2f", ceiling.field, v, ceiling.limit),
				Severity: models.SeverityWarning,
			})
		}
	}

	// A loss year is legitimate but worth surfacing.
	income := sub.FormData.TotalIncome()
	expenses := sub.FormData.TotalExpenses()
	if expenses > income {
		result.Warnings = append(result.Warnings, models.Finding{
			Field:    "form_data",
			Message:  fmt.Sprintf("aggregate expenses %.2f exceed aggregate income %.2f (loss year)", expenses, income),
			Severity: models.SeverityWarning,
		})
	}

	// Missing required numeric fields are zero-fill candidates for the
	// auto-fix engine, not hard errors. The primary income rule above is
	// the only hard requirement.
	for _, field := range schema.RequiredNumeric {
		if field == schema.PrimaryIncomeField {
			continue
		}
		if needsZeroFill(sub.FormData, field) {
			result.Infos = append(result.Infos, models.Finding{
				Field:       field,
				Message:     fmt.Sprintf("%s is missing and can be zero-filled", field),
				Severity:    models.SeverityInfo,
				AutoFixable: true,
			})
		}
	}

	if len(result.Errors) == 0 {
		result.Status = models.StatusValidated
		result.Confidence = confidenceClean
	} else {
		result.Status = models.StatusDraft
		result.Confidence = confidenceFlawed
	}

	return result
}

type ceilingRule struct {
	field string
	limit float64
}

func expenseCeilings(rules config.RulesConfig) []ceilingRule {
	return []ceilingRule{
		{field: "expense_property_tax", limit: rules.PropertyTaxCeiling},
	}
}

// needsZeroFill reports whether a required numeric field is absent or holds
// no usable numeric value. A stored zero is a value, not a gap.
func needsZeroFill(f models.FormData, field string) bool {
	v, ok := f[field]
	if !ok || v == nil {
		return true
	}
	if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
		return true
	}
	_, numeric := f.Number(field)
	return !numeric
}

// ValidateSubmission recomputes findings and persists the outcome.
// The status is always derived from the findings, never trusted from the
// stored record; once a submission has left VALIDATED the stored status is
// preserved and only findings and confidence refresh.
func (s *validationService) ValidateSubmission(ctx context.Context, id uuid.UUID) (*ValidationResult, error) {
	sub, err := s.subs.GetByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to load submission", err, map[string]interface{}{
			"submission_id": id,
		})
		return nil, fmt.Errorf("failed to load submission: %w", err)
	}
	if sub == nil {
		return nil, ErrSubmissionNotFound
	}

	result := EvaluateRules(sub, s.rules)

	status := result.Status
	if !sub.Status.Revalidatable() {
		status = sub.Status
	}
	result.Status = status

	// Infos ride along in the warnings column; they are advisory findings,
	// not a third persisted list.
	persistedWarnings := append(append([]models.Finding{}, result.Warnings...), result.Infos...)

	if err := s.subs.UpdateValidation(ctx, id, status, result.Confidence, result.Errors, persistedWarnings); err != nil {
		s.log.Error("Failed to persist validation result", err, map[string]interface{}{
			"submission_id": id,
		})
		return nil, fmt.Errorf("failed to persist validation result: %w", err)
	}

	s.log.Info("Submission validated", map[string]interface{}{
		"submission_id": id,
		"status":        status,
		"errors":        len(result.Errors),
		"warnings":      len(result.Warnings),
	})

	return &result, nil
}

// ValidateBatch validates every id independently and never aborts on a
// per-item failure.
func (s *validationService) ValidateBatch(ctx context.Context, ids []string) (*BatchResult, error) {
	if len(ids) == 0 {
		return nil, ErrNoSubmissionIDs
	}

	batch := &BatchResult{
		Results: make([]BatchItemResult, 0, len(ids)),
		Total:   len(ids),
	}

	for _, raw := range ids {
		item := BatchItemResult{SubmissionID: raw}

		id, err := uuid.Parse(raw)
		if err != nil {
			item.Error = fmt.Sprintf("malformed submission id: %v", err)
			batch.Failed++
			batch.Results = append(batch.Results, item)
			continue
		}

		result, err := s.ValidateSubmission(ctx, id)
		if err != nil {
			item.Error = err.Error()
			batch.Failed++
			batch.Results = append(batch.Results, item)
			continue
		}

		item.Success = true
		item.Status = result.Status
		item.ErrorCount = len(result.Errors)
		item.WarningCount = len(result.Warnings)
		batch.Successful++
		batch.Results = append(batch.Results, item)
	}

	s.log.Info("Batch validation completed", map[string]interface{}{
		"total":      batch.Total,
		"successful": batch.Successful,
		"failed":     batch.Failed,
	})

	return batch, nil
}
