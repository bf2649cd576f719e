package services

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"

	"github.com/google/uuid"

	"github.com/immowerk/fiskal-api/internal/logger"
	"github.com/immowerk/fiskal-api/internal/models"
	"github.com/immowerk/fiskal-api/internal/repository"
)

// isoDatePattern is the canonical YYYY-MM-DD form expected of date fields.
var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// FixResult is the outcome of a fix proposal run.
type FixResult struct {
	Fixes        []models.FixProposal `json:"fixes"`
	AppliedCount int                  `json:"applied_count"`
}

// AutoFixService detects known data defects and optionally repairs them.
type AutoFixService interface {
	// ProposeFixes detects defects on a submission. With autoApply, every
	// auto-fixable proposal is applied in one batched form-data update, an
	// audit record is written, and the submission is re-validated so its
	// status reflects the fixed data. Non-auto-fixable proposals are always
	// returned for human review. Returns ErrSubmissionNotFound.
	ProposeFixes(ctx context.Context, id uuid.UUID, autoApply bool) (*FixResult, error)
}

// autoFixService is the concrete implementation of AutoFixService.
type autoFixService struct {
	subs      repository.SubmissionRepository
	audit     repository.AuditRepository
	validator ValidationService
	log       *logger.Logger
}

// NewAutoFixService creates a new instance of AutoFixService.
func NewAutoFixService(subs repository.SubmissionRepository, audit repository.AuditRepository, validator ValidationService, log *logger.Logger) AutoFixService {
	return &autoFixService{
		subs:      subs,
		audit:     audit,
		validator: validator,
		log:       log.WithComponent("autofix"),
	}
}

// DetectFixes scans a submission's form data for the known defect classes.
// Pure: it never mutates the submission. Proposals are ordered by field.
func DetectFixes(sub *models.Submission) []models.FixProposal {
	var fixes []models.FixProposal

	// Sign normalization: negative amounts in fields that do not denote a
	// loss are almost always data-entry artifacts.
	for field, value := range sub.FormData.NumericFields() {
		if value < 0 && !models.IsLossField(field) {
			fixes = append(fixes, models.FixProposal{
				Field:       field,
				OldValue:    value,
				NewValue:    math.Abs(value),
				Reason:      "negative value in a field that does not denote a loss",
				AutoFixable: true,
			})
		}
	}

	// Required-field zero-fill.
	schema := models.SchemaFor(sub.FormType)
	for _, field := range schema.RequiredNumeric {
		if needsZeroFill(sub.FormData, field) {
			fixes = append(fixes, models.FixProposal{
				Field:       field,
				OldValue:    sub.FormData[field],
				NewValue:    float64(0),
				Reason:      "required numeric field is missing",
				AutoFixable: true,
			})
		}
	}

	// Date-format defects are flagged, never auto-corrected: the intended
	// value cannot be inferred from a malformed one.
	for field, value := range sub.FormData {
		if !models.IsDateField(field) || value == nil {
			continue
		}
		s, isString := value.(string)
		if isString && isoDatePattern.MatchString(s) {
			continue
		}
		fixes = append(fixes, models.FixProposal{
			Field:       field,
			OldValue:    value,
			NewValue:    nil,
			Reason:      "date value is not in YYYY-MM-DD format; needs manual correction",
			AutoFixable: false,
		})
	}

	sort.Slice(fixes, func(i, j int) bool {
		return fixes[i].Field < fixes[j].Field
	})

	return fixes
}

// ProposeFixes runs defect detection and optionally applies the repairs.
func (s *autoFixService) ProposeFixes(ctx context.Context, id uuid.UUID, autoApply bool) (*FixResult, error) {
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

	fixes := DetectFixes(sub)
	result := &FixResult{Fixes: fixes}

	if !autoApply || len(fixes) == 0 {
		return result, nil
	}

	// Apply every auto-fixable proposal as one batched update.
	newData := sub.FormData.Clone()
	var applied []models.FixProposal
	for _, fix := range fixes {
		if !fix.AutoFixable {
			continue
		}
		newData[fix.Field] = fix.NewValue
		applied = append(applied, fix)
	}

	if len(applied) == 0 {
		return result, nil
	}

	if err := s.subs.UpdateFormData(ctx, id, newData); err != nil {
		s.log.Error("Failed to apply fixes", err, map[string]interface{}{
			"submission_id": id,
			"fixes":         len(applied),
		})
		return nil, fmt.Errorf("failed to apply fixes: %w", err)
	}
	result.AppliedCount = len(applied)

	// The audit trail is fire-and-forget: a failed write must not undo an
	// otherwise successful repair.
	if err := s.audit.RecordAppliedFixes(ctx, id, applied); err != nil {
		s.log.Error("Failed to record fix audit trail", err, map[string]interface{}{
			"submission_id": id,
		})
	}

	// Re-validate so findings and status reflect the repaired data.
	if _, err := s.validator.ValidateSubmission(ctx, id); err != nil {
		s.log.Error("Failed to re-validate after fixes", err, map[string]interface{}{
			"submission_id": id,
		})
		return nil, fmt.Errorf("failed to re-validate after fixes: %w", err)
	}

	s.log.Info("Fixes applied", map[string]interface{}{
		"submission_id": id,
		"proposed":      len(fixes),
		"applied":       len(applied),
	})

	return result, nil
}
