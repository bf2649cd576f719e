package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/immowerk/fiskal-api/internal/database"
	"github.com/immowerk/fiskal-api/internal/models"
)

// AuditRepository records which auto-fixes were applied to a submission.
// The audit trail is write-only from the engine's perspective; callers treat
// a failed write as a logging problem, not an operation failure.
type AuditRepository interface {
	RecordAppliedFixes(ctx context.Context, submissionID uuid.UUID, fixes []models.FixProposal) error
}

type auditRepository struct {
	db database.Querier
}

// NewAuditRepository creates a new instance of AuditRepository.
func NewAuditRepository(db database.Querier) AuditRepository {
	return &auditRepository{db: db}
}

// RecordAppliedFixes inserts one audit row per applied fix.
func (r *auditRepository) RecordAppliedFixes(ctx context.Context, submissionID uuid.UUID, fixes []models.FixProposal) error {
	query := `
		INSERT INTO auto_fix_audit (submission_id, field, old_value, new_value, reason)
		VALUES ($1, $2, $3, $4, $5)
	`

	for _, fix := range fixes {
		if _, err := r.db.Exec(ctx, query,
			submissionID,
			fix.Field,
			fmt.Sprintf("%v", fix.OldValue),
			fmt.Sprintf("%v", fix.NewValue),
			fix.Reason,
		); err != nil {
			return fmt.Errorf("failed to record fix audit for submission %s field %s: %w", submissionID, fix.Field, err)
		}
	}

	return nil
}
