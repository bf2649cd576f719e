package models

import (
	"time"

	"github.com/google/uuid"
)

// FormType identifies the tax form a submission instantiates.
// The field schema of FormData varies by form type.
type FormType string

const (
	FormTypeAnlageV      FormType = "ANLAGE_V"
	FormTypeEUeR         FormType = "EUER"
	FormTypeUmsatzsteuer FormType = "UMSATZSTEUER"
)

// Valid reports whether ft is one of the known form types.
func (ft FormType) Valid() bool {
	switch ft {
	case FormTypeAnlageV, FormTypeEUeR, FormTypeUmsatzsteuer:
		return true
	}
	return false
}

// SubmissionStatus is the lifecycle state of a submission.
// DRAFT is initial; SUBMITTED, ACCEPTED and REJECTED are driven by the
// external transmission outcome and are never set by this engine.
type SubmissionStatus string

const (
	StatusDraft       SubmissionStatus = "DRAFT"
	StatusAIProcessed SubmissionStatus = "AI_PROCESSED"
	StatusValidated   SubmissionStatus = "VALIDATED"
	StatusSubmitted   SubmissionStatus = "SUBMITTED"
	StatusAccepted    SubmissionStatus = "ACCEPTED"
	StatusRejected    SubmissionStatus = "REJECTED"
)

// Revalidatable reports whether the engine may rewrite the status from a
// validation run. Once a submission has left VALIDATED its status is owned
// by the transmission flow; findings still refresh but status does not.
func (s SubmissionStatus) Revalidatable() bool {
	switch s {
	case StatusDraft, StatusAIProcessed, StatusValidated:
		return true
	}
	return false
}

// Severity classifies a validation finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Finding is one structured validation observation on a submission field.
// Findings are recomputed wholesale on every validation run, never patched.
type Finding struct {
	Field       string   `json:"field"`
	Message     string   `json:"message"`
	Severity    Severity `json:"severity"`
	AutoFixable bool     `json:"auto_fixable,omitempty"`
}

// Submission is one tax-form instance for a (building, form type, tax year)
// triple. The engine only ever mutates FormData, Status, the finding fields
// and ValidationConfidence; everything else is owned by external callers.
type Submission struct {
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
	FormData             FormData         `json:"form_data"`
	ValidationErrors     []Finding        `json:"validation_errors"`
	ValidationWarnings   []Finding        `json:"validation_warnings"`
	FormType             FormType         `json:"form_type"`
	Status               SubmissionStatus `json:"status"`
	BuildingID           *uuid.UUID       `json:"building_id,omitempty"`
	AIConfidenceScore    *float64         `json:"ai_confidence_score,omitempty"`
	ValidationConfidence *float64         `json:"validation_confidence,omitempty"`
	TaxYear              int              `json:"tax_year"`
	ID                   uuid.UUID        `json:"id"`
}
