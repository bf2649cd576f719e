package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apierrors "github.com/immowerk/fiskal-api/internal/errors"
	"github.com/immowerk/fiskal-api/internal/middleware"
	"github.com/immowerk/fiskal-api/internal/services"
)

// SubmissionHandler handles the validation, auto-fix, anomaly and risk
// endpoints of the submission lifecycle.
type SubmissionHandler struct {
	validation services.ValidationService
	autofix    services.AutoFixService
	anomalies  services.AnomalyService
	risk       services.RiskService
}

// NewSubmissionHandler creates a new SubmissionHandler instance.
func NewSubmissionHandler(validation services.ValidationService, autofix services.AutoFixService, anomalies services.AnomalyService, risk services.RiskService) *SubmissionHandler {
	return &SubmissionHandler{
		validation: validation,
		autofix:    autofix,
		anomalies:  anomalies,
		risk:       risk,
	}
}

// BatchValidateRequest carries the submission ids for a batch run.
type BatchValidateRequest struct {
	SubmissionIDs []string `json:"submission_ids" binding:"required"`
}

// FixRequest toggles automatic application of the detected fixes.
type FixRequest struct {
	AutoApply bool `json:"auto_apply"`
}

// Validate handles POST /api/v1/submissions/:id/validate.
// It recomputes all findings for the submission and persists the outcome.
func (h *SubmissionHandler) Validate(c *gin.Context) {
	id, ok := submissionID(c)
	if !ok {
		return
	}

	result, err := h.validation.ValidateSubmission(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrSubmissionNotFound) {
			apierrors.NotFound(c, "Submission not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to validate submission", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ValidateBatch handles POST /api/v1/submissions/validate-batch.
// Per-submission failures are reported inside the result, never as an
// overall error.
func (h *SubmissionHandler) ValidateBatch(c *gin.Context) {
	var req BatchValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Info("Processing batch validation request", map[string]interface{}{
			"count": len(req.SubmissionIDs),
		})
	}

	batch, err := h.validation.ValidateBatch(c.Request.Context(), req.SubmissionIDs)
	if err != nil {
		if errors.Is(err, services.ErrNoSubmissionIDs) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to run batch validation", err)
		return
	}

	c.JSON(http.StatusOK, batch)
}

// Fixes handles POST /api/v1/submissions/:id/fixes.
// Without auto_apply it is a dry run listing the proposals.
func (h *SubmissionHandler) Fixes(c *gin.Context) {
	id, ok := submissionID(c)
	if !ok {
		return
	}

	// An absent body is a dry run.
	var req FixRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apierrors.BadRequest(c, "Invalid request body", nil)
			return
		}
	}

	result, err := h.autofix.ProposeFixes(c.Request.Context(), id, req.AutoApply)
	if err != nil {
		if errors.Is(err, services.ErrSubmissionNotFound) {
			apierrors.NotFound(c, "Submission not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to process fixes", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Anomalies handles GET /api/v1/submissions/:id/anomalies.
func (h *SubmissionHandler) Anomalies(c *gin.Context) {
	id, ok := submissionID(c)
	if !ok {
		return
	}

	result, err := h.anomalies.DetectAnomalies(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrSubmissionNotFound) {
			apierrors.NotFound(c, "Submission not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to detect anomalies", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Risk handles GET /api/v1/submissions/:id/risk.
func (h *SubmissionHandler) Risk(c *gin.Context) {
	id, ok := submissionID(c)
	if !ok {
		return
	}

	assessment, err := h.risk.ScoreRisk(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrSubmissionNotFound) {
			apierrors.NotFound(c, "Submission not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to score risk", err)
		return
	}

	c.JSON(http.StatusOK, assessment)
}

// submissionID parses the :id path parameter, writing the error response
// itself when the id is malformed.
func submissionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.InvalidArgument(c, "Submission id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}
