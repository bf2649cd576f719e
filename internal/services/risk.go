package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/immowerk/fiskal-api/internal/config"
	"github.com/immowerk/fiskal-api/internal/logger"
	"github.com/immowerk/fiskal-api/internal/models"
	"github.com/immowerk/fiskal-api/internal/repository"
)

// Additive risk impacts per contributing finding. No contribution is ever
// negative.
const (
	impactValidationError = 15.0
	impactValidationWarn  = 5.0
	impactAnomalyHigh     = 20.0
	impactAnomalyMedium   = 10.0
	impactLowAIConfidence = 10.0
	impactMissingRequired = 20.0
	lowAIConfidenceCutoff = 70.0
)

// RiskService aggregates validation findings, anomalies, AI confidence and
// form completeness into a single advisory score.
type RiskService interface {
	// ScoreRisk computes a fresh risk assessment for the submission. Both
	// validation findings and anomalies are recomputed from current data;
	// nothing is read from stored columns except the AI confidence.
	// Returns ErrSubmissionNotFound.
	ScoreRisk(ctx context.Context, id uuid.UUID) (*models.RiskAssessment, error)
}

// riskService is the concrete implementation of RiskService.
type riskService struct {
	subs  repository.SubmissionRepository
	log   *logger.Logger
	rules config.RulesConfig
}

// NewRiskService creates a new instance of RiskService.
func NewRiskService(subs repository.SubmissionRepository, rules config.RulesConfig, log *logger.Logger) RiskService {
	return &riskService{
		subs:  subs,
		rules: rules,
		log:   log.WithComponent("risk"),
	}
}

// AssessRisk folds validation findings, anomalies, AI confidence and form
// completeness into an additive score. It is deterministic for a fixed
// submission, history and rule set.
func AssessRisk(sub *models.Submission, history []models.Submission, rules config.RulesConfig) *models.RiskAssessment {
	factors := []models.RiskFactor{}
	score := 0.0

	validation := EvaluateRules(sub, rules)
	if n := len(validation.Errors); n > 0 {
		impact := float64(n) * impactValidationError
		factors = append(factors, models.RiskFactor{
			Factor: fmt.Sprintf("%d validation error(s)", n),
			Impact: impact,
		})
		score += impact
	}
	if n := len(validation.Warnings); n > 0 {
		impact := float64(n) * impactValidationWarn
		factors = append(factors, models.RiskFactor{
			Factor: fmt.Sprintf("%d validation warning(s)", n),
			Impact: impact,
		})
		score += impact
	}

	anomalies := append(StatisticalOutliers(sub, history, rules), BusinessRuleAnomalies(sub, rules)...)
	for _, a := range anomalies {
		impact := impactAnomalyMedium
		if a.Severity == models.AnomalySeverityHigh {
			impact = impactAnomalyHigh
		}
		factors = append(factors, models.RiskFactor{
			Factor: fmt.Sprintf("%s anomaly: %s", a.Severity, a.Type),
			Impact: impact,
		})
		score += impact
	}

	if sub.AIConfidenceScore != nil && *sub.AIConfidenceScore < lowAIConfidenceCutoff {
		factors = append(factors, models.RiskFactor{
			Factor: fmt.Sprintf("low AI extraction confidence (%.0f)", *sub.AIConfidenceScore),
			Impact: impactLowAIConfidence,
		})
		score += impactLowAIConfidence
	}

	if impact, missing, required := completenessImpact(sub); impact > 0 {
		factors = append(factors, models.RiskFactor{
			Factor: fmt.Sprintf("%d of %d required field(s) missing", missing, required),
			Impact: impact,
		})
		score += impact
	}

	level := models.RiskLevelLow
	switch {
	case score >= rules.RiskHigh:
		level = models.RiskLevelHigh
	case score >= rules.RiskMedium:
		level = models.RiskLevelMedium
	}

	return &models.RiskAssessment{
		RiskScore:      score,
		RiskLevel:      level,
		RiskFactors:    factors,
		Recommendation: recommendationFor(level),
	}
}

// completenessImpact weighs missing required fields by their share of the
// form type's required set.
func completenessImpact(sub *models.Submission) (impact float64, missing, required int) {
	schema := models.SchemaFor(sub.FormType)
	required = len(schema.RequiredNumeric)
	if required == 0 {
		return 0, 0, 0
	}
	for _, field := range schema.RequiredNumeric {
		if needsZeroFill(sub.FormData, field) {
			missing++
		}
	}
	return float64(missing) / float64(required) * impactMissingRequired, missing, required
}

func recommendationFor(level models.RiskLevel) string {
	switch level {
	case models.RiskLevelHigh:
		return "Manual review required before submitting to the tax authority."
	case models.RiskLevelMedium:
		return "Review the flagged findings; submission is possible but discouraged until they are resolved."
	default:
		return "Submission looks safe to file."
	}
}

// ScoreRisk loads the submission and its historical corpus and computes the
// assessment. The result is transient; nothing is persisted.
func (s *riskService) ScoreRisk(ctx context.Context, id uuid.UUID) (*models.RiskAssessment, error) {
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

	history, err := s.subs.ListHistorical(ctx, sub.BuildingID, sub.FormType, sub.ID)
	if err != nil {
		s.log.Error("Failed to load historical corpus", err, map[string]interface{}{
			"submission_id": id,
		})
		return nil, fmt.Errorf("failed to load historical corpus: %w", err)
	}

	assessment := AssessRisk(sub, history, s.rules)

	s.log.Info("Risk assessment completed", map[string]interface{}{
		"submission_id": id,
		"risk_score":    assessment.RiskScore,
		"risk_level":    assessment.RiskLevel,
	})

	return assessment, nil
}
