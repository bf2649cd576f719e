package services

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/immowerk/fiskal-api/internal/config"
	"github.com/immowerk/fiskal-api/internal/logger"
	"github.com/immowerk/fiskal-api/internal/models"
	"github.com/immowerk/fiskal-api/internal/repository"
)

// minBaselinePoints is the smallest historical sample a per-field z-score
// may be computed from. A baseline is never fabricated from a single point.
const minBaselinePoints = 2

// AnomalyResult is the outcome of an anomaly detection run.
type AnomalyResult struct {
	Anomalies    []models.Anomaly `json:"anomalies"`
	HasAnomalies bool             `json:"has_anomalies"`
}

// AnomalyService flags submissions that deviate from their historical
// baseline or violate fixed business expectations.
type AnomalyService interface {
	// DetectAnomalies compares a submission against the corpus of prior
	// SUBMITTED/ACCEPTED submissions for the same building and form type.
	// With no usable history only the fixed business checks run.
	// Returns ErrSubmissionNotFound.
	DetectAnomalies(ctx context.Context, id uuid.UUID) (*AnomalyResult, error)
}

// anomalyService is the concrete implementation of AnomalyService.
type anomalyService struct {
	subs  repository.SubmissionRepository
	log   *logger.Logger
	rules config.RulesConfig
}

// NewAnomalyService creates a new instance of AnomalyService.
func NewAnomalyService(subs repository.SubmissionRepository, rules config.RulesConfig, log *logger.Logger) AnomalyService {
	return &anomalyService{
		subs:  subs,
		rules: rules,
		log:   log.WithComponent("anomaly"),
	}
}

// StatisticalOutliers computes per-field z-scores of the submission against
// the historical corpus. Fields with fewer than two historical values are
// skipped, as is the whole check when history is too thin.
func StatisticalOutliers(sub *models.Submission, history []models.Submission, rules config.RulesConfig) []models.Anomaly {
	if len(history) < minBaselinePoints {
		return nil
	}

	valuesByField := make(map[string][]float64)
	for i := range history {
		for field, value := range history[i].FormData.NumericFields() {
			valuesByField[field] = append(valuesByField[field], value)
		}
	}

	current := sub.FormData.NumericFields()

	fields := make([]string, 0, len(valuesByField))
	for field := range valuesByField {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var anomalies []models.Anomaly
	for _, field := range fields {
		values := valuesByField[field]
		if len(values) < minBaselinePoints {
			continue
		}
		currentValue, ok := current[field]
		if !ok {
			continue
		}

		mean, stdDev := meanStdDev(values)

		// A flat history has no spread to deviate from.
		zScore := 0.0
		if stdDev > 0 {
			zScore = math.Abs(currentValue-mean) / stdDev
		}
		if zScore <= rules.ZScoreMedium {
			continue
		}

		severity := models.AnomalySeverityMedium
		if zScore > rules.ZScoreHigh {
			severity = models.AnomalySeverityHigh
		}

		anomalies = append(anomalies, models.Anomaly{
			Type:     models.AnomalyTypeStatisticalOutlier,
			Field:    field,
			Message:  fmt.Sprintf("%s of %.2f deviates %.1f standard deviations from the historical mean %.2f", field, currentValue, zScore, mean),
			Severity: severity,
			Value:    currentValue,
			Mean:     mean,
			StdDev:   stdDev,
			ZScore:   zScore,
		})
	}

	return anomalies
}

// BusinessRuleAnomalies runs the fixed checks that need no history.
func BusinessRuleAnomalies(sub *models.Submission, rules config.RulesConfig) []models.Anomaly {
	var anomalies []models.Anomaly

	income := sub.FormData.TotalIncome()
	expenses := sub.FormData.TotalExpenses()

	// No income guard here: positive expenses against zero income exceed
	// any multiple of income and are exactly the case worth flagging.
	if expenses > 0 && expenses > income*rules.ExpenseIncomeRatio {
		anomalies = append(anomalies, models.Anomaly{
			Type:     models.AnomalyTypeExpenseRatio,
			Message:  fmt.Sprintf("aggregate expenses %.2f exceed %.0f%% of aggregate income %.2f", expenses, rules.ExpenseIncomeRatio*100, income),
			Severity: models.AnomalySeverityHigh,
		})
	}

	if income > 0 && expenses == 0 {
		anomalies = append(anomalies, models.Anomaly{
			Type:     models.AnomalyTypeZeroExpenses,
			Message:  "positive income with no recorded expenses",
			Severity: models.AnomalySeverityMedium,
		})
	}

	return anomalies
}

// DetectAnomalies loads the submission and its historical corpus and runs
// both anomaly classes. The output is transient; nothing is persisted.
func (s *anomalyService) DetectAnomalies(ctx context.Context, id uuid.UUID) (*AnomalyResult, error) {
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

	anomalies := append(StatisticalOutliers(sub, history, s.rules), BusinessRuleAnomalies(sub, s.rules)...)
	if anomalies == nil {
		anomalies = []models.Anomaly{}
	}

	s.log.Info("Anomaly detection completed", map[string]interface{}{
		"submission_id": id,
		"history_size":  len(history),
		"anomalies":     len(anomalies),
	})

	return &AnomalyResult{
		Anomalies:    anomalies,
		HasAnomalies: len(anomalies) > 0,
	}, nil
}

// meanStdDev returns the mean and population standard deviation.
func meanStdDev(values []float64) (float64, float64) {
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sumSquares float64
	for _, v := range values {
		d := v - mean
		sumSquares += d * d
	}
	return mean, math.Sqrt(sumSquares / float64(len(values)))
}
