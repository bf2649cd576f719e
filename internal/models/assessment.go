package models

// FixProposal is one engine-proposed correction to a form-data defect.
// Only auto-fixable proposals are ever applied without human review.
type FixProposal struct {
	OldValue    any    `json:"old_value"`
	NewValue    any    `json:"new_value"`
	Field       string `json:"field"`
	Reason      string `json:"reason"`
	AutoFixable bool   `json:"auto_fixable"`
}

// AnomalySeverity grades a detected anomaly.
type AnomalySeverity string

const (
	AnomalySeverityMedium AnomalySeverity = "MEDIUM"
	AnomalySeverityHigh   AnomalySeverity = "HIGH"
)

// Anomaly types distinguish statistical outliers from the fixed business
// checks that run regardless of historical data.
const (
	AnomalyTypeStatisticalOutlier = "STATISTICAL_OUTLIER"
	AnomalyTypeExpenseRatio       = "EXPENSE_RATIO"
	AnomalyTypeZeroExpenses       = "ZERO_EXPENSES"
)

// Anomaly is one flagged deviation on a submission. Statistical anomalies
// carry the baseline the z-score was computed against; business-rule
// anomalies leave those fields zero.
type Anomaly struct {
	Type     string          `json:"type"`
	Field    string          `json:"field,omitempty"`
	Message  string          `json:"message"`
	Severity AnomalySeverity `json:"severity"`
	Value    float64         `json:"value,omitempty"`
	Mean     float64         `json:"mean,omitempty"`
	StdDev   float64         `json:"std_dev,omitempty"`
	ZScore   float64         `json:"z_score,omitempty"`
}

// RiskLevel buckets a risk score.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "LOW"
	RiskLevelMedium RiskLevel = "MEDIUM"
	RiskLevelHigh   RiskLevel = "HIGH"
)

// RiskFactor is one additive contribution to the risk score. Impacts are
// never negative; no finding reduces risk.
type RiskFactor struct {
	Factor string  `json:"factor"`
	Impact float64 `json:"impact"`
}

// RiskAssessment is the aggregated risk picture for a submission,
// recomputed fresh on every request.
type RiskAssessment struct {
	RiskLevel      RiskLevel    `json:"risk_level"`
	Recommendation string       `json:"recommendation"`
	RiskFactors    []RiskFactor `json:"risk_factors"`
	RiskScore      float64      `json:"risk_score"`
}

// FieldComparison is the year-over-year trend record for one numeric field,
// comparing the earliest against the latest of the selected tax years.
type FieldComparison struct {
	Field         string  `json:"field"`
	FromYear      int     `json:"from_year"`
	ToYear        int     `json:"to_year"`
	FromValue     float64 `json:"from_value"`
	ToValue       float64 `json:"to_value"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	IsTrend       bool    `json:"is_trend"`
}
