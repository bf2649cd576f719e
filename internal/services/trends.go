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

// ComparisonResult is the year-over-year picture for one building and form
// type, comparing the earliest against the latest of the requested tax years
// that actually have data.
type ComparisonResult struct {
	FormType    models.FormType          `json:"form_type"`
	BuildingID  *uuid.UUID               `json:"building_id,omitempty"`
	FromYear    int                      `json:"from_year"`
	ToYear      int                      `json:"to_year"`
	Comparisons []models.FieldComparison `json:"comparisons"`
	Trends      []models.FieldComparison `json:"trends"`
	Analysis    string                   `json:"analysis"`
}

// TrendService compares submissions across tax years.
type TrendService interface {
	// CompareYears compares numeric form fields between the earliest and
	// latest of the given tax years. Returns ErrTooFewYears when fewer than
	// two distinct years are requested and ErrNoComparableData when fewer
	// than two of them have submissions.
	CompareYears(ctx context.Context, buildingID *uuid.UUID, formType models.FormType, years []int) (*ComparisonResult, error)
}

// trendService is the concrete implementation of TrendService.
type trendService struct {
	subs  repository.SubmissionRepository
	log   *logger.Logger
	rules config.RulesConfig
}

// NewTrendService creates a new instance of TrendService.
func NewTrendService(subs repository.SubmissionRepository, rules config.RulesConfig, log *logger.Logger) TrendService {
	return &trendService{
		subs:  subs,
		rules: rules,
		log:   log.WithComponent("trends"),
	}
}

// CompareYears loads the submissions for the requested years and diffs the
// numeric fields of the earliest against the latest year present.
func (s *trendService) CompareYears(ctx context.Context, buildingID *uuid.UUID, formType models.FormType, years []int) (*ComparisonResult, error) {
	years = dedupeYears(years)
	if len(years) < 2 {
		return nil, ErrTooFewYears
	}

	subs, err := s.subs.ListByYears(ctx, buildingID, formType, years)
	if err != nil {
		s.log.Error("Failed to load submissions for comparison", err, map[string]interface{}{
			"form_type": formType,
			"years":     years,
		})
		return nil, fmt.Errorf("failed to load submissions for comparison: %w", err)
	}

	// One submission per year; when a year has several, the last loaded
	// wins. The repository orders rows by year then creation time, so that
	// is the most recently created submission.
	byYear := make(map[int]*models.Submission)
	for i := range subs {
		byYear[subs[i].TaxYear] = &subs[i]
	}
	if len(byYear) < 2 {
		return nil, ErrNoComparableData
	}

	present := make([]int, 0, len(byYear))
	for year := range byYear {
		present = append(present, year)
	}
	sort.Ints(present)
	fromYear, toYear := present[0], present[len(present)-1]
	from, to := byYear[fromYear], byYear[toYear]

	comparisons := CompareFields(from, to, s.rules)

	trends := make([]models.FieldComparison, 0)
	for _, c := range comparisons {
		if c.IsTrend {
			trends = append(trends, c)
		}
	}

	result := &ComparisonResult{
		FormType:    formType,
		BuildingID:  buildingID,
		FromYear:    fromYear,
		ToYear:      toYear,
		Comparisons: comparisons,
		Trends:      trends,
		Analysis:    summarize(fromYear, toYear, comparisons, trends),
	}

	s.log.Info("Year comparison completed", map[string]interface{}{
		"form_type": formType,
		"from_year": fromYear,
		"to_year":   toYear,
		"trends":    len(trends),
	})

	return result, nil
}

// CompareFields diffs the numeric fields the two submissions share. Fields
// present in only one year are skipped; a zero base yields a zero percent
// change so a field appearing from nothing never reads as an infinite trend.
func CompareFields(from, to *models.Submission, rules config.RulesConfig) []models.FieldComparison {
	fromFields := from.FormData.NumericFields()
	toFields := to.FormData.NumericFields()

	fields := make([]string, 0, len(fromFields))
	for field := range fromFields {
		if _, ok := toFields[field]; ok {
			fields = append(fields, field)
		}
	}
	sort.Strings(fields)

	comparisons := make([]models.FieldComparison, 0, len(fields))
	for _, field := range fields {
		fromValue := fromFields[field]
		toValue := toFields[field]
		change := toValue - fromValue

		pct := 0.0
		if fromValue != 0 {
			pct = change / math.Abs(fromValue) * 100
		}

		comparisons = append(comparisons, models.FieldComparison{
			Field:         field,
			FromYear:      from.TaxYear,
			ToYear:        to.TaxYear,
			FromValue:     fromValue,
			ToValue:       toValue,
			Change:        roundCents(change),
			ChangePercent: roundCents(pct),
			IsTrend:       math.Abs(pct) > rules.TrendPercent,
		})
	}

	return comparisons
}

func dedupeYears(years []int) []int {
	seen := make(map[int]struct{}, len(years))
	out := make([]int, 0, len(years))
	for _, y := range years {
		if _, ok := seen[y]; ok {
			continue
		}
		seen[y] = struct{}{}
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}

func summarize(fromYear, toYear int, comparisons, trends []models.FieldComparison) string {
	if len(trends) == 0 {
		return fmt.Sprintf("No significant changes between %d and %d across %d compared field(s).", fromYear, toYear, len(comparisons))
	}

	up, down := 0, 0
	for _, t := range trends {
		if t.Change >= 0 {
			up++
		} else {
			down++
		}
	}
	return fmt.Sprintf("%d significant change(s) between %d and %d: %d increasing, %d decreasing, out of %d compared field(s).",
		len(trends), fromYear, toYear, up, down, len(comparisons))
}
