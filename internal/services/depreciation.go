package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/immowerk/fiskal-api/internal/logger"
	"github.com/immowerk/fiskal-api/internal/models"
	"github.com/immowerk/fiskal-api/internal/repository"
)

const monthsPerYear = 12

// ScheduleResult is the outcome of a schedule generation: the regenerated
// entries and the asset with its remaining value and end year updated.
type ScheduleResult struct {
	Asset   *models.DepreciableAsset       `json:"asset"`
	Entries []models.DepreciationYearEntry `json:"entries"`
}

// DepreciationService computes and persists AfA write-off schedules.
type DepreciationService interface {
	// PreviewSchedule computes a schedule for a caller-provided asset
	// without touching storage. Returns ErrInvalidAsset on precondition
	// violations.
	PreviewSchedule(asset *models.DepreciableAsset) ([]models.DepreciationYearEntry, error)

	// GenerateSchedule rebuilds and persists the schedule for a stored
	// asset, replacing any prior entries wholesale. Returns
	// ErrAssetNotFound or ErrInvalidAsset.
	GenerateSchedule(ctx context.Context, assetID uuid.UUID) (*ScheduleResult, error)

	// GetSchedule returns the stored schedule for an asset. Returns
	// ErrAssetNotFound.
	GetSchedule(ctx context.Context, assetID uuid.UUID) (*ScheduleResult, error)
}

// depreciationService is the concrete implementation of DepreciationService.
type depreciationService struct {
	assets repository.AssetRepository
	log    *logger.Logger
	now    func() time.Time
}

// NewDepreciationService creates a new instance of DepreciationService.
// A nil now falls back to time.Now; tests inject a fixed clock.
func NewDepreciationService(assets repository.AssetRepository, log *logger.Logger, now func() time.Time) DepreciationService {
	if now == nil {
		now = time.Now
	}
	return &depreciationService{
		assets: assets,
		log:    log.WithComponent("depreciation"),
		now:    now,
	}
}

// BuildSchedule computes the year-by-year write-off schedule for an asset.
// The first year is pro-rated by acquisition month, every amount is rounded
// to cents per year, the final year is clamped to the remaining book value,
// and iteration stops once the asset is fully written off. The amounts sum
// to the depreciable base exactly.
func BuildSchedule(asset *models.DepreciableAsset, now time.Time) ([]models.DepreciationYearEntry, error) {
	if asset.AfaDurationYears <= 0 {
		return nil, fmt.Errorf("%w: afa_duration_years must be positive, got %d",
			ErrInvalidAsset, asset.AfaDurationYears)
	}
	if asset.AcquisitionCost <= asset.LandValue {
		return nil, fmt.Errorf("%w: acquisition cost %.2f must exceed land value %.2f",
			ErrInvalidAsset, asset.AcquisitionCost, asset.LandValue)
	}

	base := asset.DepreciableBase()
	yearlyAfa := base * asset.AfaRate / 100
	currentYear := now.Year()

	// Months from the acquisition month (inclusive) through December.
	partialMonths := 13 - int(asset.AcquisitionDate.Month())

	var entries []models.DepreciationYearEntry
	cumulative := 0.0
	remaining := base

	// The schedule covers start_year through start_year + duration
	// inclusive: the trailing year absorbs what the pro-rated first year
	// left over.
	for offset := 0; offset <= asset.AfaDurationYears; offset++ {
		year := asset.StartYear + offset

		amount := yearlyAfa
		isPartial := false
		months := monthsPerYear
		if offset == 0 && partialMonths < monthsPerYear {
			amount = yearlyAfa * float64(partialMonths) / monthsPerYear
			isPartial = true
			months = partialMonths
		}

		// Never depreciate below zero.
		if amount > remaining {
			amount = remaining
		}
		amount = roundCents(amount)

		cumulative = roundCents(cumulative + amount)
		remaining = roundCents(remaining - amount)

		status := models.EntryStatusPlanned
		if year <= currentYear {
			status = models.EntryStatusBooked
		}

		entries = append(entries, models.DepreciationYearEntry{
			AssetID:        asset.ID,
			Year:           year,
			AfaAmount:      amount,
			CumulativeAfa:  cumulative,
			RemainingValue: remaining,
			IsPartialYear:  isPartial,
			PartialMonths:  months,
			Status:         status,
		})

		if remaining <= 0 {
			break
		}
	}

	return entries, nil
}

// PreviewSchedule computes a schedule without persistence.
func (s *depreciationService) PreviewSchedule(asset *models.DepreciableAsset) ([]models.DepreciationYearEntry, error) {
	entries, err := BuildSchedule(asset, s.now())
	if err != nil {
		s.log.Warn("Rejected asset for schedule preview", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}
	return entries, nil
}

// GenerateSchedule rebuilds the stored schedule for an asset. Regeneration
// is idempotent: identical asset data yields identical entries, and the old
// entry set is replaced in the same transaction that updates the asset.
func (s *depreciationService) GenerateSchedule(ctx context.Context, assetID uuid.UUID) (*ScheduleResult, error) {
	asset, err := s.assets.GetByID(ctx, assetID)
	if err != nil {
		s.log.Error("Failed to load asset", err, map[string]interface{}{
			"asset_id": assetID,
		})
		return nil, fmt.Errorf("failed to load asset: %w", err)
	}
	if asset == nil {
		return nil, ErrAssetNotFound
	}

	entries, err := BuildSchedule(asset, s.now())
	if err != nil {
		s.log.Warn("Rejected asset for schedule generation", map[string]interface{}{
			"asset_id": assetID,
			"error":    err.Error(),
		})
		return nil, err
	}

	last := entries[len(entries)-1]
	asset.RemainingValue = last.RemainingValue
	asset.EndYear = last.Year

	if err := s.assets.ReplaceSchedule(ctx, asset, entries); err != nil {
		s.log.Error("Failed to persist schedule", err, map[string]interface{}{
			"asset_id": assetID,
		})
		return nil, fmt.Errorf("failed to persist schedule: %w", err)
	}

	s.log.Info("Schedule regenerated", map[string]interface{}{
		"asset_id": assetID,
		"years":    len(entries),
		"end_year": asset.EndYear,
	})

	return &ScheduleResult{Asset: asset, Entries: entries}, nil
}

// GetSchedule returns the asset together with its stored entries.
func (s *depreciationService) GetSchedule(ctx context.Context, assetID uuid.UUID) (*ScheduleResult, error) {
	asset, err := s.assets.GetByID(ctx, assetID)
	if err != nil {
		s.log.Error("Failed to load asset", err, map[string]interface{}{
			"asset_id": assetID,
		})
		return nil, fmt.Errorf("failed to load asset: %w", err)
	}
	if asset == nil {
		return nil, ErrAssetNotFound
	}

	entries, err := s.assets.ListEntries(ctx, assetID)
	if err != nil {
		s.log.Error("Failed to load schedule entries", err, map[string]interface{}{
			"asset_id": assetID,
		})
		return nil, fmt.Errorf("failed to load schedule entries: %w", err)
	}

	return &ScheduleResult{Asset: asset, Entries: entries}, nil
}

// roundCents rounds a monetary amount to 2 decimal places.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
