package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/immowerk/fiskal-api/internal/database"
	"github.com/immowerk/fiskal-api/internal/models"
)

// AssetRepository defines the interface for depreciable asset data access.
type AssetRepository interface {
	// GetByID fetches one asset by id.
	// Returns nil, nil if no asset is found (not an error).
	GetByID(ctx context.Context, id uuid.UUID) (*models.DepreciableAsset, error)

	// ReplaceSchedule swaps the asset's entire depreciation schedule in one
	// transaction: old entries are deleted, the new set is inserted, and the
	// asset's remaining value and end year are updated to match the last
	// entry. Either everything lands or nothing does.
	ReplaceSchedule(ctx context.Context, asset *models.DepreciableAsset, entries []models.DepreciationYearEntry) error

	// ListEntries returns the stored schedule for an asset ordered by year.
	ListEntries(ctx context.Context, assetID uuid.UUID) ([]models.DepreciationYearEntry, error)
}

// assetRepository is the concrete implementation of AssetRepository.
type assetRepository struct {
	db database.Querier
}

// NewAssetRepository creates a new instance of AssetRepository.
func NewAssetRepository(db database.Querier) AssetRepository {
	return &assetRepository{db: db}
}

// GetByID queries the database for a single asset.
func (r *assetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.DepreciableAsset, error) {
	query := `
		SELECT
			id,
			building_id,
			description,
			acquisition_cost,
			land_value,
			afa_rate,
			start_year,
			afa_duration_years,
			acquisition_date,
			remaining_value,
			end_year,
			created_at,
			updated_at
		FROM depreciable_assets
		WHERE id = $1
	`

	var asset models.DepreciableAsset
	err := r.db.QueryRow(ctx, query, id).Scan(
		&asset.ID,
		&asset.BuildingID,
		&asset.Description,
		&asset.AcquisitionCost,
		&asset.LandValue,
		&asset.AfaRate,
		&asset.StartYear,
		&asset.AfaDurationYears,
		&asset.AcquisitionDate,
		&asset.RemainingValue,
		&asset.EndYear,
		&asset.CreatedAt,
		&asset.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query asset %s: %w", id, err)
	}

	return &asset, nil
}

// ReplaceSchedule regenerates the stored schedule atomically.
func (r *assetRepository) ReplaceSchedule(ctx context.Context, asset *models.DepreciableAsset, entries []models.DepreciationYearEntry) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin schedule transaction for asset %s: %w", asset.ID, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx,
		`DELETE FROM depreciation_year_entries WHERE asset_id = $1`,
		asset.ID,
	); err != nil {
		return fmt.Errorf("failed to delete old schedule for asset %s: %w", asset.ID, err)
	}

	insert := `
		INSERT INTO depreciation_year_entries (
			asset_id, year, afa_amount, cumulative_afa,
			remaining_value, is_partial_year, partial_months, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for _, e := range entries {
		if _, err := tx.Exec(ctx, insert,
			asset.ID,
			e.Year,
			e.AfaAmount,
			e.CumulativeAfa,
			e.RemainingValue,
			e.IsPartialYear,
			e.PartialMonths,
			e.Status,
		); err != nil {
			return fmt.Errorf("failed to insert schedule year %d for asset %s: %w", e.Year, asset.ID, err)
		}
	}

	if _, err := tx.Exec(ctx,
		`UPDATE depreciable_assets
		 SET remaining_value = $2, end_year = $3, updated_at = now()
		 WHERE id = $1`,
		asset.ID,
		asset.RemainingValue,
		asset.EndYear,
	); err != nil {
		return fmt.Errorf("failed to update asset %s after schedule rebuild: %w", asset.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit schedule for asset %s: %w", asset.ID, err)
	}

	return nil
}

// ListEntries returns the stored schedule for an asset.
func (r *assetRepository) ListEntries(ctx context.Context, assetID uuid.UUID) ([]models.DepreciationYearEntry, error) {
	query := `
		SELECT
			id,
			asset_id,
			year,
			afa_amount,
			cumulative_afa,
			remaining_value,
			is_partial_year,
			partial_months,
			status
		FROM depreciation_year_entries
		WHERE asset_id = $1
		ORDER BY year
	`

	rows, err := r.db.Query(ctx, query, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule for asset %s: %w", assetID, err)
	}
	defer rows.Close()

	var entries []models.DepreciationYearEntry
	for rows.Next() {
		var e models.DepreciationYearEntry
		if err := rows.Scan(
			&e.ID,
			&e.AssetID,
			&e.Year,
			&e.AfaAmount,
			&e.CumulativeAfa,
			&e.RemainingValue,
			&e.IsPartialYear,
			&e.PartialMonths,
			&e.Status,
		); err != nil {
			return nil, fmt.Errorf("failed to scan schedule row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedule rows: %w", err)
	}

	if entries == nil {
		entries = []models.DepreciationYearEntry{}
	}

	return entries, nil
}
