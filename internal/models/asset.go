package models

import (
	"time"

	"github.com/google/uuid"
)

// EntryStatus classifies a schedule year relative to the current fiscal year.
type EntryStatus string

const (
	EntryStatusBooked  EntryStatus = "BOOKED"
	EntryStatusPlanned EntryStatus = "PLANNED"
)

// DepreciableAsset is a capital asset written off over its useful life.
// Land value is carved out of the acquisition cost and never depreciated.
// RemainingValue and EndYear mirror the last generated schedule entry and
// are rewritten whenever the schedule is regenerated.
type DepreciableAsset struct {
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	AcquisitionDate  time.Time  `json:"acquisition_date"`
	Description      *string    `json:"description,omitempty"`
	BuildingID       *uuid.UUID `json:"building_id,omitempty"`
	AcquisitionCost  float64    `json:"acquisition_cost"`
	LandValue        float64    `json:"land_value"`
	AfaRate          float64    `json:"afa_rate"`
	RemainingValue   float64    `json:"remaining_value"`
	StartYear        int        `json:"start_year"`
	AfaDurationYears int        `json:"afa_duration_years"`
	EndYear          int        `json:"end_year"`
	ID               uuid.UUID  `json:"id"`
}

// DepreciableBase is the amount actually written off: cost minus land.
func (a *DepreciableAsset) DepreciableBase() float64 {
	return a.AcquisitionCost - a.LandValue
}

// DepreciationYearEntry is one fiscal year of an asset's write-off schedule.
// The entry set for an asset is always regenerated as a whole so the amounts
// sum to the depreciable base exactly.
type DepreciationYearEntry struct {
	Status         EntryStatus `json:"status"`
	AssetID        uuid.UUID   `json:"asset_id"`
	Year           int         `json:"year"`
	AfaAmount      float64     `json:"afa_amount"`
	CumulativeAfa  float64     `json:"cumulative_afa"`
	RemainingValue float64     `json:"remaining_value"`
	PartialMonths  int         `json:"partial_months"`
	IsPartialYear  bool        `json:"is_partial_year"`
	ID             int64       `json:"id,omitempty"`
}
