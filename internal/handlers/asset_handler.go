package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	apierrors "github.com/immowerk/fiskal-api/internal/errors"
	"github.com/immowerk/fiskal-api/internal/models"
	"github.com/immowerk/fiskal-api/internal/services"
)

// acquisitionDateLayout is the wire format of acquisition dates.
const acquisitionDateLayout = "2006-01-02"

// AssetHandler handles depreciation schedule HTTP requests.
type AssetHandler struct {
	depreciation services.DepreciationService
}

// NewAssetHandler creates a new AssetHandler instance.
func NewAssetHandler(depreciation services.DepreciationService) *AssetHandler {
	return &AssetHandler{
		depreciation: depreciation,
	}
}

// PreviewRequest carries the asset parameters for an ad-hoc schedule
// computation that never touches storage.
type PreviewRequest struct {
	AcquisitionDate  string  `json:"acquisition_date" binding:"required"`
	AcquisitionCost  float64 `json:"acquisition_cost" binding:"required,gt=0"`
	LandValue        float64 `json:"land_value" binding:"min=0"`
	AfaRate          float64 `json:"afa_rate" binding:"required,gt=0"`
	StartYear        int     `json:"start_year" binding:"required,min=1900"`
	AfaDurationYears int     `json:"afa_duration_years" binding:"required"`
}

// PreviewResponse is the computed schedule for a preview request.
type PreviewResponse struct {
	Entries []models.DepreciationYearEntry `json:"entries"`
}

// GenerateSchedule handles POST /api/v1/assets/:id/depreciation-schedule.
// It recomputes the asset's schedule from scratch and replaces the stored
// entries atomically.
func (h *AssetHandler) GenerateSchedule(c *gin.Context) {
	id, ok := assetID(c)
	if !ok {
		return
	}

	result, err := h.depreciation.GenerateSchedule(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrAssetNotFound) {
			apierrors.NotFound(c, "Asset not found")
			return
		}
		if errors.Is(err, services.ErrInvalidAsset) {
			apierrors.InvalidAsset(c, err.Error())
			return
		}
		apierrors.InternalServerError(c, "Failed to generate depreciation schedule", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSchedule handles GET /api/v1/assets/:id/depreciation-schedule.
func (h *AssetHandler) GetSchedule(c *gin.Context) {
	id, ok := assetID(c)
	if !ok {
		return
	}

	result, err := h.depreciation.GetSchedule(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrAssetNotFound) {
			apierrors.NotFound(c, "Asset not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to load depreciation schedule", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Preview handles POST /api/v1/depreciation/preview.
// The schedule is computed for the request payload only; nothing is stored.
func (h *AssetHandler) Preview(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	acquired, err := time.Parse(acquisitionDateLayout, req.AcquisitionDate)
	if err != nil {
		apierrors.InvalidArgument(c, "acquisition_date must be in YYYY-MM-DD format")
		return
	}

	asset := &models.DepreciableAsset{
		AcquisitionCost:  req.AcquisitionCost,
		LandValue:        req.LandValue,
		AfaRate:          req.AfaRate,
		StartYear:        req.StartYear,
		AfaDurationYears: req.AfaDurationYears,
		AcquisitionDate:  acquired,
	}

	entries, err := h.depreciation.PreviewSchedule(asset)
	if err != nil {
		if errors.Is(err, services.ErrInvalidAsset) {
			apierrors.InvalidAsset(c, err.Error())
			return
		}
		apierrors.InternalServerError(c, "Failed to compute depreciation schedule", err)
		return
	}

	c.JSON(http.StatusOK, PreviewResponse{Entries: entries})
}

// assetID parses the :id path parameter, writing the error response itself
// when the id is malformed.
func assetID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.InvalidArgument(c, "Asset id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}
