package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apierrors "github.com/immowerk/fiskal-api/internal/errors"
	"github.com/immowerk/fiskal-api/internal/models"
	"github.com/immowerk/fiskal-api/internal/services"
)

// AnalysisHandler handles cross-submission analysis HTTP requests.
type AnalysisHandler struct {
	trends services.TrendService
}

// NewAnalysisHandler creates a new AnalysisHandler instance.
func NewAnalysisHandler(trends services.TrendService) *AnalysisHandler {
	return &AnalysisHandler{
		trends: trends,
	}
}

// YearComparisonRequest represents the query parameters for the
// year-comparison endpoint. Years arrive comma-separated.
type YearComparisonRequest struct {
	FormType   string `form:"form_type" binding:"required"`
	Years      string `form:"years" binding:"required"`
	BuildingID string `form:"building_id"`
}

// YearComparison handles GET /api/v1/analysis/year-comparison.
func (h *AnalysisHandler) YearComparison(c *gin.Context) {
	var req YearComparisonRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		apierrors.BadRequest(c, "form_type and years query parameters are required", nil)
		return
	}

	formType := models.FormType(req.FormType)
	if !formType.Valid() {
		apierrors.InvalidArgument(c, "Unknown form_type")
		return
	}

	years, err := parseYears(req.Years)
	if err != nil {
		apierrors.InvalidArgument(c, err.Error())
		return
	}

	var buildingID *uuid.UUID
	if req.BuildingID != "" {
		id, err := uuid.Parse(req.BuildingID)
		if err != nil {
			apierrors.InvalidArgument(c, "building_id must be a valid UUID")
			return
		}
		buildingID = &id
	}

	result, err := h.trends.CompareYears(c.Request.Context(), buildingID, formType, years)
	if err != nil {
		if errors.Is(err, services.ErrTooFewYears) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		if errors.Is(err, services.ErrNoComparableData) {
			apierrors.NotFound(c, err.Error())
			return
		}
		apierrors.InternalServerError(c, "Failed to compare years", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// parseYears splits a comma-separated year list.
func parseYears(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	years := make([]int, 0, len(parts))
	for _, part := range parts {
		year, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, errors.New("years must be a comma-separated list of integers")
		}
		years = append(years, year)
	}
	return years, nil
}
