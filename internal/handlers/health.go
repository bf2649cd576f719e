package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/immowerk/fiskal-api/internal/database"
	"github.com/immowerk/fiskal-api/internal/middleware"
)

const (
	// APIVersion is the current version of the API.
	APIVersion = "0.1.0"
	// HealthCheckTimeout bounds the database ping in the readiness check.
	HealthCheckTimeout = 2 * time.Second
)

// HealthHandler serves liveness, readiness and API info endpoints.
type HealthHandler struct {
	db        *database.Database
	startTime time.Time
	env       string
}

// NewHealthHandler creates a new HealthHandler instance.
func NewHealthHandler(db *database.Database, env string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		startTime: time.Now(),
		env:       env,
	}
}

// LivenessResponse is the liveness check body.
type LivenessResponse struct {
	Status string `json:"status"`
}

// ReadinessResponse is the readiness check body.
type ReadinessResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// InfoResponse is the API metadata body.
type InfoResponse struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
	Uptime      string `json:"uptime"`
}

// Health handles GET /health. Pure liveness: no dependencies touched.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, LivenessResponse{Status: "healthy"})
}

// Ready handles GET /health/ready. The instance is ready only when the
// database answers a ping within the timeout; otherwise 503 so load
// balancers stop routing here.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), HealthCheckTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		if log := middleware.GetLogger(c); log != nil {
			log.Error("Database health check failed", err, map[string]interface{}{
				"timeout": HealthCheckTimeout.String(),
			})
		}
		c.JSON(http.StatusServiceUnavailable, ReadinessResponse{
			Status:   "not_ready",
			Database: "disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, ReadinessResponse{
		Status:   "ready",
		Database: "connected",
	})
}

// Info handles GET /api/v1/info.
func (h *HealthHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, InfoResponse{
		Version:     APIVersion,
		Environment: h.env,
		Uptime:      formatUptime(time.Since(h.startTime)),
	})
}

// formatUptime renders a duration as "1d 2h 3m 4s", dropping the day part
// when zero.
func formatUptime(d time.Duration) string {
	total := int(d.Seconds())
	seconds := total % 60
	minutes := (total / 60) % 60
	hours := (total / 3600) % 24
	days := total / 86400

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}
