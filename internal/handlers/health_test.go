package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler_Health(t *testing.T) {
	// Health check does not touch the database.
	handler := &HealthHandler{
		db:        nil,
		startTime: time.Now(),
		env:       "test",
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", handler.Health)

	req, err := http.NewRequest(http.MethodGet, "/health", nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response LivenessResponse
	err = json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "healthy", response.Status)
}

func TestHealthHandler_Info(t *testing.T) {
	handler := &HealthHandler{
		db:        nil,
		startTime: time.Now().Add(-90 * time.Minute),
		env:       "test",
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/v1/info", handler.Info)

	req, err := http.NewRequest(http.MethodGet, "/api/v1/info", nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response InfoResponse
	err = json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, APIVersion, response.Version)
	assert.Equal(t, "test", response.Environment)
	assert.Contains(t, response.Uptime, "1h 30m")
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{
			name:     "minutes and seconds",
			duration: 5*time.Minute + 30*time.Second,
			expected: "0h 5m 30s",
		},
		{
			name:     "hours",
			duration: 3*time.Hour + 15*time.Minute,
			expected: "3h 15m 0s",
		},
		{
			name:     "days",
			duration: 49*time.Hour + 2*time.Minute,
			expected: "2d 1h 2m 0s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatUptime(tt.duration))
		})
	}
}
