package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/immowerk/fiskal-api/internal/logger"
)

// loggerKey is the gin context key under which the per-request logger lives.
const loggerKey = "logger"

// Logger attaches a request-scoped child logger to the context and emits one
// structured line per request after the handler chain finishes. The log level
// follows the response class: 5xx logs as error, 4xx as warning.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestLogger := log.WithRequestID(GetRequestID(c))
		c.Set(loggerKey, requestLogger)

		c.Next()

		fields := map[string]interface{}{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if query := c.Request.URL.RawQuery; query != "" {
			fields["query"] = query
		}

		status := c.Writer.Status()
		switch {
		case status >= 500:
			if len(c.Errors) > 0 {
				fields["errors"] = c.Errors.String()
			}
			requestLogger.Error("Request completed with server error", nil, fields)
		case status >= 400:
			if len(c.Errors) > 0 {
				fields["errors"] = c.Errors.String()
			}
			requestLogger.Warn("Request completed with client error", fields)
		default:
			requestLogger.Info("Request completed", fields)
		}
	}
}

// GetLogger returns the request-scoped logger, or nil outside the middleware
// chain. Callers fall back to their own logger when nil.
func GetLogger(c *gin.Context) *logger.Logger {
	if v, exists := c.Get(loggerKey); exists {
		if requestLogger, ok := v.(*logger.Logger); ok {
			return requestLogger
		}
	}
	return nil
}
