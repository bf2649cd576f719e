package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// preflightMaxAge is how long browsers may cache a preflight response.
const preflightMaxAge = 12 * time.Hour

// CORS restricts cross-origin access to the configured frontend origins.
// The request ID header is both accepted and exposed so the frontend can
// correlate its own traces with server logs.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", RequestIDHeader},
		ExposeHeaders:    []string{RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           preflightMaxAge,
	})
}
