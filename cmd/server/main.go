package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/immowerk/fiskal-api/internal/config"
	"github.com/immowerk/fiskal-api/internal/database"
	"github.com/immowerk/fiskal-api/internal/handlers"
	"github.com/immowerk/fiskal-api/internal/logger"
	"github.com/immowerk/fiskal-api/internal/middleware"
	"github.com/immowerk/fiskal-api/internal/repository"
	"github.com/immowerk/fiskal-api/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env)
	log.Info("Starting Fiskal API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	// Create database connection pool
	ctx := context.Background()
	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", err, map[string]interface{}{
			"host": cfg.Database.Host,
			"port": cfg.Database.Port,
			"name": cfg.Database.Name,
		})
	}
	defer db.Close()

	log.Info("Database connection established", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Name,
		"pool_min": cfg.Database.PoolMin,
		"pool_max": cfg.Database.PoolMax,
	})

	// Apply pending schema migrations
	if cfg.Database.Migrate {
		if err := database.Migrate(ctx, db.Pool, log); err != nil {
			log.Fatal("Failed to apply migrations", err, nil)
		}
	}

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	// Register health check routes
	healthHandler := handlers.NewHealthHandler(db, cfg.Server.Env)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)

	// Initialize repository and service layers
	submissionRepo := repository.NewSubmissionRepository(db.Pool)
	assetRepo := repository.NewAssetRepository(db.Pool)
	auditRepo := repository.NewAuditRepository(db.Pool)

	validationService := services.NewValidationService(submissionRepo, cfg.Rules, log)
	autofixService := services.NewAutoFixService(submissionRepo, auditRepo, validationService, log)
	anomalyService := services.NewAnomalyService(submissionRepo, cfg.Rules, log)
	riskService := services.NewRiskService(submissionRepo, cfg.Rules, log)
	trendService := services.NewTrendService(submissionRepo, cfg.Rules, log)
	depreciationService := services.NewDepreciationService(assetRepo, log, nil)

	// Initialize handlers
	submissionHandler := handlers.NewSubmissionHandler(validationService, autofixService, anomalyService, riskService)
	assetHandler := handlers.NewAssetHandler(depreciationService)
	analysisHandler := handlers.NewAnalysisHandler(trendService)

	// Register API v1 routes
	v1 := router.Group("/api/v1")
	{
		submissions := v1.Group("/submissions")
		{
			submissions.POST("/:id/validate", submissionHandler.Validate)
			submissions.POST("/validate-batch", submissionHandler.ValidateBatch)
			submissions.POST("/:id/fixes", submissionHandler.Fixes)
			submissions.GET("/:id/anomalies", submissionHandler.Anomalies)
			submissions.GET("/:id/risk", submissionHandler.Risk)
		}

		assets := v1.Group("/assets")
		{
			assets.POST("/:id/depreciation-schedule", assetHandler.GenerateSchedule)
			assets.GET("/:id/depreciation-schedule", assetHandler.GetSchedule)
		}
		v1.POST("/depreciation/preview", assetHandler.Preview)

		v1.GET("/analysis/year-comparison", analysisHandler.YearComparison)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
