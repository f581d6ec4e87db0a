package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/tutortrack/tutortrack-api/api/swagger"
	"github.com/tutortrack/tutortrack-api/internal/handler"
	"github.com/tutortrack/tutortrack-api/internal/middleware"
	"github.com/tutortrack/tutortrack-api/internal/models"
	"github.com/tutortrack/tutortrack-api/internal/repository"
	"github.com/tutortrack/tutortrack-api/internal/service"
	"github.com/tutortrack/tutortrack-api/pkg/cache"
	"github.com/tutortrack/tutortrack-api/pkg/capture"
	"github.com/tutortrack/tutortrack-api/pkg/config"
	"github.com/tutortrack/tutortrack-api/pkg/database"
	"github.com/tutortrack/tutortrack-api/pkg/export"
	"github.com/tutortrack/tutortrack-api/pkg/genai"
	"github.com/tutortrack/tutortrack-api/pkg/logger"
	corsmiddleware "github.com/tutortrack/tutortrack-api/pkg/middleware/cors"
	reqidmiddleware "github.com/tutortrack/tutortrack-api/pkg/middleware/requestid"
	"github.com/tutortrack/tutortrack-api/pkg/storage"
)

// @title TutorTrack API
// @version 1.0.0
// @description Tutoring session report management engine
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Report slot: a local JSON file by default, a single Postgres row when
	// the deployment already runs a database.
	var slot storage.SlotStore
	switch cfg.Store.Backend {
	case config.StoreBackendPostgres:
		db, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
		}
		defer db.Close() //nolint:errcheck
		slot = repository.NewSQLSlotRepository(db, cfg.Store.SlotName)
	default:
		fileSlot, err := storage.NewFileSlot(cfg.Store.FilePath)
		if err != nil {
			logr.Sugar().Fatalw("failed to open report slot", "error", err)
		}
		slot = fileSlot
	}

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Query.CacheEnabled {
		redisClient, err := cache.Connect(ctx, cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, query cache disabled", "error", err)
		} else {
			defer redisClient.Close() //nolint:errcheck
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Query.CacheTTL, logr, true)
		}
	}

	reportRepo := repository.NewReportRepository(slot, logr)
	querySvc := service.NewQueryService(cacheSvc, cfg.Query.CacheTTL, logr)
	reportSvc := service.NewReportService(reportRepo, querySvc, metricsSvc, logr)

	authSvc := service.NewAuthService(nil, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	location, err := time.LoadLocation(cfg.Export.Timezone)
	if err != nil {
		logr.Sugar().Warnw("unknown export timezone, falling back to UTC", "timezone", cfg.Export.Timezone)
		location = time.UTC
	}
	artifacts, err := storage.NewLocalStorage(cfg.Export.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare export storage", "error", err)
	}
	exportSvc := service.NewExportService(
		reportSvc,
		export.NewCSVExporter(),
		export.NewPDFExporter(cfg.Export.PDFFontPath),
		artifacts,
		storage.NewSignedURLSigner(cfg.Export.SignedURLSecret, cfg.Export.SignedURLTTL),
		service.ExportServiceConfig{
			Location:        location,
			RetentionTTL:    cfg.Export.RetentionTTL,
			CleanupInterval: cfg.Export.CleanupInterval,
		},
		metricsSvc,
		logr,
	)
	go exportSvc.RunCleanup(ctx)

	source, err := capture.NewSpoolSource(cfg.Enrichment.CaptureSpool)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare capture spool", "error", err)
	}
	analyzer := genai.NewClient(genai.Config{
		APIKey:   cfg.Enrichment.GeminiAPIKey,
		Model:    cfg.Enrichment.GeminiModel,
		Endpoint: cfg.Enrichment.GeminiEndpoint,
		Timeout:  cfg.Enrichment.RequestTimeout,
	})
	enrichmentSvc := service.NewEnrichmentService(source, analyzer, cfg.Enrichment.JPEGQuality, metricsSvc, logr)
	enrichmentSvc.Start(ctx)
	defer enrichmentSvc.Stop()

	authHandler := handler.NewAuthHandler(authSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	enrichmentHandler := handler.NewEnrichmentHandler(enrichmentSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/exports/download", exportHandler.Download)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	{
		protected.GET("/reports", reportHandler.List)
		protected.POST("/reports", reportHandler.Create)
		protected.GET("/reports/export", exportHandler.Export)
		protected.PUT("/reports/:id", reportHandler.Update)
		protected.DELETE("/reports/:id", reportHandler.Delete)

		protected.POST("/enrichment/capture", enrichmentHandler.StartCapture)
		protected.POST("/enrichment/snapshot", enrichmentHandler.Snapshot)
		protected.POST("/enrichment/cancel", enrichmentHandler.CancelCapture)
		protected.POST("/enrichment/import", enrichmentHandler.Import)
		protected.POST("/enrichment/analyze", enrichmentHandler.Analyze)
		protected.POST("/enrichment/discard", enrichmentHandler.Discard)
		protected.GET("/enrichment/status", enrichmentHandler.Status)

		admin := protected.Group("/admin")
		admin.Use(middleware.RequireRoles(models.RoleAdmin))
		admin.POST("/exports/cleanup", exportHandler.Cleanup)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting",
		zap.String("addr", addr),
		zap.String("env", cfg.Env),
		zap.String("store_backend", cfg.Store.Backend))
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
