package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/smp-yps/assignment-api/api/swagger"
	"github.com/smp-yps/assignment-api/internal/handler"
	"github.com/smp-yps/assignment-api/internal/middleware"
	"github.com/smp-yps/assignment-api/internal/models"
	"github.com/smp-yps/assignment-api/internal/repository"
	"github.com/smp-yps/assignment-api/internal/service"
	"github.com/smp-yps/assignment-api/pkg/cache"
	"github.com/smp-yps/assignment-api/pkg/config"
	"github.com/smp-yps/assignment-api/pkg/database"
	"github.com/smp-yps/assignment-api/pkg/logger"
	corsmiddleware "github.com/smp-yps/assignment-api/pkg/middleware/cors"
	reqidmiddleware "github.com/smp-yps/assignment-api/pkg/middleware/requestid"
	"github.com/smp-yps/assignment-api/pkg/whatsapp"
)

// @title Assignment Tracking API
// @version 1.0.0
// @description Weekly assignment quota tracking with WhatsApp grading reminders
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	validate := validator.New()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	classRepo := repository.NewClassRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	reminderRepo := repository.NewReminderLogRepository(db)

	// Cache is optional; the API runs without Redis.
	var cacheSvc *service.CacheService
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, running without cache", "error", err)
		} else {
			defer redisClient.Close()
			cacheSvc = service.NewCacheService(redisClient, cfg.Cache.TTL, logr)
		}
	}

	// Services.
	auditSvc := service.NewAuditService(auditRepo, logr)
	quotaSvc := service.NewQuotaService(settingRepo, assignmentRepo, logr)
	settingSvc := service.NewSettingService(settingRepo, auditSvc, validate, logr)
	classSvc := service.NewClassService(classRepo, userRepo, cacheSvc, auditSvc, validate, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, classRepo, quotaSvc, auditSvc, validate, logr)
	authSvc := service.NewAuthService(userRepo, auditSvc, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
	})
	metricsSvc := service.NewMetricsService()
	reportSvc := service.NewReportService(assignmentRepo, nil, nil, logr, cfg.School.DisplayName)

	var messenger service.Messenger
	if client := whatsapp.NewClient(cfg.Twilio); client != nil {
		messenger = client
	} else {
		logr.Warn("twilio credentials not configured, whatsapp reminders disabled")
	}
	reminderSvc := service.NewReminderService(assignmentRepo, reminderRepo, messenger, auditSvc, logr, cfg.School.DisplayName)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc, metricsSvc)
	classHandler := handler.NewClassHandler(classSvc, metricsSvc)
	settingHandler := handler.NewSettingHandler(settingSvc)
	auditHandler := handler.NewAuditHandler(auditSvc)
	reminderHandler := handler.NewReminderHandler(reminderSvc, metricsSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

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
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Scrape)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
	auth.POST("/register", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin), authHandler.Register)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))

	protected.POST("/assignments", assignmentHandler.Create)
	protected.GET("/assignments", assignmentHandler.List)
	protected.PUT("/assignments/grade", assignmentHandler.UpdateGradeStatus)
	protected.GET("/classes", classHandler.List)

	admin := protected.Group("")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))
	admin.POST("/classes", classHandler.Create)
	admin.GET("/settings", settingHandler.List)
	admin.PUT("/settings", settingHandler.Upsert)
	admin.GET("/audit-logs", auditHandler.List)
	admin.POST("/reminders", reminderHandler.Send)
	admin.GET("/reminders", reminderHandler.SendAll)
	admin.GET("/reports/ungraded", reportHandler.Ungraded)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var scheduler *service.ReminderScheduler
	if cfg.Reminders.Enabled && cfg.Reminders.SchedulerEnabled {
		scheduler = service.NewReminderScheduler(reminderSvc, cfg.Reminders, logr)
		scheduler.Start(ctx)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("graceful shutdown failed", "error", err)
	}
	if scheduler != nil {
		scheduler.Stop()
	}
}
