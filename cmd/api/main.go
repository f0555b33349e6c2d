package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/classroll/attendance-api/internal/handler"
	"github.com/classroll/attendance-api/internal/middleware"
	"github.com/classroll/attendance-api/internal/repository"
	"github.com/classroll/attendance-api/internal/service"
	"github.com/classroll/attendance-api/pkg/cache"
	"github.com/classroll/attendance-api/pkg/config"
	"github.com/classroll/attendance-api/pkg/database"
	"github.com/classroll/attendance-api/pkg/logger"
	corsmiddleware "github.com/classroll/attendance-api/pkg/middleware/cors"
	reqidmiddleware "github.com/classroll/attendance-api/pkg/middleware/requestid"
	"github.com/classroll/attendance-api/pkg/response"

	"go.uber.org/zap"
)

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, cfg.Database.MigrationsDir); err != nil {
		logr.Fatal("failed to apply migrations", zap.Error(err))
	}
	if version, err := database.MigrationVersion(ctx, db); err == nil {
		logr.Info("database ready", zap.Int64("schema_version", version))
	}

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, summary cache disabled", zap.Error(err))
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Summary.CacheTTL, logr, cfg.Summary.CacheEnabled)
			defer cacheRepo.Close()
		}
	}

	validate := validator.New()

	teacherRepo := repository.NewTeacherRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)

	authSvc := service.NewAuthService(teacherRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	studentSvc := service.NewStudentService(studentRepo, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, cacheSvc, metricsSvc, validate, logr)
	reportSvc := service.NewReportService(attendanceRepo, studentRepo, cacheSvc, logr)
	seedSvc := service.NewSeedService(teacherRepo, studentRepo, attendanceRepo, cacheSvc, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	seedHandler := handler.NewSeedHandler(seedSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

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
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/register-teacher", authHandler.RegisterTeacher)
	auth.POST("/login", authHandler.Login)

	guarded := api.Group("")
	guarded.Use(middleware.JWT(authSvc))
	guarded.POST("/students", studentHandler.BulkUpsert)
	guarded.GET("/students", studentHandler.List)
	guarded.POST("/attendance/mark", attendanceHandler.Mark)
	guarded.GET("/reports/summary", reportHandler.Summary)
	guarded.GET("/reports/summary/export", reportHandler.Export)

	if cfg.Seed.Enabled {
		api.POST("/dev/seed", seedHandler.Seed)
	}

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
