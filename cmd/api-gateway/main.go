package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/courthive/tods-scheduling-api/api/swagger"
	"github.com/courthive/tods-scheduling-api/internal/dto"
	"github.com/courthive/tods-scheduling-api/internal/handler"
	"github.com/courthive/tods-scheduling-api/internal/middleware"
	"github.com/courthive/tods-scheduling-api/internal/repository"
	"github.com/courthive/tods-scheduling-api/internal/service"
	"github.com/courthive/tods-scheduling-api/pkg/cache"
	"github.com/courthive/tods-scheduling-api/pkg/config"
	"github.com/courthive/tods-scheduling-api/pkg/database"
	"github.com/courthive/tods-scheduling-api/pkg/jobs"
	"github.com/courthive/tods-scheduling-api/pkg/logger"
	corsmiddleware "github.com/courthive/tods-scheduling-api/pkg/middleware/cors"
	reqidmiddleware "github.com/courthive/tods-scheduling-api/pkg/middleware/requestid"
)

// @title CourtHive Scheduling API
// @version 1.0.0
// @description Tournament matchUp scheduling engine and host API
// @BasePath /api/v1
// @schemes http

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

	metrics := service.NewMetricsService()

	var cacheService *service.CacheService
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, run audits will not be retrievable", "error", err)
	} else {
		defer redisClient.Close()
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheService = service.NewCacheService(cacheRepo, metrics, cfg.Runs.AuditCacheTTL, logr, true)
	}

	validate := validator.New()

	operatorRepo := repository.NewOperatorRepository(db)
	matchUpRepo := repository.NewMatchUpRepository(db)
	venueRepo := repository.NewVenueRepository(db)
	profileRepo := repository.NewSchedulingProfileRepository(db)
	requestRepo := repository.NewPersonRequestRepository(db)

	authService := service.NewAuthService(operatorRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "tods-scheduling-api",
	})

	schedulingService := service.NewSchedulingService(
		matchUpRepo,
		venueRepo,
		profileRepo,
		requestRepo,
		matchUpRepo,
		metrics,
		cacheService,
		cfg.Runs.AuditCacheTTL,
		validate,
		logr,
		service.SchedulingConfig{
			SlotAttemptCap:         cfg.Scheduler.SlotAttemptCap,
			IterationCap:           cfg.Scheduler.IterationCap,
			PeriodMinutes:          cfg.Scheduler.PeriodMinutes,
			DefaultAverageMinutes:  cfg.Scheduler.DefaultAverageMinutes,
			DefaultRecoveryMinutes: cfg.Scheduler.DefaultRecoveryMinutes,
		},
	)
	profileService := service.NewProfileService(profileRepo, venueRepo, cacheService, validate, logr)
	exportService := service.NewExportService(logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var runQueue *jobs.Queue
	if cfg.Runs.Async {
		runQueue = jobs.NewQueue("scheduling-runs", func(ctx context.Context, job jobs.Job) error {
			req, ok := job.Payload.(dto.RunScheduleRequest)
			if !ok {
				return fmt.Errorf("unexpected payload for job %s", job.ID)
			}
			_, err := schedulingService.Run(ctx, req)
			return err
		}, jobs.QueueConfig{Workers: cfg.Runs.WorkerConcurrency, Logger: logr})
		runQueue.Start(ctx)
		defer runQueue.Stop()
	}

	authHandler := handler.NewAuthHandler(authService)
	schedulingHandler := handler.NewSchedulingHandler(schedulingService, exportService, authService, runQueue)
	profileHandler := handler.NewProfileHandler(profileService, authService)
	resourceHandler := handler.NewResourceHandler(venueRepo, matchUpRepo)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, metrics.Snapshot())
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authService), authHandler.Logout)
		auth.POST("/change-password", middleware.JWT(authService), authHandler.ChangePassword)
		auth.GET("/me", middleware.JWT(authService), authHandler.Me)
	}

	protected := api.Group("", middleware.JWT(authService))
	{
		scheduling := protected.Group("/scheduling")
		{
			scheduling.GET("/runs/:id", schedulingHandler.GetRun)
			scheduling.GET("/runs/:id/export", schedulingHandler.ExportRun)
			scheduling.GET("/profiles", profileHandler.List)
			scheduling.GET("/profiles/:date", profileHandler.Get)

			// Mutating surfaces are closed to read-only roles.
			canRun := scheduling.Group("", middleware.RequireScheduling())
			{
				canRun.POST("/run", schedulingHandler.Run)
				canRun.POST("/annotate", schedulingHandler.Annotate)
				canRun.POST("/grid", schedulingHandler.Grid)
				canRun.PUT("/profiles", profileHandler.Upsert)
				canRun.DELETE("/profiles/:date", profileHandler.Delete)
				canRun.POST("/profiles/:date/run", schedulingHandler.RunForDate)
			}
		}

		protected.GET("/venues", resourceHandler.ListVenues)
		protected.GET("/matchups", resourceHandler.ListMatchUps)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")
	if err := server.Shutdown(context.Background()); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
}
