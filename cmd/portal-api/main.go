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
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/student-portal-api/api/swagger"
	"github.com/noah-isme/student-portal-api/internal/expiry"
	"github.com/noah-isme/student-portal-api/internal/handler"
	"github.com/noah-isme/student-portal-api/internal/repository"
	"github.com/noah-isme/student-portal-api/internal/service"
	"github.com/noah-isme/student-portal-api/pkg/cache"
	"github.com/noah-isme/student-portal-api/pkg/config"
	"github.com/noah-isme/student-portal-api/pkg/database"
	"github.com/noah-isme/student-portal-api/pkg/export"
	"github.com/noah-isme/student-portal-api/pkg/jobs"
	"github.com/noah-isme/student-portal-api/pkg/logger"
)

// @title Student Portal API
// @version 1.0.0
// @description Academic calendar, timetable and community board for the student portal.
// @BasePath /api/v1
// @schemes http https
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()
	checks := map[string]handler.Pinger{"postgres": db}

	var (
		redisClient *redis.Client
		cacheRepo   service.CacheRepository
	)
	if cfg.Calendar.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, academic day cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
			checks["redis"] = cache.Probe{Client: redisClient}
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Calendar.CacheTTL, logr, cacheRepo != nil)

	invalidator := service.NewCacheInvalidator(cacheSvc, logr)
	invalidationQueue := jobs.NewQueue("cache-invalidation", invalidator.Handle, jobs.QueueConfig{
		Workers:    cfg.Workers.InvalidationWorkers,
		MaxRetries: cfg.Workers.InvalidationRetries,
		Logger:     logr,
	})
	invalidationQueue.Start(ctx)
	defer invalidationQueue.Stop()
	invalidator.Attach(invalidationQueue)

	validate := validator.New()
	calendarRepo := repository.NewCalendarRepository(db)
	threadRepo := repository.NewThreadRepository(db)
	engine := expiry.NewEngine(expiry.Policy{
		ThreadTTL:       cfg.Community.ThreadTTL,
		PinnedThreadTTL: cfg.Community.PinnedThreadTTL,
		ReplyTTL:        cfg.Community.ReplyTTL,
	}, nil)

	calendarSvc := service.NewCalendarService(calendarRepo, invalidator, validate, logr)
	academicSvc := service.NewAcademicDayService(service.AcademicDayServiceParams{
		Events:   calendarRepo,
		Cache:    cacheSvc,
		Renderer: export.NewRenderer(),
		Metrics:  metricsSvc,
		Logger:   logr,
		Config: service.AcademicDayConfig{
			Location:     cfg.Calendar.Location(),
			MaxRangeDays: cfg.Calendar.MaxRangeDays,
			CacheTTL:     cfg.Calendar.CacheTTL,
		},
	})
	timetableSvc := service.NewTimetableService(repository.NewTimetableRepository(db), calendarRepo, validate, logr)
	communitySvc := service.NewCommunityService(service.CommunityServiceParams{
		Threads:   threadRepo,
		Replies:   repository.NewReplyRepository(db),
		Reads:     repository.NewThreadReadRepository(db),
		Engine:    engine,
		Validator: validate,
		Logger:    logr,
	})

	sweeper := service.NewExpirySweeper(threadRepo, metricsSvc, engine, logr)
	if _, err := sweeper.Schedule(cfg.Community.ExpirySweepInterval); err != nil {
		logr.Fatal("failed to schedule expiry sweep", zap.Error(err))
	}
	if _, err := sweeper.Sweep(ctx); err != nil {
		logr.Warn("initial expiry sweep failed", zap.Error(err))
	}
	sweeper.Start()
	defer sweeper.Stop()

	tokens := service.NewTokenValidator(service.TokenConfig{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
	})

	router := newRouter(cfg, logr, routerDeps{
		tokens:    tokens,
		metrics:   metricsSvc,
		calendar:  handler.NewCalendarHandler(calendarSvc),
		academic:  handler.NewAcademicDayHandler(academicSvc),
		timetable: handler.NewTimetableHandler(timetableSvc, cfg.Calendar.Location()),
		community: handler.NewCommunityHandler(communitySvc),
		ops:       handler.NewMetricsHandler(metricsSvc, checks),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}
