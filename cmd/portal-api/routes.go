package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/student-portal-api/internal/handler"
	"github.com/noah-isme/student-portal-api/internal/middleware"
	"github.com/noah-isme/student-portal-api/internal/models"
	"github.com/noah-isme/student-portal-api/internal/service"
	"github.com/noah-isme/student-portal-api/pkg/config"
	"github.com/noah-isme/student-portal-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/student-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/student-portal-api/pkg/middleware/requestid"
)

type routerDeps struct {
	tokens    middleware.TokenValidator
	metrics   *service.MetricsService
	calendar  *handler.CalendarHandler
	academic  *handler.AcademicDayHandler
	timetable *handler.TimetableHandler
	community *handler.CommunityHandler
	ops       *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", deps.ops.Health)
	r.GET("/ready", deps.ops.Ready)
	r.GET("/metrics", deps.ops.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(deps.tokens))
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	events := api.Group("/calendar-events")
	events.GET("", deps.calendar.List)
	events.GET("/:id", deps.calendar.Get)
	events.POST("", adminOnly, middleware.Audit(logr, "create", "calendar_event"), deps.calendar.Create)
	events.PUT("/:id", adminOnly, middleware.Audit(logr, "update", "calendar_event"), deps.calendar.Update)
	events.DELETE("/:id", adminOnly, middleware.Audit(logr, "delete", "calendar_event"), deps.calendar.Delete)

	days := api.Group("/academic-days")
	days.GET("", deps.academic.Range)
	days.GET("/today", deps.academic.Today)
	days.GET("/export", deps.academic.Export)
	days.GET("/:date", deps.academic.Day)

	timetable := api.Group("/timetable")
	timetable.GET("", deps.timetable.List)
	timetable.GET("/day", deps.timetable.Day)
	timetable.POST("", deps.timetable.Create)
	timetable.DELETE("/:id", deps.timetable.Delete)

	threads := api.Group("/threads")
	threads.GET("", deps.community.List)
	threads.POST("", deps.community.Create)
	threads.GET("/unread-count", deps.community.UnreadCount)
	threads.GET("/:id", deps.community.Get)
	threads.POST("/:id/replies", deps.community.Reply)
	threads.POST("/:id/read", deps.community.MarkRead)
	threads.PUT("/:id/pin", adminOnly, middleware.Audit(logr, "pin", "thread"), deps.community.Pin)

	api.GET("/metrics/summary", adminOnly, deps.ops.Snapshot)

	return r
}
