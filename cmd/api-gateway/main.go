package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/siakad-go/room-booking-api/api/swagger"
	"github.com/siakad-go/room-booking-api/internal/handler"
	"github.com/siakad-go/room-booking-api/internal/middleware"
	"github.com/siakad-go/room-booking-api/internal/models"
	"github.com/siakad-go/room-booking-api/internal/repository"
	"github.com/siakad-go/room-booking-api/internal/service"
	"github.com/siakad-go/room-booking-api/pkg/cache"
	"github.com/siakad-go/room-booking-api/pkg/config"
	"github.com/siakad-go/room-booking-api/pkg/database"
	"github.com/siakad-go/room-booking-api/pkg/logger"
	corsmiddleware "github.com/siakad-go/room-booking-api/pkg/middleware/cors"
	reqidmiddleware "github.com/siakad-go/room-booking-api/pkg/middleware/requestid"
)

// @title Room Booking API
// @version 0.1.0
// @description Room scheduling and conflict-free booking engine
// @BasePath /
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

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, room directory cache disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	bookingRepo := repository.NewBookingRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	refRepo := repository.NewReferenceRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	schedulerSvc := service.NewSchedulerService(bookingRepo, roomRepo, refRepo, metricsSvc, validate, logr,
		service.SchedulerDefaults{SlotMinutes: cfg.Scheduler.DefaultSlotMinutes})
	bookingSvc := service.NewBookingService(bookingRepo, roomRepo, refRepo, metricsSvc, validate, logr,
		service.BookingServiceConfig{FixedSlots: cfg.Scheduler.FixedSlots})
	roomSvc := service.NewRoomService(roomRepo, cacheRepo, logr, cfg.Rooms.CacheTTL)

	schedulerHandler := handler.NewSchedulerHandler(schedulerSvc)
	bookingHandler := handler.NewBookingHandler(bookingSvc)
	roomHandler := handler.NewRoomHandler(roomSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if metricsSvc != nil {
		r.Use(middleware.Metrics(metricsSvc))
	}

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	if metricsSvc != nil {
		r.GET("/metrics", metricsHandler.Prometheus)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	read := api.Group("")
	write := api.Group("")
	if cfg.Auth.Enabled {
		tokenValidator := middleware.NewTokenValidator(cfg.JWT.Secret)
		read.Use(middleware.JWT(tokenValidator))
		write.Use(middleware.JWT(tokenValidator),
			middleware.RequireRoles(models.RoleAdmin, models.RoleScheduler))
	}

	read.GET("/rooms", roomHandler.List)
	read.GET("/rooms/:id", roomHandler.Get)
	read.GET("/bookings", bookingHandler.List)
	read.GET("/bookings/:id", bookingHandler.Get)
	read.POST("/bookings/check", bookingHandler.Check)

	write.POST("/scheduler/suggest", schedulerHandler.Suggest)
	write.POST("/bookings", bookingHandler.Create)
	write.POST("/bookings/bulk", bookingHandler.Bulk)
	write.PUT("/bookings/:id", bookingHandler.Update)
	write.DELETE("/bookings/:id", bookingHandler.Delete)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
