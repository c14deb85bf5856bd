package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/schoolrun/bus-tracking/internal/api/handler"
	"github.com/schoolrun/bus-tracking/internal/api/middleware"
	"github.com/schoolrun/bus-tracking/internal/core/domain"
	"github.com/schoolrun/bus-tracking/internal/core/ports"
	"github.com/schoolrun/bus-tracking/internal/core/service"
	"github.com/schoolrun/bus-tracking/internal/infrastructure/config"
	mongodb "github.com/schoolrun/bus-tracking/internal/infrastructure/db/mongo"
	redisdb "github.com/schoolrun/bus-tracking/internal/infrastructure/db/redis"
	"github.com/schoolrun/bus-tracking/internal/ws"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// recorder may be nil (track-point auditing disabled).
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, recorder ports.TrackRecorder, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("tracking"))

	// --- Dependencies ---
	runRepo := mongodb.NewRunRepository(db)
	stopRepo := mongodb.NewStopRepository(db)
	driverRepo := mongodb.NewDriverRepository(db)
	cache := redisdb.NewPositionCache(rdb)

	authService := service.NewAuthService(driverRepo, cfg.JWTSecret, 24*time.Hour)
	runService := service.NewRunService(runRepo, cache, log)
	trackerService := service.NewTrackerService(
		runRepo, stopRepo, cache, recorder,
		cfg.DefaultSpeedKmh, cfg.AlertThresholdM, log,
	)

	hub := ws.NewHub(log)
	sessionHandler := ws.NewSessionHandler(hub, runRepo, trackerService, cfg.JWTSecret, log)

	authHandler := handler.NewAuthHandler(authService)
	runHandler := handler.NewRunHandler(runService)
	authMiddleware := middleware.Auth(cfg.JWTSecret)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)

	// --- Run lifecycle + live position ---
	v1 := e.Group("/v1", authMiddleware)
	v1.GET("/runs/:id", runHandler.Get, middleware.RBAC(domain.RoleDriver, domain.RoleDispatcher))
	v1.GET("/runs/:id/position", runHandler.Position, middleware.RBAC(domain.RoleDriver, domain.RoleDispatcher))
	v1.POST("/runs/:id/start", runHandler.Start, middleware.RBAC(domain.RoleDriver))
	v1.POST("/runs/:id/finish", runHandler.Finish, middleware.RBAC(domain.RoleDriver))

	// --- GPS stream (identity resolved inside the session handshake) ---
	e.GET("/ws/gps/:id", sessionHandler.GPSSocket)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
