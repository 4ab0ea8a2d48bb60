package main

import (
	"tipmap-service/internal/handler"
	"tipmap-service/internal/middleware"
	"tipmap-service/pkg/config"
	"tipmap-service/pkg/database"
	"tipmap-service/pkg/jwtutil"
	"tipmap-service/pkg/logger"
	"tipmap-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting tipmap service...", zap.String("environment", cfg.Server.Env))

	// Initialize database (now includes migrations automatically)
	if err := database.InitDB(cfg, log); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established and migrations completed")

	// Initialize session token verification
	jwtutil.Init(cfg.JWT.SigningKey)

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized")

	// Wire handlers against the database and the place-search collaborator
	handler.Init(cfg)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/", handler.Hello)
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", prometheus.HandlerFunc())

	api := e.Group("/api")

	// Report submission; the session middleware resolves an optional user
	// id, anonymous submissions pass through.
	api.POST("/reports", handler.SubmitReport, middleware.SessionMiddleware)

	// Business directory with consensus views
	api.GET("/businesses", handler.ListBusinesses)
	api.GET("/businesses/:id", handler.GetBusiness)

	// Address pre-fill for the report form
	api.GET("/search/places", handler.SearchPlaces)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
