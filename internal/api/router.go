// Package api provides the HTTP API for aqhub.
package api

import (
	"context"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/aqhub/aqhub/internal/airquality"
	"github.com/aqhub/aqhub/internal/alerts"
	"github.com/aqhub/aqhub/internal/api/handler"
	"github.com/aqhub/aqhub/internal/api/middleware"
	"github.com/aqhub/aqhub/internal/auth"
	"github.com/aqhub/aqhub/internal/favorites"
	"github.com/aqhub/aqhub/internal/history"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	AuthService      *auth.Service
	FavoritesService *favorites.Service
	AlertsService    *alerts.Service
	HistoryService   *history.Service

	Aggregator *airquality.Aggregator
	Resolver   *airquality.Resolver
	Browser    airquality.Browser

	// Ready reports whether backing dependencies are reachable (readiness probe).
	Ready func(ctx context.Context) error

	CacheAdmins map[string]handler.CacheAdmin
	Collector   handler.CollectorStats
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "aqhub-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(handler.OpsConfig{
		Version:     cfg.Version,
		BuildTime:   cfg.BuildTime,
		Ready:       cfg.Ready,
		Aggregator:  cfg.Aggregator,
		CacheAdmins: cfg.CacheAdmins,
		Collector:   cfg.Collector,
	})
	aqiHandler := handler.NewAQIHandler(cfg.Aggregator, cfg.Resolver, cfg.Browser)
	userHandler := handler.NewUserHandler(cfg.AuthService)
	favoritesHandler := handler.NewFavoritesHandler(cfg.FavoritesService)
	alertsHandler := handler.NewAlertsHandler(cfg.AlertsService)
	historyHandler := handler.NewHistoryHandler(cfg.HistoryService)

	// Create auth middleware
	authMiddleware := middleware.Auth(cfg.AuthService)

	// Create rate limit middleware for different endpoint categories
	authRateLimit := middleware.RateLimitByIP(middleware.AuthRateLimit)           // 10 req/min
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Air quality endpoints (public)
		r.Route("/aqi", func(r chi.Router) {
			// Upstream fan-out and resolution are expensive - strict rate limiting
			r.With(expensiveRateLimit).Get("/nearby", aqiHandler.Nearby)
			r.With(expensiveRateLimit).Get("/city", aqiHandler.City)

			r.Group(func(r chi.Router) {
				r.Use(standardRateLimit)
				r.Get("/countries", aqiHandler.Countries)
				r.Get("/states", aqiHandler.States)
				r.Get("/cities", aqiHandler.Cities)
				r.Get("/sources", aqiHandler.Sources)
			})
		})

		// History endpoints (public) - standard rate limiting
		r.Route("/history", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Route("/{stationId}", func(r chi.Router) {
				r.Get("/", historyHandler.List)
				r.Get("/statistics", historyHandler.Statistics)
				r.Get("/hourly", historyHandler.Hourly)
			})
		})

		// User endpoints - strict rate limiting on the public half
		r.Route("/users", func(r chi.Router) {
			r.With(authRateLimit).Post("/register", userHandler.Register)
			r.With(authRateLimit).Post("/login", userHandler.Login)

			// Account endpoints (authenticated) - user-based rate limiting
			r.Route("/me", func(r chi.Router) {
				r.Use(authMiddleware)
				r.Use(middleware.RateLimitByUser(middleware.StandardRateLimit))
				r.Get("/", userHandler.Me)
				r.Patch("/", userHandler.UpdateProfile)
				r.Post("/password", userHandler.ChangePassword)
			})
		})

		// Favorites endpoints (authenticated) - user-based rate limiting
		r.Route("/favorites", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RateLimitByUser(middleware.StandardRateLimit))
			r.Get("/", favoritesHandler.List)
			r.Post("/", favoritesHandler.Create)
			r.Route("/{favoriteId}", func(r chi.Router) {
				r.Get("/", favoritesHandler.Get)
				r.Patch("/", favoritesHandler.Update)
				r.Delete("/", favoritesHandler.Delete)
			})
		})

		// Alerts endpoints (authenticated) - user-based rate limiting
		r.Route("/alerts", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RateLimitByUser(middleware.StandardRateLimit))
			r.Get("/", alertsHandler.List)
			r.Post("/", alertsHandler.Create)
			r.Route("/{alertId}", func(r chi.Router) {
				r.Get("/", alertsHandler.Get)
				r.Patch("/", alertsHandler.Update)
				r.Delete("/", alertsHandler.Delete)
			})
		})

		// Ops endpoints
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			// Status and cache administration require authentication
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware)
				r.Get("/status", opsHandler.SystemStatus)
				r.Get("/cache", opsHandler.CacheStats)
				r.Post("/cache/clear", opsHandler.ClearCaches)
			})
		})
	})

	return r
}
