// Package main provides the entrypoint for the aqhub API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/aqhub/aqhub/internal/airquality"
	"github.com/aqhub/aqhub/internal/airquality/iqair"
	"github.com/aqhub/aqhub/internal/airquality/purpleair"
	"github.com/aqhub/aqhub/internal/alerts"
	"github.com/aqhub/aqhub/internal/api"
	"github.com/aqhub/aqhub/internal/api/handler"
	"github.com/aqhub/aqhub/internal/api/middleware"
	"github.com/aqhub/aqhub/internal/auth"
	"github.com/aqhub/aqhub/internal/config"
	"github.com/aqhub/aqhub/internal/database"
	"github.com/aqhub/aqhub/internal/favorites"
	"github.com/aqhub/aqhub/internal/history"
	"github.com/aqhub/aqhub/internal/telemetry"
	"github.com/aqhub/aqhub/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "aqhub-api"

	cfg := config.Load()

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Str("env", cfg.Env).
		Msg("starting aqhub API")

	// Initialize OpenTelemetry
	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Env,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TelemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.TelemetryEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Connect to database when configured; otherwise everything runs in memory
	var (
		pool  *pgxpool.Pool
		ready func(ctx context.Context) error
	)
	if cfg.DatabaseEnabled {
		dbConfig := database.ConfigFromEnv()
		pool, err = database.Connect(ctx, dbConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		ready = pool.Ping
		log.Info().
			Str("host", dbConfig.Host).
			Int("port", dbConfig.Port).
			Str("database", dbConfig.Database).
			Msg("database connected")
	} else {
		log.Warn().Msg("database disabled - using in-memory repositories")
	}

	// Initialize JWT service
	signingKey := cfg.JWTSigningKey
	if signingKey == "" {
		signingKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SigningKey: signingKey,
		Issuer:     cfg.JWTIssuer,
	})

	// Initialize repositories and services
	var (
		authRepo      auth.Repository
		favoritesRepo favorites.Repository
		alertsRepo    alerts.Repository
		historyRepo   history.Repository
	)
	if pool != nil {
		authRepo = auth.NewPostgresRepository(pool)
		favoritesRepo = favorites.NewPostgresRepository(pool)
		alertsRepo = alerts.NewPostgresRepository(pool)
		historyRepo = history.NewPostgresRepository(pool)
	} else {
		authRepo = auth.NewInMemoryRepository()
		favoritesRepo = favorites.NewInMemoryRepository()
		alertsRepo = alerts.NewInMemoryRepository()
		historyRepo = history.NewInMemoryRepository()
	}

	authService := auth.NewService(auth.ServiceConfig{
		JWTService: jwtService,
		Repo:       authRepo,
	})
	favoritesService := favorites.NewService(favoritesRepo)
	alertsService := alerts.NewService(alertsRepo)
	historyService := history.NewService(historyRepo)
	log.Info().Msg("services initialized")

	// Initialize data source clients
	iqairClient := iqair.NewClient(iqair.ClientConfig{APIKey: cfg.IQAirAPIKey})
	purpleairClient := purpleair.NewClient(purpleair.ClientConfig{APIKey: cfg.PurpleAirAPIKey})
	if cfg.IQAirAPIKey == "" {
		log.Warn().Msg("IQAIR_API_KEY not set - using community demo key")
	}
	if cfg.PurpleAirAPIKey == "" {
		log.Warn().Msg("PURPLEAIR_API_KEY not set - purpleair source unavailable")
	}

	aggregator := airquality.NewAggregator(log, iqairClient, purpleairClient)
	resolver := airquality.NewResolver(iqairClient, log)
	log.Info().
		Strs("sources", []string{iqair.ProviderName, purpleair.ProviderName}).
		Msg("data sources initialized")

	// Background collector feeds the history store from the API process.
	// Deployments running cmd/worker separately set COLLECTOR_ENABLED=false.
	var collector *worker.Collector
	if os.Getenv("COLLECTOR_ENABLED") != "false" {
		collector = worker.NewCollector(cfg.Collector, iqairClient, historyService, log).
			WithAlerts(alertsService)
		if err := collector.Start(); err != nil {
			log.Fatal().Err(err).Msg("failed to start collector")
		}
		defer collector.Stop()
	}

	// Create router with configuration
	routerCfg := api.RouterConfig{
		Version:          Version,
		BuildTime:        BuildTime,
		Logger:           log,
		ServiceName:      serviceName,
		Metrics:          metrics,
		AuthService:      authService,
		FavoritesService: favoritesService,
		AlertsService:    alertsService,
		HistoryService:   historyService,
		Aggregator:       aggregator,
		Resolver:         resolver,
		Browser:          iqairClient,
		Ready:            ready,
		CacheAdmins: map[string]handler.CacheAdmin{
			iqair.ProviderName:     iqairClient,
			purpleair.ProviderName: purpleairClient,
		},
	}
	if collector != nil {
		routerCfg.Collector = collector
	}
	router := api.NewRouter(routerCfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
