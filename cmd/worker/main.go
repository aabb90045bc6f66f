// Package main provides the entrypoint for the aqhub collector worker.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/aqhub/aqhub/internal/airquality/iqair"
	"github.com/aqhub/aqhub/internal/alerts"
	"github.com/aqhub/aqhub/internal/config"
	"github.com/aqhub/aqhub/internal/database"
	"github.com/aqhub/aqhub/internal/history"
	"github.com/aqhub/aqhub/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "aqhub-worker"

	cfg := config.Load()

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Str("env", cfg.Env).
		Msg("starting aqhub worker")

	ctx := context.Background()

	// Pick the stores
	var (
		historyRepo history.Repository
		alertsRepo  alerts.Repository
	)
	if cfg.DatabaseEnabled {
		dbConfig := database.ConfigFromEnv()
		pool, err := database.Connect(ctx, dbConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		historyRepo = history.NewPostgresRepository(pool)
		alertsRepo = alerts.NewPostgresRepository(pool)
		log.Info().
			Str("host", dbConfig.Host).
			Str("database", dbConfig.Database).
			Msg("database connected")
	} else {
		historyRepo = history.NewInMemoryRepository()
		alertsRepo = alerts.NewInMemoryRepository()
		log.Warn().Msg("database disabled - readings will not survive restarts")
	}
	historyService := history.NewService(historyRepo)
	alertsService := alerts.NewService(alertsRepo)

	iqairClient := iqair.NewClient(iqair.ClientConfig{APIKey: cfg.IQAirAPIKey})
	if cfg.IQAirAPIKey == "" {
		log.Warn().Msg("IQAIR_API_KEY not set - using community demo key")
	}

	collector := worker.NewCollector(cfg.Collector, iqairClient, historyService, log).
		WithAlerts(alertsService)
	if err := collector.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start collector")
	}

	// Health endpoint for container orchestration probes
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"OK","version":%q}`, Version)
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("health server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	collector.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
