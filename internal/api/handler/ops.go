package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/aqhub/aqhub/internal/airquality"
	"github.com/aqhub/aqhub/internal/api/models"
	"github.com/aqhub/aqhub/internal/api/response"
	"github.com/aqhub/aqhub/internal/cache"
)

// CacheAdmin is the administrative surface a caching provider exposes.
type CacheAdmin interface {
	ClearCaches() int
	CacheStats() map[string]cache.Stats
}

// CollectorStats reports background collector counters.
type CollectorStats interface {
	MetricsSnapshot() map[string]interface{}
}

// OpsConfig holds dependencies for the operational endpoints.
type OpsConfig struct {
	Version   string
	BuildTime string

	// Ready reports whether the service's dependencies are reachable.
	// A nil func means there is nothing to check.
	Ready func(ctx context.Context) error

	Aggregator  *airquality.Aggregator
	CacheAdmins map[string]CacheAdmin
	Collector   CollectorStats
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	cfg OpsConfig
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	return &OpsHandler{cfg: cfg}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.cfg.Version,
			"buildTime": h.cfg.BuildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}

	if h.cfg.Ready != nil {
		if err := h.cfg.Ready(r.Context()); err != nil {
			health.Status = models.HealthStatusFail
			health.Details = map[string]interface{}{"error": err.Error()}
			response.JSON(w, r, http.StatusServiceUnavailable, health)
			return
		}
	}

	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - data source and subsystem status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	now := models.Timestamp(time.Now())
	status := models.SystemStatus{
		Status:     models.HealthStatusOK,
		Time:       now,
		Subsystems: []models.SubsystemStatus{},
		Providers:  []models.ProviderStatus{},
	}

	dbStatus := models.SubsystemStatus{Name: "database", Status: models.HealthStatusOK}
	if h.cfg.Ready != nil {
		if err := h.cfg.Ready(r.Context()); err != nil {
			detail := err.Error()
			dbStatus.Status = models.HealthStatusFail
			dbStatus.Detail = &detail
			status.Status = models.HealthStatusDegraded
		}
	}
	status.Subsystems = append(status.Subsystems, dbStatus)

	if h.cfg.Aggregator != nil {
		for _, p := range h.cfg.Aggregator.Providers() {
			providerStatus := models.ProviderStatus{
				Provider: p.Name(),
				Status:   models.HealthStatusOK,
			}
			if !p.Capability().Available {
				message := "missing API key"
				providerStatus.Status = models.HealthStatusDegraded
				providerStatus.Message = &message
				status.Status = models.HealthStatusDegraded
			}
			status.Providers = append(status.Providers, providerStatus)
		}
	}

	if h.cfg.Collector != nil {
		status.Collector = h.cfg.Collector.MetricsSnapshot()
	}

	response.JSON(w, r, http.StatusOK, status)
}

// CacheStats handles GET /v1/ops/cache - cache counters per data source.
func (h *OpsHandler) CacheStats(w http.ResponseWriter, r *http.Request) {
	caches := make(map[string]models.CacheStats)
	for name, admin := range h.cfg.CacheAdmins {
		for cacheName, stats := range admin.CacheStats() {
			caches[name+"."+cacheName] = models.CacheStats{
				Hits:   stats.Hits,
				Misses: stats.Misses,
				Keys:   stats.Keys,
			}
		}
	}
	response.JSON(w, r, http.StatusOK, models.CacheStatsResponse{Caches: caches})
}

// ClearCaches handles POST /v1/ops/cache/clear - flush all provider caches.
func (h *OpsHandler) ClearCaches(w http.ResponseWriter, r *http.Request) {
	cleared := 0
	for _, admin := range h.cfg.CacheAdmins {
		cleared += admin.ClearCaches()
	}
	response.JSON(w, r, http.StatusOK, models.CacheClearResponse{
		Cleared: cleared,
		Time:    models.Timestamp(time.Now()),
	})
}
