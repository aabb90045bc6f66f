package models

// Health represents the health status of the service.
type Health struct {
	Status  HealthStatus           `json:"status"`
	Time    Timestamp              `json:"time"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// SystemStatus represents the overall system status.
type SystemStatus struct {
	Status     HealthStatus           `json:"status"`
	Time       Timestamp              `json:"time"`
	Subsystems []SubsystemStatus      `json:"subsystems"`
	Providers  []ProviderStatus       `json:"providers"`
	Collector  map[string]interface{} `json:"collector,omitempty"`
}

// SubsystemStatus represents the status of a subsystem.
type SubsystemStatus struct {
	Name   string       `json:"name"`
	Status HealthStatus `json:"status"`
	Detail *string      `json:"detail,omitempty"`
}

// ProviderStatus represents the status of an external data source.
type ProviderStatus struct {
	Provider     string       `json:"provider"`
	Status       HealthStatus `json:"status"`
	BreakerState *string      `json:"breakerState,omitempty"`
	Message      *string      `json:"message,omitempty"`
}

// CacheStats reports one named cache's counters.
type CacheStats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
	Keys   int    `json:"keys"`
}

// CacheStatsResponse maps cache names to their counters, per provider.
type CacheStatsResponse struct {
	Caches map[string]CacheStats `json:"caches"`
}

// CacheClearResponse reports how many entries a cache flush removed.
type CacheClearResponse struct {
	Cleared int       `json:"cleared"`
	Time    Timestamp `json:"time"`
}
