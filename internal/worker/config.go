// Package worker runs the background collector that samples configured
// cities on a schedule and feeds the history store.
package worker

import "time"

// CityTarget identifies one city to sample.
type CityTarget struct {
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// CollectorConfig holds configuration for the collector.
type CollectorConfig struct {
	// Targets are the cities sampled each cycle.
	Targets []CityTarget

	// Interval between collection cycles. Default: 60m.
	Interval time.Duration

	// Timeout per city fetch. Default: 30s.
	Timeout time.Duration

	// RetentionDays is how long readings are kept. Default: 30.
	RetentionDays int

	// Concurrency bounds parallel city fetches. Default: 4.
	Concurrency int
}

// DefaultCollectorConfig returns a config that samples Bangkok hourly,
// matching the service's default deployment.
func DefaultCollectorConfig() CollectorConfig {
	return CollectorConfig{
		Targets: []CityTarget{
			{City: "Bangkok", State: "Bangkok", Country: "Thailand"},
		},
		Interval:      time.Hour,
		Timeout:       30 * time.Second,
		RetentionDays: 30,
		Concurrency:   4,
	}
}

// withDefaults fills zero fields.
func (c CollectorConfig) withDefaults() CollectorConfig {
	if c.Interval <= 0 {
		c.Interval = time.Hour
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.RetentionDays <= 0 {
		c.RetentionDays = 30
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	return c
}
