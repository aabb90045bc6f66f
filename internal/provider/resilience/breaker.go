// Package resilience wraps outbound HTTP calls to measurement providers with
// circuit breaking and retry so a flapping upstream degrades into cached or
// partial responses instead of request pileups.
package resilience

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerConfig configures the circuit breaker guarding one upstream.
type BreakerConfig struct {
	// Name identifies the breaker in logs and health reports.
	Name string

	// MaxRequests allowed through while half-open. Default: 1.
	MaxRequests uint32

	// Interval for clearing counts while closed. Default: 0 (never).
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing. Default: 60s.
	Timeout time.Duration

	// ReadyToTrip overrides the default trip condition.
	ReadyToTrip func(counts gobreaker.Counts) bool

	// OnStateChange is invoked on every state transition.
	OnStateChange func(name string, from, to gobreaker.State)
}

// DefaultBreakerConfig trips after 5+ requests with a failure rate of at
// least half, and probes again after a minute open.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:        name,
		MaxRequests: 1,
		Timeout:     60 * time.Second,
		ReadyToTrip: defaultReadyToTrip,
	}
}

func defaultReadyToTrip(counts gobreaker.Counts) bool {
	ratio := float64(counts.TotalFailures) / float64(counts.Requests)
	return counts.Requests >= 5 && ratio >= 0.5
}

func newBreaker[T any](cfg BreakerConfig) *gobreaker.CircuitBreaker[T] {
	if cfg.ReadyToTrip == nil {
		cfg.ReadyToTrip = defaultReadyToTrip
	}
	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:          cfg.Name,
		MaxRequests:   cfg.MaxRequests,
		Interval:      cfg.Interval,
		Timeout:       cfg.Timeout,
		ReadyToTrip:   cfg.ReadyToTrip,
		OnStateChange: cfg.OnStateChange,
	})
}
