package worker

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/aqhub/aqhub/internal/airquality"
	"github.com/aqhub/aqhub/internal/alerts"
	"github.com/aqhub/aqhub/internal/history"
)

// CityFetcher is the slice of the provider surface the collector needs.
type CityFetcher interface {
	FetchByName(ctx context.Context, city, state, country string) (*airquality.Reading, error)
}

// AlertEvaluator checks a recorded reading against configured threshold
// alerts and returns the ones it trips.
type AlertEvaluator interface {
	EvaluateReading(ctx context.Context, reading *airquality.Reading) ([]*alerts.Alert, error)
}

// Collector periodically samples the configured cities and records the
// readings. A failing city never aborts the cycle.
type Collector struct {
	cfg       CollectorConfig
	logger    zerolog.Logger
	fetcher   CityFetcher
	history   *history.Service
	alerts    AlertEvaluator
	scheduler *gocron.Scheduler

	metrics CollectorMetrics
}

// CollectorMetrics tracks collector statistics.
type CollectorMetrics struct {
	mu sync.RWMutex

	Cycles      int64
	Collected   int64
	Failed      int64
	Pruned      int64
	AlertsFired int64
	LastCycleAt time.Time
	LastCycle   time.Duration
}

// NewCollector creates a collector over the given fetcher and history store.
func NewCollector(cfg CollectorConfig, fetcher CityFetcher, historySvc *history.Service, logger zerolog.Logger) *Collector {
	return &Collector{
		cfg:       cfg.withDefaults(),
		logger:    logger,
		fetcher:   fetcher,
		history:   historySvc,
		scheduler: gocron.NewScheduler(time.UTC),
	}
}

// WithAlerts attaches an alert evaluator that runs against every recorded
// reading. Without one the collector only feeds the history store.
func (c *Collector) WithAlerts(evaluator AlertEvaluator) *Collector {
	c.alerts = evaluator
	return c
}

// Start schedules the collection and retention jobs and runs the scheduler
// in the background. The first collection cycle runs immediately.
func (c *Collector) Start() error {
	if len(c.cfg.Targets) == 0 {
		c.logger.Warn().Msg("collector has no targets configured, nothing to schedule")
		return nil
	}

	minutes := int(c.cfg.Interval.Minutes())
	if minutes <= 0 {
		minutes = 60
	}

	if _, err := c.scheduler.Every(minutes).Minutes().Do(func() {
		c.RunOnce(context.Background())
	}); err != nil {
		return err
	}

	if _, err := c.scheduler.Every(1).Day().Do(func() {
		c.prune(context.Background())
	}); err != nil {
		return err
	}

	c.scheduler.StartAsync()

	// First sample without waiting a full interval.
	c.RunOnce(context.Background())

	c.logger.Info().
		Int("targets", len(c.cfg.Targets)).
		Dur("interval", c.cfg.Interval).
		Msg("collector started")

	return nil
}

// Stop halts the scheduler. In-flight fetches complete on their own timeouts.
func (c *Collector) Stop() {
	c.scheduler.Stop()
	c.logger.Info().Msg("collector stopped")
}

// CycleResult summarizes one collection cycle.
type CycleResult struct {
	Collected int
	Failed    int
	Duration  time.Duration
}

// RunOnce samples every configured city once and records the readings.
func (c *Collector) RunOnce(ctx context.Context) CycleResult {
	start := time.Now()

	targets := make(chan CityTarget, len(c.cfg.Targets))
	outcomes := make(chan bool, len(c.cfg.Targets))

	var wg sync.WaitGroup
	for i := 0; i < c.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for target := range targets {
				outcomes <- c.collect(ctx, target)
			}
		}()
	}

	for _, target := range c.cfg.Targets {
		targets <- target
	}
	close(targets)

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	var result CycleResult
	for ok := range outcomes {
		if ok {
			result.Collected++
		} else {
			result.Failed++
		}
	}
	result.Duration = time.Since(start)

	c.metrics.mu.Lock()
	c.metrics.Cycles++
	c.metrics.Collected += int64(result.Collected)
	c.metrics.Failed += int64(result.Failed)
	c.metrics.LastCycleAt = time.Now()
	c.metrics.LastCycle = result.Duration
	c.metrics.mu.Unlock()

	c.logger.Info().
		Int("collected", result.Collected).
		Int("failed", result.Failed).
		Dur("duration", result.Duration).
		Msg("collection cycle completed")

	return result
}

// collect samples one city and records the reading.
func (c *Collector) collect(ctx context.Context, target CityTarget) bool {
	fetchCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	reading, err := c.fetcher.FetchByName(fetchCtx, target.City, target.State, target.Country)
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("city", target.City).
			Str("country", target.Country).
			Msg("city sample failed")
		return false
	}

	if err := c.history.Record(ctx, reading); err != nil {
		c.logger.Error().
			Err(err).
			Str("station_id", reading.StationID).
			Msg("recording reading failed")
		return false
	}

	c.logger.Debug().
		Str("station_id", reading.StationID).
		Int("aqi", reading.AQI.US).
		Msg("reading recorded")

	c.evaluateAlerts(ctx, reading)

	return true
}

// evaluateAlerts fires threshold alerts for one recorded reading. Delivery is
// a log line per fired alert; a failing evaluation never fails the sample.
func (c *Collector) evaluateAlerts(ctx context.Context, reading *airquality.Reading) {
	if c.alerts == nil {
		return
	}

	fired, err := c.alerts.EvaluateReading(ctx, reading)
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("station_id", reading.StationID).
			Msg("alert evaluation failed")
		return
	}
	if len(fired) == 0 {
		return
	}

	for _, alert := range fired {
		c.logger.Info().
			Str("alert_id", alert.ID).
			Str("user_id", alert.UserID).
			Str("pollutant", string(alert.Pollutant)).
			Float64("threshold", alert.Threshold).
			Str("method", string(alert.Method)).
			Str("station_id", reading.StationID).
			Int("aqi", reading.AQI.US).
			Msg("alert fired")
	}

	c.metrics.mu.Lock()
	c.metrics.AlertsFired += int64(len(fired))
	c.metrics.mu.Unlock()
}

// prune drops readings past the retention window.
func (c *Collector) prune(ctx context.Context) {
	dropped, err := c.history.Prune(ctx, c.cfg.RetentionDays)
	if err != nil {
		c.logger.Error().Err(err).Msg("retention prune failed")
		return
	}

	c.metrics.mu.Lock()
	c.metrics.Pruned += dropped
	c.metrics.mu.Unlock()

	c.logger.Info().Int64("dropped", dropped).Msg("retention prune completed")
}

// MetricsSnapshot returns the collector counters as a map for the ops
// endpoint.
func (c *Collector) MetricsSnapshot() map[string]interface{} {
	c.metrics.mu.RLock()
	defer c.metrics.mu.RUnlock()

	return map[string]interface{}{
		"cycles":          c.metrics.Cycles,
		"collected":       c.metrics.Collected,
		"failed":          c.metrics.Failed,
		"pruned":          c.metrics.Pruned,
		"alerts_fired":    c.metrics.AlertsFired,
		"last_cycle_at":   c.metrics.LastCycleAt,
		"last_cycle_time": c.metrics.LastCycle.String(),
	}
}
