package history

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/aqhub/aqhub/internal/airquality"
)

// Defaults for trend queries and retention.
const (
	// MaxListResults caps a history listing.
	MaxListResults = 1000

	// DefaultStatisticsDays is the default statistics window.
	DefaultStatisticsDays = 7

	// DefaultHourlyWindow is the default hourly averages window.
	DefaultHourlyWindow = 24 * time.Hour

	// DefaultRetentionDays is how long readings are kept before pruning.
	DefaultRetentionDays = 30
)

// Service records readings and serves trend queries over them.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a new history service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Record stores a snapshot of one normalized reading.
func (s *Service) Record(ctx context.Context, reading *airquality.Reading) error {
	if reading == nil {
		return fmt.Errorf("nil reading")
	}

	timestamp := reading.ObservedAt
	if timestamp.IsZero() {
		timestamp = s.now()
	}

	stored := &StoredReading{
		ID:         "rdg_" + uuid.New().String()[:22],
		StationID:  reading.StationID,
		Timestamp:  timestamp,
		AQI:        reading.AQI.US,
		Pollutants: reading.Pollutants,
		Weather:    reading.Weather,
	}

	if err := s.repo.Insert(ctx, stored); err != nil {
		return fmt.Errorf("storing reading: %w", err)
	}
	return nil
}

// List returns a station's readings within the filter bounds, newest first,
// capped at MaxListResults.
func (s *Service) List(ctx context.Context, filter Filter) ([]*StoredReading, error) {
	return s.repo.List(ctx, filter, MaxListResults)
}

// Statistics summarizes a station's AQI over the last days. It returns nil
// when the window holds no readings.
func (s *Service) Statistics(ctx context.Context, stationID string, days int) (*Statistics, error) {
	if days <= 0 {
		days = DefaultStatisticsDays
	}

	cutoff := s.now().AddDate(0, 0, -days)
	readings, err := s.repo.ListSince(ctx, stationID, cutoff)
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		return nil, nil
	}

	stats := &Statistics{
		Count:     len(readings),
		Min:       readings[0].AQI,
		Max:       readings[0].AQI,
		Current:   readings[len(readings)-1].AQI,
		StartDate: readings[0].Timestamp,
		EndDate:   readings[len(readings)-1].Timestamp,
	}

	sum := 0
	for _, r := range readings {
		sum += r.AQI
		if r.AQI < stats.Min {
			stats.Min = r.AQI
		}
		if r.AQI > stats.Max {
			stats.Max = r.AQI
		}
	}
	stats.Average = int(math.Round(float64(sum) / float64(len(readings))))

	return stats, nil
}

// HourlyAverages buckets a station's readings by clock hour over the last
// window and returns the per-hour mean AQI in chronological order.
func (s *Service) HourlyAverages(ctx context.Context, stationID string, window time.Duration) ([]HourlyAverage, error) {
	if window <= 0 {
		window = DefaultHourlyWindow
	}

	cutoff := s.now().Add(-window)
	readings, err := s.repo.ListSince(ctx, stationID, cutoff)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		sum   int
		count int
		first time.Time
	}

	buckets := make(map[time.Time]*bucket)
	var order []time.Time
	for _, r := range readings {
		hour := r.Timestamp.UTC().Truncate(time.Hour)
		b, ok := buckets[hour]
		if !ok {
			b = &bucket{first: r.Timestamp}
			buckets[hour] = b
			order = append(order, hour)
		}
		b.sum += r.AQI
		b.count++
	}

	out := make([]HourlyAverage, 0, len(order))
	for _, hour := range order {
		b := buckets[hour]
		out = append(out, HourlyAverage{
			Timestamp: b.first,
			AQI:       int(math.Round(float64(b.sum) / float64(b.count))),
			Count:     b.count,
		})
	}
	return out, nil
}

// Prune removes readings older than daysToKeep and returns how many were
// dropped.
func (s *Service) Prune(ctx context.Context, daysToKeep int) (int64, error) {
	if daysToKeep <= 0 {
		daysToKeep = DefaultRetentionDays
	}
	cutoff := s.now().AddDate(0, 0, -daysToKeep)
	return s.repo.DeleteBefore(ctx, cutoff)
}
