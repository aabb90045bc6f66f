package history

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Repository defines the interface for historical reading persistence.
type Repository interface {
	// Insert stores one reading.
	Insert(ctx context.Context, reading *StoredReading) error

	// List returns readings matching the filter, newest first, capped at
	// limit.
	List(ctx context.Context, filter Filter, limit int) ([]*StoredReading, error)

	// ListSince returns a station's readings at or after cutoff, oldest
	// first.
	ListSince(ctx context.Context, stationID string, cutoff time.Time) ([]*StoredReading, error)

	// DeleteBefore removes readings older than cutoff and returns how many
	// were dropped.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// InMemoryRepository is an in-memory implementation of Repository.
type InMemoryRepository struct {
	mu       sync.RWMutex
	readings []*StoredReading
}

// NewInMemoryRepository creates a new in-memory history repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// Insert stores one reading.
func (r *InMemoryRepository) Insert(_ context.Context, reading *StoredReading) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.readings = append(r.readings, copyReading(reading))
	return nil
}

// List returns readings matching the filter, newest first.
func (r *InMemoryRepository) List(_ context.Context, filter Filter, limit int) ([]*StoredReading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*StoredReading
	for _, reading := range r.readings {
		if reading.StationID != filter.StationID {
			continue
		}
		if !filter.Start.IsZero() && reading.Timestamp.Before(filter.Start) {
			continue
		}
		if !filter.End.IsZero() && reading.Timestamp.After(filter.End) {
			continue
		}
		out = append(out, copyReading(reading))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListSince returns a station's readings at or after cutoff, oldest first.
func (r *InMemoryRepository) ListSince(_ context.Context, stationID string, cutoff time.Time) ([]*StoredReading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*StoredReading
	for _, reading := range r.readings {
		if reading.StationID == stationID && !reading.Timestamp.Before(cutoff) {
			out = append(out, copyReading(reading))
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// DeleteBefore removes readings older than cutoff.
func (r *InMemoryRepository) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.readings[:0]
	var dropped int64
	for _, reading := range r.readings {
		if reading.Timestamp.Before(cutoff) {
			dropped++
			continue
		}
		kept = append(kept, reading)
	}
	r.readings = kept
	return dropped, nil
}

func copyReading(s *StoredReading) *StoredReading {
	if s == nil {
		return nil
	}
	c := *s
	c.Pollutants = make(map[string]*float64, len(s.Pollutants))
	for k, v := range s.Pollutants {
		if v != nil {
			f := *v
			c.Pollutants[k] = &f
		} else {
			c.Pollutants[k] = nil
		}
	}
	return &c
}

var _ Repository = (*InMemoryRepository)(nil)
