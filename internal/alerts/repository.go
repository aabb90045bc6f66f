package alerts

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrNotFound indicates the alert does not exist or belongs to another user.
var ErrNotFound = errors.New("alert not found")

// Repository defines the interface for alert persistence. All lookups are
// scoped to a user.
type Repository interface {
	// Create stores a new alert.
	Create(ctx context.Context, alert *Alert) error

	// Get retrieves one alert by ID for the given user.
	Get(ctx context.Context, userID, id string) (*Alert, error)

	// ListByUser returns the user's alerts, newest first.
	ListByUser(ctx context.Context, userID string) ([]*Alert, error)

	// ListEnabled returns every enabled alert across all users. The collector
	// uses this to evaluate thresholds after a collection pass.
	ListEnabled(ctx context.Context) ([]*Alert, error)

	// Update rewrites an existing alert.
	Update(ctx context.Context, alert *Alert) error

	// Delete removes one alert by ID for the given user.
	Delete(ctx context.Context, userID, id string) error
}

// InMemoryRepository is an in-memory implementation of Repository.
type InMemoryRepository struct {
	mu     sync.RWMutex
	alerts map[string]*Alert
}

// NewInMemoryRepository creates a new in-memory alerts repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{alerts: make(map[string]*Alert)}
}

// Create stores a new alert.
func (r *InMemoryRepository) Create(_ context.Context, alert *Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts[alert.ID] = copyAlert(alert)
	return nil
}

// Get retrieves one alert scoped to the user.
func (r *InMemoryRepository) Get(_ context.Context, userID, id string) (*Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.alerts[id]
	if !ok || a.UserID != userID {
		return nil, ErrNotFound
	}
	return copyAlert(a), nil
}

// ListByUser returns the user's alerts, newest first.
func (r *InMemoryRepository) ListByUser(_ context.Context, userID string) ([]*Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Alert
	for _, a := range r.alerts {
		if a.UserID == userID {
			out = append(out, copyAlert(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ListEnabled returns every enabled alert across all users.
func (r *InMemoryRepository) ListEnabled(_ context.Context) ([]*Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Alert
	for _, a := range r.alerts {
		if a.Enabled {
			out = append(out, copyAlert(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Update rewrites an existing alert.
func (r *InMemoryRepository) Update(_ context.Context, alert *Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.alerts[alert.ID]
	if !ok || prev.UserID != alert.UserID {
		return ErrNotFound
	}
	r.alerts[alert.ID] = copyAlert(alert)
	return nil
}

// Delete removes one alert scoped to the user.
func (r *InMemoryRepository) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.alerts[id]
	if !ok || a.UserID != userID {
		return ErrNotFound
	}
	delete(r.alerts, id)
	return nil
}

func copyAlert(a *Alert) *Alert {
	if a == nil {
		return nil
	}
	c := *a
	if a.LocationID != nil {
		l := *a.LocationID
		c.LocationID = &l
	}
	return &c
}

var _ Repository = (*InMemoryRepository)(nil)
