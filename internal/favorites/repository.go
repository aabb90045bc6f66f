package favorites

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrNotFound indicates the favorite does not exist or belongs to another user.
var ErrNotFound = errors.New("favorite not found")

// Repository defines the interface for favorite persistence. All lookups are
// scoped to a user; a favorite owned by someone else behaves as missing.
type Repository interface {
	// Create stores a new favorite.
	Create(ctx context.Context, favorite *Favorite) error

	// Get retrieves one favorite by ID for the given user.
	Get(ctx context.Context, userID, id string) (*Favorite, error)

	// ListByUser returns the user's favorites, newest first.
	ListByUser(ctx context.Context, userID string) ([]*Favorite, error)

	// Update rewrites an existing favorite.
	Update(ctx context.Context, favorite *Favorite) error

	// Delete removes one favorite by ID for the given user.
	Delete(ctx context.Context, userID, id string) error
}

// InMemoryRepository is an in-memory implementation of Repository.
type InMemoryRepository struct {
	mu        sync.RWMutex
	favorites map[string]*Favorite
}

// NewInMemoryRepository creates a new in-memory favorites repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{favorites: make(map[string]*Favorite)}
}

// Create stores a new favorite.
func (r *InMemoryRepository) Create(_ context.Context, favorite *Favorite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.favorites[favorite.ID] = copyFavorite(favorite)
	return nil
}

// Get retrieves one favorite scoped to the user.
func (r *InMemoryRepository) Get(_ context.Context, userID, id string) (*Favorite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.favorites[id]
	if !ok || f.UserID != userID {
		return nil, ErrNotFound
	}
	return copyFavorite(f), nil
}

// ListByUser returns the user's favorites, newest first.
func (r *InMemoryRepository) ListByUser(_ context.Context, userID string) ([]*Favorite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Favorite
	for _, f := range r.favorites {
		if f.UserID == userID {
			out = append(out, copyFavorite(f))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Update rewrites an existing favorite.
func (r *InMemoryRepository) Update(_ context.Context, favorite *Favorite) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.favorites[favorite.ID]
	if !ok || prev.UserID != favorite.UserID {
		return ErrNotFound
	}
	r.favorites[favorite.ID] = copyFavorite(favorite)
	return nil
}

// Delete removes one favorite scoped to the user.
func (r *InMemoryRepository) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.favorites[id]
	if !ok || f.UserID != userID {
		return ErrNotFound
	}
	delete(r.favorites, id)
	return nil
}

func copyFavorite(f *Favorite) *Favorite {
	if f == nil {
		return nil
	}
	c := *f
	if f.StationID != nil {
		s := *f.StationID
		c.StationID = &s
	}
	return &c
}

var _ Repository = (*InMemoryRepository)(nil)
