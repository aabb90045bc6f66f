package auth

import (
	"context"
	"errors"
	"sync"
)

// Repository errors.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

// Repository defines the interface for account persistence.
type Repository interface {
	// Create stores a new user. Returns ErrUserExists on a duplicate email.
	Create(ctx context.Context, user *User) error

	// FindByID finds a user by their internal ID.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByEmail finds a user by their normalized email.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// Update rewrites an existing user record.
	Update(ctx context.Context, user *User) error
}

// InMemoryRepository is an in-memory implementation of Repository, used in
// tests and keyless local runs.
type InMemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*User
	byEmail map[string]*User
}

// NewInMemoryRepository creates a new in-memory account repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byID:    make(map[string]*User),
		byEmail: make(map[string]*User),
	}
}

// Create stores a new user.
func (r *InMemoryRepository) Create(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return ErrUserExists
	}

	stored := copyUser(user)
	r.byID[user.ID] = stored
	r.byEmail[user.Email] = stored
	return nil
}

// FindByID finds a user by ID.
func (r *InMemoryRepository) FindByID(_ context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return copyUser(user), nil
}

// FindByEmail finds a user by normalized email.
func (r *InMemoryRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return copyUser(user), nil
}

// Update rewrites an existing user record.
func (r *InMemoryRepository) Update(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.byID[user.ID]
	if !ok {
		return ErrUserNotFound
	}
	if other, taken := r.byEmail[user.Email]; taken && other.ID != user.ID {
		return ErrUserExists
	}

	delete(r.byEmail, prev.Email)
	stored := copyUser(user)
	r.byID[user.ID] = stored
	r.byEmail[user.Email] = stored
	return nil
}

// copyUser creates a deep copy to prevent mutation through shared pointers.
func copyUser(u *User) *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		c.LastLoginAt = &t
	}
	return &c
}

var _ Repository = (*InMemoryRepository)(nil)
