package favorites

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service provides favorite location operations scoped to a user.
type Service struct {
	repo Repository
}

// NewService creates a new favorites service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create saves a new favorite location for the user.
func (s *Service) Create(ctx context.Context, userID string, req *CreateRequest) (*Favorite, error) {
	if errs := req.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("validation error: %s", errs[0].Message)
	}

	favorite := &Favorite{
		ID:         "fav_" + uuid.New().String()[:22],
		UserID:     userID,
		Name:       req.Name,
		Coordinate: req.Coordinate,
		StationID:  req.StationID,
		CreatedAt:  time.Now(),
	}

	if err := s.repo.Create(ctx, favorite); err != nil {
		return nil, fmt.Errorf("creating favorite: %w", err)
	}
	return favorite, nil
}

// Get retrieves one favorite owned by the user.
func (s *Service) Get(ctx context.Context, userID, id string) (*Favorite, error) {
	return s.repo.Get(ctx, userID, id)
}

// List returns the user's favorites, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]*Favorite, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Update applies the non-nil fields of req to an existing favorite.
func (s *Service) Update(ctx context.Context, userID, id string, req *UpdateRequest) (*Favorite, error) {
	if errs := req.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("validation error: %s", errs[0].Message)
	}

	favorite, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		favorite.Name = *req.Name
	}
	if req.Coordinate != nil {
		favorite.Coordinate = *req.Coordinate
	}
	if req.StationID != nil {
		favorite.StationID = req.StationID
	}

	if err := s.repo.Update(ctx, favorite); err != nil {
		return nil, err
	}
	return favorite, nil
}

// Delete removes one favorite owned by the user.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}
