package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aqhub/aqhub/internal/airquality"
)

// Service provides alert operations scoped to a user.
type Service struct {
	repo Repository
}

// NewService creates a new alerts service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create stores a new alert. The pollutant defaults to aqi and the delivery
// method to email.
func (s *Service) Create(ctx context.Context, userID string, req *CreateRequest) (*Alert, error) {
	if errs := req.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("validation error: %s", errs[0].Message)
	}

	pollutant := req.Pollutant
	if pollutant == "" {
		pollutant = PollutantAQI
	}
	method := req.Method
	if method == "" {
		method = NotifyEmail
	}

	alert := &Alert{
		ID:         "alr_" + uuid.New().String()[:22],
		UserID:     userID,
		LocationID: req.LocationID,
		Threshold:  *req.Threshold,
		Pollutant:  pollutant,
		Enabled:    true,
		Method:     method,
		CreatedAt:  time.Now(),
	}

	if err := s.repo.Create(ctx, alert); err != nil {
		return nil, fmt.Errorf("creating alert: %w", err)
	}
	return alert, nil
}

// Get retrieves one alert owned by the user.
func (s *Service) Get(ctx context.Context, userID, id string) (*Alert, error) {
	return s.repo.Get(ctx, userID, id)
}

// List returns the user's alerts, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]*Alert, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Update applies the non-nil fields of req to an existing alert.
func (s *Service) Update(ctx context.Context, userID, id string, req *UpdateRequest) (*Alert, error) {
	if errs := req.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("validation error: %s", errs[0].Message)
	}

	alert, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Threshold != nil {
		alert.Threshold = *req.Threshold
	}
	if req.Pollutant != nil {
		alert.Pollutant = *req.Pollutant
	}
	if req.Enabled != nil {
		alert.Enabled = *req.Enabled
	}
	if req.Method != nil {
		alert.Method = *req.Method
	}

	if err := s.repo.Update(ctx, alert); err != nil {
		return nil, err
	}
	return alert, nil
}

// Delete removes one alert owned by the user.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}

// EvaluateReading checks the reading against every enabled alert and returns
// the alerts it trips.
func (s *Service) EvaluateReading(ctx context.Context, reading *airquality.Reading) ([]*Alert, error) {
	enabled, err := s.repo.ListEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing enabled alerts: %w", err)
	}

	var fired []*Alert
	for _, alert := range enabled {
		if Evaluate(reading, alert) {
			fired = append(fired, alert)
		}
	}
	return fired, nil
}
