// Package favorites manages a user's saved monitoring locations.
package favorites

import (
	"strings"
	"time"

	"github.com/aqhub/aqhub/internal/geo"
)

// Favorite is a saved location owned by one user.
type Favorite struct {
	ID         string         `json:"id"`
	UserID     string         `json:"-"`
	Name       string         `json:"name"`
	Coordinate geo.Coordinate `json:"coordinates"`
	StationID  *string        `json:"stationId,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// CreateRequest is the payload for saving a location.
type CreateRequest struct {
	Name       string         `json:"name"`
	Coordinate geo.Coordinate `json:"coordinates"`
	StationID  *string        `json:"stationId,omitempty"`
}

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Validate checks the create payload.
func (r *CreateRequest) Validate() []FieldError {
	var errs []FieldError

	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required", Code: "REQUIRED"})
	}
	if r.Coordinate.Validate() != nil {
		errs = append(errs, FieldError{Field: "coordinates", Message: "coordinates are out of range", Code: "INVALID"})
	}

	return errs
}

// UpdateRequest is the payload for renaming or moving a saved location.
// Nil fields are left unchanged.
type UpdateRequest struct {
	Name       *string         `json:"name,omitempty"`
	Coordinate *geo.Coordinate `json:"coordinates,omitempty"`
	StationID  *string         `json:"stationId,omitempty"`
}

// Validate checks the update payload.
func (r *UpdateRequest) Validate() []FieldError {
	var errs []FieldError

	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name cannot be empty", Code: "INVALID"})
	}
	if r.Coordinate != nil && r.Coordinate.Validate() != nil {
		errs = append(errs, FieldError{Field: "coordinates", Message: "coordinates are out of range", Code: "INVALID"})
	}

	return errs
}
