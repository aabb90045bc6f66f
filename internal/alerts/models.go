// Package alerts manages per-user pollution threshold alerts.
package alerts

import (
	"time"

	"github.com/aqhub/aqhub/internal/airquality"
)

// Pollutant selects which metric an alert watches.
type Pollutant string

// Watchable metrics.
const (
	PollutantPM25 Pollutant = "pm25"
	PollutantPM10 Pollutant = "pm10"
	PollutantAQI  Pollutant = "aqi"
)

// Valid reports whether the pollutant is a known metric.
func (p Pollutant) Valid() bool {
	switch p {
	case PollutantPM25, PollutantPM10, PollutantAQI:
		return true
	}
	return false
}

// NotificationMethod selects how a fired alert is delivered.
type NotificationMethod string

// Delivery channels.
const (
	NotifyEmail NotificationMethod = "email"
	NotifyPush  NotificationMethod = "push"
	NotifySMS   NotificationMethod = "sms"
)

// Valid reports whether the method is a known channel.
func (m NotificationMethod) Valid() bool {
	switch m {
	case NotifyEmail, NotifyPush, NotifySMS:
		return true
	}
	return false
}

// Alert is a threshold rule owned by one user, optionally tied to a saved
// location.
type Alert struct {
	ID         string             `json:"id"`
	UserID     string             `json:"-"`
	LocationID *string            `json:"locationId,omitempty"`
	Threshold  float64            `json:"threshold"`
	Pollutant  Pollutant          `json:"pollutant"`
	Enabled    bool               `json:"enabled"`
	Method     NotificationMethod `json:"notificationMethod"`
	CreatedAt  time.Time          `json:"createdAt"`
}

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// CreateRequest is the payload for creating an alert. Pollutant defaults to
// aqi and the method to email.
type CreateRequest struct {
	LocationID *string            `json:"locationId,omitempty"`
	Threshold  *float64           `json:"threshold"`
	Pollutant  Pollutant          `json:"pollutant,omitempty"`
	Method     NotificationMethod `json:"notificationMethod,omitempty"`
}

// Validate checks the create payload.
func (r *CreateRequest) Validate() []FieldError {
	var errs []FieldError

	if r.Threshold == nil {
		errs = append(errs, FieldError{Field: "threshold", Message: "threshold is required", Code: "REQUIRED"})
	} else if *r.Threshold < 0 {
		errs = append(errs, FieldError{Field: "threshold", Message: "threshold must be a positive number", Code: "INVALID"})
	}

	if r.Pollutant != "" && !r.Pollutant.Valid() {
		errs = append(errs, FieldError{Field: "pollutant", Message: "pollutant must be pm25, pm10, or aqi", Code: "INVALID"})
	}
	if r.Method != "" && !r.Method.Valid() {
		errs = append(errs, FieldError{Field: "notificationMethod", Message: "notification method must be email, push, or sms", Code: "INVALID"})
	}

	return errs
}

// UpdateRequest is the payload for changing an alert. Nil fields are left
// unchanged.
type UpdateRequest struct {
	Threshold *float64            `json:"threshold,omitempty"`
	Pollutant *Pollutant          `json:"pollutant,omitempty"`
	Enabled   *bool               `json:"enabled,omitempty"`
	Method    *NotificationMethod `json:"notificationMethod,omitempty"`
}

// Validate checks the update payload.
func (r *UpdateRequest) Validate() []FieldError {
	var errs []FieldError

	if r.Threshold != nil && *r.Threshold < 0 {
		errs = append(errs, FieldError{Field: "threshold", Message: "threshold must be a positive number", Code: "INVALID"})
	}
	if r.Pollutant != nil && !r.Pollutant.Valid() {
		errs = append(errs, FieldError{Field: "pollutant", Message: "pollutant must be pm25, pm10, or aqi", Code: "INVALID"})
	}
	if r.Method != nil && !r.Method.Valid() {
		errs = append(errs, FieldError{Field: "notificationMethod", Message: "notification method must be email, push, or sms", Code: "INVALID"})
	}

	return errs
}

// Evaluate reports whether a reading trips the alert. Disabled alerts never
// fire, and neither does a watched pollutant the reading has no value for.
func Evaluate(reading *airquality.Reading, alert *Alert) bool {
	if reading == nil || alert == nil || !alert.Enabled {
		return false
	}

	switch alert.Pollutant {
	case PollutantAQI:
		return float64(reading.AQI.US) > alert.Threshold
	case PollutantPM25:
		if v := reading.Pollutants[airquality.PollutantPM25]; v != nil {
			return *v > alert.Threshold
		}
	case PollutantPM10:
		if v := reading.Pollutants[airquality.PollutantPM10]; v != nil {
			return *v > alert.Threshold
		}
	}

	return false
}
