// Package auth provides account registration, login, and token-based
// authentication.
package auth

import (
	"strings"
	"time"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

// User represents a registered account.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLoginAt  *time.Time `json:"lastLogin,omitempty"`
}

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// RegisterRequest is the payload for account creation.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Validate checks the registration payload.
func (r *RegisterRequest) Validate() []FieldError {
	var errs []FieldError

	if strings.TrimSpace(r.Email) == "" {
		errs = append(errs, FieldError{Field: "email", Message: "email is required", Code: "REQUIRED"})
	} else if !strings.Contains(r.Email, "@") {
		errs = append(errs, FieldError{Field: "email", Message: "email is not valid", Code: "INVALID"})
	}

	if r.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "password is required", Code: "REQUIRED"})
	} else if len(r.Password) < MinPasswordLength {
		errs = append(errs, FieldError{Field: "password", Message: "password must be at least 6 characters", Code: "TOO_SHORT"})
	}

	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required", Code: "REQUIRED"})
	}

	return errs
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the login payload.
func (r *LoginRequest) Validate() []FieldError {
	var errs []FieldError

	if strings.TrimSpace(r.Email) == "" {
		errs = append(errs, FieldError{Field: "email", Message: "email is required", Code: "REQUIRED"})
	}
	if r.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "password is required", Code: "REQUIRED"})
	}

	return errs
}

// UpdateProfileRequest is the payload for profile updates. Zero-value fields
// are left unchanged.
type UpdateProfileRequest struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// ChangePasswordRequest is the payload for password changes.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Validate checks the password change payload.
func (r *ChangePasswordRequest) Validate() []FieldError {
	var errs []FieldError

	if r.CurrentPassword == "" {
		errs = append(errs, FieldError{Field: "currentPassword", Message: "current password is required", Code: "REQUIRED"})
	}
	if r.NewPassword == "" {
		errs = append(errs, FieldError{Field: "newPassword", Message: "new password is required", Code: "REQUIRED"})
	} else if len(r.NewPassword) < MinPasswordLength {
		errs = append(errs, FieldError{Field: "newPassword", Message: "new password must be at least 6 characters", Code: "TOO_SHORT"})
	}

	return errs
}

// TokenResponse is returned after successful registration or login.
type TokenResponse struct {
	// Token is the JWT access token for API authentication.
	Token string `json:"token"`

	// TokenType is always "Bearer".
	TokenType string `json:"tokenType"`

	// ExpiresIn is the number of seconds until the token expires.
	ExpiresIn int64 `json:"expiresIn"`

	// User contains the authenticated user's information.
	User *User `json:"user"`
}

// normalizeEmail lowercases and trims an email for storage and lookup.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
