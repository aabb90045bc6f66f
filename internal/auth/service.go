package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for a wrong email/password pair. The
// wording never reveals which half was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// bcryptCost is the work factor for password hashing.
const bcryptCost = 10

// Service provides account operations.
type Service struct {
	jwtService *JWTService
	repo       Repository
}

// ServiceConfig holds configuration for the auth service.
type ServiceConfig struct {
	JWTService *JWTService
	Repo       Repository
}

// NewService creates a new auth service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		jwtService: cfg.JWTService,
		repo:       cfg.Repo,
	}
}

// Register creates a new account and returns a token for it.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*TokenResponse, error) {
	if errs := req.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("validation error: %s", errs[0].Message)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &User{
		ID:           generateUserID(),
		Email:        normalizeEmail(req.Email),
		Name:         req.Name,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.tokenResponse(user)
}

// Login authenticates an email/password pair and returns a token. The last
// login timestamp is updated on success.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error) {
	if errs := req.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("validation error: %s", errs[0].Message)
	}

	user, err := s.repo.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("recording login: %w", err)
	}

	return s.tokenResponse(user)
}

// ValidateToken validates an access token and returns the user ID.
func (s *Service) ValidateToken(tokenString string) (string, error) {
	claims, err := s.jwtService.ValidateToken(tokenString)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

// GetUser retrieves a user by ID.
func (s *Service) GetUser(ctx context.Context, userID string) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

// UpdateProfile changes the user's name and/or email. An email already used
// by another account is rejected with ErrUserExists.
func (s *Service) UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = normalizeEmail(req.Email)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// ChangePassword verifies the current password and stores a hash of the new
// one.
func (s *Service) ChangePassword(ctx context.Context, userID string, req *ChangePasswordRequest) error {
	if errs := req.Validate(); len(errs) > 0 {
		return fmt.Errorf("validation error: %s", errs[0].Message)
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	user.PasswordHash = string(hash)
	return s.repo.Update(ctx, user)
}

// tokenResponse generates the token envelope for a user.
func (s *Service) tokenResponse(user *User) (*TokenResponse, error) {
	token, expiresAt, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}

	return &TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(time.Until(expiresAt).Seconds()),
		User:      user,
	}, nil
}

// generateUserID generates a unique user ID with prefix.
func generateUserID() string {
	return "usr_" + uuid.New().String()[:22]
}
