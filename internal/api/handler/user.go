package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aqhub/aqhub/internal/api/models"
	"github.com/aqhub/aqhub/internal/api/response"
	"github.com/aqhub/aqhub/internal/auth"
)

// UserHandler handles account endpoints.
type UserHandler struct {
	authService *auth.Service
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authService *auth.Service) *UserHandler {
	return &UserHandler{
		authService: authService,
	}
}

// Register handles POST /v1/users/register - account creation.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		response.BadRequest(w, r, "validation error", authFieldErrors(errs))
		return
	}

	tokenResp, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			response.Conflict(w, r, "an account with this email already exists")
			return
		}
		response.InternalError(w, r, "registration failed")
		return
	}

	response.Created(w, r, "/v1/users/me", tokenResp)
}

// Login handles POST /v1/users/login - email/password authentication.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		response.BadRequest(w, r, "validation error", authFieldErrors(errs))
		return
	}

	tokenResp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			response.Unauthorized(w, r, "invalid email or password")
			return
		}
		response.InternalError(w, r, "login failed")
		return
	}

	response.JSON(w, r, http.StatusOK, tokenResp)
}

// Me handles GET /v1/users/me - the authenticated user's account.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	user, err := h.authService.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			response.NotFound(w, r, "user not found")
			return
		}
		response.InternalError(w, r, "fetching account failed")
		return
	}

	response.JSON(w, r, http.StatusOK, user)
}

// UpdateProfile handles PATCH /v1/users/me - name/email updates.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	var req auth.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	user, err := h.authService.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			response.NotFound(w, r, "user not found")
		case errors.Is(err, auth.ErrUserExists):
			response.Conflict(w, r, "an account with this email already exists")
		default:
			response.InternalError(w, r, "updating account failed")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, user)
}

// ChangePassword handles POST /v1/users/me/password.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	var req auth.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		response.BadRequest(w, r, "validation error", authFieldErrors(errs))
		return
	}

	if err := h.authService.ChangePassword(r.Context(), userID, &req); err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			response.Unauthorized(w, r, "current password is incorrect")
		case errors.Is(err, auth.ErrUserNotFound):
			response.NotFound(w, r, "user not found")
		default:
			response.InternalError(w, r, "changing password failed")
		}
		return
	}

	response.NoContent(w, r)
}

// authFieldErrors converts auth validation errors to API field errors.
func authFieldErrors(errs []auth.FieldError) []models.FieldError {
	fieldErrors := make([]models.FieldError, len(errs))
	for i, e := range errs {
		fieldErrors[i] = models.FieldError{
			Field:   e.Field,
			Message: e.Message,
			Code:    e.Code,
		}
	}
	return fieldErrors
}
