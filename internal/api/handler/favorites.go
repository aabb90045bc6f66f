package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aqhub/aqhub/internal/api/models"
	"github.com/aqhub/aqhub/internal/api/response"
	"github.com/aqhub/aqhub/internal/favorites"
)

// FavoritesHandler handles saved location endpoints.
type FavoritesHandler struct {
	service *favorites.Service
}

// NewFavoritesHandler creates a new FavoritesHandler.
func NewFavoritesHandler(service *favorites.Service) *FavoritesHandler {
	return &FavoritesHandler{service: service}
}

// List handles GET /v1/favorites - the user's saved locations, newest first.
func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	items, err := h.service.List(r.Context(), userID)
	if err != nil {
		response.InternalError(w, r, "listing favorites failed")
		return
	}
	if items == nil {
		items = []*favorites.Favorite{}
	}

	response.JSON(w, r, http.StatusOK, map[string]interface{}{
		"data":  items,
		"count": len(items),
	})
}

// Create handles POST /v1/favorites.
func (h *FavoritesHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	var req favorites.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		response.BadRequest(w, r, "validation error", favoriteFieldErrors(errs))
		return
	}

	favorite, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		response.InternalError(w, r, "creating favorite failed")
		return
	}

	location := fmt.Sprintf("/v1/favorites/%s", favorite.ID)
	response.Created(w, r, location, favorite)
}

// Get handles GET /v1/favorites/{favoriteId}.
func (h *FavoritesHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	favoriteID := chi.URLParam(r, "favoriteId")

	favorite, err := h.service.Get(r.Context(), userID, favoriteID)
	if err != nil {
		if errors.Is(err, favorites.ErrNotFound) {
			response.NotFound(w, r, "favorite not found")
			return
		}
		response.InternalError(w, r, "fetching favorite failed")
		return
	}

	response.JSON(w, r, http.StatusOK, favorite)
}

// Update handles PATCH /v1/favorites/{favoriteId}.
func (h *FavoritesHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	favoriteID := chi.URLParam(r, "favoriteId")

	var req favorites.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		response.BadRequest(w, r, "validation error", favoriteFieldErrors(errs))
		return
	}

	favorite, err := h.service.Update(r.Context(), userID, favoriteID, &req)
	if err != nil {
		if errors.Is(err, favorites.ErrNotFound) {
			response.NotFound(w, r, "favorite not found")
			return
		}
		response.InternalError(w, r, "updating favorite failed")
		return
	}

	response.JSON(w, r, http.StatusOK, favorite)
}

// Delete handles DELETE /v1/favorites/{favoriteId}.
func (h *FavoritesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	favoriteID := chi.URLParam(r, "favoriteId")

	if err := h.service.Delete(r.Context(), userID, favoriteID); err != nil {
		if errors.Is(err, favorites.ErrNotFound) {
			response.NotFound(w, r, "favorite not found")
			return
		}
		response.InternalError(w, r, "deleting favorite failed")
		return
	}

	response.NoContent(w, r)
}

// favoriteFieldErrors converts favorites validation errors to API field errors.
func favoriteFieldErrors(errs []favorites.FieldError) []models.FieldError {
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
