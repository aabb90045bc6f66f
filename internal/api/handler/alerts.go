package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aqhub/aqhub/internal/alerts"
	"github.com/aqhub/aqhub/internal/api/models"
	"github.com/aqhub/aqhub/internal/api/response"
)

// AlertsHandler handles threshold alert endpoints.
type AlertsHandler struct {
	service *alerts.Service
}

// NewAlertsHandler creates a new AlertsHandler.
func NewAlertsHandler(service *alerts.Service) *AlertsHandler {
	return &AlertsHandler{service: service}
}

// List handles GET /v1/alerts - the user's alerts, newest first.
func (h *AlertsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	items, err := h.service.List(r.Context(), userID)
	if err != nil {
		response.InternalError(w, r, "listing alerts failed")
		return
	}
	if items == nil {
		items = []*alerts.Alert{}
	}

	response.JSON(w, r, http.StatusOK, map[string]interface{}{
		"data":  items,
		"count": len(items),
	})
}

// Create handles POST /v1/alerts.
func (h *AlertsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	var req alerts.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		response.BadRequest(w, r, "validation error", alertFieldErrors(errs))
		return
	}

	alert, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		response.InternalError(w, r, "creating alert failed")
		return
	}

	location := fmt.Sprintf("/v1/alerts/%s", alert.ID)
	response.Created(w, r, location, alert)
}

// Get handles GET /v1/alerts/{alertId}.
func (h *AlertsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	alertID := chi.URLParam(r, "alertId")

	alert, err := h.service.Get(r.Context(), userID, alertID)
	if err != nil {
		if errors.Is(err, alerts.ErrNotFound) {
			response.NotFound(w, r, "alert not found")
			return
		}
		response.InternalError(w, r, "fetching alert failed")
		return
	}

	response.JSON(w, r, http.StatusOK, alert)
}

// Update handles PATCH /v1/alerts/{alertId}.
func (h *AlertsHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	alertID := chi.URLParam(r, "alertId")

	var req alerts.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		response.BadRequest(w, r, "validation error", alertFieldErrors(errs))
		return
	}

	alert, err := h.service.Update(r.Context(), userID, alertID, &req)
	if err != nil {
		if errors.Is(err, alerts.ErrNotFound) {
			response.NotFound(w, r, "alert not found")
			return
		}
		response.InternalError(w, r, "updating alert failed")
		return
	}

	response.JSON(w, r, http.StatusOK, alert)
}

// Delete handles DELETE /v1/alerts/{alertId}.
func (h *AlertsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	alertID := chi.URLParam(r, "alertId")

	if err := h.service.Delete(r.Context(), userID, alertID); err != nil {
		if errors.Is(err, alerts.ErrNotFound) {
			response.NotFound(w, r, "alert not found")
			return
		}
		response.InternalError(w, r, "deleting alert failed")
		return
	}

	response.NoContent(w, r)
}

// alertFieldErrors converts alerts validation errors to API field errors.
func alertFieldErrors(errs []alerts.FieldError) []models.FieldError {
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
