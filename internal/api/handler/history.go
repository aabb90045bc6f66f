package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aqhub/aqhub/internal/api/models"
	"github.com/aqhub/aqhub/internal/api/response"
	"github.com/aqhub/aqhub/internal/history"
)

// HistoryHandler handles stored reading trend endpoints.
type HistoryHandler struct {
	service *history.Service
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(service *history.Service) *HistoryHandler {
	return &HistoryHandler{service: service}
}

// List handles GET /v1/history/{stationId} - stored readings, newest first.
// Optional from/to query parameters bound the window (RFC3339).
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	stationID := chi.URLParam(r, "stationId")

	filter := history.Filter{StationID: stationID}
	query := r.URL.Query()

	if raw := query.Get("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.BadRequest(w, r, "from must be an RFC3339 timestamp", []models.FieldError{
				{Field: "from", Message: "must be an RFC3339 timestamp", Code: "INVALID"},
			})
			return
		}
		filter.Start = from
	}
	if raw := query.Get("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.BadRequest(w, r, "to must be an RFC3339 timestamp", []models.FieldError{
				{Field: "to", Message: "must be an RFC3339 timestamp", Code: "INVALID"},
			})
			return
		}
		filter.End = to
	}

	readings, err := h.service.List(r.Context(), filter)
	if err != nil {
		response.InternalError(w, r, "listing history failed")
		return
	}
	if readings == nil {
		readings = []*history.StoredReading{}
	}

	response.JSON(w, r, http.StatusOK, models.HistoryResponse{
		Data:  readings,
		Count: len(readings),
	})
}

// Statistics handles GET /v1/history/{stationId}/statistics - AQI summary
// over a trailing window, defaulting to 7 days.
func (h *HistoryHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stationID := chi.URLParam(r, "stationId")

	days := history.DefaultStatisticsDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.BadRequest(w, r, "days must be a positive integer", []models.FieldError{
				{Field: "days", Message: "must be a positive integer", Code: "INVALID"},
			})
			return
		}
		days = parsed
	}

	stats, err := h.service.Statistics(r.Context(), stationID, days)
	if err != nil {
		response.InternalError(w, r, "computing statistics failed")
		return
	}
	if stats == nil {
		response.NotFound(w, r, "no readings recorded for this station in the window")
		return
	}

	response.JSON(w, r, http.StatusOK, models.StatisticsResponse{
		StationID: stationID,
		Days:      days,
		Data:      stats,
	})
}

// Hourly handles GET /v1/history/{stationId}/hourly - hourly mean AQI over a
// trailing window, defaulting to 24 hours.
func (h *HistoryHandler) Hourly(w http.ResponseWriter, r *http.Request) {
	stationID := chi.URLParam(r, "stationId")

	window := history.DefaultHourlyWindow
	if raw := r.URL.Query().Get("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.BadRequest(w, r, "hours must be a positive integer", []models.FieldError{
				{Field: "hours", Message: "must be a positive integer", Code: "INVALID"},
			})
			return
		}
		window = time.Duration(parsed) * time.Hour
	}

	averages, err := h.service.HourlyAverages(r.Context(), stationID, window)
	if err != nil {
		response.InternalError(w, r, "computing hourly averages failed")
		return
	}
	if averages == nil {
		averages = []history.HourlyAverage{}
	}

	response.JSON(w, r, http.StatusOK, models.HourlyResponse{
		StationID: stationID,
		Data:      averages,
		Count:     len(averages),
	})
}
