// Package handler provides HTTP handlers for the aqhub API.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/aqhub/aqhub/internal/airquality"
	"github.com/aqhub/aqhub/internal/api/models"
	"github.com/aqhub/aqhub/internal/api/response"
	"github.com/aqhub/aqhub/internal/geo"
)

// AQIHandler handles air quality query endpoints.
type AQIHandler struct {
	aggregator *airquality.Aggregator
	resolver   *airquality.Resolver
	browser    airquality.Browser
}

// NewAQIHandler creates a new AQIHandler.
func NewAQIHandler(aggregator *airquality.Aggregator, resolver *airquality.Resolver, browser airquality.Browser) *AQIHandler {
	return &AQIHandler{
		aggregator: aggregator,
		resolver:   resolver,
		browser:    browser,
	}
}

// Nearby handles GET /v1/aqi/nearby - merged multi-source station search
// around a coordinate.
func (h *AQIHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var fieldErrors []models.FieldError
	lat, err := strconv.ParseFloat(query.Get("lat"), 64)
	if err != nil {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "lat", Message: "lat must be a number", Code: "INVALID"})
	}
	lon, err := strconv.ParseFloat(query.Get("lon"), 64)
	if err != nil {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "lon", Message: "lon must be a number", Code: "INVALID"})
	}
	if len(fieldErrors) > 0 {
		response.BadRequest(w, r, "lat and lon query parameters are required", fieldErrors)
		return
	}

	radiusKm := airquality.DefaultRadiusKm
	if raw := query.Get("radius"); raw != "" {
		radiusKm, err = strconv.ParseFloat(raw, 64)
		if err != nil || radiusKm <= 0 {
			response.BadRequest(w, r, "radius must be a positive number", []models.FieldError{
				{Field: "radius", Message: "radius must be a positive number", Code: "INVALID"},
			})
			return
		}
	}

	var sources []string
	if raw := query.Get("sources"); raw != "" {
		sources = strings.Split(raw, ",")
	}

	center := geo.Coordinate{Lat: lat, Lon: lon}
	readings, statuses, err := h.aggregator.Nearby(r.Context(), center, radiusKm, sources)
	if err != nil {
		if errors.Is(err, geo.ErrInvalidCoordinates) {
			response.BadRequest(w, r, "coordinates are out of range", []models.FieldError{
				{Field: "lat", Message: "lat must be between -90 and 90", Code: "OUT_OF_RANGE"},
				{Field: "lon", Message: "lon must be between -180 and 180", Code: "OUT_OF_RANGE"},
			})
			return
		}
		response.InternalError(w, r, "nearby search failed")
		return
	}

	if readings == nil {
		readings = []airquality.Reading{}
	}

	response.JSON(w, r, http.StatusOK, models.NearbyResponse{
		Data:    readings,
		Sources: statuses,
		Meta: models.NearbyMeta{
			Lat:      lat,
			Lon:      lon,
			RadiusKm: radiusKm,
			Count:    len(readings),
		},
	})
}

// City handles GET /v1/aqi/city - free-text city lookup through the
// resolution strategies.
func (h *AQIHandler) City(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	city := strings.TrimSpace(query.Get("city"))
	state := strings.TrimSpace(query.Get("state"))
	country := strings.TrimSpace(query.Get("country"))

	var fieldErrors []models.FieldError
	if city == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "city", Message: "city is required", Code: "REQUIRED"})
	}
	if country == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "country", Message: "country is required", Code: "REQUIRED"})
	}
	if len(fieldErrors) > 0 {
		response.BadRequest(w, r, "city and country query parameters are required", fieldErrors)
		return
	}

	resolution, err := h.resolver.ResolveCity(r.Context(), city, state, country)
	if err != nil {
		var notFound *airquality.NotFoundError
		if errors.As(err, &notFound) {
			writeCityNotFound(w, r, notFound)
			return
		}
		writeProviderError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.CityResponse{
		Data:   resolution.Reading,
		Method: string(resolution.Method),
	})
}

// Countries handles GET /v1/aqi/countries.
func (h *AQIHandler) Countries(w http.ResponseWriter, r *http.Request) {
	countries, err := h.browser.Countries(r.Context())
	if err != nil {
		writeProviderError(w, r, err)
		return
	}
	writeListing(w, r, countries)
}

// States handles GET /v1/aqi/states.
func (h *AQIHandler) States(w http.ResponseWriter, r *http.Request) {
	country := strings.TrimSpace(r.URL.Query().Get("country"))
	if country == "" {
		response.BadRequest(w, r, "country query parameter is required", []models.FieldError{
			{Field: "country", Message: "country is required", Code: "REQUIRED"},
		})
		return
	}

	states, err := h.browser.States(r.Context(), country)
	if err != nil {
		writeProviderError(w, r, err)
		return
	}
	writeListing(w, r, states)
}

// Cities handles GET /v1/aqi/cities.
func (h *AQIHandler) Cities(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	state := strings.TrimSpace(query.Get("state"))
	country := strings.TrimSpace(query.Get("country"))

	var fieldErrors []models.FieldError
	if state == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "state", Message: "state is required", Code: "REQUIRED"})
	}
	if country == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "country", Message: "country is required", Code: "REQUIRED"})
	}
	if len(fieldErrors) > 0 {
		response.BadRequest(w, r, "state and country query parameters are required", fieldErrors)
		return
	}

	cities, err := h.browser.Cities(r.Context(), state, country)
	if err != nil {
		writeProviderError(w, r, err)
		return
	}
	writeListing(w, r, cities)
}

// Sources handles GET /v1/aqi/sources - registered data sources and their
// capabilities.
func (h *AQIHandler) Sources(w http.ResponseWriter, r *http.Request) {
	providers := h.aggregator.Providers()
	sources := make([]models.SourceInfo, 0, len(providers))
	for _, p := range providers {
		sources = append(sources, models.SourceInfo{
			Name:       p.Name(),
			Capability: p.Capability(),
		})
	}
	response.JSON(w, r, http.StatusOK, models.SourcesResponse{Sources: sources})
}

// writeListing writes a browse listing response.
func writeListing(w http.ResponseWriter, r *http.Request, names []string) {
	if names == nil {
		names = []string{}
	}
	response.JSON(w, r, http.StatusOK, models.ListingResponse{
		Data:  names,
		Count: len(names),
	})
}

// writeCityNotFound writes a 404 with the resolver's recovery suggestions.
func writeCityNotFound(w http.ResponseWriter, r *http.Request, notFound *airquality.NotFoundError) {
	problem := models.NewNotFound(requestTraceID(r), notFound.Error()).
		WithSuggestions(notFound.Suggestions())
	response.Error(w, r, problem)
}

// writeProviderError maps provider errors to HTTP responses.
func writeProviderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, airquality.ErrNotFound):
		response.NotFound(w, r, "no matching station found")
	case errors.Is(err, airquality.ErrProviderNotConfigured):
		response.ServiceUnavailable(w, r, "data source is not configured")
	case errors.Is(err, airquality.ErrProviderUnavailable):
		response.ServiceUnavailable(w, r, "data source is temporarily unavailable")
	default:
		response.InternalError(w, r, "air quality lookup failed")
	}
}
