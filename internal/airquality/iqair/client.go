// Package iqair provides a client for the IQAir AirVisual v2 API, the
// professional monitoring network source.
package iqair

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aqhub/aqhub/internal/airquality"
	"github.com/aqhub/aqhub/internal/cache"
	"github.com/aqhub/aqhub/internal/geo"
	"github.com/aqhub/aqhub/internal/provider/resilience"
)

const (
	// DefaultBaseURL is the base URL for the AirVisual v2 API.
	DefaultBaseURL = "http://api.airvisual.com/v2"

	// ProviderName identifies this provider.
	ProviderName = "iqair"

	// DefaultAPIKey is the community demo key used when none is configured.
	DefaultAPIKey = "demo"
)

// ClientConfig holds configuration for the IQAir client.
type ClientConfig struct {
	// BaseURL is the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// APIKey authenticates requests. Defaults to DefaultAPIKey, which the
	// upstream accepts with tight rate limits.
	APIKey string

	// HTTPClient is the HTTP client to use (must implement HTTPDoer).
	// If nil, a default resilient client will be created.
	HTTPClient HTTPDoer

	// Timeout for individual API requests (default: 10s).
	Timeout time.Duration

	// Readings caches city and nearest-city lookups. If nil, a cache with
	// the default TTL is created.
	Readings *cache.Cache[airquality.Reading]

	// Listings caches country/state/city enumeration results. If nil, a
	// cache with the default TTL is created.
	Listings *cache.Cache[[]string]
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is an IQAir AirVisual API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient HTTPDoer
	readings   *cache.Cache[airquality.Reading]
	listings   *cache.Cache[[]string]
}

// NewClient creates a new IQAir client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = DefaultAPIKey
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		httpClient = resilience.NewClient(resilience.ClientConfig{
			Name:            ProviderName,
			Timeout:         timeout,
			MaxRetries:      3,
			InitialInterval: 200 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		})
	}

	readings := cfg.Readings
	if readings == nil {
		readings = cache.New[airquality.Reading](cache.DefaultTTL)
	}
	listings := cfg.Listings
	if listings == nil {
		listings = cache.New[[]string](cache.DefaultTTL)
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
		readings:   readings,
		listings:   listings,
	}
}

// Name identifies this provider to the aggregator.
func (c *Client) Name() string { return ProviderName }

// Capability reports this adapter's abilities. The upstream only ever
// returns its single nearest station for a coordinate, so radius search is
// simulated rather than native, and the demo key keeps it usable unkeyed.
func (c *Client) Capability() airquality.Capability {
	return airquality.Capability{
		SupportsRadiusSearch:   false,
		SupportsFreeTextSearch: false,
		RequiresAPIKey:         false,
		Available:              true,
	}
}

// API response types (from the AirVisual v2 API).

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

type failureData struct {
	Message string `json:"message"`
}

type cityData struct {
	City     string `json:"city"`
	State    string `json:"state"`
	Country  string `json:"country"`
	Location struct {
		// GeoJSON order: longitude first.
		Coordinates []float64 `json:"coordinates"`
	} `json:"location"`
	Current struct {
		Pollution struct {
			Timestamp string `json:"ts"`
			AQIUS     int    `json:"aqius"`
			MainUS    string `json:"mainus"`
			AQICN     int    `json:"aqicn"`
		} `json:"pollution"`
		Weather struct {
			Temperature   *float64 `json:"tp"`
			Humidity      *float64 `json:"hu"`
			Pressure      *float64 `json:"pr"`
			WindSpeed     *float64 `json:"ws"`
			WindDirection *float64 `json:"wd"`
		} `json:"weather"`
	} `json:"current"`
}

type countryEntry struct {
	Country string `json:"country"`
}

type stateEntry struct {
	State string `json:"state"`
}

type cityEntry struct {
	City string `json:"city"`
}

// FetchByCoordinate returns the nearest monitored city wrapped in a list, or
// an empty list when the nearest station lies beyond radiusKm.
func (c *Client) FetchByCoordinate(ctx context.Context, center geo.Coordinate, radiusKm float64) ([]airquality.Reading, error) {
	key := cache.Key("nearest", formatCoord(center.Lat), formatCoord(center.Lon))
	reading, ok := c.readings.Get(key)
	if !ok {
		query := url.Values{
			"lat": {formatCoord(center.Lat)},
			"lon": {formatCoord(center.Lon)},
		}
		data, err := c.fetch(ctx, "nearest_city", query)
		if err != nil {
			return nil, err
		}

		var city cityData
		if err := json.Unmarshal(data, &city); err != nil {
			return nil, fmt.Errorf("decode nearest city response: %w", err)
		}

		reading = c.toReading(&city)
		c.readings.Set(key, reading)
	}

	distance := geo.DistanceKm(center, reading.Coordinate)
	if distance > radiusKm {
		return nil, nil
	}
	reading.DistanceKm = &distance

	return []airquality.Reading{reading}, nil
}

// FetchByName looks up one city by its exact city/state/country triple.
// Upstream "not found" failures map to airquality.ErrNotFound.
func (c *Client) FetchByName(ctx context.Context, city, state, country string) (*airquality.Reading, error) {
	key := cache.Key("city", city, state, country)
	if cached, ok := c.readings.Get(key); ok {
		return &cached, nil
	}

	query := url.Values{
		"city":    {city},
		"country": {country},
	}
	if state != "" {
		query.Set("state", state)
	}

	data, err := c.fetch(ctx, "city", query)
	if err != nil {
		return nil, err
	}

	var payload cityData
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode city response: %w", err)
	}

	reading := c.toReading(&payload)
	c.readings.Set(key, reading)

	return &reading, nil
}

// Countries lists the countries the upstream monitors.
func (c *Client) Countries(ctx context.Context) ([]string, error) {
	key := cache.Key("countries")
	if cached, ok := c.listings.Get(key); ok {
		return cached, nil
	}

	data, err := c.fetch(ctx, "countries", url.Values{})
	if err != nil {
		return nil, err
	}

	var entries []countryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode countries response: %w", err)
	}

	countries := make([]string, 0, len(entries))
	for _, e := range entries {
		countries = append(countries, e.Country)
	}
	c.listings.Set(key, countries)

	return countries, nil
}

// States lists the states monitored within a country.
func (c *Client) States(ctx context.Context, country string) ([]string, error) {
	key := cache.Key("states", country)
	if cached, ok := c.listings.Get(key); ok {
		return cached, nil
	}

	data, err := c.fetch(ctx, "states", url.Values{"country": {country}})
	if err != nil {
		return nil, err
	}

	var entries []stateEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode states response: %w", err)
	}

	states := make([]string, 0, len(entries))
	for _, e := range entries {
		states = append(states, e.State)
	}
	c.listings.Set(key, states)

	return states, nil
}

// Cities lists the cities monitored within a state.
func (c *Client) Cities(ctx context.Context, state, country string) ([]string, error) {
	key := cache.Key("cities", state, country)
	if cached, ok := c.listings.Get(key); ok {
		return cached, nil
	}

	query := url.Values{"state": {state}, "country": {country}}
	data, err := c.fetch(ctx, "cities", query)
	if err != nil {
		return nil, err
	}

	var entries []cityEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode cities response: %w", err)
	}

	cities := make([]string, 0, len(entries))
	for _, e := range entries {
		cities = append(cities, e.City)
	}
	c.listings.Set(key, cities)

	return cities, nil
}

// ClearCaches drops all cached readings and listings, returning the number of
// evicted entries.
func (c *Client) ClearCaches() int {
	return c.readings.Clear() + c.listings.Clear()
}

// CacheStats reports the reading and listing cache counters.
func (c *Client) CacheStats() map[string]cache.Stats {
	return map[string]cache.Stats{
		"readings": c.readings.Stats(),
		"listings": c.listings.Stats(),
	}
}

// fetch performs a GET against one API endpoint and unwraps the status
// envelope, returning the raw data payload.
func (c *Client) fetch(ctx context.Context, endpoint string, query url.Values) (json.RawMessage, error) {
	query.Set("key", c.apiKey)
	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %v", airquality.ErrProviderUnavailable, endpoint, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: decode %s response: %v", airquality.ErrProviderUnavailable, endpoint, err)
	}

	if env.Status != "success" {
		var failure failureData
		_ = json.Unmarshal(env.Data, &failure)
		if isNotFound(failure.Message, resp.StatusCode) {
			return nil, fmt.Errorf("%w: %s", airquality.ErrNotFound, failure.Message)
		}
		if failure.Message == "" {
			failure.Message = env.Status
		}
		return nil, fmt.Errorf("%w: %s endpoint: %s", airquality.ErrProviderUnavailable, endpoint, failure.Message)
	}

	return env.Data, nil
}

// isNotFound classifies upstream failures that mean the query itself has no
// match, as opposed to a degraded upstream.
func isNotFound(message string, statusCode int) bool {
	lowered := strings.ToLower(message)
	return statusCode == http.StatusNotFound ||
		strings.Contains(lowered, "not found") ||
		strings.Contains(lowered, "no nearest station")
}

// toReading converts an upstream city payload to the normalized reading.
func (c *Client) toReading(data *cityData) airquality.Reading {
	coord := geo.Coordinate{}
	if len(data.Location.Coordinates) >= 2 {
		coord.Lon = data.Location.Coordinates[0]
		coord.Lat = data.Location.Coordinates[1]
	}

	name := data.City
	if data.State != "" {
		name += ", " + data.State
	}
	name += ", " + data.Country

	var main *string
	if data.Current.Pollution.MainUS != "" {
		m := data.Current.Pollution.MainUS
		main = &m
	}

	cn := data.Current.Pollution.AQICN
	observedAt, _ := time.Parse(time.RFC3339, data.Current.Pollution.Timestamp)

	return airquality.Reading{
		Source:            ProviderName,
		StationID:         airquality.SynthesizeStationID(data.City, data.State, data.Country),
		DisplayName:       name,
		Coordinate:        coord,
		AQI:               airquality.AQI{US: data.Current.Pollution.AQIUS, CN: &cn},
		DominantPollutant: main,
		Category:          airquality.Categorize(data.Current.Pollution.AQIUS),
		Pollutants:        airquality.NewPollutants(),
		Weather: airquality.Weather{
			Temperature:   data.Current.Weather.Temperature,
			Humidity:      data.Current.Weather.Humidity,
			Pressure:      data.Current.Weather.Pressure,
			WindSpeed:     data.Current.Weather.WindSpeed,
			WindDirection: data.Current.Weather.WindDirection,
		},
		ObservedAt: observedAt,
	}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
