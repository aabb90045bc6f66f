// Package purpleair provides a client for the PurpleAir v1 API, the
// community sensor network source.
package purpleair

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aqhub/aqhub/internal/airquality"
	"github.com/aqhub/aqhub/internal/cache"
	"github.com/aqhub/aqhub/internal/geo"
	"github.com/aqhub/aqhub/internal/provider/resilience"
)

const (
	// DefaultBaseURL is the base URL for the PurpleAir API.
	DefaultBaseURL = "https://api.purpleair.com/v1"

	// ProviderName identifies this provider.
	ProviderName = "purpleair"

	// maxSensors caps how many sensors a radius query returns.
	maxSensors = 10

	// maxReadingAgeSeconds excludes sensors that have not reported within
	// the last hour.
	maxReadingAgeSeconds = 3600
)

// sensorFields is the ordered field list requested from the sensors endpoint.
var sensorFields = []string{
	"name", "latitude", "longitude",
	"pm2.5", "pm2.5_10minute",
	"temperature", "humidity", "pressure",
	"last_seen",
}

// ClientConfig holds configuration for the PurpleAir client.
type ClientConfig struct {
	// BaseURL is the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// APIKey authenticates requests via the X-API-Key header. Without a key
	// the client constructs fine but reports itself unavailable.
	APIKey string

	// HTTPClient is the HTTP client to use (must implement HTTPDoer).
	// If nil, a default resilient client will be created.
	HTTPClient HTTPDoer

	// Timeout for individual API requests (default: 10s).
	Timeout time.Duration

	// Readings caches radius query results. If nil, a cache with the
	// default TTL is created.
	Readings *cache.Cache[[]airquality.Reading]
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a PurpleAir API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient HTTPDoer
	readings   *cache.Cache[[]airquality.Reading]
}

// NewClient creates a new PurpleAir client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
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
		readings = cache.New[[]airquality.Reading](cache.DefaultTTL)
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		readings:   readings,
	}
}

// Name identifies this provider to the aggregator.
func (c *Client) Name() string { return ProviderName }

// Capability reports this adapter's abilities. Availability tracks whether
// an API key was configured; the aggregator skips unavailable providers
// without counting them as failures.
func (c *Client) Capability() airquality.Capability {
	return airquality.Capability{
		SupportsRadiusSearch:   true,
		SupportsFreeTextSearch: false,
		RequiresAPIKey:         true,
		Available:              c.apiKey != "",
	}
}

type sensorsResponse struct {
	Fields []string        `json:"fields"`
	Data   [][]interface{} `json:"data"`
}

// FetchByCoordinate returns up to maxSensors outdoor sensors within radiusKm
// of center, nearest first. The upstream bounding box query overshoots the
// radius, so results are re-filtered by true great-circle distance.
func (c *Client) FetchByCoordinate(ctx context.Context, center geo.Coordinate, radiusKm float64) ([]airquality.Reading, error) {
	if c.apiKey == "" {
		return nil, airquality.ErrProviderNotConfigured
	}

	key := cache.Key("nearby", formatFloat(center.Lat), formatFloat(center.Lon), formatFloat(radiusKm))
	if cached, ok := c.readings.Get(key); ok {
		return cached, nil
	}

	box := geo.BoundingBox(center, radiusKm)
	query := url.Values{
		"fields":        {strings.Join(sensorFields, ",")},
		"location_type": {"0"},
		"max_age":       {strconv.Itoa(maxReadingAgeSeconds)},
		"nwlat":         {formatFloat(box.NorthLat)},
		"nwlng":         {formatFloat(box.WestLon)},
		"selat":         {formatFloat(box.SouthLat)},
		"selng":         {formatFloat(box.EastLon)},
	}

	reqURL := fmt.Sprintf("%s/sensors?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch sensors: %v", airquality.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d from sensors endpoint", airquality.ErrProviderUnavailable, resp.StatusCode)
	}

	var result sensorsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode sensors response: %v", airquality.ErrProviderUnavailable, err)
	}

	readings := make([]airquality.Reading, 0, len(result.Data))
	for _, row := range result.Data {
		sensor := newSensorRow(result.Fields, row)
		reading, ok := c.toReading(sensor, center)
		if !ok {
			continue
		}
		if *reading.DistanceKm > radiusKm {
			continue
		}
		readings = append(readings, reading)
	}

	sort.Slice(readings, func(i, j int) bool {
		return *readings[i].DistanceKm < *readings[j].DistanceKm
	})
	if len(readings) > maxSensors {
		readings = readings[:maxSensors]
	}

	c.readings.Set(key, readings)

	return readings, nil
}

// FetchByName is unsupported: community sensors carry owner-assigned labels,
// not city names.
func (c *Client) FetchByName(_ context.Context, _, _, _ string) (*airquality.Reading, error) {
	return nil, airquality.ErrNotFound
}

// ClearCaches drops all cached radius queries, returning the number of
// evicted entries.
func (c *Client) ClearCaches() int {
	return c.readings.Clear()
}

// CacheStats reports the radius query cache counters.
func (c *Client) CacheStats() map[string]cache.Stats {
	return map[string]cache.Stats{
		"readings": c.readings.Stats(),
	}
}

// sensorRow maps the positional field arrays of a sensors response row back
// to named values.
type sensorRow struct {
	values map[string]interface{}
}

func newSensorRow(fields []string, row []interface{}) sensorRow {
	values := make(map[string]interface{}, len(fields))
	for i, f := range fields {
		if i < len(row) {
			values[f] = row[i]
		}
	}
	return sensorRow{values: values}
}

func (r sensorRow) str(field string) string {
	if s, ok := r.values[field].(string); ok {
		return s
	}
	return ""
}

func (r sensorRow) float(field string) (float64, bool) {
	if f, ok := r.values[field].(float64); ok {
		return f, true
	}
	return 0, false
}

// toReading converts one sensor row into a normalized reading. Rows without
// coordinates are dropped.
func (c *Client) toReading(sensor sensorRow, center geo.Coordinate) (airquality.Reading, bool) {
	lat, latOK := sensor.float("latitude")
	lon, lonOK := sensor.float("longitude")
	if !latOK || !lonOK {
		return airquality.Reading{}, false
	}
	coord := geo.Coordinate{Lat: lat, Lon: lon}

	name := sensor.str("name")
	if name == "" {
		name = "Unknown Sensor"
	}

	// Prefer the smoothed 10-minute PM2.5 average over the instant value.
	pm25, ok := sensor.float("pm2.5_10minute")
	if !ok {
		pm25, _ = sensor.float("pm2.5")
	}

	aqi := airquality.PM25ToAQI(pm25)
	cn := airquality.CNFromUS(aqi)
	main := airquality.PollutantPM25
	distance := geo.DistanceKm(center, coord)

	pollutants := airquality.NewPollutants()
	pollutants[airquality.PollutantPM25] = &pm25

	observedAt := time.Now().UTC()
	if lastSeen, ok := sensor.float("last_seen"); ok {
		observedAt = time.Unix(int64(lastSeen), 0).UTC()
	}

	reading := airquality.Reading{
		Source:            ProviderName,
		StationID:         airquality.SynthesizeStationID(ProviderName, name),
		DisplayName:       name,
		Coordinate:        coord,
		DistanceKm:        &distance,
		AQI:               airquality.AQI{US: aqi, CN: &cn},
		DominantPollutant: &main,
		Category:          airquality.Categorize(aqi),
		Pollutants:        pollutants,
		ObservedAt:        observedAt,
	}

	if tp, ok := sensor.float("temperature"); ok {
		reading.Weather.Temperature = &tp
	}
	if hu, ok := sensor.float("humidity"); ok {
		reading.Weather.Humidity = &hu
	}
	if pr, ok := sensor.float("pressure"); ok {
		reading.Weather.Pressure = &pr
	}

	return reading, true
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
