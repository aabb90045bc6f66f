// Package airquality provides the normalized air quality reading model and
// the multi-source aggregation pipeline built on top of it.
package airquality

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/aqhub/aqhub/internal/geo"
)

// Provider errors.
var (
	// ErrNotFound indicates a well-formed query with no matching station or city.
	ErrNotFound = errors.New("no matching station found")

	// ErrProviderUnavailable indicates an upstream network, status, or payload failure.
	ErrProviderUnavailable = errors.New("air quality provider unavailable")

	// ErrProviderNotConfigured indicates a provider was invoked without its credential.
	ErrProviderNotConfigured = errors.New("air quality provider not configured")
)

// Pollutant keys used in Reading.Pollutants. Every reading carries all six;
// sources populate only what they measure.
const (
	PollutantPM25 = "pm25"
	PollutantPM10 = "pm10"
	PollutantO3   = "o3"
	PollutantNO2  = "no2"
	PollutantSO2  = "so2"
	PollutantCO   = "co"
)

// PollutantKeys lists the fixed pollutant keys in canonical order.
var PollutantKeys = []string{
	PollutantPM25, PollutantPM10, PollutantO3,
	PollutantNO2, PollutantSO2, PollutantCO,
}

// AQI holds air quality index values. The US EPA scale is mandatory; the
// China scale is best-effort and approximated when a source reports only PM2.5.
type AQI struct {
	US int  `json:"us"`
	CN *int `json:"cn"`
}

// Weather holds the meteorological readings a station reports alongside
// pollution data. All fields are optional.
type Weather struct {
	Temperature   *float64 `json:"temperature"`
	Humidity      *float64 `json:"humidity"`
	Pressure      *float64 `json:"pressure"`
	WindSpeed     *float64 `json:"windSpeed"`
	WindDirection *float64 `json:"windDirection"`
}

// Reading is the unified record every provider adapter produces.
// A Reading is never mutated after construction, and its Category is always
// derived from AQI.US via Categorize.
type Reading struct {
	Source            string              `json:"source"`
	StationID         string              `json:"stationId"`
	DisplayName       string              `json:"name"`
	Coordinate        geo.Coordinate      `json:"coordinates"`
	DistanceKm        *float64            `json:"distance,omitempty"`
	AQI               AQI                 `json:"aqi"`
	DominantPollutant *string             `json:"mainPollutant"`
	Category          Category            `json:"category"`
	Pollutants        map[string]*float64 `json:"pollutants"`
	Weather           Weather             `json:"weather"`
	ObservedAt        time.Time           `json:"observedAt"`
}

// NewPollutants returns a pollutant map with all six fixed keys set to nil.
func NewPollutants() map[string]*float64 {
	m := make(map[string]*float64, len(PollutantKeys))
	for _, k := range PollutantKeys {
		m[k] = nil
	}
	return m
}

var whitespaceRegex = regexp.MustCompile(`\s+`)

// SynthesizeStationID builds a deterministic station ID for sources that lack
// a natural one: parts joined with hyphens, lowercased, whitespace collapsed
// to hyphens.
func SynthesizeStationID(parts ...string) string {
	joined := strings.Join(parts, "-")
	return strings.ToLower(whitespaceRegex.ReplaceAllString(strings.TrimSpace(joined), "-"))
}

// Capability describes what a provider adapter can do and whether it is
// currently usable. Static per adapter except Available, which reflects
// credential presence at construction time.
type Capability struct {
	SupportsRadiusSearch   bool `json:"supportsRadiusSearch"`
	SupportsFreeTextSearch bool `json:"supportsFreeTextSearch"`
	RequiresAPIKey         bool `json:"requiresApiKey"`
	Available              bool `json:"available"`
}
