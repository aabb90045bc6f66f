// Package history records readings over time and serves trend queries.
package history

import (
	"time"

	"github.com/aqhub/aqhub/internal/airquality"
)

// StoredReading is one historical data point for a station.
type StoredReading struct {
	ID         string              `json:"id"`
	StationID  string              `json:"stationId"`
	Timestamp  time.Time           `json:"timestamp"`
	AQI        int                 `json:"aqi"`
	Pollutants map[string]*float64 `json:"pollutants"`
	Weather    airquality.Weather  `json:"weather"`
}

// Statistics summarizes a station's readings over a period.
type Statistics struct {
	Count     int       `json:"count"`
	Average   int       `json:"average"`
	Min       int       `json:"min"`
	Max       int       `json:"max"`
	Current   int       `json:"current"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// HourlyAverage is the mean AQI for one clock hour.
type HourlyAverage struct {
	Timestamp time.Time `json:"timestamp"`
	AQI       int       `json:"aqi"`
	Count     int       `json:"count"`
}

// Filter bounds a history listing. Zero time values mean unbounded.
type Filter struct {
	StationID string
	Start     time.Time
	End       time.Time
}
