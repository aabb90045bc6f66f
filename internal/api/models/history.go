package models

import "github.com/aqhub/aqhub/internal/history"

// HistoryResponse is a station's stored readings, newest first.
type HistoryResponse struct {
	Data  []*history.StoredReading `json:"data"`
	Count int                      `json:"count"`
}

// StatisticsResponse summarizes a station's AQI over a trailing window.
type StatisticsResponse struct {
	StationID string              `json:"stationId"`
	Days      int                 `json:"days"`
	Data      *history.Statistics `json:"data"`
}

// HourlyResponse is a station's hourly mean AQI series.
type HourlyResponse struct {
	StationID string                  `json:"stationId"`
	Data      []history.HourlyAverage `json:"data"`
	Count     int                     `json:"count"`
}
