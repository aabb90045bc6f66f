package models

import "github.com/aqhub/aqhub/internal/airquality"

// NearbyResponse is the merged multi-source station list for a coordinate query.
type NearbyResponse struct {
	Data    []airquality.Reading      `json:"data"`
	Sources []airquality.SourceStatus `json:"sources"`
	Meta    NearbyMeta                `json:"meta"`
}

// NearbyMeta echoes the effective query parameters.
type NearbyMeta struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	RadiusKm float64 `json:"radiusKm"`
	Count    int     `json:"count"`
}

// CityResponse is a resolved city reading plus the strategy that found it.
type CityResponse struct {
	Data   *airquality.Reading `json:"data"`
	Method string              `json:"method"`
}

// ListingResponse is a browse result: country, state, or city names.
type ListingResponse struct {
	Data  []string `json:"data"`
	Count int      `json:"count"`
}

// SourceInfo describes one registered data source and its capabilities.
type SourceInfo struct {
	Name       string                `json:"name"`
	Capability airquality.Capability `json:"capability"`
}

// SourcesResponse lists the registered data sources.
type SourcesResponse struct {
	Sources []SourceInfo `json:"sources"`
}
