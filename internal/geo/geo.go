// Package geo provides coordinate types and great-circle distance math.
package geo

import (
	"errors"
	"math"
)

// ErrInvalidCoordinates indicates a latitude or longitude out of range.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// Coordinate is a WGS84 point. Immutable value type.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks that the coordinate is within valid bounds.
func (c Coordinate) Validate() error {
	if c.Lat < -90 || c.Lat > 90 || c.Lon < -180 || c.Lon > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}

// DistanceKm returns the great-circle distance between two coordinates in
// kilometers using the haversine formula.
func DistanceKm(a, b Coordinate) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// Box is an axis-aligned bounding box in degrees.
type Box struct {
	NorthLat float64
	SouthLat float64
	EastLon  float64
	WestLon  float64
}

// BoundingBox returns a box roughly radiusKm around center. It uses the
// 1 degree ~ 111 km approximation on both axes, which overshoots longitude
// away from the equator; callers filter by true distance afterwards.
func BoundingBox(center Coordinate, radiusKm float64) Box {
	delta := radiusKm / 111.0
	return Box{
		NorthLat: center.Lat + delta,
		SouthLat: center.Lat - delta,
		EastLon:  center.Lon + delta,
		WestLon:  center.Lon - delta,
	}
}
