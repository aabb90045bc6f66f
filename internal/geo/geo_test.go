package geo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqhub/aqhub/internal/geo"
)

func TestDistanceKm_Identity(t *testing.T) {
	p := geo.Coordinate{Lat: 13.75, Lon: 100.5}
	assert.Zero(t, geo.DistanceKm(p, p))
}

func TestDistanceKm_Symmetry(t *testing.T) {
	a := geo.Coordinate{Lat: 52.370, Lon: 4.895}
	b := geo.Coordinate{Lat: 48.857, Lon: 2.352}
	assert.Equal(t, geo.DistanceKm(a, b), geo.DistanceKm(b, a))
}

func TestDistanceKm_KnownDistances(t *testing.T) {
	tests := []struct {
		name     string
		a, b     geo.Coordinate
		expected float64
		delta    float64
	}{
		{
			name:     "Amsterdam to Paris",
			a:        geo.Coordinate{Lat: 52.370, Lon: 4.895},
			b:        geo.Coordinate{Lat: 48.857, Lon: 2.352},
			expected: 430,
			delta:    5,
		},
		{
			name:     "one degree of latitude",
			a:        geo.Coordinate{Lat: 0, Lon: 0},
			b:        geo.Coordinate{Lat: 1, Lon: 0},
			expected: 111.19,
			delta:    0.1,
		},
		{
			name:     "antipodal points",
			a:        geo.Coordinate{Lat: 0, Lon: 0},
			b:        geo.Coordinate{Lat: 0, Lon: 180},
			expected: 20015,
			delta:    5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, geo.DistanceKm(tt.a, tt.b), tt.delta)
		})
	}
}

func TestCoordinate_Validate(t *testing.T) {
	require.NoError(t, geo.Coordinate{Lat: 90, Lon: -180}.Validate())
	require.NoError(t, geo.Coordinate{Lat: -90, Lon: 180}.Validate())

	tests := []struct {
		name string
		c    geo.Coordinate
	}{
		{"lat too high", geo.Coordinate{Lat: 90.1, Lon: 0}},
		{"lat too low", geo.Coordinate{Lat: -90.1, Lon: 0}},
		{"lon too high", geo.Coordinate{Lat: 0, Lon: 180.1}},
		{"lon too low", geo.Coordinate{Lat: 0, Lon: -180.1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.c.Validate(), geo.ErrInvalidCoordinates)
		})
	}
}

func TestBoundingBox(t *testing.T) {
	box := geo.BoundingBox(geo.Coordinate{Lat: 13.75, Lon: 100.5}, 55.5)

	assert.InDelta(t, 14.25, box.NorthLat, 0.001)
	assert.InDelta(t, 13.25, box.SouthLat, 0.001)
	assert.InDelta(t, 101.0, box.EastLon, 0.001)
	assert.InDelta(t, 100.0, box.WestLon, 0.001)
}
