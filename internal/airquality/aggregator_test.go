package airquality_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqhub/aqhub/internal/airquality"
	"github.com/aqhub/aqhub/internal/geo"
)

// stubProvider is a canned-response provider for aggregator tests.
type stubProvider struct {
	name      string
	available bool
	readings  []airquality.Reading
	err       error
	calls     int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Capability() airquality.Capability {
	return airquality.Capability{Available: s.available}
}

func (s *stubProvider) FetchByCoordinate(_ context.Context, _ geo.Coordinate, _ float64) ([]airquality.Reading, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.readings, nil
}

func (s *stubProvider) FetchByName(_ context.Context, _, _, _ string) (*airquality.Reading, error) {
	return nil, airquality.ErrNotFound
}

func reading(source, station string, distanceKm float64) airquality.Reading {
	d := distanceKm
	return airquality.Reading{
		Source:     source,
		StationID:  station,
		AQI:        airquality.AQI{US: 42},
		Category:   airquality.Categorize(42),
		DistanceKm: &d,
		Pollutants: airquality.NewPollutants(),
	}
}

var bangkok = geo.Coordinate{Lat: 13.75, Lon: 100.5}

func TestAggregator_MergesAndSortsByDistance(t *testing.T) {
	professional := &stubProvider{
		name:      "iqair",
		available: true,
		readings:  []airquality.Reading{reading("iqair", "station-a", 2)},
	}
	community := &stubProvider{
		name:      "purpleair",
		available: true,
		readings: []airquality.Reading{
			reading("purpleair", "sensor-1", 1),
			reading("purpleair", "sensor-2", 4),
		},
	}

	agg := airquality.NewAggregator(zerolog.Nop(), professional, community)
	readings, statuses, err := agg.Nearby(context.Background(), bangkok, 50, nil)
	require.NoError(t, err)

	require.Len(t, readings, 3)
	assert.Equal(t, "sensor-1", readings[0].StationID)
	assert.Equal(t, "station-a", readings[1].StationID)
	assert.Equal(t, "sensor-2", readings[2].StationID)

	require.Len(t, statuses, 2)
	assert.Equal(t, 1, statuses[0].Count)
	assert.Equal(t, 2, statuses[1].Count)
}

func TestAggregator_PartialFailureIsAbsorbed(t *testing.T) {
	ok1 := &stubProvider{name: "a", available: true, readings: []airquality.Reading{reading("a", "a-1", 3)}}
	failing := &stubProvider{name: "b", available: true, err: errors.New("upstream 503")}
	ok2 := &stubProvider{name: "c", available: true, readings: []airquality.Reading{reading("c", "c-1", 1)}}

	agg := airquality.NewAggregator(zerolog.Nop(), ok1, failing, ok2)
	readings, statuses, err := agg.Nearby(context.Background(), bangkok, 50, nil)
	require.NoError(t, err)

	require.Len(t, readings, 2)
	assert.Equal(t, "c-1", readings[0].StationID)
	assert.Equal(t, "a-1", readings[1].StationID)

	assert.False(t, statuses[0].Failed)
	assert.True(t, statuses[1].Failed)
	assert.True(t, statuses[1].Attempted)
	assert.False(t, statuses[2].Failed)
}

func TestAggregator_StableSortOnEqualDistance(t *testing.T) {
	first := &stubProvider{name: "first", available: true, readings: []airquality.Reading{reading("first", "f-1", 5)}}
	second := &stubProvider{name: "second", available: true, readings: []airquality.Reading{reading("second", "s-1", 5)}}

	agg := airquality.NewAggregator(zerolog.Nop(), first, second)
	readings, _, err := agg.Nearby(context.Background(), bangkok, 50, nil)
	require.NoError(t, err)

	// Equal distance keeps provider enablement order.
	require.Len(t, readings, 2)
	assert.Equal(t, "f-1", readings[0].StationID)
	assert.Equal(t, "s-1", readings[1].StationID)
}

func TestAggregator_SkipsUnavailableProviders(t *testing.T) {
	unavailable := &stubProvider{name: "keyless", available: false}
	available := &stubProvider{name: "open", available: true, readings: []airquality.Reading{reading("open", "o-1", 1)}}

	agg := airquality.NewAggregator(zerolog.Nop(), unavailable, available)
	readings, statuses, err := agg.Nearby(context.Background(), bangkok, 50, nil)
	require.NoError(t, err)

	assert.Len(t, readings, 1)
	assert.Zero(t, unavailable.calls)
	assert.False(t, statuses[0].Attempted)
	assert.True(t, statuses[1].Attempted)
}

func TestAggregator_SourceSelection(t *testing.T) {
	a := &stubProvider{name: "iqair", available: true, readings: []airquality.Reading{reading("iqair", "a-1", 1)}}
	b := &stubProvider{name: "purpleair", available: true, readings: []airquality.Reading{reading("purpleair", "b-1", 2)}}

	agg := airquality.NewAggregator(zerolog.Nop(), a, b)
	readings, statuses, err := agg.Nearby(context.Background(), bangkok, 50, []string{"IQAir"})
	require.NoError(t, err)

	require.Len(t, readings, 1)
	assert.Equal(t, "a-1", readings[0].StationID)
	require.Len(t, statuses, 1)
	assert.Zero(t, b.calls)
}

func TestAggregator_InvalidCoordinates(t *testing.T) {
	agg := airquality.NewAggregator(zerolog.Nop(), &stubProvider{name: "a", available: true})

	_, _, err := agg.Nearby(context.Background(), geo.Coordinate{Lat: 91, Lon: 0}, 50, nil)
	assert.ErrorIs(t, err, geo.ErrInvalidCoordinates)
}

func TestAggregator_EndToEndScenario(t *testing.T) {
	// Professional network: nearest station 2 km away, inside the radius.
	professional := &stubProvider{
		name:      "iqair",
		available: true,
		readings:  []airquality.Reading{reading("iqair", "bangkok-bangkok-thailand", 2)},
	}
	// Community network: the 60 km sensor was already excluded by the
	// adapter's own radius filter, so only two remain here.
	community := &stubProvider{
		name:      "purpleair",
		available: true,
		readings: []airquality.Reading{
			reading("purpleair", "purpleair-soi-1", 1),
			reading("purpleair", "purpleair-soi-2", 4),
		},
	}

	agg := airquality.NewAggregator(zerolog.Nop(), professional, community)
	readings, _, err := agg.Nearby(context.Background(), bangkok, 50, []string{"iqair", "purpleair"})
	require.NoError(t, err)

	require.Len(t, readings, 3)
	assert.Equal(t, 1.0, *readings[0].DistanceKm)
	assert.Equal(t, 2.0, *readings[1].DistanceKm)
	assert.Equal(t, 4.0, *readings[2].DistanceKm)
}
