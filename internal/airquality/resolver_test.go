package airquality_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqhub/aqhub/internal/airquality"
	"github.com/aqhub/aqhub/internal/geo"
)

// stubCityProvider simulates an upstream with exact-triple lookup and
// hierarchical browsing. known maps "city|state|country" to a reading.
type stubCityProvider struct {
	known       map[string]*airquality.Reading
	states      map[string][]string // country -> states
	cities      map[string][]string // "state|country" -> cities
	nameCalls   []string
	statesCalls int
	citiesCalls int
}

func (s *stubCityProvider) Name() string { return "iqair" }

func (s *stubCityProvider) Capability() airquality.Capability {
	return airquality.Capability{SupportsFreeTextSearch: false, Available: true}
}

func (s *stubCityProvider) FetchByCoordinate(_ context.Context, _ geo.Coordinate, _ float64) ([]airquality.Reading, error) {
	return nil, nil
}

func (s *stubCityProvider) FetchByName(_ context.Context, city, state, country string) (*airquality.Reading, error) {
	key := strings.ToLower(city + "|" + state + "|" + country)
	s.nameCalls = append(s.nameCalls, key)
	if r, ok := s.known[key]; ok {
		return r, nil
	}
	return nil, airquality.ErrNotFound
}

func (s *stubCityProvider) Countries(_ context.Context) ([]string, error) {
	return []string{"Thailand"}, nil
}

func (s *stubCityProvider) States(_ context.Context, country string) ([]string, error) {
	s.statesCalls++
	if states, ok := s.states[country]; ok {
		return states, nil
	}
	return nil, errors.New("country not found")
}

func (s *stubCityProvider) Cities(_ context.Context, state, country string) ([]string, error) {
	s.citiesCalls++
	if cities, ok := s.cities[state+"|"+country]; ok {
		return cities, nil
	}
	return nil, errors.New("state not found")
}

func cityReading(name string) *airquality.Reading {
	return &airquality.Reading{
		Source:      "iqair",
		StationID:   airquality.SynthesizeStationID(name, "thailand"),
		DisplayName: name,
		AQI:         airquality.AQI{US: 55},
		Category:    airquality.Categorize(55),
		Pollutants:  airquality.NewPollutants(),
	}
}

func TestResolver_WithStateSucceedsFirst(t *testing.T) {
	provider := &stubCityProvider{
		known: map[string]*airquality.Reading{
			"chiang mai|chiang mai province|thailand": cityReading("Chiang Mai"),
		},
	}
	resolver := airquality.NewResolver(provider, zerolog.Nop())

	res, err := resolver.ResolveCity(context.Background(), "Chiang Mai", "Chiang Mai Province", "Thailand")
	require.NoError(t, err)
	assert.Equal(t, airquality.MethodWithState, res.Method)
	assert.Len(t, provider.nameCalls, 1)
}

func TestResolver_CityAsState(t *testing.T) {
	provider := &stubCityProvider{
		known: map[string]*airquality.Reading{
			"bangkok|bangkok|thailand": cityReading("Bangkok"),
		},
	}
	resolver := airquality.NewResolver(provider, zerolog.Nop())

	res, err := resolver.ResolveCity(context.Background(), "Bangkok", "", "Thailand")
	require.NoError(t, err)
	assert.Equal(t, airquality.MethodCityAsState, res.Method)
}

func TestResolver_StateMatchFallthrough(t *testing.T) {
	provider := &stubCityProvider{
		known: map[string]*airquality.Reading{
			"phuket|phuket province|thailand": cityReading("Phuket"),
		},
		states: map[string][]string{
			"Thailand": {"Bangkok", "Phuket Province", "Chiang Mai"},
		},
	}
	resolver := airquality.NewResolver(provider, zerolog.Nop())

	res, err := resolver.ResolveCity(context.Background(), "Phuket", "Krabi", "Thailand")
	require.NoError(t, err)
	assert.Equal(t, airquality.MethodStateMatch, res.Method)

	// Strategies 1 and 2 were each attempted exactly once before the match.
	require.GreaterOrEqual(t, len(provider.nameCalls), 3)
	assert.Equal(t, "phuket|krabi|thailand", provider.nameCalls[0])
	assert.Equal(t, "phuket|phuket|thailand", provider.nameCalls[1])
	assert.Equal(t, "phuket|phuket province|thailand", provider.nameCalls[2])
}

func TestResolver_StateMatchSubstringFirstWins(t *testing.T) {
	provider := &stubCityProvider{
		known: map[string]*airquality.Reading{
			"bangkok|north bangkok|thailand": cityReading("Bangkok"),
		},
		states: map[string][]string{
			// Both states substring-match the query; the first in
			// enumeration order is the one retried.
			"Thailand": {"North Bangkok", "South Bangkok"},
		},
	}
	resolver := airquality.NewResolver(provider, zerolog.Nop())

	res, err := resolver.ResolveCity(context.Background(), "Bangkok", "", "Thailand")
	require.NoError(t, err)
	assert.Equal(t, airquality.MethodStateMatch, res.Method)
	assert.Equal(t, "bangkok|north bangkok|thailand", provider.nameCalls[len(provider.nameCalls)-1])
}

func TestResolver_DeepSearch(t *testing.T) {
	provider := &stubCityProvider{
		known: map[string]*airquality.Reading{
			"pai|mae hong son|thailand": cityReading("Pai"),
		},
		states: map[string][]string{
			"Thailand": {"Bangkok", "Mae Hong Son"},
		},
		cities: map[string][]string{
			"Bangkok|Thailand":      {"Bangkok"},
			"Mae Hong Son|Thailand": {"Mae Hong Son", "Pai"},
		},
	}
	resolver := airquality.NewResolver(provider, zerolog.Nop())

	res, err := resolver.ResolveCity(context.Background(), "pai", "", "Thailand")
	require.NoError(t, err)
	assert.Equal(t, airquality.MethodDeepSearch, res.Method)
	assert.Equal(t, "Pai", res.Reading.DisplayName)
}

func TestResolver_ExhaustionReturnsNotFound(t *testing.T) {
	provider := &stubCityProvider{
		states: map[string][]string{
			"Thailand": {"Bangkok"},
		},
		cities: map[string][]string{
			"Bangkok|Thailand": {"Bangkok"},
		},
	}
	resolver := airquality.NewResolver(provider, zerolog.Nop())

	_, err := resolver.ResolveCity(context.Background(), "Atlantis", "", "Thailand")
	require.Error(t, err)
	assert.ErrorIs(t, err, airquality.ErrNotFound)

	var nfe *airquality.NotFoundError
	require.ErrorAs(t, err, &nfe)
	assert.Equal(t, "Atlantis", nfe.Query)
	assert.NotEmpty(t, nfe.Suggestions())
}
