package airquality

import (
	"context"

	"github.com/aqhub/aqhub/internal/geo"
)

// Provider is the interface every upstream adapter implements.
type Provider interface {
	// Name returns the source name stamped on readings (e.g. "iqair").
	Name() string

	// Capability reports what the adapter can do and whether it is usable.
	Capability() Capability

	// FetchByCoordinate returns readings within radiusKm of center, sorted
	// ascending by distance. An empty slice, not an error, means nothing was
	// found in range.
	FetchByCoordinate(ctx context.Context, center geo.Coordinate, radiusKm float64) ([]Reading, error)

	// FetchByName looks up a single city by its exact name triple.
	// Returns ErrNotFound when the upstream has no matching entry.
	FetchByName(ctx context.Context, city, state, country string) (*Reading, error)
}

// Browser is implemented by adapters whose upstream exposes hierarchical
// location browsing (countries, states within a country, cities within a
// state). The resolver uses it to work around the lack of free-text search.
type Browser interface {
	Countries(ctx context.Context) ([]string, error)
	States(ctx context.Context, country string) ([]string, error)
	Cities(ctx context.Context, state, country string) ([]string, error)
}

// CityProvider combines exact-name lookup with hierarchical browsing.
type CityProvider interface {
	Provider
	Browser
}
