package airquality

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/aqhub/aqhub/internal/geo"
)

// DefaultRadiusKm is the search radius used when the caller does not supply one.
const DefaultRadiusKm = 50.0

// SourceStatus reports per-provider diagnostics for one aggregation call.
type SourceStatus struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Attempted bool   `json:"attempted"`
	Failed    bool   `json:"failed"`
	Count     int    `json:"count"`
}

// Aggregator fans a nearby query out to all requested providers and merges
// their readings into one ranked list. Provider registration order defines
// the tie-break for readings at identical distance.
type Aggregator struct {
	providers []Provider
	logger    zerolog.Logger
}

// NewAggregator creates an aggregator over the given providers.
func NewAggregator(logger zerolog.Logger, providers ...Provider) *Aggregator {
	return &Aggregator{
		providers: providers,
		logger:    logger,
	}
}

// Providers returns the registered providers in enablement order.
func (a *Aggregator) Providers() []Provider {
	return a.providers
}

// Nearby queries every requested, available provider concurrently and returns
// the merged readings sorted ascending by distance. A nil or empty sources
// slice selects all providers. One provider failing contributes zero readings
// and is reported in the returned statuses; it never fails the call.
func (a *Aggregator) Nearby(ctx context.Context, center geo.Coordinate, radiusKm float64, sources []string) ([]Reading, []SourceStatus, error) {
	if err := center.Validate(); err != nil {
		return nil, nil, err
	}
	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}

	selected := a.selectProviders(sources)
	statuses := make([]SourceStatus, len(selected))

	// One result slot per provider keeps enablement order for the stable sort.
	results := make([][]Reading, len(selected))

	var wg sync.WaitGroup
	for i, p := range selected {
		statuses[i] = SourceStatus{
			Name:      p.Name(),
			Available: p.Capability().Available,
		}
		if !statuses[i].Available {
			continue
		}
		statuses[i].Attempted = true

		wg.Add(1)
		go func(i int, p Provider) {
			defer wg.Done()

			readings, err := p.FetchByCoordinate(ctx, center, radiusKm)
			if err != nil {
				a.logger.Warn().
					Err(err).
					Str("source", p.Name()).
					Float64("lat", center.Lat).
					Float64("lon", center.Lon).
					Msg("provider fetch failed, continuing without it")
				statuses[i].Failed = true
				return
			}
			results[i] = readings
			statuses[i].Count = len(readings)
		}(i, p)
	}
	wg.Wait()

	var merged []Reading
	for _, rs := range results {
		merged = append(merged, rs...)
	}

	// Stable: equal distances keep provider enablement order.
	sort.SliceStable(merged, func(i, j int) bool {
		return distanceOf(merged[i]) < distanceOf(merged[j])
	})

	return merged, statuses, nil
}

// selectProviders filters the registered providers down to the requested
// source names, preserving registration order. Names match case-insensitively.
func (a *Aggregator) selectProviders(sources []string) []Provider {
	if len(sources) == 0 {
		return a.providers
	}

	wanted := make(map[string]bool, len(sources))
	for _, s := range sources {
		wanted[strings.ToLower(strings.TrimSpace(s))] = true
	}

	var selected []Provider
	for _, p := range a.providers {
		if wanted[strings.ToLower(p.Name())] {
			selected = append(selected, p)
		}
	}
	return selected
}

func distanceOf(r Reading) float64 {
	if r.DistanceKm == nil {
		return 0
	}
	return *r.DistanceKm
}
