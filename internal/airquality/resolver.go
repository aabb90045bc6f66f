package airquality

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// ResolveMethod tags which lookup strategy produced a resolution.
type ResolveMethod string

// Resolution strategies in attempt order.
const (
	MethodWithState   ResolveMethod = "with-state"
	MethodCityAsState ResolveMethod = "city-as-state"
	MethodStateMatch  ResolveMethod = "state-match"
	MethodDeepSearch  ResolveMethod = "deep-search"
)

// maxDeepSearchStates bounds the exhaustive fallback so a miss does not walk
// an entire country's city list.
const maxDeepSearchStates = 10

// Resolution is a successful city lookup plus the strategy that found it.
type Resolution struct {
	Reading *Reading      `json:"data"`
	Method  ResolveMethod `json:"method"`
}

// NotFoundError reports an exhausted resolution with the attempted query and
// actionable suggestions for the caller.
type NotFoundError struct {
	Query   string
	State   string
	Country string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("city %q not found in %s using any search method", e.Query, e.Country)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// Suggestions returns alternatives the caller can try after a failed resolution.
func (e *NotFoundError) Suggestions() []string {
	return []string{
		"Try the nearby endpoint with coordinates for best accuracy",
		"Verify the city name spelling",
		"Browse the countries, states, and cities endpoints to find exact names",
	}
}

// Resolver finds a city against a provider whose native lookup requires an
// exact city/state/country triple. Strategies are heuristic by design and run
// sequentially in fixed order; each failure is swallowed and the next
// strategy attempted.
type Resolver struct {
	provider CityProvider
	logger   zerolog.Logger
}

// NewResolver creates a resolver over the given browsable provider.
func NewResolver(provider CityProvider, logger zerolog.Logger) *Resolver {
	return &Resolver{
		provider: provider,
		logger:   logger,
	}
}

// ResolveCity attempts the ordered lookup strategies for a free-text city
// query. On exhaustion it returns a *NotFoundError wrapping ErrNotFound.
func (r *Resolver) ResolveCity(ctx context.Context, query, state, country string) (*Resolution, error) {
	// Strategy 1: exact triple, only when the caller supplied a state.
	if state != "" {
		if reading, err := r.provider.FetchByName(ctx, query, state, country); err == nil {
			return &Resolution{Reading: reading, Method: MethodWithState}, nil
		} else {
			r.logger.Debug().Err(err).Str("query", query).Msg("with-state lookup failed")
		}
	}

	// Strategy 2: city as its own state. Covers city-states such as Bangkok.
	if reading, err := r.provider.FetchByName(ctx, query, query, country); err == nil {
		return &Resolution{Reading: reading, Method: MethodCityAsState}, nil
	} else {
		r.logger.Debug().Err(err).Str("query", query).Msg("city-as-state lookup failed")
	}

	// Strategy 3: find a state whose name matches the query and retry.
	if res, ok := r.resolveByStateMatch(ctx, query, country); ok {
		return res, nil
	}

	// Strategy 4: walk the first N states' city lists looking for the query.
	if res, ok := r.resolveByDeepSearch(ctx, query, country); ok {
		return res, nil
	}

	return nil, &NotFoundError{Query: query, State: state, Country: country}
}

// resolveByStateMatch enumerates the country's states and retries the lookup
// with the best-matching state name. An exact case-insensitive match wins
// over substring containment; among substring matches the first in provider
// enumeration order is used.
func (r *Resolver) resolveByStateMatch(ctx context.Context, query, country string) (*Resolution, bool) {
	states, err := r.provider.States(ctx, country)
	if err != nil {
		r.logger.Debug().Err(err).Str("country", country).Msg("state enumeration failed")
		return nil, false
	}

	match := ""
	lowered := strings.ToLower(query)
	for _, s := range states {
		if strings.ToLower(s) == lowered {
			match = s
			break
		}
	}
	if match == "" {
		for _, s := range states {
			ls := strings.ToLower(s)
			if strings.Contains(ls, lowered) || strings.Contains(lowered, ls) {
				match = s
				break
			}
		}
	}
	if match == "" {
		return nil, false
	}

	reading, err := r.provider.FetchByName(ctx, query, match, country)
	if err != nil {
		r.logger.Debug().Err(err).Str("state", match).Msg("state-match lookup failed")
		return nil, false
	}

	return &Resolution{Reading: reading, Method: MethodStateMatch}, true
}

// resolveByDeepSearch lists cities in up to maxDeepSearchStates states and
// retries with the first exact or substring city name match.
func (r *Resolver) resolveByDeepSearch(ctx context.Context, query, country string) (*Resolution, bool) {
	states, err := r.provider.States(ctx, country)
	if err != nil {
		r.logger.Debug().Err(err).Str("country", country).Msg("state enumeration failed")
		return nil, false
	}
	if len(states) > maxDeepSearchStates {
		states = states[:maxDeepSearchStates]
	}

	lowered := strings.ToLower(query)
	for _, state := range states {
		cities, err := r.provider.Cities(ctx, state, country)
		if err != nil {
			continue
		}

		for _, city := range cities {
			lc := strings.ToLower(city)
			if lc != lowered && !strings.Contains(lc, lowered) {
				continue
			}

			reading, err := r.provider.FetchByName(ctx, city, state, country)
			if err != nil {
				continue
			}

			r.logger.Debug().
				Str("city", city).
				Str("state", state).
				Msg("deep search located city")
			return &Resolution{Reading: reading, Method: MethodDeepSearch}, true
		}
	}

	return nil, false
}
