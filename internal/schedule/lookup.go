// Package schedule implements the shadow-calendar scheduling engine:
// conflict detection over half-open time intervals, commute synthesis for
// location-bound events, and the preflight projection run before a user
// commits to a job.
//
// All entry points are pure with respect to storage; external lookups are
// injected so the engine can be tested with deterministic fakes.
package schedule

import (
	"context"

	"github.com/careerpilot/shadowcal/internal/model"
)

// TransitLookup resolves a route between two points for a travel mode.
// Implementations return (nil, nil) when no route exists; errors are treated
// by this package exactly like "no route".
type TransitLookup interface {
	Route(ctx context.Context, origin, destination model.Coordinates, mode model.TransitMode) (*model.TransitEstimate, error)
}

// Geocoder resolves free-text addresses to coordinates. A nil result with a
// nil error means the address could not be resolved.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*model.Coordinates, error)
}
