package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/careerpilot/shadowcal/internal/model"
)

// CommuteSynthesizer derives the commute block that precedes a location-bound
// shift or interview. Synthesis is best-effort: any geocoding or transit
// failure yields nil and never blocks creation of the served event.
type CommuteSynthesizer struct {
	transit TransitLookup
	geo     Geocoder
	log     zerolog.Logger
}

// NewCommuteSynthesizer wires the external lookups the synthesizer needs.
func NewCommuteSynthesizer(transit TransitLookup, geo Geocoder, log zerolog.Logger) *CommuteSynthesizer {
	return &CommuteSynthesizer{transit: transit, geo: geo, log: log}
}

// Synthesize builds a not-yet-persisted commute event ending exactly at the
// served event's start. It returns nil when the served event is not
// commutable, its location cannot be resolved, or no route exists. It never
// checks the synthesized block for conflicts; that is the caller's concern.
func (s *CommuteSynthesizer) Synthesize(ctx context.Context, served *model.CalendarEvent, home model.Coordinates, mode model.TransitMode) *model.CalendarEvent {
	if served == nil {
		return nil
	}
	if served.Type != model.EventShift && served.Type != model.EventInterview {
		return nil
	}

	dest := s.resolveLocation(ctx, served)
	if dest == nil {
		return nil
	}

	est, err := s.transit.Route(ctx, home, *dest, mode)
	if err != nil {
		s.log.Debug().Err(err).
			Str("event_id", served.ID).
			Str("mode", string(mode)).
			Msg("transit lookup failed; skipping commute synthesis")
		return nil
	}
	if est == nil || est.DurationMinutes <= 0 {
		return nil
	}

	servedID := served.ID
	m := mode
	mins := est.DurationMinutes
	route := est.RouteSummary
	desc := fmt.Sprintf("%d min via %s (%d transfers, %d min walking)",
		est.DurationMinutes, string(mode), est.Transfers, est.WalkingMinutes)

	return &model.CalendarEvent{
		UserID:             served.UserID,
		Type:               model.EventCommute,
		Title:              "Commute: " + served.Title,
		Description:        &desc,
		StartTime:          served.StartTime.Add(-time.Duration(mins) * time.Minute),
		EndTime:            served.StartTime,
		JobID:              served.JobID,
		ServesEventID:      &servedID,
		TransitMode:        &m,
		LynxRoute:          &route,
		TransitTimeMinutes: &mins,
	}
}

// resolveLocation returns the served event's coordinates, geocoding the
// free-text address when no coordinates were supplied directly.
func (s *CommuteSynthesizer) resolveLocation(ctx context.Context, ev *model.CalendarEvent) *model.Coordinates {
	if ev.Coordinates != nil {
		return ev.Coordinates
	}
	if ev.LocationText == nil || *ev.LocationText == "" || s.geo == nil {
		return nil
	}
	coords, err := s.geo.Geocode(ctx, *ev.LocationText)
	if err != nil {
		s.log.Debug().Err(err).
			Str("event_id", ev.ID).
			Msg("geocoding failed; skipping commute synthesis")
		return nil
	}
	return coords
}
