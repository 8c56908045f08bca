package schedule

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/teambition/rrule-go"

	"github.com/careerpilot/shadowcal/internal/model"
)

// maxConflictsPerEvent caps how many occurrences of the same recurring
// collision are reported, so a weekly clash is not repeated for every week
// in the horizon.
const maxConflictsPerEvent = 2

// defaultHorizon is used when the caller supplies no evaluation window.
const defaultHorizon = 14 * 24 * time.Hour

// PreflightInput describes one hypothetical job evaluation. The projector
// reasons only over the events it is given; by convention they cover the
// same window as WindowStart/WindowEnd (roughly the next two weeks).
type PreflightInput struct {
	ShiftPattern      []model.TypicalShift
	EmploymentType    string
	ExistingEvents    []*model.CalendarEvent
	HomeLocation      *model.Coordinates
	JobLocation       *model.Coordinates
	TransitMode       model.TransitMode
	MaxCommuteMinutes int
	WindowStart       time.Time
	WindowEnd         time.Time
}

// Projector runs the read-only preflight feasibility check. Nothing it does
// is persisted and nothing in it retries; a degraded transit lookup simply
// leaves TransitInfo nil.
type Projector struct {
	transit TransitLookup
	log     zerolog.Logger
}

// NewProjector returns a projector using the given transit lookup.
func NewProjector(transit TransitLookup, log zerolog.Logger) *Projector {
	return &Projector{transit: transit, log: log}
}

// Preflight projects the hypothetical weekly pattern over the evaluation
// window, detects schedule conflicts per occurrence, and separately judges
// commute feasibility against the user's tolerance. Absence of transit data
// is reported, never penalized.
func (p *Projector) Preflight(ctx context.Context, in PreflightInput) model.PreflightResult {
	res := model.PreflightResult{
		Conflicts:         []model.ConflictRecord{},
		MaxCommuteMinutes: in.MaxCommuteMinutes,
	}

	pattern := in.ShiftPattern
	if len(pattern) == 0 {
		pattern = DefaultPattern(in.EmploymentType)
	}

	windowStart, windowEnd := in.WindowStart, in.WindowEnd
	if windowStart.IsZero() {
		windowStart = time.Now()
	}
	if !windowEnd.After(windowStart) {
		windowEnd = windowStart.Add(defaultHorizon)
	}

	seen := make(map[string]int)
	for _, slot := range pattern {
		if !slot.Valid() {
			continue
		}
		for _, occ := range projectSlot(slot, windowStart, windowEnd) {
			for _, c := range DetectConflicts(&occ, in.ExistingEvents) {
				res.HasScheduleConflict = true
				id := c.ExistingEvent.ID
				if seen[id] >= maxConflictsPerEvent {
					continue
				}
				seen[id]++
				res.Conflicts = append(res.Conflicts, c)
			}
		}
	}

	if in.HomeLocation != nil && in.JobLocation != nil {
		est, err := p.transit.Route(ctx, *in.HomeLocation, *in.JobLocation, in.TransitMode)
		if err != nil {
			p.log.Debug().Err(err).Msg("preflight transit lookup failed; commute unknown")
		} else if est != nil {
			res.TransitInfo = est
			if in.MaxCommuteMinutes > 0 && est.DurationMinutes > in.MaxCommuteMinutes {
				res.HasCommuteConflict = true
			}
		}
	}

	res.CanApply = !res.HasScheduleConflict
	return res
}

var rruleWeekdays = [7]rrule.Weekday{
	rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA,
}

// projectSlot expands one weekly slot onto concrete occurrences within
// [windowStart, windowEnd]. Slots whose end-of-day is at or before their
// start are treated as overnight and end on the following day.
func projectSlot(slot model.TypicalShift, windowStart, windowEnd time.Time) []model.CalendarEvent {
	loc := windowStart.Location()
	dtstart := time.Date(windowStart.Year(), windowStart.Month(), windowStart.Day(),
		slot.StartHour, slot.StartMinute, 0, 0, loc)

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: []rrule.Weekday{rruleWeekdays[slot.DayOfWeek]},
		Dtstart:   dtstart,
	})
	if err != nil {
		return nil
	}

	startMin := slot.StartHour*60 + slot.StartMinute
	endMin := slot.EndHour*60 + slot.EndMinute
	dur := time.Duration(endMin-startMin) * time.Minute
	if dur <= 0 {
		dur += 24 * time.Hour
	}

	var out []model.CalendarEvent
	for _, start := range r.Between(windowStart, windowEnd, true) {
		out = append(out, model.CalendarEvent{
			Type:      model.EventShift,
			StartTime: start,
			EndTime:   start.Add(dur),
		})
	}
	return out
}
