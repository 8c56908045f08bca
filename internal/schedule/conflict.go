package schedule

import (
	"github.com/careerpilot/shadowcal/internal/model"
)

// DetectConflicts classifies pairwise time overlaps between a candidate event
// and a set of existing events. Intervals are half-open, so touching
// endpoints never conflict. Output order follows input order; callers that
// need a deterministic order must sort by ExistingEvent.StartTime themselves.
func DetectConflicts(candidate *model.CalendarEvent, existing []*model.CalendarEvent) []model.ConflictRecord {
	if candidate == nil || !candidate.EndTime.After(candidate.StartTime) {
		// Zero-duration (or inverted) candidates never conflict.
		return nil
	}

	var out []model.ConflictRecord
	for _, ev := range existing {
		if ev == nil || !ev.EndTime.After(ev.StartTime) {
			continue
		}
		if !candidate.StartTime.Before(ev.EndTime) || !ev.StartTime.Before(candidate.EndTime) {
			continue
		}

		overlapStart := candidate.StartTime
		if ev.StartTime.After(overlapStart) {
			overlapStart = ev.StartTime
		}
		overlapEnd := candidate.EndTime
		if ev.EndTime.Before(overlapEnd) {
			overlapEnd = ev.EndTime
		}

		out = append(out, model.ConflictRecord{
			ExistingEvent:  ev,
			OverlapMinutes: int(overlapEnd.Sub(overlapStart).Minutes()),
			Type:           classifyOverlap(candidate, ev),
			OverlapStart:   overlapStart,
			OverlapEnd:     overlapEnd,
		})
	}
	return out
}

// classifyOverlap returns full when either interval entirely contains the
// other, partial otherwise.
func classifyOverlap(a, b *model.CalendarEvent) model.OverlapType {
	aInB := !a.StartTime.Before(b.StartTime) && !a.EndTime.After(b.EndTime)
	bInA := !b.StartTime.Before(a.StartTime) && !b.EndTime.After(a.EndTime)
	if aInB || bInA {
		return model.OverlapFull
	}
	return model.OverlapPartial
}
