package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/careerpilot/shadowcal/internal/model"
)

// windowStart is a Monday 00:00 UTC; the default test horizon covers two weeks.
var windowStart = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

func twoWeekInput(existing []*model.CalendarEvent) PreflightInput {
	return PreflightInput{
		EmploymentType: "full-time",
		ExistingEvents: existing,
		WindowStart:    windowStart,
		WindowEnd:      windowStart.Add(14 * 24 * time.Hour),
	}
}

// weeklyShifts materializes a recurring weekly shift over the test window,
// the way a persisted calendar would hold one row per occurrence.
func weeklyShifts(idPrefix string, weekday time.Weekday, startHour, endHour int) []*model.CalendarEvent {
	var out []*model.CalendarEvent
	for d := 0; d < 14; d++ {
		day := windowStart.AddDate(0, 0, d)
		if day.Weekday() != weekday {
			continue
		}
		out = append(out, &model.CalendarEvent{
			ID:        idPrefix,
			UserID:    "u1",
			Type:      model.EventShift,
			StartTime: time.Date(day.Year(), day.Month(), day.Day(), startHour, 0, 0, 0, time.UTC),
			EndTime:   time.Date(day.Year(), day.Month(), day.Day(), endHour, 0, 0, 0, time.UTC),
		})
	}
	return out
}

func TestPreflight_RecurringCollisionDeduplicated(t *testing.T) {
	// Existing Wednesday shift collides with the default full-time pattern
	// every week of the horizon; the result must stay readable.
	existing := weeklyShifts("wed-shift", time.Wednesday, 10, 18)
	p := NewProjector(&fakeTransit{}, zerolog.Nop())

	res := p.Preflight(context.Background(), twoWeekInput(existing))
	if !res.HasScheduleConflict {
		t.Fatal("expected schedule conflict")
	}
	if res.CanApply {
		t.Error("canApply should be false on schedule conflict")
	}
	if len(res.Conflicts) > maxConflictsPerEvent {
		t.Errorf("conflicts for one recurring event: got %d, want <= %d", len(res.Conflicts), maxConflictsPerEvent)
	}
	for _, c := range res.Conflicts {
		if c.ExistingEvent.ID != "wed-shift" {
			t.Errorf("unexpected conflicting event %q", c.ExistingEvent.ID)
		}
	}
}

func TestPreflight_NoConflictsWithFreeCalendar(t *testing.T) {
	p := NewProjector(&fakeTransit{}, zerolog.Nop())

	res := p.Preflight(context.Background(), twoWeekInput(nil))
	if res.HasScheduleConflict || !res.CanApply {
		t.Fatalf("free calendar should pass preflight: %+v", res)
	}
	if len(res.Conflicts) != 0 {
		t.Errorf("conflicts: got %d, want 0", len(res.Conflicts))
	}
}

func TestPreflight_ExplicitPatternOverridesDefault(t *testing.T) {
	// Saturday-only pattern against a weekday-only calendar.
	existing := weeklyShifts("mon-shift", time.Monday, 9, 17)
	in := twoWeekInput(existing)
	in.ShiftPattern = []model.TypicalShift{{DayOfWeek: 6, StartHour: 8, EndHour: 12}}

	p := NewProjector(&fakeTransit{}, zerolog.Nop())
	res := p.Preflight(context.Background(), in)
	if res.HasScheduleConflict {
		t.Fatalf("saturday pattern should not collide: %+v", res.Conflicts)
	}
}

func TestPreflight_UnrecognizedEmploymentTypeFallsBack(t *testing.T) {
	existing := weeklyShifts("tue-shift", time.Tuesday, 9, 17)
	in := twoWeekInput(existing)
	in.EmploymentType = "gig-economy-freelance"

	p := NewProjector(&fakeTransit{}, zerolog.Nop())
	res := p.Preflight(context.Background(), in)
	if !res.HasScheduleConflict {
		t.Fatal("fallback full-time pattern should collide with Tuesday shift")
	}
}

func TestPreflight_CommuteJudgment(t *testing.T) {
	cases := []struct {
		name         string
		est          *model.TransitEstimate
		err          error
		wantConflict bool
		wantInfo     bool
	}{
		{"over tolerance", &model.TransitEstimate{DurationMinutes: 45}, nil, true, true},
		{"within tolerance", &model.TransitEstimate{DurationMinutes: 25}, nil, false, true},
		{"no route", nil, nil, false, false},
		{"provider error", nil, errors.New("upstream 502"), false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := twoWeekInput(nil)
			in.HomeLocation = &home
			in.JobLocation = &jobSite
			in.TransitMode = model.ModeLynx
			in.MaxCommuteMinutes = 30

			p := NewProjector(&fakeTransit{est: tc.est, err: tc.err}, zerolog.Nop())
			res := p.Preflight(context.Background(), in)

			if res.HasCommuteConflict != tc.wantConflict {
				t.Errorf("hasCommuteConflict: got %v, want %v", res.HasCommuteConflict, tc.wantConflict)
			}
			if (res.TransitInfo != nil) != tc.wantInfo {
				t.Errorf("transitInfo presence: got %v, want %v", res.TransitInfo != nil, tc.wantInfo)
			}
			if res.MaxCommuteMinutes != 30 {
				t.Errorf("maxCommuteMinutes echoed: got %d", res.MaxCommuteMinutes)
			}
			// Commute conflicts are advisory.
			if !res.CanApply {
				t.Error("commute conflict must not block canApply")
			}
		})
	}
}

func TestPreflight_MissingLocationSkipsCommuteCheck(t *testing.T) {
	tr := &fakeTransit{est: &model.TransitEstimate{DurationMinutes: 120}}
	in := twoWeekInput(nil)
	in.JobLocation = &jobSite // home unknown
	in.MaxCommuteMinutes = 30

	p := NewProjector(tr, zerolog.Nop())
	res := p.Preflight(context.Background(), in)
	if tr.calls != 0 {
		t.Errorf("transit called %d times without home location", tr.calls)
	}
	if res.HasCommuteConflict || res.TransitInfo != nil {
		t.Errorf("partial location must not produce commute verdict: %+v", res)
	}
}

func TestPreflight_OvernightPattern(t *testing.T) {
	// Overnight shifts ending next morning must still collide with an early
	// morning commitment.
	existing := weeklyShifts("early-gym", time.Wednesday, 5, 7)
	in := twoWeekInput(existing)
	in.EmploymentType = "overnight"

	p := NewProjector(&fakeTransit{}, zerolog.Nop())
	res := p.Preflight(context.Background(), in)
	if !res.HasScheduleConflict {
		t.Fatal("overnight Tuesday 22:00-06:00 shift should collide with Wednesday 05:00 block")
	}
}

func TestDefaultPattern_Lookup(t *testing.T) {
	if got := DefaultPattern("Part Time"); len(got) != 3 {
		t.Errorf("part-time slots: got %d, want 3", len(got))
	}
	if got := DefaultPattern("full_time"); len(got) != 5 {
		t.Errorf("full-time slots: got %d, want 5", len(got))
	}
	if got := DefaultPattern("???"); len(got) != 5 {
		t.Errorf("unknown type should fall back to full-time, got %d slots", len(got))
	}
}
