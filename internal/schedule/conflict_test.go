package schedule

import (
	"reflect"
	"testing"
	"time"

	"github.com/careerpilot/shadowcal/internal/model"
)

func mkEvent(id string, typ model.EventType, start, end time.Time) *model.CalendarEvent {
	return &model.CalendarEvent{ID: id, UserID: "u1", Type: typ, StartTime: start, EndTime: end}
}

// monday returns a fixed Monday at the given clock time.
func monday(hour, min int) time.Time {
	return time.Date(2025, 3, 3, hour, min, 0, 0, time.UTC)
}

func TestDetectConflicts_InterviewInsideShift(t *testing.T) {
	shift := mkEvent("shift-a", model.EventShift, monday(9, 0), monday(17, 0))
	interview := mkEvent("", model.EventInterview, monday(15, 0), monday(16, 0))

	got := DetectConflicts(interview, []*model.CalendarEvent{shift})
	if len(got) != 1 {
		t.Fatalf("conflicts: got %d, want 1", len(got))
	}
	c := got[0]
	if c.Type != model.OverlapFull {
		t.Errorf("type: got %s, want full", c.Type)
	}
	if c.OverlapMinutes != 60 {
		t.Errorf("overlapMinutes: got %d, want 60", c.OverlapMinutes)
	}
	if !c.OverlapStart.Equal(monday(15, 0)) || !c.OverlapEnd.Equal(monday(16, 0)) {
		t.Errorf("overlap window: got [%v, %v)", c.OverlapStart, c.OverlapEnd)
	}
	if c.ExistingEvent.ID != "shift-a" {
		t.Errorf("existing event: got %q", c.ExistingEvent.ID)
	}
}

func TestDetectConflicts_PartialOverlap(t *testing.T) {
	shift := mkEvent("shift-a", model.EventShift, monday(9, 0), monday(17, 0))
	block := mkEvent("", model.EventBlock, monday(16, 30), monday(18, 0))

	got := DetectConflicts(block, []*model.CalendarEvent{shift})
	if len(got) != 1 {
		t.Fatalf("conflicts: got %d, want 1", len(got))
	}
	if got[0].Type != model.OverlapPartial {
		t.Errorf("type: got %s, want partial", got[0].Type)
	}
	if got[0].OverlapMinutes != 30 {
		t.Errorf("overlapMinutes: got %d, want 30", got[0].OverlapMinutes)
	}
}

func TestDetectConflicts_TouchingEndpointsDoNotConflict(t *testing.T) {
	a := mkEvent("a", model.EventShift, monday(9, 0), monday(12, 0))
	b := mkEvent("", model.EventBlock, monday(12, 0), monday(13, 0))

	if got := DetectConflicts(b, []*model.CalendarEvent{a}); len(got) != 0 {
		t.Fatalf("touching intervals conflicted: %+v", got)
	}
	// And the mirror pairing.
	c := mkEvent("", model.EventBlock, monday(8, 0), monday(9, 0))
	if got := DetectConflicts(c, []*model.CalendarEvent{a}); len(got) != 0 {
		t.Fatalf("touching intervals conflicted (before): %+v", got)
	}
}

func TestDetectConflicts_ZeroDurationCandidate(t *testing.T) {
	a := mkEvent("a", model.EventShift, monday(9, 0), monday(17, 0))
	zero := mkEvent("", model.EventBlock, monday(10, 0), monday(10, 0))

	if got := DetectConflicts(zero, []*model.CalendarEvent{a}); got != nil {
		t.Fatalf("zero-duration candidate conflicted: %+v", got)
	}
}

func TestDetectConflicts_SymmetricOverlapWindow(t *testing.T) {
	a := mkEvent("a", model.EventShift, monday(9, 0), monday(13, 0))
	b := mkEvent("b", model.EventBlock, monday(11, 0), monday(15, 0))

	ab := DetectConflicts(a, []*model.CalendarEvent{b})
	ba := DetectConflicts(b, []*model.CalendarEvent{a})
	if len(ab) != 1 || len(ba) != 1 {
		t.Fatalf("expected one conflict each way, got %d and %d", len(ab), len(ba))
	}
	if !ab[0].OverlapStart.Equal(ba[0].OverlapStart) || !ab[0].OverlapEnd.Equal(ba[0].OverlapEnd) {
		t.Errorf("overlap windows differ: [%v,%v) vs [%v,%v)",
			ab[0].OverlapStart, ab[0].OverlapEnd, ba[0].OverlapStart, ba[0].OverlapEnd)
	}
	if ab[0].OverlapMinutes != ba[0].OverlapMinutes {
		t.Errorf("overlap minutes differ: %d vs %d", ab[0].OverlapMinutes, ba[0].OverlapMinutes)
	}
}

func TestDetectConflicts_CommuteEventsAreNotExempt(t *testing.T) {
	commute := mkEvent("c", model.EventCommute, monday(8, 30), monday(9, 0))
	candidate := mkEvent("", model.EventCommute, monday(8, 0), monday(8, 45))

	got := DetectConflicts(candidate, []*model.CalendarEvent{commute})
	if len(got) != 1 {
		t.Fatalf("commute vs commute: got %d conflicts, want 1", len(got))
	}
	if got[0].OverlapMinutes != 15 {
		t.Errorf("overlapMinutes: got %d, want 15", got[0].OverlapMinutes)
	}
}

func TestDetectConflicts_Idempotent(t *testing.T) {
	existing := []*model.CalendarEvent{
		mkEvent("a", model.EventShift, monday(9, 0), monday(17, 0)),
		mkEvent("b", model.EventBlock, monday(18, 0), monday(19, 0)),
	}
	cand := mkEvent("", model.EventInterview, monday(16, 0), monday(18, 30))

	first := DetectConflicts(cand, existing)
	second := DetectConflicts(cand, existing)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("results differ across runs:\n%+v\n%+v", first, second)
	}
}
