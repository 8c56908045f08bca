package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/careerpilot/shadowcal/internal/model"
	"github.com/careerpilot/shadowcal/internal/store"
)

// Run exercises a compliance suite against a store.Store implementation.
// Implementations should provide a clean, isolated store from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()
	userID := "u-" + uuid.New().String()

	base := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	// Profiles: upsert, read back, update in place.
	addr := "400 South Orange Ave, Orlando FL"
	p, err := s.Profiles().Upsert(ctx, &model.UserProfile{
		UserID:            userID,
		HomeAddress:       &addr,
		HomeCoordinates:   &model.Coordinates{Latitude: 28.538, Longitude: -81.379},
		TransitMode:       model.ModeLynx,
		MaxCommuteMinutes: 45,
		EmploymentType:    "part-time",
	})
	if err != nil {
		t.Fatalf("Profiles.Upsert: %v", err)
	}
	if p.MaxCommuteMinutes != 45 || p.HomeCoordinates == nil {
		t.Fatalf("Profiles.Upsert round-trip: %+v", p)
	}
	p.MaxCommuteMinutes = 30
	if p, err = s.Profiles().Upsert(ctx, p); err != nil || p.MaxCommuteMinutes != 30 {
		t.Fatalf("Profiles.Upsert update: %+v err=%v", p, err)
	}
	if _, err := s.Profiles().Get(ctx, "nobody"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Profiles.Get missing: want ErrNotFound, got %v", err)
	}

	// Events: create a shift and a serving commute.
	shift, err := s.Events().Create(ctx, &model.CalendarEvent{
		UserID:      userID,
		Type:        model.EventShift,
		Title:       "Warehouse AM",
		StartTime:   base,
		EndTime:     base.Add(8 * time.Hour),
		Coordinates: &model.Coordinates{Latitude: 28.47, Longitude: -81.46},
	})
	if err != nil {
		t.Fatalf("Events.Create shift: %v", err)
	}
	if shift.ID == "" || shift.CreationTime.IsZero() {
		t.Fatalf("Events.Create: missing id or creation time: %+v", shift)
	}

	mode := model.ModeLynx
	route := "Lynx 36"
	mins := 30
	commute, err := s.Events().Create(ctx, &model.CalendarEvent{
		UserID:             userID,
		Type:               model.EventCommute,
		Title:              "Commute: Warehouse AM",
		StartTime:          base.Add(-30 * time.Minute),
		EndTime:            base,
		ServesEventID:      &shift.ID,
		TransitMode:        &mode,
		LynxRoute:          &route,
		TransitTimeMinutes: &mins,
	})
	if err != nil {
		t.Fatalf("Events.Create commute: %v", err)
	}

	// Get round-trips typed fields.
	got, err := s.Events().Get(ctx, userID, commute.ID)
	if err != nil {
		t.Fatalf("Events.Get: %v", err)
	}
	if got.Type != model.EventCommute || got.TransitMode == nil || *got.TransitMode != model.ModeLynx {
		t.Fatalf("Events.Get commute metadata: %+v", got)
	}
	if got.TransitTimeMinutes == nil || *got.TransitTimeMinutes != 30 {
		t.Fatalf("Events.Get transit minutes: %+v", got.TransitTimeMinutes)
	}
	if !got.EndTime.Equal(shift.StartTime) {
		t.Fatalf("commute end %v != shift start %v", got.EndTime, shift.StartTime)
	}

	// Range scan uses half-open overlap semantics.
	list, err := s.Events().ListRange(ctx, userID, base.Add(-time.Hour), base.Add(time.Hour))
	if err != nil {
		t.Fatalf("Events.ListRange: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("ListRange overlap window: got %d events, want 2", len(list))
	}
	// Window touching the shift end only: no overlap under half-open rules.
	list, err = s.Events().ListRange(ctx, userID, base.Add(8*time.Hour), base.Add(9*time.Hour))
	if err != nil {
		t.Fatalf("Events.ListRange: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("ListRange touching window: got %d events, want 0", len(list))
	}

	// Commutes are findable by served event.
	serving, err := s.Events().ListServing(ctx, userID, shift.ID)
	if err != nil || len(serving) != 1 || serving[0].ID != commute.ID {
		t.Fatalf("Events.ListServing: %v err=%v", serving, err)
	}

	// Whole-field update.
	shift.Title = "Warehouse PM"
	shift.StartTime = base.Add(4 * time.Hour)
	shift.EndTime = base.Add(12 * time.Hour)
	updated, err := s.Events().Update(ctx, shift)
	if err != nil {
		t.Fatalf("Events.Update: %v", err)
	}
	if updated.Title != "Warehouse PM" || !updated.StartTime.Equal(base.Add(4*time.Hour)) {
		t.Fatalf("Events.Update round-trip: %+v", updated)
	}

	// Delete, and deleting again reports not found.
	if err := s.Events().Delete(ctx, userID, commute.ID); err != nil {
		t.Fatalf("Events.Delete: %v", err)
	}
	if err := s.Events().Delete(ctx, userID, commute.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Events.Delete twice: want ErrNotFound, got %v", err)
	}
	if _, err := s.Events().Get(ctx, userID, commute.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Events.Get deleted: want ErrNotFound, got %v", err)
	}

	// Invalid intervals are rejected at the store boundary.
	if _, err := s.Events().Create(ctx, &model.CalendarEvent{
		UserID:    userID,
		Type:      model.EventBlock,
		StartTime: base,
		EndTime:   base,
	}); !errors.Is(err, model.ErrInvalidInterval) {
		t.Fatalf("zero-length event: want ErrInvalidInterval, got %v", err)
	}
}
