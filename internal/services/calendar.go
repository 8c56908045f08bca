package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/careerpilot/shadowcal/internal/model"
	"github.com/careerpilot/shadowcal/internal/schedule"
	"github.com/careerpilot/shadowcal/internal/store"
)

// windowPad widens the conflict-check window around a candidate event so a
// synthesized commute block preceding it is also checked against real events.
const windowPad = 6 * time.Hour

// CalendarService orchestrates event writes: conflict rejection, best-effort
// commute synthesis as an independent second write, and cleanup of commute
// blocks when their served event goes away.
type CalendarService struct {
	store store.Store
	synth *schedule.CommuteSynthesizer
	log   zerolog.Logger
}

func NewCalendarService(s store.Store, synth *schedule.CommuteSynthesizer, log zerolog.Logger) *CalendarService {
	return &CalendarService{store: s, synth: synth, log: log}
}

// CreateEventResult reports what a create (or update) actually did.
// Conflicts is non-empty only when the write was rejected; CommuteConflicts
// explains a commute block that was computed but skipped.
type CreateEventResult struct {
	Event            *model.CalendarEvent   `json:"event,omitempty"`
	Commute          *model.CalendarEvent   `json:"commute,omitempty"`
	Conflicts        []model.ConflictRecord `json:"conflicts,omitempty"`
	CommuteConflicts []model.ConflictRecord `json:"commuteConflicts,omitempty"`
}

// CreateEvent validates and persists a candidate event unless it overlaps a
// committed block. The primary write and the commute write are independent:
// a failed or conflicting commute never rolls back the event.
func (s *CalendarService) CreateEvent(ctx context.Context, e *model.CalendarEvent) (*CreateEventResult, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.store.Events().ListRange(ctx, e.UserID, e.StartTime.Add(-windowPad), e.EndTime.Add(windowPad))
	if err != nil {
		return nil, err
	}

	if conflicts := sortConflicts(schedule.DetectConflicts(e, existing)); len(conflicts) > 0 {
		return &CreateEventResult{Conflicts: conflicts}, model.ErrConflict
	}

	created, err := s.store.Events().Create(ctx, e)
	if err != nil {
		return nil, err
	}
	res := &CreateEventResult{Event: created}

	commute, commuteConflicts := s.synthesizeCommute(ctx, created, existing)
	res.Commute = commute
	res.CommuteConflicts = commuteConflicts
	return res, nil
}

// UpdateEvent replaces an event whole-field, re-checks conflicts against the
// new window (excluding the event itself and blocks serving it), and
// re-synthesizes the commute block.
func (s *CalendarService) UpdateEvent(ctx context.Context, e *model.CalendarEvent) (*CreateEventResult, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if e.ID == "" {
		return nil, model.ErrValidation
	}
	if _, err := s.store.Events().Get(ctx, e.UserID, e.ID); err != nil {
		return nil, err
	}

	existing, err := s.store.Events().ListRange(ctx, e.UserID, e.StartTime.Add(-windowPad), e.EndTime.Add(windowPad))
	if err != nil {
		return nil, err
	}
	others := excludeEventAndServing(existing, e.ID)

	if conflicts := sortConflicts(schedule.DetectConflicts(e, others)); len(conflicts) > 0 {
		return &CreateEventResult{Conflicts: conflicts}, model.ErrConflict
	}

	updated, err := s.store.Events().Update(ctx, e)
	if err != nil {
		return nil, err
	}

	// Only after the update lands does the old commute stop matching the
	// event's time and place; a failed update keeps it intact.
	if err := s.deleteServingCommutes(ctx, e.UserID, e.ID); err != nil {
		return nil, err
	}
	res := &CreateEventResult{Event: updated}

	commute, commuteConflicts := s.synthesizeCommute(ctx, updated, others)
	res.Commute = commute
	res.CommuteConflicts = commuteConflicts
	return res, nil
}

// DeleteEvent removes an event and any commute blocks serving it. The store
// does not cascade; cleanup is this layer's responsibility.
func (s *CalendarService) DeleteEvent(ctx context.Context, userID, id string) error {
	if err := s.deleteServingCommutes(ctx, userID, id); err != nil {
		return err
	}
	return s.store.Events().Delete(ctx, userID, id)
}

// GetEvent loads one event.
func (s *CalendarService) GetEvent(ctx context.Context, userID, id string) (*model.CalendarEvent, error) {
	return s.store.Events().Get(ctx, userID, id)
}

// ListEvents returns the user's events overlapping [start, end).
func (s *CalendarService) ListEvents(ctx context.Context, userID string, start, end time.Time) ([]*model.CalendarEvent, error) {
	return s.store.Events().ListRange(ctx, userID, start, end)
}

// GetProfile loads the user's scheduling profile.
func (s *CalendarService) GetProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	return s.store.Profiles().Get(ctx, userID)
}

// PutProfile replaces the user's scheduling profile.
func (s *CalendarService) PutProfile(ctx context.Context, p *model.UserProfile) (*model.UserProfile, error) {
	if p.UserID == "" {
		return nil, model.ErrValidation
	}
	if p.TransitMode != "" && !p.TransitMode.Valid() {
		return nil, model.ErrValidation
	}
	return s.store.Profiles().Upsert(ctx, p)
}

// synthesizeCommute derives and persists the commute block for a newly
// written served event. Everything here is best-effort: a missing profile,
// an unresolvable route, a conflicting block, or a failed second write all
// leave the served event standing with the commute simply absent.
func (s *CalendarService) synthesizeCommute(ctx context.Context, served *model.CalendarEvent, existing []*model.CalendarEvent) (*model.CalendarEvent, []model.ConflictRecord) {
	if s.synth == nil {
		return nil, nil
	}
	if served.Type != model.EventShift && served.Type != model.EventInterview {
		return nil, nil
	}

	profile, err := s.store.Profiles().Get(ctx, served.UserID)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			s.log.Warn().Err(err).Str("user_id", served.UserID).Msg("profile load failed; skipping commute")
		}
		return nil, nil
	}
	if profile.HomeCoordinates == nil {
		return nil, nil
	}

	commute := s.synth.Synthesize(ctx, served, *profile.HomeCoordinates, profile.TransitMode)
	if commute == nil {
		return nil, nil
	}

	if conflicts := sortConflicts(schedule.DetectConflicts(commute, existing)); len(conflicts) > 0 {
		s.log.Info().
			Str("served_event_id", served.ID).
			Int("conflicts", len(conflicts)).
			Msg("synthesized commute conflicts with committed time; not persisted")
		return nil, conflicts
	}

	persisted, err := s.store.Events().Create(ctx, commute)
	if err != nil {
		s.log.Warn().Err(err).Str("served_event_id", served.ID).Msg("commute write failed; served event stands")
		return nil, nil
	}
	return persisted, nil
}

func (s *CalendarService) deleteServingCommutes(ctx context.Context, userID, servedEventID string) error {
	serving, err := s.store.Events().ListServing(ctx, userID, servedEventID)
	if err != nil {
		return err
	}
	for _, c := range serving {
		if err := s.store.Events().Delete(ctx, userID, c.ID); err != nil && !errors.Is(err, model.ErrNotFound) {
			return err
		}
	}
	return nil
}

// excludeEventAndServing drops the event itself and commute blocks serving
// it, so an update is not rejected for overlapping its own footprint.
func excludeEventAndServing(events []*model.CalendarEvent, id string) []*model.CalendarEvent {
	out := events[:0:0]
	for _, ev := range events {
		if ev.ID == id {
			continue
		}
		if ev.ServesEventID != nil && *ev.ServesEventID == id {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// sortConflicts orders conflict records by the existing event's start time;
// the detector itself guarantees no order.
func sortConflicts(conflicts []model.ConflictRecord) []model.ConflictRecord {
	sort.SliceStable(conflicts, func(i, j int) bool {
		return conflicts[i].ExistingEvent.StartTime.Before(conflicts[j].ExistingEvent.StartTime)
	})
	return conflicts
}
