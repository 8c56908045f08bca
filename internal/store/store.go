package store

import (
	"context"
	"time"

	"github.com/careerpilot/shadowcal/internal/model"
)

// Store exposes the persistence contract the scheduling service requires.
// Implementations live under internal/store/<driver>/ (postgres, sqlite).
type Store interface {
	Events() Events
	Profiles() Profiles
}

// Events is range-scoped, per-user storage of calendar event rows.
type Events interface {
	Create(ctx context.Context, e *model.CalendarEvent) (*model.CalendarEvent, error)
	Get(ctx context.Context, userID, id string) (*model.CalendarEvent, error)
	// Update replaces the row whole-field; no partial merge semantics.
	Update(ctx context.Context, e *model.CalendarEvent) (*model.CalendarEvent, error)
	Delete(ctx context.Context, userID, id string) error
	// ListRange returns events overlapping the half-open window [start, end),
	// ordered by start time.
	ListRange(ctx context.Context, userID string, start, end time.Time) ([]*model.CalendarEvent, error)
	// ListServing returns commute events referencing the given served event.
	ListServing(ctx context.Context, userID, servedEventID string) ([]*model.CalendarEvent, error)
}

// Profiles stores per-user scheduling settings.
type Profiles interface {
	Upsert(ctx context.Context, p *model.UserProfile) (*model.UserProfile, error)
	Get(ctx context.Context, userID string) (*model.UserProfile, error)
}
