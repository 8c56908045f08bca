package model

import "time"

// EventType discriminates calendar event rows. Transit metadata is only
// meaningful on EventCommute rows.
type EventType string

const (
	EventShift     EventType = "shift"
	EventCommute   EventType = "commute"
	EventInterview EventType = "interview"
	EventBlock     EventType = "block"
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	switch t {
	case EventShift, EventCommute, EventInterview, EventBlock:
		return true
	}
	return false
}

// TransitMode is how the user travels to a location-bound event.
type TransitMode string

const (
	ModeLynx      TransitMode = "lynx"
	ModeCar       TransitMode = "car"
	ModeRideshare TransitMode = "rideshare"
	ModeWalk      TransitMode = "walk"
)

// Valid reports whether m is a known transit mode.
func (m TransitMode) Valid() bool {
	switch m {
	case ModeLynx, ModeCar, ModeRideshare, ModeWalk:
		return true
	}
	return false
}

// Coordinates is a geographic point.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CalendarEvent is a scoped time interval on a user's shadow calendar.
// The interval is half-open: [StartTime, EndTime).
type CalendarEvent struct {
	ID          string    `json:"id,omitempty"`
	UserID      string    `json:"userId"`
	Type        EventType `json:"type"`
	Title       string    `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`

	// Weak references into other subsystems.
	JobID         *string `json:"jobId,omitempty"`
	ApplicationID *string `json:"applicationId,omitempty"`
	InterviewID   *string `json:"interviewId,omitempty"`

	// Location, for shift/interview events that need commute synthesis.
	LocationText *string      `json:"location,omitempty"`
	Coordinates  *Coordinates `json:"coordinates,omitempty"`

	// Transit metadata, populated only on commute events.
	ServesEventID      *string      `json:"servesEventId,omitempty"`
	TransitMode        *TransitMode `json:"transitMode,omitempty"`
	LynxRoute          *string      `json:"lynxRoute,omitempty"`
	TransitTimeMinutes *int         `json:"transitTimeMinutes,omitempty"`

	CreationTime time.Time `json:"creationTime"`
}

// Duration returns the event's length.
func (e *CalendarEvent) Duration() time.Duration {
	return e.EndTime.Sub(e.StartTime)
}

// Validate checks the invariants every event row must satisfy before it is
// evaluated or persisted.
func (e *CalendarEvent) Validate() error {
	if e.UserID == "" {
		return ErrValidation
	}
	if !e.Type.Valid() {
		return ErrValidation
	}
	if e.StartTime.IsZero() || e.EndTime.IsZero() {
		return ErrValidation
	}
	if !e.EndTime.After(e.StartTime) {
		return ErrInvalidInterval
	}
	return nil
}

// TypicalShift is a recurring weekly slot used only for hypothetical
// projection, never persisted. DayOfWeek follows time.Weekday numbering
// (Sunday = 0).
type TypicalShift struct {
	DayOfWeek   int `json:"dayOfWeek"`
	StartHour   int `json:"startHour"`
	StartMinute int `json:"startMinute"`
	EndHour     int `json:"endHour"`
	EndMinute   int `json:"endMinute"`
}

// Valid reports whether the slot describes a real weekly time range.
func (s TypicalShift) Valid() bool {
	if s.DayOfWeek < 0 || s.DayOfWeek > 6 {
		return false
	}
	if s.StartHour < 0 || s.StartHour > 23 || s.EndHour < 0 || s.EndHour > 23 {
		return false
	}
	if s.StartMinute < 0 || s.StartMinute > 59 || s.EndMinute < 0 || s.EndMinute > 59 {
		return false
	}
	return true
}

// OverlapType classifies a detected conflict.
type OverlapType string

const (
	// OverlapFull means one interval entirely contains the other.
	OverlapFull OverlapType = "full"
	// OverlapPartial means the intervals intersect without containment.
	OverlapPartial OverlapType = "partial"
)

// ConflictRecord describes one pairwise time overlap. Transient, never persisted.
type ConflictRecord struct {
	ExistingEvent  *CalendarEvent `json:"existingEvent"`
	OverlapMinutes int            `json:"overlapMinutes"`
	Type           OverlapType    `json:"type"`
	OverlapStart   time.Time      `json:"overlapStart"`
	OverlapEnd     time.Time      `json:"overlapEnd"`
}

// TransitEstimate is what the transit lookup collaborator returns for one
// origin/destination pair.
type TransitEstimate struct {
	DurationMinutes int      `json:"durationMinutes"`
	WalkingMinutes  int      `json:"walkingMinutes"`
	Transfers       int      `json:"transfers"`
	DistanceMiles   float64  `json:"distanceMiles"`
	RouteSummary    string   `json:"routeSummary"`
	RouteIDs        []string `json:"routeIdentifiers,omitempty"`
}

// PreflightResult is the aggregate verdict of a preflight projection.
// Commute conflicts are advisory: CanApply depends only on schedule overlap.
type PreflightResult struct {
	HasScheduleConflict bool             `json:"hasScheduleConflict"`
	HasCommuteConflict  bool             `json:"hasCommuteConflict"`
	Conflicts           []ConflictRecord `json:"conflicts"`
	TransitInfo         *TransitEstimate `json:"transitInfo"`
	MaxCommuteMinutes   int              `json:"maxCommuteMinutes"`
	CanApply            bool             `json:"canApply"`
}

// UserProfile carries the per-user settings the scheduling engine needs:
// where home is, how the user travels, and the longest commute tolerated.
type UserProfile struct {
	UserID            string       `json:"userId"`
	HomeAddress       *string      `json:"homeAddress,omitempty"`
	HomeCoordinates   *Coordinates `json:"homeCoordinates,omitempty"`
	TransitMode       TransitMode  `json:"transitMode"`
	MaxCommuteMinutes int          `json:"maxCommuteMinutes"`
	EmploymentType    string       `json:"employmentType,omitempty"`
	CreationTime      time.Time    `json:"creationTime"`
}
