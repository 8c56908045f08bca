package validate

import (
	"fmt"
	"regexp"

	"github.com/careerpilot/shadowcal/internal/model"
)

// UserID must be lowercase letters, digits, underscore or hyphen, 1-40 chars.
var userIdRx = regexp.MustCompile(`^[a-z0-9_-]{1,40}$`)

func UserID(v string) error {
	if v == "" {
		return fmt.Errorf("userId is required")
	}
	if !userIdRx.MatchString(v) {
		return fmt.Errorf("userId must match %s", userIdRx.String())
	}
	return nil
}

func NonEmpty(field, v string) error {
	if v == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

func MaxLen(field string, v *string, limit int) error {
	if v == nil {
		return nil
	}
	if len(*v) > limit {
		return fmt.Errorf("%s exceeds %d characters", field, limit)
	}
	return nil
}

// Title validates event titles: at most 120 bytes, no control characters.
// Empty is allowed; titles are optional.
func Title(v string) error {
	if len(v) > 120 {
		return fmt.Errorf("title exceeds 120 characters")
	}
	for _, r := range v {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("title contains control characters")
		}
	}
	return nil
}

// EventType rejects unknown calendar event types.
func EventType(v string) error {
	if !model.EventType(v).Valid() {
		return fmt.Errorf("eventType must be one of shift, commute, interview, block")
	}
	return nil
}

// TransitMode rejects unknown transit modes. Empty is allowed; callers fall
// back to the profile default.
func TransitMode(v string) error {
	if v == "" {
		return nil
	}
	if !model.TransitMode(v).Valid() {
		return fmt.Errorf("transitMode must be one of lynx, car, rideshare, walk")
	}
	return nil
}

// Coordinates checks that a supplied coordinate pair is on the globe.
func Coordinates(c *model.Coordinates) error {
	if c == nil {
		return nil
	}
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("latitude out of range")
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("longitude out of range")
	}
	return nil
}

// ShiftPattern checks an explicit weekly pattern: every slot must carry a
// valid weekday and clock values.
func ShiftPattern(slots []model.TypicalShift) error {
	for i, s := range slots {
		if !s.Valid() {
			return fmt.Errorf("shiftPattern[%d] is invalid", i)
		}
	}
	return nil
}

// -------- Request specific helpers ----------

// CreateEvent validates input for creating a calendar event.
func CreateEvent(eventType, title string, description *string, coords *model.Coordinates) error {
	if err := EventType(eventType); err != nil {
		return err
	}
	if err := Title(title); err != nil {
		return err
	}
	if err := MaxLen("description", description, 500); err != nil {
		return err
	}
	return Coordinates(coords)
}

// PutProfile validates input for replacing a user profile.
func PutProfile(transitMode string, maxCommuteMinutes int, home *model.Coordinates) error {
	if err := TransitMode(transitMode); err != nil {
		return err
	}
	if maxCommuteMinutes < 0 {
		return fmt.Errorf("maxCommuteMinutes must not be negative")
	}
	return Coordinates(home)
}
