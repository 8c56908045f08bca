package schedule

import (
	"strings"

	"github.com/careerpilot/shadowcal/internal/model"
)

// Default weekly patterns by employment type, used when a preflight caller
// supplies no explicit shift pattern. Hours are in the projection timezone.
var defaultPatterns = map[string][]model.TypicalShift{
	"full-time": {
		{DayOfWeek: 1, StartHour: 9, EndHour: 17},
		{DayOfWeek: 2, StartHour: 9, EndHour: 17},
		{DayOfWeek: 3, StartHour: 9, EndHour: 17},
		{DayOfWeek: 4, StartHour: 9, EndHour: 17},
		{DayOfWeek: 5, StartHour: 9, EndHour: 17},
	},
	"part-time": {
		{DayOfWeek: 1, StartHour: 10, EndHour: 14},
		{DayOfWeek: 3, StartHour: 10, EndHour: 14},
		{DayOfWeek: 5, StartHour: 10, EndHour: 14},
	},
	"weekend": {
		{DayOfWeek: 6, StartHour: 8, EndHour: 16},
		{DayOfWeek: 0, StartHour: 8, EndHour: 16},
	},
	"overnight": {
		{DayOfWeek: 1, StartHour: 22, EndHour: 6},
		{DayOfWeek: 2, StartHour: 22, EndHour: 6},
		{DayOfWeek: 3, StartHour: 22, EndHour: 6},
		{DayOfWeek: 4, StartHour: 22, EndHour: 6},
		{DayOfWeek: 5, StartHour: 22, EndHour: 6},
	},
}

// DefaultPattern returns the static weekly pattern for an employment type,
// falling back to the generic full-time pattern for unrecognized types.
func DefaultPattern(employmentType string) []model.TypicalShift {
	key := strings.ToLower(strings.TrimSpace(employmentType))
	key = strings.ReplaceAll(key, " ", "-")
	key = strings.ReplaceAll(key, "_", "-")
	if p, ok := defaultPatterns[key]; ok {
		return p
	}
	return defaultPatterns["full-time"]
}
