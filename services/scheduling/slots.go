package scheduling

import (
	"fmt"
	"iter"
	"strings"

	"nexia/models"
)

// ParseTimeRange reads "HH:MM-HH:MM" into a normalized TimeRange. Ranges
// whose start is not before their end are returned as is; they simply
// generate no slots.
func ParseTimeRange(s string) (models.TimeRange, error) {
	startStr, endStr, ok := strings.Cut(s, "-")
	if !ok {
		return models.TimeRange{}, fmt.Errorf("time range %q: want HH:MM-HH:MM", s)
	}
	start, err := ParseClock(startStr)
	if err != nil {
		return models.TimeRange{}, fmt.Errorf("time range %q: %w", s, err)
	}
	end, err := ParseClock(endStr)
	if err != nil {
		return models.TimeRange{}, fmt.Errorf("time range %q: %w", s, err)
	}
	return models.TimeRange{Start: FormatClock(start), End: FormatClock(end)}, nil
}

// GenerateSlots yields the back-to-back slots of exactly durationMinutes
// that fit in window, starting at its start. A trailing remainder shorter
// than a slot is dropped. Non-positive durations, empty or inverted windows
// and unparseable bounds yield nothing. The sequence holds no state and can
// be ranged over any number of times.
func GenerateSlots(window models.TimeRange, durationMinutes int) iter.Seq[models.TimeRange] {
	return func(yield func(models.TimeRange) bool) {
		if durationMinutes <= 0 {
			return
		}
		start, err := ParseClock(window.Start)
		if err != nil {
			return
		}
		end, err := ParseClock(window.End)
		if err != nil {
			return
		}
		for t := start; t+durationMinutes <= end; t += durationMinutes {
			if !yield(models.TimeRange{Start: FormatClock(t), End: FormatClock(t + durationMinutes)}) {
				return
			}
		}
	}
}
