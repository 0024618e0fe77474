package scheduling

import "errors"

var (
	ErrInvalidTime    = errors.New("time must be HH:MM (24-hour)")
	ErrUnknownWeekday = errors.New("unknown weekday")
	ErrPastDate       = errors.New("date is not in the future")
)
