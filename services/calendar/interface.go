package calendar

import (
	"context"
	"errors"
	"time"
)

// ErrNotConfigured is returned by the disabled backend.
var ErrNotConfigured = errors.New("calendar not configured")

// Interval is a half-open [Start, End) span of busy time.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether [start, end) intersects the interval.
func (i Interval) Overlaps(start, end time.Time) bool {
	return start.Before(i.End) && i.Start.Before(end)
}

// OverlapsAny reports whether [start, end) intersects any of busy.
func OverlapsAny(start, end time.Time, busy []Interval) bool {
	for _, b := range busy {
		if b.Overlaps(start, end) {
			return true
		}
	}
	return false
}

// EventInput is what the gateway needs to put an appointment on the calendar.
type EventInput struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
}

// Backend is the raw calendar service. Implementations return errors; the
// Gateway decides what an error means for availability.
type Backend interface {
	ListEvents(ctx context.Context, start, end time.Time) ([]Interval, error)
	InsertEvent(ctx context.Context, in EventInput) (string, error)
}

type disabledBackend struct{}

// NewDisabledBackend returns a backend that fails every call. It lets the
// assistant run without calendar credentials.
func NewDisabledBackend() Backend {
	return disabledBackend{}
}

func (disabledBackend) ListEvents(context.Context, time.Time, time.Time) ([]Interval, error) {
	return nil, ErrNotConfigured
}

func (disabledBackend) InsertEvent(context.Context, EventInput) (string, error) {
	return "", ErrNotConfigured
}
