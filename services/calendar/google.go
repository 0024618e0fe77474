package calendar

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleBackend talks to one shared Google Calendar.
type GoogleBackend struct {
	service    *gcal.Service
	calendarID string
	location   *time.Location
	timeout    time.Duration
	logger     *zap.Logger
}

// NewGoogleBackend builds the Calendar v3 client. Callers pass credentials
// through opts, e.g. option.WithCredentialsFile.
func NewGoogleBackend(ctx context.Context, calendarID string, loc *time.Location, timeout time.Duration, logger *zap.Logger, opts ...option.ClientOption) (*GoogleBackend, error) {
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create calendar service: %w", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GoogleBackend{
		service:    svc,
		calendarID: calendarID,
		location:   loc,
		timeout:    timeout,
		logger:     logger.With(zap.String("component", "calendar-backend")),
	}, nil
}

// ListEvents returns every event that intersects [start, end), expanded to
// single instances and ordered by start time.
func (g *GoogleBackend) ListEvents(ctx context.Context, start, end time.Time) ([]Interval, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	g.logger.Debug("listing events",
		zap.String("calendarID", g.calendarID),
		zap.Time("timeMin", start),
		zap.Time("timeMax", end))

	var busy []Interval
	call := g.service.Events.List(g.calendarID).
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)

	err := call.Pages(ctx, func(page *gcal.Events) error {
		for _, ev := range page.Items {
			// Cancelled events and events marked "free" do not block time.
			if ev.Status == "cancelled" || ev.Transparency == "transparent" {
				continue
			}
			busy = append(busy, g.eventInterval(ev, start, end))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve events: %w", err)
	}

	g.logger.Debug("retrieved events",
		zap.String("calendarID", g.calendarID),
		zap.Int("eventCount", len(busy)))
	return busy, nil
}

// eventInterval converts an event's bounds. All-day events cover whole days
// in the calendar's zone; unreadable bounds block the whole queried range.
func (g *GoogleBackend) eventInterval(ev *gcal.Event, rangeStart, rangeEnd time.Time) Interval {
	start, okStart := g.parseEventTime(ev.Start)
	end, okEnd := g.parseEventTime(ev.End)
	if !okStart || !okEnd || !end.After(start) {
		g.logger.Warn("event with unreadable bounds treated as busy for whole range",
			zap.String("eventID", ev.Id))
		return Interval{Start: rangeStart, End: rangeEnd}
	}
	return Interval{Start: start, End: end}
}

func (g *GoogleBackend) parseEventTime(edt *gcal.EventDateTime) (time.Time, bool) {
	if edt == nil {
		return time.Time{}, false
	}
	if edt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, edt.DateTime)
		return t, err == nil
	}
	if edt.Date != "" {
		t, err := time.ParseInLocation("2006-01-02", edt.Date, g.location)
		return t, err == nil
	}
	return time.Time{}, false
}

// InsertEvent creates the event and returns its identifier.
func (g *GoogleBackend) InsertEvent(ctx context.Context, in EventInput) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	tz := g.location.String()
	event := &gcal.Event{
		Summary:     in.Summary,
		Description: in.Description,
		Start: &gcal.EventDateTime{
			DateTime: in.Start.In(g.location).Format(time.RFC3339),
			TimeZone: tz,
		},
		End: &gcal.EventDateTime{
			DateTime: in.End.In(g.location).Format(time.RFC3339),
			TimeZone: tz,
		},
	}

	created, err := g.service.Events.Insert(g.calendarID, event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create event: %w", err)
	}

	g.logger.Info("created event",
		zap.String("calendarID", g.calendarID),
		zap.String("eventID", created.Id),
		zap.String("eventSummary", created.Summary))
	return created.Id, nil
}
