package scheduling

import (
	"fmt"
	"strings"
	"time"
)

// dateLayouts are tried in order before a day expression is read as a
// weekday name.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2006-01-02T15:04:05",
}

// DayRef is a parsed day expression. Dates keep their calendar day; weekday
// names only carry the weekday.
type DayRef struct {
	Weekday time.Weekday
	Date    time.Time
	HasDate bool
}

// Resolver turns human day and time expressions into concrete instants in
// one time zone.
type Resolver struct {
	loc    *time.Location
	locale string
	now    func() time.Time
}

// NewResolver returns a resolver for loc. now may be nil, meaning time.Now.
func NewResolver(loc *time.Location, locale string, now func() time.Time) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Resolver{loc: loc, locale: locale, now: now}
}

func (r *Resolver) Location() *time.Location { return r.loc }

func (r *Resolver) Now() time.Time { return r.now().In(r.loc) }

// ParseDay accepts a calendar date or a weekday name.
func (r *Resolver) ParseDay(expr string) (DayRef, error) {
	expr = strings.TrimSpace(expr)
	if t, err := time.Parse(time.RFC3339, expr); err == nil {
		t = t.In(r.loc)
		return r.dateRef(t), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, expr, r.loc); err == nil {
			return r.dateRef(t), nil
		}
	}
	if d, ok := ParseWeekday(expr); ok {
		return DayRef{Weekday: d}, nil
	}
	return DayRef{}, fmt.Errorf("%w: %q", ErrUnknownWeekday, expr)
}

func (r *Resolver) dateRef(t time.Time) DayRef {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, r.loc)
	return DayRef{Weekday: day.Weekday(), Date: day, HasDate: true}
}

// DayLabel is the weekday name of ref in the resolver's locale.
func (r *Resolver) DayLabel(ref DayRef) string {
	return WeekdayName(ref.Weekday, r.locale)
}

// Occurrence returns the instant at which ref happens at the given minute
// of the day. Weekdays resolve to the next such day strictly after now,
// rolling to next week when today's time has already passed. Dates must be
// strictly in the future.
func (r *Resolver) Occurrence(ref DayRef, minuteOfDay int) (time.Time, error) {
	if minuteOfDay < 0 || minuteOfDay >= 24*60 {
		return time.Time{}, ErrInvalidTime
	}
	now := r.Now()
	h, m := minuteOfDay/60, minuteOfDay%60

	if ref.HasDate {
		t := time.Date(ref.Date.Year(), ref.Date.Month(), ref.Date.Day(), h, m, 0, 0, r.loc)
		if !t.After(now) {
			return time.Time{}, fmt.Errorf("%w: %s", ErrPastDate, t.Format("2006-01-02 15:04"))
		}
		return t, nil
	}

	delta := (int(ref.Weekday) - int(now.Weekday()) + 7) % 7
	t := time.Date(now.Year(), now.Month(), now.Day()+delta, h, m, 0, 0, r.loc)
	if !t.After(now) {
		t = time.Date(now.Year(), now.Month(), now.Day()+delta+7, h, m, 0, 0, r.loc)
	}
	return t, nil
}

// NextWeekday is Occurrence for a bare weekday.
func (r *Resolver) NextWeekday(d time.Weekday, minuteOfDay int) (time.Time, error) {
	return r.Occurrence(DayRef{Weekday: d}, minuteOfDay)
}

// ResolveNextOccurrence parses both expressions and returns the concrete
// appointment start.
func (r *Resolver) ResolveNextOccurrence(dayExpr, clock string) (time.Time, error) {
	minutes, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	ref, err := r.ParseDay(dayExpr)
	if err != nil {
		return time.Time{}, err
	}
	return r.Occurrence(ref, minutes)
}

// MatchesWindowDay reports whether a day expression falls on the weekday an
// availability window is labelled with. Unknown names never match.
func (r *Resolver) MatchesWindowDay(dayExpr, windowDay string) bool {
	ref, err := r.ParseDay(dayExpr)
	if err != nil {
		return false
	}
	d, ok := ParseWeekday(windowDay)
	return ok && d == ref.Weekday
}

// ParseClock reads a 24-hour "HH:MM" (a single-digit hour is accepted) and
// returns minutes since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
