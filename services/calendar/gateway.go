package calendar

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// FailPolicy says how an availability query that could not reach the
// calendar is read.
type FailPolicy int

const (
	// FailClosed treats an unknown slot as taken.
	FailClosed FailPolicy = iota
	// FailOpen treats an unknown slot as free and risks a double booking.
	FailOpen
)

// SlotStatus is the outcome of a live availability check.
type SlotStatus int

const (
	SlotUnknown SlotStatus = iota
	SlotFree
	SlotBusy
)

func (s SlotStatus) String() string {
	switch s {
	case SlotFree:
		return "free"
	case SlotBusy:
		return "busy"
	default:
		return "unknown"
	}
}

// Gateway wraps a Backend so that calendar failures never propagate: reads
// degrade to SlotUnknown (resolved by the fail policy) and inserts to "not
// created".
type Gateway struct {
	backend Backend
	policy  FailPolicy
	logger  *zap.Logger
}

func NewGateway(backend Backend, policy FailPolicy, logger *zap.Logger) *Gateway {
	return &Gateway{
		backend: backend,
		policy:  policy,
		logger:  logger.With(zap.String("component", "calendar-gateway")),
	}
}

// CheckSlot asks the calendar whether [start, end) is free right now.
func (g *Gateway) CheckSlot(ctx context.Context, start, end time.Time) SlotStatus {
	busy, err := g.backend.ListEvents(ctx, start, end)
	if err != nil {
		g.logger.Error("failed to fetch events from calendar",
			zap.Time("start", start), zap.Time("end", end), zap.Error(err))
		return SlotUnknown
	}
	status := SlotFree
	if OverlapsAny(start, end, busy) {
		status = SlotBusy
	}
	g.logger.Debug("checked slot availability",
		zap.Time("start", start), zap.Time("end", end), zap.Stringer("status", status))
	return status
}

// Allows applies the fail policy to a status.
func (g *Gateway) Allows(status SlotStatus) bool {
	switch status {
	case SlotFree:
		return true
	case SlotUnknown:
		return g.policy == FailOpen
	default:
		return false
	}
}

// IsSlotFree is CheckSlot with the fail policy applied.
func (g *Gateway) IsSlotFree(ctx context.Context, start, end time.Time) bool {
	return g.Allows(g.CheckSlot(ctx, start, end))
}

// FreeSlots checks many candidate intervals with a single calendar query
// spanning all of them. The result is index-aligned with candidates.
func (g *Gateway) FreeSlots(ctx context.Context, candidates []Interval) []bool {
	free := make([]bool, len(candidates))
	if len(candidates) == 0 {
		return free
	}

	lo, hi := candidates[0].Start, candidates[0].End
	for _, c := range candidates[1:] {
		if c.Start.Before(lo) {
			lo = c.Start
		}
		if c.End.After(hi) {
			hi = c.End
		}
	}

	busy, err := g.backend.ListEvents(ctx, lo, hi)
	if err != nil {
		g.logger.Error("failed to fetch events from calendar",
			zap.Time("start", lo), zap.Time("end", hi), zap.Error(err))
		open := g.Allows(SlotUnknown)
		for i := range free {
			free[i] = open
		}
		return free
	}

	for i, c := range candidates {
		free[i] = !OverlapsAny(c.Start, c.End, busy)
	}
	return free
}

// CreateEvent books the interval. It returns false when the calendar did not
// accept the event; the error is logged, not returned.
func (g *Gateway) CreateEvent(ctx context.Context, in EventInput) (string, bool) {
	g.logger.Info("creating event",
		zap.String("summary", in.Summary),
		zap.Time("start", in.Start),
		zap.Duration("duration", in.End.Sub(in.Start)))

	id, err := g.backend.InsertEvent(ctx, in)
	if err != nil {
		g.logger.Error("failed to create event in calendar",
			zap.String("summary", in.Summary), zap.Error(err))
		return "", false
	}
	return id, true
}
