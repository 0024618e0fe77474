package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeBackend struct {
	busy      []Interval
	listErr   error
	insertErr error
	lists     int
	inserted  []EventInput
}

func (f *fakeBackend) ListEvents(_ context.Context, start, end time.Time) ([]Interval, error) {
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []Interval
	for _, b := range f.busy {
		if b.Overlaps(start, end) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBackend) InsertEvent(_ context.Context, in EventInput) (string, error) {
	if f.insertErr != nil {
		return "", f.insertErr
	}
	f.inserted = append(f.inserted, in)
	return "evt-1", nil
}

func at(hour, minute int) time.Time {
	return time.Date(2026, 10, 21, hour, minute, 0, 0, time.UTC)
}

func TestInterval_Overlaps(t *testing.T) {
	iv := Interval{Start: at(10, 0), End: at(11, 0)}

	assert.True(t, iv.Overlaps(at(10, 30), at(11, 30)))
	assert.True(t, iv.Overlaps(at(9, 0), at(12, 0)))
	assert.False(t, iv.Overlaps(at(11, 0), at(12, 0)), "touching end is not an overlap")
	assert.False(t, iv.Overlaps(at(9, 0), at(10, 0)), "touching start is not an overlap")
}

func TestGateway_CheckSlot(t *testing.T) {
	logger := zap.NewNop()

	t.Run("Free", func(t *testing.T) {
		g := NewGateway(&fakeBackend{}, FailClosed, logger)
		assert.Equal(t, SlotFree, g.CheckSlot(context.Background(), at(10, 0), at(11, 0)))
	})

	t.Run("Busy", func(t *testing.T) {
		backend := &fakeBackend{busy: []Interval{{Start: at(10, 30), End: at(10, 45)}}}
		g := NewGateway(backend, FailClosed, logger)
		assert.Equal(t, SlotBusy, g.CheckSlot(context.Background(), at(10, 0), at(11, 0)))
	})

	t.Run("Error Fails Closed", func(t *testing.T) {
		g := NewGateway(&fakeBackend{listErr: errors.New("403")}, FailClosed, logger)
		assert.Equal(t, SlotUnknown, g.CheckSlot(context.Background(), at(10, 0), at(11, 0)))
		assert.False(t, g.IsSlotFree(context.Background(), at(10, 0), at(11, 0)))
	})

	t.Run("Error Fails Open", func(t *testing.T) {
		g := NewGateway(&fakeBackend{listErr: errors.New("timeout")}, FailOpen, logger)
		assert.True(t, g.IsSlotFree(context.Background(), at(10, 0), at(11, 0)))
	})
}

func TestGateway_FreeSlots(t *testing.T) {
	logger := zap.NewNop()
	candidates := []Interval{
		{Start: at(9, 0), End: at(10, 0)},
		{Start: at(10, 0), End: at(11, 0)},
		{Start: at(11, 0), End: at(12, 0)},
	}

	t.Run("Single Query Filters Busy", func(t *testing.T) {
		backend := &fakeBackend{busy: []Interval{{Start: at(10, 15), End: at(10, 30)}}}
		g := NewGateway(backend, FailClosed, logger)

		free := g.FreeSlots(context.Background(), candidates)

		assert.Equal(t, []bool{true, false, true}, free)
		assert.Equal(t, 1, backend.lists, "one calendar query for the whole batch")
	})

	t.Run("Error Applies Policy To All", func(t *testing.T) {
		backend := &fakeBackend{listErr: errors.New("boom")}

		closed := NewGateway(backend, FailClosed, logger).FreeSlots(context.Background(), candidates)
		open := NewGateway(backend, FailOpen, logger).FreeSlots(context.Background(), candidates)

		assert.Equal(t, []bool{false, false, false}, closed)
		assert.Equal(t, []bool{true, true, true}, open)
	})

	t.Run("Empty", func(t *testing.T) {
		backend := &fakeBackend{}
		g := NewGateway(backend, FailClosed, logger)
		assert.Empty(t, g.FreeSlots(context.Background(), nil))
		assert.Zero(t, backend.lists)
	})
}

func TestGateway_CreateEvent(t *testing.T) {
	logger := zap.NewNop()
	in := EventInput{Summary: "Juan Perez - Fisioterapia", Start: at(10, 0), End: at(11, 0)}

	t.Run("Created", func(t *testing.T) {
		g := NewGateway(&fakeBackend{}, FailClosed, logger)
		id, ok := g.CreateEvent(context.Background(), in)
		assert.True(t, ok)
		assert.Equal(t, "evt-1", id)
	})

	t.Run("Failure Is Not Raised", func(t *testing.T) {
		g := NewGateway(&fakeBackend{insertErr: errors.New("quota")}, FailClosed, logger)
		id, ok := g.CreateEvent(context.Background(), in)
		assert.False(t, ok)
		assert.Empty(t, id)
	})

	t.Run("Disabled Backend", func(t *testing.T) {
		g := NewGateway(NewDisabledBackend(), FailClosed, logger)
		_, ok := g.CreateEvent(context.Background(), in)
		assert.False(t, ok)
		assert.Equal(t, SlotUnknown, g.CheckSlot(context.Background(), at(10, 0), at(11, 0)))
	})
}
