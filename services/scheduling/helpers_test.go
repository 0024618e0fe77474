package scheduling

import (
	"context"
	"fmt"
	"testing"
	"time"

	"nexia/services/calendar"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const fixtureCatalog = "testdata/services.yaml"

// fakeCalendar is a shared calendar held in memory.
type fakeCalendar struct {
	busy        []calendar.Interval
	allBusy     bool
	// answers scripts IsSlotFree results, consumed in order.
	answers     []bool
	createFails bool

	checks  int
	batches int
	created []calendar.EventInput
}

func (f *fakeCalendar) free(start, end time.Time) bool {
	return !f.allBusy && !calendar.OverlapsAny(start, end, f.busy)
}

func (f *fakeCalendar) FreeSlots(_ context.Context, candidates []calendar.Interval) []bool {
	f.batches++
	out := make([]bool, len(candidates))
	for i, c := range candidates {
		out[i] = f.free(c.Start, c.End)
	}
	return out
}

func (f *fakeCalendar) IsSlotFree(_ context.Context, start, end time.Time) bool {
	f.checks++
	if len(f.answers) > 0 {
		a := f.answers[0]
		f.answers = f.answers[1:]
		return a
	}
	return f.free(start, end)
}

func (f *fakeCalendar) CreateEvent(_ context.Context, in calendar.EventInput) (string, bool) {
	if f.createFails {
		return "", false
	}
	f.created = append(f.created, in)
	return fmt.Sprintf("evt-%d", len(f.created)), true
}

func saoPaulo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	return loc
}

// testResolver is pinned to Monday 2026-10-19 08:00 in São Paulo.
func testResolver(t *testing.T) *Resolver {
	t.Helper()
	loc := saoPaulo(t)
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, loc)
	return NewResolver(loc, "pt", func() time.Time { return now })
}

func loadFixture(t *testing.T, cal Calendar) *Services {
	t.Helper()
	services, err := LoadCatalog(fixtureCatalog, cal, testResolver(t), zap.NewNop())
	require.NoError(t, err)
	return services
}

func fisioterapia(t *testing.T, cal Calendar) *Service {
	t.Helper()
	svc, ok := loadFixture(t, cal).GetByName("fisioterapia")
	require.True(t, ok)
	return svc
}
