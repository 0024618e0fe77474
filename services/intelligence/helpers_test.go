package ai

import (
	"context"
	"fmt"
	"slices"
	"testing"
	"time"

	"nexia/services/calendar"
	"nexia/services/scheduling"

	genai "github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const fixtureCatalog = "../scheduling/testdata/services.yaml"

type fakeCalendar struct {
	busy    bool
	created []calendar.EventInput
}

func (f *fakeCalendar) FreeSlots(_ context.Context, candidates []calendar.Interval) []bool {
	out := make([]bool, len(candidates))
	for i := range out {
		out[i] = !f.busy
	}
	return out
}

func (f *fakeCalendar) IsSlotFree(context.Context, time.Time, time.Time) bool {
	return !f.busy
}

func (f *fakeCalendar) CreateEvent(_ context.Context, in calendar.EventInput) (string, bool) {
	f.created = append(f.created, in)
	return fmt.Sprintf("evt-%d", len(f.created)), true
}

// scriptedModel answers from a list of canned replies; the last one repeats.
type scriptedModel struct {
	replies []*genai.Content
	err     error

	systems   []string
	histories [][]*genai.Content
}

func (m *scriptedModel) GenerateContent(_ context.Context, system string, history []*genai.Content) (*genai.Content, error) {
	m.systems = append(m.systems, system)
	m.histories = append(m.histories, slices.Clone(history))
	if m.err != nil {
		return nil, m.err
	}
	i := min(len(m.histories)-1, len(m.replies)-1)
	reply := *m.replies[i]
	return &reply, nil
}

func (m *scriptedModel) calls() int { return len(m.histories) }

func textReply(s string) *genai.Content {
	return &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(s)}}
}

func callReply(name string, args map[string]any) *genai.Content {
	return &genai.Content{Role: "model", Parts: []genai.Part{genai.FunctionCall{Name: name, Args: args}}}
}

// testNow is Monday 2026-10-19 08:00 in São Paulo.
func testNow(t *testing.T) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	return time.Date(2026, 10, 19, 8, 0, 0, 0, loc)
}

func testToolbox(t *testing.T, cal scheduling.Calendar) *Toolbox {
	t.Helper()
	now := testNow(t)
	resolver := scheduling.NewResolver(now.Location(), "pt", func() time.Time { return now })
	catalog, err := scheduling.LoadCatalog(fixtureCatalog, cal, resolver, zap.NewNop())
	require.NoError(t, err)
	return NewToolbox(catalog, zap.NewNop())
}

func testAgent(t *testing.T, model ChatModel, cal scheduling.Calendar, store SessionStore) *Agent {
	t.Helper()
	now := testNow(t)
	return NewAgent(model, testToolbox(t, cal), store, func() time.Time { return now }, 3, zap.NewNop())
}
