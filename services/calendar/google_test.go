package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

func newTestBackend(t *testing.T, handler http.HandlerFunc) *GoogleBackend {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	backend, err := NewGoogleBackend(context.Background(), "clinic@example.com", loc, time.Second, zap.NewNop(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	return backend
}

func TestGoogleBackend_ListEvents(t *testing.T) {
	var query map[string]string
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/calendars/clinic@example.com/events", r.URL.Path)
		query = map[string]string{
			"timeMin":      r.URL.Query().Get("timeMin"),
			"timeMax":      r.URL.Query().Get("timeMax"),
			"singleEvents": r.URL.Query().Get("singleEvents"),
			"orderBy":      r.URL.Query().Get("orderBy"),
		}
		_ = json.NewEncoder(w).Encode(gcal.Events{Items: []*gcal.Event{
			{
				Id:     "a",
				Status: "confirmed",
				Start:  &gcal.EventDateTime{DateTime: "2026-10-21T10:00:00-03:00"},
				End:    &gcal.EventDateTime{DateTime: "2026-10-21T11:00:00-03:00"},
			},
			{
				Id:     "b",
				Status: "cancelled",
				Start:  &gcal.EventDateTime{DateTime: "2026-10-21T12:00:00-03:00"},
				End:    &gcal.EventDateTime{DateTime: "2026-10-21T13:00:00-03:00"},
			},
			{
				Id:     "c",
				Status: "confirmed",
				Start:  &gcal.EventDateTime{Date: "2026-10-22"},
				End:    &gcal.EventDateTime{Date: "2026-10-23"},
			},
			{
				Id:           "d",
				Status:       "confirmed",
				Transparency: "transparent",
				Start:        &gcal.EventDateTime{DateTime: "2026-10-23T09:00:00-03:00"},
				End:          &gcal.EventDateTime{DateTime: "2026-10-23T10:00:00-03:00"},
			},
		}})
	})

	start := time.Date(2026, 10, 21, 0, 0, 0, 0, backend.location)
	end := start.AddDate(0, 0, 3)
	busy, err := backend.ListEvents(context.Background(), start, end)
	require.NoError(t, err)

	assert.Equal(t, "true", query["singleEvents"])
	assert.Equal(t, "startTime", query["orderBy"])
	assert.Equal(t, start.Format(time.RFC3339), query["timeMin"])
	assert.Equal(t, end.Format(time.RFC3339), query["timeMax"])

	require.Len(t, busy, 2, "cancelled and transparent events do not block time")
	assert.True(t, busy[0].Start.Equal(time.Date(2026, 10, 21, 10, 0, 0, 0, backend.location)))
	assert.True(t, busy[1].Start.Equal(time.Date(2026, 10, 22, 0, 0, 0, 0, backend.location)))
	assert.True(t, busy[1].End.Equal(time.Date(2026, 10, 23, 0, 0, 0, 0, backend.location)))
}

func TestGoogleBackend_ListEventsError(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"forbidden"}}`, http.StatusForbidden)
	})

	now := time.Now()
	_, err := backend.ListEvents(context.Background(), now, now.Add(time.Hour))
	assert.ErrorContains(t, err, "unable to retrieve events")
}

func TestGoogleBackend_InsertEvent(t *testing.T) {
	var got gcal.Event
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/calendars/clinic@example.com/events", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		got.Id = "evt-42"
		_ = json.NewEncoder(w).Encode(got)
	})

	start := time.Date(2026, 10, 21, 10, 0, 0, 0, backend.location)
	id, err := backend.InsertEvent(context.Background(), EventInput{
		Summary:     "Juan Perez - Fisioterapia",
		Description: "Profissional: Ana Souza",
		Start:       start,
		End:         start.Add(time.Hour),
	})
	require.NoError(t, err)

	assert.Equal(t, "evt-42", id)
	assert.Equal(t, "Juan Perez - Fisioterapia", got.Summary)
	assert.Equal(t, "Profissional: Ana Souza", got.Description)
	assert.Equal(t, "2026-10-21T10:00:00-03:00", got.Start.DateTime)
	assert.Equal(t, "2026-10-21T11:00:00-03:00", got.End.DateTime)
	assert.Equal(t, "America/Sao_Paulo", got.Start.TimeZone)
}
