package telegram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type echoAgent struct {
	mu    sync.Mutex
	turns []string
	err   error
}

func (a *echoAgent) Reply(_ context.Context, userID, text string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.turns = append(a.turns, userID+":"+text)
	if a.err != nil {
		return "", a.err
	}
	return "eco: " + text, nil
}

type sent struct {
	ChatID int64
	Text   string
}

// fakeAPI serves one batch of updates, then empty polls. Requests arrive
// form-encoded, as the Bot API client sends them.
type fakeAPI struct {
	mu      sync.Mutex
	batch   string
	offsets []int64
	sent    chan sent
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	switch r.URL.Path {
	case "/botTOKEN/getMe":
		w.Write([]byte(`{"ok": true, "result": {"id": 1, "is_bot": true, "first_name": "Nexia", "username": "nexia_bot"}}`))
	case "/botTOKEN/getUpdates":
		offset, _ := strconv.ParseInt(r.PostFormValue("offset"), 10, 64)

		f.mu.Lock()
		f.offsets = append(f.offsets, offset)
		result := "[]"
		if len(f.offsets) == 1 {
			result = f.batch
		}
		f.mu.Unlock()

		if result == "[]" {
			time.Sleep(10 * time.Millisecond)
		}
		w.Write([]byte(`{"ok": true, "result": ` + result + `}`))
	case "/botTOKEN/sendMessage":
		chatID, _ := strconv.ParseInt(r.PostFormValue("chat_id"), 10, 64)
		f.sent <- sent{ChatID: chatID, Text: r.PostFormValue("text")}
		w.Write([]byte(`{"ok": true, "result": {"message_id": 99, "date": 0, "chat": {"id": ` + strconv.FormatInt(chatID, 10) + `}}}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"ok": false, "error_code": 404, "description": "Not Found"}`))
	}
}

const batch = `[
	{"update_id": 10, "message": {"message_id": 1, "from": {"id": 555}, "chat": {"id": 900}, "text": "/start"}},
	{"update_id": 11, "message": {"message_id": 2, "from": {"id": 555}, "chat": {"id": 900}, "text": "quero agendar"}},
	{"update_id": 12, "message": {"message_id": 3, "from": {"id": 555}, "chat": {"id": 900}}}
]`

func runBot(t *testing.T, agent Responder, api *fakeAPI, want int) []sent {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	bot := NewBot("TOKEN", agent, time.Second, zap.NewNop(), WithBaseURL(srv.URL+"/"))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- bot.Run(ctx) }()

	var got []sent
	for len(got) < want {
		select {
		case msg := <-api.sent:
			got = append(got, msg)
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for messages, got %d of %d", len(got), want)
		}
	}
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("bot did not stop")
	}
	return got
}

func TestBot_Run(t *testing.T) {
	t.Run("Greeting And Agent Turn", func(t *testing.T) {
		agent := &echoAgent{}
		api := &fakeAPI{batch: batch, sent: make(chan sent, 8)}

		got := runBot(t, agent, api, 2)
		assert.Equal(t, []sent{
			{ChatID: 900, Text: greeting},
			{ChatID: 900, Text: "eco: quero agendar"},
		}, got)
		assert.Equal(t, []string{"555:quero agendar"}, agent.turns, "/start never reaches the agent")

		api.mu.Lock()
		defer api.mu.Unlock()
		require.GreaterOrEqual(t, len(api.offsets), 2)
		assert.Equal(t, int64(0), api.offsets[0])
		assert.Equal(t, int64(13), api.offsets[1], "offset moves past the last update")
	})

	t.Run("Agent Failure", func(t *testing.T) {
		agent := &echoAgent{err: errors.New("boom")}
		api := &fakeAPI{batch: batch, sent: make(chan sent, 8)}

		got := runBot(t, agent, api, 2)
		assert.Equal(t, fallbackReply, got[1].Text)
	})
}

func TestBot_RunRejectsBadToken(t *testing.T) {
	srv := httptest.NewServer(&fakeAPI{sent: make(chan sent, 1)})
	t.Cleanup(srv.Close)

	bot := NewBot("WRONG", &echoAgent{}, time.Second, zap.NewNop(), WithBaseURL(srv.URL))
	err := bot.Run(context.Background())
	assert.ErrorContains(t, err, "connect to telegram")
}

func TestIsStartCommand(t *testing.T) {
	assert.True(t, isStartCommand("/start"))
	assert.True(t, isStartCommand("/start@NexiaBot"))
	assert.True(t, isStartCommand(" /start payload"))
	assert.False(t, isStartCommand("start"))
	assert.False(t, isStartCommand("/starting"))
}
