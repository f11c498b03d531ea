package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/riskibarqy/fantasy-live/internal/domain/ticker"
	"github.com/riskibarqy/fantasy-live/internal/platform/id"
	"github.com/riskibarqy/fantasy-live/internal/platform/logging"
	"github.com/stretchr/testify/require"
)

func dialStream(t *testing.T, hub *StreamHub) *websocket.Conn {
	t.Helper()

	live := &fakeLive{}
	router := NewRouter(NewHandler(live, logging.NewNop()), hub, logging.NewNop(), RouterConfig{})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/v1/live/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readStreamMessage(t *testing.T, conn *websocket.Conn) streamMessage {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg streamMessage
	require.NoError(t, sonic.Unmarshal(raw, &msg))
	return msg
}

func waitForSubscribers(t *testing.T, hub *StreamHub, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("unexpected subscriber count: got=%d want=%d", hub.ClientCount(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStreamHub_HelloCarriesBacklog(t *testing.T) {
	backlog := []ticker.ChangeEvent{{ID: "evt-1", Kind: ticker.ChangeBonus, Gameweek: 4, FixtureID: 40}}
	hub := NewStreamHub(
		id.Func(func() string { return "client-1" }),
		func() (int, []ticker.ChangeEvent) { return 4, backlog },
		nil,
		logging.NewNop(),
	)

	conn := dialStream(t, hub)
	hello := readStreamMessage(t, conn)

	require.Equal(t, streamMessageHello, hello.Type)
	require.Equal(t, "client-1", hello.ClientID)
	require.Equal(t, 4, hello.Gameweek)
	require.Len(t, hello.Events, 1)
	require.Equal(t, "evt-1", hello.Events[0].ID)
}

func TestStreamHub_PublishesChanges(t *testing.T) {
	hub := NewStreamHub(nil, nil, nil, logging.NewNop())
	conn := dialStream(t, hub)

	hello := readStreamMessage(t, conn)
	require.Equal(t, streamMessageHello, hello.Type)
	require.NotEmpty(t, hello.ClientID)
	require.Empty(t, hello.Events)
	waitForSubscribers(t, hub, 1)

	hub.PublishChanges(context.Background(), 6, []ticker.ChangeEvent{
		{ID: "a", Kind: ticker.ChangeCleanSheet, Gameweek: 6, FixtureID: 60, TeamID: 3},
		{ID: "b", Kind: ticker.ChangeDefensiveGain, Gameweek: 6, FixtureID: 60, PlayerID: 301},
	})

	msg := readStreamMessage(t, conn)
	require.Equal(t, streamMessageChanges, msg.Type)
	require.Equal(t, 6, msg.Gameweek)
	require.Len(t, msg.Events, 2)
	require.Equal(t, ticker.ChangeCleanSheet, msg.Events[0].Kind)
	require.Equal(t, 301, msg.Events[1].PlayerID)
}

func TestStreamHub_CloseDisconnectsAndRejects(t *testing.T) {
	hub := NewStreamHub(nil, nil, nil, logging.NewNop())
	conn := dialStream(t, hub)
	_ = readStreamMessage(t, conn)
	waitForSubscribers(t, hub, 1)

	hub.Close()
	waitForSubscribers(t, hub, 0)

	rec := httptest.NewRecorder()
	hub.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/live/stream", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestOriginChecker(t *testing.T) {
	t.Parallel()

	check := originChecker([]string{"https://live.example.com"})
	tests := []struct {
		origin string
		want   bool
	}{
		{origin: "", want: true},
		{origin: "https://live.example.com", want: true},
		{origin: "https://evil.example.com", want: false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/v1/live/stream", nil)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		if got := check(req); got != tt.want {
			t.Fatalf("unexpected origin decision for %q: got=%v want=%v", tt.origin, got, tt.want)
		}
	}
}
