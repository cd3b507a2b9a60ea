package livefeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/tournament-api/internal/domain/matchevent"
	"github.com/riskibarqy/tournament-api/internal/domain/realtime"
	"github.com/riskibarqy/tournament-api/internal/platform/logging"
)

func newHubServer(t *testing.T, origins []string) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(origins, logging.NewNop())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		matchID, _ := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/"), 10, 64)
		_ = hub.ServeMatch(w, r, matchID)
	}))
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, matchID int64) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/" + strconv.FormatInt(matchID, 10)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var frame map[string]any
	require.NoError(t, sonic.Unmarshal(raw, &frame))
	return frame
}

func TestHubBroadcastsToMatchRoomOnly(t *testing.T) {
	hub, srv := newHubServer(t, []string{"*"})
	match1 := dial(t, srv, 1)
	match2 := dial(t, srv, 2)
	require.Eventually(t, func() bool { return hub.Connections() == 2 }, time.Second, 5*time.Millisecond)

	err := hub.SyncMatchEvent(context.Background(), matchevent.Enriched{
		Event:      matchevent.Event{ID: 5, MatchID: 1, TeamID: 10, PlayerID: 101, Type: matchevent.TypeGoal, Minute: 23},
		PlayerName: "Andi Setiawan",
	})
	require.NoError(t, err)
	require.NoError(t, hub.SendMatchNotification(context.Background(), 2, realtime.Notification{Type: realtime.NotificationStatusChanged, Message: "Match started"}))

	first := readFrame(t, match1)
	require.Equal(t, FrameEventSynced, first["type"])
	payload := first["payload"].(map[string]any)
	require.Equal(t, "Andi Setiawan", payload["playerName"])
	require.Equal(t, "GOAL", payload["eventType"])

	second := readFrame(t, match2)
	require.Equal(t, FrameNotification, second["type"])
	require.EqualValues(t, 2, second["matchId"])
}

func TestHubRemoveAllMatchDataClosesRoom(t *testing.T) {
	hub, srv := newHubServer(t, []string{"*"})
	conn := dial(t, srv, 3)
	require.Eventually(t, func() bool { return hub.RoomSize(3) == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, hub.RemoveAllMatchData(context.Background(), 3))
	require.Equal(t, FrameMatchRemoved, readFrame(t, conn)["type"])
	require.Equal(t, 0, hub.RoomSize(3))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	require.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "expected normal close, got %v", err)
}

func TestHubRejectsUnknownOrigin(t *testing.T) {
	_, srv := newHubServer(t, []string{"https://app.example.com"})
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/1"

	header := http.Header{"Origin": []string{"https://evil.example.com"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}
