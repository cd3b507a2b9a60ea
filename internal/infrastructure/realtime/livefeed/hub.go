package livefeed

import (
	"context"
	"net/http"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"github.com/riskibarqy/tournament-api/internal/domain/matchevent"
	"github.com/riskibarqy/tournament-api/internal/domain/realtime"
	"github.com/riskibarqy/tournament-api/internal/platform/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 32
)

const (
	FrameEventSynced  = "event_synced"
	FrameEventRemoved = "event_removed"
	FrameNotification = "notification"
	FrameMatchRemoved = "match_removed"
)

// Frame is one server to client message.
type Frame struct {
	Type      string    `json:"type"`
	MatchID   int64     `json:"matchId"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type eventPayload struct {
	ID               int64  `json:"id"`
	TeamID           int64  `json:"teamId"`
	PlayerID         int64  `json:"playerId"`
	EventType        string `json:"eventType"`
	Minute           int    `json:"minute"`
	ExtraTime        *int   `json:"extraTime,omitempty"`
	AssistPlayerID   *int64 `json:"assistPlayerId,omitempty"`
	Description      string `json:"description,omitempty"`
	PlayerName       string `json:"playerName,omitempty"`
	TeamName         string `json:"teamName,omitempty"`
	AssistPlayerName string `json:"assistPlayerName,omitempty"`
}

type notificationPayload struct {
	Type    string         `json:"type"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

type client struct {
	hub     *Hub
	conn    *websocket.Conn
	matchID int64
	send    chan []byte
}

// Hub keeps one room of websocket subscribers per match. It implements the
// realtime dispatcher sink so every mirrored change is also pushed live.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[int64]map[*client]struct{}
	upgrader websocket.Upgrader
	logger   *logging.Logger
	now      func() time.Time
}

func NewHub(allowedOrigins []string, logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Default()
	}
	h := &Hub{
		rooms:  make(map[int64]map[*client]struct{}),
		logger: logger,
		now:    time.Now,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		set[origin] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// ServeMatch upgrades the request and subscribes it to matchID.
func (h *Hub) ServeMatch(w http.ResponseWriter, r *http.Request, matchID int64) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{hub: h, conn: conn, matchID: matchID, send: make(chan []byte, sendBuffer)}
	h.register(c)
	h.logger.InfoContext(r.Context(), "live feed subscriber joined", "match_id", matchID, "room_size", h.RoomSize(matchID))

	go c.writePump()
	go c.readPump()
	return nil
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[c.matchID]
	if !ok {
		room = make(map[*client]struct{})
		h.rooms[c.matchID] = room
	}
	room[c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

// removeLocked closes c.send exactly once; callers hold h.mu.
func (h *Hub) removeLocked(c *client) {
	room, ok := h.rooms[c.matchID]
	if !ok {
		return
	}
	if _, ok := room[c]; !ok {
		return
	}
	delete(room, c)
	close(c.send)
	if len(room) == 0 {
		delete(h.rooms, c.matchID)
	}
}

func (h *Hub) RoomSize(matchID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[matchID])
}

// Connections counts subscribers across all rooms.
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, room := range h.rooms {
		total += len(room)
	}
	return total
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, room := range h.rooms {
		for c := range room {
			h.removeLocked(c)
		}
	}
}

func (h *Hub) Name() string { return "livefeed" }

func (h *Hub) SyncMatchEvent(ctx context.Context, e matchevent.Enriched) error {
	return h.broadcast(ctx, Frame{
		Type:    FrameEventSynced,
		MatchID: e.MatchID,
		Payload: eventPayload{
			ID:               e.ID,
			TeamID:           e.TeamID,
			PlayerID:         e.PlayerID,
			EventType:        string(e.Type),
			Minute:           e.Minute,
			ExtraTime:        e.ExtraTime,
			AssistPlayerID:   e.AssistPlayerID,
			Description:      e.Description,
			PlayerName:       e.PlayerName,
			TeamName:         e.TeamName,
			AssistPlayerName: e.AssistPlayerName,
		},
	})
}

func (h *Hub) RemoveMatchEvent(ctx context.Context, matchID, eventID int64) error {
	return h.broadcast(ctx, Frame{
		Type:    FrameEventRemoved,
		MatchID: matchID,
		Payload: map[string]int64{"id": eventID},
	})
}

func (h *Hub) SendMatchNotification(ctx context.Context, matchID int64, n realtime.Notification) error {
	frame := Frame{
		Type:      FrameNotification,
		MatchID:   matchID,
		Payload:   notificationPayload{Type: n.Type, Message: n.Message, Data: n.Data},
		Timestamp: n.Timestamp,
	}
	return h.broadcast(ctx, frame)
}

// RemoveAllMatchData tells subscribers the match is gone and closes the room.
func (h *Hub) RemoveAllMatchData(ctx context.Context, matchID int64) error {
	if err := h.broadcast(ctx, Frame{Type: FrameMatchRemoved, MatchID: matchID}); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.rooms[matchID] {
		h.removeLocked(c)
	}
	return nil
}

func (h *Hub) broadcast(ctx context.Context, frame Frame) error {
	if frame.Timestamp.IsZero() {
		frame.Timestamp = h.now()
	}
	frame.Timestamp = frame.Timestamp.UTC()
	raw, err := sonic.Marshal(frame)
	if err != nil {
		return err
	}

	var slow []*client
	h.mu.RLock()
	for c := range h.rooms[frame.MatchID] {
		select {
		case c.send <- raw:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	if len(slow) > 0 {
		h.logger.WarnContext(ctx, "dropping slow live feed subscribers", "match_id", frame.MatchID, "count", len(slow))
		h.mu.Lock()
		for _, c := range slow {
			h.removeLocked(c)
		}
		h.mu.Unlock()
	}
	return nil
}

// readPump only services control frames; client messages are ignored.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("live feed read failed", "match_id", c.matchID, "error", err)
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
