package firebase

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"

	"github.com/riskibarqy/tournament-api/internal/domain/matchevent"
	"github.com/riskibarqy/tournament-api/internal/domain/realtime"
	"github.com/riskibarqy/tournament-api/internal/platform/id"
	"github.com/riskibarqy/tournament-api/internal/platform/logging"
	"github.com/riskibarqy/tournament-api/internal/platform/resilience"
	"github.com/riskibarqy/tournament-api/internal/usecase"
)

const (
	eventsRoot        = "match-events"
	notificationsRoot = "match-notifications"
	defaultTimeout    = 5 * time.Second
	maxErrorBody      = 512
)

var errFirebaseTransient = crerr.New("firebase transient failure")

type ClientConfig struct {
	DatabaseURL    string
	AuthToken      string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	// KeyGenerator names notification children. Defaults to UUIDv7 so keys
	// sort by creation time.
	KeyGenerator id.Generator
}

// Client talks to the Firebase Realtime Database REST API. Events live at
// match-events/{matchId}/{eventId}, notifications at
// match-notifications/{matchId}/{key}.
type Client struct {
	http      *fasthttp.Client
	baseURL   string
	authToken string
	timeout   time.Duration
	logger    *logging.Logger
	breaker   *resilience.CircuitBreaker
	now       func() time.Time
	newKey    func() (string, error)
}

func NewClient(cfg ClientConfig) (*Client, error) {
	baseURL, err := validateDatabaseURL(cfg.DatabaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid FIREBASE_DATABASE_URL")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	keys := cfg.KeyGenerator
	if keys == nil {
		keys = id.NewUUIDGenerator()
	}

	return &Client{
		http: &fasthttp.Client{
			Name:                "tournament-api",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: 30 * time.Second,
		},
		baseURL:   baseURL,
		authToken: strings.TrimSpace(cfg.AuthToken),
		timeout:   timeout,
		logger:    logger,
		breaker:   resilience.NewCircuitBreaker(sinkName, cfg.CircuitBreaker),
		now:       time.Now,
		newKey:    keys.NewID,
	}, nil
}

const sinkName = "firebase"

func (c *Client) Name() string { return sinkName }

// EventDocument is the enriched event shape read by live clients.
type EventDocument struct {
	ID               int64  `json:"id"`
	MatchID          int64  `json:"matchId"`
	PlayerID         int64  `json:"playerId"`
	TeamID           int64  `json:"teamId"`
	EventType        string `json:"eventType"`
	Minute           int    `json:"minute"`
	ExtraTime        *int   `json:"extraTime,omitempty"`
	Description      string `json:"description,omitempty"`
	AssistPlayerID   *int64 `json:"assistPlayerId,omitempty"`
	CreatedAt        string `json:"createdAt"`
	PlayerName       string `json:"playerName,omitempty"`
	TeamName         string `json:"teamName,omitempty"`
	AssistPlayerName string `json:"assistPlayerName,omitempty"`
}

type notificationDocument struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data"`
	Timestamp string         `json:"timestamp"`
}

func newEventDocument(e matchevent.Enriched) EventDocument {
	return EventDocument{
		ID:               e.ID,
		MatchID:          e.MatchID,
		PlayerID:         e.PlayerID,
		TeamID:           e.TeamID,
		EventType:        string(e.Type),
		Minute:           e.Minute,
		ExtraTime:        e.ExtraTime,
		Description:      e.Description,
		AssistPlayerID:   e.AssistPlayerID,
		CreatedAt:        e.CreatedAt.UTC().Format(time.RFC3339Nano),
		PlayerName:       e.PlayerName,
		TeamName:         e.TeamName,
		AssistPlayerName: e.AssistPlayerName,
	}
}

func (c *Client) SyncMatchEvent(ctx context.Context, event matchevent.Enriched) error {
	body, err := sonic.Marshal(newEventDocument(event))
	if err != nil {
		return crerr.Wrap(err, "marshal event document")
	}
	if _, err := c.do(ctx, fasthttp.MethodPut, eventPath(event.MatchID, event.ID), body); err != nil {
		return crerr.Wrapf(err, "sync event=%d match=%d", event.ID, event.MatchID)
	}
	c.logger.InfoContext(ctx, "event synced to firebase", "event_id", event.ID, "match_id", event.MatchID, "event_type", string(event.Type))
	return nil
}

func (c *Client) RemoveMatchEvent(ctx context.Context, matchID, eventID int64) error {
	if _, err := c.do(ctx, fasthttp.MethodDelete, eventPath(matchID, eventID), nil); err != nil {
		return crerr.Wrapf(err, "remove event=%d match=%d", eventID, matchID)
	}
	c.logger.InfoContext(ctx, "event removed from firebase", "event_id", eventID, "match_id", matchID)
	return nil
}

// GetMatchEvents returns the mirrored events ordered by minute then extra time.
func (c *Client) GetMatchEvents(ctx context.Context, matchID int64) ([]EventDocument, error) {
	raw, err := c.do(ctx, fasthttp.MethodGet, matchPath(eventsRoot, matchID), nil)
	if err != nil {
		return nil, crerr.Wrapf(err, "get events match=%d", matchID)
	}

	var byKey map[string]EventDocument
	if err := sonic.Unmarshal(raw, &byKey); err != nil {
		return nil, crerr.Wrap(err, "decode event documents")
	}
	out := make([]EventDocument, 0, len(byKey))
	for _, doc := range byKey {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Minute != out[j].Minute {
			return out[i].Minute < out[j].Minute
		}
		ei, ej := derefInt(out[i].ExtraTime), derefInt(out[j].ExtraTime)
		if ei != ej {
			return ei < ej
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (c *Client) ClearMatchEvents(ctx context.Context, matchID int64) error {
	if _, err := c.do(ctx, fasthttp.MethodDelete, matchPath(eventsRoot, matchID), nil); err != nil {
		return crerr.Wrapf(err, "clear events match=%d", matchID)
	}
	c.logger.InfoContext(ctx, "match events cleared from firebase", "match_id", matchID)
	return nil
}

// SendMatchNotification stores the notification under a time ordered key.
func (c *Client) SendMatchNotification(ctx context.Context, matchID int64, notification realtime.Notification) error {
	key, err := c.newKey()
	if err != nil {
		return crerr.Wrap(err, "generate notification key")
	}
	ts := notification.Timestamp
	if ts.IsZero() {
		ts = c.now()
	}
	data := notification.Data
	if data == nil {
		data = map[string]any{}
	}

	body, err := sonic.Marshal(notificationDocument{
		ID:        key,
		Type:      notification.Type,
		Message:   notification.Message,
		Data:      data,
		Timestamp: ts.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return crerr.Wrap(err, "marshal notification document")
	}
	if _, err := c.do(ctx, fasthttp.MethodPut, matchPath(notificationsRoot, matchID)+"/"+key, body); err != nil {
		return crerr.Wrapf(err, "send notification match=%d type=%s", matchID, notification.Type)
	}
	c.logger.InfoContext(ctx, "match notification sent via firebase", "match_id", matchID, "type", notification.Type)
	return nil
}

func (c *Client) ClearMatchNotifications(ctx context.Context, matchID int64) error {
	if _, err := c.do(ctx, fasthttp.MethodDelete, matchPath(notificationsRoot, matchID), nil); err != nil {
		return crerr.Wrapf(err, "clear notifications match=%d", matchID)
	}
	c.logger.InfoContext(ctx, "match notifications cleared from firebase", "match_id", matchID)
	return nil
}

// RemoveAllMatchData clears events, then notifications.
func (c *Client) RemoveAllMatchData(ctx context.Context, matchID int64) error {
	if err := c.ClearMatchEvents(ctx, matchID); err != nil {
		return err
	}
	return c.ClearMatchNotifications(ctx, matchID)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !c.breaker.Enabled() {
		return c.execute(ctx, method, path, body)
	}

	var raw []byte
	err := c.breaker.Execute(func() error {
		var err error
		raw, err = c.execute(ctx, method, path, body)
		return err
	}, isTransient)
	if crerr.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "firebase circuit breaker rejected request", "state", c.breaker.State())
		return nil, fmt.Errorf("%w: realtime store is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}
	return raw, err
}

func isTransient(err error) bool {
	return crerr.Is(err, errFirebaseTransient)
}

func (c *Client) execute(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.SetRequestURI(c.resourceURL(path))
	req.Header.SetMethod(method)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBodyRaw(body)
	}

	deadline := c.now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return nil, crerr.Mark(crerr.Wrapf(err, "%s %s", method, path), errFirebaseTransient)
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		callErr := crerr.Newf("%s %s status=%d body=%s", method, path, status, abbreviate(resp.Body()))
		if isRetryableStatus(status) {
			return nil, crerr.Mark(callErr, errFirebaseTransient)
		}
		return nil, callErr
	}
	return append([]byte(nil), resp.Body()...), nil
}

func (c *Client) resourceURL(path string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(c.baseURL)
	_ = buf.WriteByte('/')
	_, _ = buf.WriteString(path)
	_, _ = buf.WriteString(".json")
	if c.authToken != "" {
		_, _ = buf.WriteString("?auth=")
		_, _ = buf.WriteString(url.QueryEscape(c.authToken))
	}
	return buf.String()
}

func matchPath(root string, matchID int64) string {
	return root + "/" + strconv.FormatInt(matchID, 10)
}

func eventPath(matchID, eventID int64) string {
	return matchPath(eventsRoot, matchID) + "/" + strconv.FormatInt(eventID, 10)
}

func validateDatabaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}
	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}
	return strings.TrimRight(candidate, "/"), nil
}

func isRetryableStatus(status int) bool {
	return status == fasthttp.StatusTooManyRequests || status >= 500
}

func abbreviate(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBody {
		return text[:maxErrorBody] + "..."
	}
	return text
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
