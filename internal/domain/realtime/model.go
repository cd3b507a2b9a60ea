package realtime

import (
	"context"
	"time"

	"github.com/riskibarqy/tournament-api/internal/domain/matchevent"
)

const (
	NotificationStatusChanged = "match_status_changed"
	NotificationResultUpdated = "match_result_updated"
	NotificationScoreUpdated  = "match_score_updated"
)

// Notification is a free-form message pushed to match subscribers.
type Notification struct {
	Type      string
	Message   string
	Data      map[string]any
	Timestamp time.Time
}

// Notifier mirrors match activity to secondary real-time stores.
//
// Implementations are fire and forget: calls must not block on remote I/O
// and must log their own failures instead of returning them.
type Notifier interface {
	MatchEventSynced(ctx context.Context, event matchevent.Enriched)
	MatchEventRemoved(ctx context.Context, matchID, eventID int64)
	MatchNotification(ctx context.Context, matchID int64, notification Notification)
	MatchDataRemoved(ctx context.Context, matchID int64)
}

// NopNotifier discards everything.
type NopNotifier struct{}

func (NopNotifier) MatchEventSynced(context.Context, matchevent.Enriched)  {}
func (NopNotifier) MatchEventRemoved(context.Context, int64, int64)        {}
func (NopNotifier) MatchNotification(context.Context, int64, Notification) {}
func (NopNotifier) MatchDataRemoved(context.Context, int64)                {}
