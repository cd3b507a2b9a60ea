package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/tournament-api/internal/domain/matchevent"
)

var matchEventInsertColumns = []string{
	"match_id",
	"team_id",
	"player_id",
	"event_type",
	"minute",
	"extra_time",
	"assist_player_id",
	"description",
	"created_at",
	"updated_at",
}

type matchEventTableModel struct {
	ID             int64         `db:"id"`
	MatchID        int64         `db:"match_id"`
	TeamID         int64         `db:"team_id"`
	PlayerID       int64         `db:"player_id"`
	EventType      string        `db:"event_type"`
	Minute         int           `db:"minute"`
	ExtraTime      sql.NullInt32 `db:"extra_time"`
	AssistPlayerID sql.NullInt64 `db:"assist_player_id"`
	Description    string        `db:"description"`
	CreatedAt      time.Time     `db:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at"`
}

func newMatchEventTableModel(e matchevent.Event) matchEventTableModel {
	return matchEventTableModel{
		ID:             e.ID,
		MatchID:        e.MatchID,
		TeamID:         e.TeamID,
		PlayerID:       e.PlayerID,
		EventType:      string(e.Type),
		Minute:         e.Minute,
		ExtraTime:      nullInt(e.ExtraTime),
		AssistPlayerID: nullInt64(e.AssistPlayerID),
		Description:    e.Description,
		CreatedAt:      e.CreatedAt.UTC(),
		UpdatedAt:      e.UpdatedAt.UTC(),
	}
}

func (m matchEventTableModel) values() []any {
	return []any{
		m.MatchID,
		m.TeamID,
		m.PlayerID,
		m.EventType,
		m.Minute,
		m.ExtraTime,
		m.AssistPlayerID,
		m.Description,
		m.CreatedAt,
		m.UpdatedAt,
	}
}

func (m matchEventTableModel) toDomain() matchevent.Event {
	return matchevent.Event{
		ID:             m.ID,
		MatchID:        m.MatchID,
		TeamID:         m.TeamID,
		PlayerID:       m.PlayerID,
		Type:           matchevent.Type(m.EventType),
		Minute:         m.Minute,
		ExtraTime:      nullIntPtr(m.ExtraTime),
		AssistPlayerID: nullInt64Ptr(m.AssistPlayerID),
		Description:    m.Description,
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
}
