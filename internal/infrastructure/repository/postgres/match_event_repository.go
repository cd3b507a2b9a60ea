package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/tournament-api/internal/domain/matchevent"
	qb "github.com/riskibarqy/tournament-api/internal/platform/querybuilder"
)

type MatchEventRepository struct {
	db *sqlx.DB
}

func NewMatchEventRepository(db *sqlx.DB) *MatchEventRepository {
	return &MatchEventRepository{db: db}
}

func (r *MatchEventRepository) Create(ctx context.Context, item matchevent.Event) (matchevent.Event, error) {
	row := newMatchEventTableModel(item)
	query, args, err := qb.InsertInto("match_events").
		Columns(matchEventInsertColumns...).
		Values(row.values()...).
		Suffix("RETURNING *").
		ToSQL()
	if err != nil {
		return matchevent.Event{}, fmt.Errorf("build insert match event query: %w", err)
	}

	var created matchEventTableModel
	if err := conn(ctx, r.db).GetContext(ctx, &created, query, args...); err != nil {
		return matchevent.Event{}, fmt.Errorf("insert match event: %w", err)
	}
	return created.toDomain(), nil
}

func (r *MatchEventRepository) GetByID(ctx context.Context, id int64) (matchevent.Event, bool, error) {
	query, args, err := qb.Select("*").From("match_events").
		Where(qb.Eq("id", id)).
		Limit(1).
		ToSQL()
	if err != nil {
		return matchevent.Event{}, false, fmt.Errorf("build select match event by id query: %w", err)
	}

	var row matchEventTableModel
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return matchevent.Event{}, false, nil
		}
		return matchevent.Event{}, false, fmt.Errorf("get match event by id: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *MatchEventRepository) List(ctx context.Context, filter matchevent.Filter) ([]matchevent.Event, error) {
	query, args, err := matchEventListQuery(filter)
	if err != nil {
		return nil, fmt.Errorf("build select match events query: %w", err)
	}

	var rows []matchEventTableModel
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select match events: %w", err)
	}
	out := make([]matchevent.Event, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func matchEventListQuery(filter matchevent.Filter) (string, []any, error) {
	var where []qb.Condition
	if filter.MatchID > 0 {
		where = append(where, qb.Eq("match_id", filter.MatchID))
	}
	if filter.PlayerID > 0 {
		where = append(where, qb.Eq("player_id", filter.PlayerID))
	}
	if filter.TeamID > 0 {
		where = append(where, qb.Eq("team_id", filter.TeamID))
	}
	if filter.TournamentID > 0 {
		where = append(where, qb.Expr("match_id IN (SELECT id FROM matches WHERE tournament_id = ?)", filter.TournamentID))
	}
	if len(filter.Types) > 0 {
		types := make([]any, 0, len(filter.Types))
		for _, t := range filter.Types {
			types = append(types, string(t))
		}
		where = append(where, qb.In("event_type", types))
	}
	if filter.MinMinute != nil {
		where = append(where, qb.Gte("minute", *filter.MinMinute))
	}
	if filter.MaxMinute != nil {
		where = append(where, qb.Lte("minute", *filter.MaxMinute))
	}

	return qb.Select("*").From("match_events").
		Where(where...).
		OrderBy("minute", "COALESCE(extra_time, 0)", "id").
		ToSQL()
}

func (r *MatchEventRepository) Update(ctx context.Context, item matchevent.Event) (matchevent.Event, error) {
	row := newMatchEventTableModel(item)
	query, args, err := qb.Update("match_events").
		Set("team_id", row.TeamID).
		Set("player_id", row.PlayerID).
		Set("event_type", row.EventType).
		Set("minute", row.Minute).
		Set("extra_time", row.ExtraTime).
		Set("assist_player_id", row.AssistPlayerID).
		Set("description", row.Description).
		Set("updated_at", row.UpdatedAt).
		Where(qb.Eq("id", item.ID)).
		Suffix("RETURNING *").
		ToSQL()
	if err != nil {
		return matchevent.Event{}, fmt.Errorf("build update match event query: %w", err)
	}

	var updated matchEventTableModel
	if err := conn(ctx, r.db).GetContext(ctx, &updated, query, args...); err != nil {
		if isNotFound(err) {
			return matchevent.Event{}, fmt.Errorf("match event=%d not found", item.ID)
		}
		return matchevent.Event{}, fmt.Errorf("update match event: %w", err)
	}
	return updated.toDomain(), nil
}

func (r *MatchEventRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := qb.DeleteFrom("match_events").Where(qb.Eq("id", id)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete match event query: %w", err)
	}
	res, err := conn(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete match event: %w", err)
	}
	return expectAffected(res, "match event", id)
}

func (r *MatchEventRepository) DeleteByMatch(ctx context.Context, matchID int64) (int, error) {
	query, args, err := qb.DeleteFrom("match_events").Where(qb.Eq("match_id", matchID)).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build delete match events by match query: %w", err)
	}
	res, err := conn(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete match events by match: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected match events match=%d: %w", matchID, err)
	}
	return int(n), nil
}
