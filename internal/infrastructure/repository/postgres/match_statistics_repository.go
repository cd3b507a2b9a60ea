package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/tournament-api/internal/domain/matchstats"
	qb "github.com/riskibarqy/tournament-api/internal/platform/querybuilder"
)

type MatchStatisticsRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewMatchStatisticsRepository(db *sqlx.DB) *MatchStatisticsRepository {
	return &MatchStatisticsRepository{db: db, now: time.Now}
}

func (r *MatchStatisticsRepository) Create(ctx context.Context, item matchstats.Statistics) (matchstats.Statistics, error) {
	query, args, err := qb.InsertInto("match_statistics").
		Columns(matchStatisticsInsertColumns...).
		Values(matchStatisticsValues(item)...).
		Suffix("RETURNING *").
		ToSQL()
	if err != nil {
		return matchstats.Statistics{}, fmt.Errorf("build insert match statistics query: %w", err)
	}

	var created matchStatisticsTableModel
	if err := conn(ctx, r.db).GetContext(ctx, &created, query, args...); err != nil {
		if isUniqueViolation(err) {
			return matchstats.Statistics{}, fmt.Errorf("statistics already exist for match=%d player=%d: %w", item.MatchID, item.PlayerID, err)
		}
		return matchstats.Statistics{}, fmt.Errorf("insert match statistics: %w", err)
	}
	return created.toDomain(), nil
}

func (r *MatchStatisticsRepository) CreateIfAbsent(ctx context.Context, item matchstats.Statistics) (bool, error) {
	query, args, err := qb.InsertInto("match_statistics").
		Columns(matchStatisticsInsertColumns...).
		Values(matchStatisticsValues(item)...).
		Suffix("ON CONFLICT (match_id, player_id) DO NOTHING").
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build insert match statistics query: %w", err)
	}
	res, err := conn(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert match statistics if absent: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected match statistics: %w", err)
	}
	return n > 0, nil
}

func (r *MatchStatisticsRepository) GetByID(ctx context.Context, id int64) (matchstats.Statistics, bool, error) {
	return r.getOne(ctx, qb.Eq("id", id))
}

func (r *MatchStatisticsRepository) GetByMatchAndPlayer(ctx context.Context, matchID, playerID int64) (matchstats.Statistics, bool, error) {
	return r.getOne(ctx, qb.Eq("match_id", matchID), qb.Eq("player_id", playerID))
}

func (r *MatchStatisticsRepository) getOne(ctx context.Context, where ...qb.Condition) (matchstats.Statistics, bool, error) {
	query, args, err := qb.Select("*").From("match_statistics").
		Where(where...).
		Limit(1).
		ToSQL()
	if err != nil {
		return matchstats.Statistics{}, false, fmt.Errorf("build select match statistics query: %w", err)
	}

	var row matchStatisticsTableModel
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return matchstats.Statistics{}, false, nil
		}
		return matchstats.Statistics{}, false, fmt.Errorf("get match statistics: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *MatchStatisticsRepository) List(ctx context.Context, filter matchstats.Filter) ([]matchstats.Statistics, error) {
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

	query, args, err := qb.Select("*").From("match_statistics").
		Where(where...).
		OrderBy("match_id", "player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select match statistics query: %w", err)
	}

	var rows []matchStatisticsTableModel
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select match statistics: %w", err)
	}
	out := make([]matchstats.Statistics, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *MatchStatisticsRepository) Update(ctx context.Context, item matchstats.Statistics) (matchstats.Statistics, error) {
	builder := qb.Update("match_statistics").Set("team_id", item.TeamID)
	for i, value := range counterValues(item.Counters) {
		builder.Set(counterColumns[i], value)
	}
	query, args, err := builder.
		Set("updated_at", item.UpdatedAt.UTC()).
		Where(qb.Eq("id", item.ID)).
		Suffix("RETURNING *").
		ToSQL()
	if err != nil {
		return matchstats.Statistics{}, fmt.Errorf("build update match statistics query: %w", err)
	}

	var updated matchStatisticsTableModel
	if err := conn(ctx, r.db).GetContext(ctx, &updated, query, args...); err != nil {
		if isNotFound(err) {
			return matchstats.Statistics{}, fmt.Errorf("match statistics=%d not found", item.ID)
		}
		return matchstats.Statistics{}, fmt.Errorf("update match statistics: %w", err)
	}
	return updated.toDomain(), nil
}

func (r *MatchStatisticsRepository) Upsert(ctx context.Context, matchID, playerID, teamID int64, delta matchstats.Counters) (matchstats.Statistics, error) {
	query, args, err := upsertStatisticsQuery(matchID, playerID, teamID, delta, r.now().UTC())
	if err != nil {
		return matchstats.Statistics{}, fmt.Errorf("build upsert match statistics query: %w", err)
	}

	var row matchStatisticsTableModel
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, args...); err != nil {
		return matchstats.Statistics{}, fmt.Errorf("upsert match statistics match=%d player=%d: %w", matchID, playerID, err)
	}
	return row.toDomain(), nil
}

// upsertStatisticsQuery inserts the floored delta for a new row, or adds the
// raw delta to an existing one with every counter clamped at zero. The
// existing row keeps its team.
func upsertStatisticsQuery(matchID, playerID, teamID int64, delta matchstats.Counters, now time.Time) (string, []any, error) {
	initial := matchstats.Statistics{
		MatchID:   matchID,
		PlayerID:  playerID,
		TeamID:    teamID,
		Counters:  matchstats.Counters{}.Apply(delta),
		CreatedAt: now,
		UpdatedAt: now,
	}

	sets := make([]string, 0, len(counterColumns)+1)
	for _, column := range counterColumns {
		sets = append(sets, fmt.Sprintf("%s = GREATEST(match_statistics.%s + ?, 0)", column, column))
	}
	sets = append(sets, "updated_at = EXCLUDED.updated_at")
	suffix := "ON CONFLICT (match_id, player_id) DO UPDATE SET " + strings.Join(sets, ", ") + " RETURNING *"

	return qb.InsertInto("match_statistics").
		Columns(matchStatisticsInsertColumns...).
		Values(matchStatisticsValues(initial)...).
		SuffixExpr(suffix, counterValues(delta)...).
		ToSQL()
}

func (r *MatchStatisticsRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := qb.DeleteFrom("match_statistics").Where(qb.Eq("id", id)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete match statistics query: %w", err)
	}
	res, err := conn(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete match statistics: %w", err)
	}
	return expectAffected(res, "match statistics", id)
}

func (r *MatchStatisticsRepository) DeleteByMatch(ctx context.Context, matchID int64) (int, error) {
	query, args, err := qb.DeleteFrom("match_statistics").Where(qb.Eq("match_id", matchID)).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build delete match statistics by match query: %w", err)
	}
	res, err := conn(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete match statistics by match: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected match statistics match=%d: %w", matchID, err)
	}
	return int(n), nil
}

const playerTotalsQuery = `
SELECT
	s.player_id,
	(array_agg(s.team_id ORDER BY s.id DESC))[1] AS team_id,
	COALESCE(SUM(s.goals), 0) AS goals,
	COALESCE(SUM(s.assists), 0) AS assists,
	COALESCE(SUM(s.yellow_cards), 0) AS yellow_cards,
	COALESCE(SUM(s.red_cards), 0) AS red_cards,
	COUNT(*) AS matches_played,
	COALESCE(SUM(s.minutes_played), 0) AS total_minutes
FROM match_statistics s
JOIN matches m ON m.id = s.match_id
WHERE m.tournament_id = $1
	AND m.status IN ('in_progress', 'finished')
GROUP BY s.player_id
ORDER BY s.player_id`

func (r *MatchStatisticsRepository) PlayerTotals(ctx context.Context, tournamentID int64) ([]matchstats.PlayerTotals, error) {
	var rows []playerTotalsRow
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, playerTotalsQuery, tournamentID); err != nil {
		return nil, fmt.Errorf("select player totals tournament=%d: %w", tournamentID, err)
	}
	out := make([]matchstats.PlayerTotals, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
