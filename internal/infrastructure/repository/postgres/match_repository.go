package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/tournament-api/internal/domain/match"
	qb "github.com/riskibarqy/tournament-api/internal/platform/querybuilder"
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) Create(ctx context.Context, item match.Match) (match.Match, error) {
	created, err := r.CreateBatch(ctx, []match.Match{item})
	if err != nil {
		return match.Match{}, err
	}
	return created[0], nil
}

func (r *MatchRepository) CreateBatch(ctx context.Context, items []match.Match) ([]match.Match, error) {
	if len(items) == 0 {
		return []match.Match{}, nil
	}
	builder := qb.InsertInto("matches").Columns(matchInsertColumns...)
	for _, item := range items {
		row, err := newMatchTableModel(item)
		if err != nil {
			return nil, err
		}
		builder.Values(row.values()...)
	}
	query, args, err := builder.Suffix("RETURNING *").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build insert matches query: %w", err)
	}

	var rows []matchTableModel
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("insert matches: duplicate match number: %w", err)
		}
		return nil, fmt.Errorf("insert matches: %w", err)
	}
	return matchesToDomain(rows)
}

func (r *MatchRepository) GetByID(ctx context.Context, id int64) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(qb.Eq("id", id)).
		Limit(1).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build select match by id query: %w", err)
	}

	var row matchTableModel
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get match by id: %w", err)
	}
	out, err := row.toDomain()
	if err != nil {
		return match.Match{}, false, err
	}
	return out, true, nil
}

func (r *MatchRepository) List(ctx context.Context, filter match.Filter) ([]match.Match, error) {
	query, args, err := matchListQuery(filter)
	if err != nil {
		return nil, fmt.Errorf("build select matches query: %w", err)
	}

	var rows []matchTableModel
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select matches: %w", err)
	}
	return matchesToDomain(rows)
}

func matchListQuery(filter match.Filter) (string, []any, error) {
	var where []qb.Condition
	if filter.TournamentID > 0 {
		where = append(where, qb.Eq("tournament_id", filter.TournamentID))
	}
	if filter.GroupID > 0 {
		where = append(where, qb.Eq("group_id", filter.GroupID))
	}
	if filter.TeamID > 0 {
		where = append(where, qb.Or(
			qb.Eq("home_team_id", filter.TeamID),
			qb.Eq("away_team_id", filter.TeamID),
		))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]any, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		where = append(where, qb.In("status", statuses))
	}
	if filter.From != nil {
		where = append(where, qb.Gte("match_date", filter.From.UTC()))
	}
	if filter.To != nil {
		where = append(where, qb.Lte("match_date", filter.To.UTC()))
	}

	return qb.Select("*").From("matches").
		Where(where...).
		OrderBy("match_date", "match_number", "id").
		Limit(filter.Limit).
		ToSQL()
}

func (r *MatchRepository) Update(ctx context.Context, item match.Match) (match.Match, error) {
	row, err := newMatchTableModel(item)
	if err != nil {
		return match.Match{}, err
	}
	query, args, err := qb.Update("matches").
		Set("group_id", row.GroupID).
		Set("match_date", row.MatchDate).
		Set("location", row.Location).
		Set("status", row.Status).
		Set("home_score", row.HomeScore).
		Set("away_score", row.AwayScore).
		Set("round", row.Round).
		Set("start_time", row.StartTime).
		Set("end_time", row.EndTime).
		Set("attending_players", row.AttendingPlayers).
		Set("updated_at", row.UpdatedAt).
		Where(qb.Eq("id", item.ID)).
		Suffix("RETURNING *").
		ToSQL()
	if err != nil {
		return match.Match{}, fmt.Errorf("build update match query: %w", err)
	}

	var updated matchTableModel
	if err := conn(ctx, r.db).GetContext(ctx, &updated, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, fmt.Errorf("match=%d not found", item.ID)
		}
		return match.Match{}, fmt.Errorf("update match: %w", err)
	}
	return updated.toDomain()
}

func (r *MatchRepository) UpdateScore(ctx context.Context, id int64, score match.Score) error {
	query, args, err := qb.Update("matches").
		Set("home_score", score.Home).
		Set("away_score", score.Away).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update match score query: %w", err)
	}
	res, err := conn(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update match score: %w", err)
	}
	return expectAffected(res, "match", id)
}

func (r *MatchRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := qb.DeleteFrom("matches").Where(qb.Eq("id", id)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete match query: %w", err)
	}
	res, err := conn(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	return expectAffected(res, "match", id)
}

func (r *MatchRepository) LastMatchNumber(ctx context.Context, tournamentID int64) (int, error) {
	query, args, err := qb.Select("COALESCE(MAX(match_number), 0)").From("matches").
		Where(qb.Eq("tournament_id", tournamentID)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build select last match number query: %w", err)
	}
	var last int
	if err := conn(ctx, r.db).GetContext(ctx, &last, query, args...); err != nil {
		return 0, fmt.Errorf("select last match number: %w", err)
	}
	return last, nil
}

func matchesToDomain(rows []matchTableModel) ([]match.Match, error) {
	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		item, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}
