package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/matchup-stats-service/internal/model"
	"github.com/maxviazov/matchup-stats-service/internal/repository"
)

const teamStatColumns = `id, team_id, game_id, points, points_q1, points_q2, points_q3, points_q4,
	win, loss, total_rebounds, assists, turnovers, created_at, updated_at`

type teamStatsRepository struct{ pool *pgxpool.Pool }

func NewTeamStatsRepository(pool *pgxpool.Pool) repository.TeamStatsRepository {
	return &teamStatsRepository{pool: pool}
}

func scanTeamStat(row pgx.Row, extra ...any) (model.TeamGameStat, error) {
	var s model.TeamGameStat
	dest := []any{
		&s.ID, &s.TeamID, &s.GameID, &s.Points, &s.PointsQ1, &s.PointsQ2, &s.PointsQ3, &s.PointsQ4,
		&s.Win, &s.Loss, &s.TotalRebounds, &s.Assists, &s.Turnovers, &s.CreatedAt, &s.UpdatedAt,
	}
	err := row.Scan(append(dest, extra...)...)
	return s, err
}

func (r *teamStatsRepository) Upsert(ctx context.Context, s model.TeamGameStat) (model.TeamGameStat, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.TeamGameStat{}, err
	}
	row := getQ(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO team_game_stats (
			team_id, game_id, points, points_q1, points_q2, points_q3, points_q4,
			win, loss, total_rebounds, assists, turnovers
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (team_id, game_id)
		DO UPDATE SET
			points = EXCLUDED.points,
			points_q1 = EXCLUDED.points_q1,
			points_q2 = EXCLUDED.points_q2,
			points_q3 = EXCLUDED.points_q3,
			points_q4 = EXCLUDED.points_q4,
			win = EXCLUDED.win,
			loss = EXCLUDED.loss,
			total_rebounds = EXCLUDED.total_rebounds,
			assists = EXCLUDED.assists,
			turnovers = EXCLUDED.turnovers,
			updated_at = NOW()
		RETURNING `+teamStatColumns,
		s.TeamID, s.GameID, s.Points, s.PointsQ1, s.PointsQ2, s.PointsQ3, s.PointsQ4,
		s.Win, s.Loss, s.TotalRebounds, s.Assists, s.Turnovers,
	)
	out, err := scanTeamStat(row)
	if err != nil {
		return model.TeamGameStat{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *teamStatsRepository) ListByGame(ctx context.Context, gameID int64) ([]model.TeamGameStat, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	rows, err := getQ(ctx, r.pool).Query(ctx,
		`SELECT `+teamStatColumns+` FROM team_game_stats WHERE game_id = $1 ORDER BY team_id`, gameID)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()

	res := make([]model.TeamGameStat, 0, 2)
	for rows.Next() {
		s, err := scanTeamStat(rows)
		if err != nil {
			return nil, repository.MapPgError(err)
		}
		res = append(res, s)
	}
	return res, repository.MapPgError(rows.Err())
}

func (r *teamStatsRepository) ListByTeam(ctx context.Context, teamID, seasonID int64, p repository.Page) (repository.PageResult[model.TeamGameStat], error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.PageResult[model.TeamGameStat]{}, err
	}
	p = p.Normalize()
	rows, err := getQ(ctx, r.pool).Query(ctx,
		`SELECT `+prefixed("ts", teamStatColumns)+`, COUNT(*) OVER() AS total
		 FROM team_game_stats ts
		 JOIN games g ON g.id = ts.game_id
		 WHERE ts.team_id = $1 AND ($2::bigint = 0 OR g.season_id = $2)
		 ORDER BY g.start_date DESC, ts.id DESC
		 LIMIT $3 OFFSET $4`,
		teamID, seasonID, p.Limit, p.Offset,
	)
	if err != nil {
		return repository.PageResult[model.TeamGameStat]{}, repository.MapPgError(err)
	}
	defer rows.Close()

	res := repository.PageResult[model.TeamGameStat]{Items: make([]model.TeamGameStat, 0, p.Limit)}
	for rows.Next() {
		var total int
		s, err := scanTeamStat(rows, &total)
		if err != nil {
			return repository.PageResult[model.TeamGameStat]{}, repository.MapPgError(err)
		}
		res.Items = append(res.Items, s)
		res.Total = total
	}
	return res, repository.MapPgError(rows.Err())
}

var _ repository.TeamStatsRepository = (*teamStatsRepository)(nil)
