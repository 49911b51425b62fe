package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/matchup-stats-service/internal/model"
	"github.com/maxviazov/matchup-stats-service/internal/repository"
)

const gameColumns = `id, season_id, league_id, home_team_id, visitor_team_id, start_date, end_date,
	status, current_period, total_periods, clock, is_halftime, created_at, updated_at`

type gameRepository struct{ pool *pgxpool.Pool }

func NewGameRepository(pool *pgxpool.Pool) repository.GameRepository {
	return &gameRepository{pool: pool}
}

func scanGame(row pgx.Row, extra ...any) (model.Game, error) {
	var g model.Game
	dest := []any{
		&g.ID, &g.SeasonID, &g.LeagueID, &g.HomeTeamID, &g.VisitorTeamID, &g.StartDate, &g.EndDate,
		&g.Status, &g.CurrentPeriod, &g.TotalPeriods, &g.Clock, &g.IsHalftime, &g.CreatedAt, &g.UpdatedAt,
	}
	err := row.Scan(append(dest, extra...)...)
	return g, err
}

func (r *gameRepository) Create(ctx context.Context, g model.Game) (model.Game, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Game{}, err
	}
	row := getQ(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO games (season_id, league_id, home_team_id, visitor_team_id, start_date, end_date,
		                    status, current_period, total_periods, clock, is_halftime)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING `+gameColumns,
		g.SeasonID, g.LeagueID, g.HomeTeamID, g.VisitorTeamID, g.StartDate, g.EndDate,
		g.Status, g.CurrentPeriod, g.TotalPeriods, g.Clock, g.IsHalftime,
	)
	out, err := scanGame(row)
	if err != nil {
		return model.Game{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *gameRepository) GetByID(ctx context.Context, id int64) (model.Game, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Game{}, err
	}
	out, err := scanGame(getQ(ctx, r.pool).QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Game{}, repository.ErrNotFound
		}
		return model.Game{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *gameRepository) List(ctx context.Context, p repository.Page) (repository.PageResult[model.Game], error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.PageResult[model.Game]{}, err
	}
	p = p.Normalize()
	rows, err := getQ(ctx, r.pool).Query(ctx,
		`SELECT `+gameColumns+`, COUNT(*) OVER() AS total
		 FROM games
		 ORDER BY start_date DESC, id DESC
		 LIMIT $1 OFFSET $2`,
		p.Limit, p.Offset,
	)
	if err != nil {
		return repository.PageResult[model.Game]{}, repository.MapPgError(err)
	}
	defer rows.Close()

	res := repository.PageResult[model.Game]{Items: make([]model.Game, 0, p.Limit)}
	for rows.Next() {
		var total int
		it, err := scanGame(rows, &total)
		if err != nil {
			return repository.PageResult[model.Game]{}, repository.MapPgError(err)
		}
		res.Items = append(res.Items, it)
		res.Total = total
	}
	return res, repository.MapPgError(rows.Err())
}

func (r *gameRepository) ListBetween(ctx context.Context, from, to time.Time) ([]model.Game, error) {
	return r.list(ctx,
		`SELECT `+gameColumns+` FROM games WHERE start_date >= $1 AND start_date < $2 ORDER BY start_date, id`,
		from, to)
}

func (r *gameRepository) ListUpcoming(ctx context.Context, t time.Time, limit int) ([]model.Game, error) {
	return r.list(ctx,
		`SELECT `+gameColumns+` FROM games WHERE start_date >= $1 ORDER BY start_date, id LIMIT $2`,
		t, limit)
}

func (r *gameRepository) ListRecent(ctx context.Context, t time.Time, limit int) ([]model.Game, error) {
	return r.list(ctx,
		`SELECT `+gameColumns+` FROM games WHERE start_date < $1 ORDER BY start_date DESC, id DESC LIMIT $2`,
		t, limit)
}

func (r *gameRepository) list(ctx context.Context, sql string, args ...any) ([]model.Game, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	rows, err := getQ(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()

	out := make([]model.Game, 0)
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, repository.MapPgError(err)
		}
		out = append(out, g)
	}
	return out, repository.MapPgError(rows.Err())
}

var _ repository.GameRepository = (*gameRepository)(nil)
