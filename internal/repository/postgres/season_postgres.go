package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/matchup-stats-service/internal/model"
	"github.com/maxviazov/matchup-stats-service/internal/repository"
)

const seasonColumns = `id, year, is_current, created_at, updated_at`

type seasonRepository struct{ pool *pgxpool.Pool }

func NewSeasonRepository(pool *pgxpool.Pool) repository.SeasonRepository {
	return &seasonRepository{pool: pool}
}

func scanSeason(row pgx.Row) (model.Season, error) {
	var s model.Season
	err := row.Scan(&s.ID, &s.Year, &s.IsCurrent, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (r *seasonRepository) List(ctx context.Context) ([]model.Season, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	rows, err := getQ(ctx, r.pool).Query(ctx, `SELECT `+seasonColumns+` FROM seasons ORDER BY year DESC`)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()

	out := make([]model.Season, 0)
	for rows.Next() {
		s, err := scanSeason(rows)
		if err != nil {
			return nil, repository.MapPgError(err)
		}
		out = append(out, s)
	}
	return out, repository.MapPgError(rows.Err())
}

func (r *seasonRepository) GetByID(ctx context.Context, id int64) (model.Season, error) {
	return r.one(ctx, `SELECT `+seasonColumns+` FROM seasons WHERE id = $1`, id)
}

func (r *seasonRepository) GetByYear(ctx context.Context, year int) (model.Season, error) {
	return r.one(ctx, `SELECT `+seasonColumns+` FROM seasons WHERE year = $1`, year)
}

func (r *seasonRepository) Current(ctx context.Context) (model.Season, error) {
	return r.one(ctx, `SELECT `+seasonColumns+` FROM seasons WHERE is_current`)
}

func (r *seasonRepository) one(ctx context.Context, sql string, args ...any) (model.Season, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Season{}, err
	}
	s, err := scanSeason(getQ(ctx, r.pool).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Season{}, repository.ErrNotFound
		}
		return model.Season{}, repository.MapPgError(err)
	}
	return s, nil
}

var _ repository.SeasonRepository = (*seasonRepository)(nil)
