package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/matchup-stats-service/internal/model"
	"github.com/maxviazov/matchup-stats-service/internal/repository"
)

const teamColumns = `id, league_id, name, nickname, code, city, logo_url, created_at, updated_at`

type teamRepository struct{ pool *pgxpool.Pool }

func NewTeamRepository(pool *pgxpool.Pool) repository.TeamRepository {
	return &teamRepository{pool: pool}
}

func scanTeam(row pgx.Row, extra ...any) (model.Team, error) {
	var t model.Team
	dest := []any{&t.ID, &t.LeagueID, &t.Name, &t.NickName, &t.Code, &t.City, &t.LogoURL, &t.CreatedAt, &t.UpdatedAt}
	err := row.Scan(append(dest, extra...)...)
	return t, err
}

func (r *teamRepository) Create(ctx context.Context, t model.Team) (model.Team, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Team{}, err
	}
	row := getQ(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO teams (league_id, name, nickname, code, city, logo_url)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+teamColumns,
		t.LeagueID, t.Name, t.NickName, t.Code, t.City, t.LogoURL,
	)
	out, err := scanTeam(row)
	if err != nil {
		return model.Team{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *teamRepository) GetByID(ctx context.Context, id int64) (model.Team, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Team{}, err
	}
	row := getQ(ctx, r.pool).QueryRow(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, id)
	out, err := scanTeam(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Team{}, repository.ErrNotFound
		}
		return model.Team{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *teamRepository) List(ctx context.Context, p repository.Page) (repository.PageResult[model.Team], error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.PageResult[model.Team]{}, err
	}
	p = p.Normalize()
	rows, err := getQ(ctx, r.pool).Query(ctx,
		`SELECT `+teamColumns+`, COUNT(*) OVER() AS total
		 FROM teams
		 ORDER BY name, id
		 LIMIT $1 OFFSET $2`,
		p.Limit, p.Offset,
	)
	if err != nil {
		return repository.PageResult[model.Team]{}, repository.MapPgError(err)
	}
	defer rows.Close()

	res := repository.PageResult[model.Team]{Items: make([]model.Team, 0, p.Limit)}
	for rows.Next() {
		var total int
		t, err := scanTeam(rows, &total)
		if err != nil {
			return repository.PageResult[model.Team]{}, repository.MapPgError(err)
		}
		res.Items = append(res.Items, t)
		res.Total = total
	}
	return res, repository.MapPgError(rows.Err())
}

func (r *teamRepository) ListByLeague(ctx context.Context, leagueID int64) ([]model.Team, error) {
	return r.listWhere(ctx, `league_id = $1`, leagueID)
}

// ListByCity matches the city case-insensitively.
func (r *teamRepository) ListByCity(ctx context.Context, city string) ([]model.Team, error) {
	return r.listWhere(ctx, `lower(city) = lower($1)`, city)
}

func (r *teamRepository) listWhere(ctx context.Context, cond string, arg any) ([]model.Team, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	rows, err := getQ(ctx, r.pool).Query(ctx,
		`SELECT `+teamColumns+` FROM teams WHERE `+cond+` ORDER BY name, id`, arg)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()

	out := make([]model.Team, 0)
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, repository.MapPgError(err)
		}
		out = append(out, t)
	}
	return out, repository.MapPgError(rows.Err())
}

// Exists is a cheap existence check used by write-path validation.
func (r *teamRepository) Exists(ctx context.Context, id int64) (bool, error) {
	if err := ensurePool(r.pool); err != nil {
		return false, err
	}
	var exists bool
	err := getQ(ctx, r.pool).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM teams WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, repository.MapPgError(err)
	}
	return exists, nil
}

var _ repository.TeamRepository = (*teamRepository)(nil)
