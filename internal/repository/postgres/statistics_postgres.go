package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/matchup-stats-service/internal/model"
	"github.com/maxviazov/matchup-stats-service/internal/query"
	"github.com/maxviazov/matchup-stats-service/internal/repository"
)

type statisticsRepository struct{ pool *pgxpool.Pool }

// NewStatisticsRepository executes composed descriptors against Postgres.
func NewStatisticsRepository(pool *pgxpool.Pool) repository.StatisticsRepository {
	return &statisticsRepository{pool: pool}
}

// Query renders d at the execution boundary and collects rows keyed by alias.
// Zero matches is an empty slice, never nil.
func (r *statisticsRepository) Query(ctx context.Context, d query.Descriptor) ([]model.StatRow, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	sql, args := d.Render()
	rows, err := getQ(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, repository.MapPgError(err)
	}

	out := make([]model.StatRow, len(maps))
	for i, m := range maps {
		out[i] = model.StatRow(m)
	}
	return out, nil
}

var _ repository.StatisticsRepository = (*statisticsRepository)(nil)
