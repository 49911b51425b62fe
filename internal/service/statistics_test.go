package service_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/matchup-stats-service/internal/cache"
	"github.com/maxviazov/matchup-stats-service/internal/model"
	"github.com/maxviazov/matchup-stats-service/internal/query"
	"github.com/maxviazov/matchup-stats-service/internal/repository"
	"github.com/maxviazov/matchup-stats-service/internal/service"
)

func newStatisticsService(repo *fakeStatisticsRepo, c cache.Cache, sink service.ErrorSink, opts service.StatisticsOptions) service.StatisticsService {
	return service.NewStatisticsService(repo, c, sink, opts, zerolog.New(io.Discard))
}

func TestStatisticsService_Query_EmptyResultIsSuccess(t *testing.T) {
	repo := &fakeStatisticsRepo{}
	svc := newStatisticsService(repo, nil, &recordingSink{}, service.StatisticsOptions{})

	res, err := svc.Query(context.Background(), map[string]string{"queryType": "vs-team", "playerId": "23", "enemyTeamId": "14"})
	require.NoError(t, err)
	assert.Empty(t, res.Data)
	assert.Equal(t, model.QueryVsTeam, res.Meta.QueryType)
	require.Len(t, repo.seen, 1)

	sql, args := repo.seen[0].Render()
	assert.Contains(t, sql, "ps.player_id = $1")
	assert.Equal(t, []any{int64(23), int64(14)}, args)
}

func TestStatisticsService_Query_ValidationNeverHitsRepository(t *testing.T) {
	repo := &fakeStatisticsRepo{}
	sink := &recordingSink{}
	svc := newStatisticsService(repo, nil, sink, service.StatisticsOptions{})

	_, err := svc.Query(context.Background(), map[string]string{"queryType": "vs-team", "playerId": "23"})
	require.ErrorIs(t, err, service.ErrInvalidInput)
	assert.Equal(t, []string{"enemyTeamId"}, fieldNames(err))
	assert.Empty(t, repo.seen)
	assert.Empty(t, sink.records, "validation failures are not recorded as errors")
}

func TestStatisticsService_Query_RecordsDataSourceFailure(t *testing.T) {
	repo := &fakeStatisticsRepo{err: fmt.Errorf("query: %w", repository.ErrUnavailable)}
	sink := &recordingSink{}
	svc := newStatisticsService(repo, nil, sink, service.StatisticsOptions{})

	_, err := svc.Query(context.Background(), map[string]string{"playerId": "5"})
	require.ErrorIs(t, err, repository.ErrUnavailable)
	require.Len(t, sink.records, 1)
	rec := sink.records[0]
	assert.Equal(t, "statistics", rec.Component)
	assert.Equal(t, service.SeverityDatabaseError, rec.Severity)
	assert.Equal(t, "5", rec.Context["playerId"])
}

func TestStatisticsService_Query_DeadlineBecomesUnavailable(t *testing.T) {
	repo := &fakeStatisticsRepo{err: context.DeadlineExceeded}
	svc := newStatisticsService(repo, nil, nil, service.StatisticsOptions{RequestTimeout: time.Second})

	_, err := svc.Query(context.Background(), map[string]string{"playerId": "5"})
	assert.ErrorIs(t, err, repository.ErrUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStatisticsService_Query_UsesCache(t *testing.T) {
	repo := &fakeStatisticsRepo{rows: func(query.Descriptor) []model.StatRow {
		return []model.StatRow{{"PlayerId": int64(5), "EnemyTeamId": int64(2), "AveragePoints": 21.5}}
	}}
	c := newMemCache()
	svc := newStatisticsService(repo, c, nil, service.StatisticsOptions{CacheTTL: time.Minute})
	raw := map[string]string{"playerId": "5", "orderBy": "AveragePoints"}

	first, err := svc.Query(context.Background(), raw)
	require.NoError(t, err)
	second, err := svc.Query(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.served)
	assert.Len(t, c.entries, 1)
	require.Len(t, second.Data, 1)
	id, err := second.Data[0]["PlayerId"].(interface{ Int64() (int64, error) }).Int64()
	require.NoError(t, err)
	assert.Equal(t, first.Data[0]["PlayerId"], id)
	assert.Equal(t, first.Meta, second.Meta)
}

func TestStatisticsService_Query_CacheFailureFallsThrough(t *testing.T) {
	repo := &fakeStatisticsRepo{}
	c := newMemCache()
	c.getErr = errors.New("redis down")
	svc := newStatisticsService(repo, c, nil, service.StatisticsOptions{CacheTTL: time.Minute})

	_, err := svc.Query(context.Background(), map[string]string{"playerId": "5"})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.served)
}

// stallingCache blocks every lookup until the caller's context ends.
type stallingCache struct {
	memCache
	hadDeadline bool
}

func (c *stallingCache) Get(ctx context.Context, _ string) ([]byte, bool, error) {
	_, c.hadDeadline = ctx.Deadline()
	<-ctx.Done()
	return nil, false, ctx.Err()
}

func TestStatisticsService_Query_DeadlineBoundsCacheLookup(t *testing.T) {
	repo := &fakeStatisticsRepo{}
	c := &stallingCache{memCache: memCache{entries: map[string][]byte{}}}
	svc := newStatisticsService(repo, c, nil, service.StatisticsOptions{CacheTTL: time.Minute, RequestTimeout: 50 * time.Millisecond})

	done := make(chan error, 1)
	go func() {
		_, err := svc.Query(context.Background(), map[string]string{"playerId": "5"})
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("a stalled cache lookup was not bounded by the request timeout")
	}
	assert.True(t, c.hadDeadline)
	assert.Equal(t, 1, repo.served)
}

func TestStatisticsService_VsTeamDetailed(t *testing.T) {
	repo := &fakeStatisticsRepo{}
	svc := newStatisticsService(repo, nil, nil, service.StatisticsOptions{})

	_, err := svc.VsTeamDetailed(context.Background(), "23", "14", nil)
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.Len(t, repo.seen, 1)
	d := repo.seen[0]
	assert.False(t, d.HasField("EnemyTeamId"))
	assert.True(t, d.HasField("GamesOver40Points"), "detail view projects every field")
	assert.Equal(t, []string{"ps.player_id", "p.first_name", "p.last_name"}, d.GroupBy)

	repo.rows = func(query.Descriptor) []model.StatRow {
		return []model.StatRow{{"PlayerId": int64(23), "GamesPlayed": int64(4)}}
	}
	row, err := svc.VsTeamDetailed(context.Background(), "23", "14", map[string]string{"seasonId": "2"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), row["GamesPlayed"])
	_, args := repo.seen[1].Render()
	assert.Contains(t, args, int64(2))

	_, err = svc.VsTeamDetailed(context.Background(), "x", "14", nil)
	require.ErrorIs(t, err, service.ErrInvalidInput)
	assert.Equal(t, []string{"playerId"}, fieldNames(err))
}

func TestStatisticsService_VsTeamInPositionDetailed(t *testing.T) {
	repo := &fakeStatisticsRepo{rows: func(query.Descriptor) []model.StatRow {
		return []model.StatRow{{"PlayerId": int64(23), "GamesPlayed": int64(2)}}
	}}
	svc := newStatisticsService(repo, nil, nil, service.StatisticsOptions{})

	row, err := svc.VsTeamInPositionDetailed(context.Background(), "23", "f-c", "14", map[string]string{"groupBy": "game", "limit": "3"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), row["GamesPlayed"])

	require.Len(t, repo.seen, 1)
	d := repo.seen[0]
	assert.Equal(t, model.QueryInPositionVsTeam, d.QueryType)
	assert.False(t, d.HasField("EnemyTeamId"))
	assert.Zero(t, d.Limit)
	v, ok := query.BoundValue(d.Where, "ps.position")
	require.True(t, ok)
	assert.Equal(t, string(model.PositionFC), v)

	_, err = svc.VsTeamInPositionDetailed(context.Background(), "23", "QB", "14", nil)
	require.ErrorIs(t, err, service.ErrInvalidInput)
	assert.Equal(t, []string{"playerPosition"}, fieldNames(err))
	assert.Len(t, repo.seen, 1)
}

func TestStatisticsService_QueryTypes(t *testing.T) {
	svc := newStatisticsService(&fakeStatisticsRepo{}, nil, nil, service.StatisticsOptions{})
	types := svc.QueryTypes()
	require.Len(t, types, len(model.QueryTypes()))
	for _, qt := range types {
		assert.NotEmpty(t, qt.Description, qt.QueryType)
		assert.Contains(t, qt.Required, "playerId")
	}
	assert.Equal(t, []string{"playerId", "playerId2"}, types[len(types)-1].Required)
}
