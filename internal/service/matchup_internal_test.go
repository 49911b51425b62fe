package service

import (
	"context"
	"io"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/matchup-stats-service/internal/model"
	"github.com/maxviazov/matchup-stats-service/internal/query"
)

type countingStatsRepo struct{ calls atomic.Int32 }

func (r *countingStatsRepo) Query(context.Context, query.Descriptor) ([]model.StatRow, error) {
	r.calls.Add(1)
	return []model.StatRow{{"Position": "G"}}, nil
}

func TestQueryPositionViews_ComposeFailureStartsNoQuery(t *testing.T) {
	repo := &countingStatsRepo{}
	s := &matchupService{stats: repo, log: zerolog.New(io.Discard)}

	var a, b, c []model.StatRow
	views := []positionView{
		{team: 1, opponent: 2, dst: &a},
		{team: 2, opponent: 1, dst: &b},
		{team: 0, dst: &c},
	}
	err := s.queryPositionViews(context.Background(), views, 0)
	require.ErrorIs(t, err, query.ErrIncompleteFilter)
	assert.Zero(t, repo.calls.Load())
	assert.Nil(t, a)
	assert.Nil(t, b)
}

func TestQueryPositionViews_FillsEveryView(t *testing.T) {
	repo := &countingStatsRepo{}
	s := &matchupService{stats: repo, log: zerolog.New(io.Discard)}

	var a, b []model.StatRow
	err := s.queryPositionViews(context.Background(), []positionView{
		{team: 1, opponent: 2, dst: &a},
		{team: 1, dst: &b},
	}, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 2, repo.calls.Load())
	assert.Len(t, a, 1)
	assert.Len(t, b, 1)
}
