package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/matchup-stats-service/internal/model"
	"github.com/maxviazov/matchup-stats-service/internal/query"
)

const opponentExpr = "CASE WHEN g.home_team_id = ps.team_id THEN g.visitor_team_id ELSE g.home_team_id END"

func TestCompose_VsTeam(t *testing.T) {
	d, err := query.Compose(query.Filter{
		QueryType:   model.QueryVsTeam,
		PlayerID:    23,
		EnemyTeamID: 14,
		SeasonID:    3,
	})
	require.NoError(t, err)

	v, ok := query.BoundValue(d.Where, "ps.player_id")
	require.True(t, ok)
	assert.Equal(t, int64(23), v)

	v, ok = query.BoundValue(d.Where, opponentExpr)
	require.True(t, ok)
	assert.Equal(t, int64(14), v)

	v, ok = query.BoundValue(d.Where, "g.season_id")
	require.True(t, ok)
	assert.Equal(t, int64(3), v)

	assert.Equal(t, model.GroupTeam, d.Group)
	assert.True(t, d.HasField("EnemyTeamId"))
	assert.True(t, d.HasField("AveragePoints"))
	assert.Equal(t, model.Desc, d.Direction)
}

func TestCompose_NoSeasonMeansNoSeasonPredicate(t *testing.T) {
	d, err := query.Compose(query.Filter{QueryType: model.QueryVsAllTeams, PlayerID: 1})
	require.NoError(t, err)
	_, ok := query.BoundValue(d.Where, "g.season_id")
	assert.False(t, ok)
}

func TestCompose_VsPositionUsesOpposingRosterExists(t *testing.T) {
	d, err := query.Compose(query.Filter{
		QueryType:     model.QueryVsPosition,
		PlayerID:      7,
		EnemyPosition: model.PositionPF,
	})
	require.NoError(t, err)

	var exists *query.Exists
	query.Walk(d.Where, func(p query.Predicate) {
		if e, ok := p.(query.Exists); ok {
			exists = &e
		}
	})
	require.NotNil(t, exists, "expected an existence check over the opposing roster")
	assert.Equal(t, "player_game_stats", exists.Table)

	v, ok := query.BoundValue(exists.Where, "ops.position")
	require.True(t, ok)
	assert.Equal(t, "PF", v)

	// the subject's own position is not constrained
	_, ok = query.BoundValue(d.Where, "ps.position")
	assert.False(t, ok)
}

func TestCompose_InPositionFiltersOwnPerGamePosition(t *testing.T) {
	d, err := query.Compose(query.Filter{
		QueryType:      model.QueryInPositionVsTeam,
		PlayerID:       7,
		EnemyTeamID:    2,
		PlayerPosition: model.PositionSG,
	})
	require.NoError(t, err)

	v, ok := query.BoundValue(d.Where, "ps.position")
	require.True(t, ok)
	assert.Equal(t, "SG", v)

	_, ok = query.BoundValue(d.Where, opponentExpr)
	assert.True(t, ok)

	d, err = query.Compose(query.Filter{
		QueryType:      model.QueryInPositionVsAllTeams,
		PlayerID:       7,
		PlayerPosition: model.PositionC,
	})
	require.NoError(t, err)
	_, ok = query.BoundValue(d.Where, opponentExpr)
	assert.False(t, ok)
}

func TestCompose_VsPlayerLabelsSubjectAsPlayer1(t *testing.T) {
	d, err := query.Compose(query.Filter{QueryType: model.QueryVsPlayer, PlayerID: 10, PlayerID2: 20})
	require.NoError(t, err)

	assert.Equal(t, []string{"Player1Id", "Player1Name", "Player2Id", "Player2Name"}, d.Fields()[:4])
	assert.True(t, d.HasField("Player2AveragePoints"))

	var pairJoin *query.Join
	for i := range d.Joins {
		if d.Joins[i].Alias == "ops" {
			pairJoin = &d.Joins[i]
		}
	}
	require.NotNil(t, pairJoin)
	v, ok := query.BoundValue(pairJoin.On, "ops.player_id")
	require.True(t, ok)
	assert.Equal(t, int64(20), v)

	v, ok = query.BoundValue(d.Where, "ps.player_id")
	require.True(t, ok)
	assert.Equal(t, int64(10), v)
}

func TestCompose_VsPlayerSwapIsSymmetric(t *testing.T) {
	a, err := query.Compose(query.Filter{QueryType: model.QueryVsPlayer, PlayerID: 10, PlayerID2: 20})
	require.NoError(t, err)
	b, err := query.Compose(query.Filter{QueryType: model.QueryVsPlayer, PlayerID: 20, PlayerID2: 10})
	require.NoError(t, err)

	sqlA, argsA := a.Render()
	sqlB, argsB := b.Render()
	assert.Equal(t, sqlA, sqlB, "swapping players must only swap bound values")
	assert.Equal(t, []any{int64(20), int64(10)}, argsA[:2])
	assert.Equal(t, []any{int64(10), int64(20)}, argsB[:2])
}

func TestCompose_GroupByDimensions(t *testing.T) {
	cases := []struct {
		group    model.GroupBy
		key      string
		tieBreak string
	}{
		{model.GroupTeam, "EnemyTeamId", "EnemyTeamId"},
		{model.GroupPosition, "Position", "Position"},
		{model.GroupGame, "GameId", "GameId"},
		{model.GroupSeason, "SeasonId", "SeasonId"},
	}
	for _, tc := range cases {
		t.Run(string(tc.group), func(t *testing.T) {
			d, err := query.Compose(query.Filter{QueryType: model.QueryVsAllTeams, PlayerID: 1, GroupBy: tc.group})
			require.NoError(t, err)
			assert.True(t, d.HasField(tc.key))
			require.Len(t, d.OrderBy, 2)
			assert.Equal(t, query.Order{Alias: tc.tieBreak, Dir: model.Asc}, d.OrderBy[1])
		})
	}
}

func TestCompose_VsAllTeamsOrdering(t *testing.T) {
	d, err := query.Compose(query.Filter{
		QueryType:      model.QueryVsAllTeams,
		PlayerID:       23,
		OrderBy:        "AveragePoints",
		OrderDirection: model.Desc,
	})
	require.NoError(t, err)
	assert.Equal(t, []query.Order{
		{Alias: "AveragePoints", Dir: model.Desc},
		{Alias: "EnemyTeamId", Dir: model.Asc},
	}, d.OrderBy)
}

func TestCompose_FieldsProjectionKeepsOrderMetric(t *testing.T) {
	d, err := query.Compose(query.Filter{
		QueryType: model.QueryVsAllTeams,
		PlayerID:  1,
		Fields:    []string{"MaxPoints", "GamesOver30Points", "MaxPoints"},
		OrderBy:   "AverageAssists",
	})
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"PlayerId", "PlayerName", "EnemyTeamId", "EnemyTeamName", "MaxPoints", "GamesOver30Points", "AverageAssists"},
		d.Fields())
}

func TestCompose_DefaultsWhenUnset(t *testing.T) {
	d, err := query.Compose(query.Filter{QueryType: model.QueryVsPosition, PlayerID: 1, EnemyPosition: model.PositionG})
	require.NoError(t, err)
	assert.Equal(t, model.GroupNone, d.Group)
	assert.Equal(t, query.DefaultOrderBy, d.Metric)
	assert.Equal(t, model.Desc, d.Direction)
	assert.Zero(t, d.Limit)
	for _, f := range query.DefaultFields() {
		assert.True(t, d.HasField(f), f)
	}
}

func TestCompose_RejectsIncompleteFilter(t *testing.T) {
	cases := []query.Filter{
		{QueryType: "bogus", PlayerID: 1},
		{QueryType: model.QueryVsTeam, PlayerID: 1},
		{QueryType: model.QueryVsPosition, PlayerID: 1, EnemyPosition: "XX"},
		{QueryType: model.QueryVsPlayer, PlayerID: 1},
		{QueryType: model.QueryVsAllTeams},
		{QueryType: model.QueryVsAllTeams, PlayerID: 1, OrderBy: "DROP TABLE"},
	}
	for _, f := range cases {
		_, err := query.Compose(f)
		assert.ErrorIs(t, err, query.ErrIncompleteFilter, "%+v", f)
	}
}

func TestComposeTeamMatchupPlayers(t *testing.T) {
	d, err := query.ComposeTeamMatchupPlayers(query.MatchupFilter{TeamID1: 1, TeamID2: 2, SeasonID: 5, Limit: 10})
	require.NoError(t, err)
	assert.True(t, d.HasField("TeamId"))
	assert.True(t, d.HasField("EnemyTeamId"))
	assert.Equal(t, 10, d.Limit)

	sql, args := d.Render()
	assert.Contains(t, sql, "ps.team_id IN ($1, $2)")
	assert.Equal(t, []any{int64(1), int64(2), int64(1), int64(2), int64(5), 10}, args)

	_, err = query.ComposeTeamMatchupPlayers(query.MatchupFilter{TeamID1: 3, TeamID2: 3})
	assert.ErrorIs(t, err, query.ErrIncompleteFilter)
}

func TestComposeTeamPositionStats(t *testing.T) {
	d, err := query.ComposeTeamPositionStats(4, 0, 0)
	require.NoError(t, err)
	_, ok := query.BoundValue(d.Where, opponentExpr)
	assert.False(t, ok)
	assert.Equal(t, []string{"ps.position", "ps.team_id"}, d.GroupBy)

	d, err = query.ComposeTeamPositionStats(4, 9, 2)
	require.NoError(t, err)
	v, ok := query.BoundValue(d.Where, opponentExpr)
	require.True(t, ok)
	assert.Equal(t, int64(9), v)
	assert.True(t, d.HasField("TotalPointsOver20Min"))

	_, err = query.ComposeTeamPositionStats(0, 0, 0)
	assert.ErrorIs(t, err, query.ErrIncompleteFilter)
}

func TestComposeTeamHeadToHead(t *testing.T) {
	d, err := query.ComposeTeamHeadToHead(4, 9, 2)
	require.NoError(t, err)
	for _, f := range []string{"TeamId", "TeamName", "NumGames", "AverageTeamPoints", "AverageFieldGoalsAttempted", "AverageRebounds", "AveragePersonalFouls"} {
		assert.True(t, d.HasField(f), f)
	}
	assert.Equal(t, []string{"ps.team_id", "t.name"}, d.GroupBy)
	v, ok := query.BoundValue(d.Where, opponentExpr)
	require.True(t, ok)
	assert.Equal(t, int64(9), v)

	sql, args := d.Render()
	assert.Contains(t, sql, "COUNT(DISTINCT ps.game_id)")
	assert.NotContains(t, sql, "LIMIT")
	assert.Equal(t, []any{int64(4), int64(9), int64(2)}, args)

	for _, pair := range [][2]int64{{0, 9}, {4, 0}, {4, 4}} {
		_, err := query.ComposeTeamHeadToHead(pair[0], pair[1], 0)
		assert.ErrorIs(t, err, query.ErrIncompleteFilter, "%v", pair)
	}
}
