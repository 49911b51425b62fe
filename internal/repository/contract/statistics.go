package contract

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/matchup-stats-service/internal/model"
	"github.com/maxviazov/matchup-stats-service/internal/query"
)

// league is a tiny seeded fixture: team A meets B twice and C once.
type league struct {
	season     int64
	a, b, c    int64
	p1, p2, p3 int64
}

// seedLeague records:
//
//	g1 A(home) vs B: p1 30 pts at SG, p2 12 pts at PF
//	g2 C(home) vs A: p1 10 pts at SF, p3 25 pts at C
//	g3 A(home) vs B: p1 20 pts at SG, p2 8 pts at PF
func seedLeague(t *testing.T, s Store) league {
	t.Helper()
	ctx := context.Background()
	season, err := s.SeedSeason(ctx, 2024, true)
	require.NoError(t, err)

	l := league{season: season}
	l.a, l.b, l.c = mustTeam(t, s, "Alpha"), mustTeam(t, s, "Bravo"), mustTeam(t, s, "Charlie")
	l.p1 = mustPlayer(t, s, l.a, "One", model.PositionSG)
	l.p2 = mustPlayer(t, s, l.b, "Two", model.PositionPF)
	l.p3 = mustPlayer(t, s, l.c, "Three", model.PositionC)

	day := time.Date(2024, 11, 1, 19, 0, 0, 0, time.UTC)
	g1 := mustGame(t, s, season, l.a, l.b, day)
	g2 := mustGame(t, s, season, l.c, l.a, day.AddDate(0, 0, 2))
	g3 := mustGame(t, s, season, l.a, l.b, day.AddDate(0, 0, 4))

	lines := []model.PlayerGameStat{
		{PlayerID: l.p1, GameID: g1, TeamID: l.a, Position: model.PositionSG, Points: 30, TotalRebounds: 5, Assists: 7, Minutes: 36},
		{PlayerID: l.p2, GameID: g1, TeamID: l.b, Position: model.PositionPF, Points: 12, TotalRebounds: 9, Assists: 1, Minutes: 30},
		{PlayerID: l.p1, GameID: g2, TeamID: l.a, Position: model.PositionSF, Points: 10, TotalRebounds: 3, Assists: 2, Minutes: 18},
		{PlayerID: l.p3, GameID: g2, TeamID: l.c, Position: model.PositionC, Points: 25, TotalRebounds: 14, Assists: 3, Minutes: 34},
		{PlayerID: l.p1, GameID: g3, TeamID: l.a, Position: model.PositionSG, Points: 20, TotalRebounds: 4, Assists: 9, Minutes: 33},
		{PlayerID: l.p2, GameID: g3, TeamID: l.b, Position: model.PositionPF, Points: 8, TotalRebounds: 11, Assists: 2, Minutes: 28},
	}
	for _, line := range lines {
		_, err := s.PlayerStats.Upsert(ctx, line)
		require.NoError(t, err)
	}
	return l
}

func run(t *testing.T, s Store, f query.Filter) []model.StatRow {
	t.Helper()
	d, err := query.Compose(f)
	require.NoError(t, err)
	rows, err := s.Statistics.Query(context.Background(), d)
	require.NoError(t, err)
	return rows
}

func RunStatisticsRepositoryContract(t *testing.T, mk StoreFactory) {
	t.Helper()

	t.Run("vs_team", func(t *testing.T) {
		s := open(t, mk)
		l := seedLeague(t, s)
		rows := run(t, s, query.Filter{QueryType: model.QueryVsTeam, PlayerID: l.p1, EnemyTeamID: l.b, SeasonID: l.season})
		require.Len(t, rows, 1)
		assert.EqualValues(t, 2, rows[0]["GamesPlayed"])
		assert.EqualValues(t, 25.0, rows[0]["AveragePoints"])
		assert.EqualValues(t, l.b, rows[0]["EnemyTeamId"])
		assert.Equal(t, "Bravo", rows[0]["EnemyTeamName"])
		assert.EqualValues(t, 1, rows[0]["GamesOver20Points"])
	})

	t.Run("ties_break_on_ascending_opponent", func(t *testing.T) {
		s := open(t, mk)
		l := seedLeague(t, s)
		// p1 scores 10 against Delta too, matching the 10 against Charlie
		d := mustTeam(t, s, "Delta")
		g4 := mustGame(t, s, l.season, d, l.a, time.Date(2024, 11, 9, 19, 0, 0, 0, time.UTC))
		_, err := s.PlayerStats.Upsert(context.Background(), model.PlayerGameStat{
			PlayerID: l.p1, GameID: g4, TeamID: l.a, Position: model.PositionSG, Points: 10, Minutes: 25,
		})
		require.NoError(t, err)
		require.Less(t, l.c, d)

		for _, dir := range []model.Direction{model.Desc, model.Asc} {
			rows := run(t, s, query.Filter{QueryType: model.QueryVsAllTeams, PlayerID: l.p1, OrderBy: "AveragePoints", OrderDirection: dir})
			require.Len(t, rows, 3, dir)
			var tied []any
			for _, r := range rows {
				if r["EnemyTeamId"] != l.b {
					tied = append(tied, r["EnemyTeamId"])
				}
			}
			assert.Equal(t, []any{l.c, d}, tied, dir)
		}
	})

	t.Run("point_thresholds_nested", func(t *testing.T) {
		s := open(t, mk)
		l := seedLeague(t, s)
		fields := []string{"GamesPlayed", "GamesOver20Points", "GamesOver30Points", "GamesOver40Points"}
		for _, p := range []int64{l.p1, l.p2, l.p3} {
			rows := run(t, s, query.Filter{QueryType: model.QueryVsAllTeams, PlayerID: p, Fields: fields})
			require.NotEmpty(t, rows)
			for _, r := range rows {
				played, over20 := r["GamesPlayed"].(int64), r["GamesOver20Points"].(int64)
				over30, over40 := r["GamesOver30Points"].(int64), r["GamesOver40Points"].(int64)
				assert.LessOrEqual(t, over40, over30, r)
				assert.LessOrEqual(t, over30, over20, r)
				assert.LessOrEqual(t, over20, played, r)
			}
		}
	})

	t.Run("repeated_query_returns_equal_rows", func(t *testing.T) {
		s := open(t, mk)
		l := seedLeague(t, s)
		f := query.Filter{QueryType: model.QueryVsAllTeams, PlayerID: l.p1, GroupBy: model.GroupGame}
		first := run(t, s, f)
		require.Len(t, first, 3)
		assert.Equal(t, first, run(t, s, f))
	})

	t.Run("vs_team_no_rows_is_empty", func(t *testing.T) {
		s := open(t, mk)
		l := seedLeague(t, s)
		rows := run(t, s, query.Filter{QueryType: model.QueryVsTeam, PlayerID: l.p1, EnemyTeamID: l.a})
		assert.NotNil(t, rows)
		assert.Empty(t, rows)
	})

	t.Run("vs_all_teams_ordered_desc", func(t *testing.T) {
		s := open(t, mk)
		l := seedLeague(t, s)
		rows := run(t, s, query.Filter{QueryType: model.QueryVsAllTeams, PlayerID: l.p1, OrderBy: "AveragePoints", OrderDirection: model.Desc})
		require.Len(t, rows, 2)
		assert.EqualValues(t, l.b, rows[0]["EnemyTeamId"])
		assert.EqualValues(t, l.c, rows[1]["EnemyTeamId"])
	})

	t.Run("vs_position_checks_opposing_roster", func(t *testing.T) {
		s := open(t, mk)
		l := seedLeague(t, s)
		rows := run(t, s, query.Filter{QueryType: model.QueryVsPosition, PlayerID: l.p1, EnemyPosition: model.PositionPF})
		require.Len(t, rows, 1)
		assert.EqualValues(t, 2, rows[0]["GamesPlayed"])

		// p1's own team never fields a C, but C's center faced p1 once
		rows = run(t, s, query.Filter{QueryType: model.QueryVsPosition, PlayerID: l.p1, EnemyPosition: model.PositionC})
		require.Len(t, rows, 1)
		assert.EqualValues(t, 1, rows[0]["GamesPlayed"])
	})

	t.Run("in_position_uses_per_game_position", func(t *testing.T) {
		s := open(t, mk)
		l := seedLeague(t, s)
		rows := run(t, s, query.Filter{QueryType: model.QueryInPositionVsAllTeams, PlayerID: l.p1, PlayerPosition: model.PositionSF})
		require.Len(t, rows, 1)
		assert.EqualValues(t, l.c, rows[0]["EnemyTeamId"])
		assert.EqualValues(t, 10.0, rows[0]["AveragePoints"])
	})

	t.Run("vs_player_symmetric", func(t *testing.T) {
		s := open(t, mk)
		l := seedLeague(t, s)
		ab := run(t, s, query.Filter{QueryType: model.QueryVsPlayer, PlayerID: l.p1, PlayerID2: l.p2})
		ba := run(t, s, query.Filter{QueryType: model.QueryVsPlayer, PlayerID: l.p2, PlayerID2: l.p1})
		require.Len(t, ab, 1)
		require.Len(t, ba, 1)
		assert.EqualValues(t, l.p1, ab[0]["Player1Id"])
		assert.EqualValues(t, l.p2, ba[0]["Player1Id"])
		assert.Equal(t, ab[0]["GamesPlayed"], ba[0]["GamesPlayed"])
		assert.Equal(t, ab[0]["AveragePoints"], ba[0]["Player2AveragePoints"])
		assert.Equal(t, ab[0]["Player2AveragePoints"], ba[0]["AveragePoints"])
	})

	t.Run("team_matchup_players", func(t *testing.T) {
		s := open(t, mk)
		l := seedLeague(t, s)
		d, err := query.ComposeTeamMatchupPlayers(query.MatchupFilter{TeamID1: l.a, TeamID2: l.b})
		require.NoError(t, err)
		rows, err := s.Statistics.Query(context.Background(), d)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.EqualValues(t, l.p1, rows[0]["PlayerId"])
		assert.EqualValues(t, l.a, rows[0]["TeamId"])
		assert.EqualValues(t, l.b, rows[1]["TeamId"])
	})

	t.Run("team_position_stats", func(t *testing.T) {
		s := open(t, mk)
		l := seedLeague(t, s)
		d, err := query.ComposeTeamPositionStats(l.a, 0, 0)
		require.NoError(t, err)
		rows, err := s.Statistics.Query(context.Background(), d)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "SF", rows[0]["Position"])
		assert.Equal(t, "SG", rows[1]["Position"])
		assert.EqualValues(t, 50, rows[1]["TotalPoints"])
		assert.EqualValues(t, 50, rows[1]["TotalPointsOver20Min"])
	})

	t.Run("team_head_to_head", func(t *testing.T) {
		s := open(t, mk)
		l := seedLeague(t, s)
		headToHead := func(team, opponent int64) []model.StatRow {
			d, err := query.ComposeTeamHeadToHead(team, opponent, l.season)
			require.NoError(t, err)
			rows, err := s.Statistics.Query(context.Background(), d)
			require.NoError(t, err)
			return rows
		}

		a := headToHead(l.a, l.b)
		require.Len(t, a, 1)
		assert.EqualValues(t, 2, a[0]["NumGames"])
		assert.EqualValues(t, 25.0, a[0]["AverageTeamPoints"])
		assert.Equal(t, "Alpha", a[0]["TeamName"])

		b := headToHead(l.b, l.a)
		require.Len(t, b, 1)
		assert.EqualValues(t, 2, b[0]["NumGames"])
		assert.EqualValues(t, 10.0, b[0]["AveragePoints"])
		assert.EqualValues(t, 10.0, b[0]["AverageRebounds"])

		assert.Empty(t, headToHead(l.b, l.c))
	})
}
