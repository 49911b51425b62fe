// Package contract holds storage-agnostic repository test suites.
// Each implementation wires a StoreFactory and runs the suites against it.
package contract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/matchup-stats-service/internal/model"
	"github.com/maxviazov/matchup-stats-service/internal/repository"
)

// Store bundles the repositories under test on one empty database.
type Store struct {
	Seasons     repository.SeasonRepository
	Teams       repository.TeamRepository
	Players     repository.PlayerRepository
	Games       repository.GameRepository
	PlayerStats repository.PlayerStatsRepository
	TeamStats   repository.TeamStatsRepository
	Statistics  repository.StatisticsRepository
	Tx          repository.TxManager
	Pinger      repository.Pinger
	// SeedSeason inserts a season; the read-only SeasonRepository has no writer.
	SeedSeason func(ctx context.Context, year int, current bool) (int64, error)
}

// StoreFactory returns a clean store and its cleanup.
type StoreFactory func(t *testing.T) (Store, func())

func open(t *testing.T, mk StoreFactory) Store {
	t.Helper()
	s, cleanup := mk(t)
	t.Cleanup(cleanup)
	return s
}

func mustTeam(t *testing.T, s Store, name string) int64 {
	t.Helper()
	team, err := s.Teams.Create(context.Background(), model.Team{Name: name, City: name + " City", Code: name[:1]})
	require.NoError(t, err)
	return team.ID
}

func mustPlayer(t *testing.T, s Store, teamID int64, last string, pos model.Position) int64 {
	t.Helper()
	p, err := s.Players.Create(context.Background(), model.Player{TeamID: teamID, FirstName: "P", LastName: last, Position: pos})
	require.NoError(t, err)
	return p.ID
}

func mustGame(t *testing.T, s Store, seasonID, home, visitor int64, start time.Time) int64 {
	t.Helper()
	g, err := s.Games.Create(context.Background(), model.Game{
		SeasonID: seasonID, HomeTeamID: home, VisitorTeamID: visitor,
		StartDate: start, Status: model.GameStatusFinished, TotalPeriods: 4,
	})
	require.NoError(t, err)
	return g.ID
}

func RunSeasonRepositoryContract(t *testing.T, mk StoreFactory) {
	t.Helper()

	t.Run("current_and_lookup", func(t *testing.T) {
		s := open(t, mk)
		ctx := context.Background()
		_, err := s.SeedSeason(ctx, 2023, false)
		require.NoError(t, err)
		id, err := s.SeedSeason(ctx, 2024, true)
		require.NoError(t, err)

		cur, err := s.Seasons.Current(ctx)
		require.NoError(t, err)
		assert.Equal(t, id, cur.ID)

		byYear, err := s.Seasons.GetByYear(ctx, 2024)
		require.NoError(t, err)
		assert.Equal(t, id, byYear.ID)

		all, err := s.Seasons.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, 2024, all[0].Year)
	})

	t.Run("no_current_is_not_found", func(t *testing.T) {
		s := open(t, mk)
		_, err := s.Seasons.Current(context.Background())
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("second_current_rejected", func(t *testing.T) {
		s := open(t, mk)
		ctx := context.Background()
		_, err := s.SeedSeason(ctx, 2023, true)
		require.NoError(t, err)
		_, err = s.SeedSeason(ctx, 2024, true)
		assert.Error(t, err)
	})
}

func RunTeamRepositoryContract(t *testing.T, mk StoreFactory) {
	t.Helper()

	t.Run("create_and_get", func(t *testing.T) {
		s := open(t, mk)
		ctx := context.Background()
		created, err := s.Teams.Create(ctx, model.Team{Name: "Warriors", City: "San Francisco", Code: "GSW"})
		require.NoError(t, err)
		got, err := s.Teams.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.Name, got.Name)
		assert.Equal(t, "GSW", got.Code)
	})

	t.Run("get_not_found", func(t *testing.T) {
		s := open(t, mk)
		_, err := s.Teams.GetByID(context.Background(), 999999)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("list_pagination_total", func(t *testing.T) {
		s := open(t, mk)
		for i := 0; i < 7; i++ {
			mustTeam(t, s, "T-"+string(rune('A'+i)))
		}
		ctx := context.Background()
		res, err := s.Teams.List(ctx, repository.Page{Limit: 3})
		require.NoError(t, err)
		assert.Len(t, res.Items, 3)
		assert.Equal(t, 7, res.Total)

		res, err = s.Teams.List(ctx, repository.Page{Limit: 3, Offset: 6})
		require.NoError(t, err)
		assert.Len(t, res.Items, 1)
		assert.Equal(t, 7, res.Total)
	})

	t.Run("list_by_city_case_insensitive", func(t *testing.T) {
		s := open(t, mk)
		mustTeam(t, s, "Lakers")
		teams, err := s.Teams.ListByCity(context.Background(), "LAKERS city")
		require.NoError(t, err)
		require.Len(t, teams, 1)
		assert.Equal(t, "Lakers", teams[0].Name)

		none, err := s.Teams.ListByLeague(context.Background(), 42)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("create_duplicate_name", func(t *testing.T) {
		s := open(t, mk)
		mustTeam(t, s, "Dup")
		_, err := s.Teams.Create(context.Background(), model.Team{Name: "Dup"})
		assert.ErrorIs(t, err, repository.ErrAlreadyExists)
	})
}

func RunPlayerRepositoryContract(t *testing.T, mk StoreFactory) {
	t.Helper()

	t.Run("create_and_get", func(t *testing.T) {
		s := open(t, mk)
		teamID := mustTeam(t, s, "Bulls")
		id := mustPlayer(t, s, teamID, "Jordan", model.PositionSG)
		got, err := s.Players.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, teamID, got.TeamID)
		assert.Equal(t, model.PositionSG, got.Position)
	})

	t.Run("get_not_found", func(t *testing.T) {
		s := open(t, mk)
		_, err := s.Players.GetByID(context.Background(), 42424242)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("list_by_team_and_position", func(t *testing.T) {
		s := open(t, mk)
		teamID := mustTeam(t, s, "Lakers")
		for i := 0; i < 5; i++ {
			pos := model.PositionSF
			if i == 0 {
				pos = model.PositionC
			}
			mustPlayer(t, s, teamID, string(rune('A'+i)), pos)
		}
		ctx := context.Background()
		res, err := s.Players.ListByTeam(ctx, teamID, repository.Page{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, res.Items, 2)
		assert.Equal(t, 5, res.Total)

		centers, err := s.Players.ListByPosition(ctx, model.PositionC, repository.Page{})
		require.NoError(t, err)
		assert.Equal(t, 1, centers.Total)
	})

	t.Run("unknown_team_conflict", func(t *testing.T) {
		s := open(t, mk)
		_, err := s.Players.Create(context.Background(), model.Player{TeamID: 9999999, FirstName: "X", LastName: "Y", Position: model.PositionG})
		assert.ErrorIs(t, err, repository.ErrConflict)
	})
}

func RunGameRepositoryContract(t *testing.T, mk StoreFactory) {
	t.Helper()

	t.Run("create_get_list", func(t *testing.T) {
		s := open(t, mk)
		ctx := context.Background()
		season, err := s.SeedSeason(ctx, 2024, true)
		require.NoError(t, err)
		home, away := mustTeam(t, s, "Home"), mustTeam(t, s, "Away")
		id := mustGame(t, s, season, home, away, time.Now().UTC())

		got, err := s.Games.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, home, got.HomeTeamID)
		assert.Equal(t, away, got.VisitorTeamID)

		page, err := s.Games.List(ctx, repository.Page{Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 1, page.Total)
	})

	t.Run("windows", func(t *testing.T) {
		s := open(t, mk)
		ctx := context.Background()
		season, err := s.SeedSeason(ctx, 2024, true)
		require.NoError(t, err)
		home, away := mustTeam(t, s, "Home"), mustTeam(t, s, "Away")
		now := time.Date(2024, 12, 25, 12, 0, 0, 0, time.UTC)
		for d := -3; d <= 3; d++ {
			mustGame(t, s, season, home, away, now.AddDate(0, 0, d))
		}

		today, err := s.Games.ListBetween(ctx, now.Add(-time.Hour), now.Add(time.Hour))
		require.NoError(t, err)
		assert.Len(t, today, 1)

		next, err := s.Games.ListUpcoming(ctx, now.Add(time.Hour), 2)
		require.NoError(t, err)
		require.Len(t, next, 2)
		assert.True(t, next[0].StartDate.Before(next[1].StartDate))

		prev, err := s.Games.ListRecent(ctx, now.Add(-time.Hour), 8)
		require.NoError(t, err)
		require.Len(t, prev, 3)
		assert.True(t, prev[0].StartDate.After(prev[1].StartDate))
	})

	t.Run("get_not_found", func(t *testing.T) {
		s := open(t, mk)
		_, err := s.Games.GetByID(context.Background(), 7777777)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func RunStatsRepositoryContract(t *testing.T, mk StoreFactory) {
	t.Helper()

	t.Run("player_upsert_and_list", func(t *testing.T) {
		s := open(t, mk)
		ctx := context.Background()
		season, err := s.SeedSeason(ctx, 2024, true)
		require.NoError(t, err)
		home, away := mustTeam(t, s, "Home"), mustTeam(t, s, "Away")
		pid := mustPlayer(t, s, home, "Doe", model.PositionSG)
		gid := mustGame(t, s, season, home, away, time.Now().UTC())

		line := model.PlayerGameStat{PlayerID: pid, GameID: gid, TeamID: home, Position: model.PositionSG, Points: 10}
		l1, err := s.PlayerStats.Upsert(ctx, line)
		require.NoError(t, err)
		assert.Equal(t, 10, l1.Points)

		line.Points = 22
		l2, err := s.PlayerStats.Upsert(ctx, line)
		require.NoError(t, err)
		assert.Equal(t, 22, l2.Points)
		assert.Equal(t, l1.ID, l2.ID)

		list, err := s.PlayerStats.ListByGame(ctx, gid)
		require.NoError(t, err)
		assert.Len(t, list, 1)

		log, err := s.PlayerStats.ListByPlayer(ctx, pid, season, repository.Page{})
		require.NoError(t, err)
		assert.Equal(t, 1, log.Total)

		log, err = s.PlayerStats.ListByPlayer(ctx, pid, season+1000, repository.Page{})
		require.NoError(t, err)
		assert.Zero(t, log.Total)
	})

	t.Run("team_upsert_and_list", func(t *testing.T) {
		s := open(t, mk)
		ctx := context.Background()
		season, err := s.SeedSeason(ctx, 2024, true)
		require.NoError(t, err)
		home, away := mustTeam(t, s, "Home"), mustTeam(t, s, "Away")
		gid := mustGame(t, s, season, home, away, time.Now().UTC())

		_, err = s.TeamStats.Upsert(ctx, model.TeamGameStat{TeamID: home, GameID: gid, Points: 101, Win: true})
		require.NoError(t, err)
		_, err = s.TeamStats.Upsert(ctx, model.TeamGameStat{TeamID: away, GameID: gid, Points: 99, Loss: true})
		require.NoError(t, err)

		box, err := s.TeamStats.ListByGame(ctx, gid)
		require.NoError(t, err)
		assert.Len(t, box, 2)

		log, err := s.TeamStats.ListByTeam(ctx, home, 0, repository.Page{})
		require.NoError(t, err)
		require.Equal(t, 1, log.Total)
		assert.True(t, log.Items[0].Win)
	})

	t.Run("list_empty_ok", func(t *testing.T) {
		s := open(t, mk)
		list, err := s.PlayerStats.ListByGame(context.Background(), 123456)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func RunTxManagerContract(t *testing.T, mk StoreFactory) {
	t.Helper()

	t.Run("commit_on_nil_error", func(t *testing.T) {
		s := open(t, mk)
		ctx := context.Background()
		var createdID int64
		err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
			out, err := s.Teams.Create(ctx, model.Team{Name: "TxCommit"})
			createdID = out.ID
			return err
		})
		require.NoError(t, err)
		_, err = s.Teams.GetByID(ctx, createdID)
		assert.NoError(t, err)
	})

	t.Run("rollback_on_error", func(t *testing.T) {
		s := open(t, mk)
		ctx := context.Background()
		marker := errors.New("boom")
		var createdID int64
		err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
			out, err := s.Teams.Create(ctx, model.Team{Name: "TxRollback"})
			if err != nil {
				return err
			}
			createdID = out.ID
			return marker
		})
		assert.ErrorIs(t, err, marker)
		_, err = s.Teams.GetByID(ctx, createdID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func RunPingerContract(t *testing.T, mk StoreFactory) {
	t.Helper()
	t.Run("ping_ok", func(t *testing.T) {
		s := open(t, mk)
		assert.NoError(t, s.Pinger.Ping(context.Background()))
	})
}
