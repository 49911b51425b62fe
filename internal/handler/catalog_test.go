package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/matchup-stats-service/internal/handler"
	"github.com/maxviazov/matchup-stats-service/internal/model"
	"github.com/maxviazov/matchup-stats-service/internal/repository"
	"github.com/maxviazov/matchup-stats-service/internal/service"
)

// stubTeamService lets each test control the outcome and inspect the input.
type stubTeamService struct {
	created    model.Team
	createErr  error
	got        model.Team
	getErr     error
	page       repository.Page
	calls      int
	panicOnGet bool
}

var _ service.TeamService = (*stubTeamService)(nil)

func (s *stubTeamService) CreateTeam(_ context.Context, in model.Team) (model.Team, error) {
	s.calls++
	s.created = in
	in.ID = 1
	return in, s.createErr
}

func (s *stubTeamService) GetTeam(_ context.Context, id int64) (model.Team, error) {
	s.calls++
	if s.panicOnGet {
		panic("team cache corrupted")
	}
	return s.got, s.getErr
}

func (s *stubTeamService) ListTeams(_ context.Context, p repository.Page) (repository.PageResult[model.Team], error) {
	s.calls++
	s.page = p
	return repository.PageResult[model.Team]{Items: []model.Team{}, Total: 0}, nil
}

func (s *stubTeamService) ListTeamsByLeague(context.Context, int64) ([]model.Team, error) {
	s.calls++
	return []model.Team{}, nil
}

func (s *stubTeamService) ListTeamsByCity(_ context.Context, city string) ([]model.Team, error) {
	s.calls++
	return []model.Team{{ID: 3, City: city}}, nil
}

func TestTeamHandler_Create(t *testing.T) {
	stub := &stubTeamService{}
	r := newRouter(handler.Deps{Teams: stub})

	body, _ := json.Marshal(map[string]any{"name": "Lakers", "code": "lal", "city": "Los Angeles", "league_id": 1})
	w := serve(r, http.MethodPost, "/api/teams", bytes.NewReader(body))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Lakers", stub.created.Name)
	require.NotNil(t, stub.created.LeagueID)
	assert.EqualValues(t, 1, *stub.created.LeagueID)

	var team model.Team
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &team))
	assert.EqualValues(t, 1, team.ID)
}

func TestTeamHandler_Create_Invalid(t *testing.T) {
	t.Run("service rejects fields", func(t *testing.T) {
		stub := &stubTeamService{createErr: service.NewInvalidInputError([]service.FieldError{{Field: "name", Reason: "is required"}})}
		r := newRouter(handler.Deps{Teams: stub})
		w := serve(r, http.MethodPost, "/api/teams", strings.NewReader(`{"name":""}`))
		require.Equal(t, http.StatusBadRequest, w.Code)
		env := decode(t, w)
		require.Len(t, env.Details, 1)
		assert.Equal(t, "name", env.Details[0].Field)
	})
	t.Run("malformed body", func(t *testing.T) {
		stub := &stubTeamService{}
		r := newRouter(handler.Deps{Teams: stub})
		w := serve(r, http.MethodPost, "/api/teams", strings.NewReader(`{"name":`))
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "body", decode(t, w).Details[0].Field)
		assert.Zero(t, stub.calls)
	})
	t.Run("duplicate", func(t *testing.T) {
		r := newRouter(handler.Deps{Teams: &stubTeamService{createErr: repository.ErrAlreadyExists}})
		w := serve(r, http.MethodPost, "/api/teams", strings.NewReader(`{"name":"Lakers"}`))
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestTeamHandler_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		r := newRouter(handler.Deps{Teams: &stubTeamService{got: model.Team{ID: 7, Name: "Heat"}}})
		w := serve(r, http.MethodGet, "/api/teams/7", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Heat")
	})
	t.Run("not found", func(t *testing.T) {
		r := newRouter(handler.Deps{Teams: &stubTeamService{getErr: repository.ErrNotFound}})
		w := serve(r, http.MethodGet, "/api/teams/42", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
	t.Run("bad id never reaches the service", func(t *testing.T) {
		stub := &stubTeamService{}
		r := newRouter(handler.Deps{Teams: stub})
		w := serve(r, http.MethodGet, "/api/teams/-3", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "teamId", decode(t, w).Details[0].Field)
		assert.Zero(t, stub.calls)
	})
}

func TestTeamHandler_ListPaging(t *testing.T) {
	stub := &stubTeamService{}
	r := newRouter(handler.Deps{Teams: stub})

	w := serve(r, http.MethodGet, "/api/teams?limit=5&offset=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, repository.Page{Limit: 5, Offset: 10}, stub.page)

	w = serve(r, http.MethodGet, "/api/teams?limit=x&offset=-1", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, decode(t, w).Details, 2)

	w = serve(r, http.MethodGet, "/api/teams/city/Boston", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Boston")
}

// stubGameService captures the window arguments of the list endpoints.
type stubGameService struct {
	limit, days int
	scheduleAt  time.Time
}

var _ service.GameService = (*stubGameService)(nil)

func (s *stubGameService) CreateGame(_ context.Context, in model.Game) (model.Game, error) {
	return in, nil
}
func (s *stubGameService) GetGame(context.Context, int64) (model.Game, error) {
	return model.Game{}, repository.ErrNotFound
}
func (s *stubGameService) ListGames(context.Context, repository.Page) (repository.PageResult[model.Game], error) {
	return repository.PageResult[model.Game]{Items: []model.Game{}}, nil
}
func (s *stubGameService) Upcoming(_ context.Context, limit int) ([]model.Game, error) {
	s.limit = limit
	return []model.Game{}, nil
}
func (s *stubGameService) FromLastDays(_ context.Context, days int) ([]model.Game, error) {
	s.days = days
	return []model.Game{}, nil
}
func (s *stubGameService) Schedule(_ context.Context, now time.Time) (service.Schedule, error) {
	s.scheduleAt = now
	return service.Schedule{Today: []model.Game{}, Next: []model.Game{}, Previous: []model.Game{}}, nil
}

func TestGameHandler(t *testing.T) {
	stub := &stubGameService{}
	r := newRouter(handler.Deps{Games: stub})

	w := serve(r, http.MethodGet, "/api/games/upcoming?limit=3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, stub.limit)

	w = serve(r, http.MethodGet, "/api/games/upcoming", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, stub.limit, "absent limit defers to the service default")

	w = serve(r, http.MethodGet, "/api/games/last-days/14", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 14, stub.days)

	w = serve(r, http.MethodGet, "/api/games/last-days/week", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, http.MethodGet, "/api/games/today", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, stub.scheduleAt.IsZero())
	assert.JSONEq(t, `{"today":[],"next":[],"previous":[]}`, string(decode(t, w).Data))

	w = serve(r, http.MethodGet, "/api/games/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(r, http.MethodPost, "/api/games", strings.NewReader(`{"season_id":1,"home_team_id":1,"visitor_team_id":2,"start_date":"2024-01-05T19:30:00Z"}`))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = serve(r, http.MethodPost, "/api/games", strings.NewReader(`{"start_date":"tomorrow"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// stubStatsService remembers the season filter of game-log requests.
type stubStatsService struct {
	seasonID int64
	line     model.PlayerGameStat
}

var _ service.StatsService = (*stubStatsService)(nil)

func (s *stubStatsService) UpsertPlayerStat(_ context.Context, line model.PlayerGameStat) (model.PlayerGameStat, error) {
	s.line = line
	return line, nil
}
func (s *stubStatsService) UpsertTeamStat(_ context.Context, line model.TeamGameStat) (model.TeamGameStat, error) {
	return line, nil
}
func (s *stubStatsService) GamePlayerStats(context.Context, int64) ([]model.PlayerGameStat, error) {
	return []model.PlayerGameStat{}, nil
}
func (s *stubStatsService) GameTeamStats(context.Context, int64) ([]model.TeamGameStat, error) {
	return []model.TeamGameStat{}, nil
}
func (s *stubStatsService) PlayerGameLog(_ context.Context, _, seasonID int64, _ repository.Page) (repository.PageResult[model.PlayerGameStat], error) {
	s.seasonID = seasonID
	return repository.PageResult[model.PlayerGameStat]{Items: []model.PlayerGameStat{}}, nil
}
func (s *stubStatsService) TeamGameLog(_ context.Context, _, seasonID int64, _ repository.Page) (repository.PageResult[model.TeamGameStat], error) {
	s.seasonID = seasonID
	return repository.PageResult[model.TeamGameStat]{Items: []model.TeamGameStat{}}, nil
}

func TestStatsHandler(t *testing.T) {
	stub := &stubStatsService{}
	r := newRouter(handler.Deps{Stats: stub})

	w := serve(r, http.MethodPost, "/api/stats/player", strings.NewReader(`{"player_id":23,"game_id":5,"team_id":1,"points":31,"position":"SG"}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 31, stub.line.Points)
	assert.Equal(t, model.PositionSG, stub.line.Position)

	w = serve(r, http.MethodGet, "/api/players/23/player-stats?seasonId=4", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 4, stub.seasonID)

	w = serve(r, http.MethodGet, "/api/teams/1/team-stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, stub.seasonID)

	w = serve(r, http.MethodGet, "/api/teams/1/team-stats?seasonId=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, http.MethodGet, "/api/games/5/player-stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(decode(t, w).Data))
}
