package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/maxviazov/matchup-stats-service/internal/model"
	"github.com/maxviazov/matchup-stats-service/internal/query"
	"github.com/maxviazov/matchup-stats-service/internal/repository"
)

type matchupService struct {
	stats   repository.StatisticsRepository
	teams   repository.TeamRepository
	sink    ErrorSink
	timeout time.Duration
	log     zerolog.Logger
}

// NewMatchupService wires the team-vs-team use cases. timeout 0 disables the per-request deadline.
func NewMatchupService(stats repository.StatisticsRepository, teams repository.TeamRepository, sink ErrorSink, timeout time.Duration, logger zerolog.Logger) MatchupService {
	l := logger.With().Str("module", "service").Str("component", "matchup").Logger()
	return &matchupService{stats: stats, teams: teams, sink: sink, timeout: timeout, log: l}
}

func (s *matchupService) Players(ctx context.Context, teamID1, teamID2 string, raw map[string]string) (MatchupPlayers, error) {
	f, err := NormalizeMatchup(teamID1, teamID2, raw)
	if err != nil {
		return MatchupPlayers{}, err
	}
	d, err := query.ComposeTeamMatchupPlayers(f)
	if err != nil {
		return MatchupPlayers{}, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		team1, team2 model.Team
		rows         []model.StatRow
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		team1, err = s.teams.GetByID(gctx, f.TeamID1)
		return err
	})
	g.Go(func() (err error) {
		team2, err = s.teams.GetByID(gctx, f.TeamID2)
		return err
	})
	g.Go(func() (err error) {
		rows, err = s.stats.Query(gctx, d)
		return err
	})
	if err := g.Wait(); err != nil {
		s.fail(ctx, "matchup players failed", err, f)
		return MatchupPlayers{}, err
	}

	side1, side2, err := PartitionByTeam(rows, f.TeamID1, f.TeamID2)
	if err != nil {
		s.fail(ctx, "matchup partition failed", err, f)
		return MatchupPlayers{}, err
	}
	s.log.Debug().
		Int64("team_id_1", f.TeamID1).
		Int64("team_id_2", f.TeamID2).
		Int("team1_players", len(side1)).
		Int("team2_players", len(side2)).
		Msg("matchup players served")
	return MatchupPlayers{
		Team1:        TeamPlayers{TeamID: team1.ID, TeamName: team1.Name, Players: side1},
		Team2:        TeamPlayers{TeamID: team2.ID, TeamName: team2.Name, Players: side2},
		TotalPlayers: len(rows),
		Filters:      filtersOf(f, d),
	}, nil
}

func (s *matchupService) Summary(ctx context.Context, teamID1, teamID2 string, raw map[string]string) (MatchupSummary, error) {
	players, err := s.Players(ctx, teamID1, teamID2, raw)
	if err != nil {
		return MatchupSummary{}, err
	}
	return MatchupSummary{
		Team1:   Summarize(players.Team1.TeamID, players.Team1.TeamName, players.Team1.Players),
		Team2:   Summarize(players.Team2.TeamID, players.Team2.TeamName, players.Team2.Players),
		Filters: players.Filters,
	}, nil
}

func (s *matchupService) PositionStats(ctx context.Context, teamID1, teamID2 string, raw map[string]string) (MatchupPositionStats, error) {
	f, err := NormalizeMatchup(teamID1, teamID2, onlySeason(raw))
	if err != nil {
		return MatchupPositionStats{}, err
	}

	var out MatchupPositionStats
	views := []positionView{
		{team: f.TeamID1, opponent: f.TeamID2, dst: &out.Team1VsTeam2},
		{team: f.TeamID2, opponent: f.TeamID1, dst: &out.Team2VsTeam1},
		{team: f.TeamID1, dst: &out.Team1VsAll},
		{team: f.TeamID2, dst: &out.Team2VsAll},
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.queryPositionViews(ctx, views, f.SeasonID); err != nil {
		s.fail(ctx, "matchup position stats failed", err, f)
		return MatchupPositionStats{}, err
	}
	out.SeasonID = f.SeasonID
	return out, nil
}

// queryPositionViews composes every view before the first query starts, then runs them concurrently.
func (s *matchupService) queryPositionViews(ctx context.Context, views []positionView, seasonID int64) error {
	descs := make([]query.Descriptor, len(views))
	for i, v := range views {
		d, err := query.ComposeTeamPositionStats(v.team, v.opponent, seasonID)
		if err != nil {
			return err
		}
		descs[i] = d
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, v := range views {
		v := v
		d := descs[i]
		g.Go(func() error {
			rows, err := s.stats.Query(gctx, d)
			if err != nil {
				return err
			}
			*v.dst = nonNil(rows)
			return nil
		})
	}
	return g.Wait()
}

func (s *matchupService) VsAllPositionStats(ctx context.Context, teamID string, raw map[string]string) (TeamPositionStats, error) {
	id, err := ParseID("teamId", teamID)
	p := newParser(raw)
	season := p.id("seasonId")
	errs := append(FieldErrors(err), p.errs...)
	if season != nil && *season <= 0 {
		errs = append(errs, FieldError{Field: "seasonId", Reason: "must be a positive integer"})
	}
	if err := NewInvalidInputError(errs); err != nil {
		return TeamPositionStats{}, err
	}

	d, err := query.ComposeTeamPositionStats(id, 0, deref(season))
	if err != nil {
		return TeamPositionStats{}, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.teams.GetByID(ctx, id); err != nil {
		return TeamPositionStats{}, err
	}
	rows, err := s.stats.Query(ctx, d)
	if err != nil {
		s.fail(ctx, "team position stats failed", err, query.MatchupFilter{TeamID1: id, SeasonID: deref(season)})
		return TeamPositionStats{}, err
	}
	return TeamPositionStats{TeamID: id, SeasonID: deref(season), Positions: nonNil(rows)}, nil
}

func (s *matchupService) Statistics(ctx context.Context, teamID1, teamID2 string, raw map[string]string) (TeamHeadToHead, error) {
	f, err := NormalizeMatchup(teamID1, teamID2, onlySeason(raw))
	if err != nil {
		return TeamHeadToHead{}, err
	}
	d1, err := query.ComposeTeamHeadToHead(f.TeamID1, f.TeamID2, f.SeasonID)
	if err != nil {
		return TeamHeadToHead{}, err
	}
	d2, err := query.ComposeTeamHeadToHead(f.TeamID2, f.TeamID1, f.SeasonID)
	if err != nil {
		return TeamHeadToHead{}, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var side1, side2 []model.StatRow
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		side1, err = s.stats.Query(gctx, d1)
		return err
	})
	g.Go(func() (err error) {
		side2, err = s.stats.Query(gctx, d2)
		return err
	})
	if err := g.Wait(); err != nil {
		s.fail(ctx, "team head-to-head failed", err, f)
		return TeamHeadToHead{}, err
	}
	if len(side1) == 0 && len(side2) == 0 {
		return TeamHeadToHead{}, fmt.Errorf("%w: no games between teams %d and %d", repository.ErrNotFound, f.TeamID1, f.TeamID2)
	}

	out := TeamHeadToHead{SeasonID: f.SeasonID}
	if len(side1) > 0 {
		out.Team1 = side1[0]
	}
	if len(side2) > 0 {
		out.Team2 = side2[0]
	}
	return out, nil
}

// positionView is one position-grouped fetch; opponent 0 means every opponent.
type positionView struct {
	team, opponent int64
	dst            *[]model.StatRow
}

func (s *matchupService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// fail records unexpected failures; missing teams are ordinary 404s.
func (s *matchupService) fail(ctx context.Context, msg string, err error, f query.MatchupFilter) {
	if errors.Is(err, repository.ErrNotFound) {
		return
	}
	severity := SeverityDatabaseError
	if errors.Is(err, ErrPartitionMismatch) {
		severity = SeverityServiceError
	}
	if s.sink != nil {
		s.sink.Record(ctx, ErrorRecord{
			Message:   msg,
			Component: "matchup",
			Severity:  severity,
			Context: map[string]any{
				"team_id_1": f.TeamID1,
				"team_id_2": f.TeamID2,
				"season_id": f.SeasonID,
				"error":     err.Error(),
			},
		})
	}
}

func filtersOf(f query.MatchupFilter, d query.Descriptor) MatchupFilters {
	return MatchupFilters{
		SeasonID:       f.SeasonID,
		Position:       f.Position,
		OrderBy:        d.Metric,
		OrderDirection: d.Direction,
		Limit:          f.Limit,
	}
}

// onlySeason drops the list-only filters the position views do not use.
func onlySeason(raw map[string]string) map[string]string {
	out := map[string]string{}
	if v, ok := raw["seasonId"]; ok {
		out["seasonId"] = v
	}
	return out
}
