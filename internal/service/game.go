package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/maxviazov/matchup-stats-service/internal/model"
	"github.com/maxviazov/matchup-stats-service/internal/repository"
)

const (
	scheduleWindow  = 8
	maxUpcoming     = 100
	maxLastDays     = 365
	defaultPeriods  = 4
	defaultUpcoming = 10
	defaultLastDays = 7
)

// Schedule is today's slate plus the surrounding games.
type Schedule struct {
	Today    []model.Game `json:"today"`
	Next     []model.Game `json:"next"`
	Previous []model.Game `json:"previous"`
}

type gameService struct {
	games repository.GameRepository
	teams repository.TeamRepository
	tx    repository.TxManager
	log   zerolog.Logger
}

func NewGameService(games repository.GameRepository, teams repository.TeamRepository, tx repository.TxManager, logger zerolog.Logger) GameService {
	l := logger.With().Str("module", "service").Str("component", "game").Logger()
	return &gameService{games: games, teams: teams, tx: tx, log: l}
}

type gameInput struct {
	SeasonID      int64     `param:"season_id" validate:"gt=0"`
	HomeTeamID    int64     `param:"home_team_id" validate:"gt=0"`
	VisitorTeamID int64     `param:"visitor_team_id" validate:"gt=0,nefield=HomeTeamID"`
	StartDate     time.Time `param:"start_date" validate:"required"`
	Status        string    `param:"status" validate:"gamestatus"`
	TotalPeriods  int       `param:"total_periods" validate:"min=1,max=10"`
}

func (s *gameService) CreateGame(ctx context.Context, in model.Game) (model.Game, error) {
	if strings.TrimSpace(in.Status) == "" {
		in.Status = model.GameStatusScheduled
	}
	if in.TotalPeriods == 0 {
		in.TotalPeriods = defaultPeriods
	}

	ferrs := structErrors(gameInput{
		SeasonID:      in.SeasonID,
		HomeTeamID:    in.HomeTeamID,
		VisitorTeamID: in.VisitorTeamID,
		StartDate:     in.StartDate,
		Status:        in.Status,
		TotalPeriods:  in.TotalPeriods,
	})
	// Early exit if basic structure is invalid; do not touch the database.
	if err := NewInvalidInputError(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Msg("game validation failed (structure)")
		return model.Game{}, err
	}

	var out model.Game
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var existenceErrs []FieldError
		for _, side := range []struct {
			field string
			id    int64
		}{{"home_team_id", in.HomeTeamID}, {"visitor_team_id", in.VisitorTeamID}} {
			ok, err := s.teams.Exists(ctx, side.id)
			if err != nil {
				return err
			}
			if !ok {
				existenceErrs = append(existenceErrs, FieldError{Field: side.field, Reason: "team does not exist"})
			}
		}
		if err := NewInvalidInputError(existenceErrs); err != nil {
			return err
		}
		created, err := s.games.Create(ctx, in)
		if err != nil {
			return err
		}
		out = created
		return nil
	})
	if err != nil {
		if FieldErrors(err) == nil {
			s.log.Error().Err(err).Int64("home_id", in.HomeTeamID).Int64("visitor_id", in.VisitorTeamID).Msg("create game failed")
		}
		return model.Game{}, err
	}
	return out, nil
}

func (s *gameService) GetGame(ctx context.Context, id int64) (model.Game, error) {
	if err := NewInvalidInputError(positiveID("id", id)); err != nil {
		return model.Game{}, err
	}
	return s.games.GetByID(ctx, id)
}

func (s *gameService) ListGames(ctx context.Context, page repository.Page) (repository.PageResult[model.Game], error) {
	p := page.Normalize()
	res, err := s.games.List(ctx, p)
	if err != nil {
		s.log.Error().Err(err).Int("limit", p.Limit).Int("offset", p.Offset).Msg("list games failed")
		return repository.PageResult[model.Game]{}, err
	}
	return res, nil
}

func (s *gameService) Upcoming(ctx context.Context, limit int) ([]model.Game, error) {
	if limit == 0 {
		limit = defaultUpcoming
	}
	if limit < 0 || limit > maxUpcoming {
		return nil, NewInvalidInputError([]FieldError{{Field: "limit", Reason: "must be between 1 and 100"}})
	}
	out, err := s.games.ListUpcoming(ctx, time.Now().UTC(), limit)
	return emptyGames(out), err
}

func (s *gameService) FromLastDays(ctx context.Context, days int) ([]model.Game, error) {
	if days == 0 {
		days = defaultLastDays
	}
	if days < 0 || days > maxLastDays {
		return nil, NewInvalidInputError([]FieldError{{Field: "days", Reason: "must be between 1 and 365"}})
	}
	now := time.Now().UTC()
	out, err := s.games.ListBetween(ctx, now.AddDate(0, 0, -days), now)
	return emptyGames(out), err
}

// Schedule loads the three windows concurrently and fails as a whole.
func (s *gameService) Schedule(ctx context.Context, now time.Time) (Schedule, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var out Schedule
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Today, err = s.games.ListBetween(gctx, dayStart, dayEnd)
		return err
	})
	g.Go(func() (err error) {
		out.Next, err = s.games.ListUpcoming(gctx, dayEnd, scheduleWindow)
		return err
	})
	g.Go(func() (err error) {
		out.Previous, err = s.games.ListRecent(gctx, dayStart, scheduleWindow)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error().Err(err).Time("day", dayStart).Msg("load schedule failed")
		return Schedule{}, err
	}
	out.Today, out.Next, out.Previous = emptyGames(out.Today), emptyGames(out.Next), emptyGames(out.Previous)
	return out, nil
}

func emptyGames(gs []model.Game) []model.Game {
	if gs == nil {
		return []model.Game{}
	}
	return gs
}
