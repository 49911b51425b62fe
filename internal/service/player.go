package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxviazov/matchup-stats-service/internal/model"
	"github.com/maxviazov/matchup-stats-service/internal/repository"
)

type playerService struct {
	players repository.PlayerRepository
	teams   repository.TeamRepository
	log     zerolog.Logger
}

func NewPlayerService(players repository.PlayerRepository, teams repository.TeamRepository, logger zerolog.Logger) PlayerService {
	l := logger.With().Str("module", "service").Str("component", "player").Logger()
	return &playerService{players: players, teams: teams, log: l}
}

type playerInput struct {
	TeamID    int64  `param:"team_id" validate:"gt=0"`
	FirstName string `param:"first_name" validate:"required,max=50"`
	LastName  string `param:"last_name" validate:"required,max=50"`
	Position  string `param:"position" validate:"required,position"`
}

func (s *playerService) CreatePlayer(ctx context.Context, in model.Player) (model.Player, error) {
	start := time.Now()

	// Normalize early so validation and persistence see canonical values.
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Position, _ = model.ParsePosition(string(in.Position))

	ferrs := structErrors(playerInput{
		TeamID:    in.TeamID,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Position:  string(in.Position),
	})
	if err := NewInvalidInputError(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Msg("player validation failed")
		return model.Player{}, err
	}

	// Existence check improves client UX vs deferring to FK violation.
	ok, err := s.teams.Exists(ctx, in.TeamID)
	if err != nil {
		return model.Player{}, err
	}
	if !ok {
		return model.Player{}, NewInvalidInputError([]FieldError{{Field: "team_id", Reason: "team does not exist"}})
	}

	out, err := s.players.Create(ctx, in)
	if err != nil {
		s.log.Error().Err(err).Int64("team_id", in.TeamID).Msg("create player failed")
		return model.Player{}, err
	}
	s.log.Info().Dur("took", time.Since(start)).Int64("player_id", out.ID).Msg("player created")
	return out, nil
}

func (s *playerService) GetPlayer(ctx context.Context, id int64) (model.Player, error) {
	if err := NewInvalidInputError(positiveID("id", id)); err != nil {
		return model.Player{}, err
	}
	return s.players.GetByID(ctx, id)
}

func (s *playerService) ListPlayersByTeam(ctx context.Context, teamID int64, page repository.Page) (repository.PageResult[model.Player], error) {
	if err := NewInvalidInputError(positiveID("teamId", teamID)); err != nil {
		return repository.PageResult[model.Player]{}, err
	}
	p := page.Normalize()
	res, err := s.players.ListByTeam(ctx, teamID, p)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Error().Err(err).Int64("team_id", teamID).Msg("list players by team failed")
		}
		return repository.PageResult[model.Player]{}, err
	}
	return res, nil
}

func (s *playerService) ListPlayersByPosition(ctx context.Context, position string, page repository.Page) (repository.PageResult[model.Player], error) {
	pos, ok := model.ParsePosition(position)
	if !ok {
		return repository.PageResult[model.Player]{}, NewInvalidInputError([]FieldError{{Field: "position", Reason: "must be one of " + joinPositions()}})
	}
	p := page.Normalize()
	res, err := s.players.ListByPosition(ctx, pos, p)
	if err != nil {
		s.log.Error().Err(err).Str("position", string(pos)).Msg("list players by position failed")
		return repository.PageResult[model.Player]{}, err
	}
	return res, nil
}
