package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxviazov/matchup-stats-service/internal/model"
	"github.com/maxviazov/matchup-stats-service/internal/repository"
)

// teamService holds team use-case logic: validation + orchestration, no transport / SQL details.
type teamService struct {
	repo repository.TeamRepository
	log  zerolog.Logger
}

func NewTeamService(repo repository.TeamRepository, logger zerolog.Logger) TeamService {
	l := logger.With().Str("module", "service").Str("component", "team").Logger()
	return &teamService{repo: repo, log: l}
}

type teamInput struct {
	Name     string `param:"name" validate:"required,min=2,max=100"`
	NickName string `param:"nickname" validate:"max=50"`
	Code     string `param:"code" validate:"omitempty,len=3,alpha"`
	City     string `param:"city" validate:"max=100"`
	LogoURL  string `param:"logo_url" validate:"omitempty,url"`
}

func (s *teamService) CreateTeam(ctx context.Context, in model.Team) (model.Team, error) {
	start := time.Now()
	in.Name = strings.TrimSpace(in.Name)
	in.NickName = strings.TrimSpace(in.NickName)
	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	in.City = strings.TrimSpace(in.City)
	in.LogoURL = strings.TrimSpace(in.LogoURL)

	ferrs := structErrors(teamInput{
		Name:     in.Name,
		NickName: in.NickName,
		Code:     in.Code,
		City:     in.City,
		LogoURL:  in.LogoURL,
	})
	if in.LeagueID != nil {
		ferrs = append(ferrs, positiveID("league_id", *in.LeagueID)...)
	}
	if err := NewInvalidInputError(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Msg("team validation failed")
		return model.Team{}, err
	}

	out, err := s.repo.Create(ctx, in)
	if err != nil {
		// Repository surfaces domain-level errors already, do not wrap.
		s.log.Error().Err(err).Str("name", in.Name).Msg("create team failed")
		return model.Team{}, err
	}
	s.log.Info().Dur("took", time.Since(start)).Int64("team_id", out.ID).Msg("team created")
	return out, nil
}

func (s *teamService) GetTeam(ctx context.Context, id int64) (model.Team, error) {
	if err := NewInvalidInputError(positiveID("id", id)); err != nil {
		return model.Team{}, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *teamService) ListTeams(ctx context.Context, page repository.Page) (repository.PageResult[model.Team], error) {
	p := page.Normalize()
	res, err := s.repo.List(ctx, p)
	if err != nil {
		s.log.Error().Err(err).Int("limit", p.Limit).Int("offset", p.Offset).Msg("list teams failed")
		return repository.PageResult[model.Team]{}, err
	}
	return res, nil
}

func (s *teamService) ListTeamsByLeague(ctx context.Context, leagueID int64) ([]model.Team, error) {
	if err := NewInvalidInputError(positiveID("leagueId", leagueID)); err != nil {
		return nil, err
	}
	return s.repo.ListByLeague(ctx, leagueID)
}

func (s *teamService) ListTeamsByCity(ctx context.Context, city string) ([]model.Team, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, NewInvalidInputError([]FieldError{{Field: "city", Reason: "is required"}})
	}
	return s.repo.ListByCity(ctx, city)
}
