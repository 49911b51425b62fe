package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/maxviazov/matchup-stats-service/internal/model"
	"github.com/maxviazov/matchup-stats-service/internal/repository"
)

type seasonService struct {
	repo repository.SeasonRepository
	log  zerolog.Logger
}

func NewSeasonService(repo repository.SeasonRepository, logger zerolog.Logger) SeasonService {
	l := logger.With().Str("module", "service").Str("component", "season").Logger()
	return &seasonService{repo: repo, log: l}
}

func (s *seasonService) ListSeasons(ctx context.Context) ([]model.Season, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("list seasons failed")
		return nil, err
	}
	if out == nil {
		out = []model.Season{}
	}
	return out, nil
}

func (s *seasonService) CurrentSeason(ctx context.Context) (model.Season, error) {
	return s.repo.Current(ctx)
}

func (s *seasonService) GetSeason(ctx context.Context, id int64) (model.Season, error) {
	if err := NewInvalidInputError(positiveID("id", id)); err != nil {
		return model.Season{}, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *seasonService) GetSeasonByYear(ctx context.Context, year int) (model.Season, error) {
	if year < 1946 || year > 2100 {
		return model.Season{}, NewInvalidInputError([]FieldError{{Field: "year", Reason: "must be between 1946 and 2100"}})
	}
	return s.repo.GetByYear(ctx, year)
}
