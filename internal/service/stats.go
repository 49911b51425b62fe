package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/maxviazov/matchup-stats-service/internal/model"
	"github.com/maxviazov/matchup-stats-service/internal/repository"
)

type statsService struct {
	playerStats repository.PlayerStatsRepository
	teamStats   repository.TeamStatsRepository
	players     repository.PlayerRepository
	games       repository.GameRepository
	tx          repository.TxManager
	log         zerolog.Logger
}

func NewStatsService(playerStats repository.PlayerStatsRepository, teamStats repository.TeamStatsRepository, players repository.PlayerRepository, games repository.GameRepository, tx repository.TxManager, logger zerolog.Logger) StatsService {
	l := logger.With().Str("module", "service").Str("component", "stats").Logger()
	return &statsService{playerStats: playerStats, teamStats: teamStats, players: players, games: games, tx: tx, log: l}
}

type playerStatInput struct {
	PlayerID          int64   `param:"player_id" validate:"gt=0"`
	GameID            int64   `param:"game_id" validate:"gt=0"`
	TeamID            int64   `param:"team_id" validate:"gt=0"`
	Position          string  `param:"position" validate:"position"`
	Minutes           float32 `param:"minutes" validate:"min=0,max=75"`
	Points            int     `param:"points" validate:"min=0"`
	FieldGoalsMade    int     `param:"field_goals_made" validate:"min=0,ltefield=FieldGoalsAttempt"`
	FieldGoalsAttempt int     `param:"field_goals_attempt" validate:"min=0"`
	ThreesMade        int     `param:"three_points_made" validate:"min=0,ltefield=ThreesAttempt"`
	ThreesAttempt     int     `param:"three_points_attempt" validate:"min=0"`
	FreeThrowsMade    int     `param:"free_throws_made" validate:"min=0,ltefield=FreeThrowsAttempt"`
	FreeThrowsAttempt int     `param:"free_throws_attempt" validate:"min=0"`
	OffensiveRebounds int     `param:"offensive_rebounds" validate:"min=0"`
	DefensiveRebounds int     `param:"defensive_rebounds" validate:"min=0"`
	TotalRebounds     int     `param:"total_rebounds" validate:"min=0"`
	Assists           int     `param:"assists" validate:"min=0"`
	Steals            int     `param:"steals" validate:"min=0"`
	Blocks            int     `param:"blocks" validate:"min=0"`
	Turnovers         int     `param:"turnovers" validate:"min=0"`
	PersonalFouls     int     `param:"personal_fouls" validate:"min=0,max=6"`
}

// UpsertPlayerStat validates a box-score line and writes it.
// The line's team must be one of the two sides of its game.
func (s *statsService) UpsertPlayerStat(ctx context.Context, line model.PlayerGameStat) (model.PlayerGameStat, error) {
	if line.Position == "" {
		line.Position = model.PositionNA
	} else {
		line.Position, _ = model.ParsePosition(string(line.Position))
	}
	if line.TotalRebounds == 0 {
		line.TotalRebounds = line.OffensiveRebounds + line.DefensiveRebounds
	}

	ferrs := structErrors(playerStatInput{
		PlayerID:          line.PlayerID,
		GameID:            line.GameID,
		TeamID:            line.TeamID,
		Position:          string(line.Position),
		Minutes:           line.Minutes,
		Points:            line.Points,
		FieldGoalsMade:    line.FieldGoalsMade,
		FieldGoalsAttempt: line.FieldGoalsAttempt,
		ThreesMade:        line.ThreePointsMade,
		ThreesAttempt:     line.ThreePointsAttempt,
		FreeThrowsMade:    line.FreeThrowsMade,
		FreeThrowsAttempt: line.FreeThrowsAttempt,
		OffensiveRebounds: line.OffensiveRebounds,
		DefensiveRebounds: line.DefensiveRebounds,
		TotalRebounds:     line.TotalRebounds,
		Assists:           line.Assists,
		Steals:            line.Steals,
		Blocks:            line.Blocks,
		Turnovers:         line.Turnovers,
		PersonalFouls:     line.PersonalFouls,
	})
	if line.TotalRebounds != line.OffensiveRebounds+line.DefensiveRebounds {
		ferrs = mergeFieldErrors(ferrs, []FieldError{{Field: "total_rebounds", Reason: "must equal offensive plus defensive rebounds"}})
	}
	if err := NewInvalidInputError(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Msg("stat line validation failed")
		return model.PlayerGameStat{}, err
	}

	var out model.PlayerGameStat
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var existenceErrs []FieldError
		ok, err := s.players.Exists(ctx, line.PlayerID)
		if err != nil {
			return err
		}
		if !ok {
			existenceErrs = append(existenceErrs, FieldError{Field: "player_id", Reason: "player does not exist"})
		}
		game, err := s.games.GetByID(ctx, line.GameID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			existenceErrs = append(existenceErrs, FieldError{Field: "game_id", Reason: "game does not exist"})
		case err != nil:
			return err
		default:
			if _, ok := game.OpponentOf(line.TeamID); !ok {
				existenceErrs = append(existenceErrs, FieldError{Field: "team_id", Reason: "must be the home or visitor team of the game"})
			}
		}
		if err := NewInvalidInputError(existenceErrs); err != nil {
			return err
		}
		out, err = s.playerStats.Upsert(ctx, line)
		return err
	})
	if err != nil {
		if FieldErrors(err) == nil {
			s.log.Error().Err(err).Int64("player_id", line.PlayerID).Int64("game_id", line.GameID).Msg("upsert stat line failed")
		}
		return model.PlayerGameStat{}, err
	}
	return out, nil
}

// UpsertTeamStat writes a team box score after checking the team played the game.
func (s *statsService) UpsertTeamStat(ctx context.Context, line model.TeamGameStat) (model.TeamGameStat, error) {
	var ferrs []FieldError
	ferrs = append(ferrs, positiveID("team_id", line.TeamID)...)
	ferrs = append(ferrs, positiveID("game_id", line.GameID)...)
	for _, c := range []struct {
		field string
		v     int
	}{
		{"points", line.Points}, {"points_q1", line.PointsQ1}, {"points_q2", line.PointsQ2},
		{"points_q3", line.PointsQ3}, {"points_q4", line.PointsQ4},
		{"total_rebounds", line.TotalRebounds}, {"assists", line.Assists}, {"turnovers", line.Turnovers},
	} {
		if c.v < 0 {
			ferrs = append(ferrs, FieldError{Field: c.field, Reason: "must be at least 0"})
		}
	}
	if line.Win && line.Loss {
		ferrs = append(ferrs, FieldError{Field: "win", Reason: "win and loss are exclusive"})
	}
	if err := NewInvalidInputError(ferrs); err != nil {
		return model.TeamGameStat{}, err
	}

	var out model.TeamGameStat
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		game, err := s.games.GetByID(ctx, line.GameID)
		if errors.Is(err, repository.ErrNotFound) {
			return NewInvalidInputError([]FieldError{{Field: "game_id", Reason: "game does not exist"}})
		}
		if err != nil {
			return err
		}
		if _, ok := game.OpponentOf(line.TeamID); !ok {
			return NewInvalidInputError([]FieldError{{Field: "team_id", Reason: "must be the home or visitor team of the game"}})
		}
		out, err = s.teamStats.Upsert(ctx, line)
		return err
	})
	if err != nil {
		if FieldErrors(err) == nil {
			s.log.Error().Err(err).Int64("team_id", line.TeamID).Int64("game_id", line.GameID).Msg("upsert team stat failed")
		}
		return model.TeamGameStat{}, err
	}
	return out, nil
}

func (s *statsService) GamePlayerStats(ctx context.Context, gameID int64) ([]model.PlayerGameStat, error) {
	if err := NewInvalidInputError(positiveID("gameId", gameID)); err != nil {
		return nil, err
	}
	if _, err := s.games.GetByID(ctx, gameID); err != nil {
		return nil, err
	}
	out, err := s.playerStats.ListByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.PlayerGameStat{}
	}
	return out, nil
}

func (s *statsService) GameTeamStats(ctx context.Context, gameID int64) ([]model.TeamGameStat, error) {
	if err := NewInvalidInputError(positiveID("gameId", gameID)); err != nil {
		return nil, err
	}
	if _, err := s.games.GetByID(ctx, gameID); err != nil {
		return nil, err
	}
	out, err := s.teamStats.ListByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.TeamGameStat{}
	}
	return out, nil
}

func (s *statsService) PlayerGameLog(ctx context.Context, playerID, seasonID int64, page repository.Page) (repository.PageResult[model.PlayerGameStat], error) {
	ferrs := positiveID("playerId", playerID)
	if seasonID < 0 {
		ferrs = append(ferrs, FieldError{Field: "seasonId", Reason: "must be a positive integer"})
	}
	if err := NewInvalidInputError(ferrs); err != nil {
		return repository.PageResult[model.PlayerGameStat]{}, err
	}
	return s.playerStats.ListByPlayer(ctx, playerID, seasonID, page.Normalize())
}

func (s *statsService) TeamGameLog(ctx context.Context, teamID, seasonID int64, page repository.Page) (repository.PageResult[model.TeamGameStat], error) {
	ferrs := positiveID("teamId", teamID)
	if seasonID < 0 {
		ferrs = append(ferrs, FieldError{Field: "seasonId", Reason: "must be a positive integer"})
	}
	if err := NewInvalidInputError(ferrs); err != nil {
		return repository.PageResult[model.TeamGameStat]{}, err
	}
	return s.teamStats.ListByTeam(ctx, teamID, seasonID, page.Normalize())
}
