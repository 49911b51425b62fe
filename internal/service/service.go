// Package service holds use-case orchestration between handlers and repositories:
// request normalization, query composition, result shaping and domain error shaping.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/maxviazov/matchup-stats-service/internal/model"
	"github.com/maxviazov/matchup-stats-service/internal/query"
	"github.com/maxviazov/matchup-stats-service/internal/repository"
)

// ErrInvalidInput marks aggregated validation failures (HTTP 400).
// Field-level details are retrieved via FieldErrors(err).
var ErrInvalidInput = errors.New("invalid input")

// ErrPartitionMismatch means a matchup row belonged to neither requested team.
var ErrPartitionMismatch = errors.New("row matches neither requested team")

// FieldError describes one invalid request field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// invalidInputError aggregates FieldErrors and unwraps to ErrInvalidInput.
type invalidInputError struct {
	fields []FieldError
}

func (e *invalidInputError) Error() string        { return ErrInvalidInput.Error() }
func (e *invalidInputError) Unwrap() error        { return ErrInvalidInput }
func (e *invalidInputError) Fields() []FieldError { return e.fields }

// NewInvalidInputError returns nil when fe is empty.
func NewInvalidInputError(fe []FieldError) error {
	if len(fe) == 0 {
		return nil
	}
	return &invalidInputError{fields: fe}
}

// FieldErrors extracts field errors from an aggregated validation error.
func FieldErrors(err error) []FieldError {
	var v interface{ Fields() []FieldError }
	if errors.As(err, &v) && errors.Is(err, ErrInvalidInput) {
		return v.Fields()
	}
	return nil
}

// StatisticsService answers the composed player statistics queries.
type StatisticsService interface {
	// Query normalizes raw request parameters, runs the composed query and shapes the envelope.
	Query(ctx context.Context, raw map[string]string) (ListResult, error)
	// VsTeamDetailed returns the single aggregate row of a player against one opponent.
	VsTeamDetailed(ctx context.Context, playerID, enemyTeamID string, raw map[string]string) (model.StatRow, error)
	// VsTeamInPositionDetailed narrows VsTeamDetailed to games the player logged at position.
	VsTeamInPositionDetailed(ctx context.Context, playerID, position, enemyTeamID string, raw map[string]string) (model.StatRow, error)
	QueryTypes() []QueryTypeInfo
}

// MatchupService answers the team-vs-team endpoints.
type MatchupService interface {
	Players(ctx context.Context, teamID1, teamID2 string, raw map[string]string) (MatchupPlayers, error)
	Summary(ctx context.Context, teamID1, teamID2 string, raw map[string]string) (MatchupSummary, error)
	PositionStats(ctx context.Context, teamID1, teamID2 string, raw map[string]string) (MatchupPositionStats, error)
	VsAllPositionStats(ctx context.Context, teamID string, raw map[string]string) (TeamPositionStats, error)
	// Statistics aggregates each team's output over the games the two teams played against each other.
	Statistics(ctx context.Context, teamID1, teamID2 string, raw map[string]string) (TeamHeadToHead, error)
}

// SeasonService reads league seasons.
type SeasonService interface {
	ListSeasons(ctx context.Context) ([]model.Season, error)
	CurrentSeason(ctx context.Context) (model.Season, error)
	GetSeason(ctx context.Context, id int64) (model.Season, error)
	GetSeasonByYear(ctx context.Context, year int) (model.Season, error)
}

// TeamService defines team use cases.
type TeamService interface {
	CreateTeam(ctx context.Context, in model.Team) (model.Team, error)
	GetTeam(ctx context.Context, id int64) (model.Team, error)
	ListTeams(ctx context.Context, page repository.Page) (repository.PageResult[model.Team], error)
	ListTeamsByLeague(ctx context.Context, leagueID int64) ([]model.Team, error)
	ListTeamsByCity(ctx context.Context, city string) ([]model.Team, error)
}

// PlayerService defines player use cases.
type PlayerService interface {
	CreatePlayer(ctx context.Context, in model.Player) (model.Player, error)
	GetPlayer(ctx context.Context, id int64) (model.Player, error)
	ListPlayersByTeam(ctx context.Context, teamID int64, page repository.Page) (repository.PageResult[model.Player], error)
	ListPlayersByPosition(ctx context.Context, position string, page repository.Page) (repository.PageResult[model.Player], error)
}

// GameService defines game use cases.
type GameService interface {
	CreateGame(ctx context.Context, in model.Game) (model.Game, error)
	GetGame(ctx context.Context, id int64) (model.Game, error)
	ListGames(ctx context.Context, page repository.Page) (repository.PageResult[model.Game], error)
	Upcoming(ctx context.Context, limit int) ([]model.Game, error)
	FromLastDays(ctx context.Context, days int) ([]model.Game, error)
	// Schedule fetches today's, the next and the previous games concurrently.
	Schedule(ctx context.Context, now time.Time) (Schedule, error)
}

// StatsService covers box-score ingestion and per-game reads.
type StatsService interface {
	UpsertPlayerStat(ctx context.Context, line model.PlayerGameStat) (model.PlayerGameStat, error)
	UpsertTeamStat(ctx context.Context, line model.TeamGameStat) (model.TeamGameStat, error)
	GamePlayerStats(ctx context.Context, gameID int64) ([]model.PlayerGameStat, error)
	GameTeamStats(ctx context.Context, gameID int64) ([]model.TeamGameStat, error)
	PlayerGameLog(ctx context.Context, playerID, seasonID int64, page repository.Page) (repository.PageResult[model.PlayerGameStat], error)
	TeamGameLog(ctx context.Context, teamID, seasonID int64, page repository.Page) (repository.PageResult[model.TeamGameStat], error)
}

// QueryTypeInfo documents one query type for the catalog endpoint.
type QueryTypeInfo struct {
	QueryType   model.QueryType `json:"queryType"`
	Description string          `json:"description"`
	Required    []string        `json:"required"`
	Optional    []string        `json:"optional"`
	DefaultBy   model.GroupBy   `json:"defaultGroupBy,omitempty"`
}

var queryTypeDescriptions = map[model.QueryType]string{
	model.QueryVsTeam:               "player averages against one opponent team",
	model.QueryVsPosition:           "player averages in games where the opponent fielded a position",
	model.QueryVsAllTeams:           "player averages split by opponent team",
	model.QueryInPositionVsTeam:     "player averages at a recorded position against one opponent team",
	model.QueryInPositionVsAllTeams: "player averages at a recorded position split by opponent team",
	model.QueryVsPlayer:             "head-to-head averages of two players on opposite sides",
}

var optionalParams = []string{"seasonId", "fields", "groupBy", "orderBy", "orderDirection", "limit"}

// queryTypeCatalog is derived from the composer's requirement table.
func queryTypeCatalog() []QueryTypeInfo {
	out := make([]QueryTypeInfo, 0, len(model.QueryTypes()))
	for _, qt := range model.QueryTypes() {
		out = append(out, QueryTypeInfo{
			QueryType:   qt,
			Description: queryTypeDescriptions[qt],
			Required:    query.RequiredParams(qt),
			Optional:    optionalParams,
			DefaultBy:   query.DefaultGroup(qt),
		})
	}
	return out
}
