package repository

import (
	"context"
	"time"

	"github.com/maxviazov/matchup-stats-service/internal/model"
	"github.com/maxviazov/matchup-stats-service/internal/query"
)

// Pinger is a minimal readiness check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TxFunc is the unit of work executed within a transaction boundary.
type TxFunc func(ctx context.Context) error

// TxManager runs fn inside a transaction; repositories pick the tx up from ctx.
type TxManager interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// SeasonRepository reads league seasons.
type SeasonRepository interface {
	List(ctx context.Context) ([]model.Season, error)
	GetByID(ctx context.Context, id int64) (model.Season, error)
	GetByYear(ctx context.Context, year int) (model.Season, error)
	// Current returns ErrNotFound when no season is flagged current.
	Current(ctx context.Context) (model.Season, error)
}

// TeamRepository declares persistence operations for teams.
type TeamRepository interface {
	Create(ctx context.Context, t model.Team) (model.Team, error)
	GetByID(ctx context.Context, id int64) (model.Team, error)
	List(ctx context.Context, p Page) (PageResult[model.Team], error)
	ListByLeague(ctx context.Context, leagueID int64) ([]model.Team, error)
	ListByCity(ctx context.Context, city string) ([]model.Team, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

// PlayerRepository declares persistence operations for players.
type PlayerRepository interface {
	Create(ctx context.Context, p model.Player) (model.Player, error)
	GetByID(ctx context.Context, id int64) (model.Player, error)
	ListByTeam(ctx context.Context, teamID int64, p Page) (PageResult[model.Player], error)
	ListByPosition(ctx context.Context, pos model.Position, p Page) (PageResult[model.Player], error)
	Exists(ctx context.Context, id int64) (bool, error)
}

// GameRepository declares persistence operations for games.
type GameRepository interface {
	Create(ctx context.Context, g model.Game) (model.Game, error)
	GetByID(ctx context.Context, id int64) (model.Game, error)
	List(ctx context.Context, p Page) (PageResult[model.Game], error)
	// ListBetween returns games starting in [from, to), earliest first.
	ListBetween(ctx context.Context, from, to time.Time) ([]model.Game, error)
	// ListUpcoming returns up to limit games starting at or after t, earliest first.
	ListUpcoming(ctx context.Context, t time.Time, limit int) ([]model.Game, error)
	// ListRecent returns up to limit games that started before t, latest first.
	ListRecent(ctx context.Context, t time.Time, limit int) ([]model.Game, error)
}

// PlayerStatsRepository stores one box-score line per (player, game).
type PlayerStatsRepository interface {
	Upsert(ctx context.Context, s model.PlayerGameStat) (model.PlayerGameStat, error)
	ListByGame(ctx context.Context, gameID int64) ([]model.PlayerGameStat, error)
	// ListByPlayer is the player's game log; seasonID 0 means every season.
	ListByPlayer(ctx context.Context, playerID, seasonID int64, p Page) (PageResult[model.PlayerGameStat], error)
}

// TeamStatsRepository stores one team box score per (team, game).
type TeamStatsRepository interface {
	Upsert(ctx context.Context, s model.TeamGameStat) (model.TeamGameStat, error)
	ListByGame(ctx context.Context, gameID int64) ([]model.TeamGameStat, error)
	// ListByTeam is the team's game log; seasonID 0 means every season.
	ListByTeam(ctx context.Context, teamID, seasonID int64, p Page) (PageResult[model.TeamGameStat], error)
}

// StatisticsRepository executes composed statistics descriptors.
// Rows come back as flat maps keyed by projection alias.
type StatisticsRepository interface {
	Query(ctx context.Context, d query.Descriptor) ([]model.StatRow, error)
}
