package query

import (
	"errors"
	"fmt"

	"github.com/maxviazov/matchup-stats-service/internal/model"
)

// ErrIncompleteFilter is returned when a filter lacks a field its query type needs.
// The normalizer rejects such input first, so reaching it means a caller skipped normalization.
var ErrIncompleteFilter = errors.New("query: incomplete filter")

// Filter is the normalized input of a player statistics query.
// Zero values mean "not set".
type Filter struct {
	QueryType      model.QueryType
	PlayerID       int64
	PlayerID2      int64
	EnemyTeamID    int64
	EnemyPosition  model.Position
	PlayerPosition model.Position
	SeasonID       int64
	Fields         []string
	GroupBy        model.GroupBy
	OrderBy        string
	OrderDirection model.Direction
	Limit          int
}

// MatchupFilter is the normalized input of the team-vs-team endpoints.
type MatchupFilter struct {
	TeamID1        int64
	TeamID2        int64
	SeasonID       int64
	Position       model.Position
	OrderBy        string
	OrderDirection model.Direction
	Limit          int
}

// Required parameter names per query type, shared with the normalizer.
var requiredParams = map[model.QueryType][]string{
	model.QueryVsTeam:               {"playerId", "enemyTeamId"},
	model.QueryVsPosition:           {"playerId", "enemyPosition"},
	model.QueryVsAllTeams:           {"playerId"},
	model.QueryInPositionVsTeam:     {"playerId", "enemyTeamId", "playerPosition"},
	model.QueryInPositionVsAllTeams: {"playerId", "playerPosition"},
	model.QueryVsPlayer:             {"playerId", "playerId2"},
}

// RequiredParams lists the request parameters qt cannot run without.
func RequiredParams(qt model.QueryType) []string {
	return requiredParams[qt]
}

// DefaultGroup is the grouping applied when the caller does not choose one.
func DefaultGroup(qt model.QueryType) model.GroupBy {
	switch qt {
	case model.QueryVsTeam, model.QueryVsAllTeams, model.QueryInPositionVsTeam, model.QueryInPositionVsAllTeams:
		return model.GroupTeam
	default:
		return model.GroupNone
	}
}

const (
	statsFrom  = "player_game_stats ps"
	playerName = "p.first_name || ' ' || p.last_name"
)

// sidesGuard keeps only stat lines whose team actually took part in the game.
var sidesGuard = Or{
	ColEq{Left: "g.home_team_id", Right: "ps.team_id"},
	ColEq{Left: "g.visitor_team_id", Right: "ps.team_id"},
}

var baseJoins = []Join{
	{Table: "games", Alias: "g", On: ColEq{Left: "g.id", Right: "ps.game_id"}},
	{Table: "players", Alias: "p", On: ColEq{Left: "p.id", Right: "ps.player_id"}},
}

var enemyTeamJoin = Join{Table: "teams", Alias: "et", On: ColEq{Left: "et.id", Right: exprOpponent}}

// Compose maps a normalized filter to a statistics descriptor.
func Compose(f Filter) (Descriptor, error) {
	if !f.QueryType.Valid() {
		return Descriptor{}, fmt.Errorf("%w: unsupported query type %q", ErrIncompleteFilter, f.QueryType)
	}
	if err := checkRequired(f); err != nil {
		return Descriptor{}, err
	}

	group := f.GroupBy
	if group == model.GroupNone {
		group = DefaultGroup(f.QueryType)
	}
	orderBy := f.OrderBy
	if orderBy == "" {
		orderBy = DefaultOrderBy
	}
	if !IsOrderable(orderBy) {
		return Descriptor{}, fmt.Errorf("%w: order field %q is not allow-listed", ErrIncompleteFilter, orderBy)
	}
	dir := f.OrderDirection
	if dir != model.Asc {
		dir = model.Desc
	}

	d := Descriptor{
		QueryType: f.QueryType,
		From:      statsFrom,
		Joins:     append([]Join(nil), baseJoins...),
		Limit:     f.Limit,
		Group:     group,
		Metric:    orderBy,
		Direction: dir,
	}

	where := And{Eq{Expr: "ps.player_id", Value: f.PlayerID}, sidesGuard}

	switch f.QueryType {
	case model.QueryVsTeam:
		where = append(where, Eq{Expr: exprOpponent, Value: f.EnemyTeamID})
	case model.QueryVsPosition:
		where = append(where, opposingPositionExists(f.EnemyPosition))
	case model.QueryVsAllTeams:
	case model.QueryInPositionVsTeam:
		where = append(where,
			Eq{Expr: exprOpponent, Value: f.EnemyTeamID},
			Eq{Expr: "ps.position", Value: string(f.PlayerPosition)},
		)
	case model.QueryInPositionVsAllTeams:
		where = append(where, Eq{Expr: "ps.position", Value: string(f.PlayerPosition)})
	case model.QueryVsPlayer:
		d.Joins = append(d.Joins,
			Join{Table: "player_game_stats", Alias: "ops", On: And{
				ColEq{Left: "ops.game_id", Right: "ps.game_id"},
				Eq{Expr: "ops.player_id", Value: f.PlayerID2},
				ColNe{Left: "ops.team_id", Right: "ps.team_id"},
			}},
			Join{Table: "players", Alias: "p2", On: ColEq{Left: "p2.id", Right: "ops.player_id"}},
		)
	}

	if f.SeasonID > 0 {
		where = append(where, Eq{Expr: "g.season_id", Value: f.SeasonID})
	}
	d.Where = where

	keys, groupExprs, tieBreak := groupKeys(f.QueryType, group)
	if group == model.GroupTeam || group == model.GroupGame {
		d.Joins = append(d.Joins, enemyTeamJoin)
	}

	d.Projection = append(d.Projection, keys...)
	d.Projection = append(d.Projection, projectMetrics(f.Fields, orderBy)...)
	if f.QueryType == model.QueryVsPlayer {
		d.Projection = append(d.Projection,
			Column{Alias: "Player2AveragePoints", Expr: avg("ops.points")},
			Column{Alias: "Player2AverageRebounds", Expr: avg("ops.total_rebounds")},
			Column{Alias: "Player2AverageAssists", Expr: avg("ops.assists")},
		)
	}
	d.GroupBy = groupExprs
	d.OrderBy = []Order{{Alias: orderBy, Dir: dir}, {Alias: tieBreak, Dir: model.Asc}}

	return d, nil
}

func checkRequired(f Filter) error {
	missing := func(name string) error {
		return fmt.Errorf("%w: %s is required for %s", ErrIncompleteFilter, name, f.QueryType)
	}
	for _, p := range requiredParams[f.QueryType] {
		switch p {
		case "playerId":
			if f.PlayerID <= 0 {
				return missing(p)
			}
		case "playerId2":
			if f.PlayerID2 <= 0 {
				return missing(p)
			}
		case "enemyTeamId":
			if f.EnemyTeamID <= 0 {
				return missing(p)
			}
		case "enemyPosition":
			if !f.EnemyPosition.Valid() {
				return missing(p)
			}
		case "playerPosition":
			if !f.PlayerPosition.Valid() {
				return missing(p)
			}
		}
	}
	return nil
}

// opposingPositionExists matches games where someone on the other side played pos.
func opposingPositionExists(pos model.Position) Predicate {
	return Exists{
		Table: "player_game_stats",
		Alias: "ops",
		Where: And{
			ColEq{Left: "ops.game_id", Right: "ps.game_id"},
			ColNe{Left: "ops.team_id", Right: "ps.team_id"},
			Eq{Expr: "ops.position", Value: string(pos)},
		},
	}
}

// groupKeys returns the identifying columns, the GROUP BY expressions and the tie-break alias.
func groupKeys(qt model.QueryType, group model.GroupBy) ([]Column, []string, string) {
	var (
		cols     []Column
		exprs    []string
		tieBreak string
	)
	if qt == model.QueryVsPlayer {
		cols = []Column{
			{Alias: "Player1Id", Expr: "ps.player_id"},
			{Alias: "Player1Name", Expr: playerName},
			{Alias: "Player2Id", Expr: "ops.player_id"},
			{Alias: "Player2Name", Expr: "p2.first_name || ' ' || p2.last_name"},
		}
		exprs = []string{"ps.player_id", "p.first_name", "p.last_name", "ops.player_id", "p2.first_name", "p2.last_name"}
		tieBreak = "Player1Id"
	} else {
		cols = []Column{
			{Alias: "PlayerId", Expr: "ps.player_id"},
			{Alias: "PlayerName", Expr: playerName},
		}
		exprs = []string{"ps.player_id", "p.first_name", "p.last_name"}
		tieBreak = "PlayerId"
	}

	switch group {
	case model.GroupTeam:
		cols = append(cols,
			Column{Alias: "EnemyTeamId", Expr: exprOpponent},
			Column{Alias: "EnemyTeamName", Expr: "et.name"},
		)
		exprs = append(exprs, exprOpponent, "et.name")
		tieBreak = "EnemyTeamId"
	case model.GroupPosition:
		cols = append(cols, Column{Alias: "Position", Expr: "ps.position"})
		exprs = append(exprs, "ps.position")
		tieBreak = "Position"
	case model.GroupGame:
		cols = append(cols,
			Column{Alias: "GameId", Expr: "g.id"},
			Column{Alias: "GameDate", Expr: "g.start_date"},
			Column{Alias: "EnemyTeamId", Expr: exprOpponent},
			Column{Alias: "EnemyTeamName", Expr: "et.name"},
		)
		exprs = append(exprs, "g.id", "g.start_date", exprOpponent, "et.name")
		tieBreak = "GameId"
	case model.GroupSeason:
		cols = append(cols, Column{Alias: "SeasonId", Expr: "g.season_id"})
		exprs = append(exprs, "g.season_id")
		tieBreak = "SeasonId"
	}
	return cols, exprs, tieBreak
}

// projectMetrics resolves requested fields against the allow-list, keeping request order.
// The order-by metric is always projected.
func projectMetrics(fields []string, orderBy string) []Column {
	names := fields
	if len(names) == 0 {
		names = defaultMetrics
	}
	seen := make(map[string]struct{}, len(names)+1)
	out := make([]Column, 0, len(names)+1)
	add := func(n string) {
		expr, ok := metricIndex[n]
		if !ok {
			return
		}
		if _, dup := seen[n]; dup {
			return
		}
		seen[n] = struct{}{}
		out = append(out, Column{Alias: n, Expr: expr})
	}
	for _, n := range names {
		add(n)
	}
	add(orderBy)
	return out
}

// ComposeTeamMatchupPlayers builds the per-player aggregate of two teams' head-to-head games.
// Every returned row carries TeamId so the caller can split it by side.
func ComposeTeamMatchupPlayers(f MatchupFilter) (Descriptor, error) {
	if f.TeamID1 <= 0 || f.TeamID2 <= 0 || f.TeamID1 == f.TeamID2 {
		return Descriptor{}, fmt.Errorf("%w: two distinct teams are required", ErrIncompleteFilter)
	}
	orderBy := f.OrderBy
	if orderBy == "" {
		orderBy = DefaultOrderBy
	}
	if !IsOrderable(orderBy) {
		return Descriptor{}, fmt.Errorf("%w: order field %q is not allow-listed", ErrIncompleteFilter, orderBy)
	}
	dir := f.OrderDirection
	if dir != model.Asc {
		dir = model.Desc
	}

	teams := []any{f.TeamID1, f.TeamID2}
	where := And{
		In{Expr: "ps.team_id", Values: teams},
		In{Expr: exprOpponent, Values: teams},
		sidesGuard,
	}
	if f.SeasonID > 0 {
		where = append(where, Eq{Expr: "g.season_id", Value: f.SeasonID})
	}
	if f.Position != "" {
		where = append(where, Eq{Expr: "ps.position", Value: string(f.Position)})
	}

	joins := append([]Join(nil), baseJoins...)
	joins = append(joins,
		Join{Table: "teams", Alias: "t", On: ColEq{Left: "t.id", Right: "ps.team_id"}},
		enemyTeamJoin,
	)

	proj := []Column{
		{Alias: "PlayerId", Expr: "ps.player_id"},
		{Alias: "PlayerName", Expr: playerName},
		{Alias: "TeamId", Expr: "ps.team_id"},
		{Alias: "TeamName", Expr: "t.name"},
		{Alias: "EnemyTeamId", Expr: exprOpponent},
		{Alias: "EnemyTeamName", Expr: "et.name"},
	}
	proj = append(proj, projectMetrics(nil, orderBy)...)

	return Descriptor{
		QueryType:  "team-vs-team",
		From:       statsFrom,
		Joins:      joins,
		Projection: proj,
		Where:      where,
		GroupBy:    []string{"ps.player_id", "p.first_name", "p.last_name", "ps.team_id", "t.name", exprOpponent, "et.name"},
		OrderBy:    []Order{{Alias: orderBy, Dir: dir}, {Alias: "PlayerId", Dir: model.Asc}},
		Limit:      f.Limit,
		Group:      model.GroupNone,
		Metric:     orderBy,
		Direction:  dir,
	}, nil
}

// ComposeTeamPositionStats aggregates a team's output per recorded position.
// opponentID of 0 means every opponent.
func ComposeTeamPositionStats(teamID, opponentID, seasonID int64) (Descriptor, error) {
	if teamID <= 0 {
		return Descriptor{}, fmt.Errorf("%w: team id is required", ErrIncompleteFilter)
	}
	where := And{Eq{Expr: "ps.team_id", Value: teamID}, sidesGuard}
	if opponentID > 0 {
		where = append(where, Eq{Expr: exprOpponent, Value: opponentID})
	}
	if seasonID > 0 {
		where = append(where, Eq{Expr: "g.season_id", Value: seasonID})
	}

	const games = "COUNT(DISTINCT ps.game_id)"
	perGame := func(col string) string {
		return fmt.Sprintf("ROUND(SUM(%s)::numeric / NULLIF(%s, 0), 2)::float8", col, games)
	}

	return Descriptor{
		QueryType: "team-position-stats",
		From:      statsFrom,
		Joins:     []Join{baseJoins[0]},
		Projection: []Column{
			{Alias: "Position", Expr: "ps.position"},
			{Alias: "TeamId", Expr: "ps.team_id"},
			{Alias: "GamesPlayed", Expr: games},
			{Alias: "TotalPoints", Expr: "SUM(ps.points)"},
			{Alias: "TotalPointsOver20Min", Expr: "COALESCE(SUM(ps.points) FILTER (WHERE ps.minutes > 20), 0)"},
			{Alias: "TotalRebounds", Expr: "SUM(ps.total_rebounds)"},
			{Alias: "TotalAssists", Expr: "SUM(ps.assists)"},
			{Alias: "TotalTurnovers", Expr: "SUM(ps.turnovers)"},
			{Alias: "TotalFouls", Expr: "SUM(ps.personal_fouls)"},
			{Alias: "TotalBlocks", Expr: "SUM(ps.blocks)"},
			{Alias: "AveragePointsPerGame", Expr: perGame("ps.points")},
			{Alias: "AverageReboundsPerGame", Expr: perGame("ps.total_rebounds")},
			{Alias: "AverageAssistsPerGame", Expr: perGame("ps.assists")},
			{Alias: "LastUpdated", Expr: "MAX(ps.updated_at)"},
		},
		Where:     where,
		GroupBy:   []string{"ps.position", "ps.team_id"},
		OrderBy:   []Order{{Alias: "Position", Dir: model.Asc}},
		Group:     model.GroupPosition,
		Metric:    "Position",
		Direction: model.Asc,
	}, nil
}

// headToHeadMetrics are the per-player averages reported for each side of a head-to-head.
var headToHeadMetrics = []string{
	"AveragePoints",
	"AverageFieldGoalsMade",
	"AverageFieldGoalsAttempted",
	"AverageThreePointsMade",
	"AverageThreePointsAttempted",
	"AverageFreeThrowsMade",
	"AverageFreeThrowsAttempted",
	"AverageOffensiveRebounds",
	"AverageDefensiveRebounds",
	"AverageRebounds",
	"AverageAssists",
	"AveragePersonalFouls",
	"AverageSteals",
	"AverageTurnovers",
	"AverageBlocks",
}

// ComposeTeamHeadToHead aggregates teamID's output over its games against opponentID.
// The result has at most one row.
func ComposeTeamHeadToHead(teamID, opponentID, seasonID int64) (Descriptor, error) {
	if teamID <= 0 || opponentID <= 0 || teamID == opponentID {
		return Descriptor{}, fmt.Errorf("%w: two distinct teams are required", ErrIncompleteFilter)
	}
	where := And{
		Eq{Expr: "ps.team_id", Value: teamID},
		Eq{Expr: exprOpponent, Value: opponentID},
		sidesGuard,
	}
	if seasonID > 0 {
		where = append(where, Eq{Expr: "g.season_id", Value: seasonID})
	}

	const games = "COUNT(DISTINCT ps.game_id)"
	proj := []Column{
		{Alias: "TeamId", Expr: "ps.team_id"},
		{Alias: "TeamName", Expr: "t.name"},
		{Alias: "NumGames", Expr: games},
		{Alias: "AverageTeamPoints", Expr: fmt.Sprintf("ROUND(SUM(ps.points)::numeric / NULLIF(%s, 0), 2)::float8", games)},
	}
	proj = append(proj, projectMetrics(headToHeadMetrics, "AveragePoints")...)

	return Descriptor{
		QueryType: "team-head-to-head",
		From:      statsFrom,
		Joins: []Join{
			baseJoins[0],
			{Table: "teams", Alias: "t", On: ColEq{Left: "t.id", Right: "ps.team_id"}},
		},
		Projection: proj,
		Where:      where,
		GroupBy:    []string{"ps.team_id", "t.name"},
		OrderBy:    []Order{{Alias: "TeamId", Dir: model.Asc}},
		Group:      model.GroupTeam,
		Metric:     "TeamId",
		Direction:  model.Asc,
	}, nil
}
