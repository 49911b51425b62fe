package service

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/maxviazov/matchup-stats-service/internal/model"
	"github.com/maxviazov/matchup-stats-service/internal/query"
	"github.com/maxviazov/matchup-stats-service/internal/repository"
)

// Meta echoes the resolved request shape next to list results.
type Meta struct {
	QueryType      model.QueryType `json:"queryType"`
	TotalResults   int             `json:"totalResults"`
	Fields         []string        `json:"fields"`
	GroupBy        model.GroupBy   `json:"groupBy,omitempty"`
	OrderBy        string          `json:"orderBy"`
	OrderDirection model.Direction `json:"orderDirection"`
	Limit          int             `json:"limit,omitempty"`
}

// ListResult is a list query outcome: rows plus their metadata.
type ListResult struct {
	Data []model.StatRow `json:"data"`
	Meta Meta            `json:"meta"`
}

// ShapeList wraps rows with the descriptor's metadata. Zero rows is a valid empty list.
func ShapeList(d query.Descriptor, rows []model.StatRow) ListResult {
	if rows == nil {
		rows = []model.StatRow{}
	}
	return ListResult{
		Data: rows,
		Meta: Meta{
			QueryType:      d.QueryType,
			TotalResults:   len(rows),
			Fields:         d.Fields(),
			GroupBy:        d.Group,
			OrderBy:        d.Metric,
			OrderDirection: d.Direction,
			Limit:          d.Limit,
		},
	}
}

// ShapeSingle returns the first row, or ErrNotFound when nothing matched.
func ShapeSingle(rows []model.StatRow) (model.StatRow, error) {
	if len(rows) == 0 {
		return nil, repository.ErrNotFound
	}
	return rows[0], nil
}

// TeamPlayers is one side of a team-vs-team matchup.
type TeamPlayers struct {
	TeamID   int64           `json:"teamId"`
	TeamName string          `json:"teamName"`
	Players  []model.StatRow `json:"players"`
}

// MatchupFilters echoes the filters applied to a matchup request.
type MatchupFilters struct {
	SeasonID       int64           `json:"seasonId,omitempty"`
	Position       model.Position  `json:"position,omitempty"`
	OrderBy        string          `json:"orderBy"`
	OrderDirection model.Direction `json:"orderDirection"`
	Limit          int             `json:"limit,omitempty"`
}

// MatchupPlayers is the partitioned team-vs-team player list.
type MatchupPlayers struct {
	Team1        TeamPlayers    `json:"team1"`
	Team2        TeamPlayers    `json:"team2"`
	TotalPlayers int            `json:"totalPlayers"`
	Filters      MatchupFilters `json:"filters"`
}

// PartitionByTeam splits rows by their TeamId into the two requested sides.
// A row belonging to neither side is reported as ErrPartitionMismatch.
func PartitionByTeam(rows []model.StatRow, team1, team2 int64) (side1, side2 []model.StatRow, err error) {
	side1, side2 = []model.StatRow{}, []model.StatRow{}
	for i, r := range rows {
		id, ok := asInt64(r["TeamId"])
		switch {
		case ok && id == team1:
			side1 = append(side1, r)
		case ok && id == team2:
			side2 = append(side2, r)
		default:
			return nil, nil, fmt.Errorf("%w: row %d has TeamId %v", ErrPartitionMismatch, i, r["TeamId"])
		}
	}
	return side1, side2, nil
}

// Leader names the best player of a team for one metric.
type Leader struct {
	PlayerID   int64   `json:"playerId"`
	PlayerName string  `json:"playerName"`
	Value      float64 `json:"value"`
}

// TeamSummary condenses one side of a matchup.
type TeamSummary struct {
	TeamID           int64   `json:"teamId"`
	TeamName         string  `json:"teamName"`
	PlayerCount      int     `json:"playerCount"`
	AveragePoints    float64 `json:"averagePoints"`
	AverageRebounds  float64 `json:"averageRebounds"`
	AverageAssists   float64 `json:"averageAssists"`
	TotalGames       int64   `json:"totalGames"`
	TopScorer        *Leader `json:"topScorer,omitempty"`
	TopRebounder     *Leader `json:"topRebounder,omitempty"`
	TopAssistsLeader *Leader `json:"topAssistsLeader,omitempty"`
}

// MatchupSummary is the summary view of a team-vs-team matchup.
type MatchupSummary struct {
	Team1   TeamSummary    `json:"team1"`
	Team2   TeamSummary    `json:"team2"`
	Filters MatchupFilters `json:"filters"`
}

// Summarize condenses already aggregated player rows. Averages are the mean
// of per-player averages; TotalGames is the largest GamesPlayed on the side.
func Summarize(teamID int64, teamName string, players []model.StatRow) TeamSummary {
	s := TeamSummary{TeamID: teamID, TeamName: teamName, PlayerCount: len(players)}
	if len(players) == 0 {
		return s
	}
	var pts, reb, ast float64
	for _, r := range players {
		pts += asFloat(r["AveragePoints"])
		reb += asFloat(r["AverageRebounds"])
		ast += asFloat(r["AverageAssists"])
		if g, ok := asInt64(r["GamesPlayed"]); ok && g > s.TotalGames {
			s.TotalGames = g
		}
	}
	n := float64(len(players))
	s.AveragePoints = round2(pts / n)
	s.AverageRebounds = round2(reb / n)
	s.AverageAssists = round2(ast / n)
	s.TopScorer = leaderBy(players, "AveragePoints")
	s.TopRebounder = leaderBy(players, "AverageRebounds")
	s.TopAssistsLeader = leaderBy(players, "AverageAssists")
	return s
}

// leaderBy picks the highest metric, first row wins ties.
func leaderBy(rows []model.StatRow, metric string) *Leader {
	var best *Leader
	for _, r := range rows {
		v, ok := r[metric]
		if !ok || v == nil {
			continue
		}
		f := asFloat(v)
		if best != nil && f <= best.Value {
			continue
		}
		id, _ := asInt64(r["PlayerId"])
		name, _ := r["PlayerName"].(string)
		best = &Leader{PlayerID: id, PlayerName: name, Value: f}
	}
	return best
}

// MatchupPositionStats holds the four position-grouped views of a matchup.
type MatchupPositionStats struct {
	Team1VsTeam2 []model.StatRow `json:"team1VsTeam2"`
	Team2VsTeam1 []model.StatRow `json:"team2VsTeam1"`
	Team1VsAll   []model.StatRow `json:"team1VsAll"`
	Team2VsAll   []model.StatRow `json:"team2VsAll"`
	SeasonID     int64           `json:"seasonId,omitempty"`
}

// TeamPositionStats is a team's position-grouped output against every opponent.
type TeamPositionStats struct {
	TeamID    int64           `json:"teamId"`
	SeasonID  int64           `json:"seasonId,omitempty"`
	Positions []model.StatRow `json:"positions"`
}

// TeamHeadToHead is each team's aggregate over the games the two played against each other.
// A side with no recorded stat lines is null.
type TeamHeadToHead struct {
	Team1    model.StatRow `json:"team1"`
	Team2    model.StatRow `json:"team2"`
	SeasonID int64         `json:"seasonId,omitempty"`
}

func nonNil(rows []model.StatRow) []model.StatRow {
	if rows == nil {
		return []model.StatRow{}
	}
	return rows
}

// asInt64 accepts the numeric shapes pgx and encoding/json produce.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int:
		return int64(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	default:
		return 0, false
	}
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case int:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	default:
		return 0
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
