package query

import (
	"fmt"
	"strings"
)

// Opponent resolves the opposing team of a stat line from the game it belongs to.
const exprOpponent = "CASE WHEN g.home_team_id = ps.team_id THEN g.visitor_team_id ELSE g.home_team_id END"

func avg(col string) string {
	return fmt.Sprintf("ROUND(AVG(%s)::numeric, 2)::float8", col)
}

func pct(made, attempted string) string {
	return fmt.Sprintf("ROUND(SUM(%s)::numeric * 100 / NULLIF(SUM(%s), 0), 2)::float8", made, attempted)
}

func over(n int) string {
	return fmt.Sprintf("COUNT(*) FILTER (WHERE ps.points > %d)", n)
}

// metric is an allow-listed aggregate over player_game_stats ps.
type metric struct {
	alias string
	expr  string
}

var metricList = []metric{
	{"GamesPlayed", "COUNT(*)"},
	{"AveragePoints", avg("ps.points")},
	{"AverageRebounds", avg("ps.total_rebounds")},
	{"AverageAssists", avg("ps.assists")},
	{"AverageSteals", avg("ps.steals")},
	{"AverageBlocks", avg("ps.blocks")},
	{"AverageTurnovers", avg("ps.turnovers")},
	{"AverageMinutes", avg("ps.minutes")},
	{"AverageOffensiveRebounds", avg("ps.offensive_rebounds")},
	{"AverageDefensiveRebounds", avg("ps.defensive_rebounds")},
	{"AveragePersonalFouls", avg("ps.personal_fouls")},
	{"AveragePlusMinus", avg("ps.plus_minus")},
	{"AverageFieldGoalsMade", avg("ps.field_goals_made")},
	{"AverageFieldGoalsAttempted", avg("ps.field_goals_attempt")},
	{"AverageThreePointsMade", avg("ps.three_points_made")},
	{"AverageThreePointsAttempted", avg("ps.three_points_attempt")},
	{"AverageFreeThrowsMade", avg("ps.free_throws_made")},
	{"AverageFreeThrowsAttempted", avg("ps.free_throws_attempt")},
	{"FieldGoalPercentage", pct("ps.field_goals_made", "ps.field_goals_attempt")},
	{"ThreePointPercentage", pct("ps.three_points_made", "ps.three_points_attempt")},
	{"FreeThrowPercentage", pct("ps.free_throws_made", "ps.free_throws_attempt")},
	{"MaxPoints", "MAX(ps.points)"},
	{"MinPoints", "MIN(ps.points)"},
	{"MaxRebounds", "MAX(ps.total_rebounds)"},
	{"MinRebounds", "MIN(ps.total_rebounds)"},
	{"MaxAssists", "MAX(ps.assists)"},
	{"MinAssists", "MIN(ps.assists)"},
	{"GamesOver20Points", over(20)},
	{"GamesOver30Points", over(30)},
	{"GamesOver40Points", over(40)},
	{"LastUpdated", "MAX(ps.updated_at)"},
}

var metricIndex = func() map[string]string {
	m := make(map[string]string, len(metricList))
	for _, x := range metricList {
		m[x.alias] = x.expr
	}
	return m
}()

// defaultMetrics is projected when the caller does not pick fields.
var defaultMetrics = []string{
	"GamesPlayed",
	"AveragePoints",
	"AverageRebounds",
	"AverageAssists",
	"AverageSteals",
	"AverageBlocks",
	"AverageTurnovers",
	"AverageMinutes",
	"FieldGoalPercentage",
	"ThreePointPercentage",
	"FreeThrowPercentage",
	"MaxPoints",
	"MinPoints",
	"GamesOver20Points",
	"GamesOver30Points",
	"LastUpdated",
}

// DefaultOrderBy is the metric results are ranked by when none is requested.
const DefaultOrderBy = "AveragePoints"

// IsField reports whether name is an allow-listed projection field.
func IsField(name string) bool {
	_, ok := metricIndex[name]
	return ok
}

// CanonicalField resolves name case-insensitively to its allow-listed spelling.
func CanonicalField(name string) (string, bool) {
	if _, ok := metricIndex[name]; ok {
		return name, true
	}
	for _, m := range metricList {
		if strings.EqualFold(m.alias, name) {
			return m.alias, true
		}
	}
	return "", false
}

// IsOrderable reports whether name may be used as an order-by field.
// Every allow-listed metric is orderable.
func IsOrderable(name string) bool { return IsField(name) }

// FieldNames lists the allow-listed fields in catalog order.
func FieldNames() []string {
	out := make([]string, len(metricList))
	for i, m := range metricList {
		out[i] = m.alias
	}
	return out
}

// DefaultFields lists the fields projected when none are requested.
func DefaultFields() []string {
	out := make([]string, len(defaultMetrics))
	copy(out, defaultMetrics)
	return out
}
