// Package model contains domain entities and DTOs used across layers.
// I keep it lean and focused on data shapes without behavior.
package model

import "time"

// League groups teams (NBA, G-League, ...).
type League struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Season represents a league year. At most one season is current.
type Season struct {
	ID        int64     `json:"id"`
	Year      int       `json:"year"`
	IsCurrent bool      `json:"is_current"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Team represents a basketball team.
type Team struct {
	ID        int64     `json:"id"`
	LeagueID  *int64    `json:"league_id,omitempty"`
	Name      string    `json:"name"`
	NickName  string    `json:"nickname"`
	Code      string    `json:"code"`
	City      string    `json:"city"`
	LogoURL   string    `json:"logo_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Player represents an athlete belonging to a team.
// Position here is the canonical one; per-game positions live on PlayerGameStat.
type Player struct {
	ID        int64     `json:"id"`
	TeamID    int64     `json:"team_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Position  Position  `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName joins first and last name.
func (p Player) FullName() string {
	if p.FirstName == "" {
		return p.LastName
	}
	return p.FirstName + " " + p.LastName
}

// Game statuses as stored in games.status.
const (
	GameStatusScheduled  = "Scheduled"
	GameStatusInProgress = "InProgress"
	GameStatusHalftime   = "Halftime"
	GameStatusFinished   = "Finished"
	GameStatusPostponed  = "Postponed"
	GameStatusCanceled   = "Canceled"
)

// Game represents a scheduled or finished match.
type Game struct {
	ID            int64      `json:"id"`
	SeasonID      int64      `json:"season_id"`
	LeagueID      *int64     `json:"league_id,omitempty"`
	HomeTeamID    int64      `json:"home_team_id"`
	VisitorTeamID int64      `json:"visitor_team_id"`
	StartDate     time.Time  `json:"start_date"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	Status        string     `json:"status"`
	CurrentPeriod int        `json:"current_period"`
	TotalPeriods  int        `json:"total_periods"`
	Clock         string     `json:"clock,omitempty"`
	IsHalftime    bool       `json:"is_halftime"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// OpponentOf returns the other side of the game for teamID.
// ok is false when teamID took no part in the game.
func (g Game) OpponentOf(teamID int64) (opponent int64, ok bool) {
	switch teamID {
	case g.HomeTeamID:
		return g.VisitorTeamID, true
	case g.VisitorTeamID:
		return g.HomeTeamID, true
	default:
		return 0, false
	}
}

// PlayerGameStat is one box-score line per (player, game).
// TeamID is the team the player played for in that game and must be one of the game's sides.
type PlayerGameStat struct {
	ID                 int64     `json:"id"`
	PlayerID           int64     `json:"player_id"`
	GameID             int64     `json:"game_id"`
	TeamID             int64     `json:"team_id"`
	Position           Position  `json:"position"`
	Minutes            float32   `json:"minutes"`
	Points             int       `json:"points"`
	FieldGoalsMade     int       `json:"field_goals_made"`
	FieldGoalsAttempt  int       `json:"field_goals_attempt"`
	ThreePointsMade    int       `json:"three_points_made"`
	ThreePointsAttempt int       `json:"three_points_attempt"`
	FreeThrowsMade     int       `json:"free_throws_made"`
	FreeThrowsAttempt  int       `json:"free_throws_attempt"`
	OffensiveRebounds  int       `json:"offensive_rebounds"`
	DefensiveRebounds  int       `json:"defensive_rebounds"`
	TotalRebounds      int       `json:"total_rebounds"`
	Assists            int       `json:"assists"`
	Steals             int       `json:"steals"`
	Blocks             int       `json:"blocks"`
	Turnovers          int       `json:"turnovers"`
	PersonalFouls      int       `json:"personal_fouls"`
	PlusMinus          int       `json:"plus_minus"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TeamGameStat is the aggregated team box score for one game.
type TeamGameStat struct {
	ID            int64     `json:"id"`
	TeamID        int64     `json:"team_id"`
	GameID        int64     `json:"game_id"`
	Points        int       `json:"points"`
	PointsQ1      int       `json:"points_q1"`
	PointsQ2      int       `json:"points_q2"`
	PointsQ3      int       `json:"points_q3"`
	PointsQ4      int       `json:"points_q4"`
	Win           bool      `json:"win"`
	Loss          bool      `json:"loss"`
	TotalRebounds int       `json:"total_rebounds"`
	Assists       int       `json:"assists"`
	Turnovers     int       `json:"turnovers"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// StatRow is one flat record returned by a composed statistics query.
// Keys are the projection aliases (PlayerId, AveragePoints, ...).
type StatRow map[string]any
