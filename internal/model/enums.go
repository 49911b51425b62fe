package model

import "strings"

// Position is a player's on-court role, recorded per game.
type Position string

const (
	PositionC  Position = "C"
	PositionCF Position = "C-F"
	PositionF  Position = "F"
	PositionFC Position = "F-C"
	PositionFG Position = "F-G"
	PositionG  Position = "G"
	PositionGF Position = "G-F"
	PositionNA Position = "NA"
	PositionPF Position = "PF"
	PositionSF Position = "SF"
	PositionSG Position = "SG"
)

var positionNames = map[Position]string{
	PositionC:  "Center",
	PositionCF: "Center-Forward",
	PositionF:  "Forward",
	PositionFC: "Forward-Center",
	PositionFG: "Forward-Guard",
	PositionG:  "Guard",
	PositionGF: "Guard-Forward",
	PositionNA: "Not Available",
	PositionPF: "Power Forward",
	PositionSF: "Small Forward",
	PositionSG: "Shooting Guard",
}

// Positions returns every valid position in catalog order.
func Positions() []Position {
	return []Position{
		PositionC, PositionCF, PositionF, PositionFC, PositionFG,
		PositionG, PositionGF, PositionNA, PositionPF, PositionSF, PositionSG,
	}
}

// ParsePosition matches s case-insensitively against the catalog.
func ParsePosition(s string) (Position, bool) {
	p := Position(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := positionNames[p]
	return p, ok
}

// Valid reports whether p is a catalog member.
func (p Position) Valid() bool {
	_, ok := positionNames[p]
	return ok
}

// DisplayName is the human readable name, falling back to the code.
func (p Position) DisplayName() string {
	if n, ok := positionNames[p]; ok {
		return n
	}
	return string(p)
}

// QueryType selects the shape of a player statistics request.
type QueryType string

const (
	QueryVsTeam               QueryType = "vs-team"
	QueryVsPosition           QueryType = "vs-position"
	QueryVsAllTeams           QueryType = "vs-all-teams"
	QueryInPositionVsTeam     QueryType = "in-position-vs-team"
	QueryInPositionVsAllTeams QueryType = "in-position-vs-all-teams"
	QueryVsPlayer             QueryType = "vs-player"
)

// QueryTypes lists every supported query type.
func QueryTypes() []QueryType {
	return []QueryType{
		QueryVsTeam, QueryVsPosition, QueryVsAllTeams,
		QueryInPositionVsTeam, QueryInPositionVsAllTeams, QueryVsPlayer,
	}
}

// Valid reports whether q is supported.
func (q QueryType) Valid() bool {
	for _, k := range QueryTypes() {
		if k == q {
			return true
		}
	}
	return false
}

// GroupBy is the optional grouping dimension of a statistics query.
type GroupBy string

const (
	GroupNone     GroupBy = ""
	GroupTeam     GroupBy = "team"
	GroupPosition GroupBy = "position"
	GroupGame     GroupBy = "game"
	GroupSeason   GroupBy = "season"
)

// Direction is an ORDER BY direction.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)
