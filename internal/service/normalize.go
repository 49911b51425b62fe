package service

import (
	"regexp"
	"strings"

	"github.com/maxviazov/matchup-stats-service/internal/model"
	"github.com/maxviazov/matchup-stats-service/internal/query"
)

const defaultQueryType = model.QueryVsAllTeams

var fieldsPattern = regexp.MustCompile(`^[a-zA-Z0-9,]+$`)

// statisticsParams is the parsed but not yet trusted shape of a statistics request.
type statisticsParams struct {
	QueryType      string `param:"queryType" validate:"omitempty,querytype"`
	PlayerID       *int64 `param:"playerId" validate:"omitempty,gt=0"`
	PlayerID2      *int64 `param:"playerId2" validate:"omitempty,gt=0"`
	TeamID         *int64 `param:"teamId" validate:"omitempty,gt=0"`
	TeamID1        *int64 `param:"teamId1" validate:"omitempty,gt=0"`
	TeamID2        *int64 `param:"teamId2" validate:"omitempty,gt=0"`
	EnemyTeamID    *int64 `param:"enemyTeamId" validate:"omitempty,gt=0"`
	EnemyPosition  string `param:"enemyPosition" validate:"omitempty,position"`
	PlayerPosition string `param:"playerPosition" validate:"omitempty,position"`
	SeasonID       *int64 `param:"seasonId" validate:"omitempty,gt=0"`
	GroupBy        string `param:"groupBy" validate:"omitempty,oneof=team position game season"`
	OrderBy        string `param:"orderBy" validate:"omitempty,orderable"`
	OrderDirection string `param:"orderDirection" validate:"omitempty,oneof=ASC DESC"`
	Limit          *int   `param:"limit" validate:"omitempty,min=1,max=1000"`
}

// NormalizeStatistics validates raw statistics parameters and builds the composer filter.
// Every violation is reported at once as an aggregated ErrInvalidInput.
func NormalizeStatistics(raw map[string]string) (query.Filter, error) {
	p := newParser(raw)
	in := statisticsParams{
		QueryType:      strings.ToLower(p.str("queryType")),
		PlayerID:       p.id("playerId"),
		PlayerID2:      p.id("playerId2"),
		TeamID:         p.id("teamId"),
		TeamID1:        p.id("teamId1"),
		TeamID2:        p.id("teamId2"),
		EnemyTeamID:    p.id("enemyTeamId"),
		EnemyPosition:  strings.ToUpper(p.str("enemyPosition")),
		PlayerPosition: strings.ToUpper(p.str("playerPosition")),
		SeasonID:       p.id("seasonId"),
		GroupBy:        strings.ToLower(p.str("groupBy")),
		OrderBy:        canonicalOrField(p.str("orderBy")),
		OrderDirection: strings.ToUpper(p.str("orderDirection")),
		Limit:          p.num("limit"),
	}
	if in.QueryType == "" {
		in.QueryType = string(defaultQueryType)
	}

	errs := mergeFieldErrors(p.errs, structErrors(in))

	qt := model.QueryType(in.QueryType)
	if qt.Valid() {
		for _, name := range query.RequiredParams(qt) {
			if p.str(name) == "" && !hasField(errs, name) {
				errs = append(errs, FieldError{Field: name, Reason: "is required for queryType " + string(qt)})
			}
		}
	}

	fields, ferr := parseFields(p.str("fields"))
	if ferr != nil {
		errs = append(errs, *ferr)
	}

	if qt == model.QueryVsPlayer && in.PlayerID != nil && in.PlayerID2 != nil && *in.PlayerID == *in.PlayerID2 && !hasField(errs, "playerId2") {
		errs = append(errs, FieldError{Field: "playerId2", Reason: "must differ from playerId"})
	}

	if err := NewInvalidInputError(errs); err != nil {
		return query.Filter{}, err
	}

	return query.Filter{
		QueryType:      qt,
		PlayerID:       deref(in.PlayerID),
		PlayerID2:      deref(in.PlayerID2),
		EnemyTeamID:    deref(in.EnemyTeamID),
		EnemyPosition:  model.Position(in.EnemyPosition),
		PlayerPosition: model.Position(in.PlayerPosition),
		SeasonID:       deref(in.SeasonID),
		Fields:         fields,
		GroupBy:        model.GroupBy(in.GroupBy),
		OrderBy:        in.OrderBy,
		OrderDirection: directionOrDefault(in.OrderDirection),
		Limit:          deref(in.Limit),
	}, nil
}

// matchupParams is the parsed shape of a team-vs-team request.
type matchupParams struct {
	TeamID1        *int64 `param:"teamId1" validate:"required,gt=0"`
	TeamID2        *int64 `param:"teamId2" validate:"required,gt=0"`
	SeasonID       *int64 `param:"seasonId" validate:"omitempty,gt=0"`
	Position       string `param:"position" validate:"omitempty,position"`
	OrderBy        string `param:"orderBy" validate:"omitempty,orderable"`
	OrderDirection string `param:"orderDirection" validate:"omitempty,oneof=ASC DESC"`
	Limit          *int   `param:"limit" validate:"omitempty,min=1,max=1000"`
}

// NormalizeMatchup validates the two path team ids and the optional query filters.
func NormalizeMatchup(teamID1, teamID2 string, raw map[string]string) (query.MatchupFilter, error) {
	all := make(map[string]string, len(raw)+2)
	for k, v := range raw {
		all[k] = v
	}
	all["teamId1"], all["teamId2"] = teamID1, teamID2

	p := newParser(all)
	in := matchupParams{
		TeamID1:        p.id("teamId1"),
		TeamID2:        p.id("teamId2"),
		SeasonID:       p.id("seasonId"),
		Position:       strings.ToUpper(p.str("position")),
		OrderBy:        canonicalOrField(p.str("orderBy")),
		OrderDirection: strings.ToUpper(p.str("orderDirection")),
		Limit:          p.num("limit"),
	}
	errs := mergeFieldErrors(p.errs, structErrors(in))
	if in.TeamID1 != nil && in.TeamID2 != nil && *in.TeamID1 == *in.TeamID2 && !hasField(errs, "teamId2") {
		errs = append(errs, FieldError{Field: "teamId2", Reason: "must differ from teamId1"})
	}
	if err := NewInvalidInputError(errs); err != nil {
		return query.MatchupFilter{}, err
	}
	return query.MatchupFilter{
		TeamID1:        *in.TeamID1,
		TeamID2:        *in.TeamID2,
		SeasonID:       deref(in.SeasonID),
		Position:       model.Position(in.Position),
		OrderBy:        in.OrderBy,
		OrderDirection: directionOrDefault(in.OrderDirection),
		Limit:          deref(in.Limit),
	}, nil
}

// parseFields splits the comma separated projection list. Unknown names are rejected.
func parseFields(raw string) ([]string, *FieldError) {
	if raw == "" {
		return nil, nil
	}
	if !fieldsPattern.MatchString(raw) {
		return nil, &FieldError{Field: "fields", Reason: "must be a comma separated list of field names"}
	}
	var (
		out     []string
		unknown []string
	)
	for _, name := range strings.Split(raw, ",") {
		if name == "" {
			continue
		}
		canon, ok := query.CanonicalField(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		out = append(out, canon)
	}
	if len(unknown) > 0 {
		return nil, &FieldError{Field: "fields", Reason: "unknown fields: " + strings.Join(unknown, ", ")}
	}
	if len(out) == 0 {
		return nil, &FieldError{Field: "fields", Reason: "must name at least one field"}
	}
	return out, nil
}

// canonicalOrField keeps unknown names untouched so the validator reports them.
func canonicalOrField(name string) string {
	if canon, ok := query.CanonicalField(name); ok {
		return canon
	}
	return name
}

func directionOrDefault(d string) model.Direction {
	if d == string(model.Asc) {
		return model.Asc
	}
	return model.Desc
}

// mergeFieldErrors keeps the first failure per field.
func mergeFieldErrors(groups ...[]FieldError) []FieldError {
	var out []FieldError
	for _, g := range groups {
		for _, fe := range g {
			if !hasField(out, fe.Field) {
				out = append(out, fe)
			}
		}
	}
	return out
}

func hasField(errs []FieldError, field string) bool {
	for _, fe := range errs {
		if fe.Field == field {
			return true
		}
	}
	return false
}
