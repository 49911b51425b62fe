package handler

// APIPrefix is the canonical base path for the public HTTP API.
// Keep a single source of truth to avoid path drift across handlers and tests.
const APIPrefix = "/api"

// Path parameter names shared by every route under the same prefix.
// Gin requires one wildcard name per segment position.
const (
	paramPlayerID = "playerId"
	paramTeamID   = "teamId"
	paramTeamID2  = "teamId2"
	paramGameID   = "gameId"
	paramSeasonID = "seasonId"
)
