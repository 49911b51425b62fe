package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/matchup-stats-service/internal/model"
	"github.com/maxviazov/matchup-stats-service/internal/service"
	"github.com/maxviazov/matchup-stats-service/pkg/response"
)

type StatsHandler struct {
	svc service.StatsService
}

func NewStatsHandler(svc service.StatsService) *StatsHandler { return &StatsHandler{svc: svc} }

func (h *StatsHandler) Register(r *gin.RouterGroup) {
	// Box-score ingestion
	s := r.Group("/stats")
	{
		s.POST("/player", h.upsertPlayer)
		s.POST("/team", h.upsertTeam)
	}
	r.GET("/games/:"+paramGameID+"/player-stats", h.gamePlayerStats)
	r.GET("/games/:"+paramGameID+"/team-stats", h.gameTeamStats)
	r.GET("/players/:"+paramPlayerID+"/player-stats", h.playerGameLog)
	r.GET("/teams/:"+paramTeamID+"/team-stats", h.teamGameLog)
}

func (h *StatsHandler) upsertPlayer(c *gin.Context) {
	var req model.PlayerGameStat
	if err := bindJSON(c, &req); err != nil {
		response.WriteError(c, err)
		return
	}
	line, err := h.svc.UpsertPlayerStat(c.Request.Context(), req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, line)
}

func (h *StatsHandler) upsertTeam(c *gin.Context) {
	var req model.TeamGameStat
	if err := bindJSON(c, &req); err != nil {
		response.WriteError(c, err)
		return
	}
	line, err := h.svc.UpsertTeamStat(c.Request.Context(), req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, line)
}

func (h *StatsHandler) gamePlayerStats(c *gin.Context) {
	gameID, err := pathID(c, paramGameID)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	lines, err := h.svc.GamePlayerStats(c.Request.Context(), gameID)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, lines)
}

func (h *StatsHandler) gameTeamStats(c *gin.Context) {
	gameID, err := pathID(c, paramGameID)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	lines, err := h.svc.GameTeamStats(c.Request.Context(), gameID)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, lines)
}

func (h *StatsHandler) playerGameLog(c *gin.Context) {
	playerID, err := pathID(c, paramPlayerID)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	seasonID, err := optionalSeason(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	page, err := pageOf(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	res, err := h.svc.PlayerGameLog(c.Request.Context(), playerID, seasonID, page)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

func (h *StatsHandler) teamGameLog(c *gin.Context) {
	teamID, err := pathID(c, paramTeamID)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	seasonID, err := optionalSeason(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	page, err := pageOf(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	res, err := h.svc.TeamGameLog(c.Request.Context(), teamID, seasonID, page)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

// optionalSeason reads ?seasonId; zero means every season.
func optionalSeason(c *gin.Context) (int64, error) {
	raw := c.Query(paramSeasonID)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, service.NewInvalidInputError([]service.FieldError{{Field: paramSeasonID, Reason: "must be a positive integer"}})
	}
	return id, nil
}
