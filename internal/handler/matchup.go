package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/matchup-stats-service/internal/service"
	"github.com/maxviazov/matchup-stats-service/pkg/response"
)

// MatchupHandler serves team-vs-team comparisons.
type MatchupHandler struct {
	svc service.MatchupService
}

func NewMatchupHandler(svc service.MatchupService) *MatchupHandler {
	return &MatchupHandler{svc: svc}
}

func (h *MatchupHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/teams/:" + paramTeamID)
	{
		vs := g.Group("/vs/:" + paramTeamID2)
		vs.GET("/players", h.players)
		vs.GET("/players/summary", h.summary)
		vs.GET("/position-stats", h.positionStats)

		g.GET("/vs-all/position-stats", h.vsAllPositionStats)
	}
	r.GET("/teams/matchup-statistics/:"+paramTeamID+"/:"+paramTeamID2, h.statistics)
}

func (h *MatchupHandler) players(c *gin.Context) {
	res, err := h.svc.Players(c.Request.Context(), c.Param(paramTeamID), c.Param(paramTeamID2), queryMap(c))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

func (h *MatchupHandler) summary(c *gin.Context) {
	res, err := h.svc.Summary(c.Request.Context(), c.Param(paramTeamID), c.Param(paramTeamID2), queryMap(c))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

func (h *MatchupHandler) positionStats(c *gin.Context) {
	res, err := h.svc.PositionStats(c.Request.Context(), c.Param(paramTeamID), c.Param(paramTeamID2), queryMap(c))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

func (h *MatchupHandler) vsAllPositionStats(c *gin.Context) {
	res, err := h.svc.VsAllPositionStats(c.Request.Context(), c.Param(paramTeamID), queryMap(c))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

func (h *MatchupHandler) statistics(c *gin.Context) {
	res, err := h.svc.Statistics(c.Request.Context(), c.Param(paramTeamID), c.Param(paramTeamID2), queryMap(c))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}
