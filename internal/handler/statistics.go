package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/matchup-stats-service/internal/service"
	"github.com/maxviazov/matchup-stats-service/pkg/response"
)

// StatisticsHandler serves the query-type driven player statistics endpoints.
type StatisticsHandler struct {
	svc service.StatisticsService
}

func NewStatisticsHandler(svc service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{svc: svc}
}

func (h *StatisticsHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/players")
	{
		g.GET("/statistics", h.query)
		g.GET("/statistics/query-types", h.queryTypes)
		g.GET("/:"+paramPlayerID+"/vs/:enemyTeamId", h.vsTeamDetailed)
		g.GET("/:"+paramPlayerID+"/vs/:enemyTeamId/position/:position", h.vsTeamInPositionDetailed)
	}
}

func (h *StatisticsHandler) query(c *gin.Context) {
	res, err := h.svc.Query(c.Request.Context(), queryMap(c))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteList(c, res.Data, res.Meta)
}

func (h *StatisticsHandler) queryTypes(c *gin.Context) {
	response.WriteData(c, http.StatusOK, h.svc.QueryTypes())
}

func (h *StatisticsHandler) vsTeamDetailed(c *gin.Context) {
	row, err := h.svc.VsTeamDetailed(c.Request.Context(), c.Param(paramPlayerID), c.Param("enemyTeamId"), queryMap(c))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, row)
}

func (h *StatisticsHandler) vsTeamInPositionDetailed(c *gin.Context) {
	row, err := h.svc.VsTeamInPositionDetailed(c.Request.Context(), c.Param(paramPlayerID), c.Param("position"), c.Param("enemyTeamId"), queryMap(c))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, row)
}
