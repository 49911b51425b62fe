package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/matchup-stats-service/internal/service"
	"github.com/maxviazov/matchup-stats-service/pkg/response"
)

type SeasonHandler struct {
	svc service.SeasonService
}

func NewSeasonHandler(svc service.SeasonService) *SeasonHandler { return &SeasonHandler{svc: svc} }

func (h *SeasonHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/seasons")
	{
		g.GET("", h.list)
		g.GET("/current", h.current)
		g.GET("/year/:year", h.byYear)
		g.GET("/:"+paramSeasonID, h.getByID)
	}
}

func (h *SeasonHandler) list(c *gin.Context) {
	seasons, err := h.svc.ListSeasons(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, seasons)
}

func (h *SeasonHandler) current(c *gin.Context) {
	season, err := h.svc.CurrentSeason(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, season)
}

func (h *SeasonHandler) getByID(c *gin.Context) {
	id, err := pathID(c, paramSeasonID)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	season, err := h.svc.GetSeason(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, season)
}

func (h *SeasonHandler) byYear(c *gin.Context) {
	year, err := intParam("year", c.Param("year"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	season, err := h.svc.GetSeasonByYear(c.Request.Context(), year)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, season)
}
