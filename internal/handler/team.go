package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/matchup-stats-service/internal/model"
	"github.com/maxviazov/matchup-stats-service/internal/service"
	"github.com/maxviazov/matchup-stats-service/pkg/response"
)

type TeamHandler struct {
	svc service.TeamService
}

func NewTeamHandler(svc service.TeamService) *TeamHandler { return &TeamHandler{svc: svc} }

func (h *TeamHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/teams")
	{
		g.POST("", h.create)
		g.GET("", h.list)
		g.GET("/league/:leagueId", h.listByLeague)
		g.GET("/city/:city", h.listByCity)
		g.GET("/:"+paramTeamID, h.getByID)
	}
}

type createTeamRequest struct {
	LeagueID *int64 `json:"league_id"`
	Name     string `json:"name"`
	NickName string `json:"nickname"`
	Code     string `json:"code"`
	City     string `json:"city"`
	LogoURL  string `json:"logo_url"`
}

func (h *TeamHandler) create(c *gin.Context) {
	var req createTeamRequest
	if err := bindJSON(c, &req); err != nil {
		response.WriteError(c, err)
		return
	}
	team, err := h.svc.CreateTeam(c.Request.Context(), model.Team{
		LeagueID: req.LeagueID,
		Name:     req.Name,
		NickName: req.NickName,
		Code:     req.Code,
		City:     req.City,
		LogoURL:  req.LogoURL,
	})
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, team)
}

func (h *TeamHandler) getByID(c *gin.Context) {
	id, err := pathID(c, paramTeamID)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	team, err := h.svc.GetTeam(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, team)
}

func (h *TeamHandler) list(c *gin.Context) {
	page, err := pageOf(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	res, err := h.svc.ListTeams(c.Request.Context(), page)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

func (h *TeamHandler) listByLeague(c *gin.Context) {
	id, err := pathID(c, "leagueId")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	teams, err := h.svc.ListTeamsByLeague(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, teams)
}

func (h *TeamHandler) listByCity(c *gin.Context) {
	teams, err := h.svc.ListTeamsByCity(c.Request.Context(), c.Param("city"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, teams)
}
