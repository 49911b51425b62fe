package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/matchup-stats-service/internal/model"
	"github.com/maxviazov/matchup-stats-service/internal/service"
	"github.com/maxviazov/matchup-stats-service/pkg/response"
)

const serviceTimeout = 5 * time.Second

type PlayerHandler struct {
	svc service.PlayerService
}

func NewPlayerHandler(svc service.PlayerService) *PlayerHandler { return &PlayerHandler{svc: svc} }

func (h *PlayerHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/players")
	{
		g.POST("", h.create)
		g.GET("/position/:position", h.listByPosition)
		g.GET("/:"+paramPlayerID, h.getByID)
	}
	// Nested listing: /api/teams/:teamId/players
	r.GET("/teams/:"+paramTeamID+"/players", h.listByTeam)
}

type createPlayerRequest struct {
	TeamID    int64  `json:"team_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Position  string `json:"position"`
}

func (h *PlayerHandler) create(c *gin.Context) {
	var req createPlayerRequest
	if err := bindJSON(c, &req); err != nil {
		response.WriteError(c, err)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), serviceTimeout)
	defer cancel()

	player, err := h.svc.CreatePlayer(ctx, model.Player{
		TeamID:    req.TeamID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Position:  model.Position(req.Position),
	})
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, player)
}

func (h *PlayerHandler) getByID(c *gin.Context) {
	id, err := pathID(c, paramPlayerID)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), serviceTimeout)
	defer cancel()

	player, err := h.svc.GetPlayer(ctx, id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, player)
}

func (h *PlayerHandler) listByTeam(c *gin.Context) {
	teamID, err := pathID(c, paramTeamID)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	page, err := pageOf(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	res, err := h.svc.ListPlayersByTeam(c.Request.Context(), teamID, page)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

func (h *PlayerHandler) listByPosition(c *gin.Context) {
	page, err := pageOf(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	res, err := h.svc.ListPlayersByPosition(c.Request.Context(), c.Param("position"), page)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

type positionInfo struct {
	Code        model.Position `json:"code"`
	DisplayName string         `json:"displayName"`
}

// listPositions serves the static position catalog.
func listPositions(c *gin.Context) {
	ps := model.Positions()
	out := make([]positionInfo, 0, len(ps))
	for _, p := range ps {
		out = append(out, positionInfo{Code: p, DisplayName: p.DisplayName()})
	}
	response.WriteData(c, http.StatusOK, out)
}
