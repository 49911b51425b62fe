package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/matchup-stats-service/internal/model"
	"github.com/maxviazov/matchup-stats-service/internal/service"
	"github.com/maxviazov/matchup-stats-service/pkg/response"
)

type GameHandler struct {
	svc service.GameService
	now func() time.Time
}

func NewGameHandler(svc service.GameService) *GameHandler {
	return &GameHandler{svc: svc, now: time.Now}
}

func (h *GameHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/games")
	{
		g.POST("", h.create)
		g.GET("", h.list)
		g.GET("/upcoming", h.upcoming)
		g.GET("/today", h.schedule)
		g.GET("/last-days/:days", h.fromLastDays)
		g.GET("/:"+paramGameID, h.getByID)
	}
}

type createGameRequest struct {
	SeasonID      int64     `json:"season_id"`
	LeagueID      *int64    `json:"league_id"`
	HomeTeamID    int64     `json:"home_team_id"`
	VisitorTeamID int64     `json:"visitor_team_id"`
	StartDate     time.Time `json:"start_date"` // RFC3339
	Status        string    `json:"status"`
	TotalPeriods  int       `json:"total_periods"`
}

func (h *GameHandler) create(c *gin.Context) {
	var req createGameRequest
	if err := bindJSON(c, &req); err != nil {
		response.WriteError(c, err)
		return
	}
	game, err := h.svc.CreateGame(c.Request.Context(), model.Game{
		SeasonID:      req.SeasonID,
		LeagueID:      req.LeagueID,
		HomeTeamID:    req.HomeTeamID,
		VisitorTeamID: req.VisitorTeamID,
		StartDate:     req.StartDate,
		Status:        req.Status,
		TotalPeriods:  req.TotalPeriods,
	})
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, game)
}

func (h *GameHandler) getByID(c *gin.Context) {
	id, err := pathID(c, paramGameID)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	game, err := h.svc.GetGame(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, game)
}

func (h *GameHandler) list(c *gin.Context) {
	page, err := pageOf(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	res, err := h.svc.ListGames(c.Request.Context(), page)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

func (h *GameHandler) upcoming(c *gin.Context) {
	limit, err := intParam("limit", c.Query("limit"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	games, err := h.svc.Upcoming(c.Request.Context(), limit)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, games)
}

func (h *GameHandler) fromLastDays(c *gin.Context) {
	days, err := intParam("days", c.Param("days"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	games, err := h.svc.FromLastDays(c.Request.Context(), days)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, games)
}

func (h *GameHandler) schedule(c *gin.Context) {
	s, err := h.svc.Schedule(c.Request.Context(), h.now())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, s)
}

// intParam parses an optional integer; empty means zero so the service default applies.
func intParam(field, raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, service.NewInvalidInputError([]service.FieldError{{Field: field, Reason: "must be an integer"}})
	}
	return n, nil
}
