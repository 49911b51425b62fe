package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/maxviazov/matchup-stats-service/internal/repository"
	"github.com/maxviazov/matchup-stats-service/internal/service"
)

// Deps carries everything the HTTP layer needs. Nil services leave their routes unmounted.
type Deps struct {
	Pinger     Pinger
	Statistics service.StatisticsService
	Matchups   service.MatchupService
	Teams      service.TeamService
	Players    service.PlayerService
	Games      service.GameService
	Seasons    service.SeasonService
	Stats      service.StatsService
	Sink       service.ErrorSink
	Logger     zerolog.Logger
}

// Register mounts middleware and all public routes on the given engine.
func Register(r *gin.Engine, d Deps) {
	r.Use(RequestID(), AccessLog(d.Logger, d.Sink), Recovery(d.Logger))

	h := NewHealthHandler(d.Pinger)

	// Health checks
	r.GET("/live", h.Liveness)
	r.GET("/ready", h.Readiness)

	api := r.Group(APIPrefix)
	{
		health := api.Group("/health")
		{
			health.GET("/live", h.Liveness)
			health.GET("/ready", h.Readiness)
			health.GET("/ping", h.Ping)
		}
		api.GET("/positions", listPositions)

		if d.Statistics != nil {
			NewStatisticsHandler(d.Statistics).Register(api)
		}
		if d.Matchups != nil {
			NewMatchupHandler(d.Matchups).Register(api)
		}
		if d.Teams != nil {
			NewTeamHandler(d.Teams).Register(api)
		}
		if d.Players != nil {
			NewPlayerHandler(d.Players).Register(api)
		}
		if d.Games != nil {
			NewGameHandler(d.Games).Register(api)
		}
		if d.Seasons != nil {
			NewSeasonHandler(d.Seasons).Register(api)
		}
		if d.Stats != nil {
			NewStatsHandler(d.Stats).Register(api)
		}
	}
}

// queryMap flattens the query string, keeping the first value of each key.
func queryMap(c *gin.Context) map[string]string {
	q := c.Request.URL.Query()
	out := make(map[string]string, len(q))
	for k, v := range q {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

// pathID reads a positive integer path parameter.
func pathID(c *gin.Context, name string) (int64, error) {
	return service.ParseID(name, c.Param(name))
}

// pageOf reads limit/offset; absent values fall back to the repository defaults.
func pageOf(c *gin.Context) (repository.Page, error) {
	var (
		page repository.Page
		errs []service.FieldError
	)
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			errs = append(errs, service.FieldError{Field: "limit", Reason: "must be a non-negative integer"})
		}
		page.Limit = n
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			errs = append(errs, service.FieldError{Field: "offset", Reason: "must be a non-negative integer"})
		}
		page.Offset = n
	}
	if len(errs) > 0 {
		return repository.Page{}, service.NewInvalidInputError(errs)
	}
	return page, nil
}

// bindJSON decodes the request body, reporting a malformed body as invalid input.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return service.NewInvalidInputError([]service.FieldError{{Field: "body", Reason: "must be valid JSON"}})
	}
	return nil
}
