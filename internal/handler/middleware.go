package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/maxviazov/matchup-stats-service/internal/service"
	"github.com/maxviazov/matchup-stats-service/pkg/response"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-ID"

const ctxRequestID = "request_id"

// RequestID reuses a well-formed incoming id or mints a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// AccessLog writes one zerolog event per request. Server-side failures also go to sink.
func AccessLog(logger zerolog.Logger, sink service.ErrorSink) gin.HandlerFunc {
	log := logger.With().Str("module", "http").Logger()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		ev := log.Info()
		switch {
		case status >= http.StatusInternalServerError:
			ev = log.Error()
		case status >= http.StatusBadRequest:
			ev = log.Warn()
		}
		ev = ev.
			Str("request_id", c.GetString(ctxRequestID)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("query", c.Request.URL.RawQuery).
			Int("status", status).
			Dur("took", time.Since(start))
		if len(c.Errors) > 0 {
			ev = ev.Str("error", c.Errors.String())
		}
		ev.Msg("request")

		if status >= http.StatusInternalServerError && sink != nil && len(c.Errors) > 0 {
			sink.Record(c.Request.Context(), service.ErrorRecord{
				Message:   c.Errors.Last().Error(),
				Component: "http",
				Severity:  service.SeverityRouteError,
				Context: map[string]any{
					"request_id": c.GetString(ctxRequestID),
					"route":      c.FullPath(),
					"method":     c.Request.Method,
					"query":      c.Request.URL.RawQuery,
				},
			})
		}
	}
}

// Recovery turns a handler panic into a 500 envelope. It must run inside AccessLog
// so the failure is still logged and recorded.
func Recovery(logger zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		err := fmt.Errorf("panic: %v", rec)
		logger.Error().Str("request_id", c.GetString(ctxRequestID)).Err(err).Msg("recovered from panic")
		response.WriteError(c, err)
	})
}
