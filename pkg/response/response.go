// Package response centralizes HTTP response shapes and helpers.
// Handlers rely on it to keep controllers thin and uniform.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/matchup-stats-service/internal/repository"
	"github.com/maxviazov/matchup-stats-service/internal/service"
)

// Envelope wraps every successful payload.
type Envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
	Meta    any  `json:"meta,omitempty"`
}

// ErrorPayload is the canonical error envelope returned by the API.
type ErrorPayload struct {
	Success bool                 `json:"success"`
	Error   string               `json:"error"`
	Message string               `json:"message,omitempty"`
	Details []service.FieldError `json:"details,omitempty"`
}

// MapError converts a domain / infrastructure error into an HTTP status and payload.
// This is the only place an error kind turns into a status code.
func MapError(err error) (int, ErrorPayload) {
	if err == nil {
		return http.StatusOK, ErrorPayload{Success: true, Error: "ok"}
	}

	if errors.Is(err, service.ErrInvalidInput) {
		return http.StatusBadRequest, ErrorPayload{
			Error:   "invalid_input",
			Message: "one or more fields are invalid",
			Details: service.FieldErrors(err),
		}
	}

	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, ErrorPayload{Error: "not_found"}
	case errors.Is(err, repository.ErrAlreadyExists):
		return http.StatusConflict, ErrorPayload{Error: "already_exists"}
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict, ErrorPayload{Error: "conflict"}
	case errors.Is(err, repository.ErrUnavailable):
		return http.StatusServiceUnavailable, ErrorPayload{Error: "unavailable", Message: internalDetail(err)}
	default:
		return http.StatusInternalServerError, ErrorPayload{Error: "internal_error", Message: internalDetail(err)}
	}
}

// internalDetail exposes raw error text only while gin runs in debug mode.
func internalDetail(err error) string {
	if gin.Mode() == gin.DebugMode {
		return err.Error()
	}
	return ""
}

// WriteError writes an error response and aborts the context.
// The error is attached to the context so the access log can report it.
func WriteError(c *gin.Context, err error) {
	status, payload := MapError(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, payload)
}

// WriteData writes a successful JSON response.
func WriteData(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

// WriteList writes data with its metadata block.
func WriteList(c *gin.Context, data, meta any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Meta: meta})
}
