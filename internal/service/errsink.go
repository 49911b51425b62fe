package service

import (
	"context"

	"github.com/rs/zerolog"
)

// Severity codes attached to recorded failures.
const (
	SeverityServiceError  = "SERVICE_ERROR"
	SeverityDatabaseError = "DATABASE_ERROR"
	SeverityRouteError    = "ROUTE_ERROR"
)

// ErrorRecord is one recorded failure with enough context to reproduce it.
type ErrorRecord struct {
	Message   string
	Component string
	Severity  string
	Context   map[string]any
}

// ErrorSink receives every failure observed on a request path.
type ErrorSink interface {
	Record(ctx context.Context, rec ErrorRecord)
}

// LogSink writes records as zerolog error events.
type LogSink struct {
	log zerolog.Logger
}

func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{log: logger.With().Str("module", "errors").Logger()}
}

func (s *LogSink) Record(_ context.Context, rec ErrorRecord) {
	s.log.Error().
		Str("component", rec.Component).
		Str("severity", rec.Severity).
		Fields(rec.Context).
		Msg(rec.Message)
}

var _ ErrorSink = (*LogSink)(nil)
