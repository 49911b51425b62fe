// Package server owns the HTTP listener lifecycle around the gin engine.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/rs/zerolog"

	"github.com/maxviazov/matchup-stats-service/internal/config"
	"github.com/maxviazov/matchup-stats-service/internal/handler"
)

const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 60 * time.Second
	// writeSlack covers shaping and encoding on top of the data-source deadline.
	writeSlack = 10 * time.Second
)

type Server struct {
	srv             *http.Server
	log             zerolog.Logger
	shutdownTimeout time.Duration
}

// New wraps h with CORS and gzip and binds it to the configured port.
func New(cfg *config.Config, h http.Handler, logger zerolog.Logger) *Server {
	reqTimeout := time.Duration(cfg.App.RequestTimeout) * time.Second
	return &Server{
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.App.Port),
			Handler:           wrap(h, cfg.HTTP),
			ReadHeaderTimeout: readHeaderTimeout,
			ReadTimeout:       reqTimeout + writeSlack,
			WriteTimeout:      reqTimeout + writeSlack,
			IdleTimeout:       idleTimeout,
		},
		log:             logger.With().Str("module", "server").Logger(),
		shutdownTimeout: time.Duration(cfg.App.ShutdownTimeout) * time.Second,
	}
}

func wrap(h http.Handler, cfg config.HTTPConfig) http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", handler.HeaderRequestID}),
		handlers.ExposedHeaders([]string{handler.HeaderRequestID}),
	)
	return cors(handlers.CompressHandler(h))
}

// Handler exposes the fully wrapped handler, mostly for tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.srv.Addr).Msg("http server listening")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info().Dur("timeout", s.shutdownTimeout).Msg("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
