package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/matchup-stats-service/internal/handler"
	"github.com/maxviazov/matchup-stats-service/internal/service"
)

// stubPinger implements handler.Pinger for health endpoints.
type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type recordingSink struct {
	mu      sync.Mutex
	records []service.ErrorRecord
}

func (s *recordingSink) Record(_ context.Context, rec service.ErrorRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
}

func newRouter(d handler.Deps) *gin.Engine {
	gin.SetMode(gin.TestMode)
	if d.Pinger == nil {
		d.Pinger = stubPinger{}
	}
	d.Logger = zerolog.New(io.Discard)
	r := gin.New()
	handler.Register(r, d)
	return r
}

func serve(r http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

// envelope is the decoded form of every JSON response.
type envelope struct {
	Success bool                 `json:"success"`
	Data    json.RawMessage      `json:"data"`
	Meta    map[string]any       `json:"meta"`
	Error   string               `json:"error"`
	Details []service.FieldError `json:"details"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func TestHealth(t *testing.T) {
	cases := []struct {
		name   string
		pinger handler.Pinger
		path   string
		want   int
	}{
		{"live", stubPinger{}, "/live", http.StatusOK},
		{"api live", stubPinger{}, "/api/health/live", http.StatusOK},
		{"ready", stubPinger{}, "/ready", http.StatusOK},
		{"ready down", stubPinger{err: errors.New("db down")}, "/ready", http.StatusServiceUnavailable},
		{"ping", stubPinger{err: errors.New("db down")}, "/api/health/ping", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newRouter(handler.Deps{Pinger: tc.pinger})
			w := serve(r, http.MethodGet, tc.path, nil)
			assert.Equal(t, tc.want, w.Code, w.Body.String())
		})
	}
}

func TestRequestID(t *testing.T) {
	r := newRouter(handler.Deps{})

	w := serve(r, http.MethodGet, "/live", nil)
	_, err := uuid.Parse(w.Header().Get(handler.HeaderRequestID))
	assert.NoError(t, err, "a fresh id is minted")

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	req.Header.Set(handler.HeaderRequestID, id)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, id, w.Header().Get(handler.HeaderRequestID))

	req = httptest.NewRequest(http.MethodGet, "/live", nil)
	req.Header.Set(handler.HeaderRequestID, "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "abc", w.Header().Get(handler.HeaderRequestID))
}

func TestPositions(t *testing.T) {
	r := newRouter(handler.Deps{})
	w := serve(r, http.MethodGet, "/api/positions", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var positions []struct {
		Code        string `json:"code"`
		DisplayName string `json:"displayName"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &positions))
	require.Len(t, positions, 11)
	assert.Equal(t, "C", positions[0].Code)
	assert.Equal(t, "Center", positions[0].DisplayName)
}

func TestRecovery_PanicBecomes500AndIsRecorded(t *testing.T) {
	sink := &recordingSink{}
	r := newRouter(handler.Deps{Teams: &stubTeamService{panicOnGet: true}, Sink: sink})

	w := serve(r, http.MethodGet, "/api/teams/3", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env := decode(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "internal_error", env.Error)

	require.Len(t, sink.records, 1)
	assert.Equal(t, service.SeverityRouteError, sink.records[0].Severity)
	assert.Equal(t, "/api/teams/:teamId", sink.records[0].Context["route"])
}

func TestUnmountedServicesAre404(t *testing.T) {
	r := newRouter(handler.Deps{})
	w := serve(r, http.MethodGet, "/api/players/statistics", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
