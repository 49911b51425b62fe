package logger_test

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logpkg "github.com/maxviazov/matchup-stats-service/internal/logger"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		config      *logpkg.LoggerConfig
		expectError bool
		wantLevel   zerolog.Level
	}{
		{
			name: "production json",
			config: &logpkg.LoggerConfig{
				ServiceName: "matchup", Env: "prod", Level: "info",
				Fields: map[string]any{"key": "value"},
			},
			wantLevel: zerolog.InfoLevel,
		},
		{
			name:        "unknown env",
			config:      &logpkg.LoggerConfig{Env: "wrong-env", Level: "debug"},
			expectError: true,
		},
		{
			name:        "unknown level",
			config:      &logpkg.LoggerConfig{Env: "prod", Level: "loud"},
			expectError: true,
		},
		{
			name:        "unknown output target",
			config:      &logpkg.LoggerConfig{Env: "prod", OutputTarget: "syslog"},
			expectError: true,
		},
		{
			name:      "staging to stderr",
			config:    &logpkg.LoggerConfig{Env: "staging", Level: "warn", OutputTarget: "stderr", TimeFormat: "unix"},
			wantLevel: zerolog.WarnLevel,
		},
		{
			name:      "dev console without debug",
			config:    &logpkg.LoggerConfig{Env: "dev", Level: "info"},
			wantLevel: zerolog.InfoLevel,
		},
		{
			name:      "prod with caller and extra fields",
			config:    &logpkg.LoggerConfig{Env: "prod", Level: "error", WithCaller: true, Fields: map[string]any{"k": "v"}},
			wantLevel: zerolog.ErrorLevel,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := logpkg.New(tc.config)
			if tc.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantLevel, zerolog.GlobalLevel())
		})
	}
}

func TestNew_NilConfig(t *testing.T) {
	_, err := logpkg.New(nil)
	assert.Error(t, err)
}

func TestNew_DevDebugWritesFile(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	_, err = logpkg.New(&logpkg.LoggerConfig{Env: "dev", Level: "debug"})
	require.NoError(t, err)

	_, statErr := os.Stat("logs/debug.log")
	assert.NoError(t, statErr)
}
