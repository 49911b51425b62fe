package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/matchup-stats-service/internal/config"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func clearSecrets(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APP_POSTGRES_USER", "APP_POSTGRES_PASSWORD", "APP_POSTGRES_DB",
		"POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB",
		"DB_USER", "DB_PASSWORD", "DB_NAME",
	} {
		t.Setenv(k, "")
	}
}

const baseYAML = `
app:
  name: matchup-stats-service
  version: 0.1.0
  env: test
  port: 18080

logger:
  level: info
  format: json
  output_target: stdout
  time_format: rfc3339

postgres:
  host: 127.0.0.1
  port: 5432
  sslmode: disable
  max_conns: 5
  min_conns: 1

redis:
  enabled: true
  addr: 127.0.0.1:6379
  ttl: 60

http:
  allowed_origins: ["https://stats.example.com"]
`

func TestConfigLoad_FromYAMLAndEnv(t *testing.T) {
	clearSecrets(t)
	path := writeTempConfig(t, baseYAML)

	t.Setenv("APP_POSTGRES_USER", "testuser")
	t.Setenv("APP_POSTGRES_PASSWORD", "testpass")
	t.Setenv("APP_POSTGRES_DB", "testdb")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 18080, cfg.App.Port)
	assert.Equal(t, "testuser", cfg.Postgres.User)
	assert.Equal(t, "testpass", cfg.Postgres.Password)
	assert.Equal(t, "testdb", cfg.Postgres.DBName)
	assert.Equal(t, "127.0.0.1", cfg.Postgres.Host)
	assert.Equal(t, int32(5), cfg.Postgres.MaxConns)
	assert.Equal(t, "stdout", cfg.Logger.OutputTarget)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 60, cfg.Redis.TTL)
	assert.Equal(t, []string{"https://stats.example.com"}, cfg.HTTP.AllowedOrigins)
	// defaults fill what the file leaves out
	assert.Equal(t, 5, cfg.App.RequestTimeout)
	assert.Equal(t, 60, cfg.Postgres.HealthCheckPeriod)
}

func TestConfigLoad_FallbackEnvNames(t *testing.T) {
	clearSecrets(t)
	path := writeTempConfig(t, baseYAML)

	t.Setenv("POSTGRES_USER", "pguser")
	t.Setenv("DB_PASSWORD", "dbpass")
	t.Setenv("DB_NAME", "stats")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "pguser", cfg.Postgres.User)
	assert.Equal(t, "dbpass", cfg.Postgres.Password)
	assert.Equal(t, "stats", cfg.Postgres.DBName)
}

func TestConfigLoad_DotEnvNextToConfig(t *testing.T) {
	clearSecrets(t)
	path := writeTempConfig(t, baseYAML)
	env := "APP_POSTGRES_USER=fromdotenv\nAPP_POSTGRES_PASSWORD=secret\nAPP_POSTGRES_DB=stats\n"
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), ".env"), []byte(env), 0o600))

	// godotenv never overrides variables that are already set, even empty ones
	for _, k := range []string{"APP_POSTGRES_USER", "APP_POSTGRES_PASSWORD", "APP_POSTGRES_DB"} {
		require.NoError(t, os.Unsetenv(k))
	}
	t.Cleanup(func() {
		for _, k := range []string{"APP_POSTGRES_USER", "APP_POSTGRES_PASSWORD", "APP_POSTGRES_DB"} {
			_ = os.Unsetenv(k)
		}
	})

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "fromdotenv", cfg.Postgres.User)
}

func TestConfigLoad_MissingRequiredEnvFails(t *testing.T) {
	clearSecrets(t)
	path := writeTempConfig(t, `
app:
  name: abc
  env: test
  port: 18080
postgres:
  host: localhost
`)
	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestConfigLoad_RedisEnabledNeedsAddr(t *testing.T) {
	clearSecrets(t)
	t.Setenv("APP_POSTGRES_USER", "u")
	t.Setenv("APP_POSTGRES_PASSWORD", "p")
	t.Setenv("APP_POSTGRES_DB", "d")
	t.Setenv("APP_REDIS_ADDR", "")
	path := writeTempConfig(t, `
app:
  name: abc
  env: test
  port: 18080
redis:
  enabled: true
  addr: ""
`)
	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestConfigLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
