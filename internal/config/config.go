package config

import (
	"github.com/maxviazov/matchup-stats-service/internal/logger"
)

type Config struct {
	App AppConfig `mapstructure:"app"`
	// Validated by logger.New once defaults are applied.
	Logger   logger.LoggerConfig `mapstructure:"logger" validate:"-"`
	Postgres PostgresConfig      `mapstructure:"postgres"`
	Redis    RedisConfig         `mapstructure:"redis"`
	HTTP     HTTPConfig          `mapstructure:"http"`
}

type AppConfig struct {
	Name    string `mapstructure:"name" validate:"required"`
	Version string `mapstructure:"version"`
	Env     string `mapstructure:"env" validate:"oneof=dev test staging prod"`
	Port    int    `mapstructure:"port" validate:"min=1,max=65535"`
	// Seconds. Each data-source call inherits this deadline.
	RequestTimeout  int `mapstructure:"request_timeout" validate:"min=0"`
	ShutdownTimeout int `mapstructure:"shutdown_timeout" validate:"min=0"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port" validate:"min=1,max=65535"`
	User     string `mapstructure:"user" validate:"required"`
	Password string `mapstructure:"password" validate:"required"`
	DBName   string `mapstructure:"dbname" validate:"required"`
	SSLMode  string `mapstructure:"sslmode" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`

	MaxConns int32 `mapstructure:"max_conns" validate:"min=0"`
	MinConns int32 `mapstructure:"min_conns" validate:"min=0"`
	// Seconds.
	MaxConnLifetime   int `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   int `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod int `mapstructure:"health_check_period"`
}

// RedisConfig configures the statistics result cache. Disabled means no cache at all.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr" validate:"required_if=Enabled true"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"min=0"`
	// Seconds.
	TTL int `mapstructure:"ttl" validate:"min=0"`
}

type HTTPConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}
