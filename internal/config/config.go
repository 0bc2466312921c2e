// Package config loads the service configuration from environment variables
// and an optional config file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds every setting the service reads at startup.
type Config struct {
	AppPort           string
	DatabaseDriver    string
	DatabaseDSN       string
	SessionSecret     string
	SessionExpiration time.Duration
	SessionGCInterval time.Duration
	JWTSecret         string
	JWTExpiration     time.Duration
	MaxPerPage        int
	RabbitMQURL       string
	LogLevel          string
	LogFormat         string
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", DriverPostgres)
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=blog port=5432 sslmode=disable")
	v.SetDefault("SESSION_SECRET", "")
	v.SetDefault("SESSION_EXPIRATION", "24h")
	v.SetDefault("SESSION_GC_INTERVAL", "10m")
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("MAX_PER_PAGE", 100)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
}

// Load reads configuration from the environment and, when configFile is not
// empty, from that file. Environment variables win over file values.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		AppPort:           v.GetString("APP_PORT"),
		DatabaseDriver:    strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseDSN:       v.GetString("DATABASE_DSN"),
		SessionSecret:     v.GetString("SESSION_SECRET"),
		SessionExpiration: v.GetDuration("SESSION_EXPIRATION"),
		SessionGCInterval: v.GetDuration("SESSION_GC_INTERVAL"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		JWTExpiration:     v.GetDuration("JWT_EXPIRATION"),
		MaxPerPage:        v.GetInt("MAX_PER_PAGE"),
		RabbitMQURL:       v.GetString("RABBITMQ_URL"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		LogFormat:         v.GetString("LOG_FORMAT"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN is required")
	}
	if c.MaxPerPage < 1 {
		return fmt.Errorf("MAX_PER_PAGE must be positive, got %d", c.MaxPerPage)
	}
	if c.SessionExpiration <= 0 {
		return fmt.Errorf("SESSION_EXPIRATION must be positive")
	}
	return nil
}
