// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
}

// RedisConfig provides settings for the Redis-backed transition guard.
type RedisConfig interface {
	GetRedisAddr() string
	GetRedisPassword() string
	GetTransitionGuardTTL() time.Duration
	IsRedisEnabled() bool
}

// TransitionConfig provides settings for the stage transition executor.
type TransitionConfig interface {
	// GetWriteTimeout bounds each backend write (stage update, history insert).
	GetWriteTimeout() time.Duration
}

// Config holds all application configuration loaded from the environment.
type Config struct {
	Env      string
	HTTPAddr string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	JWTAccessSecret string

	CORSAllowAll bool
	CORSOrigins  []string

	RedisAddr          string
	RedisPassword      string
	TransitionGuardTTL time.Duration

	WriteTimeout time.Duration
}

// Load reads configuration from the environment, using .env if present.
func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("APP_ENV", "development"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 5432),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "leadflow"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTAccessSecret: getEnv("JWT_ACCESS_SECRET", ""),

		CORSAllowAll: getEnvBool("CORS_ALLOW_ALL", false),
		CORSOrigins:  getEnvList("CORS_ORIGINS", nil),

		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		TransitionGuardTTL: getEnvDuration("TRANSITION_GUARD_TTL", 2*time.Second),

		WriteTimeout: getEnvDuration("BACKEND_WRITE_TIMEOUT", 10*time.Second),
	}

	if cfg.JWTAccessSecret == "" {
		if cfg.Env != "development" {
			return nil, fmt.Errorf("JWT_ACCESS_SECRET is required in %s", cfg.Env)
		}
		cfg.JWTAccessSecret = "dev-secret-do-not-use-in-production"
	}

	return cfg, nil
}

// GetDatabaseURL builds a postgres connection string from the parts.
func (c *Config) GetDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }

func (c *Config) GetRedisAddr() string                 { return c.RedisAddr }
func (c *Config) GetRedisPassword() string             { return c.RedisPassword }
func (c *Config) GetTransitionGuardTTL() time.Duration { return c.TransitionGuardTTL }
func (c *Config) IsRedisEnabled() bool                 { return c.RedisAddr != "" }

func (c *Config) GetWriteTimeout() time.Duration { return c.WriteTimeout }

// =============================================================================
// Env helpers
// =============================================================================

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
