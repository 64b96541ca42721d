// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// minProductionSecretLength is the shortest HS256 signing key accepted in production.
const minProductionSecretLength = 32

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8000"`

	// Database (PostgreSQL). DatabaseURL wins over the individual parts when set.
	DatabaseURL string `env:"DATABASE_URL"`
	DBHost      string `env:"DB_HOST" envDefault:"localhost"`
	DBPort      int    `env:"DB_PORT" envDefault:"5432"`
	DBUser      string `env:"DB_USER" envDefault:"root"`
	DBPassword  string `env:"DB_PASSWORD" envDefault:"root"`
	DBName      string `env:"DB_NAME" envDefault:"3d"`
	DBSSLMode   string `env:"DB_SSLMODE" envDefault:"disable"`
	DBAutoInit  bool   `env:"DB_AUTO_INIT" envDefault:"false"`

	// Cache (Redis). Empty disables rate limiting.
	RedisURL string `env:"REDIS_URL"`

	// Token signing
	SecretKey          string `env:"SECRET_KEY,required"`
	TokenExpireMinutes int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"30"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Rate limiting for /login and /register (per client IP)
	RateLimitAuthEnabled bool `env:"RATE_LIMIT_AUTH_ENABLED" envDefault:"true"`
	RateLimitAuthRPS     int  `env:"RATE_LIMIT_AUTH_RPS" envDefault:"5"`
	RateLimitAuthBurst   int  `env:"RATE_LIMIT_AUTH_BURST" envDefault:"10"`

	// Honor X-Forwarded-For / X-Real-IP. Enable only behind a trusted proxy.
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS" envDefault:"false"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// TokenTTL returns the lifetime of issued access tokens.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenExpireMinutes) * time.Minute
}

// DSN returns the PostgreSQL connection string for the configured database.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.dsnFor(c.DBName)
}

// AdminDSN returns a connection string for the maintenance database.
// Used to create the application database when it does not exist yet.
func (c *Config) AdminDSN() string {
	if c.DatabaseURL != "" {
		u, err := url.Parse(c.DatabaseURL)
		if err != nil {
			return c.DatabaseURL
		}
		u.Path = "/postgres"
		return u.String()
	}
	return c.dsnFor("postgres")
}

// DatabaseName returns the name of the application database.
func (c *Config) DatabaseName() string {
	if c.DatabaseURL != "" {
		if u, err := url.Parse(c.DatabaseURL); err == nil {
			if name := strings.TrimPrefix(u.Path, "/"); name != "" {
				return name
			}
		}
	}
	return c.DBName
}

func (c *Config) dsnFor(database string) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.DBUser, c.DBPassword),
		Host:   c.DBHost + ":" + strconv.Itoa(c.DBPort),
		Path:   "/" + database,
	}
	if c.DBSSLMode != "" {
		u.RawQuery = "sslmode=" + url.QueryEscape(c.DBSSLMode)
	}
	return u.String()
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.TokenExpireMinutes <= 0 {
		return nil, fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive, got %d", cfg.TokenExpireMinutes)
	}
	if cfg.RateLimitAuthRPS <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_AUTH_RPS must be positive, got %d", cfg.RateLimitAuthRPS)
	}
	if cfg.RateLimitAuthBurst <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_AUTH_BURST must be positive, got %d", cfg.RateLimitAuthBurst)
	}
	if cfg.IsProduction() && len(cfg.SecretKey) < minProductionSecretLength {
		return nil, fmt.Errorf("SECRET_KEY must be at least %d bytes in production", minProductionSecretLength)
	}
	return cfg, nil
}

// LoadDatabase parses configuration for offline tools that never sign tokens,
// so SECRET_KEY may be absent.
func LoadDatabase() (*Config, error) {
	environ := make(map[string]string)
	for _, kv := range os.Environ() {
		key, value, _ := strings.Cut(kv, "=")
		environ[key] = value
	}
	if environ["SECRET_KEY"] == "" {
		environ["SECRET_KEY"] = "unused"
	}

	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
