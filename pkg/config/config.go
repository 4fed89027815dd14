package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vendora/gatekeeper/pkg/identity"
	"github.com/vendora/gatekeeper/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// Identity provider configuration
	Provider identity.ProviderConfig

	// Cache configuration
	Cache CacheConfig

	// Rate limit configuration for credential endpoints
	RateLimit RateLimitConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// DatabaseConfig holds the profile database settings
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	ConnLifetime time.Duration
}

// RedisConfig holds the shared-cache settings. Redis is optional: without
// it the profile cache runs in-process only and rate limiting is off.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// CacheConfig holds profile cache tuning
type CacheConfig struct {
	TTL  time.Duration
	Size int
}

// RateLimitConfig holds credential-endpoint rate limiting
type RateLimitConfig struct {
	RequestsPerWindow int
	WindowDuration    time.Duration
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("GATEKEEPER_HOST", "0.0.0.0"),
			Port:            getEnv("GATEKEEPER_PORT", "8080"),
			ReadTimeout:     getEnvDuration("GATEKEEPER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("GATEKEEPER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("GATEKEEPER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("GATEKEEPER_SHUTDOWN_TIMEOUT", 30*time.Second),
			HealthPort:      getEnv("GATEKEEPER_HEALTH_PORT", "9090"),
		},
		Database: DatabaseConfig{
			URL:          getEnv("GATEKEEPER_POSTGRES_URL", ""),
			MaxOpenConns: getEnvInt("GATEKEEPER_POSTGRES_MAX_CONNS", 25),
			MaxIdleConns: getEnvInt("GATEKEEPER_POSTGRES_IDLE_CONNS", 5),
			ConnLifetime: getEnvDuration("GATEKEEPER_POSTGRES_CONN_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("GATEKEEPER_REDIS_ENABLED", false),
			Addr:     getEnv("GATEKEEPER_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("GATEKEEPER_REDIS_PASSWORD", ""),
			DB:       getEnvInt("GATEKEEPER_REDIS_DB", 0),
		},
		Provider: identity.ProviderConfig{
			IssuerURL:              getEnv("GATEKEEPER_OIDC_ISSUER_URL", ""),
			ClientID:               getEnv("GATEKEEPER_OIDC_CLIENT_ID", ""),
			ClientSecret:           getEnv("GATEKEEPER_OIDC_CLIENT_SECRET", ""),
			RedirectURL:            getEnv("GATEKEEPER_OIDC_REDIRECT_URL", ""),
			Scopes:                 splitList(getEnv("GATEKEEPER_OIDC_SCOPES", "")),
			SignUpEndpoint:         getEnv("GATEKEEPER_SIGNUP_ENDPOINT", ""),
			PasswordResetEndpoint:  getEnv("GATEKEEPER_PASSWORD_RESET_ENDPOINT", ""),
			PasswordUpdateEndpoint: getEnv("GATEKEEPER_PASSWORD_UPDATE_ENDPOINT", ""),
		},
		Cache: CacheConfig{
			TTL:  getEnvDuration("GATEKEEPER_CACHE_TTL", identity.DefaultCacheTTL),
			Size: getEnvInt("GATEKEEPER_CACHE_SIZE", 1024),
		},
		RateLimit: RateLimitConfig{
			RequestsPerWindow: getEnvInt("GATEKEEPER_RATE_LIMIT_REQUESTS", 10),
			WindowDuration:    getEnvDuration("GATEKEEPER_RATE_LIMIT_WINDOW", time.Minute),
		},
		Observability: ObservabilityConfig{
			LogLevel:       observability.ParseLogLevel(getEnv("GATEKEEPER_LOG_LEVEL", "info")),
			MetricsEnabled: getEnvBool("GATEKEEPER_METRICS_ENABLED", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid. Missing provider
// credentials are deliberately not an error here: the service must come up
// in a distinct unconfigured state rather than refuse to start, and the
// provider's own Validate reports that condition.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}
	if c.Database.URL == "" {
		return fmt.Errorf("postgres URL is required")
	}
	if c.Cache.Size <= 0 {
		return fmt.Errorf("cache size must be positive")
	}
	if c.RateLimit.RequestsPerWindow <= 0 {
		return fmt.Errorf("rate limit requests per window must be positive")
	}
	return nil
}

// ProviderConfigured reports whether identity-provider credentials are
// present and well formed.
func (c *Config) ProviderConfigured() bool {
	return c.Provider.Validate() == nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
