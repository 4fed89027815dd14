package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendora/gatekeeper/pkg/observability"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GATEKEEPER_POSTGRES_URL", "postgres://localhost/gatekeeper")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "9090", cfg.Server.HealthPort)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, observability.InfoLevel, cfg.Observability.LogLevel)
	assert.True(t, cfg.Observability.MetricsEnabled)
	assert.False(t, cfg.ProviderConfigured())
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("GATEKEEPER_POSTGRES_URL", "postgres://db/gatekeeper")
	t.Setenv("GATEKEEPER_PORT", "3000")
	t.Setenv("GATEKEEPER_REDIS_ENABLED", "true")
	t.Setenv("GATEKEEPER_REDIS_ADDR", "redis:6379")
	t.Setenv("GATEKEEPER_CACHE_TTL", "90s")
	t.Setenv("GATEKEEPER_LOG_LEVEL", "debug")
	t.Setenv("GATEKEEPER_OIDC_ISSUER_URL", "https://issuer.test")
	t.Setenv("GATEKEEPER_OIDC_CLIENT_ID", "client")
	t.Setenv("GATEKEEPER_OIDC_CLIENT_SECRET", "secret")
	t.Setenv("GATEKEEPER_OIDC_REDIRECT_URL", "https://app.test/auth/callback")
	t.Setenv("GATEKEEPER_OIDC_SCOPES", "openid, profile,email")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
	assert.Equal(t, observability.DebugLevel, cfg.Observability.LogLevel)
	assert.Equal(t, []string{"openid", "profile", "email"}, cfg.Provider.Scopes)
	assert.True(t, cfg.ProviderConfigured())
}

func TestLoadConfigMissingDatabase(t *testing.T) {
	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres URL is required")
}

func TestValidateRejectsClashingPorts(t *testing.T) {
	t.Setenv("GATEKEEPER_POSTGRES_URL", "postgres://localhost/gatekeeper")
	t.Setenv("GATEKEEPER_PORT", "9090")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be different")
}

func TestMissingProviderCredentialsIsNotFatal(t *testing.T) {
	t.Setenv("GATEKEEPER_POSTGRES_URL", "postgres://localhost/gatekeeper")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.ProviderConfigured())
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("GATEKEEPER_TEST_STR", "value")
	t.Setenv("GATEKEEPER_TEST_BOOL", "1")
	t.Setenv("GATEKEEPER_TEST_INT", "42")
	t.Setenv("GATEKEEPER_TEST_DUR", "250ms")
	t.Setenv("GATEKEEPER_TEST_BAD_INT", "nope")

	assert.Equal(t, "value", getEnv("GATEKEEPER_TEST_STR", "default"))
	assert.Equal(t, "default", getEnv("GATEKEEPER_TEST_UNSET", "default"))
	assert.True(t, getEnvBool("GATEKEEPER_TEST_BOOL", false))
	assert.False(t, getEnvBool("GATEKEEPER_TEST_UNSET", false))
	assert.Equal(t, 42, getEnvInt("GATEKEEPER_TEST_INT", 7))
	assert.Equal(t, 7, getEnvInt("GATEKEEPER_TEST_BAD_INT", 7))
	assert.Equal(t, 250*time.Millisecond, getEnvDuration("GATEKEEPER_TEST_DUR", time.Second))
	assert.Equal(t, time.Second, getEnvDuration("GATEKEEPER_TEST_UNSET", time.Second))
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"a", "b"}, splitList("a, b,"))
}
