package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8000, cfg.HTTPPort)
	assert.Equal(t, "15m", cfg.AccessTokenExpiry)
	assert.Equal(t, "240h", cfg.RefreshTokenExpiry)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadInvalidPort(t *testing.T) {
	t.Setenv("HTTP_PORT", "99999")

	_, err := Load()
	assert.Error(t, err)
}

func TestProductionRequiresExplicitSecrets(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be explicitly set")
}

func TestProductionRejectsShortSecret(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("ACCESS_TOKEN_SECRET", "short")
	t.Setenv("REFRESH_TOKEN_SECRET", strings.Repeat("r", 32))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 characters")
}

func TestProductionRejectsIdenticalSecrets(t *testing.T) {
	secret := strings.Repeat("s", 32)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("ACCESS_TOKEN_SECRET", secret)
	t.Setenv("REFRESH_TOKEN_SECRET", secret)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must differ")
}

func TestProductionAcceptsStrongSecrets(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("ACCESS_TOKEN_SECRET", strings.Repeat("a", 32))
	t.Setenv("REFRESH_TOKEN_SECRET", strings.Repeat("r", 32))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
}
