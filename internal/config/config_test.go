package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadShardConfigDefaults(t *testing.T) {
	cfg, err := LoadShardConfig()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.RabbitMQ.Host)
	assert.Equal(t, 5672, cfg.RabbitMQ.Port)
	assert.Equal(t, "guest", cfg.RabbitMQ.Username)
	assert.Equal(t, "guest", cfg.RabbitMQ.Password)
	assert.Equal(t, 0, cfg.ShardID)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadShardConfigEnvOverrides(t *testing.T) {
	t.Setenv("RABBITMQ_HOST", "rabbit.internal")
	t.Setenv("RABBITMQ_PORT", "5000")
	t.Setenv("SHARD_ID", "7")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadShardConfig()
	require.NoError(t, err)

	assert.Equal(t, "rabbit.internal", cfg.RabbitMQ.Host)
	assert.Equal(t, 5000, cfg.RabbitMQ.Port)
	assert.Equal(t, 7, cfg.ShardID)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadPriceCacheConfigDefaults(t *testing.T) {
	cfg, err := LoadPriceCacheConfig()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "secret", cfg.JWTSecret)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadPriceCacheConfigEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("JWT_SECRET", "super-secret")
	t.Setenv("RABBITMQ_USERNAME", "trader")

	cfg, err := LoadPriceCacheConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "super-secret", cfg.JWTSecret)
	assert.Equal(t, "trader", cfg.RabbitMQ.Username)
}

func TestNewLoggerBuildsAtEachLevel(t *testing.T) {
	debugLogger, err := NewLogger("debug")
	require.NoError(t, err)
	assert.True(t, debugLogger.Core().Enabled(zap.DebugLevel))

	prodLogger, err := NewLogger("info")
	require.NoError(t, err)
	assert.False(t, prodLogger.Core().Enabled(zap.DebugLevel))
}
