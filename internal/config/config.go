// Package config loads service configuration from environment variables,
// following the teacher's viper-with-defaults pattern: set defaults, then
// bind each environment variable explicitly with BindEnv.
package config

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/sban26/matchshard/internal/broker"
)

// ShardConfig is the matching shard's configuration (spec.md §6).
type ShardConfig struct {
	RabbitMQ broker.Config
	ShardID  int
	LogLevel string
}

// PriceCacheConfig is the price cache's configuration (spec.md §6).
type PriceCacheConfig struct {
	RabbitMQ  broker.Config
	Port      int
	JWTSecret string
	LogLevel  string
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("rabbitmq.host", "localhost")
	v.SetDefault("rabbitmq.port", 5672)
	v.SetDefault("rabbitmq.username", "guest")
	v.SetDefault("rabbitmq.password", "guest")
	v.SetDefault("log_level", "info")

	v.BindEnv("rabbitmq.host", "RABBITMQ_HOST")
	v.BindEnv("rabbitmq.port", "RABBITMQ_PORT")
	v.BindEnv("rabbitmq.username", "RABBITMQ_USERNAME")
	v.BindEnv("rabbitmq.password", "RABBITMQ_PASSWORD")
	v.BindEnv("shard_id", "SHARD_ID")
	v.BindEnv("port", "PORT")
	v.BindEnv("jwt_secret", "JWT_SECRET")
	v.BindEnv("log_level", "LOG_LEVEL")

	return v
}

// LoadShardConfig reads RABBITMQ_{HOST,PORT,USERNAME,PASSWORD}, SHARD_ID and
// LOG_LEVEL, defaulting SHARD_ID to 0 per spec.md §6.
func LoadShardConfig() (*ShardConfig, error) {
	v := newViper()
	v.SetDefault("shard_id", 0)

	cfg := &ShardConfig{
		RabbitMQ: broker.Config{
			Host:     v.GetString("rabbitmq.host"),
			Port:     v.GetInt("rabbitmq.port"),
			Username: v.GetString("rabbitmq.username"),
			Password: v.GetString("rabbitmq.password"),
		},
		ShardID:  v.GetInt("shard_id"),
		LogLevel: v.GetString("log_level"),
	}
	return cfg, nil
}

// LoadPriceCacheConfig reads RABBITMQ_{HOST,PORT,USERNAME,PASSWORD}, PORT,
// JWT_SECRET and LOG_LEVEL, defaulting PORT to 3000 and JWT_SECRET to
// "secret" per spec.md §6.
func LoadPriceCacheConfig() (*PriceCacheConfig, error) {
	v := newViper()
	v.SetDefault("port", 3000)
	v.SetDefault("jwt_secret", "secret")

	cfg := &PriceCacheConfig{
		RabbitMQ: broker.Config{
			Host:     v.GetString("rabbitmq.host"),
			Port:     v.GetInt("rabbitmq.port"),
			Username: v.GetString("rabbitmq.username"),
			Password: v.GetString("rabbitmq.password"),
		},
		Port:      v.GetInt("port"),
		JWTSecret: v.GetString("jwt_secret"),
		LogLevel:  v.GetString("log_level"),
	}
	return cfg, nil
}

// NewLogger builds a zap logger at the configured level, following the
// teacher's InitLogger (internal/config/config.go) but driven by a single
// runtime LogLevel field rather than a build-tag switch — the Go analogue
// of original_source's debug/release tracing split.
func NewLogger(level string) (*zap.Logger, error) {
	var cfg zap.Config
	switch level {
	case "debug":
		cfg = zap.NewDevelopmentConfig()
	default:
		cfg = zap.NewProductionConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
