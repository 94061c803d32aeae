package main

import (
	"fmt"

	redis "github.com/go-redis/redis/v8"

	"github.com/emailvalidation9-a11y/backend/pkg/config"
)

// ProvideRedisClient builds a redis client from typed config.
// Returns nil when redis is disabled.
func ProvideRedisClient(cfg *config.Config) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}
	addr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func ProvideDatabaseConfig(cfg *config.Config) config.DatabaseConfig {
	return cfg.Database
}

func ProvideDispatchConfig(cfg *config.Config) config.DispatchConfig {
	return cfg.Dispatch
}

func ProvideHealthCheckConfig(cfg *config.Config) config.HealthCheckConfig {
	return cfg.HealthCheck
}

func ProvideArtifactsConfig(cfg *config.Config) config.ArtifactsConfig {
	return cfg.Artifacts
}
