package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"
)

type YamlCorsConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	Role           string   `yaml:"role"`
}

type YamlRedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Enabled  bool   `yaml:"enabled"`
	TTL      string `yaml:"ttl"`
}

type YamlEventsConfig struct {
	TopicID string `yaml:"topic_id"`
}

// YamlConfig is the structure that mirrors the raw config.yaml file.
type YamlConfig struct {
	ProjectID       string           `yaml:"project_id"`
	ListenAddr      string           `yaml:"listen_addr"`
	RoutePath       string           `yaml:"route_path"`
	UsersCollection string           `yaml:"users_collection"`
	TokenFields     []string         `yaml:"token_fields"`
	CorsConfig      YamlCorsConfig   `yaml:"cors"`
	RedisConfig     YamlRedisConfig  `yaml:"redis"`
	EventsConfig    YamlEventsConfig `yaml:"events"`
}

// NewConfigFromYaml converts the YamlConfig into a clean, base Config struct.
func NewConfigFromYaml(baseCfg *YamlConfig, logger *slog.Logger) (*Config, error) {
	logger.Debug("Mapping YAML config to base config struct")

	var ttl time.Duration
	if baseCfg.RedisConfig.TTL != "" {
		parsed, err := time.ParseDuration(baseCfg.RedisConfig.TTL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis.ttl %q: %w", baseCfg.RedisConfig.TTL, err)
		}
		ttl = parsed
	}

	cfg := &Config{
		ProjectID:       baseCfg.ProjectID,
		ListenAddr:      baseCfg.ListenAddr,
		RoutePath:       baseCfg.RoutePath,
		UsersCollection: baseCfg.UsersCollection,
		TokenFields:     baseCfg.TokenFields,
		CorsConfig: middleware.CorsConfig{
			AllowedOrigins: baseCfg.CorsConfig.AllowedOrigins,
			Role:           middleware.CorsRole(baseCfg.CorsConfig.Role),
		},
		Redis: RedisConfig{
			Addr:     baseCfg.RedisConfig.Addr,
			Password: baseCfg.RedisConfig.Password,
			DB:       baseCfg.RedisConfig.DB,
			Enabled:  baseCfg.RedisConfig.Enabled,
			TTL:      ttl,
		},
		Events: EventsConfig{
			TopicID: baseCfg.EventsConfig.TopicID,
		},
	}

	logger.Debug("YAML config mapping complete",
		"project_id", cfg.ProjectID,
		"listen_addr", cfg.ListenAddr,
		"route_path", cfg.RoutePath,
		"users_collection", cfg.UsersCollection,
	)

	return cfg, nil
}
