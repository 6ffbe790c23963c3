package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"
)

const (
	defaultListenAddr      = ":8080"
	defaultRoutePath       = "/api/booking-push"
	defaultUsersCollection = "users_v2"
	defaultCacheTTL        = 5 * time.Minute
)

var defaultTokenFields = []string{"fcmTokens", "deviceTokens"}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type EventsConfig struct {
	// TopicID enables dispatch event publishing when set.
	TopicID string
}

// Config defines the *single*, authoritative configuration.
type Config struct {
	ProjectID  string
	ListenAddr string
	RoutePath  string

	UsersCollection string
	// TokenFields is the ordered list of recipient fields holding device tokens.
	TokenFields []string

	// ServiceAccountJSON is the Firebase service-account credential document.
	ServiceAccountJSON []byte

	CorsConfig middleware.CorsConfig
	Redis      RedisConfig
	Events     EventsConfig
}

// CorsEnabled reports whether any CORS origins are configured.
func (c *Config) CorsEnabled() bool {
	return len(c.CorsConfig.AllowedOrigins) > 0
}

type serviceAccount struct {
	ProjectID string `json:"project_id"`
}

// UpdateConfigWithEnvOverrides applies environment variables and final validation.
func UpdateConfigWithEnvOverrides(cfg *Config, logger *slog.Logger) (*Config, error) {
	logger.Debug("Applying environment variable overrides...")

	// 1. Apply Environment Overrides
	if val := os.Getenv("PROJECT_ID"); val != "" {
		logger.Debug("Overriding config value", "key", "PROJECT_ID", "source", "env")
		cfg.ProjectID = val
	}
	if val := os.Getenv("PORT"); val != "" {
		logger.Debug("Overriding config value", "key", "PORT", "source", "env")
		cfg.ListenAddr = ":" + val
	}
	if val := os.Getenv("ROUTE_PATH"); val != "" {
		logger.Debug("Overriding config value", "key", "ROUTE_PATH", "source", "env")
		cfg.RoutePath = val
	}
	if val := os.Getenv("USERS_COLLECTION"); val != "" {
		logger.Debug("Overriding config value", "key", "USERS_COLLECTION", "source", "env")
		cfg.UsersCollection = val
	}
	if val := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); val != "" {
		logger.Debug("Overriding config value", "key", "FIREBASE_SERVICE_ACCOUNT_JSON", "source", "env")
		cfg.ServiceAccountJSON = []byte(val)
	}
	if val := os.Getenv("DISPATCH_EVENTS_TOPIC_ID"); val != "" {
		logger.Debug("Overriding config value", "key", "DISPATCH_EVENTS_TOPIC_ID", "source", "env")
		cfg.Events.TopicID = val
	}

	// Redis Overrides
	if val := os.Getenv("REDIS_ADDR"); val != "" {
		cfg.Redis.Addr = val
		cfg.Redis.Enabled = true
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		cfg.Redis.Password = val
	}
	if val := os.Getenv("REDIS_DB"); val != "" {
		db, err := strconv.Atoi(val)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB %q: %w", val, err)
		}
		cfg.Redis.DB = db
	}
	if val := os.Getenv("REDIS_TTL"); val != "" {
		ttl, err := time.ParseDuration(val)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_TTL %q: %w", val, err)
		}
		cfg.Redis.TTL = ttl
	}
	if val := os.Getenv("REDIS_ENABLED"); val != "" {
		enabled, err := strconv.ParseBool(val)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_ENABLED %q: %w", val, err)
		}
		cfg.Redis.Enabled = enabled
	}

	// CORS Overrides
	if corsOrigins := os.Getenv("CORS_ALLOWED_ORIGINS"); corsOrigins != "" {
		logger.Debug("Overriding config value", "key", "CORS_ALLOWED_ORIGINS", "source", "env")
		var cleanOrigins []string
		for _, o := range strings.Split(corsOrigins, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				cleanOrigins = append(cleanOrigins, trimmed)
			}
		}
		cfg.CorsConfig.AllowedOrigins = cleanOrigins
	}

	// 2. Final Validation
	if len(cfg.ServiceAccountJSON) == 0 {
		return nil, fmt.Errorf("missing FIREBASE_SERVICE_ACCOUNT_JSON")
	}
	var sa serviceAccount
	if err := json.Unmarshal(cfg.ServiceAccountJSON, &sa); err != nil {
		return nil, fmt.Errorf("FIREBASE_SERVICE_ACCOUNT_JSON is not a valid credential document: %w", err)
	}
	if cfg.ProjectID == "" {
		cfg.ProjectID = sa.ProjectID
	}
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("project_id is required (set via YAML, PROJECT_ID env var, or the service account)")
	}
	if cfg.Redis.Enabled && cfg.Redis.Addr == "" {
		return nil, fmt.Errorf("redis is enabled but no address is set (REDIS_ADDR)")
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaultListenAddr
	}
	if cfg.RoutePath == "" {
		cfg.RoutePath = defaultRoutePath
	}
	if cfg.UsersCollection == "" {
		cfg.UsersCollection = defaultUsersCollection
	}
	if len(cfg.TokenFields) == 0 {
		cfg.TokenFields = defaultTokenFields
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = defaultCacheTTL
	}

	logger.Debug("Configuration finalized and validated successfully")
	return cfg, nil
}
