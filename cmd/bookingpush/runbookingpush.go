package main

import (
	"context"
	_ "embed"
	"log/slog"
	"os"

	"cloud.google.com/go/pubsub/v2"
	firebase "firebase.google.com/go/v4"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"
	"gopkg.in/yaml.v3"

	"github.com/tinywideclouds/go-booking-push-service/bookingpushservice"
	"github.com/tinywideclouds/go-booking-push-service/bookingpushservice/config"
	"github.com/tinywideclouds/go-booking-push-service/internal/app"
	"github.com/tinywideclouds/go-booking-push-service/internal/platform/fcm"
	"github.com/tinywideclouds/go-booking-push-service/internal/platform/firebaseauth"
	ps "github.com/tinywideclouds/go-booking-push-service/internal/platform/pubsub"
	"github.com/tinywideclouds/go-booking-push-service/internal/storage/cache"
	fsStore "github.com/tinywideclouds/go-booking-push-service/internal/storage/firestore"
	"github.com/tinywideclouds/go-booking-push-service/pkg/dispatch"
)

//go:embed local.yaml
var configFile []byte

func main() {
	var logLevel slog.Level
	switch os.Getenv("LOG_LEVEL") {
	case "debug", "DEBUG":
		logLevel = slog.LevelDebug
	case "info", "INFO":
		logLevel = slog.LevelInfo
	case "warn", "WARN":
		logLevel = slog.LevelWarn
	case "error", "ERROR":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})).With("service", "go-booking-push-service")
	slog.SetDefault(logger)

	// A local .env is optional; deployed environments set variables directly.
	if err := godotenv.Load(); err == nil {
		logger.Debug("Loaded environment from .env")
	}

	ctx := context.Background()

	// --- Config Loading ---
	var yamlCfg config.YamlConfig
	if err := yaml.Unmarshal(configFile, &yamlCfg); err != nil {
		logger.Error("Failed to unmarshal embedded yaml config", "err", err)
		os.Exit(1)
	}
	baseCfg, err := config.NewConfigFromYaml(&yamlCfg, logger)
	if err != nil {
		logger.Error("Config failed", "err", err)
		os.Exit(1)
	}
	cfg, err := config.UpdateConfigWithEnvOverrides(baseCfg, logger)
	if err != nil {
		logger.Error("Config failed", "err", err)
		os.Exit(1)
	}

	// --- Firebase ---
	credentials := option.WithCredentialsJSON(cfg.ServiceAccountJSON)
	fbApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, credentials)
	if err != nil {
		logger.Error("Failed to initialize Firebase App", "err", err)
		os.Exit(1)
	}
	authClient, err := fbApp.Auth(ctx)
	if err != nil {
		logger.Error("Failed to create Firebase Auth client", "err", err)
		os.Exit(1)
	}
	fsClient, err := fbApp.Firestore(ctx)
	if err != nil {
		logger.Error("Firestore client failed", "err", err)
		os.Exit(1)
	}
	defer fsClient.Close()
	fcmMessaging, err := fbApp.Messaging(ctx)
	if err != nil {
		logger.Error("Failed to create FCM messaging client", "err", err)
		os.Exit(1)
	}

	// --- Recipient Store (Decorated) ---
	var store dispatch.RecipientStore = fsStore.NewRecipientStore(fsClient, cfg.UsersCollection, cfg.TokenFields)
	logger.Info("RecipientStore initialized", "type", "firestore", "collection", cfg.UsersCollection)

	if cfg.Redis.Enabled {
		logger.Info("Initializing Redis Cache layer...", "addr", cfg.Redis.Addr)
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Error("Failed to connect to Redis", "err", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		store = cache.NewCachedRecipientStore(store, redisClient, cfg.Redis.TTL, logger)
		logger.Info("RecipientStore upgraded", "type", "redis_cached_firestore", "ttl", cfg.Redis.TTL)
	}

	// --- Dispatch Events (Optional) ---
	var events dispatch.EventPublisher
	if cfg.Events.TopicID != "" {
		psClient, err := pubsub.NewClient(ctx, cfg.ProjectID, credentials)
		if err != nil {
			logger.Error("PubSub client failed", "err", err)
			os.Exit(1)
		}
		defer psClient.Close()
		publisher := psClient.Publisher(cfg.Events.TopicID)
		defer publisher.Stop()
		events = ps.NewProducer(publisher)
		logger.Info("Dispatch events enabled", "topic", cfg.Events.TopicID)
	}

	service := bookingpushservice.New(cfg, bookingpushservice.Dependencies{
		Verifier:   firebaseauth.NewVerifier(authClient, logger),
		Store:      store,
		Dispatcher: fcm.NewDispatcher(fcmMessaging, logger),
		Events:     events,
	}, logger)

	if err := app.Run(ctx, logger, service); err != nil {
		logger.Error("Service shutdown with error", "err", err)
		os.Exit(1)
	}
}
