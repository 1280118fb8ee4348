package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Akif-Ali-10p/BotInterpreter/broker"
	"github.com/Akif-Ali-10p/BotInterpreter/config"
	"github.com/Akif-Ali-10p/BotInterpreter/metrics"
	"github.com/Akif-Ali-10p/BotInterpreter/relay"
	"github.com/Akif-Ali-10p/BotInterpreter/server"
	"github.com/Akif-Ali-10p/BotInterpreter/services"
	"github.com/Akif-Ali-10p/BotInterpreter/storage"
	"github.com/Akif-Ali-10p/BotInterpreter/translate"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "dev"
	}
	if err := config.Initialize(env); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}
	cfg := config.Get()

	zapLogger, err := newLogger(env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()
	logger := zapLogger.Sugar()

	serverID := uuid.New().String()
	logger.Infow("starting relay instance", "server_id", serverID, "env", env)

	// Redis is only dialed when a configured backend needs it.
	var redisClient *redis.Client
	needsRedis := strings.EqualFold(cfg.Storage.Backend, "redis") || strings.EqualFold(cfg.Broker.Type, "redis")
	if needsRedis {
		redisClient, err = services.NewRedisClient(
			cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB,
			cfg.Redis.PoolSize, cfg.Redis.PoolTimeout, logger,
		)
		if err != nil {
			logger.Fatalw("failed to connect to redis", "error", err)
		}
		defer services.CloseRedisClient(redisClient)
	}

	// Storage backend
	var store storage.Store
	switch strings.ToLower(cfg.Storage.Backend) {
	case "redis":
		store = storage.NewRedisStore(redisClient, cfg.Storage.KeyPrefix, cfg.Storage.HistoryLimit)
		logger.Infow("using redis storage backend")
	default:
		store = storage.NewMemoryStore(cfg.Storage.HistoryLimit)
		logger.Infow("using in-memory storage backend")
	}

	// Event export broker
	var publisher broker.Publisher
	switch strings.ToLower(cfg.Broker.Type) {
	case "redis":
		publisher = broker.NewRedisPublisher(redisClient, cfg.Broker.Redis.Channel)
	case "kafka":
		publisher, err = broker.NewKafkaPublisher(cfg.Broker.Kafka.Brokers, cfg.Broker.Kafka.Topic, logger)
		if err != nil {
			logger.Fatalw("failed to create kafka publisher", "error", err)
		}
	default:
		publisher = broker.Noop{}
	}
	defer publisher.Close()
	logger.Infow("event broker configured", "type", publisher.Type())

	// Translator chain: external HTTP service when configured, offline
	// dictionary as the fallback tier.
	var primary translate.Translator
	if cfg.Translator.BaseURL != "" {
		primary = translate.NewHTTPTranslator(
			cfg.Translator.BaseURL, cfg.Translator.TranslatePath, cfg.Translator.DetectPath,
			time.Duration(cfg.Translator.TimeoutSeconds)*time.Second,
			cfg.Translator.MaxRetries, logger,
		)
	}
	var fallback translate.Translator
	if cfg.Translator.FallbackEnabled {
		fallback = translate.NewStaticTranslator()
	}
	translator := translate.NewComposite(primary, fallback, logger)

	// Relay core
	registry := relay.NewRegistry(logger)
	tracker := relay.NewTracker()
	router := relay.NewRouter(registry, translator, store, publisher, serverID, logger)
	wsHandler := relay.NewHandler(registry, tracker, router, &cfg.WebSocket, logger)

	reaper := relay.NewReaper(tracker, registry, &cfg.WebSocket, logger)
	go reaper.Run(ctx)

	if cfg.Metrics.Enabled {
		metrics.StartServer(cfg.Metrics.Port, cfg.Metrics.Path, logger)
	}

	srv := server.New(&cfg.Server, wsHandler, store, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatalw("server failed", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Infow("shutdown signal received")

	// Graceful shutdown: stop the reaper's timers, close every live
	// connection, then drain HTTP.
	cancel()
	registry.CloseAll(websocket.CloseGoingAway, "server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("server shutdown error", "error", err)
	}
	logger.Infow("shutdown complete")
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
