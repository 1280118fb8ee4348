package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

func (c *AppConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errors.New("invalid server port")
	}

	if c.WebSocket.MaxConnections < 1 {
		return errors.New("max connections must be positive")
	}

	if c.WebSocket.HandshakeTimeout < 1 {
		return errors.New("handshake timeout must be at least 1 second")
	}

	if c.WebSocket.PingInterval < 1 || c.WebSocket.ReapInterval < 1 {
		return errors.New("ping and reap intervals must be at least 1 second")
	}

	if c.WebSocket.PingInterval >= c.WebSocket.InactivityTimeout {
		return errors.New("ping interval must be less than inactivity timeout")
	}

	if c.WebSocket.WriteMaxRetries < 0 {
		return errors.New("write max retries cannot be negative")
	}

	switch strings.ToLower(c.Storage.Backend) {
	case "memory":
	case "redis":
		if c.Redis.Address == "" {
			return errors.New("redis address must be specified for redis storage")
		}
	default:
		return fmt.Errorf("invalid storage backend: %s. Must be 'memory' or 'redis'", c.Storage.Backend)
	}

	switch strings.ToLower(c.Broker.Type) {
	case "none":
	case "redis":
		if c.Redis.Address == "" {
			return errors.New("redis address must be specified for redis broker")
		}
		if c.Broker.Redis.Channel == "" {
			return errors.New("redis channel must be configured for redis broker")
		}
	case "kafka":
		if len(c.Broker.Kafka.Brokers) == 0 {
			return errors.New("kafka brokers must be specified for kafka broker")
		}
		if c.Broker.Kafka.Topic == "" {
			return errors.New("kafka topic must be specified for kafka broker")
		}
	default:
		return fmt.Errorf("invalid broker type: %s. Must be 'none', 'redis' or 'kafka'", c.Broker.Type)
	}

	if c.Translator.BaseURL != "" {
		if c.Translator.TranslatePath == "" || c.Translator.DetectPath == "" {
			return errors.New("translator paths must be configured when a baseURL is set")
		}
	}

	if c.Storage.HistoryLimit < 1 {
		return errors.New("storage history limit must be positive")
	}

	return nil
}

func bindEnvVars() {
	// Server
	viper.BindEnv("server.port", "BOTINTERPRETER_PORT")

	// Redis
	viper.BindEnv("redis.address", "BOTINTERPRETER_REDIS_ADDRESS")
	viper.BindEnv("redis.password", "BOTINTERPRETER_REDIS_PASSWORD")

	// WebSocket
	viper.BindEnv("websocket.maxConnections", "BOTINTERPRETER_MAX_CONNECTIONS")
	viper.BindEnv("websocket.pingInterval", "BOTINTERPRETER_PING_INTERVAL")
	viper.BindEnv("websocket.reapInterval", "BOTINTERPRETER_REAP_INTERVAL")
	viper.BindEnv("websocket.inactivityTimeout", "BOTINTERPRETER_INACTIVITY_TIMEOUT")
	viper.BindEnv("websocket.writeTimeout", "BOTINTERPRETER_WRITE_TIMEOUT")

	// Translator
	viper.BindEnv("translator.baseURL", "BOTINTERPRETER_TRANSLATOR_URL")
	viper.BindEnv("translator.fallbackEnabled", "BOTINTERPRETER_TRANSLATOR_FALLBACK")

	// Storage
	viper.BindEnv("storage.backend", "BOTINTERPRETER_STORAGE_BACKEND")

	// Broker
	viper.BindEnv("broker.type", "BOTINTERPRETER_BROKER_TYPE")
	viper.BindEnv("broker.kafka.brokers", "BOTINTERPRETER_KAFKA_BROKERS")
	viper.BindEnv("broker.kafka.topic", "BOTINTERPRETER_KAFKA_TOPIC")
}
