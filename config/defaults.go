package config

import "github.com/spf13/viper"

func setDefaults() {
	// Server
	viper.SetDefault("server.port", 5000)
	viper.SetDefault("server.readTimeout", 15)
	viper.SetDefault("server.writeTimeout", 15)

	// Redis
	viper.SetDefault("redis.address", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.poolSize", 100)
	viper.SetDefault("redis.poolTimeout", 5)

	// WebSocket
	viper.SetDefault("websocket.maxConnections", 10000)
	viper.SetDefault("websocket.messageSizeLimit", 65536)
	viper.SetDefault("websocket.handshakeTimeout", 10)
	viper.SetDefault("websocket.pingInterval", 30)
	viper.SetDefault("websocket.reapInterval", 60)
	viper.SetDefault("websocket.inactivityTimeout", 300)
	viper.SetDefault("websocket.writeTimeout", 10)
	viper.SetDefault("websocket.writeMaxRetries", 3)

	// Translator
	viper.SetDefault("translator.baseURL", "")
	viper.SetDefault("translator.translatePath", "/translate")
	viper.SetDefault("translator.detectPath", "/detect")
	viper.SetDefault("translator.timeoutSeconds", 10)
	viper.SetDefault("translator.maxRetries", 2)
	viper.SetDefault("translator.fallbackEnabled", true)

	// Storage
	viper.SetDefault("storage.backend", "memory")
	viper.SetDefault("storage.historyLimit", 500)
	viper.SetDefault("storage.keyPrefix", "botinterpreter")

	// Broker
	viper.SetDefault("broker.type", "none")
	viper.SetDefault("broker.redis.channel", "botinterpreter:events")
	viper.SetDefault("broker.kafka.topic", "botinterpreter-events")

	// Metrics
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.port", 9090)
	viper.SetDefault("metrics.path", "/metrics")
}
