package config

import (
	"fmt"
	"sync"

	"github.com/spf13/viper"
)

type AppConfig struct {
	Server     ServerConfig
	Redis      RedisConfig
	WebSocket  WebSocketConfig
	Translator TranslatorConfig
	Storage    StorageConfig
	Broker     BrokerConfig
	Metrics    MetricsConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  int
	WriteTimeout int
}

type RedisConfig struct {
	Address     string
	Password    string
	DB          int
	PoolSize    int
	PoolTimeout int
}

type WebSocketConfig struct {
	MaxConnections    int
	MessageSizeLimit  int64
	HandshakeTimeout  int
	PingInterval      int // Seconds
	ReapInterval      int // Seconds
	InactivityTimeout int // Seconds
	WriteTimeout      int // Seconds
	WriteMaxRetries   int
}

type TranslatorConfig struct {
	BaseURL         string
	TranslatePath   string
	DetectPath      string
	TimeoutSeconds  int
	MaxRetries      int
	FallbackEnabled bool
}

type StorageConfig struct {
	Backend      string // "memory" or "redis"
	HistoryLimit int
	KeyPrefix    string
}

type BrokerConfig struct {
	Type  string // "none", "redis" or "kafka"
	Redis BrokerRedisConfig
	Kafka BrokerKafkaConfig
}

type BrokerRedisConfig struct {
	Channel string
}

type BrokerKafkaConfig struct {
	Brokers []string
	Topic   string
}

type MetricsConfig struct {
	Enabled bool
	Port    int
	Path    string
}

var (
	instance *AppConfig
	once     sync.Once
)

func Initialize(env string) error {
	var initErr error
	once.Do(func() {
		viper.SetConfigName(fmt.Sprintf("config.%s", env))
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")

		viper.AutomaticEnv()
		viper.SetEnvPrefix("BOTINTERPRETER")

		setDefaults()
		bindEnvVars()

		// The config file is optional: defaults plus env overrides are a
		// complete configuration for a single-process deployment.
		if err := viper.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				initErr = fmt.Errorf("config file error: %w", err)
				return
			}
		}

		if err := viper.Unmarshal(&instance); err != nil {
			initErr = fmt.Errorf("config unmarshal error: %w", err)
			return
		}

		if err := instance.Validate(); err != nil {
			initErr = fmt.Errorf("config validation failed: %w", err)
			return
		}
	})
	return initErr
}

func Get() *AppConfig {
	return instance
}
