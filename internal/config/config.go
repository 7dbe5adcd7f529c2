package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/nguyentranbao-ct/message-core/internal/models"
)

type Config struct {
	Server   ServerConfig   `envPrefix:"SERVER_"`
	Database DatabaseConfig `envPrefix:"DATABASE_"`
	Kafka    KafkaConfig    `envPrefix:"KAFKA_"`
	Message  MessageConfig  `envPrefix:"MESSAGE_"`
}

type ServerConfig struct {
	Addr string `env:"ADDR" envDefault:":8080"`
}

type DatabaseConfig struct {
	URI             string        `env:"URI" envDefault:"mongodb://localhost:27017"`
	Database        string        `env:"DATABASE" envDefault:"message_core"`
	Username        string        `env:"USERNAME"`
	Password        string        `env:"PASSWORD"`
	AuthDB          string        `env:"AUTH_DB" envDefault:"admin"`
	MaxPoolSize     uint64        `env:"MAX_POOL_SIZE" envDefault:"50"`
	MaxConnIdleTime time.Duration `env:"MAX_CONN_IDLE_TIME" envDefault:"30s"`
	Timeout         time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

type KafkaConfig struct {
	Enabled  bool     `env:"ENABLED" envDefault:"false"`
	Brokers  []string `env:"BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	Topic    string   `env:"TOPIC" envDefault:"message-events"`
	ClientID string   `env:"CLIENT_ID" envDefault:"message-core"`
}

type MessageConfig struct {
	// DefaultPageSize replaces a zero page size in conversation history requests.
	DefaultPageSize int `env:"DEFAULT_PAGE_SIZE" envDefault:"40"`
	// MaxPageSize caps larger page sizes in conversation history requests.
	MaxPageSize int `env:"MAX_PAGE_SIZE" envDefault:"200"`
	// LookupBatchSize bounds the ids sent in one query by GetMessages.
	LookupBatchSize int `env:"LOOKUP_BATCH_SIZE" envDefault:"500"`
	// Timezone sets the day boundaries of the grouped conversation view.
	Timezone string `env:"TIMEZONE" envDefault:"Local"`

	location *time.Location
}

// Location is the loaded Timezone, time.Local when the config was built by hand.
func (c MessageConfig) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if cfg.Message.DefaultPageSize <= 0 {
		return nil, fmt.Errorf("MESSAGE_DEFAULT_PAGE_SIZE must be positive, got %d", cfg.Message.DefaultPageSize)
	}
	if cfg.Message.MaxPageSize < cfg.Message.DefaultPageSize || cfg.Message.MaxPageSize > models.MaxPageSize {
		return nil, fmt.Errorf("MESSAGE_MAX_PAGE_SIZE must be between %d and %d, got %d",
			cfg.Message.DefaultPageSize, models.MaxPageSize, cfg.Message.MaxPageSize)
	}
	loc, err := time.LoadLocation(cfg.Message.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load MESSAGE_TIMEZONE: %w", err)
	}
	cfg.Message.location = loc
	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Errorf("load config: %w", err))
	}
	return cfg
}
