// Package config holds the analytics-service settings.
package config

import (
	"time"

	sharedconfig "github.com/BigPhilsnr/patient-management-system/shared/config"
)

type Config struct {
	Port     string `env:"PORT" envDefault:"4002"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	ConsumerGroup string        `env:"CONSUMER_GROUP" envDefault:"analytics-service"`
	ConsumerName  string        `env:"CONSUMER_NAME" envDefault:"analytics-consumer-1"`
	DedupeTTL     time.Duration `env:"DEDUPE_TTL" envDefault:"24h"`
	ClaimMinIdle  time.Duration `env:"CLAIM_MIN_IDLE" envDefault:"30s"`

	OTelEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

func Load() (Config, error) {
	var cfg Config
	if err := sharedconfig.Load(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
