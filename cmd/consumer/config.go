package main

import (
	"log/slog"
	"time"

	"github.com/Ari-Ghosh/Banking-MS/internal/config"
)

type consumerConfig struct {
	LogLevel        slog.Level    `env:"APP_LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"APP_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	KafkaAddr  string `env:"KAFKA_ADDR"`
	KafkaTopic string `env:"KAFKA_TOPIC" envDefault:"funds-operations"`
	KafkaGroup string `env:"KAFKA_GROUP_ID" envDefault:"funds-engine"`

	// NATSAddr is optional; empty disables operation events.
	NATSAddr string `env:"NATS_ADDR" envDefault:""`

	Postgres config.PostgresConfig
}
