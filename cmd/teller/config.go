package main

import (
	"log/slog"

	"github.com/Ari-Ghosh/Banking-MS/internal/config"
)

type tellerConfig struct {
	LogLevel slog.Level `env:"APP_LOG_LEVEL" envDefault:"warn"`
	Postgres config.PostgresConfig
}
