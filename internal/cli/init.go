// Package cli provides common initialization utilities shared by
// cmd/donoboard and cmd/board-worker.
package cli

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"donoboard/internal/backend"
	"donoboard/internal/config"
	applog "donoboard/internal/log"
)

// SetupLogger initializes structured logging with default settings.
// Returns the configured logger and sets it as the default logger.
func SetupLogger(component string) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Component = component
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitStore creates the ledger store for the configured backend.
// Returns the store result or exits the process on failure.
func InitStore(logger *applog.Logger, cfg *config.Config) *backend.Result {
	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateStore(context.Background(), backend.Config{
		Type:         backend.BackendType(cfg.DataBackend),
		SQLiteDBPath: cfg.SQLiteDBPath,
	})
	if err != nil {
		logger.Error("Failed to initialize ledger store", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	return result
}
