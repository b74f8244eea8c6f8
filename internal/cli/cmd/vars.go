package cmd

import (
	"go.uber.org/zap"

	"github.com/clipsift/clipsift/internal/config"
)

// Shared state across commands, set by the cli package once the persistent
// pre-run has loaded configuration.
var (
	cfg    *config.Config
	logger *zap.Logger
)

// SetConfig sets the configuration for commands.
func SetConfig(c *config.Config) {
	cfg = c
}

// GetConfig returns the active configuration.
func GetConfig() *config.Config {
	return cfg
}

// SetLogger sets the logger for commands.
func SetLogger(l *zap.Logger) {
	logger = l
}

// GetLogger returns the active logger, or a nop logger before setup.
func GetLogger() *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
