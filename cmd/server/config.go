package main

import (
	"fmt"
	"log/slog"

	"github.com/magicspin/laundry-api/internal/config"
)

// loadAppConfig loads the application configuration from an optional file
// and LAUNDRY_* environment variables.
func loadAppConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFrom(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"email_enabled", cfg.Email.Enabled,
		"strict_transitions", cfg.Orders.StrictTransitions)
	return cfg, nil
}
