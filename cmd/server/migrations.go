package main

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/magicspin/laundry-api/internal/platform/postgres"
)

// handleMigrations runs a goose command against the embedded migrations
// and returns without starting the server.
func handleMigrations(ctx context.Context, db *sql.DB, command string, logger *slog.Logger) error {
	logger.Info("Executing migrations", "command", command)
	return postgres.Migrate(ctx, db, command, logger)
}
