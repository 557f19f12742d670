package main

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"alpools-bot/internal/storage"
)

func runMigrateCommand(ctx context.Context, command string, db *sql.DB, logger *zap.Logger) error {
	switch command {
	case "up":
		return storage.RunMigrations(ctx, db, logger)
	case "down":
		return storage.RollbackMigration(ctx, db, logger)
	case "status":
		return storage.MigrationStatus(ctx, db, logger)
	}
	return fmt.Errorf("unknown migrate command %q", command)
}
