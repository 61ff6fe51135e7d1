package postgres

import (
	"context"
	"fmt"

	"github.com/pressly/goose/v3"

	"doughjo/migrations"
)

// Migrate applies all pending embedded migrations against the open database.
func Migrate(ctx context.Context, db *DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db.DB, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
