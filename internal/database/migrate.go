package database

import (
	"context"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"github.com/redmonkez12/go-tasks-api/internal/database/migrations"
)

// MigrationStatus is the applied state of a single migration.
type MigrationStatus struct {
	Version int64
	Source  string
	Applied bool
}

func newProvider(db *bun.DB) (*goose.Provider, error) {
	var d goose.Dialect
	switch db.Dialect().Name() {
	case dialect.PG:
		d = goose.DialectPostgres
	case dialect.SQLite:
		d = goose.DialectSQLite3
	default:
		return nil, fmt.Errorf("no migration dialect for %s", db.Dialect().Name())
	}

	provider, err := goose.NewProvider(d, db.DB, migrations.FS)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return provider, nil
}

// MigrateUp applies all pending migrations and returns how many ran.
func MigrateUp(ctx context.Context, db *bun.DB) (int, error) {
	provider, err := newProvider(db)
	if err != nil {
		return 0, err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to apply migrations: %w", err)
	}
	return len(results), nil
}

// MigrateDown rolls back the most recent migration.
func MigrateDown(ctx context.Context, db *bun.DB) error {
	provider, err := newProvider(db)
	if err != nil {
		return err
	}

	if _, err := provider.Down(ctx); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return nil
}

// MigrationsStatus reports every known migration and whether it is applied.
func MigrationsStatus(ctx context.Context, db *bun.DB) ([]MigrationStatus, error) {
	provider, err := newProvider(db)
	if err != nil {
		return nil, err
	}

	statuses, err := provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration status: %w", err)
	}

	out := make([]MigrationStatus, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, MigrationStatus{
			Version: s.Source.Version,
			Source:  s.Source.Path,
			Applied: s.State == goose.StateApplied,
		})
	}
	return out, nil
}
