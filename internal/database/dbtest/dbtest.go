// Package dbtest provides a migrated in-memory SQLite database for tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/uptrace/bun"

	"github.com/redmonkez12/go-tasks-api/internal/database"
)

// New returns a fresh, fully migrated in-memory database closed at test end.
func New(t testing.TB) *bun.DB {
	t.Helper()
	ctx := context.Background()

	db, err := database.OpenSQLite(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := database.MigrateUp(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
