package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/iliyamo/report-vault/internal/database"
)

// OpenDB opens a migrated SQLite database in a per-test temp directory.
// The handle is closed through t.Cleanup.
func OpenDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.Migrate(context.Background(), db, "sqlite"); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}
