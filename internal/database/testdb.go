package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
)

// TestDatabaseEnv names the variable holding a PostgreSQL URL for integration tests.
const TestDatabaseEnv = "TEST_DATABASE_URL"

// NewTestDB returns a pool bound to a fresh, migrated schema that is dropped on cleanup.
// The test is skipped when TEST_DATABASE_URL is unset.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	base := os.Getenv(TestDatabaseEnv)
	if base == "" {
		t.Skipf("%s not set, skipping integration test", TestDatabaseEnv)
	}

	admin, err := New(base)
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	schemaName := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	ctx := context.Background()

	if _, err := admin.ExecContext(ctx, "CREATE SCHEMA "+schemaName); err != nil {
		admin.Close()
		t.Fatalf("creating test schema: %v", err)
	}

	connStr, err := withSearchPath(base, schemaName)
	if err != nil {
		admin.Close()
		t.Fatalf("building test connection string: %v", err)
	}

	db, err := New(connStr)
	if err != nil {
		admin.Close()
		t.Fatalf("opening test schema: %v", err)
	}

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		admin.Close()
		t.Fatalf("migrating test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
		_, _ = admin.ExecContext(context.Background(), "DROP SCHEMA "+schemaName+" CASCADE")
		admin.Close()
	})

	return db
}

func withSearchPath(connStr, schemaName string) (string, error) {
	u, err := url.Parse(connStr)
	if err != nil {
		return "", fmt.Errorf("parsing url: %w", err)
	}

	q := u.Query()
	q.Set("search_path", schemaName)
	u.RawQuery = q.Encode()

	return u.String(), nil
}
