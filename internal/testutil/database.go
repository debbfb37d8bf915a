package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"

	"tablepos/internal/infrastructure/mysql"
)

const defaultTestDSN = "root:@tcp(localhost:3306)/tablepos_test?parseTime=true&loc=UTC"

// SetupTestDB opens the integration database named by TEST_DB_DSN and skips
// the test when it cannot be reached.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		dsn = defaultTestDSN
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// CleanupTestDB empties every table, children first, and closes db.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	t.Helper()

	if db == nil {
		return
	}

	for i := len(mysql.Migrations) - 1; i >= 0; i-- {
		table := mysql.Migrations[i].Name
		if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

func SetupTestTables(t *testing.T, db *sql.DB) {
	t.Helper()

	if err := mysql.Migrate(context.Background(), db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	for i := len(mysql.Migrations) - 1; i >= 0; i-- {
		if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", mysql.Migrations[i].Name)); err != nil {
			t.Fatalf("failed to clear table %s: %v", mysql.Migrations[i].Name, err)
		}
	}
}
