// Package dbtest opens throwaway SQLite databases for tests.
package dbtest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"guestbook/internal/config"
	"guestbook/internal/db"
)

// Config points at a fresh database file under the test's temp dir.
func Config(t *testing.T) config.Database {
	t.Helper()

	path := filepath.Join(t.TempDir(), "guestbook.db")
	return config.Database{
		Driver:       config.DriverSQLite,
		URL:          "file:" + path + "?_busy_timeout=5000",
		MaxOpenConns: 4,
	}
}

// Open returns a migrated database that is closed when the test ends.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	database, err := db.Open(context.Background(), Config(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, db.Migrate(context.Background(), database, config.DriverSQLite, nil))
	return database
}
