package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"

	"guestbook/internal/config"
)

//go:embed migrations/postgres/*.sql migrations/sqlite3/*.sql
var migrationFiles embed.FS

type MigrationLogger interface {
	Info(message string, fields map[string]any)
}

// Migrate applies the embedded migrations for driver. Versions that were
// already applied are skipped, so calling it repeatedly is safe.
func Migrate(ctx context.Context, database *sql.DB, driver string, logger MigrationLogger) error {
	provider, err := newProvider(database, driver)
	if err != nil {
		return err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	if logger != nil {
		version, err := provider.GetDBVersion(ctx)
		if err != nil {
			return fmt.Errorf("read schema version: %w", err)
		}
		logger.Info("migrations_applied", map[string]any{
			"driver":  driver,
			"applied": len(results),
			"version": version,
		})
	}

	return nil
}

func newProvider(database *sql.DB, driver string) (*goose.Provider, error) {
	var dialect goose.Dialect
	switch driver {
	case config.DriverPostgres:
		dialect = goose.DialectPostgres
	case config.DriverSQLite:
		dialect = goose.DialectSQLite3
	default:
		return nil, fmt.Errorf("unsupported driver for migrations: %s", driver)
	}

	dir, err := fs.Sub(migrationFiles, "migrations/"+dirFor(driver))
	if err != nil {
		return nil, fmt.Errorf("open migration files: %w", err)
	}

	provider, err := goose.NewProvider(dialect, database, dir)
	if err != nil {
		return nil, fmt.Errorf("create migration provider: %w", err)
	}
	return provider, nil
}

func dirFor(driver string) string {
	if driver == config.DriverSQLite {
		return "sqlite3"
	}
	return "postgres"
}
