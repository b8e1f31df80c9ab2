package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// newMigrationProvider builds a goose provider over the embedded SQL migrations.
func newMigrationProvider(driver string, db *sql.DB) (*goose.Provider, error) {
	var dialect goose.Dialect
	switch driver {
	case DriverSQLite:
		dialect = goose.DialectSQLite3
	case DriverPostgres:
		dialect = goose.DialectPostgres
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	fsys, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return nil, err
	}

	return goose.NewProvider(dialect, db, fsys)
}

// runMigrations applies all pending migrations
func (s *Storage) runMigrations(ctx context.Context) error {
	provider, err := newMigrationProvider(s.driver, s.db)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	for _, r := range results {
		s.logger.Info("applied migration",
			"version", r.Source.Version,
			"file", r.Source.Path,
			"duration", r.Duration)
	}

	return nil
}

// SchemaVersion returns the latest applied migration version.
func (s *Storage) SchemaVersion(ctx context.Context) (int64, error) {
	provider, err := newMigrationProvider(s.driver, s.db)
	if err != nil {
		return 0, err
	}
	return provider.GetDBVersion(ctx)
}
