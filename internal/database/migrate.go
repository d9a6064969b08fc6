package database

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/alexivanou/crwd-api/internal/config"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
)

// NewMigrator returns a migrate instance for the schema under dir.
// dir holds one subdirectory per dialect (sqlite, postgres).
func NewMigrator(db *sqlx.DB, cfg config.DBConfig, dir string) (*migrate.Migrate, error) {
	if cfg.IsMemory() {
		// Use the open handle; a second connection string would create a different in-memory database
		driver, err := sqlite3.WithInstance(db.DB, &sqlite3.Config{})
		if err != nil {
			return nil, fmt.Errorf("could not create sqlite driver: %w", err)
		}
		m, err := migrate.NewWithDatabaseInstance(sourceURL(dir, "sqlite"), "sqlite3", driver)
		if err != nil {
			return nil, fmt.Errorf("could not create migrate instance: %w", err)
		}
		return m, nil
	}

	m, err := migrate.New(sourceURL(dir, "postgres"), cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("could not create migrate instance: %w", err)
	}
	return m, nil
}

// Migrate applies all pending up migrations
func Migrate(db *sqlx.DB, cfg config.DBConfig, dir string) error {
	m, err := NewMigrator(db, cfg, dir)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

func sourceURL(dir, dialect string) string {
	return "file://" + filepath.ToSlash(filepath.Join(dir, dialect))
}
