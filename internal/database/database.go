package database

import (
	"context"
	"fmt"

	"github.com/alexivanou/crwd-api/internal/config"
	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver for database/sql
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// DriverName returns the database/sql driver used for a DB type
func DriverName(t config.DBType) string {
	if t == config.DBTypePostgreSQL {
		return "pgx"
	}
	return "sqlite3"
}

// Connect opens the catalog database described by cfg
func Connect(ctx context.Context, cfg config.DBConfig) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, DriverName(cfg.Type), cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.IsMemory() {
		// The shared in-memory database lives as long as one connection stays open
		db.SetMaxIdleConns(4)
		db.SetConnMaxLifetime(0)

		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	return db, nil
}
