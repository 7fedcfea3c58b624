package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteOptions controls how the SQLite file is opened.
type SQLiteOptions struct {
	// Migrate applies the bundled migrations after opening. Leave it off when
	// reading a database whose schema is owned elsewhere.
	Migrate bool
}

// OpenSQLite opens the SQLite database at path.
func OpenSQLite(ctx context.Context, path string, opts SQLiteOptions) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("platform/db: create sqlite dir: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("platform/db: open sqlite: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("platform/db: ping sqlite: %w", err)
	}

	if opts.Migrate {
		if err := RunMigrations(path); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}
	return conn, nil
}

// RunMigrations applies the embedded migrations to the SQLite file at path.
func RunMigrations(path string) error {
	// A separate handle keeps migrate's Close from tearing down the caller's pool.
	migrateDB, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("platform/db: open migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("platform/db: sqlite driver: %w", err)
	}
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("platform/db: migration source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("platform/db: migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("platform/db: run migrations: %w", err)
	}
	return nil
}
