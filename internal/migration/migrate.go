// Package migration applies SQL schema migrations before the postgres
// store is used.
package migration

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	// Driver registration for the postgres backend and the file source.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migrator abstracts migrate.Migrate so tests can swap the engine
type Migrator interface {
	Up() error
	Close() (error, error)
}

// Engine builds a migrator for a source and database URL
type Engine func(sourceURL, databaseURL string) (Migrator, error)

// DefaultEngine is the real golang-migrate implementation
func DefaultEngine(sourceURL, databaseURL string) (Migrator, error) {
	return migrate.New(sourceURL, databaseURL)
}

// Up applies all pending migrations from the given directory.
// A schema already at the latest version is not an error.
func Up(migrationsPath, databaseURL string) error {
	return UpWithEngine(DefaultEngine, migrationsPath, databaseURL)
}

// UpWithEngine runs Up with a custom engine
func UpWithEngine(engine Engine, migrationsPath, databaseURL string) (err error) {
	m, err := engine("file://"+migrationsPath, databaseURL)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer func() {
		serr, dberr := m.Close()
		if serr != nil && err == nil {
			err = fmt.Errorf("closing migration source: %w", serr)
		}
		if dberr != nil && err == nil {
			err = fmt.Errorf("closing migration database: %w", dberr)
		}
	}()

	if upErr := m.Up(); upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", upErr)
	}
	return nil
}
