package db

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"blog_backend/internal/platform/config"
)

//go:embed migrations
var migrations embed.FS

// Migrate applies the embedded goose migrations for the given driver.
func Migrate(ctx context.Context, db *gorm.DB, driver string) error {
	provider, err := newProvider(db, driver)
	if err != nil {
		return err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	for _, r := range results {
		slog.Info("migration applied", "version", r.Source.Version, "duration", r.Duration)
	}
	return nil
}

// Rollback reverts the most recently applied migration.
func Rollback(ctx context.Context, db *gorm.DB, driver string) error {
	provider, err := newProvider(db, driver)
	if err != nil {
		return err
	}

	r, err := provider.Down(ctx)
	if err != nil {
		return fmt.Errorf("rolling back migration: %w", err)
	}
	slog.Info("migration rolled back", "version", r.Source.Version, "duration", r.Duration)
	return nil
}

// MigrationStatus lists every embedded migration with its applied state.
func MigrationStatus(ctx context.Context, db *gorm.DB, driver string) ([]*goose.MigrationStatus, error) {
	provider, err := newProvider(db, driver)
	if err != nil {
		return nil, err
	}

	statuses, err := provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading migration status: %w", err)
	}
	return statuses, nil
}

func newProvider(db *gorm.DB, driver string) (*goose.Provider, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB: %w", err)
	}

	dialect := goose.DialectPostgres
	if driver == config.DriverSQLite {
		dialect = goose.DialectSQLite3
	}

	fsys, err := fs.Sub(migrations, "migrations/"+driver)
	if err != nil {
		return nil, fmt.Errorf("locating %s migrations: %w", driver, err)
	}

	provider, err := goose.NewProvider(dialect, sqlDB, fsys)
	if err != nil {
		return nil, fmt.Errorf("creating migration provider: %w", err)
	}
	return provider, nil
}
