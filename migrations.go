package byteforge

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

//go:embed data/sql/migrations/*.sql
var migrationsFS embed.FS

const (
	migrationsTable      = "byteforge_migrations"
	migrationsLocksTable = "byteforge_migration_locks"
)

// GetMigrationsFS returns the embedded migration files for this package.
func GetMigrationsFS() embed.FS {
	return migrationsFS
}

// Migrate applies every pending embedded migration and returns the applied
// group. An empty group means the schema was already current.
func Migrate(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	migrator, err := newMigrator(db)
	if err != nil {
		return nil, err
	}
	if err := migrator.Init(ctx); err != nil {
		return nil, fmt.Errorf("byteforge: init migrations: %w", err)
	}
	if err := migrator.Lock(ctx); err != nil {
		return nil, fmt.Errorf("byteforge: lock migrations: %w", err)
	}
	defer func() { _ = migrator.Unlock(ctx) }()

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return nil, fmt.Errorf("byteforge: migrate: %w", err)
	}
	return group, nil
}

func newMigrator(db *bun.DB) (*migrate.Migrator, error) {
	sub, err := fs.Sub(migrationsFS, "data/sql/migrations")
	if err != nil {
		return nil, err
	}
	migrations := migrate.NewMigrations()
	if err := migrations.Discover(sub); err != nil {
		return nil, fmt.Errorf("byteforge: discover migrations: %w", err)
	}
	return migrate.NewMigrator(db, migrations,
		migrate.WithTableName(migrationsTable),
		migrate.WithLocksTableName(migrationsLocksTable),
	), nil
}
