// Package bootstrap loads CLI configuration and assembles the byteforge
// module behind the byteforge command.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"gopkg.in/yaml.v3"

	"github.com/ridasaidd/byteforge-sub002"
	"github.com/ridasaidd/byteforge-sub002/internal/di"
	"github.com/ridasaidd/byteforge-sub002/internal/runtimeconfig"
	"github.com/ridasaidd/byteforge-sub002/pkg/interfaces"
)

const envPrefix = "BYTEFORGE_"

// Options captures what a CLI invocation needs to build a module.
type Options struct {
	ConfigPath     string
	EnvFile        string
	LoggerProvider interfaces.LoggerProvider
	// Migrate applies the embedded migrations when a database is configured.
	Migrate bool
}

// Module wraps the byteforge module and the database handle it owns.
type Module struct {
	Module *byteforge.Module
	DB     *bun.DB
}

// Close stops background jobs and releases the database.
func (m *Module) Close() error {
	if m == nil {
		return nil
	}
	var errs []error
	if m.Module != nil {
		errs = append(errs, m.Module.Close())
	}
	if m.DB != nil {
		errs = append(errs, m.DB.Close())
	}
	return errors.Join(errs...)
}

// LoadConfig reads an optional YAML file over the defaults, then applies
// BYTEFORGE_* environment overrides. envFile is loaded first when present.
func LoadConfig(path, envFile string) (byteforge.Config, error) {
	cfg := byteforge.DefaultConfig()

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *byteforge.Config) {
	set := func(name string, target *string) {
		if value, ok := os.LookupEnv(envPrefix + name); ok {
			*target = strings.TrimSpace(value)
		}
	}
	set("DATABASE_DRIVER", &cfg.Database.Driver)
	set("DATABASE_DSN", &cfg.Database.DSN)
	set("STORAGE_DRIVER", &cfg.Storage.Driver)
	set("STORAGE_ROOT", &cfg.Storage.Root)
	set("STORAGE_BUCKET", &cfg.Storage.Bucket)
	set("STORAGE_REGION", &cfg.Storage.Region)
	set("STORAGE_ENDPOINT", &cfg.Storage.Endpoint)
	set("STORAGE_PUBLIC_BASE_URL", &cfg.Storage.PublicBaseURL)
	set("LOG_LEVEL", &cfg.Logging.Level)
	set("LOG_FORMAT", &cfg.Logging.Format)
	if sites, ok := os.LookupEnv(envPrefix + "REBUILD_SITES"); ok {
		cfg.Publish.RebuildSites = splitList(sites)
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// OpenDB opens the configured database. It returns nil when no driver is
// configured.
func OpenDB(cfg byteforge.Config) (*bun.DB, error) {
	switch cfg.DatabaseDriver() {
	case "":
		return nil, nil
	case runtimeconfig.DatabaseSQLite:
		sqlDB, err := sql.Open("sqlite3", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		db := bun.NewDB(sqlDB, sqlitedialect.New())
		db.SetMaxOpenConns(1)
		return db, nil
	case runtimeconfig.DatabasePostgres:
		sqlDB, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("%w: %q", byteforge.ErrDatabaseDriverUnknown, cfg.Database.Driver)
	}
}

// BuildModule loads configuration, opens the database and constructs the
// module.
func BuildModule(ctx context.Context, opts Options) (*Module, error) {
	cfg, err := LoadConfig(opts.ConfigPath, opts.EnvFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	db, err := OpenDB(cfg)
	if err != nil {
		return nil, err
	}

	diOpts := []di.Option{}
	if db != nil {
		if opts.Migrate {
			if _, err := byteforge.Migrate(ctx, db); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		diOpts = append(diOpts, di.WithBunDB(db))
	}
	if opts.LoggerProvider != nil {
		diOpts = append(diOpts, di.WithLoggerProvider(opts.LoggerProvider))
	}

	module, err := byteforge.New(cfg, diOpts...)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, fmt.Errorf("initialise byteforge module: %w", err)
	}
	return &Module{Module: module, DB: db}, nil
}
