package runtimeconfig

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

var (
	ErrStorageDriverUnknown    = errors.New("byteforge config: storage driver is invalid")
	ErrStorageRootRequired     = errors.New("byteforge config: storage root is required for the fs driver")
	ErrStorageBucketRequired   = errors.New("byteforge config: storage bucket is required for the s3 driver")
	ErrDatabaseDriverUnknown   = errors.New("byteforge config: database driver is invalid")
	ErrDatabaseDSNRequired     = errors.New("byteforge config: database dsn is required")
	ErrCacheTTLInvalid         = errors.New("byteforge config: metadata ttl must be positive when cache is enabled")
	ErrMasterFileInvalid       = errors.New("byteforge config: master file must be a bare .css file name")
	ErrSchedulerRequiresCron   = errors.New("byteforge config: scheduler feature requires a rebuild cron expression")
	ErrLoggingProviderRequired = errors.New("byteforge config: logging provider is required when logging feature is enabled")
	ErrLoggingProviderUnknown  = errors.New("byteforge config: logging provider is invalid")
	ErrLoggingLevelInvalid     = errors.New("byteforge config: logging level is invalid")
	ErrLoggingFormatInvalid    = errors.New("byteforge config: logging format is invalid")
	ErrThemeManifestInvalid    = errors.New("byteforge config: theme manifests must be .json files")
)

// Config aggregates feature flags and adapter bindings for the module.
type Config struct {
	Themes   ThemeConfig    `yaml:"themes"`
	Cache    CacheConfig    `yaml:"cache"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Publish  PublishConfig  `yaml:"publish"`
	Logging  LoggingConfig  `yaml:"logging"`
	Features Features       `yaml:"features"`
}

// ThemeConfig lists theme manifests imported at startup.
type ThemeConfig struct {
	Manifests []string `yaml:"manifests"`
}

// CacheConfig controls repository and metadata caching.
type CacheConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MetadataTTL time.Duration `yaml:"metadata_ttl"`
}

// StorageConfig selects the blob backend sections and stylesheets live in.
type StorageConfig struct {
	Driver          string `yaml:"driver"`
	Root            string `yaml:"root"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Prefix          string `yaml:"prefix"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	PublicBaseURL   string `yaml:"public_base_url"`
}

// DatabaseConfig selects the SQL backend. An empty driver keeps every
// repository in memory.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// PublishConfig captures master stylesheet behaviour.
type PublishConfig struct {
	MasterFile   string   `yaml:"master_file"`
	RebuildCron  string   `yaml:"rebuild_cron"`
	RebuildSites []string `yaml:"rebuild_sites"`
}

// Features toggles optional module functionality.
type Features struct {
	Scheduler bool `yaml:"scheduler"`
	Logger    bool `yaml:"logger"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

const (
	StorageMemory     = "memory"
	StorageFilesystem = "fs"
	StorageS3         = "s3"

	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
)

// DefaultConfig returns in-memory defaults suitable for tests and previews.
func DefaultConfig() Config {
	return Config{
		Cache: CacheConfig{
			Enabled:     true,
			MetadataTTL: time.Hour,
		},
		Storage: StorageConfig{
			Driver:        StorageMemory,
			PublicBaseURL: "/storage",
		},
		Publish: PublishConfig{
			MasterFile:  "style.css",
			RebuildCron: "0 * * * *",
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	switch normalize(cfg.Storage.Driver) {
	case StorageMemory:
	case StorageFilesystem:
		if strings.TrimSpace(cfg.Storage.Root) == "" {
			return ErrStorageRootRequired
		}
	case StorageS3:
		if strings.TrimSpace(cfg.Storage.Bucket) == "" {
			return ErrStorageBucketRequired
		}
	default:
		return fmt.Errorf("%w: %q", ErrStorageDriverUnknown, cfg.Storage.Driver)
	}

	if driver := normalize(cfg.Database.Driver); driver != "" {
		if driver != DatabaseSQLite && driver != DatabasePostgres {
			return fmt.Errorf("%w: %s", ErrDatabaseDriverUnknown, driver)
		}
		if strings.TrimSpace(cfg.Database.DSN) == "" {
			return ErrDatabaseDSNRequired
		}
	}

	if cfg.Cache.Enabled && cfg.Cache.MetadataTTL <= 0 {
		return ErrCacheTTLInvalid
	}

	if file := strings.TrimSpace(cfg.Publish.MasterFile); file != "" {
		if strings.ContainsAny(file, `/\`) || !strings.HasSuffix(file, ".css") {
			return fmt.Errorf("%w: %s", ErrMasterFileInvalid, file)
		}
	}

	for _, path := range cfg.Themes.Manifests {
		if !strings.HasSuffix(strings.ToLower(strings.TrimSpace(path)), ".json") {
			return fmt.Errorf("%w: %s", ErrThemeManifestInvalid, path)
		}
	}

	if cfg.Features.Scheduler {
		if strings.TrimSpace(cfg.Publish.RebuildCron) == "" {
			return ErrSchedulerRequiresCron
		}
	}

	if cfg.Features.Logger {
		provider := normalize(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

// StorageDriver returns the normalised storage driver name.
func (cfg Config) StorageDriver() string {
	return normalize(cfg.Storage.Driver)
}

// DatabaseDriver returns the normalised database driver name, empty when no
// database is configured.
func (cfg Config) DatabaseDriver() string {
	return normalize(cfg.Database.Driver)
}

// LoggingProvider returns the normalised logging provider name.
func (cfg Config) LoggingProvider() string {
	return normalize(cfg.Logging.Provider)
}

// Focused reports whether module logs should be emitted. An empty focus list
// enables every module.
func (cfg LoggingConfig) Focused(module string) bool {
	if len(cfg.Focus) == 0 {
		return true
	}
	return slices.ContainsFunc(cfg.Focus, func(candidate string) bool {
		candidate = strings.TrimSpace(candidate)
		return candidate == module || strings.HasPrefix(module, candidate+".")
	})
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger", "zerolog":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
