package byteforge

import "github.com/ridasaidd/byteforge-sub002/internal/runtimeconfig"

var (
	ErrStorageDriverUnknown    = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageRootRequired     = runtimeconfig.ErrStorageRootRequired
	ErrStorageBucketRequired   = runtimeconfig.ErrStorageBucketRequired
	ErrDatabaseDriverUnknown   = runtimeconfig.ErrDatabaseDriverUnknown
	ErrDatabaseDSNRequired     = runtimeconfig.ErrDatabaseDSNRequired
	ErrCacheTTLInvalid         = runtimeconfig.ErrCacheTTLInvalid
	ErrMasterFileInvalid       = runtimeconfig.ErrMasterFileInvalid
	ErrSchedulerRequiresCron   = runtimeconfig.ErrSchedulerRequiresCron
	ErrLoggingProviderRequired = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
	ErrThemeManifestInvalid    = runtimeconfig.ErrThemeManifestInvalid
)

type (
	Config         = runtimeconfig.Config
	ThemeConfig    = runtimeconfig.ThemeConfig
	CacheConfig    = runtimeconfig.CacheConfig
	StorageConfig  = runtimeconfig.StorageConfig
	DatabaseConfig = runtimeconfig.DatabaseConfig
	PublishConfig  = runtimeconfig.PublishConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
	Features       = runtimeconfig.Features
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
