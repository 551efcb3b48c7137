package di

import (
	"context"
	"errors"
	"fmt"
	"strings"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/ridasaidd/byteforge-sub002/internal/blob"
	"github.com/ridasaidd/byteforge-sub002/internal/compiler"
	"github.com/ridasaidd/byteforge-sub002/internal/jobs"
	"github.com/ridasaidd/byteforge-sub002/internal/logging"
	"github.com/ridasaidd/byteforge-sub002/internal/metadata"
	"github.com/ridasaidd/byteforge-sub002/internal/navigation"
	"github.com/ridasaidd/byteforge-sub002/internal/pages"
	"github.com/ridasaidd/byteforge-sub002/internal/publish"
	"github.com/ridasaidd/byteforge-sub002/internal/runtimeconfig"
	"github.com/ridasaidd/byteforge-sub002/internal/sections"
	"github.com/ridasaidd/byteforge-sub002/internal/settings"
	"github.com/ridasaidd/byteforge-sub002/internal/themes"
	"github.com/ridasaidd/byteforge-sub002/pkg/interfaces"
)

// ErrRebuildSiteInvalid is returned when a configured rebuild site is not a
// UUID.
var ErrRebuildSiteInvalid = errors.New("di: rebuild site must be a uuid")

// Container wires module dependencies. Without a bun database every
// repository is in memory.
type Container struct {
	Config runtimeconfig.Config

	bunDB          *bun.DB
	cacheService   repocache.CacheService
	keySerializer  repocache.KeySerializer
	loggerProvider interfaces.LoggerProvider
	blobs          interfaces.BlobStorage
	metadataCache  metadata.Cache
	history        jobs.History

	themeRepo      themes.ThemeRepository
	navigationRepo navigation.NavigationRepository
	settingsRepo   settings.Repository
	pagesRepo      pages.Repository

	themeSvc      themes.Service
	navigationSvc navigation.Service
	settingsSvc   settings.Service
	pageSvc       pages.Service

	gatherer  *metadata.Gatherer
	compiler  *compiler.Compiler
	sections  sections.Store
	pipeline  publish.Pipeline
	worker    *jobs.Worker
	scheduler *jobs.Scheduler
}

// Option mutates the container before it is finalised.
type Option func(*Container)

func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the repository cache.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithLoggerProvider overrides the provider selected from configuration.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithBlobStorage overrides the storage driver selected from configuration.
func WithBlobStorage(storage interfaces.BlobStorage) Option {
	return func(c *Container) {
		c.blobs = storage
	}
}

// WithMetadataCache overrides the metadata cache.
func WithMetadataCache(cache metadata.Cache) Option {
	return func(c *Container) {
		c.metadataCache = cache
	}
}

func WithRebuildHistory(history jobs.History) Option {
	return func(c *Container) {
		c.history = history
	}
}

func WithThemeService(svc themes.Service) Option {
	return func(c *Container) {
		c.themeSvc = svc
	}
}

func WithPageService(svc pages.Service) Option {
	return func(c *Container) {
		c.pageSvc = svc
	}
}

// NewContainer validates cfg and builds every service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		Config:         cfg,
		themeRepo:      themes.NewMemoryThemeRepository(),
		navigationRepo: navigation.NewMemoryNavigationRepository(),
		settingsRepo:   settings.NewMemoryRepository(),
		pagesRepo:      pages.NewMemoryRepository(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	c.configureRepositories()
	if err := c.configureStorage(context.Background()); err != nil {
		return nil, err
	}
	c.configureServices()
	if err := c.configureJobs(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider != nil {
		return nil
	}
	provider, err := newLoggerProvider(c.Config)
	if err != nil {
		return err
	}
	c.loggerProvider = provider
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled {
		return
	}

	if c.bunDB != nil && c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.Config.Cache.MetadataTTL > 0 {
			cfg.TTL = c.Config.Cache.MetadataTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}

	if c.metadataCache == nil {
		cfg := metadata.DefaultSturdyConfig()
		cfg.TTL = c.Config.Cache.MetadataTTL
		c.metadataCache = metadata.NewSturdyCache(cfg)
	}
}

func (c *Container) configureRepositories() {
	if c.bunDB == nil {
		return
	}
	c.themeRepo = themes.NewBunThemeRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	c.navigationRepo = navigation.NewBunNavigationRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	c.settingsRepo = settings.NewBunRepository(c.bunDB)
	c.pagesRepo = pages.NewBunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
}

func (c *Container) configureStorage(ctx context.Context) error {
	if c.blobs != nil {
		return nil
	}
	storageCfg := c.Config.Storage
	switch c.Config.StorageDriver() {
	case runtimeconfig.StorageFilesystem:
		fs, err := blob.NewFilesystem(storageCfg.Root)
		if err != nil {
			return err
		}
		c.blobs = fs
	case runtimeconfig.StorageS3:
		s3, err := blob.NewS3(ctx, blob.S3Config{
			Bucket:          storageCfg.Bucket,
			Region:          storageCfg.Region,
			Prefix:          storageCfg.Prefix,
			Endpoint:        storageCfg.Endpoint,
			AccessKeyID:     storageCfg.AccessKeyID,
			SecretAccessKey: storageCfg.SecretAccessKey,
		})
		if err != nil {
			return fmt.Errorf("di: configure s3 storage: %w", err)
		}
		c.blobs = s3
	default:
		c.blobs = blob.NewMemory()
	}
	return nil
}

func (c *Container) configureServices() {
	metadataLogger := logging.MetadataLogger(c.loggerProvider)

	// The gatherer reads through the services below, which in turn
	// invalidate it; the hook resolves it lazily.
	invalidator := &lazyInvalidator{container: c}

	if c.themeSvc == nil {
		c.themeSvc = themes.NewService(c.themeRepo,
			themes.WithLogger(logging.ThemesLogger(c.loggerProvider)),
			themes.WithActivationHook(func(ctx context.Context, theme *themes.Theme) {
				if err := invalidator.Invalidate(ctx, theme.SiteID); err != nil {
					metadataLogger.Warn("metadata.invalidate_failed", "theme_id", theme.ID, "error", err)
				}
			}),
		)
	}

	c.navigationSvc = navigation.NewService(c.navigationRepo,
		navigation.WithInvalidator(invalidator),
		navigation.WithLogger(logging.NavigationLogger(c.loggerProvider)),
	)
	c.settingsSvc = settings.NewService(c.settingsRepo,
		settings.WithInvalidator(invalidator),
		settings.WithLogger(logging.SettingsLogger(c.loggerProvider)),
	)

	gathererOpts := []metadata.Option{
		metadata.WithSettings(c.settingsSvc),
		metadata.WithThemes(c.themeSvc),
		metadata.WithLogger(metadataLogger),
	}
	if c.metadataCache != nil {
		gathererOpts = append(gathererOpts, metadata.WithCache(c.metadataCache))
	}
	c.gatherer = metadata.NewGatherer(c.navigationSvc, gathererOpts...)

	if c.pageSvc == nil {
		c.pageSvc = pages.NewService(c.pagesRepo,
			pages.WithLogger(logging.PagesLogger(c.loggerProvider)),
		)
	}

	c.compiler = compiler.New(
		compiler.WithThemes(c.themeSvc),
		compiler.WithNavigation(c.navigationSvc),
		compiler.WithMetadata(c.gatherer),
		compiler.WithLogger(logging.CompilerLogger(c.loggerProvider)),
	)

	c.sections = sections.NewStore(c.blobs, sections.WithLogger(logging.SectionsLogger(c.loggerProvider)))
	c.pipeline = publish.New(c.sections, c.blobs,
		publish.WithLogger(logging.PublishLogger(c.loggerProvider)),
		publish.WithPublicBaseURL(c.Config.Storage.PublicBaseURL),
		publish.WithMasterFile(c.Config.Publish.MasterFile),
	)
}

func (c *Container) configureJobs() error {
	targets, err := rebuildTargets(c.Config.Publish.RebuildSites)
	if err != nil {
		return err
	}
	logger := logging.JobsLogger(c.loggerProvider)
	if c.history == nil {
		c.history = jobs.NewMemoryHistory(0)
	}
	worker, err := jobs.NewWorker(c.pipeline, c.pageSvc, c.themeSvc, targets,
		jobs.WithLogger(logger),
		jobs.WithHistory(c.history),
	)
	if err != nil {
		return err
	}
	c.worker = worker

	if !c.Config.Features.Scheduler {
		return nil
	}
	scheduler, err := jobs.NewScheduler(logger)
	if err != nil {
		return fmt.Errorf("di: configure scheduler: %w", err)
	}
	if _, err := scheduler.ScheduleRebuild(c.Config.Publish.RebuildCron, worker); err != nil {
		_ = scheduler.Stop()
		return fmt.Errorf("di: schedule rebuild: %w", err)
	}
	c.scheduler = scheduler
	logger.Info("scheduler.configured", "cron", c.Config.Publish.RebuildCron, "targets", len(targets))
	return nil
}

func rebuildTargets(sites []string) (jobs.StaticTargets, error) {
	targets := make(jobs.StaticTargets, 0, len(sites))
	for _, raw := range sites {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrRebuildSiteInvalid, raw)
		}
		targets = append(targets, jobs.Target{SiteID: id})
	}
	return targets, nil
}

// ImportThemes registers the configured theme manifests in the global scope.
// Re-importing a manifest updates the stored theme.
func (c *Container) ImportThemes(ctx context.Context) error {
	for _, path := range c.Config.Themes.Manifests {
		manifest, err := themes.LoadManifest(path)
		if err != nil {
			return fmt.Errorf("di: load theme manifest %s: %w", path, err)
		}
		if _, err := c.themeSvc.ImportManifest(ctx, uuid.Nil, manifest); err != nil {
			return fmt.Errorf("di: import theme manifest %s: %w", path, err)
		}
	}
	return nil
}

// Close stops background jobs.
func (c *Container) Close() error {
	if c.scheduler == nil {
		return nil
	}
	return c.scheduler.Stop()
}

func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

func (c *Container) BlobStorage() interfaces.BlobStorage {
	return c.blobs
}

func (c *Container) ThemeService() themes.Service {
	return c.themeSvc
}

func (c *Container) NavigationService() navigation.Service {
	return c.navigationSvc
}

func (c *Container) SettingsService() settings.Service {
	return c.settingsSvc
}

func (c *Container) PageService() pages.Service {
	return c.pageSvc
}

func (c *Container) MetadataGatherer() *metadata.Gatherer {
	return c.gatherer
}

func (c *Container) Compiler() *compiler.Compiler {
	return c.compiler
}

func (c *Container) SectionStore() sections.Store {
	return c.sections
}

func (c *Container) PublishPipeline() publish.Pipeline {
	return c.pipeline
}

func (c *Container) RebuildWorker() *jobs.Worker {
	return c.worker
}

// Scheduler is nil unless the scheduler feature is enabled.
func (c *Container) Scheduler() *jobs.Scheduler {
	return c.scheduler
}

type lazyInvalidator struct {
	container *Container
}

// Invalidate treats uuid.Nil as the global scope, which every site inherits.
func (l *lazyInvalidator) Invalidate(ctx context.Context, siteID uuid.UUID) error {
	if l.container.gatherer == nil {
		return nil
	}
	if siteID == uuid.Nil {
		return l.container.gatherer.InvalidateAll(ctx)
	}
	return l.container.gatherer.Invalidate(ctx, siteID)
}
