// Package metadata gathers the site level data attached to every compiled
// page: published navigations, site settings and the active theme summary.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ridasaidd/byteforge-sub002/internal/logging"
	"github.com/ridasaidd/byteforge-sub002/internal/themes"
	"github.com/ridasaidd/byteforge-sub002/pkg/interfaces"
)

// DomainPageMetadata is the cache domain of gathered page metadata.
const DomainPageMetadata = "page_metadata"

// Key identifies a cached value by domain and site.
type Key struct {
	Domain string
	SiteID uuid.UUID
}

func (k Key) String() string {
	return k.Domain + ":" + k.SiteID.String()
}

// PageKey returns the metadata key of a site.
func PageKey(siteID uuid.UUID) Key {
	return Key{Domain: DomainPageMetadata, SiteID: siteID}
}

// Metadata is attached once, at the root of a compiled document. Values
// returned by a Gatherer are shared through the cache and must be treated as
// read-only.
type Metadata struct {
	Navigations []interfaces.PublishedNavigation `json:"navigations"`
	Settings    map[string]any                   `json:"settings"`
	Theme       *themes.Summary                  `json:"theme"`
}

// ThemeSource returns the active theme of a site. themes.Service satisfies it.
type ThemeSource interface {
	ActiveTheme(ctx context.Context, siteID uuid.UUID) (*themes.Theme, error)
}

// Producer computes a value on a cache miss.
type Producer func(ctx context.Context) (*Metadata, error)

// Cache stores gathered metadata. Remember returns the cached value for key
// or stores the producer's result. Producer errors are returned and not
// cached.
type Cache interface {
	Remember(ctx context.Context, key Key, produce Producer) (*Metadata, error)
	Forget(ctx context.Context, key Key) error
}

// Invalidator drops cached metadata of a site. Navigation publishing,
// settings updates and theme activation call it.
type Invalidator interface {
	Invalidate(ctx context.Context, siteID uuid.UUID) error
}

var ErrGathererMisconfigured = errors.New("metadata: navigation lister required")

type Option func(*Gatherer)

func WithCache(cache Cache) Option {
	return func(g *Gatherer) {
		if cache != nil {
			g.cache = cache
		}
	}
}

func WithSettings(provider interfaces.SettingsProvider) Option {
	return func(g *Gatherer) {
		g.settings = provider
	}
}

func WithThemes(source ThemeSource) Option {
	return func(g *Gatherer) {
		g.themes = source
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(g *Gatherer) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// Gatherer builds Metadata through a Cache.
type Gatherer struct {
	navigations interfaces.NavigationLister
	settings    interfaces.SettingsProvider
	themes      ThemeSource
	cache       Cache
	logger      interfaces.Logger
	// sites tracks every site gathered so far for InvalidateAll.
	sites sync.Map
}

// NewGatherer panics without a navigation lister. Without a cache option
// every call gathers afresh.
func NewGatherer(navigations interfaces.NavigationLister, opts ...Option) *Gatherer {
	if navigations == nil {
		panic(ErrGathererMisconfigured)
	}
	g := &Gatherer{
		navigations: navigations,
		cache:       passthrough{},
		logger:      logging.NoOp(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gatherer) Gather(ctx context.Context, siteID uuid.UUID) (*Metadata, error) {
	g.sites.Store(siteID, struct{}{})
	return g.cache.Remember(ctx, PageKey(siteID), func(ctx context.Context) (*Metadata, error) {
		return g.gather(ctx, siteID)
	})
}

func (g *Gatherer) Invalidate(ctx context.Context, siteID uuid.UUID) error {
	g.logger.Debug("metadata.invalidated", "site_id", siteID)
	return g.cache.Forget(ctx, PageKey(siteID))
}

// InvalidateAll drops the cached metadata of every site gathered so far.
// Changes to the global scope call it.
func (g *Gatherer) InvalidateAll(ctx context.Context) error {
	var errs []error
	g.sites.Range(func(key, _ any) bool {
		if err := g.cache.Forget(ctx, PageKey(key.(uuid.UUID))); err != nil {
			errs = append(errs, err)
		}
		return true
	})
	g.logger.Debug("metadata.invalidated_all")
	return errors.Join(errs...)
}

func (g *Gatherer) gather(ctx context.Context, siteID uuid.UUID) (*Metadata, error) {
	navs, err := g.navigations.ListPublished(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("metadata: list navigations: %w", err)
	}
	out := &Metadata{Navigations: navs}
	if out.Navigations == nil {
		out.Navigations = []interfaces.PublishedNavigation{}
	}

	if g.settings != nil {
		values, err := g.settings.Get(ctx, siteID)
		switch {
		case err == nil:
			out.Settings = values
		case errors.Is(err, interfaces.ErrSettingsUnavailable):
		default:
			g.logger.Warn("metadata.settings_unavailable", "site_id", siteID, "error", err)
		}
	}

	if g.themes != nil {
		theme, err := g.themes.ActiveTheme(ctx, siteID)
		switch {
		case err == nil:
			out.Theme = themes.Summarize(theme)
		case errors.Is(err, themes.ErrNoActiveTheme):
		default:
			g.logger.Warn("metadata.theme_unavailable", "site_id", siteID, "error", err)
		}
	}
	return out, nil
}

type passthrough struct{}

func (passthrough) Remember(ctx context.Context, _ Key, produce Producer) (*Metadata, error) {
	return produce(ctx)
}

func (passthrough) Forget(context.Context, Key) error { return nil }
