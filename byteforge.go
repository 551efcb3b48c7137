// Package byteforge compiles site-builder documents and publishes theme
// stylesheets for multi-tenant sites.
package byteforge

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ridasaidd/byteforge-sub002/internal/compiler"
	"github.com/ridasaidd/byteforge-sub002/internal/components"
	"github.com/ridasaidd/byteforge-sub002/internal/cssgen"
	"github.com/ridasaidd/byteforge-sub002/internal/di"
	"github.com/ridasaidd/byteforge-sub002/internal/jobs"
	"github.com/ridasaidd/byteforge-sub002/internal/metadata"
	"github.com/ridasaidd/byteforge-sub002/internal/navigation"
	"github.com/ridasaidd/byteforge-sub002/internal/pages"
	"github.com/ridasaidd/byteforge-sub002/internal/publish"
	"github.com/ridasaidd/byteforge-sub002/internal/sections"
	"github.com/ridasaidd/byteforge-sub002/internal/settings"
	"github.com/ridasaidd/byteforge-sub002/internal/themes"
)

type (
	ThemeService      = themes.Service
	NavigationService = navigation.Service
	SettingsService   = settings.Service
	PageService       = pages.Service
	SectionStore      = sections.Store
	PublishPipeline   = publish.Pipeline
	Document          = compiler.Document
	PublishResult     = publish.Result
	ValidationResult  = publish.ValidationResult
	RebuildWorker     = *jobs.Worker
)

var (
	ErrNoActiveTheme   = themes.ErrNoActiveTheme
	ErrMissingSections = publish.ErrMissingSections
)

// Module is the top level runtime façade.
type Module struct {
	container *di.Container
}

// New builds a module from cfg and imports the configured theme manifests.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if err := container.ImportThemes(context.Background()); err != nil {
		_ = container.Close()
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

func (m *Module) Themes() ThemeService {
	return m.container.ThemeService()
}

func (m *Module) Navigation() NavigationService {
	return m.container.NavigationService()
}

func (m *Module) Settings() SettingsService {
	return m.container.SettingsService()
}

func (m *Module) Pages() PageService {
	return m.container.PageService()
}

func (m *Module) Sections() SectionStore {
	return m.container.SectionStore()
}

func (m *Module) Publisher() PublishPipeline {
	return m.container.PublishPipeline()
}

func (m *Module) Metadata() *metadata.Gatherer {
	return m.container.MetadataGatherer()
}

func (m *Module) Worker() RebuildWorker {
	return m.container.RebuildWorker()
}

// Compile assembles and compiles a stored page.
func (m *Module) Compile(ctx context.Context, pageID uuid.UUID) (*Document, error) {
	input, err := m.container.PageService().CompileInput(ctx, pageID)
	if err != nil {
		return nil, err
	}
	return m.container.Compiler().Compile(ctx, input)
}

// PreviewCSS renders the stylesheet of one editor document against the
// active theme of a site. It is the live counterpart of Rebuild and shares
// its rule builders.
func (m *Module) PreviewCSS(ctx context.Context, siteID uuid.UUID, doc map[string]any) (string, error) {
	var tokens map[string]any
	theme, err := m.container.ThemeService().ActiveTheme(ctx, siteID)
	switch {
	case err == nil:
		tokens = theme.Tokens
	case errors.Is(err, themes.ErrNoActiveTheme):
	default:
		return "", err
	}
	tree := components.ParseTree(doc)
	return cssgen.Generate(tree.Content, tokens), nil
}

// Validate reports the required sections a theme still lacks.
func (m *Module) Validate(ctx context.Context, themeID uuid.UUID) (ValidationResult, error) {
	return m.container.PublishPipeline().Validate(ctx, themeID)
}

// Publish concatenates the stored sections of a theme into its master
// stylesheet.
func (m *Module) Publish(ctx context.Context, themeID uuid.UUID) (*PublishResult, error) {
	return m.container.PublishPipeline().Publish(ctx, themeID)
}

// Rebuild regenerates every section of the site's active theme from the
// stored fragments and publishes the result.
func (m *Module) Rebuild(ctx context.Context, siteID uuid.UUID) (*PublishResult, error) {
	theme, err := m.container.ThemeService().ActiveTheme(ctx, siteID)
	if err != nil {
		return nil, err
	}
	input, err := m.container.PageService().SectionsInput(ctx, siteID)
	if err != nil {
		return nil, err
	}
	input.Theme = theme.Tokens
	return m.container.PublishPipeline().Rebuild(ctx, publish.RebuildInput{ThemeID: theme.ID, Sections: input})
}

// Start runs the rebuild scheduler when the scheduler feature is enabled.
func (m *Module) Start() {
	if scheduler := m.container.Scheduler(); scheduler != nil {
		scheduler.Start()
	}
}

// Close stops background jobs.
func (m *Module) Close() error {
	return m.container.Close()
}
