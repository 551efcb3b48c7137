package di_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/ridasaidd/byteforge-sub002/internal/blob"
	"github.com/ridasaidd/byteforge-sub002/internal/di"
	"github.com/ridasaidd/byteforge-sub002/internal/jobs"
	"github.com/ridasaidd/byteforge-sub002/internal/navigation"
	"github.com/ridasaidd/byteforge-sub002/internal/pages"
	"github.com/ridasaidd/byteforge-sub002/internal/publish"
	"github.com/ridasaidd/byteforge-sub002/internal/runtimeconfig"
	"github.com/ridasaidd/byteforge-sub002/internal/settings"
	"github.com/ridasaidd/byteforge-sub002/internal/themes"
	"github.com/ridasaidd/byteforge-sub002/pkg/interfaces"
	"github.com/ridasaidd/byteforge-sub002/pkg/testsupport"
)

var siteID = uuid.MustParse("3f6a9c12-8b4d-4e7f-a1c2-9d8e7f6a5b41")

func defaultConfig() runtimeconfig.Config {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.PublicBaseURL = "https://cdn.example.com"
	cfg.Publish.RebuildSites = []string{siteID.String()}
	return cfg
}

func newContainer(t *testing.T, cfg runtimeconfig.Config, opts ...di.Option) *di.Container {
	t.Helper()
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })
	return container
}

func fragment(t *testing.T, svc pages.Service, kind pages.FragmentKind, name string, nodes ...any) *pages.Fragment {
	t.Helper()
	saved, err := svc.SaveFragment(context.Background(), pages.FragmentInput{
		SiteID: siteID, Kind: kind, Name: name, Document: map[string]any{"content": nodes},
	})
	if err != nil {
		t.Fatalf("save fragment %s: %v", name, err)
	}
	return saved
}

func component(typ, id string, props map[string]any) map[string]any {
	if props == nil {
		props = map[string]any{}
	}
	props["id"] = id
	return map[string]any{"type": typ, "props": props}
}

// exerciseSite seeds a theme, a navigation and a page through the container
// services, then compiles the page and rebuilds the theme stylesheet.
func exerciseSite(t *testing.T, container *di.Container, blobs interfaces.BlobStorage) {
	t.Helper()
	ctx := context.Background()

	theme, err := container.ThemeService().RegisterTheme(ctx, themes.RegisterThemeInput{
		SiteID:  siteID,
		Name:    "harbor",
		Version: "2.0.0",
		Tokens:  map[string]any{"colors": map[string]any{"primary": "#2563eb"}},
	})
	if err != nil {
		t.Fatalf("register theme: %v", err)
	}
	if _, err := container.ThemeService().ActivateTheme(ctx, theme.ID); err != nil {
		t.Fatalf("activate theme: %v", err)
	}

	nav, err := container.NavigationService().Create(ctx, navigation.CreateInput{
		SiteID:    siteID,
		Name:      "Main",
		Structure: []any{map[string]any{"label": "Home", "url": "/"}},
	})
	if err != nil {
		t.Fatalf("create navigation: %v", err)
	}
	if _, err := container.NavigationService().Publish(ctx, nav.ID); err != nil {
		t.Fatalf("publish navigation: %v", err)
	}
	if _, err := container.SettingsService().Update(ctx, siteID, map[string]any{"siteName": "Harbor"}); err != nil {
		t.Fatalf("update settings: %v", err)
	}

	pagesSvc := container.PageService()
	header := fragment(t, pagesSvc, pages.FragmentHeader, "Header",
		component("Navigation", "main-nav", map[string]any{
			"navigationId": nav.ID.String(),
			"linkColor":    "colors.primary",
		}))
	footer := fragment(t, pagesSvc, pages.FragmentFooter, "Footer",
		component("Text", "legal", map[string]any{"color": "#6b7280"}))
	layout, err := pagesSvc.SaveLayout(ctx, pages.Layout{
		SiteID: siteID, Name: "Main", HeaderID: &header.ID, FooterID: &footer.ID, Default: true,
	})
	if err != nil {
		t.Fatalf("save layout: %v", err)
	}
	page, err := pagesSvc.SavePage(ctx, pages.PageInput{
		SiteID:   siteID,
		Title:    "Home",
		LayoutID: &layout.ID,
		Document: map[string]any{"content": []any{
			component("Heading", "hero", map[string]any{"color": "colors.primary", "text": "Welcome"}),
		}},
	})
	if err != nil {
		t.Fatalf("save page: %v", err)
	}

	input, err := pagesSvc.CompileInput(ctx, page.ID)
	if err != nil {
		t.Fatalf("compile input: %v", err)
	}
	doc, err := container.Compiler().Compile(ctx, input)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(doc.Content) != 3 {
		t.Fatalf("expected header, body and footer nodes, got %d", len(doc.Content))
	}
	headerProps := doc.Content[0].(map[string]any)["props"].(map[string]any)
	if headerProps["navigationData"] == nil {
		t.Fatalf("expected navigation to be embedded, got %+v", headerProps)
	}
	bodyProps := doc.Content[1].(map[string]any)["props"].(map[string]any)
	if bodyProps["color"] != "#2563eb" {
		t.Fatalf("expected resolved token color, got %v", bodyProps["color"])
	}
	if doc.Metadata == nil || len(doc.Metadata.Navigations) != 1 || doc.Metadata.Theme == nil {
		t.Fatalf("unexpected metadata %+v", doc.Metadata)
	}
	if doc.Metadata.Settings["siteName"] != "Harbor" {
		t.Fatalf("expected settings in metadata, got %+v", doc.Metadata.Settings)
	}

	if err := container.RebuildWorker().Process(ctx); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	data, err := blobs.Get(ctx, publish.MasterKey(theme.ID, publish.DefaultMasterFile))
	if err != nil {
		t.Fatalf("read stylesheet: %v", err)
	}
	css := string(data)
	for _, want := range []string{"--colors-primary: #2563eb;", ".navigation-main-nav a {", ".text-legal {"} {
		if !strings.Contains(css, want) {
			t.Fatalf("expected %q in stylesheet:\n%s", want, css)
		}
	}
	records, err := container.RebuildWorker().History().Recent(ctx, siteID, 1)
	if err != nil || len(records) != 1 || records[0].Outcome != jobs.OutcomeRebuilt {
		t.Fatalf("expected rebuild history entry, got %+v %v", records, err)
	}

	if _, err := container.NavigationService().Unpublish(ctx, nav.ID); err != nil {
		t.Fatalf("unpublish navigation: %v", err)
	}
	meta, err := container.MetadataGatherer().Gather(ctx, siteID)
	if err != nil {
		t.Fatalf("gather metadata: %v", err)
	}
	if len(meta.Navigations) != 0 {
		t.Fatalf("expected unpublish to invalidate cached metadata, got %+v", meta.Navigations)
	}
}

func TestContainerWiresMemoryServices(t *testing.T) {
	blobs := blob.NewMemory()
	container := newContainer(t, defaultConfig(), di.WithBlobStorage(blobs))
	exerciseSite(t, container, blobs)
}

func TestContainerWiresBunRepositories(t *testing.T) {
	db := testsupport.NewBunDB(t,
		(*themes.Theme)(nil),
		(*navigation.Navigation)(nil),
		(*settings.Record)(nil),
		(*pages.Fragment)(nil),
		(*pages.Layout)(nil),
		(*pages.Page)(nil),
	)
	cfg := defaultConfig()
	cfg.Cache.Enabled = false
	blobs := blob.NewMemory()
	container := newContainer(t, cfg, di.WithBunDB(db), di.WithBlobStorage(blobs))
	exerciseSite(t, container, blobs)
}

func TestContainerSelectsFilesystemStorage(t *testing.T) {
	cfg := defaultConfig()
	cfg.Storage.Driver = runtimeconfig.StorageFilesystem
	cfg.Storage.Root = t.TempDir()
	container := newContainer(t, cfg)
	if _, ok := container.BlobStorage().(*blob.Filesystem); !ok {
		t.Fatalf("expected filesystem storage, got %T", container.BlobStorage())
	}
}

func TestContainerRejectsInvalidConfiguration(t *testing.T) {
	cfg := defaultConfig()
	cfg.Storage.Driver = "ftp"
	if _, err := di.NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrStorageDriverUnknown) {
		t.Fatalf("expected ErrStorageDriverUnknown, got %v", err)
	}

	cfg = defaultConfig()
	cfg.Publish.RebuildSites = []string{"not-a-uuid"}
	if _, err := di.NewContainer(cfg); !errors.Is(err, di.ErrRebuildSiteInvalid) {
		t.Fatalf("expected ErrRebuildSiteInvalid, got %v", err)
	}
}

func TestContainerGlobalThemeActivationInvalidatesEverySite(t *testing.T) {
	ctx := context.Background()
	container := newContainer(t, defaultConfig())

	before, err := container.MetadataGatherer().Gather(ctx, siteID)
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if before.Theme != nil {
		t.Fatalf("expected no theme before activation, got %+v", before.Theme)
	}

	global, err := container.ThemeService().RegisterTheme(ctx, themes.RegisterThemeInput{
		Name: "base", Version: "1.0.0", Tokens: map[string]any{"spacing": map[string]any{"md": 16}},
	})
	if err != nil {
		t.Fatalf("register global theme: %v", err)
	}
	if _, err := container.ThemeService().ActivateTheme(ctx, global.ID); err != nil {
		t.Fatalf("activate global theme: %v", err)
	}

	after, err := container.MetadataGatherer().Gather(ctx, siteID)
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if after.Theme == nil || after.Theme.Name != "base" {
		t.Fatalf("expected global theme fallback after invalidation, got %+v", after.Theme)
	}
}
