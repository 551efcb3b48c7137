package metadata_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ridasaidd/byteforge-sub002/internal/metadata"
	"github.com/ridasaidd/byteforge-sub002/internal/themes"
	"github.com/ridasaidd/byteforge-sub002/pkg/interfaces"
)

var site = uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000001")

type countingLister struct {
	calls int
	navs  []interfaces.PublishedNavigation
}

func (c *countingLister) ListPublished(context.Context, uuid.UUID) ([]interfaces.PublishedNavigation, error) {
	c.calls++
	return c.navs, nil
}

type settingsStub struct {
	values map[string]any
	err    error
}

func (s settingsStub) Get(context.Context, uuid.UUID) (map[string]any, error) {
	return s.values, s.err
}

type themeStub struct {
	theme *themes.Theme
}

func (s themeStub) ActiveTheme(context.Context, uuid.UUID) (*themes.Theme, error) {
	if s.theme == nil {
		return nil, themes.ErrNoActiveTheme
	}
	return s.theme, nil
}

func TestGatherProducesNullsForAbsentParts(t *testing.T) {
	g := metadata.NewGatherer(&countingLister{},
		metadata.WithSettings(settingsStub{err: interfaces.ErrSettingsUnavailable}),
		metadata.WithThemes(themeStub{}),
	)

	meta, err := g.Gather(context.Background(), site)
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	encoded, err := json.Marshal(meta)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"navigations":[],"settings":null,"theme":null}`
	if string(encoded) != want {
		t.Fatalf("metadata json = %s, want %s", encoded, want)
	}
}

func TestGatherIncludesThemeSummaryAndSettings(t *testing.T) {
	themeID := uuid.MustParse("cccccccc-0000-0000-0000-000000000001")
	lister := &countingLister{navs: []interfaces.PublishedNavigation{{ID: uuid.New(), Name: "Main"}}}
	g := metadata.NewGatherer(lister,
		metadata.WithSettings(settingsStub{values: map[string]any{"siteName": "Acme"}}),
		metadata.WithThemes(themeStub{theme: &themes.Theme{ID: themeID, Name: "aurora", Version: "2.0.0"}}),
	)

	meta, err := g.Gather(context.Background(), site)
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(meta.Navigations) != 1 || meta.Settings["siteName"] != "Acme" {
		t.Fatalf("unexpected metadata %+v", meta)
	}
	if meta.Theme == nil || meta.Theme.ID != themeID || meta.Theme.Version != "2.0.0" {
		t.Fatalf("unexpected theme summary %+v", meta.Theme)
	}
}

func TestMemoryCacheHonoursTTLAndInvalidation(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := metadata.NewMemoryCache(time.Hour).WithClock(func() time.Time { return now })
	lister := &countingLister{}
	g := metadata.NewGatherer(lister, metadata.WithCache(cache))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := g.Gather(ctx, site); err != nil {
			t.Fatalf("gather: %v", err)
		}
	}
	if lister.calls != 1 {
		t.Fatalf("expected one producer call while fresh, got %d", lister.calls)
	}

	if err := g.Invalidate(ctx, site); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	_, _ = g.Gather(ctx, site)
	if lister.calls != 2 {
		t.Fatalf("expected refetch after invalidation, got %d", lister.calls)
	}

	now = now.Add(61 * time.Minute)
	_, _ = g.Gather(ctx, site)
	if lister.calls != 3 {
		t.Fatalf("expected refetch after expiry, got %d", lister.calls)
	}
}

func TestSturdyCacheSharesEntriesPerSite(t *testing.T) {
	cfg := metadata.DefaultSturdyConfig()
	cfg.Capacity = 16
	cfg.Shards = 2
	lister := &countingLister{}
	g := metadata.NewGatherer(lister, metadata.WithCache(metadata.NewSturdyCache(cfg)))
	ctx := context.Background()

	other := uuid.New()
	_, _ = g.Gather(ctx, site)
	_, _ = g.Gather(ctx, site)
	_, _ = g.Gather(ctx, other)
	if lister.calls != 2 {
		t.Fatalf("expected one fetch per site, got %d", lister.calls)
	}

	_ = g.Invalidate(ctx, site)
	_, _ = g.Gather(ctx, site)
	if lister.calls != 3 {
		t.Fatalf("expected refetch after invalidation, got %d", lister.calls)
	}
}

func TestKeyStringIsTyped(t *testing.T) {
	key := metadata.PageKey(site)
	if !strings.HasPrefix(key.String(), metadata.DomainPageMetadata+":") {
		t.Fatalf("unexpected key %s", key)
	}
	if key == (metadata.Key{Domain: "other", SiteID: site}) {
		t.Fatal("keys with different domains must differ")
	}
}

func TestInvalidateAllForgetsEveryGatheredSite(t *testing.T) {
	lister := &countingLister{}
	g := metadata.NewGatherer(lister, metadata.WithCache(metadata.NewMemoryCache(time.Hour)))
	ctx := context.Background()

	other := uuid.New()
	_, _ = g.Gather(ctx, site)
	_, _ = g.Gather(ctx, other)
	if err := g.InvalidateAll(ctx); err != nil {
		t.Fatalf("invalidate all: %v", err)
	}
	_, _ = g.Gather(ctx, site)
	_, _ = g.Gather(ctx, other)
	if lister.calls != 4 {
		t.Fatalf("expected every site to refetch, got %d calls", lister.calls)
	}
}
