package themes_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ridasaidd/byteforge-sub002/internal/identity"
	"github.com/ridasaidd/byteforge-sub002/internal/themes"
)

var siteA = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001")

func newMemoryService(t *testing.T, opts ...themes.ServiceOption) themes.Service {
	t.Helper()
	now := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	base := []themes.ServiceOption{themes.WithNow(func() time.Time { return now })}
	return themes.NewService(themes.NewMemoryThemeRepository(), append(base, opts...)...)
}

func TestRegisterThemeValidatesInput(t *testing.T) {
	svc := newMemoryService(t)
	ctx := context.Background()

	if _, err := svc.RegisterTheme(ctx, themes.RegisterThemeInput{Version: "1"}); !errors.Is(err, themes.ErrThemeNameRequired) {
		t.Fatalf("expected ErrThemeNameRequired, got %v", err)
	}
	if _, err := svc.RegisterTheme(ctx, themes.RegisterThemeInput{Name: "a"}); !errors.Is(err, themes.ErrThemeVersionRequired) {
		t.Fatalf("expected ErrThemeVersionRequired, got %v", err)
	}
	_, err := svc.RegisterTheme(ctx, themes.RegisterThemeInput{
		Name:    "dotted",
		Version: "1",
		Tokens:  map[string]any{"colors": map[string]any{"primary.500": "#fff"}},
	})
	if err == nil || !strings.Contains(err.Error(), "must not contain dots") {
		t.Fatalf("expected token key validation error, got %v", err)
	}
}

func TestRegisterThemeRejectsDuplicateNamesPerScope(t *testing.T) {
	svc := newMemoryService(t)
	ctx := context.Background()

	input := themes.RegisterThemeInput{SiteID: siteA, Name: "aurora", Version: "1.0.0"}
	if _, err := svc.RegisterTheme(ctx, input); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.RegisterTheme(ctx, input); !errors.Is(err, themes.ErrThemeExists) {
		t.Fatalf("expected ErrThemeExists, got %v", err)
	}

	input.SiteID = uuid.Nil
	if _, err := svc.RegisterTheme(ctx, input); err != nil {
		t.Fatalf("same name in global scope should be allowed: %v", err)
	}
}

func TestActivateThemeKeepsSingleActivePerScope(t *testing.T) {
	var hooked []uuid.UUID
	svc := newMemoryService(t, themes.WithActivationHook(func(_ context.Context, theme *themes.Theme) {
		hooked = append(hooked, theme.ID)
	}))
	ctx := context.Background()

	a := mustRegister(t, svc, siteA, "a")
	b := mustRegister(t, svc, siteA, "b")
	other := mustRegister(t, svc, uuid.Nil, "global")

	for _, id := range []uuid.UUID{other.ID, a.ID, b.ID} {
		if _, err := svc.ActivateTheme(ctx, id); err != nil {
			t.Fatalf("activate %s: %v", id, err)
		}
	}

	list, err := svc.ListThemes(ctx, siteA)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	active := 0
	for _, theme := range list {
		if theme.IsActive {
			active++
			if theme.ID != b.ID {
				t.Fatalf("expected %s active, got %s", b.ID, theme.ID)
			}
		}
	}
	if active != 1 {
		t.Fatalf("expected exactly one active theme, got %d", active)
	}

	global, err := svc.GetTheme(ctx, other.ID)
	if err != nil || !global.IsActive {
		t.Fatalf("activation in site scope must not touch global scope: %+v %v", global, err)
	}
	if len(hooked) != 3 {
		t.Fatalf("expected 3 hook calls, got %d", len(hooked))
	}
}

func TestActiveThemeFallsBackToGlobal(t *testing.T) {
	svc := newMemoryService(t)
	ctx := context.Background()

	if _, err := svc.ActiveTheme(ctx, siteA); !errors.Is(err, themes.ErrNoActiveTheme) {
		t.Fatalf("expected ErrNoActiveTheme, got %v", err)
	}

	global := mustRegister(t, svc, uuid.Nil, "base")
	if _, err := svc.ActivateTheme(ctx, global.ID); err != nil {
		t.Fatalf("activate: %v", err)
	}
	active, err := svc.ActiveTheme(ctx, siteA)
	if err != nil || active.ID != global.ID {
		t.Fatalf("expected global fallback, got %+v %v", active, err)
	}

	own := mustRegister(t, svc, siteA, "own")
	if _, err := svc.ActivateTheme(ctx, own.ID); err != nil {
		t.Fatalf("activate: %v", err)
	}
	active, err = svc.ActiveTheme(ctx, siteA)
	if err != nil || active.ID != own.ID {
		t.Fatalf("expected site theme, got %+v %v", active, err)
	}
}

func TestUpdateTokensReturnsCopies(t *testing.T) {
	svc := newMemoryService(t)
	ctx := context.Background()
	theme := mustRegister(t, svc, siteA, "tokens")

	tokens := map[string]any{"colors": map[string]any{"primary": "#111"}}
	updated, err := svc.UpdateTokens(ctx, theme.ID, tokens)
	if err != nil {
		t.Fatalf("update tokens: %v", err)
	}
	tokens["colors"].(map[string]any)["primary"] = "#999"
	updated.Tokens["colors"].(map[string]any)["primary"] = "#888"

	stored, err := svc.GetTheme(ctx, theme.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got := stored.Tokens["colors"].(map[string]any)["primary"]; got != "#111" {
		t.Fatalf("expected stored tokens to be isolated, got %v", got)
	}
}

func TestImportManifestIsIdempotent(t *testing.T) {
	svc := newMemoryService(t)
	ctx := context.Background()

	manifest, err := themes.ParseManifest(strings.NewReader(`{
		"name": "Aurora",
		"version": "1.0.0",
		"tokens": {"colors": {"primary": "#3b82f6"}}
	}`))
	if err != nil {
		t.Fatalf("parse manifest: %v", err)
	}

	first, err := svc.ImportManifest(ctx, siteA, manifest)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if first.ID != identity.ThemeUUID(siteA, "Aurora") {
		t.Fatalf("expected deterministic id, got %s", first.ID)
	}

	manifest.Version = "1.1.0"
	second, err := svc.ImportManifest(ctx, siteA, manifest)
	if err != nil {
		t.Fatalf("re-import: %v", err)
	}
	if second.ID != first.ID || second.Version != "1.1.0" {
		t.Fatalf("expected in-place update, got %+v", second)
	}
}

func mustRegister(t *testing.T, svc themes.Service, siteID uuid.UUID, name string) *themes.Theme {
	t.Helper()
	theme, err := svc.RegisterTheme(context.Background(), themes.RegisterThemeInput{
		SiteID:  siteID,
		Name:    name,
		Version: "1.0.0",
		Tokens:  map[string]any{"colors": map[string]any{"primary": "#000"}},
	})
	if err != nil {
		t.Fatalf("register theme %s: %v", name, err)
	}
	return theme
}
