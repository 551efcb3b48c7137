package navigation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ridasaidd/byteforge-sub002/internal/identity"
	"github.com/ridasaidd/byteforge-sub002/internal/navigation"
	"github.com/ridasaidd/byteforge-sub002/pkg/testsupport"
)

var siteA = uuid.MustParse("9d1b7a60-4c1e-4f38-bd6e-5a3c9e0f0a01")

type countingInvalidator struct {
	calls map[uuid.UUID]int
}

func (c *countingInvalidator) Invalidate(_ context.Context, siteID uuid.UUID) error {
	if c.calls == nil {
		c.calls = map[uuid.UUID]int{}
	}
	c.calls[siteID]++
	return nil
}

func items(labels ...string) []any {
	out := make([]any, 0, len(labels))
	for _, label := range labels {
		out = append(out, map[string]any{"label": label, "url": "/" + label})
	}
	return out
}

func exerciseService(t *testing.T, repo navigation.NavigationRepository) {
	t.Helper()
	ctx := context.Background()
	invalidator := &countingInvalidator{}
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	svc := navigation.NewService(repo,
		navigation.WithInvalidator(invalidator),
		navigation.WithNow(func() time.Time { return now }),
	)

	main, err := svc.Create(ctx, navigation.CreateInput{SiteID: siteA, Name: "Main", Structure: items("home", "about")})
	if err != nil {
		t.Fatalf("create main: %v", err)
	}
	if main.ID != identity.NavigationUUID(siteA, "Main") {
		t.Fatalf("expected deterministic id, got %s", main.ID)
	}
	footer, err := svc.Create(ctx, navigation.CreateInput{SiteID: siteA, Name: "Footer"})
	if err != nil {
		t.Fatalf("create footer: %v", err)
	}

	if _, err := svc.Create(ctx, navigation.CreateInput{SiteID: siteA, Name: "main"}); !errors.Is(err, navigation.ErrNavigationExists) {
		t.Fatalf("expected ErrNavigationExists, got %v", err)
	}

	found, err := svc.FindPublished(ctx, main.ID)
	if err != nil || found != nil {
		t.Fatalf("expected unpublished navigation to be hidden, got %+v %v", found, err)
	}

	if _, err := svc.Publish(ctx, main.ID); err != nil {
		t.Fatalf("publish main: %v", err)
	}
	if _, err := svc.Publish(ctx, footer.ID); err != nil {
		t.Fatalf("publish footer: %v", err)
	}

	found, err = svc.FindPublished(ctx, main.ID)
	if err != nil || found == nil {
		t.Fatalf("expected published navigation, got %+v %v", found, err)
	}
	if found.Name != "Main" || len(found.Structure) != 2 {
		t.Fatalf("unexpected view %+v", found)
	}

	listed, err := svc.ListPublished(ctx, siteA)
	if err != nil {
		t.Fatalf("list published: %v", err)
	}
	if len(listed) != 2 || listed[0].Name != "Footer" || listed[1].Name != "Main" {
		t.Fatalf("unexpected list %+v", listed)
	}
	if listed[0].Structure == nil {
		t.Fatalf("expected empty structure to be a non-nil slice")
	}

	if _, err := svc.UpdateStructure(ctx, main.ID, items("home")); err != nil {
		t.Fatalf("update structure: %v", err)
	}
	if _, err := svc.Unpublish(ctx, footer.ID); err != nil {
		t.Fatalf("unpublish: %v", err)
	}
	listed, _ = svc.ListPublished(ctx, siteA)
	if len(listed) != 1 || len(listed[0].Structure) != 1 {
		t.Fatalf("unexpected list after unpublish %+v", listed)
	}

	// publish x2, structure update of a published menu, unpublish
	if invalidator.calls[siteA] != 4 {
		t.Fatalf("expected 4 invalidations, got %d", invalidator.calls[siteA])
	}

	missing, err := svc.FindPublished(ctx, uuid.New())
	if err != nil || missing != nil {
		t.Fatalf("expected (nil, nil) for unknown id, got %+v %v", missing, err)
	}
}

func TestMemoryNavigationService(t *testing.T) {
	exerciseService(t, navigation.NewMemoryNavigationRepository())
}

func TestBunNavigationService(t *testing.T) {
	db := testsupport.NewBunDB(t, (*navigation.Navigation)(nil))
	exerciseService(t, navigation.NewBunNavigationRepository(db))
}

func TestCreateValidation(t *testing.T) {
	svc := navigation.NewService(navigation.NewMemoryNavigationRepository())
	ctx := context.Background()

	if _, err := svc.Create(ctx, navigation.CreateInput{Name: "Main"}); !errors.Is(err, navigation.ErrSiteRequired) {
		t.Fatalf("expected ErrSiteRequired, got %v", err)
	}
	if _, err := svc.Create(ctx, navigation.CreateInput{SiteID: siteA, Name: "  "}); !errors.Is(err, navigation.ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
	if _, err := svc.Create(ctx, navigation.CreateInput{SiteID: siteA, Name: "Main", Structure: []any{"home"}}); err == nil {
		t.Fatalf("expected structure validation error")
	}
}
