package pages_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ridasaidd/byteforge-sub002/internal/pages"
	"github.com/ridasaidd/byteforge-sub002/pkg/testsupport"
)

func newBunRepository(t *testing.T) *pages.BunRepository {
	t.Helper()
	db := testsupport.NewBunDB(t, (*pages.Fragment)(nil), (*pages.Layout)(nil), (*pages.Page)(nil))
	return pages.NewBunRepository(db)
}

func TestBunRepositoryRoundTripsPages(t *testing.T) {
	ctx := context.Background()
	svc := pages.NewService(newBunRepository(t))

	header := mustFragment(t, svc, pages.FragmentHeader, "Header", doc("Navigation"))
	layout, err := svc.SaveLayout(ctx, pages.Layout{SiteID: siteA, Name: "Main", HeaderID: &header.ID, Default: true})
	if err != nil {
		t.Fatalf("save layout: %v", err)
	}
	page, err := svc.SavePage(ctx, pages.PageInput{SiteID: siteA, Title: "About Us", LayoutID: &layout.ID, Document: doc("Text")})
	if err != nil {
		t.Fatalf("save page: %v", err)
	}

	bySlug, err := svc.GetPageBySlug(ctx, siteA, "about-us")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if bySlug.ID != page.ID || bySlug.LayoutID == nil || *bySlug.LayoutID != layout.ID {
		t.Fatalf("unexpected page %+v", bySlug)
	}

	input, err := svc.CompileInput(ctx, page.ID)
	if err != nil {
		t.Fatalf("compile input: %v", err)
	}
	if input.Header.Layout == nil || len(input.Header.Layout.Content) != 1 {
		t.Fatalf("expected layout header from database, got %+v", input.Header)
	}
	if len(input.Body.Content) != 1 {
		t.Fatalf("expected decoded body content, got %+v", input.Body.Content)
	}
}

func TestBunRepositoryKeepsSingleDefaultLayout(t *testing.T) {
	ctx := context.Background()
	repo := newBunRepository(t)
	svc := pages.NewService(repo)

	first, err := svc.SaveLayout(ctx, pages.Layout{SiteID: siteA, Name: "First", Default: true})
	if err != nil {
		t.Fatalf("save first: %v", err)
	}
	second, err := svc.SaveLayout(ctx, pages.Layout{SiteID: siteA, Name: "Second", Default: true})
	if err != nil {
		t.Fatalf("save second: %v", err)
	}

	layouts, err := repo.ListLayouts(ctx, siteA)
	if err != nil {
		t.Fatalf("list layouts: %v", err)
	}
	if len(layouts) != 2 {
		t.Fatalf("expected two layouts, got %d", len(layouts))
	}
	for _, layout := range layouts {
		if layout.ID == first.ID && layout.Default {
			t.Fatalf("expected first layout to lose the default flag")
		}
		if layout.ID == second.ID && !layout.Default {
			t.Fatalf("expected second layout to be default")
		}
	}
}

func TestBunRepositoryMissingRecords(t *testing.T) {
	repo := newBunRepository(t)
	_, err := repo.GetPageBySlug(context.Background(), siteA, "nowhere")
	var notFound *pages.NotFoundError
	if !errors.As(err, &notFound) || notFound.Resource != "page" {
		t.Fatalf("expected page NotFoundError, got %v", err)
	}
}
