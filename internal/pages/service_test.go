package pages_test

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/ridasaidd/byteforge-sub002/internal/pages"
	"github.com/ridasaidd/byteforge-sub002/internal/validation"
)

var siteA = uuid.MustParse("5b3c1d2e-7f80-4a91-b2c3-d4e5f6a7b801")

func doc(types ...string) map[string]any {
	content := make([]any, 0, len(types))
	for i, typ := range types {
		content = append(content, map[string]any{
			"type":  typ,
			"props": map[string]any{"id": typ + "-" + string(rune('a'+i))},
		})
	}
	return map[string]any{"content": content}
}

func mustFragment(t *testing.T, svc pages.Service, kind pages.FragmentKind, name string, document map[string]any) *pages.Fragment {
	t.Helper()
	fragment, err := svc.SaveFragment(context.Background(), pages.FragmentInput{
		SiteID: siteA, Kind: kind, Name: name, Document: document,
	})
	if err != nil {
		t.Fatalf("save fragment %s: %v", name, err)
	}
	return fragment
}

func TestSaveFragmentRejectsInvalidDocuments(t *testing.T) {
	svc := pages.NewService(pages.NewMemoryRepository())
	_, err := svc.SaveFragment(context.Background(), pages.FragmentInput{
		SiteID:   siteA,
		Kind:     pages.FragmentHeader,
		Name:     "Header",
		Document: map[string]any{"content": []any{map[string]any{"props": map[string]any{}}}},
	})
	if !errors.Is(err, validation.ErrSchemaValidation) {
		t.Fatalf("expected schema validation error, got %v", err)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}

	if _, err := svc.SaveFragment(context.Background(), pages.FragmentInput{
		SiteID: siteA, Kind: "sidebar", Name: "x", Document: doc(),
	}); !errors.Is(err, pages.ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}

func TestCompileInputPrefersPageOverrides(t *testing.T) {
	ctx := context.Background()
	svc := pages.NewService(pages.NewMemoryRepository())

	layoutHeader := mustFragment(t, svc, pages.FragmentHeader, "Default header", doc("Navigation"))
	layoutFooter := mustFragment(t, svc, pages.FragmentFooter, "Default footer", doc("Text"))
	promoHeader := mustFragment(t, svc, pages.FragmentHeader, "Promo header", doc("Heading"))

	layout, err := svc.SaveLayout(ctx, pages.Layout{
		SiteID: siteA, Name: "Main", HeaderID: &layoutHeader.ID, FooterID: &layoutFooter.ID, Default: true,
	})
	if err != nil {
		t.Fatalf("save layout: %v", err)
	}

	page, err := svc.SavePage(ctx, pages.PageInput{
		SiteID:   siteA,
		Title:    "Spring Sale",
		LayoutID: &layout.ID,
		HeaderID: &promoHeader.ID,
		Document: doc("Section", "Button"),
	})
	if err != nil {
		t.Fatalf("save page: %v", err)
	}
	if page.Slug != "spring-sale" {
		t.Fatalf("expected slug from title, got %q", page.Slug)
	}

	input, err := svc.CompileInput(ctx, page.ID)
	if err != nil {
		t.Fatalf("compile input: %v", err)
	}
	if input.SiteID != siteA || len(input.Body.Content) != 2 {
		t.Fatalf("unexpected body %+v", input.Body)
	}
	if input.Header.Override == nil || input.Header.Layout == nil {
		t.Fatalf("expected both header candidates, got %+v", input.Header)
	}
	if input.Footer.Override != nil || input.Footer.Layout == nil {
		t.Fatalf("expected footer from layout only, got %+v", input.Footer)
	}

	bySlug, err := svc.GetPageBySlug(ctx, siteA, "spring-sale")
	if err != nil || bySlug.ID != page.ID {
		t.Fatalf("expected page by slug, got %+v %v", bySlug, err)
	}

	// re-saving keeps the body fragment
	again, err := svc.SavePage(ctx, pages.PageInput{ID: page.ID, SiteID: siteA, Title: "Spring Sale", Document: doc("Text")})
	if err != nil {
		t.Fatalf("resave page: %v", err)
	}
	if again.FragmentID != page.FragmentID {
		t.Fatalf("expected body fragment to be reused")
	}
}

func TestSaveLayoutRejectsWrongFragmentKind(t *testing.T) {
	svc := pages.NewService(pages.NewMemoryRepository())
	footer := mustFragment(t, svc, pages.FragmentFooter, "Footer", doc("Text"))
	_, err := svc.SaveLayout(context.Background(), pages.Layout{SiteID: siteA, Name: "Broken", HeaderID: &footer.ID})
	if !errors.Is(err, pages.ErrFragmentMismatch) {
		t.Fatalf("expected ErrFragmentMismatch, got %v", err)
	}
}

func TestSectionsInputUsesDefaultLayoutAndTemplates(t *testing.T) {
	ctx := context.Background()
	svc := pages.NewService(pages.NewMemoryRepository())

	header := mustFragment(t, svc, pages.FragmentHeader, "Header", doc("Navigation"))
	otherHeader := mustFragment(t, svc, pages.FragmentHeader, "Alt header", doc("Heading", "Text"))
	if _, err := svc.SaveLayout(ctx, pages.Layout{SiteID: siteA, Name: "A alt", HeaderID: &otherHeader.ID}); err != nil {
		t.Fatalf("save alt layout: %v", err)
	}
	if _, err := svc.SaveLayout(ctx, pages.Layout{SiteID: siteA, Name: "B main", HeaderID: &header.ID, Default: true}); err != nil {
		t.Fatalf("save main layout: %v", err)
	}
	mustFragment(t, svc, pages.FragmentTemplate, "Blog Post", doc("Heading"))
	mustFragment(t, svc, pages.FragmentTemplate, "Landing", doc("Section"))

	input, err := svc.SectionsInput(ctx, siteA)
	if err != nil {
		t.Fatalf("sections input: %v", err)
	}
	if len(input.Header) != 1 || input.Header[0].Type != "Navigation" {
		t.Fatalf("expected default layout header, got %+v", input.Header)
	}
	if input.Footer != nil {
		t.Fatalf("expected no footer nodes, got %+v", input.Footer)
	}
	if len(input.Templates) != 2 || input.Templates[0].Label != "Blog Post" || input.Templates[1].Label != "Landing" {
		t.Fatalf("unexpected templates %+v", input.Templates)
	}
}
