package sections_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/ridasaidd/byteforge-sub002/internal/blob"
	"github.com/ridasaidd/byteforge-sub002/internal/sections"
	"github.com/ridasaidd/byteforge-sub002/pkg/interfaces"
)

var themeID = uuid.MustParse("6f1c2a9e-0c55-4a35-9a1f-3f8c51c1b001")

func TestStoreSaveAndGet(t *testing.T) {
	ctx := context.Background()
	blobs := blob.NewMemory()
	store := sections.NewStore(blobs)

	if err := store.Save(ctx, themeID, sections.Header, ".header{}"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, themeID, sections.Header, ".header-2{}"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	css, err := store.Get(ctx, themeID, sections.Header)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if css != ".header-2{}" {
		t.Fatalf("expected last write to win, got %q", css)
	}

	raw, err := blobs.Get(ctx, "themes/"+themeID.String()+"/sections/header.css")
	if err != nil || string(raw) != css {
		t.Fatalf("expected section at canonical key, got %q %v", raw, err)
	}
}

func TestStoreGetMissingSection(t *testing.T) {
	store := sections.NewStore(blob.NewMemory())
	_, err := store.Get(context.Background(), themeID, sections.Footer)
	if !errors.Is(err, sections.ErrSectionNotFound) {
		t.Fatalf("expected ErrSectionNotFound, got %v", err)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryNotFound) {
		t.Fatalf("expected not found category, got %v", err)
	}
}

func TestStoreRejectsInvalidInput(t *testing.T) {
	store := sections.NewStore(blob.NewMemory())
	ctx := context.Background()

	if err := store.Save(ctx, uuid.Nil, sections.Header, ""); !errors.Is(err, sections.ErrThemeRequired) {
		t.Fatalf("expected ErrThemeRequired, got %v", err)
	}
	for _, name := range []string{"", "Header", "../header", "a b"} {
		if err := store.Save(ctx, themeID, name, ""); !errors.Is(err, sections.ErrInvalidSectionName) {
			t.Fatalf("expected ErrInvalidSectionName for %q, got %v", name, err)
		}
	}
}

func TestStoreDeleteIsBestEffort(t *testing.T) {
	ctx := context.Background()
	store := sections.NewStore(blob.NewMemory())
	if err := store.Save(ctx, themeID, "template-blog", ".t{}"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !store.Delete(ctx, themeID, "template-blog") {
		t.Fatalf("expected first delete to report true")
	}
	if store.Delete(ctx, themeID, "template-blog") {
		t.Fatalf("expected second delete to report false")
	}
	if store.Delete(ctx, themeID, "Bad Name") {
		t.Fatalf("expected invalid name delete to report false")
	}
}

func TestStoreListTemplatesNaturalOrder(t *testing.T) {
	ctx := context.Background()
	store := sections.NewStore(blob.NewMemory())
	for _, name := range []string{"template-10", "header", "template-2", "template-blog", "template-1", "variables"} {
		if err := store.Save(ctx, themeID, name, "/* "+name+" */"); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
	}
	other := uuid.MustParse("6f1c2a9e-0c55-4a35-9a1f-3f8c51c1b002")
	if err := store.Save(ctx, other, "template-0", ""); err != nil {
		t.Fatalf("save other theme: %v", err)
	}

	names, err := store.ListTemplates(ctx, themeID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"template-1", "template-2", "template-10", "template-blog"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("unexpected order: got %v want %v", names, want)
	}
}

func TestStoreValidateRequired(t *testing.T) {
	ctx := context.Background()
	store := sections.NewStore(blob.NewMemory())

	missing, err := store.ValidateRequired(ctx, themeID)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !reflect.DeepEqual(missing, []string{"variables", "header", "footer"}) {
		t.Fatalf("expected all required missing, got %v", missing)
	}

	_ = store.Save(ctx, themeID, sections.Variables, ":root{}")
	_ = store.Save(ctx, themeID, sections.Header, "")

	missing, err = store.ValidateRequired(ctx, themeID)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !reflect.DeepEqual(missing, []string{"footer"}) {
		t.Fatalf("expected footer missing, got %v", missing)
	}
}

type failingBlobs struct {
	interfaces.BlobStorage
}

func (failingBlobs) Put(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestStoreWrapsStorageFailures(t *testing.T) {
	store := sections.NewStore(failingBlobs{BlobStorage: blob.NewMemory()})
	err := store.Save(context.Background(), themeID, sections.Header, "")
	if !goerrors.IsCategory(err, goerrors.CategoryExternal) {
		t.Fatalf("expected external category, got %v", err)
	}
}

func TestStoreConcurrentWritesToDistinctSections(t *testing.T) {
	ctx := context.Background()
	store := sections.NewStore(blob.NewMemory())
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("template-%d", i%4)
			if err := store.Save(ctx, themeID, name, fmt.Sprintf("/* %d */", i)); err != nil {
				t.Errorf("save: %v", err)
			}
		}(i)
	}
	wg.Wait()

	names, err := store.ListTemplates(ctx, themeID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(names) != 4 {
		t.Fatalf("expected 4 templates, got %v", names)
	}
}

func TestTemplateName(t *testing.T) {
	cases := map[string]string{
		"Landing Page":   "template-landing-page",
		"template-blog":  "template-blog",
		"Product Detail": "template-product-detail",
	}
	for label, want := range cases {
		got, err := sections.TemplateName(label)
		if err != nil {
			t.Fatalf("template name %q: %v", label, err)
		}
		if got != want {
			t.Fatalf("template name %q: got %q want %q", label, got, want)
		}
	}
	if _, err := sections.TemplateName("   "); err == nil {
		t.Fatalf("expected error for blank label")
	}
}
