package blob_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/ridasaidd/byteforge-sub002/internal/blob"
	"github.com/ridasaidd/byteforge-sub002/pkg/interfaces"
)

func exerciseStorage(t *testing.T, store interfaces.BlobStorage) {
	t.Helper()
	ctx := context.Background()

	if err := store.Put(ctx, "themes/a/sections/header.css", []byte(".h{}")); err != nil {
		t.Fatalf("put header: %v", err)
	}
	if err := store.Put(ctx, "themes/a/sections/footer.css", []byte(".f{}")); err != nil {
		t.Fatalf("put footer: %v", err)
	}
	if err := store.Put(ctx, "themes/b/style.css", []byte("b")); err != nil {
		t.Fatalf("put other theme: %v", err)
	}
	if err := store.Put(ctx, "themes/a/sections/header.css", []byte(".h2{}")); err != nil {
		t.Fatalf("overwrite header: %v", err)
	}

	data, err := store.Get(ctx, "themes/a/sections/header.css")
	if err != nil {
		t.Fatalf("get header: %v", err)
	}
	if string(data) != ".h2{}" {
		t.Fatalf("expected overwritten content, got %q", data)
	}

	if _, err := store.Get(ctx, "themes/a/sections/missing.css"); !errors.Is(err, interfaces.ErrBlobNotFound) {
		t.Fatalf("expected ErrBlobNotFound, got %v", err)
	}

	ok, err := store.Exists(ctx, "themes/a/sections/footer.css")
	if err != nil || !ok {
		t.Fatalf("expected footer to exist, got %v %v", ok, err)
	}
	ok, err = store.Exists(ctx, "themes/a/sections/variables.css")
	if err != nil || ok {
		t.Fatalf("expected variables to be absent, got %v %v", ok, err)
	}

	keys, err := store.List(ctx, "themes/a/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"themes/a/sections/footer.css", "themes/a/sections/header.css"}
	if !reflect.DeepEqual(keys, want) {
		t.Fatalf("list mismatch: got %v want %v", keys, want)
	}

	if err := store.Delete(ctx, "themes/a/sections/footer.css"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "themes/a/sections/footer.css"); !errors.Is(err, interfaces.ErrBlobNotFound) {
		t.Fatalf("expected ErrBlobNotFound on second delete, got %v", err)
	}

	if err := store.Put(ctx, "../escape.css", nil); !errors.Is(err, blob.ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

func TestMemoryStorage(t *testing.T) {
	exerciseStorage(t, blob.NewMemory())
}

func TestFilesystemStorage(t *testing.T) {
	store, err := blob.NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("new filesystem: %v", err)
	}
	exerciseStorage(t, store)
}

func TestFilesystemRequiresRoot(t *testing.T) {
	if _, err := blob.NewFilesystem("  "); !errors.Is(err, blob.ErrRootRequired) {
		t.Fatalf("expected ErrRootRequired, got %v", err)
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMemory()
	payload := []byte("abc")
	if err := store.Put(ctx, "k.css", payload); err != nil {
		t.Fatalf("put: %v", err)
	}
	payload[0] = 'x'
	data, _ := store.Get(ctx, "k.css")
	data[1] = 'y'
	again, _ := store.Get(ctx, "k.css")
	if string(again) != "abc" {
		t.Fatalf("expected stored bytes to be isolated, got %q", again)
	}
}
