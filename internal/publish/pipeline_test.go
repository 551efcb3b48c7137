package publish_test

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/ridasaidd/byteforge-sub002/internal/blob"
	"github.com/ridasaidd/byteforge-sub002/internal/components"
	"github.com/ridasaidd/byteforge-sub002/internal/cssgen"
	"github.com/ridasaidd/byteforge-sub002/internal/publish"
	"github.com/ridasaidd/byteforge-sub002/internal/sections"
	"github.com/ridasaidd/byteforge-sub002/pkg/interfaces"
)

var (
	themeID   = uuid.MustParse("0d7c7a39-5f0e-4a7b-8d57-2f1d3c1a9e01")
	fixedTime = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
)

func newPipeline(blobs interfaces.BlobStorage) (publish.Pipeline, sections.Store) {
	store := sections.NewStore(blobs)
	pipeline := publish.New(store, blobs,
		publish.WithNow(func() time.Time { return fixedTime }),
		publish.WithPublicBaseURL("https://cdn.example.com/"),
	)
	return pipeline, store
}

func save(t *testing.T, store sections.Store, name, css string) {
	t.Helper()
	if err := store.Save(context.Background(), themeID, name, css); err != nil {
		t.Fatalf("save %s: %v", name, err)
	}
}

func TestPublishRefusesWhenSectionsMissing(t *testing.T) {
	blobs := blob.NewMemory()
	pipeline, store := newPipeline(blobs)
	save(t, store, sections.Variables, ":root {}")
	save(t, store, sections.Header, ".h {}")

	result, err := pipeline.Publish(context.Background(), themeID)
	if result != nil {
		t.Fatalf("expected no result, got %+v", result)
	}
	var missing *publish.MissingSectionsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingSectionsError, got %v", err)
	}
	if !reflect.DeepEqual(missing.Missing, []string{"footer"}) {
		t.Fatalf("unexpected missing sections %v", missing.Missing)
	}
	if !errors.Is(err, publish.ErrMissingSections) {
		t.Fatalf("expected errors.Is ErrMissingSections")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category")
	}

	ok, _ := blobs.Exists(context.Background(), publish.MasterKey(themeID, publish.DefaultMasterFile))
	if ok {
		t.Fatalf("expected nothing written")
	}
}

func TestPublishConcatenatesInOrder(t *testing.T) {
	blobs := blob.NewMemory()
	pipeline, store := newPipeline(blobs)
	save(t, store, "template-10", ".t10 {}")
	save(t, store, sections.Footer, ".f {}")
	save(t, store, "template-2", ".t2 {}")
	save(t, store, sections.Variables, ":root {}")
	save(t, store, sections.Header, ".h {}")

	result, err := pipeline.Publish(context.Background(), themeID)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	data, err := blobs.Get(context.Background(), "themes/"+themeID.String()+"/style.css")
	if err != nil {
		t.Fatalf("read stylesheet: %v", err)
	}
	want := ":root {}\n\n.h {}\n\n.f {}\n\n.t2 {}\n\n.t10 {}\n"
	if string(data) != want {
		t.Fatalf("unexpected stylesheet %q", data)
	}

	wantURL := "https://cdn.example.com/themes/" + themeID.String() + "/style.css?v=" + "1773500966000"
	if result.URL != wantURL {
		t.Fatalf("unexpected url %q want %q", result.URL, wantURL)
	}
	if result.Version != fixedTime.UnixMilli() {
		t.Fatalf("unexpected version %d", result.Version)
	}
	if !reflect.DeepEqual(result.Sections, []string{"variables", "header", "footer", "template-2", "template-10"}) {
		t.Fatalf("unexpected sections %v", result.Sections)
	}
	if result.Bytes != len(want) || len(result.Checksum) != 64 {
		t.Fatalf("unexpected size or checksum: %+v", result)
	}
	if result.RuleCount != 5 {
		t.Fatalf("expected 5 rules, got %d", result.RuleCount)
	}
}

func TestPublishIsIdempotent(t *testing.T) {
	blobs := blob.NewMemory()
	pipeline, store := newPipeline(blobs)
	save(t, store, sections.Variables, ":root {\n  --a: 1;\n}\n")
	save(t, store, sections.Header, "")
	save(t, store, sections.Footer, ".f {}")

	first, err := pipeline.Publish(context.Background(), themeID)
	if err != nil {
		t.Fatalf("first publish: %v", err)
	}
	firstBytes, _ := blobs.Get(context.Background(), first.Path)

	second, err := pipeline.Publish(context.Background(), themeID)
	if err != nil {
		t.Fatalf("second publish: %v", err)
	}
	secondBytes, _ := blobs.Get(context.Background(), second.Path)

	if first.Checksum != second.Checksum || string(firstBytes) != string(secondBytes) {
		t.Fatalf("expected identical output on republish")
	}
}

func TestPublishSeparatesSectionsWithOneBlankLine(t *testing.T) {
	cases := []struct {
		name      string
		variables string
		header    string
		footer    string
		want      string
	}{
		{
			name:      "generated sections end in newline",
			variables: ":root {\n  --a: 1;\n}\n",
			header:    ".h {\n  color: red;\n}\n",
			footer:    ".f {\n  color: blue;\n}\n",
			want:      ":root {\n  --a: 1;\n}\n\n.h {\n  color: red;\n}\n\n.f {\n  color: blue;\n}\n",
		},
		{
			name:      "empty variables leave no leading gap",
			variables: "",
			header:    ".h {}\n",
			footer:    "\n",
			want:      ".h {}\n",
		},
		{
			name: "all empty",
			want: "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			blobs := blob.NewMemory()
			pipeline, store := newPipeline(blobs)
			save(t, store, sections.Variables, tc.variables)
			save(t, store, sections.Header, tc.header)
			save(t, store, sections.Footer, tc.footer)

			result, err := pipeline.Publish(context.Background(), themeID)
			if err != nil {
				t.Fatalf("publish: %v", err)
			}
			data, _ := blobs.Get(context.Background(), result.Path)
			if string(data) != tc.want {
				t.Fatalf("unexpected stylesheet %q want %q", data, tc.want)
			}
			if result.Bytes != len(tc.want) {
				t.Fatalf("expected %d bytes, got %d", len(tc.want), result.Bytes)
			}
		})
	}
}

type failingMaster struct {
	interfaces.BlobStorage
}

func (f failingMaster) Put(ctx context.Context, key string, data []byte) error {
	if strings.HasSuffix(key, "/style.css") {
		return errors.New("bucket unavailable")
	}
	return f.BlobStorage.Put(ctx, key, data)
}

func TestPublishPropagatesStorageFailure(t *testing.T) {
	pipeline, store := newPipeline(failingMaster{BlobStorage: blob.NewMemory()})
	save(t, store, sections.Variables, "")
	save(t, store, sections.Header, "")
	save(t, store, sections.Footer, "")

	_, err := pipeline.Publish(context.Background(), themeID)
	if !goerrors.IsCategory(err, goerrors.CategoryExternal) {
		t.Fatalf("expected external error, got %v", err)
	}
	var typed *goerrors.Error
	if !errors.As(err, &typed) || typed.TextCode != "STORAGE_WRITE_FAILED" {
		t.Fatalf("expected STORAGE_WRITE_FAILED, got %v", err)
	}
}

func TestValidateReportsMissingSections(t *testing.T) {
	pipeline, store := newPipeline(blob.NewMemory())
	save(t, store, sections.Header, "")

	result, err := pipeline.Validate(context.Background(), themeID)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	payload, _ := json.Marshal(result)
	if string(payload) != `{"missingSections":["variables","footer"]}` {
		t.Fatalf("unexpected payload %s", payload)
	}

	if _, err := pipeline.Validate(context.Background(), uuid.Nil); !errors.Is(err, publish.ErrThemeRequired) {
		t.Fatalf("expected ErrThemeRequired, got %v", err)
	}
}

func TestRebuildRegeneratesAndPublishes(t *testing.T) {
	blobs := blob.NewMemory()
	pipeline, store := newPipeline(blobs)
	save(t, store, "template-stale", ".old {}")

	header, _ := components.ParseContent([]any{
		map[string]any{"type": "Navigation", "props": map[string]any{"id": "nav", "backgroundColor": "colors.primary"}},
	})
	landing, _ := components.ParseContent([]any{
		map[string]any{"type": "Section", "props": map[string]any{"id": "hero", "padding": "32px"}},
	})

	result, err := pipeline.Rebuild(context.Background(), publish.RebuildInput{
		ThemeID: themeID,
		Sections: cssgen.SectionsInput{
			Theme:     map[string]any{"colors": map[string]any{"primary": "#0ea5e9"}},
			Header:    header,
			Templates: []cssgen.Template{{Label: "Landing", Nodes: landing}},
		},
	})
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if !reflect.DeepEqual(result.Sections, []string{"variables", "header", "footer", "template-landing"}) {
		t.Fatalf("unexpected sections %v", result.Sections)
	}

	data, _ := blobs.Get(context.Background(), result.Path)
	css := string(data)
	for _, want := range []string{"--colors-primary: #0ea5e9;", ".navigation-nav {\n  background-color: #0ea5e9;\n}", ".section-hero {\n  padding: 32px;\n}"} {
		if !strings.Contains(css, want) {
			t.Fatalf("expected %q in stylesheet:\n%s", want, css)
		}
	}
	if strings.Contains(css, ".old") {
		t.Fatalf("stale template should be removed:\n%s", css)
	}
}
