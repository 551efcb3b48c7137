package validation_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/ridasaidd/byteforge-sub002/internal/validation"
)

func TestValidateDocumentAcceptsEditorTrees(t *testing.T) {
	doc := map[string]any{
		"content": []any{
			map[string]any{"type": "Heading", "props": map[string]any{"id": "h1", "text": "Hi", "level": 1}},
			map[string]any{"type": "Columns", "props": map[string]any{"id": "cols"}},
		},
		"root":  map[string]any{"props": map[string]any{"title": "Home"}},
		"zones": map[string]any{"cols:left": []any{map[string]any{"type": "Text"}}},
	}
	if err := validation.ValidateDocument(doc); err != nil {
		t.Fatalf("expected valid document, got %v", err)
	}
}

func TestValidateDocumentReportsIssues(t *testing.T) {
	cases := []struct {
		name     string
		doc      map[string]any
		location string
	}{
		{"missing content", map[string]any{}, ""},
		{"node without type", map[string]any{"content": []any{map[string]any{"props": map[string]any{}}}}, "/content/0"},
		{"props not an object", map[string]any{"content": []any{map[string]any{"type": "Text", "props": "x"}}}, "/content/0/props"},
		{"bad zone key", map[string]any{"content": []any{}, "zones": map[string]any{"nozone": []any{}}}, "/zones"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validation.ValidateDocument(tc.doc)
			if !errors.Is(err, validation.ErrSchemaValidation) {
				t.Fatalf("expected ErrSchemaValidation, got %v", err)
			}
			problems := validation.Problems(err)
			if len(problems) == 0 {
				t.Fatalf("expected problems")
			}
			found := false
			for _, problem := range problems {
				if strings.HasPrefix(problem.Pointer, tc.location) {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected a problem under %q, got %+v", tc.location, problems)
			}
			if !strings.HasPrefix(err.Error(), "validation: document rejected: ") {
				t.Fatalf("unexpected error text %q", err.Error())
			}
		})
	}
}

func TestProblemsIgnoresForeignErrors(t *testing.T) {
	if got := validation.Problems(errors.New("boom")); got != nil {
		t.Fatalf("expected nil problems, got %+v", got)
	}
}
