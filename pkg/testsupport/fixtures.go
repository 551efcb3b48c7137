package testsupport

import (
	"encoding/json"
	"os"
	"testing"
)

// LoadJSON decodes the fixture at path into a generic value.
func LoadJSON(t testing.TB, path string) any {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture %s: %v", path, err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode fixture %s: %v", path, err)
	}
	return out
}

// LoadGolden decodes a golden JSON file into v.
func LoadGolden(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
