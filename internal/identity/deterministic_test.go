package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestThemeUUIDIsStable(t *testing.T) {
	site := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	first := ThemeUUID(site, "Aurora")
	if first == uuid.Nil {
		t.Fatal("expected non-nil id")
	}
	if again := ThemeUUID(site, " aurora "); again != first {
		t.Fatalf("expected normalised name to produce same id, got %s vs %s", again, first)
	}
	if global := ThemeUUID(uuid.Nil, "Aurora"); global == first {
		t.Fatal("expected scope to change the id")
	}
	if nav := NavigationUUID(site, "Aurora"); nav == first {
		t.Fatal("expected record kind prefix to separate ids")
	}
}

func TestUUIDEmptyKey(t *testing.T) {
	if got := UUID("   "); got != uuid.Nil {
		t.Fatalf("expected nil uuid, got %s", got)
	}
}
