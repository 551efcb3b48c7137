// Package identity derives stable identifiers for seeded records.
package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from key. Keys must carry a type prefix so
// different record kinds never collide.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// ThemeUUID identifies a theme by scope and name. The global scope uses
// uuid.Nil as site.
func ThemeUUID(siteID uuid.UUID, name string) uuid.UUID {
	return UUID("byteforge:theme:" + siteID.String() + ":" + strings.ToLower(strings.TrimSpace(name)))
}

// NavigationUUID identifies a navigation menu by site and name.
func NavigationUUID(siteID uuid.UUID, name string) uuid.UUID {
	return UUID("byteforge:navigation:" + siteID.String() + ":" + strings.ToLower(strings.TrimSpace(name)))
}
