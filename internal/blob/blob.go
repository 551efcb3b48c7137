// Package blob provides BlobStorage implementations: an in-memory store for
// tests and previews, a filesystem store and an S3 store.
package blob

import (
	"errors"
	"path"
	"strings"
)

var ErrInvalidKey = errors.New("blob: invalid key")

// cleanKey rejects absolute keys and keys escaping the store root.
func cleanKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}
