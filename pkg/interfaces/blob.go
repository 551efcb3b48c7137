package interfaces

import (
	"context"
	"errors"
)

// ErrBlobNotFound is returned by BlobStorage implementations when a key does
// not exist.
var ErrBlobNotFound = errors.New("blob: object not found")

// BlobStorage is the key/value file store used for CSS sections and the
// published stylesheets. Keys are slash separated paths relative to the store
// root, e.g. "themes/<id>/sections/header.css".
type BlobStorage interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	// List returns every key under prefix in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)
}
