// Package storage keeps uploaded attachment files.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"coalhub/service/etc"
)

// ErrNotFound is returned by Get when no object has the key.
var ErrNotFound = errors.New("object not found")

// Provider stores opaque objects by key.
type Provider interface {
	// Put stores size bytes read from r under key.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Get opens the object stored under key. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the object stored under key. A missing key is not an
	// error.
	Delete(ctx context.Context, key string) error
}

// FromConfig creates the provider selected by storage.type.
func FromConfig(ctx context.Context, cfg *etc.Configuration) (Provider, error) {
	switch cfg.Storage.Type {
	case "local":
		return NewLocal(cfg.Storage.Local.Path)
	case "minio":
		return NewMinIO(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
	}
}
