// Package storage provides media stores for uploaded image binaries.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound indicates the requested media object does not exist.
var ErrNotFound = errors.New("media not found")

// MediaStore persists uploaded binary files under server-generated keys.
type MediaStore interface {
	// Save writes the object under the given key.
	Save(ctx context.Context, key string, r io.Reader) error
	// Open returns a reader for the object, or ErrNotFound.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the object. Deleting a missing object is not an
	// error; cleanup is advisory.
	Delete(ctx context.Context, key string) error
	// List returns the keys of all stored objects.
	List(ctx context.Context) ([]string, error)
}
