package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned when a key has no stored content.
var ErrNotFound = errors.New("storage: not found")

// FileInfo represents metadata about a stored file.
type FileInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Storage defines the interface for small whole-object file storage.
type Storage interface {
	// Write replaces the content stored under key. Readers never observe a
	// partially written object.
	Write(ctx context.Context, key string, r io.Reader) error

	// Read retrieves content for the given key. The caller closes the
	// returned ReadCloser. A missing key yields ErrNotFound.
	Read(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the content with the given key. Missing keys are ignored.
	Delete(ctx context.Context, key string) error

	// Stat returns metadata for key, or ErrNotFound.
	Stat(ctx context.Context, key string) (FileInfo, error)

	// Exists checks if content with the given key exists.
	Exists(ctx context.Context, key string) (bool, error)
}
