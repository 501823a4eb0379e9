package driven

import (
	"context"
)

// BlobInfo describes a stored object.
type BlobInfo struct {
	Path     string
	Size     int64
	Metadata map[string]string
}

// BlobStore holds document bytes and OCR output.
type BlobStore interface {
	// Put writes data at path once. Writing a path that already exists is a
	// no-op; contents are not compared.
	Put(ctx context.Context, path string, data []byte, contentType string, metadata map[string]string) error

	// Get reads the object at path.
	// Returns domain.ErrNotFound when it does not exist.
	Get(ctx context.Context, path string) ([]byte, error)

	// List returns objects whose path starts with prefix, sorted by path.
	// A limit of zero or less means no limit.
	List(ctx context.Context, prefix string, limit int) ([]BlobInfo, error)

	// URI returns the address the recognition service uses for path.
	URI(path string) string
}
