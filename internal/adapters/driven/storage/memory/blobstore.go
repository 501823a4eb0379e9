package memory

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
	"github.com/vittaya051733-boop/tungtong1/internal/core/ports/driven"
)

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

type blob struct {
	data        []byte
	contentType string
	metadata    map[string]string
}

// BlobStore is an in-memory implementation of driven.BlobStore.
type BlobStore struct {
	mu    sync.RWMutex
	blobs map[string]blob
}

// NewBlobStore creates a new in-memory blob store.
func NewBlobStore() *BlobStore {
	return &BlobStore{blobs: make(map[string]blob)}
}

// Put writes data at path unless the path already exists.
func (s *BlobStore) Put(_ context.Context, path string, data []byte, contentType string, metadata map[string]string) error {
	if path == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[path]; ok {
		return nil
	}
	s.blobs[path] = blob{
		data:        slices.Clone(data),
		contentType: contentType,
		metadata:    maps.Clone(metadata),
	}
	return nil
}

// Get reads the object at path.
func (s *BlobStore) Get(_ context.Context, path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return slices.Clone(b.data), nil
}

// List returns objects under prefix sorted by path.
func (s *BlobStore) List(_ context.Context, prefix string, limit int) ([]driven.BlobInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]string, 0, len(s.blobs))
	for p := range s.blobs {
		if strings.HasPrefix(p, prefix) {
			paths = append(paths, p)
		}
	}
	slices.Sort(paths)
	if limit > 0 && len(paths) > limit {
		paths = paths[:limit]
	}

	out := make([]driven.BlobInfo, 0, len(paths))
	for _, p := range paths {
		b := s.blobs[p]
		out = append(out, driven.BlobInfo{
			Path:     p,
			Size:     int64(len(b.data)),
			Metadata: maps.Clone(b.metadata),
		})
	}
	return out, nil
}

// URI returns a mem:// address for path.
func (s *BlobStore) URI(path string) string {
	return "mem://" + path
}

// Len returns the number of stored objects.
func (s *BlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
