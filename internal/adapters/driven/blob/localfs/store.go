// Package localfs stores blobs as files under a directory, with metadata in
// a JSON sidecar next to each file.
package localfs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
	"github.com/vittaya051733-boop/tungtong1/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.BlobStore = (*Store)(nil)

const (
	// metaSuffix marks metadata sidecar files.
	metaSuffix = ".meta.json"

	// tempSuffix marks files still being written.
	tempSuffix = ".tmp"
)

type sidecar struct {
	ContentType string            `json:"contentType,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Store is a driven.BlobStore rooted at a directory.
type Store struct {
	root string
	mu   sync.Mutex
}

// New creates the root directory if needed and returns a store over it.
func New(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &Store{root: abs}, nil
}

// file maps a blob path to a file inside the root.
func (s *Store) file(path string) (string, error) {
	if path == "" || strings.HasSuffix(path, metaSuffix) || strings.HasPrefix(filepath.Base(path), ".") {
		return "", fmt.Errorf("%w: blob path %q", domain.ErrInvalidInput, path)
	}
	full := filepath.Join(s.root, filepath.FromSlash(path))
	if !strings.HasPrefix(full, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: blob path %q escapes the root", domain.ErrInvalidInput, path)
	}
	return full, nil
}

// Put writes data at path unless the file already exists. The sidecar is
// in place before the data file appears, and the data file only appears
// whole: it is written to a hidden temp file and linked into place.
func (s *Store) Put(_ context.Context, path string, data []byte, contentType string, metadata map[string]string) error {
	full, err := s.file(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Lstat(full); err == nil {
		return nil
	}

	meta, err := json.Marshal(sidecar{ContentType: contentType, Metadata: metadata})
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	metaTmp, err := writeTemp(dir, filepath.Base(full)+metaSuffix, meta)
	if err != nil {
		return fmt.Errorf("write metadata for %s: %w", path, err)
	}
	if err := os.Rename(metaTmp, full+metaSuffix); err != nil {
		os.Remove(metaTmp)
		return fmt.Errorf("write metadata for %s: %w", path, err)
	}

	dataTmp, err := writeTemp(dir, filepath.Base(full), data)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer os.Remove(dataTmp)

	// Link fails rather than replace a file another process put there first.
	if err := os.Link(dataTmp, full); err != nil && !errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// writeTemp writes data to a hidden file in dir and returns its name.
func writeTemp(dir, base string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, "."+base+".*"+tempSuffix)
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// Get reads the file at path.
func (s *Store) Get(_ context.Context, path string) ([]byte, error) {
	full, err := s.file(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// List returns files under prefix sorted by path.
func (s *Store) List(ctx context.Context, prefix string, limit int) ([]driven.BlobInfo, error) {
	var paths []string
	err := filepath.WalkDir(s.root, func(full string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || strings.HasSuffix(full, metaSuffix) || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(s.root, full)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if strings.HasPrefix(rel, prefix) {
			paths = append(paths, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}

	slices.Sort(paths)
	if limit > 0 && len(paths) > limit {
		paths = paths[:limit]
	}

	out := make([]driven.BlobInfo, 0, len(paths))
	for _, p := range paths {
		full := filepath.Join(s.root, filepath.FromSlash(p))
		info := driven.BlobInfo{Path: p}
		if st, err := os.Stat(full); err == nil {
			info.Size = st.Size()
		}
		if raw, err := os.ReadFile(full + metaSuffix); err == nil {
			var meta sidecar
			if json.Unmarshal(raw, &meta) == nil {
				info.Metadata = meta.Metadata
			}
		}
		out = append(out, info)
	}
	return out, nil
}

// URI returns a file:// address for path.
func (s *Store) URI(path string) string {
	return "file://" + filepath.ToSlash(filepath.Join(s.root, filepath.FromSlash(path)))
}
