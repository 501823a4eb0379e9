// Package gcs stores result sheets and OCR output in a Cloud Storage bucket.
package gcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/storage/v1"

	"github.com/vittaya051733-boop/tungtong1/internal/connectors/google"
	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
	"github.com/vittaya051733-boop/tungtong1/internal/core/ports/driven"
	"github.com/vittaya051733-boop/tungtong1/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.BlobStore = (*Store)(nil)

// maxObjectSize bounds a single download.
const maxObjectSize = 64 << 20

// listPageSize is the page size asked of objects.list.
const listPageSize = 1000

// errLimitReached stops paging once enough objects are collected.
var errLimitReached = errors.New("limit reached")

// Store is a driven.BlobStore over one bucket.
type Store struct {
	svc    *storage.Service
	bucket string
}

// New creates a store for bucket using an existing client.
func New(svc *storage.Service, bucket string) (*Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("%w: empty bucket name", domain.ErrInvalidInput)
	}
	return &Store{svc: svc, bucket: bucket}, nil
}

// Put writes data at path. The write is conditional on the object not
// existing, so a second Put of the same path is a no-op.
func (s *Store) Put(ctx context.Context, path string, data []byte, contentType string, metadata map[string]string) error {
	if path == "" {
		return domain.ErrInvalidInput
	}
	obj := &storage.Object{
		Name:        path,
		ContentType: contentType,
		Metadata:    metadata,
	}
	_, err := s.svc.Objects.Insert(s.bucket, obj).
		Name(path).
		IfGenerationMatch(0).
		Media(bytes.NewReader(data), googleapi.ContentType(contentType)).
		Context(ctx).
		Do()
	if google.IsPreconditionFailed(err) {
		logger.Debug("gcs: %s already exists", path)
		return nil
	}
	return google.WrapError("gcs put "+path, err)
}

// Get reads the object at path.
func (s *Store) Get(ctx context.Context, path string) ([]byte, error) {
	resp, err := s.svc.Objects.Get(s.bucket, path).Context(ctx).Download()
	if err != nil {
		return nil, google.WrapError("gcs get "+path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxObjectSize+1))
	if err != nil {
		return nil, fmt.Errorf("gcs get %s: %w", path, err)
	}
	if len(data) > maxObjectSize {
		return nil, fmt.Errorf("gcs get %s: object larger than %d bytes", path, maxObjectSize)
	}
	return data, nil
}

// List returns objects under prefix in name order. A non-positive limit
// lists everything.
func (s *Store) List(ctx context.Context, prefix string, limit int) ([]driven.BlobInfo, error) {
	var out []driven.BlobInfo

	call := s.svc.Objects.List(s.bucket).
		Prefix(prefix).
		MaxResults(listPageSize).
		Fields("items(name,size,metadata),nextPageToken")
	err := call.Pages(ctx, func(page *storage.Objects) error {
		for _, obj := range page.Items {
			out = append(out, driven.BlobInfo{
				Path:     obj.Name,
				Size:     int64(obj.Size),
				Metadata: obj.Metadata,
			})
			if limit > 0 && len(out) >= limit {
				return errLimitReached
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, errLimitReached) {
		return nil, google.WrapError("gcs list "+prefix, err)
	}
	return out, nil
}

// URI returns the gs:// address of path.
func (s *Store) URI(path string) string {
	return "gs://" + s.bucket + "/" + path
}
