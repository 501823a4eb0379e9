package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
	"github.com/vittaya051733-boop/tungtong1/internal/core/ports/driven"
)

// Ensure DrawStore implements the interface.
var _ driven.DrawStore = (*DrawStore)(nil)

// DrawStore is an in-memory implementation of driven.DrawStore.
type DrawStore struct {
	schema domain.Schema
	now    func() time.Time

	mu      sync.RWMutex
	records map[string]*domain.DrawRecord
}

// NewDrawStore creates a new in-memory draw store.
func NewDrawStore(schema domain.Schema) *DrawStore {
	return &DrawStore{
		schema:  schema,
		now:     time.Now,
		records: make(map[string]*domain.DrawRecord),
	}
}

// Get retrieves the record for a date.
func (s *DrawStore) Get(_ context.Context, date string) (*domain.DrawRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[date]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return rec.Clone(), nil
}

// Upsert merges rec into the stored record under the store lock.
func (s *DrawStore) Upsert(_ context.Context, rec *domain.DrawRecord) (*domain.DrawRecord, bool, error) {
	if rec == nil || rec.Date == "" {
		return nil, false, domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	merged, changed := s.schema.Merge(s.records[rec.Date], rec.Date, rec.AsExtraction(), s.now().UTC())
	if changed {
		s.records[rec.Date] = merged
	}
	return merged.Clone(), changed, nil
}

// ListSince returns records dated on or after cutoff, newest first.
func (s *DrawStore) ListSince(_ context.Context, cutoff string, limit, offset int) ([]domain.DrawRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.DrawRecord, 0, len(s.records))
	for date, rec := range s.records {
		if date >= cutoff {
			out = append(out, *rec.Clone())
		}
	}
	slices.SortFunc(out, func(a, b domain.DrawRecord) int {
		return strings.Compare(b.Date, a.Date)
	})

	if offset > 0 {
		if offset >= len(out) {
			return nil, nil
		}
		out = out[offset:]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
