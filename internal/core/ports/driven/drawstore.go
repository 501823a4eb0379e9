package driven

import (
	"context"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
)

// DrawStore persists draw records keyed by canonical date.
type DrawStore interface {
	// Get retrieves the record for a date.
	// Returns domain.ErrNotFound when there is none.
	Get(ctx context.Context, date string) (*domain.DrawRecord, error)

	// Upsert merges rec into the stored record for rec.Date under the
	// non-regression rule, atomically. It returns the stored result and
	// whether anything changed.
	Upsert(ctx context.Context, rec *domain.DrawRecord) (*domain.DrawRecord, bool, error)

	// ListSince returns records dated on or after cutoff, newest first.
	ListSince(ctx context.Context, cutoff string, limit, offset int) ([]domain.DrawRecord, error)
}
