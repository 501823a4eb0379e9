package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
)

func record(date string, prizes domain.Prizes) *domain.DrawRecord {
	return &domain.DrawRecord{Date: date, Source: domain.ProvenanceAPI, Prizes: prizes}
}

func TestDrawStore_GetNotFound(t *testing.T) {
	store := NewDrawStore(domain.DefaultSchema())
	_, err := store.Get(context.Background(), "2024-06-16")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDrawStore_UpsertCreatesAndMerges(t *testing.T) {
	store := NewDrawStore(domain.DefaultSchema())
	ctx := context.Background()

	stored, changed, err := store.Upsert(ctx, record("2024-06-16", domain.Prizes{
		domain.CategoryFirst: {"123456"},
		domain.CategoryTier2: {"111111", "222222"},
	}))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.False(t, stored.Diagnostics.Complete)
	assert.False(t, stored.UpdatedAt.IsZero())

	// A shorter list never replaces a longer one.
	stored, changed, err = store.Upsert(ctx, record("2024-06-16", domain.Prizes{
		domain.CategoryTier2: {"999999"},
		domain.CategoryLast2: {"45"},
	}))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"111111", "222222"}, stored.Prizes[domain.CategoryTier2])
	assert.Equal(t, []string{"45"}, stored.Prizes[domain.CategoryLast2])

	// Same data again is a no-op.
	_, changed, err = store.Upsert(ctx, record("2024-06-16", domain.Prizes{domain.CategoryLast2: {"45"}}))
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestDrawStore_UpsertInvalid(t *testing.T) {
	store := NewDrawStore(domain.DefaultSchema())
	_, _, err := store.Upsert(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, _, err = store.Upsert(context.Background(), &domain.DrawRecord{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDrawStore_GetReturnsCopy(t *testing.T) {
	store := NewDrawStore(domain.DefaultSchema())
	ctx := context.Background()
	_, _, err := store.Upsert(ctx, record("2024-06-16", domain.Prizes{domain.CategoryFirst: {"123456"}}))
	require.NoError(t, err)

	got, err := store.Get(ctx, "2024-06-16")
	require.NoError(t, err)
	got.Prizes[domain.CategoryFirst][0] = "000000"

	again, err := store.Get(ctx, "2024-06-16")
	require.NoError(t, err)
	assert.Equal(t, "123456", again.Prizes[domain.CategoryFirst][0])
}

func TestDrawStore_ListSince(t *testing.T) {
	store := NewDrawStore(domain.DefaultSchema())
	ctx := context.Background()
	for _, d := range []string{"2024-05-16", "2024-06-16", "2024-06-01", "2023-12-30"} {
		_, _, err := store.Upsert(ctx, record(d, domain.Prizes{domain.CategoryFirst: {"123456"}}))
		require.NoError(t, err)
	}

	all, err := store.ListSince(ctx, "2024-01-01", 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2024-06-16", all[0].Date)
	assert.Equal(t, "2024-06-01", all[1].Date)
	assert.Equal(t, "2024-05-16", all[2].Date)

	page, err := store.ListSince(ctx, "2024-01-01", 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "2024-06-01", page[0].Date)

	empty, err := store.ListSince(ctx, "2024-01-01", 10, 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDrawStore_ConcurrentUpsertsConverge(t *testing.T) {
	store := NewDrawStore(domain.DefaultSchema())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 1; i <= 5; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			tier := make([]string, n)
			for j := range tier {
				tier[j] = fmt.Sprintf("%06d", j)
			}
			_, _, err := store.Upsert(ctx, record("2024-06-16", domain.Prizes{domain.CategoryTier2: tier}))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := store.Get(ctx, "2024-06-16")
	require.NoError(t, err)
	assert.Len(t, got.Prizes[domain.CategoryTier2], 5)
}
