package sqlite

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vittaya051733-boop/tungtong1/internal/adapters/driven/storage/sqlite/migrations"
)

// setupTestStore creates a store in a temporary directory.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		assert.NoError(t, store.Close())
	}
	return store, cleanup
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(filepath.Join(dir, "nested", "data"))
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "nested", "data", DatabaseFile), store.Path())
	assert.FileExists(t, store.Path())
}

func TestStore_MigrationsRecordVersion(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	version, err := store.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 1, version)

	for _, table := range []string{"draws", "scheduled_tasks", "task_results"} {
		var name string
		err := store.db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, "table %s", table)
	}
}

func TestStore_MigrateIsIdempotent(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	require.NoError(t, store.migrate(migrations.FS))

	var count int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestNewStore_ReopensExistingDatabase(t *testing.T) {
	dir := t.TempDir()

	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	assert.NoError(t, second.Close())
}

func TestPendingMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"010_later.up.sql":   {Data: []byte("SELECT 1;")},
		"002_next.up.sql":    {Data: []byte("SELECT 1;")},
		"002_next.down.sql":  {Data: []byte("SELECT 1;")},
		"001_initial.up.sql": {Data: []byte("SELECT 1;")},
		"notes.up.sql":       {Data: []byte("SELECT 1;")},
		"embed.go":           {Data: []byte("package migrations")},
	}

	pending, err := pendingMigrations(fsys, 1)
	require.NoError(t, err)
	assert.Equal(t, []migration{{2, "002_next.up.sql"}, {10, "010_later.up.sql"}}, pending)

	none, err := pendingMigrations(fsys, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_FailedMigrationKeepsVersion(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	fsys := fstest.MapFS{
		"002_broken.up.sql": {Data: []byte("CREATE TABLE partial (id INTEGER); INSERT INTO missing VALUES (1);")},
	}
	err := store.migrate(fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "002_broken.up.sql")

	version, err := store.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 1, version)

	var name string
	err = store.db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'partial'").Scan(&name)
	assert.Error(t, err, "the failed migration's table is rolled back")
}
