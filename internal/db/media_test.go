package db

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/cuepoint/internal/model"
)

func newTestStore(t *testing.T) *sqlStore {
	t.Helper()
	store, err := NewTestStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store.(*sqlStore)
}

func tod(t *testing.T, s string) *model.TimeOfDay {
	t.Helper()
	v, err := model.ParseTimeOfDay(s)
	require.NoError(t, err)
	return v
}

func TestParseDatabaseURL(t *testing.T) {
	driver, dsn := ParseDatabaseURL("postgres://u:p@localhost:5432/media?sslmode=disable")
	assert.Equal(t, DriverPostgres, driver)
	assert.Equal(t, "postgres://u:p@localhost:5432/media?sslmode=disable", dsn)

	driver, dsn = ParseDatabaseURL("sqlite:///var/lib/media.db")
	assert.Equal(t, DriverSQLite, driver)
	assert.Equal(t, "/var/lib/media.db?_foreign_keys=on&_txlock=immediate&_busy_timeout=5000", dsn)

	driver, dsn = ParseDatabaseURL("file:media.db?cache=shared")
	assert.Equal(t, DriverSQLite, driver)
	assert.Equal(t, "file:media.db?cache=shared&_foreign_keys=on&_txlock=immediate&_busy_timeout=5000", dsn)

	_, dsn = ParseDatabaseURL("file:media.db?_txlock=exclusive&_fk=1")
	assert.Equal(t, "file:media.db?_txlock=exclusive&_fk=1&_busy_timeout=5000", dsn)
}

// Overlapping writers against a file database must queue on the write lock
// rather than fail with "database is locked".
func TestStore_ConcurrentWritesOnFile(t *testing.T) {
	ctx := context.Background()
	conn, err := Open(ctx, filepath.Join(t.TempDir(), "media.db"), Options{MaxRetries: 1})
	require.NoError(t, err)
	store := NewStore(conn)
	t.Cleanup(func() { store.Close() })

	const n = 50
	for i := 0; i < n; i++ {
		_, err := store.CreateMedia(ctx, model.Media{MediaID: fmt.Sprintf("old%d", i), Title: "old",
			Timestamps: []model.Timestamp{{Type: "intro"}}})
		require.NoError(t, err)
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	record := func(err error) {
		if err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}
	}
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			record(store.DeleteMedia(ctx, fmt.Sprintf("old%d", i)))
		}(i)
		go func(i int) {
			defer wg.Done()
			_, err := store.CreateMedia(ctx, model.Media{MediaID: fmt.Sprintf("new%d", i), Title: "new",
				Timestamps: []model.Timestamp{{Type: "intro"}, {Type: "outro"}}})
			record(err)
		}(i)
	}
	wg.Wait()
	require.Empty(t, errs)

	all, err := store.ListMedia(ctx, 2*n)
	require.NoError(t, err)
	assert.Len(t, all, n)
	for _, m := range all {
		assert.Equal(t, "new", m.Title)
		assert.Len(t, m.Timestamps, 2)
	}
}

func TestStore_CreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.CreateMedia(ctx, model.Media{
		MediaID: "m1",
		Title:   "Ep1",
		Timestamps: []model.Timestamp{
			{Type: "intro", StartTime: tod(t, "00:00:05"), EndTime: tod(t, "00:01:00")},
			{Type: "recap"},
		},
	})
	require.NoError(t, err)
	assert.Greater(t, created.ID, 0)
	require.Len(t, created.Timestamps, 2)
	assert.Equal(t, created.ID, created.Timestamps[0].MediaRef)

	got, err := store.GetMedia(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "m1", got.MediaID)
	assert.Equal(t, "Ep1", got.Title)
	assert.ElementsMatch(t, created.Timestamps, got.Timestamps)
	assert.Nil(t, got.Timestamps[1].StartTime)
}

func TestStore_CreateWithoutTimestamps(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateMedia(ctx, model.Media{MediaID: "bare", Title: "No markers"})
	require.NoError(t, err)

	got, err := store.GetMedia(ctx, "bare")
	require.NoError(t, err)
	assert.NotNil(t, got.Timestamps)
	assert.Empty(t, got.Timestamps)
}

func TestStore_CreateDuplicate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateMedia(ctx, model.Media{MediaID: "dup", Title: "first",
		Timestamps: []model.Timestamp{{Type: "intro"}}})
	require.NoError(t, err)

	_, err = store.CreateMedia(ctx, model.Media{MediaID: "dup", Title: "second",
		Timestamps: []model.Timestamp{{Type: "outro"}}})
	assert.ErrorIs(t, err, ErrConflict)

	got, err := store.GetMedia(ctx, "dup")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Title)
	require.Len(t, got.Timestamps, 1)
	assert.Equal(t, "intro", got.Timestamps[0].Type)

	var count int
	require.NoError(t, store.db.Get(&count, `SELECT COUNT(*) FROM timestamps;`))
	assert.Equal(t, 1, count)
}

func TestStore_GetUnknown(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetMedia(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateMedia(ctx, model.Media{MediaID: "m1", Title: "Ep1",
		Timestamps: []model.Timestamp{{Type: "intro"}, {Type: "outro"}}})
	require.NoError(t, err)
	_, err = store.CreateMedia(ctx, model.Media{MediaID: "m2", Title: "Ep2",
		Timestamps: []model.Timestamp{{Type: "intro"}}})
	require.NoError(t, err)

	require.NoError(t, store.DeleteMedia(ctx, "m1"))

	_, err = store.GetMedia(ctx, "m1")
	assert.ErrorIs(t, err, ErrNotFound)

	var count int
	require.NoError(t, store.db.Get(&count, `SELECT COUNT(*) FROM timestamps;`))
	assert.Equal(t, 1, count, "only m2's timestamp should remain")

	assert.ErrorIs(t, store.DeleteMedia(ctx, "m1"), ErrNotFound)
}

func TestStore_List(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		_, err := store.CreateMedia(ctx, model.Media{
			MediaID:    fmt.Sprintf("m%d", i),
			Title:      fmt.Sprintf("Ep%d", i),
			Timestamps: []model.Timestamp{{Type: "intro", StartTime: tod(t, "00:00:01")}},
		})
		require.NoError(t, err)
	}

	two, err := store.ListMedia(ctx, 2)
	require.NoError(t, err)
	require.Len(t, two, 2)
	assert.Equal(t, "m1", two[0].MediaID)
	assert.Equal(t, "m2", two[1].MediaID)
	require.Len(t, two[0].Timestamps, 1)
	assert.Equal(t, "00:00:01", two[0].Timestamps[0].StartTime.String())

	all, err := store.ListMedia(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	none, err := store.ListMedia(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_ListEmpty(t *testing.T) {
	store := newTestStore(t)
	out, err := store.ListMedia(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestStore_Ping(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}
