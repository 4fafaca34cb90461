package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bnema/lumiere/internal/db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	database, err := db.InitDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	return NewStore(database)
}

func TestRecordInsertsAndBumps(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, "file:///movies/heat.mkv", "Heat"))
	require.NoError(t, store.Record(ctx, "file:///movies/heat.mkv", ""))

	entries, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1, "same URI must stay a single row")

	entry := entries[0]
	require.Equal(t, "file:///movies/heat.mkv", entry.URI)
	require.Equal(t, "Heat", entry.Title, "empty title must not clobber the stored one")
	require.EqualValues(t, 2, entry.PlayCount)
	require.False(t, entry.LastPlayedAt.IsZero())
}

func TestRecordRejectsEmptyURI(t *testing.T) {
	store := newTestStore(t)

	err := store.Record(context.Background(), "", "nameless")
	require.Error(t, err)
}

func TestRecentOrdering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	uris := []string{
		"file:///movies/first.mkv",
		"file:///movies/second.mkv",
		"file:///movies/third.mkv",
	}
	for _, uri := range uris {
		require.NoError(t, store.Record(ctx, uri, ""))
	}

	// Spread last_played_at out explicitly; CURRENT_TIMESTAMP is
	// second-granular, so back-to-back records land on the same tick.
	// first.mkv ends up played most recently.
	for i, uri := range uris {
		_, err := store.db.ExecContext(ctx,
			"UPDATE playback_history SET last_played_at = datetime('2026-01-01 12:00:00', ?) WHERE uri = ?",
			fmt.Sprintf("-%d hours", i), uri,
		)
		require.NoError(t, err)
	}

	entries, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "file:///movies/first.mkv", entries[0].URI)
	require.Equal(t, "file:///movies/second.mkv", entries[1].URI)
}

func TestRecentEmptyStore(t *testing.T) {
	store := newTestStore(t)

	entries, err := store.Recent(context.Background(), 5)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestRemove(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, "file:///a.mkv", ""))
	require.NoError(t, store.Record(ctx, "file:///b.mkv", ""))

	entries, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.NoError(t, store.Remove(ctx, entries[0].ID))

	entries, err = store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestClear(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, "file:///a.mkv", ""))
	require.NoError(t, store.Record(ctx, "file:///b.mkv", ""))

	n, err := store.Clear(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	entries, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestPruneKeepsMostRecent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	uris := []string{
		"file:///movies/newest.mkv",
		"file:///movies/middle.mkv",
		"file:///movies/oldest.mkv",
	}
	for i, uri := range uris {
		require.NoError(t, store.Record(ctx, uri, ""))
		_, err := store.db.ExecContext(ctx,
			"UPDATE playback_history SET last_played_at = datetime('2026-01-01 12:00:00', ?) WHERE uri = ?",
			fmt.Sprintf("-%d hours", i), uri,
		)
		require.NoError(t, err)
	}

	require.NoError(t, store.Prune(ctx, 2))

	entries, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "file:///movies/newest.mkv", entries[0].URI)
	require.Equal(t, "file:///movies/middle.mkv", entries[1].URI)
}

func TestPruneNonPositiveKeepIsNoop(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, "file:///a.mkv", ""))
	require.NoError(t, store.Record(ctx, "file:///b.mkv", ""))

	require.NoError(t, store.Prune(ctx, 0))

	entries, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}
