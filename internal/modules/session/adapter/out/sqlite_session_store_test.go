package out_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sessionout "studytracker/internal/modules/session/adapter/out"
	"studytracker/internal/modules/session/domain"
	"studytracker/internal/platform/sqlitedb"
)

func openDB(t *testing.T) *sqlitedb.DB {
	t.Helper()
	db, err := sqlitedb.Open(context.Background(), filepath.Join(t.TempDir(), "study.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSQLiteSessionStoreRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := sessionout.NewSQLiteSessionStore(openDB(t), time.UTC)

	start := time.Date(2026, 5, 4, 8, 30, 15, 250_000_000, time.UTC)
	inserted, err := store.Insert(ctx, domain.New(7, 25, start, time.UTC))
	require.NoError(t, err)
	require.NotZero(t, inserted.ID)

	active, err := store.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.True(t, active[0].StartTime.Equal(start))
	assert.Nil(t, active[0].EndTime)
	assert.Nil(t, active[0].DurationMin)
	assert.Equal(t, "2026-05-04", active[0].StartDay)

	ended := active[0].Ended(start.Add(90 * time.Second))
	require.NoError(t, store.Update(ctx, ended))

	active, err = store.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	done, err := store.ListEnded(ctx)
	require.NoError(t, err)
	require.Len(t, done, 1)
	require.NotNil(t, done[0].DurationMin)
	assert.Equal(t, 2, *done[0].DurationMin)
	assert.True(t, done[0].EndTime.Equal(start.Add(90*time.Second)))
}

func TestSQLiteSessionStoreDeletes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := sessionout.NewSQLiteSessionStore(openDB(t), time.UTC)

	day := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	for _, s := range []domain.Session{
		domain.New(1, 10, day.Add(-time.Minute), time.UTC),
		domain.New(1, 10, day, time.UTC),
		domain.New(2, 10, day.Add(23*time.Hour), time.UTC),
		domain.New(2, 10, day.Add(24*time.Hour), time.UTC),
	} {
		_, err := store.Insert(ctx, s)
		require.NoError(t, err)
	}

	n, err := store.DeleteStartedBetween(ctx, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 2, n, "range is half open")

	n, err = store.DeleteBySubject(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = store.DeleteAll(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestFileLastStartStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	store := sessionout.NewFileLastStartStore(dir)

	last, err := store.LoadLast(ctx)
	require.NoError(t, err)
	assert.False(t, last.Valid())

	require.NoError(t, store.SaveLast(ctx, domain.LastStart{SubjectID: 3, Minutes: 50}))

	// A second store on the same directory sees the value, like a new process.
	last, err = sessionout.NewFileLastStartStore(dir).LoadLast(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.LastStart{SubjectID: 3, Minutes: 50}, last)
}
