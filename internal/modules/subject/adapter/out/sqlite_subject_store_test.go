package out_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	subjectout "studytracker/internal/modules/subject/adapter/out"
	apperrors "studytracker/internal/platform/errors"
	"studytracker/internal/platform/sqlitedb"
)

func newStore(t *testing.T) (*sqlitedb.DB, *subjectout.SQLiteSubjectStore) {
	t.Helper()
	db, err := sqlitedb.Open(context.Background(), filepath.Join(t.TempDir(), "study.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, subjectout.NewSQLiteSubjectStore(db).(*subjectout.SQLiteSubjectStore)
}

func TestSQLiteSubjectStoreCRUD(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, store := newStore(t)

	math, err := store.Insert(ctx, "Math")
	require.NoError(t, err)
	art, err := store.Insert(ctx, "Art")
	require.NoError(t, err)

	_, err = store.Insert(ctx, "Math")
	assert.ErrorIs(t, err, apperrors.ErrDuplicateName)

	err = store.Rename(ctx, art.ID, "Math")
	assert.ErrorIs(t, err, apperrors.ErrDuplicateName)
	got, err := store.Get(ctx, art.ID)
	require.NoError(t, err)
	assert.Equal(t, "Art", got.Name)

	require.NoError(t, store.SetArchived(ctx, math.ID, true))
	visible, err := store.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "Art", visible[0].Name)

	all, err := store.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, store.Delete(ctx, art.ID))
	assert.ErrorIs(t, store.Delete(ctx, art.ID), apperrors.ErrNotFound)
	_, err = store.Get(ctx, art.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = store.FindByName(ctx, "Art")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSQLiteSubjectStoreRollsBackWithTransaction(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, store := newStore(t)

	err := db.Within(ctx, func(ctx context.Context) error {
		if _, err := store.Insert(ctx, "Physics"); err != nil {
			return err
		}
		_, err := store.Insert(ctx, "Physics")
		return err
	})
	require.ErrorIs(t, err, apperrors.ErrDuplicateName)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
