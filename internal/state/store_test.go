package state

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestGetReturnsNilForUnknownPath(t *testing.T) {
	st := setupTestStore(t)

	rec, err := st.Get(context.Background(), "ads/unknown.yaml")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestUpsertRoundTrip(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	id := int64(1234)
	published := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, st.Upsert(ctx, &AdState{
		Path:        "ads/bike.yaml",
		AdID:        &id,
		ContentHash: "abc",
		PublishedAt: &published,
	}))

	rec, err := st.Get(ctx, "ads/bike.yaml")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "abc", rec.ContentHash)
	require.NotNil(t, rec.AdID)
	assert.Equal(t, id, *rec.AdID)
	require.NotNil(t, rec.PublishedAt)
	assert.True(t, rec.PublishedAt.Equal(published))

	// Upsert replaces the previous row.
	require.NoError(t, st.Upsert(ctx, &AdState{Path: "ads/bike.yaml", ContentHash: "def"}))
	rec, err = st.Get(ctx, "ads/bike.yaml")
	require.NoError(t, err)
	assert.Equal(t, "def", rec.ContentHash)
	assert.Nil(t, rec.AdID)
}

func TestDelete(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Upsert(ctx, &AdState{Path: "ads/bike.yaml", ContentHash: "abc"}))
	require.NoError(t, st.Delete(ctx, "ads/bike.yaml"))

	rec, err := st.Get(ctx, "ads/bike.yaml")
	require.NoError(t, err)
	assert.Nil(t, rec)

	assert.NoError(t, st.Delete(ctx, "ads/bike.yaml"), "deleting a missing row is fine")
}
