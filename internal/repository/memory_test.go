package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/bluckboster/internal/model"
)

var moviesTable = model.Table{Name: "BluckBoster_movies", Key: model.FieldID}

func fullMetrics(base float64) model.Metrics {
	m := make(model.Metrics, len(model.Criteria))
	for i, k := range model.Criteria {
		m[k] = base + float64(i)
	}
	return m
}

func TestMemoryStoreUpdateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_, err := s.PutItems(ctx, moviesTable, []map[string]any{{"id": "m1", "title": "Jaws"}})
	require.NoError(t, err)

	fields := map[string]any{model.FieldMets: model.Metrics{"action": 70}}
	require.NoError(t, s.UpdateFields(ctx, moviesTable, "m1", fields))
	first, err := s.GetItem(ctx, moviesTable, "m1")
	require.NoError(t, err)

	require.NoError(t, s.UpdateFields(ctx, moviesTable, "m1", fields))
	second, err := s.GetItem(ctx, moviesTable, "m1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "Jaws", second["title"])
}

func TestMemoryStoreMissingKey(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.PutItems(context.Background(), moviesTable, []map[string]any{{"title": "no id"}})
	assert.ErrorIs(t, err, ErrMissingKey)

	got, err := s.GetItem(context.Background(), moviesTable, "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStoreFindNearest(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for id, base := range map[string]float64{"a": 10, "b": 12, "c": 60, "d": 11} {
		require.NoError(t, s.UpdateFields(ctx, moviesTable, id, map[string]any{model.FieldMets: fullMetrics(base)}))
	}
	require.NoError(t, s.UpdateFields(ctx, moviesTable, "e", map[string]any{"title": "no metrics"}))

	near, err := s.FindNearest(ctx, moviesTable, "a", 2)
	require.NoError(t, err)
	require.Len(t, near, 2)
	assert.Equal(t, "d", near[0]["id"])
	assert.Equal(t, "b", near[1]["id"])
}

func TestMemoryStorePutItemsLastWriteWins(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	n, err := s.PutItems(ctx, moviesTable, []map[string]any{
		{"id": "m1", "title": "first"},
		{"id": "m1", "title": "second"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := s.GetItem(ctx, moviesTable, "m1")
	require.NoError(t, err)
	assert.Equal(t, "second", got["title"])
}
