package repository

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/bluckboster/internal/model"
)

func TestBatchRoundTripSortedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies.json")
	movies := []*model.Movie{{
		ID:       "abc1234",
		Title:    "Casablanca",
		Year:     "1942",
		Rating:   "99%",
		Cast:     []string{"Humphrey Bogart", "Ingrid Bergman"},
		Director: "Michael Curtiz",
	}}

	require.NoError(t, WriteBatch(path, movies))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(raw)
	order := []string{`"cast"`, `"director"`, `"id"`, `"rating"`, `"review"`, `"synopsis"`, `"title"`, `"year"`}
	last := -1
	for _, key := range order {
		idx := strings.Index(text, key)
		require.Greater(t, idx, last, "key %s out of order", key)
		last = idx
	}
	assert.Contains(t, text, "\n        \"cast\": [")

	back, err := ReadBatch[*model.Movie](path)
	require.NoError(t, err)
	assert.Equal(t, movies, back)
}

func TestMergeBatchAppendsWithoutDedup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simpsons.json")

	merged, err := MergeBatch(path, []*model.Member{{ID: "a", FirstName: "Moe"}})
	require.NoError(t, err)
	require.Len(t, merged, 1)

	merged, err = MergeBatch(path, []*model.Member{{ID: "b", FirstName: "Moe"}, {ID: "a", FirstName: "Moe"}})
	require.NoError(t, err)
	require.Len(t, merged, 3)

	back, err := ReadBatch[*model.Member](path)
	require.NoError(t, err)
	ids := []string{back[0].ID, back[1].ID, back[2].ID}
	assert.Equal(t, []string{"a", "b", "a"}, ids)
}

func TestWriteBatchEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, WriteBatch[*model.Movie](path, nil))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(raw))
}

func TestReadMetricsSetPreservesOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.json")
	content := `{
    "zz": {"drama": 10, "action": 20, "story telling": 30},
    "aa": {"action": 1, "story_telling": 2, "drama": 3}
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	set, err := ReadMetricsSet(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"zz", "aa"}, set.IDs)
	assert.Equal(t, []string{"drama", "action", "story_telling"}, set.Keys)
	assert.Equal(t, 30.0, set.ByID["zz"]["story_telling"])
	assert.Equal(t, 2.0, set.ByID["aa"]["story_telling"])
}

func TestMetricsCheckpointRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.json")
	set := model.NewMetricsSet()
	set.Add("m1", model.Metrics{"action": 80, "comedy": 12.5})

	require.NoError(t, WriteMetrics(path, set))

	back, err := ReadMetricsSet(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"m1"}, back.IDs)
	assert.Equal(t, []string{"action", "comedy"}, back.Keys)
	assert.Equal(t, set.ByID, back.ByID)
}

func TestReadMetricsSetRejectsArrays(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.json")
	require.NoError(t, os.WriteFile(path, []byte(`[1, 2]`), 0o644))

	_, err := ReadMetricsSet(path)
	assert.Error(t, err)
}

func TestReadMetricsSetCanonicalKeyWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.json")
	content := `{
    "m1": {"story_telling": 90, "story telling": 10, "action": 5},
    "m2": {"story telling": 10, "Story Telling": 40, "action": 6}
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	set, err := ReadMetricsSet(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"story_telling", "action"}, set.Keys)
	assert.Equal(t, model.Metrics{"story_telling": 90, "action": 5}, set.ByID["m1"])
	assert.Equal(t, model.Metrics{"story_telling": 40, "action": 6}, set.ByID["m2"])
}
