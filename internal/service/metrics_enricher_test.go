package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/bluckboster/internal/model"
	"github.com/user/bluckboster/internal/repository"
	"github.com/user/bluckboster/internal/utils"
	"go.uber.org/zap"
)

var (
	jaws   = &model.Movie{ID: "m1", Title: "Jaws", Year: "1975"}
	alien  = &model.Movie{ID: "m2", Title: "Alien", Year: "1979"}
	noID   = &model.Movie{Title: "Untitled", Year: "2000"}
	heat   = &model.Movie{ID: "m3", Title: "Heat", Year: "1995"}
	jawsJS = "```json\n{\"action\": 70, \"comedy\": 10, \"story telling\": 92}\n```"
)

func newMetricsFixture(t *testing.T, gen *fakeGenerator) (*MetricsEnricher, *repository.MemoryStore, string) {
	t.Helper()
	store := repository.NewMemoryStore()
	checkpoint := filepath.Join(t.TempDir(), "metrics.json")
	e := NewMetricsEnricher(store, gen, utils.NoThrottle{}, testMovies, checkpoint, zap.NewNop())
	return e, store, checkpoint
}

func TestMetricsPrompt(t *testing.T) {
	assert.Equal(t,
		"grade the 1975 movie Jaws on the following criteria from 0 to 100 in json format: action, comedy, "+
			"suspense, drama, horror, romance, fantasy, story telling, cinematography, writing, directing, and acting",
		MetricsPrompt(jaws))
}

func TestMetricsEnricherSkipsUnparseable(t *testing.T) {
	gen := &fakeGenerator{responses: map[string]string{
		MetricsPrompt(jaws):  jawsJS,
		MetricsPrompt(alien): "Sorry, I can't grade that.",
	}}
	e, store, checkpoint := newMetricsFixture(t, gen)

	report, err := e.Run(context.Background(), []*model.Movie{jaws, alien, noID}, EnrichOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 1, report.Enriched)
	assert.Equal(t, map[string]int{"no_object": 1, "missing_id": 1}, report.Skipped)

	item, err := store.GetItem(context.Background(), testMovies, "m1")
	require.NoError(t, err)
	assert.Equal(t, model.Metrics{"action": 70, "comedy": 10, "story_telling": 92}, item[model.FieldMets])

	missing, err := store.GetItem(context.Background(), testMovies, "m2")
	require.NoError(t, err)
	assert.Nil(t, missing)

	set, err := repository.ReadMetricsSet(checkpoint)
	require.NoError(t, err)
	assert.Equal(t, []string{"m1"}, set.IDs)
}

func TestMetricsEnricherIsIdempotent(t *testing.T) {
	gen := &fakeGenerator{responses: map[string]string{MetricsPrompt(jaws): jawsJS}}
	e, store, checkpoint := newMetricsFixture(t, gen)
	ctx := context.Background()

	_, err := e.Run(ctx, []*model.Movie{jaws}, EnrichOptions{})
	require.NoError(t, err)
	first, _ := store.GetItem(ctx, testMovies, "m1")
	firstFile, err := os.ReadFile(checkpoint)
	require.NoError(t, err)

	_, err = e.Run(ctx, []*model.Movie{jaws}, EnrichOptions{})
	require.NoError(t, err)
	second, _ := store.GetItem(ctx, testMovies, "m1")
	secondFile, err := os.ReadFile(checkpoint)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, string(firstFile), string(secondFile))
}

func TestMetricsEnricherResume(t *testing.T) {
	gen := &fakeGenerator{responses: map[string]string{
		MetricsPrompt(jaws): jawsJS,
		MetricsPrompt(heat): `{"action": 88}`,
	}}
	e, _, checkpoint := newMetricsFixture(t, gen)
	ctx := context.Background()

	_, err := e.Run(ctx, []*model.Movie{jaws}, EnrichOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, gen.callCount())

	report, err := e.Run(ctx, []*model.Movie{jaws, heat}, EnrichOptions{Resume: true})
	require.NoError(t, err)
	assert.Equal(t, 1, report.AlreadyDone)
	assert.Equal(t, 1, report.Enriched)
	assert.Equal(t, 2, gen.callCount())

	set, err := repository.ReadMetricsSet(checkpoint)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"m1", "m3"}, set.IDs)
}

func TestMetricsEnricherLimit(t *testing.T) {
	gen := &fakeGenerator{responses: map[string]string{}}
	e, _, _ := newMetricsFixture(t, gen)

	report, err := e.Run(context.Background(), []*model.Movie{jaws, alien, heat}, EnrichOptions{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 2, gen.callCount())
}

func TestMetricsEnricherPropagatesGeneratorErrors(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	e, _, _ := newMetricsFixture(t, gen)

	_, err := e.Run(context.Background(), []*model.Movie{jaws}, EnrichOptions{})
	assert.ErrorIs(t, err, gen.err)
}

func TestMetricsEnricherStopsOnCancel(t *testing.T) {
	gen := &fakeGenerator{responses: map[string]string{}}
	e, _, _ := newMetricsFixture(t, gen)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Run(ctx, []*model.Movie{jaws}, EnrichOptions{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, gen.callCount())
}
