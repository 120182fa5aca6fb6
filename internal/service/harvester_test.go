package service

import (
	"context"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/bluckboster/internal/model"
	"github.com/user/bluckboster/internal/repository"
	"github.com/user/bluckboster/internal/utils"
	"go.uber.org/zap"
)

const guidePage1 = `<html><body>
<div class="row countdown-item">
  <div class="row countdown-item-title-bar">
    <div class="article_movie_title"><div><h2>
      <a href="/m/casablanca">Casablanca</a>
      <span class="subtle start-year">(1942)</span>
      <span class="icon-tomatometer"></span><span class="tMeterScore">99%</span>
    </h2></div></div>
  </div>
  <div class="row countdown-item-details">
    <div class="col">
      <div class="info critics-consensus"><strong>Critics Consensus:</strong> An undisputed masterpiece.</div>
      <div class="info synopsis"><strong>Synopsis:</strong> Rick Blaine runs a nightclub   in Casablanca.</div>
      <div class="info cast"><strong>Starring:</strong> <a href="#">Humphrey Bogart</a>, <a href="#">Ingrid Bergman</a></div>
      <div class="info director"><strong>Directed By:</strong> <a href="#">Michael Curtiz</a></div>
    </div>
  </div>
</div>
<div class="row countdown-item">
  <div class="row countdown-item-title-bar"><div class="article_movie_title"><div><h2></h2></div></div></div>
</div>
</body></html>`

const guidePage2 = `<html><body>
<div class="row countdown-item">
  <div class="row countdown-item-title-bar">
    <div class="article_movie_title"><div><h2>
      <a href="/m/jaws">Jaws</a> <span class="subtle start-year">(1975)</span> <span class="tMeterScore">97%</span>
    </h2></div></div>
  </div>
  <div class="row countdown-item-details"><div>
    <div class="info director"><a href="#">Steven Spielberg</a></div>
  </div></div>
</div>
</body></html>`

const simpsonsPage = `<html><body>
<div class="mw-heading mw-heading3"><h3 id="Moe_Szyslak">Moe Szyslak</h3><span class="mw-editsection">[edit]</span></div>
<p>Bartender.</p>
<div class="mw-heading mw-heading3"><h3>Kang and Kodos</h3></div>
<div class="mw-heading mw-heading3"><h3>Gil</h3></div>
<div class="mw-heading mw-heading2"><h2>See also</h2></div>
</body></html>`

func newFixtureServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	serve := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(body))
		}
	}
	mux.HandleFunc("/guide/", serve(guidePage1))
	mux.HandleFunc("/guide/2/", serve(guidePage2))
	mux.HandleFunc("/wiki/simpsons", serve(simpsonsPage))
	mux.HandleFunc("/broken", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHarvestMovies(t *testing.T) {
	srv := newFixtureServer(t)
	h := NewHarvester(utils.CollectorOptions{}, zap.NewNop())
	spider := NewMovieSpider(srv.URL+"/guide/", srv.URL+"/guide/2/")

	movies, result, err := Harvest[*model.Movie](context.Background(), h, spider, utils.NewContentIDPolicy(nil))
	require.NoError(t, err)
	require.Len(t, movies, 2)
	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, 1, result.Skipped)

	assert.Equal(t, &model.Movie{
		ID:       "casablanca_1942",
		Title:    "Casablanca",
		Year:     "1942",
		Rating:   "99%",
		Review:   "An undisputed masterpiece.",
		Synopsis: "Rick Blaine runs a nightclub in Casablanca.",
		Cast:     []string{"Humphrey Bogart", "Ingrid Bergman"},
		Director: "Michael Curtiz",
	}, movies[0])

	assert.Equal(t, "jaws_1975", movies[1].ID)
	assert.Equal(t, "Steven Spielberg", movies[1].Director)
	assert.Equal(t, []string{}, movies[1].Cast)
	assert.Empty(t, movies[1].Review)
}

func TestHarvestSimpsons(t *testing.T) {
	srv := newFixtureServer(t)
	h := NewHarvester(utils.CollectorOptions{}, zap.NewNop())
	ids := utils.NewRandomIDPolicy(7, rand.New(rand.NewPCG(3, 4)), nil)

	members, _, err := Harvest[*model.Member](context.Background(), h, NewSimpsonsSpider(srv.URL+"/wiki/simpsons"), ids)
	require.NoError(t, err)
	require.Len(t, members, 3)

	assert.Equal(t, "Moe", members[0].FirstName)
	assert.Equal(t, "Szyslak", members[0].LastName)
	assert.Equal(t, "moe_szyslak", members[0].Username)
	assert.Equal(t, "and Kodos", members[1].LastName)
	assert.Equal(t, "kang_and_kodos", members[1].Username)
	assert.Equal(t, "Gil", members[2].Username)
	assert.Empty(t, members[2].LastName)

	seen := map[string]bool{}
	for _, m := range members {
		assert.Len(t, m.ID, 7)
		assert.False(t, seen[m.ID])
		seen[m.ID] = true
	}
}

func TestHarvestFailsFast(t *testing.T) {
	srv := newFixtureServer(t)
	h := NewHarvester(utils.CollectorOptions{}, zap.NewNop())
	spider := NewMovieSpider(srv.URL+"/broken", srv.URL+"/guide/")

	_, result, err := Harvest[*model.Movie](context.Background(), h, spider, utils.NewContentIDPolicy(nil))
	require.Error(t, err)
	assert.Equal(t, 0, result.Harvested)
}

func TestHarvestToFileMerge(t *testing.T) {
	srv := newFixtureServer(t)
	h := NewHarvester(utils.CollectorOptions{}, zap.NewNop())
	path := filepath.Join(t.TempDir(), "movies.json")

	first, err := HarvestToFile[*model.Movie](context.Background(), h, NewMovieSpider(srv.URL+"/guide/"),
		utils.NewContentIDPolicy(nil), path, false)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Total)

	seen := utils.NewMemorySeenStore()
	n, err := SeedSeen[*model.Movie](seen, path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, seen.Contains("casablanca_1942"))

	second, err := HarvestToFile[*model.Movie](context.Background(), h, NewMovieSpider(srv.URL+"/guide/2/"),
		utils.NewContentIDPolicy(seen), path, true)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Total)

	staged, err := repository.ReadBatch[*model.Movie](path)
	require.NoError(t, err)
	require.Len(t, staged, 2)
	assert.Equal(t, "casablanca_1942", staged[0].ID)
	assert.Equal(t, "jaws_1975", staged[1].ID)
}

func TestSeedSeenMissingFile(t *testing.T) {
	n, err := SeedSeen[*model.Member](utils.NewMemorySeenStore(), filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
