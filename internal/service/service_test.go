package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gifapp/internal/media"
	"gifapp/internal/model"
	"gifapp/internal/store"
)

type fakeCatalog struct {
	random    model.Gif
	randomErr error
	page      model.GifResponse
	pages     []int
}

func (f *fakeCatalog) Random(ctx context.Context) (model.Gif, error) {
	return f.random, f.randomErr
}

func (f *fakeCatalog) Latest(ctx context.Context, page int) (model.GifResponse, error) {
	f.pages = append(f.pages, page)
	return f.page, nil
}

func (f *fakeCatalog) Top(ctx context.Context, page int) (model.GifResponse, error) {
	f.pages = append(f.pages, -page)
	return f.page, nil
}

func (f *fakeCatalog) BaseURL() string { return "http://catalog.test/" }

type fixture struct {
	svc   *Service
	cat   *fakeCatalog
	srv   *httptest.Server
	cache *media.Cache
	logs  []string
	fdb   *store.FavoriteDB
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{cat: &fakeCatalog{}}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken.gif" {
			http.Error(w, "gone", http.StatusGone)
			return
		}
		w.Write([]byte("GIF89a-data"))
	}))
	t.Cleanup(f.srv.Close)

	var err error
	f.fdb, err = store.Open(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { f.fdb.Close() })

	f.cache, err = media.NewCache(t.TempDir())
	require.NoError(t, err)

	f.svc = NewService(f.fdb, f.cat, f.cache, nil, func(msg string) { f.logs = append(f.logs, msg) })
	return f
}

func (f *fixture) url(name string) string { return f.srv.URL + "/" + name }

func TestRandomDownloads(t *testing.T) {
	f := newFixture(t)
	f.cat.random = model.Gif{ID: "11", Description: "d", GifURL: f.url("11.gif")}

	g, err := f.svc.Random(context.Background())
	require.NoError(t, err)
	assert.Equal(t, f.cache.LocalPath("11"), g.LocalPath)
	assert.FileExists(t, g.LocalPath)
}

func TestRandomDownloadFailureStillReturnsGif(t *testing.T) {
	f := newFixture(t)
	f.cat.random = model.Gif{ID: "12", GifURL: f.url("broken.gif")}

	g, err := f.svc.Random(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "12", g.ID)
	assert.Empty(t, g.LocalPath)
	assert.NotEmpty(t, f.logs)
}

func TestRandomCatalogError(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("boom")
	f.cat.randomErr = boom
	_, err := f.svc.Random(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestLatestAndTop(t *testing.T) {
	f := newFixture(t)
	f.cat.page = model.GifResponse{Result: []model.Gif{{ID: "1"}}, TotalCount: 1}

	resp, err := f.svc.Latest(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, resp.Result, 1)
	_, err = f.svc.Top(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []int{2, -3}, f.cat.pages)
}

func TestAddFavoriteAndDelete(t *testing.T) {
	f := newFixture(t)

	g, err := f.svc.AddFavorite(context.Background(), model.Gif{ID: "5", GifURL: f.url("5.gif")})
	require.NoError(t, err)
	assert.FileExists(t, g.LocalPath)

	ok, err := f.svc.IsFavorite("5")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.svc.AddFavorite(context.Background(), model.Gif{})
	assert.Error(t, err)

	removed, err := f.svc.DeleteFavorites([]string{"5", "6"})
	require.NoError(t, err)
	assert.Equal(t, []string{"5"}, model.IDs(removed))
	assert.NoFileExists(t, g.LocalPath)

	favs, err := f.svc.Favorites()
	require.NoError(t, err)
	assert.Empty(t, favs)

	removed, err = f.svc.DeleteFavorites(nil)
	assert.NoError(t, err)
	assert.Empty(t, removed)
}

func TestFavoritesFillsCachePath(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.fdb.Add(model.Gif{ID: "8", LocalPath: "/nowhere/8.gif"}))
	require.NoError(t, os.WriteFile(f.cache.LocalPath("8"), []byte("x"), 0600))

	favs, err := f.svc.Favorites()
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, f.cache.LocalPath("8"), favs[0].LocalPath)
}

func TestCleanCache(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.AddFavorite(context.Background(), model.Gif{ID: "1", GifURL: f.url("1.gif")})
	require.NoError(t, err)
	require.NoError(t, f.fdb.Add(model.Gif{ID: "2", LocalPath: filepath.Join(t.TempDir(), "2.gif")}))

	for _, id := range []string{"orphan", "current"} {
		require.NoError(t, os.WriteFile(f.cache.LocalPath(id), []byte("x"), 0600))
	}

	report, err := f.svc.CleanCache("current")
	require.NoError(t, err)
	assert.Equal(t, 1, report.FilesRemoved)
	assert.Equal(t, 1, report.PathsCleared)

	assert.True(t, f.cache.Exists("1"))
	assert.True(t, f.cache.Exists("current"))
	assert.False(t, f.cache.Exists("orphan"))

	g, err := f.fdb.Get("2")
	require.NoError(t, err)
	assert.Empty(t, g.LocalPath)
}

func TestMigrate(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(t.TempDir(), store.LegacyFileName)
	require.NoError(t, os.WriteFile(path, []byte(`[{"id": 3, "description": "old"}]`), 0600))

	report, err := f.svc.Migrate(path, "")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported())

	favs, err := f.svc.Favorites()
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, model.IDs(favs))
}

func TestStatus(t *testing.T) {
	f := newFixture(t)
	st, err := f.svc.Status()
	require.NoError(t, err)
	assert.Equal(t, f.fdb.Path(), st.DatabasePath)
	assert.Equal(t, f.cache.Dir, st.CacheDir)
	assert.Equal(t, "http://catalog.test/", st.CatalogURL)
	assert.Zero(t, st.Favorites)
	assert.False(t, st.LegacyMigrated)

	path := filepath.Join(t.TempDir(), store.LegacyFileName)
	require.NoError(t, os.WriteFile(path, []byte(`[{"id": 1}]`), 0600))
	_, err = f.svc.Migrate(path, "")
	require.NoError(t, err)

	st, err = f.svc.Status()
	require.NoError(t, err)
	assert.Equal(t, 1, st.Favorites)
	assert.True(t, st.LegacyMigrated)
}

func TestCleanCacheKeepsFavoritesWithUnusualIDs(t *testing.T) {
	f := newFixture(t)
	for _, id := range []string{"a/b", "c:d"} {
		_, err := f.svc.AddFavorite(context.Background(), model.Gif{ID: id, GifURL: f.url("x.gif")})
		require.NoError(t, err)
	}

	report, err := f.svc.CleanCache()
	require.NoError(t, err)
	assert.Zero(t, report.FilesRemoved)
	assert.True(t, f.cache.Exists("a/b"))
	assert.True(t, f.cache.Exists("c:d"))
}
