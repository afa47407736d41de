package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gifapp/internal/model"
)

// openTestDB opens a database in a fresh temp dir with a deterministic clock.
func openTestDB(t *testing.T) *FavoriteDB {
	t.Helper()
	fdb, err := Open(t.TempDir(), func(msg string) { t.Logf("store: %s", msg) })
	require.NoError(t, err)
	t.Cleanup(func() { fdb.Close() })

	base := time.Date(2024, 5, 7, 6, 55, 0, 0, time.UTC)
	tick := 0
	fdb.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return fdb
}

func TestOpenCreatesFile(t *testing.T) {
	dir := t.TempDir()
	fdb, err := Open(dir, nil)
	require.NoError(t, err)
	defer fdb.Close()
	assert.FileExists(t, filepath.Join(dir, dbFileName))
	assert.Equal(t, filepath.Join(dir, dbFileName), fdb.Path())
}

func TestAddAndLoadAllKeepsInsertionOrder(t *testing.T) {
	fdb := openTestDB(t)

	require.NoError(t, fdb.Add(model.Gif{ID: "30", Description: "third id, first added"}))
	require.NoError(t, fdb.Add(model.Gif{ID: "10", Description: "second"}))
	require.NoError(t, fdb.Add(model.Gif{ID: "20", Description: "third"}))

	gifs, err := fdb.LoadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"30", "10", "20"}, model.IDs(gifs))
	for _, g := range gifs {
		assert.False(t, g.AddedAt.IsZero())
	}
}

func TestAddIsIdempotent(t *testing.T) {
	fdb := openTestDB(t)

	require.NoError(t, fdb.Add(model.Gif{ID: "1", Description: "old"}))
	require.NoError(t, fdb.Add(model.Gif{ID: "2"}))
	first, err := fdb.Get("1")
	require.NoError(t, err)

	require.NoError(t, fdb.Add(model.Gif{ID: "1", Description: "new"}))

	n, err := fdb.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	updated, err := fdb.Get("1")
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Description)
	assert.Equal(t, first.AddedAt, updated.AddedAt)

	gifs, err := fdb.LoadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, model.IDs(gifs))
}

func TestAddRejectsEmptyID(t *testing.T) {
	fdb := openTestDB(t)
	assert.Error(t, fdb.Add(model.Gif{Description: "no id"}))
}

func TestGetAndHas(t *testing.T) {
	fdb := openTestDB(t)
	require.NoError(t, fdb.Add(model.Gif{ID: "7", GifURL: "http://x/7.gif"}))

	ok, err := fdb.Has("7")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = fdb.Has("8")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = fdb.Get("8")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteByIDs(t *testing.T) {
	fdb := openTestDB(t)
	for _, id := range []string{"1", "2", "3", "4"} {
		require.NoError(t, fdb.Add(model.Gif{ID: id}))
	}

	removed, err := fdb.DeleteByIDs([]string{"2", "4", "missing", ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "4"}, model.IDs(removed))

	gifs, err := fdb.LoadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, model.IDs(gifs))
}

func TestSetLocalPath(t *testing.T) {
	fdb := openTestDB(t)
	require.NoError(t, fdb.Add(model.Gif{ID: "5"}))

	require.NoError(t, fdb.SetLocalPath("5", "/tmp/5.gif"))
	g, err := fdb.Get("5")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/5.gif", g.LocalPath)

	assert.ErrorIs(t, fdb.SetLocalPath("6", "x"), ErrNotFound)
}

func TestMigrateLegacy(t *testing.T) {
	fdb := openTestDB(t)
	require.NoError(t, fdb.Add(model.Gif{ID: "1", Description: "already stored"}))

	dir := t.TempDir()
	jsonPath := filepath.Join(dir, LegacyFileName)
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[
		{"id": 1, "description": "stale copy"},
		{"id": 2, "description": "from file", "gifURL": "http://x/2.gif"},
		{"description": "no id"}
	]`), 0600))

	sqlitePath := filepath.Join(dir, LegacyDatabaseName)
	legacy, err := sql.Open("sqlite", sqlitePath)
	require.NoError(t, err)
	_, err = legacy.Exec(`CREATE TABLE gifs (id INTEGER PRIMARY KEY, description TEXT, gif_url TEXT, local_path TEXT)`)
	require.NoError(t, err)
	_, err = legacy.Exec(`INSERT INTO gifs (id, description, gif_url, local_path) VALUES (2, 'dup of file', 'u', NULL), (3, 'from db', 'http://x/3.gif', '/pics/3.gif')`)
	require.NoError(t, err)
	require.NoError(t, legacy.Close())

	report, err := fdb.MigrateLegacy(jsonPath, sqlitePath)
	require.NoError(t, err)
	assert.Equal(t, 1, report.FromFile)
	assert.Equal(t, 1, report.FromDatabase)
	assert.Equal(t, 3, report.Skipped)
	assert.Equal(t, 2, report.Imported())

	gifs, err := fdb.LoadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, model.IDs(gifs))

	kept, err := fdb.Get("1")
	require.NoError(t, err)
	assert.Equal(t, "already stored", kept.Description)

	fromDB, err := fdb.Get("3")
	require.NoError(t, err)
	assert.Equal(t, "/pics/3.gif", fromDB.LocalPath)

	assert.NoFileExists(t, jsonPath)
	assert.NoFileExists(t, sqlitePath)
	assert.FileExists(t, jsonPath+MigratedSuffix)
	assert.FileExists(t, sqlitePath+MigratedSuffix)

	migrated, err := fdb.LegacyMigrated()
	require.NoError(t, err)
	assert.True(t, migrated)

	// Sources are gone, so a second run is a no-op.
	again, err := fdb.MigrateLegacy(jsonPath, sqlitePath)
	require.NoError(t, err)
	assert.Zero(t, again.Imported())
}

func TestMigrateLegacyNothingToDo(t *testing.T) {
	fdb := openTestDB(t)
	report, err := fdb.MigrateLegacy("", filepath.Join(t.TempDir(), "missing.sqlite"))
	require.NoError(t, err)
	assert.Zero(t, report.Imported())

	migrated, err := fdb.LegacyMigrated()
	require.NoError(t, err)
	assert.False(t, migrated)
}

func TestMigrateLegacyBadJSON(t *testing.T) {
	fdb := openTestDB(t)
	path := filepath.Join(t.TempDir(), LegacyFileName)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := fdb.MigrateLegacy(path, "")
	assert.Error(t, err)
	assert.FileExists(t, path)
}
