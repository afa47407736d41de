package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	bolt "go.etcd.io/bbolt"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"gifapp/internal/model"
)

const (
	// LegacyFileName is the JSON list written by the old file-backed store.
	LegacyFileName = "favorites.json"
	// LegacyDatabaseName is the SQLite file written by the old database-backed store.
	LegacyDatabaseName = "gifapp.sqlite"
	// MigratedSuffix is appended to a legacy source once it has been imported.
	MigratedSuffix = ".migrated"

	metaLegacyMigrated = "legacy_migrated_at"
	legacyQuery        = "SELECT id, COALESCE(description, ''), COALESCE(gif_url, ''), COALESCE(local_path, '') FROM gifs"
)

// MigrationReport summarizes what MigrateLegacy imported.
type MigrationReport struct {
	FromFile     int // Entries imported from the JSON file store
	FromDatabase int // Entries imported from the SQLite store
	Skipped      int // Entries already present in the store or without an id
}

// Imported returns the total number of new favorites.
func (r MigrationReport) Imported() int {
	return r.FromFile + r.FromDatabase
}

// MigrateLegacy imports favorites from the old JSON file store and the old
// SQLite store into this database. Either path may be empty or point to a
// file that does not exist. Entries already in the store win over legacy
// copies. Each source that was read successfully is renamed with
// MigratedSuffix so the import happens once.
func (fdb *FavoriteDB) MigrateLegacy(jsonPath, sqlitePath string) (MigrationReport, error) {
	var report MigrationReport

	fileGifs, err := readLegacyFile(jsonPath)
	if err != nil {
		return report, err
	}
	dbGifs, err := readLegacyDatabase(sqlitePath)
	if err != nil {
		return report, err
	}
	if fileGifs == nil && dbGifs == nil {
		return report, nil
	}

	err = fdb.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(FavoritesBucket))
		importAll := func(gifs []model.Gif, counter *int) error {
			for _, g := range gifs {
				if g.ID == "" || bucket.Get([]byte(g.ID)) != nil {
					report.Skipped++
					continue
				}
				if _, err := fdb.putGif(tx, g); err != nil {
					return err
				}
				*counter++
			}
			return nil
		}
		if err := importAll(fileGifs, &report.FromFile); err != nil {
			return fmt.Errorf("importing %s: %w", jsonPath, err)
		}
		if err := importAll(dbGifs, &report.FromDatabase); err != nil {
			return fmt.Errorf("importing %s: %w", sqlitePath, err)
		}
		return fdb.setMetaFlag(tx, metaLegacyMigrated)
	})
	if err != nil {
		return MigrationReport{}, err
	}

	for path, read := range map[string]bool{jsonPath: fileGifs != nil, sqlitePath: dbGifs != nil} {
		if !read {
			continue
		}
		if err := os.Rename(path, path+MigratedSuffix); err != nil {
			fdb.logMessage("Could not mark legacy store %s as migrated: %v", path, err)
		}
	}
	fdb.logMessage("Legacy migration: %d from file, %d from database, %d skipped",
		report.FromFile, report.FromDatabase, report.Skipped)
	return report, nil
}

// LegacyMigrated reports whether a legacy import has ever completed.
func (fdb *FavoriteDB) LegacyMigrated() (bool, error) {
	return fdb.metaFlag(metaLegacyMigrated)
}

// readLegacyFile returns nil, nil when there is nothing to import.
func readLegacyFile(path string) ([]model.Gif, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading legacy favorites file %s: %w", path, err)
	}
	gifs := []model.Gif{}
	if len(data) == 0 {
		return gifs, nil
	}
	if err := json.Unmarshal(data, &gifs); err != nil {
		return nil, fmt.Errorf("decoding legacy favorites file %s: %w", path, err)
	}
	return gifs, nil
}

// readLegacyDatabase returns nil, nil when there is nothing to import.
func readLegacyDatabase(path string) ([]model.Gif, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening legacy database %s: %w", path, err)
	}
	defer db.Close()

	rows, err := db.Query(legacyQuery)
	if err != nil {
		return nil, fmt.Errorf("querying legacy database %s: %w", path, err)
	}
	defer rows.Close()

	gifs := []model.Gif{}
	for rows.Next() {
		var g model.Gif
		if err := rows.Scan(&g.ID, &g.Description, &g.GifURL, &g.LocalPath); err != nil {
			return nil, fmt.Errorf("scanning legacy row: %w", err)
		}
		gifs = append(gifs, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading legacy database %s: %w", path, err)
	}
	return gifs, nil
}
