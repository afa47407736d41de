// Package store provides the local favorites store backed by a BoltDB file.
// It is the single authoritative persistence path for favorited gifs; the
// legacy file and SQLite stores are imported by MigrateLegacy.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"gifapp/internal/model"
)

const (
	dbFileName      = "gifapp_favorites.db"
	FavoritesBucket = "Favorites" // Bucket name for gif id to encoded gif mapping.
	MetaBucket      = "Meta"      // Bucket name for store bookkeeping (migrations).
)

// ErrNotFound is returned when a gif id is not in the store.
var ErrNotFound = errors.New("favorite not found")

// LoggerFunc defines a function signature for logging messages.
// This allows the ui package to provide its logging mechanism.
type LoggerFunc func(message string)

// FavoriteDB manages the favorites database.
type FavoriteDB struct {
	db     *bolt.DB
	path   string
	logger LoggerFunc
	now    func() time.Time
}

// DefaultDir returns the directory used when no explicit location is given.
func DefaultDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not get user config dir: %w", err)
	}
	return filepath.Join(configDir, "gifapp"), nil
}

// Open creates or opens the favorites database.
// dbDir specifies the directory where the db file should be stored; an empty
// value selects DefaultDir, falling back to the current directory.
func Open(dbDir string, logger LoggerFunc) (*FavoriteDB, error) {
	if dbDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			log.Printf("Warning: %v. Using current dir.", err)
			dir = "."
		}
		dbDir = dir
	}
	if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create store directory %s: %w", dbDir, err)
	}

	dbPath := filepath.Join(dbDir, dbFileName)
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open favorites database %s: %w", dbPath, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{FavoritesBucket, MetaBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	fdb := &FavoriteDB{db: db, path: dbPath, logger: logger, now: time.Now}
	fdb.logMessage("Using favorites database at: %s", dbPath)
	return fdb, nil
}

// Path returns the database file location.
func (fdb *FavoriteDB) Path() string {
	return fdb.path
}

func (fdb *FavoriteDB) logMessage(format string, args ...interface{}) {
	if fdb.logger != nil {
		fdb.logger(fmt.Sprintf(format, args...))
	} else {
		log.Printf(format, args...)
	}
}

// Close closes the database connection.
func (fdb *FavoriteDB) Close() error {
	if fdb.db != nil {
		return fdb.db.Close()
	}
	return nil
}

func encodeGif(g model.Gif) ([]byte, error) {
	return json.Marshal(g)
}

func decodeGif(data []byte) (model.Gif, error) {
	var g model.Gif
	err := json.Unmarshal(data, &g)
	return g, err
}

// putGif stores g, keeping the original AddedAt of an existing entry.
// Returns true if the id was not present before.
func (fdb *FavoriteDB) putGif(tx *bolt.Tx, g model.Gif) (bool, error) {
	bucket := tx.Bucket([]byte(FavoritesBucket))
	key := []byte(g.ID)
	created := true
	if existing := bucket.Get(key); existing != nil {
		created = false
		if old, err := decodeGif(existing); err == nil && !old.AddedAt.IsZero() {
			g.AddedAt = old.AddedAt
		}
	}
	if g.AddedAt.IsZero() {
		g.AddedAt = fdb.now().UTC()
	}
	data, err := encodeGif(g)
	if err != nil {
		return false, fmt.Errorf("failed to encode gif %s: %w", g.ID, err)
	}
	if err := bucket.Put(key, data); err != nil {
		return false, fmt.Errorf("failed to put gif %s: %w", g.ID, err)
	}
	return created, nil
}

// Add stores a gif as a favorite. Adding an id that is already stored
// updates its fields but keeps its position in the list.
func (fdb *FavoriteDB) Add(g model.Gif) error {
	if g.ID == "" {
		return fmt.Errorf("gif id cannot be empty")
	}
	return fdb.db.Update(func(tx *bolt.Tx) error {
		_, err := fdb.putGif(tx, g)
		return err
	})
}

// Get returns the stored gif with the given id.
func (fdb *FavoriteDB) Get(id string) (model.Gif, error) {
	var g model.Gif
	err := fdb.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(FavoritesBucket)).Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}
		var err error
		g, err = decodeGif(data)
		if err != nil {
			return fmt.Errorf("failed to decode gif %s: %w", id, err)
		}
		return nil
	})
	return g, err
}

// Has reports whether id is stored.
func (fdb *FavoriteDB) Has(id string) (bool, error) {
	var found bool
	err := fdb.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket([]byte(FavoritesBucket)).Get([]byte(id)) != nil
		return nil
	})
	return found, err
}

// LoadAll returns every favorite, oldest first.
func (fdb *FavoriteDB) LoadAll() ([]model.Gif, error) {
	gifs := []model.Gif{}
	err := fdb.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(FavoritesBucket)).ForEach(func(k, v []byte) error {
			g, err := decodeGif(v)
			if err != nil {
				fdb.logMessage("Error decoding favorite '%s', skipping: %v", string(k), err)
				return nil
			}
			gifs = append(gifs, g)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}
	sort.SliceStable(gifs, func(i, j int) bool {
		if !gifs[i].AddedAt.Equal(gifs[j].AddedAt) {
			return gifs[i].AddedAt.Before(gifs[j].AddedAt)
		}
		return gifs[i].ID < gifs[j].ID
	})
	return gifs, nil
}

// Count returns the number of stored favorites.
func (fdb *FavoriteDB) Count() (int, error) {
	var n int
	err := fdb.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket([]byte(FavoritesBucket)).Stats().KeyN
		return nil
	})
	return n, err
}

// DeleteByIDs removes the given ids in a single transaction and returns the
// entries that were actually removed. Unknown ids are ignored.
func (fdb *FavoriteDB) DeleteByIDs(ids []string) ([]model.Gif, error) {
	var removed []model.Gif
	err := fdb.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(FavoritesBucket))
		for _, id := range ids {
			if id == "" {
				continue
			}
			data := bucket.Get([]byte(id))
			if data == nil {
				continue
			}
			g, err := decodeGif(data)
			if err != nil {
				g = model.Gif{ID: id}
			}
			if err := bucket.Delete([]byte(id)); err != nil {
				return fmt.Errorf("failed to delete favorite %s: %w", id, err)
			}
			removed = append(removed, g)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// SetLocalPath records where the file for id lives. An empty path clears it.
func (fdb *FavoriteDB) SetLocalPath(id, path string) error {
	return fdb.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(FavoritesBucket))
		data := bucket.Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}
		g, err := decodeGif(data)
		if err != nil {
			return fmt.Errorf("failed to decode gif %s: %w", id, err)
		}
		g.LocalPath = path
		_, err = fdb.putGif(tx, g)
		return err
	})
}

func (fdb *FavoriteDB) metaFlag(key string) (bool, error) {
	var set bool
	err := fdb.db.View(func(tx *bolt.Tx) error {
		set = tx.Bucket([]byte(MetaBucket)).Get([]byte(key)) != nil
		return nil
	})
	return set, err
}

func (fdb *FavoriteDB) setMetaFlag(tx *bolt.Tx, key string) error {
	stamp := []byte(fdb.now().UTC().Format(time.RFC3339))
	return tx.Bucket([]byte(MetaBucket)).Put([]byte(key), stamp)
}
