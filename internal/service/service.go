// Package service ties the catalog, the favorites store and the media cache
// together. The GUI controllers and the CLI both go through it.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gifapp/internal/media"
	"gifapp/internal/model"
	"gifapp/internal/scan"
	"gifapp/internal/store"
)

// FavoriteStore abstracts the favorites DB for easier testing and decoupling.
type FavoriteStore interface {
	Add(g model.Gif) error
	Get(id string) (model.Gif, error)
	Has(id string) (bool, error)
	LoadAll() ([]model.Gif, error)
	DeleteByIDs(ids []string) ([]model.Gif, error)
	SetLocalPath(id, path string) error
	MigrateLegacy(jsonPath, sqlitePath string) (store.MigrationReport, error)
	LegacyMigrated() (bool, error)
	Count() (int, error)
	Path() string
	Close() error
}

// Catalog is the remote gif source.
type Catalog interface {
	Random(ctx context.Context) (model.Gif, error)
	Latest(ctx context.Context, page int) (model.GifResponse, error)
	Top(ctx context.Context, page int) (model.GifResponse, error)
	BaseURL() string
}

// FileScanner abstracts file scanning.
type FileScanner interface {
	Run(dir string, logger scan.LoggerFunc) <-chan scan.FileItem
}

// Service is the main entry point for business logic.
type Service struct {
	Store    FavoriteStore
	Catalog  Catalog
	Media    *media.Cache
	FileScan FileScanner
	Logger   func(string)
}

// NewService constructs a new Service.
func NewService(st FavoriteStore, cat Catalog, cache *media.Cache, fileScan FileScanner, logger func(string)) *Service {
	if fileScan == nil {
		fileScan = scan.Walker{}
	}
	return &Service{Store: st, Catalog: cat, Media: cache, FileScan: fileScan, Logger: logger}
}

func (s *Service) logf(format string, args ...interface{}) {
	if s.Logger != nil {
		s.Logger(fmt.Sprintf(format, args...))
	} else {
		log.Printf(format, args...)
	}
}

// Random fetches a random gif and downloads it into the cache. A failed
// download is logged and the gif is returned without a LocalPath.
func (s *Service) Random(ctx context.Context) (model.Gif, error) {
	g, err := s.Catalog.Random(ctx)
	if err != nil {
		return model.Gif{}, fmt.Errorf("fetching random gif: %w", err)
	}
	return s.download(ctx, g)
}

func (s *Service) download(ctx context.Context, g model.Gif) (model.Gif, error) {
	if s.Media == nil {
		return g, nil
	}
	dl, err := s.Media.Download(ctx, g)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return model.Gif{}, ctxErr
		}
		s.logf("Download of gif %s failed: %v", g.ID, err)
		return g, nil
	}
	return dl, nil
}

// Latest returns one page of the newest gifs.
func (s *Service) Latest(ctx context.Context, page int) (model.GifResponse, error) {
	resp, err := s.Catalog.Latest(ctx, page)
	if err != nil {
		return model.GifResponse{}, fmt.Errorf("fetching latest page %d: %w", page, err)
	}
	return resp, nil
}

// Top returns one page of the best rated gifs.
func (s *Service) Top(ctx context.Context, page int) (model.GifResponse, error) {
	resp, err := s.Catalog.Top(ctx, page)
	if err != nil {
		return model.GifResponse{}, fmt.Errorf("fetching top page %d: %w", page, err)
	}
	return resp, nil
}

// Favorites returns every stored favorite, oldest first. Entries whose
// recorded file is gone but whose cache file exists get the cache path.
func (s *Service) Favorites() ([]model.Gif, error) {
	gifs, err := s.Store.LoadAll()
	if err != nil {
		return nil, err
	}
	if s.Media == nil {
		return gifs, nil
	}
	for i, g := range gifs {
		if !media.FileExists(g.LocalPath) && s.Media.Exists(g.ID) {
			gifs[i].LocalPath = s.Media.LocalPath(g.ID)
		}
	}
	return gifs, nil
}

// IsFavorite reports whether id is stored.
func (s *Service) IsFavorite(id string) (bool, error) {
	return s.Store.Has(id)
}

// AddFavorite stores g, downloading its file first when it is not local yet.
func (s *Service) AddFavorite(ctx context.Context, g model.Gif) (model.Gif, error) {
	if g.ID == "" {
		return g, errors.New("gif id required")
	}
	if !media.FileExists(g.LocalPath) {
		dl, err := s.download(ctx, g)
		if err != nil {
			return g, err
		}
		g = dl
	}
	if err := s.Store.Add(g); err != nil {
		return g, fmt.Errorf("saving favorite %s: %w", g.ID, err)
	}
	s.logf("Added favorite %s", g.ID)
	return g, nil
}

// DeleteFavorites removes ids from the store and deletes their local files.
// It returns the removed entries. File errors are logged and the first one
// is returned after all entries were processed.
func (s *Service) DeleteFavorites(ids []string) ([]model.Gif, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	removed, err := s.Store.DeleteByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("deleting favorites: %w", err)
	}
	var firstErr error
	for _, g := range removed {
		paths := []string{g.LocalPath}
		if s.Media != nil {
			if p := s.Media.LocalPath(g.ID); p != g.LocalPath {
				paths = append(paths, p)
			}
		}
		for _, p := range paths {
			if err := media.RemoveFile(p); err != nil {
				s.logf("DeleteFavorites: %v", err)
				if firstErr == nil {
					firstErr = err
				}
			}
		}
	}
	s.logf("Deleted %d favorite(s)", len(removed))
	return removed, firstErr
}

// CleanReport summarizes CleanCache.
type CleanReport struct {
	FilesRemoved int // Cache files with no favorite
	PathsCleared int // Favorites whose recorded file no longer exists
}

// CleanCache deletes cached files that no favorite refers to and clears
// LocalPath values that point at missing files. keep lists extra ids whose
// files must survive, such as the gif currently on screen.
func (s *Service) CleanCache(keep ...string) (CleanReport, error) {
	var report CleanReport
	if s.Media == nil {
		return report, errors.New("no media cache configured")
	}
	gifs, err := s.Store.LoadAll()
	if err != nil {
		return report, fmt.Errorf("failed to load favorites: %w", err)
	}

	referenced := make(map[string]bool, len(gifs)+len(keep))
	for _, id := range keep {
		referenced[id] = true
	}
	for _, g := range gifs {
		referenced[g.ID] = true
		if g.LocalPath != "" && !media.FileExists(g.LocalPath) {
			if err := s.Store.SetLocalPath(g.ID, ""); err != nil {
				s.logf("Error clearing path of favorite %s: %v", g.ID, err)
			} else {
				report.PathsCleared++
			}
		}
	}

	items := s.FileScan.Run(s.Media.Dir, func(msg string) { s.logf("CleanCache: %s", msg) })
	for item := range items {
		id, ok := media.IDFromPath(item.Path)
		if !ok || referenced[id] {
			continue
		}
		if err := media.RemoveFile(item.Path); err != nil {
			s.logf("Error removing orphaned file %s: %v", item.Path, err)
			continue
		}
		report.FilesRemoved++
	}
	return report, nil
}

// Migrate imports the legacy JSON and SQLite favorites into the store.
func (s *Service) Migrate(jsonPath, sqlitePath string) (store.MigrationReport, error) {
	report, err := s.Store.MigrateLegacy(jsonPath, sqlitePath)
	if err != nil {
		return report, fmt.Errorf("migrating legacy favorites: %w", err)
	}
	if report.Imported() > 0 {
		s.logf("Imported %d legacy favorite(s) (%d from file, %d from database, %d skipped)",
			report.Imported(), report.FromFile, report.FromDatabase, report.Skipped)
	}
	return report, nil
}

// Status describes where the service keeps its data.
type Status struct {
	DatabasePath   string
	CacheDir       string
	CatalogURL     string
	Favorites      int
	LegacyMigrated bool
}

// Status reports the store location and contents.
func (s *Service) Status() (Status, error) {
	st := Status{DatabasePath: s.Store.Path(), CatalogURL: s.Catalog.BaseURL()}
	if s.Media != nil {
		st.CacheDir = s.Media.Dir
	}
	var err error
	if st.Favorites, err = s.Store.Count(); err != nil {
		return st, fmt.Errorf("counting favorites: %w", err)
	}
	if st.LegacyMigrated, err = s.Store.LegacyMigrated(); err != nil {
		return st, fmt.Errorf("reading migration state: %w", err)
	}
	return st, nil
}

// Close releases the store.
func (s *Service) Close() error {
	return s.Store.Close()
}
