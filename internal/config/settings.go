// Package config stores user settings in Fyne preferences.
package config

import (
	"strings"
	"time"

	"fyne.io/fyne/v2"

	"gifapp/internal/catalog"
	"gifapp/internal/store"
)

// Settings keys for Fyne preferences
const (
	KeyCatalogURL       = "catalog_url"
	KeyDataDir          = "data_directory"
	KeyGalleryColumns   = "gallery_columns"
	KeyAutoplayInterval = "autoplay_interval_seconds"
	KeyHistorySize      = "history_size"
)

// Default values
const (
	DefaultGalleryColumns   = 3
	DefaultAutoplayInterval = 5 * time.Second
	DefaultHistorySize      = 20

	maxGalleryColumns = 8
	maxHistorySize    = 500
)

// Settings manages application configuration
type Settings struct {
	app fyne.App
}

// NewSettings creates a new settings manager
func NewSettings(app fyne.App) *Settings {
	return &Settings{app: app}
}

// CatalogURL returns the base URL of the remote catalog.
func (s *Settings) CatalogURL() string {
	u := s.app.Preferences().StringWithFallback(KeyCatalogURL, catalog.DefaultBaseURL)
	if strings.TrimSpace(u) == "" {
		return catalog.DefaultBaseURL
	}
	return u
}

// SetCatalogURL sets the catalog base URL. An empty value restores the default.
func (s *Settings) SetCatalogURL(u string) {
	u = strings.TrimSpace(u)
	if u == "" {
		s.app.Preferences().RemoveValue(KeyCatalogURL)
		return
	}
	s.app.Preferences().SetString(KeyCatalogURL, u)
}

// DataDirectory returns where the favorites database and the gif cache live.
func (s *Settings) DataDirectory() string {
	dir := s.app.Preferences().String(KeyDataDir)
	if dir == "" {
		defaultDir, err := store.DefaultDir()
		if err != nil {
			defaultDir = "."
		}
		return defaultDir
	}
	return dir
}

// SetDataDirectory sets the data directory.
func (s *Settings) SetDataDirectory(dir string) {
	s.app.Preferences().SetString(KeyDataDir, strings.TrimSpace(dir))
}

// GalleryColumns returns the number of columns in the favorites grid.
func (s *Settings) GalleryColumns() int {
	n := s.app.Preferences().IntWithFallback(KeyGalleryColumns, DefaultGalleryColumns)
	if n < 1 || n > maxGalleryColumns {
		return DefaultGalleryColumns
	}
	return n
}

// SetGalleryColumns sets the grid column count, clamped to 1..8.
func (s *Settings) SetGalleryColumns(n int) {
	s.app.Preferences().SetInt(KeyGalleryColumns, min(max(n, 1), maxGalleryColumns))
}

// AutoplayInterval returns the delay between automatic page changes.
func (s *Settings) AutoplayInterval() time.Duration {
	secs := s.app.Preferences().FloatWithFallback(KeyAutoplayInterval, DefaultAutoplayInterval.Seconds())
	if secs <= 0 {
		return DefaultAutoplayInterval
	}
	return time.Duration(secs * float64(time.Second))
}

// SetAutoplayInterval sets the autoplay delay.
func (s *Settings) SetAutoplayInterval(d time.Duration) {
	if d <= 0 {
		d = DefaultAutoplayInterval
	}
	s.app.Preferences().SetFloat(KeyAutoplayInterval, d.Seconds())
}

// HistorySize returns how many pages the paging screen can go back.
func (s *Settings) HistorySize() int {
	n := s.app.Preferences().IntWithFallback(KeyHistorySize, DefaultHistorySize)
	if n < 0 {
		return 0
	}
	return min(n, maxHistorySize)
}

// SetHistorySize sets the history size. 0 disables going back.
func (s *Settings) SetHistorySize(n int) {
	s.app.Preferences().SetInt(KeyHistorySize, min(max(n, 0), maxHistorySize))
}
