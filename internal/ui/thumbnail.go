package ui

import (
	"fmt"
	"path/filepath"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"gifapp/internal/media"
)

const (
	// ThumbnailWidth is the width of the thumbnails in the gallery.
	ThumbnailWidth = 120
	// ThumbnailHeight is the height of the thumbnails in the gallery.
	ThumbnailHeight = 120
)

// ThumbnailManager handles generation and caching of gif thumbnails.
type ThumbnailManager struct {
	cache      map[string]fyne.Resource
	inFlight   map[string]bool
	cacheMutex sync.RWMutex
	logger     func(string)
}

// NewThumbnailManager creates a new thumbnail manager.
func NewThumbnailManager(logger func(string)) *ThumbnailManager {
	return &ThumbnailManager{
		cache:    make(map[string]fyne.Resource),
		inFlight: make(map[string]bool),
		logger:   logger,
	}
}

// GetThumbnail returns the cached thumbnail for path, or a placeholder while
// one is generated in the background; onComplete then receives it on the UI
// thread. Files that are not on disk get the placeholder and no callback.
func (tm *ThumbnailManager) GetThumbnail(path string, onComplete func(fyne.Resource)) fyne.Resource {
	if !media.FileExists(path) {
		return theme.BrokenImageIcon()
	}

	tm.cacheMutex.Lock()
	if res, ok := tm.cache[path]; ok {
		tm.cacheMutex.Unlock()
		return res
	}
	busy := tm.inFlight[path]
	tm.inFlight[path] = true
	tm.cacheMutex.Unlock()
	if busy {
		return theme.FileImageIcon()
	}

	go func() {
		data, err := media.Thumbnail(path, ThumbnailWidth, ThumbnailHeight)

		tm.cacheMutex.Lock()
		delete(tm.inFlight, path)
		var res fyne.Resource
		if err == nil {
			res = fyne.NewStaticResource("thumb-"+filepath.Base(path)+".png", data)
			tm.cache[path] = res
		}
		tm.cacheMutex.Unlock()

		fyne.Do(func() {
			if err != nil {
				if tm.logger != nil {
					tm.logger(fmt.Sprintf("Thumbnail error for %s: %v", filepath.Base(path), err))
				}
				return
			}
			if onComplete != nil {
				onComplete(res)
			}
		})
	}()

	return theme.FileImageIcon()
}

// Forget drops the cached thumbnail for path.
func (tm *ThumbnailManager) Forget(path string) {
	tm.cacheMutex.Lock()
	delete(tm.cache, path)
	tm.cacheMutex.Unlock()
}
