// Package scan walks a directory tree for cached gif files.
package scan

import (
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"strings"

	"github.com/charlievieth/fastwalk"
)

// LoggerFunc receives non-fatal walk errors.
type LoggerFunc func(message string)

// FileItem is one gif found on disk.
type FileItem struct {
	Path string
	Info fs.FileInfo
}

// FileItems is a slice of FileItem
type FileItems []FileItem

// NewFileItem creates a new FileItem
func NewFileItem(p string, info fs.FileInfo) FileItem {
	return FileItem{Path: p, Info: info}
}

// Paths returns the path of every item.
func (items FileItems) Paths() []string {
	paths := make([]string, len(items))
	for i, it := range items {
		paths[i] = it.Path
	}
	return paths
}

// Run walks dir and streams every non-empty gif file on the returned
// channel, which is closed when the walk ends. Paths are absolute.
// Hidden entries (temporary downloads among them) are skipped.
func Run(dir string, logger LoggerFunc) <-chan FileItem {
	logf := func(format string, args ...interface{}) {
		if logger != nil {
			logger(fmt.Sprintf(format, args...))
		} else {
			log.Printf(format, args...)
		}
	}

	out := make(chan FileItem, 64)
	go func() {
		defer close(out)
		root, err := filepath.Abs(dir)
		if err != nil {
			logf("cannot resolve %s: %v", dir, err)
			return
		}
		conf := &fastwalk.Config{Follow: false}
		err = fastwalk.Walk(conf, root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logf("walk error at %s: %v", path, err)
				return nil
			}
			if path == root {
				return nil
			}
			if strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return fastwalk.SkipDir
				}
				return nil
			}
			if d.IsDir() || !IsGif(path) {
				return nil
			}
			info, err := fastwalk.StatDirEntry(path, d)
			if err != nil {
				logf("skipping %s: %v", path, err)
				return nil
			}
			if info.Mode().IsRegular() && info.Size() > 0 {
				out <- NewFileItem(path, info)
			}
			return nil
		})
		if err != nil {
			logf("walking %s: %v", root, err)
		}
	}()
	return out
}

// Collect drains Run into a slice.
func Collect(dir string, logger LoggerFunc) FileItems {
	var items FileItems
	for it := range Run(dir, logger) {
		items = append(items, it)
	}
	return items
}

// IsGif reports whether n has a .gif extension, ignoring case.
func IsGif(n string) bool {
	return strings.EqualFold(filepath.Ext(n), ".gif")
}

// Walker satisfies scanner interfaces with Run.
type Walker struct{}

// Run calls the package level Run.
func (Walker) Run(dir string, logger LoggerFunc) <-chan FileItem {
	return Run(dir, logger)
}
