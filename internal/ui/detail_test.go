package ui

import (
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gifapp/internal/gallery"
	"gifapp/internal/media"
	"gifapp/internal/model"
)

// countingStore counts gallery reloads.
type countingStore struct {
	memoryStore
	loads int
}

func (s *countingStore) Favorites() ([]model.Gif, error) {
	s.loads++
	return s.memoryStore.Favorites()
}

func newDetailTestApp(t *testing.T) (*App, *countingStore) {
	t.Helper()
	test.NewApp()
	w := test.NewWindow(nil)
	t.Cleanup(w.Close)
	w.Resize(fyne.NewSize(800, 600))

	st := &countingStore{memoryStore: memoryStore{gifs: []model.Gif{{ID: "1", Description: "one"}}}}
	a := &App{
		win:     w,
		thumbs:  NewThumbnailManager(nil),
		gallery: gallery.New(st, inlineExecutor{}, nil),
	}
	return a, st
}

func TestEscapeClosesDetailThroughDialog(t *testing.T) {
	a, st := newDetailTestApp(t)

	a.showDetail(model.Gif{ID: "1", Description: "one"})
	require.NotNil(t, a.detail)
	require.NotNil(t, a.win.Canvas().Overlays().Top())

	a.handleTypedKey(&fyne.KeyEvent{Name: fyne.KeyEscape})

	assert.Nil(t, a.detail)
	assert.Nil(t, a.win.Canvas().Overlays().Top())
	assert.Equal(t, 1, st.loads, "closing the detail reloads the gallery")
}

func TestEscapeWithoutDialogCancelsSelection(t *testing.T) {
	a, _ := newDetailTestApp(t)
	a.gallery.Refresh()
	a.gallery.LongPress("1")
	require.Equal(t, gallery.Expanded, a.gallery.Sheet())

	a.handleTypedKey(&fyne.KeyEvent{Name: fyne.KeyEscape})

	assert.Equal(t, gallery.Hidden, a.gallery.Sheet())
	assert.Zero(t, a.gallery.SelectedCount())
}

func TestDescribeInfo(t *testing.T) {
	tests := []struct {
		name     string
		info     media.ImageInfo
		expected string
	}{
		{"still", media.ImageInfo{Width: 10, Height: 20, Frames: 1, Size: 512}, "10x20 | 512 B"},
		{"animated", media.ImageInfo{Width: 320, Height: 240, Frames: 12, Duration: 1500 * time.Millisecond, Size: 2048}, "320x240 | 12 frames, 1.5s | 2.0 KB"},
		{"exif", media.ImageInfo{Width: 1, Height: 1, Frames: 1, Size: 3 << 20, EXIFData: map[string]string{"DateTime": `"2020:01:02 03:04:05"`}}, "1x1 | 3.0 MB | taken 2020:01:02 03:04:05"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, describeInfo(&test.info))
		})
	}
}
