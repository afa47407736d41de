package ui

import (
	"context"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"gifapp/internal/media"
)

// animatedGif plays a local gif file by swapping frames on a canvas.Image.
type animatedGif struct {
	widget.BaseWidget
	image  *canvas.Image
	logger func(string)

	mu     sync.Mutex
	path   string
	cancel context.CancelFunc
}

func newAnimatedGif(logger func(string)) *animatedGif {
	a := &animatedGif{
		image:  canvas.NewImageFromResource(theme.FileImageIcon()),
		logger: logger,
	}
	a.image.FillMode = canvas.ImageFillContain
	a.image.ScaleMode = canvas.ImageScaleFastest
	a.ExtendBaseWidget(a)
	return a
}

func (a *animatedGif) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(a.image)
}

// SetMinSize sets the minimum size of the image.
func (a *animatedGif) SetMinSize(size fyne.Size) {
	a.image.SetMinSize(size)
}

// Load starts playing the file at path, replacing whatever was playing.
// A missing file shows the broken image icon.
func (a *animatedGif) Load(path string) {
	a.mu.Lock()
	if a.path == path && a.cancel != nil {
		a.mu.Unlock()
		return
	}
	if a.cancel != nil {
		a.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.path = path
	a.cancel = cancel
	a.mu.Unlock()

	if !media.FileExists(path) {
		a.showResource(theme.BrokenImageIcon())
		return
	}
	a.showResource(theme.FileImageIcon())
	go a.play(ctx, path)
}

// Stop halts playback.
func (a *animatedGif) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.path = ""
}

func (a *animatedGif) showResource(res fyne.Resource) {
	a.image.Image = nil
	a.image.Resource = res
	a.image.Refresh()
}

func (a *animatedGif) play(ctx context.Context, path string) {
	anim, err := media.DecodeAnimation(path)
	if err != nil {
		fyne.Do(func() {
			if ctx.Err() != nil {
				return
			}
			if a.logger != nil {
				a.logger(err.Error())
			}
			a.showResource(theme.BrokenImageIcon())
		})
		return
	}

	for i := 0; ; i = (i + 1) % len(anim.Frames) {
		frame := anim.Frames[i]
		fyne.Do(func() {
			if ctx.Err() != nil {
				return
			}
			a.image.Resource = nil
			a.image.Image = frame
			a.image.Refresh()
		})
		if len(anim.Frames) == 1 {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(anim.Delays[i]):
		}
	}
}
