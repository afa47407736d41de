package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// shortcutHelp pairs each key with what it does, in the order shown.
var shortcutHelp = [][2]string{
	{"Ctrl+Q", "Quit application"},
	{"Arrow Right or N", "Next random gif"},
	{"Arrow Left or B", "Previous gif"},
	{"L", "Like / unlike"},
	{"S", "Share"},
	{"P or Space", "Play / pause autoplay"},
	{"Ctrl+A", "Select all favorites"},
	{"Delete", "Delete selected favorites"},
	{"Esc", "Cancel selection or close dialog"},
}

func (a *App) buildKeyboardShortcuts() {
	canvas := a.win.Canvas()
	canvas.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyQ, Modifier: a.mainModKey},
		func(_ fyne.Shortcut) { a.app.Quit() })
	canvas.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyA, Modifier: a.mainModKey},
		func(_ fyne.Shortcut) {
			if a.onGalleryTab() {
				a.gallery.SetSelectAll(true)
			}
		})

	canvas.SetOnTypedKey(a.handleTypedKey)
}

func (a *App) handleTypedKey(key *fyne.KeyEvent) {
	if key.Name == fyne.KeyEscape {
		overlays := a.win.Canvas().Overlays()
		// The detail dialog goes through dialog.Hide so its close
		// callback runs. Anything stacked above it is closed first.
		if a.detail != nil && len(overlays.List()) <= 1 {
			a.detail.Hide()
			return
		}
		if top := overlays.Top(); top != nil {
			top.Hide()
			return
		}
		a.gallery.Cancel()
		return
	}
	if a.onGalleryTab() {
		if key.Name == fyne.KeyDelete {
			a.galleryView.confirmDelete()
		}
		return
	}
	switch key.Name {
	case fyne.KeyRight, fyne.KeyN:
		a.pager.Next(a.ctx)
	case fyne.KeyLeft, fyne.KeyB:
		a.pager.Previous()
	case fyne.KeyL:
		a.pager.ToggleLike()
	case fyne.KeyS:
		a.pager.Share()
	case fyne.KeyP, fyne.KeySpace:
		a.pagerView.togglePlay()
	}
}

func (a *App) showShortcuts() {
	win := a.app.NewWindow("Keyboard Shortcuts")
	table := widget.NewTable(
		func() (int, int) { return len(shortcutHelp) + 1, 2 }, // +1 for header row
		func() fyne.CanvasObject {
			return widget.NewLabel("")
		},
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			label := obj.(*widget.Label)
			isHeader := id.Row == 0
			label.TextStyle.Bold = isHeader
			switch {
			case isHeader && id.Col == 0:
				label.SetText("Description")
			case isHeader:
				label.SetText("Shortcut")
			case id.Col == 0:
				label.SetText(shortcutHelp[id.Row-1][1])
			default:
				label.SetText(shortcutHelp[id.Row-1][0])
			}
		},
	)
	table.SetColumnWidth(0, 250)
	table.SetColumnWidth(1, 200)
	win.SetContent(table)
	win.Resize(fyne.NewSize(460, 360))
	win.Show()
}
