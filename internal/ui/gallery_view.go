package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"gifapp/internal/gallery"
	"gifapp/internal/model"
)

// galleryView renders the favorites grid and the slide-up action sheet for
// a gallery.Controller.
type galleryView struct {
	ctrl   *gallery.Controller
	win    fyne.Window
	thumbs *ThumbnailManager

	grid       *widget.GridWrap
	empty      *widget.Label
	sheet      *fyne.Container
	countLabel *widget.Label
	selectAll  *widget.Check
	deleteBtn  *widget.Button
	cancelBtn  *widget.Button
	content    fyne.CanvasObject

	syncingCheck bool
	items        []model.Gif

	// confirm asks before a destructive action; tests replace it.
	confirm    func(title, message string, onOK func())
	openDetail func(model.Gif)
}

func newGalleryView(ctrl *gallery.Controller, win fyne.Window, thumbs *ThumbnailManager, cellSize float32, openDetail func(model.Gif)) *galleryView {
	v := &galleryView{ctrl: ctrl, win: win, thumbs: thumbs, openDetail: openDetail}
	v.confirm = func(title, message string, onOK func()) {
		dialog.ShowConfirm(title, message, func(ok bool) {
			if ok {
				onOK()
			}
		}, v.win)
	}

	v.grid = widget.NewGridWrap(
		func() int { return len(v.items) },
		func() fyne.CanvasObject {
			cell := newGalleryCell(ctrl.Tap, ctrl.LongPress)
			cell.SetMinSize(fyne.NewSize(cellSize, cellSize))
			return cell
		},
		v.updateCell,
	)
	v.empty = widget.NewLabelWithStyle("No favorites yet. Like a gif to keep it here.", fyne.TextAlignCenter, fyne.TextStyle{Italic: true})

	v.countLabel = widget.NewLabel("")
	v.selectAll = widget.NewCheck("Select all", func(checked bool) {
		if v.syncingCheck {
			return
		}
		v.ctrl.SetSelectAll(checked)
	})
	v.deleteBtn = widget.NewButtonWithIcon("Delete", theme.DeleteIcon(), v.confirmDelete)
	v.deleteBtn.Importance = widget.DangerImportance
	v.cancelBtn = widget.NewButtonWithIcon("Cancel", theme.CancelIcon(), ctrl.Cancel)
	v.sheet = container.NewVBox(
		widget.NewSeparator(),
		container.NewHBox(v.selectAll, v.countLabel, layout.NewSpacer(), v.cancelBtn, v.deleteBtn),
	)
	v.sheet.Hide()

	v.content = container.NewBorder(nil, v.sheet, nil, nil, container.NewStack(v.grid, container.NewCenter(v.empty)))
	ctrl.Subscribe(v.onEvent)
	v.syncItems()
	v.syncSelection()
	return v
}

func (v *galleryView) updateCell(id widget.GridWrapItemID, obj fyne.CanvasObject) {
	if id < 0 || id >= len(v.items) {
		return
	}
	cell := obj.(*galleryCell)
	g := v.items[id]
	res := v.thumbs.GetThumbnail(g.LocalPath, func(res fyne.Resource) {
		if cell.id == g.ID {
			cell.SetResource(res)
		}
	})
	cell.bind(g.ID, res, v.ctrl.IsSelected(g.ID))
}

func (v *galleryView) onEvent(ev gallery.Event) {
	switch ev.Kind {
	case gallery.ItemsChanged:
		v.syncItems()
	case gallery.SheetChanged:
		if ev.Sheet == gallery.Expanded {
			v.sheet.Show()
		} else {
			v.sheet.Hide()
		}
		v.syncSelection()
	case gallery.SelectionChanged:
		v.syncSelection()
	case gallery.OpenDetail:
		if v.openDetail != nil {
			v.openDetail(ev.Gif)
		}
	case gallery.Error:
		dialog.ShowError(ev.Err, v.win)
	}
}

func (v *galleryView) syncItems() {
	v.items = v.ctrl.Items()
	if len(v.items) == 0 {
		v.empty.Show()
	} else {
		v.empty.Hide()
	}
	v.grid.Refresh()
}

func (v *galleryView) syncSelection() {
	n := v.ctrl.SelectedCount()
	v.countLabel.SetText(fmt.Sprintf("Selected: %d", n))
	if n == 0 {
		v.deleteBtn.Disable()
	} else {
		v.deleteBtn.Enable()
	}
	if v.selectAll.Checked != v.ctrl.SelectAllChecked() {
		v.syncingCheck = true
		v.selectAll.SetChecked(v.ctrl.SelectAllChecked())
		v.syncingCheck = false
	}
	v.grid.Refresh()
}

func (v *galleryView) confirmDelete() {
	n := v.ctrl.SelectedCount()
	if n == 0 {
		return
	}
	v.confirm("Delete favorites", fmt.Sprintf("Delete %d selected gif(s)?\nThis can't be undone.", n), v.ctrl.DeleteSelected)
}
