package ui

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"gifapp/internal/media"
	"gifapp/internal/model"
	"gifapp/internal/share"
)

// showDetail opens a single favorite over the main window. Closing it tells
// the gallery to reload, since Remove may have changed the list.
func (a *App) showDetail(g model.Gif) {
	img := newAnimatedGif(a.addLogMessage)
	img.SetMinSize(fyne.NewSize(400, 300))
	img.Load(g.LocalPath)

	caption := widget.NewLabel(g.Title())
	caption.Wrapping = fyne.TextWrapWord
	details := widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Italic: true})
	if media.FileExists(g.LocalPath) {
		go func() {
			info, _, err := media.Info(g.LocalPath)
			if err != nil {
				a.addLogMessage(fmt.Sprintf("Info error for %s: %v", g.ID, err))
				return
			}
			fyne.Do(func() { details.SetText(describeInfo(info)) })
		}()
	}

	var d dialog.Dialog
	shareBtn := widget.NewButtonWithIcon("Share", theme.MailSendIcon(), func() {
		req, ok := share.Compose(g)
		if !ok {
			return
		}
		if err := a.sender.Send(req); err != nil {
			a.addLogMessage("Share failed: " + err.Error())
		}
	})
	removeBtn := widget.NewButtonWithIcon("Remove", theme.DeleteIcon(), func() {
		dialog.ShowConfirm("Remove favorite", "Remove this gif from favorites?", func(ok bool) {
			if !ok {
				return
			}
			a.gallery.Remove(g.ID)
			a.thumbs.Forget(g.LocalPath)
			d.Hide()
		}, a.win)
	})
	removeBtn.Importance = widget.DangerImportance
	closeBtn := widget.NewButtonWithIcon("Close", theme.CancelIcon(), func() { d.Hide() })

	buttons := container.NewHBox(shareBtn, removeBtn, layout.NewSpacer(), closeBtn)
	d = dialog.NewCustomWithoutButtons(g.Title(), container.NewBorder(nil, container.NewVBox(caption, details, buttons), nil, nil, img), a.win)
	d.SetOnClosed(func() {
		if a.detail == d {
			a.detail = nil
		}
		img.Stop()
		a.gallery.DetailClosed()
	})
	size := a.win.Canvas().Size()
	d.Resize(fyne.NewSize(size.Width*0.9, size.Height*0.9))
	a.detail = d
	d.Show()
}

// describeInfo formats file metadata for the detail dialog.
func describeInfo(info *media.ImageInfo) string {
	parts := []string{fmt.Sprintf("%dx%d", info.Width, info.Height)}
	if info.Frames > 1 {
		parts = append(parts, fmt.Sprintf("%d frames, %.1fs", info.Frames, info.Duration.Seconds()))
	}
	parts = append(parts, humanSize(info.Size))
	if dt, ok := info.EXIFData["DateTime"]; ok {
		parts = append(parts, "taken "+strings.Trim(dt, `"`))
	}
	return strings.Join(parts, " | ")
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
