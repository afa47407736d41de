package ui

import (
	"context"
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"gifapp/internal/autoplay"
	"gifapp/internal/model"
	"gifapp/internal/pager"
)

// pagerView shows one random gif with like, share and paging buttons for a
// pager.Controller.
type pagerView struct {
	ctrl   *pager.Controller
	player *autoplay.Player
	ctx    context.Context

	image    *animatedGif
	title    *widget.Label
	meta     *widget.Label
	index    *widget.Label
	loading  *widget.ProgressBarInfinite
	likeBtn  *widget.Button
	shareBtn *widget.Button
	prevBtn  *widget.Button
	nextBtn  *widget.Button
	playBtn  *widget.Button
	content  fyne.CanvasObject
}

func newPagerView(ctx context.Context, ctrl *pager.Controller, player *autoplay.Player, logger func(string)) *pagerView {
	v := &pagerView{ctrl: ctrl, player: player, ctx: ctx}

	v.image = newAnimatedGif(logger)
	v.image.SetMinSize(fyne.NewSize(320, 240))
	v.title = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	v.title.Wrapping = fyne.TextWrapWord
	v.meta = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Italic: true})
	v.index = widget.NewLabel("")
	v.loading = widget.NewProgressBarInfinite()
	v.loading.Hide()

	v.likeBtn = widget.NewButtonWithIcon("Like", theme.ContentAddIcon(), ctrl.ToggleLike)
	v.shareBtn = widget.NewButtonWithIcon("Share", theme.MailSendIcon(), func() { ctrl.Share() })
	v.prevBtn = widget.NewButtonWithIcon("", theme.NavigateBackIcon(), func() { ctrl.Previous() })
	v.nextBtn = widget.NewButtonWithIcon("", theme.NavigateNextIcon(), func() { ctrl.Next(v.ctx) })
	v.playBtn = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), v.togglePlay)

	controls := container.NewHBox(
		v.prevBtn, v.index, layout.NewSpacer(),
		v.likeBtn, v.shareBtn, v.playBtn,
		layout.NewSpacer(), v.nextBtn,
	)
	v.content = container.NewBorder(
		v.loading,
		container.NewVBox(v.title, v.meta, widget.NewSeparator(), controls),
		nil, nil,
		v.image,
	)
	ctrl.Subscribe(v.onEvent)
	v.syncButtons()
	return v
}

func (v *pagerView) onEvent(ev pager.Event) {
	switch ev.Kind {
	case pager.CurrentChanged:
		v.showGif(ev.Gif, ev.Index)
	case pager.LikeChanged:
		v.syncLike(ev.Liked)
	case pager.LoadingChanged:
		if ev.Loading {
			v.loading.Show()
			v.loading.Start()
		} else {
			v.loading.Stop()
			v.loading.Hide()
		}
	}
	v.syncButtons()
}

func (v *pagerView) showGif(g model.Gif, index int) {
	v.image.Load(g.LocalPath)
	v.title.SetText(g.Title())
	var meta []string
	if g.Author != "" {
		meta = append(meta, "by "+g.Author)
	}
	if g.Votes != 0 {
		meta = append(meta, fmt.Sprintf("%d votes", g.Votes))
	}
	v.meta.SetText(strings.Join(meta, " · "))
	v.index.SetText(fmt.Sprintf("#%d", index+1))
}

func (v *pagerView) syncLike(liked bool) {
	if liked {
		v.likeBtn.SetText("Liked")
		v.likeBtn.SetIcon(theme.ConfirmIcon())
		v.likeBtn.Importance = widget.HighImportance
	} else {
		v.likeBtn.SetText("Like")
		v.likeBtn.SetIcon(theme.ContentAddIcon())
		v.likeBtn.Importance = widget.MediumImportance
	}
	v.likeBtn.Refresh()
}

func (v *pagerView) syncButtons() {
	_, has := v.ctrl.Current()
	setEnabled(v.likeBtn, has)
	setEnabled(v.shareBtn, has)
	setEnabled(v.prevBtn, v.ctrl.CanGoBack())
	if v.player == nil || v.player.IsPaused() {
		v.playBtn.SetIcon(theme.MediaPlayIcon())
	} else {
		v.playBtn.SetIcon(theme.MediaPauseIcon())
	}
}

func (v *pagerView) togglePlay() {
	if v.player == nil {
		return
	}
	v.player.TogglePlayPause()
	v.syncButtons()
}

func setEnabled(w fyne.Disableable, enabled bool) {
	if enabled {
		w.Enable()
	} else {
		w.Disable()
	}
}
