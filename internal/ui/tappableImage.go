package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// galleryCell is one favorites grid tile: a thumbnail with a check mark
// overlay. A tap and a secondary tap (right click, or long press on mobile)
// are reported separately.
type galleryCell struct {
	widget.BaseWidget
	image       *canvas.Image
	check       *widget.Icon
	id          string
	onTapped    func(id string)
	onSecondary func(id string)
}

func newGalleryCell(onTapped, onSecondary func(id string)) *galleryCell {
	c := &galleryCell{
		image:       canvas.NewImageFromResource(theme.FileImageIcon()),
		check:       widget.NewIcon(theme.CheckButtonCheckedIcon()),
		onTapped:    onTapped,
		onSecondary: onSecondary,
	}
	c.image.FillMode = canvas.ImageFillContain
	c.image.SetMinSize(fyne.NewSize(ThumbnailWidth, ThumbnailHeight))
	c.check.Hide()
	c.ExtendBaseWidget(c)
	return c
}

func (c *galleryCell) CreateRenderer() fyne.WidgetRenderer {
	corner := container.NewVBox(container.NewHBox(c.check))
	return widget.NewSimpleRenderer(container.NewStack(c.image, corner))
}

func (c *galleryCell) Tapped(_ *fyne.PointEvent) {
	if c.onTapped != nil && c.id != "" {
		c.onTapped(c.id)
	}
}

func (c *galleryCell) TappedSecondary(_ *fyne.PointEvent) {
	if c.onSecondary != nil && c.id != "" {
		c.onSecondary(c.id)
	}
}

// bind points the cell at a new item.
func (c *galleryCell) bind(id string, res fyne.Resource, selected bool) {
	c.id = id
	c.SetResource(res)
	c.SetSelected(selected)
}

// SetResource updates the image resource and refreshes.
func (c *galleryCell) SetResource(res fyne.Resource) {
	c.image.Resource = res
	c.image.Image = nil
	canvas.Refresh(c.image)
}

// SetMinSize sets the minimum size of the tile.
func (c *galleryCell) SetMinSize(size fyne.Size) {
	c.image.SetMinSize(size)
}

// SetSelected shows or hides the check mark.
func (c *galleryCell) SetSelected(selected bool) {
	if selected {
		c.check.Show()
	} else {
		c.check.Hide()
	}
}
