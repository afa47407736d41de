package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// compactTheme wraps an existing theme and tightens padding so the
// favorites grid fits more cells.
type compactTheme struct {
	fyne.Theme
}

var _ fyne.Theme = (*compactTheme)(nil)

// Size overrides padding and leaves every other size to the base theme.
func (t *compactTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 2
	case theme.SizeNameInnerPadding:
		return 4
	}
	return t.Theme.Size(name)
}

// NewCompactTheme creates a theme wrapper with reduced padding on top of
// baseTheme.
func NewCompactTheme(baseTheme fyne.Theme) fyne.Theme {
	if baseTheme == nil {
		baseTheme = theme.DefaultTheme()
	}
	return &compactTheme{Theme: baseTheme}
}
