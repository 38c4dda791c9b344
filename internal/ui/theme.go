package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// magnifyTheme wraps the platform theme with tighter padding and larger
// icons so the preview chevrons are easy to hit.
type magnifyTheme struct {
	fyne.Theme
}

var _ fyne.Theme = (*magnifyTheme)(nil)

func (t *magnifyTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 2
	case theme.SizeNameInlineIcon:
		return 24
	}
	return t.Theme.Size(name)
}

func (t *magnifyTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	return t.Theme.Color(name, variant)
}

func (t *magnifyTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.Theme.Font(style)
}

func (t *magnifyTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.Theme.Icon(name)
}

// NewMagnifyTheme wraps base.
func NewMagnifyTheme(base fyne.Theme) fyne.Theme {
	return &magnifyTheme{Theme: base}
}
