package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// About is a small dialog naming the app and where it keeps its data.
type About struct {
	title     string
	parent    fyne.Window
	container *fyne.Container
	d         dialog.Dialog
}

func NewAbout(parent fyne.Window, title string, lines ...string) *About {
	a := &About{title: title, parent: parent}

	img := canvas.NewImageFromResource(theme.SearchIcon())
	img.FillMode = canvas.ImageFillContain
	img.SetMinSize(fyne.NewSize(96, 96))

	vbox := container.NewVBox(img)
	for _, l := range lines {
		vbox.Add(widget.NewLabel(l))
	}

	ok := container.NewHBox(
		layout.NewSpacer(),
		widget.NewButton("OK", func() { a.Hide() }),
		layout.NewSpacer(),
	)
	a.container = container.NewBorder(nil, ok, nil, nil, vbox)
	return a
}

func (a *About) Hide() {
	if a.d != nil {
		a.d.Hide()
	}
}

func (a *About) Show() {
	a.d = dialog.NewCustomWithoutButtons(a.title, a.container, a.parent)
	a.d.Show()
}

func (a *App) showAbout() {
	NewAbout(a.UI.MainWin, "About Magnify",
		"Capture, browse and zoom into your photos.",
		fmt.Sprintf("Photos: %d", a.gallery.Len()),
		fmt.Sprintf("Data: %s", a.cfg.DataDir),
	).Show()
}
