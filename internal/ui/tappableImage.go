package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

// tappableImage shows a gallery thumbnail and opens the photo when tapped.
type tappableImage struct {
	widget.BaseWidget
	image    *canvas.Image
	onTapped func()
}

func newTappableImage(res fyne.Resource, onTapped func()) *tappableImage {
	ti := &tappableImage{
		image:    canvas.NewImageFromResource(res),
		onTapped: onTapped,
	}
	ti.image.FillMode = canvas.ImageFillContain
	ti.image.SetMinSize(fyne.NewSize(ThumbnailWidth, ThumbnailHeight))
	ti.ExtendBaseWidget(ti)
	return ti
}

func (t *tappableImage) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(t.image)
}

func (t *tappableImage) Tapped(_ *fyne.PointEvent) {
	if t.onTapped != nil {
		t.onTapped()
	}
}

// Bind swaps the thumbnail and tap target when a list row is reused.
func (t *tappableImage) Bind(res fyne.Resource, onTapped func()) {
	t.onTapped = onTapped
	if t.image.Resource != res {
		t.image.Resource = res
		canvas.Refresh(t.image)
	}
}
