package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"magnify/internal/library"
	"magnify/internal/media"
)

const captureTimeLayout = "Jan 2, 2006 15:04:05"

func (a *App) buildMainUI() fyne.CanvasObject {
	a.UI.galleryView = a.buildGallery()
	a.UI.previewView = a.buildPreview()
	a.UI.content = container.NewStack(a.UI.galleryView)

	return container.NewBorder(nil, a.buildStatusBar(), nil, nil, a.UI.content)
}

func (a *App) buildStatusBar() fyne.CanvasObject {
	a.UI.statusLogLabel = widget.NewLabel("")
	a.UI.statusLogLabel.Truncation = fyne.TextTruncateEllipsis
	a.UI.logOlderBtn = widget.NewButtonWithIcon("", theme.MoveUpIcon(), func() { a.logUIManager.ShowOlder() })
	a.UI.logNewerBtn = widget.NewButtonWithIcon("", theme.MoveDownIcon(), func() { a.logUIManager.ShowNewer() })
	a.logUIManager = NewLogUIManager(a.UI.statusLogLabel, a.UI.logOlderBtn, a.UI.logNewerBtn, a.cfg.MaxLogMessages)
	a.logUIManager.refresh()

	return container.NewVBox(
		widget.NewSeparator(),
		container.NewBorder(nil, nil, nil, container.NewHBox(a.UI.logOlderBtn, a.UI.logNewerBtn), a.UI.statusLogLabel),
	)
}

func (a *App) buildGallery() fyne.CanvasObject {
	a.UI.countLabel = widget.NewLabel("")
	a.UI.emptyLabel = widget.NewLabel("No photos yet. Use + to add one.")
	a.UI.emptyLabel.Alignment = fyne.TextAlignCenter

	names := make([]string, len(media.Filters))
	for i, f := range media.Filters {
		names[i] = string(f)
	}
	a.UI.filterSelect = widget.NewSelect(names, func(s string) {
		if f, err := media.ParseFilter(s); err == nil {
			a.captureFilter = f
		}
	})
	a.UI.filterSelect.SetSelected(string(media.FilterNone))

	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.ContentAddIcon(), a.showAddDialog),
		widget.NewToolbarAction(theme.DeleteIcon(), a.removeAllCheck),
		widget.NewToolbarAction(theme.ContentClearIcon(), a.sweep),
		widget.NewToolbarSpacer(),
		widget.NewToolbarAction(theme.HelpIcon(), a.showShortcuts),
		widget.NewToolbarAction(theme.InfoIcon(), a.showAbout),
	)

	a.UI.galleryList = widget.NewList(
		func() int { return a.gallery.Len() },
		func() fyne.CanvasObject {
			return container.NewHBox(newTappableImage(theme.FileImageIcon(), nil), widget.NewLabel("template"))
		},
		func(i widget.ListItemID, obj fyne.CanvasObject) {
			if i >= a.gallery.Len() {
				return
			}
			r := a.gallery[i]
			row := obj.(*fyne.Container)
			thumb := row.Objects[0].(*tappableImage)
			label := row.Objects[1].(*widget.Label)
			id := r.ID
			thumb.Bind(a.thumbs.Get(r.ID, r.FileRef, a.UI.galleryList.Refresh), func() { a.openPreview(id) })
			label.SetText(library.CaptureTime(r).Format(captureTimeLayout))
		},
	)
	a.UI.galleryList.OnSelected = func(i widget.ListItemID) {
		a.UI.galleryList.UnselectAll()
		if i < a.gallery.Len() {
			a.openPreview(a.gallery[i].ID)
		}
	}

	header := container.NewBorder(nil, nil, nil,
		container.NewHBox(widget.NewLabel("Filter:"), a.UI.filterSelect),
		toolbar)
	return container.NewBorder(
		container.NewVBox(header, a.UI.countLabel),
		nil, nil, nil,
		container.NewStack(a.UI.galleryList, container.NewCenter(a.UI.emptyLabel)),
	)
}

func (a *App) buildPreview() fyne.CanvasObject {
	a.UI.zoomArea = NewZoomPanArea(a.carousel.Zoom())
	a.UI.zoomArea.OnSwipe = func(dir int) {
		if dir > 0 {
			a.carousel.Next()
		} else {
			a.carousel.Previous()
		}
	}
	a.UI.positionLabel = widget.NewLabel("")
	a.UI.magnificationLabel = widget.NewLabel("100%")
	a.UI.prevBtn = widget.NewButtonWithIcon("", theme.NavigateBackIcon(), a.carousel.Previous)
	a.UI.nextBtn = widget.NewButtonWithIcon("", theme.NavigateNextIcon(), a.carousel.Next)

	top := container.NewHBox(
		widget.NewButtonWithIcon("", theme.CancelIcon(), a.carousel.Close),
		a.UI.positionLabel,
		layout.NewSpacer(),
		a.UI.magnificationLabel,
		widget.NewButtonWithIcon("", theme.MailSendIcon(), a.shareActive),
		widget.NewButtonWithIcon("", theme.DeleteIcon(), a.deleteActive),
	)
	return container.NewBorder(top, nil,
		container.NewCenter(a.UI.prevBtn),
		container.NewCenter(a.UI.nextBtn),
		a.UI.zoomArea)
}

// refreshPreview follows the carousel: it swaps screens, loads the active
// photo from the window and updates the chevrons.
func (a *App) refreshPreview() {
	if a.UI.content == nil {
		return
	}
	a.showScreen()
	active, ok := a.carousel.Active()
	if !ok {
		return
	}
	if active.ID != a.shownID {
		img, _ := a.carousel.Window().Image(active.ID)
		a.UI.zoomArea.SetImage(img)
		a.shownID = active.ID
		a.UI.MainWin.SetTitle(fmt.Sprintf("Magnify - %s", library.CaptureTime(active).Format(captureTimeLayout)))
	}
	a.UI.positionLabel.SetText(a.carousel.Position())

	cursor, _ := a.carousel.Cursor()
	setEnabled(a.UI.prevBtn, cursor > 0)
	setEnabled(a.UI.nextBtn, cursor < a.carousel.Library().Len()-1)
	a.refreshMagnification()
}

// showLoadedImage swaps in a photo decoded in the background if it is still
// the one on screen.
func (a *App) showLoadedImage(id string) {
	if a.UI.zoomArea == nil {
		return
	}
	active, ok := a.carousel.Active()
	if !ok || active.ID != id {
		return
	}
	if img, ok := a.carousel.Window().Image(id); ok {
		a.UI.zoomArea.SetImage(img)
	}
}

func (a *App) refreshMagnification() {
	if a.UI.magnificationLabel == nil {
		return
	}
	state := a.carousel.Zoom().State()
	a.UI.magnificationLabel.SetText(fmt.Sprintf("%d%%", state.Magnification()))
	if !state.Zoomed() {
		a.UI.zoomArea.ResetPan()
	}
	a.UI.zoomArea.Refresh()
}
