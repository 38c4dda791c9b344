// Package ui is the desktop shell of Magnify: a gallery of captured photos and
// a full-window preview with swipe navigation and pinch zoom.
package ui

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"magnify/internal/config"
	"magnify/internal/library"
	"magnify/internal/media"
	"magnify/internal/preview"
	"magnify/internal/zoom"
)

const AppID = "com.github.magnify"

// App holds the application state shared by the gallery and preview screens.
type App struct {
	app fyne.App
	UI  UI

	cfg         config.Config
	manager     *library.Manager
	closeIndex  func() error
	images      *media.ImageService
	pipeline    *media.Pipeline
	carousel    *preview.Carousel
	coordinator *preview.Coordinator
	thumbs      *ThumbnailManager
	confirmFn   preview.ConfirmFunc

	gallery       library.Library
	captureFilter media.Filter
	shownID       string

	logUIManager *LogUIManager
}

// UI holds the widgets the App updates after state changes.
type UI struct {
	MainWin    fyne.Window
	mainModKey fyne.KeyModifier

	content     *fyne.Container
	galleryView fyne.CanvasObject
	previewView fyne.CanvasObject

	galleryList  *widget.List
	countLabel   *widget.Label
	emptyLabel   *widget.Label
	filterSelect *widget.Select

	zoomArea           *ZoomPanArea
	positionLabel      *widget.Label
	magnificationLabel *widget.Label
	prevBtn            *widget.Button
	nextBtn            *widget.Button

	statusLogLabel *widget.Label
	logOlderBtn    *widget.Button
	logNewerBtn    *widget.Button
}

// addLogMessage records a status message. Safe to call from any goroutine.
func (a *App) addLogMessage(message string) {
	fyne.Do(func() {
		if a.logUIManager != nil {
			a.logUIManager.AddLogMessage(message)
		} else {
			log.Printf("EarlyLog: %s", message)
		}
	})
}

// showNotice presents a dismissible message and logs it.
func (a *App) showNotice(message string) {
	a.addLogMessage(message)
	fyne.Do(func() {
		dialog.ShowInformation(config.AppName, message, a.UI.MainWin)
	})
}

// confirm adapts dialog.ShowConfirm to preview.Confirmer.
func (a *App) confirm(title, message string, callback func(bool)) {
	dialog.ShowConfirm(title, message, callback, a.UI.MainWin)
}

// refreshGallery re-reads the manager's catalog into the list.
func (a *App) refreshGallery() {
	a.gallery = a.manager.Snapshot()
	a.thumbs.Retain(a.gallery.IDs())
	a.carousel.Sync(a.gallery)
	if a.UI.galleryList == nil {
		return
	}
	a.UI.countLabel.SetText(fmt.Sprintf("%d photos", a.gallery.Len()))
	if a.gallery.Len() == 0 {
		a.UI.emptyLabel.Show()
	} else {
		a.UI.emptyLabel.Hide()
	}
	a.UI.galleryList.Refresh()
}

// showScreen swaps between the gallery and the preview.
func (a *App) showScreen() {
	if a.carousel.IsOpen() {
		a.UI.content.Objects = []fyne.CanvasObject{a.UI.previewView}
	} else {
		a.UI.content.Objects = []fyne.CanvasObject{a.UI.galleryView}
		a.shownID = ""
		a.UI.MainWin.SetTitle("Magnify")
	}
	a.UI.content.Refresh()
}

func (a *App) openPreview(id string) {
	if err := a.coordinator.OpenPhoto(id); err != nil {
		a.addLogMessage(fmt.Sprintf("Photo %s is no longer available", id))
		a.refreshGallery()
	}
}

// addPhoto runs the capture pipeline for src off the UI goroutine.
func (a *App) addPhoto(src string) {
	filter := a.captureFilter
	go func() {
		var timestamp int64
		if t, ok := a.images.CaptureTime(src); ok {
			timestamp = t.UnixMilli()
		}
		input := src
		if filter != media.FilterNone && filter != "" {
			filtered, err := a.pipeline.Apply(src, filter)
			if err != nil {
				a.showNotice(fmt.Sprintf("Could not apply the %s filter: %v", filter, err))
				return
			}
			input = filtered
			defer os.Remove(filtered)
		}
		record, err := a.manager.Add(input, timestamp)
		fyne.Do(func() {
			if err != nil {
				a.showNotice(fmt.Sprintf("The photo could not be saved: %v", err))
				return
			}
			a.addLogMessage(fmt.Sprintf("Saved %s", record.ID))
			a.refreshGallery()
		})
	}()
}

func (a *App) showAddDialog() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.UI.MainWin)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		a.addPhoto(path)
	}, a.UI.MainWin)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".jpg", ".jpeg", ".JPG", ".JPEG"}))
	d.Show()
}

func (a *App) removeAllCheck() {
	if a.gallery.Len() == 0 {
		return
	}
	msg := fmt.Sprintf("Delete all %d photos?\nThis action can't be undone.", a.gallery.Len())
	dialog.ShowConfirm("Delete All Photos", msg, func(yes bool) {
		if !yes {
			return
		}
		go func() {
			result, err := a.manager.RemoveAll()
			fyne.Do(func() {
				a.refreshGallery()
				a.showScreen()
				switch {
				case err != nil:
					a.showNotice(fmt.Sprintf("The library could not be cleared: %v", err))
				case result.Warning() != nil:
					a.showNotice(fmt.Sprintf("Library cleared, but %d files could not be deleted.", len(result.Failures)))
				default:
					a.addLogMessage(fmt.Sprintf("Deleted %d photos", result.Records))
				}
			})
		}()
	}, a.UI.MainWin)
}

// sweep looks for unreferenced photo files without touching them and asks
// before deleting what it found.
func (a *App) sweep() {
	go func() {
		result, err := a.manager.Sweep(true)
		fyne.Do(func() { a.confirmSweep(result, err) })
	}()
}

func (a *App) confirmSweep(result library.SweepResult, err error) {
	if err != nil {
		a.showNotice(fmt.Sprintf("Cleanup failed: %v", err))
		return
	}
	if len(result.OrphanFiles) == 0 {
		a.addLogMessage("Cleanup: no unreferenced photo files")
		return
	}
	confirm := a.confirmFn
	if confirm == nil {
		confirm = a.confirm
	}
	msg := fmt.Sprintf("Delete %d photo files that are not in the library?\nThis action can't be undone.", len(result.OrphanFiles))
	confirm("Clean Up Photo Files", msg, func(yes bool) {
		if !yes {
			a.addLogMessage("Cleanup cancelled")
			return
		}
		go a.applySweep()
	})
}

func (a *App) applySweep() {
	result, err := a.manager.Sweep(false)
	if err != nil {
		a.showNotice(fmt.Sprintf("Cleanup failed: %v", err))
		return
	}
	a.addLogMessage(fmt.Sprintf("Cleanup removed %d of %d unreferenced files", result.Deleted, len(result.OrphanFiles)))
}

func (a *App) deleteActive() {
	if !a.carousel.IsOpen() {
		return
	}
	a.coordinator.DeleteActive(func(res preview.DeleteResult, err error) {
		switch {
		case err != nil && !errors.Is(err, preview.ErrNotOpen):
			a.addLogMessage(fmt.Sprintf("Delete failed: %v", err))
		case res.RemovedID != "" && !res.Cancelled:
			a.addLogMessage(fmt.Sprintf("Deleted %s", res.RemovedID))
		}
		a.refreshGallery()
		a.showScreen()
	})
}

// clipboardSharer hands the share payload to the system clipboard.
type clipboardSharer struct{ win fyne.Window }

func (s clipboardSharer) Share(p media.SharePayload) error {
	s.win.Clipboard().SetContent(p.URL)
	return nil
}

func (a *App) shareActive() {
	active, ok := a.carousel.Active()
	if !ok {
		return
	}
	if err := media.Share(clipboardSharer{win: a.UI.MainWin}, active.FileRef); err != nil {
		dialog.ShowError(err, a.UI.MainWin)
		return
	}
	a.addLogMessage(fmt.Sprintf("Copied %s to the clipboard", active.ID))
}

// CreateApplication is the GUI entrypoint. dataDir overrides the configured
// data directory when non-empty.
func CreateApplication(dataDir string) {
	cfg, err := config.LoadConfig(dataDir)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	a := app.NewWithID(AppID)
	a.Settings().SetTheme(NewMagnifyTheme(a.Settings().Theme()))

	ui := &App{app: a, cfg: cfg, captureFilter: media.FilterNone}

	appLoggerFunc := func(message string) {
		ui.addLogMessage(message)
	}

	ui.manager, ui.closeIndex, err = library.Open(cfg, appLoggerFunc)
	if err != nil {
		log.Fatalf("Failed to open photo library: %v", err)
	}
	ui.images = media.NewImageService()
	ui.pipeline, err = media.NewPipeline(filepath.Join(cfg.DataDir, "scratch"))
	if err != nil {
		log.Fatalf("Failed to prepare capture filters: %v", err)
	}
	ui.thumbs = NewThumbnailManager(ui.images, appLoggerFunc)

	window := preview.NewWindow(ui.images, cfg.WindowRadius, appLoggerFunc)
	window.DecodeInBackground(func(id string) {
		fyne.Do(func() { ui.showLoadedImage(id) })
	})
	ui.carousel = preview.NewCarousel(zoom.NewController(), window)
	ui.confirmFn = ui.confirm
	ui.coordinator = preview.NewCoordinator(ui.manager, ui.carousel, ui.confirmFn, appLoggerFunc)
	ui.coordinator.Notify = ui.showNotice

	ui.UI.MainWin = a.NewWindow("Magnify")
	ui.UI.MainWin.SetIcon(theme.SearchIcon())
	ui.UI.MainWin.SetCloseIntercept(func() {
		log.Println("Closing photo index...")
		if err := ui.closeIndex(); err != nil {
			log.Printf("Error closing photo index: %v", err)
		}
		ui.UI.MainWin.Close()
	})

	ui.UI.MainWin.SetContent(ui.buildMainUI())
	ui.buildKeyboardShortcuts()

	ui.carousel.OnChange = ui.refreshPreview
	ui.carousel.Zoom().OnChange = func(zoom.State) { ui.refreshMagnification() }

	ui.gallery = ui.coordinator.LoadLibrary()
	ui.refreshGallery()
	ui.showScreen()

	ui.UI.MainWin.Resize(fyne.NewSize(900, 700))
	ui.UI.MainWin.CenterOnScreen()
	ui.UI.MainWin.ShowAndRun()
}
