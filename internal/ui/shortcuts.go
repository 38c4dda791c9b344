package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

func ternary(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}

func (a *App) buildKeyboardShortcuts() {
	a.UI.mainModKey = desktop.ControlModifier

	a.UI.MainWin.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyne.KeyQ,
		Modifier: a.UI.mainModKey,
	}, func(_ fyne.Shortcut) { a.app.Quit() })

	a.UI.MainWin.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyne.KeyO,
		Modifier: a.UI.mainModKey,
	}, func(_ fyne.Shortcut) { a.showAddDialog() })

	a.UI.MainWin.Canvas().SetOnTypedKey(func(key *fyne.KeyEvent) {
		// Escape first closes a dialog, then the preview.
		if key.Name == fyne.KeyEscape {
			if len(a.UI.MainWin.Canvas().Overlays().List()) > 0 {
				a.UI.MainWin.Canvas().Overlays().Top().Hide()
				return
			}
			a.carousel.Close()
			return
		}
		if !a.carousel.IsOpen() {
			return
		}
		switch key.Name {
		case fyne.KeyRight:
			a.carousel.Next()
		case fyne.KeyLeft:
			a.carousel.Previous()
		case fyne.KeyHome:
			a.carousel.OnViewportSettled(0)
		case fyne.KeyEnd:
			a.carousel.OnViewportSettled(a.carousel.Library().Len() - 1)
		case fyne.KeyDelete:
			a.deleteActive()
		case fyne.KeyS:
			a.shareActive()
		}
	})
}

func (a *App) showShortcuts() {
	shortcuts := []string{
		"Ctrl+Q", "Ctrl+O",
		"Arrow Right", "Arrow Left",
		"Home", "End",
		"Delete", "S", "Esc",
		"Mouse Wheel", "Drag",
	}
	descriptions := []string{
		"Quit Application", "Add Photo",
		"Next Photo", "Previous Photo",
		"Newest Photo", "Oldest Photo",
		"Delete Photo", "Share Photo", "Close Dialog or Preview",
		"Zoom (1x to 5x)", "Pan when zoomed, swipe otherwise",
	}

	win := a.app.NewWindow("Keyboard Shortcuts")
	table := widget.NewTable(
		func() (int, int) { return len(descriptions) + 1, 2 },
		func() fyne.CanvasObject {
			return widget.NewLabel("")
		},
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			label := obj.(*widget.Label)
			isHeader := id.Row == 0
			row := id.Row - 1

			if id.Col == 0 {
				label.SetText(ternary(isHeader, "Description", descriptions[max(row, 0)]))
			} else {
				label.SetText(ternary(isHeader, "Shortcut", shortcuts[max(row, 0)]))
			}
			label.TextStyle.Bold = isHeader
		},
	)
	table.SetColumnWidth(0, 280)
	table.SetColumnWidth(1, 160)
	win.SetContent(table)
	win.Resize(fyne.NewSize(460, 420))
	win.Show()
}
