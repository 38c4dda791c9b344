// Package preview implements the full-screen photo viewer: a cursor over the
// library, a window of decoded neighbors, and the delete flow that keeps the
// cursor valid while the library changes underneath it.
package preview

import (
	"fmt"
	"sync"

	"magnify/internal/library"
	"magnify/internal/zoom"
)

// Carousel is either closed or open at a cursor into its library snapshot.
// Navigation always goes through OnViewportSettled so chevrons and swipes
// share one path, and the zoom controller is reset exactly once per cursor
// change.
type Carousel struct {
	mu     sync.Mutex
	lib    library.Library
	open   bool
	cursor int
	active library.Record

	zoom   *zoom.Controller
	window *Window

	// OnChange is called, outside the lock, after the visible photo or the
	// open state changed.
	OnChange func()
}

// NewCarousel returns a closed carousel. window may be nil.
func NewCarousel(z *zoom.Controller, window *Window) *Carousel {
	if z == nil {
		z = zoom.NewController()
	}
	return &Carousel{zoom: z, window: window, cursor: -1}
}

// Zoom returns the controller for the active photo.
func (c *Carousel) Zoom() *zoom.Controller {
	return c.zoom
}

// Window returns the virtualization window, or nil.
func (c *Carousel) Window() *Window {
	return c.window
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}

func (c *Carousel) notify() {
	if cb := c.OnChange; cb != nil {
		cb()
	}
}

// moveLocked points the cursor at i, which must be valid, and refreshes the
// window. The caller decides whether the zoom resets.
func (c *Carousel) moveLocked(i int) {
	c.cursor = i
	c.active = c.lib[i]
	if c.window != nil {
		c.window.Refresh(c.lib, i)
	}
}

func (c *Carousel) closeLocked() {
	c.open = false
	c.cursor = -1
	c.active = library.Record{}
	if c.window != nil {
		c.window.Clear()
	}
}

// Open shows lib starting at initial, clamped into range. An empty library
// leaves the carousel closed and returns false.
func (c *Carousel) Open(lib library.Library, initial int) bool {
	c.mu.Lock()
	if lib.Len() == 0 {
		c.lib = lib
		c.closeLocked()
		c.mu.Unlock()
		c.notify()
		return false
	}
	c.lib = lib
	c.open = true
	c.moveLocked(clampIndex(initial, lib.Len()))
	c.mu.Unlock()

	c.zoom.OnActivePhotoChanged()
	c.notify()
	return true
}

// Close discards the cursor.
func (c *Carousel) Close() {
	c.mu.Lock()
	wasOpen := c.open
	c.closeLocked()
	c.mu.Unlock()
	if wasOpen {
		c.zoom.OnActivePhotoChanged()
		c.notify()
	}
}

// OnViewportSettled is called when the viewer comes to rest on observed.
// It is a no-op when closed, out of range, or already at observed.
func (c *Carousel) OnViewportSettled(observed int) {
	c.mu.Lock()
	if !c.open || observed < 0 || observed >= c.lib.Len() || observed == c.cursor {
		c.mu.Unlock()
		return
	}
	c.moveLocked(observed)
	c.mu.Unlock()

	c.zoom.OnActivePhotoChanged()
	c.notify()
}

// Next moves one photo toward older captures. It does nothing at the end.
func (c *Carousel) Next() {
	c.mu.Lock()
	target := c.cursor + 1
	ok := c.open && target < c.lib.Len()
	c.mu.Unlock()
	if ok {
		c.OnViewportSettled(target)
	}
}

// Previous moves one photo toward newer captures. It does nothing at the start.
func (c *Carousel) Previous() {
	c.mu.Lock()
	target := c.cursor - 1
	ok := c.open && target >= 0
	c.mu.Unlock()
	if ok {
		c.OnViewportSettled(target)
	}
}

// IsOpen reports whether a photo is being shown.
func (c *Carousel) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// Cursor returns the current index, or false when closed.
func (c *Carousel) Cursor() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor, c.open
}

// Active returns the photo at the cursor, or false when closed.
func (c *Carousel) Active() (library.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active, c.open
}

// Library returns the snapshot the carousel is navigating.
func (c *Carousel) Library() library.Library {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lib
}

// Position formats the cursor as "i / n". It is empty when closed or when
// there is only one photo.
func (c *Carousel) Position() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open || c.lib.Len() < 2 {
		return ""
	}
	return fmt.Sprintf("%d / %d", c.cursor+1, c.lib.Len())
}

// Sync replaces the snapshot after the library changed elsewhere. The active
// photo stays active if it still exists; otherwise the cursor is clamped to
// the new length. An empty library closes the carousel.
func (c *Carousel) Sync(lib library.Library) {
	c.mu.Lock()
	if !c.open {
		c.lib = lib
		c.mu.Unlock()
		return
	}
	if lib.Len() == 0 {
		c.lib = lib
		c.closeLocked()
		c.mu.Unlock()
		c.zoom.OnActivePhotoChanged()
		c.notify()
		return
	}

	prevID := c.active.ID
	c.lib = lib
	target := lib.IndexOf(prevID)
	changed := target == -1
	if changed {
		target = clampIndex(c.cursor, lib.Len())
	}
	c.moveLocked(target)
	c.mu.Unlock()

	if changed {
		c.zoom.OnActivePhotoChanged()
	}
	c.notify()
}

// Reposition installs lib and moves the cursor to index, resetting zoom even
// if the index did not change. It is the post-delete path: the same index
// now shows a different photo.
func (c *Carousel) Reposition(lib library.Library, index int) {
	c.mu.Lock()
	if lib.Len() == 0 {
		c.lib = lib
		c.closeLocked()
		c.mu.Unlock()
		c.zoom.OnActivePhotoChanged()
		c.notify()
		return
	}
	c.lib = lib
	c.open = true
	c.moveLocked(clampIndex(index, lib.Len()))
	c.mu.Unlock()

	c.zoom.OnActivePhotoChanged()
	c.notify()
}
