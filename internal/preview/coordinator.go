package preview

import (
	"errors"
	"fmt"
	"log"

	"magnify/internal/library"
)

const (
	DeleteTitle   = "Delete Photo"
	DeleteMessage = "Are you sure you want to delete this photo?"
)

// ErrNotOpen is returned when a delete is requested with no photo showing.
var ErrNotOpen = errors.New("preview is not open")

// Catalog is the part of the library manager the viewer needs.
type Catalog interface {
	Load() (library.Library, error)
	Snapshot() library.Library
	Remove(id string) error
}

// Confirmer asks the user a yes/no question and reports the answer through
// callback. It may answer synchronously or later from the UI loop.
type Confirmer interface {
	Confirm(title, message string, callback func(bool))
}

// ConfirmFunc adapts a plain function to Confirmer.
type ConfirmFunc func(title, message string, callback func(bool))

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(title, message string, callback func(bool)) {
	f(title, message, callback)
}

// DeleteResult describes what a delete request did to the viewer.
type DeleteResult struct {
	Cancelled bool
	RemovedID string
	Closed    bool
	Cursor    int  // new cursor when still open
	Recovered bool // the viewer was reloaded after a failed remove
}

// Coordinator ties the carousel to the library manager.
type Coordinator struct {
	catalog  Catalog
	carousel *Carousel
	confirm  Confirmer
	logger   LoggerFunc

	// Notify shows a dismissible message to the user.
	Notify func(message string)

	readNoticeShown bool
}

// NewCoordinator wires a carousel to catalog. confirm may be nil, in which
// case deletes proceed without asking.
func NewCoordinator(catalog Catalog, carousel *Carousel, confirm Confirmer, logger LoggerFunc) *Coordinator {
	return &Coordinator{catalog: catalog, carousel: carousel, confirm: confirm, logger: logger}
}

// Carousel returns the viewer this coordinator drives.
func (c *Coordinator) Carousel() *Carousel {
	return c.carousel
}

func (c *Coordinator) logMessage(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if c.logger != nil {
		c.logger(msg)
	} else {
		log.Print(msg)
	}
}

func (c *Coordinator) notify(msg string) {
	if c.Notify != nil {
		c.Notify(msg)
	}
}

// LoadLibrary reads the library for display. A read failure yields an empty
// library and a notice that is shown only once per coordinator.
func (c *Coordinator) LoadLibrary() library.Library {
	lib, err := c.catalog.Load()
	if err != nil {
		c.logMessage("Library unavailable: %v", err)
		if !c.readNoticeShown {
			c.readNoticeShown = true
			c.notify("Your photos could not be loaded. The gallery is shown empty.")
		}
	}
	return lib
}

// reload refreshes the carousel from storage, keeping the active photo if it
// still exists and clamping otherwise.
func (c *Coordinator) reload() library.Library {
	lib := c.LoadLibrary()
	c.carousel.Sync(lib)
	return lib
}

// OpenPhoto opens the viewer on id. A stale id triggers a reload; if the
// photo is still missing an ErrNotFound error is returned and the viewer
// stays closed.
func (c *Coordinator) OpenPhoto(id string) error {
	lib := c.catalog.Snapshot()
	i := lib.IndexOf(id)
	if i == -1 {
		lib = c.LoadLibrary()
		i = lib.IndexOf(id)
	}
	if i == -1 {
		c.carousel.Sync(lib)
		return &library.OpError{Op: "open", ID: id, Kind: library.ErrNotFound}
	}
	c.carousel.Open(lib, i)
	return nil
}

// DeleteActive asks for confirmation and then removes the active photo.
// done receives the outcome; it runs on whatever goroutine the confirmer
// answers on.
func (c *Coordinator) DeleteActive(done func(DeleteResult, error)) {
	if done == nil {
		done = func(DeleteResult, error) {}
	}
	active, open := c.carousel.Active()
	if !open {
		done(DeleteResult{}, ErrNotOpen)
		return
	}
	cursor, _ := c.carousel.Cursor()

	if c.confirm == nil {
		res, err := c.deleteConfirmed(active, cursor)
		done(res, err)
		return
	}
	c.confirm.Confirm(DeleteTitle, DeleteMessage, func(yes bool) {
		if !yes {
			done(DeleteResult{Cancelled: true, Cursor: cursor}, nil)
			return
		}
		res, err := c.deleteConfirmed(active, cursor)
		done(res, err)
	})
}

func (c *Coordinator) deleteConfirmed(active library.Record, cursor int) (DeleteResult, error) {
	res := DeleteResult{RemovedID: active.ID}

	if err := c.catalog.Remove(active.ID); err != nil {
		c.logMessage("Delete %s failed, reloading the viewer: %v", active.ID, err)
		lib := c.reload()
		res.Recovered = true
		res.Closed = !c.carousel.IsOpen()
		res.Cursor, _ = c.carousel.Cursor()
		if lib.IndexOf(active.ID) == -1 {
			// Someone else already removed it; the viewer now matches storage.
			if errors.Is(err, library.ErrNotFound) {
				return res, nil
			}
		}
		c.notify("The photo could not be deleted.")
		return res, err
	}

	lib := c.catalog.Snapshot()
	switch {
	case lib.Len() == 0:
		c.carousel.Close()
		res.Closed = true
	case cursor >= lib.Len():
		res.Cursor = lib.Len() - 1
		c.carousel.Reposition(lib, res.Cursor)
	default:
		res.Cursor = cursor
		c.carousel.Reposition(lib, cursor)
	}
	return res, nil
}
