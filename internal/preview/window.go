package preview

import (
	"fmt"
	"image"
	"log"
	"sort"
	"sync"

	"magnify/internal/library"
)

// Decoder turns a stored photo into pixels.
type Decoder interface {
	Decode(path string) (image.Image, error)
}

// LoggerFunc defines the signature for a logging function.
type LoggerFunc func(message string)

// Window keeps decoded images for the active photo and its neighbors only.
// Everything outside cursor±radius is evicted on each Refresh, so memory
// stays bounded no matter how large the library is.
type Window struct {
	mu      sync.Mutex
	decoder Decoder
	radius  int
	items   map[string]image.Image
	wanted  map[string]bool
	pending map[string]bool
	logger  LoggerFunc

	background bool
	onLoaded   func(id string)
}

// NewWindow returns an empty window. A nil decoder keeps the window
// bookkeeping-only, which is what the CLI uses.
func NewWindow(decoder Decoder, radius int, logger LoggerFunc) *Window {
	if radius < 0 {
		radius = 0
	}
	return &Window{
		decoder: decoder,
		radius:  radius,
		items:   make(map[string]image.Image),
		wanted:  make(map[string]bool),
		pending: make(map[string]bool),
		logger:  logger,
	}
}

// DecodeInBackground makes Refresh return without decoding. Each photo is
// decoded on its own goroutine and onLoaded is called with its id once the
// image is held, unless the window moved away from it in the meantime.
func (w *Window) DecodeInBackground(onLoaded func(id string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.background = true
	w.onLoaded = onLoaded
}

func (w *Window) decode(r library.Record) image.Image {
	if w.decoder == nil {
		return nil
	}
	img, err := w.decoder.Decode(r.FileRef)
	if err != nil {
		w.logMessage("Preview: could not decode %s: %v", r.ID, err)
		return nil
	}
	return img
}

// load decodes r off the caller's goroutine and keeps the result only if r
// is still inside the window.
func (w *Window) load(r library.Record) {
	img := w.decode(r)

	w.mu.Lock()
	delete(w.pending, r.ID)
	kept := w.wanted[r.ID]
	if kept {
		w.items[r.ID] = img
	}
	cb := w.onLoaded
	w.mu.Unlock()

	if kept && cb != nil {
		cb(r.ID)
	}
}

func (w *Window) logMessage(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if w.logger != nil {
		w.logger(msg)
	} else {
		log.Print(msg)
	}
}

// Bounds returns the half-open index range [lo, hi) materialized around cursor.
func (w *Window) Bounds(n, cursor int) (int, int) {
	if n == 0 {
		return 0, 0
	}
	lo := cursor - w.radius
	if lo < 0 {
		lo = 0
	}
	hi := cursor + w.radius + 1
	if hi > n {
		hi = n
	}
	return lo, hi
}

// Refresh decodes the photos in the window around cursor and drops the rest.
// Decode failures are logged and leave a nil entry so the slot renders blank
// instead of retrying every frame.
func (w *Window) Refresh(lib library.Library, cursor int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	lo, hi := w.Bounds(lib.Len(), cursor)
	w.wanted = make(map[string]bool, hi-lo)
	for _, r := range lib[lo:hi] {
		w.wanted[r.ID] = true
	}
	for id := range w.items {
		if !w.wanted[id] {
			delete(w.items, id)
		}
	}
	for _, r := range lib[lo:hi] {
		if _, have := w.items[r.ID]; have || w.pending[r.ID] {
			continue
		}
		if w.background {
			w.pending[r.ID] = true
			go w.load(r)
			continue
		}
		w.items[r.ID] = w.decode(r)
	}
}

// Image returns the decoded image for id if it is inside the window.
func (w *Window) Image(id string) (image.Image, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	img, ok := w.items[id]
	return img, ok && img != nil
}

// Materialized lists the ids currently held, sorted.
func (w *Window) Materialized() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	ids := make([]string, 0, len(w.items))
	for id := range w.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clear drops every decoded image.
func (w *Window) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.items = make(map[string]image.Image)
	w.wanted = make(map[string]bool)
}
