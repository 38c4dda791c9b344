package ui

import (
	"bytes"
	"image"
	"image/png"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"github.com/nfnt/resize"

	"magnify/internal/preview"
)

const (
	ThumbnailWidth  = 96
	ThumbnailHeight = 96
)

// ThumbnailManager decodes gallery thumbnails in the background and caches
// them by photo id. Entries are dropped when the photo leaves the library.
type ThumbnailManager struct {
	mu      sync.RWMutex
	cache   map[string]fyne.Resource
	pending map[string]bool
	decoder preview.Decoder
	logger  func(string)
}

// NewThumbnailManager returns an empty cache backed by decoder.
func NewThumbnailManager(decoder preview.Decoder, logger func(string)) *ThumbnailManager {
	return &ThumbnailManager{
		cache:   make(map[string]fyne.Resource),
		pending: make(map[string]bool),
		decoder: decoder,
		logger:  logger,
	}
}

func imageToBytes(img image.Image) []byte {
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}

// Get returns the cached thumbnail for id, or a placeholder while it is being
// generated. onReady runs on the UI goroutine once the thumbnail exists.
func (tm *ThumbnailManager) Get(id, fileRef string, onReady func()) fyne.Resource {
	tm.mu.Lock()
	if res, ok := tm.cache[id]; ok {
		tm.mu.Unlock()
		return res
	}
	if tm.pending[id] {
		tm.mu.Unlock()
		return theme.FileImageIcon()
	}
	tm.pending[id] = true
	tm.mu.Unlock()

	go func() {
		defer func() {
			tm.mu.Lock()
			delete(tm.pending, id)
			tm.mu.Unlock()
		}()
		img, err := tm.decoder.Decode(fileRef)
		if err != nil {
			if tm.logger != nil {
				tm.logger("Thumbnail error for " + id + ": " + err.Error())
			}
			return
		}
		data := imageToBytes(resize.Thumbnail(ThumbnailWidth, ThumbnailHeight, img, resize.Lanczos3))
		if data == nil {
			return
		}
		tm.mu.Lock()
		tm.cache[id] = fyne.NewStaticResource(id+".png", data)
		tm.mu.Unlock()
		if onReady != nil {
			fyne.Do(onReady)
		}
	}()
	return theme.FileImageIcon()
}

// Retain drops cached thumbnails whose id is not in ids.
func (tm *ThumbnailManager) Retain(ids []string) {
	keep := make(map[string]bool, len(ids))
	for _, id := range ids {
		keep[id] = true
	}
	tm.mu.Lock()
	defer tm.mu.Unlock()
	for id := range tm.cache {
		if !keep[id] {
			delete(tm.cache, id)
		}
	}
}
