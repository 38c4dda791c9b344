package ui

import (
	"image"
	"math"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"magnify/internal/zoom"
)

const (
	scrollZoomStep   = 1.1
	gestureIdleDelay = 400 * time.Millisecond
	swipeThreshold   = 60 // pixels of horizontal drag that count as a swipe
)

// ZoomPanArea renders the active photo fitted to the view and magnified by
// the zoom controller around its focal point. Mouse wheel steps act as a
// pinch: consecutive steps form one gesture that ends after a short idle
// period. Dragging pans a magnified photo and swipes an unmagnified one.
type ZoomPanArea struct {
	widget.BaseWidget

	img    image.Image
	raster *canvas.Raster
	zoom   *zoom.Controller

	panOffset fyne.Position

	gestureMu    sync.Mutex
	gestureScale float64
	gestureTimer *time.Timer

	dragDX float32

	// OnSwipe receives +1 for a swipe toward the next photo, -1 for previous.
	OnSwipe func(direction int)
}

// NewZoomPanArea creates an empty area driven by z.
func NewZoomPanArea(z *zoom.Controller) *ZoomPanArea {
	zpa := &ZoomPanArea{zoom: z}
	zpa.raster = canvas.NewRaster(zpa.draw)
	zpa.ExtendBaseWidget(zpa)
	return zpa
}

// SetImage shows img (nil renders blank) and clears the pan offset.
func (zpa *ZoomPanArea) SetImage(img image.Image) {
	zpa.img = img
	zpa.panOffset = fyne.Position{}
	zpa.Refresh()
}

// Image returns the image being shown.
func (zpa *ZoomPanArea) Image() image.Image {
	return zpa.img
}

// ResetPan recenters the photo. Called when the zoom goes back to 1.
func (zpa *ZoomPanArea) ResetPan() {
	zpa.panOffset = fyne.Position{}
}

// draw maps each destination pixel back through pan, zoom and fit into the
// source image.
func (zpa *ZoomPanArea) draw(w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if zpa.img == nil || w <= 0 || h <= 0 {
		return dst
	}
	src := zpa.img.Bounds()
	imgW, imgH := float64(src.Dx()), float64(src.Dy())
	if imgW == 0 || imgH == 0 {
		return dst
	}

	// Raster pixels may differ from widget units on HiDPI screens.
	size := zpa.Size()
	unitX, unitY := 1.0, 1.0
	if size.Width > 0 && size.Height > 0 {
		unitX = float64(w) / float64(size.Width)
		unitY = float64(h) / float64(size.Height)
	}

	state := zpa.zoom.State()
	fit := math.Min(float64(w)/imgW, float64(h)/imgH)
	originX := (float64(w) - imgW*fit) / 2
	originY := (float64(h) - imgH*fit) / 2
	focalX, focalY := state.Focal.X*unitX, state.Focal.Y*unitY
	panX, panY := float64(zpa.panOffset.X)*unitX, float64(zpa.panOffset.Y)*unitY
	inv := 1 / state.Scale

	for dy := 0; dy < h; dy++ {
		baseY := focalY + (float64(dy)-panY-focalY)*inv
		sy := (baseY-originY)/fit + float64(src.Min.Y)
		if sy < float64(src.Min.Y) || sy >= float64(src.Max.Y) {
			continue
		}
		for dx := 0; dx < w; dx++ {
			baseX := focalX + (float64(dx)-panX-focalX)*inv
			sx := (baseX-originX)/fit + float64(src.Min.X)
			if sx >= float64(src.Min.X) && sx < float64(src.Max.X) {
				dst.Set(dx, dy, zpa.img.At(int(sx), int(sy)))
			}
		}
	}
	return dst
}

// CreateRenderer is a Fyne lifecycle method.
func (zpa *ZoomPanArea) CreateRenderer() fyne.WidgetRenderer {
	return &zoomPanAreaRenderer{zpa: zpa}
}

// Scrolled treats each wheel step as a frame of a pinch gesture.
func (zpa *ZoomPanArea) Scrolled(ev *fyne.ScrollEvent) {
	zpa.gestureMu.Lock()
	if zpa.gestureTimer == nil {
		zpa.gestureScale = 1
	} else {
		zpa.gestureTimer.Stop()
	}
	if ev.Scrolled.DY > 0 {
		zpa.gestureScale *= scrollZoomStep
	} else if ev.Scrolled.DY < 0 {
		zpa.gestureScale /= scrollZoomStep
	}
	// Keep the gesture factor inside what the clamp can use, so reversing
	// direction responds immediately.
	baseline := zpa.zoom.State().Baseline
	zpa.gestureScale = math.Min(math.Max(zpa.gestureScale, zoom.MinScale/baseline), zoom.MaxScale/baseline)
	incoming := zpa.gestureScale
	zpa.gestureTimer = time.AfterFunc(gestureIdleDelay, func() {
		fyne.Do(zpa.endGesture)
	})
	zpa.gestureMu.Unlock()

	zpa.zoom.OnGestureUpdate(incoming, zoom.Point{X: float64(ev.Position.X), Y: float64(ev.Position.Y)})
	zpa.Refresh()
}

func (zpa *ZoomPanArea) endGesture() {
	zpa.gestureMu.Lock()
	zpa.gestureTimer = nil
	zpa.gestureMu.Unlock()
	if !zpa.zoom.OnGestureEnd().Zoomed() {
		zpa.ResetPan()
	}
	zpa.Refresh()
}

// Dragged pans when magnified and tracks a swipe otherwise.
func (zpa *ZoomPanArea) Dragged(ev *fyne.DragEvent) {
	if zpa.zoom.State().Zoomed() {
		zpa.panOffset = zpa.panOffset.Add(ev.Dragged)
		zpa.Refresh()
		return
	}
	zpa.dragDX += ev.Dragged.DX
}

// DragEnd settles a swipe on the neighboring photo.
func (zpa *ZoomPanArea) DragEnd() {
	dx := zpa.dragDX
	zpa.dragDX = 0
	if zpa.OnSwipe == nil {
		return
	}
	switch {
	case dx <= -swipeThreshold:
		zpa.OnSwipe(1)
	case dx >= swipeThreshold:
		zpa.OnSwipe(-1)
	}
}

type zoomPanAreaRenderer struct{ zpa *ZoomPanArea }

func (r *zoomPanAreaRenderer) Layout(size fyne.Size)        { r.zpa.raster.Resize(size) }
func (r *zoomPanAreaRenderer) MinSize() fyne.Size           { return fyne.NewSize(200, 200) }
func (r *zoomPanAreaRenderer) Refresh()                     { canvas.Refresh(r.zpa.raster) }
func (r *zoomPanAreaRenderer) Objects() []fyne.CanvasObject { return []fyne.CanvasObject{r.zpa.raster} }
func (r *zoomPanAreaRenderer) Destroy()                     {}

var _ fyne.Widget = (*ZoomPanArea)(nil)
var _ fyne.Scrollable = (*ZoomPanArea)(nil)
var _ fyne.Draggable = (*ZoomPanArea)(nil)
