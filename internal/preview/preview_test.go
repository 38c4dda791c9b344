package preview

import (
	"errors"
	"fmt"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"magnify/internal/library"
	"magnify/internal/zoom"
)

// fakeCatalog is an in-memory library manager.
type fakeCatalog struct {
	records   []library.Record
	removeErr error
	loadErr   error
	// gone is removed from records during Remove, simulating a concurrent delete.
	gone  string
	loads int
}

func (f *fakeCatalog) Load() (library.Library, error) {
	f.loads++
	if f.loadErr != nil {
		return library.Library{}, f.loadErr
	}
	return library.NewLibrary(f.records), nil
}

func (f *fakeCatalog) Snapshot() library.Library {
	return library.NewLibrary(f.records)
}

func (f *fakeCatalog) drop(id string) bool {
	for i, r := range f.records {
		if r.ID == id {
			f.records = append(f.records[:i:i], f.records[i+1:]...)
			return true
		}
	}
	return false
}

func (f *fakeCatalog) Remove(id string) error {
	if f.gone != "" {
		f.drop(f.gone)
	}
	if f.removeErr != nil {
		return f.removeErr
	}
	if !f.drop(id) {
		return &library.OpError{Op: "remove", ID: id, Kind: library.ErrNotFound}
	}
	return nil
}

func rec(name string, ts int64) library.Record {
	return library.Record{ID: name, FileRef: "/photos/" + name + ".jpg", Timestamp: ts}
}

// abc is [A(t=3), B(t=2), C(t=1)].
func abc() *fakeCatalog {
	return &fakeCatalog{records: []library.Record{rec("C", 1), rec("A", 3), rec("B", 2)}}
}

type countingDecoder struct {
	calls map[string]int
	fail  string
}

func (d *countingDecoder) Decode(path string) (image.Image, error) {
	if d.calls == nil {
		d.calls = map[string]int{}
	}
	d.calls[path]++
	if path == d.fail {
		return nil, errors.New("corrupt jpeg")
	}
	return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
}

func answer(yes bool) Confirmer {
	return ConfirmFunc(func(_, _ string, cb func(bool)) { cb(yes) })
}

func newCoordinator(cat *fakeCatalog, confirm Confirmer) *Coordinator {
	return NewCoordinator(cat, NewCarousel(zoom.NewController(), NewWindow(nil, 1, func(string) {})), confirm, func(string) {})
}

func deleteSync(t *testing.T, c *Coordinator) (DeleteResult, error) {
	t.Helper()
	var (
		res    DeleteResult
		err    error
		called bool
	)
	c.DeleteActive(func(r DeleteResult, e error) {
		res, err, called = r, e, true
	})
	require.True(t, called, "done callback must run")
	return res, err
}

func TestOpenClampsAndStaysClosedWhenEmpty(t *testing.T) {
	c := NewCarousel(nil, nil)
	assert.False(t, c.Open(library.Library{}, 0))
	assert.False(t, c.IsOpen())
	_, ok := c.Cursor()
	assert.False(t, ok)

	lib := abc().Snapshot()
	require.True(t, c.Open(lib, 10))
	cur, ok := c.Cursor()
	assert.True(t, ok)
	assert.Equal(t, 2, cur)

	c.Open(lib, -4)
	cur, _ = c.Cursor()
	assert.Equal(t, 0, cur)
}

func TestNavigationBoundariesAreNoOps(t *testing.T) {
	c := NewCarousel(nil, nil)
	c.Open(abc().Snapshot(), 0)
	resets := c.Zoom().Resets()

	c.Previous()
	cur, _ := c.Cursor()
	assert.Equal(t, 0, cur)
	assert.Equal(t, resets, c.Zoom().Resets())

	c.Next()
	c.Next()
	c.Next()
	cur, _ = c.Cursor()
	assert.Equal(t, 2, cur)
	assert.Equal(t, resets+2, c.Zoom().Resets())

	active, _ := c.Active()
	assert.Equal(t, "C", active.ID)
	assert.Equal(t, "3 / 3", c.Position())
}

func TestNextOnClosedCarousel(t *testing.T) {
	c := NewCarousel(nil, nil)
	c.Next()
	c.Previous()
	c.OnViewportSettled(0)
	assert.False(t, c.IsOpen())
	assert.Equal(t, 0, c.Zoom().Resets())
}

func TestViewportSettledResetsZoomOnlyOnChange(t *testing.T) {
	c := NewCarousel(nil, nil)
	c.Open(abc().Snapshot(), 0)
	c.Zoom().OnGestureUpdate(3, zoom.Point{})
	c.Zoom().OnGestureEnd()
	resets := c.Zoom().Resets()

	c.OnViewportSettled(0)
	assert.Equal(t, 300, c.Zoom().Magnification(), "settling on the same photo keeps the zoom")
	assert.Equal(t, resets, c.Zoom().Resets())

	c.OnViewportSettled(99)
	assert.Equal(t, resets, c.Zoom().Resets(), "out of range index is ignored")

	c.OnViewportSettled(1)
	assert.Equal(t, 100, c.Zoom().Magnification())
	assert.Equal(t, resets+1, c.Zoom().Resets())
}

func TestPositionHiddenForSinglePhoto(t *testing.T) {
	c := NewCarousel(nil, nil)
	assert.Empty(t, c.Position())
	c.Open(library.NewLibrary([]library.Record{rec("A", 1)}), 0)
	assert.Empty(t, c.Position())
	c.Open(abc().Snapshot(), 1)
	assert.Equal(t, "2 / 3", c.Position())
}

func TestCloseDiscardsCursor(t *testing.T) {
	c := NewCarousel(nil, NewWindow(&countingDecoder{}, 1, func(string) {}))
	changes := 0
	c.OnChange = func() { changes++ }
	c.Open(abc().Snapshot(), 1)
	c.Close()

	_, ok := c.Active()
	assert.False(t, ok)
	assert.Empty(t, c.Window().Materialized())
	assert.Equal(t, 2, changes)

	c.Close()
	assert.Equal(t, 2, changes, "closing twice is silent")
}

func TestSyncKeepsActivePhotoByID(t *testing.T) {
	cat := abc()
	c := NewCarousel(nil, nil)
	c.Open(cat.Snapshot(), 1) // B
	resets := c.Zoom().Resets()

	cat.records = append(cat.records, rec("N", 10))
	c.Sync(cat.Snapshot())
	active, _ := c.Active()
	cur, _ := c.Cursor()
	assert.Equal(t, "B", active.ID)
	assert.Equal(t, 2, cur)
	assert.Equal(t, resets, c.Zoom().Resets())

	cat.drop("B")
	cat.drop("C")
	c.Sync(cat.Snapshot())
	active, _ = c.Active()
	assert.Equal(t, "A", active.ID)
	assert.Equal(t, resets+1, c.Zoom().Resets())

	c.Sync(library.Library{})
	assert.False(t, c.IsOpen())
}

func TestWindowMaterializesOnlyNeighbors(t *testing.T) {
	records := make([]library.Record, 50)
	for i := range records {
		records[i] = rec(fmt.Sprintf("p%02d", i), int64(100-i))
	}
	lib := library.NewLibrary(records)
	dec := &countingDecoder{fail: "/photos/p11.jpg"}
	w := NewWindow(dec, 1, func(string) {})
	c := NewCarousel(nil, w)

	c.Open(lib, 10)
	assert.Equal(t, []string{"p09", "p10", "p11"}, w.Materialized())
	_, ok := w.Image("p10")
	assert.True(t, ok)
	_, ok = w.Image("p11")
	assert.False(t, ok, "a photo that failed to decode renders blank")

	c.Next()
	assert.Equal(t, []string{"p10", "p11", "p12"}, w.Materialized())
	assert.Equal(t, 1, dec.calls["/photos/p10.jpg"], "kept neighbors are not decoded again")
	assert.Equal(t, 1, dec.calls["/photos/p11.jpg"])
	assert.Len(t, dec.calls, 4)

	c.OnViewportSettled(0)
	assert.Equal(t, []string{"p00", "p01"}, w.Materialized())

	lo, hi := w.Bounds(0, 0)
	assert.Equal(t, 0, lo)
	assert.Equal(t, 0, hi)
}

// gatedDecoder blocks every decode until release is closed.
type gatedDecoder struct {
	release chan struct{}
}

func (d *gatedDecoder) Decode(path string) (image.Image, error) {
	<-d.release
	return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
}

func TestWindowDecodesInBackground(t *testing.T) {
	dec := &gatedDecoder{release: make(chan struct{})}
	w := NewWindow(dec, 1, func(string) {})
	loaded := make(chan string, 8)
	w.DecodeInBackground(func(id string) { loaded <- id })
	c := NewCarousel(nil, w)

	// Open returns while the decoder is still blocked.
	require.True(t, c.Open(abc().Snapshot(), 0))
	assert.Empty(t, w.Materialized())
	_, ok := w.Image("A")
	assert.False(t, ok)

	close(dec.release)
	got := map[string]bool{}
	for len(got) < 2 {
		select {
		case id := <-loaded:
			got[id] = true
		case <-time.After(2 * time.Second):
			t.Fatalf("decodes did not finish, got %v", got)
		}
	}
	assert.Equal(t, map[string]bool{"A": true, "B": true}, got)
	assert.Equal(t, []string{"A", "B"}, w.Materialized())
	_, ok = w.Image("A")
	assert.True(t, ok)
}

func TestWindowDropsDecodesThatLeftTheWindow(t *testing.T) {
	records := make([]library.Record, 10)
	for i := range records {
		records[i] = rec(fmt.Sprintf("p%d", i), int64(100-i))
	}
	dec := &gatedDecoder{release: make(chan struct{})}
	w := NewWindow(dec, 0, func(string) {})
	loaded := make(chan string, 8)
	w.DecodeInBackground(func(id string) { loaded <- id })
	c := NewCarousel(nil, w)

	c.Open(library.NewLibrary(records), 0)
	c.OnViewportSettled(9)
	close(dec.release)

	select {
	case id := <-loaded:
		assert.Equal(t, "p9", id)
	case <-time.After(2 * time.Second):
		t.Fatal("decode did not finish")
	}
	assert.Eventually(t, func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		return len(w.pending) == 0
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"p9"}, w.Materialized())
	assert.Empty(t, loaded, "the photo swiped away from is not reported")
}

func TestDeleteMiddlePhotoShowsNext(t *testing.T) {
	cat := abc()
	co := newCoordinator(cat, answer(true))
	require.NoError(t, co.OpenPhoto("B"))
	co.Carousel().Zoom().OnGestureUpdate(2.5, zoom.Point{X: 4, Y: 4})
	co.Carousel().Zoom().OnGestureEnd()
	require.Equal(t, 2.5, co.Carousel().Zoom().State().Baseline)

	res, err := deleteSync(t, co)
	require.NoError(t, err)
	assert.Equal(t, "B", res.RemovedID)
	assert.False(t, res.Closed)
	assert.Equal(t, 1, res.Cursor)

	active, _ := co.Carousel().Active()
	assert.Equal(t, "C", active.ID)
	assert.Equal(t, []string{"A", "C"}, co.Carousel().Library().IDs())
	assert.Equal(t, 100, co.Carousel().Zoom().Magnification())
	assert.Equal(t, zoom.Initial(), co.Carousel().Zoom().State(), "scale, baseline and focal all reset")
}

func TestDeleteLastPositionMovesBack(t *testing.T) {
	cat := abc()
	co := newCoordinator(cat, answer(true))
	require.NoError(t, co.OpenPhoto("C"))

	res, err := deleteSync(t, co)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Cursor)
	active, _ := co.Carousel().Active()
	assert.Equal(t, "B", active.ID)
}

func TestDeleteOnlyPhotoCloses(t *testing.T) {
	cat := &fakeCatalog{records: []library.Record{rec("A", 1)}}
	co := newCoordinator(cat, answer(true))
	require.NoError(t, co.OpenPhoto("A"))

	res, err := deleteSync(t, co)
	require.NoError(t, err)
	assert.True(t, res.Closed)
	assert.False(t, co.Carousel().IsOpen())
	assert.Empty(t, cat.records)
}

func TestDeleteCancelledChangesNothing(t *testing.T) {
	cat := abc()
	co := newCoordinator(cat, answer(false))
	require.NoError(t, co.OpenPhoto("A"))

	res, err := deleteSync(t, co)
	require.NoError(t, err)
	assert.True(t, res.Cancelled)
	assert.Len(t, cat.records, 3)
	active, _ := co.Carousel().Active()
	assert.Equal(t, "A", active.ID)
}

func TestDeleteWhenClosed(t *testing.T) {
	co := newCoordinator(abc(), answer(true))
	_, err := deleteSync(t, co)
	assert.ErrorIs(t, err, ErrNotOpen)
}

func TestDeleteRaceReloadsAndClamps(t *testing.T) {
	cat := abc()
	co := newCoordinator(cat, nil)
	require.NoError(t, co.OpenPhoto("C"))

	// Another path already removed C before our delete reached the manager.
	cat.drop("C")
	res, err := deleteSync(t, co)
	require.NoError(t, err, "not found during a race is benign")
	assert.True(t, res.Recovered)
	assert.Equal(t, 1, cat.loads)

	cur, ok := co.Carousel().Cursor()
	require.True(t, ok)
	assert.Equal(t, 1, cur)
	active, _ := co.Carousel().Active()
	assert.Equal(t, "B", active.ID)
}

func TestDeleteFailureSurfacesAndResyncs(t *testing.T) {
	cat := abc()
	cat.removeErr = &library.OpError{Op: "remove", ID: "B", Kind: library.ErrPersistence, Err: errors.New("disk full")}
	co := newCoordinator(cat, answer(true))
	var notices []string
	co.Notify = func(m string) { notices = append(notices, m) }
	require.NoError(t, co.OpenPhoto("B"))

	res, err := deleteSync(t, co)
	assert.ErrorIs(t, err, library.ErrPersistence)
	assert.True(t, res.Recovered)
	assert.Len(t, notices, 1)
	active, _ := co.Carousel().Active()
	assert.Equal(t, "B", active.ID, "the photo is still there")
}

func TestOpenStalePhotoReloads(t *testing.T) {
	cat := abc()
	co := newCoordinator(cat, nil)

	err := co.OpenPhoto("Z")
	assert.ErrorIs(t, err, library.ErrNotFound)
	assert.False(t, co.Carousel().IsOpen())
	assert.Equal(t, 1, cat.loads)
}

func TestStorageReadNoticeShownOnce(t *testing.T) {
	cat := &fakeCatalog{loadErr: &library.OpError{Op: "load", Kind: library.ErrStorageRead}}
	co := newCoordinator(cat, nil)
	var notices []string
	co.Notify = func(m string) { notices = append(notices, m) }

	assert.Equal(t, 0, co.LoadLibrary().Len())
	assert.Equal(t, 0, co.LoadLibrary().Len())
	assert.Len(t, notices, 1)
}
