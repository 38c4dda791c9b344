// Package library keeps the photo catalog consistent across the metadata index
// and the photo file area, and derives the newest-first presentation order.
package library

import (
	"fmt"
	"sort"
	"time"

	"magnify/internal/photostore"
)

// Record is one photo's metadata: id, file reference and capture time in epoch millis.
type Record = photostore.Record

// IDPrefix starts every photo id; the rest is the capture time in epoch millis.
const IDPrefix = "photo_"

// Library is the ordered view of the index: timestamp descending.
type Library []Record

// NewLibrary copies records and sorts them newest first. Records sharing a
// timestamp keep their index order, so repeated sorts of the same index agree.
func NewLibrary(records []Record) Library {
	lib := make(Library, len(records))
	copy(lib, records)
	sort.SliceStable(lib, func(i, j int) bool {
		return lib[i].Timestamp > lib[j].Timestamp
	})
	return lib
}

// Len returns the number of photos.
func (l Library) Len() int {
	return len(l)
}

// IndexOf returns the position of id, or -1.
func (l Library) IndexOf(id string) int {
	for i, r := range l {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// IDs returns the photo ids in presentation order.
func (l Library) IDs() []string {
	ids := make([]string, len(l))
	for i, r := range l {
		ids[i] = r.ID
	}
	return ids
}

// PhotoID builds the id for a capture time.
func PhotoID(timestampMillis int64) string {
	return fmt.Sprintf("%s%d", IDPrefix, timestampMillis)
}

// CaptureTime converts a record timestamp to local time.
func CaptureTime(r Record) time.Time {
	return time.UnixMilli(r.Timestamp)
}
