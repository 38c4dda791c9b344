package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"magnify/internal/config"
	"magnify/internal/scan"

	"github.com/stretchr/testify/require"
)

// fakeIndex is an in-memory IndexStore with injectable failures.
type fakeIndex struct {
	records []Record
	loadErr error
	saveErr error
	saves   int
}

func (f *fakeIndex) Load() ([]Record, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	out := make([]Record, len(f.records))
	copy(out, f.records)
	return out, nil
}

func (f *fakeIndex) Save(records []Record) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.records = make([]Record, len(records))
	copy(f.records, records)
	return nil
}

func (f *fakeIndex) Clear() error {
	return f.Save([]Record{})
}

// fakeFiles is an in-memory FileStore. Paths live under a fixed fake directory.
type fakeFiles struct {
	files      map[string][]byte
	importErr  error
	deleteErrs map[string]error
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{files: map[string][]byte{}, deleteErrs: map[string]error{}}
}

func (f *fakeFiles) Dir() string { return "/fake/photos" }

func (f *fakeFiles) PathFor(id string) string { return filepath.Join(f.Dir(), id+".jpg") }

func (f *fakeFiles) Import(src string, id string) (string, error) {
	if f.importErr != nil {
		return "", f.importErr
	}
	ref := f.PathFor(id)
	f.files[ref] = []byte(src)
	return ref, nil
}

func (f *fakeFiles) Delete(fileRef string) error {
	if err, ok := f.deleteErrs[fileRef]; ok {
		return err
	}
	delete(f.files, fileRef)
	return nil
}

func (f *fakeFiles) Exists(fileRef string) bool {
	_, ok := f.files[fileRef]
	return ok
}

// fakeScanner lists whatever is currently in a fakeFiles.
type fakeScanner struct{ files *fakeFiles }

func (s fakeScanner) Run(dir string, logger scan.LoggerFunc) <-chan scan.FileItem {
	out := make(chan scan.FileItem, len(s.files.files))
	for path := range s.files.files {
		out <- scan.FileItem{Path: path}
	}
	close(out)
	return out
}

func newFakeManager(t *testing.T, records ...Record) (*Manager, *fakeIndex, *fakeFiles) {
	t.Helper()
	idx := &fakeIndex{records: records}
	files := newFakeFiles()
	for _, r := range records {
		files.files[r.FileRef] = []byte(r.ID)
	}
	m := NewManager(idx, files, fakeScanner{files: files}, func(msg string) { t.Log(msg) })
	return m, idx, files
}

func rec(ts int64) Record {
	id := PhotoID(ts)
	return Record{ID: id, FileRef: filepath.Join("/fake/photos", id+".jpg"), Timestamp: ts}
}

// openDiskManager wires a Manager to real stores in a temp dir.
func openDiskManager(t *testing.T) (*Manager, config.Config) {
	t.Helper()
	t.Setenv("MAGNIFY_INDEX_FILE", "")
	t.Setenv("MAGNIFY_PHOTOS_SUBDIR", "")
	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)
	m, closeFn, err := Open(cfg, func(msg string) { t.Log(msg) })
	require.NoError(t, err)
	t.Cleanup(func() { closeFn() })
	return m, cfg
}

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

var errInjected = errors.New("injected failure")

func injected(what string) error {
	return fmt.Errorf("%s: %w", what, errInjected)
}
