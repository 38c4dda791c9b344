package library

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"magnify/internal/photostore"
	"magnify/internal/scan"
)

// LoggerFunc defines a function signature for logging messages.
type LoggerFunc func(message string)

// IndexStore abstracts the persisted metadata index for easier testing.
type IndexStore interface {
	Load() ([]Record, error)
	Save(records []Record) error
	Clear() error
}

// FileStore abstracts the photo file area.
type FileStore interface {
	Dir() string
	PathFor(id string) string
	Import(src string, id string) (string, error)
	Delete(fileRef string) error
	Exists(fileRef string) bool
}

// FileScanner abstracts listing the files in the photo area.
type FileScanner interface {
	Run(dir string, logger scan.LoggerFunc) <-chan scan.FileItem
}

// Manager is the only writer of the index. Mutations are serialized by mu and
// the in-memory records are replaced only after the durable write succeeded,
// so every mutation observes the fully applied result of the previous one.
type Manager struct {
	mu      sync.Mutex
	index   IndexStore
	files   FileStore
	scanner FileScanner
	logger  LoggerFunc
	now     func() time.Time

	records []Record // index order, valid when loaded
	loaded  bool
}

// NewManager constructs a Manager over the given stores. The index is read
// lazily on the first call.
func NewManager(index IndexStore, files FileStore, scanner FileScanner, logger LoggerFunc) *Manager {
	return &Manager{
		index:   index,
		files:   files,
		scanner: scanner,
		logger:  logger,
		now:     time.Now,
	}
}

func (m *Manager) logMessage(format string, args ...interface{}) {
	if m.logger != nil {
		m.logger(fmt.Sprintf(format, args...))
	} else {
		log.Printf("library: "+format, args...)
	}
}

// readIndex refreshes the cache from the index. A corrupt index is replaced by
// an empty one in memory so the catalog stays usable; other read failures
// leave the cache unloaded.
func (m *Manager) readIndex() error {
	records, err := m.index.Load()
	if err != nil {
		m.records = []Record{}
		m.loaded = errors.Is(err, photostore.ErrCorrupt)
		return err
	}
	m.records = records
	m.loaded = true
	return nil
}

func (m *Manager) ensureLoaded() error {
	if m.loaded {
		return nil
	}
	if err := m.readIndex(); err != nil && !m.loaded {
		return err
	}
	return nil
}

// Load reads the persisted index and returns it newest first. On failure it
// returns an empty Library together with an ErrStorageRead error; the caller
// should show the library as empty and report the error once.
func (m *Manager) Load() (Library, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.readIndex(); err != nil {
		m.logMessage("Failed to read photo index, showing an empty library: %v", err)
		return Library{}, opError("load", "", ErrStorageRead, err)
	}
	return NewLibrary(m.records), nil
}

// Snapshot returns the current catalog without touching storage. It is empty
// until the index has been read.
func (m *Manager) Snapshot() Library {
	m.mu.Lock()
	defer m.mu.Unlock()
	return NewLibrary(m.records)
}

// Get returns the record for id. A missing id is an ErrNotFound error.
func (m *Manager) Get(id string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureLoaded(); err != nil {
		return Record{}, opError("get", id, ErrStorageRead, err)
	}
	for _, r := range m.records {
		if r.ID == id {
			return r, nil
		}
	}
	return Record{}, opError("get", id, ErrNotFound, nil)
}

// uniqueID derives the id from the capture time, moving forward one
// millisecond at a time past ids already in the index.
func (m *Manager) uniqueID(timestamp int64) string {
	taken := make(map[string]bool, len(m.records))
	for _, r := range m.records {
		taken[r.ID] = true
	}
	for ms := timestamp; ; ms++ {
		if id := PhotoID(ms); !taken[id] {
			return id
		}
	}
}

// Add copies sourceFile into the photo area and records it in the index.
// timestampMillis <= 0 means "now". The file is written first: if the copy
// fails nothing is recorded; if the index write fails the copied file is left
// behind as an orphan (logged, cleaned by Sweep).
func (m *Manager) Add(sourceFile string, timestampMillis int64) (Record, error) {
	if sourceFile == "" {
		return Record{}, opError("add", "", ErrFileIO, errors.New("source file required"))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureLoaded(); err != nil {
		return Record{}, opError("add", "", ErrStorageRead, err)
	}
	if timestampMillis <= 0 {
		timestampMillis = m.now().UnixMilli()
	}
	id := m.uniqueID(timestampMillis)

	fileRef, err := m.files.Import(sourceFile, id)
	if err != nil {
		m.logMessage("Add %s: copying %s failed: %v", id, sourceFile, err)
		return Record{}, opError("add", id, ErrFileIO, err)
	}

	record := Record{ID: id, FileRef: fileRef, Timestamp: timestampMillis}
	updated := make([]Record, 0, len(m.records)+1)
	updated = append(updated, record)
	updated = append(updated, m.records...)

	if err := m.index.Save(updated); err != nil {
		m.logMessage("Add %s: index write failed, orphaned file left at %s: %v", id, fileRef, err)
		return Record{}, opError("add", id, ErrPersistence, err)
	}
	m.records = updated
	m.logMessage("Added %s (%d photos)", id, len(updated))
	return record, nil
}

// Remove deletes the photo's file and then its index entry. A file that cannot
// be deleted does not block removal from the index. Removing an id that is not
// in the index returns ErrNotFound and changes nothing.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureLoaded(); err != nil {
		return opError("remove", id, ErrStorageRead, err)
	}

	pos := -1
	for i, r := range m.records {
		if r.ID == id {
			pos = i
			break
		}
	}
	if pos == -1 {
		return opError("remove", id, ErrNotFound, nil)
	}
	record := m.records[pos]

	if err := m.files.Delete(record.FileRef); err != nil {
		m.logMessage("Remove %s: could not delete %s, removing the record anyway: %v", id, record.FileRef, err)
	}

	updated := make([]Record, 0, len(m.records)-1)
	updated = append(updated, m.records[:pos]...)
	updated = append(updated, m.records[pos+1:]...)

	if err := m.index.Save(updated); err != nil {
		m.logMessage("Remove %s: index write failed: %v", id, err)
		return opError("remove", id, ErrPersistence, err)
	}
	m.records = updated
	m.logMessage("Removed %s (%d photos left)", id, len(updated))
	return nil
}

// BatchResult summarizes RemoveAll.
type BatchResult struct {
	Records      int           // records cleared from the index
	FilesDeleted int           // files removed (or already gone)
	Failures     []FileFailure // files that could not be deleted
}

// Warning joins the individual file failures, or returns nil.
func (r BatchResult) Warning() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return fmt.Errorf("%d of %d photo files could not be deleted: %w", len(r.Failures), r.Records, errors.Join(errs...))
}

// RemoveAll tries to delete every photo file, carrying on past failures, and
// then replaces the index with an empty one. File failures are reported in
// the result; only an index write failure is returned as an error.
func (m *Manager) RemoveAll() (BatchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureLoaded(); err != nil {
		return BatchResult{}, opError("remove-all", "", ErrStorageRead, err)
	}

	result := BatchResult{Records: len(m.records)}
	for _, r := range m.records {
		if err := m.files.Delete(r.FileRef); err != nil {
			m.logMessage("RemoveAll: could not delete %s: %v", r.FileRef, err)
			result.Failures = append(result.Failures, FileFailure{ID: r.ID, FileRef: r.FileRef, Err: err})
			continue
		}
		result.FilesDeleted++
	}

	if err := m.index.Clear(); err != nil {
		m.logMessage("RemoveAll: index clear failed: %v", err)
		return result, opError("remove-all", "", ErrPersistence, err)
	}
	m.records = []Record{}
	m.logMessage("Removed all photos. Files deleted: %d, failures: %d", result.FilesDeleted, len(result.Failures))
	return result, nil
}
