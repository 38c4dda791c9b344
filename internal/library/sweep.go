package library

import (
	"strings"

	"github.com/facette/natsort"

	"magnify/internal/filestore"
)

// SweepResult lists the inconsistencies found between the index and the photo area.
type SweepResult struct {
	OrphanFiles  []string // files with no index entry, natural order
	Deleted      int      // orphan files removed
	MissingFiles []string // ids whose file is gone; reported only
}

// Sweep reconciles the photo area against the index. Files without a record
// (left by an add whose index write failed) are deleted unless dryRun is set.
// Records whose file is missing are reported but kept; Remove handles them.
// Files are matched to records by photo id, never by path, so a data
// directory that moved since the records were written keeps every file.
func (m *Manager) Sweep(dryRun bool) (SweepResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result SweepResult
	if err := m.ensureLoaded(); err != nil {
		return result, opError("sweep", "", ErrStorageRead, err)
	}
	if m.scanner == nil {
		return result, opError("sweep", "", ErrFileIO, errNoScanner)
	}

	known := make(map[string]bool, len(m.records))
	for _, r := range m.records {
		known[r.ID] = true
		if !m.files.Exists(r.FileRef) && !m.files.Exists(m.files.PathFor(r.ID)) {
			result.MissingFiles = append(result.MissingFiles, r.ID)
		}
	}

	for item := range m.scanner.Run(m.files.Dir(), func(msg string) { m.logMessage("Sweep: %s", msg) }) {
		// Only files named like photos are ours to sweep.
		id, ok := filestore.IDFromPath(item.Path)
		if !ok || !strings.HasPrefix(id, IDPrefix) {
			continue
		}
		if !known[id] {
			result.OrphanFiles = append(result.OrphanFiles, item.Path)
		}
	}
	natsort.Sort(result.OrphanFiles)

	if dryRun {
		return result, nil
	}
	for _, path := range result.OrphanFiles {
		if err := m.files.Delete(path); err != nil {
			m.logMessage("Sweep: could not delete orphan %s: %v", path, err)
			continue
		}
		result.Deleted++
	}
	m.logMessage("Sweep: %d orphan files, %d deleted, %d records missing files",
		len(result.OrphanFiles), result.Deleted, len(result.MissingFiles))
	return result, nil
}
