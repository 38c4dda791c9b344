// Package filestore keeps photo pixel data in an application-private directory,
// one file per photo named after the photo id.
package filestore

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

const (
	PhotoFileExtension = ".jpg"

	workInProgressSuffix = ".wip"
)

var (
	// ErrSourceMissing is returned by Import when the source file does not exist.
	ErrSourceMissing = errors.New("filestore: source file missing")
	// ErrOutsideStore is returned for references that resolve outside the store directory.
	ErrOutsideStore = errors.New("filestore: reference outside store directory")
)

// LoggerFunc defines a function signature for logging messages.
type LoggerFunc func(message string)

// LocalStorage stores photo files on the local filesystem.
type LocalStorage struct {
	basePath string // absolute path of the photo directory
	logger   LoggerFunc
}

// NewLocalStorage creates the photo directory if needed and returns a store rooted there.
func NewLocalStorage(basePath string, logger LoggerFunc) (*LocalStorage, error) {
	absBasePath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("invalid photo storage path '%s': %w", basePath, err)
	}
	if err := os.MkdirAll(absBasePath, 0750); err != nil {
		return nil, fmt.Errorf("failed to create photo storage directory '%s': %w", absBasePath, err)
	}

	ls := &LocalStorage{basePath: absBasePath, logger: logger}
	ls.logMessage("filestore: Initialized photo storage at %s", absBasePath)
	return ls, nil
}

func (ls *LocalStorage) logMessage(format string, args ...interface{}) {
	if ls.logger != nil {
		ls.logger(fmt.Sprintf(format, args...))
	} else {
		log.Printf(format, args...)
	}
}

// Dir returns the absolute photo directory.
func (ls *LocalStorage) Dir() string {
	return ls.basePath
}

// PathFor returns the deterministic file reference for a photo id.
func (ls *LocalStorage) PathFor(id string) string {
	return filepath.Join(ls.basePath, id+PhotoFileExtension)
}

// IDFromPath reverses PathFor. ok is false for names that are not photo files.
func IDFromPath(path string) (id string, ok bool) {
	name := filepath.Base(path)
	if !strings.EqualFold(filepath.Ext(name), PhotoFileExtension) {
		return "", false
	}
	return strings.TrimSuffix(name, filepath.Ext(name)), true
}

// Import copies src into the store as <id>.jpg and returns the new file reference.
// src is read once; the copy lands under a temporary name and is renamed into
// place only after it is fully written, so a failed import leaves no photo file.
func (ls *LocalStorage) Import(src string, id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("photo id cannot be empty")
	}
	in, err := os.Open(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrSourceMissing, src)
		}
		return "", fmt.Errorf("failed to open source '%s': %w", src, err)
	}
	defer in.Close()

	finalPath := ls.PathFor(id)
	tempPath := finalPath + workInProgressSuffix

	out, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file '%s': %w", tempPath, err)
	}

	if _, err = io.Copy(out, in); err == nil {
		err = out.Sync()
	}
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to write data to '%s': %w", finalPath, err)
	}

	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to move '%s' into place: %w", finalPath, err)
	}

	ls.logMessage("filestore: Saved photo to %s", finalPath)
	return finalPath, nil
}

// resolve checks that fileRef points inside the store directory.
func (ls *LocalStorage) resolve(fileRef string) (string, error) {
	absPath, err := filepath.Abs(filepath.Clean(fileRef))
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for '%s': %w", fileRef, err)
	}
	if filepath.Dir(absPath) != ls.basePath {
		return "", fmt.Errorf("%w: %s", ErrOutsideStore, fileRef)
	}
	return absPath, nil
}

// Delete removes a photo file. A file that is already gone counts as deleted.
func (ls *LocalStorage) Delete(fileRef string) error {
	fullPath, err := ls.resolve(fileRef)
	if err != nil {
		return err
	}
	err = os.Remove(fullPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete photo '%s': %w", fileRef, err)
	}
	if err == nil {
		ls.logMessage("filestore: Deleted photo %s", fullPath)
	}
	return nil
}

// Exists reports whether fileRef names an existing regular file in the store.
func (ls *LocalStorage) Exists(fileRef string) bool {
	fullPath, err := ls.resolve(fileRef)
	if err != nil {
		return false
	}
	info, err := os.Stat(fullPath)
	return err == nil && info.Mode().IsRegular()
}

// Open returns a reader for a stored photo.
func (ls *LocalStorage) Open(fileRef string) (io.ReadCloser, error) {
	fullPath, err := ls.resolve(fileRef)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open photo '%s': %w", fileRef, err)
	}
	return f, nil
}
