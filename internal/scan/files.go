// Package scan lists the photo files present in a directory.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoggerFunc defines a function signature for logging messages.
type LoggerFunc func(message string)

// FileItem represents a photo file found on disk.
type FileItem struct {
	Path string
	Info os.FileInfo
}

// FileItems is a slice of FileItem
type FileItems []FileItem

// NewFileItem creates a new FileItem
func NewFileItem(p string, info os.FileInfo) FileItem {
	return FileItem{
		Path: p,
		Info: info,
	}
}

// FileScannerImpl is the filesystem-backed scanner.
type FileScannerImpl struct{}

// Run streams the photo files directly inside dir. Subdirectories, temp files
// and anything that is not a photo are skipped. The channel is closed when the
// listing is complete.
func (FileScannerImpl) Run(dir string, logger LoggerFunc) <-chan FileItem {
	return Run(dir, logger)
}

// Run is the entry point for the package
func Run(dir string, logger LoggerFunc) <-chan FileItem {
	out := make(chan FileItem)
	go func() {
		defer close(out)
		absDir, err := filepath.Abs(dir)
		if err != nil {
			logf(logger, "cannot resolve %s: %v", dir, err)
			return
		}
		entries, err := os.ReadDir(absDir)
		if err != nil {
			logf(logger, "cannot list %s: %v", absDir, err)
			return
		}
		for _, entry := range entries {
			if entry.IsDir() || !isPhoto(entry.Name()) {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				// Removed between ReadDir and Info.
				logf(logger, "skipping %s: %v", entry.Name(), err)
				continue
			}
			if !info.Mode().IsRegular() {
				continue
			}
			out <- NewFileItem(filepath.Join(absDir, entry.Name()), info)
		}
	}()
	return out
}

func logf(logger LoggerFunc, format string, args ...interface{}) {
	if logger != nil {
		logger(fmt.Sprintf(format, args...))
	}
}

// isPhoto checks if a file name is a stored photo
func isPhoto(n string) bool {
	switch strings.ToLower(filepath.Ext(n)) {
	case ".jpg", ".jpeg":
		return true
	default:
		return false
	}
}
