package library

import (
	"fmt"

	"magnify/internal/config"
	"magnify/internal/filestore"
	"magnify/internal/photostore"
	"magnify/internal/scan"
)

// Open wires a Manager to the on-disk stores described by cfg. The returned
// close function releases the index database.
func Open(cfg config.Config, logger LoggerFunc) (*Manager, func() error, error) {
	if err := cfg.EnsureDirs(); err != nil {
		return nil, nil, err
	}
	index, err := photostore.NewStore(cfg.IndexPath, photostore.LoggerFunc(logger))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open photo index: %w", err)
	}
	files, err := filestore.NewLocalStorage(cfg.PhotosDir, filestore.LoggerFunc(logger))
	if err != nil {
		index.Close()
		return nil, nil, fmt.Errorf("failed to open photo storage: %w", err)
	}
	return NewManager(index, files, scan.FileScannerImpl{}, logger), index.Close, nil
}
