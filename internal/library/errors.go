package library

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the Manager matches exactly one of these
// with errors.Is; the underlying cause stays reachable as well.
var (
	ErrStorageRead = errors.New("photo index unreadable")
	ErrPersistence = errors.New("photo index write failed")
	ErrFileIO      = errors.New("photo file operation failed")
	ErrNotFound    = errors.New("photo not found")
)

var errNoScanner = errors.New("no file scanner configured")

// OpError describes a failed library operation.
type OpError struct {
	Op   string // load, add, remove, remove-all, get, sweep
	ID   string // photo id, empty for whole-library operations
	Kind error  // one of the Err* kinds above
	Err  error  // underlying cause, may be nil
}

func (e *OpError) Error() string {
	msg := e.Op
	if e.ID != "" {
		msg += " " + e.ID
	}
	msg += ": " + e.Kind.Error()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *OpError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func opError(op, id string, kind, err error) *OpError {
	return &OpError{Op: op, ID: id, Kind: kind, Err: err}
}

// IgnoreNotFound returns nil for ErrNotFound and err otherwise. Idempotent
// callers of Remove use it to treat an already-absent photo as removed.
func IgnoreNotFound(err error) error {
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// FileFailure records one file that could not be deleted during a batch.
type FileFailure struct {
	ID      string
	FileRef string
	Err     error
}

func (f FileFailure) Error() string {
	return fmt.Sprintf("%s (%s): %v", f.ID, f.FileRef, f.Err)
}

func (f FileFailure) Unwrap() error {
	return f.Err
}
