// Package photostore persists the photo metadata index in a BoltDB database.
// The whole index lives under a single fixed key as a JSON array of records, so
// every write replaces it atomically.
package photostore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	GalleryBucket = "Gallery"          // Bucket holding the index record.
	GalleryKey    = "@magnify_gallery" // Fixed key of the index record.
)

// ErrCorrupt is returned when the stored index cannot be decoded.
var ErrCorrupt = errors.New("photostore: index is corrupt")

// LoggerFunc defines a function signature for logging messages.
type LoggerFunc func(message string)

// Record is one photo's metadata as it is persisted.
type Record struct {
	ID        string `json:"id"`
	FileRef   string `json:"fileRef"`
	Timestamp int64  `json:"timestamp"`
}

// Store manages the index database.
type Store struct {
	db     *bolt.DB
	logger LoggerFunc
}

// NewStore creates or opens the index database at dbPath.
func NewStore(dbPath string, logger LoggerFunc) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("index database path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create index directory for %s: %w", dbPath, err)
	}

	s := &Store{logger: logger}
	s.logMessage("Using photo index at: %s", dbPath)

	// A second process holding the file lock should fail fast rather than hang the UI.
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open photo index %s: %w", dbPath, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(GalleryBucket)); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", GalleryBucket, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s.db = db
	return s, nil
}

func (s *Store) logMessage(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger(fmt.Sprintf(format, args...))
	} else {
		log.Printf(format, args...)
	}
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func encodeRecords(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	return json.Marshal(records)
}

func decodeRecords(data []byte) ([]Record, error) {
	var records []Record
	if data == nil {
		return []Record{}, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// Load returns the persisted index in stored order. A missing index yields an
// empty slice; an undecodable one yields ErrCorrupt.
func (s *Store) Load() ([]Record, error) {
	var records []Record
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(GalleryBucket))
		if bucket == nil {
			records = []Record{}
			return nil
		}
		// Decoding copies out of the mmap, so the result outlives the transaction.
		var err error
		records, err = decodeRecords(bucket.Get([]byte(GalleryKey)))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Save replaces the persisted index with records.
func (s *Store) Save(records []Record) error {
	data, err := encodeRecords(records)
	if err != nil {
		return fmt.Errorf("failed to encode photo index: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(GalleryBucket))
		if bucket == nil {
			return fmt.Errorf("bucket %s not found", GalleryBucket)
		}
		if err := bucket.Put([]byte(GalleryKey), data); err != nil {
			return fmt.Errorf("failed to put photo index: %w", err)
		}
		return nil
	})
}

// Clear replaces the index with an empty one.
func (s *Store) Clear() error {
	return s.Save([]Record{})
}

// PutRaw stores data under the index key without validation. It exists so
// recovery paths (and tests) can exercise a damaged index.
func (s *Store) PutRaw(data []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(GalleryBucket)).Put([]byte(GalleryKey), data)
	})
}
