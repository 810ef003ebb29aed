package catalog

import (
	"fmt"
	"sync"

	"github.com/boltdb/bolt"
)

// BlobStore is the persistence port for named blobs. The credential
// collection is read and rewritten wholesale through it.
type BlobStore interface {
	// Get returns the blob stored under name, or nil if there is none.
	Get(name string) ([]byte, error)
	// Put durably replaces the blob stored under name.
	Put(name string, data []byte) error
}

const storeBucket = "catalog"

// BoltStore keeps blobs in a single-bucket bolt database file.
type BoltStore struct {
	db *bolt.DB
}

var _ BlobStore = (*BoltStore)(nil)

// OpenStore opens (or creates) the bolt file at path.
func OpenStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(storeBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Get(name string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if raw := tx.Bucket([]byte(storeBucket)).Get([]byte(name)); raw != nil {
			data = append([]byte(nil), raw...)
		}
		return nil
	})
	return data, err
}

// Put replaces the blob in one transaction, so a reader never sees a
// partially-written collection.
func (s *BoltStore) Put(name string, data []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(storeBucket)).Put([]byte(name), data)
	})
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// MemoryStore is an in-memory BlobStore for tests.
type MemoryStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

var _ BlobStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Get(name string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if raw, ok := s.blobs[name]; ok {
		return append([]byte(nil), raw...), nil
	}
	return nil, nil
}

func (s *MemoryStore) Put(name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[name] = append([]byte(nil), data...)
	return nil
}
