package store

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"embedkit/internal/domain"
	"embedkit/internal/vecindex"
)

var (
	bucketEmbeddings = []byte("embeddings")
	bucketChunks     = []byte("chunks")
)

// BoltStore persists named indexes in a single bbolt database: raw vector
// rows in one bucket, chunk metadata in another, written in one transaction
// so readers never observe vectors without their metadata.
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore opens (or creates) the database at path.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketEmbeddings, bucketChunks} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Save persists the index snapshot under name in a single transaction.
func (s *BoltStore) Save(name string, idx *vecindex.Flat) error {
	if err := validName(name); err != nil {
		return err
	}
	meta, rows := idx.Snapshot()

	metaData, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	rowData := encodeRows(meta.Dimension, rows)

	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketEmbeddings).Put([]byte(name), rowData); err != nil {
			return err
		}
		return tx.Bucket(bucketChunks).Put([]byte(name), metaData)
	})
}

// Load restores a named index, cross-checking rows against metadata.
func (s *BoltStore) Load(name string) (*vecindex.Flat, error) {
	if err := validName(name); err != nil {
		return nil, err
	}

	var rowData, metaData []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucketEmbeddings).Get([]byte(name)); v != nil {
			rowData = append([]byte(nil), v...)
		}
		if v := tx.Bucket(bucketChunks).Get([]byte(name)); v != nil {
			metaData = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if rowData == nil && metaData == nil {
		return nil, fmt.Errorf("%w: %q", vecindex.ErrNotFound, name)
	}
	if rowData == nil || metaData == nil {
		return nil, fmt.Errorf("%w: index %q has vectors or metadata but not both",
			vecindex.ErrCorruptIndex, name)
	}

	_, rows, err := decodeRows(rowData)
	if err != nil {
		return nil, err
	}
	var meta domain.IndexMetadata
	if err := json.Unmarshal(metaData, &meta); err != nil {
		return nil, fmt.Errorf("%w: unreadable metadata: %v", vecindex.ErrCorruptIndex, err)
	}

	idx, err := vecindex.Restore(meta, rows)
	if err != nil {
		return nil, fmt.Errorf("index %q: %w", name, err)
	}
	return idx, nil
}

// Exists reports whether a named index is present.
func (s *BoltStore) Exists(name string) (bool, error) {
	if err := validName(name); err != nil {
		return false, err
	}
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		found = tx.Bucket(bucketChunks).Get([]byte(name)) != nil
		return nil
	})
	return found, err
}

// List returns the names of stored indexes. Bolt iterates keys in order, so
// the result is already sorted.
func (s *BoltStore) List() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketChunks).ForEach(func(k, v []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}

// Delete removes a named index in a single transaction.
func (s *BoltStore) Delete(name string) error {
	if err := validName(name); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketEmbeddings).Delete([]byte(name)); err != nil {
			return err
		}
		return tx.Bucket(bucketChunks).Delete([]byte(name))
	})
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
